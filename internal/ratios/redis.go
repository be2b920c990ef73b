package ratios

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// ErrNoPublishedTable is returned by Fetch when nothing was published under the key.
var ErrNoPublishedTable = errors.New("no ratio table published")

// RedisStore publishes built tables to Redis so serving processes can pick them up
// without sharing a filesystem.
type RedisStore struct {
	client *redis.Client
	key    string
}

// NewRedisStore uses key for the table payload.
func NewRedisStore(client *redis.Client, key string) *RedisStore {
	return &RedisStore{client: client, key: key}
}

// Publish stores t in its CSV form.
func (s *RedisStore) Publish(ctx context.Context, t *Table) error {
	var buf bytes.Buffer
	if err := WriteTable(&buf, t); err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.key, buf.Bytes(), 0).Err(); err != nil {
		return fmt.Errorf("publish ratio table to %s: %w", s.key, err)
	}
	log.Info().Str("key", s.key).Int("entries", t.Len()).Msg("Published ratio table to redis")
	return nil
}

// Fetch loads the published table.
func (s *RedisStore) Fetch(ctx context.Context, minSampleSize int) (*Table, error) {
	raw, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNoPublishedTable
	}
	if err != nil {
		return nil, fmt.Errorf("fetch ratio table from %s: %w", s.key, err)
	}
	return LoadTable(bytes.NewReader(raw), minSampleSize)
}

// Key returns the redis key the store uses.
func (s *RedisStore) Key() string {
	return s.key
}
