package commands

import (
	"context"
	"errors"
	"strings"

	"hotel-forecast/internal/mcp"
	"hotel-forecast/internal/metrics"
	"hotel-forecast/internal/ratios"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the MCP protocol on stdio",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(ctx context.Context) error {
	store := redisStore()
	recorder := metrics.New(prometheus.NewRegistry())

	holder := ratios.NewHolder(nil, "")
	if table, source, err := loadRatios(ctx, store); err != nil {
		log.Warn().Err(err).Msg("Starting without a ratio table; forecasts fail until reload_ratios succeeds")
	} else {
		holder.Swap(table, source)
		recorder.RecordRatioTable(sourceKind(source), table.Len())
	}

	if cfg.MetricsAddr != "" {
		go func() {
			if err := recorder.Serve(ctx, cfg.MetricsAddr); err != nil {
				log.Error().Err(err).Str("addr", cfg.MetricsAddr).Msg("Metrics endpoint stopped")
			}
		}()
	}

	server := mcp.NewServer(cfg, holder, store, recorder)
	if err := server.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// redisStore returns the shared ratio store, or nil when REDIS_ADDR is unset.
func redisStore() *ratios.RedisStore {
	if cfg.RedisAddr == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	return ratios.NewRedisStore(client, cfg.RedisRatioKey)
}

// loadRatios prefers the table published to Redis and falls back to the ratio file.
func loadRatios(ctx context.Context, store *ratios.RedisStore) (*ratios.Table, string, error) {
	minSample := cfg.Engine.Model.MinSampleSize
	if store != nil {
		table, err := store.Fetch(ctx, minSample)
		if err == nil {
			return table, "redis:" + store.Key(), nil
		}
		log.Warn().Err(err).Str("key", store.Key()).Msg("No ratio table from Redis, trying file")
	}
	table, err := ratios.LoadTableFile(cfg.RatioTablePath, minSample)
	if err != nil {
		return nil, "", err
	}
	return table, cfg.RatioTablePath, nil
}

func sourceKind(source string) string {
	if strings.HasPrefix(source, mcp.SourceRedis+":") {
		return mcp.SourceRedis
	}
	return mcp.SourceFile
}

// requireTable loads the ratio table for one-shot commands.
func requireTable(ctx context.Context) (*ratios.Table, error) {
	table, source, err := loadRatios(ctx, redisStore())
	if err != nil {
		return nil, err
	}
	log.Debug().Str("source", source).Int("entries", table.Len()).Msg("Ratio table loaded")
	return table, nil
}
