package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strconv"

	"hotel-forecast/internal/forecast"
	"hotel-forecast/internal/ratios"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// DefaultRedisRatioKey is where a published ratio table lives when REDIS_RATIO_KEY is unset.
const DefaultRedisRatioKey = "hotel-forecast:ratios"

// EngineConfig is the tuning file: forecast and pricing settings plus model calibration.
type EngineConfig struct {
	Forecast forecast.Config    `yaml:"forecast"`
	Model    ratios.BuildConfig `yaml:"model"`
}

// DefaultEngineConfig returns the built-in tuning.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		Forecast: forecast.DefaultConfig(),
		Model:    ratios.DefaultBuildConfig(),
	}
}

// Validate checks both sections.
func (c EngineConfig) Validate() error {
	return errors.Join(c.Forecast.Validate(), c.Model.Validate())
}

// AppConfig holds the complete application configuration.
type AppConfig struct {
	DataPath            string
	LogDir              string
	ChartsDir           string
	RatioTablePath      string
	BacktestDataPath    string
	EngineConfigPath    string
	Engine              EngineConfig
	RedisAddr           string
	RedisRatioKey       string
	MetricsAddr         string
	BacktestWorkers     int
	EnableMermaidCharts bool
}

// Load loads the configuration from .env files, environment variables and the optional
// ENGINE_CONFIG tuning file.
func Load() (*AppConfig, error) {
	// 1. Try to load from the executable's directory (highest priority for MCP servers)
	exePath, err := os.Executable()
	exeDir := ""
	if err == nil {
		exeDir = filepath.Dir(exePath)
		envPath := filepath.Join(exeDir, ".env")
		if err := godotenv.Load(envPath); err == nil {
			log.Debug().Str("path", envPath).Msg("Loaded configuration from binary directory")
		}
	}

	// 2. Fallback to current working directory
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found in working directory, relying on environment variables or binary-relative .env")
	}

	// 3. Resolve Data Paths
	dataPath := os.Getenv("DATA_PATH")
	if dataPath == "" {
		if exeDir != "" {
			dataPath = filepath.Join(exeDir, "data")
		} else {
			dataPath = "data"
		}
	}

	logDir := getEnv("LOGS_FOLDER", filepath.Join(dataPath, "logs"))
	chartsDir := filepath.Join(dataPath, "charts")

	if err := os.MkdirAll(dataPath, 0755); err != nil {
		log.Warn().Err(err).Str("path", dataPath).Msg("Failed to create data directory")
	}

	workers, err := strconv.Atoi(getEnv("BACKTEST_WORKERS", strconv.Itoa(runtime.NumCPU())))
	if err != nil || workers < 1 {
		return nil, fmt.Errorf("BACKTEST_WORKERS must be a positive integer, got %q", os.Getenv("BACKTEST_WORKERS"))
	}

	cfg := &AppConfig{
		DataPath:            dataPath,
		LogDir:              logDir,
		ChartsDir:           chartsDir,
		RatioTablePath:      getEnv("RATIO_TABLE_PATH", filepath.Join(dataPath, "completion_ratios.csv")),
		BacktestDataPath:    getEnv("BACKTEST_DATA_PATH", filepath.Join(dataPath, "aggregated_bookings.csv")),
		EngineConfigPath:    getEnv("ENGINE_CONFIG", ""),
		Engine:              DefaultEngineConfig(),
		RedisAddr:           getEnv("REDIS_ADDR", ""),
		RedisRatioKey:       getEnv("REDIS_RATIO_KEY", DefaultRedisRatioKey),
		MetricsAddr:         getEnv("METRICS_ADDR", ""),
		BacktestWorkers:     workers,
		EnableMermaidCharts: getEnvBool("ENABLE_MERMAID_CHARTS", false),
	}

	if cfg.EngineConfigPath != "" {
		engine, err := LoadEngineConfigFile(cfg.EngineConfigPath)
		if err != nil {
			return nil, err
		}
		cfg.Engine = engine
		log.Debug().Str("path", cfg.EngineConfigPath).Msg("Loaded engine configuration")
	}

	return cfg, nil
}

// LoadEngineConfig reads YAML over the defaults, so a file only lists what it changes.
// Unknown keys are rejected.
func LoadEngineConfig(r io.Reader) (EngineConfig, error) {
	cfg := DefaultEngineConfig()
	data, err := io.ReadAll(r)
	if err != nil {
		return cfg, err
	}
	if len(bytes.TrimSpace(data)) > 0 {
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil {
			return cfg, fmt.Errorf("parse engine config: %w", err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid engine config: %w", err)
	}
	return cfg, nil
}

// LoadEngineConfigFile opens path and reads it with LoadEngineConfig.
func LoadEngineConfigFile(path string) (EngineConfig, error) {
	f, err := os.Open(path)
	if err != nil {
		return EngineConfig{}, fmt.Errorf("open engine config: %w", err)
	}
	defer f.Close()
	return LoadEngineConfig(f)
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return fallback
}
