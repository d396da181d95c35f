package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/quantrun/sigval/internal/core"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Backtest  BacktestConfig  `mapstructure:"backtest"`
	Reference ReferenceConfig `mapstructure:"reference"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	// APIKey enables X-API-Key authentication when set.
	APIKey string `mapstructure:"api_key"`
}

type StorageConfig struct {
	// MarketDataDSN is the SQLite database holding prices and
	// economic series.
	MarketDataDSN string        `mapstructure:"marketdata_dsn"`
	Archive       ArchiveConfig `mapstructure:"archive"`
}

type ArchiveConfig struct {
	Enabled bool     `mapstructure:"enabled"`
	Type    string   `mapstructure:"type"` // "localfs" or "s3"
	Path    string   `mapstructure:"path"` // For localfs
	S3      S3Config `mapstructure:"s3"`   // For S3
}

type S3Config struct {
	Bucket    string `mapstructure:"bucket"`
	Endpoint  string `mapstructure:"endpoint"`
	Region    string `mapstructure:"region"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Prefix    string `mapstructure:"prefix"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// BacktestConfig carries the default run options; CLI flags and API
// request fields override them per run.
type BacktestConfig struct {
	InitialCapital     float64 `mapstructure:"initial_capital"`
	BenchmarkAsset     string  `mapstructure:"benchmark_asset"`
	RebalanceFrequency string  `mapstructure:"rebalance_frequency"`
	TransactionCostBps float64 `mapstructure:"transaction_cost_bps"`
	SlippageBps        float64 `mapstructure:"slippage_bps"`
}

// ReferenceConfig holds the lookup tables the report layer consumes.
// They ship as configuration, not compiled-in constants, so they can
// be swapped and tested independently.
type ReferenceConfig struct {
	HedgeRatios         map[string]float64 `mapstructure:"hedge_ratios"`
	OptionCostBaselines map[string]float64 `mapstructure:"option_cost_baselines"`
}

// Load reads configuration from file
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Support environment variable overrides
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	// Expand environment variables in string values
	for _, key := range v.AllKeys() {
		val := v.GetString(key)
		if strings.HasPrefix(val, "${") && strings.HasSuffix(val, "}") {
			envKey := strings.TrimSuffix(strings.TrimPrefix(val, "${"), "}")
			v.Set(key, os.Getenv(envKey))
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}

// Defaults returns a config with sensible defaults
func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Storage: StorageConfig{
			MarketDataDSN: "marketdata.db",
			Archive: ArchiveConfig{
				Enabled: false,
				Type:    "localfs",
				Path:    "reports",
			},
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
		Backtest: BacktestConfig{
			InitialCapital:     100000,
			TransactionCostBps: 10,
			SlippageBps:        5,
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("port must be between 1 and 65535, got %d", c.Server.Port))
	}

	if c.Backtest.InitialCapital <= 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("initial_capital must be positive, got %f", c.Backtest.InitialCapital))
	}
	if c.Backtest.TransactionCostBps < 0 || c.Backtest.SlippageBps < 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("cost and slippage basis points cannot be negative"))
	}

	switch c.Storage.Archive.Type {
	case "", "localfs":
	case "s3":
		if c.Storage.Archive.Enabled && c.Storage.Archive.S3.Bucket == "" {
			return core.WrapError(core.ErrConfigMissing,
				fmt.Errorf("s3 bucket required when archive type is s3"))
		}
	default:
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("unknown archive type %q", c.Storage.Archive.Type))
	}

	return nil
}
