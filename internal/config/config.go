package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/fire-ai/valuation-cli/internal/comps"
)

// Config holds the full application configuration.
type Config struct {
	Pool    PoolConfig    `yaml:"pool" mapstructure:"pool"`
	Comps   CompsConfig   `yaml:"comps" mapstructure:"comps"`
	Geocode GeocodeConfig `yaml:"geocode" mapstructure:"geocode"`
	Summary SummaryConfig `yaml:"summary" mapstructure:"summary"`
	Backend BackendConfig `yaml:"backend" mapstructure:"backend"`
	Store   StoreConfig   `yaml:"store" mapstructure:"store"`
	Server  ServerConfig  `yaml:"server" mapstructure:"server"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// PoolConfig configures the candidate pool provider.
type PoolConfig struct {
	URL             string  `yaml:"url" mapstructure:"url"`
	TimeoutSecs     int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	CacheTTLMinutes int     `yaml:"cache_ttl_minutes" mapstructure:"cache_ttl_minutes"`
	MaxRetries      int     `yaml:"max_retries" mapstructure:"max_retries"`
	RateLimitRPS    float64 `yaml:"rate_limit_rps" mapstructure:"rate_limit_rps"`
}

// CompsConfig configures comparable selection.
type CompsConfig struct {
	Limit  int                `yaml:"limit" mapstructure:"limit"`
	Filter comps.FilterConfig `yaml:"filter" mapstructure:"filter"`
}

// GeocodeConfig configures the geocoding provider chain.
type GeocodeConfig struct {
	MLSGridURL   string  `yaml:"mlsgrid_url" mapstructure:"mlsgrid_url"`
	MLSGridToken string  `yaml:"mlsgrid_token" mapstructure:"mlsgrid_token"`
	RateLimitRPS float64 `yaml:"rate_limit_rps" mapstructure:"rate_limit_rps"`
}

// SummaryConfig configures the Claude-backed summary generator.
type SummaryConfig struct {
	Key         string  `yaml:"key" mapstructure:"key"`
	Model       string  `yaml:"model" mapstructure:"model"`
	MaxTokens   int64   `yaml:"max_tokens" mapstructure:"max_tokens"`
	Temperature float64 `yaml:"temperature" mapstructure:"temperature"`
	Disabled    bool    `yaml:"disabled" mapstructure:"disabled"`
}

// BackendConfig configures posting of finished valuations downstream.
type BackendConfig struct {
	PostURL     string `yaml:"post_url" mapstructure:"post_url"`
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// StoreConfig configures the run-history database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	SQLitePath  string `yaml:"sqlite_path" mapstructure:"sqlite_path"`
}

// ServerConfig configures the valuation webhook server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("VALUATION")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.sqlite_path", "valuation.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("pool.timeout_secs", 120)
	v.SetDefault("pool.cache_ttl_minutes", 30)
	v.SetDefault("pool.max_retries", 2)
	v.SetDefault("pool.rate_limit_rps", 1)
	v.SetDefault("comps.limit", comps.DefaultLimit)
	v.SetDefault("comps.filter.bedroom_tolerance", 1)
	v.SetDefault("comps.filter.bathroom_tolerance", 1.0)
	v.SetDefault("comps.filter.area_lower_ratio", 0.75)
	v.SetDefault("comps.filter.area_upper_ratio", 1.25)
	v.SetDefault("comps.filter.max_year_delta", 20)
	v.SetDefault("comps.filter.max_zip_delta", 100)
	v.SetDefault("comps.filter.max_radius_miles", 1.0)
	v.SetDefault("comps.filter.state_equivalents", []string{"NC", "SC"})
	v.SetDefault("geocode.mlsgrid_url", "https://api.mlsgrid.com/v2/Property")
	v.SetDefault("geocode.rate_limit_rps", 1)
	v.SetDefault("summary.model", "claude-haiku-4-5-20251001")
	v.SetDefault("summary.max_tokens", 1024)
	v.SetDefault("summary.temperature", 0.4)
	v.SetDefault("backend.timeout_secs", 30)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
