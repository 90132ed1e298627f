package config

import (
	"fmt"
	"io"
	"log"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Extract   ExtractConfig
	DuckDB    DuckDBConfig
	Load      LoadConfig
	Quality   QualityConfig
	Freshness FreshnessConfig
	Retention map[string]int `mapstructure:"retention"`
	Env       string
}

type ExtractConfig struct {
	Backoff        BackoffConfig
	RateLimitDelay time.Duration `mapstructure:"rate_limit_delay"`
	UseFixtures    bool          `mapstructure:"use_fixtures"`
	Prices         PricesConfig
	Fred           FredConfig
	Trends         TrendsConfig
	News           NewsConfig
}

type BackoffConfig struct {
	RetryWaitMin time.Duration `mapstructure:"retry_wait_min"`
	RetryWaitMax time.Duration `mapstructure:"retry_wait_max"`
	RetryMax     int           `mapstructure:"retry_max"`
}

type PricesConfig struct {
	BaseURL   string   `mapstructure:"base_url"`
	StartDate string   `mapstructure:"start_date"`
	Symbols   []string `mapstructure:"symbols"`
}

type FredConfig struct {
	BaseURL      string   `mapstructure:"base_url"`
	LookbackDays int      `mapstructure:"lookback_days"`
	Indicators   []string `mapstructure:"indicators"`
}

type TrendsConfig struct {
	BaseURL   string   `mapstructure:"base_url"`
	Geo       string   `mapstructure:"geo"`
	Timeframe string   `mapstructure:"timeframe"`
	Keywords  []string `mapstructure:"keywords"`
}

type NewsConfig struct {
	BaseURL       string   `mapstructure:"base_url"`
	MaxArticles   int      `mapstructure:"max_articles"`
	LookbackHours int      `mapstructure:"lookback_hours"`
	Symbols       []string `mapstructure:"symbols"`
}

type DuckDBConfig struct {
	Path              string   `mapstructure:"path"`
	ConnInitFnQueries []string `mapstructure:"conn_init_fn_queries"`
}

type LoadConfig struct {
	ChunkSize int `mapstructure:"chunk_size"`
}

type QualityConfig struct {
	Price  PriceQuality
	Macro  MacroQuality
	Trends TrendsQuality
	News   NewsQuality
}

type PriceQuality struct {
	MaxNullPercentage float64 `mapstructure:"max_null_percentage"`
	MinPrice          float64 `mapstructure:"min_price"`
	MaxPrice          float64 `mapstructure:"max_price"`
}

type MacroQuality struct {
	MaxNullPercentage float64 `mapstructure:"max_null_percentage"`
	// ValueRanges maps indicator_id to its expected [min, max] range.
	ValueRanges map[string][]float64 `mapstructure:"value_ranges"`
}

type TrendsQuality struct {
	MaxNullPercentage float64 `mapstructure:"max_null_percentage"`
	MinScore          float64 `mapstructure:"min_score"`
	MaxScore          float64 `mapstructure:"max_score"`
}

type NewsQuality struct {
	MaxNullPercentage float64 `mapstructure:"max_null_percentage"`
	MinCompound       float64 `mapstructure:"min_compound"`
	MaxCompound       float64 `mapstructure:"max_compound"`
}

type FreshnessConfig struct {
	MaxAgeHours int `mapstructure:"max_age_hours"`
}

// NewConfig loads the configuration from the provided base config reader
// and merges it with the environment-specific configuration.
func NewConfig(baseConfigReader io.Reader, envConfigReader io.Reader, env string) (*Config, error) {
	if env == "" { // Use the provided 'env' or default to "dev"
		env = "dev"
	}

	viper.SetConfigType("yaml")

	// Read the base configuration
	if err := viper.ReadConfig(baseConfigReader); err != nil {
		return nil, fmt.Errorf("error reading base config: %w", err)
	}

	// Merge with environment-specific configuration (only if provided)
	if envConfigReader != nil {
		if err := viper.MergeConfig(envConfigReader); err != nil {
			log.Printf("Error merging environment-specific config: %s", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}

	if config.Load.ChunkSize <= 0 {
		config.Load.ChunkSize = 1000
	}

	// Set the environment directly
	config.Env = env

	return &config, nil
}
