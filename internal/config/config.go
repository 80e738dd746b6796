package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Environment string           `mapstructure:"environment"`
	LogLevel    string           `mapstructure:"log_level"`
	Server      ServerConfig     `mapstructure:"server"`
	Database    DatabaseConfig   `mapstructure:"database"`
	Redis       RedisConfig      `mapstructure:"redis"`
	Graph       GraphConfig      `mapstructure:"graph"`
	MarketData  MarketDataConfig `mapstructure:"market_data"`
	Ranking     RankingConfig    `mapstructure:"ranking"`
	Telemetry   TelemetryConfig  `mapstructure:"telemetry"`
}

type ServerConfig struct {
	Port           int      `mapstructure:"port"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// GraphConfig points at the external graph service that owns the
// community-detection and personalized-PageRank computations.
type GraphConfig struct {
	ServiceURL string `mapstructure:"service_url"`
	Timeout    int    `mapstructure:"timeout"`
}

type MarketDataConfig struct {
	// Source selects where price rows come from: "csv" or "postgres".
	Source     string `mapstructure:"source"`
	CSVPath    string `mapstructure:"csv_path"`
	DiffPeriod int    `mapstructure:"diff_period"`
}

type RankingConfig struct {
	DefaultLimit    int `mapstructure:"default_limit"`
	MaxLimit        int `mapstructure:"max_limit"`
	CacheTTLSeconds int `mapstructure:"cache_ttl_seconds"`
}

type TelemetryConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath(".")

	// Set default values
	setDefaults()

	// Enable environment variable support
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Read config file
	if err := viper.ReadInConfig(); err != nil {
		// Config file not found, use defaults and environment variables
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	// Normalize environment to lowercase for consistent comparison
	config.Environment = strings.ToLower(config.Environment)

	if err := config.validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func (c *Config) validate() error {
	switch strings.ToLower(c.MarketData.Source) {
	case "csv", "postgres":
	default:
		return fmt.Errorf("market_data.source must be \"csv\" or \"postgres\", got %q", c.MarketData.Source)
	}

	if c.MarketData.DiffPeriod < 1 {
		return fmt.Errorf("market_data.diff_period must be at least 1, got %d", c.MarketData.DiffPeriod)
	}

	if c.Ranking.DefaultLimit < 1 {
		return fmt.Errorf("ranking.default_limit must be at least 1, got %d", c.Ranking.DefaultLimit)
	}

	if c.Ranking.MaxLimit < c.Ranking.DefaultLimit {
		return fmt.Errorf("ranking.max_limit (%d) must not be below ranking.default_limit (%d)",
			c.Ranking.MaxLimit, c.Ranking.DefaultLimit)
	}

	return nil
}

func setDefaults() {
	// Environment
	viper.SetDefault("environment", "development")
	viper.SetDefault("log_level", "info")

	// Server
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})

	// Database
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.user", "postgres")
	viper.SetDefault("database.password", "postgres")
	viper.SetDefault("database.dbname", "diversify")
	viper.SetDefault("database.sslmode", "disable")

	// Redis
	viper.SetDefault("redis.enabled", false)
	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)

	// Graph service
	viper.SetDefault("graph.service_url", "http://localhost:7474")
	viper.SetDefault("graph.timeout", 30)

	// Market data
	viper.SetDefault("market_data.source", "csv")
	viper.SetDefault("market_data.csv_path", "./data/current.csv")
	viper.SetDefault("market_data.diff_period", 1)

	// Ranking
	viper.SetDefault("ranking.default_limit", 6)
	viper.SetDefault("ranking.max_limit", 100)
	viper.SetDefault("ranking.cache_ttl_seconds", 300)

	// Telemetry
	viper.SetDefault("telemetry.enabled", false)
}
