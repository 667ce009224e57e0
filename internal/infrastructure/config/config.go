// Package config provides centralized configuration management
// using Viper for configuration loading and validation
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/nutriplan/v1/internal/domain/plan"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override
const EnvPrefix = "DIETPLAN"

// Config holds all application configuration
type Config struct {
	App        AppConfig        `mapstructure:"app"`
	Server     ServerConfig     `mapstructure:"server"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Catalog    CatalogConfig    `mapstructure:"catalog"`
	Planner    PlannerConfig    `mapstructure:"planner"`
	Monitoring MonitoringConfig `mapstructure:"monitoring"`
}

// AppConfig contains application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
	Debug       bool   `mapstructure:"debug"`
	LogLevel    string `mapstructure:"log_level"`
	LogFormat   string `mapstructure:"log_format"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	// RateLimitRPS of zero disables request rate limiting
	RateLimitRPS   float64 `mapstructure:"rate_limit_rps"`
	RateLimitBurst int     `mapstructure:"rate_limit_burst"`
}

// Addr returns host:port
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// RedisConfig contains Redis configuration. When disabled plans are cached
// in process memory.
type RedisConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	Password     string        `mapstructure:"password"`
	Database     int           `mapstructure:"database"`
	MaxRetries   int           `mapstructure:"max_retries"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	KeyPrefix    string        `mapstructure:"key_prefix"`
}

// Addr returns host:port
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// CatalogConfig contains food provider configuration
type CatalogConfig struct {
	// Providers lists enabled providers in tie-break order
	Providers         []string            `mapstructure:"providers"`
	Timeout           time.Duration       `mapstructure:"timeout"`
	DefaultLimit      int                 `mapstructure:"default_limit"`
	RequestsPerSecond float64             `mapstructure:"requests_per_second"`
	Burst             int                 `mapstructure:"burst"`
	OpenFoodFacts     OpenFoodFactsConfig `mapstructure:"openfoodfacts"`
	USDA              USDAConfig          `mapstructure:"usda"`
}

// OpenFoodFactsConfig configures the Open Food Facts provider
type OpenFoodFactsConfig struct {
	BaseURL   string `mapstructure:"base_url"`
	UserAgent string `mapstructure:"user_agent"`
}

// USDAConfig configures the FoodData Central provider
type USDAConfig struct {
	BaseURL string `mapstructure:"base_url"`
	APIKey  string `mapstructure:"api_key"`
}

// PlannerConfig contains meal planning configuration
type PlannerConfig struct {
	SlotTable   string        `mapstructure:"slot_table"`
	CacheTTL    time.Duration `mapstructure:"cache_ttl"`
	SearchLimit int           `mapstructure:"search_limit"`
	// Variety picks among the top scored foods instead of the best one
	Variety     bool  `mapstructure:"variety"`
	VarietySeed int64 `mapstructure:"variety_seed"`
}

// MonitoringConfig contains monitoring configuration
type MonitoringConfig struct {
	EnableMetrics bool   `mapstructure:"enable_metrics"`
	MetricsPath   string `mapstructure:"metrics_path"`
}

// Known provider names
var knownProviders = map[string]bool{
	"usda":          true,
	"openfoodfacts": true,
	"static":        true,
}

// Load loads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set default values
	setDefaults(v)

	// Set config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/nutriplan")
	}

	// Enable environment variable override
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		// It's okay if config file doesn't exist, we have defaults
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	// Unmarshal configuration
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Validate configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("app.name", "nutriplan")
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.debug", false)
	v.SetDefault("app.log_level", "info")
	v.SetDefault("app.log_format", "json")

	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.idle_timeout", "60s")
	v.SetDefault("server.request_timeout", "25s")
	v.SetDefault("server.shutdown_timeout", "15s")
	v.SetDefault("server.rate_limit_rps", 0)
	v.SetDefault("server.rate_limit_burst", 20)

	// Redis defaults
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.database", 0)
	v.SetDefault("redis.max_retries", 3)
	v.SetDefault("redis.pool_size", 10)
	v.SetDefault("redis.min_idle_conns", 2)
	v.SetDefault("redis.dial_timeout", "5s")
	v.SetDefault("redis.read_timeout", "3s")
	v.SetDefault("redis.write_timeout", "3s")
	v.SetDefault("redis.key_prefix", "")

	// Catalog defaults
	v.SetDefault("catalog.providers", []string{"usda", "openfoodfacts", "static"})
	v.SetDefault("catalog.timeout", "3s")
	v.SetDefault("catalog.default_limit", 20)
	v.SetDefault("catalog.requests_per_second", 5.0)
	v.SetDefault("catalog.burst", 5)
	v.SetDefault("catalog.openfoodfacts.base_url", "https://world.openfoodfacts.org")
	v.SetDefault("catalog.openfoodfacts.user_agent", "nutriplan/1.0")
	v.SetDefault("catalog.usda.base_url", "https://api.nal.usda.gov")
	v.SetDefault("catalog.usda.api_key", "DEMO_KEY")

	// Planner defaults
	v.SetDefault("planner.slot_table", plan.TableFiveMeals)
	v.SetDefault("planner.cache_ttl", "24h")
	v.SetDefault("planner.search_limit", 20)
	v.SetDefault("planner.variety", false)
	v.SetDefault("planner.variety_seed", 0)

	// Monitoring defaults
	v.SetDefault("monitoring.enable_metrics", true)
	v.SetDefault("monitoring.metrics_path", "/metrics")
}

// Validate validates the configuration
func (c *Config) Validate() error {
	// Validate required fields
	if c.App.Name == "" {
		return fmt.Errorf("app.name is required")
	}

	// Validate port ranges
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535")
	}
	if c.Redis.Enabled && (c.Redis.Port < 1 || c.Redis.Port > 65535) {
		return fmt.Errorf("redis.port must be between 1 and 65535")
	}

	if c.Server.RequestTimeout <= 0 {
		return fmt.Errorf("server.request_timeout must be positive")
	}
	if c.Catalog.Timeout <= 0 {
		return fmt.Errorf("catalog.timeout must be positive")
	}
	if c.Planner.CacheTTL <= 0 {
		return fmt.Errorf("planner.cache_ttl must be positive")
	}

	if len(c.Catalog.Providers) == 0 {
		return fmt.Errorf("catalog.providers must name at least one provider")
	}
	for _, p := range c.Catalog.Providers {
		if !knownProviders[p] {
			return fmt.Errorf("catalog.providers: unknown provider %q", p)
		}
	}

	if _, err := plan.TableByName(c.Planner.SlotTable); err != nil {
		return fmt.Errorf("planner.slot_table: %w", err)
	}

	return nil
}

// SlotTable resolves the configured slot table
func (c *Config) SlotTable() plan.SlotTable {
	t, err := plan.TableByName(c.Planner.SlotTable)
	if err != nil {
		return plan.FiveMeals()
	}
	return t
}

// IsProduction returns true if running in production
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// IsDevelopment returns true if running in development
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}
