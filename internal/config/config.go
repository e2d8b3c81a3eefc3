// Package config handles application configuration loading and validation using Viper.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config represents the application configuration.
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Logging     LoggingConfig     `mapstructure:"logging"`
	Metrics     MetricsConfig     `mapstructure:"metrics"`
	Scheduler   SchedulerConfig   `mapstructure:"scheduler"`
	Animation   AnimationConfig   `mapstructure:"animation"`
	Celebration CelebrationConfig `mapstructure:"celebration"`
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	Port        int    `mapstructure:"port"`
	Environment string `mapstructure:"environment"`
}

// DatabaseConfig contains store and cache connection settings.
type DatabaseConfig struct {
	Driver   string         `mapstructure:"driver"` // "sqlite" or "postgres"
	SQLite   SQLiteConfig   `mapstructure:"sqlite"`
	Postgres PostgresConfig `mapstructure:"postgres"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

// SQLiteConfig contains the SQLite DSN. The default in-memory DSN keeps all
// state process-local: a restart loses everything and seed fixtures reload.
type SQLiteConfig struct {
	DSN string `mapstructure:"dsn"`
}

// PostgresConfig contains PostgreSQL connection and pool settings.
type PostgresConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Database        string `mapstructure:"database"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	SSLMode         string `mapstructure:"ssl_mode"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`
}

// RedisConfig contains Redis cache connection and pool settings.
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
	TTL      int    `mapstructure:"ttl"` // overview cache TTL in seconds
}

// LoggingConfig contains application logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// MetricsConfig contains Prometheus metrics exporter settings.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    int    `mapstructure:"port"`
	Path    string `mapstructure:"path"`
}

// SchedulerConfig contains the daily streak maintenance job settings.
type SchedulerConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Time     string `mapstructure:"time"` // "HH:MM"
	Timezone string `mapstructure:"timezone"`
}

// AnimationConfig contains UI phase transition delays in milliseconds.
// These sequence overlay/panel enter and exit settling; they are a
// presentation concern and may be zero.
type AnimationConfig struct {
	EnterDelayMs int `mapstructure:"enter_delay_ms"`
	ExitDelayMs  int `mapstructure:"exit_delay_ms"`
}

// CelebrationConfig controls how long celebratory animation signals stay set.
type CelebrationConfig struct {
	ClearDelayMs int `mapstructure:"clear_delay_ms"`
}

// Load reads configuration from file and environment variables.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/kindcoins/")
	}

	setDefaults(v)

	// Bind specific environment variables (explicit bindings for 12-factor app compliance)
	// Server configuration
	_ = v.BindEnv("server.port", "SERVER_PORT")
	_ = v.BindEnv("server.environment", "SERVER_ENVIRONMENT")

	// Store configuration
	_ = v.BindEnv("database.driver", "DATABASE_DRIVER")
	_ = v.BindEnv("database.sqlite.dsn", "SQLITE_DSN")
	_ = v.BindEnv("database.postgres.host", "POSTGRES_HOST")
	_ = v.BindEnv("database.postgres.port", "POSTGRES_PORT")
	_ = v.BindEnv("database.postgres.database", "POSTGRES_DB")
	_ = v.BindEnv("database.postgres.user", "POSTGRES_USER")
	_ = v.BindEnv("database.postgres.password", "POSTGRES_PASSWORD")
	_ = v.BindEnv("database.postgres.ssl_mode", "POSTGRES_SSL_MODE")

	// Redis configuration
	_ = v.BindEnv("database.redis.enabled", "REDIS_ENABLED")
	_ = v.BindEnv("database.redis.host", "REDIS_HOST")
	_ = v.BindEnv("database.redis.port", "REDIS_PORT")
	_ = v.BindEnv("database.redis.password", "REDIS_PASSWORD")
	_ = v.BindEnv("database.redis.db", "REDIS_DB")
	_ = v.BindEnv("database.redis.pool_size", "REDIS_POOL_SIZE")

	// Logging configuration
	_ = v.BindEnv("logging.level", "LOG_LEVEL")
	_ = v.BindEnv("logging.format", "LOG_FORMAT")

	// Scheduler configuration
	_ = v.BindEnv("scheduler.enabled", "SCHEDULER_ENABLED")
	_ = v.BindEnv("scheduler.time", "SCHEDULER_TIME")
	_ = v.BindEnv("scheduler.timezone", "SCHEDULER_TIMEZONE")

	if err := v.ReadInConfig(); err != nil {
		// The defaults form a complete in-memory configuration; a missing
		// file is only fatal when one was named explicitly.
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound || configPath != "" {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults registers defaults so the service runs with no config file at all.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.environment", "development")
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.sqlite.dsn", "file::memory:?cache=shared")
	v.SetDefault("database.redis.enabled", false)
	v.SetDefault("database.redis.port", 6379)
	v.SetDefault("database.redis.pool_size", 10)
	v.SetDefault("database.redis.ttl", 30)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.port", 9090)
	v.SetDefault("metrics.path", "/metrics")
	v.SetDefault("scheduler.enabled", true)
	v.SetDefault("scheduler.time", "00:05")
	v.SetDefault("scheduler.timezone", "UTC")
	v.SetDefault("animation.enter_delay_ms", 50)
	v.SetDefault("animation.exit_delay_ms", 300)
	v.SetDefault("celebration.clear_delay_ms", 2000)
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "sqlite":
		if c.Database.SQLite.DSN == "" {
			return fmt.Errorf("database.sqlite.dsn is required")
		}
	case "postgres":
		if c.Database.Postgres.Host == "" {
			return fmt.Errorf("database.postgres.host is required")
		}
		if c.Database.Postgres.Database == "" {
			return fmt.Errorf("database.postgres.database is required")
		}
		if c.Database.Postgres.User == "" {
			return fmt.Errorf("database.postgres.user is required")
		}
	default:
		return fmt.Errorf("unsupported database.driver %q (valid: sqlite, postgres)", c.Database.Driver)
	}
	if c.Database.Redis.Enabled && c.Database.Redis.Host == "" {
		return fmt.Errorf("database.redis.host is required when redis is enabled")
	}
	if c.Animation.EnterDelayMs < 0 || c.Animation.ExitDelayMs < 0 {
		return fmt.Errorf("animation delays must not be negative")
	}
	return nil
}

// EnterDelay returns the panel/overlay enter settle delay.
func (c *AnimationConfig) EnterDelay() time.Duration {
	return time.Duration(c.EnterDelayMs) * time.Millisecond
}

// ExitDelay returns the panel/overlay exit settle delay.
func (c *AnimationConfig) ExitDelay() time.Duration {
	return time.Duration(c.ExitDelayMs) * time.Millisecond
}

// ClearDelay returns how long celebration signals stay visible.
func (c *CelebrationConfig) ClearDelay() time.Duration {
	return time.Duration(c.ClearDelayMs) * time.Millisecond
}

// CacheTTL returns the overview cache TTL.
func (c *RedisConfig) CacheTTL() time.Duration {
	return time.Duration(c.TTL) * time.Second
}

// GetLocation returns the timezone location for the scheduler.
func (c *SchedulerConfig) GetLocation() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}
