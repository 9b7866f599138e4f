// Package config holds the process configuration of the proteograph service.
// Values come from a YAML file, PROTEOGRAPH_* environment variables and defaults,
// all resolved through Viper.
package config

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/spf13/viper"
)

var (
	instance *Config
	mu       sync.RWMutex
)

// Config is the root configuration structure for the entire application.
type Config struct {
	Logger LoggerConfig `mapstructure:"logger"`
	Neo4j  Neo4jConfig  `mapstructure:"neo4j"`
	HTTP   HTTPConfig   `mapstructure:"http"`
}

// ColorConfig defines the color settings for different log levels.
type ColorConfig struct {
	Debug  string `mapstructure:"debug" yaml:"debug"`
	Info   string `mapstructure:"info" yaml:"info"`
	Warn   string `mapstructure:"warn" yaml:"warn"`
	Error  string `mapstructure:"error" yaml:"error"`
	DPanic string `mapstructure:"dpanic" yaml:"dpanic"`
	Panic  string `mapstructure:"panic" yaml:"panic"`
	Fatal  string `mapstructure:"fatal" yaml:"fatal"`
}

// LoggerConfig holds all the configuration for the logger.
type LoggerConfig struct {
	Level       string      `mapstructure:"level" yaml:"level"`
	Format      string      `mapstructure:"format" yaml:"format"`
	AddSource   bool        `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string      `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string      `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int         `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int         `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int         `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool        `mapstructure:"compress" yaml:"compress"`
	Colors      ColorConfig `mapstructure:"colors" yaml:"colors"`
}

// Neo4jConfig holds the connection and pool settings for the graph database.
// The driver keeps its own connection pool; MaxPoolSize bounds the number of
// concurrent queries the service can have in flight.
type Neo4jConfig struct {
	URI                   string        `mapstructure:"uri"`
	Username              string        `mapstructure:"username"`
	Password              string        `mapstructure:"password"`
	Database              string        `mapstructure:"database"`
	MaxPoolSize           int           `mapstructure:"max_pool_size"`
	AcquisitionTimeout    time.Duration `mapstructure:"acquisition_timeout"`
	MaxConnectionLifetime time.Duration `mapstructure:"max_connection_lifetime"`
	QueryTimeout          time.Duration `mapstructure:"query_timeout"`
}

// GzipConfig controls response compression.
type GzipConfig struct {
	Enabled bool `mapstructure:"enabled"`
	MinSize int  `mapstructure:"min_size"`
}

// HTTPConfig holds the settings for the HTTP listener.
type HTTPConfig struct {
	Addr            string        `mapstructure:"addr"`
	StaticDir       string        `mapstructure:"static_dir"`
	MaxBodyBytes    int64         `mapstructure:"max_body_bytes"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	Gzip            GzipConfig    `mapstructure:"gzip"`
}

// SetDefaults registers the default value of every key so the service can run
// with nothing but credentials supplied.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.service_name", "proteograph")
	v.SetDefault("logger.max_size", 100)
	v.SetDefault("logger.max_backups", 3)
	v.SetDefault("logger.max_age", 28)
	v.SetDefault("logger.colors.debug", "cyan")
	v.SetDefault("logger.colors.info", "green")
	v.SetDefault("logger.colors.warn", "yellow")
	v.SetDefault("logger.colors.error", "red")
	v.SetDefault("logger.colors.dpanic", "magenta")
	v.SetDefault("logger.colors.panic", "magenta")
	v.SetDefault("logger.colors.fatal", "magenta")

	v.SetDefault("neo4j.uri", "neo4j://localhost:7687")
	v.SetDefault("neo4j.username", "neo4j")
	v.SetDefault("neo4j.database", "neo4j")
	v.SetDefault("neo4j.max_pool_size", 50)
	v.SetDefault("neo4j.acquisition_timeout", "30s")
	v.SetDefault("neo4j.max_connection_lifetime", "1h")
	v.SetDefault("neo4j.query_timeout", "30s")

	v.SetDefault("http.addr", ":8000")
	v.SetDefault("http.max_body_bytes", 1<<20)
	v.SetDefault("http.read_timeout", "15s")
	v.SetDefault("http.write_timeout", "60s")
	v.SetDefault("http.shutdown_timeout", "10s")
	v.SetDefault("http.gzip.enabled", true)
	v.SetDefault("http.gzip.min_size", 1024)
}

// Validate checks the configuration for values the service cannot start with.
func (c *Config) Validate() error {
	var errs []error
	if c.Neo4j.URI == "" {
		errs = append(errs, errors.New("neo4j.uri is required"))
	}
	if c.Neo4j.Username == "" {
		errs = append(errs, errors.New("neo4j.username is required"))
	}
	if c.Neo4j.MaxPoolSize <= 0 {
		errs = append(errs, fmt.Errorf("neo4j.max_pool_size must be positive, got %d", c.Neo4j.MaxPoolSize))
	}
	if c.Neo4j.QueryTimeout <= 0 {
		errs = append(errs, fmt.Errorf("neo4j.query_timeout must be positive, got %s", c.Neo4j.QueryTimeout))
	}
	if c.Neo4j.AcquisitionTimeout <= 0 {
		errs = append(errs, fmt.Errorf("neo4j.acquisition_timeout must be positive, got %s", c.Neo4j.AcquisitionTimeout))
	}
	if c.HTTP.Addr == "" {
		errs = append(errs, errors.New("http.addr is required"))
	}
	if c.HTTP.MaxBodyBytes <= 0 {
		errs = append(errs, fmt.Errorf("http.max_body_bytes must be positive, got %d", c.HTTP.MaxBodyBytes))
	}
	if c.HTTP.Gzip.MinSize < 0 {
		errs = append(errs, fmt.Errorf("http.gzip.min_size must not be negative, got %d", c.HTTP.Gzip.MinSize))
	}
	return errors.Join(errs...)
}

// Load unmarshals and validates the configuration held by v, and installs
// it as the global instance. An invalid configuration leaves the previous
// instance in place.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	Set(&cfg)
	return &cfg, nil
}

// Set replaces the global configuration instance.
func Set(cfg *Config) {
	mu.Lock()
	defer mu.Unlock()
	instance = cfg
}

// Get returns the loaded configuration instance.
func Get() *Config {
	mu.RLock()
	defer mu.RUnlock()
	if instance == nil {
		panic("Configuration not initialized. Call config.Load() in the root command.")
	}
	return instance
}
