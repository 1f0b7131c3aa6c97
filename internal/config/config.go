// Package config loads process configuration for SimDesk.
//
// Sources are applied in order: built-in defaults, an optional YAML file,
// a .env file in the working directory, then SIMDESK_* environment variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	"github.com/whhaicheng/SimDesk/internal/infra/database"
)

// ErrInvalidConfiguration is returned when configuration is invalid.
var ErrInvalidConfiguration = errors.New("invalid configuration")

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "SIMDESK_"

// Config is the complete process configuration.
type Config struct {
	// DataDir holds the database file, logs, preferences and reports
	// unless overridden below.
	DataDir string `yaml:"data_dir"`

	Database  DatabaseConfig  `yaml:"database"`
	Log       LogConfig       `yaml:"log"`
	Cache     CacheConfig     `yaml:"cache"`
	Redis     RedisConfig     `yaml:"redis"`
	Retention RetentionConfig `yaml:"retention"`
	Report    ReportConfig    `yaml:"report"`
	Metrics   MetricsConfig   `yaml:"metrics"`

	// PreferencesPath is the JSON file holding user preferences.
	PreferencesPath string `yaml:"preferences_path"`
}

// DatabaseConfig selects the run store.
type DatabaseConfig struct {
	// Dialect is one of sqlite, postgres, mysql, sqlserver, or memory.
	Dialect string `yaml:"dialect"`

	// DSN is required for server dialects.
	DSN string `yaml:"dsn"`

	// Path is the SQLite database file.
	Path string `yaml:"path"`

	MaxOpenConns int `yaml:"max_open_conns"`
}

// DialectMemory keeps runs and projects in process memory only.
const DialectMemory = "memory"

// IsMemory reports whether the in-memory repositories are selected.
func (c *DatabaseConfig) IsMemory() bool {
	return strings.EqualFold(c.Dialect, DialectMemory)
}

// Validate validates the database configuration.
func (c *DatabaseConfig) Validate() error {
	if c.IsMemory() {
		return nil
	}
	d, err := database.ParseDialect(c.Dialect)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfiguration, err)
	}
	if d == database.DialectSQLite {
		if c.Path == "" {
			return fmt.Errorf("%w: database path is required for sqlite", ErrInvalidConfiguration)
		}
	} else if c.DSN == "" {
		return fmt.Errorf("%w: database dsn is required for %s", ErrInvalidConfiguration, d)
	}
	if c.MaxOpenConns < 0 {
		return fmt.Errorf("%w: max_open_conns cannot be negative", ErrInvalidConfiguration)
	}
	return nil
}

// Options converts the configuration into database open options.
func (c *DatabaseConfig) Options() (database.Options, error) {
	d, err := database.ParseDialect(c.Dialect)
	if err != nil {
		return database.Options{}, err
	}
	dsn := c.DSN
	if d == database.DialectSQLite {
		dsn = c.Path
	}
	return database.Options{Dialect: d, DSN: dsn, MaxOpenConns: c.MaxOpenConns}, nil
}

// LogConfig configures logging.
type LogConfig struct {
	// Level is debug, info, warn or error.
	Level string `yaml:"level"`

	// Dir receives dated log files.
	Dir string `yaml:"dir"`
}

// Validate validates the log configuration.
func (c *LogConfig) Validate() error {
	switch strings.ToLower(c.Level) {
	case "debug", "info", "warn", "warning", "error":
		return nil
	default:
		return fmt.Errorf("%w: unknown log level: %s", ErrInvalidConfiguration, c.Level)
	}
}

// CacheConfig configures the run read cache. Size 0 disables it.
type CacheConfig struct {
	Size int           `yaml:"size"`
	TTL  time.Duration `yaml:"ttl"`
}

// Enabled reports whether the cache should be installed.
func (c *CacheConfig) Enabled() bool { return c.Size > 0 }

// Validate validates the cache configuration.
func (c *CacheConfig) Validate() error {
	if c.Size < 0 {
		return fmt.Errorf("%w: cache size cannot be negative", ErrInvalidConfiguration)
	}
	if c.Enabled() && c.TTL <= 0 {
		return fmt.Errorf("%w: cache ttl must be positive", ErrInvalidConfiguration)
	}
	return nil
}

// RedisConfig configures the event publisher. Empty Addr disables it.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// Enabled reports whether events go to Redis.
func (c *RedisConfig) Enabled() bool { return c.Addr != "" }

// Validate validates the redis configuration.
func (c *RedisConfig) Validate() error {
	if c.DB < 0 || c.DB > 15 {
		return fmt.Errorf("%w: redis db must be between 0 and 15", ErrInvalidConfiguration)
	}
	return nil
}

// RetentionConfig configures the background pruning job.
type RetentionConfig struct {
	// Schedule is a standard five-field cron expression or a descriptor
	// such as "@daily". Empty disables scheduled pruning.
	Schedule string `yaml:"schedule"`
}

// Validate validates the retention configuration.
func (c *RetentionConfig) Validate() error {
	if c.Schedule == "" {
		return nil
	}
	if _, err := cron.ParseStandard(c.Schedule); err != nil {
		return fmt.Errorf("%w: invalid retention schedule %q: %v", ErrInvalidConfiguration, c.Schedule, err)
	}
	return nil
}

// ReportConfig configures report output.
type ReportConfig struct {
	// OutputDir is used when preferences do not name a report directory.
	OutputDir string `yaml:"output_dir"`
}

// MetricsConfig configures the Prometheus endpoint served by the daemon.
type MetricsConfig struct {
	// ListenAddr such as ":9090". Empty disables the endpoint.
	ListenAddr string `yaml:"listen_addr"`
}

// Default returns the built-in configuration rooted at ./data.
func Default() *Config {
	return withDataDir(defaults())
}

func defaults() *Config {
	return &Config{
		DataDir:   "./data",
		Database:  DatabaseConfig{Dialect: string(database.DialectSQLite)},
		Log:       LogConfig{Level: "info"},
		Cache:     CacheConfig{Size: 256, TTL: 5 * time.Minute},
		Retention: RetentionConfig{Schedule: "@daily"},
	}
}

// withDataDir fills paths left empty from DataDir.
func withDataDir(c *Config) *Config {
	if c.Database.Path == "" {
		c.Database.Path = filepath.Join(c.DataDir, "simdesk.db")
	}
	if c.Log.Dir == "" {
		c.Log.Dir = filepath.Join(c.DataDir, "logs")
	}
	if c.PreferencesPath == "" {
		c.PreferencesPath = filepath.Join(c.DataDir, "preferences.json")
	}
	if c.Report.OutputDir == "" {
		c.Report.OutputDir = filepath.Join(c.DataDir, "reports")
	}
	return c
}

// Load builds the configuration. path may be empty, in which case no
// YAML file is read; a named file that does not exist is an error.
func Load(path string) (*Config, error) {
	cfg := defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("%w: parse %s: %v", ErrInvalidConfiguration, path, err)
		}
	}

	// .env is optional
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("Failed to load .env file", "error", err)
	}

	applyEnv(cfg)
	withDataDir(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(c *Config) {
	c.DataDir = getEnv("DATA_DIR", c.DataDir)
	c.Database.Dialect = getEnv("DB_DIALECT", c.Database.Dialect)
	c.Database.DSN = getEnv("DB_DSN", c.Database.DSN)
	c.Database.Path = getEnv("DB_PATH", c.Database.Path)
	c.Database.MaxOpenConns = getEnvAsInt("DB_MAX_OPEN_CONNS", c.Database.MaxOpenConns)
	c.Log.Level = getEnv("LOG_LEVEL", c.Log.Level)
	c.Log.Dir = getEnv("LOG_DIR", c.Log.Dir)
	c.Cache.Size = getEnvAsInt("CACHE_SIZE", c.Cache.Size)
	c.Cache.TTL = getEnvAsDuration("CACHE_TTL", c.Cache.TTL)
	c.Redis.Addr = getEnv("REDIS_ADDR", c.Redis.Addr)
	c.Redis.Password = getEnv("REDIS_PASSWORD", c.Redis.Password)
	c.Redis.DB = getEnvAsInt("REDIS_DB", c.Redis.DB)
	c.Retention.Schedule = getEnv("PRUNE_SCHEDULE", c.Retention.Schedule)
	c.Report.OutputDir = getEnv("REPORT_DIR", c.Report.OutputDir)
	c.Metrics.ListenAddr = getEnv("METRICS_ADDR", c.Metrics.ListenAddr)
	c.PreferencesPath = getEnv("PREFERENCES_PATH", c.PreferencesPath)
}

// Validate validates every section.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("%w: data_dir is required", ErrInvalidConfiguration)
	}
	if c.PreferencesPath == "" {
		return fmt.Errorf("%w: preferences_path is required", ErrInvalidConfiguration)
	}
	for _, v := range []interface{ Validate() error }{
		&c.Database, &c.Log, &c.Cache, &c.Redis, &c.Retention,
	} {
		if err := v.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(EnvPrefix + key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(EnvPrefix + key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		slog.Warn("Invalid integer in environment, using default", "key", EnvPrefix+key, "default", defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(EnvPrefix + key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		slog.Warn("Invalid duration in environment, using default", "key", EnvPrefix+key, "default", defaultValue)
		return defaultValue
	}
	return value
}
