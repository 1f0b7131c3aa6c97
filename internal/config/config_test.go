// Package config provides unit tests for process configuration.
package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/whhaicheng/SimDesk/internal/infra/database"
)

// chdirTemp runs the test in an empty directory so no stray .env is read.
func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	return dir
}

// TestLoad_Defaults tests loading with no file and no environment.
func TestLoad_Defaults(t *testing.T) {
	chdirTemp(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Database.Dialect != "sqlite" {
		t.Errorf("Dialect = %s, want sqlite", cfg.Database.Dialect)
	}
	if cfg.Database.Path != filepath.Join("data", "simdesk.db") {
		t.Errorf("Database.Path = %s", cfg.Database.Path)
	}
	if cfg.PreferencesPath != filepath.Join("data", "preferences.json") {
		t.Errorf("PreferencesPath = %s", cfg.PreferencesPath)
	}
	if cfg.Cache.Size != 256 || cfg.Cache.TTL != 5*time.Minute {
		t.Errorf("Cache = %+v", cfg.Cache)
	}
	if cfg.Redis.Enabled() {
		t.Error("Redis should be disabled by default")
	}
}

// TestLoad_YAMLAndEnv tests that environment variables override the file.
func TestLoad_YAMLAndEnv(t *testing.T) {
	dir := chdirTemp(t)

	path := filepath.Join(dir, "simdesk.yaml")
	content := `
data_dir: /var/lib/simdesk
database:
  dialect: postgres
  dsn: postgres://localhost/simdesk
log:
  level: debug
cache:
  size: 10
  ttl: 30s
redis:
  addr: localhost:6379
retention:
  schedule: "0 3 * * *"
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("SIMDESK_LOG_LEVEL", "warn")
	t.Setenv("SIMDESK_CACHE_SIZE", "20")
	t.Setenv("SIMDESK_CACHE_TTL", "bogus")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("Log.Level = %s, want warn", cfg.Log.Level)
	}
	if cfg.Cache.Size != 20 {
		t.Errorf("Cache.Size = %d, want 20", cfg.Cache.Size)
	}
	if cfg.Cache.TTL != 30*time.Second {
		t.Errorf("Cache.TTL = %v, want 30s (invalid env ignored)", cfg.Cache.TTL)
	}
	if cfg.Redis.Addr != "localhost:6379" {
		t.Errorf("Redis.Addr = %s", cfg.Redis.Addr)
	}
	if cfg.PreferencesPath != filepath.Join("/var/lib/simdesk", "preferences.json") {
		t.Errorf("PreferencesPath = %s", cfg.PreferencesPath)
	}

	opts, err := cfg.Database.Options()
	if err != nil {
		t.Fatalf("Options() failed: %v", err)
	}
	if opts.Dialect != database.DialectPostgres || opts.DSN != "postgres://localhost/simdesk" {
		t.Errorf("Options() = %+v", opts)
	}
}

// TestLoad_DotEnv tests reading a .env file from the working directory.
func TestLoad_DotEnv(t *testing.T) {
	dir := chdirTemp(t)
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("SIMDESK_REPORT_DIR=/tmp/reports\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Unsetenv("SIMDESK_REPORT_DIR") })

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Report.OutputDir != "/tmp/reports" {
		t.Errorf("Report.OutputDir = %s, want /tmp/reports", cfg.Report.OutputDir)
	}
}

// TestLoad_Errors tests file and validation failures.
func TestLoad_Errors(t *testing.T) {
	dir := chdirTemp(t)

	if _, err := Load(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("Load() with missing file should fail")
	}

	bad := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(bad, []byte("database: [unclosed"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(bad); !errors.Is(err, ErrInvalidConfiguration) {
		t.Errorf("Load(bad yaml) error = %v, want ErrInvalidConfiguration", err)
	}

	t.Setenv("SIMDESK_DB_DIALECT", "oracle")
	if _, err := Load(""); !errors.Is(err, ErrInvalidConfiguration) {
		t.Errorf("Load(oracle) error = %v, want ErrInvalidConfiguration", err)
	}
}

// TestConfig_Validate tests section validation.
func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"memory store", func(c *Config) { c.Database.Dialect = "memory" }, false},
		{"mysql without dsn", func(c *Config) { c.Database.Dialect = "mysql" }, true},
		{"sqlserver with dsn", func(c *Config) {
			c.Database.Dialect = "mssql"
			c.Database.DSN = "sqlserver://sa@localhost"
		}, false},
		{"negative conns", func(c *Config) { c.Database.MaxOpenConns = -1 }, true},
		{"unknown level", func(c *Config) { c.Log.Level = "trace" }, true},
		{"cache without ttl", func(c *Config) { c.Cache.TTL = 0 }, true},
		{"cache disabled", func(c *Config) { c.Cache.Size = 0; c.Cache.TTL = 0 }, false},
		{"redis db range", func(c *Config) { c.Redis.DB = 16 }, true},
		{"bad schedule", func(c *Config) { c.Retention.Schedule = "every day" }, true},
		{"no schedule", func(c *Config) { c.Retention.Schedule = "" }, false},
		{"no data dir", func(c *Config) { c.DataDir = "" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.mutate(c)
			err := c.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidConfiguration) {
				t.Errorf("Validate() error = %v, want ErrInvalidConfiguration", err)
			}
		})
	}
}
