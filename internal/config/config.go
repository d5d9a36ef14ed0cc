package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Database drivers.
const (
	DriverValkey = "valkey"
	DriverMemory = "memory"
)

// DefaultMatchThreshold is the name similarity a transaction needs to enrich a complex.
const DefaultMatchThreshold = 0.85

// Config holds the aptdex configuration.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	Sources  SourcesConfig  `yaml:"sources"`
	SeoulAPI SeoulAPIConfig `yaml:"seoul_api"`
	Matching MatchingConfig `yaml:"matching"`
	Refresh  RefreshConfig  `yaml:"refresh"`
	Export   ExportConfig   `yaml:"export"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// DatabaseConfig holds the snapshot store connection settings.
type DatabaseConfig struct {
	Driver           string   `yaml:"driver"` // valkey, memory (default: valkey)
	Addrs            []string `yaml:"addrs"`
	Username         string   `yaml:"username"`
	Password         string   `yaml:"password"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// SourcesConfig locates the input datasets.
type SourcesConfig struct {
	MetadataPath   string `yaml:"metadata_path"`
	TradesPath     string `yaml:"trades_path"`
	StationsPath   string `yaml:"stations_path"` // empty: built-in Seoul table
	SnapshotPrefix string `yaml:"snapshot_prefix"`
}

// SeoulAPIConfig holds the open-data API settings used by refresh and fetch.
type SeoulAPIConfig struct {
	BaseURL    string `yaml:"base_url"`
	APIKey     string `yaml:"api_key"`
	Service    string `yaml:"service"`
	PageSize   int    `yaml:"page_size"`
	MaxRecords int    `yaml:"max_records"`
	TimeoutSec int    `yaml:"timeout_sec"`
	MaxRetries int    `yaml:"max_retries"`
}

// Timeout returns the per-request timeout.
func (c SeoulAPIConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSec) * time.Second
}

// MatchingConfig holds reconciliation settings.
type MatchingConfig struct {
	Threshold float64 `yaml:"threshold"`
}

// RefreshConfig holds the refresh credential. An empty password disables refresh.
type RefreshConfig struct {
	Password string `yaml:"password"`
}

// ExportConfig holds offline export settings.
type ExportConfig struct {
	Dir string `yaml:"dir"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
// A .env file in the working directory is loaded first when present.
func Load(env string) (Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return Config{}, err
	}
	return LoadFile(findConfigPath(env))
}

// LoadFile reads configuration from the given YAML file.
func LoadFile(configPath string) (Config, error) {
	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 30
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Database.Driver == "" {
		c.Database.Driver = DriverValkey
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Sources.MetadataPath == "" {
		c.Sources.MetadataPath = "data/seoul_apartments_metadata.csv"
	}
	if c.Sources.TradesPath == "" {
		c.Sources.TradesPath = "data/seoul_district_main_apt.csv"
	}
	if c.Sources.SnapshotPrefix == "" {
		c.Sources.SnapshotPrefix = "aptdex:metadata"
	}
	if c.SeoulAPI.BaseURL == "" {
		c.SeoulAPI.BaseURL = "http://openapi.seoul.go.kr:8088"
	}
	if c.SeoulAPI.Service == "" {
		c.SeoulAPI.Service = "OpenAptInfo"
	}
	if c.SeoulAPI.PageSize <= 0 {
		c.SeoulAPI.PageSize = 1000
	}
	if c.SeoulAPI.MaxRecords <= 0 {
		c.SeoulAPI.MaxRecords = 10000
	}
	if c.SeoulAPI.TimeoutSec <= 0 {
		c.SeoulAPI.TimeoutSec = 30
	}
	if c.SeoulAPI.MaxRetries <= 0 {
		c.SeoulAPI.MaxRetries = 3
	}
	if c.Matching.Threshold == 0 {
		c.Matching.Threshold = DefaultMatchThreshold
	}
	if c.Export.Dir == "" {
		c.Export.Dir = "output"
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	switch c.Database.Driver {
	case DriverValkey:
		if len(c.Database.Addrs) == 0 {
			return errors.New("database.addrs is required for the valkey driver")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("database.driver must be %q or %q, got %q", DriverValkey, DriverMemory, c.Database.Driver)
	}
	if c.Matching.Threshold <= 0 || c.Matching.Threshold > 1 {
		return fmt.Errorf("matching.threshold must be in (0, 1], got %g", c.Matching.Threshold)
	}
	if c.SeoulAPI.PageSize > 1000 {
		return fmt.Errorf("seoul_api.page_size must be at most 1000, got %d", c.SeoulAPI.PageSize)
	}
	return nil
}

// loadDotEnv loads path into the process environment. A missing file is not
// an error; variables already set are kept.
func loadDotEnv(path string) error {
	err := godotenv.Load(path)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("load %s: %w", path, err)
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
