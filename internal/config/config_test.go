package config

import (
	"os"
	"path/filepath"
	"testing"
)

func validConfig() Config {
	cfg := Config{
		HTTP:     HTTPConfig{Port: 8080},
		Database: DatabaseConfig{Driver: DriverValkey, Addrs: []string{"localhost:6379"}},
	}
	cfg.ApplyDefaults()
	return cfg
}

func TestValidate_InvalidPort(t *testing.T) {
	cfg := validConfig()
	cfg.HTTP.Port = 0

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for invalid port")
	}
}

func TestValidate_MissingValkeyAddrs(t *testing.T) {
	cfg := validConfig()
	cfg.Database.Addrs = nil

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing valkey addrs")
	}
}

func TestValidate_MemoryDriverNeedsNoAddrs(t *testing.T) {
	cfg := validConfig()
	cfg.Database.Driver = DriverMemory
	cfg.Database.Addrs = nil

	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_UnknownDriver(t *testing.T) {
	cfg := validConfig()
	cfg.Database.Driver = "postgres"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for unknown driver")
	}
	expected := `database.driver must be "valkey" or "memory", got "postgres"`
	if err.Error() != expected {
		t.Errorf("unexpected error message:\ngot:  %q\nwant: %q", err.Error(), expected)
	}
}

func TestValidate_Threshold(t *testing.T) {
	tests := []struct {
		threshold float64
		wantErr   bool
	}{
		{0.85, false},
		{1, false},
		{0.01, false},
		{-0.5, true},
		{1.5, true},
	}
	for _, tt := range tests {
		cfg := validConfig()
		cfg.Matching.Threshold = tt.threshold
		err := cfg.Validate()
		if (err != nil) != tt.wantErr {
			t.Errorf("threshold %g: err = %v, wantErr %v", tt.threshold, err, tt.wantErr)
		}
	}
}

func TestValidate_PageSize(t *testing.T) {
	cfg := validConfig()
	cfg.SeoulAPI.PageSize = 5000

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for page size above 1000")
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 10 {
		t.Errorf("expected ReadTimeoutSec=10, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.HTTP.WriteTimeoutSec != 30 {
		t.Errorf("expected WriteTimeoutSec=30, got %d", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.Database.Driver != DriverValkey {
		t.Errorf("expected Driver=valkey, got %q", cfg.Database.Driver)
	}
	if cfg.Database.ReadinessTimeout != 10 {
		t.Errorf("expected ReadinessTimeout=10, got %d", cfg.Database.ReadinessTimeout)
	}
	if cfg.Matching.Threshold != DefaultMatchThreshold {
		t.Errorf("expected Threshold=0.85, got %g", cfg.Matching.Threshold)
	}
	if cfg.SeoulAPI.PageSize != 1000 || cfg.SeoulAPI.MaxRecords != 10000 {
		t.Errorf("expected page size 1000 and max records 10000, got %d/%d",
			cfg.SeoulAPI.PageSize, cfg.SeoulAPI.MaxRecords)
	}
	if cfg.SeoulAPI.Service != "OpenAptInfo" {
		t.Errorf("expected Service=OpenAptInfo, got %q", cfg.SeoulAPI.Service)
	}
	if cfg.Sources.SnapshotPrefix != "aptdex:metadata" {
		t.Errorf("expected SnapshotPrefix='aptdex:metadata', got %q", cfg.Sources.SnapshotPrefix)
	}
	if cfg.Export.Dir != "output" {
		t.Errorf("expected Export.Dir='output', got %q", cfg.Export.Dir)
	}
}

func TestApplyDefaults_NoOverride(t *testing.T) {
	cfg := Config{
		HTTP:     HTTPConfig{ReadTimeoutSec: 30, WriteTimeoutSec: 60, ShutdownSec: 5},
		Database: DatabaseConfig{Driver: DriverMemory, ReadinessTimeout: 15},
		Matching: MatchingConfig{Threshold: 0.9},
		Sources:  SourcesConfig{SnapshotPrefix: "custom"},
	}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 30 {
		t.Errorf("expected ReadTimeoutSec=30, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.HTTP.WriteTimeoutSec != 60 {
		t.Errorf("expected WriteTimeoutSec=60, got %d", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.Database.Driver != DriverMemory {
		t.Errorf("expected Driver=memory, got %q", cfg.Database.Driver)
	}
	if cfg.Matching.Threshold != 0.9 {
		t.Errorf("expected Threshold=0.9, got %g", cfg.Matching.Threshold)
	}
	if cfg.Sources.SnapshotPrefix != "custom" {
		t.Errorf("expected SnapshotPrefix='custom', got %q", cfg.Sources.SnapshotPrefix)
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("APTDEX_TEST_PORT", "9090")

	tests := []struct {
		in, want string
	}{
		{"port: ${APTDEX_TEST_PORT}", "port: 9090"},
		{"port: ${APTDEX_TEST_PORT:-8080}", "port: 9090"},
		{"port: ${APTDEX_TEST_UNSET:-8080}", "port: 8080"},
		{"key: ${APTDEX_TEST_UNSET}", "key: "},
		{"plain: value", "plain: value"},
	}
	for _, tt := range tests {
		if got := string(expandEnvVars([]byte(tt.in))); got != tt.want {
			t.Errorf("expandEnvVars(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestLoadFile(t *testing.T) {
	t.Setenv("APTDEX_TEST_PASSWORD", "s3cret")

	path := filepath.Join(t.TempDir(), "test.yaml")
	data := []byte(`
http:
  port: 8081
database:
  driver: memory
sources:
  metadata_path: meta.csv
matching:
  threshold: 0.9
refresh:
  password: ${APTDEX_TEST_PASSWORD}
`)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.HTTP.Port != 8081 {
		t.Errorf("port = %d, want 8081", cfg.HTTP.Port)
	}
	if cfg.Sources.MetadataPath != "meta.csv" {
		t.Errorf("metadata path = %q", cfg.Sources.MetadataPath)
	}
	if cfg.Sources.TradesPath != "data/seoul_district_main_apt.csv" {
		t.Errorf("trades path default = %q", cfg.Sources.TradesPath)
	}
	if cfg.Matching.Threshold != 0.9 {
		t.Errorf("threshold = %g, want 0.9", cfg.Matching.Threshold)
	}
	if cfg.Refresh.Password != "s3cret" {
		t.Errorf("password = %q, want expanded value", cfg.Refresh.Password)
	}
}

func TestLoadFile_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("http:\n  port: 0\ndatabase:\n  driver: memory\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFile(path); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("APTDEX_TEST_DOTENV=from-file\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("APTDEX_TEST_DOTENV", "")
	os.Unsetenv("APTDEX_TEST_DOTENV") //nolint:errcheck // restored by t.Setenv cleanup

	if err := loadDotEnv(path); err != nil {
		t.Fatalf("loadDotEnv: %v", err)
	}
	if got := os.Getenv("APTDEX_TEST_DOTENV"); got != "from-file" {
		t.Errorf("APTDEX_TEST_DOTENV = %q, want from-file", got)
	}

	if err := loadDotEnv(filepath.Join(dir, "missing.env")); err != nil {
		t.Errorf("missing .env must not fail: %v", err)
	}
}

func TestLoadFile_LocalDefaults(t *testing.T) {
	for _, key := range []string{"APTDEX_METADATA_CSV", "APTDEX_TRADES_CSV", "APTDEX_HTTP_PORT", "APTDEX_DB_DRIVER"} {
		t.Setenv(key, "")
	}

	cfg, err := LoadFile(findConfigPath("local"))
	if err != nil {
		t.Fatalf("LoadFile(local): %v", err)
	}
	if cfg.Sources.MetadataPath != "data/seoul_apartments_metadata.csv" {
		t.Errorf("metadata path = %q", cfg.Sources.MetadataPath)
	}
	if cfg.Sources.TradesPath != "data/seoul_district_main_apt.csv" {
		t.Errorf("trades path = %q, want the transaction dataset", cfg.Sources.TradesPath)
	}
	if cfg.Database.Driver != DriverMemory {
		t.Errorf("driver = %q, want memory", cfg.Database.Driver)
	}
}
