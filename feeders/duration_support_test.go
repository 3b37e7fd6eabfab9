package feeders

import (
	"os"
	"testing"
	"time"
)

// durationTestConfig mirrors the shape of HubConfig's several *Interval /
// *Timeout fields: plain time.Duration, populated from a string literal.
type durationTestConfig struct {
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" yaml:"request_timeout" json:"request_timeout" toml:"request_timeout"`
	CacheTTL       time.Duration `env:"CACHE_TTL" yaml:"cache_ttl" json:"cache_ttl" toml:"cache_ttl"`
}

func TestEnvFeeder_TimeDuration(t *testing.T) {
	t.Setenv("REQUEST_TIMEOUT", "30s")
	t.Setenv("CACHE_TTL", "5m")

	config := &durationTestConfig{}
	feeder := NewEnvFeeder()
	if err := feeder.Feed(config); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if config.RequestTimeout != 30*time.Second {
		t.Errorf("expected RequestTimeout 30s, got %v", config.RequestTimeout)
	}
	if config.CacheTTL != 5*time.Minute {
		t.Errorf("expected CacheTTL 5m, got %v", config.CacheTTL)
	}
}

func TestYamlFeeder_TimeDuration(t *testing.T) {
	path := writeTempYAML(t, "request_timeout: 45s\ncache_ttl: 10m\n")

	config := &durationTestConfig{}
	feeder := NewYamlFeeder(path)
	if err := feeder.Feed(config); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if config.RequestTimeout != 45*time.Second {
		t.Errorf("expected RequestTimeout 45s, got %v", config.RequestTimeout)
	}
	if config.CacheTTL != 10*time.Minute {
		t.Errorf("expected CacheTTL 10m, got %v", config.CacheTTL)
	}
}

func TestYamlFeeder_TimeDuration_InvalidFormat(t *testing.T) {
	path := writeTempYAML(t, "request_timeout: invalid_duration\n")

	config := &durationTestConfig{}
	feeder := NewYamlFeeder(path)
	err := feeder.Feed(config)
	if err == nil {
		t.Fatal("expected an error for an invalid duration literal")
	}
}

func TestJsonFeeder_TimeDuration(t *testing.T) {
	jsonFile := "/tmp/test_duration.json"
	if err := os.WriteFile(jsonFile, []byte(`{"request_timeout": "1h", "cache_ttl": "15m"}`), 0644); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}
	defer os.Remove(jsonFile)

	config := &durationTestConfig{}
	feeder := NewJsonFeeder(jsonFile)
	if err := feeder.Feed(config); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if config.RequestTimeout != time.Hour {
		t.Errorf("expected RequestTimeout 1h, got %v", config.RequestTimeout)
	}
	if config.CacheTTL != 15*time.Minute {
		t.Errorf("expected CacheTTL 15m, got %v", config.CacheTTL)
	}
}

func TestTomlFeeder_TimeDuration(t *testing.T) {
	tomlFile := "/tmp/test_duration.toml"
	if err := os.WriteFile(tomlFile, []byte("request_timeout = \"2h\"\ncache_ttl = \"30m\"\n"), 0644); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}
	defer os.Remove(tomlFile)

	config := &durationTestConfig{}
	feeder := NewTomlFeeder(tomlFile)
	if err := feeder.Feed(config); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if config.RequestTimeout != 2*time.Hour {
		t.Errorf("expected RequestTimeout 2h, got %v", config.RequestTimeout)
	}
	if config.CacheTTL != 30*time.Minute {
		t.Errorf("expected CacheTTL 30m, got %v", config.CacheTTL)
	}
}
