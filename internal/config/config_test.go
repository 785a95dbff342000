package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func validConfig() Config {
	cfg := Config{
		HTTP:      HTTPConfig{Port: 8080},
		Embedding: EmbeddingConfig{Model: "text-embedding-3-small"},
	}
	cfg.ApplyDefaults()
	return cfg
}

func TestApplyDefaults(t *testing.T) {
	cfg := validConfig()

	if cfg.Cache.Driver != CacheDriverMemory {
		t.Errorf("expected memory cache by default, got %q", cfg.Cache.Driver)
	}
	if cfg.Database.RetryAttempts != 3 || cfg.Database.Path == "" {
		t.Errorf("unexpected database defaults: %+v", cfg.Database)
	}
	if cfg.Triage.Threshold != 0.75 || cfg.Triage.TopK != 10 || cfg.Triage.DisplayLimit != 3 {
		t.Errorf("unexpected triage defaults: %+v", cfg.Triage)
	}
	if cfg.Triage.PreviewLength != 200 {
		t.Errorf("expected preview 200, got %d", cfg.Triage.PreviewLength)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_InvalidPort(t *testing.T) {
	cfg := validConfig()
	cfg.HTTP.Port = 0

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for invalid port")
	}
}

func TestValidate_CacheDriver(t *testing.T) {
	tests := []struct {
		name    string
		driver  string
		addrs   []string
		wantErr string
	}{
		{"memory", CacheDriverMemory, nil, ""},
		{"none", CacheDriverNone, nil, ""},
		{"redis with addrs", CacheDriverRedis, []string{"localhost:6379"}, ""},
		{"redis without addrs", CacheDriverRedis, nil, "cache.addrs is required"},
		{"unknown", "memcached", nil, `cache.driver must be "redis", "memory" or "none", got "memcached"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			cfg.Cache.Driver = tt.driver
			cfg.Cache.Addrs = tt.addrs

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestValidate_Triage(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"threshold above 1", func(c *Config) { c.Triage.Threshold = 1.5 }},
		{"negative threshold", func(c *Config) { c.Triage.Threshold = -0.1 }},
		{"preview too short", func(c *Config) { c.Triage.PreviewLength = 100 }},
		{"preview too long", func(c *Config) { c.Triage.PreviewLength = 301 }},
		{"display limit above top k", func(c *Config) { c.Triage.DisplayLimit = 20 }},
		{"missing model", func(c *Config) { c.Embedding.Model = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestParse_ExpandsEnv(t *testing.T) {
	t.Setenv("MEDTRIAGE_TEST_KEY", "sk-test")

	cfg, err := Parse([]byte(`
http:
  port: ${MEDTRIAGE_TEST_PORT:-9090}
embedding:
  model: text-embedding-3-small
  api_key: ${MEDTRIAGE_TEST_KEY}
triage:
  threshold: 0.8
`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.HTTP.Port != 9090 {
		t.Errorf("expected default port 9090, got %d", cfg.HTTP.Port)
	}
	if cfg.Embedding.APIKey != "sk-test" {
		t.Errorf("expected expanded api key, got %q", cfg.Embedding.APIKey)
	}
	if cfg.Triage.Threshold != 0.8 {
		t.Errorf("expected threshold 0.8, got %v", cfg.Triage.Threshold)
	}
}

func TestParse_InvalidYAML(t *testing.T) {
	if _, err := Parse([]byte("http: [")); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.yaml")
	data := []byte("http:\n  port: 8081\nembedding:\n  model: m\ncache:\n  driver: none\n")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.HTTP.Port != 8081 || cfg.Cache.Driver != CacheDriverNone {
		t.Errorf("unexpected config: %+v", cfg)
	}
}

func TestLoad_LocalConfig(t *testing.T) {
	cfg, err := Load("local")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.HTTP.Port == 0 {
		t.Error("expected port from local config")
	}
}

func TestGetEnv(t *testing.T) {
	t.Setenv("ENV", "")
	if got := GetEnv(); got != "local" {
		t.Errorf("expected local, got %q", got)
	}
	t.Setenv("ENV", "prod")
	if got := GetEnv(); got != "prod" {
		t.Errorf("expected prod, got %q", got)
	}
}
