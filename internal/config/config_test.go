package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "{}"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Port != 5000 {
		t.Errorf("default port = %d, want 5000", cfg.Server.Port)
	}
	if cfg.Upstream.MaxMessages != 2 {
		t.Errorf("default max_messages = %d, want 2", cfg.Upstream.MaxMessages)
	}
	if cfg.Upstream.MaxDuration != 5*time.Minute {
		t.Errorf("default max_duration = %v, want 5m", cfg.Upstream.MaxDuration)
	}
	if cfg.OpenAI.Model != "gpt-4o-mini" {
		t.Errorf("default model = %q", cfg.OpenAI.Model)
	}
	if cfg.KafkaEnabled() {
		t.Error("kafka enabled with no brokers configured")
	}
}

func TestLoadOverrides(t *testing.T) {
	content := `
server:
  port: 9000
upstream:
  max_messages: 5
  max_duration: 30s
kafka:
  brokers: localhost:9092
session:
  ttl: 1h
`
	cfg, err := Load(writeConfig(t, content))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Port != 9000 {
		t.Errorf("port = %d, want 9000", cfg.Server.Port)
	}
	if cfg.Upstream.MaxMessages != 5 {
		t.Errorf("max_messages = %d, want 5", cfg.Upstream.MaxMessages)
	}
	if cfg.Upstream.MaxDuration != 30*time.Second {
		t.Errorf("max_duration = %v, want 30s", cfg.Upstream.MaxDuration)
	}
	if !cfg.KafkaEnabled() {
		t.Error("kafka not enabled with brokers configured")
	}
	if cfg.Session.TTL != time.Hour {
		t.Errorf("ttl = %v, want 1h", cfg.Session.TTL)
	}
	// Untouched sections keep their defaults.
	if cfg.Footium.GraphQLURL == "" {
		t.Error("footium graphql_url default lost")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("Load of missing file succeeded")
	}
}

func TestAPIKeyFromEnv(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	cfg, err := Load(writeConfig(t, "{}"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.OpenAI.APIKey != "sk-test" {
		t.Errorf("api key = %q, want sk-test", cfg.OpenAI.APIKey)
	}
}
