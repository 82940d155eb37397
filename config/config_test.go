package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

const sampleYAML = `
reddit:
  client_id: file-id
  client_secret: file-secret
  user_agent: "collector/1.0"
  timeout: 20s
  rate_limit: 60
gnews:
  api_key: file-key
  rate_limit: 10
otel:
  enabled: true
  service_name: collectors-test
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "connectors.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadParsesYAML(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleYAML))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Reddit.ClientID != "file-id" {
		t.Errorf("Reddit.ClientID = %q", cfg.Reddit.ClientID)
	}
	if cfg.Reddit.Timeout != 20*time.Second {
		t.Errorf("Reddit.Timeout = %v", cfg.Reddit.Timeout)
	}
	if cfg.GNews.RateLimit != 10 {
		t.Errorf("GNews.RateLimit = %d", cfg.GNews.RateLimit)
	}
	if !cfg.OTel.Enabled || cfg.OTel.ServiceName != "collectors-test" {
		t.Errorf("OTel = %+v", cfg.OTel)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	t.Setenv("REDDIT_CLIENT_ID", "env-id")
	t.Setenv("GNEWS_API_KEY", "env-key")
	t.Setenv("TELEGRAM_API_ID", "12345")

	cfg, err := Load(writeConfig(t, sampleYAML))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Reddit.ClientID != "env-id" {
		t.Errorf("Reddit.ClientID = %q, env should win", cfg.Reddit.ClientID)
	}
	if cfg.Reddit.ClientSecret != "file-secret" {
		t.Errorf("Reddit.ClientSecret = %q, file value should remain", cfg.Reddit.ClientSecret)
	}
	if cfg.GNews.APIKey != "env-key" {
		t.Errorf("GNews.APIKey = %q", cfg.GNews.APIKey)
	}
	if cfg.Telegram.APIID != 12345 {
		t.Errorf("Telegram.APIID = %d", cfg.Telegram.APIID)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
