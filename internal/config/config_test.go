package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Server.APIBaseURL == "" {
		t.Error("expected default api_base_url")
	}
	if cfg.Assistant.Backend != "platform" {
		t.Errorf("expected default assistant backend=platform, got %s", cfg.Assistant.Backend)
	}
	if cfg.Assistant.RateBurst != 3 {
		t.Errorf("expected rate_burst=3, got %d", cfg.Assistant.RateBurst)
	}
}

func TestLoadFromFile(t *testing.T) {
	// Create temp config file
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.toml")

	content := `
[server]
api_base_url = "http://localhost:8080/api"
socket_url = "ws://localhost:8080/socket"
auth_token = "tok-123"

[assistant]
backend = "direct"
endpoint = "http://custom:11434"
model = "mistral"
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Server.APIBaseURL != "http://localhost:8080/api" {
		t.Errorf("expected custom api url, got %s", cfg.Server.APIBaseURL)
	}
	if cfg.Server.AuthToken != "tok-123" {
		t.Errorf("expected auth token from file, got %s", cfg.Server.AuthToken)
	}
	if cfg.Assistant.Backend != "direct" {
		t.Errorf("expected assistant backend=direct, got %s", cfg.Assistant.Backend)
	}
	if cfg.Assistant.Model != "mistral" {
		t.Errorf("expected assistant model=mistral, got %s", cfg.Assistant.Model)
	}
}

func TestLoadWithEnvOverrides(t *testing.T) {
	// Set env vars
	os.Setenv("FREECHAT_SOCKET_URL", "ws://env:9999/socket")
	os.Setenv("FREECHAT_ASSISTANT_TEMPERATURE", "0.2")
	defer func() {
		os.Unsetenv("FREECHAT_SOCKET_URL")
		os.Unsetenv("FREECHAT_ASSISTANT_TEMPERATURE")
	}()

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Server.SocketURL != "ws://env:9999/socket" {
		t.Errorf("expected env override socket url, got %s", cfg.Server.SocketURL)
	}
	if cfg.Assistant.Temperature != 0.2 {
		t.Errorf("expected env override temperature=0.2, got %f", cfg.Assistant.Temperature)
	}
}

func TestLoadNonExistentFile(t *testing.T) {
	cfg, err := Load("/nonexistent/path/config.toml")
	if err != nil {
		t.Fatalf("Load() should tolerate a missing file, got error: %v", err)
	}
	if cfg.Server.APIBaseURL != DefaultConfig().Server.APIBaseURL {
		t.Error("expected defaults when config file is missing")
	}
}

func TestLoadInvalidEnvValuesIgnored(t *testing.T) {
	os.Setenv("FREECHAT_ASSISTANT_RATE_BURST", "not-a-number")
	defer os.Unsetenv("FREECHAT_ASSISTANT_RATE_BURST")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Assistant.RateBurst != DefaultConfig().Assistant.RateBurst {
		t.Errorf("invalid env value should keep default, got %d", cfg.Assistant.RateBurst)
	}
}
