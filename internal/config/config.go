// Package config handles configuration loading from TOML files and environment variables.
package config

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/BurntSushi/toml"
)

// Config is the root configuration structure.
type Config struct {
	Server    ServerConfig    `toml:"server"`
	Assistant AssistantConfig `toml:"assistant"`
}

// ServerConfig holds FreeDay backend settings.
type ServerConfig struct {
	APIBaseURL string `toml:"api_base_url"`
	SocketURL  string `toml:"socket_url"`
	AuthToken  string `toml:"auth_token"`
}

// AssistantConfig selects and configures the AI-assistant backend.
// Backend "platform" uses the FreeDay chatbot endpoint; "direct" talks to an
// OpenAI-compatible endpoint without going through the platform.
type AssistantConfig struct {
	Backend     string  `toml:"backend"`
	Endpoint    string  `toml:"endpoint"`
	APIKey      string  `toml:"api_key"`
	Model       string  `toml:"model"`
	Temperature float64 `toml:"temperature"`
	RateLimit   float64 `toml:"rate_limit"`
	RateBurst   int     `toml:"rate_burst"`
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			APIBaseURL: "https://api.freeday.app/api",
			SocketURL:  "wss://api.freeday.app/socket",
		},
		Assistant: AssistantConfig{
			Backend:     "platform",
			Endpoint:    "http://localhost:11434",
			Model:       "llama3",
			Temperature: 0.7,
			RateLimit:   2.0,
			RateBurst:   3,
		},
	}
}

// Load reads configuration from a TOML file and applies environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	// Load from file if it exists
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if _, err := toml.DecodeFile(path, cfg); err != nil {
				return nil, err
			}
		}
	}

	// Apply environment variable overrides
	applyEnvOverrides(cfg)

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the configuration.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("FREECHAT_API_URL"); v != "" {
		cfg.Server.APIBaseURL = v
	}

	if v := os.Getenv("FREECHAT_SOCKET_URL"); v != "" {
		cfg.Server.SocketURL = v
	}

	if v := os.Getenv("FREECHAT_TOKEN"); v != "" {
		cfg.Server.AuthToken = v
	}

	if v := os.Getenv("FREECHAT_ASSISTANT_BACKEND"); v != "" {
		cfg.Assistant.Backend = v
	}

	if v := os.Getenv("FREECHAT_ASSISTANT_ENDPOINT"); v != "" {
		cfg.Assistant.Endpoint = v
	}

	if v := os.Getenv("FREECHAT_ASSISTANT_API_KEY"); v != "" {
		cfg.Assistant.APIKey = v
	}

	if v := os.Getenv("FREECHAT_ASSISTANT_MODEL"); v != "" {
		cfg.Assistant.Model = v
	}

	if v := os.Getenv("FREECHAT_ASSISTANT_TEMPERATURE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Assistant.Temperature = f
		}
	}

	if v := os.Getenv("FREECHAT_ASSISTANT_RATE_LIMIT"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Assistant.RateLimit = f
		}
	}

	if v := os.Getenv("FREECHAT_ASSISTANT_RATE_BURST"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Assistant.RateBurst = n
		}
	}
}

// DataDir returns the path to the freechat data directory (~/.freeday-chat).
func DataDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".freeday-chat"), nil
}

// EnsureDataDir creates the data directory if it doesn't exist.
func EnsureDataDir() (string, error) {
	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	return dir, nil
}
