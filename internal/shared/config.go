package shared

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Credentials CredentialsConfig `toml:"credentials"`
	Translator  TranslatorConfig  `toml:"translator"`
	Cache       CacheConfig       `toml:"cache"`
	Pipeline    PipelineConfig    `toml:"pipeline"`
}

// CredentialsConfig contains service-specific credentials.
type CredentialsConfig struct {
	Spotify SpotifyConfig `toml:"spotify"`
}

// SpotifyConfig contains the Spotify web session credential.
type SpotifyConfig struct {
	Cookie string `toml:"sp_dc"`
}

// TranslatorConfig contains translation provider settings.
type TranslatorConfig struct {
	Provider       string   `toml:"provider"`
	TargetLanguage string   `toml:"target_language"`
	Languages      []string `toml:"languages"`
	OpenAIAPIKey   string   `toml:"openai_api_key"`
	OpenAIModel    string   `toml:"openai_model"`
	Workers        int      `toml:"workers"`
	RateLimit      float64  `toml:"rate_limit"`
	MaxAttempts    int      `toml:"max_attempts"`
}

// CacheConfig contains translation cache settings.
type CacheConfig struct {
	Path       string `toml:"path"`
	MaxEntries int    `toml:"max_entries"`
	SaveEvery  int    `toml:"save_every"`
}

// PipelineConfig contains poll loop settings.
type PipelineConfig struct {
	PollIntervalMS   int `toml:"poll_interval_ms"`
	FailureThreshold int `toml:"failure_threshold"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// WriteConfig serializes the configuration back to disk. Used by the auth
// command to persist a freshly captured session cookie.
func WriteConfig(path string, config *Config) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(config); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}
