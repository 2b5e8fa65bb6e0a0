package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"

	"github.com/BurntSushi/toml"
)

// ErrConfigNotFound is returned by Load when no config.toml exists yet.
var ErrConfigNotFound = errors.New("config not found")

// GetConfigPath returns the path to config.toml, creating its parent
// directory if necessary.
func GetConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config directory: %w", err)
	}

	appDir := filepath.Join(configDir, "hyprvoice")
	if err := os.MkdirAll(appDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	return filepath.Join(appDir, "config.toml"), nil
}

// Load reads config.toml, ensures the Providers map is non-nil, and fills
// in the thread-count default. It does not call Validate.
func Load() (*Config, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return nil, err
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: run the onboarding wizard first", ErrConfigNotFound)
	} else if err != nil {
		return nil, fmt.Errorf("failed to stat config file %s: %w", configPath, err)
	}

	log.Printf("Config: loading configuration from %s", configPath)
	var cfg Config
	if _, err := toml.DecodeFile(configPath, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", configPath, err)
	}

	if cfg.Providers == nil {
		cfg.Providers = make(map[string]ProviderConfig)
	}
	cfg.applyThreadsDefault()

	log.Printf("Config: configuration loaded successfully")
	return &cfg, nil
}

// applyThreadsDefault picks NumCPU-1 threads for local transcription
// when the user hasn't set one explicitly.
func (c *Config) applyThreadsDefault() {
	if c.Transcription.Threads == 0 {
		threads := runtime.NumCPU() - 1
		if threads < 1 {
			threads = 1
		}
		c.Transcription.Threads = threads
	}
}

// Save writes cfg to config.toml, overwriting whatever is there. Used by
// the configuration wizard to persist edits.
func Save(cfg *Config) error {
	configPath, err := GetConfigPath()
	if err != nil {
		return err
	}

	file, err := os.Create(configPath)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer file.Close()

	if err := toml.NewEncoder(file).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// SaveDefaultConfig writes DefaultConfig's values to config.toml as a
// commented template, used by the onboarding wizard.
func SaveDefaultConfig() error {
	configPath, err := GetConfigPath()
	if err != nil {
		return err
	}

	file, err := os.Create(configPath)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer file.Close()

	const template = `# Flowwispr Configuration
# This file is automatically generated with defaults.
# Edit values as needed, then restart the daemon to apply them.

[recording]
  sample_rate = 16000   # Audio sample rate in Hz (16000 recommended for speech)
  channels = 1          # Number of audio channels (1 = mono, 2 = stereo)
  device = ""           # PipeWire audio device (empty = default microphone)

[transcription]
  kind = "local"        # "local", "openai", "groq", or "cloud-auto"
  tier = "quality"       # local model tier: turbo, fast, balanced, quality, best
  threads = 0           # CPU threads for local inference (0 = auto)
  model = ""            # overrides the provider's default model name
  base_url = ""         # override the API base URL (self-hosted/proxy)
  cloud_auto_endpoint = "" # combined transcription+completion worker endpoint
  language = ""         # ISO-639-1 code, empty for auto-detect

[completion]
  enabled = false       # enable tone-formatting pass after transcription
  provider = "openai"   # "openai", "gemini", or "openrouter"
  model = ""

[notifications]
  enabled = true
  type = "desktop"      # "desktop", "log", or "none"

# API keys: set here, or via OPENAI_API_KEY / GROQ_API_KEY / GEMINI_API_KEY /
# OPENROUTER_API_KEY environment variables.
# [providers.openai]
#   api_key = ""

keywords = []           # vocabulary hints passed to the transcription prompt
messaging_apps = []      # app names treated as messaging apps for contact-based mode
default_mode = "casual"  # formal, casual, very_casual, or excited
`

	if _, err := file.WriteString(template); err != nil {
		return fmt.Errorf("failed to write config content: %w", err)
	}

	return nil
}
