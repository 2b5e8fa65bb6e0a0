package config

import (
	"os"

	"github.com/leonardotrapani/flowwispr/internal/audio"
	"github.com/leonardotrapani/flowwispr/internal/engine"
	"github.com/leonardotrapani/flowwispr/internal/modes"
	"github.com/leonardotrapani/flowwispr/internal/transcription"
)

// ToRecordingConfig returns the AudioCapture configuration derived from
// the recording section.
func (c *Config) ToRecordingConfig() audio.Config {
	return audio.Config{
		SampleRate: c.Recording.SampleRate,
		Channels:   c.Recording.Channels,
		Device:     c.Recording.Device,
	}
}

// ToEngineConfig builds the Engine configuration, resolving provider API
// keys from the providers map and falling back to environment variables.
func (c *Config) ToEngineConfig(dbPath string) engine.Config {
	cfg := engine.Config{
		DBPath:               dbPath,
		DefaultMode:          modes.WritingMode(c.DefaultMode),
		Keywords:             c.Keywords,
		MessagingApps:        c.MessagingApps,
		TranscriptionKind:    c.Transcription.Kind,
		TranscriptionTier:    transcription.Tier(c.Transcription.Tier),
		TranscriptionThreads: c.Transcription.Threads,
		TranscriptionModel:   c.Transcription.Model,
		TranscriptionBaseURL: c.Transcription.BaseURL,
		CloudAutoEndpoint:    c.Transcription.CloudAutoEndpoint,
	}
	cfg.TranscriptionAPIKey = c.resolveAPIKey(c.Transcription.Kind)

	if c.Completion.Enabled {
		cfg.CompletionKind = c.Completion.Provider
		cfg.CompletionAPIKey = c.resolveAPIKey(c.Completion.Provider)
		cfg.CompletionModel = c.Completion.Model
	}

	return cfg
}

// resolveAPIKey returns providerName's API key from the providers map,
// falling back to its well-known environment variable.
func (c *Config) resolveAPIKey(providerName string) string {
	if c.Providers != nil {
		if pc, ok := c.Providers[providerName]; ok && pc.APIKey != "" {
			return pc.APIKey
		}
	}
	if envVar := envVarForProvider(providerName); envVar != "" {
		return os.Getenv(envVar)
	}
	return ""
}

func envVarForProvider(providerName string) string {
	switch providerName {
	case "openai":
		return "OPENAI_API_KEY"
	case "groq":
		return "GROQ_API_KEY"
	case "gemini":
		return "GEMINI_API_KEY"
	case "openrouter":
		return "OPENROUTER_API_KEY"
	default:
		return ""
	}
}
