package config

import (
	"fmt"

	"github.com/leonardotrapani/flowwispr/internal/language"
)

// Validate rejects a configuration that would fail to construct an
// Engine, so the daemon can report a clear error at startup or reload
// instead of failing deep inside provider construction.
func (c *Config) Validate() error {
	if c.Recording.SampleRate <= 0 {
		return fmt.Errorf("invalid recording.sample_rate: %d", c.Recording.SampleRate)
	}
	if c.Recording.Channels <= 0 {
		return fmt.Errorf("invalid recording.channels: %d", c.Recording.Channels)
	}

	if c.Transcription.Language != "" && !language.IsValidCode(c.Transcription.Language) {
		return fmt.Errorf("invalid transcription.language: %s (use empty string for auto-detect or an ISO-639-1 code)", c.Transcription.Language)
	}

	apiKey := c.resolveAPIKey(c.Transcription.Kind)
	switch c.Transcription.Kind {
	case "local":
		// no API key required; model tier is downloaded on demand
	case "openai":
		if apiKey == "" {
			return fmt.Errorf("OpenAI API key required: not found in providers.openai.api_key or OPENAI_API_KEY")
		}
	case "groq":
		if apiKey == "" {
			return fmt.Errorf("Groq API key required: not found in providers.groq.api_key or GROQ_API_KEY")
		}
	case "cloud-auto":
		if c.Transcription.CloudAutoEndpoint == "" {
			return fmt.Errorf("transcription.cloud_auto_endpoint required when transcription.kind = \"cloud-auto\"")
		}
	default:
		return fmt.Errorf("unsupported transcription.kind: %s (must be local, openai, groq, or cloud-auto)", c.Transcription.Kind)
	}

	if c.Completion.Enabled {
		validProviders := map[string]bool{"openai": true, "gemini": true, "openrouter": true}
		if !validProviders[c.Completion.Provider] {
			return fmt.Errorf("invalid completion.provider: %s (must be openai, gemini, or openrouter)", c.Completion.Provider)
		}
		if c.resolveAPIKey(c.Completion.Provider) == "" {
			return fmt.Errorf("%s API key required for completion: not found in providers.%s.api_key or %s", c.Completion.Provider, c.Completion.Provider, envVarForProvider(c.Completion.Provider))
		}
	}

	validTypes := map[string]bool{"desktop": true, "log": true, "none": true}
	if !validTypes[c.Notifications.Type] {
		return fmt.Errorf("invalid notifications.type: %s (must be desktop, log, or none)", c.Notifications.Type)
	}

	return nil
}
