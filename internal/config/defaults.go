package config

import "github.com/leonardotrapani/flowwispr/internal/transcription"

// DefaultConfig returns the configuration used for onboarding and as a
// base before applying anything the user's config.toml overrides.
func DefaultConfig() *Config {
	return &Config{
		Recording: RecordingConfig{
			SampleRate: 16000,
			Channels:   1,
		},
		Transcription: TranscriptionConfig{
			Kind: "local",
			Tier: string(transcription.DefaultTier),
		},
		Completion: CompletionConfig{
			Enabled: false,
		},
		Notifications: NotificationsConfig{
			Enabled: true,
			Type:    "desktop",
		},
		Providers:   make(map[string]ProviderConfig),
		DefaultMode: "casual",
	}
}
