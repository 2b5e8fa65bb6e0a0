package config

// Config is the full on-disk configuration: audio capture, which
// transcription and completion providers to load, notification style,
// and the defaults engine.Engine is constructed with.
type Config struct {
	Recording     RecordingConfig           `toml:"recording"`
	Transcription TranscriptionConfig       `toml:"transcription"`
	Completion    CompletionConfig          `toml:"completion"`
	Notifications NotificationsConfig       `toml:"notifications"`
	Providers     map[string]ProviderConfig `toml:"providers"`
	Keywords      []string                  `toml:"keywords"`
	MessagingApps []string                  `toml:"messaging_apps"`
	DefaultMode   string                    `toml:"default_mode"`
}

// ProviderConfig holds a provider's API key, keyed by provider name in
// Config.Providers.
type ProviderConfig struct {
	APIKey string `toml:"api_key"`
}

// RecordingConfig configures the default input device.
type RecordingConfig struct {
	SampleRate int    `toml:"sample_rate"`
	Channels   int    `toml:"channels"`
	Device     string `toml:"device"`
}

// TranscriptionConfig selects and configures the active transcription
// provider.
type TranscriptionConfig struct {
	// Kind is "local", "openai", "groq", or "cloud-auto".
	Kind    string `toml:"kind"`
	Tier    string `toml:"tier"`    // local model tier, e.g. "quality"
	Threads int    `toml:"threads"` // CPU threads for local inference (0 = auto)
	Model   string `toml:"model"`

	BaseURL           string `toml:"base_url"`
	CloudAutoEndpoint string `toml:"cloud_auto_endpoint"`

	// Language is an ISO-639-1 hint, empty for auto-detect.
	Language string `toml:"language"`
}

// CompletionConfig selects and configures the optional completion
// (tone-formatting) pass.
type CompletionConfig struct {
	Enabled  bool   `toml:"enabled"`
	Provider string `toml:"provider"` // "openai", "gemini", or "openrouter"
	Model    string `toml:"model"`
}

// NotificationsConfig controls how the daemon reports state changes.
type NotificationsConfig struct {
	Enabled bool   `toml:"enabled"`
	Type    string `toml:"type"` // "desktop", "log", or "none"
}
