package config

import (
	"testing"

	"github.com/leonardotrapani/flowwispr/internal/transcription"
)

func validTestConfig() *Config {
	cfg := DefaultConfig()
	cfg.Transcription.Kind = "local"
	return cfg
}

func TestValidateAcceptsDefaultConfig(t *testing.T) {
	if err := validTestConfig().Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestValidateRejectsBadSampleRate(t *testing.T) {
	cfg := validTestConfig()
	cfg.Recording.SampleRate = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for zero sample rate")
	}
}

func TestValidateRejectsUnknownTranscriptionKind(t *testing.T) {
	cfg := validTestConfig()
	cfg.Transcription.Kind = "unknown"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unknown transcription kind")
	}
}

func TestValidateRequiresAPIKeyForCloudProviders(t *testing.T) {
	cfg := validTestConfig()
	cfg.Transcription.Kind = "openai"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing openai API key")
	}

	cfg.Providers = map[string]ProviderConfig{"openai": {APIKey: "sk-test"}}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate with API key configured: %v", err)
	}
}

func TestValidateRequiresCloudAutoEndpoint(t *testing.T) {
	cfg := validTestConfig()
	cfg.Transcription.Kind = "cloud-auto"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing cloud_auto_endpoint")
	}
	cfg.Transcription.CloudAutoEndpoint = "https://example.com/transcribe"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate with endpoint set: %v", err)
	}
}

func TestValidateRejectsBadLanguageCode(t *testing.T) {
	cfg := validTestConfig()
	cfg.Transcription.Language = "not-a-code"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for invalid language code")
	}
}

func TestValidateRequiresCompletionAPIKeyWhenEnabled(t *testing.T) {
	cfg := validTestConfig()
	cfg.Completion.Enabled = true
	cfg.Completion.Provider = "openrouter"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing completion API key")
	}
	cfg.Providers["openrouter"] = ProviderConfig{APIKey: "or-test"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate with completion API key configured: %v", err)
	}
}

func TestValidateRejectsUnknownNotificationType(t *testing.T) {
	cfg := validTestConfig()
	cfg.Notifications.Type = "popup"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unknown notifications.type")
	}
}

func TestResolveAPIKeyPrefersProvidersMapOverEnv(t *testing.T) {
	cfg := validTestConfig()
	cfg.Providers["openai"] = ProviderConfig{APIKey: "from-config"}
	t.Setenv("OPENAI_API_KEY", "from-env")

	if got := cfg.resolveAPIKey("openai"); got != "from-config" {
		t.Fatalf("got %q, want %q", got, "from-config")
	}
}

func TestResolveAPIKeyFallsBackToEnv(t *testing.T) {
	cfg := validTestConfig()
	t.Setenv("GROQ_API_KEY", "from-env")

	if got := cfg.resolveAPIKey("groq"); got != "from-env" {
		t.Fatalf("got %q, want %q", got, "from-env")
	}
}

func TestToEngineConfigCarriesTranscriptionFields(t *testing.T) {
	cfg := validTestConfig()
	cfg.Transcription.Tier = string(transcription.TierFast)
	cfg.Keywords = []string{"kubectl", "nginx"}
	cfg.DefaultMode = "formal"

	engineCfg := cfg.ToEngineConfig(":memory:")
	if engineCfg.DBPath != ":memory:" {
		t.Fatalf("got DBPath %q", engineCfg.DBPath)
	}
	if engineCfg.TranscriptionKind != "local" {
		t.Fatalf("got TranscriptionKind %q", engineCfg.TranscriptionKind)
	}
	if engineCfg.TranscriptionTier != transcription.TierFast {
		t.Fatalf("got TranscriptionTier %q", engineCfg.TranscriptionTier)
	}
	if len(engineCfg.Keywords) != 2 {
		t.Fatalf("got %d keywords, want 2", len(engineCfg.Keywords))
	}
	if string(engineCfg.DefaultMode) != "formal" {
		t.Fatalf("got DefaultMode %q", engineCfg.DefaultMode)
	}
}

func TestToEngineConfigOmitsCompletionWhenDisabled(t *testing.T) {
	cfg := validTestConfig()
	engineCfg := cfg.ToEngineConfig(":memory:")
	if engineCfg.CompletionKind != "" {
		t.Fatalf("expected no completion kind, got %q", engineCfg.CompletionKind)
	}
}

func TestApplyThreadsDefaultPicksAtLeastOne(t *testing.T) {
	cfg := validTestConfig()
	cfg.Transcription.Threads = 0
	cfg.applyThreadsDefault()
	if cfg.Transcription.Threads < 1 {
		t.Fatalf("got %d threads, want >= 1", cfg.Transcription.Threads)
	}
}
