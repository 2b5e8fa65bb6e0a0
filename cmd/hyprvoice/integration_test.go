//go:build integration

package main

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/leonardotrapani/flowwispr/internal/completion"
	"github.com/leonardotrapani/flowwispr/internal/config"
	"github.com/leonardotrapani/flowwispr/internal/modes"
	"github.com/leonardotrapani/flowwispr/internal/transcription"
)

const testTimeout = 45 * time.Second

var testKeywords = []string{"Flowwispr", "transcription", "dictation"}

// TestTranscriptionModels exercises every transcription backend (local
// whisper.cpp tiers plus the cloud-raw and cloud-auto providers) against a
// shared sample recording, skipping whatever isn't locally downloaded or
// configured with an API key.
func TestTranscriptionModels(t *testing.T) {
	audio := loadIntegrationAudio(t)
	cfg := loadIntegrationConfig(t)

	for _, tier := range transcription.ListTiers() {
		tier := tier
		for _, useKeywords := range []bool{true, false} {
			useKeywords := useKeywords
			t.Run("local/"+string(tier.Tier)+"/keywords="+boolLabel(useKeywords), func(t *testing.T) {
				if !transcription.IsDownloaded(tier.Tier) {
					t.Skipf("model tier %s not downloaded", tier.Tier)
				}
				provider, err := transcription.NewLocalProvider(tier.Tier, 0)
				if err != nil {
					t.Skipf("local provider unavailable: %v", err)
				}
				runTranscriptionCase(t, provider, audio, useKeywords)
			})
		}
	}

	for _, kind := range []string{"openai", "groq"} {
		kind := kind
		t.Run("cloud/"+kind, func(t *testing.T) {
			apiKey := resolveTestAPIKey(cfg, kind)
			if apiKey == "" {
				t.Skipf("missing api key for %s", kind)
			}
			provider := transcription.NewCloudRawProvider(kind, "", apiKey, "", testKeywords)
			runTranscriptionCase(t, provider, audio, true)
		})
	}

	t.Run("cloud-auto", func(t *testing.T) {
		if cfg.Transcription.CloudAutoEndpoint == "" {
			t.Skip("no cloud_auto_endpoint configured")
		}
		provider := transcription.NewCloudAutoProvider(cfg.Transcription.CloudAutoEndpoint)
		runTranscriptionCase(t, provider, audio, true)
	})
}

// TestCompletionProviders exercises every completion backend with a
// deliberately disfluent input, checking it returns non-empty text.
func TestCompletionProviders(t *testing.T) {
	cfg := loadIntegrationConfig(t)
	input := "uh i i i want to test flowwispr you know this is just a cleanup check"

	for _, kind := range []string{"openai", "gemini", "openrouter"} {
		kind := kind
		t.Run(kind, func(t *testing.T) {
			apiKey := resolveTestAPIKey(cfg, kind)
			if apiKey == "" {
				t.Skipf("missing api key for %s", kind)
			}
			provider, err := completion.New(kind, apiKey, "")
			if err != nil {
				t.Fatalf("build provider: %v", err)
			}

			ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
			defer cancel()
			resp, err := provider.Complete(ctx, completion.Request{Text: input, Mode: modes.Casual.PromptModifier()})
			if err != nil {
				t.Fatalf("completion failed: %v", err)
			}

			text := strings.TrimSpace(resp.Text)
			if text == "" {
				t.Fatal("completion returned empty text")
			}
			t.Logf("output (%d chars): %q", len(text), truncateString(text, 100))
		})
	}
}

func runTranscriptionCase(t *testing.T, provider transcription.Provider, audio []byte, useKeywords bool) {
	t.Helper()
	if !provider.IsConfigured() {
		t.Skip("provider not configured")
	}

	keywords := ""
	if useKeywords {
		keywords = strings.Join(testKeywords, ", ")
	}

	ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
	defer cancel()
	resp, err := provider.Transcribe(ctx, transcription.Request{
		PCM:          audio,
		SampleRate:   testSampleRate,
		LanguageHint: "en",
		PromptHint:   keywords,
	})
	if err != nil {
		t.Fatalf("transcription failed: %v", err)
	}

	text := strings.TrimSpace(resp.Text)
	if text == "" {
		t.Fatal("transcription returned empty text")
	}
	t.Logf("output (%d chars): %q", len(text), truncateString(text, 100))
}

func loadIntegrationAudio(t *testing.T) []byte {
	t.Helper()
	path, err := ensureDefaultSample(context.Background())
	if err != nil {
		t.Fatalf("failed to load test audio: %v", err)
	}
	wav, err := readWAVFile(path)
	if err != nil {
		t.Fatalf("failed to parse test audio: %v", err)
	}
	return wav.data
}

func loadIntegrationConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := loadConfigForTests()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	return cfg
}

func boolLabel(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
