package engine

import (
	"context"
	"encoding/json"

	"github.com/leonardotrapani/flowwispr/internal/transcription"
)

const settingTranscriptionKind = "transcription_kind"
const settingTranscriptionTier = "transcription_tier"

// SetTranscriptionMode swaps the active transcription provider at
// runtime and persists the choice so it survives a restart. Switching to
// "local" downloads the requested tier's model first if it isn't already
// present on disk.
func (e *Engine) SetTranscriptionMode(ctx context.Context, kind string, tier transcription.Tier) error {
	cfg := e.cfg
	cfg.TranscriptionKind = kind
	if tier != "" {
		cfg.TranscriptionTier = tier
	}

	if kind == "local" {
		t := cfg.TranscriptionTier
		if t == "" {
			t = transcription.DefaultTier
		}
		if !transcription.IsDownloaded(t) {
			if err := transcription.Download(ctx, t, nil); err != nil {
				wrapped := newEngineError(KindTranscription, "download model", err)
				e.setLastError(wrapped)
				return wrapped
			}
		}
	}

	provider, err := buildTranscriptionProvider(cfg)
	if err != nil {
		wrapped := newEngineError(KindConfig, "build transcription provider", err)
		e.setLastError(wrapped)
		return wrapped
	}

	e.providerMu.Lock()
	old := e.transcriber
	e.transcriber = provider
	e.providerMu.Unlock()
	if closer, ok := old.(interface{ Close() }); ok && old != nil {
		closer.Close()
	}

	e.cfg = cfg
	if err := e.store.SetSetting(settingTranscriptionKind, kind); err != nil {
		e.logAndContinue("persist transcription kind", err)
	}
	if cfg.TranscriptionTier != "" {
		if err := e.store.SetSetting(settingTranscriptionTier, string(cfg.TranscriptionTier)); err != nil {
			e.logAndContinue("persist transcription tier", err)
		}
	}
	e.setLastError(nil)
	return nil
}

// GetTranscriptionMode returns the active provider kind and, for local
// providers, the loaded tier.
func (e *Engine) GetTranscriptionMode() (kind string, tier transcription.Tier) {
	e.providerMu.RLock()
	defer e.providerMu.RUnlock()
	return e.cfg.TranscriptionKind, e.cfg.TranscriptionTier
}

// IsModelLoading reports whether the active local provider is still
// loading its model weights. Non-local providers always report false.
func (e *Engine) IsModelLoading() bool {
	e.providerMu.RLock()
	defer e.providerMu.RUnlock()
	if loader, ok := e.transcriber.(interface{ ModelLoading() bool }); ok {
		return loader.ModelLoading()
	}
	return false
}

// GetWhisperModelsJSON returns the local model catalogue (tiers, sizes,
// download state) as JSON.
func (e *Engine) GetWhisperModelsJSON() (string, error) {
	tiers := transcription.ListTiers()
	type modelEntry struct {
		transcription.ModelInfo
		Downloaded bool `json:"downloaded"`
	}
	entries := make([]modelEntry, 0, len(tiers))
	for _, t := range tiers {
		entries = append(entries, modelEntry{ModelInfo: t, Downloaded: transcription.IsDownloaded(t.Tier)})
	}
	data, err := json.Marshal(entries)
	if err != nil {
		return "", newEngineError(KindSerialization, "marshal whisper models", err)
	}
	return string(data), nil
}
