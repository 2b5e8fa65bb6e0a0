// Package engine is the glue exposing dictation's full capability surface
// to a host: recording, transcription, shortcut expansion, learning,
// writing-mode selection, contact classification, and the persisted
// history/settings behind all of it. One Engine instance is owned per
// process; its methods are the realization of the capability table a
// native host would otherwise call over a C ABI (§6).
package engine

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/leonardotrapani/flowwispr/internal/audio"
	"github.com/leonardotrapani/flowwispr/internal/completion"
	"github.com/leonardotrapani/flowwispr/internal/contacts"
	"github.com/leonardotrapani/flowwispr/internal/learning"
	"github.com/leonardotrapani/flowwispr/internal/modes"
	"github.com/leonardotrapani/flowwispr/internal/shortcuts"
	"github.com/leonardotrapani/flowwispr/internal/store"
	"github.com/leonardotrapani/flowwispr/internal/transcription"
)

// Config configures one Engine instance: persistence location, component
// defaults, and which transcription/completion providers to load.
type Config struct {
	DBPath        string
	DefaultMode   modes.WritingMode
	Keywords      []string
	MessagingApps []string

	// TranscriptionKind selects the provider family: "local" (native/CLI
	// whisper.cpp), "openai"/"groq" (cloud-raw, OpenAI-compatible), or
	// "cloud-auto" (combined transcription+completion worker).
	TranscriptionKind    string
	TranscriptionTier    transcription.Tier
	TranscriptionThreads int
	TranscriptionAPIKey  string
	TranscriptionModel   string
	TranscriptionBaseURL string
	CloudAutoEndpoint    string

	// CompletionKind selects "openai", "gemini", or "openrouter"; empty
	// disables completion (raw transcription text is used as-is).
	CompletionKind   string
	CompletionAPIKey string
	CompletionModel  string
}

// Engine owns every component instance and cache for one process.
type Engine struct {
	store *store.Store

	audioMu sync.Mutex
	audioCapture *audio.Capture

	providerMu   sync.RWMutex
	transcriber  transcription.Provider
	completioner completion.Provider

	shortcutsEngine *shortcuts.Engine
	learningEngine  *learning.Engine
	modesEngine     *modes.Engine
	styleLearner    *modes.Learner
	contactsEngine  *contacts.Classifier

	mu                sync.Mutex
	currentApp        *store.AppContext
	capturedContact   string
	pendingAudio      []byte
	pendingSampleRate int
	lastAudio         []byte
	lastSampleRate    int
	lastAppContext    *store.AppContext
	lastError         string

	messagingApps map[string]bool
	cfg           Config
}

// New opens the store (running migrations), restores the shortcut and
// correction caches, applies a transcription kind/tier persisted by
// SetTranscriptionMode over cfg, and builds the configured transcription
// and completion providers.
func New(cfg Config) (*Engine, error) {
	if cfg.DefaultMode == "" {
		cfg.DefaultMode = modes.DefaultMode
	}

	db, err := store.Open(cfg.DBPath)
	if err != nil {
		return nil, newEngineError(KindStorage, "open store", err)
	}

	if kind, ok, err := db.GetSetting(settingTranscriptionKind); err == nil && ok {
		cfg.TranscriptionKind = kind
	}
	if tier, ok, err := db.GetSetting(settingTranscriptionTier); err == nil && ok {
		cfg.TranscriptionTier = transcription.Tier(tier)
	}

	e := &Engine{
		store:           db,
		shortcutsEngine: shortcuts.NewEngine(),
		learningEngine:  learning.NewEngine(),
		modesEngine:     modes.NewEngine(cfg.DefaultMode),
		styleLearner:    modes.NewLearner(),
		contactsEngine:  contacts.NewClassifier(),
		messagingApps:   make(map[string]bool),
		cfg:             cfg,
	}
	for _, name := range cfg.MessagingApps {
		e.messagingApps[strings.ToLower(name)] = true
	}

	ctx := context.Background()

	if loaded, err := db.GetEnabledShortcuts(); err == nil {
		e.shortcutsEngine.LoadShortcuts(loaded)
	}

	if err := e.learningEngine.LoadFromStore(ctx, db); err != nil {
		e.logAndContinue("load corrections from store", err)
	}

	if cfg.TranscriptionKind != "" {
		provider, err := buildTranscriptionProvider(cfg)
		if err != nil {
			db.Close()
			return nil, newEngineError(KindConfig, "build transcription provider", err)
		}
		e.transcriber = provider
	}

	if cfg.CompletionKind != "" {
		provider, err := completion.New(cfg.CompletionKind, cfg.CompletionAPIKey, cfg.CompletionModel)
		if err != nil {
			db.Close()
			return nil, newEngineError(KindConfig, "build completion provider", err)
		}
		e.completioner = provider
	}

	return e, nil
}

// buildTranscriptionProvider dispatches Config's transcription fields to
// the concrete transcription.Provider constructor.
func buildTranscriptionProvider(cfg Config) (transcription.Provider, error) {
	switch cfg.TranscriptionKind {
	case "local":
		tier := cfg.TranscriptionTier
		if tier == "" {
			tier = transcription.DefaultTier
		}
		return transcription.NewLocalProvider(tier, cfg.TranscriptionThreads)
	case "cloud-auto":
		return transcription.NewCloudAutoProvider(cfg.CloudAutoEndpoint), nil
	case "openai", "groq":
		name := cfg.TranscriptionKind
		return transcription.NewCloudRawProvider(name, cfg.TranscriptionBaseURL, cfg.TranscriptionAPIKey, cfg.TranscriptionModel, cfg.Keywords), nil
	default:
		return nil, fmt.Errorf("unsupported transcription provider %q", cfg.TranscriptionKind)
	}
}

// Close drops any open AudioCapture, flushes the store, and releases
// held resources. Safe to call once at shutdown.
func (e *Engine) Close() error {
	e.audioMu.Lock()
	if e.audioCapture != nil {
		e.audioCapture.Close()
		e.audioCapture = nil
	}
	e.audioMu.Unlock()

	if nc, ok := e.transcriber.(interface{ Close() }); ok {
		nc.Close()
	}

	return e.store.Close()
}

// GetLastError returns the most recently recorded failure message, or ""
// if the last operation succeeded.
func (e *Engine) GetLastError() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastError
}

func (e *Engine) setLastError(err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err == nil {
		e.lastError = ""
		return
	}
	e.lastError = err.Error()
}

// logAndContinue logs a non-fatal failure the way the teacher's pipeline
// logs and proceeds past recoverable errors.
func (e *Engine) logAndContinue(action string, err error) {
	if err == nil {
		return
	}
	log.Printf("engine: %s failed (continuing): %v", action, err)
}

// currentAppSnapshot returns a copy of the tracked active app, or nil.
func (e *Engine) currentAppSnapshot() *store.AppContext {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.currentApp == nil {
		return nil
	}
	cp := *e.currentApp
	return &cp
}

// isMessagingApp reports whether appName is configured as a messaging app.
func (e *Engine) isMessagingApp(appName string) bool {
	return e.messagingApps[strings.ToLower(appName)]
}
