package store

import (
	"time"

	"github.com/google/uuid"

	"github.com/leonardotrapani/flowwispr/internal/apps"
)

func newID() string {
	return uuid.NewString()
}

func nowRFC3339() string {
	return time.Now().UTC().Format(time.RFC3339)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Now().UTC()
	}
	return t
}

// AppContext captures the foreground application at the moment a
// transcription, history entry, or analytics event was recorded.
type AppContext struct {
	AppName     string
	BundleID    string
	WindowTitle string
	Category    apps.Category
}

func nullableAppFields(ctx *AppContext) (appName, bundleID, windowTitle, category any) {
	if ctx == nil {
		return nil, nil, nil, nil
	}
	return ctx.AppName, nullString(ctx.BundleID), nullString(ctx.WindowTitle), string(ctx.Category)
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func scanAppContext(appName, bundleID, windowTitle, category *string) *AppContext {
	if appName == nil || *appName == "" {
		return nil
	}
	cat := apps.CategoryUnknown
	if category != nil && *category != "" {
		cat = apps.Category(*category)
	}
	ctx := &AppContext{AppName: *appName, Category: cat}
	if bundleID != nil {
		ctx.BundleID = *bundleID
	}
	if windowTitle != nil {
		ctx.WindowTitle = *windowTitle
	}
	return ctx
}

// Transcription is a completed dictation, its processed text, and the
// app context it was dictated into.
type Transcription struct {
	ID            string
	RawText       string
	ProcessedText string
	Confidence    float32
	DurationMs    int64
	AppContext    *AppContext
	CreatedAt     time.Time
}

// TranscriptionStatus distinguishes a successful dictation from a
// failed one in the history log.
type TranscriptionStatus string

const (
	StatusSuccess TranscriptionStatus = "success"
	StatusFailed  TranscriptionStatus = "failed"
)

// TranscriptionHistoryEntry is a single record in the rolling history
// log, kept regardless of whether the dictation succeeded.
type TranscriptionHistoryEntry struct {
	ID         string
	Status     TranscriptionStatus
	Text       string
	RawText    string
	Error      string
	DurationMs int64
	AppContext *AppContext
	CreatedAt  time.Time
}

// EventType names the kind of user-behavior analytics event recorded.
type EventType string

const (
	EventTranscriptionStarted   EventType = "transcription_started"
	EventTranscriptionCompleted EventType = "transcription_completed"
	EventTranscriptionFailed    EventType = "transcription_failed"
	EventShortcutTriggered      EventType = "shortcut_triggered"
	EventCorrectionApplied      EventType = "correction_applied"
	EventModeChanged            EventType = "mode_changed"
	EventAppSwitched            EventType = "app_switched"
	EventSettingsUpdated        EventType = "settings_updated"
)

// AnalyticsEvent is a single recorded occurrence of a user-behavior
// event, with an arbitrary JSON payload.
type AnalyticsEvent struct {
	ID         string
	Type       EventType
	Properties string // raw JSON
	AppContext *AppContext
	CreatedAt  time.Time
}

// LearnedWord is one original/corrected pair captured within a single
// learning session, so the whole batch can later be undone together.
type LearnedWord struct {
	Original  string `json:"original"`
	Corrected string `json:"corrected"`
}

// LearnedWordsSession groups the corrections learned from a single
// edit pass so they can be undone as a unit.
type LearnedWordsSession struct {
	ID         string
	Words      []LearnedWord
	AppContext *AppContext
	Undone     bool
	CreatedAt  time.Time
}
