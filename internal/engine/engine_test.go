package engine

import (
	"context"
	"encoding/binary"
	"strings"
	"testing"

	"github.com/leonardotrapani/flowwispr/internal/completion"
	"github.com/leonardotrapani/flowwispr/internal/modes"
	"github.com/leonardotrapani/flowwispr/internal/store"
	"github.com/leonardotrapani/flowwispr/internal/transcription"
)

// fakeTranscriber returns a canned response without touching any real
// subprocess or network, so transcription-path tests never need audio
// hardware or network access.
type fakeTranscriber struct {
	resp transcription.Response
	err  error
}

func (f *fakeTranscriber) Transcribe(ctx context.Context, req transcription.Request) (transcription.Response, error) {
	return f.resp, f.err
}
func (f *fakeTranscriber) IsConfigured() bool { return true }
func (f *fakeTranscriber) Name() string       { return "fake" }

type fakeCompleter struct {
	prefix string
	err    error
}

func (f *fakeCompleter) Complete(ctx context.Context, req completion.Request) (completion.Response, error) {
	if f.err != nil {
		return completion.Response{}, f.err
	}
	return completion.Response{Text: f.prefix + req.Text}, nil
}
func (f *fakeCompleter) IsConfigured() bool { return true }
func (f *fakeCompleter) Name() string       { return "fake" }

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := New(Config{DBPath: ":memory:"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { e.Close() })
	return e
}

func samplePCM16LE(samples ...int16) []byte {
	out := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(out[i*2:], uint16(s))
	}
	return out
}

func TestNewWithoutProvidersLeavesThemNil(t *testing.T) {
	e := newTestEngine(t)
	if e.transcriber != nil || e.completioner != nil {
		t.Fatalf("expected no providers configured by default")
	}
	if e.GetLastError() != "" {
		t.Fatalf("expected empty lastError, got %q", e.GetLastError())
	}
}

func TestTranscribeWithNoPendingAudioErrors(t *testing.T) {
	e := newTestEngine(t)
	if _, err := e.Transcribe(context.Background()); err == nil {
		t.Fatal("expected error transcribing with no pending audio")
	}
}

func TestTranscribeRunsShortcutsLearningAndCompletion(t *testing.T) {
	e := newTestEngine(t)
	e.transcriber = &fakeTranscriber{resp: transcription.Response{Text: "hello world", Confidence: 0.95}}
	e.completioner = &fakeCompleter{prefix: "formatted: "}

	e.mu.Lock()
	e.pendingAudio = samplePCM16LE(100, -100, 200, -200)
	e.pendingSampleRate = 16000
	e.lastAppContext = &store.AppContext{AppName: "TestApp"}
	e.mu.Unlock()

	text, err := e.Transcribe(context.Background())
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if !strings.HasPrefix(text, "formatted: ") {
		t.Fatalf("expected completion prefix, got %q", text)
	}

	recent, err := e.GetRecentTranscriptionsJSON(10)
	if err != nil {
		t.Fatalf("GetRecentTranscriptionsJSON: %v", err)
	}
	if !strings.Contains(recent, "hello world") {
		t.Fatalf("expected persisted raw text in history, got %q", recent)
	}
}

func TestTranscribeFailureRecordsHistoryOnly(t *testing.T) {
	e := newTestEngine(t)
	e.transcriber = &fakeTranscriber{resp: transcription.Response{}} // empty text -> error

	e.mu.Lock()
	e.pendingAudio = samplePCM16LE(1, 2, 3, 4)
	e.pendingSampleRate = 16000
	e.mu.Unlock()

	if _, err := e.Transcribe(context.Background()); err == nil {
		t.Fatal("expected transcription error for empty response text")
	}
	if e.GetLastError() == "" {
		t.Fatal("expected lastError to be set after failure")
	}
}

func TestRetryLastTranscriptionReplaysCachedAudio(t *testing.T) {
	e := newTestEngine(t)
	e.transcriber = &fakeTranscriber{resp: transcription.Response{Text: "first pass"}}

	e.mu.Lock()
	e.pendingAudio = samplePCM16LE(5, 6, 7, 8)
	e.pendingSampleRate = 16000
	e.mu.Unlock()

	if _, err := e.Transcribe(context.Background()); err != nil {
		t.Fatalf("Transcribe: %v", err)
	}

	e.transcriber = &fakeTranscriber{resp: transcription.Response{Text: "retried pass"}}
	text, err := e.RetryLastTranscription(context.Background())
	if err != nil {
		t.Fatalf("RetryLastTranscription: %v", err)
	}
	if text != "retried pass" {
		t.Fatalf("got %q, want %q", text, "retried pass")
	}
}

func TestWakePhraseRunsInstructionFollowing(t *testing.T) {
	e := newTestEngine(t)
	e.transcriber = &fakeTranscriber{resp: transcription.Response{Text: "hey flow make this formal"}}
	e.completioner = &fakeCompleter{prefix: "instructed: "}

	e.mu.Lock()
	e.pendingAudio = samplePCM16LE(1, 1, 1, 1)
	e.pendingSampleRate = 16000
	e.mu.Unlock()

	text, err := e.Transcribe(context.Background())
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if !strings.HasPrefix(text, "instructed: ") {
		t.Fatalf("expected instruction-following completion, got %q", text)
	}
}

func TestAddRemoveAndListShortcuts(t *testing.T) {
	e := newTestEngine(t)
	if err := e.AddShortcut("brb", "be right back"); err != nil {
		t.Fatalf("AddShortcut: %v", err)
	}
	data, err := e.GetShortcutsJSON()
	if err != nil {
		t.Fatalf("GetShortcutsJSON: %v", err)
	}
	if !strings.Contains(data, "be right back") {
		t.Fatalf("expected shortcut in JSON, got %q", data)
	}
	if err := e.RemoveShortcut("brb"); err != nil {
		t.Fatalf("RemoveShortcut: %v", err)
	}
	if err := e.RemoveShortcut("brb"); err == nil {
		t.Fatal("expected error removing an already-removed shortcut")
	}
}

func TestLearnFromEditAndDeleteAllCorrections(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	if _, err := e.LearnFromEdit(ctx, "i seen it", "i saw it"); err != nil {
		t.Fatalf("LearnFromEdit: %v", err)
	}

	data, err := e.GetCorrectionsJSON()
	if err != nil {
		t.Fatalf("GetCorrectionsJSON: %v", err)
	}
	if data == "[]" || data == "" {
		t.Fatalf("expected at least one persisted correction, got %q", data)
	}

	if _, err := e.DeleteAllCorrections(); err != nil {
		t.Fatalf("DeleteAllCorrections: %v", err)
	}
}

func TestSetAndGetAppMode(t *testing.T) {
	e := newTestEngine(t)
	if err := e.SetAppMode("Terminal", modes.Formal); err != nil {
		t.Fatalf("SetAppMode: %v", err)
	}
	if got := e.GetAppMode("Terminal"); got != modes.Formal {
		t.Fatalf("got %q, want %q", got, modes.Formal)
	}
}

func TestSaveAndUndoLearnedWordsSession(t *testing.T) {
	e := newTestEngine(t)
	id, err := e.SaveLearnedWordsSession([]store.LearnedWord{{Original: "teh", Corrected: "the"}})
	if err != nil {
		t.Fatalf("SaveLearnedWordsSession: %v", err)
	}

	undoable, err := e.GetUndoableLearnedWords(10)
	if err != nil {
		t.Fatalf("GetUndoableLearnedWords: %v", err)
	}
	if !strings.Contains(undoable, id) {
		t.Fatalf("expected session %q in undoable list, got %q", id, undoable)
	}

	if err := e.UndoLearnedWords(id); err != nil {
		t.Fatalf("UndoLearnedWords: %v", err)
	}
	undoable, err = e.GetUndoableLearnedWords(10)
	if err != nil {
		t.Fatalf("GetUndoableLearnedWords: %v", err)
	}
	if strings.Contains(undoable, id) {
		t.Fatalf("expected session %q to be excluded after undo", id)
	}
}

func TestGetAPIKeyMasksSecret(t *testing.T) {
	e := newTestEngine(t)
	if err := e.SetCompletionProvider("openai", "sk-abcdef1234", "gpt-4o-mini"); err != nil {
		t.Fatalf("SetCompletionProvider: %v", err)
	}
	masked := e.GetAPIKey()
	if strings.Contains(masked, "sk-abcdef") {
		t.Fatalf("expected masked key, got %q", masked)
	}
	if !strings.HasSuffix(masked, "1234") {
		t.Fatalf("expected masked key to retain last 4 chars, got %q", masked)
	}
}

func TestSetTranscriptionModeSwapsProvider(t *testing.T) {
	e := newTestEngine(t)
	if err := e.SetTranscriptionMode(context.Background(), "openai", ""); err != nil {
		t.Fatalf("SetTranscriptionMode: %v", err)
	}
	kind, _ := e.GetTranscriptionMode()
	if kind != "openai" {
		t.Fatalf("got %q, want %q", kind, "openai")
	}
	if e.transcriber == nil {
		t.Fatal("expected a transcription provider to be installed")
	}
}

func TestSaveEditAnalytics(t *testing.T) {
	e := newTestEngine(t)
	err := e.SaveEditAnalytics(store.EventCorrectionApplied, map[string]string{"original": "teh", "corrected": "the"})
	if err != nil {
		t.Fatalf("SaveEditAnalytics: %v", err)
	}
}
