package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/leonardotrapani/flowwispr/internal/completion"
	"github.com/leonardotrapani/flowwispr/internal/contacts"
	"github.com/leonardotrapani/flowwispr/internal/modes"
	"github.com/leonardotrapani/flowwispr/internal/shortcuts"
	"github.com/leonardotrapani/flowwispr/internal/store"
	"github.com/leonardotrapani/flowwispr/internal/transcription"
)

// Transcribe consumes pending audio (parked by StopRecording), runs it
// through transcription, shortcut expansion, learning, and optional
// completion formatting, persists the result, and returns the final text.
func (e *Engine) Transcribe(ctx context.Context) (string, error) {
	e.mu.Lock()
	pcm := e.pendingAudio
	sampleRate := e.pendingSampleRate
	appCtx := e.lastAppContext
	contact := e.capturedContact
	e.pendingAudio = nil
	e.lastAudio = pcm
	e.lastSampleRate = sampleRate
	e.mu.Unlock()

	if len(pcm) == 0 {
		return "", newEngineError(KindAudio, "transcribe", fmt.Errorf("no pending audio"))
	}

	text, err := e.runTranscription(ctx, pcm, sampleRate, appCtx, contact)

	e.mu.Lock()
	e.capturedContact = ""
	e.mu.Unlock()

	return text, err
}

// RetryLastTranscription replays transcription over the cached last-audio
// without re-recording.
func (e *Engine) RetryLastTranscription(ctx context.Context) (string, error) {
	e.mu.Lock()
	pcm := e.lastAudio
	sampleRate := e.lastSampleRate
	appCtx := e.lastAppContext
	e.mu.Unlock()

	if len(pcm) == 0 {
		return "", newEngineError(KindAudio, "retry transcription", fmt.Errorf("no prior audio to retry"))
	}

	return e.runTranscription(ctx, pcm, sampleRate, appCtx, "")
}

func (e *Engine) runTranscription(ctx context.Context, pcm []byte, sampleRate int, appCtx *store.AppContext, contactName string) (text string, err error) {
	durationMs := int64(len(pcm)/2) * 1000 / int64(sampleRate)

	defer func() {
		if err != nil {
			e.setLastError(err)
			e.recordFailedHistory(appCtx, pcm, durationMs, err)
			return
		}
		e.setLastError(nil)
	}()

	e.providerMu.RLock()
	provider := e.transcriber
	e.providerMu.RUnlock()
	if provider == nil {
		return "", newEngineError(KindConfig, "transcribe", fmt.Errorf("no transcription provider configured"))
	}

	mode := e.writingModeFor(appCtx, contactName)

	req := transcription.Request{
		PCM:          pcm,
		SampleRate:   sampleRate,
		LanguageHint: "",
		PromptHint:   strings.Join(e.cfg.Keywords, ", "),
	}
	req.Completion = &transcription.CompletionParams{
		Mode: string(mode),
	}
	if appCtx != nil {
		req.Completion.AppContext = appCtx.AppName
	}

	resp, err := provider.Transcribe(ctx, req)
	if err != nil {
		return "", newEngineError(KindTranscription, "transcribe", err)
	}
	if resp.Text == "" {
		return "", newEngineError(KindTranscription, "transcribe", fmt.Errorf("empty transcription"))
	}

	rawText := resp.Text

	instruction, isWake := transcription.ExtractWakePhrase(rawText)

	var finalText string
	var shortcutsTriggered []string

	if isWake {
		finalText, err = e.runInstructionFollowing(ctx, instruction)
		if err != nil {
			finalText = instruction
			e.logAndContinue("instruction-following completion", err)
		}
	} else if resp.CompletedText != "" {
		finalText = resp.CompletedText
	} else {
		shortcutText, triggered := e.shortcutsEngine.Process(rawText)
		for _, t := range triggered {
			shortcutsTriggered = append(shortcutsTriggered, t.Trigger)
		}
		correctedText, _ := e.learningEngine.ApplyCorrections(shortcutText)

		finalText, err = e.runCompletion(ctx, correctedText, mode, appCtx, triggered)
		if err != nil {
			finalText = correctedText
			e.logAndContinue("completion", err)
			err = nil
		}
	}

	e.persistSuccess(appCtx, rawText, finalText, resp.Confidence, durationMs)

	return finalText, nil
}

// runCompletion calls the configured completion provider, building the
// shortcut-preservation directive from this dictation's triggered
// shortcuts.
func (e *Engine) runCompletion(ctx context.Context, text string, mode modes.WritingMode, appCtx *store.AppContext, triggered []shortcuts.TriggeredShortcut) (string, error) {
	e.providerMu.RLock()
	provider := e.completioner
	e.providerMu.RUnlock()
	if provider == nil {
		return text, nil
	}

	req := completion.Request{
		Text: text,
		Mode: mode.PromptModifier(),
	}
	if appCtx != nil {
		req.AppContext = appCtx.AppName
	}
	if preservation := buildShortcutPreservation(triggered); preservation != "" {
		req.ShortcutPreservation = preservation
	}

	resp, err := provider.Complete(ctx, req)
	if err != nil {
		return "", newEngineError(KindCompletion, "completion", err)
	}
	return resp.Text, nil
}

// runInstructionFollowing replaces the formatting step with an
// instruction-following prompt built from a detected wake-phrase command.
func (e *Engine) runInstructionFollowing(ctx context.Context, instruction string) (string, error) {
	e.providerMu.RLock()
	provider := e.completioner
	e.providerMu.RUnlock()
	if provider == nil {
		return instruction, nil
	}

	req := completion.Request{
		Text: instruction,
		Mode: "Follow this instruction exactly, applying it to the text. Output only the result.",
	}
	resp, err := provider.Complete(ctx, req)
	if err != nil {
		return "", newEngineError(KindCompletion, "instruction-following completion", err)
	}
	return resp.Text, nil
}

func (e *Engine) writingModeFor(appCtx *store.AppContext, contactName string) modes.WritingMode {
	if contactName != "" {
		contact := e.contactsEngine.GetOrCreateContact(contacts.Input{Name: contactName})
		return contact.Category.SuggestedWritingMode()
	}
	appName := ""
	if appCtx != nil {
		appName = appCtx.AppName
	}
	return e.modesEngine.GetModeWithStore(appName, e.store)
}

func (e *Engine) persistSuccess(appCtx *store.AppContext, rawText, finalText string, confidence float32, durationMs int64) {
	now := uuid.NewString()
	if err := e.store.SaveTranscription(store.Transcription{
		ID:            now,
		RawText:       rawText,
		ProcessedText: finalText,
		Confidence:    confidence,
		DurationMs:    durationMs,
		AppContext:    appCtx,
	}); err != nil {
		e.logAndContinue("persist transcription", err)
	}

	if err := e.store.SaveHistoryEntry(store.TranscriptionHistoryEntry{
		ID:         uuid.NewString(),
		Status:     store.StatusSuccess,
		Text:       finalText,
		RawText:    rawText,
		DurationMs: durationMs,
		AppContext: appCtx,
	}); err != nil {
		e.logAndContinue("persist history", err)
	}
}

func (e *Engine) recordFailedHistory(appCtx *store.AppContext, pcm []byte, durationMs int64, failure error) {
	if err := e.store.SaveHistoryEntry(store.TranscriptionHistoryEntry{
		ID:         uuid.NewString(),
		Status:     store.StatusFailed,
		Error:      failure.Error(),
		DurationMs: durationMs,
		AppContext: appCtx,
	}); err != nil {
		e.logAndContinue("persist failed history", err)
	}
}
