package engine

import (
	"context"
	"errors"

	"github.com/leonardotrapani/flowwispr/internal/audio"
)

var errNotRecording = errors.New("no active recording to stop")

// StartRecording begins capturing from the default input device. If the
// active app is a configured messaging app, the current conversation's
// contact name is snapshotted for the upcoming transcription's writing
// mode. AudioCapture is created lazily on first use.
func (e *Engine) StartRecording(ctx context.Context, contactName string) error {
	app := e.currentAppSnapshot()

	e.mu.Lock()
	if app != nil && e.isMessagingApp(app.AppName) && contactName != "" {
		e.capturedContact = contactName
	} else {
		e.capturedContact = ""
	}
	e.mu.Unlock()

	e.audioMu.Lock()
	defer e.audioMu.Unlock()

	if e.audioCapture == nil {
		e.audioCapture = audio.New(audio.DefaultConfig())
	}

	if err := e.audioCapture.Start(ctx); err != nil {
		wrapped := newEngineError(KindAudio, "start recording", err)
		e.setLastError(wrapped)
		return wrapped
	}
	e.setLastError(nil)
	return nil
}

// StopRecording stops the stream, drains the buffer into PCM, and parks
// it as pending audio for the next Transcribe call. The AudioCapture is
// dropped here so the device is released before transcription begins.
// Returns the buffered audio's duration in milliseconds.
func (e *Engine) StopRecording() (int64, error) {
	e.audioMu.Lock()
	capture := e.audioCapture
	e.audioCapture = nil
	e.audioMu.Unlock()

	if capture == nil {
		return 0, newEngineError(KindAudio, "stop recording", errNotRecording)
	}

	sampleRate := capture.SampleRate()
	pcm := capture.Stop()

	durationMs := int64(len(pcm)/2) * 1000 / int64(sampleRate)

	e.mu.Lock()
	e.pendingAudio = pcm
	e.pendingSampleRate = sampleRate
	e.lastAppContext = e.currentApp
	e.mu.Unlock()

	return durationMs, nil
}

// IsRecording reports whether AudioCapture is actively recording.
func (e *Engine) IsRecording() bool {
	e.audioMu.Lock()
	defer e.audioMu.Unlock()
	return e.audioCapture != nil && e.audioCapture.State() == audio.StateRecording
}

// AudioLevel returns the current RMS input level in [0,1], or 0 if not
// recording.
func (e *Engine) AudioLevel() float32 {
	e.audioMu.Lock()
	defer e.audioMu.Unlock()
	if e.audioCapture == nil {
		return 0
	}
	return e.audioCapture.CurrentLevel()
}
