// Package transcription converts captured PCM audio into text (§4.8).
// Providers are polymorphic over a single Provider interface; cloud
// providers speak HTTP to a remote speech model, local providers run
// whisper.cpp in-process or shell out to its CLI.
package transcription

import (
	"context"
	"strings"
)

// Request carries one batch of audio to transcribe.
type Request struct {
	// PCM holds 16-bit little-endian signed PCM samples.
	PCM          []byte
	SampleRate   int
	LanguageHint string
	PromptHint   string

	// Completion is only consulted by providers that format text
	// server-side (CloudAutoProvider); other providers ignore it.
	Completion *CompletionParams
}

// CompletionParams carries the fields a combined transcription+completion
// backend needs to format the transcription server-side: the writing
// mode, optional app-context sentence, shortcuts already triggered in
// prior turns, and a wake-phrase voice instruction if one was detected.
type CompletionParams struct {
	Mode               string
	AppContext         string
	ShortcutsTriggered []string
	VoiceInstruction   string
}

// Segment is one timed span of recognised text, when a provider exposes them.
type Segment struct {
	Text       string
	StartMs    int64
	EndMs      int64
	Confidence float32
}

// Response is what every Provider variant returns.
type Response struct {
	Text          string
	Confidence    float32
	Language      string
	DurationMs    int64
	Segments      []Segment
	CompletedText string // populated only by providers that format server-side
}

// Provider is the capability set every transcription backend implements.
type Provider interface {
	Transcribe(ctx context.Context, req Request) (Response, error)
	IsConfigured() bool
	Name() string
}

const wakePhrase = "hey flow"

// ExtractWakePhrase reports whether text opens with the "hey flow" wake
// phrase (case-insensitive) and, if so, returns the instruction that
// follows it with leading commas and spaces stripped.
func ExtractWakePhrase(text string) (instruction string, ok bool) {
	trimmed := strings.TrimSpace(text)
	if len(trimmed) < len(wakePhrase) || !strings.EqualFold(trimmed[:len(wakePhrase)], wakePhrase) {
		return "", false
	}
	rest := trimmed[len(wakePhrase):]
	rest = strings.TrimLeft(rest, ", ")
	return rest, true
}
