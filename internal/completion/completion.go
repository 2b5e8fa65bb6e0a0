// Package completion reformats a raw transcription into polished text via
// a large language model (§4.9). Providers share one prompt-composition
// scheme; they differ only in which HTTP endpoint and wire shape they
// speak.
package completion

import "context"

// TokenUsage reports token accounting from a completion call, when the
// backend returns it.
type TokenUsage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// Request carries everything a CompletionProvider needs to format one
// transcription.
type Request struct {
	Text string

	// Mode is the target writing-mode instruction fragment, normally
	// modes.WritingMode.PromptModifier().
	Mode string

	// AppContext, if set, is folded into the system prompt as a sentence
	// naming the application the user is typing into.
	AppContext string

	// ShortcutPreservation, if set, is appended to the system prompt as a
	// critical-instruction block listing shortcut replacements that must
	// be copied into the output verbatim.
	ShortcutPreservation string

	MaxTokens int
}

// Response is what every Provider variant returns.
type Response struct {
	Text  string
	Usage *TokenUsage
	Model string
}

// Provider is the capability set every completion backend implements.
type Provider interface {
	Complete(ctx context.Context, req Request) (Response, error)
	IsConfigured() bool
	Name() string
}
