package completion

import "fmt"

const systemFraming = "You are a dictation assistant. Your job is to take raw transcribed speech " +
	"and format it appropriately. Preserve the user's intended meaning while " +
	"applying the requested formatting style. Output ONLY the formatted text, " +
	"nothing else."

// BuildSystemPrompt composes the four-part system prompt: the fixed
// framing, the mode's instruction, an optional application-context
// sentence, and an optional shortcut-preservation block.
func BuildSystemPrompt(req Request) string {
	prompt := systemFraming + "\n\nFormatting style: " + req.Mode

	if req.AppContext != "" {
		prompt += fmt.Sprintf("\n\nContext: The user is typing in %s. Adjust formatting appropriately for this context.", req.AppContext)
	}

	if req.ShortcutPreservation != "" {
		prompt += "\n\n" + req.ShortcutPreservation
	}

	return prompt
}

// BuildUserPrompt wraps the raw transcription in <TRANSCRIPTION> tags.
func BuildUserPrompt(text string) string {
	return fmt.Sprintf("<TRANSCRIPTION>%s</TRANSCRIPTION>", text)
}
