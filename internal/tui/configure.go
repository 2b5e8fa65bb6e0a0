package tui

import (
	"strings"

	"github.com/leonardotrapani/flowwispr/internal/config"
)

// hasUserChanges reports whether cfg looks like it's already been through
// onboarding once, so Run can skip straight to the edit menu.
func hasUserChanges(cfg *config.Config) bool {
	if len(cfg.Providers) > 0 {
		return true
	}
	if cfg.Transcription.Kind != "" && cfg.Transcription.Kind != "local" {
		return true
	}
	if cfg.Completion.Enabled {
		return true
	}
	return len(cfg.Keywords) > 0
}

func newWelcomeScreen(state *wizardState) screen {
	desc := []string{
		"This wizard configures speech transcription, tone completion,",
		"notifications, and vocabulary hints. Press enter to begin.",
	}
	return newInfoScreen(state, "Welcome to Flowwispr", desc, func() screen {
		return newTranscriptionKindScreen(state)
	}, nil)
}

func newMenuScreen(state *wizardState) screen {
	items := []optionItem{
		{title: "Transcription Provider", desc: "local whisper.cpp, OpenAI, Groq, or a combined endpoint", value: "transcription"},
		{title: "Voice Model", desc: "pick the local whisper.cpp model tier", value: "voice_model"},
		{title: "Completion", desc: "tone-formatting pass after transcription", value: "completion"},
		{title: "Notifications", desc: "desktop, log, or disabled", value: "notifications"},
		{title: "Language", desc: "transcription language hint", value: "language"},
		{title: "Keywords & Apps", desc: "vocabulary hints and messaging apps", value: "keywords"},
		{title: "Default Mode", desc: "writing mode used when no app-specific one is learned", value: "default_mode"},
		{title: "Save & Exit", desc: "write config.toml and quit", value: "save"},
		{title: "Discard & Exit", desc: "quit without saving changes", value: "discard"},
	}

	return newListScreen(state, "Flowwispr Configuration", nil, items, func(item optionItem) screen {
		switch item.value {
		case "transcription":
			return newTranscriptionKindScreen(state)
		case "voice_model":
			return newVoiceModelScreen(state)
		case "completion":
			return newCompletionScreen(state)
		case "notifications":
			return newNotificationsScreen(state)
		case "language":
			return newLanguageScreen(state)
		case "keywords":
			return newKeywordsScreen(state)
		case "default_mode":
			return newDefaultModeScreen(state)
		case "save":
			state.result = &ConfigureResult{Config: state.cfg}
			return nil
		case "discard":
			state.cancelled = true
			state.result = &ConfigureResult{Cancelled: true}
			return nil
		}
		return newMenuScreen(state)
	}, nil)
}

func splitAndTrim(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
