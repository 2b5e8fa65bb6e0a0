package tui

import (
	"context"
	"fmt"

	"github.com/leonardotrapani/flowwispr/internal/config"
	"github.com/leonardotrapani/flowwispr/internal/modes"
	"github.com/leonardotrapani/flowwispr/internal/transcription"
)

func newTranscriptionKindScreen(state *wizardState) screen {
	cfg := state.cfg
	items := []optionItem{
		{title: "Local (whisper.cpp)", desc: "runs fully offline, no API key needed", value: "local"},
		{title: "OpenAI", desc: "cloud transcription via the OpenAI API", value: "openai"},
		{title: "Groq", desc: "cloud transcription via the Groq API", value: "groq"},
		{title: "Combined endpoint", desc: "a self-hosted transcription+completion worker", value: "cloud-auto"},
	}
	for i := range items {
		if items[i].value == cfg.Transcription.Kind {
			items[i].title += " (current)"
		}
	}

	return newListScreen(state, "Transcription Provider", nil, items, func(item optionItem) screen {
		cfg.Transcription.Kind = item.value
		switch item.value {
		case "local":
			return newVoiceModelScreen(state)
		case "openai", "groq":
			return newAPIKeyScreen(state, item.value, func() screen { return newMenuScreen(state) })
		case "cloud-auto":
			return newInputScreen(state, "Combined Endpoint URL", []string{"The HTTP endpoint that handles transcription and completion."},
				cfg.Transcription.CloudAutoEndpoint, "https://example.com/transcribe",
				false,
				func(v string) error {
					if v == "" {
						return fmt.Errorf("endpoint URL is required")
					}
					return nil
				},
				func(v string) screen {
					cfg.Transcription.CloudAutoEndpoint = v
					return newMenuScreen(state)
				},
				func() screen { return newMenuScreen(state) },
			)
		}
		return newMenuScreen(state)
	}, func() screen { return newMenuScreen(state) })
}

func newAPIKeyScreen(state *wizardState, provider string, onDone func() screen) screen {
	cfg := state.cfg
	current := ""
	if cfg.Providers != nil {
		current = cfg.Providers[provider].APIKey
	}
	return newInputScreen(state, provider+" API Key",
		[]string{"Leave empty to fall back to the provider's environment variable."},
		current, "sk-...", true, nil,
		func(v string) screen {
			if cfg.Providers == nil {
				cfg.Providers = make(map[string]config.ProviderConfig)
			}
			if v != "" {
				cfg.Providers[provider] = config.ProviderConfig{APIKey: v}
			}
			return onDone()
		},
		onDone,
	)
}

func newVoiceModelScreen(state *wizardState) screen {
	cfg := state.cfg
	tiers := transcription.ListTiers()
	items := make([]optionItem, 0, len(tiers))
	for _, t := range tiers {
		desc := fmt.Sprintf("%s, %s", t.Name, t.Size)
		if !transcription.IsDownloaded(t.Tier) {
			desc += " (not downloaded yet)"
		}
		title := string(t.Tier)
		if string(t.Tier) == cfg.Transcription.Tier {
			title += " (current)"
		}
		items = append(items, optionItem{title: title, desc: desc, value: string(t.Tier)})
	}

	return newListScreen(state, "Voice Model Tier", []string{"Faster tiers transcribe quicker but less accurately."}, items, func(item optionItem) screen {
		tier := transcription.Tier(item.value)
		if transcription.IsDownloaded(tier) {
			cfg.Transcription.Tier = item.value
			return newMenuScreen(state)
		}
		return newDownloadScreen(state, "Downloading "+item.value, []string{"Fetching the model from huggingface.co/ggerganov/whisper.cpp"}, item.value,
			func() screen {
				cfg.Transcription.Tier = item.value
				return newMenuScreen(state)
			},
			func() screen { return newMenuScreen(state) },
		)
	}, func() screen { return newMenuScreen(state) })
}

func downloadWhisperModel(modelID string, onProgress func(downloaded, total int64)) error {
	return transcription.Download(context.Background(), transcription.Tier(modelID), onProgress)
}

func newCompletionScreen(state *wizardState) screen {
	cfg := state.cfg
	items := []optionItem{
		{title: "Disabled", desc: "use raw transcription text as-is", value: "off"},
		{title: "Enabled", desc: "run a tone-formatting pass after transcription", value: "on"},
	}
	return newListScreen(state, "Completion", nil, items, func(item optionItem) screen {
		if item.value == "off" {
			cfg.Completion.Enabled = false
			return newMenuScreen(state)
		}
		cfg.Completion.Enabled = true
		return newCompletionProviderScreen(state)
	}, func() screen { return newMenuScreen(state) })
}

func newCompletionProviderScreen(state *wizardState) screen {
	cfg := state.cfg
	items := []optionItem{
		{title: "OpenAI", value: "openai"},
		{title: "Gemini", value: "gemini"},
		{title: "OpenRouter", value: "openrouter"},
	}
	for i := range items {
		if items[i].value == cfg.Completion.Provider {
			items[i].title += " (current)"
		}
	}
	return newListScreen(state, "Completion Provider", nil, items, func(item optionItem) screen {
		cfg.Completion.Provider = item.value
		return newAPIKeyScreen(state, item.value, func() screen { return newMenuScreen(state) })
	}, func() screen { return newMenuScreen(state) })
}

func newNotificationsScreen(state *wizardState) screen {
	cfg := state.cfg
	items := []optionItem{
		{title: "Desktop", desc: "native desktop notifications", value: "desktop"},
		{title: "Log", desc: "write status to the daemon log only", value: "log"},
		{title: "None", desc: "disable status notifications entirely", value: "none"},
	}
	for i := range items {
		if items[i].value == cfg.Notifications.Type {
			items[i].title += " (current)"
		}
	}
	return newListScreen(state, "Notifications", nil, items, func(item optionItem) screen {
		cfg.Notifications.Type = item.value
		cfg.Notifications.Enabled = item.value != "none"
		return newMenuScreen(state)
	}, func() screen { return newMenuScreen(state) })
}

func newLanguageScreen(state *wizardState) screen {
	cfg := state.cfg
	items := languageOptionItems(cfg.Transcription.Language)
	return newListScreen(state, "Transcription Language", nil, items, func(item optionItem) screen {
		cfg.Transcription.Language = item.value
		return newMenuScreen(state)
	}, func() screen { return newMenuScreen(state) })
}

func newKeywordsScreen(state *wizardState) screen {
	cfg := state.cfg
	fields := []formField{
		makeInputField("keywords", "Keywords", "comma-separated vocabulary hints (e.g. kubectl, nginx)", joinComma(cfg.Keywords), "", nil),
		makeInputField("messaging_apps", "Messaging Apps", "comma-separated app names treated as chat apps (e.g. Slack, Discord)", joinComma(cfg.MessagingApps), "", nil),
	}
	return newFormScreen(state, "Keywords & Apps", nil, fields, func(values map[string]string) screen {
		cfg.Keywords = splitAndTrim(values["keywords"])
		cfg.MessagingApps = splitAndTrim(values["messaging_apps"])
		return newMenuScreen(state)
	}, func() screen { return newMenuScreen(state) })
}

func newDefaultModeScreen(state *wizardState) screen {
	cfg := state.cfg
	items := make([]optionItem, 0, 4)
	for _, m := range modes.AllModes() {
		title := string(m)
		if string(m) == cfg.DefaultMode {
			title += " (current)"
		}
		items = append(items, optionItem{title: title, value: string(m)})
	}
	return newListScreen(state, "Default Writing Mode", []string{"Used until an app-specific mode is set or learned."}, items, func(item optionItem) screen {
		cfg.DefaultMode = item.value
		return newMenuScreen(state)
	}, func() screen { return newMenuScreen(state) })
}

func joinComma(values []string) string {
	out := ""
	for i, v := range values {
		if i > 0 {
			out += ", "
		}
		out += v
	}
	return out
}
