package tui

import (
	"fmt"

	"github.com/leonardotrapani/flowwispr/internal/language"
)

// languageOptionItems builds the language picker's option list, auto-detect
// first, with the current selection marked.
func languageOptionItems(currentLang string) []optionItem {
	items := make([]optionItem, 0, len(language.List())+1)

	autoLabel := "Auto-detect"
	if currentLang == "" {
		autoLabel += " (current)"
	}
	items = append(items, optionItem{title: autoLabel, desc: "Let the model detect the spoken language", value: ""})

	for _, lang := range language.List() {
		label := formatLanguageLabel(lang)
		if lang.Code == currentLang {
			label += " (current)"
		}
		items = append(items, optionItem{title: label, desc: lang.Code, value: lang.Code})
	}

	return items
}

func formatLanguageLabel(lang language.Language) string {
	if lang.Name == lang.NativeName || lang.NativeName == "" {
		return fmt.Sprintf("%s (%s)", lang.Name, lang.Code)
	}
	return fmt.Sprintf("%s - %s (%s)", lang.Name, lang.NativeName, lang.Code)
}
