// Package apps infers an application's category from its name or bundle
// ID, using a fixed substring lexicon, and maps categories to their
// default writing mode.
package apps

import "strings"

// Category buckets the active application by what kind of writing it
// typically hosts.
type Category string

const (
	CategoryEmail     Category = "email"
	CategoryChat      Category = "chat"
	CategoryCode      Category = "code"
	CategoryDocuments Category = "documents"
	CategorySocial    Category = "social"
	CategoryBrowser   Category = "browser"
	CategoryTerminal  Category = "terminal"
	CategoryUnknown   Category = "unknown"
)

var lexicon = []struct {
	category Category
	names    []string
}{
	{CategoryEmail, []string{"mail"}},
	{CategoryChat, []string{"slack", "discord", "teams", "zoom", "messages", "imessage", "telegram", "whatsapp", "signal"}},
	{CategoryCode, []string{"code", "xcode", "intellij", "vim", "nvim", "cursor"}},
	{CategoryDocuments, []string{"pages", "word", "docs", "notion"}},
	{CategorySocial, []string{"twitter", "facebook", "instagram"}},
	{CategoryBrowser, []string{"safari", "chrome", "firefox", "arc"}},
	{CategoryTerminal, []string{"terminal", "iterm", "warp", "kitty", "alacritty"}},
}

// bundleCategories maps known bundle identifiers to their category
// exactly; it is consulted before the name lexicon since a bundle ID
// is a much less ambiguous signal than a display-name substring.
var bundleCategories = map[string]Category{
	"com.apple.mail":              CategoryEmail,
	"com.microsoft.Outlook":       CategoryEmail,
	"com.superhuman.mail":         CategoryEmail,
	"com.tinyspeck.slackmacgap":   CategoryChat,
	"com.hnc.Discord":             CategoryChat,
	"com.microsoft.teams":         CategoryChat,
	"us.zoom.xos":                 CategoryChat,
	"com.microsoft.VSCode":        CategoryCode,
	"com.apple.dt.Xcode":          CategoryCode,
	"com.todesktop.cursor":        CategoryCode,
	"dev.zed.Zed":                 CategoryCode,
	"com.apple.iWork.Pages":       CategoryDocuments,
	"com.microsoft.Word":          CategoryDocuments,
	"notion.id":                   CategoryDocuments,
	"md.obsidian":                 CategoryDocuments,
	"com.apple.Safari":            CategoryBrowser,
	"com.google.Chrome":           CategoryBrowser,
	"org.mozilla.firefox":         CategoryBrowser,
	"company.thebrowser.Browser":  CategoryBrowser,
	"com.apple.Terminal":          CategoryTerminal,
	"com.googlecode.iterm2":       CategoryTerminal,
	"dev.warp.Warp-Stable":        CategoryTerminal,
	"net.kovidgoyal.kitty":        CategoryTerminal,
}

// CategoryFromApp infers a Category from the app's display name and, if
// known, its bundle identifier. Lookup prefers an exact bundle ID match,
// then falls back to the name lexicon's first matching substring, then
// CategoryUnknown.
func CategoryFromApp(appName string, bundleID string) Category {
	if cat, ok := bundleCategories[bundleID]; ok {
		return cat
	}

	nameLower := strings.ToLower(appName)
	for _, entry := range lexicon {
		for _, needle := range entry.names {
			if strings.Contains(nameLower, needle) {
				return entry.category
			}
		}
	}
	return CategoryUnknown
}
