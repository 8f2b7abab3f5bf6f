package entities

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// PageElement is one entry of a page snapshot handed to the selector model
type PageElement struct {
	Tag        string            `json:"tag"`
	Selector   string            `json:"selector"`
	Text       string            `json:"text"`
	Attributes map[string]string `json:"attributes"`
	Visible    bool              `json:"visible"`
	InShadow   bool              `json:"inShadow"`
}

// FormatSnapshot renders elements one per line, truncated to limit bytes.
// A non-positive limit disables truncation.
func FormatSnapshot(url, title string, elements []PageElement, limit int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "URL: %s\nTitle: %s\n", url, title)

	for _, el := range elements {
		line := el.Tag
		if el.Selector != "" {
			line += " " + el.Selector
		}
		for _, key := range []string{"id", "name", "type", "role", "aria-label", "data-testid", "placeholder"} {
			if v, ok := el.Attributes[key]; ok && v != "" {
				line += fmt.Sprintf(" %s=%q", key, v)
			}
		}
		if el.Text != "" {
			line += fmt.Sprintf(" text=%q", el.Text)
		}
		if el.InShadow {
			line += " (shadow)"
		}
		if !el.Visible {
			line += " (hidden)"
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}

	return Truncate(b.String(), limit)
}

// Truncate cuts s to at most maxLen bytes on a rune boundary, appending an
// ellipsis when cut
func Truncate(s string, maxLen int) string {
	if maxLen <= 0 || len(s) <= maxLen {
		return s
	}
	cut := maxLen
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
