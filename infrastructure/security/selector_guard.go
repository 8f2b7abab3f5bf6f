package security

import (
	"fmt"
	"strings"

	"ui_resolver/domain/interfaces"

	"github.com/sirupsen/logrus"
)

const defaultMaxSelectorLen = 512

// SelectorGuard rejects model suggested selectors that look like script
// payloads or prose instead of a single selector
type SelectorGuard struct {
	logger *logrus.Logger
	maxLen int
}

func NewSelectorGuard(logger *logrus.Logger) *SelectorGuard {
	return &SelectorGuard{
		logger: logger,
		maxLen: defaultMaxSelectorLen,
	}
}

func (g *SelectorGuard) Check(selector string) error {
	if strings.TrimSpace(selector) == "" {
		return fmt.Errorf("empty selector")
	}

	if len(selector) > g.maxLen {
		return g.reject(selector, fmt.Sprintf("longer than %d bytes", g.maxLen))
	}

	if strings.ContainsAny(selector, "\n\r") {
		return g.reject(selector, "spans multiple lines")
	}

	lower := strings.ToLower(selector)

	// Check for script-like content
	scriptKeywords := []string{
		"javascript:", "<script", "</", "eval(", "function(", "=>",
		"document.", "window.", "fetch(", "localstorage",
	}
	for _, keyword := range scriptKeywords {
		if strings.Contains(lower, keyword) {
			return g.reject(selector, fmt.Sprintf("contains %q", keyword))
		}
	}

	// Check for prose answers ("I could not find ...")
	proseKeywords := []string{
		"i cannot", "i can't", "i could not", "unable to", "sorry",
	}
	for _, keyword := range proseKeywords {
		if strings.Contains(lower, keyword) {
			return g.reject(selector, "reads like prose")
		}
	}

	if !balanced(selector) {
		return g.reject(selector, "unbalanced brackets or quotes")
	}

	return nil
}

func (g *SelectorGuard) reject(selector, reason string) error {
	g.logger.WithField("selector", selector).Warnf("suggested selector rejected: %s", reason)
	return fmt.Errorf("selector rejected: %s", reason)
}

// balanced checks brackets outside quoted sections and that quotes close
func balanced(s string) bool {
	var stack []rune
	var quote rune

	for _, r := range s {
		if quote != 0 {
			if r == quote {
				quote = 0
			}
			continue
		}
		switch r {
		case '"', '\'':
			quote = r
		case '[', '(':
			stack = append(stack, r)
		case ']':
			if len(stack) == 0 || stack[len(stack)-1] != '[' {
				return false
			}
			stack = stack[:len(stack)-1]
		case ')':
			if len(stack) == 0 || stack[len(stack)-1] != '(' {
				return false
			}
			stack = stack[:len(stack)-1]
		}
	}

	return quote == 0 && len(stack) == 0
}

// Ensure SelectorGuard implements SelectorGuard interface
var _ interfaces.SelectorGuard = (*SelectorGuard)(nil)
