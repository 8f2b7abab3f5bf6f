package entities

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Strategy is the kind of selector a Locator carries
type Strategy string

const (
	StrategyID              Strategy = "id"
	StrategyName            Strategy = "name"
	StrategyCSS             Strategy = "css"
	StrategyXPath           Strategy = "xpath"
	StrategyClassName       Strategy = "class_name"
	StrategyTagName         Strategy = "tag_name"
	StrategyLinkText        Strategy = "link_text"
	StrategyPartialLinkText Strategy = "partial_link_text"
	StrategyText            Strategy = "text"
	StrategyTestID          Strategy = "test_id"
	StrategyAccessibilityID Strategy = "accessibility_id"
	StrategyImage           Strategy = "image"
	StrategyJSQuery         Strategy = "js_query"
)

var knownStrategies = map[Strategy]bool{
	StrategyID:              true,
	StrategyName:            true,
	StrategyCSS:             true,
	StrategyXPath:           true,
	StrategyClassName:       true,
	StrategyTagName:         true,
	StrategyLinkText:        true,
	StrategyPartialLinkText: true,
	StrategyText:            true,
	StrategyTestID:          true,
	StrategyAccessibilityID: true,
	StrategyImage:           true,
	StrategyJSQuery:         true,
}

// IsKnown reports whether s belongs to the recognized strategy set.
// Recognized does not mean executable: image and js_query are known but no
// session adapter translates them.
func (s Strategy) IsKnown() bool {
	return knownStrategies[s]
}

// Platform tags used in Locator.Type
const (
	PlatformWeb    = "web"
	PlatformMobile = "mobile"
)

// Locator is one named selector strategy plus its ranking metadata
type Locator struct {
	Strategy    Strategy `json:"strategy" yaml:"strategy"`
	Value       string   `json:"value" yaml:"value"`
	Active      bool     `json:"active" yaml:"active"`
	Priority    int      `json:"priority" yaml:"priority"`
	Reliability float64  `json:"reliability" yaml:"reliability"`
	Type        []string `json:"type,omitempty" yaml:"type,omitempty"`
}

// UnmarshalJSON treats a missing "active" field as true.
func (l *Locator) UnmarshalJSON(data []byte) error {
	type plain Locator
	aux := struct {
		*plain
		Active *bool `json:"active"`
	}{plain: (*plain)(l)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	l.Active = aux.Active == nil || *aux.Active
	return nil
}

// Validate checks the invariants a stored locator must satisfy
func (l Locator) Validate() error {
	if !l.Strategy.IsKnown() {
		return fmt.Errorf("unknown locator strategy %q", l.Strategy)
	}
	if l.Reliability < 0 || l.Reliability > 1 {
		return fmt.Errorf("locator %s reliability %.2f outside [0,1]", l.Strategy, l.Reliability)
	}
	return nil
}

// AppliesTo reports whether the locator is tagged for the given platform.
// Untagged locators apply everywhere.
func (l Locator) AppliesTo(platform string) bool {
	if len(l.Type) == 0 || platform == "" {
		return true
	}
	for _, t := range l.Type {
		if t == platform {
			return true
		}
	}
	return false
}

// Clone returns a copy that shares nothing with l
func (l Locator) Clone() Locator {
	c := l
	if l.Type != nil {
		c.Type = append([]string(nil), l.Type...)
	}
	return c
}

// SortLocators returns a working copy ordered by priority ascending, then
// reliability descending. Declaration order breaks any remaining tie.
func SortLocators(locators []Locator) []Locator {
	sorted := make([]Locator, len(locators))
	copy(sorted, locators)

	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Priority != sorted[j].Priority {
			return sorted[i].Priority < sorted[j].Priority
		}
		return sorted[i].Reliability > sorted[j].Reliability
	})

	return sorted
}

// NativeSelector is a strategy translated into a session's own query form.
// Kind is adapter specific (a selenium "by", a rod engine, a playwright prefix).
type NativeSelector struct {
	Kind  string
	Query string
}

func (s NativeSelector) String() string {
	if s.Kind == "" {
		return s.Query
	}
	return s.Kind + "=" + s.Query
}
