package interfaces

import (
	"context"

	"ui_resolver/domain/entities"
)

// SearchContext is anything selectors can be evaluated against: the page,
// an element, or an element's shadow root
type SearchContext interface {
	// FindElements returns all matches of sel within this context.
	// No match is an empty slice, not an error.
	FindElements(ctx context.Context, sel entities.NativeSelector) ([]Element, error)
}

// Element is a live handle on a matched element
type Element interface {
	SearchContext

	// Describe returns a short human readable form for logs
	Describe() string
}

// Session wraps one live automation session (a browser page or app screen).
// Sessions are bound to the goroutine that drives them.
type Session interface {
	SearchContext

	// TranslateSelector converts a strategy and value to the session's native
	// form. Strategies the driver cannot execute yield ErrUnsupportedStrategy.
	TranslateSelector(strategy entities.Strategy, value string) (entities.NativeSelector, error)

	// ShadowRoot returns the open shadow root of el as a scoped search context
	ShadowRoot(ctx context.Context, el Element) (SearchContext, error)

	// DocumentSnapshot returns a textual description of the current page
	DocumentSnapshot(ctx context.Context) (string, error)

	// Platform returns the locator type tag the session serves ("web", "mobile")
	Platform() string
}
