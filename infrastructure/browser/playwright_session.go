package browser

import (
	"context"
	"fmt"

	"ui_resolver/domain/entities"
	"ui_resolver/domain/interfaces"

	"github.com/playwright-community/playwright-go"
	"github.com/sirupsen/logrus"
)

var playwrightTable = withOverrides(webTable, map[entities.Strategy]translator{
	// the text engine pierces open shadow roots, XPath does not
	entities.StrategyText: func(v string) entities.NativeSelector {
		return entities.NativeSelector{Kind: "text", Query: v}
	},
})

// PlaywrightSession adapts an open playwright page
type PlaywrightSession struct {
	page   playwright.Page
	logger *logrus.Logger
}

// NewPlaywrightSession - wraps page; the caller owns the page lifecycle
func NewPlaywrightSession(page playwright.Page, logger *logrus.Logger) *PlaywrightSession {
	return &PlaywrightSession{page: page, logger: logger}
}

// TranslateSelector - maps to playwright's engine=query selector syntax
func (s *PlaywrightSession) TranslateSelector(strategy entities.Strategy, value string) (entities.NativeSelector, error) {
	return translate("playwright", playwrightTable, strategy, value)
}

// FindElements - queries the whole page without waiting
func (s *PlaywrightSession) FindElements(ctx context.Context, sel entities.NativeSelector) ([]interfaces.Element, error) {
	handles, err := s.page.QuerySelectorAll(sel.String())
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", sel, err)
	}
	return wrapPlaywright(handles, sel), nil
}

// ShadowRoot - returns the element's open shadow root as a search scope
func (s *PlaywrightSession) ShadowRoot(ctx context.Context, el interfaces.Element) (interfaces.SearchContext, error) {
	pe, ok := el.(*playwrightElement)
	if !ok {
		return nil, fmt.Errorf("%w: foreign element %s", entities.ErrShadowRootUnavailable, el.Describe())
	}

	handle, err := pe.handle.EvaluateHandle("el => el.shadowRoot")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entities.ErrShadowRootUnavailable, err)
	}

	root := handle.AsElement()
	if root == nil {
		return nil, fmt.Errorf("%w: %s has no open shadow root", entities.ErrShadowRootUnavailable, pe.Describe())
	}

	return &playwrightElement{handle: root, origin: pe.Describe() + "::shadow-root"}, nil
}

// DocumentSnapshot - lists the page's interactive elements
func (s *PlaywrightSession) DocumentSnapshot(ctx context.Context) (string, error) {
	result, err := s.page.Evaluate(snapshotJS)
	if err != nil {
		return "", fmt.Errorf("failed to extract elements: %w", err)
	}

	raw, ok := result.(string)
	if !ok {
		return "", fmt.Errorf("unexpected snapshot result %T", result)
	}

	title, _ := s.page.Title()
	return formatSnapshot(s.page.URL(), title, raw)
}

// Platform - playwright drives web pages only
func (s *PlaywrightSession) Platform() string {
	return entities.PlatformWeb
}

type playwrightElement struct {
	handle playwright.ElementHandle
	origin string
}

func (e *playwrightElement) FindElements(ctx context.Context, sel entities.NativeSelector) ([]interfaces.Element, error) {
	handles, err := e.handle.QuerySelectorAll(sel.String())
	if err != nil {
		return nil, fmt.Errorf("query %s within %s: %w", sel, e.origin, err)
	}
	return wrapPlaywright(handles, sel), nil
}

func (e *playwrightElement) Describe() string {
	return e.origin
}

func wrapPlaywright(handles []playwright.ElementHandle, sel entities.NativeSelector) []interfaces.Element {
	elements := make([]interfaces.Element, 0, len(handles))
	for i, h := range handles {
		elements = append(elements, &playwrightElement{
			handle: h,
			origin: fmt.Sprintf("%s[%d]", sel, i),
		})
	}
	return elements
}

func withOverrides(base, overrides map[entities.Strategy]translator) map[entities.Strategy]translator {
	table := make(map[entities.Strategy]translator, len(base)+len(overrides))
	for k, v := range base {
		table[k] = v
	}
	for k, v := range overrides {
		table[k] = v
	}
	return table
}

var _ interfaces.Session = (*PlaywrightSession)(nil)
