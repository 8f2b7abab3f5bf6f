package browser

import (
	"context"
	"fmt"

	"ui_resolver/domain/entities"
	"ui_resolver/domain/interfaces"

	"github.com/go-rod/rod"
	"github.com/sirupsen/logrus"
)

// RodSession adapts a go-rod page driven over the DevTools protocol
type RodSession struct {
	page   *rod.Page
	logger *logrus.Logger
}

// NewRodSession - wraps page; the caller owns the browser lifecycle
func NewRodSession(page *rod.Page, logger *logrus.Logger) *RodSession {
	return &RodSession{page: page, logger: logger}
}

// TranslateSelector - rod speaks CSS and XPath only
func (s *RodSession) TranslateSelector(strategy entities.Strategy, value string) (entities.NativeSelector, error) {
	return translate("rod", webTable, strategy, value)
}

// FindElements - queries the whole document
func (s *RodSession) FindElements(ctx context.Context, sel entities.NativeSelector) ([]interfaces.Element, error) {
	page := s.page.Context(ctx)

	var (
		found rod.Elements
		err   error
	)
	switch sel.Kind {
	case "xpath":
		found, err = page.ElementsX(sel.Query)
	default:
		found, err = page.Elements(sel.Query)
	}
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", sel, err)
	}
	return wrapRod(found, sel.String()), nil
}

// ShadowRoot - resolves the element's shadow root node
func (s *RodSession) ShadowRoot(ctx context.Context, el interfaces.Element) (interfaces.SearchContext, error) {
	re, ok := el.(*rodElement)
	if !ok {
		return nil, fmt.Errorf("%w: foreign element %s", entities.ErrShadowRootUnavailable, el.Describe())
	}

	root, err := re.el.Context(ctx).ShadowRoot()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entities.ErrShadowRootUnavailable, err)
	}
	return &rodElement{el: root, origin: re.origin + "::shadow-root"}, nil
}

// DocumentSnapshot - lists the page's interactive elements
func (s *RodSession) DocumentSnapshot(ctx context.Context) (string, error) {
	page := s.page.Context(ctx)

	res, err := page.Eval(snapshotJS)
	if err != nil {
		return "", fmt.Errorf("failed to extract elements: %w", err)
	}

	var url, title string
	if info, err := page.Info(); err == nil {
		url, title = info.URL, info.Title
	}
	return formatSnapshot(url, title, res.Value.Str())
}

// Platform - rod drives web pages only
func (s *RodSession) Platform() string {
	return entities.PlatformWeb
}

type rodElement struct {
	el     *rod.Element
	origin string
}

func (e *rodElement) FindElements(ctx context.Context, sel entities.NativeSelector) ([]interfaces.Element, error) {
	el := e.el.Context(ctx)

	var (
		found rod.Elements
		err   error
	)
	switch sel.Kind {
	case "xpath":
		found, err = el.ElementsX(relativeXPath(sel.Query))
	default:
		found, err = el.Elements(sel.Query)
	}
	if err != nil {
		return nil, fmt.Errorf("find %s within %s: %w", sel, e.origin, err)
	}
	return wrapRod(found, e.origin+" "+sel.String()), nil
}

func (e *rodElement) Describe() string {
	return e.origin
}

func wrapRod(found rod.Elements, origin string) []interfaces.Element {
	elements := make([]interfaces.Element, 0, len(found))
	for i, el := range found {
		elements = append(elements, &rodElement{el: el, origin: fmt.Sprintf("%s[%d]", origin, i)})
	}
	return elements
}

var _ interfaces.Session = (*RodSession)(nil)
