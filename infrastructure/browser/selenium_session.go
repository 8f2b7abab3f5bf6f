package browser

import (
	"context"
	"errors"
	"fmt"

	"ui_resolver/domain/entities"
	"ui_resolver/domain/interfaces"

	"github.com/sirupsen/logrus"
	"github.com/tebeka/selenium"
)

func by(kind string) func(string) entities.NativeSelector {
	return func(v string) entities.NativeSelector {
		return entities.NativeSelector{Kind: kind, Query: v}
	}
}

var seleniumTable = map[entities.Strategy]translator{
	entities.StrategyID:              by(selenium.ByID),
	entities.StrategyName:            by(selenium.ByName),
	entities.StrategyCSS:             by(selenium.ByCSSSelector),
	entities.StrategyXPath:           by(selenium.ByXPATH),
	entities.StrategyClassName:       by(selenium.ByClassName),
	entities.StrategyTagName:         by(selenium.ByTagName),
	entities.StrategyLinkText:        by(selenium.ByLinkText),
	entities.StrategyPartialLinkText: by(selenium.ByPartialLinkText),
	entities.StrategyText:            func(v string) entities.NativeSelector { return by(selenium.ByXPATH)(textXPath(v)) },
	entities.StrategyTestID:          func(v string) entities.NativeSelector { return by(selenium.ByCSSSelector)(cssAttr("data-testid", v)) },
	entities.StrategyAccessibilityID: func(v string) entities.NativeSelector { return by(selenium.ByCSSSelector)(cssAttr("aria-label", v)) },
}

const (
	hasShadowRootJS   = `return !!(arguments[0] && arguments[0].shadowRoot);`
	shadowQueryJS     = `return Array.from(arguments[0].shadowRoot.querySelectorAll(arguments[1]));`
	seleniumDriverTag = "selenium"
)

// SeleniumSession adapts a WebDriver session
type SeleniumSession struct {
	wd     selenium.WebDriver
	logger *logrus.Logger
}

// NewSeleniumSession - wraps wd; the caller owns the driver lifecycle
func NewSeleniumSession(wd selenium.WebDriver, logger *logrus.Logger) *SeleniumSession {
	return &SeleniumSession{wd: wd, logger: logger}
}

// TranslateSelector - maps to WebDriver "by" locators
func (s *SeleniumSession) TranslateSelector(strategy entities.Strategy, value string) (entities.NativeSelector, error) {
	return translate(seleniumDriverTag, seleniumTable, strategy, value)
}

// FindElements - queries the whole document
func (s *SeleniumSession) FindElements(ctx context.Context, sel entities.NativeSelector) ([]interfaces.Element, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	found, err := s.wd.FindElements(sel.Kind, sel.Query)
	if err != nil {
		if isNoSuchElement(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("find %s: %w", sel, err)
	}
	return s.wrap(found, sel.String()), nil
}

// ShadowRoot - checks for an open shadow root and scopes queries to it
func (s *SeleniumSession) ShadowRoot(ctx context.Context, el interfaces.Element) (interfaces.SearchContext, error) {
	we, ok := el.(*seleniumElement)
	if !ok {
		return nil, fmt.Errorf("%w: foreign element %s", entities.ErrShadowRootUnavailable, el.Describe())
	}

	result, err := s.wd.ExecuteScript(hasShadowRootJS, []interface{}{we.el})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entities.ErrShadowRootUnavailable, err)
	}
	if present, _ := result.(bool); !present {
		return nil, fmt.Errorf("%w: %s has no open shadow root", entities.ErrShadowRootUnavailable, we.Describe())
	}

	return &seleniumShadowScope{session: s, host: we}, nil
}

// DocumentSnapshot - lists the page's interactive elements
func (s *SeleniumSession) DocumentSnapshot(ctx context.Context) (string, error) {
	result, err := s.wd.ExecuteScript(seleniumSnapshotJS, nil)
	if err != nil {
		return "", fmt.Errorf("failed to extract elements: %w", err)
	}

	raw, ok := result.(string)
	if !ok {
		return "", fmt.Errorf("unexpected snapshot result %T", result)
	}

	url, _ := s.wd.CurrentURL()
	title, _ := s.wd.Title()
	return formatSnapshot(url, title, raw)
}

// Platform - WebDriver sessions serve web locators
func (s *SeleniumSession) Platform() string {
	return entities.PlatformWeb
}

func (s *SeleniumSession) wrap(found []selenium.WebElement, origin string) []interfaces.Element {
	elements := make([]interfaces.Element, 0, len(found))
	for i, el := range found {
		elements = append(elements, &seleniumElement{
			session: s,
			el:      el,
			origin:  fmt.Sprintf("%s[%d]", origin, i),
		})
	}
	return elements
}

type seleniumElement struct {
	session *SeleniumSession
	el      selenium.WebElement
	origin  string
}

func (e *seleniumElement) FindElements(ctx context.Context, sel entities.NativeSelector) ([]interfaces.Element, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	query := sel.Query
	if sel.Kind == selenium.ByXPATH {
		query = relativeXPath(query)
	}

	found, err := e.el.FindElements(sel.Kind, query)
	if err != nil {
		if isNoSuchElement(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("find %s within %s: %w", sel, e.origin, err)
	}
	return e.session.wrap(found, e.origin+" "+sel.String()), nil
}

func (e *seleniumElement) Describe() string {
	return e.origin
}

// seleniumShadowScope runs querySelectorAll against a host's shadow root.
// Only selectors expressible as CSS can be evaluated there.
type seleniumShadowScope struct {
	session *SeleniumSession
	host    *seleniumElement
}

func (sc *seleniumShadowScope) FindElements(ctx context.Context, sel entities.NativeSelector) ([]interfaces.Element, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	query, ok := shadowCSS(sel)
	if !ok {
		return nil, fmt.Errorf("%w: %s inside shadow root of %s",
			entities.ErrUnsupportedStrategy, sel.Kind, sc.host.Describe())
	}

	raw, err := sc.session.wd.ExecuteScriptRaw(shadowQueryJS, []interface{}{sc.host.el, query})
	if err != nil {
		return nil, fmt.Errorf("shadow query %s: %w", query, err)
	}

	found, err := sc.session.wd.DecodeElements(raw)
	if err != nil {
		return nil, fmt.Errorf("decode shadow query result: %w", err)
	}
	return sc.session.wrap(found, sc.host.Describe()+"::shadow-root "+sel.String()), nil
}

// shadowCSS rewrites WebDriver css-family locators into a plain CSS selector
func shadowCSS(sel entities.NativeSelector) (string, bool) {
	switch sel.Kind {
	case selenium.ByCSSSelector, selenium.ByTagName:
		return sel.Query, true
	case selenium.ByID:
		return cssAttr("id", sel.Query), true
	case selenium.ByName:
		return cssAttr("name", sel.Query), true
	case selenium.ByClassName:
		return cssWord("class", sel.Query), true
	default:
		return "", false
	}
}

func isNoSuchElement(err error) bool {
	var se *selenium.Error
	return errors.As(err, &se) && se.Err == "no such element"
}

var _ interfaces.Session = (*SeleniumSession)(nil)
