package browser

import (
	"strings"

	"ui_resolver/domain/entities"
)

// translator maps a locator value to a driver's native selector
type translator func(value string) entities.NativeSelector

// translate looks strategy up in table; absent strategies are unsupported
func translate(driver string, table map[entities.Strategy]translator, strategy entities.Strategy, value string) (entities.NativeSelector, error) {
	fn, ok := table[strategy]
	if !ok {
		return entities.NativeSelector{}, &entities.UnsupportedStrategyError{Strategy: strategy, Driver: driver}
	}
	return fn(value), nil
}

func css(query string) entities.NativeSelector {
	return entities.NativeSelector{Kind: "css", Query: query}
}

func xpath(query string) entities.NativeSelector {
	return entities.NativeSelector{Kind: "xpath", Query: query}
}

// cssAttr builds [attr="value"] with the value escaped for a CSS string
func cssAttr(attr, value string) string {
	return "[" + attr + "=" + cssQuote(value) + "]"
}

// cssWord builds [attr~="value"], used for single class names
func cssWord(attr, value string) string {
	return "[" + attr + "~=" + cssQuote(value) + "]"
}

func cssQuote(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return `"` + s + `"`
}

// xpathLiteral quotes s for XPath 1.0, which has no escape sequences
func xpathLiteral(s string) string {
	if !strings.Contains(s, `"`) {
		return `"` + s + `"`
	}
	if !strings.Contains(s, `'`) {
		return `'` + s + `'`
	}

	parts := strings.Split(s, `"`)
	var b strings.Builder
	b.WriteString("concat(")
	for i, p := range parts {
		if i > 0 {
			b.WriteString(`, '"', `)
		}
		b.WriteString(`"` + p + `"`)
	}
	b.WriteString(")")
	return b.String()
}

// relativeXPath anchors an absolute expression at the current node so that
// element scoped searches stay inside the element
func relativeXPath(q string) string {
	switch {
	case strings.HasPrefix(q, "/"):
		return "." + q
	case strings.HasPrefix(q, "(/"):
		return "(." + q[1:]
	default:
		return q
	}
}

func linkTextXPath(v string) string {
	return "//a[normalize-space(.)=" + xpathLiteral(v) + "]"
}

func partialLinkTextXPath(v string) string {
	return "//a[contains(normalize-space(.), " + xpathLiteral(v) + ")]"
}

func textXPath(v string) string {
	return "//*[text()[contains(normalize-space(.), " + xpathLiteral(v) + ")]]"
}

// webTable is the translation shared by drivers that only speak CSS and XPath
var webTable = map[entities.Strategy]translator{
	entities.StrategyID:              func(v string) entities.NativeSelector { return css(cssAttr("id", v)) },
	entities.StrategyName:            func(v string) entities.NativeSelector { return css(cssAttr("name", v)) },
	entities.StrategyCSS:             func(v string) entities.NativeSelector { return css(v) },
	entities.StrategyXPath:           func(v string) entities.NativeSelector { return xpath(v) },
	entities.StrategyClassName:       func(v string) entities.NativeSelector { return css(cssWord("class", v)) },
	entities.StrategyTagName:         func(v string) entities.NativeSelector { return css(v) },
	entities.StrategyLinkText:        func(v string) entities.NativeSelector { return xpath(linkTextXPath(v)) },
	entities.StrategyPartialLinkText: func(v string) entities.NativeSelector { return xpath(partialLinkTextXPath(v)) },
	entities.StrategyText:            func(v string) entities.NativeSelector { return xpath(textXPath(v)) },
	entities.StrategyTestID:          func(v string) entities.NativeSelector { return css(cssAttr("data-testid", v)) },
	entities.StrategyAccessibilityID: func(v string) entities.NativeSelector { return css(cssAttr("aria-label", v)) },
}
