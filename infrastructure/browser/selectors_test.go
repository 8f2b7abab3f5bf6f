package browser

import (
	"testing"

	"ui_resolver/domain/entities"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tebeka/selenium"
)

func TestWebTableTranslation(t *testing.T) {
	tests := []struct {
		strategy entities.Strategy
		value    string
		want     string
	}{
		{entities.StrategyID, "submit", `css=[id="submit"]`},
		{entities.StrategyName, "q", `css=[name="q"]`},
		{entities.StrategyCSS, "form > button", "css=form > button"},
		{entities.StrategyXPath, "//button", "xpath=//button"},
		{entities.StrategyClassName, "primary", `css=[class~="primary"]`},
		{entities.StrategyTagName, "button", "css=button"},
		{entities.StrategyLinkText, "Home", `xpath=//a[normalize-space(.)="Home"]`},
		{entities.StrategyPartialLinkText, "Ho", `xpath=//a[contains(normalize-space(.), "Ho")]`},
		{entities.StrategyTestID, "login", `css=[data-testid="login"]`},
		{entities.StrategyAccessibilityID, "Close", `css=[aria-label="Close"]`},
		{entities.StrategyID, `we"ird`, `css=[id="we\"ird"]`},
	}

	for _, tt := range tests {
		t.Run(string(tt.strategy)+"/"+tt.value, func(t *testing.T) {
			sel, err := translate("rod", webTable, tt.strategy, tt.value)
			require.NoError(t, err)
			assert.Equal(t, tt.want, sel.String())
		})
	}
}

func TestUnsupportedStrategies(t *testing.T) {
	for _, table := range []map[entities.Strategy]translator{webTable, playwrightTable, seleniumTable} {
		for _, s := range []entities.Strategy{entities.StrategyImage, entities.StrategyJSQuery} {
			_, err := translate("test", table, s, "x")
			assert.ErrorIs(t, err, entities.ErrUnsupportedStrategy)
		}
	}
}

func TestPlaywrightTextEngine(t *testing.T) {
	sel, err := translate("playwright", playwrightTable, entities.StrategyText, "Sign in")
	require.NoError(t, err)
	assert.Equal(t, "text=Sign in", sel.String())

	// overrides never leak into the shared table
	shared, err := translate("rod", webTable, entities.StrategyText, "Sign in")
	require.NoError(t, err)
	assert.Equal(t, "xpath", shared.Kind)
}

func TestSeleniumTable(t *testing.T) {
	sel, err := translate("selenium", seleniumTable, entities.StrategyLinkText, "Home")
	require.NoError(t, err)
	assert.Equal(t, selenium.ByLinkText, sel.Kind)
	assert.Equal(t, "Home", sel.Query)

	sel, err = translate("selenium", seleniumTable, entities.StrategyTestID, "login")
	require.NoError(t, err)
	assert.Equal(t, selenium.ByCSSSelector, sel.Kind)
	assert.Equal(t, `[data-testid="login"]`, sel.Query)
}

func TestShadowCSS(t *testing.T) {
	tests := []struct {
		sel  entities.NativeSelector
		want string
		ok   bool
	}{
		{entities.NativeSelector{Kind: selenium.ByCSSSelector, Query: "input"}, "input", true},
		{entities.NativeSelector{Kind: selenium.ByID, Query: "user"}, `[id="user"]`, true},
		{entities.NativeSelector{Kind: selenium.ByClassName, Query: "btn"}, `[class~="btn"]`, true},
		{entities.NativeSelector{Kind: selenium.ByXPATH, Query: "//input"}, "", false},
		{entities.NativeSelector{Kind: selenium.ByLinkText, Query: "Home"}, "", false},
	}

	for _, tt := range tests {
		got, ok := shadowCSS(tt.sel)
		assert.Equal(t, tt.ok, ok, tt.sel.String())
		assert.Equal(t, tt.want, got, tt.sel.String())
	}
}

func TestXPathHelpers(t *testing.T) {
	assert.Equal(t, `"plain"`, xpathLiteral("plain"))
	assert.Equal(t, `'say "hi"'`, xpathLiteral(`say "hi"`))
	assert.Equal(t, `concat("it's ", '"', "quoted", '"', "")`, xpathLiteral(`it's "quoted"`))

	assert.Equal(t, ".//button", relativeXPath("//button"))
	assert.Equal(t, "./span", relativeXPath("./span"))
	assert.Equal(t, "(.//a)[1]", relativeXPath("(//a)[1]"))
}

func TestFormatSnapshot(t *testing.T) {
	out, err := formatSnapshot("https://example.test/login", "Login",
		`[{"tag":"button","selector":"#submit","text":"Sign in","attributes":{"id":"submit"},"visible":true,"inShadow":false}]`)
	require.NoError(t, err)
	assert.Contains(t, out, "Title: Login")
	assert.Contains(t, out, `button #submit id="submit" text="Sign in"`)

	_, err = formatSnapshot("", "", "not json")
	assert.Error(t, err)
}
