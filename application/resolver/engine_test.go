package resolver

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"ui_resolver/domain/entities"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newEngine(healer *ModelHealer, selfHealing bool) *Engine {
	opts := DefaultOptions()
	opts.PollInterval = 5 * time.Millisecond
	opts.DefaultTimeout = 100 * time.Millisecond
	opts.SelfHealing = selfHealing
	if healer == nil {
		return NewEngine(opts, nil, quietLogger())
	}
	return NewEngine(opts, healer, quietLogger())
}

func TestFindOneHonoursPriority(t *testing.T) {
	session := newFakeSession()
	session.doc.
		on("id=submit", node("by-id")).
		on("css=#submit", node("by-css"))

	obj := &entities.UIObject{
		Path: "login/submit",
		Locators: []entities.Locator{
			loc(entities.StrategyID, "submit", 2, 1.0),
			loc(entities.StrategyCSS, "#submit", 1, 0.1),
		},
	}

	el := newEngine(nil, false).FindOne(context.Background(), obj, session)
	require.NotNil(t, el)
	assert.Equal(t, "by-css", el.Describe())
	assert.Zero(t, session.callCount("id=submit"), "lower ranked locator never tried")
}

func TestFindOneReliabilityBreaksTies(t *testing.T) {
	session := newFakeSession()
	session.doc.
		on("xpath=//button", node("by-xpath")).
		on("css=button", node("by-css"))

	obj := &entities.UIObject{
		Path: "button",
		Locators: []entities.Locator{
			loc(entities.StrategyXPath, "//button", 1, 0.4),
			loc(entities.StrategyCSS, "button", 1, 0.9),
		},
	}

	el := newEngine(nil, false).FindOne(context.Background(), obj, session)
	require.NotNil(t, el)
	assert.Equal(t, "by-css", el.Describe())
}

func TestAttemptOutcomes(t *testing.T) {
	session := newFakeSession()
	session.doc.on("css=.ok", node("ok"))
	session.broken["css=.broken"] = errors.New("stale session")

	inactive := loc(entities.StrategyID, "old", 1, 1)
	inactive.Active = false
	mobile := loc(entities.StrategyAccessibilityID, "submit", 3, 1)
	mobile.Type = []string{entities.PlatformMobile}

	obj := &entities.UIObject{
		Path: "x",
		Locators: []entities.Locator{
			inactive,
			loc(entities.StrategyName, "  ", 2, 1),
			mobile,
			loc(entities.StrategyImage, "submit.png", 4, 1),
			loc(entities.StrategyCSS, ".broken", 5, 1),
			loc(entities.StrategyCSS, ".none", 6, 1),
			loc(entities.StrategyCSS, ".ok", 7, 1),
			loc(entities.StrategyCSS, ".never", 8, 1),
		},
	}

	attempts := newEngine(nil, false).Explain(context.Background(), obj, session)
	require.Len(t, attempts, 7)

	want := []struct {
		outcome entities.Outcome
		reason  string
	}{
		{entities.Skipped, "inactive"},
		{entities.Skipped, "empty value"},
		{entities.Skipped, "not tagged for platform web"},
		{entities.Skipped, ""},
		{entities.Failed, "stale session"},
		{entities.Failed, "no match"},
		{entities.Matched, ""},
	}
	for i, w := range want {
		assert.Equal(t, w.outcome, attempts[i].Outcome, "attempt %d", i)
		if w.reason != "" {
			assert.Equal(t, w.reason, attempts[i].Reason, "attempt %d", i)
		}
	}
	assert.ErrorIs(t, attempts[3].Err, entities.ErrUnsupportedStrategy)
	assert.Equal(t, 1, attempts[6].Elements)
}

func TestScopeRejectingStrategyIsSkipped(t *testing.T) {
	session := newFakeSession()
	session.broken["xpath=//span"] = fmt.Errorf("shadow scope: %w",
		&entities.UnsupportedStrategyError{Strategy: entities.StrategyXPath, Driver: "fake"})
	session.doc.on("css=span", node("span"))

	obj := &entities.UIObject{
		Path: "x",
		Locators: []entities.Locator{
			loc(entities.StrategyXPath, "//span", 1, 1),
			loc(entities.StrategyCSS, "span", 2, 1),
		},
	}

	attempts := newEngine(nil, false).Explain(context.Background(), obj, session)
	require.Len(t, attempts, 2)
	assert.Equal(t, entities.Skipped, attempts[0].Outcome)
	assert.ErrorIs(t, attempts[0].Err, entities.ErrUnsupportedStrategy)
	assert.Equal(t, entities.Matched, attempts[1].Outcome)
}

func TestQuietLookupsNeverFail(t *testing.T) {
	session := newFakeSession()
	engine := newEngine(nil, false)
	obj := &entities.UIObject{
		Path:     "missing",
		Locators: []entities.Locator{loc(entities.StrategyCSS, "#nope", 1, 1)},
	}

	assert.Nil(t, engine.FindOne(context.Background(), obj, session))

	all := engine.FindAll(context.Background(), obj, session)
	assert.NotNil(t, all)
	assert.Empty(t, all)

	assert.Nil(t, engine.FindOne(context.Background(), &entities.UIObject{Path: "empty"}, session))
	assert.Empty(t, engine.WaitAll(context.Background(), obj, session, 20*time.Millisecond))
}

func TestStrictLookupsReportAttempts(t *testing.T) {
	session := newFakeSession()
	engine := newEngine(nil, false)
	obj := &entities.UIObject{
		Path: "login/submit",
		Locators: []entities.Locator{
			loc(entities.StrategyCSS, "#a", 1, 1),
			loc(entities.StrategyXPath, "//b", 2, 1),
		},
	}

	_, err := engine.FindOneStrict(context.Background(), obj, session)
	var nf *entities.ElementNotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "login/submit", nf.Path)
	assert.Len(t, nf.Attempts, 2)

	_, err = engine.FindAllStrict(context.Background(), obj, session)
	assert.True(t, entities.IsNotFound(err))

	// no locators at all is still a not-found, never a panic
	_, err = engine.FindOneStrict(context.Background(), &entities.UIObject{Path: "bare"}, session)
	require.True(t, errors.As(err, &nf))
	assert.Empty(t, nf.Attempts)
}

func formObject() *entities.UIObject {
	return &entities.UIObject{
		Path:     "login/form",
		Locators: []entities.Locator{loc(entities.StrategyCSS, "form", 1, 1)},
		Children: []entities.UIObject{
			{Path: "user", Locators: []entities.Locator{loc(entities.StrategyName, "user", 1, 1)}},
			{Path: "pass", Locators: []entities.Locator{loc(entities.StrategyName, "pass", 1, 1)}},
		},
	}
}

func TestContainerSearchesChildrenWithinRoots(t *testing.T) {
	session := newFakeSession()
	form1 := node("form1").on("name=pass", node("pass1"))
	form2 := node("form2").on("name=user", node("user2")).on("name=pass", node("pass2"))
	session.doc.on("css=form", form1, form2)
	// a match outside any form must not be found
	session.doc.on("name=user", node("stray-user"))

	engine := newEngine(nil, false)

	all := engine.FindAll(context.Background(), formObject(), session)
	assert.Equal(t, []string{"pass1", "user2", "pass2"}, names(all))

	// first leaf in walk order: form1 has no user, so its pass comes first
	one := engine.FindOne(context.Background(), formObject(), session)
	require.NotNil(t, one)
	assert.Equal(t, "pass1", one.Describe())
}

func TestContainerWithoutRoots(t *testing.T) {
	session := newFakeSession()
	session.doc.on("name=user", node("stray-user"))
	engine := newEngine(nil, false)

	assert.Empty(t, engine.FindAll(context.Background(), formObject(), session))

	_, err := engine.FindOneStrict(context.Background(), formObject(), session)
	assert.True(t, entities.IsNotFound(err))
}

func TestContainerShadowRoots(t *testing.T) {
	session := newFakeSession()
	host1 := node("host1")
	host1.shadow = node("host1-shadow").on("name=user", node("shadow-user"))
	host2 := node("host2").on("name=user", node("light-user"))
	session.doc.on("css=form", host1, host2)

	obj := formObject()
	obj.InShadowRoot = true
	obj.Children = obj.Children[:1]

	all := newEngine(nil, false).FindAll(context.Background(), obj, session)
	assert.Equal(t, []string{"shadow-user"}, names(all), "host without shadow root is dropped")
}

func TestNestedContainers(t *testing.T) {
	session := newFakeSession()
	row := node("row").on("css=.cell", node("cell"))
	table := node("table").on("css=.row", row)
	session.doc.on("css=table", table)

	obj := &entities.UIObject{
		Path:     "grid",
		Locators: []entities.Locator{loc(entities.StrategyCSS, "table", 1, 1)},
		Children: []entities.UIObject{{
			Path:     "row",
			Locators: []entities.Locator{loc(entities.StrategyCSS, ".row", 1, 1)},
			Children: []entities.UIObject{{
				Path:     "cell",
				Locators: []entities.Locator{loc(entities.StrategyCSS, ".cell", 1, 1)},
			}},
		}},
	}

	el := newEngine(nil, false).FindOne(context.Background(), obj, session)
	require.NotNil(t, el)
	assert.Equal(t, "cell", el.Describe())

	opts := DefaultOptions()
	opts.MaxDepth = 1
	shallow := NewEngine(opts, nil, quietLogger())
	assert.Nil(t, shallow.FindOne(context.Background(), obj, session))
}

func TestWaitOneFindsLateElement(t *testing.T) {
	session := newFakeSession()
	session.doc.on("css=#late", node("late"))
	session.appearAfter("css=#late", 3)

	obj := &entities.UIObject{Path: "late", Locators: []entities.Locator{loc(entities.StrategyCSS, "#late", 1, 1)}}

	el := newEngine(nil, false).WaitOne(context.Background(), obj, session, time.Second)
	require.NotNil(t, el)
	assert.Equal(t, "late", el.Describe())
	assert.Equal(t, 4, session.callCount("css=#late"))
}

func TestWaitOneStrictTimesOut(t *testing.T) {
	session := newFakeSession()
	obj := &entities.UIObject{Path: "never", Locators: []entities.Locator{loc(entities.StrategyCSS, "#never", 1, 1)}}

	start := time.Now()
	_, err := newEngine(nil, false).WaitOneStrict(context.Background(), obj, session, 30*time.Millisecond)
	elapsed := time.Since(start)

	assert.True(t, entities.IsNotFound(err))
	assert.GreaterOrEqual(t, elapsed, 30*time.Millisecond)
	assert.Less(t, elapsed, time.Second)
	assert.Greater(t, session.callCount("css=#never"), 1)
}

func TestWaitStopsOnCancel(t *testing.T) {
	session := newFakeSession()
	obj := &entities.UIObject{Path: "never", Locators: []entities.Locator{loc(entities.StrategyCSS, "#never", 1, 1)}}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	start := time.Now()
	el := newEngine(nil, false).WaitOne(ctx, obj, session, 10*time.Second)
	assert.Nil(t, el)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestEffectiveTimeout(t *testing.T) {
	engine := newEngine(nil, false)
	withWait := &entities.UIObject{Properties: map[string]any{entities.PropWaitTimeout: 2.0}}

	assert.Equal(t, time.Second, engine.EffectiveTimeout(withWait, time.Second))
	assert.Equal(t, 2*time.Second, engine.EffectiveTimeout(withWait, 0))
	assert.Equal(t, 100*time.Millisecond, engine.EffectiveTimeout(&entities.UIObject{}, 0))
	assert.Equal(t, 100*time.Millisecond, engine.EffectiveTimeout(nil, -1))
}

func TestNewEngineDefaults(t *testing.T) {
	engine := NewEngine(Options{}, nil, quietLogger())
	assert.Equal(t, DefaultOptions(), engine.opts)
	assert.IsType(t, DisabledHealer{}, engine.healer)
}
