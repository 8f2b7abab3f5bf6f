package resolver

import (
	"context"
	"errors"
	"strings"
	"time"

	"ui_resolver/domain/entities"
	"ui_resolver/domain/interfaces"

	"github.com/sirupsen/logrus"
)

type searchResult struct {
	elements []interfaces.Element
	attempts []entities.Attempt
}

func (r searchResult) first() interfaces.Element {
	if len(r.elements) == 0 {
		return nil
	}
	return r.elements[0]
}

func (r searchResult) all() []interfaces.Element {
	if r.elements == nil {
		return []interfaces.Element{}
	}
	return r.elements
}

// frame is one pending (object, scope) pair of the tree walk
type frame struct {
	obj   *entities.UIObject
	scope interfaces.SearchContext
	depth int
}

// search walks obj and its children depth-first in declaration order using an
// explicit stack. Leaf matches are collected in walk order; with single set
// the walk stops at the first one. A container's own matches only ever serve
// as scopes for its children.
func (e *Engine) search(ctx context.Context, obj *entities.UIObject, session interfaces.Session, single bool, log *logrus.Entry) searchResult {
	var res searchResult
	stack := []frame{{obj: obj, scope: session}}

	for len(stack) > 0 {
		if ctx.Err() != nil {
			break
		}

		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		matches, attempts := e.tryLocators(ctx, f.obj, f.scope, session, log)
		res.attempts = append(res.attempts, attempts...)

		if !f.obj.IsContainer() {
			if single && len(matches) > 0 {
				res.elements = matches[:1]
				return res
			}
			res.elements = append(res.elements, matches...)
			continue
		}

		if len(matches) == 0 {
			continue
		}
		if f.depth >= e.opts.MaxDepth {
			log.WithField("depth", f.depth).Warn("container nesting exceeds max depth, children not searched")
			continue
		}

		scopes := e.childScopes(ctx, f.obj, matches, session, log)
		for i := len(scopes) - 1; i >= 0; i-- {
			for j := len(f.obj.Children) - 1; j >= 0; j-- {
				stack = append(stack, frame{
					obj:   &f.obj.Children[j],
					scope: scopes[i],
					depth: f.depth + 1,
				})
			}
		}
	}

	return res
}

// childScopes turns a container's matched roots into search scopes for its
// children. Roots without an obtainable shadow root are dropped.
func (e *Engine) childScopes(ctx context.Context, obj *entities.UIObject, roots []interfaces.Element, session interfaces.Session, log *logrus.Entry) []interfaces.SearchContext {
	scopes := make([]interfaces.SearchContext, 0, len(roots))

	for _, root := range roots {
		if !obj.InShadowRoot {
			scopes = append(scopes, root)
			continue
		}

		shadow, err := session.ShadowRoot(ctx, root)
		if err != nil || shadow == nil {
			unavailable := &entities.ShadowRootUnavailableError{Object: obj.Path, Err: err}
			log.WithField("root", root.Describe()).Warn(unavailable.Error())
			continue
		}
		scopes = append(scopes, shadow)
	}

	return scopes
}

// tryLocators tries obj's locators in rank order within scope. The first
// locator matching anything wins; locators are alternatives.
func (e *Engine) tryLocators(ctx context.Context, obj *entities.UIObject, scope interfaces.SearchContext, session interfaces.Session, log *logrus.Entry) ([]interfaces.Element, []entities.Attempt) {
	sorted := entities.SortLocators(obj.Locators)
	attempts := make([]entities.Attempt, 0, len(sorted))

	for _, loc := range sorted {
		attempt, elements := e.attempt(ctx, obj, loc, scope, session)
		attempts = append(attempts, attempt)

		fields := log.WithFields(logrus.Fields{
			"target":   obj.Path,
			"strategy": loc.Strategy,
			"priority": loc.Priority,
		})

		switch attempt.Outcome {
		case entities.Matched:
			fields.WithField("matches", attempt.Elements).Debug("locator matched")
			return elements, attempts
		case entities.Skipped:
			if errors.Is(attempt.Err, entities.ErrUnsupportedStrategy) {
				fields.Warnf("locator skipped: %s", attempt.Reason)
			} else {
				fields.Debugf("locator skipped: %s", attempt.Reason)
			}
		case entities.Failed:
			if attempt.Err != nil {
				fields.WithError(attempt.Err).Warn("locator search failed")
			} else {
				fields.Debugf("locator failed: %s", attempt.Reason)
			}
		}
	}

	return nil, attempts
}

// attempt evaluates a single locator and tags the outcome
func (e *Engine) attempt(ctx context.Context, obj *entities.UIObject, loc entities.Locator, scope interfaces.SearchContext, session interfaces.Session) (entities.Attempt, []interfaces.Element) {
	a := entities.Attempt{Object: obj.Path, Locator: loc}

	switch {
	case !loc.Active:
		a.Outcome, a.Reason = entities.Skipped, "inactive"
		return a, nil
	case strings.TrimSpace(loc.Value) == "":
		a.Outcome, a.Reason = entities.Skipped, "empty value"
		return a, nil
	case !loc.AppliesTo(session.Platform()):
		a.Outcome, a.Reason = entities.Skipped, "not tagged for platform "+session.Platform()
		return a, nil
	}

	native, err := session.TranslateSelector(loc.Strategy, loc.Value)
	if err != nil {
		return erred(a, err), nil
	}

	// scopes such as shadow roots may reject a strategy the page accepts
	elements, err := scope.FindElements(ctx, native)
	if err != nil {
		return erred(a, err), nil
	}
	if len(elements) == 0 {
		a.Outcome, a.Reason = entities.Failed, "no match"
		return a, nil
	}

	a.Outcome, a.Elements = entities.Matched, len(elements)
	return a, elements
}

// erred records err on a; an unsupported strategy is a skip, anything else a failure
func erred(a entities.Attempt, err error) entities.Attempt {
	a.Err, a.Reason = err, err.Error()
	if errors.Is(err, entities.ErrUnsupportedStrategy) {
		a.Outcome = entities.Skipped
	} else {
		a.Outcome = entities.Failed
	}
	return a
}

// poll repeats the immediate quiet search every PollInterval until it finds
// something, the effective timeout elapses or ctx is done
func (e *Engine) poll(ctx context.Context, obj *entities.UIObject, session interfaces.Session, timeout time.Duration, single bool, log *logrus.Entry) searchResult {
	timeout = e.EffectiveTimeout(obj, timeout)
	deadline := time.Now().Add(timeout)
	cycles := 0

	for {
		cycles++
		res := e.search(ctx, obj, session, single, log)
		if len(res.elements) > 0 {
			if cycles > 1 {
				log.WithField("cycles", cycles).Debug("element appeared while polling")
			}
			return res
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			log.WithFields(logrus.Fields{"timeout": timeout, "cycles": cycles}).Debug("polling timed out")
			return res
		}

		timer := time.NewTimer(min(e.opts.PollInterval, remaining))
		select {
		case <-ctx.Done():
			timer.Stop()
			return res
		case <-timer.C:
		}
	}
}
