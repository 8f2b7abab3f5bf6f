package resolver

import (
	"context"
	"time"

	"ui_resolver/domain/entities"
	"ui_resolver/domain/interfaces"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	DefaultTimeout      = 10 * time.Second
	DefaultPollInterval = 250 * time.Millisecond
	DefaultMaxDepth     = 32
)

// Options tunes the engine
type Options struct {
	// DefaultTimeout applies to polling searches when neither the caller nor
	// the object provides a wait
	DefaultTimeout time.Duration
	PollInterval   time.Duration
	// MaxDepth bounds container nesting; deeper children are not searched
	MaxDepth    int
	SelfHealing bool
}

// DefaultOptions returns the engine defaults with self-healing off
func DefaultOptions() Options {
	return Options{
		DefaultTimeout: DefaultTimeout,
		PollInterval:   DefaultPollInterval,
		MaxDepth:       DefaultMaxDepth,
	}
}

// Engine resolves merged UI objects to live elements of a session.
// Quiet entry points return nil or an empty slice on failure; strict ones
// return an *entities.ElementNotFoundError.
type Engine struct {
	opts   Options
	healer interfaces.SelfHealer
	logger *logrus.Logger
}

// NewEngine - creates an engine. A nil healer means healing is never attempted.
func NewEngine(opts Options, healer interfaces.SelfHealer, logger *logrus.Logger) *Engine {
	if opts.DefaultTimeout <= 0 {
		opts.DefaultTimeout = DefaultTimeout
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultMaxDepth
	}
	if healer == nil {
		healer = DisabledHealer{}
	}
	return &Engine{opts: opts, healer: healer, logger: logger}
}

// FindOne - returns the first match of obj, or nil
func (e *Engine) FindOne(ctx context.Context, obj *entities.UIObject, session interfaces.Session) interfaces.Element {
	if obj == nil {
		return nil
	}
	res := e.search(ctx, obj, session, true, e.entry(obj))
	return res.first()
}

// FindAll - returns every match of obj; empty when nothing matched
func (e *Engine) FindAll(ctx context.Context, obj *entities.UIObject, session interfaces.Session) []interfaces.Element {
	if obj == nil {
		return []interfaces.Element{}
	}
	return e.search(ctx, obj, session, false, e.entry(obj)).all()
}

// FindOneStrict - like FindOne but fails with ElementNotFoundError, after
// self-healing when it is enabled
func (e *Engine) FindOneStrict(ctx context.Context, obj *entities.UIObject, session interfaces.Session) (interfaces.Element, error) {
	if obj == nil {
		return nil, &entities.ElementNotFoundError{}
	}
	log := e.entry(obj)
	res := e.search(ctx, obj, session, true, log)
	if el := res.first(); el != nil {
		return el, nil
	}
	return e.heal(ctx, obj, session, res.attempts, log)
}

// FindAllStrict - like FindAll but fails with ElementNotFoundError
func (e *Engine) FindAllStrict(ctx context.Context, obj *entities.UIObject, session interfaces.Session) ([]interfaces.Element, error) {
	if obj == nil {
		return nil, &entities.ElementNotFoundError{}
	}
	res := e.search(ctx, obj, session, false, e.entry(obj))
	if len(res.elements) == 0 {
		return nil, &entities.ElementNotFoundError{Path: obj.Path, Attempts: res.attempts}
	}
	return res.elements, nil
}

// WaitOne - polls FindOne until it matches or the timeout elapses.
// A non-positive timeout falls back to the object's wait, then the default.
func (e *Engine) WaitOne(ctx context.Context, obj *entities.UIObject, session interfaces.Session, timeout time.Duration) interfaces.Element {
	if obj == nil {
		return nil
	}
	return e.poll(ctx, obj, session, timeout, true, e.entry(obj)).first()
}

// WaitAll - polls FindAll until it matches or the timeout elapses
func (e *Engine) WaitAll(ctx context.Context, obj *entities.UIObject, session interfaces.Session, timeout time.Duration) []interfaces.Element {
	if obj == nil {
		return []interfaces.Element{}
	}
	return e.poll(ctx, obj, session, timeout, false, e.entry(obj)).all()
}

// WaitOneStrict - polling FindOneStrict; self-healing runs once after the timeout
func (e *Engine) WaitOneStrict(ctx context.Context, obj *entities.UIObject, session interfaces.Session, timeout time.Duration) (interfaces.Element, error) {
	if obj == nil {
		return nil, &entities.ElementNotFoundError{}
	}
	log := e.entry(obj)
	res := e.poll(ctx, obj, session, timeout, true, log)
	if el := res.first(); el != nil {
		return el, nil
	}
	return e.heal(ctx, obj, session, res.attempts, log)
}

// WaitAllStrict - polling FindAllStrict
func (e *Engine) WaitAllStrict(ctx context.Context, obj *entities.UIObject, session interfaces.Session, timeout time.Duration) ([]interfaces.Element, error) {
	if obj == nil {
		return nil, &entities.ElementNotFoundError{}
	}
	res := e.poll(ctx, obj, session, timeout, false, e.entry(obj))
	if len(res.elements) == 0 {
		return nil, &entities.ElementNotFoundError{Path: obj.Path, Attempts: res.attempts}
	}
	return res.elements, nil
}

// Explain - runs one immediate search and returns every locator attempt made
func (e *Engine) Explain(ctx context.Context, obj *entities.UIObject, session interfaces.Session) []entities.Attempt {
	if obj == nil {
		return nil
	}
	return e.search(ctx, obj, session, false, e.entry(obj)).attempts
}

// EffectiveTimeout - caller value, else the object's wait, else the default
func (e *Engine) EffectiveTimeout(obj *entities.UIObject, timeout time.Duration) time.Duration {
	if timeout > 0 {
		return timeout
	}
	if obj != nil {
		if d, ok := obj.WaitTimeout(); ok {
			return d
		}
	}
	return e.opts.DefaultTimeout
}

func (e *Engine) heal(ctx context.Context, obj *entities.UIObject, session interfaces.Session, attempts []entities.Attempt, log *logrus.Entry) (interfaces.Element, error) {
	notFound := &entities.ElementNotFoundError{Path: obj.Path, Attempts: attempts}
	if !e.opts.SelfHealing {
		return nil, notFound
	}

	log.Info("all locators exhausted, trying self-healing")
	el, err := e.healer.Heal(ctx, obj, session)
	if err != nil || el == nil {
		log.WithError(err).Warn("self-healing did not find the element")
		return nil, notFound
	}

	log.WithField("element", el.Describe()).Info("element recovered by self-healing")
	return el, nil
}

func (e *Engine) entry(obj *entities.UIObject) *logrus.Entry {
	return e.logger.WithFields(logrus.Fields{
		"object":    obj.Path,
		"search_id": uuid.NewString(),
	})
}
