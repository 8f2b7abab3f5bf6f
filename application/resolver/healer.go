package resolver

import (
	"context"
	"fmt"
	"strings"
	"time"

	"ui_resolver/domain/entities"
	"ui_resolver/domain/interfaces"

	"github.com/sirupsen/logrus"
)

const (
	DefaultHealTimeout   = 3 * time.Second
	DefaultSnapshotLimit = 20000
)

// DisabledHealer never heals
type DisabledHealer struct{}

func (DisabledHealer) Heal(context.Context, *entities.UIObject, interfaces.Session) (interfaces.Element, error) {
	return nil, fmt.Errorf("%w: disabled", entities.ErrSelfHealingUnavailable)
}

// HealerOptions tunes ModelHealer
type HealerOptions struct {
	// Timeout bounds the search for the model's selector, not the model call
	Timeout       time.Duration
	PollInterval  time.Duration
	SnapshotLimit int
}

// ModelHealer asks a SelectorModel for a fresh selector and tries it once.
// Every failure is reported as ErrSelfHealingUnavailable.
type ModelHealer struct {
	model  interfaces.SelectorModel
	guard  interfaces.SelectorGuard
	opts   HealerOptions
	logger *logrus.Logger
}

// NewModelHealer - creates a healer backed by model; guard may be nil
func NewModelHealer(model interfaces.SelectorModel, guard interfaces.SelectorGuard, opts HealerOptions, logger *logrus.Logger) *ModelHealer {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultHealTimeout
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	if opts.SnapshotLimit <= 0 {
		opts.SnapshotLimit = DefaultSnapshotLimit
	}
	return &ModelHealer{model: model, guard: guard, opts: opts, logger: logger}
}

// Heal - single shot: one model call, one bounded search
func (h *ModelHealer) Heal(ctx context.Context, obj *entities.UIObject, session interfaces.Session) (interfaces.Element, error) {
	log := h.logger.WithField("object", obj.Path)

	snapshot, err := session.DocumentSnapshot(ctx)
	if err != nil {
		return nil, unavailable("snapshot", err)
	}
	snapshot = entities.Truncate(snapshot, h.opts.SnapshotLimit)

	answer, err := h.model.SuggestSelector(ctx, DescribeObject(obj), snapshot)
	if err != nil {
		return nil, unavailable("model call", err)
	}

	selector := UnwrapAnswer(answer)
	if selector == "" {
		return nil, unavailable("model answer", fmt.Errorf("no selector in %q", entities.Truncate(answer, 200)))
	}

	if h.guard != nil {
		if err := h.guard.Check(selector); err != nil {
			return nil, unavailable("selector rejected", err)
		}
	}

	strategy, value := InferStrategy(selector)
	native, err := session.TranslateSelector(strategy, value)
	if err != nil {
		return nil, unavailable("translate", err)
	}

	log.WithFields(logrus.Fields{"strategy": strategy, "selector": value}).Info("trying model suggested selector")

	deadline := time.Now().Add(h.opts.Timeout)
	for {
		elements, err := session.FindElements(ctx, native)
		if err == nil && len(elements) > 0 {
			return elements[0], nil
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			if err == nil {
				err = fmt.Errorf("selector %s matched nothing within %s", native, h.opts.Timeout)
			}
			return nil, unavailable("suggested selector", err)
		}

		timer := time.NewTimer(min(h.opts.PollInterval, remaining))
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, unavailable("suggested selector", ctx.Err())
		case <-timer.C:
		}
	}
}

// DescribeObject builds the natural language request sent to the model
func DescribeObject(obj *entities.UIObject) string {
	var b strings.Builder
	fmt.Fprintf(&b, "UI element %q", obj.Label())
	if obj.Type != "" {
		fmt.Fprintf(&b, " of type %s", obj.Type)
	}
	b.WriteString(".\n")
	if obj.Description != "" {
		fmt.Fprintf(&b, "Description: %s\n", obj.Description)
	}
	fmt.Fprintf(&b, "Repository path: %s\n", obj.Path)

	var stale []string
	for _, l := range obj.Locators {
		if l.Active && l.Value != "" {
			stale = append(stale, fmt.Sprintf("%s=%s", l.Strategy, l.Value))
		}
	}
	if len(stale) > 0 {
		fmt.Fprintf(&b, "Selectors that no longer match: %s\n", strings.Join(stale, ", "))
	}
	return b.String()
}

// UnwrapAnswer strips code fences, quotes, backticks and "selector:" labels
// until the innermost payload is left
func UnwrapAnswer(answer string) string {
	s := strings.TrimSpace(answer)

	// prose before a fenced block is dropped
	if fence := strings.Index(s, "```"); fence > 0 {
		s = s[fence:]
	}

	for {
		before := s

		if strings.HasPrefix(s, "```") {
			s = strings.TrimPrefix(s, "```")
			if nl := strings.IndexByte(s, '\n'); nl >= 0 {
				// first line is the language tag, if any
				s = s[nl+1:]
			}
			if end := strings.Index(s, "```"); end >= 0 {
				s = s[:end]
			}
			s = strings.TrimSpace(s)
		}

		if lower := strings.ToLower(s); strings.HasPrefix(lower, "selector:") {
			s = strings.TrimSpace(s[len("selector:"):])
		}

		if len(s) >= 2 {
			first, last := s[0], s[len(s)-1]
			if (first == '"' || first == '\'' || first == '`') && first == last {
				s = strings.TrimSpace(s[1 : len(s)-1])
			}
		}

		if s == before {
			break
		}
	}

	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = strings.TrimSpace(s[:nl])
	}
	return s
}

// InferStrategy classifies a model suggested selector
func InferStrategy(selector string) (entities.Strategy, string) {
	switch {
	case strings.HasPrefix(selector, "xpath="):
		return entities.StrategyXPath, strings.TrimPrefix(selector, "xpath=")
	case strings.HasPrefix(selector, "css="):
		return entities.StrategyCSS, strings.TrimPrefix(selector, "css=")
	case strings.HasPrefix(selector, "/"), strings.HasPrefix(selector, "("), strings.HasPrefix(selector, "./"):
		return entities.StrategyXPath, selector
	default:
		return entities.StrategyCSS, selector
	}
}

func unavailable(stage string, err error) error {
	return fmt.Errorf("%w: %s: %v", entities.ErrSelfHealingUnavailable, stage, err)
}

var (
	_ interfaces.SelfHealer = DisabledHealer{}
	_ interfaces.SelfHealer = (*ModelHealer)(nil)
)
