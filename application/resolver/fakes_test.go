package resolver

import (
	"context"
	"fmt"
	"io"
	"sync"

	"ui_resolver/domain/entities"
	"ui_resolver/domain/interfaces"

	"github.com/sirupsen/logrus"
)

// fakeNode is an element whose matches are keyed by NativeSelector.String()
type fakeNode struct {
	name    string
	matches map[string][]*fakeNode
	shadow  *fakeNode
}

func node(name string) *fakeNode {
	return &fakeNode{name: name, matches: make(map[string][]*fakeNode)}
}

func (n *fakeNode) on(sel string, found ...*fakeNode) *fakeNode {
	n.matches[sel] = append(n.matches[sel], found...)
	return n
}

func (n *fakeNode) FindElements(ctx context.Context, sel entities.NativeSelector) ([]interfaces.Element, error) {
	return toElements(n.matches[sel.String()]), nil
}

func (n *fakeNode) Describe() string { return n.name }

func toElements(nodes []*fakeNode) []interfaces.Element {
	out := make([]interfaces.Element, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n)
	}
	return out
}

type fakeSession struct {
	doc         *fakeNode
	platform    string
	unsupported map[entities.Strategy]bool
	broken      map[string]error
	snapshot    string

	mu     sync.Mutex
	hidden map[string]int
	calls  map[string]int
}

func newFakeSession() *fakeSession {
	return &fakeSession{
		doc:         node("document"),
		platform:    entities.PlatformWeb,
		unsupported: map[entities.Strategy]bool{entities.StrategyImage: true},
		broken:      make(map[string]error),
		snapshot:    "URL: https://example.test\nbutton #new\n",
		hidden:      make(map[string]int),
		calls:       make(map[string]int),
	}
}

// appearAfter hides sel from document level searches for the first n calls
func (s *fakeSession) appearAfter(sel string, n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hidden[sel] = n
}

func (s *fakeSession) callCount(sel string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[sel]
}

func (s *fakeSession) FindElements(ctx context.Context, sel entities.NativeSelector) ([]interfaces.Element, error) {
	key := sel.String()

	s.mu.Lock()
	s.calls[key]++
	visible := s.calls[key] > s.hidden[key]
	s.mu.Unlock()

	if err, ok := s.broken[key]; ok {
		return nil, err
	}
	if !visible {
		return nil, nil
	}
	return s.doc.FindElements(ctx, sel)
}

func (s *fakeSession) TranslateSelector(strategy entities.Strategy, value string) (entities.NativeSelector, error) {
	if s.unsupported[strategy] {
		return entities.NativeSelector{}, &entities.UnsupportedStrategyError{Strategy: strategy, Driver: "fake"}
	}
	return entities.NativeSelector{Kind: string(strategy), Query: value}, nil
}

func (s *fakeSession) ShadowRoot(ctx context.Context, el interfaces.Element) (interfaces.SearchContext, error) {
	n, ok := el.(*fakeNode)
	if !ok || n.shadow == nil {
		return nil, fmt.Errorf("%w: %s", entities.ErrShadowRootUnavailable, el.Describe())
	}
	return n.shadow, nil
}

func (s *fakeSession) DocumentSnapshot(ctx context.Context) (string, error) {
	return s.snapshot, nil
}

func (s *fakeSession) Platform() string { return s.platform }

type fakeModel struct {
	mu     sync.Mutex
	answer string
	err    error
	calls  int
}

func (m *fakeModel) SuggestSelector(ctx context.Context, description string, snapshot string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	return m.answer, m.err
}

func (m *fakeModel) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

type rejectAll struct{}

func (rejectAll) Check(selector string) error { return fmt.Errorf("rejected %q", selector) }

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func loc(strategy entities.Strategy, value string, priority int, reliability float64) entities.Locator {
	return entities.Locator{Strategy: strategy, Value: value, Active: true, Priority: priority, Reliability: reliability}
}

func names(elements []interfaces.Element) []string {
	out := make([]string, 0, len(elements))
	for _, el := range elements {
		out = append(out, el.Describe())
	}
	return out
}
