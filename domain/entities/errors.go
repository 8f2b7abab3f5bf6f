package entities

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnsupportedStrategy is returned by sessions that cannot execute a strategy
	ErrUnsupportedStrategy = errors.New("unsupported locator strategy")

	// ErrShadowRootUnavailable is returned when an element exposes no open shadow root
	ErrShadowRootUnavailable = errors.New("shadow root unavailable")

	// ErrSelfHealingUnavailable never reaches callers of the engine
	ErrSelfHealingUnavailable = errors.New("self-healing unavailable")
)

// ObjectNotFoundError means no stored definition exists at Path
type ObjectNotFoundError struct {
	Path string
	Err  error
}

func (e *ObjectNotFoundError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("object not found: %s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("object not found: %s", e.Path)
}

func (e *ObjectNotFoundError) Unwrap() error { return e.Err }

// CyclicInheritanceError lists the parentPath chain that loops back on itself
type CyclicInheritanceError struct {
	Chain []string
}

func (e *CyclicInheritanceError) Error() string {
	return fmt.Sprintf("cyclic inheritance: %s", strings.Join(e.Chain, " -> "))
}

// DefinitionParseError means the stored definition at Path is malformed
type DefinitionParseError struct {
	Path string
	Err  error
}

func (e *DefinitionParseError) Error() string {
	return fmt.Sprintf("malformed definition %s: %v", e.Path, e.Err)
}

func (e *DefinitionParseError) Unwrap() error { return e.Err }

// UnsupportedStrategyError is recoverable: the locator is skipped
type UnsupportedStrategyError struct {
	Strategy Strategy
	Driver   string
}

func (e *UnsupportedStrategyError) Error() string {
	return fmt.Sprintf("%s session cannot execute strategy %q", e.Driver, e.Strategy)
}

func (e *UnsupportedStrategyError) Is(target error) bool {
	return target == ErrUnsupportedStrategy
}

// ShadowRootUnavailableError is recoverable: the root is dropped
type ShadowRootUnavailableError struct {
	Object string
	Err    error
}

func (e *ShadowRootUnavailableError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("shadow root unavailable for %s: %v", e.Object, e.Err)
	}
	return fmt.Sprintf("shadow root unavailable for %s", e.Object)
}

func (e *ShadowRootUnavailableError) Unwrap() error { return e.Err }

func (e *ShadowRootUnavailableError) Is(target error) bool {
	return target == ErrShadowRootUnavailable
}

// ElementNotFoundError is the terminal failure of a strict search.
// Attempts holds the trace of the last search that was run.
type ElementNotFoundError struct {
	Path     string
	Attempts []Attempt
}

func (e *ElementNotFoundError) Error() string {
	if len(e.Attempts) == 0 {
		return fmt.Sprintf("element not found: %s (no usable locators)", e.Path)
	}
	parts := make([]string, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		parts = append(parts, a.String())
	}
	return fmt.Sprintf("element not found: %s (tried: %s)", e.Path, strings.Join(parts, "; "))
}

// IsNotFound reports whether err is (or wraps) an ElementNotFoundError
func IsNotFound(err error) bool {
	var nf *ElementNotFoundError
	return errors.As(err, &nf)
}
