package entities

import "fmt"

// Outcome tags the result of trying a single locator
type Outcome int

const (
	Unknown Outcome = iota
	Matched
	Skipped
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Unknown:
		return "unknown"
	case Matched:
		return "matched"
	case Skipped:
		return "skipped"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Attempt records what happened when one locator was tried in one scope.
// Elements is only set for Matched; Reason explains Skipped and Failed.
type Attempt struct {
	Object   string
	Locator  Locator
	Outcome  Outcome
	Elements int
	Reason   string
	Err      error
}

func (a Attempt) String() string {
	switch a.Outcome {
	case Matched:
		return fmt.Sprintf("%s %s=%q matched %d", a.Object, a.Locator.Strategy, a.Locator.Value, a.Elements)
	case Unknown:
		return fmt.Sprintf("%s %s=%q not tried", a.Object, a.Locator.Strategy, a.Locator.Value)
	default:
		return fmt.Sprintf("%s %s=%q %s: %s", a.Object, a.Locator.Strategy, a.Locator.Value, a.Outcome, a.Reason)
	}
}
