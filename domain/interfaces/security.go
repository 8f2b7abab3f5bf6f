package interfaces

// SelectorGuard vets selectors that did not come from a stored definition
type SelectorGuard interface {
	// Check returns a non-nil error when the selector must not be executed
	Check(selector string) error
}
