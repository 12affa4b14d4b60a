// Package display defines the boundary to the terminal UI collaborator.
// The pipeline and retry handler report through it but never depend on it
// working: a broken display must not fail a file.
package display

// Context receives user-visible status updates. Implementations may be
// no-ops; callers treat every method as best-effort.
type Context interface {
	SetStatus(name string)
	ShowWarning(msg string)
	ShowError(msg string)
}

// Noop discards all updates.
type Noop struct{}

func (Noop) SetStatus(string)   {}
func (Noop) ShowWarning(string) {}
func (Noop) ShowError(string)   {}

// Safe wraps a Context so panics in the collaborator are swallowed.
// Display is cosmetic; processing correctness never rides on it.
type Safe struct {
	Inner Context
}

func NewSafe(inner Context) Safe {
	if inner == nil {
		inner = Noop{}
	}
	return Safe{Inner: inner}
}

func (s Safe) SetStatus(name string) { s.call(func() { s.Inner.SetStatus(name) }) }
func (s Safe) ShowWarning(msg string) { s.call(func() { s.Inner.ShowWarning(msg) }) }
func (s Safe) ShowError(msg string)  { s.call(func() { s.Inner.ShowError(msg) }) }

func (s Safe) call(fn func()) {
	defer func() { _ = recover() }()
	fn()
}
