package state

import "fmt"

// InvalidTransitionError reports a progression change that is not allowed,
// such as solving a puzzle that is already solved.
type InvalidTransitionError struct {
	Op     string
	Target string
	Reason string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid transition: %s %s: %s", e.Op, e.Target, e.Reason)
}
