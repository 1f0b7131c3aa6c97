package simulation

import (
	"errors"
	"fmt"
)

// StateTransitionError represents an operation that is illegal for the current status.
type StateTransitionError struct {
	Op   string // Named operation, e.g. "retry"
	From Status
	To   Status
}

func (e *StateTransitionError) Error() string {
	return fmt.Sprintf("cannot %s run: invalid state transition: %s -> %s", e.Op, e.From, e.To)
}

// IsStateTransition reports whether err is a StateTransitionError.
func IsStateTransition(err error) bool {
	var te *StateTransitionError
	return errors.As(err, &te)
}
