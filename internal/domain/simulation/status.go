// Package simulation provides the simulation run domain model.
package simulation

import (
	"fmt"
	"strings"
)

// Status represents the lifecycle state of a simulation run.
type Status uint8

const (
	StatusPending   Status = iota // Created, waiting to execute
	StatusRunning                 // Executing
	StatusCompleted               // Finished successfully
	StatusFailed                  // Finished with an error, may be retried
	StatusCancelled               // Cancelled by user

	statusCount
)

var statusNames = [statusCount]string{
	StatusPending:   "PENDING",
	StatusRunning:   "RUNNING",
	StatusCompleted: "COMPLETED",
	StatusFailed:    "FAILED",
	StatusCancelled: "CANCELLED",
}

// transitions[from][to] is true when from -> to is legal.
var transitions = [statusCount][statusCount]bool{
	StatusPending: {
		StatusRunning:   true,
		StatusCancelled: true,
	},
	StatusRunning: {
		StatusCompleted: true,
		StatusFailed:    true,
		StatusCancelled: true,
	},
	StatusFailed: {
		StatusRunning: true,
	},
}

// Statuses returns every status in ordinal order.
func Statuses() []Status {
	return []Status{StatusPending, StatusRunning, StatusCompleted, StatusFailed, StatusCancelled}
}

// CanTransition reports whether a run may move from one status to another.
func CanTransition(from, to Status) bool {
	if !from.IsValid() || !to.IsValid() {
		return false
	}
	return transitions[from][to]
}

// IsValid checks if the status is one of the known states.
func (s Status) IsValid() bool {
	return s < statusCount
}

// IsTerminal reports whether no further transition is possible.
// FAILED is not terminal because it can be retried.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// IsActive reports whether the run has not finished yet.
func (s Status) IsActive() bool {
	return s == StatusPending || s == StatusRunning
}

// CanTransitionTo checks the transition table from s.
func (s Status) CanTransitionTo(target Status) bool {
	return CanTransition(s, target)
}

// String implements Stringer interface.
func (s Status) String() string {
	if !s.IsValid() {
		return fmt.Sprintf("Status(%d)", uint8(s))
	}
	return statusNames[s]
}

// ParseStatus parses a status name. Matching is case-insensitive.
func ParseStatus(name string) (Status, error) {
	upper := strings.ToUpper(strings.TrimSpace(name))
	for i, n := range statusNames {
		if n == upper {
			return Status(i), nil
		}
	}
	return 0, fmt.Errorf("unknown run status: %q", name)
}

// MarshalText encodes the status by name.
func (s Status) MarshalText() ([]byte, error) {
	if !s.IsValid() {
		return nil, fmt.Errorf("invalid run status: %d", uint8(s))
	}
	return []byte(statusNames[s]), nil
}

// UnmarshalText decodes a status name.
func (s *Status) UnmarshalText(text []byte) error {
	parsed, err := ParseStatus(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
