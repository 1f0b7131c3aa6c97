package simulation

import "time"

// EventType names what happened to a run.
type EventType string

const (
	EventCreated        EventType = "run.created"
	EventStatusChanged  EventType = "run.status_changed"
	EventResultUpdated  EventType = "run.result_updated"
	EventReportAttached EventType = "run.report_attached"
	EventDeleted        EventType = "run.deleted"
)

// Event describes the outcome of one operation on a run.
// Callers decide whether and where to broadcast it.
type Event struct {
	Type       EventType `json:"type"`
	RunID      string    `json:"run_id"`
	From       Status    `json:"from"`
	To         Status    `json:"to"`
	OccurredAt time.Time `json:"occurred_at"`
	Run        *Snapshot `json:"run,omitempty"` // Nil for EventDeleted
}

// NewEvent builds an event for r. from is the status before the operation.
func NewEvent(t EventType, from Status, r *Run) Event {
	snap := r.Snapshot()
	return Event{
		Type:       t,
		RunID:      r.ID(),
		From:       from,
		To:         r.Status(),
		OccurredAt: r.UpdatedAt(),
		Run:        &snap,
	}
}
