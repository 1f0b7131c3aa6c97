package simulation

import (
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/whhaicheng/SimDesk/internal/domain/validation"
)

// Payload is an opaque serialized blob (input configuration, results).
// It is never parsed at this layer.
type Payload string

// EmptyPayload is the placeholder result of a run that produced nothing yet.
const EmptyPayload Payload = "{}"

// now is replaced in tests.
var now = func() time.Time { return time.Now().UTC() }

// Descriptor holds the fields that describe a run. They are immutable after creation.
type Descriptor struct {
	ProjectPath string  // Path of the owning project
	ProjectName string  // Display name of the owning project
	ToolVersion string  // Version of the simulation tool that produced the run
	InputConfig Payload // Serialized simulation input
}

// Telemetry holds the numeric measurements recorded once at creation.
type Telemetry struct {
	Duration     float64 // Seconds
	UnitCount    int64
	SubUnitCount int64
}

// Run is one recorded execution of a simulation.
// All state is private; it changes only through the named operations below.
type Run struct {
	id         string
	descriptor Descriptor
	telemetry  Telemetry

	status         Status
	result         Payload
	hasReport      bool
	reportLocation string

	createdAt  time.Time
	updatedAt  time.Time
	recordedAt time.Time
}

type createOptions struct {
	status         Status
	recordedAt     time.Time
	hasReport      bool
	reportLocation string
}

// Option customizes Create.
type Option func(*createOptions)

// WithInitialStatus starts the run in the given status instead of PENDING.
func WithInitialStatus(s Status) Option {
	return func(o *createOptions) { o.status = s }
}

// WithRecordedAt sets when the simulated event occurred.
func WithRecordedAt(t time.Time) Option {
	return func(o *createOptions) { o.recordedAt = t }
}

// WithAttachedReport creates the run with a report already attached.
func WithAttachedReport(location string) Option {
	return func(o *createOptions) {
		o.hasReport = true
		o.reportLocation = location
	}
}

// Create validates the inputs and returns a new run.
func Create(desc Descriptor, tel Telemetry, opts ...Option) (*Run, error) {
	o := createOptions{status: StatusPending}
	for _, opt := range opts {
		opt(&o)
	}

	ts := now()
	recordedAt := ts
	if !o.recordedAt.IsZero() {
		recordedAt = o.recordedAt.UTC()
	}

	r := &Run{
		id:             uuid.New().String(),
		descriptor:     desc,
		telemetry:      tel,
		status:         o.status,
		result:         EmptyPayload,
		hasReport:      o.hasReport,
		reportLocation: o.reportLocation,
		createdAt:      ts,
		updatedAt:      ts,
		recordedAt:     recordedAt,
	}
	if err := r.validate(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Run) validate() error {
	d := r.descriptor
	switch {
	case strings.TrimSpace(d.ProjectPath) == "":
		return validation.New("projectPath", "project path is required")
	case strings.TrimSpace(d.ProjectName) == "":
		return validation.New("projectName", "project name is required")
	case strings.TrimSpace(d.ToolVersion) == "":
		return validation.New("toolVersion", "tool version is required")
	case strings.TrimSpace(string(d.InputConfig)) == "":
		return validation.New("inputConfig", "input configuration is required")
	}

	t := r.telemetry
	if math.IsNaN(t.Duration) || t.Duration < 0 {
		return validation.New("duration", "duration must be non-negative")
	}
	if t.UnitCount < 0 {
		return validation.New("unitCount", "unit count must be non-negative")
	}
	if t.SubUnitCount < 0 {
		return validation.New("subUnitCount", "sub-unit count must be non-negative")
	}

	if r.hasReport && strings.TrimSpace(r.reportLocation) == "" {
		return validation.New("reportLocation", "report location is required when a report is attached")
	}
	if !r.status.IsValid() {
		return validation.Newf("status", "invalid status: %s", r.status)
	}
	return nil
}

func (r *Run) touch() {
	ts := now()
	if ts.Before(r.updatedAt) {
		ts = r.updatedAt
	}
	r.updatedAt = ts
}

func (r *Run) transition(op string, to Status) error {
	if !CanTransition(r.status, to) {
		return &StateTransitionError{Op: op, From: r.status, To: to}
	}
	r.status = to
	r.touch()
	return nil
}

// MarkRunning moves the run to RUNNING.
func (r *Run) MarkRunning() error {
	return r.transition("start", StatusRunning)
}

// MarkCompleted moves the run to COMPLETED and stores its result.
// An empty result is stored as EmptyPayload.
func (r *Run) MarkCompleted(result Payload) error {
	if !CanTransition(r.status, StatusCompleted) {
		return &StateTransitionError{Op: "complete", From: r.status, To: StatusCompleted}
	}
	if result == "" {
		result = EmptyPayload
	}
	r.status = StatusCompleted
	r.result = result
	r.touch()
	return nil
}

// MarkFailed moves the run to FAILED. A non-empty result overwrites the stored one.
func (r *Run) MarkFailed(result Payload) error {
	if !CanTransition(r.status, StatusFailed) {
		return &StateTransitionError{Op: "fail", From: r.status, To: StatusFailed}
	}
	r.status = StatusFailed
	if result != "" {
		r.result = result
	}
	r.touch()
	return nil
}

// Cancel moves the run to CANCELLED.
func (r *Run) Cancel() error {
	return r.transition("cancel", StatusCancelled)
}

// Retry restarts a FAILED run. Only FAILED runs can be retried, even though
// PENDING -> RUNNING is otherwise legal.
func (r *Run) Retry() error {
	if r.status != StatusFailed {
		return &StateTransitionError{Op: "retry", From: r.status, To: StatusRunning}
	}
	return r.transition("retry", StatusRunning)
}

// UpdateResultPayload overwrites the result regardless of status.
func (r *Run) UpdateResultPayload(result Payload) {
	r.result = result
	r.touch()
}

// AttachReport records where the run's report lives. The latest call wins.
func (r *Run) AttachReport(location string) error {
	if strings.TrimSpace(location) == "" {
		return validation.New("reportLocation", "report location is required")
	}
	r.hasReport = true
	r.reportLocation = location
	r.touch()
	return nil
}

// CanTransitionTo reports whether the run may move to target from its current status.
func (r *Run) CanTransitionTo(target Status) bool {
	return CanTransition(r.status, target)
}

func (r *Run) IsPending() bool { return r.status == StatusPending }
func (r *Run) IsRunning() bool { return r.status == StatusRunning }
func (r *Run) IsCompleted() bool { return r.status == StatusCompleted }
func (r *Run) IsFailed() bool { return r.status == StatusFailed }
func (r *Run) IsCancelled() bool { return r.status == StatusCancelled }
func (r *Run) IsTerminal() bool { return r.status.IsTerminal() }

func (r *Run) ID() string { return r.id }
func (r *Run) Descriptor() Descriptor { return r.descriptor }
func (r *Run) ProjectPath() string { return r.descriptor.ProjectPath }
func (r *Run) ProjectName() string { return r.descriptor.ProjectName }
func (r *Run) ToolVersion() string { return r.descriptor.ToolVersion }
func (r *Run) InputConfig() Payload { return r.descriptor.InputConfig }
func (r *Run) Telemetry() Telemetry { return r.telemetry }
func (r *Run) Status() Status { return r.status }
func (r *Run) Result() Payload { return r.result }
func (r *Run) HasAttachedReport() bool { return r.hasReport }
func (r *Run) ReportLocation() string { return r.reportLocation }
func (r *Run) CreatedAt() time.Time { return r.createdAt }
func (r *Run) UpdatedAt() time.Time { return r.updatedAt }
func (r *Run) RecordedAt() time.Time { return r.recordedAt }
