package simulation

import (
	"strings"
	"time"

	"github.com/whhaicheng/SimDesk/internal/domain/validation"
)

// Snapshot is the plain value form of a Run, exchanged with persistence adapters.
// Modifying a snapshot never affects the run it was taken from.
type Snapshot struct {
	ID             string    `json:"id"`
	ProjectPath    string    `json:"project_path"`
	ProjectName    string    `json:"project_name"`
	ToolVersion    string    `json:"tool_version"`
	InputConfig    Payload   `json:"input_config"`
	Status         Status    `json:"status"`
	Result         Payload   `json:"result"`
	HasReport      bool      `json:"has_report"`
	ReportLocation string    `json:"report_location,omitempty"`
	Duration       float64   `json:"duration_seconds"`
	UnitCount      int64     `json:"unit_count"`
	SubUnitCount   int64     `json:"sub_unit_count"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
	RecordedAt     time.Time `json:"recorded_at"`
}

// Snapshot returns the current state of the run.
func (r *Run) Snapshot() Snapshot {
	return Snapshot{
		ID:             r.id,
		ProjectPath:    r.descriptor.ProjectPath,
		ProjectName:    r.descriptor.ProjectName,
		ToolVersion:    r.descriptor.ToolVersion,
		InputConfig:    r.descriptor.InputConfig,
		Status:         r.status,
		Result:         r.result,
		HasReport:      r.hasReport,
		ReportLocation: r.reportLocation,
		Duration:       r.telemetry.Duration,
		UnitCount:      r.telemetry.UnitCount,
		SubUnitCount:   r.telemetry.SubUnitCount,
		CreatedAt:      r.createdAt,
		UpdatedAt:      r.updatedAt,
		RecordedAt:     r.recordedAt,
	}
}

// Restore rebuilds a run from a stored snapshot, checking every invariant again.
func Restore(s Snapshot) (*Run, error) {
	if strings.TrimSpace(s.ID) == "" {
		return nil, validation.New("id", "run id is required")
	}
	if s.CreatedAt.IsZero() {
		return nil, validation.New("createdAt", "created_at is required")
	}

	r := &Run{
		id: s.ID,
		descriptor: Descriptor{
			ProjectPath: s.ProjectPath,
			ProjectName: s.ProjectName,
			ToolVersion: s.ToolVersion,
			InputConfig: s.InputConfig,
		},
		telemetry: Telemetry{
			Duration:     s.Duration,
			UnitCount:    s.UnitCount,
			SubUnitCount: s.SubUnitCount,
		},
		status:         s.Status,
		result:         s.Result,
		hasReport:      s.HasReport,
		reportLocation: s.ReportLocation,
		createdAt:      s.CreatedAt.UTC(),
		updatedAt:      s.UpdatedAt.UTC(),
		recordedAt:     s.RecordedAt.UTC(),
	}
	if r.updatedAt.IsZero() {
		r.updatedAt = r.createdAt
	}
	if r.recordedAt.IsZero() {
		r.recordedAt = r.createdAt
	}
	if err := r.validate(); err != nil {
		return nil, err
	}
	return r, nil
}
