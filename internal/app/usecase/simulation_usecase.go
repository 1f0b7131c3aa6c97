// Package usecase provides simulation run lifecycle business logic.
package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/whhaicheng/SimDesk/internal/domain/search"
	"github.com/whhaicheng/SimDesk/internal/domain/simulation"
)

// CreateRunInput carries the fields of a new run.
type CreateRunInput struct {
	ProjectPath  string
	ProjectName  string
	ToolVersion  string
	InputConfig  string
	Duration     float64 // Seconds
	UnitCount    int64
	SubUnitCount int64

	// RecordedAt defaults to the creation time.
	RecordedAt time.Time

	// Status overrides the initial PENDING status.
	Status *simulation.Status

	// ReportLocation attaches a report at creation when non-empty.
	ReportLocation string
}

// SimulationUseCase provides simulation run business operations.
type SimulationUseCase struct {
	runRepo   RunRepository
	publisher EventPublisher // Optional
	metrics   Metrics
}

// NewSimulationUseCase creates a new simulation use case.
// publisher and metrics may be nil.
func NewSimulationUseCase(
	runRepo RunRepository,
	publisher EventPublisher,
	metrics Metrics,
) *SimulationUseCase {
	if metrics == nil {
		metrics = NopMetrics{}
	}
	return &SimulationUseCase{
		runRepo:   runRepo,
		publisher: publisher,
		metrics:   metrics,
	}
}

// CreateRun validates and stores a new run.
func (uc *SimulationUseCase) CreateRun(ctx context.Context, in CreateRunInput) (*simulation.Run, simulation.Event, error) {
	var opts []simulation.Option
	if in.Status != nil {
		opts = append(opts, simulation.WithInitialStatus(*in.Status))
	}
	if !in.RecordedAt.IsZero() {
		opts = append(opts, simulation.WithRecordedAt(in.RecordedAt))
	}
	if in.ReportLocation != "" {
		opts = append(opts, simulation.WithAttachedReport(in.ReportLocation))
	}

	run, err := simulation.Create(
		simulation.Descriptor{
			ProjectPath: in.ProjectPath,
			ProjectName: in.ProjectName,
			ToolVersion: in.ToolVersion,
			InputConfig: simulation.Payload(in.InputConfig),
		},
		simulation.Telemetry{
			Duration:     in.Duration,
			UnitCount:    in.UnitCount,
			SubUnitCount: in.SubUnitCount,
		},
		opts...,
	)
	if err != nil {
		return nil, simulation.Event{}, fmt.Errorf("create run: %w", err)
	}

	if err := uc.runRepo.Insert(ctx, run); err != nil {
		return nil, simulation.Event{}, fmt.Errorf("save run: %w", err)
	}

	slog.Info("Simulation: Run created", "id", run.ID(), "project", run.ProjectName(), "status", run.Status())
	event := simulation.NewEvent(simulation.EventCreated, run.Status(), run)
	uc.emit(ctx, event)
	return run, event, nil
}

// StartRun moves a PENDING run to RUNNING.
func (uc *SimulationUseCase) StartRun(ctx context.Context, id string) (*simulation.Run, simulation.Event, error) {
	return uc.mutate(ctx, id, simulation.EventStatusChanged, (*simulation.Run).MarkRunning)
}

// CompleteRun moves a RUNNING run to COMPLETED with its result.
func (uc *SimulationUseCase) CompleteRun(ctx context.Context, id, result string) (*simulation.Run, simulation.Event, error) {
	return uc.mutate(ctx, id, simulation.EventStatusChanged, func(r *simulation.Run) error {
		return r.MarkCompleted(simulation.Payload(result))
	})
}

// FailRun moves a RUNNING run to FAILED. An empty result keeps the stored one.
func (uc *SimulationUseCase) FailRun(ctx context.Context, id, result string) (*simulation.Run, simulation.Event, error) {
	return uc.mutate(ctx, id, simulation.EventStatusChanged, func(r *simulation.Run) error {
		return r.MarkFailed(simulation.Payload(result))
	})
}

// CancelRun cancels a PENDING or RUNNING run.
func (uc *SimulationUseCase) CancelRun(ctx context.Context, id string) (*simulation.Run, simulation.Event, error) {
	return uc.mutate(ctx, id, simulation.EventStatusChanged, (*simulation.Run).Cancel)
}

// RetryRun restarts a FAILED run.
func (uc *SimulationUseCase) RetryRun(ctx context.Context, id string) (*simulation.Run, simulation.Event, error) {
	return uc.mutate(ctx, id, simulation.EventStatusChanged, (*simulation.Run).Retry)
}

// UpdateResult overwrites the result payload in any status.
func (uc *SimulationUseCase) UpdateResult(ctx context.Context, id, result string) (*simulation.Run, simulation.Event, error) {
	return uc.mutate(ctx, id, simulation.EventResultUpdated, func(r *simulation.Run) error {
		r.UpdateResultPayload(simulation.Payload(result))
		return nil
	})
}

// AttachReport records the location of the run's report.
func (uc *SimulationUseCase) AttachReport(ctx context.Context, id, location string) (*simulation.Run, simulation.Event, error) {
	return uc.mutate(ctx, id, simulation.EventReportAttached, func(r *simulation.Run) error {
		return r.AttachReport(location)
	})
}

// GetRun returns a run or a *NotFoundError.
func (uc *SimulationUseCase) GetRun(ctx context.Context, id string) (*simulation.Run, error) {
	run, err := uc.runRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find run: %w", err)
	}
	if run == nil {
		return nil, &NotFoundError{Entity: "run", ID: id}
	}
	return run, nil
}

// DeleteRun removes a run.
func (uc *SimulationUseCase) DeleteRun(ctx context.Context, id string) (simulation.Event, error) {
	run, err := uc.GetRun(ctx, id)
	if err != nil {
		return simulation.Event{}, err
	}
	if err := uc.runRepo.Delete(ctx, id); err != nil {
		return simulation.Event{}, fmt.Errorf("delete run: %w", err)
	}

	slog.Info("Simulation: Run deleted", "id", id)
	event := simulation.Event{
		Type:       simulation.EventDeleted,
		RunID:      id,
		From:       run.Status(),
		To:         run.Status(),
		OccurredAt: time.Now().UTC(),
	}
	uc.emit(ctx, event)
	return event, nil
}

// SearchRuns filters the run history and returns one page, newest recorded first.
func (uc *SimulationUseCase) SearchRuns(ctx context.Context, filter simulation.Filter, page search.PageRequest) (search.PageResult[*simulation.Run], error) {
	if err := page.Validate(); err != nil {
		return search.PageResult[*simulation.Run]{}, err
	}
	candidates, err := uc.runRepo.AllForSearch(ctx, filter)
	if err != nil {
		return search.PageResult[*simulation.Run]{}, fmt.Errorf("load runs: %w", err)
	}
	return search.Search(candidates, filter.Spec(), page, simulation.SortKey)
}

// mutate loads a run, applies op and persists the result.
// Nothing is saved when op fails.
func (uc *SimulationUseCase) mutate(
	ctx context.Context,
	id string,
	eventType simulation.EventType,
	op func(*simulation.Run) error,
) (*simulation.Run, simulation.Event, error) {
	run, err := uc.GetRun(ctx, id)
	if err != nil {
		return nil, simulation.Event{}, err
	}

	from := run.Status()
	if err := op(run); err != nil {
		return nil, simulation.Event{}, err
	}
	if err := uc.runRepo.Update(ctx, run); err != nil {
		return nil, simulation.Event{}, fmt.Errorf("save run: %w", err)
	}

	if from != run.Status() {
		slog.Info("Simulation: Run status changed", "id", id, "from", from, "to", run.Status())
	}
	event := simulation.NewEvent(eventType, from, run)
	uc.emit(ctx, event)
	return run, event, nil
}

func (uc *SimulationUseCase) emit(ctx context.Context, event simulation.Event) {
	uc.metrics.RunEvent(event.Type)
	if uc.publisher == nil {
		return
	}
	if err := uc.publisher.Publish(ctx, event); err != nil {
		slog.Warn("Simulation: Failed to publish event", "type", event.Type, "id", event.RunID, "error", err)
	}
}
