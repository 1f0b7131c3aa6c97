package events

import (
	"context"
	"errors"
	"log/slog"

	"github.com/whhaicheng/SimDesk/internal/app/usecase"
	"github.com/whhaicheng/SimDesk/internal/domain/simulation"
)

// LogPublisher writes events to a structured logger.
type LogPublisher struct {
	logger *slog.Logger
}

// NewLogPublisher creates a publisher logging to logger, or slog.Default when nil.
func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogPublisher{logger: logger}
}

// Publish logs the event at Info level.
func (p *LogPublisher) Publish(ctx context.Context, event simulation.Event) error {
	p.logger.InfoContext(ctx, "Run event",
		"type", event.Type,
		"run_id", event.RunID,
		"from", event.From,
		"to", event.To,
		"occurred_at", event.OccurredAt)
	return nil
}

// MultiPublisher fans an event out to several publishers.
// Every publisher is tried; failures are joined.
type MultiPublisher []usecase.EventPublisher

// Publish implements usecase.EventPublisher.
func (m MultiPublisher) Publish(ctx context.Context, event simulation.Event) error {
	var errs []error
	for _, p := range m {
		if err := p.Publish(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
