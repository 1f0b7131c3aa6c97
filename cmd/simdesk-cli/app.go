package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/whhaicheng/SimDesk/internal/app/usecase"
	"github.com/whhaicheng/SimDesk/internal/config"
	"github.com/whhaicheng/SimDesk/internal/infra/cache"
	"github.com/whhaicheng/SimDesk/internal/infra/database"
	"github.com/whhaicheng/SimDesk/internal/infra/database/repository"
	"github.com/whhaicheng/SimDesk/internal/infra/events"
	"github.com/whhaicheng/SimDesk/internal/infra/metrics"
)

// app holds the assembled use cases for one process.
type app struct {
	cfg     *config.Config
	metrics *metrics.Recorder

	simulations *usecase.SimulationUseCase
	projects    *usecase.ProjectUseCase
	preferences *usecase.PreferencesUseCase
	reports     *usecase.ReportUseCase
	retention   *usecase.RetentionUseCase

	closers []func() error
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	a := &app{cfg: cfg, metrics: metrics.NewRecorder()}

	// 1. Storage
	var (
		runRepo     usecase.RunRepository
		projectRepo usecase.ProjectRepository
	)
	if cfg.Database.IsMemory() {
		runRepo = usecase.NewMemoryRunRepository()
		projectRepo = usecase.NewMemoryProjectRepository()
		slog.Debug("Using in-memory repositories")
	} else {
		opts, err := cfg.Database.Options()
		if err != nil {
			return nil, err
		}
		db, err := database.Open(ctx, opts)
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
		a.closers = append(a.closers, db.Close)
		runRepo = repository.NewSQLRunRepository(db)
		projectRepo = repository.NewSQLProjectRepository(db)
		slog.Debug("Database initialized", "dialect", db.Dialect())
	}
	if cfg.Cache.Enabled() {
		runRepo = cache.NewRunRepository(runRepo, cfg.Cache.Size, cfg.Cache.TTL, a.metrics)
	}
	prefsRepo := repository.NewPreferencesRepository(cfg.PreferencesPath)

	// 2. Event publishing
	publishers := events.MultiPublisher{events.NewLogPublisher(slog.Default())}
	if cfg.Redis.Enabled() {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		err := client.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			slog.Warn("Redis unavailable, events will only be logged", "addr", cfg.Redis.Addr, "error", err)
			_ = client.Close()
		} else {
			pub := events.NewRedisPublisher(client)
			publishers = append(publishers, pub)
			a.closers = append(a.closers, pub.Close)
		}
	}

	// 3. Use cases
	a.simulations = usecase.NewSimulationUseCase(runRepo, publishers, a.metrics)
	a.preferences = usecase.NewPreferencesUseCase(prefsRepo)
	a.projects = usecase.NewProjectUseCase(projectRepo, prefsRepo)
	a.reports = usecase.NewReportUseCase(a.simulations, prefsRepo, cfg.Report.OutputDir)
	a.retention = usecase.NewRetentionUseCase(runRepo, a.simulations, a.projects, prefsRepo, a.metrics)
	return a, nil
}

// Close releases resources in reverse order of acquisition.
func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
