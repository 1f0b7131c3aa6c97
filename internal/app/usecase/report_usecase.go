// Package usecase provides run report generation business logic.
package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/whhaicheng/SimDesk/internal/domain/report"
	infrareport "github.com/whhaicheng/SimDesk/internal/infra/report"
)

// ReportUseCase provides report generation business operations.
type ReportUseCase struct {
	simulations *SimulationUseCase
	prefsRepo   PreferencesRepository

	// defaultDir is used when the preferences name no report directory.
	defaultDir string

	// Registered generators
	generators map[report.ReportFormat]report.Generator
}

// NewReportUseCase creates a new report use case.
func NewReportUseCase(
	simulations *SimulationUseCase,
	prefsRepo PreferencesRepository,
	defaultDir string,
) *ReportUseCase {
	uc := &ReportUseCase{
		simulations: simulations,
		prefsRepo:   prefsRepo,
		defaultDir:  defaultDir,
		generators:  make(map[report.ReportFormat]report.Generator),
	}

	// Register default generators
	uc.RegisterGenerator(infrareport.NewMarkdownGenerator())
	uc.RegisterGenerator(infrareport.NewJSONGenerator())

	return uc
}

// RegisterGenerator registers a report generator.
func (uc *ReportUseCase) RegisterGenerator(generator report.Generator) {
	uc.generators[generator.Format()] = generator
}

// GenerateRunReport renders a run, writes it to the report directory and
// attaches the file to the run. An empty format uses the preferred one.
func (uc *ReportUseCase) GenerateRunReport(ctx context.Context, runID string, format report.ReportFormat) (*report.Report, error) {
	prefs, err := uc.prefsRepo.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("get preferences: %w", err)
	}
	if format == "" {
		format = report.ReportFormat(prefs.DefaultReportFormat)
	}
	if err := format.Validate(); err != nil {
		return nil, fmt.Errorf("invalid format: %w", err)
	}
	generator, ok := uc.generators[format]
	if !ok {
		return nil, fmt.Errorf("no generator registered for format: %s", format)
	}

	run, err := uc.simulations.GetRun(ctx, runID)
	if err != nil {
		return nil, err
	}

	rpt, err := generator.Generate(report.NewGenerateContext(run.Snapshot()))
	if err != nil {
		return nil, fmt.Errorf("generate report: %w", err)
	}

	dir := prefs.ReportDir
	if dir == "" {
		dir = uc.defaultDir
	}
	path := filepath.Join(dir, runID+format.FileExtension())
	if err := uc.saveReport(rpt, path); err != nil {
		return nil, err
	}
	rpt.FilePath = path

	if _, _, err := uc.simulations.AttachReport(ctx, runID, path); err != nil {
		return nil, fmt.Errorf("attach report: %w", err)
	}

	slog.Info("Report: Generated run report", "id", runID, "format", format, "path", path)
	return rpt, nil
}

// ListSupportedFormats returns the registered formats.
func (uc *ReportUseCase) ListSupportedFormats() []report.ReportFormat {
	formats := make([]report.ReportFormat, 0, len(uc.generators))
	for _, f := range []report.ReportFormat{report.FormatMarkdown, report.FormatJSON} {
		if _, ok := uc.generators[f]; ok {
			formats = append(formats, f)
		}
	}
	return formats
}

func (uc *ReportUseCase) saveReport(rpt *report.Report, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create report directory: %w", err)
	}
	if err := os.WriteFile(path, rpt.Content, 0644); err != nil {
		return fmt.Errorf("write report file: %w", err)
	}
	return nil
}
