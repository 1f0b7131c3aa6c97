package usecase

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/whhaicheng/SimDesk/internal/domain/report"
)

func TestReportUseCase_GenerateRunReport(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	sim := NewSimulationUseCase(NewMemoryRunRepository(), nil, nil)
	uc := NewReportUseCase(sim, NewMemoryPreferencesRepository(), dir)

	run, _, err := sim.CreateRun(ctx, validInput())
	require.NoError(t, err)

	rpt, err := uc.GenerateRunReport(ctx, run.ID(), "")
	require.NoError(t, err)
	assert.Equal(t, report.FormatMarkdown, rpt.Format)

	wantPath := filepath.Join(dir, run.ID()+".md")
	assert.Equal(t, wantPath, rpt.FilePath)
	content, err := os.ReadFile(wantPath)
	require.NoError(t, err)
	assert.Equal(t, rpt.Content, content)

	stored, err := sim.GetRun(ctx, run.ID())
	require.NoError(t, err)
	assert.True(t, stored.HasAttachedReport())
	assert.Equal(t, wantPath, stored.ReportLocation())

	rpt, err = uc.GenerateRunReport(ctx, run.ID(), report.FormatJSON)
	require.NoError(t, err)
	stored, err = sim.GetRun(ctx, run.ID())
	require.NoError(t, err)
	assert.Equal(t, rpt.FilePath, stored.ReportLocation())
	assert.Equal(t, ".json", filepath.Ext(stored.ReportLocation()))
}

func TestReportUseCase_PreferredDirectory(t *testing.T) {
	ctx := context.Background()
	prefsRepo := NewMemoryPreferencesRepository()
	sim := NewSimulationUseCase(NewMemoryRunRepository(), nil, nil)
	uc := NewReportUseCase(sim, prefsRepo, t.TempDir())

	preferred := filepath.Join(t.TempDir(), "reports")
	_, err := NewPreferencesUseCase(prefsRepo).Set(ctx, "report_dir", preferred)
	require.NoError(t, err)

	run, _, err := sim.CreateRun(ctx, validInput())
	require.NoError(t, err)

	rpt, err := uc.GenerateRunReport(ctx, run.ID(), report.FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(preferred, run.ID()+".json"), rpt.FilePath)
}

func TestReportUseCase_Errors(t *testing.T) {
	ctx := context.Background()
	sim := NewSimulationUseCase(NewMemoryRunRepository(), nil, nil)
	uc := NewReportUseCase(sim, NewMemoryPreferencesRepository(), t.TempDir())

	_, err := uc.GenerateRunReport(ctx, "missing", report.FormatMarkdown)
	assert.True(t, errors.Is(err, ErrNotFound))

	_, err = uc.GenerateRunReport(ctx, "missing", report.ReportFormat("pdf"))
	assert.Error(t, err)

	assert.Equal(t, []report.ReportFormat{report.FormatMarkdown, report.FormatJSON}, uc.ListSupportedFormats())
}
