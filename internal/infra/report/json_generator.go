package report

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/whhaicheng/SimDesk/internal/domain/report"
)

// JSONGenerator generates JSON format reports.
type JSONGenerator struct{}

// NewJSONGenerator creates a new JSON generator.
func NewJSONGenerator() *JSONGenerator {
	return &JSONGenerator{}
}

// Generate generates a JSON report.
func (g *JSONGenerator) Generate(data *report.GenerateContext) (*report.Report, error) {
	if err := data.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	generatedAt := data.Timestamp()
	output := g.buildJSON(data, generatedAt)

	content, err := json.MarshalIndent(output, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal json: %w", err)
	}

	return &report.Report{
		Format:      report.FormatJSON,
		Content:     content,
		GeneratedAt: generatedAt,
		RunID:       data.Run.ID,
	}, nil
}

// Format returns the format this generator produces.
func (g *JSONGenerator) Format() report.ReportFormat {
	return report.FormatJSON
}

type jsonReport struct {
	Meta      jsonMeta        `json:"meta"`
	Summary   jsonSummary     `json:"summary"`
	Telemetry jsonTelemetry   `json:"telemetry"`
	Input     json.RawMessage `json:"input,omitempty"`
	Result    json.RawMessage `json:"result,omitempty"`
}

type jsonMeta struct {
	RunID       string `json:"run_id"`
	Title       string `json:"title"`
	Format      string `json:"format"`
	GeneratedAt string `json:"generated_at"`
	Version     string `json:"version"`
}

type jsonSummary struct {
	Status      string `json:"status"`
	ProjectName string `json:"project_name"`
	ProjectPath string `json:"project_path"`
	ToolVersion string `json:"tool_version"`
	RecordedAt  string `json:"recorded_at"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

type jsonTelemetry struct {
	DurationSeconds float64 `json:"duration_seconds"`
	Duration        string  `json:"duration"`
	UnitCount       int64   `json:"unit_count"`
	SubUnitCount    int64   `json:"sub_unit_count"`
}

func (g *JSONGenerator) buildJSON(data *report.GenerateContext, generatedAt time.Time) *jsonReport {
	run := data.Run
	r := &jsonReport{
		Meta: jsonMeta{
			RunID:       run.ID,
			Title:       data.GetTitle(),
			Format:      report.FormatJSON.String(),
			GeneratedAt: generatedAt.Format(time.RFC3339),
			Version:     "1.0",
		},
		Summary: jsonSummary{
			Status:      run.Status.String(),
			ProjectName: run.ProjectName,
			ProjectPath: run.ProjectPath,
			ToolVersion: run.ToolVersion,
			RecordedAt:  run.RecordedAt.Format(time.RFC3339),
			CreatedAt:   run.CreatedAt.Format(time.RFC3339),
			UpdatedAt:   run.UpdatedAt.Format(time.RFC3339),
		},
		Telemetry: jsonTelemetry{
			DurationSeconds: run.Duration,
			Duration:        data.GetDuration(),
			UnitCount:       run.UnitCount,
			SubUnitCount:    run.SubUnitCount,
		},
	}
	if data.IncludeInput {
		r.Input = embedPayload(string(run.InputConfig))
	}
	if data.IncludeResult {
		r.Result = embedPayload(string(run.Result))
	}
	return r
}

// embedPayload embeds valid JSON payloads as-is and anything else as a JSON string.
func embedPayload(payload string) json.RawMessage {
	if payload == "" {
		return nil
	}
	if json.Valid([]byte(payload)) {
		return json.RawMessage(payload)
	}
	quoted, _ := json.Marshal(payload)
	return quoted
}
