// Package report provides run report generator implementations.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/whhaicheng/SimDesk/internal/domain/report"
)

// MarkdownGenerator generates Markdown format reports.
type MarkdownGenerator struct{}

// NewMarkdownGenerator creates a new Markdown generator.
func NewMarkdownGenerator() *MarkdownGenerator {
	return &MarkdownGenerator{}
}

// Generate generates a Markdown report.
func (g *MarkdownGenerator) Generate(data *report.GenerateContext) (*report.Report, error) {
	if err := data.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	generatedAt := data.Timestamp()
	var sb strings.Builder

	g.writeTitle(&sb, data)
	g.writeSummary(&sb, data)
	g.writeTelemetry(&sb, data)

	if data.IncludeInput {
		g.writePayload(&sb, "Input Configuration", string(data.Run.InputConfig))
	}
	if data.IncludeResult {
		g.writePayload(&sb, "Result", string(data.Run.Result))
	}

	g.writeFooter(&sb, generatedAt)

	return &report.Report{
		Format:      report.FormatMarkdown,
		Content:     []byte(sb.String()),
		GeneratedAt: generatedAt,
		RunID:       data.Run.ID,
	}, nil
}

// Format returns the format this generator produces.
func (g *MarkdownGenerator) Format() report.ReportFormat {
	return report.FormatMarkdown
}

func (g *MarkdownGenerator) writeTitle(sb *strings.Builder, data *report.GenerateContext) {
	sb.WriteString("# ")
	sb.WriteString(data.GetTitle())
	sb.WriteString("\n\n")
}

func (g *MarkdownGenerator) writeSummary(sb *strings.Builder, data *report.GenerateContext) {
	run := data.Run
	sb.WriteString("## Summary\n\n")
	sb.WriteString("| Property | Value |\n")
	sb.WriteString("|----------|-------|\n")
	fmt.Fprintf(sb, "| Run ID | `%s` |\n", run.ID)
	fmt.Fprintf(sb, "| Status | %s |\n", run.Status)
	fmt.Fprintf(sb, "| Project | %s |\n", run.ProjectName)
	fmt.Fprintf(sb, "| Project Path | `%s` |\n", run.ProjectPath)
	fmt.Fprintf(sb, "| Tool Version | %s |\n", run.ToolVersion)
	fmt.Fprintf(sb, "| Recorded | %s |\n", run.RecordedAt.Format(time.RFC1123))
	fmt.Fprintf(sb, "| Created | %s |\n", run.CreatedAt.Format(time.RFC1123))
	fmt.Fprintf(sb, "| Last Modified | %s |\n", run.UpdatedAt.Format(time.RFC1123))
	sb.WriteString("\n")
}

func (g *MarkdownGenerator) writeTelemetry(sb *strings.Builder, data *report.GenerateContext) {
	run := data.Run
	sb.WriteString("## Telemetry\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	fmt.Fprintf(sb, "| **Duration** | %s (%s s) |\n", data.GetDuration(), report.FormatFloat(run.Duration, 3))
	fmt.Fprintf(sb, "| **Units** | %d |\n", run.UnitCount)
	fmt.Fprintf(sb, "| **Sub-units** | %d |\n", run.SubUnitCount)
	sb.WriteString("\n")
}

// writePayload writes an opaque payload verbatim in a fenced block.
func (g *MarkdownGenerator) writePayload(sb *strings.Builder, heading, payload string) {
	fmt.Fprintf(sb, "## %s\n\n", heading)
	if strings.TrimSpace(payload) == "" {
		sb.WriteString("*Empty*\n\n")
		return
	}
	sb.WriteString("```\n")
	sb.WriteString(payload)
	if !strings.HasSuffix(payload, "\n") {
		sb.WriteString("\n")
	}
	sb.WriteString("```\n\n")
}

func (g *MarkdownGenerator) writeFooter(sb *strings.Builder, generatedAt time.Time) {
	sb.WriteString("---\n\n")
	fmt.Fprintf(sb, "*Generated by SimDesk at %s*\n", generatedAt.Format(time.RFC1123))
}
