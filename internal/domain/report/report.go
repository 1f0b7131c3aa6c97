// Package report provides run report domain models.
package report

import (
	"fmt"
	"strconv"
	"time"

	"github.com/whhaicheng/SimDesk/internal/domain/simulation"
)

// ReportFormat represents the output format for a report.
type ReportFormat string

const (
	// FormatMarkdown generates Markdown format reports.
	FormatMarkdown ReportFormat = "markdown"
	// FormatJSON generates JSON format reports.
	FormatJSON ReportFormat = "json"
)

// String returns the string representation of the format.
func (f ReportFormat) String() string {
	return string(f)
}

// Validate checks if the format is valid.
func (f ReportFormat) Validate() error {
	switch f {
	case FormatMarkdown, FormatJSON:
		return nil
	default:
		return fmt.Errorf("invalid report format: %s", f)
	}
}

// FileExtension returns the file extension for this format.
func (f ReportFormat) FileExtension() string {
	switch f {
	case FormatMarkdown:
		return ".md"
	case FormatJSON:
		return ".json"
	default:
		return ".txt"
	}
}

// Report represents a generated report.
type Report struct {
	// Format is the report format.
	Format ReportFormat

	// Content is the report content.
	Content []byte

	// GeneratedAt is when the report was generated.
	GeneratedAt time.Time

	// RunID is the associated run ID.
	RunID string

	// FilePath is the file path if saved to disk.
	FilePath string
}

// Generator is the interface for report generators.
type Generator interface {
	// Generate generates a report from the provided data.
	Generate(ctx *GenerateContext) (*Report, error)

	// Format returns the format this generator produces.
	Format() ReportFormat
}

// GenerateContext contains data for report generation.
type GenerateContext struct {
	// Run is the state of the run at generation time.
	Run simulation.Snapshot

	// Title is a custom report title (optional).
	Title string

	// IncludeInput includes the input configuration payload.
	IncludeInput bool

	// IncludeResult includes the result payload.
	IncludeResult bool

	// GeneratedAt is the generation timestamp; zero means now.
	GeneratedAt time.Time
}

// NewGenerateContext creates a context that includes both payloads.
func NewGenerateContext(run simulation.Snapshot) *GenerateContext {
	return &GenerateContext{
		Run:           run,
		IncludeInput:  true,
		IncludeResult: true,
	}
}

// Validate validates the generate context.
func (ctx *GenerateContext) Validate() error {
	if ctx.Run.ID == "" {
		return fmt.Errorf("run id is required")
	}
	if !ctx.Run.Status.IsValid() {
		return fmt.Errorf("invalid run status: %s", ctx.Run.Status)
	}
	return nil
}

// Timestamp returns the generation time, defaulting to now.
func (ctx *GenerateContext) Timestamp() time.Time {
	if ctx.GeneratedAt.IsZero() {
		return time.Now().UTC()
	}
	return ctx.GeneratedAt
}

// GetTitle returns the custom title or a default one.
func (ctx *GenerateContext) GetTitle() string {
	if ctx.Title != "" {
		return ctx.Title
	}
	return fmt.Sprintf("Simulation Run Report: %s", ctx.Run.ProjectName)
}

// GetDuration returns the formatted run duration.
func (ctx *GenerateContext) GetDuration() string {
	d := time.Duration(ctx.Run.Duration * float64(time.Second))
	return d.String()
}

// FormatFloat formats a float value with specified precision.
func FormatFloat(value float64, precision int) string {
	return strconv.FormatFloat(value, 'f', precision, 64)
}
