package report

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/whhaicheng/SimDesk/internal/domain/report"
)

func TestMarkdownGenerator_Format(t *testing.T) {
	assert.Equal(t, report.FormatMarkdown, NewMarkdownGenerator().Format())
}

func TestMarkdownGenerator_Generate(t *testing.T) {
	gen := NewMarkdownGenerator()
	rpt, err := gen.Generate(report.NewGenerateContext(testSnapshot()))
	require.NoError(t, err)

	content := string(rpt.Content)
	assert.True(t, strings.HasPrefix(content, "# Simulation Run Report: Flow\n"))
	assert.Contains(t, content, "## Summary")
	assert.Contains(t, content, "| Status | COMPLETED |")
	assert.Contains(t, content, "| Project Path | `/home/alice/flow.sim` |")
	assert.Contains(t, content, "| **Duration** | 1m30.5s (90.500 s) |")
	assert.Contains(t, content, "| **Sub-units** | 480 |")
	assert.Contains(t, content, "## Input Configuration\n\n```\n{\"mesh\":\"fine\"}\n```")
	assert.Contains(t, content, "## Result")
	assert.Contains(t, content, "Generated by SimDesk")
	assert.Equal(t, "run-1", rpt.RunID)
}

func TestMarkdownGenerator_CustomTitleWithoutPayloads(t *testing.T) {
	data := &report.GenerateContext{Run: testSnapshot(), Title: "Nightly"}
	rpt, err := NewMarkdownGenerator().Generate(data)
	require.NoError(t, err)

	content := string(rpt.Content)
	assert.True(t, strings.HasPrefix(content, "# Nightly\n"))
	assert.NotContains(t, content, "## Input Configuration")
	assert.NotContains(t, content, "## Result")
}

func TestMarkdownGenerator_EmptyPayload(t *testing.T) {
	snap := testSnapshot()
	snap.Result = ""
	rpt, err := NewMarkdownGenerator().Generate(report.NewGenerateContext(snap))
	require.NoError(t, err)
	assert.Contains(t, string(rpt.Content), "## Result\n\n*Empty*")
}
