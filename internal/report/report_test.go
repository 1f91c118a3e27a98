package report

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pablasso/planfirst/internal/plan"
	"github.com/pablasso/planfirst/internal/verify"
)

var at = time.Date(2024, 5, 1, 9, 30, 15, 0, time.UTC)

func sampleResult() *verify.Result {
	return &verify.Result{
		PlanID:        "abc123",
		PhaseID:       "phase-2",
		Timestamp:     at,
		OverallStatus: verify.StatusFail,
		TaskResults: []verify.TaskVerification{
			{TaskID: "task-1", File: "src/config.ts", Status: verify.StatusPass, MatchPercentage: 80, Issues: []verify.Issue{}},
			{TaskID: "task-2", File: "old.ts", Status: verify.StatusFail, Issues: []verify.Issue{{
				Severity:   verify.SeverityError,
				Type:       verify.IssueExtraChanges,
				Message:    "File old.ts should have been deleted but still exists",
				File:       "old.ts",
				Suggestion: "Remove old.ts",
			}}},
		},
		Summary:         verify.Summary{TotalTasks: 2, TasksCompleted: 1, TasksMissing: 1, CriticalIssues: 1},
		Recommendations: []string{"Implement 1 missing task(s)", "Review implementation of old.ts"},
	}
}

func TestMarkdown(t *testing.T) {
	md := Markdown(sampleResult(), &plan.Plan{Title: "Config loader"})

	assert.True(t, strings.HasPrefix(md, "# Verification Report\n"))
	for _, want := range []string{
		"**Plan:** Config loader (`abc123`)",
		"**Phase:** phase-2",
		"**Date:** 2024-05-01T09:30:15Z",
		"**Overall Status:** FAIL",
		"## Summary\n\n| Metric | Count |\n|--------|-------|\n| Total Tasks | 2 |",
		"| Completed | 1 |",
		"| Missing | 1 |",
		"| Critical Issues | 1 |",
		"### task-1: `src/config.ts`",
		"- **Match:** 80%",
		"### task-2: `old.ts`",
		"- [ERROR] File old.ts should have been deleted but still exists\n  - Suggestion: Remove old.ts",
		"## Recommendations\n\n1. Implement 1 missing task(s)\n2. Review implementation of old.ts\n",
	} {
		assert.Contains(t, md, want)
	}

	// task sections follow the summary, recommendations come last
	assert.Less(t, strings.Index(md, "## Summary"), strings.Index(md, "## Task Results"))
	assert.Less(t, strings.Index(md, "## Task Results"), strings.Index(md, "## Recommendations"))
}

func TestMarkdown_NoPhaseNoTasks(t *testing.T) {
	res := &verify.Result{PlanID: "p", Timestamp: at, OverallStatus: verify.StatusPass, Recommendations: []string{"ok"}}

	md := Markdown(res, &plan.Plan{Title: "T"})

	assert.NotContains(t, md, "**Phase:**")
	assert.Contains(t, md, "No tasks were selected for verification.")
}

func TestSave(t *testing.T) {
	fs := afero.NewMemMapFs()

	path, err := Save(fs, "/plans/abc123-demo", sampleResult(), &plan.Plan{Title: "Config loader"})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/plans/abc123-demo", "verification-20240501-093015.md"), path)

	data, err := afero.ReadFile(fs, path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "# Verification Report")
}

func TestWriteSummary(t *testing.T) {
	var buf bytes.Buffer
	WriteSummary(&buf, sampleResult())
	out := buf.String()

	for _, want := range []string{"FAIL", "phase-2", "2 tasks: 1 completed, 0 partial, 1 missing", "src/config.ts", "[ERROR]", "Recommendations", "Review implementation of old.ts"} {
		assert.Contains(t, out, want)
	}
}
