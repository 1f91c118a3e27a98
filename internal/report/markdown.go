// Package report renders verification results as a markdown report file
// and as a terminal summary.
//
// The markdown layout is read by other tools: keep the "# Verification
// Report" heading, the "| Metric | Count |" table and the "- [SEVERITY]"
// issue bullets stable.
package report

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"

	"github.com/pablasso/planfirst/internal/plan"
	"github.com/pablasso/planfirst/internal/verify"
)

const fileTimeLayout = "20060102-150405"

// FileName returns the report file name for a run at t.
func FileName(t time.Time) string {
	return fmt.Sprintf("verification-%s.md", t.UTC().Format(fileTimeLayout))
}

// Markdown renders res as a markdown report. p supplies the plan title.
func Markdown(res *verify.Result, p *plan.Plan) string {
	var b strings.Builder

	b.WriteString("# Verification Report\n\n")
	fmt.Fprintf(&b, "**Plan:** %s (`%s`)\n", p.Title, res.PlanID)
	if res.PhaseID != "" {
		fmt.Fprintf(&b, "**Phase:** %s\n", res.PhaseID)
	}
	fmt.Fprintf(&b, "**Date:** %s\n", res.Timestamp.UTC().Format(time.RFC3339))
	fmt.Fprintf(&b, "**Overall Status:** %s\n\n", strings.ToUpper(string(res.OverallStatus)))

	s := res.Summary
	b.WriteString("## Summary\n\n")
	b.WriteString("| Metric | Count |\n")
	b.WriteString("|--------|-------|\n")
	for _, row := range []struct {
		name  string
		count int
	}{
		{"Total Tasks", s.TotalTasks},
		{"Completed", s.TasksCompleted},
		{"Partial", s.TasksPartial},
		{"Missing", s.TasksMissing},
		{"Critical Issues", s.CriticalIssues},
		{"Warnings", s.Warnings},
	} {
		fmt.Fprintf(&b, "| %s | %d |\n", row.name, row.count)
	}
	b.WriteString("\n")

	b.WriteString("## Task Results\n\n")
	if len(res.TaskResults) == 0 {
		b.WriteString("No tasks were selected for verification.\n\n")
	}
	for _, tv := range res.TaskResults {
		fmt.Fprintf(&b, "### %s: `%s`\n\n", tv.TaskID, tv.File)
		fmt.Fprintf(&b, "- **Status:** %s\n", tv.Status)
		fmt.Fprintf(&b, "- **Match:** %d%%\n\n", tv.MatchPercentage)

		if len(tv.Issues) == 0 {
			continue
		}
		b.WriteString("**Issues:**\n\n")
		for _, issue := range tv.Issues {
			fmt.Fprintf(&b, "- [%s] %s\n", strings.ToUpper(string(issue.Severity)), issue.Message)
			if issue.Line > 0 {
				fmt.Fprintf(&b, "  - Line: %d\n", issue.Line)
			}
			if issue.Suggestion != "" {
				fmt.Fprintf(&b, "  - Suggestion: %s\n", issue.Suggestion)
			}
		}
		b.WriteString("\n")
	}

	b.WriteString("## Recommendations\n\n")
	for i, rec := range res.Recommendations {
		fmt.Fprintf(&b, "%d. %s\n", i+1, rec)
	}
	return b.String()
}

// Save writes the markdown report into planDir and returns its path.
func Save(fs afero.Fs, planDir string, res *verify.Result, p *plan.Plan) (string, error) {
	path := filepath.Join(planDir, FileName(res.Timestamp))
	if err := afero.WriteFile(fs, path, []byte(Markdown(res, p)), 0644); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}
	return path, nil
}
