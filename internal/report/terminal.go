package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/pablasso/planfirst/internal/tui/styles"
	"github.com/pablasso/planfirst/internal/verify"
)

// StatusStyle returns the style used for a status label.
func StatusStyle(s verify.Status) lipgloss.Style {
	switch s {
	case verify.StatusPass:
		return styles.SuccessStyle
	case verify.StatusPartial:
		return styles.WarningStyle
	default:
		return styles.ErrorStyle
	}
}

// StatusIcon returns a one-character marker for a status.
func StatusIcon(s verify.Status) string {
	switch s {
	case verify.StatusPass:
		return "✓"
	case verify.StatusPartial:
		return "~"
	case verify.StatusError:
		return "!"
	default:
		return "✗"
	}
}

// SeverityStyle returns the style used for an issue severity tag.
func SeverityStyle(s verify.Severity) lipgloss.Style {
	switch s {
	case verify.SeverityCritical, verify.SeverityError:
		return styles.ErrorStyle
	case verify.SeverityWarning:
		return styles.WarningStyle
	default:
		return styles.SubtleStyle
	}
}

// WriteSummary prints a compact, colored summary of res to w.
func WriteSummary(w io.Writer, res *verify.Result) {
	status := strings.ToUpper(string(res.OverallStatus))
	scope := "all phases"
	if res.PhaseID != "" {
		scope = res.PhaseID
	}
	fmt.Fprintf(w, "Verification %s %s\n",
		StatusStyle(res.OverallStatus).Bold(true).Render(status),
		styles.SubtleStyle.Render("("+scope+")"),
	)

	s := res.Summary
	fmt.Fprintf(w, "  %d tasks: %d completed, %d partial, %d missing\n",
		s.TotalTasks, s.TasksCompleted, s.TasksPartial, s.TasksMissing)
	if s.CriticalIssues > 0 || s.Warnings > 0 {
		fmt.Fprintf(w, "  %s, %s\n",
			styles.ErrorStyle.Render(fmt.Sprintf("%d critical", s.CriticalIssues)),
			styles.WarningStyle.Render(fmt.Sprintf("%d warnings", s.Warnings)),
		)
	}
	fmt.Fprintln(w)

	for _, tv := range res.TaskResults {
		icon := StatusStyle(tv.Status).Render(StatusIcon(tv.Status))
		fmt.Fprintf(w, "  %s %-8s %-40s %3d%%\n", icon, tv.TaskID, tv.File, tv.MatchPercentage)
		for _, issue := range tv.Issues {
			tag := SeverityStyle(issue.Severity).Render("[" + strings.ToUpper(string(issue.Severity)) + "]")
			fmt.Fprintf(w, "      %s %s\n", tag, issue.Message)
		}
	}

	if len(res.Recommendations) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, styles.TitleStyle.UnsetMarginBottom().Render("Recommendations"))
		for _, rec := range res.Recommendations {
			fmt.Fprintf(w, "  • %s\n", rec)
		}
	}
}
