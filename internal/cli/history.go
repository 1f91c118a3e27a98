package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	plancmd "github.com/pablasso/planfirst/internal/cli/plan"
	"github.com/pablasso/planfirst/internal/history"
	"github.com/pablasso/planfirst/internal/plan"
	"github.com/pablasso/planfirst/internal/report"
	"github.com/pablasso/planfirst/internal/tui/styles"
	"github.com/spf13/cobra"
)

const historyTimeLayout = "2006-01-02 15:04:05"

func newHistoryCmd(env *plancmd.Env) *cobra.Command {
	var (
		limit  int
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "history <plan>",
		Short: "List past verification runs of a plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, p, err := env.LoadPlan(args[0])
			if err != nil {
				return err
			}

			store, err := history.Open(filepath.Join(env.Root, plan.Dir), env.Logger)
			if err != nil {
				return err
			}
			defer store.Close()

			runs, err := store.List(cmd.Context(), p.ID, limit)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				return enc.Encode(runs)
			}
			writeHistoryTable(w, runs)
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs to show (0 for all)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print runs as JSON")
	return cmd
}

func writeHistoryTable(w io.Writer, runs []history.Run) {
	if len(runs) == 0 {
		fmt.Fprintln(w, "No verification runs recorded yet.")
		return
	}

	rows := make([][]string, len(runs))
	statuses := make([]lipgloss.Style, len(runs))
	for i, r := range runs {
		scope := r.PhaseID
		if scope == "" {
			scope = "all"
		}
		s := r.Summary
		rows[i] = []string{
			r.ID[:8],
			r.CreatedAt.Local().Format(historyTimeLayout),
			scope,
			string(r.OverallStatus),
			fmt.Sprintf("%d/%d", s.TasksCompleted, s.TotalTasks),
			fmt.Sprintf("%d", s.CriticalIssues),
			fmt.Sprintf("%d", s.Warnings),
		}
		statuses[i] = report.StatusStyle(r.OverallStatus)
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(styles.SubtleStyle).
		Headers("RUN", "WHEN", "SCOPE", "STATUS", "DONE", "CRITICAL", "WARNINGS").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			cell := lipgloss.NewStyle().Padding(0, 1)
			switch {
			case row == table.HeaderRow:
				return styles.SelectedStyle.Padding(0, 1)
			case col == 3:
				return statuses[row].Padding(0, 1)
			}
			return cell
		})
	fmt.Fprintln(w, t.Render())
}
