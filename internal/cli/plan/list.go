package plan

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/pablasso/planfirst/internal/plan"
	"github.com/pablasso/planfirst/internal/tui/styles"
	"github.com/spf13/cobra"
)

func newListCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List plans, newest first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := env.RequireInitialized(); err != nil {
				return err
			}
			summaries, err := plan.ListPlans(env.Root)
			if err != nil {
				return err
			}
			writePlanTable(cmd.OutOrStdout(), summaries)
			return nil
		},
	}
}

func writePlanTable(w io.Writer, summaries []plan.Summary) {
	if len(summaries) == 0 {
		fmt.Fprintln(w, "No plans yet. Run `planfirst plan create \"<request>\"` to draft one.")
		return
	}

	rows := make([][]string, len(summaries))
	for i, s := range summaries {
		rows[i] = []string{
			filepath.Base(s.Folder),
			s.Title,
			string(s.Status),
			fmt.Sprintf("%d/%d", s.Completed, s.PhaseCount),
			fmt.Sprintf("%d", s.TaskCount),
		}
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(styles.SubtleStyle).
		Headers("PLAN", "TITLE", "STATUS", "PHASES", "TASKS").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return styles.SelectedStyle.Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})
	fmt.Fprintln(w, t.Render())
}
