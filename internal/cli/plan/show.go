package plan

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/pablasso/planfirst/internal/plan"
	"github.com/pablasso/planfirst/internal/tui/styles"
	"github.com/spf13/cobra"
)

func newShowCmd(env *Env) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show <plan>",
		Short: "Show a plan's phases and tasks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, p, err := env.LoadPlan(args[0])
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				return enc.Encode(p)
			}
			writePlan(w, p)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print plan.json instead of the outline")
	return cmd
}

func writePlan(w io.Writer, p *plan.Plan) {
	fmt.Fprintln(w, styles.TitleStyle.UnsetMarginBottom().Render(p.Title))
	fmt.Fprintln(w, styles.SubtleStyle.Render(fmt.Sprintf("%s · %s · %s complexity · %s",
		p.ID, p.Status, p.Metadata.Complexity, p.Metadata.EstimatedTime)))
	if len(p.Metadata.Dependencies) > 0 {
		fmt.Fprintf(w, "Dependencies: %s\n", strings.Join(p.Metadata.Dependencies, ", "))
	}

	for _, ph := range p.Phases {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "%s %s: %s\n", phaseMarker(ph.Status), ph.ID, ph.Name)
		for _, t := range ph.Tasks {
			fmt.Fprintf(w, "    %s [%s] %s\n", t.ID, t.Type, t.File)
			if t.Reasoning != "" {
				fmt.Fprintf(w, "        %s\n", styles.SubtleStyle.Render(t.Reasoning))
			}
		}
	}
}

func phaseMarker(s plan.PhaseStatus) string {
	switch s {
	case plan.PhaseStatusCompleted:
		return styles.SuccessStyle.Render("✓")
	case plan.PhaseStatusFailed:
		return styles.ErrorStyle.Render("✗")
	case plan.PhaseStatusInProgress:
		return styles.WarningStyle.Render("▸")
	default:
		return styles.SubtleStyle.Render("○")
	}
}
