package plan

import (
	"github.com/spf13/cobra"
)

// NewCmd returns the parent command for plan-related subcommands.
func NewCmd(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Create, inspect and execute plans",
		Long:  `Commands for drafting phased implementation plans and running them with a coding agent.`,
	}

	cmd.AddCommand(
		newCreateCmd(env),
		newImportCmd(env),
		newListCmd(env),
		newShowCmd(env),
		newRunCmd(env),
	)
	return cmd
}
