package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	plancmd "github.com/pablasso/planfirst/internal/cli/plan"
	"github.com/pablasso/planfirst/internal/config"
	"github.com/pablasso/planfirst/internal/plan"
	"github.com/spf13/cobra"
)

var errAlreadyInitialized = errors.New("planfirst is already initialized in this repository")

func newInitCmd(env *plancmd.Env) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize planfirst in the current repository",
		Long:  "Creates a .planfirst/ folder with a default config.yaml to store plans, reports and verification history.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(env, cmd.OutOrStdout())
		},
	}
}

func runInit(env *plancmd.Env, w io.Writer) error {
	if err := checkPrerequisites(env.Root, env.Config.AI.Provider); err != nil {
		return err
	}

	if env.IsInitialized() {
		return errAlreadyInitialized
	}

	if err := os.MkdirAll(plan.PlansPath(env.Root), 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", plan.PlansPath(env.Root), err)
	}

	if err := config.Write(config.Path(env.Root), config.Default()); err != nil {
		return err
	}

	gitignore := filepath.Join(env.Root, ".gitignore")
	for _, entry := range gitignoreEntries {
		if err := addToGitignore(gitignore, entry); err != nil {
			return fmt.Errorf("failed to update .gitignore: %w", err)
		}
	}

	fmt.Fprintln(w, "Initialized planfirst in", filepath.Join(env.Root, plan.Dir))
	fmt.Fprintln(w, "\nNext steps:")
	fmt.Fprintln(w, "  1. Draft a plan: planfirst plan create \"<feature request>\"")
	fmt.Fprintln(w, "     or import one: planfirst plan import <design.md>")
	fmt.Fprintln(w, "  2. Implement it, or run: planfirst plan run <plan>")
	fmt.Fprintln(w, "  3. Check the result: planfirst verify <plan>")
	return nil
}
