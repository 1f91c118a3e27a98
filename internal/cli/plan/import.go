package plan

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pablasso/planfirst/internal/project"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// ImportOptions holds the options for the import command.
type ImportOptions struct {
	FilePath string
	Request  string
	Name     string
	DryRun   bool
}

func newImportCmd(env *Env) *cobra.Command {
	var opts ImportOptions

	cmd := &cobra.Command{
		Use:   "import <file.md>",
		Short: "Create a plan from an existing markdown document",
		Long: `Extract a phased plan from a markdown document you already have, without
calling a language model. Phases come from "## Phase N: name" headings and
tasks from backticked file paths.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.FilePath = args[0]
			return runImport(env, cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Request, "request", "", "Original feature request (defaults to the file name)")
	cmd.Flags().StringVar(&opts.Name, "name", "", "Name for the plan folder (defaults to the plan title)")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "Preview the plan without saving it")
	return cmd
}

func runImport(env *Env, cmd *cobra.Command, opts ImportOptions) error {
	if !opts.DryRun {
		if err := env.RequireInitialized(); err != nil {
			return err
		}
	}

	content, err := readMarkdownFile(opts.FilePath)
	if err != nil {
		return err
	}

	request := opts.Request
	if request == "" {
		base := filepath.Base(opts.FilePath)
		request = strings.TrimSuffix(base, filepath.Ext(base))
	}

	deps, err := project.Dependencies(env.Fs, env.Root)
	if err != nil {
		env.Logger.Warn("failed to read project dependencies", zap.Error(err))
	}

	p, err := buildPlan(content, request, deps)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if opts.DryRun {
		printDryRunPreview(w, p)
		return nil
	}

	dir, err := storePlan(env, p, content, opts.Name)
	if err != nil {
		return err
	}
	printSuccess(w, env.Root, p, dir)
	return nil
}

// readMarkdownFile checks the file is a non-empty .md file and reads it.
func readMarkdownFile(path string) (string, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return "", fmt.Errorf("file not found: %s", path)
	}
	if err != nil {
		return "", fmt.Errorf("failed to access file: %w", err)
	}
	if !strings.HasSuffix(strings.ToLower(path), ".md") {
		return "", fmt.Errorf("file must be markdown (.md): %s", path)
	}
	if info.Size() == 0 {
		return "", fmt.Errorf("document is empty: %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}
	return string(data), nil
}
