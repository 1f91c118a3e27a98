package plan

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/pablasso/planfirst/internal/ai"
	"github.com/pablasso/planfirst/internal/config"
	"github.com/pablasso/planfirst/internal/extract"
	"github.com/pablasso/planfirst/internal/plan"
	"github.com/pablasso/planfirst/internal/project"
	"github.com/pablasso/planfirst/internal/util"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// newGenerator is replaced in tests.
var newGenerator = func(ctx context.Context, cfg config.AIConfig) (ai.Generator, error) {
	return ai.New(ctx, cfg)
}

// CreateOptions holds the options for the create command.
type CreateOptions struct {
	Request string
	Name    string
	DryRun  bool
}

func newCreateCmd(env *Env) *cobra.Command {
	var opts CreateOptions

	cmd := &cobra.Command{
		Use:   "create <request>",
		Short: "Draft a plan for a feature request",
		Long: `Ask the configured language model for a phased implementation plan and
store it under .planfirst/plans. Project dependencies from go.mod, package.json,
Cargo.toml and pyproject.toml are included in the prompt.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Request = strings.TrimSpace(strings.Join(args, " "))
			return runCreate(cmd.Context(), env, cmd.OutOrStdout(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.Name, "name", "", "Name for the plan folder (defaults to the plan title)")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "Preview the plan without saving it")
	return cmd
}

func runCreate(ctx context.Context, env *Env, w io.Writer, opts CreateOptions) error {
	if opts.Request == "" {
		return fmt.Errorf("request must not be empty")
	}
	if !opts.DryRun {
		if err := env.RequireInitialized(); err != nil {
			return err
		}
	}

	deps, err := project.Dependencies(env.Fs, env.Root)
	if err != nil {
		env.Logger.Warn("failed to read project dependencies", zap.Error(err))
	}

	gen, err := newGenerator(ctx, env.Config.AI)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "Drafting plan with %s...\n", providerName(env.Config.AI.Provider))
	start := time.Now()
	markdown, err := gen.Generate(ctx, ai.BuildPlanPrompt(opts.Request, deps))
	if err != nil {
		return fmt.Errorf("failed to generate plan: %w", err)
	}
	env.Logger.Debug("plan generated",
		zap.Duration("elapsed", time.Since(start)),
		zap.Int("markdown_bytes", len(markdown)))

	p, err := buildPlan(markdown, opts.Request, deps)
	if err != nil {
		return err
	}

	if opts.DryRun {
		printDryRunPreview(w, p)
		return nil
	}

	dir, err := storePlan(env, p, markdown, opts.Name)
	if err != nil {
		return err
	}
	printSuccess(w, env.Root, p, dir)
	return nil
}

func providerName(provider string) string {
	if provider == "" {
		return config.ProviderClaudeCLI
	}
	return provider
}

// buildPlan extracts and validates a plan from markdown.
func buildPlan(markdown, request string, deps []string) (*plan.Plan, error) {
	id, err := util.GenerateShortID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate plan ID: %w", err)
	}

	p := extract.Extract(extract.Input{
		Markdown:            markdown,
		Request:             request,
		ID:                  id,
		Timestamp:           time.Now(),
		ProjectDependencies: deps,
	})
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("extracted plan is invalid: %w", err)
	}
	return p, nil
}

// storePlan writes the plan folder and logs the creation event. The folder
// name comes from --name, else from the plan title.
func storePlan(env *Env, p *plan.Plan, markdown, name string) (string, error) {
	base := util.PlanName(p.Title)
	if name != "" {
		base = util.ToKebabCase(name)
	}
	if base == "" {
		base = "plan"
	}

	resolved, err := plan.ResolvePlanName(env.Root, base)
	if err != nil {
		return "", fmt.Errorf("failed to resolve plan name: %w", err)
	}

	dir, err := plan.CreatePlanFolder(env.Root, resolved, p, markdown)
	if err != nil {
		return "", err
	}

	if err := plan.NewProgressLogger(dir).PlanCreated(p.ID, len(p.Phases), len(p.AllTasks())); err != nil {
		env.Logger.Warn("failed to write progress log", zap.Error(err))
	}
	env.Logger.Info("plan created", zap.String("plan_id", p.ID), zap.String("dir", dir))
	return dir, nil
}

func printDryRunPreview(w io.Writer, p *plan.Plan) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Plan preview (dry run - nothing saved):")
	fmt.Fprintln(w)
	printOutline(w, p)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "To create this plan, run without --dry-run.")
}

func printSuccess(w io.Writer, root string, p *plan.Plan, dir string) {
	folder := filepath.Base(dir)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Plan created: %s\n", folder)
	fmt.Fprintln(w)
	printOutline(w, p)
	fmt.Fprintln(w)
	if rel, err := filepath.Rel(root, dir); err == nil {
		fmt.Fprintf(w, "Saved to %s\n", rel)
	}
	fmt.Fprintf(w, "Run `planfirst plan run %s` to start execution.\n", p.ID)
}

// printOutline writes the title, metadata and phase/task list of a plan.
func printOutline(w io.Writer, p *plan.Plan) {
	fmt.Fprintf(w, "  Title: %s\n", p.Title)
	fmt.Fprintf(w, "  Complexity: %s (%s)\n", p.Metadata.Complexity, p.Metadata.EstimatedTime)
	fmt.Fprintf(w, "  Phases: %d, Tasks: %d\n", len(p.Phases), len(p.AllTasks()))
	fmt.Fprintln(w)

	for _, ph := range p.Phases {
		fmt.Fprintf(w, "  %s: %s\n", ph.ID, ph.Name)
		for _, t := range ph.Tasks {
			fmt.Fprintf(w, "       %s [%s] %s\n", t.ID, t.Type, t.File)
		}
	}
}
