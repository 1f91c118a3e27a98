package plan

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/pablasso/planfirst/internal/ai"
	"github.com/pablasso/planfirst/internal/analysis"
	"github.com/pablasso/planfirst/internal/display"
	"github.com/pablasso/planfirst/internal/executor"
	"github.com/pablasso/planfirst/internal/git"
	"github.com/pablasso/planfirst/internal/history"
	"github.com/pablasso/planfirst/internal/plan"
	"github.com/pablasso/planfirst/internal/verify"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Replaced in tests.
var (
	claudeAvailable = ai.IsClaudeAvailable
	agentRunner     executor.Runner
)

// RunOptions holds the options for the run command.
type RunOptions struct {
	Ref        string
	Phase      int
	AllowDirty bool
}

func newRunCmd(env *Env) *cobra.Command {
	var opts RunOptions

	cmd := &cobra.Command{
		Use:   "run <plan>",
		Short: "Run a plan (resumes from the first pending phase)",
		Long: `Hand each pending phase to Claude Code and verify it before moving on.
A phase that fails verification is retried up to 3 times. Interrupted runs
resume from the first pending phase.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Ref = args[0]
			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()
			return runPlan(ctx, env, cmd.OutOrStdout(), opts)
		},
	}

	cmd.Flags().IntVar(&opts.Phase, "phase", 0, "Run only this phase (by order)")
	cmd.Flags().BoolVar(&opts.AllowDirty, "allow-dirty", false, "Allow running with uncommitted changes (not recommended)")
	return cmd
}

func runPlan(ctx context.Context, env *Env, w io.Writer, opts RunOptions) error {
	planDir, p, err := env.LoadPlan(opts.Ref)
	if err != nil {
		return err
	}
	if opts.Phase != 0 && p.PhaseByOrder(opts.Phase) == nil {
		return fmt.Errorf("phase %d out of range (plan has %d phases)", opts.Phase, len(p.Phases))
	}

	if agentRunner == nil && !claudeAvailable() {
		return ai.ErrClaudeNotFound
	}

	if !opts.AllowDirty {
		if err := requireCleanTree(ctx, env.Root); err != nil {
			return err
		}
	}

	store, err := history.Open(filepath.Join(env.Root, plan.Dir), env.Logger)
	if err != nil {
		env.Logger.Warn("verification history unavailable", zap.Error(err))
		store = nil
	} else {
		defer store.Close()
	}

	events := newRunEvents(ctx, w, store, env.Logger)
	events.start()
	defer events.stop()

	exec := executor.New(env.Root, planDir, p, env.Logger).
		WithEvents(events).
		WithPhase(opts.Phase)
	if agentRunner != nil {
		exec = exec.WithRunner(agentRunner)
	}

	err = exec.Run(ctx)
	events.stop()
	switch {
	case errors.Is(err, context.Canceled):
		fmt.Fprintf(w, "Run cancelled. Resume with `planfirst plan run %s`.\n", opts.Ref)
		return nil
	case err == nil, errors.Is(err, executor.ErrPhaseFailed):
		printSuggestions(w, env, planDir, p)
	}
	return err
}

// printSuggestions prints AGENTS.md suggestions drawn from the run's logs.
func printSuggestions(w io.Writer, env *Env, planDir string, p *plan.Plan) {
	suggestions, err := analysis.NewAnalyzer(planDir, p).Analyze()
	if err != nil {
		env.Logger.Debug("run analysis skipped", zap.Error(err))
		return
	}
	fmt.Fprint(w, analysis.FormatSuggestions(suggestions))
}

func requireCleanTree(ctx context.Context, root string) error {
	files, err := git.GetDirtyFiles(ctx, root)
	if err != nil {
		return fmt.Errorf("failed to check git status: %w", err)
	}
	if len(files) == 0 {
		return nil
	}
	return fmt.Errorf("working tree has uncommitted changes:\n  %s\n\nCommit or stash them first, or pass --allow-dirty",
		strings.Join(files, "\n  "))
}

// runEvents reports executor progress on the terminal and records every
// verification in the history database.
type runEvents struct {
	ctx     context.Context
	w       io.Writer
	display *display.Display // nil when w is not a terminal
	history *history.Store
	logger  *zap.Logger
}

func newRunEvents(ctx context.Context, w io.Writer, store *history.Store, logger *zap.Logger) *runEvents {
	ev := &runEvents{ctx: ctx, w: w, history: store, logger: logger}
	if f, ok := w.(*os.File); ok && display.IsTerminal(f) {
		ev.display = display.New(f)
	}
	return ev
}

func (e *runEvents) start() {
	if e.display != nil {
		e.display.Start()
	}
}

func (e *runEvents) stop() {
	if e.display != nil {
		e.display.Stop()
	}
}

func (e *runEvents) printf(format string, args ...any) {
	if e.display != nil {
		e.display.PrintAbove(format, args...)
		return
	}
	fmt.Fprintf(e.w, format+"\n", args...)
}

func (e *runEvents) OnPhaseStart(phaseNum, total int, phase *plan.Phase, attempt int) {
	if e.display != nil {
		e.display.UpdateStep("Phase", phaseNum, total, phase.Name)
		e.display.UpdateAttempt(attempt, executor.MaxAttempts)
		e.display.UpdateStatus(display.StatusRunning)
	}
	e.printf("Starting %s: %s (attempt %d/%d)", phase.ID, phase.Name, attempt, executor.MaxAttempts)
}

func (e *runEvents) OnVerification(phase *plan.Phase, res *verify.Result) {
	scope := "plan"
	if phase != nil {
		scope = phase.ID
	}
	s := res.Summary
	e.printf("Verification %s for %s: %d/%d tasks complete, %d partial, %d missing",
		res.OverallStatus, scope, s.TasksCompleted, s.TotalTasks, s.TasksPartial, s.TasksMissing)

	if e.history == nil {
		return
	}
	if _, err := e.history.Record(e.ctx, res); err != nil {
		e.logger.Warn("failed to record verification", zap.Error(err))
	}
}

func (e *runEvents) OnPhaseComplete(phase *plan.Phase) {
	e.printf("✓ %s completed", phase.ID)
}

func (e *runEvents) OnPhaseFailed(phase *plan.Phase, attempt int, err error) {
	e.printf("✗ %s attempt %d failed: %v", phase.ID, attempt, err)
}

func (e *runEvents) OnOutput(text string) {
	e.printf("%s", strings.TrimRight(text, "\n"))
}

func (e *runEvents) OnPlanComplete(status plan.Status, duration time.Duration) {
	if e.display != nil {
		e.display.UpdateStatus(display.StatusCompleted)
	}
	e.printf("Plan %s in %s", status, display.FormatDuration(duration))
}

func (e *runEvents) OnPlanFailed(phase *plan.Phase, reason string) {
	if e.display != nil {
		e.display.UpdateStatus(display.StatusFailed)
	}
	e.printf("Plan stopped at %s: %s", phase.ID, reason)
}
