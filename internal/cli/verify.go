package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	plancmd "github.com/pablasso/planfirst/internal/cli/plan"
	"github.com/pablasso/planfirst/internal/display"
	"github.com/pablasso/planfirst/internal/history"
	"github.com/pablasso/planfirst/internal/plan"
	"github.com/pablasso/planfirst/internal/report"
	"github.com/pablasso/planfirst/internal/util"
	"github.com/pablasso/planfirst/internal/verify"
	"github.com/pablasso/planfirst/internal/watch"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// ErrVerificationFailed is returned when a verification run ends in fail or
// error so the process exits non-zero.
var ErrVerificationFailed = errors.New("verification failed")

type verifyOptions struct {
	Ref    string
	Phase  int
	TaskID string
	Strict bool
	Report bool
	JSON   bool
	Watch  bool
}

func newVerifyCmd(env *plancmd.Env) *cobra.Command {
	var opts verifyOptions

	cmd := &cobra.Command{
		Use:   "verify <plan>",
		Short: "Check the project files against a plan",
		Long: `Score every task of a plan (or one phase, or one task) against the files on
disk and print a summary. Exits 1 when the overall status is fail or error.
With --watch, verification re-runs whenever project files change.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Ref = args[0]
			if !cmd.Flags().Changed("strict") {
				opts.Strict = env.Config.Verification.StrictMode
			}
			if !cmd.Flags().Changed("report") {
				opts.Report = env.Config.Verification.SaveReport
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()
			return runVerify(ctx, env, cmd.OutOrStdout(), opts)
		},
	}

	f := cmd.Flags()
	f.IntVar(&opts.Phase, "phase", 0, "Verify only this phase (by order)")
	f.StringVar(&opts.TaskID, "task", "", "Verify only this task id")
	f.BoolVar(&opts.Strict, "strict", false, "Also look for changes the plan did not ask for")
	f.BoolVar(&opts.Report, "report", true, "Save a markdown report in the plan folder")
	f.BoolVar(&opts.JSON, "json", false, "Print the raw result as JSON")
	f.BoolVarP(&opts.Watch, "watch", "w", false, "Re-verify when project files change")
	return cmd
}

func runVerify(ctx context.Context, env *plancmd.Env, w io.Writer, opts verifyOptions) error {
	planDir, p, err := env.LoadPlan(opts.Ref)
	if err != nil {
		return err
	}
	if err := checkSelection(p, opts); err != nil {
		return err
	}

	store, err := history.Open(filepath.Join(env.Root, plan.Dir), env.Logger)
	if err != nil {
		env.Logger.Warn("verification history unavailable", zap.Error(err))
	} else {
		defer store.Close()
	}

	r := &verifyRun{env: env, w: w, planID: p.ID, planDir: planDir, history: store, opts: opts}

	res, err := r.once(ctx, p)
	if err != nil {
		return err
	}
	if !opts.Watch {
		if res.OverallStatus.Failed() {
			return ErrVerificationFailed
		}
		return nil
	}

	watcher, err := watch.New(env.Root, env.Logger)
	if err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}
	defer watcher.Close()

	fmt.Fprintln(w, "\nWatching for changes. Press Ctrl+C to stop.")
	return watcher.Run(ctx, func(ctx context.Context, paths []string) {
		fmt.Fprintf(w, "\nChanged: %s\n\n", strings.Join(paths, ", "))
		r.reload(ctx)
	})
}

// checkSelection rejects a phase or task the plan does not have.
func checkSelection(p *plan.Plan, opts verifyOptions) error {
	if opts.Phase < 0 || opts.Phase > len(p.Phases) {
		return fmt.Errorf("phase %d out of range (plan has %d phases)", opts.Phase, len(p.Phases))
	}
	if opts.TaskID != "" && len(verify.SelectTasks(p, verify.Options{Phase: opts.Phase, TaskID: opts.TaskID})) == 0 {
		return fmt.Errorf("task %s not found", opts.TaskID)
	}
	return nil
}

// verifyRun holds what repeated verifications of one plan share.
type verifyRun struct {
	env     *plancmd.Env
	w       io.Writer
	planID  string
	planDir string
	history *history.Store
	opts    verifyOptions
}

// reload re-reads plan.json before verifying. A plan that no longer loads
// is reported as an error result.
func (r *verifyRun) reload(ctx context.Context) {
	p, err := plan.LoadPlan(r.planDir)
	if err != nil {
		phaseID := ""
		if r.opts.Phase > 0 {
			phaseID = util.PhaseID(r.opts.Phase)
		}
		res := verify.ErrorResult(r.planID, phaseID, time.Now(), err)
		r.publish(ctx, nil, res, 0)
		return
	}
	if _, err := r.once(ctx, p); err != nil && ctx.Err() == nil {
		r.env.Logger.Warn("verification failed to run", zap.Error(err))
	}
}

// once verifies p and publishes the result.
func (r *verifyRun) once(ctx context.Context, p *plan.Plan) (*verify.Result, error) {
	var status *display.Display
	if f, ok := r.w.(*os.File); ok && !r.opts.JSON && display.IsTerminal(f) {
		status = display.New(f)
		status.UpdateStatus(display.StatusVerifying)
		status.Start()
	}

	verifier := verify.New(r.env.Fs, r.env.Logger, verify.WithProgress(func(done, total int, tv verify.TaskVerification) {
		if status != nil {
			status.UpdateStep("Task", done, total, tv.File)
		}
	}))

	start := time.Now()
	res, err := verifier.Verify(ctx, p, r.env.Root, verify.Options{
		Phase:      r.opts.Phase,
		TaskID:     r.opts.TaskID,
		StrictMode: r.opts.Strict,
	})
	if status != nil {
		status.Stop()
	}
	if err != nil {
		return nil, err
	}

	r.publish(ctx, p, res, time.Since(start))
	return res, nil
}

// publish prints res and persists it to the progress log, the report file
// and the history database.
func (r *verifyRun) publish(ctx context.Context, p *plan.Plan, res *verify.Result, elapsed time.Duration) {
	if r.opts.JSON {
		enc := json.NewEncoder(r.w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(res); err != nil {
			r.env.Logger.Warn("failed to encode result", zap.Error(err))
		}
	} else {
		report.WriteSummary(r.w, res)
	}

	progress := plan.NewProgressLogger(r.planDir)
	if err := progress.VerificationCompleted(res.PhaseID, string(res.OverallStatus), res.Summary.TotalTasks, elapsed); err != nil {
		r.env.Logger.Warn("failed to write progress log", zap.Error(err))
	}

	if r.opts.Report && p != nil {
		path, err := report.Save(r.env.Fs, r.planDir, res, p)
		if err != nil {
			r.env.Logger.Warn("failed to save report", zap.Error(err))
		} else if !r.opts.JSON {
			if rel, err := filepath.Rel(r.env.Root, path); err == nil {
				path = rel
			}
			fmt.Fprintf(r.w, "\nReport saved to %s\n", path)
		}
	}

	if r.history != nil {
		if _, err := r.history.Record(ctx, res); err != nil {
			r.env.Logger.Warn("failed to record verification", zap.Error(err))
		}
	}
}
