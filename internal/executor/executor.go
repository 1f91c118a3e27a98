// Package executor hands plan phases to a coding agent in order and checks
// each phase with the verifier before moving on.
package executor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pablasso/planfirst/internal/plan"
	"github.com/pablasso/planfirst/internal/telemetry"
	"github.com/pablasso/planfirst/internal/verify"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// MaxAttempts is the maximum number of times a phase is attempted.
const MaxAttempts = 3

// ErrPhaseFailed is returned when a phase exhausts its attempts.
var ErrPhaseFailed = errors.New("phase failed")

// PhaseVerifier checks a plan against the project files.
type PhaseVerifier interface {
	Verify(ctx context.Context, p *plan.Plan, root string, opts verify.Options) (*verify.Result, error)
}

// Executor orchestrates the execution of plan phases.
type Executor struct {
	root      string
	planDir   string
	plan      *plan.Plan
	progress  *plan.ProgressLogger
	runner    Runner
	verifier  PhaseVerifier
	lock      *plan.PlanLock
	logger    *zap.Logger
	events    Events
	onlyPhase int
	output    *OutputCapture
}

// New creates an Executor for the plan stored in planDir, working on the
// project at root.
func New(root, planDir string, p *plan.Plan, logger *zap.Logger) *Executor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Executor{
		root:     root,
		planDir:  planDir,
		plan:     p,
		progress: plan.NewProgressLogger(planDir),
		runner:   NewClaudeRunner(root),
		verifier: verify.New(afero.NewOsFs(), logger),
		lock:     plan.NewPlanLock(planDir),
		logger:   logger.With(zap.String("plan_id", p.ID)),
	}
}

// WithRunner sets a custom runner.
func (e *Executor) WithRunner(r Runner) *Executor {
	e.runner = r
	return e
}

// WithVerifier sets a custom verifier.
func (e *Executor) WithVerifier(v PhaseVerifier) *Executor {
	e.verifier = v
	return e
}

// WithEvents registers an event receiver.
func (e *Executor) WithEvents(ev Events) *Executor {
	e.events = ev
	return e
}

// WithPhase restricts the run to the phase with the given order.
func (e *Executor) WithPhase(order int) *Executor {
	e.onlyPhase = order
	return e
}

// Run executes pending phases in order. Each attempt is followed by a
// verification of that phase; pass or partial completes the phase. When
// every phase has completed the whole plan is verified and marked verified
// on pass. Cancellation resets the current phase to pending and returns the
// context error.
func (e *Executor) Run(ctx context.Context) error {
	if err := e.lock.Acquire(); err != nil {
		return err
	}
	defer e.lock.Release()

	phases, err := e.selectPhases()
	if err != nil {
		return err
	}
	if len(phases) == 0 {
		e.logger.Info("nothing to run, every phase is completed")
		return nil
	}

	output, err := NewOutputCapture(e.planDir, e.emitOutput)
	if err != nil {
		return fmt.Errorf("failed to open output log: %w", err)
	}
	defer output.Close()
	e.output = output

	if e.plan.Status != plan.StatusInProgress {
		e.plan.Status = plan.StatusInProgress
		if err := e.save(); err != nil {
			return err
		}
	}

	start := time.Now()
	for _, idx := range phases {
		phase := &e.plan.Phases[idx]
		if err := e.executePhase(ctx, phase); err != nil {
			if ctx.Err() != nil {
				phase.Status = plan.PhaseStatusPending
				if saveErr := e.save(); saveErr != nil {
					e.logger.Warn("failed to save plan after cancel", zap.Error(saveErr))
				}
				e.logProgress(e.progress.RunCancelled(phase.ID))
				e.logger.Info("run cancelled", zap.String("phase_id", phase.ID))
				return ctx.Err()
			}
			if e.events != nil {
				e.events.OnPlanFailed(phase, err.Error())
			}
			return err
		}
	}

	if !e.plan.AllPhasesCompleted() {
		return nil
	}
	return e.finish(ctx, start)
}

// selectPhases returns the indexes of the phases this run will execute.
func (e *Executor) selectPhases() ([]int, error) {
	if e.onlyPhase > 0 {
		ph := e.plan.PhaseByOrder(e.onlyPhase)
		if ph == nil {
			return nil, fmt.Errorf("phase %d not found (plan has %d phases)", e.onlyPhase, len(e.plan.Phases))
		}
		if !e.plan.DependenciesMet(ph) {
			return nil, fmt.Errorf("phase %d depends on %v, which has not completed", ph.Order, ph.Dependencies)
		}
		return []int{ph.Order - 1}, nil
	}

	first := e.plan.FirstPendingPhase()
	if first == -1 {
		return nil, nil
	}
	var idxs []int
	for i := first; i < len(e.plan.Phases); i++ {
		if e.plan.Phases[i].Status != plan.PhaseStatusCompleted {
			idxs = append(idxs, i)
		}
	}
	return idxs, nil
}

// executePhase runs one phase with retries.
func (e *Executor) executePhase(ctx context.Context, phase *plan.Phase) error {
	log := e.logger.With(zap.String("phase_id", phase.ID))
	var previous *verify.Result

	for attempt := 1; attempt <= MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		phase.Status = plan.PhaseStatusInProgress
		if err := e.save(); err != nil {
			return err
		}
		e.logProgress(e.progress.PhaseStarted(phase.ID, attempt))
		if e.events != nil {
			e.events.OnPhaseStart(phase.Order, len(e.plan.Phases), phase, attempt)
		}
		log.Info("phase started", zap.Int("attempt", attempt))

		res, err := e.attempt(ctx, phase, attempt, previous)
		if err != nil && ctx.Err() != nil {
			return ctx.Err()
		}
		if err == nil {
			phase.Status = plan.PhaseStatusCompleted
			if saveErr := e.save(); saveErr != nil {
				return saveErr
			}
			e.logProgress(e.progress.PhaseCompleted(phase.ID, attempt))
			if e.events != nil {
				e.events.OnPhaseComplete(phase)
			}
			log.Info("phase completed", zap.Int("attempt", attempt), zap.String("status", string(res.OverallStatus)))
			return nil
		}

		previous = res
		e.logProgress(e.progress.PhaseFailed(phase.ID, attempt, err.Error()))
		if e.events != nil {
			e.events.OnPhaseFailed(phase, attempt, err)
		}
		log.Warn("phase attempt failed", zap.Int("attempt", attempt), zap.Error(err))
	}

	phase.Status = plan.PhaseStatusFailed
	if err := e.save(); err != nil {
		log.Warn("failed to save plan after failure", zap.Error(err))
	}
	return fmt.Errorf("%w: %s after %d attempts", ErrPhaseFailed, phase.ID, MaxAttempts)
}

// attempt runs the agent once and verifies the phase. A nil error means the
// phase verified as pass or partial.
func (e *Executor) attempt(ctx context.Context, phase *plan.Phase, attempt int, previous *verify.Result) (res *verify.Result, err error) {
	ctx, span := telemetry.StartPhaseSpan(ctx, e.plan.ID, phase.ID, attempt)
	outcome := "failed"
	defer func() {
		telemetry.EndWithError(span, err)
		telemetry.RecordPhaseAttempt(ctx, phase.ID, outcome)
	}()

	e.output.WritePhaseHeader(phase.ID, attempt)
	req := Request{Plan: e.plan, Phase: phase, Attempt: attempt, MaxAttempts: MaxAttempts, Previous: previous}
	if err := e.runner.Run(ctx, req, e.output); err != nil {
		e.output.WritePhaseFooter(phase.ID, outcome)
		return nil, err
	}

	res, err = e.verify(ctx, phase)
	if err != nil {
		return nil, err
	}
	if res.OverallStatus.Failed() {
		e.output.WritePhaseFooter(phase.ID, outcome)
		return res, fmt.Errorf("verification %s: %d of %d tasks missing", res.OverallStatus, res.Summary.TasksMissing, res.Summary.TotalTasks)
	}
	outcome = "completed"
	e.output.WritePhaseFooter(phase.ID, outcome)
	return res, nil
}

// verify checks one phase, or the whole plan when phase is nil.
func (e *Executor) verify(ctx context.Context, phase *plan.Phase) (*verify.Result, error) {
	opts := verify.Options{}
	phaseID := ""
	if phase != nil {
		opts.Phase = phase.Order
		phaseID = phase.ID
	}

	start := time.Now()
	res, err := e.verifier.Verify(ctx, e.plan, e.root, opts)
	if err != nil {
		return nil, err
	}
	e.logProgress(e.progress.VerificationCompleted(phaseID, string(res.OverallStatus), res.Summary.TotalTasks, time.Since(start)))
	if e.events != nil {
		e.events.OnVerification(phase, res)
	}
	return res, nil
}

// finish verifies the whole plan after the last phase completes.
func (e *Executor) finish(ctx context.Context, start time.Time) error {
	e.plan.Status = plan.StatusCompleted
	res, err := e.verify(ctx, nil)
	if err != nil {
		if ctx.Err() == nil {
			return err
		}
		e.logger.Info("final verification cancelled")
	} else if res.OverallStatus == verify.StatusPass {
		e.plan.Status = plan.StatusVerified
	}
	if err := e.save(); err != nil {
		return err
	}

	duration := time.Since(start)
	if e.events != nil {
		e.events.OnPlanComplete(e.plan.Status, duration)
	}
	e.logger.Info("plan finished", zap.String("status", string(e.plan.Status)), zap.Duration("elapsed", duration))
	return nil
}

func (e *Executor) save() error {
	if err := plan.SavePlan(e.planDir, e.plan); err != nil {
		return fmt.Errorf("failed to save plan: %w", err)
	}
	return nil
}

func (e *Executor) emitOutput(text string) {
	if e.events != nil {
		e.events.OnOutput(text)
	}
}

func (e *Executor) logProgress(err error) {
	if err != nil {
		e.logger.Warn("failed to write progress log", zap.Error(err))
	}
}
