package executor

import (
	"time"

	"github.com/pablasso/planfirst/internal/plan"
	"github.com/pablasso/planfirst/internal/verify"
)

// Events receives callbacks during plan execution. All methods are called
// from the goroutine running Executor.Run.
type Events interface {
	// OnPhaseStart is called before each attempt.
	OnPhaseStart(phaseNum, total int, phase *plan.Phase, attempt int)

	// OnVerification is called after every verification run. phase is nil
	// for the final full-plan verification.
	OnVerification(phase *plan.Phase, res *verify.Result)

	// OnPhaseComplete is called when a phase passes verification.
	OnPhaseComplete(phase *plan.Phase)

	// OnPhaseFailed is called when an attempt fails.
	OnPhaseFailed(phase *plan.Phase, attempt int, err error)

	// OnOutput is called with display text from the agent.
	OnOutput(text string)

	// OnPlanComplete is called when every phase has completed.
	OnPlanComplete(status plan.Status, duration time.Duration)

	// OnPlanFailed is called when a phase exhausts its attempts.
	OnPlanFailed(phase *plan.Phase, reason string)
}
