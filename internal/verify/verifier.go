// Package verify scores whether the files in a project satisfy the tasks of
// a plan. Scoring is lexical: it checks that files exist and that the
// words of each task show up in them. It does not parse code.
package verify

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/pablasso/planfirst/internal/plan"
	"github.com/pablasso/planfirst/internal/telemetry"
)

// Options selects what to verify.
type Options struct {
	// Phase limits verification to the phase with this order. Zero means
	// every phase; an order no phase has selects nothing.
	Phase int

	// TaskID further limits verification to tasks with this id.
	TaskID string

	// StrictMode runs the unplanned change detector on every existing file.
	StrictMode bool
}

// ProgressFunc is called after each task is verified.
type ProgressFunc func(done, total int, tv TaskVerification)

// Verifier checks plans against a file system. It holds no per-run state
// and can be reused.
type Verifier struct {
	fs       afero.Fs
	logger   *zap.Logger
	detector UnplannedChangeDetector
	progress ProgressFunc
	now      func() time.Time
}

// Option configures a Verifier.
type Option func(*Verifier)

// WithDetector sets the detector used in strict mode.
func WithDetector(d UnplannedChangeDetector) Option {
	return func(v *Verifier) { v.detector = d }
}

// WithProgress registers a per-task progress callback.
func WithProgress(fn ProgressFunc) Option {
	return func(v *Verifier) { v.progress = fn }
}

// WithClock overrides the time source used for result timestamps.
func WithClock(now func() time.Time) Option {
	return func(v *Verifier) { v.now = now }
}

// New creates a Verifier reading from fs. A nil logger disables logging.
func New(fs afero.Fs, logger *zap.Logger, opts ...Option) *Verifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	v := &Verifier{
		fs:       fs,
		logger:   logger,
		detector: noUnplannedChanges{},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Verify checks the selected tasks of p against the files under root. Tasks
// are verified one at a time in plan order. File problems are reported as
// task results; the only error is cancellation of ctx, in which case no
// partial result is returned.
func (v *Verifier) Verify(ctx context.Context, p *plan.Plan, root string, opts Options) (*Result, error) {
	start := time.Now()
	ctx, span := telemetry.StartVerifySpan(ctx, p.ID,
		attribute.Bool(telemetry.KeyStrictMode, opts.StrictMode),
	)

	tasks := SelectTasks(p, opts)
	log := v.logger.With(zap.String("plan_id", p.ID), zap.Int("tasks", len(tasks)))
	log.Debug("verification started", zap.Int("phase", opts.Phase), zap.String("task", opts.TaskID))

	results := make([]TaskVerification, 0, len(tasks))
	for i, task := range tasks {
		if err := ctx.Err(); err != nil {
			log.Warn("verification cancelled", zap.Int("verified", i))
			telemetry.EndWithError(span, err)
			return nil, err
		}

		tv := v.verifyTask(ctx, task, root, opts.StrictMode)
		log.Debug("task verified",
			zap.String("task_id", tv.TaskID),
			zap.String("file", tv.File),
			zap.String("status", string(tv.Status)),
			zap.Int("match", tv.MatchPercentage),
		)
		results = append(results, tv)
		if v.progress != nil {
			v.progress(i+1, len(tasks), tv)
		}
	}

	summary := summarize(results)
	result := &Result{
		PlanID:          p.ID,
		Timestamp:       v.now(),
		OverallStatus:   overallStatus(summary),
		TaskResults:     results,
		Summary:         summary,
		Recommendations: recommendations(summary, results),
	}
	if opts.Phase > 0 {
		if ph := p.PhaseByOrder(opts.Phase); ph != nil {
			result.PhaseID = ph.ID
		}
	}

	span.SetAttributes(
		attribute.Int(telemetry.KeyTaskCount, summary.TotalTasks),
		attribute.String(telemetry.KeyOverallStatus, string(result.OverallStatus)),
	)
	span.End()
	telemetry.RecordVerification(ctx, string(result.OverallStatus), time.Since(start))

	log.Info("verification finished",
		zap.String("status", string(result.OverallStatus)),
		zap.Int("completed", summary.TasksCompleted),
		zap.Int("partial", summary.TasksPartial),
		zap.Int("missing", summary.TasksMissing),
		zap.Duration("elapsed", time.Since(start)),
	)
	return result, nil
}

// SelectTasks returns the tasks a run with opts would verify, in plan order.
func SelectTasks(p *plan.Plan, opts Options) []plan.Task {
	var tasks []plan.Task
	if opts.Phase > 0 {
		if ph := p.PhaseByOrder(opts.Phase); ph != nil {
			tasks = ph.Tasks
		}
	} else {
		tasks = p.AllTasks()
	}

	if opts.TaskID == "" {
		return tasks
	}
	var filtered []plan.Task
	for _, t := range tasks {
		if t.ID == opts.TaskID {
			filtered = append(filtered, t)
		}
	}
	return filtered
}

func (v *Verifier) verifyTask(ctx context.Context, task plan.Task, root string, strict bool) TaskVerification {
	tv := TaskVerification{
		TaskID: task.ID,
		File:   task.File,
		Issues: []Issue{},
	}
	if escapesRoot(task.File) {
		return outsideRoot(tv)
	}
	path := filepath.Join(root, task.File)

	exists, err := afero.Exists(v.fs, path)
	if err != nil {
		return readFailure(tv, err)
	}

	switch task.Type {
	case plan.TaskDelete:
		return verifyDelete(tv, exists)
	case plan.TaskCreate, plan.TaskModify:
	default:
		return unsupported(tv, task.Type)
	}

	if !exists {
		return missingFile(tv, task.Type)
	}

	data, err := afero.ReadFile(v.fs, path)
	if err != nil {
		return readFailure(tv, err)
	}
	content := string(data)

	tv.MatchPercentage = MatchPercentage(task, content)
	if task.Type == plan.TaskCreate {
		tv = judgeCreate(tv)
	} else {
		tv = judgeModify(tv)
	}

	if strict {
		tv.Issues = append(tv.Issues, v.detector.DetectUnplannedChanges(ctx, root, task, content)...)
	}
	return tv
}

func verifyDelete(tv TaskVerification, exists bool) TaskVerification {
	if !exists {
		tv.Status = StatusPass
		tv.MatchPercentage = 100
		return tv
	}
	tv.Status = StatusFail
	tv.Issues = append(tv.Issues, Issue{
		Severity:   SeverityError,
		Type:       IssueExtraChanges,
		Message:    fmt.Sprintf("File %s should have been deleted but still exists", tv.File),
		File:       tv.File,
		Suggestion: fmt.Sprintf("Remove %s", tv.File),
	})
	return tv
}

func missingFile(tv TaskVerification, taskType plan.TaskType) TaskVerification {
	tv.Status = StatusFail
	issue := Issue{
		Severity: SeverityError,
		Type:     IssueMissingImplementation,
		File:     tv.File,
	}
	switch {
	case taskType == plan.TaskCreate:
		issue.Message = fmt.Sprintf("File %s was not created", tv.File)
		issue.Suggestion = fmt.Sprintf("Create %s as described in the task", tv.File)
	case tv.File == "unknown":
		issue.Message = "Task does not name a file to modify"
		issue.Suggestion = "Clarify which file this task should change"
	default:
		issue.Message = fmt.Sprintf("File %s does not exist", tv.File)
		issue.Suggestion = fmt.Sprintf("Create %s or correct the path in the plan", tv.File)
	}
	tv.Issues = append(tv.Issues, issue)
	return tv
}

// judgeCreate: >=80 pass, 50-79 partial, below 50 incorrect.
func judgeCreate(tv TaskVerification) TaskVerification {
	switch pct := tv.MatchPercentage; {
	case pct >= 80:
		tv.Status = StatusPass
	case pct >= 50:
		tv.Status = StatusPartial
		tv.Issues = append(tv.Issues, Issue{
			Severity:   SeverityWarning,
			Type:       IssueIncorrectImplementation,
			Message:    fmt.Sprintf("Created file only partially matches the task (%d%% match)", pct),
			File:       tv.File,
			Suggestion: "Review the task description and complete the implementation",
		})
	default:
		tv.Status = StatusFail
		tv.Issues = append(tv.Issues, Issue{
			Severity:   SeverityError,
			Type:       IssueIncorrectImplementation,
			Message:    fmt.Sprintf("Created file does not match the task (%d%% match)", pct),
			File:       tv.File,
			Suggestion: "Rework the file to follow the task description",
		})
	}
	return tv
}

// judgeModify: >=70 pass, 40-69 partial, below 40 missing.
func judgeModify(tv TaskVerification) TaskVerification {
	switch pct := tv.MatchPercentage; {
	case pct >= 70:
		tv.Status = StatusPass
	case pct >= 40:
		tv.Status = StatusPartial
		tv.Issues = append(tv.Issues, Issue{
			Severity:   SeverityWarning,
			Type:       IssueIncorrectImplementation,
			Message:    fmt.Sprintf("Modification appears incomplete (%d%% match)", pct),
			File:       tv.File,
			Suggestion: "Check that every planned change was applied",
		})
	default:
		tv.Status = StatusFail
		tv.Issues = append(tv.Issues, Issue{
			Severity:   SeverityError,
			Type:       IssueMissingImplementation,
			Message:    fmt.Sprintf("Planned modification not found (%d%% match)", pct),
			File:       tv.File,
			Suggestion: fmt.Sprintf("Apply the planned changes to %s", tv.File),
		})
	}
	return tv
}

// unsupported resolves rename and move tasks, which no verification rule
// covers yet.
func unsupported(tv TaskVerification, taskType plan.TaskType) TaskVerification {
	tv.Status = StatusFail
	tv.Issues = append(tv.Issues, Issue{
		Severity:   SeverityError,
		Type:       IssueLogicError,
		Message:    fmt.Sprintf("Task type %q cannot be verified automatically", taskType),
		File:       tv.File,
		Suggestion: "Verify this task manually",
	})
	return tv
}

// escapesRoot reports whether a plan path is absolute or climbs out of the
// project root.
func escapesRoot(file string) bool {
	clean := filepath.Clean(filepath.FromSlash(file))
	return filepath.IsAbs(clean) || clean == ".." ||
		strings.HasPrefix(clean, ".."+string(filepath.Separator))
}

func outsideRoot(tv TaskVerification) TaskVerification {
	tv.Status = StatusError
	tv.Issues = append(tv.Issues, Issue{
		Severity:   SeverityError,
		Type:       IssueLogicError,
		Message:    fmt.Sprintf("File %s is outside the project root", tv.File),
		File:       tv.File,
		Suggestion: "Use a path relative to the project root",
	})
	return tv
}

func readFailure(tv TaskVerification, err error) TaskVerification {
	tv.Status = StatusError
	tv.MatchPercentage = 0
	msg := err.Error()
	if os.IsPermission(err) {
		msg = "permission denied"
	}
	tv.Issues = append(tv.Issues, Issue{
		Severity:   SeverityError,
		Type:       IssueLogicError,
		Message:    fmt.Sprintf("Could not read %s: %s", tv.File, msg),
		File:       tv.File,
		Suggestion: "Check that the file is readable and run verification again",
	})
	return tv
}
