package verify

import "time"

// Status is the outcome of verifying a task or a whole plan.
type Status string

// Status constants
const (
	StatusPass    Status = "pass"
	StatusPartial Status = "partial"
	StatusFail    Status = "fail"
	StatusError   Status = "error"
)

// Failed reports whether the status should fail the calling process.
func (s Status) Failed() bool {
	return s == StatusFail || s == StatusError
}

// Severity ranks an issue.
type Severity string

// Severity constants
const (
	SeverityCritical Severity = "critical"
	SeverityError    Severity = "error"
	SeverityWarning  Severity = "warning"
	SeverityInfo     Severity = "info"
)

// IssueType is the closed set of finding kinds.
type IssueType string

// IssueType constants
const (
	IssueMissingImplementation   IssueType = "missing-implementation"
	IssueIncorrectImplementation IssueType = "incorrect-implementation"
	IssueRegression              IssueType = "regression"
	IssueExtraChanges            IssueType = "extra-changes"
	IssueDependency              IssueType = "dependency-issue"
	IssueSyntaxError             IssueType = "syntax-error"
	IssueLogicError              IssueType = "logic-error"
)

// Issue is a single finding about a task's file.
type Issue struct {
	Severity   Severity  `json:"severity"`
	Type       IssueType `json:"type"`
	Message    string    `json:"message"`
	File       string    `json:"file"`
	Line       int       `json:"line,omitempty"`
	Suggestion string    `json:"suggestion,omitempty"`
}

// TaskVerification is the outcome for one task.
type TaskVerification struct {
	TaskID          string  `json:"taskId"`
	File            string  `json:"file"`
	Status          Status  `json:"status"`
	Issues          []Issue `json:"issues"`
	MatchPercentage int     `json:"matchPercentage"`
}

// Summary holds aggregate counts over all verified tasks.
type Summary struct {
	TotalTasks     int `json:"totalTasks"`
	TasksCompleted int `json:"tasksCompleted"`
	TasksPartial   int `json:"tasksPartial"`
	TasksMissing   int `json:"tasksMissing"`
	CriticalIssues int `json:"criticalIssues"`
	Warnings       int `json:"warnings"`
}

// Result is the outcome of one verification run. Results are never merged
// or updated after they are returned.
type Result struct {
	PlanID          string             `json:"planId"`
	PhaseID         string             `json:"phaseId,omitempty"`
	Timestamp       time.Time          `json:"timestamp"`
	OverallStatus   Status             `json:"overallStatus"`
	TaskResults     []TaskVerification `json:"taskResults"`
	Summary         Summary            `json:"summary"`
	Recommendations []string           `json:"recommendations"`
}

// ErrorResult describes a run that could not complete, such as a plan that
// failed to load during watch mode.
func ErrorResult(planID, phaseID string, at time.Time, err error) *Result {
	return &Result{
		PlanID:          planID,
		PhaseID:         phaseID,
		Timestamp:       at,
		OverallStatus:   StatusError,
		TaskResults:     []TaskVerification{},
		Recommendations: []string{"Verification could not complete: " + err.Error()},
	}
}
