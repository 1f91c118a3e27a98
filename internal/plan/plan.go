package plan

import "time"

// Status is the lifecycle state of a plan.
type Status string

// Plan status constants
const (
	StatusDraft      Status = "draft"
	StatusReady      Status = "ready"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
	StatusVerified   Status = "verified"
)

// PhaseStatus is the execution state of a phase.
type PhaseStatus string

// Phase status constants
const (
	PhaseStatusPending    PhaseStatus = "pending"
	PhaseStatusInProgress PhaseStatus = "in-progress"
	PhaseStatusCompleted  PhaseStatus = "completed"
	PhaseStatusFailed     PhaseStatus = "failed"
)

// Complexity is the coarse size classification of a plan.
type Complexity string

// Complexity constants
const (
	ComplexityLow    Complexity = "low"
	ComplexityMedium Complexity = "medium"
	ComplexityHigh   Complexity = "high"
)

// Plan is the structured, phase-based breakdown of a feature request.
type Plan struct {
	ID          string    `json:"id" validate:"required"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Timestamp   time.Time `json:"timestamp" validate:"required"`
	Phases      []Phase   `json:"phases" validate:"min=1,dive"`
	Metadata    Metadata  `json:"metadata"`
	Status      Status    `json:"status" validate:"oneof=draft ready in-progress completed verified"`
}

// Phase is an ordered, dependency-chained group of tasks.
type Phase struct {
	ID           string      `json:"id" validate:"required"`
	Order        int         `json:"order" validate:"min=1"`
	Name         string      `json:"name"`
	Description  string      `json:"description" validate:"max=200"`
	Tasks        []Task      `json:"tasks" validate:"min=1,dive"`
	Dependencies []string    `json:"dependencies"`
	Status       PhaseStatus `json:"status" validate:"oneof=pending in-progress completed failed"`
}

// Metadata holds aggregates derived from the source document.
type Metadata struct {
	Complexity    Complexity `json:"complexity" validate:"oneof=low medium high"`
	FilesAffected []string   `json:"filesAffected"`
	Dependencies  []string   `json:"dependencies"`
	EstimatedTime string     `json:"estimatedTime"`
}

// PhaseByOrder returns the phase whose order equals n, or nil.
func (p *Plan) PhaseByOrder(n int) *Phase {
	for i := range p.Phases {
		if p.Phases[i].Order == n {
			return &p.Phases[i]
		}
	}
	return nil
}

// AllTasks returns every task in phase order, then task order.
func (p *Plan) AllTasks() []Task {
	var tasks []Task
	for _, ph := range p.Phases {
		tasks = append(tasks, ph.Tasks...)
	}
	return tasks
}
