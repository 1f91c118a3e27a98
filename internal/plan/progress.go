package plan

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

const progressLogFileName = "progress.log"

// Event type constants for the plan activity log.
const (
	EventPlanCreated           = "plan_created"
	EventPhaseStarted          = "phase_started"
	EventPhaseCompleted        = "phase_completed"
	EventPhaseFailed           = "phase_failed"
	EventRunCancelled          = "run_cancelled"
	EventVerificationCompleted = "verification_completed"
)

// ProgressEvent is a single activity log entry.
type ProgressEvent struct {
	Timestamp time.Time      `json:"timestamp"`
	Event     string         `json:"event"`
	Data      map[string]any `json:"data,omitempty"`
}

// ProgressLogger appends activity events to a JSON Lines file in the plan
// directory.
type ProgressLogger struct {
	path string
}

// NewProgressLogger creates a progress logger for the given plan directory.
func NewProgressLogger(planDir string) *ProgressLogger {
	return &ProgressLogger{
		path: filepath.Join(planDir, progressLogFileName),
	}
}

// Log appends an event to the log file.
func (p *ProgressLogger) Log(event string, data map[string]any) error {
	entry := ProgressEvent{
		Timestamp: time.Now(),
		Event:     event,
		Data:      data,
	}

	jsonBytes, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	jsonBytes = append(jsonBytes, '\n')

	f, err := os.OpenFile(p.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = f.Write(jsonBytes)
	return err
}

// PlanCreated logs a plan_created event.
func (p *ProgressLogger) PlanCreated(planID string, phases, tasks int) error {
	return p.Log(EventPlanCreated, map[string]any{
		"plan_id": planID,
		"phases":  phases,
		"tasks":   tasks,
	})
}

// PhaseStarted logs a phase_started event.
func (p *ProgressLogger) PhaseStarted(phaseID string, attempt int) error {
	return p.Log(EventPhaseStarted, map[string]any{
		"phase_id": phaseID,
		"attempt":  attempt,
	})
}

// PhaseCompleted logs a phase_completed event.
func (p *ProgressLogger) PhaseCompleted(phaseID string, attempt int) error {
	return p.Log(EventPhaseCompleted, map[string]any{
		"phase_id": phaseID,
		"attempt":  attempt,
	})
}

// PhaseFailed logs a phase_failed event.
func (p *ProgressLogger) PhaseFailed(phaseID string, attempt int, reason string) error {
	return p.Log(EventPhaseFailed, map[string]any{
		"phase_id": phaseID,
		"attempt":  attempt,
		"reason":   reason,
	})
}

// RunCancelled logs a run_cancelled event.
func (p *ProgressLogger) RunCancelled(phaseID string) error {
	return p.Log(EventRunCancelled, map[string]any{
		"phase_id": phaseID,
	})
}

// VerificationCompleted logs the outcome of a verification run.
func (p *ProgressLogger) VerificationCompleted(phaseID, overallStatus string, totalTasks int, duration time.Duration) error {
	data := map[string]any{
		"overall_status": overallStatus,
		"total_tasks":    totalTasks,
		"duration_ms":    duration.Milliseconds(),
	}
	if phaseID != "" {
		data["phase_id"] = phaseID
	}
	return p.Log(EventVerificationCompleted, data)
}
