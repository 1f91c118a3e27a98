package executor

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/pablasso/planfirst/internal/ai"
	"github.com/pablasso/planfirst/internal/plan"
	"github.com/pablasso/planfirst/internal/verify"
)

// Request is one attempt at one phase.
type Request struct {
	Plan        *plan.Plan
	Phase       *plan.Phase
	Attempt     int
	MaxAttempts int

	// Previous is the verification of the failed previous attempt, if any.
	Previous *verify.Result
}

// Runner hands a phase to a coding agent.
type Runner interface {
	Run(ctx context.Context, req Request, output OutputWriter) error
}

// ClaudeRunner executes phases via Claude Code CLI.
type ClaudeRunner struct {
	// Dir is the project root the agent works in.
	Dir string
}

// NewClaudeRunner creates a runner working in dir.
func NewClaudeRunner(dir string) *ClaudeRunner {
	return &ClaudeRunner{Dir: dir}
}

// Run executes a single phase attempt via Claude Code CLI.
func (r *ClaudeRunner) Run(ctx context.Context, req Request, output OutputWriter) error {
	prompt := buildPrompt(req)

	cmd := ai.CommandContext(ctx, "claude",
		"-p", prompt,
		"--output-format", "stream-json",
		"--verbose",
		"--dangerously-skip-permissions",
	)
	cmd.Dir = r.Dir

	if output != nil {
		cmd.Stdout = output.Stdout()
		cmd.Stderr = output.Stderr()
	} else {
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
	}

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("claude exited with error: %w", err)
	}
	return nil
}

// buildPrompt constructs the agent prompt for one phase attempt.
func buildPrompt(req Request) string {
	p, ph := req.Plan, req.Phase
	var sb strings.Builder

	sb.WriteString("You are implementing one phase of an approved implementation plan.\n\n")

	sb.WriteString("## Context\n")
	sb.WriteString(fmt.Sprintf("Plan: %s\n", p.Title))
	if p.Description != "" {
		sb.WriteString(fmt.Sprintf("Description: %s\n", p.Description))
	}
	sb.WriteString(fmt.Sprintf("Phase %d of %d\n\n", ph.Order, len(p.Phases)))

	sb.WriteString("## Your Phase\n")
	sb.WriteString(fmt.Sprintf("**ID**: %s\n", ph.ID))
	sb.WriteString(fmt.Sprintf("**Name**: %s\n", ph.Name))
	sb.WriteString(fmt.Sprintf("**Attempt**: %d of %d\n", req.Attempt, req.MaxAttempts))
	if ph.Description != "" {
		sb.WriteString(fmt.Sprintf("**Description**: %s\n", ph.Description))
	}
	sb.WriteString("\n")

	sb.WriteString("## Tasks\n")
	for i, task := range ph.Tasks {
		sb.WriteString(fmt.Sprintf("%d. [%s] `%s`: %s\n", i+1, task.Type, task.File, task.Description))
		if task.Reasoning != "" {
			sb.WriteString(fmt.Sprintf("   Why: %s\n", task.Reasoning))
		}
	}
	sb.WriteString("\n")

	if req.Previous != nil && req.Attempt > 1 {
		sb.WriteString("## Previous Attempt\n")
		sb.WriteString(fmt.Sprintf("Verification of the previous attempt reported %s:\n", req.Previous.OverallStatus))
		for _, tv := range req.Previous.TaskResults {
			for _, issue := range tv.Issues {
				sb.WriteString(fmt.Sprintf("- `%s`: %s\n", issue.File, issue.Message))
			}
		}
		sb.WriteString("Address these findings. Consider alternative approaches if the same approach failed.\n\n")
	}

	sb.WriteString("## Instructions\n")
	sb.WriteString("1. Make exactly the file changes listed above; do not start later phases\n")
	sb.WriteString("2. Keep the project building and its tests passing\n")
	sb.WriteString("3. Commit your changes with a descriptive message\n\n")

	sb.WriteString("IMPORTANT: Each listed file will be checked after you exit. Created files must exist and contain what the task describes; deleted files must be gone.\n")

	return sb.String()
}
