package cli

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	plancmd "github.com/pablasso/planfirst/internal/cli/plan"
	"github.com/pablasso/planfirst/internal/plan"
)

// stubClaude makes the claude binary look installed and authenticated while
// leaving every other command alone.
func stubClaude(t *testing.T) {
	t.Helper()
	origCommand, origLookPath := commandFunc, lookPathFunc
	commandFunc = func(name string, args ...string) *exec.Cmd {
		if name == "claude" {
			return exec.Command("true")
		}
		return exec.Command(name, args...)
	}
	lookPathFunc = func(file string) (string, error) {
		if file == "claude" {
			return "/usr/local/bin/claude", nil
		}
		return exec.LookPath(file)
	}
	t.Cleanup(func() {
		commandFunc, lookPathFunc = origCommand, origLookPath
	})
}

func gitInit(t *testing.T, dir string) {
	t.Helper()
	cmd := exec.Command("git", "init")
	cmd.Dir = dir
	if err := cmd.Run(); err != nil {
		t.Fatalf("failed to init git repo: %v", err)
	}
}

// initializedEnv returns an Env whose root already has .planfirst/plans.
func initializedEnv(t *testing.T) *plancmd.Env {
	t.Helper()
	root := t.TempDir()
	if err := os.MkdirAll(plan.PlansPath(root), 0755); err != nil {
		t.Fatalf("failed to create plans dir: %v", err)
	}
	return plancmd.NewEnv(root)
}

// bookmarkPlan is a two-phase plan creating store.go, then handler.go.
func bookmarkPlan() *plan.Plan {
	return &plan.Plan{
		ID:          "bk1234",
		Title:       "Bookmarks",
		Description: "add bookmarks",
		Timestamp:   time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
		Status:      plan.StatusReady,
		Metadata: plan.Metadata{
			Complexity:    plan.ComplexityLow,
			FilesAffected: []string{"store.go", "handler.go"},
			Dependencies:  []string{},
			EstimatedTime: "1-2 hours",
		},
		Phases: []plan.Phase{
			{
				ID:           "phase-1",
				Order:        1,
				Name:         "Storage",
				Status:       plan.PhaseStatusPending,
				Dependencies: []string{},
				Tasks: []plan.Task{{
					ID:          "task-1",
					Type:        plan.TaskCreate,
					File:        "store.go",
					Description: "Create bookmark storage backed by sqlite",
					Changes:     []plan.Change{},
				}},
			},
			{
				ID:           "phase-2",
				Order:        2,
				Name:         "Handlers",
				Status:       plan.PhaseStatusPending,
				Dependencies: []string{"phase-1"},
				Tasks: []plan.Task{{
					ID:          "task-1",
					Type:        plan.TaskCreate,
					File:        "handler.go",
					Description: "Create bookmark handlers serving requests",
					Changes:     []plan.Change{},
				}},
			},
		},
	}
}

func storeBookmarkPlan(t *testing.T, env *plancmd.Env) string {
	t.Helper()
	dir, err := plan.CreatePlanFolder(env.Root, "bookmarks", bookmarkPlan(), "# Bookmarks\n")
	if err != nil {
		t.Fatalf("failed to create plan folder: %v", err)
	}
	return dir
}

func writeProjectFile(t *testing.T, root, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(root, name), []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
}

func runCommand(t *testing.T, env *plancmd.Env, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newTestRoot(env)
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}
