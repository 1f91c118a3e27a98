package cli

import (
	"errors"
	"os"
	"os/exec"
	"testing"

	"github.com/pablasso/planfirst/internal/config"
)

func TestPrerequisiteError(t *testing.T) {
	err := &PrerequisiteError{
		Check:   "Test Check",
		Message: "Something went wrong",
		Help:    "Try doing X to fix it.",
	}

	expected := "Test Check: Something went wrong\n\nTry doing X to fix it."
	if err.Error() != expected {
		t.Errorf("got %q, want %q", err.Error(), expected)
	}
}

func TestCheckGitRepo(t *testing.T) {
	t.Run("in git repo returns nil", func(t *testing.T) {
		dir := t.TempDir()
		gitInit(t, dir)

		if err := checkGitRepo(dir); err != nil {
			t.Errorf("expected nil error in git repo, got: %v", err)
		}
	})

	t.Run("not in git repo returns PrerequisiteError", func(t *testing.T) {
		err := checkGitRepo(t.TempDir())

		var prereqErr *PrerequisiteError
		if !errors.As(err, &prereqErr) {
			t.Fatalf("expected *PrerequisiteError, got %T: %v", err, err)
		}
		if prereqErr.Check != "Git repository" {
			t.Errorf("expected Check to be 'Git repository', got %q", prereqErr.Check)
		}
	})
}

func TestCheckClaudeCode(t *testing.T) {
	tests := []struct {
		name      string
		installed bool
		authed    bool
		wantCheck string
	}{
		{name: "installed and authenticated", installed: true, authed: true},
		{name: "not installed", wantCheck: "Claude Code CLI"},
		{name: "not authenticated", installed: true, wantCheck: "Claude Code authentication"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			origCommand, origLookPath := commandFunc, lookPathFunc
			t.Cleanup(func() { commandFunc, lookPathFunc = origCommand, origLookPath })

			lookPathFunc = func(string) (string, error) {
				if tt.installed {
					return "/usr/local/bin/claude", nil
				}
				return "", os.ErrNotExist
			}
			commandFunc = func(string, ...string) *exec.Cmd {
				if tt.authed {
					return exec.Command("true")
				}
				return exec.Command("false")
			}

			err := checkClaudeCode()
			if tt.wantCheck == "" {
				if err != nil {
					t.Errorf("expected nil, got %v", err)
				}
				return
			}
			var prereqErr *PrerequisiteError
			if !errors.As(err, &prereqErr) || prereqErr.Check != tt.wantCheck {
				t.Errorf("expected %q prerequisite error, got %v", tt.wantCheck, err)
			}
		})
	}
}

func TestCheckPrerequisitesSkipsClaudeForHostedProviders(t *testing.T) {
	origLookPath := lookPathFunc
	lookPathFunc = func(string) (string, error) { return "", os.ErrNotExist }
	t.Cleanup(func() { lookPathFunc = origLookPath })

	dir := t.TempDir()
	gitInit(t, dir)

	if err := checkPrerequisites(dir, config.ProviderAnthropic); err != nil {
		t.Errorf("expected nil for anthropic provider, got %v", err)
	}
	if err := checkPrerequisites(dir, config.ProviderClaudeCLI); err == nil {
		t.Error("expected error for claude-cli provider without claude installed")
	}
}
