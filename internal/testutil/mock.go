// Package testutil holds helpers shared by planfirst tests.
package testutil

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
)

// CommandFunc matches the signature of the exec hooks that packages expose
// for tests, such as ai.CommandContext.
type CommandFunc func(ctx context.Context, name string, args ...string) *exec.Cmd

// MockCommandFunc returns a command hook whose process prints output and
// exits 0.
func MockCommandFunc(output string) CommandFunc {
	return func(ctx context.Context, name string, args ...string) *exec.Cmd {
		return exec.CommandContext(ctx, "echo", "-n", output)
	}
}

// RecordedCommand captures the last invocation seen by a recording hook.
type RecordedCommand struct {
	Name string
	Args []string
}

// RecordCommand wraps next so every call is stored in the returned record.
func RecordCommand(next CommandFunc) (CommandFunc, *RecordedCommand) {
	rec := &RecordedCommand{}
	return func(ctx context.Context, name string, args ...string) *exec.Cmd {
		rec.Name = name
		rec.Args = append([]string(nil), args...)
		return next(ctx, name, args...)
	}, rec
}

// SetupTestDir makes a fresh temp directory the working directory for the
// rest of the test and returns its symlink-resolved path (macOS maps /var to
// /private/var).
func SetupTestDir(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	if resolved, err := filepath.EvalSymlinks(dir); err == nil {
		dir = resolved
	}

	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("failed to get working directory: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("failed to change to temp dir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })

	return dir
}

// InitProject is SetupTestDir plus an empty .planfirst/plans directory.
func InitProject(t *testing.T) string {
	t.Helper()

	dir := SetupTestDir(t)
	if err := os.MkdirAll(filepath.Join(dir, ".planfirst", "plans"), 0755); err != nil {
		t.Fatalf("failed to create .planfirst: %v", err)
	}
	return dir
}

// WriteFile writes content to the root-relative path rel, creating parent
// directories.
func WriteFile(t *testing.T, root, rel, content string) {
	t.Helper()

	path := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create %s: %v", filepath.Dir(rel), err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", rel, err)
	}
}
