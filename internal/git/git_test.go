package git

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
)

// setupTestRepo creates a temporary git repository and returns its path.
func setupTestRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	for _, args := range [][]string{
		{"init"},
		{"config", "user.email", "test@test.com"},
		{"config", "user.name", "Test User"},
	} {
		cmd := exec.Command("git", args...)
		cmd.Dir = dir
		if out, err := cmd.CombinedOutput(); err != nil {
			t.Fatalf("git %v failed: %v\n%s", args, err, out)
		}
	}
	return dir
}

func runGit(t *testing.T, dir string, args ...string) {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("git %v failed: %v\n%s", args, err, out)
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestIsClean(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("empty repo is clean", func(t *testing.T) {
		t.Parallel()
		clean, err := IsClean(ctx, setupTestRepo(t))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !clean {
			t.Error("expected empty repo to be clean")
		}
	})

	t.Run("untracked file is dirty", func(t *testing.T) {
		t.Parallel()
		dir := setupTestRepo(t)
		writeFile(t, filepath.Join(dir, "new.txt"), "content")

		clean, err := IsClean(ctx, dir)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if clean {
			t.Error("expected repo with untracked file to be dirty")
		}
	})

	t.Run("modified tracked file is dirty", func(t *testing.T) {
		t.Parallel()
		dir := setupTestRepo(t)
		writeFile(t, filepath.Join(dir, "tracked.txt"), "original")
		runGit(t, dir, "add", "-A")
		runGit(t, dir, "commit", "-m", "initial")
		writeFile(t, filepath.Join(dir, "tracked.txt"), "modified")

		clean, err := IsClean(ctx, dir)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if clean {
			t.Error("expected repo with modified file to be dirty")
		}
	})

	t.Run("planfirst metadata is ignored", func(t *testing.T) {
		t.Parallel()
		dir := setupTestRepo(t)
		writeFile(t, filepath.Join(dir, ".planfirst", "plans", "abc123-x", "plan.json"), "{}")

		clean, err := IsClean(ctx, dir)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !clean {
			t.Error("changes under .planfirst should not make the tree dirty")
		}
	})

	t.Run("not a repository", func(t *testing.T) {
		t.Parallel()
		if _, err := IsClean(ctx, t.TempDir()); err == nil {
			t.Error("expected error outside a git repository")
		}
	})
}

func TestGetDirtyFiles(t *testing.T) {
	t.Parallel()
	dir := setupTestRepo(t)
	writeFile(t, filepath.Join(dir, "a.txt"), "a")
	writeFile(t, filepath.Join(dir, "sub", "b.txt"), "b")
	writeFile(t, filepath.Join(dir, ".planfirst", "config.yaml"), "ai: {}")

	files, err := GetDirtyFiles(context.Background(), dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := map[string]bool{"a.txt": true, "sub/b.txt": true}
	if len(files) != len(want) {
		t.Fatalf("expected %d dirty files, got %v", len(want), files)
	}
	for _, f := range files {
		if !want[f] {
			t.Errorf("unexpected dirty file %q", f)
		}
	}
}

func TestGetStatus_CancelledContext(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := GetStatus(ctx, setupTestRepo(t)); err == nil {
		t.Error("expected error for cancelled context")
	}
}
