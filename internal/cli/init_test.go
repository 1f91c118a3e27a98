package cli

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	plancmd "github.com/pablasso/planfirst/internal/cli/plan"
	"github.com/pablasso/planfirst/internal/config"
	"github.com/pablasso/planfirst/internal/plan"
)

func TestRunInit(t *testing.T) {
	t.Run("successful init creates directories, config and gitignore entries", func(t *testing.T) {
		stubClaude(t)
		root := t.TempDir()
		gitInit(t, root)
		env := plancmd.NewEnv(root)

		var out bytes.Buffer
		if err := runInit(env, &out); err != nil {
			t.Fatalf("runInit failed: %v", err)
		}

		info, err := os.Stat(plan.PlansPath(root))
		if err != nil || !info.IsDir() {
			t.Fatalf("expected plans directory to exist, got error: %v", err)
		}

		data, err := os.ReadFile(config.Path(root))
		if err != nil {
			t.Fatalf("expected config file to exist: %v", err)
		}
		if !strings.Contains(string(data), "provider: claude-cli") {
			t.Errorf("config should hold defaults, got:\n%s", data)
		}

		content, err := os.ReadFile(filepath.Join(root, ".gitignore"))
		if err != nil {
			t.Fatalf("expected .gitignore to exist: %v", err)
		}
		for _, entry := range gitignoreEntries {
			if !strings.Contains(string(content), entry+"\n") {
				t.Errorf(".gitignore missing %q, got %q", entry, content)
			}
		}

		if !strings.Contains(out.String(), "Next steps") {
			t.Errorf("expected next steps, got:\n%s", out.String())
		}
	})

	t.Run("init outside git repo fails", func(t *testing.T) {
		stubClaude(t)
		root := t.TempDir()
		env := plancmd.NewEnv(root)

		err := runInit(env, &bytes.Buffer{})
		var prereqErr *PrerequisiteError
		if !errors.As(err, &prereqErr) {
			t.Fatalf("expected *PrerequisiteError, got %T: %v", err, err)
		}
		if prereqErr.Check != "Git repository" {
			t.Errorf("expected Check to be 'Git repository', got %q", prereqErr.Check)
		}
		if _, err := os.Stat(filepath.Join(root, plan.Dir)); err == nil {
			t.Error("expected .planfirst to not exist after failed init")
		}
	})

	t.Run("double init fails", func(t *testing.T) {
		stubClaude(t)
		root := t.TempDir()
		gitInit(t, root)
		env := plancmd.NewEnv(root)

		if err := runInit(env, &bytes.Buffer{}); err != nil {
			t.Fatalf("first runInit failed: %v", err)
		}
		if err := runInit(env, &bytes.Buffer{}); !errors.Is(err, errAlreadyInitialized) {
			t.Errorf("expected errAlreadyInitialized, got %v", err)
		}
	})

	t.Run("hosted provider does not need claude", func(t *testing.T) {
		origLookPath := lookPathFunc
		lookPathFunc = func(string) (string, error) { return "", os.ErrNotExist }
		t.Cleanup(func() { lookPathFunc = origLookPath })

		root := t.TempDir()
		gitInit(t, root)
		env := plancmd.NewEnv(root)
		env.Config.AI.Provider = config.ProviderOpenAI

		if err := runInit(env, &bytes.Buffer{}); err != nil {
			t.Fatalf("runInit failed: %v", err)
		}
	})
}
