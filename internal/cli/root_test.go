package cli

import (
	"testing"

	plancmd "github.com/pablasso/planfirst/internal/cli/plan"
	"github.com/pablasso/planfirst/internal/testutil"
	"github.com/spf13/cobra"
)

// newTestRoot builds the command tree around env without the setup hook,
// so tests control the root, config and logger.
func newTestRoot(env *plancmd.Env) *cobra.Command {
	a := newApp()
	a.env = env
	root := a.command()
	root.PersistentPreRunE = nil
	return root
}

func TestRootCommandTree(t *testing.T) {
	root := NewRootCmd()

	want := []string{"init", "deinit", "plan", "verify", "history"}
	for _, name := range want {
		cmd, _, err := root.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Errorf("missing command %q", name)
		}
	}

	for _, sub := range []string{"create", "import", "list", "show", "run"} {
		cmd, _, err := root.Find([]string{"plan", sub})
		if err != nil || cmd.Name() != sub {
			t.Errorf("missing command plan %s", sub)
		}
	}

	if root.PersistentFlags().Lookup("config") == nil {
		t.Error("expected --config persistent flag")
	}
	if f := root.PersistentFlags().Lookup("verbose"); f == nil || f.Shorthand != "V" {
		t.Error("expected --verbose/-V persistent flag")
	}
}

func TestSetupLoadsConfigFromProjectRoot(t *testing.T) {
	root := testutil.InitProject(t)
	testutil.WriteFile(t, root, ".planfirst/config.yaml", "ai:\n  provider: openai\n  model: gpt-4o-mini\n")

	a := newApp()
	cmd, _, err := a.command().Find([]string{"plan", "list"})
	if err != nil {
		t.Fatal(err)
	}
	if err := a.setup(cmd, nil); err != nil {
		t.Fatalf("setup failed: %v", err)
	}
	defer a.teardown()

	if a.env.Config.AI.Provider != "openai" || a.env.Config.AI.Model != "gpt-4o-mini" {
		t.Errorf("config not loaded: %+v", a.env.Config.AI)
	}
	if a.env.Root != root {
		t.Errorf("root = %q, want %q", a.env.Root, root)
	}
}
