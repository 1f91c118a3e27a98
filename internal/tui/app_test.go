package tui

import (
	"os"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/pablasso/planfirst/internal/plan"
	"github.com/pablasso/planfirst/internal/tui/msgs"
)

func TestModel_Navigation(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(plan.PlansPath(root), 0755); err != nil {
		t.Fatalf("failed to create plans dir: %v", err)
	}

	m := New(Options{Root: root})
	defer m.Close()
	if m.history == nil {
		t.Error("expected history to open for an initialized project")
	}
	if _, err := os.Stat(filepath.Join(root, plan.Dir, "history.db")); err != nil {
		t.Errorf("expected history database: %v", err)
	}

	m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	if m.View() == "" {
		t.Error("expected home view to render")
	}

	m.Update(msgs.GoToPlanListMsg{})
	if m.CurrentView() != ViewPlanList {
		t.Fatalf("expected plan list view, got %d", m.CurrentView())
	}

	folder := filepath.Join(plan.PlansPath(root), "missing")
	m.Update(msgs.OpenPlanMsg{Folder: folder})
	if m.CurrentView() != ViewPlanDetail {
		t.Fatalf("expected plan detail view, got %d", m.CurrentView())
	}

	_, cmd := m.Update(msgs.VerifyPlanMsg{Folder: folder})
	if m.CurrentView() != ViewVerify {
		t.Fatalf("expected verify view, got %d", m.CurrentView())
	}
	if cmd == nil {
		t.Fatal("expected verification command")
	}
	m.Update(cmd())
	if m.verify.Running() || m.verify.Err() == nil {
		t.Error("expected verification of a missing plan to stop with an error")
	}

	m.Update(msgs.GoToHomeMsg{})
	if m.CurrentView() != ViewHome {
		t.Errorf("expected home view, got %d", m.CurrentView())
	}
}

func TestModel_Uninitialized(t *testing.T) {
	m := New(Options{Root: t.TempDir()})
	defer m.Close()

	if m.history != nil {
		t.Error("history should not open without .planfirst")
	}
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected quit")
	}
}
