package components

import (
	"fmt"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

func TestRenderScrollbar(t *testing.T) {
	t.Run("zero height", func(t *testing.T) {
		if got := RenderScrollbar(0, 100, 0); got != "" {
			t.Errorf("expected empty string, got %q", got)
		}
	})

	t.Run("content fits renders blank gutter", func(t *testing.T) {
		for _, content := range []int{5, 10} {
			lines := strings.Split(RenderScrollbar(10, content, 0), "\n")
			if len(lines) != 10 {
				t.Fatalf("expected 10 lines, got %d", len(lines))
			}
			for i, line := range lines {
				if line != " " {
					t.Errorf("content %d line %d: expected blank gutter, got %q", content, i, line)
				}
			}
		}
	})

	tests := []struct {
		name     string
		yOffset  int
		thumbRow int
	}{
		{"thumb at top", 0, 0},
		{"thumb at bottom", 90, 9},
		{"offset past end is clamped", 500, 9},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lines := strings.Split(RenderScrollbar(10, 100, tt.yOffset), "\n")
			if len(lines) != 10 {
				t.Fatalf("expected 10 lines, got %d", len(lines))
			}
			for i, line := range lines {
				want := scrollTrack
				if i == tt.thumbRow {
					want = scrollThumb
				}
				if line != want {
					t.Errorf("line %d: got %q, want %q", i, line, want)
				}
			}
		})
	}
}

func TestProgress_View(t *testing.T) {
	tests := []struct {
		name       string
		p          Progress
		wantPrefix string
		wantSuffix string
	}{
		{"zero percent", NewProgress(0, 10, 8), "□□□□□□□□", "0%"},
		{"fifty percent", NewProgress(5, 10, 8), "■■■■□□□□", "50%"},
		{"hundred percent", NewProgress(10, 10, 8), "■■■■■■■■", "100%"},
		{"over total is clamped", NewProgress(15, 10, 4), "■■■■", "100%"},
		{"match bar", NewMatchBar(80, 10, lipgloss.NewStyle()), "■■■■■■■■□□", "80%"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.p.View()
			if !strings.HasPrefix(got, tt.wantPrefix) || !strings.HasSuffix(got, tt.wantSuffix) {
				t.Errorf("got %q, want %s...%s", got, tt.wantPrefix, tt.wantSuffix)
			}
		})
	}

	for _, p := range []Progress{NewProgress(5, 0, 8), NewProgress(5, 10, 0)} {
		if got := p.View(); got != "" {
			t.Errorf("expected empty string for %+v, got %q", p, got)
		}
	}
}

func TestStatusBar_Render(t *testing.T) {
	sb := NewStatusBar()

	got := sb.Render(60, []string{"↑↓ Navigate", "Enter Select", "q Quit"})
	for _, want := range []string{"↑↓ Navigate", "Enter Select", "q Quit", statusSeparator} {
		if !strings.Contains(got, want) {
			t.Errorf("expected %q in %q", want, got)
		}
	}

	narrow := sb.Render(20, []string{"↑↓ Navigate", "Enter Select", "q Quit"})
	if strings.Contains(narrow, "q Quit") {
		t.Errorf("items that do not fit should be dropped, got %q", narrow)
	}
	if !strings.Contains(narrow, "↑↓ Navigate") {
		t.Errorf("first item should always be kept, got %q", narrow)
	}
}

func numberedLines(n int) []string {
	lines := make([]string, n)
	for i := range lines {
		lines[i] = fmt.Sprintf("line %d", i)
	}
	return lines
}

func TestScrollViewport(t *testing.T) {
	t.Run("view has height rows and fixed width", func(t *testing.T) {
		sv := NewScrollViewport(20, 5)
		sv.SetLines(numberedLines(3))

		rows := strings.Split(sv.View(), "\n")
		if len(rows) != 5 {
			t.Fatalf("expected 5 rows, got %d", len(rows))
		}
		for i, row := range rows {
			if w := lipgloss.Width(row); w != 20 {
				t.Errorf("row %d: width %d, want 20", i, w)
			}
		}
		if !strings.HasPrefix(rows[0], "line 0") {
			t.Errorf("expected content from the top, got %q", rows[0])
		}
	})

	t.Run("scrolls with keys", func(t *testing.T) {
		sv := NewScrollViewport(20, 5)
		sv.SetLines(numberedLines(50))

		sv, _ = sv.Update(tea.KeyMsg{Type: tea.KeyDown})
		if sv.YOffset() != 1 {
			t.Errorf("expected offset 1 after down, got %d", sv.YOffset())
		}
		sv, _ = sv.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("G")})
		if !sv.AtBottom() {
			t.Error("expected G to jump to bottom")
		}
		sv, _ = sv.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("g")})
		if sv.YOffset() != 0 {
			t.Errorf("expected g to jump to top, got offset %d", sv.YOffset())
		}
	})

	t.Run("ensure visible scrolls minimally", func(t *testing.T) {
		sv := NewScrollViewport(20, 5)
		sv.SetLines(numberedLines(50))

		sv.EnsureVisible(12)
		if sv.YOffset() != 8 {
			t.Errorf("expected offset 8, got %d", sv.YOffset())
		}
		sv.EnsureVisible(10)
		if sv.YOffset() != 8 {
			t.Errorf("visible line should not scroll, got offset %d", sv.YOffset())
		}
		sv.EnsureVisible(2)
		if sv.YOffset() != 2 {
			t.Errorf("expected offset 2, got %d", sv.YOffset())
		}
	})

	t.Run("resize keeps content", func(t *testing.T) {
		sv := NewScrollViewport(20, 5)
		sv.SetLines(numberedLines(3))
		sv.SetSize(30, 2)

		if sv.ContentWidth() != 29 {
			t.Errorf("expected content width 29, got %d", sv.ContentWidth())
		}
		rows := strings.Split(sv.View(), "\n")
		if len(rows) != 2 {
			t.Errorf("expected 2 rows, got %d", len(rows))
		}
	})
}
