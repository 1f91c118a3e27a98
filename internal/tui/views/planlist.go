package views

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/pablasso/planfirst/internal/plan"
	"github.com/pablasso/planfirst/internal/tui/components"
	"github.com/pablasso/planfirst/internal/tui/msgs"
	"github.com/pablasso/planfirst/internal/tui/styles"
)

// PlanEntry is a listed plan plus whether a `plan run` currently holds it.
type PlanEntry struct {
	plan.Summary
	Running bool
}

// PlanListModel lists the stored plans, newest first.
type PlanListModel struct {
	plans   []PlanEntry
	cursor  int
	width   int
	height  int
	loadErr string
	errMsg  string
}

// NewPlanListModel loads the plans of the project at root.
func NewPlanListModel(root string) PlanListModel {
	var m PlanListModel

	summaries, err := plan.ListPlans(root)
	if err != nil {
		m.loadErr = err.Error()
		return m
	}
	for _, s := range summaries {
		running, err := plan.NewPlanLock(s.Folder).IsLocked()
		m.plans = append(m.plans, PlanEntry{Summary: s, Running: err == nil && running})
	}
	return m
}

// Init implements tea.Model.
func (m PlanListModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m PlanListModel) Update(msg tea.Msg) (PlanListModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc", "q":
			return m, func() tea.Msg { return msgs.GoToHomeMsg{} }
		case "ctrl+c":
			return m, tea.Quit
		}
		if len(m.plans) == 0 {
			return m, nil
		}

		switch msg.String() {
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
			m.errMsg = ""
		case "down", "j":
			if m.cursor < len(m.plans)-1 {
				m.cursor++
			}
			m.errMsg = ""
		case "enter":
			folder := m.plans[m.cursor].Folder
			return m, func() tea.Msg { return msgs.OpenPlanMsg{Folder: folder} }
		case "v":
			selected := m.plans[m.cursor]
			if selected.Running {
				m.errMsg = "Plan is being executed. Verify it once the run finishes."
				return m, nil
			}
			return m, func() tea.Msg { return msgs.VerifyPlanMsg{Folder: selected.Folder} }
		}
	}
	return m, nil
}

// View implements tea.Model.
func (m PlanListModel) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	var lines []string
	switch {
	case m.loadErr != "":
		lines = []string{styles.ErrorStyle.Render(m.loadErr)}
	case len(m.plans) == 0:
		lines = []string{
			styles.SubtleStyle.Render("No plans yet."),
			styles.SubtleStyle.Render("Create one with 'planfirst plan create \"<request>\"'."),
		}
	default:
		for i, p := range m.plans {
			lines = append(lines, m.formatPlanLine(i, p))
		}
		if m.errMsg != "" {
			lines = append(lines, "", styles.ErrorStyle.Render(m.errMsg))
		}
	}

	var b strings.Builder
	title := styles.TitleStyle.Render("Plans")

	contentHeight := 2 + len(lines)
	available := m.height - 1
	topPadding := max((available-contentHeight)/3, 0)

	b.WriteString(strings.Repeat("\n", topPadding))
	b.WriteString(lipgloss.PlaceHorizontal(m.width, lipgloss.Center, title))
	b.WriteString("\n\n")
	b.WriteString(lipgloss.PlaceHorizontal(m.width, lipgloss.Center, strings.Join(lines, "\n")))
	b.WriteString(strings.Repeat("\n", max(available-topPadding-contentHeight, 0)))

	items := []string{"Esc Back"}
	if len(m.plans) > 0 {
		items = []string{"↑↓ Navigate", "Enter Open", "v Verify", "Esc Back"}
	}
	b.WriteString(components.NewStatusBar().Render(m.width, items))
	return b.String()
}

func (m PlanListModel) formatPlanLine(i int, p PlanEntry) string {
	indicator := "  "
	if i == m.cursor {
		indicator = "> "
	}

	status := string(p.Status)
	if p.Running {
		status = "running"
	}
	line := fmt.Sprintf("%s%-8s %-36s %-12s %d/%d phases, %d tasks",
		indicator, p.ID, truncateText(p.Title, 36), status, p.Completed, p.PhaseCount, p.TaskCount)

	if i == m.cursor {
		return styles.SelectedStyle.Render(line)
	}
	if p.Status == plan.StatusVerified {
		return styles.SuccessStyle.Render(line)
	}
	return styles.SubtleStyle.Render(line)
}

// truncateText shortens s to n runes, marking the cut with an ellipsis.
func truncateText(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}

// SetSize updates the model dimensions.
func (m *PlanListModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// Plans returns the loaded plans.
func (m PlanListModel) Plans() []PlanEntry {
	return m.plans
}

// Cursor returns the current cursor position.
func (m PlanListModel) Cursor() int {
	return m.cursor
}
