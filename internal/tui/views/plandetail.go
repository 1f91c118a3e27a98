package views

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/pablasso/planfirst/internal/plan"
	"github.com/pablasso/planfirst/internal/tui/components"
	"github.com/pablasso/planfirst/internal/tui/msgs"
	"github.com/pablasso/planfirst/internal/tui/styles"
)

// detailChrome is the number of lines around the outline: title, meta,
// a blank line and the status bar.
const detailChrome = 4

// PlanDetailModel shows the outline of one plan.
type PlanDetailModel struct {
	folder   string
	plan     *plan.Plan
	loadErr  string
	errMsg   string
	viewport components.ScrollViewport
	width    int
	height   int
}

// NewPlanDetailModel loads the plan stored in folder.
func NewPlanDetailModel(folder string) PlanDetailModel {
	m := PlanDetailModel{
		folder:   folder,
		viewport: components.NewScrollViewport(0, 0),
	}
	p, err := plan.LoadPlan(folder)
	if err != nil {
		m.loadErr = err.Error()
		return m
	}
	m.plan = p
	m.viewport.SetLines(outlineLines(p))
	return m
}

// outlineLines renders phases and tasks, one line each.
func outlineLines(p *plan.Plan) []string {
	var lines []string
	for _, ph := range p.Phases {
		marker := "○"
		style := styles.SubtleStyle
		switch ph.Status {
		case plan.PhaseStatusCompleted:
			marker, style = "✓", styles.SuccessStyle
		case plan.PhaseStatusInProgress:
			marker, style = "◐", styles.WarningStyle
		case plan.PhaseStatusFailed:
			marker, style = "✗", styles.ErrorStyle
		}
		heading := fmt.Sprintf("%s %d. %s", marker, ph.Order, ph.Name)
		if len(ph.Dependencies) > 0 {
			heading += styles.SubtleStyle.Render("  after " + strings.Join(ph.Dependencies, ", "))
		}
		lines = append(lines, style.Bold(true).Render(heading))
		for _, t := range ph.Tasks {
			lines = append(lines, fmt.Sprintf("    %-8s %-7s %s", t.ID, t.Type, t.File))
			if t.Description != "" {
				lines = append(lines, styles.SubtleStyle.Render("             "+t.Description))
			}
		}
		lines = append(lines, "")
	}
	return lines
}

// Init implements tea.Model.
func (m PlanDetailModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m PlanDetailModel) Update(msg tea.Msg) (PlanDetailModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		key := msg.String()
		switch key {
		case "esc", "q":
			return m, func() tea.Msg { return msgs.GoToPlanListMsg{} }
		case "ctrl+c":
			return m, tea.Quit
		}
		if m.plan == nil {
			return m, nil
		}

		if key == "v" {
			folder := m.folder
			return m, func() tea.Msg { return msgs.VerifyPlanMsg{Folder: folder} }
		}
		if n, err := strconv.Atoi(key); err == nil && n >= 1 && n <= 9 {
			if n > len(m.plan.Phases) {
				m.errMsg = fmt.Sprintf("Plan has %d phases", len(m.plan.Phases))
				return m, nil
			}
			folder := m.folder
			return m, func() tea.Msg { return msgs.VerifyPlanMsg{Folder: folder, Phase: n} }
		}

		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View implements tea.Model.
func (m PlanDetailModel) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	var b strings.Builder
	if m.plan == nil {
		b.WriteString(styles.ErrorStyle.Render(m.loadErr))
		b.WriteString(strings.Repeat("\n", max(m.height-1, 0)))
		b.WriteString(components.NewStatusBar().Render(m.width, []string{"Esc Back"}))
		return b.String()
	}

	p := m.plan
	b.WriteString(styles.TitleStyle.UnsetMarginBottom().Render(p.Title))
	b.WriteString("\n")
	meta := fmt.Sprintf("%s  %s  %s complexity  %s", p.ID, p.Status, p.Metadata.Complexity, p.Metadata.EstimatedTime)
	if m.errMsg != "" {
		meta += "  " + styles.ErrorStyle.Render(m.errMsg)
	}
	b.WriteString(styles.SubtleStyle.Render(meta))
	b.WriteString("\n\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")

	items := []string{"↑↓ Scroll", "v Verify all", "1-9 Verify phase", "Esc Back"}
	b.WriteString(components.NewStatusBar().Render(m.width, items))
	return b.String()
}

// SetSize updates the model dimensions.
func (m *PlanDetailModel) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.SetSize(width, max(height-detailChrome, 1))
}

// Plan returns the loaded plan, or nil when it failed to load.
func (m PlanDetailModel) Plan() *plan.Plan {
	return m.plan
}
