package views

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/pablasso/planfirst/internal/plan"
	"github.com/pablasso/planfirst/internal/tui/components"
	"github.com/pablasso/planfirst/internal/tui/msgs"
	"github.com/pablasso/planfirst/internal/tui/styles"
)

// MenuItem represents a menu option in the home view.
type MenuItem struct {
	Label       string
	Shortcut    string
	Description string
}

// MenuSection represents a group of related menu items.
type MenuSection struct {
	Title string
	Items []MenuItem
}

// HomeModel is the landing screen.
type HomeModel struct {
	sections    []MenuSection
	cursor      int
	initialized bool
	latest      *plan.Summary
	width       int
	height      int
	errorMsg    string
}

// NewHomeModel creates the home view for the project at root and looks up
// the most recent plan.
func NewHomeModel(root string) HomeModel {
	m := HomeModel{
		sections: []MenuSection{
			{
				Title: "Plans",
				Items: []MenuItem{
					{Label: "Browse Plans", Shortcut: "l", Description: "Inspect stored plans"},
					{Label: "Verify Latest", Shortcut: "v", Description: "Check the newest plan against the project"},
				},
			},
			{
				Items: []MenuItem{
					{Label: "Quit", Shortcut: "q"},
				},
			},
		},
	}

	if root == "" {
		return m
	}
	if _, err := os.Stat(filepath.Join(root, plan.Dir)); err != nil {
		return m
	}
	m.initialized = true

	summaries, err := plan.ListPlans(root)
	if err != nil {
		m.errorMsg = err.Error()
	} else if len(summaries) > 0 {
		m.latest = &summaries[0]
	}
	return m
}

// Init implements tea.Model.
func (m HomeModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m HomeModel) Update(msg tea.Msg) (HomeModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		if !m.initialized {
			if msg.String() == "q" || msg.String() == "ctrl+c" {
				return m, tea.Quit
			}
			return m, nil
		}

		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
			return m, nil
		case "down", "j":
			if m.cursor < m.totalMenuItems()-1 {
				m.cursor++
			}
			return m, nil
		case "enter":
			return m.choose(m.shortcutAtCursor())
		}
		return m.choose(msg.String())
	}
	return m, nil
}

func (m HomeModel) choose(shortcut string) (HomeModel, tea.Cmd) {
	switch shortcut {
	case "l":
		return m, func() tea.Msg { return msgs.GoToPlanListMsg{} }
	case "v":
		if m.latest == nil {
			m.errorMsg = "No plans yet. Create one with 'planfirst plan create'."
			return m, nil
		}
		folder := m.latest.Folder
		return m, func() tea.Msg { return msgs.VerifyPlanMsg{Folder: folder} }
	case "q":
		return m, tea.Quit
	}
	return m, nil
}

func (m HomeModel) totalMenuItems() int {
	total := 0
	for _, section := range m.sections {
		total += len(section.Items)
	}
	return total
}

func (m HomeModel) shortcutAtCursor() string {
	idx := 0
	for _, section := range m.sections {
		for _, item := range section.Items {
			if idx == m.cursor {
				return item.Shortcut
			}
			idx++
		}
	}
	return ""
}

// View implements tea.Model.
func (m HomeModel) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	var body []string
	if m.initialized {
		body = m.menuLines()
	} else {
		body = []string{
			styles.ErrorStyle.Render("No " + plan.Dir + "/ directory found."),
			styles.SubtleStyle.Render("Run 'planfirst init' first to initialize this project."),
		}
	}
	return m.frame(body)
}

func (m HomeModel) menuLines() []string {
	var lines []string
	cursorIdx := 0
	for i, section := range m.sections {
		if section.Title != "" {
			lines = append(lines, styles.SectionStyle.Render(section.Title))
		}
		for _, item := range section.Items {
			main := "[" + item.Shortcut + "] " + item.Label
			if cursorIdx == m.cursor {
				main = styles.SelectedStyle.Render(main)
			} else {
				main = styles.SubtleStyle.Render(main)
			}
			if item.Description != "" {
				main += "  " + styles.SubtleStyle.Render(item.Description)
			}
			lines = append(lines, main)
			cursorIdx++
		}
		if i < len(m.sections)-1 {
			lines = append(lines, "")
		}
	}

	if m.latest != nil {
		lines = append(lines, "", styles.SubtleStyle.Render(fmt.Sprintf("Latest: %s (%s, %d/%d phases)",
			m.latest.Title, m.latest.Status, m.latest.Completed, m.latest.PhaseCount)))
	}
	if m.errorMsg != "" {
		lines = append(lines, "", styles.ErrorStyle.Render(m.errorMsg))
	}
	return lines
}

// frame centers the header and body vertically above the status bar.
func (m HomeModel) frame(body []string) string {
	var b strings.Builder

	title := styles.TitleStyle.Render("P L A N F I R S T")
	tagline := styles.SubtleStyle.Render("Plan before you code, verify after")

	// title and its margin, tagline, spacing, body
	contentHeight := 4 + len(body)
	available := m.height - 1
	topPadding := max((available-contentHeight)/2, 0)

	b.WriteString(strings.Repeat("\n", topPadding))
	b.WriteString(lipgloss.PlaceHorizontal(m.width, lipgloss.Center, title))
	b.WriteString("\n")
	b.WriteString(lipgloss.PlaceHorizontal(m.width, lipgloss.Center, tagline))
	b.WriteString("\n\n")
	b.WriteString(lipgloss.PlaceHorizontal(m.width, lipgloss.Center, strings.Join(body, "\n")))
	b.WriteString(strings.Repeat("\n", max(available-topPadding-contentHeight, 0)+1))

	items := []string{"q Quit"}
	if m.initialized {
		items = []string{"↑↓ Navigate", "Enter Select", "q Quit"}
	}
	b.WriteString(components.NewStatusBar().Render(m.width, items))
	return b.String()
}

// SetSize updates the model dimensions.
func (m *HomeModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// Initialized reports whether the project has a .planfirst directory.
func (m HomeModel) Initialized() bool {
	return m.initialized
}

// Cursor returns the current cursor position.
func (m HomeModel) Cursor() int {
	return m.cursor
}

// SetError sets an error message shown under the menu.
func (m *HomeModel) SetError(msg string) {
	m.errorMsg = msg
}

// Error returns the current error message.
func (m HomeModel) Error() string {
	return m.errorMsg
}
