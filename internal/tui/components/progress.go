package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const (
	filledChar = "■"
	emptyChar  = "□"
)

// Progress renders a bar like ■■■■□□□□ 50%. It draws both the verification
// progress (tasks done out of total) and per-task match percentages.
type Progress struct {
	Current int
	Total   int
	Width   int // character width of the bar portion

	// Style colors the filled portion.
	Style lipgloss.Style
}

// NewProgress creates a new Progress instance.
func NewProgress(current, total, width int) Progress {
	return Progress{
		Current: current,
		Total:   total,
		Width:   width,
		Style:   lipgloss.NewStyle(),
	}
}

// NewMatchBar creates a bar for a 0-100 match percentage.
func NewMatchBar(percent, width int, style lipgloss.Style) Progress {
	return Progress{Current: percent, Total: 100, Width: width, Style: style}
}

// View returns the rendered progress bar string.
func (p Progress) View() string {
	if p.Total <= 0 || p.Width <= 0 {
		return ""
	}

	current := min(max(p.Current, 0), p.Total)
	percent := current * 100 / p.Total
	filled := current * p.Width / p.Total

	bar := p.Style.Render(strings.Repeat(filledChar, filled)) + strings.Repeat(emptyChar, p.Width-filled)
	return fmt.Sprintf("%s %3d%%", bar, percent)
}
