package components

import (
	"strings"

	"github.com/pablasso/planfirst/internal/tui/styles"
)

const statusSeparator = " • "

// StatusBar renders the bottom line of key hints.
type StatusBar struct{}

// NewStatusBar creates a new StatusBar instance.
func NewStatusBar() StatusBar {
	return StatusBar{}
}

// Render joins items with a separator and pads the bar to width. Items that
// do not fit are dropped from the end.
func (s StatusBar) Render(width int, items []string) string {
	content := strings.Join(items, statusSeparator)
	for len(items) > 1 && width > 0 && len([]rune(content)) > width {
		items = items[:len(items)-1]
		content = strings.Join(items, statusSeparator)
	}
	return styles.StatusBarStyle.Width(width).Render(content)
}
