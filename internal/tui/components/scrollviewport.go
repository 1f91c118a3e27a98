package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ScrollViewport wraps bubbles/viewport.Model with a scrollbar column. It
// shows fixed documents (a plan outline, a verification result) from the
// top.
type ScrollViewport struct {
	viewport viewport.Model
	lines    []string
	width    int // total width including scrollbar
	height   int
}

// NewScrollViewport creates a viewport. One column of width is reserved for
// the scrollbar.
func NewScrollViewport(width, height int) ScrollViewport {
	vp := viewport.New(max(width-1, 0), height)
	vp.SetContent("")
	return ScrollViewport{
		viewport: vp,
		width:    width,
		height:   height,
	}
}

// SetSize updates the viewport dimensions. Width includes the scrollbar column.
func (s *ScrollViewport) SetSize(width, height int) {
	if s.width == width && s.height == height {
		return
	}
	s.width = width
	s.height = height
	s.viewport.Width = max(width-1, 0)
	s.viewport.Height = height

	// re-set content so the viewport recalculates its bounds
	s.viewport.SetContent(strings.Join(s.lines, "\n"))
	s.viewport.SetYOffset(s.viewport.YOffset)
}

// SetLines replaces the content, keeping the scroll position when it is
// still in range.
func (s *ScrollViewport) SetLines(lines []string) {
	s.lines = append([]string(nil), lines...)
	s.viewport.SetContent(strings.Join(s.lines, "\n"))
	s.viewport.SetYOffset(s.viewport.YOffset)
}

// Update handles viewport key and mouse events.
func (s ScrollViewport) Update(msg tea.Msg) (ScrollViewport, tea.Cmd) {
	var cmd tea.Cmd
	s.viewport, cmd = s.viewport.Update(msg)

	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "home", "g":
			s.viewport.GotoTop()
		case "end", "G":
			s.viewport.GotoBottom()
		}
	}
	return s, cmd
}

// View renders the content with a 1-column scrollbar on the right.
func (s ScrollViewport) View() string {
	contentLines := strings.Split(s.viewport.View(), "\n")
	scrollbarLines := strings.Split(RenderScrollbar(s.height, len(s.lines), s.viewport.YOffset), "\n")
	contentWidth := max(s.width-1, 0)

	var b strings.Builder
	for i := 0; i < s.height; i++ {
		if i > 0 {
			b.WriteByte('\n')
		}
		cl, sl := "", ""
		if i < len(contentLines) {
			cl = contentLines[i]
		}
		if i < len(scrollbarLines) {
			sl = scrollbarLines[i]
		}

		b.WriteString(cl)
		// pad by display width so styled lines keep the scrollbar aligned
		if pad := contentWidth - lipgloss.Width(cl); pad > 0 {
			b.WriteString(strings.Repeat(" ", pad))
		}
		b.WriteString(sl)
	}
	return b.String()
}

// YOffset returns the index of the first visible line.
func (s ScrollViewport) YOffset() int {
	return s.viewport.YOffset
}

// AtBottom returns true if the viewport is scrolled to the bottom.
func (s ScrollViewport) AtBottom() bool {
	return s.viewport.AtBottom()
}

// ContentWidth returns the width available for content.
func (s ScrollViewport) ContentWidth() int {
	return max(s.width-1, 0)
}

// EnsureVisible scrolls the minimum amount needed for lineIndex to be visible.
func (s *ScrollViewport) EnsureVisible(lineIndex int) {
	if lineIndex < 0 || lineIndex >= len(s.lines) {
		return
	}
	top := s.viewport.YOffset
	bottom := top + s.height - 1
	switch {
	case lineIndex < top:
		s.viewport.SetYOffset(lineIndex)
	case lineIndex > bottom:
		s.viewport.SetYOffset(lineIndex - s.height + 1)
	}
}
