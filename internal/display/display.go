// Package display draws a single, self-updating status line on a terminal
// while planfirst verifies or runs a plan.
package display

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"golang.org/x/term"
)

// Status represents the current activity.
type Status int

const (
	StatusIdle Status = iota
	StatusRunning
	StatusVerifying
	StatusCompleted
	StatusFailed
	StatusCancelled
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "Idle"
	case StatusRunning:
		return "Running"
	case StatusVerifying:
		return "Verifying"
	case StatusCompleted:
		return "Completed"
	case StatusFailed:
		return "Failed"
	case StatusCancelled:
		return "Cancelled"
	default:
		return "Unknown"
	}
}

const maxTitleLen = 40

// State holds the current display state.
type State struct {
	Label       string // "Phase" or "Task"
	Step        int
	Total       int
	Title       string
	Attempt     int
	MaxAttempts int // zero hides the attempt counter
	Status      Status
	StartTime   time.Time
}

// Display manages the terminal status line.
type Display struct {
	mu       sync.Mutex
	writer   io.Writer
	state    State
	ticker   *time.Ticker
	done     chan struct{}
	wg       sync.WaitGroup // Ensures goroutine exits before Stop() returns
	active   bool
	lastLine string
}

// New creates a new Display writing to the given writer.
func New(w io.Writer) *Display {
	return &Display{
		writer: w,
		done:   make(chan struct{}),
	}
}

// IsTerminal reports whether f is attached to a terminal. Callers skip the
// status line when output is piped.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// Start begins the display update loop.
func (d *Display) Start() {
	d.mu.Lock()
	if d.active {
		d.mu.Unlock()
		return
	}
	d.active = true
	d.state.StartTime = time.Now()
	d.ticker = time.NewTicker(time.Second)
	d.wg.Add(1)
	d.mu.Unlock()

	go d.updateLoop()
}

// Stop halts the display update loop and clears the status line.
// Blocks until the update goroutine has exited.
func (d *Display) Stop() {
	d.mu.Lock()
	if !d.active {
		d.mu.Unlock()
		return
	}
	d.active = false
	d.mu.Unlock()

	d.ticker.Stop()
	close(d.done)
	d.wg.Wait()
	d.clearLine()
}

// UpdateStep sets what is being worked on, e.g. ("Phase", 2, 4, "Wire up").
func (d *Display) UpdateStep(label string, step, total int, title string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.state.Label = label
	d.state.Step = step
	d.state.Total = total
	d.state.Title = title
}

// UpdateAttempt updates the current attempt number.
func (d *Display) UpdateAttempt(attempt, maxAttempts int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.state.Attempt = attempt
	d.state.MaxAttempts = maxAttempts
}

// UpdateStatus updates the activity status.
func (d *Display) UpdateStatus(status Status) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.state.Status = status
}

func (d *Display) updateLoop() {
	defer d.wg.Done()
	d.render()
	for {
		select {
		case <-d.ticker.C:
			d.render()
		case <-d.done:
			return
		}
	}
}

func (d *Display) render() {
	d.mu.Lock()
	state := d.state
	lastLine := d.lastLine
	d.mu.Unlock()

	line := formatLine(state, time.Since(state.StartTime))

	// Only update if changed (reduces flicker)
	if line == lastLine {
		return
	}

	d.mu.Lock()
	d.lastLine = line
	d.mu.Unlock()

	fmt.Fprintf(d.writer, "\r\033[K%s", line)
}

func formatLine(state State, elapsed time.Duration) string {
	if state.Total == 0 {
		return ""
	}

	title := []rune(state.Title)
	if len(title) > maxTitleLen {
		title = append(title[:maxTitleLen-3], []rune("...")...)
	}

	line := fmt.Sprintf("%s %d/%d: %s", state.Label, state.Step, state.Total, string(title))
	if state.MaxAttempts > 0 {
		line += fmt.Sprintf(" │ Attempt %d/%d", state.Attempt, state.MaxAttempts)
	}
	return line + fmt.Sprintf(" │ ⏱ %s │ %s", FormatDuration(elapsed), state.Status)
}

func (d *Display) clearLine() {
	fmt.Fprintf(d.writer, "\r\033[K")
}

// PrintAbove prints a message above the status line.
func (d *Display) PrintAbove(format string, args ...any) {
	d.mu.Lock()
	d.lastLine = ""
	d.mu.Unlock()

	d.clearLine()
	fmt.Fprintf(d.writer, format+"\n", args...)
	d.render()
}

// FormatDuration formats a duration as HH:MM:SS or MM:SS.
func FormatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}
