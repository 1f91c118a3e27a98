package views

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/pablasso/planfirst/internal/display"
	"github.com/pablasso/planfirst/internal/history"
	"github.com/pablasso/planfirst/internal/plan"
	"github.com/pablasso/planfirst/internal/report"
	"github.com/pablasso/planfirst/internal/tui/components"
	"github.com/pablasso/planfirst/internal/tui/msgs"
	"github.com/pablasso/planfirst/internal/tui/styles"
	"github.com/pablasso/planfirst/internal/verify"
)

// verifyChrome is the number of lines around the result: title, progress,
// a blank line and the status bar.
const verifyChrome = 4

const matchBarWidth = 10

// VerifyConfig is what a verification needs besides the plan.
type VerifyConfig struct {
	Root       string
	Fs         afero.Fs
	Logger     *zap.Logger
	Strict     bool
	SaveReport bool

	// History records finished runs when set.
	History *history.Store
}

type verifyProgressMsg struct {
	run   int
	done  int
	total int
	task  verify.TaskVerification
}

type verifyDoneMsg struct {
	run        int
	result     *verify.Result
	reportPath string
	elapsed    time.Duration
	err        error
}

// VerifyModel runs a verification in the background and shows its progress
// and result.
type VerifyModel struct {
	cfg    VerifyConfig
	folder string
	phase  int
	title  string

	run     int
	cancel  context.CancelFunc
	updates chan tea.Msg
	running bool

	done       int
	total      int
	tasks      []verify.TaskVerification
	result     *verify.Result
	reportPath string
	elapsed    time.Duration
	err        error

	viewport components.ScrollViewport
	width    int
	height   int
}

// NewVerifyModel prepares a verification of the plan in folder. Phase zero
// verifies every phase. Call Start to begin.
func NewVerifyModel(cfg VerifyConfig, folder string, phase int) VerifyModel {
	if cfg.Fs == nil {
		cfg.Fs = afero.NewOsFs()
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return VerifyModel{
		cfg:      cfg,
		folder:   folder,
		phase:    phase,
		title:    filepath.Base(folder),
		viewport: components.NewScrollViewport(0, 0),
	}
}

// Start launches a verification run and returns the command that delivers
// its progress.
func (m VerifyModel) Start() (VerifyModel, tea.Cmd) {
	m.run++
	m.running = true
	m.done, m.total = 0, 0
	m.tasks = nil
	m.result, m.reportPath, m.err = nil, "", nil

	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.updates = make(chan tea.Msg, 16)

	p, err := plan.LoadPlan(m.folder)
	if err != nil {
		m.updates <- verifyDoneMsg{run: m.run, err: err}
		close(m.updates)
	} else {
		m.title = p.Title
		go m.verify(ctx, p, m.run, m.updates)
	}
	m.refresh()
	return m, listen(m.updates)
}

// verify runs in its own goroutine. The channel is closed once the done
// message has been sent.
func (m VerifyModel) verify(ctx context.Context, p *plan.Plan, run int, updates chan<- tea.Msg) {
	defer close(updates)

	send := func(msg tea.Msg) {
		select {
		case updates <- msg:
		case <-ctx.Done():
		}
	}

	verifier := verify.New(m.cfg.Fs, m.cfg.Logger, verify.WithProgress(func(done, total int, tv verify.TaskVerification) {
		send(verifyProgressMsg{run: run, done: done, total: total, task: tv})
	}))

	start := time.Now()
	res, err := verifier.Verify(ctx, p, m.cfg.Root, verify.Options{Phase: m.phase, StrictMode: m.cfg.Strict})
	if err != nil {
		send(verifyDoneMsg{run: run, err: err})
		return
	}
	elapsed := time.Since(start)
	send(verifyDoneMsg{run: run, result: res, reportPath: m.persist(ctx, p, res, elapsed), elapsed: elapsed})
}

// persist writes res to the progress log, the report file and the history
// database. It returns the report path relative to the project root, or ""
// when no report was saved.
func (m VerifyModel) persist(ctx context.Context, p *plan.Plan, res *verify.Result, elapsed time.Duration) string {
	log := m.cfg.Logger

	progress := plan.NewProgressLogger(m.folder)
	if err := progress.VerificationCompleted(res.PhaseID, string(res.OverallStatus), res.Summary.TotalTasks, elapsed); err != nil {
		log.Warn("failed to write progress log", zap.Error(err))
	}

	if m.cfg.History != nil {
		if _, err := m.cfg.History.Record(ctx, res); err != nil {
			log.Warn("failed to record verification", zap.Error(err))
		}
	}

	if !m.cfg.SaveReport {
		return ""
	}
	path, err := report.Save(m.cfg.Fs, m.folder, res, p)
	if err != nil {
		log.Warn("failed to save report", zap.Error(err))
		return ""
	}
	if rel, err := filepath.Rel(m.cfg.Root, path); err == nil {
		path = rel
	}
	return path
}

func listen(updates <-chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-updates
		if !ok {
			return nil
		}
		return msg
	}
}

// Init implements tea.Model.
func (m VerifyModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m VerifyModel) Update(msg tea.Msg) (VerifyModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case verifyProgressMsg:
		if msg.run != m.run {
			return m, nil
		}
		m.done, m.total = msg.done, msg.total
		m.tasks = append(m.tasks, msg.task)
		m.refresh()
		return m, listen(m.updates)

	case verifyDoneMsg:
		if msg.run != m.run {
			return m, nil
		}
		m.running = false
		m.result, m.reportPath, m.elapsed, m.err = msg.result, msg.reportPath, msg.elapsed, msg.err
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.Stop()
			return m, tea.Quit
		case "esc", "q":
			m.Stop()
			folder := m.folder
			return m, func() tea.Msg { return msgs.OpenPlanMsg{Folder: folder} }
		case "r":
			if m.running {
				return m, nil
			}
			return m.Start()
		}
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}
	return m, nil
}

// Stop cancels a verification in progress.
func (m *VerifyModel) Stop() {
	if m.cancel != nil {
		m.cancel()
	}
	m.running = false
}

// refresh rebuilds the viewport content from the current state.
func (m *VerifyModel) refresh() {
	tasks := m.tasks
	if m.result != nil {
		tasks = m.result.TaskResults
	}

	var lines []string
	for _, tv := range tasks {
		icon := report.StatusStyle(tv.Status).Render(report.StatusIcon(tv.Status))
		bar := components.NewMatchBar(tv.MatchPercentage, matchBarWidth, report.StatusStyle(tv.Status)).View()
		lines = append(lines, fmt.Sprintf("%s %-8s %-40s %s", icon, tv.TaskID, truncateText(tv.File, 40), bar))
		for _, issue := range tv.Issues {
			tag := report.SeverityStyle(issue.Severity).Render("[" + strings.ToUpper(string(issue.Severity)) + "]")
			lines = append(lines, "    "+tag+" "+issue.Message)
		}
	}

	if m.result != nil && len(m.result.Recommendations) > 0 {
		lines = append(lines, "", styles.SectionStyle.Render("Recommendations"))
		for _, rec := range m.result.Recommendations {
			lines = append(lines, "  • "+rec)
		}
	}
	if m.reportPath != "" {
		lines = append(lines, "", styles.SubtleStyle.Render("Report saved to "+m.reportPath))
	}

	m.viewport.SetLines(lines)
	if m.running {
		m.viewport.EnsureVisible(len(lines) - 1)
	}
}

// View implements tea.Model.
func (m VerifyModel) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	scope := "all phases"
	if m.phase > 0 {
		scope = fmt.Sprintf("phase %d", m.phase)
	}

	var b strings.Builder
	b.WriteString(styles.TitleStyle.UnsetMarginBottom().Render("Verify " + m.title))
	b.WriteString(styles.SubtleStyle.Render("  (" + scope + ")"))
	b.WriteString("\n")
	b.WriteString(m.statusLine())
	b.WriteString("\n\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")

	items := []string{"↑↓ Scroll", "Esc Cancel"}
	if !m.running {
		items = []string{"↑↓ Scroll", "r Re-run", "Esc Back"}
	}
	b.WriteString(components.NewStatusBar().Render(m.width, items))
	return b.String()
}

func (m VerifyModel) statusLine() string {
	switch {
	case m.err != nil:
		return styles.ErrorStyle.Render("Verification could not run: " + m.err.Error())
	case m.result != nil:
		res := m.result
		s := res.Summary
		status := report.StatusStyle(res.OverallStatus).Bold(true).Render(strings.ToUpper(string(res.OverallStatus)))
		return fmt.Sprintf("%s  %d tasks: %d completed, %d partial, %d missing  %s",
			status, s.TotalTasks, s.TasksCompleted, s.TasksPartial, s.TasksMissing,
			styles.SubtleStyle.Render(display.FormatDuration(m.elapsed)))
	case m.total > 0:
		return components.NewProgress(m.done, m.total, 20).View() + styles.SubtleStyle.Render(fmt.Sprintf("  %d/%d tasks", m.done, m.total))
	default:
		return styles.SubtleStyle.Render("Verifying...")
	}
}

// SetSize updates the model dimensions.
func (m *VerifyModel) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.SetSize(width, max(height-verifyChrome, 1))
}

// Running reports whether a verification is in progress.
func (m VerifyModel) Running() bool {
	return m.running
}

// Result returns the finished result, or nil while running or after an error.
func (m VerifyModel) Result() *verify.Result {
	return m.result
}

// Err returns the error that stopped the last run.
func (m VerifyModel) Err() error {
	return m.err
}
