// Package tui implements the interactive terminal UI started by running
// planfirst without a subcommand.
package tui

import (
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/pablasso/planfirst/internal/config"
	"github.com/pablasso/planfirst/internal/history"
	"github.com/pablasso/planfirst/internal/plan"
	"github.com/pablasso/planfirst/internal/tui/msgs"
	"github.com/pablasso/planfirst/internal/tui/views"
)

// View represents the different screens in the TUI.
type View int

const (
	ViewHome View = iota
	ViewPlanList
	ViewPlanDetail
	ViewVerify
)

// Model is the main Bubble Tea model that switches between views.
type Model struct {
	opts        Options
	currentView View
	width       int
	height      int

	home   views.HomeModel
	list   views.PlanListModel
	detail views.PlanDetailModel
	verify views.VerifyModel

	history *history.Store
}

// Run starts the TUI and blocks until the user quits.
func Run(opts Options) error {
	m := New(opts)
	defer m.Close()

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err := p.Run()
	return err
}

// New creates the root model. Call Close when done with it.
func New(opts Options) *Model {
	if opts.Config == nil {
		opts.Config = config.Default()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	m := &Model{
		opts:        opts,
		currentView: ViewHome,
		home:        views.NewHomeModel(opts.Root),
	}
	if m.home.Initialized() {
		store, err := history.Open(filepath.Join(opts.Root, plan.Dir), opts.Logger)
		if err != nil {
			opts.Logger.Warn("verification history unavailable", zap.Error(err))
		} else {
			m.history = store
		}
	}
	return m
}

// Close releases the history database.
func (m *Model) Close() {
	m.verify.Stop()
	if m.history != nil {
		if err := m.history.Close(); err != nil {
			m.opts.Logger.Warn("failed to close history", zap.Error(err))
		}
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.home.SetSize(msg.Width, msg.Height)
		m.list.SetSize(msg.Width, msg.Height)
		m.detail.SetSize(msg.Width, msg.Height)
		m.verify.SetSize(msg.Width, msg.Height)
		return m, nil

	case msgs.GoToHomeMsg:
		m.home = views.NewHomeModel(m.opts.Root)
		m.home.SetSize(m.width, m.height)
		m.currentView = ViewHome
		return m, nil

	case msgs.GoToPlanListMsg:
		m.list = views.NewPlanListModel(m.opts.Root)
		m.list.SetSize(m.width, m.height)
		m.currentView = ViewPlanList
		return m, nil

	case msgs.OpenPlanMsg:
		m.detail = views.NewPlanDetailModel(msg.Folder)
		m.detail.SetSize(m.width, m.height)
		m.currentView = ViewPlanDetail
		return m, nil

	case msgs.VerifyPlanMsg:
		m.opts.Logger.Debug("verification started from tui",
			zap.String("folder", filepath.Base(msg.Folder)),
			zap.Int("phase", msg.Phase),
		)
		m.verify.Stop()
		m.verify = views.NewVerifyModel(m.verifyConfig(), msg.Folder, msg.Phase)
		m.verify.SetSize(m.width, m.height)
		m.currentView = ViewVerify
		var cmd tea.Cmd
		m.verify, cmd = m.verify.Start()
		return m, cmd
	}

	var cmd tea.Cmd
	switch m.currentView {
	case ViewHome:
		m.home, cmd = m.home.Update(msg)
	case ViewPlanList:
		m.list, cmd = m.list.Update(msg)
	case ViewPlanDetail:
		m.detail, cmd = m.detail.Update(msg)
	case ViewVerify:
		m.verify, cmd = m.verify.Update(msg)
	}
	return m, cmd
}

func (m *Model) verifyConfig() views.VerifyConfig {
	return views.VerifyConfig{
		Root:       m.opts.Root,
		Fs:         afero.NewOsFs(),
		Logger:     m.opts.Logger,
		Strict:     m.opts.Config.Verification.StrictMode,
		SaveReport: m.opts.Config.Verification.SaveReport,
		History:    m.history,
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	switch m.currentView {
	case ViewPlanList:
		return m.list.View()
	case ViewPlanDetail:
		return m.detail.View()
	case ViewVerify:
		return m.verify.View()
	default:
		return m.home.View()
	}
}

// CurrentView returns the active screen.
func (m *Model) CurrentView() View {
	return m.currentView
}
