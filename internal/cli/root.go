// Package cli wires the planfirst cobra commands.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	plancmd "github.com/pablasso/planfirst/internal/cli/plan"
	"github.com/pablasso/planfirst/internal/config"
	"github.com/pablasso/planfirst/internal/logging"
	"github.com/pablasso/planfirst/internal/plan"
	"github.com/pablasso/planfirst/internal/telemetry"
	"github.com/pablasso/planfirst/internal/tui"
	"github.com/pablasso/planfirst/internal/version"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const tuiLogFile = "planfirst.log"

// app holds per-invocation state shared by the root command's hooks.
type app struct {
	v          *viper.Viper
	env        *plancmd.Env
	configFile string
	shutdown   telemetry.ShutdownFunc
	closeLog   func() error
}

func newApp() *app {
	return &app{
		v:   viper.New(),
		env: plancmd.NewEnv(""),
	}
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	return newApp().command()
}

func (a *app) command() *cobra.Command {
	root := &cobra.Command{
		Use:   "planfirst",
		Short: "Plan features before building them, then verify the result",
		Long: `planfirst drafts a phased implementation plan for a feature request, hands
the phases to a coding agent, and verifies the project files against the plan.
Run without arguments to browse plans interactively.`,
		Version:           fmt.Sprintf("%s (%s, %s)", version.Version, version.CommitSHA, version.BuildDate),
		Args:              cobra.NoArgs,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		RunE:              a.runTUI,
	}

	root.PersistentFlags().StringVar(&a.configFile, "config", "", "Config file (default .planfirst/config.yaml)")
	root.PersistentFlags().BoolP("verbose", "V", false, "Log debug output to stderr")
	_ = a.v.BindPFlag("verbose", root.PersistentFlags().Lookup("verbose"))

	root.AddCommand(
		newInitCmd(a.env),
		newDeinitCmd(a.env),
		plancmd.NewCmd(a.env),
		newVerifyCmd(a.env),
		newHistoryCmd(a.env),
	)
	return root
}

// Execute runs the root command and prints any error except a failed
// verification, whose summary has already been shown.
func Execute() error {
	a := newApp()
	err := a.command().Execute()
	a.teardown()
	if err != nil && !errors.Is(err, ErrVerificationFailed) {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	return err
}

// setup resolves the project root, loads configuration and builds the
// logger. The root is the nearest directory with .planfirst, else the
// working directory.
func (a *app) setup(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return err
	}
	root, err := plancmd.FindRoot(cwd)
	if err != nil {
		root = cwd
	}

	cfg, err := config.Load(a.v, root, a.configFile)
	if err != nil {
		return err
	}
	if a.v.GetBool("verbose") {
		cfg.Logging.Level = "debug"
	}

	logger, err := a.newLogger(cmd, root, cfg.Logging)
	if err != nil {
		return err
	}

	shutdown, err := telemetry.Init(cmd.Context(), telemetry.Config{
		Enabled:  cfg.Telemetry.Enabled,
		Endpoint: cfg.Telemetry.Endpoint,
	})
	if err != nil {
		logger.Warn("telemetry disabled", zap.Error(err))
	} else {
		a.shutdown = shutdown
	}

	a.env.Root = root
	a.env.Config = cfg
	a.env.Logger = logger
	logger.Debug("invocation",
		zap.String("command", cmd.CommandPath()),
		zap.String("root", root),
		zap.String("provider", cfg.AI.Provider))
	return nil
}

// newLogger logs to stderr, except for the TUI, which owns the terminal and
// logs to .planfirst/planfirst.log when the project is initialized.
func (a *app) newLogger(cmd *cobra.Command, root string, cfg config.LoggingConfig) (*zap.Logger, error) {
	lc := logging.Config{Level: cfg.Level, Format: cfg.Format}
	if cmd.HasParent() {
		return logging.New(lc, os.Stderr)
	}

	dir := filepath.Join(root, plan.Dir)
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return logging.NewNop(), nil
	}
	f, err := os.OpenFile(filepath.Join(dir, tuiLogFile), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return logging.NewNop(), nil
	}
	a.closeLog = f.Close
	lc.Format = "json"
	return logging.New(lc, f)
}

// teardown flushes the logger and exporters. It runs after every
// invocation, including failed ones.
func (a *app) teardown() {
	_ = a.env.Logger.Sync()
	if a.shutdown != nil {
		if err := a.shutdown(context.Background()); err != nil {
			a.env.Logger.Warn("telemetry shutdown failed", zap.Error(err))
		}
	}
	if a.closeLog != nil {
		_ = a.closeLog()
	}
}

func (a *app) runTUI(cmd *cobra.Command, args []string) error {
	return tui.Run(tui.Options{
		Root:   a.env.Root,
		Config: a.env.Config,
		Logger: a.env.Logger,
	})
}
