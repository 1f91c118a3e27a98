package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	plancmd "github.com/pablasso/planfirst/internal/cli/plan"
	"github.com/pablasso/planfirst/internal/plan"
	"github.com/spf13/cobra"
)

func newDeinitCmd(env *plancmd.Env) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "deinit",
		Short: "Remove planfirst from the current repository",
		Long:  "Removes the .planfirst/ folder with all plans, reports and history. This action cannot be undone.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDeinit(env, cmd.InOrStdin(), cmd.OutOrStdout(), force)
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Skip confirmation prompt")
	return cmd
}

func runDeinit(env *plancmd.Env, in io.Reader, w io.Writer, force bool) error {
	dir := filepath.Join(env.Root, plan.Dir)

	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return fmt.Errorf("planfirst is not initialized in this repository")
	}
	if err != nil {
		return fmt.Errorf("failed to check %s directory: %w", plan.Dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s exists but is not a directory", plan.Dir)
	}

	planCount, totalSize, err := calculateDirStats(dir)
	if err != nil {
		return fmt.Errorf("failed to analyze %s/: %w", plan.Dir, err)
	}

	if !force {
		fmt.Fprintf(w, "This will delete %s/ (%d plans, %s). Continue? [y/N] ", plan.Dir, planCount, formatSize(totalSize))

		response, _ := bufio.NewReader(in).ReadString('\n')
		response = strings.TrimSpace(strings.ToLower(response))
		if response != "y" && response != "yes" {
			fmt.Fprintln(w, "Aborted.")
			return nil
		}
	}

	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("failed to remove %s/: %w", plan.Dir, err)
	}

	if err := removeFromGitignore(filepath.Join(env.Root, ".gitignore"), gitignoreEntries...); err != nil {
		return fmt.Errorf("failed to update .gitignore: %w", err)
	}

	fmt.Fprintln(w, "planfirst has been removed from this repository.")
	return nil
}

func calculateDirStats(dir string) (planCount int, totalSize int64, err error) {
	entries, readErr := os.ReadDir(filepath.Join(dir, "plans"))
	if readErr == nil {
		planCount = len(entries)
	}

	err = filepath.Walk(dir, func(path string, info os.FileInfo, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if !info.IsDir() {
			totalSize += info.Size()
		}
		return nil
	})
	return
}

func formatSize(bytes int64) string {
	const (
		KB = 1024
		MB = KB * 1024
	)
	switch {
	case bytes >= MB:
		return fmt.Sprintf("%.1fMB", float64(bytes)/MB)
	case bytes >= KB:
		return fmt.Sprintf("%.1fKB", float64(bytes)/KB)
	default:
		return fmt.Sprintf("%dB", bytes)
	}
}
