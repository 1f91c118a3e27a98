package cli

import (
	"fmt"
	"os/exec"

	"github.com/pablasso/planfirst/internal/config"
)

// Replaced in tests.
var (
	commandFunc  = exec.Command
	lookPathFunc = exec.LookPath
)

// PrerequisiteError represents a failed prerequisite check with helpful remediation info.
type PrerequisiteError struct {
	Check   string
	Message string
	Help    string
}

func (e *PrerequisiteError) Error() string {
	return fmt.Sprintf("%s: %s\n\n%s", e.Check, e.Message, e.Help)
}

// checkPrerequisites validates the environment before init. Claude Code is
// only required when it is the configured provider.
func checkPrerequisites(root, provider string) error {
	if err := checkGitRepo(root); err != nil {
		return err
	}
	if provider == "" || provider == config.ProviderClaudeCLI {
		if err := checkClaudeCode(); err != nil {
			return err
		}
	}
	return nil
}

// checkGitRepo verifies dir is inside a git repository.
func checkGitRepo(dir string) error {
	cmd := commandFunc("git", "rev-parse", "--git-dir")
	cmd.Dir = dir
	if err := cmd.Run(); err != nil {
		return &PrerequisiteError{
			Check:   "Git repository",
			Message: "Not a git repository",
			Help:    "planfirst requires a git repository. Run 'git init' first.",
		}
	}
	return nil
}

// checkClaudeCode verifies Claude Code CLI is installed and authenticated.
func checkClaudeCode() error {
	if _, err := lookPathFunc("claude"); err != nil {
		return &PrerequisiteError{
			Check:   "Claude Code CLI",
			Message: "Claude Code CLI not found",
			Help:    "Install Claude Code: https://claude.ai/code\nOr set ai.provider to openai or anthropic in .planfirst/config.yaml.",
		}
	}

	// exits 0 when authenticated
	if err := commandFunc("claude", "auth", "status").Run(); err != nil {
		return &PrerequisiteError{
			Check:   "Claude Code authentication",
			Message: "Claude Code not authenticated",
			Help:    "Run 'claude auth' to authenticate.",
		}
	}
	return nil
}
