package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// claudeResponse represents the JSON structure returned by Claude Code CLI
// when using --output-format json.
type claudeResponse struct {
	Type    string `json:"type"`
	Result  string `json:"result"`
	IsError bool   `json:"is_error"`
}

// CommandContext is the function used to create exec.Cmd instances.
// It can be replaced in tests to mock command execution.
var CommandContext = exec.CommandContext

var lookPath = exec.LookPath

// DefaultTimeout is the maximum time allowed for one generation.
const DefaultTimeout = 5 * time.Minute

// ErrClaudeNotFound is returned when the claude binary is not on PATH.
var ErrClaudeNotFound = errors.New("Claude Code CLI not found. Install it: https://claude.ai/code")

// IsClaudeAvailable checks if the claude command exists in PATH.
func IsClaudeAvailable() bool {
	_, err := lookPath("claude")
	return err == nil
}

// ClaudeCLI generates text by shelling out to the Claude Code CLI.
type ClaudeCLI struct {
	// Timeout applies when the caller's context has no deadline.
	// Zero means DefaultTimeout.
	Timeout time.Duration
}

// Generate sends prompt to `claude -p` and returns the response text with
// any surrounding code fence removed.
func (c *ClaudeCLI) Generate(ctx context.Context, prompt string) (string, error) {
	if !IsClaudeAvailable() {
		return "", ErrClaudeNotFound
	}

	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		timeout := c.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	// --dangerously-skip-permissions is required for non-interactive use; the
	// prompt asks for text only.
	cmd := CommandContext(ctx, "claude", "-p", prompt, "--output-format", "json", "--dangerously-skip-permissions")
	output, err := cmd.Output()
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", errors.New("plan generation timed out")
		}
		if errors.Is(ctx.Err(), context.Canceled) {
			return "", errors.New("plan generation was cancelled")
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return "", fmt.Errorf("claude command failed: %s", strings.TrimSpace(string(exitErr.Stderr)))
		}
		return "", fmt.Errorf("failed to execute claude command: %w", err)
	}

	return parseResponse(output)
}

// parseResponse unwraps the CLI's JSON envelope when present. Plain text
// output is accepted as-is.
func parseResponse(data []byte) (string, error) {
	text := string(data)

	var resp claudeResponse
	if err := json.Unmarshal(data, &resp); err == nil && resp.Type == "result" {
		if resp.IsError {
			return "", errors.New("claude returned an error: " + resp.Result)
		}
		text = resp.Result
	}

	text = stripCodeFence(text)
	if text == "" {
		return "", errors.New("claude returned an empty response")
	}
	return text, nil
}

// stripCodeFence removes a code fence wrapping the whole response, such as
// ```markdown ... ``` or ``` ... ```.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	rest := strings.TrimPrefix(s, "```")
	// drop the info string ("markdown", "md", ...)
	if nl := strings.IndexByte(rest, '\n'); nl != -1 {
		rest = rest[nl+1:]
	} else {
		rest = ""
	}
	rest = strings.TrimSuffix(strings.TrimSpace(rest), "```")
	return strings.TrimSpace(rest)
}
