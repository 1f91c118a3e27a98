package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// gitignoreEntries keeps run-local state out of version control. Plans and
// reports stay tracked.
var gitignoreEntries = []string{
	".planfirst/**/run.lock",
	".planfirst/**/output.log",
	".planfirst/history.db",
	".planfirst/*.log",
}

// addToGitignore appends entry to the .gitignore at path unless it is
// already listed.
func addToGitignore(path, entry string) error {
	content, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to read .gitignore: %w", err)
	}

	for _, line := range strings.Split(string(content), "\n") {
		if strings.TrimSpace(line) == entry {
			return nil
		}
	}

	var b strings.Builder
	b.Write(content)
	if len(content) > 0 && !strings.HasSuffix(string(content), "\n") {
		b.WriteString("\n")
	}
	b.WriteString(entry + "\n")

	return os.WriteFile(path, []byte(b.String()), 0644)
}

// removeFromGitignore drops every line equal to one of entries. A missing
// file is not an error, and a file that would end up empty is left alone.
func removeFromGitignore(path string, entries ...string) error {
	content, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read .gitignore: %w", err)
	}

	drop := make(map[string]bool, len(entries))
	for _, e := range entries {
		drop[e] = true
	}

	lines := strings.Split(strings.TrimSuffix(string(content), "\n"), "\n")
	kept := lines[:0]
	for _, line := range lines {
		if !drop[strings.TrimSpace(line)] {
			kept = append(kept, line)
		}
	}
	if len(kept) == len(lines) || len(kept) == 0 {
		return nil
	}

	return os.WriteFile(path, []byte(strings.Join(kept, "\n")+"\n"), 0644)
}
