// Package git inspects the working tree planfirst is about to modify.
package git

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// MetadataDir is planfirst's own directory; changes inside it never make a
// tree dirty.
const MetadataDir = ".planfirst/"

// Status represents the git workspace status.
type Status struct {
	Clean bool
	Files []string
}

// GetStatus returns the workspace status for dir, ignoring planfirst
// metadata. If dir is empty, uses the current working directory.
func GetStatus(ctx context.Context, dir string) (*Status, error) {
	cmd := exec.CommandContext(ctx, "git", "status", "--porcelain", "--untracked-files=all")
	if dir != "" {
		cmd.Dir = dir
	}

	output, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, fmt.Errorf("git status failed: %s", strings.TrimSpace(string(exitErr.Stderr)))
		}
		return nil, fmt.Errorf("failed to run git: %w", err)
	}

	var files []string
	for _, line := range strings.Split(string(output), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		// porcelain lines are "XY path"
		file := strings.TrimSpace(line)
		if len(line) > 3 {
			file = line[3:]
		}
		if strings.HasPrefix(file, MetadataDir) {
			continue
		}
		files = append(files, file)
	}

	return &Status{
		Clean: len(files) == 0,
		Files: files,
	}, nil
}

// IsClean returns true if the workspace has no staged, unstaged or
// untracked changes outside planfirst metadata.
func IsClean(ctx context.Context, dir string) (bool, error) {
	status, err := GetStatus(ctx, dir)
	if err != nil {
		return false, err
	}
	return status.Clean, nil
}

// GetDirtyFiles returns the changed files outside planfirst metadata.
func GetDirtyFiles(ctx context.Context, dir string) ([]string, error) {
	status, err := GetStatus(ctx, dir)
	if err != nil {
		return nil, err
	}
	return status.Files, nil
}
