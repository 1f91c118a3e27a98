package util

import (
	"crypto/rand"
	"fmt"
	"strings"
	"unicode"
)

const alphanumeric = "abcdefghijklmnopqrstuvwxyz0123456789"

// maxNameLength bounds plan folder names derived from titles.
const maxNameLength = 50

// GenerateShortID returns a 6-character lowercase alphanumeric string using cryptographic randomness.
func GenerateShortID() (string, error) {
	bytes := make([]byte, 6)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}

	for i := range bytes {
		bytes[i] = alphanumeric[int(bytes[i])%len(alphanumeric)]
	}

	return string(bytes), nil
}

// PhaseID returns the id of the phase at 1-based position n: phase-1, phase-2, ...
func PhaseID(n int) string {
	return fmt.Sprintf("phase-%d", n)
}

// TaskID returns the id of the task at 1-based position n within its phase.
func TaskID(n int) string {
	return fmt.Sprintf("task-%d", n)
}

// PlanName derives a folder-safe plan name from a title. Long names are cut
// at the last hyphen that fits.
func PlanName(title string) string {
	name := ToKebabCase(title)
	if len(name) <= maxNameLength {
		return name
	}
	name = name[:maxNameLength]
	if i := strings.LastIndex(name, "-"); i > 0 {
		name = name[:i]
	}
	return name
}

// ToKebabCase converts a string to kebab-case.
// It lowercases the string, replaces spaces and underscores with hyphens,
// removes non-alphanumeric characters (except hyphens), collapses multiple
// consecutive hyphens, and trims leading/trailing hyphens.
func ToKebabCase(s string) string {
	var result strings.Builder

	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			result.WriteRune(unicode.ToLower(r))
		} else if r == ' ' || r == '_' || r == '-' {
			result.WriteRune('-')
		}
		// Other characters are dropped
	}

	str := result.String()
	for strings.Contains(str, "--") {
		str = strings.ReplaceAll(str, "--", "-")
	}

	return strings.Trim(str, "-")
}
