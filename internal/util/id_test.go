package util

import (
	"regexp"
	"strings"
	"testing"
)

func TestGenerateShortID(t *testing.T) {
	pattern := regexp.MustCompile(`^[a-z0-9]{6}$`)
	seen := make(map[string]bool)

	for i := 0; i < 500; i++ {
		id, err := GenerateShortID()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !pattern.MatchString(id) {
			t.Errorf("id %q is not 6 lowercase alphanumeric characters", id)
		}
		if seen[id] {
			t.Errorf("duplicate id generated: %q", id)
		}
		seen[id] = true
	}
}

func TestPhaseAndTaskIDs(t *testing.T) {
	if got := PhaseID(1); got != "phase-1" {
		t.Errorf("PhaseID(1) = %q", got)
	}
	if got := PhaseID(12); got != "phase-12" {
		t.Errorf("PhaseID(12) = %q", got)
	}
	if got := TaskID(3); got != "task-3" {
		t.Errorf("TaskID(3) = %q", got)
	}
}

func TestToKebabCase(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Hello World", "hello-world"},
		{"hello_world", "hello-world"},
		{"Hello---World", "hello-world"},
		{"  Hello  ", "hello"},
		{"Feature: Auth!", "feature-auth"},
		{"", ""},
		{"already-kebab", "already-kebab"},
		{"MixedCase_And Spaces", "mixedcase-and-spaces"},
		{"123 Numbers 456", "123-numbers-456"},
		{"---leading-trailing---", "leading-trailing"},
	}

	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			result := ToKebabCase(tc.input)
			if result != tc.expected {
				t.Errorf("ToKebabCase(%q) = %q, want %q", tc.input, result, tc.expected)
			}
		})
	}
}

func TestPlanName(t *testing.T) {
	if got := PlanName("Add User Auth"); got != "add-user-auth" {
		t.Errorf("PlanName short = %q", got)
	}

	long := PlanName(strings.Repeat("word ", 20))
	if len(long) > maxNameLength {
		t.Errorf("PlanName too long: %d chars", len(long))
	}
	if strings.HasSuffix(long, "-") || strings.HasSuffix(long, "wor") {
		t.Errorf("PlanName should cut at a word boundary, got %q", long)
	}
}
