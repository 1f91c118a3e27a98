package extract

import (
	"regexp"
	"strings"
)

// Rule is a named pattern that finds file paths in markdown text. The first
// capture group of the pattern is the path.
type Rule struct {
	Name    string
	pattern *regexp.Regexp
}

// Find returns the paths matched by the rule in document order. Repeats are
// kept; callers deduplicate.
func (r Rule) Find(text string) []string {
	var paths []string
	for _, m := range r.pattern.FindAllStringSubmatch(text, -1) {
		paths = append(paths, m[1])
	}
	return paths
}

var (
	// VerbPathRule matches an action verb followed by a backtick-quoted path
	// with a 2-4 letter extension: "Create `src/app.ts`".
	VerbPathRule = Rule{
		Name:    "verb-path",
		pattern: regexp.MustCompile("(?i)\\b(?:create|add|modify|update|edit)\\s+`([^`\\s]+\\.[A-Za-z]{2,4})`"),
	}

	// LabelPathRule matches a File: or Path: label, optionally bold, followed
	// by a backtick-quoted path: "**File:** `cmd/main.go`".
	LabelPathRule = Rule{
		Name:    "label-path",
		pattern: regexp.MustCompile("(?i)\\b(?:file|path):\\**\\s*`([^`\\s]+\\.[A-Za-z0-9]+)`"),
	}

	// BarePathRule matches any backtick-quoted token shaped like a relative
	// path with an extension: "`internal/plan/plan.go`".
	BarePathRule = Rule{
		Name:    "bare-path",
		pattern: regexp.MustCompile("`([A-Za-z0-9_\\-./]+\\.[A-Za-z][A-Za-z0-9]{0,4})`"),
	}
)

// taskFileRules are applied to each phase section in priority order.
var taskFileRules = []Rule{VerbPathRule, LabelPathRule, BarePathRule}

// collectPaths runs rules in order over text and returns the distinct paths
// in first-seen order. A path found by an earlier rule is not added again.
func collectPaths(text string, rules ...Rule) []string {
	seen := make(map[string]bool)
	var paths []string
	for _, rule := range rules {
		for _, p := range rule.Find(text) {
			if seen[p] {
				continue
			}
			seen[p] = true
			paths = append(paths, p)
		}
	}
	return paths
}

var (
	titlePattern       = regexp.MustCompile(`(?m)^#[ \t]+(.+)$`)
	phaseHeading       = regexp.MustCompile(`(?m)^##[ \t]+(.+)$`)
	phasePrefix        = regexp.MustCompile(`(?i)^phase\s+\d+\s*:?\s*(.*)$`)
	sentenceBoundary   = regexp.MustCompile(`[.!?]\s+`)
	createVerbs        = []string{"create", "new", "add"}
	deleteVerbs        = []string{"delete", "remove"}
	whitespaceSequence = regexp.MustCompile(`\s+`)
)

// phaseName strips a "Phase N:" or "Phase N" prefix from a heading. A heading
// that is nothing but the prefix keeps its full text.
func phaseName(heading string) string {
	heading = strings.TrimSpace(heading)
	m := phasePrefix.FindStringSubmatch(heading)
	if m == nil {
		return heading
	}
	if name := strings.TrimSpace(m[1]); name != "" {
		return name
	}
	return heading
}

// mentions reports whether text contains "<verb> <file>" or "<verb> `<file>`"
// for any verb. Both arguments must already be lowercase.
func mentions(text, file string, verbs []string) bool {
	for _, v := range verbs {
		if strings.Contains(text, v+" "+file) || strings.Contains(text, v+" `"+file+"`") {
			return true
		}
	}
	return false
}

// sentences splits text on '.', '!' or '?' followed by whitespace.
func sentences(text string) []string {
	var out []string
	for _, s := range sentenceBoundary.Split(text, -1) {
		s = strings.TrimSpace(whitespaceSequence.ReplaceAllString(s, " "))
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
