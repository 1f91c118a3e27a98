// Package analysis turns the activity of a plan run into suggestions for the
// project's AGENTS.md.
package analysis

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pablasso/planfirst/internal/plan"
)

// minTestFailures is how many failing-test lines the output log needs
// before testing guidance is suggested.
const minTestFailures = 3

// testCommands are the commands worth documenting when an agent keeps
// reaching for them.
var testCommands = []string{"go test", "make test", "npm test", "pytest", "cargo test"}

// Suggestion represents a suggested AGENTS.md addition.
type Suggestion struct {
	Category    string // e.g. "Testing", "Formatting", "Common Issues"
	Title       string
	Description string
	Example     string // optional snippet
}

// Analyzer generates suggestions from the progress and output logs of a plan.
type Analyzer struct {
	planDir string
	plan    *plan.Plan
}

// NewAnalyzer creates a new analyzer for the plan stored in planDir.
func NewAnalyzer(planDir string, p *plan.Plan) *Analyzer {
	return &Analyzer{planDir: planDir, plan: p}
}

// Analyze reads progress.log and, when present, output.log.
func (a *Analyzer) Analyze() ([]Suggestion, error) {
	events, err := a.loadProgressEvents()
	if err != nil {
		return nil, err
	}

	// output.log only exists once an agent has run
	outputLines, err := a.loadOutputLog()
	if err != nil {
		outputLines = nil
	}

	var suggestions []Suggestion
	suggestions = append(suggestions, a.analyzeRetries(events)...)
	suggestions = append(suggestions, a.analyzeVerifications(events)...)
	if outputLines != nil {
		suggestions = append(suggestions, analyzeFailurePatterns(outputLines)...)
		suggestions = append(suggestions, analyzeTestCommands(outputLines)...)
	}
	return deduplicate(suggestions), nil
}

func (a *Analyzer) loadProgressEvents() ([]plan.ProgressEvent, error) {
	f, err := os.Open(filepath.Join(a.planDir, "progress.log"))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var events []plan.ProgressEvent
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var event plan.ProgressEvent
		if err := json.Unmarshal(scanner.Bytes(), &event); err != nil {
			continue
		}
		events = append(events, event)
	}
	return events, scanner.Err()
}

func (a *Analyzer) loadOutputLog() ([]string, error) {
	f, err := os.Open(filepath.Join(a.planDir, "output.log"))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	return lines, scanner.Err()
}

// analyzeRetries flags phases that needed more than one attempt.
func (a *Analyzer) analyzeRetries(events []plan.ProgressEvent) []Suggestion {
	attempts := make(map[string]int)
	for _, event := range events {
		if event.Event != plan.EventPhaseStarted {
			continue
		}
		phaseID, _ := event.Data["phase_id"].(string)
		attempt, _ := event.Data["attempt"].(float64)
		attempts[phaseID] = max(attempts[phaseID], int(attempt))
	}

	var suggestions []Suggestion
	for _, ph := range a.plan.Phases {
		if n := attempts[ph.ID]; n > 1 {
			suggestions = append(suggestions, Suggestion{
				Category:    "Common Issues",
				Title:       fmt.Sprintf("Phase '%s' required %d attempts", ph.Name, n),
				Description: "Name the files this phase touches explicitly, or split it into smaller phases.",
			})
		}
	}
	return suggestions
}

// analyzeVerifications flags phase failures caused by planned files that
// never showed up.
func (a *Analyzer) analyzeVerifications(events []plan.ProgressEvent) []Suggestion {
	missing := 0
	for _, event := range events {
		if event.Event != plan.EventPhaseFailed {
			continue
		}
		if reason, _ := event.Data["reason"].(string); strings.Contains(reason, "missing") {
			missing++
		}
	}
	if missing == 0 {
		return nil
	}
	return []Suggestion{{
		Category:    "Project Layout",
		Title:       fmt.Sprintf("Planned files were missing after %d attempts", missing),
		Description: "Agents created files in other places than planned. Document where new code belongs.",
		Example:     "## Layout\n\n- Packages live under internal/<name>/\n- Commands live under cmd/<name>/",
	}}
}

func analyzeFailurePatterns(lines []string) []Suggestion {
	var suggestions []Suggestion

	testFailures, fmtIssues, moduleIssues := 0, 0, false
	for _, line := range lines {
		lower := strings.ToLower(line)
		failed := strings.Contains(lower, "fail") || strings.Contains(lower, "error")
		if strings.Contains(lower, "fail") && strings.Contains(lower, "test") {
			testFailures++
		}
		if failed && (strings.Contains(lower, "fmt") || strings.Contains(lower, "format") || strings.Contains(lower, "lint")) {
			fmtIssues++
		}
		if strings.Contains(lower, "cannot find module") || strings.Contains(lower, "module not found") {
			moduleIssues = true
		}
	}

	if testFailures >= minTestFailures {
		suggestions = append(suggestions, Suggestion{
			Category:    "Testing",
			Title:       "Multiple test failures observed",
			Description: "Agents hit failing tests during the run. Document how to run the tests.",
			Example:     "## Testing\n\nRun tests before finishing a phase:\n\n```bash\nmake test\n```",
		})
	}
	if fmtIssues > 0 {
		suggestions = append(suggestions, Suggestion{
			Category:    "Formatting",
			Title:       "Formatting issues detected",
			Description: "Formatting or lint checks failed. Document the formatting command.",
			Example:     "## Formatting\n\nRun the formatter after modifying code:\n\n```bash\nmake fmt\n```",
		})
	}
	if moduleIssues {
		suggestions = append(suggestions, Suggestion{
			Category:    "Dependencies",
			Title:       "Module/dependency issues",
			Description: "Dependency resolution failed. Document how to install dependencies.",
		})
	}
	return suggestions
}

// analyzeTestCommands suggests documenting a test command the agent ran
// more than once.
func analyzeTestCommands(lines []string) []Suggestion {
	counts := make(map[string]int)
	for _, line := range lines {
		lower := strings.ToLower(line)
		for _, cmd := range testCommands {
			if strings.Contains(lower, cmd) {
				counts[cmd]++
			}
		}
	}

	var suggestions []Suggestion
	for _, cmd := range testCommands {
		if counts[cmd] >= 2 {
			suggestions = append(suggestions, Suggestion{
				Category:    "Verification",
				Title:       fmt.Sprintf("'%s' ran %d times", cmd, counts[cmd]),
				Description: "Agents relied on this command to check their work. Document it prominently.",
			})
		}
	}
	return suggestions
}

func deduplicate(suggestions []Suggestion) []Suggestion {
	seen := make(map[string]bool)
	var result []Suggestion
	for _, s := range suggestions {
		key := s.Category + ":" + s.Title
		if !seen[key] {
			seen[key] = true
			result = append(result, s)
		}
	}
	return result
}

// FormatSuggestions renders suggestions grouped by category. It returns ""
// when there is nothing to suggest.
func FormatSuggestions(suggestions []Suggestion) string {
	if len(suggestions) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("\nSuggested AGENTS.md additions\n")
	sb.WriteString("-----------------------------\n\n")

	byCategory := make(map[string][]Suggestion)
	for _, s := range suggestions {
		byCategory[s.Category] = append(byCategory[s.Category], s)
	}
	categories := make([]string, 0, len(byCategory))
	for cat := range byCategory {
		categories = append(categories, cat)
	}
	sort.Strings(categories)

	for _, cat := range categories {
		fmt.Fprintf(&sb, "## %s\n\n", cat)
		for _, s := range byCategory[cat] {
			fmt.Fprintf(&sb, "- %s\n", s.Title)
			fmt.Fprintf(&sb, "  %s\n", s.Description)
			if s.Example != "" {
				sb.WriteString("\n  Suggested content:\n")
				for _, line := range strings.Split(s.Example, "\n") {
					fmt.Fprintf(&sb, "  %s\n", line)
				}
			}
			sb.WriteString("\n")
		}
	}
	return sb.String()
}
