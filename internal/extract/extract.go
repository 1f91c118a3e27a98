// Package extract turns language-model markdown into a structured plan.
//
// Extraction is a pure function of its input and never fails: markdown with
// no usable structure still yields a single "Implementation" phase with at
// least one task.
package extract

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/pablasso/planfirst/internal/plan"
	"github.com/pablasso/planfirst/internal/util"
)

const (
	maxTitleRunes       = 100
	maxDescriptionRunes = 200
	maxReasoningRunes   = 200

	fallbackPhaseName = "Implementation"
	placeholderFile   = "implementation"
	fallbackReasoning = "Implement as described in the plan"
)

// Input is everything the extractor needs. ID and Timestamp are supplied by
// the caller so extraction stays deterministic.
type Input struct {
	Markdown  string
	Request   string
	ID        string
	Timestamp time.Time

	// ProjectDependencies are the project's declared package names. Those
	// mentioned in the markdown end up in the plan metadata.
	ProjectDependencies []string
}

// section is the text of one phase: its heading line plus the body up to the
// next phase heading.
type section struct {
	heading string
	text    string
	body    string // text without the heading line
}

// Extract builds a Plan from markdown.
func Extract(in Input) *plan.Plan {
	sections := splitSections(in.Markdown)

	status := plan.StatusReady
	headed := len(sections) > 0
	if !headed {
		status = plan.StatusDraft
		sections = []section{{heading: fallbackPhaseName, text: in.Markdown, body: in.Markdown}}
	}

	phases := make([]plan.Phase, len(sections))
	for i, s := range sections {
		order := i + 1
		sents := sentences(s.body)
		if headed {
			sents = append(sentences(s.heading), sents...)
		}
		deps := []string{}
		if order > 1 {
			deps = []string{util.PhaseID(order - 1)}
		}
		phases[i] = plan.Phase{
			ID:           util.PhaseID(order),
			Order:        order,
			Name:         phaseName(s.heading),
			Description:  truncate(strings.TrimSpace(s.text), maxDescriptionRunes),
			Tasks:        extractTasks(s.text, sents),
			Dependencies: deps,
			Status:       plan.PhaseStatusPending,
		}
	}

	files := filesAffected(in.Markdown)
	complexity := estimateComplexity(len(files), len(phases), len(strings.Fields(in.Markdown)))

	return &plan.Plan{
		ID:          in.ID,
		Title:       extractTitle(in.Markdown, in.Request),
		Description: in.Request,
		Timestamp:   in.Timestamp,
		Phases:      phases,
		Metadata: plan.Metadata{
			Complexity:    complexity,
			FilesAffected: files,
			Dependencies:  mentionedDependencies(in.Markdown, in.ProjectDependencies),
			EstimatedTime: estimateTime(complexity, len(phases)),
		},
		Status: status,
	}
}

func extractTitle(markdown, request string) string {
	if m := titlePattern.FindStringSubmatch(markdown); m != nil {
		if title := strings.TrimSpace(m[1]); title != "" {
			return title
		}
	}
	return truncate(strings.TrimSpace(request), maxTitleRunes)
}

// splitSections cuts the document at every second-level heading. Text before
// the first heading belongs to no phase.
func splitSections(markdown string) []section {
	locs := phaseHeading.FindAllStringSubmatchIndex(markdown, -1)
	sections := make([]section, 0, len(locs))
	for i, loc := range locs {
		end := len(markdown)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		sections = append(sections, section{
			heading: markdown[loc[2]:loc[3]],
			text:    markdown[loc[0]:end],
			body:    markdown[loc[1]:end],
		})
	}
	return sections
}

// extractTasks finds task files in the whole section. Each task's reasoning
// is the first of sents that mentions its file; the heading counts as the
// first sentence.
func extractTasks(text string, sents []string) []plan.Task {
	files := collectPaths(text, taskFileRules...)
	if len(files) == 0 {
		return []plan.Task{{
			ID:          util.TaskID(1),
			Type:        plan.TaskModify,
			File:        placeholderFile,
			Description: "Implement the changes described in this phase",
			Reasoning:   fallbackReasoning,
			Changes:     []plan.Change{},
		}}
	}

	lower := strings.ToLower(text)

	tasks := make([]plan.Task, len(files))
	for i, file := range files {
		taskType := classify(lower, strings.ToLower(file))

		description := fmt.Sprintf("%s %s", verbFor(taskType), file)
		reasoning := fallbackReasoning
		if s, ok := sentenceMentioning(sents, file); ok {
			description = strings.ReplaceAll(s, "`", "")
			reasoning = truncate(s, maxReasoningRunes)
		}

		tasks[i] = plan.Task{
			ID:          util.TaskID(i + 1),
			Type:        taskType,
			File:        file,
			Description: description,
			Reasoning:   reasoning,
			Changes:     []plan.Change{},
		}
	}
	return tasks
}

func classify(lowerText, lowerFile string) plan.TaskType {
	switch {
	case mentions(lowerText, lowerFile, createVerbs):
		return plan.TaskCreate
	case mentions(lowerText, lowerFile, deleteVerbs):
		return plan.TaskDelete
	default:
		return plan.TaskModify
	}
}

func verbFor(t plan.TaskType) string {
	switch t {
	case plan.TaskCreate:
		return "Create"
	case plan.TaskDelete:
		return "Delete"
	default:
		return "Modify"
	}
}

func sentenceMentioning(sents []string, file string) (string, bool) {
	for _, s := range sents {
		if strings.Contains(s, file) {
			return s, true
		}
	}
	return "", false
}

// filesAffected rescans the whole document with the bare path rule only, so
// it can differ from the union of task files.
func filesAffected(markdown string) []string {
	files := collectPaths(markdown, BarePathRule)
	if files == nil {
		return []string{}
	}
	sort.Strings(files)
	return files
}

func mentionedDependencies(markdown string, deps []string) []string {
	lower := strings.ToLower(markdown)
	found := []string{}
	for _, d := range deps {
		if d != "" && strings.Contains(lower, strings.ToLower(d)) {
			found = append(found, d)
		}
	}
	return found
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
