package ai

import (
	"fmt"
	"strings"
)

// BuildPlanPrompt asks the model for a plan document in the markdown shape
// the extractor understands.
func BuildPlanPrompt(request string, dependencies []string) string {
	var sb strings.Builder

	sb.WriteString("You are a senior engineer writing an implementation plan. Do not write code.\n\n")

	sb.WriteString("## Request\n\n")
	sb.WriteString(strings.TrimSpace(request))
	sb.WriteString("\n\n")

	if len(dependencies) > 0 {
		sb.WriteString("## Project Dependencies\n\n")
		for _, dep := range dependencies {
			sb.WriteString(fmt.Sprintf("- %s\n", dep))
		}
		sb.WriteString("\n")
	}

	sb.WriteString(`## Output Format

Return ONLY a markdown document, with no preamble:

# <Short plan title>

## Phase 1: <phase name>
<One paragraph describing the phase.>
- Create ` + "`path/to/new_file.go`" + ` to <purpose>.
- Modify ` + "`path/to/existing_file.go`" + ` to <change>.

## Phase 2: <phase name>
...

## Rules

- Use 1 to 6 phases, ordered so each phase builds on the previous one.
- Name every file in backticks with its path relative to the project root.
- Start each file sentence with Create, Add, Modify, Update, Edit, Delete or Remove.
- Put each file sentence on its own line and end it with a period.
- Mention the project dependencies the plan relies on by name.
`)

	return sb.String()
}
