package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVerbPathRule(t *testing.T) {
	text := "Create `src/app.ts`, then update `lib/util.go` and edit `README.md`.\n" +
		"Modify `schema.graphql` and add `config` too. See `other.ts`."

	assert.Equal(t, []string{"src/app.ts", "lib/util.go", "README.md"}, VerbPathRule.Find(text))
}

func TestLabelPathRule(t *testing.T) {
	text := "**File:** `cmd/main.go`\nPath: `internal/x/y.yaml`\nfile:`a.ts`\nFile: `Makefile`"

	assert.Equal(t, []string{"cmd/main.go", "internal/x/y.yaml", "a.ts"}, LabelPathRule.Find(text))
}

func TestBarePathRule(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{name: "relative path", text: "see `internal/plan/plan.go`", want: []string{"internal/plan/plan.go"}},
		{name: "dotted dir", text: "edit `./.github/ci.yml`", want: []string{"./.github/ci.yml"}},
		{name: "no extension", text: "run `make`", want: nil},
		{name: "version number", text: "bump to `v1.2`", want: nil},
		{name: "long extension", text: "the `schema.graphql` file", want: nil},
		{name: "contains spaces", text: "`go test ./...`", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BarePathRule.Find(tt.text))
		})
	}
}

func TestCollectPaths_PriorityAndDedup(t *testing.T) {
	text := "See `src/z.ts` first. **File:** `src/y.ts`. Create `src/a.ts`. Again `src/a.ts` and `src/z.ts`."

	got := collectPaths(text, taskFileRules...)

	assert.Equal(t, []string{"src/a.ts", "src/y.ts", "src/z.ts"}, got)
}

func TestPhaseName(t *testing.T) {
	tests := map[string]string{
		"Phase 1: Setup":      "Setup",
		"Phase 2 Build API":   "Build API",
		"phase 3:  Testing  ": "Testing",
		"Phase 4":             "Phase 4",
		"Phase 5:":            "Phase 5:",
		"Database migrations": "Database migrations",
	}

	for heading, want := range tests {
		t.Run(heading, func(t *testing.T) {
			assert.Equal(t, want, phaseName(heading))
		})
	}
}

func TestSentences(t *testing.T) {
	got := sentences("First one.  Second\nline! Third? trailing v1.2 stays")

	assert.Equal(t, []string{"First one", "Second line", "Third", "trailing v1.2 stays"}, got)
}
