package verify

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pablasso/planfirst/internal/plan"
)

func TestKeywords(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{name: "camel case is lowercased", text: "Add parseConfig helper function", want: []string{"parseconfig", "helper", "function"}},
		{name: "punctuation is deleted", text: "Update src/config.ts (loader)", want: []string{"update", "srcconfigts", "loader"}},
		{name: "identifiers stay whole", text: "Add parse_config helper", want: []string{"parseconfig", "helper"}},
		{name: "paths collapse to one token", text: "Create internal/config/loader.go", want: []string{"create", "internalconfigloadergo"}},
		{name: "stop words dropped", text: "This should work with these values", want: []string{"work", "values"}},
		{name: "duplicates kept", text: "cache cache CACHE", want: []string{"cache", "cache", "cache"}},
		{name: "empty", text: "", want: nil},
		{
			name: "capped at ten",
			text: "alpha bravo charlie delta echoes foxtrot golf1 hotel india juliet kilo1 lima1",
			want: []string{"alpha", "bravo", "charlie", "delta", "echoes", "foxtrot", "golf1", "hotel", "india", "juliet"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Keywords(tt.text))
		})
	}
}

func TestMatchPercentage(t *testing.T) {
	content := "// helper\nexport function parseConfig(raw) {\n  return JSON.parse(raw)\n}\n"

	tests := []struct {
		name string
		task plan.Task
		want int
	}{
		{
			name: "all keywords found",
			task: plan.Task{Description: "Add parseConfig helper function"},
			want: 80,
		},
		{
			name: "one of three keywords found",
			task: plan.Task{Description: "Add parseConfig validation layer"},
			want: 60,
		},
		{
			name: "no keywords in description",
			task: plan.Task{Description: "Do it"},
			want: 50,
		},
		{
			name: "matching change snippet adds full bonus",
			task: plan.Task{
				Description: "Add parseConfig helper function",
				Changes:     []plan.Change{{Action: plan.ActionAdd, Code: "return helper function"}},
			},
			want: 100,
		},
		{
			name: "half the snippets match",
			task: plan.Task{
				Description: "Add parseConfig helper function",
				Changes: []plan.Change{
					{Action: plan.ActionAdd, Code: "export function"},
					{Action: plan.ActionAdd, Code: "validateSchema(config)"},
					{Action: plan.ActionComment, Description: "no code, ignored"},
				},
			},
			want: 90,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MatchPercentage(tt.task, content))
		})
	}
}

func TestMatchPercentage_IdentifierMustAppearWhole(t *testing.T) {
	task := plan.Task{Type: plan.TaskModify, Description: "Update user_profile handler"}

	// "userprofile" is one keyword and the file only has its halves
	assert.Equal(t, 70, MatchPercentage(task, "func user() {} // profile handler update"))
	assert.Equal(t, 80, MatchPercentage(task, "func userprofile() {} // handler update"))
}

func TestMatchPercentage_ChangeNeedsMajorityOfKeywords(t *testing.T) {
	content := "alpha bravo charlie"

	tests := []struct {
		name string
		code string
		want int
	}{
		{name: "all present", code: "alpha bravo", want: 70},
		{name: "two of three present", code: "alpha bravo delta", want: 70},
		{name: "exactly half present", code: "alpha delta", want: 50},
		{name: "none present", code: "delta echoes", want: 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task := plan.Task{Changes: []plan.Change{{Action: plan.ActionAdd, Code: tt.code}}}
			assert.Equal(t, tt.want, MatchPercentage(task, content))
		})
	}
}

func TestMatchPercentage_Bounds(t *testing.T) {
	task := plan.Task{
		Description: "parseConfig helper function",
		Changes:     []plan.Change{{Code: "parseConfig helper"}},
	}

	for _, content := range []string{"", "parseConfig helper function", "unrelated"} {
		pct := MatchPercentage(task, content)
		assert.GreaterOrEqual(t, pct, 0)
		assert.LessOrEqual(t, pct, 100)
	}
}
