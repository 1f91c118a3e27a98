package ai

import (
	"context"
	"os/exec"
	"strings"
	"testing"
	"time"

	"github.com/pablasso/planfirst/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseResponse(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr string
	}{
		{
			name:  "json envelope",
			input: `{"type":"result","result":"# Title\n\n## Phase 1: Setup","is_error":false}`,
			want:  "# Title\n\n## Phase 1: Setup",
		},
		{
			name:  "fenced markdown inside envelope",
			input: `{"type":"result","result":"` + "```markdown\\n# Title\\n```" + `","is_error":false}`,
			want:  "# Title",
		},
		{
			name:  "plain text",
			input: "# Title\n\nBody\n",
			want:  "# Title\n\nBody",
		},
		{
			name:    "error envelope",
			input:   `{"type":"result","result":"rate limited","is_error":true}`,
			wantErr: "rate limited",
		},
		{
			name:    "empty result",
			input:   `{"type":"result","result":"  ","is_error":false}`,
			wantErr: "empty response",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseResponse([]byte(tt.input))
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStripCodeFence(t *testing.T) {
	tests := map[string]string{
		"# Title":                     "# Title",
		"```\n# Title\n```":           "# Title",
		"```md\n# Title\n\nBody\n```": "# Title\n\nBody",
		"  ```markdown\n# T\n```  ":   "# T",
		"text with ``` inside":        "text with ``` inside",
		"```":                         "",
	}
	for in, want := range tests {
		assert.Equal(t, want, stripCodeFence(in), "input %q", in)
	}
}

func TestClaudeCLI_Generate(t *testing.T) {
	stubClaude(t)

	hook, rec := testutil.RecordCommand(testutil.MockCommandFunc(`{"type":"result","result":"# Add Cache","is_error":false}`))
	CommandContext = hook

	out, err := (&ClaudeCLI{}).Generate(context.Background(), "draft a plan")
	require.NoError(t, err)
	assert.Equal(t, "# Add Cache", out)
	assert.Equal(t, "claude", rec.Name)
	require.Len(t, rec.Args, 5)
	assert.Equal(t, "draft a plan", rec.Args[1])
	assert.Contains(t, strings.Join(rec.Args, " "), "--output-format json")
}

func TestClaudeCLI_GenerateTimeout(t *testing.T) {
	stubClaude(t)
	CommandContext = func(ctx context.Context, name string, args ...string) *exec.Cmd {
		return exec.CommandContext(ctx, "sleep", "5")
	}

	_, err := (&ClaudeCLI{Timeout: 50 * time.Millisecond}).Generate(context.Background(), "p")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timed out")
}

func TestClaudeCLI_NotInstalled(t *testing.T) {
	orig := lookPath
	t.Cleanup(func() { lookPath = orig })
	lookPath = func(string) (string, error) { return "", exec.ErrNotFound }

	assert.False(t, IsClaudeAvailable())
	_, err := (&ClaudeCLI{}).Generate(context.Background(), "p")
	assert.ErrorIs(t, err, ErrClaudeNotFound)
}

// stubClaude pretends claude is installed and restores CommandContext after
// the test.
func stubClaude(t *testing.T) {
	t.Helper()
	origLook, origCmd := lookPath, CommandContext
	t.Cleanup(func() {
		lookPath = origLook
		CommandContext = origCmd
	})
	lookPath = func(string) (string, error) { return "/usr/bin/claude", nil }
}
