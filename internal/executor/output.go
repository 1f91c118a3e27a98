package executor

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

const outputLogFileName = "output.log"

// OutputWriter provides writers for capturing agent output.
type OutputWriter interface {
	Stdout() io.Writer
	Stderr() io.Writer
}

// OutputCapture appends raw agent output to output.log in the plan
// directory and forwards readable text to an optional callback.
type OutputCapture struct {
	logFile *os.File
	stdout  io.Writer
	stderr  io.Writer
}

// NewOutputCapture opens output.log in append mode so history survives
// re-runs. onText receives display text parsed from the agent's stream-json
// output; it may be nil.
func NewOutputCapture(planDir string, onText func(string)) (*OutputCapture, error) {
	f, err := os.OpenFile(filepath.Join(planDir, outputLogFileName), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}
	return &OutputCapture{
		logFile: f,
		stdout:  &streamWriter{log: f, onText: onText},
		stderr:  &streamWriter{log: f, onText: onText, raw: true},
	}, nil
}

// Stdout returns the writer for the agent's stdout.
func (oc *OutputCapture) Stdout() io.Writer { return oc.stdout }

// Stderr returns the writer for the agent's stderr.
func (oc *OutputCapture) Stderr() io.Writer { return oc.stderr }

// Close closes the log file. Safe to call more than once.
func (oc *OutputCapture) Close() error {
	if oc.logFile == nil {
		return nil
	}
	err := oc.logFile.Close()
	oc.logFile = nil
	return err
}

// WritePhaseHeader marks the start of a phase attempt in the log.
func (oc *OutputCapture) WritePhaseHeader(phaseID string, attempt int) {
	if oc.logFile == nil {
		return
	}
	fmt.Fprintf(oc.logFile, "\n=== Phase %s, Attempt %d ===\nStarted: %s\n\n", phaseID, attempt, time.Now().Format(time.RFC3339))
}

// WritePhaseFooter records the outcome of a phase attempt in the log.
func (oc *OutputCapture) WritePhaseFooter(phaseID string, outcome string) {
	if oc.logFile == nil {
		return
	}
	fmt.Fprintf(oc.logFile, "\n=== Phase %s: %s ===\n\n", phaseID, strings.ToUpper(outcome))
}

// streamWriter writes raw bytes to the log and, line by line, hands display
// text to onText. Stderr is forwarded unparsed.
type streamWriter struct {
	mu      sync.Mutex
	log     io.Writer
	onText  func(string)
	raw     bool
	lineBuf strings.Builder
}

func (s *streamWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, err := s.log.Write(p)
	if s.onText == nil {
		return n, err
	}
	if s.raw {
		s.onText(string(p))
		return n, err
	}

	s.lineBuf.Write(p)
	content := s.lineBuf.String()
	for {
		idx := strings.IndexByte(content, '\n')
		if idx == -1 {
			break
		}
		if text := FormatStreamLine(content[:idx]); text != "" {
			s.onText(text)
		}
		content = content[idx+1:]
	}
	s.lineBuf.Reset()
	s.lineBuf.WriteString(content)
	return n, err
}

// streamEvent is the subset of Claude's stream-json events we display.
type streamEvent struct {
	Type    string `json:"type"`
	Subtype string `json:"subtype,omitempty"`
	Result  string `json:"result,omitempty"`
	Message *struct {
		Content []struct {
			Type  string         `json:"type"`
			Text  string         `json:"text,omitempty"`
			Name  string         `json:"name,omitempty"`
			Input map[string]any `json:"input,omitempty"`
		} `json:"content"`
	} `json:"message,omitempty"`
	TotalCostUSD float64 `json:"total_cost_usd,omitempty"`
}

// FormatStreamLine turns one stream-json line into display text. Non-JSON
// input is returned trimmed; events with nothing to show yield "".
func FormatStreamLine(line string) string {
	line = strings.TrimSpace(line)
	if line == "" {
		return ""
	}

	var event streamEvent
	if err := json.Unmarshal([]byte(line), &event); err != nil {
		return line
	}

	switch event.Type {
	case "assistant":
		if event.Message == nil {
			return ""
		}
		var parts []string
		for _, c := range event.Message.Content {
			switch c.Type {
			case "text":
				if t := strings.TrimSpace(c.Text); t != "" {
					parts = append(parts, t)
				}
			case "tool_use":
				parts = append(parts, formatToolUse(c.Name, c.Input))
			}
		}
		return strings.Join(parts, "\n")
	case "result":
		if event.TotalCostUSD > 0 {
			return fmt.Sprintf("Agent finished (%s, $%.2f)", event.Subtype, event.TotalCostUSD)
		}
		return fmt.Sprintf("Agent finished (%s)", event.Subtype)
	}
	return ""
}

func formatToolUse(name string, input map[string]any) string {
	if target := toolTarget(name, input); target != "" {
		return fmt.Sprintf("→ %s %s", name, target)
	}
	return "→ " + name
}

func toolTarget(name string, input map[string]any) string {
	var key string
	switch name {
	case "Read", "Write", "Edit":
		key = "file_path"
	case "Glob", "Grep":
		key = "pattern"
	case "Bash":
		key = "command"
	case "Task":
		key = "description"
	default:
		return ""
	}
	s, _ := input[key].(string)
	return s
}
