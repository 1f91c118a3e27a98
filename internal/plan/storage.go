package plan

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const (
	// Dir is the per-project directory holding plans and configuration.
	Dir      = ".planfirst"
	plansDir = "plans"

	planFileName     = "plan.json"
	markdownFileName = "plan.md"
)

// PlansPath returns the plans directory for the project rooted at root.
func PlansPath(root string) string {
	return filepath.Join(root, Dir, plansDir)
}

// FolderName returns the folder name used for a plan: <id>-<name>.
func FolderName(p *Plan, name string) string {
	if name == "" {
		return p.ID
	}
	return p.ID + "-" + name
}

// ResolvePlanName returns baseName, or baseName-2, baseName-3, ... if a plan
// folder with that name already exists.
func ResolvePlanName(root, baseName string) (string, error) {
	entries, err := os.ReadDir(PlansPath(root))
	if err != nil {
		if os.IsNotExist(err) {
			return baseName, nil
		}
		return "", fmt.Errorf("failed to read plans directory: %w", err)
	}

	// folder format is <id>-<name>
	existing := make(map[string]bool)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if parts := strings.SplitN(entry.Name(), "-", 2); len(parts) == 2 {
			existing[parts[1]] = true
		}
	}

	if !existing[baseName] {
		return baseName, nil
	}
	for suffix := 2; ; suffix++ {
		candidate := fmt.Sprintf("%s-%d", baseName, suffix)
		if !existing[candidate] {
			return candidate, nil
		}
	}
}

// CreatePlanFolder creates .planfirst/plans/<id>-<name>/ containing plan.json,
// the raw markdown the plan was extracted from, and an empty progress log.
// Returns the folder path.
func CreatePlanFolder(root, name string, p *Plan, markdown string) (string, error) {
	folderPath := filepath.Join(PlansPath(root), FolderName(p, name))

	if err := os.MkdirAll(folderPath, 0755); err != nil {
		return "", fmt.Errorf("failed to create plan folder: %w", err)
	}

	if err := SavePlan(folderPath, p); err != nil {
		return "", err
	}

	mdPath := filepath.Join(folderPath, markdownFileName)
	if err := os.WriteFile(mdPath, []byte(markdown), 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", markdownFileName, err)
	}

	progressLogPath := filepath.Join(folderPath, progressLogFileName)
	if err := os.WriteFile(progressLogPath, []byte{}, 0644); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", progressLogFileName, err)
	}

	return folderPath, nil
}

// Summary is the listing view of a stored plan.
type Summary struct {
	ID         string
	Title      string
	Folder     string
	Status     Status
	PhaseCount int
	TaskCount  int
	Completed  int // completed phases
}

// ListPlans reads every plan.json under the plans directory. Folders that do
// not contain a readable plan are skipped. Results are sorted newest first.
func ListPlans(root string) ([]Summary, error) {
	plansPath := PlansPath(root)

	entries, err := os.ReadDir(plansPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read plans directory: %w", err)
	}

	type withTime struct {
		Summary
		unix int64
	}
	var items []withTime
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		folder := filepath.Join(plansPath, entry.Name())
		p, err := LoadPlan(folder)
		if err != nil {
			continue
		}

		completed := 0
		for _, ph := range p.Phases {
			if ph.Status == PhaseStatusCompleted {
				completed++
			}
		}
		items = append(items, withTime{
			Summary: Summary{
				ID:         p.ID,
				Title:      p.Title,
				Folder:     folder,
				Status:     p.Status,
				PhaseCount: len(p.Phases),
				TaskCount:  len(p.AllTasks()),
				Completed:  completed,
			},
			unix: p.Timestamp.UnixNano(),
		})
	}

	sort.SliceStable(items, func(i, j int) bool { return items[i].unix > items[j].unix })

	summaries := make([]Summary, len(items))
	for i, it := range items {
		summaries[i] = it.Summary
	}
	return summaries, nil
}

// FindPlanFolder resolves a plan reference to its folder. The reference can
// be the full folder name, the plan id, or the name suffix.
func FindPlanFolder(root, ref string) (string, error) {
	plansPath := PlansPath(root)

	entries, err := os.ReadDir(plansPath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("no plans found. Run 'planfirst plan create \"<request>\"' first")
		}
		return "", fmt.Errorf("failed to read plans directory: %w", err)
	}

	var matches []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		name := entry.Name()
		switch {
		case name == ref:
			return filepath.Join(plansPath, name), nil
		case strings.HasPrefix(name, ref+"-"), strings.HasSuffix(name, "-"+ref):
			matches = append(matches, name)
		}
	}

	if len(matches) == 0 {
		return "", fmt.Errorf("plan not found: %s", ref)
	}
	if len(matches) > 1 {
		return "", fmt.Errorf("multiple plans match '%s': %v", ref, matches)
	}
	return filepath.Join(plansPath, matches[0]), nil
}

// LoadPlan reads, parses and validates plan.json from a plan directory.
func LoadPlan(planDir string) (*Plan, error) {
	data, err := os.ReadFile(filepath.Join(planDir, planFileName))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", planFileName, err)
	}

	var p Plan
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", planFileName, err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// LoadMarkdown returns the raw markdown saved alongside a plan.
func LoadMarkdown(planDir string) (string, error) {
	data, err := os.ReadFile(filepath.Join(planDir, markdownFileName))
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", markdownFileName, err)
	}
	return string(data), nil
}

// SavePlan atomically writes plan.json to the plan directory.
func SavePlan(planDir string, p *Plan) error {
	planPath := filepath.Join(planDir, planFileName)
	tmpPath := fmt.Sprintf("%s.tmp.%d", planPath, os.Getpid())

	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal plan: %w", err)
	}

	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	if err := os.Rename(tmpPath, planPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}
