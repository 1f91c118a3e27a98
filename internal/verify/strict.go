package verify

import (
	"context"

	"github.com/pablasso/planfirst/internal/plan"
)

// UnplannedChangeDetector finds changes to a file that its task did not
// plan. It runs in strict mode for every task whose file exists.
type UnplannedChangeDetector interface {
	DetectUnplannedChanges(ctx context.Context, root string, task plan.Task, content string) []Issue
}

// noUnplannedChanges is the default detector and reports nothing.
// TODO: diff against the git commit the plan was created at.
type noUnplannedChanges struct{}

func (noUnplannedChanges) DetectUnplannedChanges(context.Context, string, plan.Task, string) []Issue {
	return nil
}
