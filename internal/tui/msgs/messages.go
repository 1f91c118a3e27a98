// Package msgs defines shared message types for TUI view transitions.
package msgs

// GoToHomeMsg signals transition to the home view.
type GoToHomeMsg struct{}

// GoToPlanListMsg signals transition to the plan list view.
type GoToPlanListMsg struct{}

// OpenPlanMsg opens the detail view of the plan stored in Folder.
type OpenPlanMsg struct {
	Folder string
}

// VerifyPlanMsg starts a verification of the plan stored in Folder. Phase
// zero verifies every phase.
type VerifyPlanMsg struct {
	Folder string
	Phase  int
}
