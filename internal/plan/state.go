package plan

// FirstPendingPhase returns the index of the first phase that has not
// completed. Failed phases are reset to pending so a new run retries them.
// Returns -1 if every phase is completed.
func (p *Plan) FirstPendingPhase() int {
	for i := range p.Phases {
		switch p.Phases[i].Status {
		case PhaseStatusPending, PhaseStatusInProgress:
			return i
		case PhaseStatusFailed:
			p.Phases[i].Status = PhaseStatusPending
			return i
		}
	}
	return -1
}

// AllPhasesCompleted returns true if every phase has status completed.
func (p *Plan) AllPhasesCompleted() bool {
	for i := range p.Phases {
		if p.Phases[i].Status != PhaseStatusCompleted {
			return false
		}
	}
	return true
}

// DependenciesMet reports whether every phase the given phase depends on
// has completed.
func (p *Plan) DependenciesMet(ph *Phase) bool {
	for _, dep := range ph.Dependencies {
		for i := range p.Phases {
			if p.Phases[i].ID == dep && p.Phases[i].Status != PhaseStatusCompleted {
				return false
			}
		}
	}
	return true
}
