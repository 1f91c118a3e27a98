package plan

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Validate checks field-level constraints and the structural invariants of
// a plan: contiguous 1-based phase order, phase-<n> ids, a linear dependency
// chain, and at most one task per file within a phase.
func (p *Plan) Validate() error {
	if err := validate.Struct(p); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("invalid plan: %s failed %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value())
		}
		return fmt.Errorf("invalid plan: %w", err)
	}

	for i, ph := range p.Phases {
		wantOrder := i + 1
		if ph.Order != wantOrder {
			return fmt.Errorf("phase %d has order %d, want %d", i, ph.Order, wantOrder)
		}
		if want := fmt.Sprintf("phase-%d", wantOrder); ph.ID != want {
			return fmt.Errorf("phase %d has id %q, want %q", wantOrder, ph.ID, want)
		}
		switch {
		case wantOrder == 1 && len(ph.Dependencies) != 0:
			return fmt.Errorf("phase 1 must not have dependencies, got %v", ph.Dependencies)
		case wantOrder > 1 && (len(ph.Dependencies) != 1 || ph.Dependencies[0] != p.Phases[i-1].ID):
			return fmt.Errorf("phase %d must depend only on %s, got %v", wantOrder, p.Phases[i-1].ID, ph.Dependencies)
		}

		seen := make(map[string]bool, len(ph.Tasks))
		for _, t := range ph.Tasks {
			if seen[t.File] {
				return fmt.Errorf("phase %d names file %q in more than one task", wantOrder, t.File)
			}
			seen[t.File] = true
		}
	}
	return nil
}
