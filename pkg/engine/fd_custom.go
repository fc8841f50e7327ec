package engine

// fd_custom.go: custom constraint interfaces for FDStore

// CustomConstraint represents a user-defined constraint that can propagate
type CustomConstraint interface {
	// Variables returns the list of variables this constraint involves
	Variables() []*FDVar

	// Propagate performs constraint propagation, potentially narrowing domains
	// Returns true if any domain was changed, false otherwise
	// If the constraint becomes inconsistent, returns an error
	Propagate(store *FDStore) (bool, error)

	// IsSatisfied returns true if the constraint is satisfied given current domains
	// This is used for checking consistency during search
	IsSatisfied() bool
}

// AddCustomConstraint adds a user-defined custom constraint to the store
func (s *FDStore) AddCustomConstraint(constraint CustomConstraint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if constraint == nil {
		return ErrInvalidArgument
	}

	// Initialize custom constraints slice if needed
	if s.customConstraints == nil {
		s.customConstraints = make([]CustomConstraint, 0)
	}

	// Add the constraint
	s.customConstraints = append(s.customConstraints, constraint)

	// Perform initial propagation
	changed, err := constraint.Propagate(s)
	if err != nil {
		return err
	}

	// If domains changed, enqueue all variables for further propagation
	if changed {
		vars := constraint.Variables()
		for _, v := range vars {
			s.enqueue(v.ID)
		}
		if s.monitor != nil {
			s.monitor.RecordConstraint()
		}
	}

	return s.propagateLocked()
}

