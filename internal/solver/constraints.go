package solver

// Constraint reports whether a prospective move, if applied, would still
// satisfy the solver's structural invariants. Generators run these guards
// before emitting a candidate (spec §4.2, §7: "generators must reject such
// moves before emission; no runtime recovery").
type Constraint func(s *State, mv Move) bool

// PatternRangeConstraint enforces invariant 1: every pattern slot touched
// by mv must land in [MinPatternCode, MaxPatternCode].
func PatternRangeConstraint() Constraint {
	return func(_ *State, mv Move) bool {
		for _, p := range mv.Parts {
			if p.To < MinPatternCode || p.To > MaxPatternCode {
				return false
			}
		}
		return true
	}
}

// ChangeBudgetConstraint enforces invariant 2: applying mv must not push
// the global change count above maxChanges. It simulates the apply,
// measures, and reverts — callers must not interleave other mutations
// between the check and a real Apply.
func ChangeBudgetConstraint(maxChanges int) Constraint {
	return func(s *State, mv Move) bool {
		mv.Apply(s)
		remaining := remainingChanges(s, maxChanges)
		mv.Undo(s)
		return remaining >= 0
	}
}

// CombineConstraints ANDs together any number of constraints.
func CombineConstraints(constraints ...Constraint) Constraint {
	return func(s *State, mv Move) bool {
		for _, c := range constraints {
			if !c(s, mv) {
				return false
			}
		}
		return true
	}
}

// remainingChanges returns maxChanges minus the state's current global
// change count — the budget available before any further move is applied.
func remainingChanges(s *State, maxChanges int) int {
	return maxChanges - s.ChangeCount()
}
