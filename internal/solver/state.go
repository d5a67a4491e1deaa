package solver

// State is the ordered sequence of machines plus the judge's feedback
// scalars for the current round (spec §3, C2).
type State struct {
	Machines []Machine

	// Score is the judge's own cost-denominated score; higher is better.
	Score int64
	// NoViolations is the judge-reported violation count.
	NoViolations int
	// NoDelays is Σ machine.delay[*], mirrored here for convenience; it is
	// recomputed from the machines' Delay arrays after every feedback block.
	NoDelays int
}

// NewState allocates M machines for a horizon of w weeks, all sharing no
// state beyond their independently-provided cost tables.
func NewState(m int, w int, weekDayUnitCost, weekEndUnitCost [][NumPatternCodes]float64) State {
	machines := make([]Machine, m)
	for i := range machines {
		machines[i] = NewMachine(w, weekDayUnitCost[i], weekEndUnitCost[i])
	}
	return State{Machines: machines}
}

// ChangeCount returns the global change count across all machines and both
// sides (spec invariant 2).
func (s *State) ChangeCount() int {
	total := 0
	for i := range s.Machines {
		total += s.Machines[i].ChangeCount()
	}
	return total
}

// RecomputeNoDelays sums every machine's Delay array into NoDelays.
// judgeio.Adapter.ReadFeedback computes the same sum inline as it reads a
// feedback block and does not call this method.
func (s *State) RecomputeNoDelays() {
	total := 0
	for i := range s.Machines {
		for _, d := range s.Machines[i].Delay {
			total += d
		}
	}
	s.NoDelays = total
}

// Horizon returns the number of weeks W, as inferred from machine 0's
// pattern length (all machines share the same horizon).
func (s *State) Horizon() int {
	if len(s.Machines) == 0 {
		return 0
	}
	return len(s.Machines[0].WeekDayPattern)
}
