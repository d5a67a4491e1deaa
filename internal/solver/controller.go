package solver

import "golang.org/x/exp/rand"

// Controller drives the request/feedback cycle (spec §4.3, C5): given the
// state as updated by the latest judge feedback, it decides whether to
// revert the previous round's move, asks the Generator for candidates, and
// applies the best-scoring one.
type Controller struct {
	Generator  *Generator
	N          int
	MaxChanges int

	// Repair enables the optional delay-repair variant (spec §4.3): when a
	// small number of delays appear, try undoing only the offending
	// week's parts of the last move instead of a full revert.
	Repair bool

	// Rand, if non-nil, breaks exact Δ ties among candidates by random
	// draw instead of generation order. The default (nil) always keeps
	// the deterministic first-max tie-break the spec requires; this is
	// strictly an opt-in fallback for reproducing judge runs with
	// --seed, never the path taken when callers leave it unset.
	Rand *rand.Rand

	BestScore          int64
	LastMove           *Move
	BadMoves           map[string]bool
	ReduceGlobalFailed bool
}

// NewController returns a Controller ready for the first round. Initial
// patterns are filled to MaxPatternCode by NewMachine/NewState, not here.
func NewController(gen *Generator, n, maxChanges int) *Controller {
	return &Controller{
		Generator:  gen,
		N:          n,
		MaxChanges: maxChanges,
		BadMoves:   make(map[string]bool),
	}
}

// NextGrid runs one controller round: it consumes the feedback already
// folded into s, accepts or reverts the previous move, then selects and
// applies the next one. interactionIndex is the 1-based index of the grid
// now being prepared (spec §4.2g: Shutdown fires when interactionIndex ==
// c.N, the last outgoing grid).
func (c *Controller) NextGrid(s *State, interactionIndex int) {
	if s.Score > c.BestScore {
		c.BestScore = s.Score
	}

	if c.LastMove != nil && (s.NoDelays > 0 || s.Score < c.BestScore) {
		repaired := false
		if c.Repair && s.NoDelays >= 1 && s.NoDelays <= 5 {
			repaired = c.attemptRepair(s, *c.LastMove)
		}
		if !repaired {
			c.LastMove.Undo(s)
			c.BadMoves[c.LastMove.Identity()] = true
			if c.LastMove.Kind == KindReduceGlobal {
				c.ReduceGlobalFailed = true
			}
		}
		c.LastMove = nil
	}

	candidates := c.Generator.Generate(s, c.MaxChanges, interactionIndex, c.N, c.ReduceGlobalFailed)

	var tied []int
	var bestDelta float64
	for i, mv := range candidates {
		if c.BadMoves[mv.Identity()] {
			continue
		}
		d := mv.Delta()
		if d <= 0 {
			continue
		}
		switch {
		case len(tied) == 0 || d > bestDelta:
			tied = []int{i}
			bestDelta = d
		case d == bestDelta:
			tied = append(tied, i)
		}
	}

	if len(tied) == 0 {
		c.LastMove = nil
		return
	}
	best := tied[0]
	if c.Rand != nil && len(tied) > 1 {
		best = tied[c.Rand.Intn(len(tied))]
	}
	chosen := candidates[best]
	chosen.Apply(s)
	c.LastMove = &chosen
}

// delayedWeeks returns the distinct (machine, week) pairs touched by mv
// that the judge reported a delay for, in part order.
func delayedWeeks(s *State, mv Move) (weeks [][2]int) {
	seen := make(map[[2]int]bool)
	for _, p := range mv.Parts {
		if s.Machines[p.Machine].Delay[p.Week] > 0 {
			key := [2]int{p.Machine, p.Week}
			if !seen[key] {
				seen[key] = true
				weeks = append(weeks, key)
			}
		}
	}
	return weeks
}

// attemptRepair undoes only the parts of mv that touch a week with a
// reported delay, keeping the rest applied. It commits the partial undo
// to s and reports success only if the resulting global change count
// still fits the budget; otherwise s is left untouched and the caller
// falls back to a full revert.
func (c *Controller) attemptRepair(s *State, mv Move) bool {
	weeks := delayedWeeks(s, mv)

	scratch := s.Clone()
	scratchMv := mv
	for _, mw := range weeks {
		scratchMv.Parts = scratchMv.undoPartsForWeek(&scratch, mw[0], mw[1])
	}
	if scratch.ChangeCount() > c.MaxChanges {
		return false
	}

	for _, mw := range weeks {
		mv.Parts = mv.undoPartsForWeek(s, mw[0], mw[1])
	}
	return true
}
