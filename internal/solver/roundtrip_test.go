package solver

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

// roundtripFixtures covers a spread of states likely to produce the
// non-terminal move families (ReduceGlobal and its per-side variants,
// ImproveSplit, CreateSplit), so the property below exercises more than one
// Part shape. Shutdown is only generated on the final interaction and is
// covered by TestShutdownApplyUndoIsExactInverse.
func roundtripFixtures() []State {
	return []State{
		{Machines: []Machine{
			uniformCostMachine([]int{9, 9, 9, 9}, []int{9, 9, 9, 9}, []float64{0.1, 0.1, 0.1, 0.1}, []int{0, 0, 0, 0}),
		}},
		{Machines: []Machine{
			uniformCostMachine([]int{9, 8, 7, 6}, []int{9, 9, 9, 9}, []float64{0.2, 0.3, 0.2, 0.1}, []int{0, 0, 0, 0}),
		}},
		{Machines: []Machine{
			uniformCostMachine([]int{9, 9, 9, 9}, []int{9, 9, 9, 9}, []float64{0.5, 0.3, 0, 0}, []int{0, 0, 0, 0}),
		}},
	}
}

// TestGeneratedMovesApplyUndoIsExactInverse checks, for every candidate move
// Generate() proposes across a spread of fixtures, that applying then
// undoing it reproduces the original state exactly (spec §3: undo must be
// the precise inverse of apply, not an approximation).
func TestGeneratedMovesApplyUndoIsExactInverse(t *testing.T) {
	g := NewGenerator(DefaultThresholds())
	for i, fixture := range roundtripFixtures() {
		candidates := g.Generate(&fixture, 1000, 2, 5, false)
		for _, mv := range candidates {
			before := fixture.Clone()

			mv.Apply(&fixture)
			mv.Undo(&fixture)

			if diff := cmp.Diff(before, fixture); diff != "" {
				t.Errorf("fixture %d, move %s: state after apply+undo differs from original (-want +got):\n%s", i, mv.Identity(), diff)
			}
		}
	}
}

// TestShutdownApplyUndoIsExactInverse exercises the same property against
// the terminal Shutdown candidate, which is built from a scratch clone
// rather than the live state (unlike the other families in Generate).
func TestShutdownApplyUndoIsExactInverse(t *testing.T) {
	s := State{Machines: []Machine{
		uniformCostMachine([]int{9, 9, 9, 9}, []int{9, 9, 9, 9}, []float64{0.5, 0.3, 0, 0}, []int{0, 0, 0, 0}),
	}}
	g := NewGenerator(DefaultThresholds())
	before := s.Clone()

	candidates := g.Generate(&s, 1000, 5, 5, false)
	var shutdowns []Move
	for _, mv := range candidates {
		if mv.Kind == KindShutdown {
			shutdowns = append(shutdowns, mv)
		}
	}
	if len(shutdowns) == 0 {
		t.Fatal("expected at least one Shutdown candidate on the final round")
	}

	for _, mv := range shutdowns {
		mv.Apply(&s)
		mv.Undo(&s)
	}

	if diff := cmp.Diff(before, s); diff != "" {
		t.Errorf("state after Shutdown apply+undo differs from original (-want +got):\n%s", diff)
	}
}
