package solver

import (
	"fmt"
	"strconv"
	"strings"
)

// Part is a single slot rewrite: reduce (or shut down) one machine's
// weekday-or-weekend pattern for one week, from one code to another. Δ is
// the cost-improvement of making that change — positive means cheaper.
type Part struct {
	Machine int
	Week    int
	Side    Side
	From    int
	To      int
	Delta   float64
}

// newPart snapshots the current code at (machine, week, side) and computes
// Δ against the unit-cost table, recording the requested target code.
func newPart(s *State, machine, week int, side Side, to int) Part {
	mach := &s.Machines[machine]
	from := mach.Pattern(side)[week]
	cost := mach.UnitCost(side)
	return Part{
		Machine: machine,
		Week:    week,
		Side:    side,
		From:    from,
		To:      to,
		Delta:   cost[from-1] - cost[to-1],
	}
}

// weekDay builds a Part reducing machine m's weekday pattern at week w to
// newCode. newCode is always currentCode-1 (single-step reduction) or 1
// (shutdown) — move generators never jump further than that.
func weekDay(s *State, m, w, newCode int) Part {
	return newPart(s, m, w, WeekDay, newCode)
}

// weekEnd is the weekend-side counterpart of weekDay.
func weekEnd(s *State, m, w, newCode int) Part {
	return newPart(s, m, w, WeekEnd, newCode)
}

// apply writes Part.To into the indexed slot.
func (p Part) apply(s *State) {
	s.Machines[p.Machine].Pattern(p.Side)[p.Week] = p.To
}

// undo writes Part.From back into the indexed slot. apply and undo must be
// exact inverses; applying or undoing the same Part twice is undefined.
func (p Part) undo(s *State) {
	s.Machines[p.Machine].Pattern(p.Side)[p.Week] = p.From
}

// identity returns this part's contribution to a Move's identity string.
func (p Part) identity() string {
	var b strings.Builder
	b.WriteString(strconv.Itoa(p.Machine))
	b.WriteByte('-')
	b.WriteString(strconv.Itoa(p.Week))
	b.WriteByte('-')
	b.WriteString(strconv.Itoa(int(p.Side)))
	b.WriteByte('-')
	b.WriteString(strconv.Itoa(p.From))
	b.WriteByte('-')
	b.WriteString(strconv.Itoa(p.To))
	return b.String()
}

// Known move kinds. KindReduceGlobal names only the fleet-wide compound
// (§4.2f): the controller treats its revert specially, setting the sticky
// reduceGlobalFailed flag (§4.3). The per-machine reduction (§4.2a) is a
// different move and gets its own per-machine Kind via reduceGlobalKind,
// so reverting it never trips that flag.
const (
	KindReduceGlobal        = "ReduceGlobal"
	KindReduceGlobalWeekDay = "ReduceGlobalWeekDay"
	KindReduceGlobalWeekEnd = "ReduceGlobalWeekEnd"
	KindImproveSplit        = "ImproveSplit"
	KindCreateSplit         = "CreateSplit"
	KindShutdown            = "Shutdown"
)

// reduceGlobalKind names the per-machine ReduceGlobal candidate (§4.2a):
// "ReduceGlobal<m>", distinct from the bare KindReduceGlobal the fleet-wide
// compound (§4.2f) uses.
func reduceGlobalKind(m int) string {
	return fmt.Sprintf("%s%d", KindReduceGlobal, m)
}

// Move is an ordered, atomically-applied group of Parts plus a derived
// stable identity. Moves with identical identity are the same candidate.
type Move struct {
	Kind  string
	Parts []Part
}

// NewMove builds a Move from parts appended in a fixed scan order —
// generators never shuffle, so Identity is deterministic.
func NewMove(kind string, parts []Part) Move {
	return Move{Kind: kind, Parts: parts}
}

// Identity concatenates each part's "machine-week-side-from-to", separated
// by "_". It is the blacklist key.
func (mv Move) Identity() string {
	ids := make([]string, len(mv.Parts))
	for i, p := range mv.Parts {
		ids[i] = p.identity()
	}
	return strings.Join(ids, "_")
}

// Delta is the aggregate cost-improvement Σ part.Delta.
func (mv Move) Delta() float64 {
	total := 0.0
	for _, p := range mv.Parts {
		total += p.Delta
	}
	return total
}

// Apply applies every part in order.
func (mv Move) Apply(s *State) {
	for _, p := range mv.Parts {
		p.apply(s)
	}
}

// Undo undoes every part in reverse order. Order does not matter for correctness
// here since parts of one Move never touch the same slot twice, but
// reversing keeps the intuition of "undo is apply run backwards".
func (mv Move) Undo(s *State) {
	for i := len(mv.Parts) - 1; i >= 0; i-- {
		mv.Parts[i].undo(s)
	}
}

// undoPartsForWeek undoes only the parts of mv that touch the given
// machine/week pair, returning the parts that were kept (for the
// delay-repair partial-revert variant, spec §4.3).
func (mv Move) undoPartsForWeek(s *State, machine, week int) (kept []Part) {
	for _, p := range mv.Parts {
		if p.Machine == machine && p.Week == week {
			p.undo(s)
		} else {
			kept = append(kept, p)
		}
	}
	return kept
}

func (mv Move) String() string {
	return fmt.Sprintf("%s[%s](Δ=%.4f)", mv.Kind, mv.Identity(), mv.Delta())
}
