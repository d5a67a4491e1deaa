package solver

// Thresholds holds the load-ratio cutoffs that gate each move family. The
// defaults come from spec §4.2 and are stable across the pack; a tuning
// file (internal/config) may override them.
type Thresholds struct {
	// ReduceGlobalLoad gates ReduceGlobal/ReduceGlobalWeekDay/WeekEnd: the
	// mean load over the operating prefix must not exceed this to reduce.
	ReduceGlobalLoad float64
	// ImproveSplit gates ImproveSplit: the mean load over a candidate run
	// must not exceed this.
	ImproveSplit float64
	// CreateSplit gates CreateSplit: the running mean load over the
	// extending suffix must not exceed this.
	CreateSplit float64
}

// DefaultThresholds returns the constants named in spec §4.2.
func DefaultThresholds() Thresholds {
	return Thresholds{
		ReduceGlobalLoad: 0.6,
		ImproveSplit:     0.9,
		CreateSplit:      0.4,
	}
}

// Generator enumerates candidate moves from the current state (spec §4.2,
// C4). It holds no mutable state of its own — interactionIndex, N,
// maxChanges and reduceGlobalFailed are supplied by the controller (C5)
// each round.
type Generator struct {
	Thresholds Thresholds
}

// NewGenerator returns a Generator configured with the given thresholds.
func NewGenerator(t Thresholds) *Generator {
	return &Generator{Thresholds: t}
}

// run is a maximal span of equal pattern code within [0, last].
type run struct {
	start, end, code int
}

// runs partitions pattern[0..last] into maximal runs of equal code.
func runs(pattern []int, last int) []run {
	if last < 0 {
		return nil
	}
	var out []run
	start := 0
	for w := 1; w <= last; w++ {
		if pattern[w] != pattern[start] {
			out = append(out, run{start: start, end: w - 1, code: pattern[start]})
			start = w
		}
	}
	out = append(out, run{start: start, end: last, code: pattern[start]})
	return out
}

// fits reports whether applying mv to a scratch clone of s keeps the
// global change count within maxChanges, per spec §7: generators must
// reject budget-exceeding moves before emission.
func fits(s *State, mv Move, maxChanges int) bool {
	scratch := s.Clone()
	constraint := CombineConstraints(PatternRangeConstraint(), ChangeBudgetConstraint(maxChanges))
	return constraint(&scratch, mv)
}

// Generate enumerates every candidate move that passes its guard, in the
// fixed scan order the spec relies on for tie-breaking (§4.2: "on ties,
// generation order wins").
func (g *Generator) Generate(s *State, maxChanges, interactionIndex, n int, reduceGlobalFailed bool) []Move {
	var candidates []Move
	var reduceGlobalParts []Part

	for m := range s.Machines {
		mach := &s.Machines[m]
		lastWD := mach.LastOperating(WeekDay)
		lastWE := mach.LastOperating(WeekEnd)

		// (a) ReduceGlobal (per-machine, combined).
		if lastWD != -1 && lastWE != -1 &&
			mach.ConstantOn(WeekDay, lastWD) && mach.ConstantOn(WeekEnd, lastWE) &&
			(n == 300 || (mach.MeanLoad(lastWD) <= g.Thresholds.ReduceGlobalLoad && mach.MeanLoad(lastWE) <= g.Thresholds.ReduceGlobalLoad)) {
			last := lastWD
			if lastWE < last {
				last = lastWE
			}
			var parts []Part
			for w := 0; w <= last; w++ {
				if p := weekDay(s, m, w, mach.WeekDayPattern[w]-1); p.From != p.To {
					parts = append(parts, p)
				}
				if p := weekEnd(s, m, w, mach.WeekEndPattern[w]-1); p.From != p.To {
					parts = append(parts, p)
				}
			}
			if len(parts) > 0 {
				mv := NewMove(reduceGlobalKind(m), parts)
				if fits(s, mv, maxChanges) {
					candidates = append(candidates, mv)
					reduceGlobalParts = append(reduceGlobalParts, parts...)
				}
			}
		}

		// (b) ReduceGlobalWeekDay.
		if lastWD != -1 && mach.ConstantOn(WeekDay, lastWD) &&
			(n == 300 || mach.MeanLoad(lastWD) <= g.Thresholds.ReduceGlobalLoad) {
			var parts []Part
			for w := 0; w <= lastWD; w++ {
				if p := weekDay(s, m, w, mach.WeekDayPattern[w]-1); p.From != p.To {
					parts = append(parts, p)
				}
			}
			if len(parts) > 0 {
				mv := NewMove(KindReduceGlobalWeekDay, parts)
				if fits(s, mv, maxChanges) {
					candidates = append(candidates, mv)
				}
			}
		}

		// (c) ReduceGlobalWeekEnd.
		if lastWE != -1 && mach.ConstantOn(WeekEnd, lastWE) &&
			(n == 300 || mach.MeanLoad(lastWE) <= g.Thresholds.ReduceGlobalLoad) {
			var parts []Part
			for w := 0; w <= lastWE; w++ {
				if p := weekEnd(s, m, w, mach.WeekEndPattern[w]-1); p.From != p.To {
					parts = append(parts, p)
				}
			}
			if len(parts) > 0 {
				mv := NewMove(KindReduceGlobalWeekEnd, parts)
				if fits(s, mv, maxChanges) {
					candidates = append(candidates, mv)
				}
			}
		}

		// (d) ImproveSplit, one side at a time.
		for _, side := range []Side{WeekDay, WeekEnd} {
			if mv, ok := g.improveSplit(s, m, side); ok && fits(s, mv, maxChanges) {
				candidates = append(candidates, mv)
			}
		}

		// (e) CreateSplit, one side at a time.
		for _, side := range []Side{WeekDay, WeekEnd} {
			if mv, ok := g.createSplit(s, m, side); ok && fits(s, mv, maxChanges) {
				candidates = append(candidates, mv)
			}
		}
	}

	// (f) ReduceGlobal, fleet-wide compound. Kind is the bare
	// KindReduceGlobal, distinct from each per-machine candidate's
	// reduceGlobalKind(m), so the controller's sticky-failure gate applies
	// only to this compound and never to an ordinary per-machine reduction.
	if n != 300 && !reduceGlobalFailed && len(reduceGlobalParts) > 0 {
		mv := NewMove(KindReduceGlobal, reduceGlobalParts)
		if fits(s, mv, maxChanges) {
			candidates = append(candidates, mv)
		}
	}

	// (g) Shutdown, terminal round only.
	if interactionIndex == n {
		candidates = append(candidates, g.shutdown(s, maxChanges)...)
	}

	return candidates
}

// improveSplit scans runs of the operating prefix from last to first and
// returns the first run with no shut-down week and mean load within
// threshold, as a candidate reducing that run by one code.
func (g *Generator) improveSplit(s *State, m int, side Side) (Move, bool) {
	mach := &s.Machines[m]
	last := mach.LastOperating(side)
	if last < 0 {
		return Move{}, false
	}
	load := mach.Load
	for _, r := range reverse(runs(mach.Pattern(side), last)) {
		if r.code == MinPatternCode {
			continue
		}
		sum := 0.0
		for w := r.start; w <= r.end; w++ {
			sum += load[w]
		}
		mean := sum / float64(r.end-r.start+1)
		if mean > g.Thresholds.ImproveSplit {
			continue
		}
		var parts []Part
		for w := r.start; w <= r.end; w++ {
			var p Part
			if side == WeekDay {
				p = weekDay(s, m, w, r.code-1)
			} else {
				p = weekEnd(s, m, w, r.code-1)
			}
			parts = append(parts, p)
		}
		return NewMove(KindImproveSplit, parts), true
	}
	return Move{}, false
}

func reverse(rs []run) []run {
	out := make([]run, len(rs))
	for i, r := range rs {
		out[len(rs)-1-i] = r
	}
	return out
}

// createSplit extends a suffix backward from the last operating week while
// the running mean load stays within threshold, reducing every included
// week by one code. Resolves the "CreateSplit divisor" open question
// (spec §9) by always using this side's own last-operating-week as the
// denominator, not the other side's.
func (g *Generator) createSplit(s *State, m int, side Side) (Move, bool) {
	mach := &s.Machines[m]
	last := mach.LastOperating(side)
	if last < 0 {
		return Move{}, false
	}
	load := mach.Load
	pattern := mach.Pattern(side)

	start := last
	sum := load[last]
	if sum > g.Thresholds.CreateSplit {
		return Move{}, false
	}
	for start > 0 {
		candidateSum := sum + load[start-1]
		count := float64(last - (start - 1) + 1)
		if candidateSum/count > g.Thresholds.CreateSplit {
			break
		}
		start--
		sum = candidateSum
	}

	var parts []Part
	for w := start; w <= last; w++ {
		if pattern[w] == MinPatternCode {
			continue
		}
		var p Part
		if side == WeekDay {
			p = weekDay(s, m, w, pattern[w]-1)
		} else {
			p = weekEnd(s, m, w, pattern[w]-1)
		}
		parts = append(parts, p)
	}
	if len(parts) == 0 {
		return Move{}, false
	}
	return NewMove(KindCreateSplit, parts), true
}

// shutdown builds the terminal Shutdown candidates: for each machine with
// remaining change budget, walk backward over trailing zero-load weeks and
// set them to code 1, spending the shared global budget machine by
// machine in index order.
func (g *Generator) shutdown(s *State, maxChanges int) []Move {
	scratch := s.Clone()
	var all []Part

	for m := range s.Machines {
		if maxChanges-scratch.ChangeCount() <= 0 {
			break
		}
		mach := &scratch.Machines[m]
		last := mach.LastOperating(WeekDay)
		if we := mach.LastOperating(WeekEnd); we > last {
			last = we
		}
		w := last
		for w >= 0 && mach.Load[w] == 0 {
			w--
		}
		start := w + 1
		if start > last {
			continue
		}

		var partsAll, partsWD, partsWE []Part
		for wk := start; wk <= last; wk++ {
			if p := weekDay(&scratch, m, wk, MinPatternCode); p.From != p.To {
				partsAll = append(partsAll, p)
				partsWD = append(partsWD, p)
			}
			if p := weekEnd(&scratch, m, wk, MinPatternCode); p.From != p.To {
				partsAll = append(partsAll, p)
				partsWE = append(partsWE, p)
			}
		}
		if len(partsAll) == 0 {
			continue
		}

		remaining := maxChanges - scratch.ChangeCount()
		var chosen []Part
		if remaining == 1 {
			wdDelta, weDelta := NewMove("", partsWD).Delta(), NewMove("", partsWE).Delta()
			if len(partsWD) > 0 && (len(partsWE) == 0 || wdDelta >= weDelta) {
				chosen = partsWD
			} else {
				chosen = partsWE
			}
		} else {
			chosen = partsAll
		}
		if len(chosen) == 0 {
			continue
		}

		mv := NewMove(KindShutdown, chosen)
		if !fits(&scratch, mv, maxChanges) {
			continue
		}
		mv.Apply(&scratch)
		all = append(all, chosen...)
	}

	if len(all) == 0 {
		return nil
	}
	return []Move{NewMove(KindShutdown, all)}
}
