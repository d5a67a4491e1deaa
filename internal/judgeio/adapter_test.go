package judgeio

import (
	"bytes"
	"strings"
	"testing"

	"github.com/jiro4989/calendar-solver/internal/solver"
)

func twoMachineHeader() string {
	var b strings.Builder
	b.WriteString("2 2 10 3\n")
	for m := 0; m < 2; m++ {
		for code := 1; code <= 9; code++ {
			b.WriteString("1 1 ")
		}
		b.WriteString("\n")
	}
	return b.String()
}

func TestReadHeader(t *testing.T) {
	a := New(strings.NewReader(twoMachineHeader()), &bytes.Buffer{})
	h, err := a.ReadHeader()
	if err != nil {
		t.Fatalf("ReadHeader() error = %v", err)
	}
	if h.W != 2 || h.M != 2 || h.MaxChanges != 10 || h.N != 3 {
		t.Fatalf("header = %+v, want W=2 M=2 maxChanges=10 N=3", h)
	}
	if len(h.WeekDayCost) != 2 || h.WeekDayCost[0][0] != 1 {
		t.Errorf("WeekDayCost = %+v", h.WeekDayCost)
	}
}

func TestReadHeaderTruncatedInput(t *testing.T) {
	a := New(strings.NewReader("2 2 10"), &bytes.Buffer{})
	if _, err := a.ReadHeader(); err == nil {
		t.Error("ReadHeader() on truncated input should return an error")
	}
}

func TestHeaderNewState(t *testing.T) {
	a := New(strings.NewReader(twoMachineHeader()), &bytes.Buffer{})
	h, err := a.ReadHeader()
	if err != nil {
		t.Fatalf("ReadHeader() error = %v", err)
	}
	s := h.NewState()
	if len(s.Machines) != 2 {
		t.Fatalf("len(Machines) = %d, want 2", len(s.Machines))
	}
	if s.Horizon() != 2 {
		t.Errorf("Horizon() = %d, want 2", s.Horizon())
	}
	for _, m := range s.Machines {
		for _, code := range m.WeekDayPattern {
			if code != solver.MaxPatternCode {
				t.Errorf("initial pattern = %d, want %d", code, solver.MaxPatternCode)
			}
		}
	}
}

func TestReadFeedback(t *testing.T) {
	wd := [][solver.NumPatternCodes]float64{{}, {}}
	we := [][solver.NumPatternCodes]float64{{}, {}}
	s := solver.NewState(2, 2, wd, we)

	feedback := "42 0 3\n" +
		"0.5 1 0.25 0\n" + // machine 0: week0 (load,delay), week1 (load,delay)
		"0.1 2 0.9 0\n" // machine 1: week0, week1

	a := New(strings.NewReader(feedback), &bytes.Buffer{})
	if err := a.ReadFeedback(&s); err != nil {
		t.Fatalf("ReadFeedback() error = %v", err)
	}

	if s.Score != 42 || s.NoViolations != 0 {
		t.Errorf("Score=%d NoViolations=%d, want 42, 0", s.Score, s.NoViolations)
	}
	if s.NoDelays != 3 {
		t.Errorf("NoDelays = %d, want 3 (recomputed from per-week delays)", s.NoDelays)
	}
	if s.Machines[0].Load[0] != 0.5 || s.Machines[0].Delay[0] != 1 {
		t.Errorf("machine 0 week 0 = (%v,%v), want (0.5,1)", s.Machines[0].Load[0], s.Machines[0].Delay[0])
	}
	if s.Machines[1].Load[1] != 0.9 || s.Machines[1].Delay[1] != 0 {
		t.Errorf("machine 1 week 1 = (%v,%v), want (0.9,0)", s.Machines[1].Load[1], s.Machines[1].Delay[1])
	}
}

func TestEmitGridInitialAllNines(t *testing.T) {
	wd := [][solver.NumPatternCodes]float64{{}}
	we := [][solver.NumPatternCodes]float64{{}}
	s := solver.NewState(1, 3, wd, we)

	var out bytes.Buffer
	a := New(strings.NewReader(""), &out)
	if err := a.EmitGrid(&s); err != nil {
		t.Fatalf("EmitGrid() error = %v", err)
	}
	if got := out.String(); got != "999999\n" {
		t.Errorf("EmitGrid() = %q, want %q", got, "999999\n")
	}
}
