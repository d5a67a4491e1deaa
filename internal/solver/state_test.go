package solver

import "testing"

func TestNewState(t *testing.T) {
	wd := [][NumPatternCodes]float64{uniformCost(), uniformCost()}
	we := [][NumPatternCodes]float64{uniformCost(), uniformCost()}
	s := NewState(2, 3, wd, we)
	if len(s.Machines) != 2 {
		t.Fatalf("len(Machines) = %d, want 2", len(s.Machines))
	}
	if s.Horizon() != 3 {
		t.Errorf("Horizon() = %d, want 3", s.Horizon())
	}
	for i := range s.Machines {
		if len(s.Machines[i].WeekDayPattern) != 3 {
			t.Errorf("machine %d: WeekDayPattern length = %d, want 3", i, len(s.Machines[i].WeekDayPattern))
		}
	}
}

func TestStateChangeCount(t *testing.T) {
	s := State{Machines: []Machine{
		{WeekDayPattern: []int{9, 5, 5}, WeekEndPattern: []int{9, 9, 9}},
		{WeekDayPattern: []int{9, 9, 9}, WeekEndPattern: []int{9, 8, 7}},
	}}
	if got := s.ChangeCount(); got != 3 {
		t.Errorf("ChangeCount() = %d, want 3", got)
	}
}

func TestRecomputeNoDelays(t *testing.T) {
	s := State{Machines: []Machine{
		{Delay: []int{0, 1, 2}},
		{Delay: []int{1, 0, 0}},
	}}
	s.RecomputeNoDelays()
	if s.NoDelays != 4 {
		t.Errorf("NoDelays = %d, want 4", s.NoDelays)
	}
}

func TestStateCloneIndependence(t *testing.T) {
	wd := [][NumPatternCodes]float64{uniformCost()}
	we := [][NumPatternCodes]float64{uniformCost()}
	s := NewState(1, 2, wd, we)
	clone := s.Clone()
	clone.Machines[0].WeekDayPattern[0] = 1
	if s.Machines[0].WeekDayPattern[0] == 1 {
		t.Error("mutating cloned state affected the original")
	}
}
