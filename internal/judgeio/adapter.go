// Package judgeio implements the judge-facing line protocol (spec §4.4,
// §6, C6): a blocking request/response channel over stdin/stdout. It knows
// nothing about move generation or the hill-climb loop — it only parses
// and serializes.
package judgeio

import (
	"bufio"
	"fmt"
	"io"
	"strconv"

	"github.com/jiro4989/calendar-solver/internal/solver"
)

// Header is the one-time initialization block: horizon, fleet size, change
// budget, interaction count, and each machine's ascending-pattern-code unit
// cost table.
type Header struct {
	W, M, MaxChanges, N int
	WeekDayCost         [][solver.NumPatternCodes]float64
	WeekEndCost         [][solver.NumPatternCodes]float64
}

// Adapter reads the judge's header/feedback blocks and writes pattern
// grids. It holds no solver state of its own beyond the token scanner and
// writer.
type Adapter struct {
	sc  *bufio.Scanner
	out *bufio.Writer
}

// New wraps r/w as the judge channel. r is tokenized on whitespace, which
// matches the protocol's integer/real fields regardless of line breaks.
func New(r io.Reader, w io.Writer) *Adapter {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)
	sc.Split(bufio.ScanWords)
	return &Adapter{sc: sc, out: bufio.NewWriter(w)}
}

func (a *Adapter) token() (string, error) {
	if !a.sc.Scan() {
		if err := a.sc.Err(); err != nil {
			return "", fmt.Errorf("judgeio: reading token: %w", err)
		}
		return "", fmt.Errorf("judgeio: %w", io.ErrUnexpectedEOF)
	}
	return a.sc.Text(), nil
}

func (a *Adapter) int() (int, error) {
	t, err := a.token()
	if err != nil {
		return 0, err
	}
	v, err := strconv.Atoi(t)
	if err != nil {
		return 0, fmt.Errorf("judgeio: parsing int %q: %w", t, err)
	}
	return v, nil
}

func (a *Adapter) float() (float64, error) {
	t, err := a.token()
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseFloat(t, 64)
	if err != nil {
		return 0, fmt.Errorf("judgeio: parsing float %q: %w", t, err)
	}
	return v, nil
}

// ReadHeader parses the initialization block (spec §6): `W M maxChanges N`
// followed, for each machine, by 9 `(weekDayCost, weekEndCost)` pairs in
// ascending pattern-code order.
func (a *Adapter) ReadHeader() (Header, error) {
	var h Header
	var err error
	if h.W, err = a.int(); err != nil {
		return Header{}, err
	}
	if h.M, err = a.int(); err != nil {
		return Header{}, err
	}
	if h.MaxChanges, err = a.int(); err != nil {
		return Header{}, err
	}
	if h.N, err = a.int(); err != nil {
		return Header{}, err
	}

	h.WeekDayCost = make([][solver.NumPatternCodes]float64, h.M)
	h.WeekEndCost = make([][solver.NumPatternCodes]float64, h.M)
	for m := 0; m < h.M; m++ {
		for code := 0; code < solver.NumPatternCodes; code++ {
			wd, err := a.float()
			if err != nil {
				return Header{}, err
			}
			we, err := a.float()
			if err != nil {
				return Header{}, err
			}
			h.WeekDayCost[m][code] = wd
			h.WeekEndCost[m][code] = we
		}
	}
	return h, nil
}

// NewState builds the initial solver state from a parsed header.
func (h Header) NewState() solver.State {
	return solver.NewState(h.M, h.W, h.WeekDayCost, h.WeekEndCost)
}

// ReadFeedback parses one feedback block (spec §4.4, §6): `score
// noViolations noDelays` followed by M blocks of W `load delay` lines. It
// overwrites s's score scalars and every machine's load/delay arrays in
// place.
func (a *Adapter) ReadFeedback(s *solver.State) error {
	score, err := a.int()
	if err != nil {
		return err
	}
	noViolations, err := a.int()
	if err != nil {
		return err
	}
	noDelays, err := a.int()
	if err != nil {
		return err
	}
	s.Score = int64(score)
	s.NoViolations = noViolations

	total := 0
	for m := range s.Machines {
		mach := &s.Machines[m]
		for w := 0; w < len(mach.Load); w++ {
			load, err := a.float()
			if err != nil {
				return err
			}
			delay, err := a.int()
			if err != nil {
				return err
			}
			mach.Load[w] = load
			mach.Delay[w] = delay
			total += delay
		}
	}
	s.NoDelays = total
	_ = noDelays // the judge's own total is authoritative only as a sanity echo; s.NoDelays is recomputed from the per-week delays it just reported
	return nil
}

// EmitGrid writes M lines of 2W digit characters (spec §6): position 2w is
// the weekday code, 2w+1 the weekend code, both in '1'..'9'.
func (a *Adapter) EmitGrid(s *solver.State) error {
	for m := range s.Machines {
		mach := &s.Machines[m]
		line := make([]byte, 2*s.Horizon())
		for w := 0; w < s.Horizon(); w++ {
			line[2*w] = byte('0' + mach.WeekDayPattern[w])
			line[2*w+1] = byte('0' + mach.WeekEndPattern[w])
		}
		line = append(line, '\n')
		if _, err := a.out.Write(line); err != nil {
			return fmt.Errorf("judgeio: writing grid: %w", err)
		}
	}
	return a.out.Flush()
}
