// Package diagnostics implements the solver's --local side channel (spec
// §4.6): structured per-round logging and an optional HTML chart. Nothing
// here may affect C1-C6 semantics; it only observes state after each round
// completes, the way the teacher's printAlgorithmConfig/displayTopResults
// observe an optimization run without mutating it.
package diagnostics

import (
	"fmt"
	"os"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"
	"k8s.io/klog/v2"

	"github.com/jiro4989/calendar-solver/internal/telemetry"
)

// Recorder accumulates one telemetry.Snapshot per round and, on demand,
// renders them as a line chart.
type Recorder struct {
	logger    klog.Logger
	snapshots []telemetry.Snapshot
}

// NewRecorder returns a Recorder that logs through logger. LogRound gates
// its line at verbosity 4 itself, so the caller may pass an ungated logger.
func NewRecorder(logger klog.Logger) *Recorder {
	return &Recorder{logger: logger}
}

// LogRound emits the structured per-round summary line and records the
// snapshot for a later chart render.
func (r *Recorder) LogRound(snap telemetry.Snapshot) {
	r.snapshots = append(r.snapshots, snap)
	r.logger.V(4).Info("round complete",
		"interaction", snap.Interaction,
		"score", snap.Score,
		"bestScore", snap.BestScore,
		"noDelays", snap.NoDelays,
		"changeBudgetRemaining", snap.ChangeBudgetRemaining,
		"lastMoveIdentity", snap.LastMoveIdentity,
	)
}

// Render writes an HTML line chart of bestScore and noDelays across
// interactions to outputPath, adapted from the teacher's PlotResults
// scatter-plot renderer (util/plot.go) for two per-interaction line series
// instead of a Pareto front. It is never written to stdout, so it cannot corrupt the
// judge protocol.
func (r *Recorder) Render(outputPath string) error {
	if len(r.snapshots) == 0 {
		return fmt.Errorf("diagnostics: no rounds recorded")
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Solver progress"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithInitializationOpts(opts.Initialization{Theme: types.ThemeWesteros}),
		charts.WithXAxisOpts(opts.XAxis{Name: "interaction"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "value"}),
	)

	x := make([]int, len(r.snapshots))
	bestScore := make([]opts.LineData, len(r.snapshots))
	noDelays := make([]opts.LineData, len(r.snapshots))
	for i, snap := range r.snapshots {
		x[i] = snap.Interaction
		bestScore[i] = opts.LineData{Value: snap.BestScore}
		noDelays[i] = opts.LineData{Value: snap.NoDelays}
	}

	line.SetXAxis(x).
		AddSeries("bestScore", bestScore).
		AddSeries("noDelays", noDelays).
		SetSeriesOptions(charts.WithLabelOpts(opts.Label{Show: opts.Bool(false)}))

	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("diagnostics: creating %s: %w", outputPath, err)
	}
	defer f.Close()

	if err := line.Render(f); err != nil {
		return fmt.Errorf("diagnostics: rendering %s: %w", outputPath, err)
	}
	return nil
}
