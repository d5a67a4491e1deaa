// Package telemetry provides the solver's diagnostic-only round metrics and
// tracing. Nothing here may block or reorder judge I/O (spec §2a, §4.6):
// it only observes state published after each round completes.
package telemetry

import (
	"context"
	"fmt"
	"net/http"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"k8s.io/klog/v2"
)

// Snapshot is an immutable per-round summary, published after each round so
// an HTTP handler goroutine can read it without touching solver state.
type Snapshot struct {
	Interaction           int
	Score                 int64
	BestScore             int64
	NoDelays              int
	ChangeBudgetRemaining int
	LastMoveIdentity      string
	BlacklistSize         int
}

// Telemetry owns the solver's prometheus registry, otel tracer and the
// published Snapshot. The zero value is not usable; construct with New.
type Telemetry struct {
	registry *prometheus.Registry
	tracer   trace.Tracer

	interactionsTotal     prometheus.Counter
	bestScore             prometheus.Gauge
	changeBudgetRemaining prometheus.Gauge
	revertsTotal          prometheus.Counter
	blacklistSize         prometheus.Gauge

	snapshot atomic.Pointer[Snapshot]
	server   *http.Server
}

// New registers the solver's metrics on a fresh registry and installs a
// trace provider with no exporter attached — spans are created and ended
// but never shipped anywhere, matching the teacher's swap-in-an-exporter
// pattern without committing this solver to one by default.
func New() *Telemetry {
	reg := prometheus.NewRegistry()
	t := &Telemetry{
		registry: reg,
		interactionsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "solver_interactions_total",
			Help: "Number of request/response rounds completed.",
		}),
		bestScore: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "solver_best_score",
			Help: "Best score observed so far.",
		}),
		changeBudgetRemaining: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "solver_change_budget_remaining",
			Help: "Global change budget remaining after the last applied move.",
		}),
		revertsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "solver_reverts_total",
			Help: "Number of moves reverted (full or partial).",
		}),
		blacklistSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "solver_blacklist_size",
			Help: "Number of move identities currently blacklisted.",
		}),
	}
	reg.MustRegister(t.interactionsTotal, t.bestScore, t.changeBudgetRemaining, t.revertsTotal, t.blacklistSize)

	tp := sdktrace.NewTracerProvider()
	otel.SetTracerProvider(tp)
	t.tracer = tp.Tracer("calendar-solver")

	t.snapshot.Store(&Snapshot{})
	return t
}

// StartRound opens the span for one interaction round.
func (t *Telemetry) StartRound(ctx context.Context, interaction int) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, "solver.round", trace.WithAttributes(
		attribute.Int("interaction", interaction),
	))
}

// RecordRound updates the prometheus series, annotates span, and publishes
// a new Snapshot via an atomic pointer swap — the one concurrency
// primitive in this repository (spec §5).
func (t *Telemetry) RecordRound(span trace.Span, snap Snapshot, reverted bool) {
	t.interactionsTotal.Inc()
	t.bestScore.Set(float64(snap.BestScore))
	t.changeBudgetRemaining.Set(float64(snap.ChangeBudgetRemaining))
	t.blacklistSize.Set(float64(snap.BlacklistSize))
	if reverted {
		t.revertsTotal.Inc()
	}

	span.SetAttributes(
		attribute.Int64("score", snap.Score),
		attribute.Int("noDelays", snap.NoDelays),
		attribute.String("lastMoveIdentity", snap.LastMoveIdentity),
	)
	span.End()

	t.snapshot.Store(&snap)
}

// Snapshot returns the most recently published round summary.
func (t *Telemetry) Snapshot() Snapshot {
	return *t.snapshot.Load()
}

// ServeMetrics starts the optional loopback metrics listener in its own
// goroutine. It never synchronizes with the solver loop: handlers only
// read values already published through Snapshot/the registry.
func (t *Telemetry) ServeMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(t.registry, promhttp.HandlerOpts{}))
	mux.HandleFunc("/snapshot", func(w http.ResponseWriter, r *http.Request) {
		snap := t.Snapshot()
		fmt.Fprintf(w, "interaction=%d score=%d bestScore=%d noDelays=%d changeBudgetRemaining=%d lastMove=%s blacklistSize=%d\n",
			snap.Interaction, snap.Score, snap.BestScore, snap.NoDelays, snap.ChangeBudgetRemaining, snap.LastMoveIdentity, snap.BlacklistSize)
	})
	t.server = &http.Server{Addr: addr, Handler: mux}

	go func() {
		if err := t.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			klog.Background().Error(err, "metrics listener stopped")
		}
	}()
}

// Shutdown stops the metrics listener, if started.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	if t.server == nil {
		return nil
	}
	return t.server.Shutdown(ctx)
}
