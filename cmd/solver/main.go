// Command solver runs the interactive calendar-optimization hill-climber
// against a judge speaking the protocol in internal/judgeio over stdin and
// stdout.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/exp/rand"
	"k8s.io/klog/v2"

	"github.com/jiro4989/calendar-solver/internal/config"
	"github.com/jiro4989/calendar-solver/internal/diagnostics"
	"github.com/jiro4989/calendar-solver/internal/judgeio"
	"github.com/jiro4989/calendar-solver/internal/solver"
	"github.com/jiro4989/calendar-solver/internal/telemetry"
)

var (
	localMode   bool
	seed        int64
	metricsAddr string
	reportPath  string
	configPath  string
)

func main() {
	defer klog.Flush()

	if err := rootCmd().Execute(); err != nil {
		klog.Background().Error(err, "solver exited with error")
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "solver",
		Short:         "Interactive calendar-optimization hill-climber",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context())
		},
	}

	cmd.Flags().BoolVar(&localMode, "local", false, "enable diagnostic logging and reporting")
	cmd.Flags().Int64Var(&seed, "seed", 0, "seed for the tie-break RNG fallback (0 = deterministic generation-order tie-break)")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "optional loopback address to serve prometheus metrics on, e.g. 127.0.0.1:9090")
	cmd.Flags().StringVar(&reportPath, "local-report", "", "path to render an HTML progress chart to (requires --local)")
	cmd.Flags().StringVar(&configPath, "config", "", "optional YAML file overriding move-generation thresholds")

	goFlags := flag.NewFlagSet("klog", flag.ContinueOnError)
	klog.InitFlags(goFlags)
	cmd.Flags().AddGoFlagSet(goFlags)

	return cmd
}

func run(ctx context.Context) error {
	logger := klog.Background()

	thresholds, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	tel := telemetry.New()
	if metricsAddr != "" {
		tel.ServeMetrics(metricsAddr)
		defer func() {
			_ = tel.Shutdown(context.Background())
		}()
	}

	var recorder *diagnostics.Recorder
	if localMode {
		recorder = diagnostics.NewRecorder(logger)
	}

	adapter := judgeio.New(os.Stdin, os.Stdout)
	header, err := adapter.ReadHeader()
	if err != nil {
		return fmt.Errorf("reading header: %w", err)
	}
	logger.Info("initialized", "weeks", header.W, "machines", header.M, "maxChanges", header.MaxChanges, "interactions", header.N)

	state := header.NewState()
	gen := solver.NewGenerator(thresholds)
	ctrl := solver.NewController(gen, header.N, header.MaxChanges)
	if seed != 0 {
		ctrl.Rand = rand.New(rand.NewSource(uint64(seed)))
	}

	// Initial grid: every machine, both sides, code 9 (spec §4.3, §8
	// Scenario E). No refine runs before the first emission.
	if err := adapter.EmitGrid(&state); err != nil {
		return fmt.Errorf("emitting initial grid: %w", err)
	}

	for k := 1; k <= header.N; k++ {
		if err := adapter.ReadFeedback(&state); err != nil {
			return fmt.Errorf("reading feedback %d: %w", k, err)
		}

		if k == header.N {
			break
		}

		_, span := tel.StartRound(ctx, k+1)
		// Same condition NextGrid uses to revert (fully or partially) the
		// previous round's move.
		reverted := ctrl.LastMove != nil && (state.NoDelays > 0 || state.Score < ctrl.BestScore)
		ctrl.NextGrid(&state, k+1)

		lastIdentity := ""
		if ctrl.LastMove != nil {
			lastIdentity = ctrl.LastMove.Identity()
		}
		snap := telemetry.Snapshot{
			Interaction:           k + 1,
			Score:                 state.Score,
			BestScore:             ctrl.BestScore,
			NoDelays:              state.NoDelays,
			ChangeBudgetRemaining: header.MaxChanges - state.ChangeCount(),
			LastMoveIdentity:      lastIdentity,
			BlacklistSize:         len(ctrl.BadMoves),
		}
		tel.RecordRound(span, snap, reverted)
		if recorder != nil {
			recorder.LogRound(snap)
		}

		if err := adapter.EmitGrid(&state); err != nil {
			return fmt.Errorf("emitting grid %d: %w", k+1, err)
		}
	}

	if recorder != nil && reportPath != "" {
		if err := recorder.Render(reportPath); err != nil {
			logger.Error(err, "failed to render local report")
		}
	}

	return nil
}
