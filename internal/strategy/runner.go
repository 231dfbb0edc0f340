package strategy

import (
	"fmt"
	"time"

	"github.com/driftradius/correlator/internal/artifact"
	"github.com/driftradius/correlator/internal/config"
	"github.com/driftradius/correlator/internal/correlate"
	"github.com/driftradius/correlator/internal/logging"
	"github.com/driftradius/correlator/internal/metrics"
)

var log = logging.GetLogger("strategy")

// Wave identifies which of the two execution waves a strategy ran in.
type Wave string

const (
	WaveLow  Wave = "low"
	WaveRest Wave = "rest"
)

// StrategyStat records one strategy invocation's observability data.
type StrategyStat struct {
	Strategy string
	Wave     Wave
	Elapsed  time.Duration
	Signals  int
	Err      error
}

// RunResult is the runner's full output: every signal produced across
// both waves, in strategy-registration order, plus per-invocation
// stats.
type RunResult struct {
	Signals []correlate.Signal
	Stats   []StrategyStat
}

// Runner executes the fixed strategy roster in two waves (§4.2).
type Runner struct {
	Metrics *metrics.Metrics
}

// NewRunner builds a Runner. m may be nil, in which case no
// Prometheus instrumentation is recorded.
func NewRunner(m *metrics.Metrics) *Runner {
	return &Runner{Metrics: m}
}

// Run executes the low-budget wave, hands its signals to
// selectCandidates (the candidate selector), then executes the remaining strategies
// restricted to the returned candidate pairs.
func (r *Runner) Run(
	artifacts []artifact.Artifact,
	files []artifact.FileChange,
	cfg *config.EngineConfig,
	selectCandidates func(preliminary []correlate.Signal) map[Pair]struct{},
) RunResult {
	processed := make(map[correlate.Triple]struct{})
	roster := Roster(cfg)

	var lowBudget, rest []Strategy
	for _, s := range roster {
		if s.Budget() == BudgetLow {
			lowBudget = append(lowBudget, s)
		} else {
			rest = append(rest, s)
		}
	}

	var result RunResult

	lowCtx := RunContext{
		Artifacts:      artifacts,
		Files:          files,
		Config:         cfg,
		ProcessedPairs: processed,
		CandidatePairs: nil,
	}
	preliminary := r.runWave(lowBudget, lowCtx, WaveLow, &result)

	candidates := selectCandidates(preliminary)

	restCtx := RunContext{
		Artifacts:      artifacts,
		Files:          files,
		Config:         cfg,
		ProcessedPairs: processed,
		CandidatePairs: candidates,
	}
	expensive := r.runWave(rest, restCtx, WaveRest, &result)

	result.Signals = append(preliminary, expensive...)
	return result
}

// runWave executes one wave of strategies sequentially, isolating
// panics and errors so one misbehaving strategy never aborts the run
// (§4.2 error policy, §7 kind 1).
func (r *Runner) runWave(strategies []Strategy, ctx RunContext, wave Wave, result *RunResult) []correlate.Signal {
	var signals []correlate.Signal

	for _, s := range strategies {
		name := s.Name()
		start := time.Now()

		sigs, err := r.invoke(s, ctx)
		elapsed := time.Since(start)

		stat := StrategyStat{Strategy: name, Wave: wave, Elapsed: elapsed, Signals: len(sigs), Err: err}
		result.Stats = append(result.Stats, stat)

		if r.Metrics != nil {
			r.Metrics.StrategyDuration.WithLabelValues(name, string(wave)).Observe(elapsed.Seconds())
			r.Metrics.StrategySignals.WithLabelValues(name, string(wave)).Add(float64(len(sigs)))
			if err != nil {
				r.Metrics.StrategyFailures.WithLabelValues(name, string(wave)).Inc()
			}
		}

		if err != nil {
			log.WarnWithFields("strategy failed, continuing with zero signals",
				logging.Field("strategy", name), logging.Field("error", err.Error()))
			continue
		}

		signals = append(signals, sigs...)
	}

	return signals
}

// invoke runs a single strategy, converting a panic into an error so
// the wave loop's error handling stays uniform.
func (r *Runner) invoke(s Strategy, ctx RunContext) (sigs []correlate.Signal, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("strategy %q panicked: %v", s.Name(), rec)
		}
	}()
	return s.Run(ctx)
}
