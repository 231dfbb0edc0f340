// Package engine orchestrates the Correlation & Impact Engine
// pipeline: expansion, strategy execution, candidate selection,
// aggregation, and graph analysis (§2, §5).
package engine

import (
	"context"
	"fmt"

	"github.com/driftradius/correlator/internal/aggregate"
	"github.com/driftradius/correlator/internal/artifact"
	"github.com/driftradius/correlator/internal/candidate"
	"github.com/driftradius/correlator/internal/config"
	"github.com/driftradius/correlator/internal/correlate"
	"github.com/driftradius/correlator/internal/graph"
	"github.com/driftradius/correlator/internal/logging"
	"github.com/driftradius/correlator/internal/metrics"
	"github.com/driftradius/correlator/internal/report"
	"github.com/driftradius/correlator/internal/strategy"
	"github.com/google/uuid"
)

var log = logging.GetLogger("engine")

// Input is everything one engine run needs (§6 inbound interfaces).
type Input struct {
	DriftResults []artifact.DriftResult
	Files        []artifact.FileChange
	Config       *config.EngineConfig
}

// Engine is the only component in the pipeline that accepts a
// context.Context; expansion, aggregation and graph analysis are
// strictly synchronous (§5).
type Engine struct {
	Metrics *metrics.Metrics
}

// New builds an Engine. m may be nil to disable Prometheus
// instrumentation.
func New(m *metrics.Metrics) *Engine {
	return &Engine{Metrics: m}
}

// Run executes the full pipeline and never returns past its own
// error value past a sentinel: only ctx cancellation is surfaced as
// an error. Every other internal failure fails open, producing a
// reduced but non-nil report (§7).
func (e *Engine) Run(ctx context.Context, in Input) (*report.Report, error) {
	cfg := config.WithDefaults(in.Config)
	if err := cfg.Validate(); err != nil {
		log.WarnWithFields("invalid config, falling back to defaults", logging.Field("error", err.Error()))
		cfg = config.Defaults()
	}

	artifacts, warnings := artifact.Expand(in.DriftResults)
	for _, w := range warnings {
		log.WarnWithFields("dropped invalid artifact", logging.Field("reason", w.Reason), logging.Field("input", w.Input))
	}

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("engine: canceled before strategy execution: %w", err)
	}

	runner := strategy.NewRunner(e.Metrics)
	result := runner.Run(artifacts, in.Files, cfg, func(preliminary []correlate.Signal) map[strategy.Pair]struct{} {
		return candidate.Select(preliminary, cfg.CorrelationRules, artifacts, cfg.Thresholds)
	})

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("engine: canceled after strategy execution: %w", err)
	}

	agg := aggregate.Aggregate(result.Signals, cfg.CorrelationRules, cfg)

	var (
		g           *graph.Graph
		impact      map[string]graph.ImpactRecord
		rootCauses  graph.RootCauseResult
		blastRadius graph.BlastRadius
	)

	if cfg.Graph.Enabled {
		built, err := graph.Build(artifacts, agg.Correlations, cfg.Graph)
		if err != nil {
			log.WarnWithFields("graph analysis suppressed", logging.Field("error", err.Error()))
		} else {
			g = built
			impact = graph.Impact(g, cfg.Graph, cfg.Thresholds.CorrelateMin)
			rootCauses = graph.RootCauseCover(g, impact, cfg.Thresholds.CorrelateMin)
			blastRadius = graph.ComputeBlastRadius(g, impact)
		}
	}

	runID := uuid.NewString()
	return report.Build(runID, artifacts, agg.Correlations, warnings, g, impact, rootCauses, blastRadius, cfg.Graph, cfg.Thresholds.CorrelateMin), nil
}
