// Package aggregate fuses strategy signals and user-defined rules
// into the final correlation list (§4.4).
package aggregate

import (
	"sort"

	"github.com/driftradius/correlator/internal/config"
	"github.com/driftradius/correlator/internal/correlate"
)

// maxEvidence bounds the evidence retained per correlation (§4.4 step 4).
const maxEvidence = 5

// Result is the aggregator's output: the fused correlation list plus
// the set of (src, dst, relationship) triples it processed, so
// downstream passes can skip re-deriving them (§4.4 step 6, §5).
type Result struct {
	Correlations   []correlate.Correlation
	ProcessedPairs map[correlate.Triple]struct{}
}

// scoredEvidence pairs an evidence item with the bookkeeping needed
// to rank it deterministically before the cap is applied.
type scoredEvidence struct {
	evidence correlate.Evidence
	score    float64
	strategy string
	index    int
}

// Aggregate fuses signals into correlations, applies user-defined
// rule overrides, and drops anything below thresholds.CorrelateMin
// unless userDefined (§4.4).
func Aggregate(signals []correlate.Signal, rules []config.CorrelationRule, cfg *config.EngineConfig) Result {
	buckets := make(map[correlate.Triple][]correlate.Signal)
	var order []correlate.Triple

	for _, sig := range signals {
		t := correlate.Triple{Src: sig.Src, Dst: sig.Dst, Relationship: sig.Relationship}
		if _, ok := buckets[t]; !ok {
			order = append(order, t)
		}
		buckets[t] = append(buckets[t], sig)
	}

	processed := make(map[correlate.Triple]struct{}, len(order))
	correlations := make(map[correlate.Triple]correlate.Correlation, len(order))

	for _, t := range order {
		c := fuseBucket(t, buckets[t], cfg.SingleStrategyPenalty)
		correlations[t] = c
		processed[t] = struct{}{}
	}

	for _, rule := range rules {
		t := correlate.Triple{Src: rule.Src, Dst: rule.Dst, Relationship: rule.Relationship}
		existing, ok := correlations[t]
		if !ok {
			existing = correlate.Correlation{Src: rule.Src, Dst: rule.Dst, Relationship: rule.Relationship}
			order = append(order, t)
		}
		existing.FinalScore = rule.Score
		existing.Confidence = rule.Score
		existing.UserDefined = true
		correlations[t] = existing
		processed[t] = struct{}{}
	}

	out := make([]correlate.Correlation, 0, len(order))
	for _, t := range order {
		c := correlations[t]
		if !c.UserDefined && c.FinalScore < cfg.Thresholds.CorrelateMin {
			continue
		}
		out = append(out, c)
	}

	return Result{Correlations: out, ProcessedPairs: processed}
}

// fuseBucket fuses all signals sharing one (src, dst, relationship)
// triple using noisy-OR, and assembles confidence, strategies and
// bounded evidence.
func fuseBucket(t correlate.Triple, sigs []correlate.Signal, singleStrategyPenalty float64) correlate.Correlation {
	finalScore := 1.0
	strategySet := make(map[string]struct{})
	var strategies []string
	var scored []scoredEvidence
	maxScore := 0.0

	for _, sig := range sigs {
		finalScore *= 1 - sig.Score
		if sig.Score > maxScore {
			maxScore = sig.Score
		}
		if _, ok := strategySet[sig.Strategy]; !ok {
			strategySet[sig.Strategy] = struct{}{}
			strategies = append(strategies, sig.Strategy)
		}
		for _, e := range sig.Evidence {
			scored = append(scored, scoredEvidence{
				evidence: e,
				score:    sig.Score,
				strategy: sig.Strategy,
				index:    sig.Index,
			})
		}
	}
	finalScore = 1 - finalScore

	confidence := finalScore
	if len(strategies) < 2 {
		confidence = maxScore * singleStrategyPenalty
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].score != scored[j].score {
			return scored[i].score > scored[j].score
		}
		if scored[i].strategy != scored[j].strategy {
			return scored[i].strategy < scored[j].strategy
		}
		return scored[i].index < scored[j].index
	})
	if len(scored) > maxEvidence {
		scored = scored[:maxEvidence]
	}
	evidence := make([]correlate.Evidence, len(scored))
	for i, se := range scored {
		evidence[i] = se.evidence
	}

	return correlate.Correlation{
		Src:          t.Src,
		Dst:          t.Dst,
		Relationship: t.Relationship,
		FinalScore:   finalScore,
		Confidence:   confidence,
		Strategies:   strategies,
		Evidence:     evidence,
	}
}
