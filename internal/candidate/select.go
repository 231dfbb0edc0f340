// Package candidate computes the pair set expensive strategies are
// allowed to run on (§4.3), keeping cost proportional to suspicion
// rather than the square of the artifact count.
package candidate

import (
	"github.com/driftradius/correlator/internal/artifact"
	"github.com/driftradius/correlator/internal/config"
	"github.com/driftradius/correlator/internal/correlate"
	"github.com/driftradius/correlator/internal/strategy"
)

// Select computes the candidate pair set from the preliminary
// (low-budget) signals, the user-defined rules, and the expanded
// artifacts (§4.3 selection rule).
func Select(
	preliminary []correlate.Signal,
	rules []config.CorrelationRule,
	artifacts []artifact.Artifact,
	thresholds config.Thresholds,
) map[strategy.Pair]struct{} {
	out := make(map[strategy.Pair]struct{})

	for _, sig := range preliminary {
		if sig.Score >= thresholds.CandidateMin {
			out[strategy.Pair{Src: sig.Src, Dst: sig.Dst}] = struct{}{}
		}
	}

	for _, rule := range rules {
		out[strategy.Pair{Src: rule.Src, Dst: rule.Dst}] = struct{}{}
	}

	byService := make(map[string][]string)
	for _, a := range artifacts {
		if a.Service == "" {
			continue
		}
		byService[a.Service] = append(byService[a.Service], a.ArtifactID)
	}
	for _, ids := range byService {
		for i := range ids {
			for j := range ids {
				if i == j {
					continue
				}
				out[strategy.Pair{Src: ids[i], Dst: ids[j]}] = struct{}{}
			}
		}
	}

	return out
}
