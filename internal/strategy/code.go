package strategy

import (
	"strings"

	"github.com/driftradius/correlator/internal/config"
	"github.com/driftradius/correlator/internal/correlate"
)

// codeStrategy approximates source-level call/query analysis: it
// scans a code artifact's raw change descriptors for literal
// references to another artifact's identifying tokens (a table name,
// an API path segment). A full implementation would parse an AST;
// this strategy trades precision for zero external dependencies,
// matching the dispatch contract in §6 (real analyzers may replace
// it without changing the engine).
type codeStrategy struct{}

func (s *codeStrategy) Name() string   { return "code" }
func (s *codeStrategy) Budget() Budget { return BudgetMedium }

func (s *codeStrategy) Enabled(cfg *config.EngineConfig) bool {
	return strategyEnabled(cfg, s.Name(), true)
}

func (s *codeStrategy) Run(ctx RunContext) ([]correlate.Signal, error) {
	var signals []correlate.Signal

	for i := range ctx.Artifacts {
		code := ctx.Artifacts[i]
		if code.Kind != "code" {
			continue
		}
		haystack := strings.ToLower(strings.Join(code.Changes, "\n"))
		if haystack == "" {
			continue
		}

		for j := range ctx.Artifacts {
			if i == j {
				continue
			}
			target := ctx.Artifacts[j]
			if target.Kind != "database" && target.Kind != "api" {
				continue
			}
			if !ctx.IsCandidate(code.ArtifactID, target.ArtifactID) {
				continue
			}

			var evidence []correlate.Evidence
			for _, entity := range target.Metadata.Entities {
				if entity == "" {
					continue
				}
				if strings.Contains(haystack, strings.ToLower(entity)) {
					evidence = append(evidence, correlate.Evidence{
						Reason:  "source reference to entity",
						Details: entity,
					})
				}
			}
			if len(evidence) == 0 {
				continue
			}

			relationship := "calls"
			if target.Kind == "database" {
				relationship = "queries"
			}

			signals = append(signals, correlate.Signal{
				Src:          code.ArtifactID,
				Dst:          target.ArtifactID,
				Relationship: relationship,
				Score:        clampScore(0.5 + 0.15*float64(len(evidence))),
				Strategy:     s.Name(),
				Evidence:     evidence,
				Index:        len(signals),
			})
		}
	}

	return signals, nil
}
