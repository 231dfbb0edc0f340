package strategy

import (
	"strings"

	"github.com/driftradius/correlator/internal/config"
	"github.com/driftradius/correlator/internal/correlate"
)

// entityStrategy matches artifacts that share an entity name, e.g. an
// API path token equal to a database table name (§4.2).
type entityStrategy struct{}

func (s *entityStrategy) Name() string   { return "entity" }
func (s *entityStrategy) Budget() Budget { return BudgetLow }

func (s *entityStrategy) Enabled(cfg *config.EngineConfig) bool {
	return strategyEnabled(cfg, s.Name(), true)
}

func (s *entityStrategy) Run(ctx RunContext) ([]correlate.Signal, error) {
	var signals []correlate.Signal

	for i := range ctx.Artifacts {
		for j := range ctx.Artifacts {
			if i == j {
				continue
			}
			src, dst := ctx.Artifacts[i], ctx.Artifacts[j]
			if src.Kind == dst.Kind {
				continue
			}

			shared := sharedEntities(src.Metadata.Entities, dst.Metadata.Entities)
			if len(shared) == 0 {
				continue
			}

			relationship := "relates_to"
			if dst.Kind == "database" {
				relationship = "uses_table"
			}

			score := clampScore(0.5 + 0.15*float64(len(shared)))
			evidence := make([]correlate.Evidence, 0, len(shared))
			for _, name := range shared {
				evidence = append(evidence, correlate.Evidence{
					Reason:  "entity name match",
					Details: name,
				})
			}

			signals = append(signals, correlate.Signal{
				Src:          src.ArtifactID,
				Dst:          dst.ArtifactID,
				Relationship: relationship,
				Score:        score,
				Strategy:     s.Name(),
				Evidence:     evidence,
				Index:        len(signals),
			})
		}
	}

	return signals, nil
}

func sharedEntities(a, b []string) []string {
	set := make(map[string]struct{}, len(a))
	for _, e := range a {
		set[strings.ToLower(e)] = struct{}{}
	}
	var shared []string
	seen := make(map[string]struct{})
	for _, e := range b {
		key := strings.ToLower(e)
		if _, ok := set[key]; !ok {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		shared = append(shared, key)
	}
	return shared
}

func clampScore(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
