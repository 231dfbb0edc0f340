package strategy

import (
	"github.com/driftradius/correlator/internal/config"
	"github.com/driftradius/correlator/internal/correlate"
)

// infrastructureStrategy links IaC resources to the APIs, databases
// and configuration artifacts they provision (§4.2), matched through
// shared entity names (a resource's logical id appearing in an API
// path or table name) or a shared service label.
type infrastructureStrategy struct{}

func (s *infrastructureStrategy) Name() string   { return "infrastructure" }
func (s *infrastructureStrategy) Budget() Budget { return BudgetLow }

func (s *infrastructureStrategy) Enabled(cfg *config.EngineConfig) bool {
	return strategyEnabled(cfg, s.Name(), true)
}

func (s *infrastructureStrategy) Run(ctx RunContext) ([]correlate.Signal, error) {
	var signals []correlate.Signal

	for i := range ctx.Artifacts {
		iac := ctx.Artifacts[i]
		if iac.Kind != "infrastructure" {
			continue
		}
		for j := range ctx.Artifacts {
			if i == j {
				continue
			}
			target := ctx.Artifacts[j]
			if target.Kind != "api" && target.Kind != "database" && target.Kind != "configuration" {
				continue
			}

			var evidence []correlate.Evidence
			score := 0.0

			if shared := sharedEntities(iac.Metadata.Entities, target.Metadata.Entities); len(shared) > 0 {
				score = clampScore(0.6 + 0.1*float64(len(shared)))
				for _, name := range shared {
					evidence = append(evidence, correlate.Evidence{Reason: "resource id matches entity", Details: name})
				}
			} else if iac.Service != "" && iac.Service == target.Service {
				score = 0.45
				evidence = append(evidence, correlate.Evidence{Reason: "shared service label", Details: iac.Service})
			}

			if score == 0 {
				continue
			}

			signals = append(signals, correlate.Signal{
				Src:          iac.ArtifactID,
				Dst:          target.ArtifactID,
				Relationship: "provisions",
				Score:        score,
				Strategy:     s.Name(),
				Evidence:     evidence,
				Index:        len(signals),
			})
		}
	}

	return signals, nil
}
