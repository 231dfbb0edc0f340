package strategy

import (
	"github.com/driftradius/correlator/internal/config"
	"github.com/driftradius/correlator/internal/correlate"
)

// operationStrategy matches when an API's operation verbs align with
// DML operations on a database artifact sharing an entity name
// (§4.2). It reuses the entity overlap as a prerequisite and adds
// weight when the operation vocabularies also overlap.
type operationStrategy struct{}

func (s *operationStrategy) Name() string   { return "operation" }
func (s *operationStrategy) Budget() Budget { return BudgetLow }

func (s *operationStrategy) Enabled(cfg *config.EngineConfig) bool {
	return strategyEnabled(cfg, s.Name(), true)
}

func (s *operationStrategy) Run(ctx RunContext) ([]correlate.Signal, error) {
	var signals []correlate.Signal

	for i := range ctx.Artifacts {
		for j := range ctx.Artifacts {
			if i == j {
				continue
			}
			src, dst := ctx.Artifacts[i], ctx.Artifacts[j]
			if src.Kind != "api" || dst.Kind != "database" {
				continue
			}

			sharedEnt := sharedEntities(src.Metadata.Entities, dst.Metadata.Entities)
			if len(sharedEnt) == 0 {
				continue
			}
			sharedOps := sharedEntities(src.Metadata.Operations, dst.Metadata.Operations)
			if len(sharedOps) == 0 {
				continue
			}

			evidence := make([]correlate.Evidence, 0, len(sharedOps))
			for _, op := range sharedOps {
				evidence = append(evidence, correlate.Evidence{
					Reason:  "operation verb alignment",
					Details: op,
				})
			}

			signals = append(signals, correlate.Signal{
				Src:          src.ArtifactID,
				Dst:          dst.ArtifactID,
				Relationship: "uses_table",
				Score:        clampScore(0.55 + 0.15*float64(len(sharedOps))),
				Strategy:     s.Name(),
				Evidence:     evidence,
				Index:        len(signals),
			})
		}
	}

	return signals, nil
}
