package strategy

import (
	"strings"

	"github.com/driftradius/correlator/internal/config"
	"github.com/driftradius/correlator/internal/correlate"
)

// dependencyStrategy links configuration changes (lockfiles, package
// manifests) to code artifacts that reference the affected package
// name, by substring match against the code artifact's file path and
// raw change descriptors (§4.2).
type dependencyStrategy struct{}

func (s *dependencyStrategy) Name() string   { return "dependency" }
func (s *dependencyStrategy) Budget() Budget { return BudgetLow }

func (s *dependencyStrategy) Enabled(cfg *config.EngineConfig) bool {
	return strategyEnabled(cfg, s.Name(), true)
}

func (s *dependencyStrategy) Run(ctx RunContext) ([]correlate.Signal, error) {
	var signals []correlate.Signal

	for i := range ctx.Artifacts {
		cfgArt := ctx.Artifacts[i]
		if cfgArt.Kind != "configuration" || len(cfgArt.Metadata.Dependencies) == 0 {
			continue
		}
		for j := range ctx.Artifacts {
			if i == j {
				continue
			}
			code := ctx.Artifacts[j]
			if code.Kind != "code" {
				continue
			}

			var evidence []correlate.Evidence
			for _, dep := range cfgArt.Metadata.Dependencies {
				if referencesDependency(code.File, code.Changes, dep) {
					evidence = append(evidence, correlate.Evidence{Reason: "dependency referenced", Details: dep})
				}
			}
			if len(evidence) == 0 {
				continue
			}

			signals = append(signals, correlate.Signal{
				Src:          cfgArt.ArtifactID,
				Dst:          code.ArtifactID,
				Relationship: "depends_on",
				Score:        clampScore(0.5 + 0.2*float64(len(evidence))),
				Strategy:     s.Name(),
				Evidence:     evidence,
				Index:        len(signals),
			})
		}
	}

	return signals, nil
}

func referencesDependency(file string, changes []string, dep string) bool {
	dep = strings.ToLower(dep)
	if strings.Contains(strings.ToLower(file), dep) {
		return true
	}
	for _, c := range changes {
		if strings.Contains(strings.ToLower(c), dep) {
			return true
		}
	}
	return false
}
