package strategy

import (
	"github.com/driftradius/correlator/internal/config"
	"github.com/driftradius/correlator/internal/correlate"
)

// defaultTemporalWindow bounds how many positions apart two files may
// be in the file list; pairs farther apart produce no signal.
// Configurable via strategyConfig.temporal.options.window.
const defaultTemporalWindow = 3

// temporalStrategy infers relationships from co-change proximity: two
// changed artifacts whose files sit close together in the PR's file
// list are weakly correlated, with confidence decaying by distance
// (generalized from the teacher's event-lag decay, §4.2, §9).
type temporalStrategy struct{}

func (s *temporalStrategy) Name() string   { return "temporal" }
func (s *temporalStrategy) Budget() Budget { return BudgetMedium }

func (s *temporalStrategy) Enabled(cfg *config.EngineConfig) bool {
	return strategyEnabled(cfg, s.Name(), false)
}

func (s *temporalStrategy) Run(ctx RunContext) ([]correlate.Signal, error) {
	window := defaultTemporalWindow
	if cfg, ok := ctx.Config.StrategyConfig[s.Name()]; ok {
		if w, ok := cfg.Options["window"].(int); ok && w > 0 {
			window = w
		}
	}

	fileIndex := make(map[string]int, len(ctx.Files))
	for i, f := range ctx.Files {
		fileIndex[f.Filename] = i
	}

	var signals []correlate.Signal

	for i := range ctx.Artifacts {
		src := ctx.Artifacts[i]
		if !src.Changed || src.File == "" {
			continue
		}
		srcIdx, ok := fileIndex[src.File]
		if !ok {
			continue
		}

		for j := range ctx.Artifacts {
			if i == j {
				continue
			}
			dst := ctx.Artifacts[j]
			if !dst.Changed || dst.File == "" || dst.File == src.File {
				continue
			}
			if !ctx.IsCandidate(src.ArtifactID, dst.ArtifactID) {
				continue
			}
			dstIdx, ok := fileIndex[dst.File]
			if !ok {
				continue
			}

			gap := dstIdx - srcIdx
			if gap < 0 {
				gap = -gap
			}
			if gap == 0 || gap > window {
				continue
			}

			proximity := 1.0 - float64(gap)/float64(window+1)
			score := clampScore(0.3 + 0.4*proximity)

			signals = append(signals, correlate.Signal{
				Src:          src.ArtifactID,
				Dst:          dst.ArtifactID,
				Relationship: "temporal",
				Score:        score,
				Strategy:     s.Name(),
				Evidence: []correlate.Evidence{{
					Reason:  "co-changed within window",
					Details: src.File + " ~ " + dst.File,
				}},
				Index: len(signals),
			})
		}
	}

	return signals, nil
}
