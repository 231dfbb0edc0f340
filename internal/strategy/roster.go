package strategy

import "github.com/driftradius/correlator/internal/config"

// Roster returns the fixed set of correlation strategies in
// registration order, filtered to those enabled by cfg (§4.2). The
// roster itself never changes at runtime; only each strategy's
// enabled flag does.
func Roster(cfg *config.EngineConfig) []Strategy {
	all := []Strategy{
		&entityStrategy{},
		&operationStrategy{},
		&infrastructureStrategy{},
		&dependencyStrategy{},
		&temporalStrategy{},
		&codeStrategy{},
	}

	out := make([]Strategy, 0, len(all))
	for _, s := range all {
		if s.Enabled(cfg) {
			out = append(out, s)
		}
	}
	return out
}

func strategyEnabled(cfg *config.EngineConfig, name string, defaultEnabled bool) bool {
	if cfg == nil || cfg.StrategyConfig == nil {
		return defaultEnabled
	}
	sc, ok := cfg.StrategyConfig[name]
	if !ok {
		return defaultEnabled
	}
	return sc.Enabled
}
