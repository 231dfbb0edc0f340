package config

import (
	"fmt"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// koanfDelim is the key-path delimiter koanf uses. The wire schema in
// spec.md §6 uses dotted lower_snake keys (thresholds.candidate_min,
// graph.max_depth, ...); the wireConfig fields below carry matching
// koanf tags.
const koanfDelim = "."

// wireConfig is the koanf-unmarshal target mirroring the dotted wire
// schema from spec.md §6. EngineConfig itself stays free of koanf
// struct tags so the rest of the codebase can construct it
// programmatically without dragging the tag vocabulary along.
type wireConfig struct {
	Thresholds struct {
		CandidateMin float64 `koanf:"candidate_min"`
		CorrelateMin float64 `koanf:"correlate_min"`
	} `koanf:"thresholds"`
	Graph struct {
		Enabled         *bool  `koanf:"enabled"`
		MaxDepth        int    `koanf:"max_depth"`
		NodeLimit       int    `koanf:"node_limit"`
		EdgeLimit       int    `koanf:"edge_limit"`
		PathAggregation string `koanf:"path_aggregation"`
	} `koanf:"graph"`
	SingleStrategyPenalty float64                 `koanf:"single_strategy_penalty"`
	StrategyConfig        map[string]wireStrategy `koanf:"strategyConfig"`
	CorrelationRules      []CorrelationRule       `koanf:"correlationRules"`
	ParallelStrategies    bool                    `koanf:"parallel_strategies"`
}

type wireStrategy struct {
	Enabled bool           `koanf:"enabled"`
	Budget  string         `koanf:"budget"`
	Options map[string]any `koanf:"options"`
}

// Load reads an EngineConfig from a YAML file at path, applying the
// documented defaults (spec.md §6) to any field the file leaves
// unset, then validating the result.
//
// Per spec.md §7 kind (4), a config parse error never leaves the
// caller without options: Defaults() is always available to retry
// with, and Load wraps the underlying koanf/yaml error so the caller
// can distinguish "file missing" from "file invalid."
func Load(path string) (*EngineConfig, error) {
	k := koanf.New(koanfDelim)

	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("failed to load engine config from %q: %w", path, err)
	}

	var wire wireConfig
	if err := k.UnmarshalWithConf("", &wire, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("failed to parse engine config from %q: %w", path, err)
	}

	cfg := fromWire(wire)
	cfg = WithDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("engine config validation failed for %q: %w", path, err)
	}

	return cfg, nil
}

func fromWire(wire wireConfig) *EngineConfig {
	graphEnabled := true
	if wire.Graph.Enabled != nil {
		graphEnabled = *wire.Graph.Enabled
	}

	cfg := &EngineConfig{
		Thresholds: Thresholds{
			CandidateMin: wire.Thresholds.CandidateMin,
			CorrelateMin: wire.Thresholds.CorrelateMin,
		},
		Graph: GraphLimits{
			Enabled:         graphEnabled,
			MaxDepth:        wire.Graph.MaxDepth,
			NodeLimit:       wire.Graph.NodeLimit,
			EdgeLimit:       wire.Graph.EdgeLimit,
			PathAggregation: PathAggregation(wire.Graph.PathAggregation),
		},
		SingleStrategyPenalty: wire.SingleStrategyPenalty,
		CorrelationRules:      wire.CorrelationRules,
		ParallelStrategies:    wire.ParallelStrategies,
	}

	if len(wire.StrategyConfig) > 0 {
		cfg.StrategyConfig = make(map[string]StrategyConfig, len(wire.StrategyConfig))
		for name, sc := range wire.StrategyConfig {
			cfg.StrategyConfig[name] = StrategyConfig{
				Enabled: sc.Enabled,
				Budget:  sc.Budget,
				Options: sc.Options,
			}
		}
	}

	return cfg
}
