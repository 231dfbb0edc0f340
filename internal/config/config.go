package config

import "fmt"

// PathAggregation selects how impact propagation combines edge
// confidences along a path.
type PathAggregation string

const (
	// PathAggregationMin is the conservative bottleneck aggregation.
	PathAggregationMin PathAggregation = "min"
	// PathAggregationProduct is multiplicative decay aggregation.
	PathAggregationProduct PathAggregation = "product"
)

// Thresholds holds the score cutoffs that gate candidate selection and
// correlation fusion.
type Thresholds struct {
	// CandidateMin is the minimum low-cost signal score for a pair to
	// become a candidate for expensive strategies.
	CandidateMin float64
	// CorrelateMin is the minimum fused score for a correlation to
	// survive the aggregator's threshold gate.
	CorrelateMin float64
}

// GraphLimits bounds the size of the materialized artifact graph and
// the depth of its traversals.
type GraphLimits struct {
	Enabled         bool
	MaxDepth        int
	NodeLimit       int
	EdgeLimit       int
	PathAggregation PathAggregation
}

// StrategyConfig configures a single correlation strategy by name.
type StrategyConfig struct {
	Enabled bool
	Budget  string
	Options map[string]any
}

// CorrelationRule is a user-declared override for a specific
// (src, dst, relationship) triple.
type CorrelationRule struct {
	Src          string  `koanf:"src" yaml:"src" json:"src"`
	Dst          string  `koanf:"dst" yaml:"dst" json:"dst"`
	Relationship string  `koanf:"relationship" yaml:"relationship" json:"relationship"`
	Score        float64 `koanf:"score" yaml:"score" json:"score"`
}

// EngineConfig holds all recognized configuration for the Correlation &
// Impact Engine (spec.md §6).
type EngineConfig struct {
	Thresholds Thresholds
	Graph      GraphLimits

	// SingleStrategyPenalty scales a correlation's confidence when it
	// was fused from a single contributing strategy (§4.4 step 3).
	SingleStrategyPenalty float64

	// StrategyConfig maps strategy name to its per-strategy settings.
	StrategyConfig map[string]StrategyConfig

	// CorrelationRules are user-defined correlations that dominate any
	// signal-derived score for the same (src, dst, relationship).
	CorrelationRules []CorrelationRule

	// ParallelStrategies is loaded from configuration but not read by
	// the strategy runner, which always runs each wave sequentially.
	ParallelStrategies bool
}

// Defaults returns the engine configuration documented in spec.md §6.
func Defaults() *EngineConfig {
	return &EngineConfig{
		Thresholds: Thresholds{
			CandidateMin: 0.35,
			CorrelateMin: 0.55,
		},
		Graph: GraphLimits{
			Enabled:         true,
			MaxDepth:        3,
			NodeLimit:       2000,
			EdgeLimit:       6000,
			PathAggregation: PathAggregationMin,
		},
		SingleStrategyPenalty: 0.9,
		StrategyConfig: map[string]StrategyConfig{
			"entity":         {Enabled: true, Budget: "low"},
			"operation":      {Enabled: true, Budget: "low"},
			"infrastructure": {Enabled: true, Budget: "low"},
			"dependency":     {Enabled: true, Budget: "low"},
			"temporal":       {Enabled: false, Budget: "medium"},
			"code":           {Enabled: true, Budget: "medium"},
		},
	}
}

// WithDefaults fills zero-valued fields of cfg with the documented
// defaults. An explicit zero is treated the same as unset. Graph.Enabled
// is left as given; only a nil cfg yields Defaults() with Enabled true.
func WithDefaults(cfg *EngineConfig) *EngineConfig {
	d := Defaults()
	if cfg == nil {
		return d
	}

	out := *cfg

	if out.Thresholds.CandidateMin == 0 {
		out.Thresholds.CandidateMin = d.Thresholds.CandidateMin
	}
	if out.Thresholds.CorrelateMin == 0 {
		out.Thresholds.CorrelateMin = d.Thresholds.CorrelateMin
	}
	if out.Graph.MaxDepth == 0 {
		out.Graph.MaxDepth = d.Graph.MaxDepth
	}
	if out.Graph.NodeLimit == 0 {
		out.Graph.NodeLimit = d.Graph.NodeLimit
	}
	if out.Graph.EdgeLimit == 0 {
		out.Graph.EdgeLimit = d.Graph.EdgeLimit
	}
	if out.Graph.PathAggregation == "" {
		out.Graph.PathAggregation = d.Graph.PathAggregation
	}
	if out.SingleStrategyPenalty == 0 {
		out.SingleStrategyPenalty = d.SingleStrategyPenalty
	}
	if out.StrategyConfig == nil {
		out.StrategyConfig = d.StrategyConfig
	} else {
		for name, sc := range d.StrategyConfig {
			if _, ok := out.StrategyConfig[name]; !ok {
				out.StrategyConfig[name] = sc
			}
		}
	}

	return &out
}

// Validate checks that the configuration is self-consistent, returning
// a ConfigError describing the first problem found.
func (c *EngineConfig) Validate() error {
	if c.Thresholds.CandidateMin < 0 || c.Thresholds.CandidateMin > 1 {
		return NewConfigError("thresholds.candidate_min must be in [0,1]")
	}
	if c.Thresholds.CorrelateMin < 0 || c.Thresholds.CorrelateMin > 1 {
		return NewConfigError("thresholds.correlate_min must be in [0,1]")
	}
	if c.Graph.MaxDepth < 0 {
		return NewConfigError("graph.max_depth must be >= 0")
	}
	if c.Graph.NodeLimit < 0 {
		return NewConfigError("graph.node_limit must be >= 0")
	}
	if c.Graph.EdgeLimit < 0 {
		return NewConfigError("graph.edge_limit must be >= 0")
	}
	switch c.Graph.PathAggregation {
	case PathAggregationMin, PathAggregationProduct:
	default:
		return NewConfigError(fmt.Sprintf("graph.path_aggregation must be %q or %q, got %q",
			PathAggregationMin, PathAggregationProduct, c.Graph.PathAggregation))
	}
	if c.SingleStrategyPenalty < 0 || c.SingleStrategyPenalty > 1 {
		return NewConfigError("single_strategy_penalty must be in [0,1]")
	}
	for _, rule := range c.CorrelationRules {
		if rule.Src == "" || rule.Dst == "" || rule.Relationship == "" {
			return NewConfigError("correlationRules entries require src, dst and relationship")
		}
	}
	return nil
}

// ConfigError represents a configuration validation error.
type ConfigError struct {
	message string
}

// NewConfigError creates a new configuration error.
func NewConfigError(message string) *ConfigError {
	return &ConfigError{message: message}
}

// Error returns the error message.
func (e *ConfigError) Error() string {
	return e.message
}
