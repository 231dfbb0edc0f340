// Package strategy implements the fixed roster of correlation
// strategies (§4.2). The roster is closed: strategies are registered
// statically in roster.go and toggled only through configuration,
// never through runtime plugin registration.
package strategy

import (
	"github.com/driftradius/correlator/internal/artifact"
	"github.com/driftradius/correlator/internal/config"
	"github.com/driftradius/correlator/internal/correlate"
)

// Budget classifies how expensive a strategy is to run.
type Budget string

const (
	BudgetLow    Budget = "low"
	BudgetMedium Budget = "medium"
	BudgetHigh   Budget = "high"
)

// Pair is an ordered (src, dst) artifact id pair.
type Pair struct {
	Src string
	Dst string
}

// RunContext is the read-only view a strategy gets of the current
// run. CandidatePairs is nil for low-budget strategies, which run
// before candidate selection exists (§4.2).
type RunContext struct {
	Artifacts      []artifact.Artifact
	Files          []artifact.FileChange
	Config         *config.EngineConfig
	ProcessedPairs map[correlate.Triple]struct{}
	CandidatePairs map[Pair]struct{}
}

// Strategy is the capability set every correlation strategy
// implements (§4.2, §6).
type Strategy interface {
	Name() string
	Budget() Budget
	Enabled(cfg *config.EngineConfig) bool
	Run(ctx RunContext) ([]correlate.Signal, error)
}

// Has reports whether the exact (src, dst, relationship) triple is
// present in ctx.ProcessedPairs.
func (c RunContext) Has(src, dst, relationship string) bool {
	_, ok := c.ProcessedPairs[correlate.Triple{Src: src, Dst: dst, Relationship: relationship}]
	return ok
}

// IsCandidate reports whether (src, dst) or (dst, src) survived
// candidate selection.
// Low-budget strategies (CandidatePairs == nil) always answer true,
// since they run before that set exists.
func (c RunContext) IsCandidate(src, dst string) bool {
	if c.CandidatePairs == nil {
		return true
	}
	_, ok := c.CandidatePairs[Pair{Src: src, Dst: dst}]
	if !ok {
		_, ok = c.CandidatePairs[Pair{Src: dst, Dst: src}]
	}
	return ok
}
