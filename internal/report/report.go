// Package report assembles the engine's outbound envelope: the fused
// correlation list plus graph-derived analysis, and per-artifact
// enrichment (§6 outbound interfaces).
package report

import (
	"github.com/driftradius/correlator/internal/artifact"
	"github.com/driftradius/correlator/internal/config"
	"github.com/driftradius/correlator/internal/correlate"
	"github.com/driftradius/correlator/internal/graph"
)

// GraphSummary is the minimal read-only view of the built graph
// attached to the report as "_graph". Nil when graph analysis was
// suppressed (§7 kind 3).
type GraphSummary struct {
	NodeCount int `json:"nodeCount"`
	EdgeCount int `json:"edgeCount"`
}

// Report is the engine's public result. It is always populated with
// correlations; the graph-derived fields are nil when graph analysis
// was skipped (node/edge limit breach, or graph.enabled = false),
// which keeps the engine's public entry point fail-open (§7).
type Report struct {
	RunID        string                  `json:"runId"`
	Correlations []correlate.Correlation `json:"correlations"`
	Artifacts    []artifact.Artifact     `json:"artifacts"`
	Warnings     []artifact.Warning      `json:"warnings,omitempty"`

	Graph       *GraphSummary          `json:"_graph,omitempty"`
	Impact      map[string]ImpactEntry `json:"_impact,omitempty"`
	RootCauses  *graph.RootCauseResult `json:"_rootCauses,omitempty"`
	BlastRadius *graph.BlastRadius     `json:"_blastRadius,omitempty"`
}

// ImpactEntry is the JSON-facing view of a graph.ImpactRecord.
type ImpactEntry struct {
	Confidence float64 `json:"confidence"`
	Depth      int     `json:"depth"`
	Source     string  `json:"source"`
}

// Build assembles the final report, enriching artifacts whose id
// appears in the impact map with an impact path and graph metrics
// (§6 outbound per-artifact enrichment).
func Build(
	runID string,
	artifacts []artifact.Artifact,
	correlations []correlate.Correlation,
	warnings []artifact.Warning,
	g *graph.Graph,
	impact map[string]graph.ImpactRecord,
	rootCauses graph.RootCauseResult,
	blast graph.BlastRadius,
	limits config.GraphLimits,
	correlateMin float64,
) *Report {
	r := &Report{
		RunID:        runID,
		Correlations: correlations,
		Warnings:     warnings,
	}

	if g == nil {
		r.Artifacts = artifacts
		return r
	}

	r.Graph = &GraphSummary{NodeCount: g.NodeCount(), EdgeCount: g.EdgeCount()}
	r.BlastRadius = &blast
	r.RootCauses = &rootCauses

	rootCauseIDs := make(map[string]struct{}, len(rootCauses.Causes))
	for _, c := range rootCauses.Causes {
		rootCauseIDs[c.NodeID] = struct{}{}
	}

	r.Impact = make(map[string]ImpactEntry, len(impact))
	for id, rec := range impact {
		r.Impact[id] = ImpactEntry{Confidence: rec.Confidence, Depth: rec.Depth, Source: rec.Source}
	}

	r.Artifacts = make([]artifact.Artifact, len(artifacts))
	for i, a := range artifacts {
		rec, inImpact := impact[a.ArtifactID]
		if !inImpact {
			r.Artifacts[i] = a
			continue
		}
		_, isRoot := rootCauseIDs[a.ArtifactID]
		a.GraphMetrics = &artifact.GraphMetrics{
			Confidence:  rec.Confidence,
			Depth:       rec.Depth,
			IsRootCause: isRoot,
		}
		if explanation, ok := graph.Explain(g, limits, correlateMin, rec.Source, a.ArtifactID); ok {
			a.ImpactPath = explanation.Text
		}
		r.Artifacts[i] = a
	}

	return r
}
