package graph

import (
	"github.com/driftradius/correlator/internal/artifact"
	"github.com/driftradius/correlator/internal/config"
	"github.com/driftradius/correlator/internal/correlate"
	"github.com/driftradius/correlator/internal/logging"
)

var log = logging.GetLogger("graph")

const maxEdgeEvidence = 5

// Build materializes artifacts and fused correlations into a Graph,
// enforcing the configured node/edge safety bounds (§4.5.1). On
// breach it returns (nil, ErrGraphLimitExceeded); the caller's
// correlation list remains valid regardless.
func Build(artifacts []artifact.Artifact, correlations []correlate.Correlation, limits config.GraphLimits) (*Graph, error) {
	g := newGraph()

	for _, a := range artifacts {
		g.upsertNode(a)
	}

	for _, c := range correlations {
		g.upsertEdge(c)
	}

	if limits.NodeLimit > 0 && g.NodeCount() > limits.NodeLimit {
		log.WarnWithFields("graph node limit exceeded, returning null graph",
			logging.Field("nodeCount", g.NodeCount()), logging.Field("limit", limits.NodeLimit))
		return nil, ErrGraphLimitExceeded
	}
	if limits.EdgeLimit > 0 && g.EdgeCount() > limits.EdgeLimit {
		log.WarnWithFields("graph edge limit exceeded, returning null graph",
			logging.Field("edgeCount", g.EdgeCount()), logging.Field("limit", limits.EdgeLimit))
		return nil, ErrGraphLimitExceeded
	}

	return g, nil
}

// upsertNode inserts a node for a, or merges a's metadata into the
// first-seen node non-destructively (§4.5.1 step 1).
func (g *Graph) upsertNode(a artifact.Artifact) {
	if existing, ok := g.nodes[a.ArtifactID]; ok {
		mergeNodeMeta(existing, a)
		if a.Changed {
			existing.Changed = true
		}
		return
	}

	g.nodes[a.ArtifactID] = &Node{
		ID:       a.ArtifactID,
		Kind:     a.Kind,
		File:     a.File,
		Service:  a.Service,
		Severity: a.Severity,
		Changed:  a.Changed,
		Meta:     artifactMeta(a),
	}
	g.nodeOrder = append(g.nodeOrder, a.ArtifactID)
}

func mergeNodeMeta(n *Node, a artifact.Artifact) {
	if n.File == "" {
		n.File = a.File
	}
	if n.Service == "" {
		n.Service = a.Service
	}
	if n.Severity == "" {
		n.Severity = a.Severity
	}
	for k, v := range artifactMeta(a) {
		if _, exists := n.Meta[k]; !exists {
			n.Meta[k] = v
		}
	}
}

func artifactMeta(a artifact.Artifact) map[string]any {
	m := make(map[string]any)
	if len(a.Metadata.Entities) > 0 {
		m["entities"] = a.Metadata.Entities
	}
	if len(a.Metadata.Operations) > 0 {
		m["operations"] = a.Metadata.Operations
	}
	if len(a.Metadata.Fields) > 0 {
		m["fields"] = a.Metadata.Fields
	}
	if len(a.Metadata.Dependencies) > 0 {
		m["dependencies"] = a.Metadata.Dependencies
	}
	for k, v := range a.Metadata.Extra {
		m[k] = v
	}
	return m
}

// upsertEdge inserts an edge for c, or merges it into the edge
// already present for the same (src, dst, type) triple.
// De-duplication takes the max confidence and unions evidence
// (capped); the new confidence and its provenance are both computed
// before any mutation, so there is no window where one is updated and
// the other silently isn't (§4.5.1 step 2, §9 open question fix).
func (g *Graph) upsertEdge(c correlate.Correlation) {
	key := correlate.Triple{Src: c.Src, Dst: c.Dst, Relationship: c.Relationship}
	provenance := provenanceOf(c)

	existing, ok := g.edgesByKey[key]
	if !ok {
		e := &Edge{
			Src:        c.Src,
			Dst:        c.Dst,
			Type:       c.Relationship,
			Confidence: c.Confidence,
			Provenance: provenance,
			Evidence:   capEvidence(c.Evidence),
		}
		g.edgesByKey[key] = e
		g.forward[c.Src] = append(g.forward[c.Src], e)
		g.reverse[c.Dst] = append(g.reverse[c.Dst], e)
		return
	}

	newConfidence := existing.Confidence
	newProvenance := existing.Provenance
	if c.Confidence > newConfidence {
		newConfidence = c.Confidence
		newProvenance = provenance
	}
	mergedEvidence := capEvidence(append(append([]correlate.Evidence(nil), existing.Evidence...), c.Evidence...))

	existing.Confidence = newConfidence
	existing.Provenance = newProvenance
	existing.Evidence = mergedEvidence
}

func provenanceOf(c correlate.Correlation) string {
	if c.UserDefined {
		return "user-defined"
	}
	if len(c.Strategies) > 0 {
		return c.Strategies[0]
	}
	return ""
}

func capEvidence(e []correlate.Evidence) []correlate.Evidence {
	if len(e) <= maxEdgeEvidence {
		return e
	}
	return e[:maxEdgeEvidence]
}
