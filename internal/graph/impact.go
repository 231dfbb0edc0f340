package graph

import (
	"fmt"

	"github.com/driftradius/correlator/internal/config"
)

// Impact computes the best (highest-confidence) record for every
// non-changed node reachable from any changed node (§4.5.2).
func Impact(g *Graph, limits config.GraphLimits, minConfidence float64) map[string]ImpactRecord {
	impact := make(map[string]ImpactRecord)

	for _, source := range g.ChangedNodes() {
		propagateFrom(g, source, limits, minConfidence, impact)
	}

	for _, source := range g.ChangedNodes() {
		delete(impact, source)
	}

	return impact
}

type frontierItem struct {
	nodeID     string
	confidence float64
	depth      int
	path       []*Edge
}

// propagateFrom runs a single-source layered BFS, aggregating path
// confidence by limits.PathAggregation and stopping expansion once
// pathConfidence falls below minConfidence or depth exceeds
// limits.MaxDepth. A (nodeId, depth) visited set prevents cycles
// while still allowing the same node to be reached at different
// depths by different paths.
func propagateFrom(g *Graph, source string, limits config.GraphLimits, minConfidence float64, impact map[string]ImpactRecord) {
	visited := make(map[string]bool)
	queue := []frontierItem{{nodeID: source, confidence: 1.0, depth: 0}}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		if cur.depth >= limits.MaxDepth {
			continue
		}

		for _, edge := range g.Forward(cur.nodeID) {
			childConfidence := aggregateConfidence(limits.PathAggregation, cur.confidence, edge.Confidence)
			if childConfidence < minConfidence {
				continue
			}
			childDepth := cur.depth + 1
			visitKey := fmt.Sprintf("%s@%d", edge.Dst, childDepth)
			if visited[visitKey] {
				continue
			}
			visited[visitKey] = true

			childPath := appendEdge(cur.path, edge)

			if node := g.Node(edge.Dst); node != nil && !node.Changed {
				if rec, ok := impact[edge.Dst]; !ok || childConfidence > rec.Confidence {
					impact[edge.Dst] = ImpactRecord{
						NodeID:     edge.Dst,
						Confidence: childConfidence,
						Path:       childPath,
						Depth:      childDepth,
						Source:     source,
					}
				}
			}

			queue = append(queue, frontierItem{nodeID: edge.Dst, confidence: childConfidence, depth: childDepth, path: childPath})
		}
	}
}

func appendEdge(path []*Edge, e *Edge) []*Edge {
	out := make([]*Edge, len(path)+1)
	copy(out, path)
	out[len(path)] = e
	return out
}

// aggregateConfidence combines a path's confidence so far with the
// next edge's confidence according to the configured strategy
// (§4.5.2).
func aggregateConfidence(mode config.PathAggregation, pathConfidence, edgeConfidence float64) float64 {
	switch mode {
	case config.PathAggregationProduct:
		return pathConfidence * edgeConfidence
	default:
		if edgeConfidence < pathConfidence {
			return edgeConfidence
		}
		return pathConfidence
	}
}
