package graph

import (
	"fmt"
	"strings"

	"github.com/driftradius/correlator/internal/config"
)

// Explanation is a human-readable rendering of a path between two
// artifacts (§4.5.5).
type Explanation struct {
	Path       []*Edge
	Confidence float64
	Text       string
}

// Explain finds the shortest (fewest-hop) path from srcID to dstID,
// bounded by limits.MaxDepth and minConfidence, via BFS. It returns
// false if no qualifying path exists.
func Explain(g *Graph, limits config.GraphLimits, minConfidence float64, srcID, dstID string) (Explanation, bool) {
	if srcID == dstID {
		return Explanation{}, false
	}

	visited := map[string]bool{srcID: true}
	queue := []frontierItem{{nodeID: srcID, confidence: 1.0, depth: 0}}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		if cur.depth >= limits.MaxDepth {
			continue
		}

		for _, edge := range g.Forward(cur.nodeID) {
			if visited[edge.Dst] {
				continue
			}
			childConfidence := aggregateConfidence(limits.PathAggregation, cur.confidence, edge.Confidence)
			if childConfidence < minConfidence {
				continue
			}
			visited[edge.Dst] = true
			childPath := appendEdge(cur.path, edge)

			if edge.Dst == dstID {
				return renderExplanation(g, childPath, childConfidence), true
			}

			queue = append(queue, frontierItem{nodeID: edge.Dst, confidence: childConfidence, depth: cur.depth + 1, path: childPath})
		}
	}

	return Explanation{}, false
}

func renderExplanation(g *Graph, path []*Edge, confidence float64) Explanation {
	lines := make([]string, 0, len(path))
	for _, e := range path {
		lines = append(lines, fmt.Sprintf("%s --%s(%d%%)--> %s",
			nodeLabel(g, e.Src), e.Type, int(e.Confidence*100+0.5), nodeLabel(g, e.Dst)))
	}
	return Explanation{
		Path:       path,
		Confidence: confidence,
		Text:       strings.Join(lines, "\n"),
	}
}

func nodeLabel(g *Graph, id string) string {
	n := g.Node(id)
	if n == nil {
		return id
	}
	if n.File != "" {
		return string(n.Kind) + ":" + n.File
	}
	return id
}
