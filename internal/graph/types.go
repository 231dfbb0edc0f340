// Package graph materializes fused correlations into a directed
// confidence graph and answers impact, root-cause and blast-radius
// queries over it (§4.5).
package graph

import (
	"errors"

	"github.com/driftradius/correlator/internal/artifact"
	"github.com/driftradius/correlator/internal/correlate"
)

// ErrGraphLimitExceeded is returned by Build when the node or edge
// count breaches the configured safety bounds (§4.5.1, §7 kind 3).
// The caller still has the correlation list; only graph-dependent
// analysis is skipped.
var ErrGraphLimitExceeded = errors.New("graph: node or edge limit exceeded")

// Node is one artifact materialized in the graph.
type Node struct {
	ID       string
	Kind     artifact.Kind
	File     string
	Service  string
	Severity artifact.Severity
	Changed  bool
	Meta     map[string]any
}

// Edge is a directed, confidence-scored relationship between two
// nodes. At most one Edge exists per (Src, Dst, Type) triple; shared
// by both the forward and reverse adjacency so an update to its
// fields is visible from either traversal direction (§9, fixing the
// source's confidence/provenance update-ordering bug).
type Edge struct {
	Src        string
	Dst        string
	Type       string
	Confidence float64
	Provenance string
	Evidence   []correlate.Evidence
}

// ImpactRecord is the best (highest-confidence) path found from a
// changed node to a reachable node (§4.5.2).
type ImpactRecord struct {
	NodeID     string
	Confidence float64
	Path       []*Edge
	Depth      int
	Source     string
}

// Graph is the directed multigraph of artifacts and their fused
// relationships.
type Graph struct {
	nodes      map[string]*Node
	nodeOrder  []string
	forward    map[string][]*Edge
	reverse    map[string][]*Edge
	edgesByKey map[correlate.Triple]*Edge
}

func newGraph() *Graph {
	return &Graph{
		nodes:      make(map[string]*Node),
		forward:    make(map[string][]*Edge),
		reverse:    make(map[string][]*Edge),
		edgesByKey: make(map[correlate.Triple]*Edge),
	}
}

// Node returns the node with the given id, or nil.
func (g *Graph) Node(id string) *Node { return g.nodes[id] }

// NodeCount returns the number of distinct nodes.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of distinct (src, dst, type) edges.
func (g *Graph) EdgeCount() int { return len(g.edgesByKey) }

// Forward returns the outgoing edges of id, in insertion order.
func (g *Graph) Forward(id string) []*Edge { return g.forward[id] }

// Reverse returns the incoming edges of id, in insertion order.
func (g *Graph) Reverse(id string) []*Edge { return g.reverse[id] }

// NodeOrder returns all node ids in insertion order.
func (g *Graph) NodeOrder() []string { return g.nodeOrder }

// ChangedNodes returns the ids of changed nodes, in insertion order.
func (g *Graph) ChangedNodes() []string {
	var out []string
	for _, id := range g.nodeOrder {
		if g.nodes[id].Changed {
			out = append(out, id)
		}
	}
	return out
}
