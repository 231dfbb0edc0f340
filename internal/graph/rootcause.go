package graph

// Cause is one changed node selected by the greedy cover, with the
// impacted targets it uniquely explains (§4.5.3).
type Cause struct {
	NodeID         string
	Kind           string
	File           string
	CoveredTargets []string
	CoverageScore  float64
}

// RootCauseResult is the greedy set-cover's output.
type RootCauseResult struct {
	Causes   []Cause
	Coverage float64
}

// RootCauseCover attributes the impact set to the smallest set of
// changed nodes that explains it, via greedy weighted set cover
// (§4.5.3). Ties are broken by the graph's node insertion order.
func RootCauseCover(g *Graph, impact map[string]ImpactRecord, minConfidence float64) RootCauseResult {
	explainedBy := make(map[string][]string)
	targets := make(map[string]struct{})

	for _, id := range g.NodeOrder() {
		rec, ok := impact[id]
		if !ok || rec.Confidence < minConfidence {
			continue
		}
		targets[id] = struct{}{}
		explainedBy[rec.Source] = append(explainedBy[rec.Source], id)
	}

	totalTargets := len(targets)
	if totalTargets == 0 {
		return RootCauseResult{}
	}

	candidates := g.ChangedNodes()
	used := make(map[string]bool, len(candidates))
	covered := make(map[string]struct{}, totalTargets)

	var causes []Cause

	for {
		bestID := ""
		bestNewTargets := []string(nil)

		for _, c := range candidates {
			if used[c] {
				continue
			}
			var fresh []string
			for _, t := range explainedBy[c] {
				if _, ok := covered[t]; !ok {
					fresh = append(fresh, t)
				}
			}
			if len(fresh) > len(bestNewTargets) {
				bestID = c
				bestNewTargets = fresh
			}
		}

		if bestID == "" || len(bestNewTargets) == 0 {
			break
		}

		used[bestID] = true
		for _, t := range bestNewTargets {
			covered[t] = struct{}{}
		}

		node := g.Node(bestID)
		cause := Cause{
			NodeID:         bestID,
			CoveredTargets: bestNewTargets,
			CoverageScore:  float64(len(bestNewTargets)) / float64(totalTargets),
		}
		if node != nil {
			cause.Kind = string(node.Kind)
			cause.File = node.File
		}
		causes = append(causes, cause)
	}

	return RootCauseResult{
		Causes:   causes,
		Coverage: float64(len(covered)) / float64(totalTargets),
	}
}
