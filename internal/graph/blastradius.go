package graph

// BlastRadius tallies impacted, non-changed nodes by kind, service
// and severity, and computes an overall risk score (§4.5.4).
type BlastRadius struct {
	Total      int            `json:"total"`
	ByKind     map[string]int `json:"byKind"`
	ByService  map[string]int `json:"byService"`
	BySeverity map[string]int `json:"bySeverity"`
	RiskScore  float64        `json:"riskScore"`
}

// ComputeBlastRadius aggregates the impact map into a BlastRadius
// summary. The risk formula weights the number of distinct kinds
// touched and the count of the three structurally sensitive kinds
// (api, database, infrastructure), clamped to [0,1].
func ComputeBlastRadius(g *Graph, impact map[string]ImpactRecord) BlastRadius {
	byKind := make(map[string]int)
	byService := make(map[string]int)
	bySeverity := make(map[string]int)

	for nodeID := range impact {
		node := g.Node(nodeID)
		if node == nil {
			continue
		}
		byKind[string(node.Kind)]++
		if node.Service != "" {
			byService[node.Service]++
		}
		if node.Severity != "" {
			bySeverity[string(node.Severity)]++
		}
	}

	sensitive := byKind["api"] + byKind["database"] + byKind["infrastructure"]
	risk := 0.2*float64(len(byKind)) + 0.3*float64(sensitive)
	if risk > 1.0 {
		risk = 1.0
	}

	return BlastRadius{
		Total:      len(impact),
		ByKind:     byKind,
		ByService:  byService,
		BySeverity: bySeverity,
		RiskScore:  risk,
	}
}
