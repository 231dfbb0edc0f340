package artifact

import "strings"

// expandInfrastructure fans an IaC drift result out into one artifact
// per declared resource. Resources are named "<type>.<logical-id>" or
// "<type>:<logical-id>" in the entities list (Terraform/CloudFormation
// convention); a result with no named resources falls back to a
// single artifact keyed by its file.
func expandInfrastructure(r DriftResult) ([]Artifact, []Warning) {
	if len(r.Entities) == 0 {
		a := baseArtifact(r, "iac:resource:"+fallbackDiscriminator(r), KindInfrastructure)
		return []Artifact{a}, nil
	}

	out := make([]Artifact, 0, len(r.Entities))
	var warnings []Warning
	for _, e := range r.Entities {
		resType, logicalID, ok := splitResourceName(e)
		if !ok {
			warnings = append(warnings, Warning{Reason: "infrastructure entity has no resource type", Input: e})
			continue
		}
		a := baseArtifact(r, "iac:"+resType+":"+logicalID, KindInfrastructure)
		a.Metadata.Entities = []string{logicalID}
		out = append(out, a)
	}
	return out, warnings
}

func splitResourceName(e string) (resType, logicalID string, ok bool) {
	for _, sep := range []string{".", ":"} {
		if i := strings.Index(e, sep); i > 0 {
			return e[:i], e[i+1:], true
		}
	}
	return "", "", false
}

func fallbackDiscriminator(r DriftResult) string {
	if r.File != "" {
		return r.File
	}
	return "unnamed"
}
