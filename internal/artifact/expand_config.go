package artifact

import "regexp"

// dependencyPattern matches analyzer change descriptors of the form
// "DEPENDENCY: <name>" (§4.1).
var dependencyPattern = regexp.MustCompile(`(?i)DEPENDENCY:\s*(\S+)`)

// expandConfiguration fans a configuration drift result out into one
// artifact per bundled file (named in entities), or a single atomic
// artifact keyed by its file when no bundle is declared.
func expandConfiguration(r DriftResult) ([]Artifact, []Warning) {
	deps := extractDependencies(r.Changes)

	if len(r.Entities) == 0 {
		a := baseArtifact(r, "config:"+fallbackDiscriminator(r), KindConfiguration)
		a.Metadata.Dependencies = deps
		return []Artifact{a}, nil
	}

	out := make([]Artifact, 0, len(r.Entities))
	for _, file := range r.Entities {
		a := baseArtifact(r, "config:"+file, KindConfiguration)
		a.File = file
		a.Metadata.Dependencies = deps
		out = append(out, a)
	}
	return out, nil
}

func extractDependencies(changes []string) []string {
	var deps []string
	for _, c := range changes {
		for _, m := range dependencyPattern.FindAllStringSubmatch(c, -1) {
			deps = append(deps, m[1])
		}
	}
	return deps
}
