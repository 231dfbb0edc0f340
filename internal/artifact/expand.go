package artifact

import (
	"strings"

	"github.com/driftradius/correlator/internal/logging"
)

var log = logging.GetLogger("artifact")

// maxMetadataDepth bounds the recursive nested-metadata walk (§5).
const maxMetadataDepth = 10

// Expand normalizes a list of drift results into atomic artifacts,
// merging any whose artifactId collides. It never returns an error:
// invalid results are skipped and recorded as warnings (§7 kind 2).
func Expand(results []DriftResult) ([]Artifact, []Warning) {
	byID := make(map[string]*Artifact)
	order := make([]string, 0, len(results))
	var warnings []Warning

	for _, r := range results {
		expanded, warns := expandOne(r)
		warnings = append(warnings, warns...)

		for _, a := range expanded {
			if a.ArtifactID == "" || a.Kind == "" {
				warnings = append(warnings, Warning{
					Reason: "artifact missing id or kind",
					Input:  a.File,
				})
				continue
			}
			if existing, ok := byID[a.ArtifactID]; ok {
				mergeInto(existing, a)
				continue
			}
			cp := a
			byID[a.ArtifactID] = &cp
			order = append(order, a.ArtifactID)
		}
	}

	out := make([]Artifact, 0, len(order))
	for _, id := range order {
		dedupeMetadata(byID[id])
		out = append(out, *byID[id])
	}
	return out, warnings
}

// mergeInto merges b into the first-seen artifact a non-destructively:
// the first one wins on scalar fields, and list/flag fields are
// unioned.
func mergeInto(a *Artifact, b Artifact) {
	if !a.Changed {
		a.Changed = b.Changed
	}
	if a.Severity == "" {
		a.Severity = b.Severity
	}
	if a.Service == "" {
		a.Service = b.Service
	}
	a.Metadata.Entities = append(a.Metadata.Entities, b.Metadata.Entities...)
	a.Metadata.Operations = append(a.Metadata.Operations, b.Metadata.Operations...)
	a.Metadata.Fields = append(a.Metadata.Fields, b.Metadata.Fields...)
	a.Metadata.Dependencies = append(a.Metadata.Dependencies, b.Metadata.Dependencies...)
	for k, v := range b.Metadata.Extra {
		if a.Metadata.Extra == nil {
			a.Metadata.Extra = make(map[string]any)
		}
		if _, exists := a.Metadata.Extra[k]; !exists {
			a.Metadata.Extra[k] = v
		}
	}
	a.Changes = append(a.Changes, b.Changes...)
}

func dedupeMetadata(a *Artifact) {
	a.Metadata.Entities = dedupeStrings(a.Metadata.Entities)
	a.Metadata.Operations = dedupeStrings(a.Metadata.Operations)
	a.Metadata.Fields = dedupeStrings(a.Metadata.Fields)
	a.Metadata.Dependencies = dedupeStrings(a.Metadata.Dependencies)
}

func dedupeStrings(in []string) []string {
	if len(in) == 0 {
		return in
	}
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

// expandOne dispatches a single drift result to its kind-specific
// expander. Unknown types become a single unknown-kind artifact
// rather than being dropped, so downstream strategies can still see
// that something changed.
func expandOne(r DriftResult) ([]Artifact, []Warning) {
	switch strings.ToLower(r.Type) {
	case "api":
		return expandAPI(r)
	case "database":
		return expandDatabase(r)
	case "infrastructure":
		return expandInfrastructure(r)
	case "configuration":
		return expandConfiguration(r)
	case "code":
		return expandCode(r)
	default:
		log.WarnWithFields("drift result has unrecognized type, treating as unknown",
			logging.Field("type", r.Type), logging.Field("file", r.File))
		return []Artifact{baseArtifact(r, unknownID(r), KindUnknown)}, nil
	}
}

func baseArtifact(r DriftResult, id string, kind Kind) Artifact {
	return Artifact{
		ArtifactID: id,
		Kind:       kind,
		File:       r.File,
		Changed:    r.Changed,
		Severity:   Severity(strings.ToLower(r.Severity)),
		Service:    r.Service,
		Changes:    append([]string(nil), r.Changes...),
		Metadata: Metadata{
			Extra: walkMetadata(r.Metadata, 0),
		},
	}
}

func unknownID(r DriftResult) string {
	if r.File != "" {
		return "unknown:" + r.File
	}
	return "unknown:" + r.Type
}

// walkMetadata flattens a nested metadata object into dotted keys,
// bounded by maxMetadataDepth. Pathological (deeply nested, self
// referential-looking) input is simply truncated at the depth cap
// rather than rejected (§7 kind 5).
func walkMetadata(m map[string]any, depth int) map[string]any {
	if m == nil || depth >= maxMetadataDepth {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		switch val := v.(type) {
		case map[string]any:
			for nk, nv := range walkMetadata(val, depth+1) {
				out[k+"."+nk] = nv
			}
		default:
			out[k] = v
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
