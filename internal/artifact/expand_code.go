package artifact

// expandCode fans a code drift result out into one artifact per file
// touched. Code artifacts carry no derived metadata beyond what the
// analyzer already supplied; the `code` strategy scans their change
// descriptors for other artifacts' entity names (§4.2).
func expandCode(r DriftResult) ([]Artifact, []Warning) {
	if len(r.Entities) == 0 {
		a := baseArtifact(r, "code:"+fallbackDiscriminator(r), KindCode)
		return []Artifact{a}, nil
	}

	out := make([]Artifact, 0, len(r.Entities))
	for _, file := range r.Entities {
		a := baseArtifact(r, "code:"+file, KindCode)
		a.File = file
		out = append(out, a)
	}
	return out, nil
}
