package artifact

import (
	"regexp"
	"strings"
)

// tablePattern pairs a regex whose first capture group is a candidate
// table name with the confidence that match deserves (§4.1). Ranked
// from most to least specific; a name may be confirmed by several
// patterns across several change descriptors, in which case the
// highest confidence wins.
type tablePattern struct {
	re         *regexp.Regexp
	confidence float64
}

var tablePatterns = []tablePattern{
	{regexp.MustCompile(`(?i)\b(?:create|drop)\s+table\s+(?:if\s+(?:not\s+)?exists\s+)?([a-zA-Z_][a-zA-Z0-9_]*)`), 1.0},
	{regexp.MustCompile(`(?i)\balter\s+table\s+([a-zA-Z_][a-zA-Z0-9_]*)`), 0.9},
	{regexp.MustCompile(`(?i)\bupdate\s+([a-zA-Z_][a-zA-Z0-9_]*)`), 0.8},
	{regexp.MustCompile(`(?i)\binsert\s+into\s+([a-zA-Z_][a-zA-Z0-9_]*)`), 0.8},
	{regexp.MustCompile(`(?i)\bdelete\s+from\s+([a-zA-Z_][a-zA-Z0-9_]*)`), 0.8},
	{regexp.MustCompile(`(?i)\bfrom\s+([a-zA-Z_][a-zA-Z0-9_]*)`), 0.7},
	{regexp.MustCompile(`(?i)\bjoin\s+([a-zA-Z_][a-zA-Z0-9_]*)`), 0.7},
}

// sqlKeywords are words the patterns above can accidentally capture
// (e.g. "from where" in a compound clause); never treated as table
// names (§4.1).
var sqlKeywords = map[string]struct{}{
	"select": {}, "from": {}, "where": {}, "and": {}, "or": {}, "as": {}, "on": {}, "set": {},
}

// expandDatabase fans a SQL drift result out into one artifact per
// table name found across its change descriptors, keeping the
// highest-confidence occurrence per name.
func expandDatabase(r DriftResult) ([]Artifact, []Warning) {
	best := make(map[string]float64)
	var order []string
	note := func(name string, confidence float64) {
		cur, ok := best[name]
		if !ok {
			order = append(order, name)
		}
		if !ok || confidence > cur {
			best[name] = confidence
		}
	}

	for _, c := range r.Changes {
		for _, p := range tablePatterns {
			for _, m := range p.re.FindAllStringSubmatch(c, -1) {
				name := strings.ToLower(m[1])
				if _, bad := sqlKeywords[name]; bad {
					continue
				}
				note(name, p.confidence)
			}
		}
	}

	// Entities named explicitly by the analyzer are tables too, even
	// absent a parseable change descriptor.
	for _, e := range r.Entities {
		note(strings.ToLower(e), 1.0)
	}

	if len(best) == 0 {
		return nil, []Warning{{Reason: "database result named no tables", Input: r.File}}
	}

	out := make([]Artifact, 0, len(order))
	for _, name := range order {
		a := baseArtifact(r, "db:table:"+name, KindDatabase)
		a.Metadata.Entities = []string{name}
		a.Metadata.Operations = dbOperations(r.Changes)
		if a.Metadata.Extra == nil {
			a.Metadata.Extra = make(map[string]any)
		}
		a.Metadata.Extra["tableNameConfidence"] = best[name]
		out = append(out, a)
	}
	return out, nil
}

func dbOperations(changes []string) []string {
	var ops []string
	add := func(op string) {
		for _, existing := range ops {
			if existing == op {
				return
			}
		}
		ops = append(ops, op)
	}
	for _, c := range changes {
		lc := strings.ToLower(c)
		switch {
		case strings.Contains(lc, "create table"), strings.Contains(lc, "insert"):
			add(string(OperationCreate))
		case strings.Contains(lc, "select"):
			add(string(OperationRead))
		case strings.Contains(lc, "update"), strings.Contains(lc, "alter"):
			add(string(OperationUpdate))
		case strings.Contains(lc, "delete"), strings.Contains(lc, "drop"):
			add(string(OperationDelete))
		}
	}
	return ops
}
