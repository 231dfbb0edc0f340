package artifact

import (
	"regexp"
	"strings"
)

// expandAPI fans an API drift result out into one artifact per
// endpoint. Each endpoint string is expected in "METHOD /path" form;
// a single token is treated as a bare path with method UNKNOWN, and a
// blank entry is skipped with a warning.
func expandAPI(r DriftResult) ([]Artifact, []Warning) {
	endpoints := r.Endpoints
	if len(endpoints) == 0 {
		endpoints = []string{""}
	}

	out := make([]Artifact, 0, len(endpoints))
	var warnings []Warning

	for _, ep := range endpoints {
		method, path, ok := splitEndpoint(ep)
		if !ok {
			warnings = append(warnings, Warning{Reason: "api endpoint missing method or path", Input: ep})
			continue
		}

		a := baseArtifact(r, "api:"+method+":"+path, KindAPI)
		a.Metadata.Entities = pathEntities(path)
		a.Metadata.Operations = apiOperations(method, r.Changes)
		out = append(out, a)
	}

	return out, warnings
}

func splitEndpoint(ep string) (method, path string, ok bool) {
	fields := strings.Fields(ep)
	switch len(fields) {
	case 0:
		return "", "", false
	case 1:
		// Bare path with no method.
		return "UNKNOWN", fields[0], true
	default:
		return strings.ToUpper(fields[0]), fields[1], true
	}
}

// pathEntities derives entity names from a URL path, dropping file
// extensions and empty segments (§4.1).
func pathEntities(path string) []string {
	segments := strings.Split(path, "/")
	out := make([]string, 0, len(segments))
	for _, s := range segments {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if i := strings.LastIndex(s, "."); i > 0 {
			s = s[:i]
		}
		// Path parameters (":id", "{id}") aren't entity names.
		if strings.HasPrefix(s, ":") || strings.HasPrefix(s, "{") {
			continue
		}
		out = append(out, s)
	}
	return out
}

var (
	createPattern = regexp.MustCompile(`(?i)\b(post|create)\b`)
	readPattern   = regexp.MustCompile(`(?i)\b(get|read)\b`)
	updatePattern = regexp.MustCompile(`(?i)\b(put|patch|update)\b`)
	deletePattern = regexp.MustCompile(`(?i)\b(delete)\b`)
)

// apiOperations normalizes the HTTP method and any operation keywords
// found in the change descriptors into the create/read/update/delete
// vocabulary (§4.1).
func apiOperations(method string, changes []string) []string {
	var ops []string
	add := func(op string) {
		for _, existing := range ops {
			if existing == op {
				return
			}
		}
		ops = append(ops, op)
	}

	switch strings.ToUpper(method) {
	case "POST":
		add(string(OperationCreate))
	case "GET":
		add(string(OperationRead))
	case "PUT", "PATCH":
		add(string(OperationUpdate))
	case "DELETE":
		add(string(OperationDelete))
	}

	for _, c := range changes {
		switch {
		case createPattern.MatchString(c):
			add(string(OperationCreate))
		case readPattern.MatchString(c):
			add(string(OperationRead))
		case updatePattern.MatchString(c):
			add(string(OperationUpdate))
		case deletePattern.MatchString(c):
			add(string(OperationDelete))
		}
	}

	return ops
}
