// Package artifact defines the atomic unit of drift and the expansion
// logic that turns heterogeneous drift results into a flat list of
// artifacts with structured metadata.
package artifact

// Kind classifies what an artifact represents.
type Kind string

const (
	KindAPI            Kind = "api"
	KindDatabase       Kind = "database"
	KindInfrastructure Kind = "infrastructure"
	KindConfiguration  Kind = "configuration"
	KindCode           Kind = "code"
	KindUnknown        Kind = "unknown"
)

// Severity is the analyzer's advisory judgment of how disruptive a
// change is. It never feeds into scoring; it is carried through for
// reporting only.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Operation is a normalized CRUD verb derived from change descriptors.
type Operation string

const (
	OperationCreate Operation = "create"
	OperationRead   Operation = "read"
	OperationUpdate Operation = "update"
	OperationDelete Operation = "delete"
)

// Metadata holds the structured facts the expander derives from an
// artifact's raw change descriptors.
type Metadata struct {
	Entities     []string `json:"entities,omitempty"`
	Operations   []string `json:"operations,omitempty"`
	Fields       []string `json:"fields,omitempty"`
	Dependencies []string `json:"dependencies,omitempty"`

	// Extra carries kind-specific structured fields pulled out of a
	// drift result's nested metadata object (flattened dotted paths),
	// bounded to a walk depth of 10 (§5 resource bounds).
	Extra map[string]any `json:"extra,omitempty"`
}

// Artifact is the atomic unit of drift: one API endpoint, one table,
// one IaC resource, one config file, one code unit.
type Artifact struct {
	ArtifactID string   `json:"artifactId"`
	Kind       Kind     `json:"kind"`
	File       string   `json:"file,omitempty"`
	Changed    bool     `json:"changed"`
	Severity   Severity `json:"severity,omitempty"`
	Service    string   `json:"service,omitempty"`
	Metadata   Metadata `json:"metadata"`
	Changes    []string `json:"changes,omitempty"`

	// RiskHint is an optional analyzer-supplied advisory score,
	// carried through untouched; the engine never derives it and
	// never lets it influence confidence.
	RiskHint *float64 `json:"riskHint,omitempty"`

	// ImpactPath and GraphMetrics are populated by the report stage
	// after graph analysis, never by the expander.
	ImpactPath   string        `json:"impactPath,omitempty"`
	GraphMetrics *GraphMetrics `json:"graphMetrics,omitempty"`
}

// GraphMetrics is the per-artifact enrichment attached to artifacts
// reachable in the impact map (§6 outbound interface).
type GraphMetrics struct {
	Confidence  float64 `json:"confidence"`
	Depth       int     `json:"depth"`
	IsRootCause bool    `json:"isRootCause"`
}

// FileChange is one entry of the inbound file list (§6).
type FileChange struct {
	Filename  string `json:"filename"`
	Status    string `json:"status"`
	Additions int    `json:"additions"`
	Deletions int    `json:"deletions"`
}

// DriftResult is the inbound per-analyzer verdict (§6). A single
// result may describe several endpoints or tables; Expand fans each
// out into its own Artifact.
type DriftResult struct {
	Type      string         `json:"type"`
	File      string         `json:"file,omitempty"`
	Severity  string         `json:"severity,omitempty"`
	Changed   bool           `json:"changed,omitempty"`
	Endpoints []string       `json:"endpoints,omitempty"`
	Entities  []string       `json:"entities,omitempty"`
	Changes   []string       `json:"changes,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	Service   string         `json:"service,omitempty"`
}

// Warning records why a drift result (or a piece of it) could not be
// turned into a valid artifact. Expansion never errors; invalid input
// is recorded here and skipped (§7 kind 2).
type Warning struct {
	Reason string `json:"reason"`
	Input  string `json:"input,omitempty"`
}
