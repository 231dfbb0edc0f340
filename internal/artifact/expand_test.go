package artifact

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandAPI_FansOutEndpoints(t *testing.T) {
	results := []DriftResult{
		{
			Type:      "api",
			File:      "routes/users.go",
			Changed:   true,
			Endpoints: []string{"POST /users", "GET /users/:id"},
			Changes:   []string{"added validation"},
		},
	}

	artifacts, warnings := Expand(results)
	require.Empty(t, warnings)
	require.Len(t, artifacts, 2)

	assert.Equal(t, "api:POST:/users", artifacts[0].ArtifactID)
	assert.Equal(t, []string{"users"}, artifacts[0].Metadata.Entities)
	assert.Equal(t, []string{string(OperationCreate)}, artifacts[0].Metadata.Operations)

	assert.Equal(t, "api:GET:/users/:id", artifacts[1].ArtifactID)
	// ":id" is a path parameter, not an entity.
	assert.Equal(t, []string{"users"}, artifacts[1].Metadata.Entities)
	assert.Equal(t, []string{string(OperationRead)}, artifacts[1].Metadata.Operations)
}

func TestExpandAPI_BarePathWithoutMethod(t *testing.T) {
	results := []DriftResult{
		{Type: "api", Endpoints: []string{"/health"}},
	}
	artifacts, warnings := Expand(results)
	require.Empty(t, warnings)
	require.Len(t, artifacts, 1)
	assert.Equal(t, "api:UNKNOWN:/health", artifacts[0].ArtifactID)
}

func TestExpandAPI_EmptyEndpointWarns(t *testing.T) {
	results := []DriftResult{
		{Type: "api", File: "routes/broken.go", Endpoints: []string{"   "}},
	}
	artifacts, warnings := Expand(results)
	assert.Empty(t, artifacts)
	require.Len(t, warnings, 1)
	assert.Equal(t, "api endpoint missing method or path", warnings[0].Reason)
}

func TestExpandDatabase_RankedTableExtraction(t *testing.T) {
	results := []DriftResult{
		{
			Type: "database",
			File: "migrations/0001.sql",
			Changes: []string{
				"CREATE TABLE IF NOT EXISTS orders (id INT)",
				"SELECT * FROM orders JOIN customers ON orders.customer_id = customers.id",
				"UPDATE customers SET active = true",
			},
		},
	}

	artifacts, warnings := Expand(results)
	require.Empty(t, warnings)
	require.Len(t, artifacts, 2)

	byID := map[string]Artifact{}
	for _, a := range artifacts {
		byID[a.ArtifactID] = a
	}

	orders, ok := byID["db:table:orders"]
	require.True(t, ok)
	// CREATE TABLE (1.0) beats the later FROM-clause match (0.7).
	assert.Equal(t, 1.0, orders.Metadata.Extra["tableNameConfidence"])

	customers, ok := byID["db:table:customers"]
	require.True(t, ok)
	// UPDATE (0.8) beats JOIN (0.7).
	assert.Equal(t, 0.8, customers.Metadata.Extra["tableNameConfidence"])
}

func TestExpandDatabase_RejectsSQLKeywordsAsTableNames(t *testing.T) {
	results := []DriftResult{
		{
			Type:    "database",
			File:    "q.sql",
			Changes: []string{"SELECT * FROM where ON set"},
		},
	}
	artifacts, warnings := Expand(results)
	assert.Empty(t, artifacts)
	require.Len(t, warnings, 1)
	assert.Equal(t, "database result named no tables", warnings[0].Reason)
}

func TestExpandDatabase_EntitiesAlwaysConfirmed(t *testing.T) {
	results := []DriftResult{
		{Type: "database", File: "q.sql", Entities: []string{"Invoices"}},
	}
	artifacts, _ := Expand(results)
	require.Len(t, artifacts, 1)
	assert.Equal(t, "db:table:invoices", artifacts[0].ArtifactID)
	assert.Equal(t, 1.0, artifacts[0].Metadata.Extra["tableNameConfidence"])
}

func TestExpandDatabase_IsDeterministicAcrossRuns(t *testing.T) {
	result := DriftResult{
		Type: "database",
		File: "migrations/0002.sql",
		Changes: []string{
			"ALTER TABLE a ADD COLUMN x",
			"ALTER TABLE b ADD COLUMN y",
			"ALTER TABLE c ADD COLUMN z",
			"SELECT * FROM d",
		},
	}

	var firstOrder []string
	for i := 0; i < 20; i++ {
		artifacts, _ := Expand([]DriftResult{result})
		ids := make([]string, len(artifacts))
		for j, a := range artifacts {
			ids[j] = a.ArtifactID
		}
		if firstOrder == nil {
			firstOrder = ids
			continue
		}
		assert.Equal(t, firstOrder, ids, "artifact order must be stable across repeated expansions")
	}
}

func TestExpandInfrastructure_SplitsResourceNames(t *testing.T) {
	results := []DriftResult{
		{
			Type:     "infrastructure",
			File:     "main.tf",
			Entities: []string{"aws_s3_bucket.data", "aws_iam_role:app"},
		},
	}
	artifacts, warnings := Expand(results)
	require.Empty(t, warnings)
	require.Len(t, artifacts, 2)
	assert.Equal(t, "iac:aws_s3_bucket:data", artifacts[0].ArtifactID)
	assert.Equal(t, "iac:aws_iam_role:app", artifacts[1].ArtifactID)
}

func TestExpandInfrastructure_NoEntitiesFallsBackToFile(t *testing.T) {
	results := []DriftResult{{Type: "infrastructure", File: "main.tf"}}
	artifacts, warnings := Expand(results)
	require.Empty(t, warnings)
	require.Len(t, artifacts, 1)
	assert.Equal(t, "iac:resource:main.tf", artifacts[0].ArtifactID)
}

func TestExpandInfrastructure_MalformedEntityWarns(t *testing.T) {
	results := []DriftResult{
		{Type: "infrastructure", File: "main.tf", Entities: []string{"nodotsorcolons"}},
	}
	artifacts, warnings := Expand(results)
	assert.Empty(t, artifacts)
	require.Len(t, warnings, 1)
	assert.Equal(t, "infrastructure entity has no resource type", warnings[0].Reason)
}

func TestExpandConfiguration_DependencyExtraction(t *testing.T) {
	results := []DriftResult{
		{
			Type:    "configuration",
			File:    "package.json",
			Changes: []string{"DEPENDENCY: lodash", "DEPENDENCY: express"},
		},
	}
	artifacts, _ := Expand(results)
	require.Len(t, artifacts, 1)
	assert.Equal(t, []string{"lodash", "express"}, artifacts[0].Metadata.Dependencies)
}

func TestExpandConfiguration_BundleFansOut(t *testing.T) {
	results := []DriftResult{
		{
			Type:     "configuration",
			File:     "config/bundle.yaml",
			Entities: []string{"config/a.yaml", "config/b.yaml"},
		},
	}
	artifacts, _ := Expand(results)
	require.Len(t, artifacts, 2)
	assert.Equal(t, "config:config/a.yaml", artifacts[0].ArtifactID)
	assert.Equal(t, "config/a.yaml", artifacts[0].File)
}

func TestExpandCode_FansOutPerFile(t *testing.T) {
	results := []DriftResult{
		{Type: "code", Entities: []string{"a.go", "b.go"}},
	}
	artifacts, _ := Expand(results)
	require.Len(t, artifacts, 2)
	assert.Equal(t, "code:a.go", artifacts[0].ArtifactID)
	assert.Equal(t, "code:b.go", artifacts[1].ArtifactID)
}

func TestExpand_UnknownTypeKeepsArtifact(t *testing.T) {
	results := []DriftResult{{Type: "mystery", File: "odd.txt"}}
	artifacts, warnings := Expand(results)
	assert.Empty(t, warnings)
	require.Len(t, artifacts, 1)
	assert.Equal(t, KindUnknown, artifacts[0].Kind)
	assert.Equal(t, "unknown:odd.txt", artifacts[0].ArtifactID)
}

func TestExpand_MergesOnArtifactIDCollision(t *testing.T) {
	results := []DriftResult{
		{Type: "api", Endpoints: []string{"POST /orders"}, Changes: []string{"added field x"}, Severity: "low"},
		{Type: "api", Endpoints: []string{"POST /orders"}, Changes: []string{"added field y"}, Severity: "high", Changed: true},
	}
	artifacts, _ := Expand(results)
	require.Len(t, artifacts, 1)
	a := artifacts[0]
	// First-seen scalar fields win.
	assert.Equal(t, Severity("low"), a.Severity)
	// Changed is unioned via OR.
	assert.True(t, a.Changed)
	assert.Equal(t, []string{"added field x", "added field y"}, a.Changes)
}

func TestWalkMetadata_FlattensNestedPaths(t *testing.T) {
	m := map[string]any{
		"a": "1",
		"b": map[string]any{
			"c": "2",
			"d": map[string]any{"e": "3"},
		},
	}
	out := walkMetadata(m, 0)
	assert.Equal(t, "1", out["a"])
	assert.Equal(t, "2", out["b.c"])
	assert.Equal(t, "3", out["b.d.e"])
}

func TestWalkMetadata_DepthCapTruncates(t *testing.T) {
	// Build metadata nested deeper than maxMetadataDepth.
	var m map[string]any
	leaf := map[string]any{"v": "bottom"}
	m = leaf
	for i := 0; i < maxMetadataDepth+5; i++ {
		m = map[string]any{"n": m}
	}
	out := walkMetadata(m, 0)
	// At the cap, the walk stops and yields nil for that branch,
	// so no entry should reach the "bottom" leaf value.
	for _, v := range out {
		assert.NotEqual(t, "bottom", v)
	}
}

func TestExpand_DropsInvalidWithoutErroring(t *testing.T) {
	results := []DriftResult{
		{Type: "api", Endpoints: []string{""}},
		{Type: "database", Changes: []string{"nothing recognizable here"}},
	}
	artifacts, warnings := Expand(results)
	assert.Empty(t, artifacts)
	assert.Len(t, warnings, 2)
}
