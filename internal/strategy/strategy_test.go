package strategy

import (
	"errors"
	"testing"

	"github.com/driftradius/correlator/internal/artifact"
	"github.com/driftradius/correlator/internal/config"
	"github.com/driftradius/correlator/internal/correlate"
	"github.com/driftradius/correlator/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func apiArtifact(id string, entities, ops []string) artifact.Artifact {
	return artifact.Artifact{
		ArtifactID: id,
		Kind:       artifact.KindAPI,
		Changed:    true,
		Metadata:   artifact.Metadata{Entities: entities, Operations: ops},
	}
}

func dbArtifact(id string, entities, ops []string) artifact.Artifact {
	return artifact.Artifact{
		ArtifactID: id,
		Kind:       artifact.KindDatabase,
		Changed:    true,
		Metadata:   artifact.Metadata{Entities: entities, Operations: ops},
	}
}

func TestEntityStrategy_MatchesSharedEntity(t *testing.T) {
	s := &entityStrategy{}
	ctx := RunContext{
		Artifacts: []artifact.Artifact{
			apiArtifact("api:1", []string{"orders"}, nil),
			dbArtifact("db:1", []string{"orders"}, nil),
		},
	}
	sigs, err := s.Run(ctx)
	require.NoError(t, err)
	require.Len(t, sigs, 2, "directed pairs are emitted both ways")

	var found bool
	for _, sig := range sigs {
		if sig.Src == "api:1" && sig.Dst == "db:1" {
			found = true
			assert.Equal(t, "uses_table", sig.Relationship)
			assert.Greater(t, sig.Score, 0.5)
		}
	}
	assert.True(t, found)
}

func TestEntityStrategy_SameKindNeverMatches(t *testing.T) {
	s := &entityStrategy{}
	ctx := RunContext{
		Artifacts: []artifact.Artifact{
			dbArtifact("db:1", []string{"orders"}, nil),
			dbArtifact("db:2", []string{"orders"}, nil),
		},
	}
	sigs, err := s.Run(ctx)
	require.NoError(t, err)
	assert.Empty(t, sigs)
}

func TestOperationStrategy_RequiresSharedEntityAndOps(t *testing.T) {
	s := &operationStrategy{}
	ctx := RunContext{
		Artifacts: []artifact.Artifact{
			apiArtifact("api:1", []string{"orders"}, []string{"create"}),
			dbArtifact("db:1", []string{"orders"}, []string{"create"}),
		},
	}
	sigs, err := s.Run(ctx)
	require.NoError(t, err)
	require.Len(t, sigs, 1)
	assert.Equal(t, "api:1", sigs[0].Src)
	assert.Equal(t, "db:1", sigs[0].Dst)
}

func TestOperationStrategy_NoMatchWithoutSharedOps(t *testing.T) {
	s := &operationStrategy{}
	ctx := RunContext{
		Artifacts: []artifact.Artifact{
			apiArtifact("api:1", []string{"orders"}, []string{"create"}),
			dbArtifact("db:1", []string{"orders"}, []string{"delete"}),
		},
	}
	sigs, err := s.Run(ctx)
	require.NoError(t, err)
	assert.Empty(t, sigs)
}

func TestInfrastructureStrategy_EntityMatchBeatsServiceMatch(t *testing.T) {
	s := &infrastructureStrategy{}
	iac := artifact.Artifact{
		ArtifactID: "iac:1", Kind: artifact.KindInfrastructure, Changed: true, Service: "billing",
		Metadata: artifact.Metadata{Entities: []string{"orders"}},
	}
	target := artifact.Artifact{
		ArtifactID: "db:1", Kind: artifact.KindDatabase, Changed: true, Service: "billing",
		Metadata: artifact.Metadata{Entities: []string{"orders"}},
	}
	sigs, err := s.Run(RunContext{Artifacts: []artifact.Artifact{iac, target}})
	require.NoError(t, err)
	require.Len(t, sigs, 1)
	assert.Equal(t, "resource id matches entity", sigs[0].Evidence[0].Reason)
}

func TestInfrastructureStrategy_FallsBackToServiceLabel(t *testing.T) {
	s := &infrastructureStrategy{}
	iac := artifact.Artifact{ArtifactID: "iac:1", Kind: artifact.KindInfrastructure, Changed: true, Service: "billing"}
	target := artifact.Artifact{ArtifactID: "api:1", Kind: artifact.KindAPI, Changed: true, Service: "billing"}
	sigs, err := s.Run(RunContext{Artifacts: []artifact.Artifact{iac, target}})
	require.NoError(t, err)
	require.Len(t, sigs, 1)
	assert.Equal(t, "shared service label", sigs[0].Evidence[0].Reason)
}

func TestDependencyStrategy_MatchesSubstringReference(t *testing.T) {
	s := &dependencyStrategy{}
	cfgArt := artifact.Artifact{
		ArtifactID: "config:1", Kind: artifact.KindConfiguration, Changed: true,
		Metadata: artifact.Metadata{Dependencies: []string{"lodash"}},
	}
	code := artifact.Artifact{
		ArtifactID: "code:1", Kind: artifact.KindCode, Changed: true,
		File: "src/uses-lodash.js",
	}
	sigs, err := s.Run(RunContext{Artifacts: []artifact.Artifact{cfgArt, code}})
	require.NoError(t, err)
	require.Len(t, sigs, 1)
	assert.Equal(t, "depends_on", sigs[0].Relationship)
}

func TestTemporalStrategy_DecaysWithDistanceAndRespectsWindow(t *testing.T) {
	s := &temporalStrategy{}
	files := []artifact.FileChange{
		{Filename: "a.go"}, {Filename: "b.go"}, {Filename: "c.go"}, {Filename: "d.go"}, {Filename: "e.go"},
	}
	artifacts := []artifact.Artifact{
		{ArtifactID: "code:a", Kind: artifact.KindCode, Changed: true, File: "a.go"},
		{ArtifactID: "code:b", Kind: artifact.KindCode, Changed: true, File: "b.go"},
		{ArtifactID: "code:e", Kind: artifact.KindCode, Changed: true, File: "e.go"},
	}
	cfg := &config.EngineConfig{}
	sigs, err := s.Run(RunContext{Artifacts: artifacts, Files: files, Config: cfg})
	require.NoError(t, err)

	byPair := map[string]correlate.Signal{}
	for _, sig := range sigs {
		byPair[sig.Src+">"+sig.Dst] = sig
	}

	close, ok := byPair["code:a>code:b"]
	require.True(t, ok, "a and b are one position apart, within the default window")
	_, ok = byPair["code:a>code:e"]
	assert.False(t, ok, "a and e are four positions apart, outside the default window of 3")
	assert.Greater(t, close.Score, 0.3)
}

func TestCodeStrategy_MatchesEntityReferenceInChanges(t *testing.T) {
	s := &codeStrategy{}
	code := artifact.Artifact{
		ArtifactID: "code:1", Kind: artifact.KindCode, Changed: true,
		Changes: []string{"added a call to orders.findAll()"},
	}
	db := artifact.Artifact{
		ArtifactID: "db:1", Kind: artifact.KindDatabase, Changed: true,
		Metadata: artifact.Metadata{Entities: []string{"orders"}},
	}
	sigs, err := s.Run(RunContext{Artifacts: []artifact.Artifact{code, db}})
	require.NoError(t, err)
	require.Len(t, sigs, 1)
	assert.Equal(t, "queries", sigs[0].Relationship)
}

func TestRoster_FiltersByEnabled(t *testing.T) {
	cfg := config.Defaults()
	roster := Roster(cfg)
	var names []string
	for _, s := range roster {
		names = append(names, s.Name())
	}
	assert.Contains(t, names, "entity")
	assert.NotContains(t, names, "temporal", "temporal is disabled by default")
}

func TestRoster_RespectsExplicitOverride(t *testing.T) {
	cfg := config.Defaults()
	cfg.StrategyConfig["temporal"] = config.StrategyConfig{Enabled: true}
	roster := Roster(cfg)
	var names []string
	for _, s := range roster {
		names = append(names, s.Name())
	}
	assert.Contains(t, names, "temporal")
}

// panicStrategy always panics, used to prove the runner isolates it.
type panicStrategy struct{}

func (panicStrategy) Name() string                         { return "panic" }
func (panicStrategy) Budget() Budget                        { return BudgetLow }
func (panicStrategy) Enabled(cfg *config.EngineConfig) bool { return true }
func (panicStrategy) Run(ctx RunContext) ([]correlate.Signal, error) {
	panic("boom")
}

// errStrategy always returns an error.
type errStrategy struct{}

func (errStrategy) Name() string                         { return "err" }
func (errStrategy) Budget() Budget                        { return BudgetMedium }
func (errStrategy) Enabled(cfg *config.EngineConfig) bool { return true }
func (errStrategy) Run(ctx RunContext) ([]correlate.Signal, error) {
	return nil, errors.New("boom")
}

// goodStrategy always produces one fixed signal.
type goodStrategy struct {
	budget Budget
	name   string
}

func (g goodStrategy) Name() string                         { return g.name }
func (g goodStrategy) Budget() Budget                        { return g.budget }
func (g goodStrategy) Enabled(cfg *config.EngineConfig) bool { return true }
func (g goodStrategy) Run(ctx RunContext) ([]correlate.Signal, error) {
	return []correlate.Signal{{Src: "a", Dst: "b", Relationship: "rel", Score: 0.5, Strategy: g.name}}, nil
}

func TestRunner_PanicAndErrorDoNotAbortOtherStrategies(t *testing.T) {
	r := &Runner{Metrics: metrics.NewMetrics(prometheus.NewRegistry())}

	// We can't inject a fake roster via Roster() directly since it's a
	// fixed function, so exercise runWave directly, which is what Run
	// calls internally for each wave.
	var result RunResult
	ctx := RunContext{}
	sigs := r.runWave([]Strategy{panicStrategy{}, goodStrategy{name: "good", budget: BudgetLow}, errStrategy{}}, ctx, WaveLow, &result)

	require.Len(t, sigs, 1)
	assert.Equal(t, "good", sigs[0].Strategy)
	require.Len(t, result.Stats, 3)

	var sawPanicErr, sawPlainErr bool
	for _, stat := range result.Stats {
		if stat.Strategy == "panic" {
			sawPanicErr = stat.Err != nil
		}
		if stat.Strategy == "err" {
			sawPlainErr = stat.Err != nil
		}
	}
	assert.True(t, sawPanicErr)
	assert.True(t, sawPlainErr)
}

func TestRunner_Run_TwoWaveSequencingAndCandidateGating(t *testing.T) {
	r := NewRunner(nil)
	artifacts := []artifact.Artifact{
		apiArtifact("api:1", []string{"orders"}, []string{"create"}),
		dbArtifact("db:1", []string{"orders"}, []string{"create"}),
	}
	cfg := config.Defaults()

	var capturedPreliminary []correlate.Signal
	result := r.Run(artifacts, nil, cfg, func(preliminary []correlate.Signal) map[Pair]struct{} {
		capturedPreliminary = preliminary
		out := make(map[Pair]struct{})
		for _, sig := range preliminary {
			out[Pair{Src: sig.Src, Dst: sig.Dst}] = struct{}{}
		}
		return out
	})

	assert.NotEmpty(t, capturedPreliminary, "low-budget wave results are handed to the selector")
	assert.NotEmpty(t, result.Signals)
}
