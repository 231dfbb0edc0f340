package candidate

import (
	"testing"

	"github.com/driftradius/correlator/internal/artifact"
	"github.com/driftradius/correlator/internal/config"
	"github.com/driftradius/correlator/internal/correlate"
	"github.com/driftradius/correlator/internal/strategy"
	"github.com/stretchr/testify/assert"
)

func TestSelect_ScoreAboveThresholdBecomesCandidate(t *testing.T) {
	preliminary := []correlate.Signal{
		{Src: "a", Dst: "b", Score: 0.4},
		{Src: "c", Dst: "d", Score: 0.1},
	}
	thresholds := config.Thresholds{CandidateMin: 0.35}

	out := Select(preliminary, nil, nil, thresholds)
	_, ok := out[strategy.Pair{Src: "a", Dst: "b"}]
	assert.True(t, ok)
	_, ok = out[strategy.Pair{Src: "c", Dst: "d"}]
	assert.False(t, ok)
}

func TestSelect_UserRulesAlwaysBecomeCandidates(t *testing.T) {
	rules := []config.CorrelationRule{{Src: "x", Dst: "y", Relationship: "custom", Score: 1.0}}
	out := Select(nil, rules, nil, config.Thresholds{CandidateMin: 0.9})
	_, ok := out[strategy.Pair{Src: "x", Dst: "y"}]
	assert.True(t, ok)
}

func TestSelect_SharedServicePairsBecomeCandidates(t *testing.T) {
	artifacts := []artifact.Artifact{
		{ArtifactID: "api:1", Service: "billing"},
		{ArtifactID: "db:1", Service: "billing"},
		{ArtifactID: "db:2", Service: "shipping"},
	}
	out := Select(nil, nil, artifacts, config.Thresholds{CandidateMin: 0.9})

	_, ok := out[strategy.Pair{Src: "api:1", Dst: "db:1"}]
	assert.True(t, ok)
	_, ok = out[strategy.Pair{Src: "db:1", Dst: "api:1"}]
	assert.True(t, ok, "service grouping emits both directions")

	_, ok = out[strategy.Pair{Src: "api:1", Dst: "db:2"}]
	assert.False(t, ok, "different services never pair")
}

func TestSelect_ArtifactsWithoutServiceAreIgnored(t *testing.T) {
	artifacts := []artifact.Artifact{
		{ArtifactID: "api:1"},
		{ArtifactID: "db:1"},
	}
	out := Select(nil, nil, artifacts, config.Thresholds{CandidateMin: 0.9})
	assert.Empty(t, out)
}

func TestSelect_CombinesAllThreeRules(t *testing.T) {
	preliminary := []correlate.Signal{{Src: "a", Dst: "b", Score: 0.9}}
	rules := []config.CorrelationRule{{Src: "x", Dst: "y", Relationship: "custom", Score: 1.0}}
	artifacts := []artifact.Artifact{
		{ArtifactID: "p", Service: "svc"},
		{ArtifactID: "q", Service: "svc"},
	}
	out := Select(preliminary, rules, artifacts, config.Thresholds{CandidateMin: 0.5})

	assert.Len(t, out, 4) // a->b, x->y, p->q, q->p
}
