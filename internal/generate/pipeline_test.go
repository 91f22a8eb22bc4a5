package generate

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tickforge/bridgegen/internal/bridge"
	"github.com/tickforge/bridgegen/internal/scan"
)

const enginePath = "github.com/tickforge/bridgegen/pkg/engine"

func reducer(name string) scan.Descriptor {
	return scan.Descriptor{
		Name:      name,
		Namespace: "example.com/game/combat",
		PkgName:   "combat",
		Strategy:  scan.SequentialReducer,
		State:     scan.TypeRef{Name: "HealthState", PkgPath: "example.com/game/combat", PkgName: "combat"},
		Action:    scan.TypeRef{Name: "DamageDealt", PkgPath: "example.com/game/combat", PkgName: "combat"},
	}
}

func newPipeline(t *testing.T, opts map[string]bridge.Options) *Pipeline {
	t.Helper()
	return New(Config{
		EnginePath: enginePath,
		OutputRoot: t.TempDir(),
		Options:    opts,
	})
}

func TestRunGeneratesAndReports(t *testing.T) {
	p := newPipeline(t, nil)
	desc := reducer("DamageReducer")

	report := p.Run(&scan.Result{Descriptors: []scan.Descriptor{desc}}, []scan.Descriptor{desc})

	assert.True(t, report.Success)
	assert.False(t, report.NothingToDo)
	assert.Equal(t, 1, report.Generated)
	assert.Zero(t, report.Skipped)
	require.Len(t, report.Written, 1)
	assert.NotEmpty(t, report.RunID)

	data, err := os.ReadFile(report.Written[0])
	require.NoError(t, err)
	assert.Contains(t, string(data), "// Code generated by bridgegen. DO NOT EDIT.")
	assert.Contains(t, string(data), "type DamageReducer_System struct {")
	assert.Contains(t, report.Summary(), "generated 1 bridge(s)")
}

func TestRunNothingToDoIsNotAllFailed(t *testing.T) {
	p := newPipeline(t, nil)

	report := p.Run(&scan.Result{}, nil)
	assert.False(t, report.Success)
	assert.True(t, report.NothingToDo)
	assert.Zero(t, report.Skipped)
	assert.Contains(t, report.Summary(), "nothing to generate")

	// All candidates failing is a different condition.
	bad := reducer("Broken")
	bad.SideData = &scan.TypeRef{Name: "Foreign", PkgPath: "example.com/other", PkgName: "other"}
	bad.Strategy = scan.ParallelReducer
	failed := p.Run(&scan.Result{Descriptors: []scan.Descriptor{bad}}, []scan.Descriptor{bad})
	assert.False(t, failed.Success)
	assert.False(t, failed.NothingToDo)
	assert.Equal(t, 1, failed.Skipped)
}

func TestRunRecoversPerCandidateFailures(t *testing.T) {
	p := newPipeline(t, nil)

	good := reducer("DamageReducer")
	bad := reducer("BadParallel")
	bad.Strategy = scan.ParallelReducer
	bad.SideData = &scan.TypeRef{Name: "Foreign", PkgPath: "example.com/other", PkgName: "other"}

	report := p.Run(
		&scan.Result{Descriptors: []scan.Descriptor{bad, good}},
		[]scan.Descriptor{bad, good},
	)

	assert.True(t, report.Success, "one validated write keeps the batch successful")
	assert.Equal(t, 1, report.Generated)
	assert.Equal(t, 1, report.Skipped)

	var found bool
	for _, e := range report.Errors {
		if e.Code == CodeSpecValidation && e.Candidate == bad.QualifiedName() {
			found = true
			assert.Equal(t, Error, e.Severity)
		}
	}
	assert.True(t, found, "skipped candidate must carry a logged reason")
}

func TestRunCarriesDiscoveryWarnings(t *testing.T) {
	p := newPipeline(t, nil)
	desc := reducer("DamageReducer")
	result := &scan.Result{
		Descriptors: []scan.Descriptor{desc},
		Warnings:    []scan.Warning{{Pkg: "example.com/broken", Err: assert.AnError}},
	}

	report := p.Run(result, []scan.Descriptor{desc})
	assert.True(t, report.Success, "discovery warnings never fail the batch")

	var warned bool
	for _, e := range report.Errors {
		if e.Code == CodeDiscoveryWarning {
			warned = true
			assert.Equal(t, Warning, e.Severity)
		}
	}
	assert.True(t, warned)
}

func TestRunReportsAmbiguity(t *testing.T) {
	p := newPipeline(t, nil)
	desc := reducer("DamageReducer")
	desc.Ambiguous = []scan.Strategy{scan.SequentialMiddleware}

	report := p.Run(&scan.Result{Descriptors: []scan.Descriptor{desc}}, []scan.Descriptor{desc})
	assert.True(t, report.Success)

	var found bool
	for _, e := range report.Errors {
		if e.Code == CodeClassificationAmbiguity {
			found = true
			assert.Contains(t, e.Message, "sequential-middleware")
		}
	}
	assert.True(t, found)
}

func TestRunNameCollisionLastWriterWins(t *testing.T) {
	p := newPipeline(t, map[string]bridge.Options{
		"example.com/game/combat.Second": {NameOverride: "DamageReducer_System"},
	})

	first := reducer("DamageReducer")
	second := reducer("Second")

	report := p.Run(
		&scan.Result{Descriptors: []scan.Descriptor{first, second}},
		[]scan.Descriptor{first, second},
	)

	require.Len(t, report.Written, 1, "colliding units share one path")
	data, err := os.ReadFile(report.Written[0])
	require.NoError(t, err)
	assert.Contains(t, string(data), "unit combat.Second", "last writer wins")

	var collided bool
	for _, e := range report.Errors {
		if e.Code == CodeNameCollision {
			collided = true
			assert.Equal(t, Warning, e.Severity)
			assert.True(t, strings.Contains(e.Message, "DamageReducer"))
		}
	}
	assert.True(t, collided)
}

func TestRunPerCandidateOptions(t *testing.T) {
	off := false
	p := newPipeline(t, map[string]bridge.Options{
		"example.com/game/combat.DamageReducer": {FastPath: &off, Order: 7},
	})
	desc := reducer("DamageReducer")

	report := p.Run(&scan.Result{Descriptors: []scan.Descriptor{desc}}, []scan.Descriptor{desc})
	require.Len(t, report.Written, 1)

	data, err := os.ReadFile(report.Written[0])
	require.NoError(t, err)
	assert.NotContains(t, string(data), "WithFastPath")
	assert.Contains(t, string(data), "engine.WithOrder(7),")
}
