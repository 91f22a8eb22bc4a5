package emit

import (
	"strings"
	"testing"
	"time"

	"github.com/tickforge/bridgegen/internal/bridge"
	"github.com/tickforge/bridgegen/internal/scan"
)

const testEnginePath = "github.com/tickforge/bridgegen/pkg/engine"

func typeRef(name string) scan.TypeRef {
	return scan.TypeRef{Name: name, PkgPath: "example.com/game/combat", PkgName: "combat"}
}

func damageReducer() scan.Descriptor {
	return scan.Descriptor{
		Name:      "DamageReducer",
		Namespace: "example.com/game/combat",
		PkgName:   "combat",
		Strategy:  scan.SequentialReducer,
		State:     typeRef("HealthState"),
		Action:    typeRef("DamageDealt"),
	}
}

func validateInput() scan.Descriptor {
	return scan.Descriptor{
		Name:      "ValidateInput",
		Namespace: "example.com/game/input",
		PkgName:   "input",
		Strategy:  scan.SequentialMiddleware,
		Action:    scan.TypeRef{Name: "MoveRequested", PkgPath: "example.com/game/input", PkgName: "input"},
	}
}

func parallelDamage() scan.Descriptor {
	d := damageReducer()
	d.Name = "ParallelDamage"
	d.Strategy = scan.ParallelReducer
	side := typeRef("DamageContext")
	d.SideData = &side
	return d
}

func parallelInput() scan.Descriptor {
	d := validateInput()
	d.Name = "BroadcastInput"
	d.Strategy = scan.ParallelMiddleware
	side := scan.TypeRef{Name: "InputTable", PkgPath: "example.com/game/input", PkgName: "input"}
	d.SideData = &side
	return d
}

func mustEmit(t *testing.T, desc scan.Descriptor, opts bridge.Options) string {
	t.Helper()
	spec, err := bridge.Build(desc, opts)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	src, err := New(testEnginePath).Emit(spec)
	if err != nil {
		t.Fatalf("Emit() error = %v", err)
	}
	return src
}

func TestEmitIdempotentModuloTimestamp(t *testing.T) {
	descs := []scan.Descriptor{damageReducer(), validateInput(), parallelDamage(), parallelInput()}
	for _, desc := range descs {
		t.Run(desc.Name, func(t *testing.T) {
			e := New(testEnginePath)
			spec, err := bridge.Build(desc, bridge.Options{})
			if err != nil {
				t.Fatalf("Build() error = %v", err)
			}
			first, err := e.Emit(spec)
			if err != nil {
				t.Fatalf("Emit() error = %v", err)
			}
			e.now = func() time.Time { return time.Date(2031, 1, 1, 0, 0, 0, 0, time.UTC) }
			second, err := e.Emit(spec)
			if err != nil {
				t.Fatalf("Emit() error = %v", err)
			}
			if first == second {
				t.Error("timestamps differ, raw output should too")
			}
			if StripTimestamp(first) != StripTimestamp(second) {
				t.Error("output differs beyond the timestamp line")
			}
		})
	}
}

func TestEmitDamageReducerEndToEnd(t *testing.T) {
	src := mustEmit(t, damageReducer(), bridge.Options{})

	for _, want := range []string{
		"// Code generated by bridgegen. DO NOT EDIT.",
		"package generated",
		"type DamageReducer_System struct {",
		"unit combat.DamageReducer",
		"engine.WithFastPath(),",
		"state := engine.Exclusive[combat.HealthState](w)",
		"stream := engine.ActionsOf[combat.DamageDealt](w)",
	} {
		if !strings.Contains(src, want) {
			t.Errorf("output missing %q\n%s", want, src)
		}
	}

	if n := strings.Count(src, "s.unit.Reduce(state, cur.Value(), ctx)"); n != 1 {
		t.Errorf("Reduce invocation count = %d, want exactly 1", n)
	}
	if strings.Contains(src, "Prepare") || strings.Contains(src, "data") {
		t.Error("sequential reducer must carry no side-data fragment")
	}
}

func TestEmitZeroPayloadBranchOncePerTick(t *testing.T) {
	desc := damageReducer()
	desc.Action = typeRef("RoundEnded")
	desc.ZeroPayload = true
	src := mustEmit(t, desc, bridge.Options{})

	if n := strings.Count(src, "stream.Payloadless()"); n != 1 {
		t.Errorf("payloadless check count = %d, want exactly 1", n)
	}
	if !strings.Contains(src, "var action combat.RoundEnded") {
		t.Error("payloadless branch must construct a default payload")
	}
	// The check guards the whole loop, never a per-record read.
	if !strings.Contains(src, "if stream.Payloadless() {") {
		t.Error("payloadless check must branch the loop body")
	}
}

func TestEmitNonZeroPayloadHasNoBranch(t *testing.T) {
	src := mustEmit(t, damageReducer(), bridge.Options{})
	if strings.Contains(src, "Payloadless") {
		t.Error("payload-bearing action must not emit the payloadless branch")
	}
}

func TestEmitStrategyPurity(t *testing.T) {
	filterFragments := []string{"Deferred()", "pending.Remove", "pending.Playback()"}

	seq := mustEmit(t, validateInput(), bridge.Options{})
	for _, frag := range filterFragments {
		if !strings.Contains(seq, frag) {
			t.Errorf("sequential middleware missing %q", frag)
		}
	}

	par := mustEmit(t, parallelInput(), bridge.Options{})
	for _, frag := range filterFragments {
		if strings.Contains(par, frag) {
			t.Errorf("parallel middleware must never contain %q", frag)
		}
	}
}

func TestEmitValidateInputFastPathReEnabled(t *testing.T) {
	on := true
	src := mustEmit(t, validateInput(), bridge.Options{FastPath: &on})

	if !strings.Contains(src, "engine.WithFastPath(),") {
		t.Error("re-enabled fast path missing from registration")
	}
	if !strings.Contains(src, "for cur := stream.Cursor(); cur.Next(); {") {
		t.Error("missing non-allocating cursor iteration")
	}
	if !strings.Contains(src, "if !s.unit.Apply(cur.Ref(), ctx) {") {
		t.Error("removal must be guarded by the transform's boolean return")
	}
	if !strings.Contains(src, "pending.Playback()") {
		t.Error("deferred queue must be played back after iteration")
	}
}

func TestEmitMiddlewareDefaultsToSlowPath(t *testing.T) {
	src := mustEmit(t, validateInput(), bridge.Options{})
	if strings.Contains(src, "WithFastPath") {
		t.Error("sequential middleware defaults to the non-optimized path")
	}
}

func TestEmitMiddlewareRebuildsLookupsPerTick(t *testing.T) {
	src := mustEmit(t, validateInput(), bridge.Options{})
	if n := strings.Count(src, "engine.Lookups(w)"); n != 1 {
		t.Errorf("lookup table build count = %d, want exactly 1 per tick", n)
	}
}

func TestEmitParallelReducerRegistersJoin(t *testing.T) {
	src := mustEmit(t, parallelDamage(), bridge.Options{})

	for _, want := range []string{
		"data := s.unit.Prepare(w.ReadOnly())",
		"state := engine.Shared[combat.HealthState](w)",
		"handle := engine.ForEachBatch(w, stream, func(batch engine.Batch[combat.DamageDealt]) {",
		"engine.JoinBefore[combat.HealthState](w, handle)",
	} {
		if !strings.Contains(src, want) {
			t.Errorf("output missing %q\n%s", want, src)
		}
	}
	// Prepare runs once per tick, before the fan-out.
	if strings.Index(src, "Prepare") > strings.Index(src, "ForEachBatch") {
		t.Error("prepare phase must precede batch scheduling")
	}
}

func TestEmitParallelMiddlewareJoinsActions(t *testing.T) {
	src := mustEmit(t, parallelInput(), bridge.Options{})
	if !strings.Contains(src, "engine.JoinBeforeActions[input.MoveRequested](w, handle)") {
		t.Error("parallel middleware must register its join against the action queue")
	}
}

func TestEmitNameOverride(t *testing.T) {
	src := mustEmit(t, damageReducer(), bridge.Options{NameOverride: "DamageBridge"})
	if !strings.Contains(src, "type DamageBridge struct {") {
		t.Error("override name not applied")
	}
	if strings.Contains(src, "DamageReducer_System") {
		t.Error("default name must not appear when overridden")
	}
}

func TestEmitUnknownStrategy(t *testing.T) {
	spec := bridge.Spec{
		Candidate:     scan.Descriptor{Name: "Broken", Strategy: scan.StrategyUnknown},
		GeneratedName: "Broken_System",
	}
	_, err := New(testEnginePath).Emit(spec)
	if err == nil {
		t.Fatal("Emit() succeeded for unknown strategy")
	}
	if _, ok := err.(*Error); !ok {
		t.Errorf("error type = %T, want *emit.Error", err)
	}
}

func TestStripTimestamp(t *testing.T) {
	src := "// Code generated by bridgegen. DO NOT EDIT.\n" +
		timestampPrefix + "2026-08-29T00:00:00Z\n" +
		"package generated\n"
	stripped := StripTimestamp(src)
	if strings.Contains(stripped, "2026-08-29") {
		t.Error("timestamp line survived stripping")
	}
	if !strings.Contains(stripped, "package generated") {
		t.Error("stripping removed too much")
	}
}
