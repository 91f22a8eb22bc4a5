// Package battle is a scan fixture covering all four unit shapes plus the
// cases the scanner must skip.
package battle

import "github.com/tickforge/bridgegen/pkg/engine"

type HealthState struct {
	HP map[int]int
}

type DamageDealt struct {
	Target int
	Amount int
}

type RoundEnded struct{}

type DamageContext struct {
	Multiplier float64
}

type DamageReducer struct {
	engine.Unit
}

func (DamageReducer) Reduce(state *HealthState, action DamageDealt, ctx engine.Context) {
	state.HP[action.Target] -= action.Amount
}

type RoundReducer struct {
	engine.Unit
}

func (RoundReducer) Reduce(state *HealthState, action RoundEnded, ctx engine.Context) {
	for id := range state.HP {
		state.HP[id] = 100
	}
}

type ParallelDamage struct {
	engine.Unit
}

func (ParallelDamage) Prepare(w engine.ReadOnly) DamageContext {
	return DamageContext{Multiplier: 1.5}
}

func (ParallelDamage) Reduce(state *HealthState, action DamageDealt, data DamageContext) {
	state.HP[action.Target] -= int(float64(action.Amount) * data.Multiplier)
}

type ValidateDamage struct {
	engine.Unit
}

func (ValidateDamage) Apply(action *DamageDealt, ctx engine.Context) bool {
	return action.Amount > 0
}

// Untagged has a reducer shape but no marker; the scanner must skip it.
type Untagged struct{}

func (Untagged) Reduce(state *HealthState, action DamageDealt, ctx engine.Context) {}

// TaggedShapeless carries the marker but matches no shape; skipped with a
// debug log, not an error.
type TaggedShapeless struct {
	engine.Unit
}

func (TaggedShapeless) Run() {}
