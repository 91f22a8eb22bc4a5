// Package engine defines the contract surface between user logic units and
// the tick-based execution engine. Generated bridge units import this package
// and wire a unit's transform into the engine's scheduling and iteration
// idiom; user code imports it for the marker and the four unit interfaces.
package engine

// Unit is the marker embedded by every bridgeable logic unit. Embedding it
// gives the declaring struct the BridgeUnit method the scanner looks for.
//
//	type DamageReducer struct {
//		engine.Unit
//	}
type Unit struct{}

// BridgeUnit marks the embedding type as eligible for bridge generation.
func (Unit) BridgeUnit() {}

// Tagged is the marker interface satisfied by any type embedding Unit.
type Tagged interface {
	BridgeUnit()
}

// Reducer is a sequential state transform. Once per tick the generated
// bridge acquires exclusive access to the S singleton and invokes Reduce
// for every queued A record, in queue order, on the orchestrating goroutine.
type Reducer[S any, A any] interface {
	Tagged
	Reduce(state *S, action A, ctx Context)
}

// ParallelReducer is a two-phase state transform. Prepare runs once per
// tick on the orchestrating goroutine and returns a read-only-shareable
// side-data value D, which must be a named struct type declared in the
// unit's own package and must not hold mutable shared references. Reduce
// is fanned out across worker batches, one queued record per call.
type ParallelReducer[S any, A any, D any] interface {
	Tagged
	Prepare(w ReadOnly) D
	Reduce(state *S, action A, data D)
}

// Middleware is a sequential filtering transform over the A queue. A false
// return marks the originating record for deferred removal; removals are
// played back only after the full iteration completes.
type Middleware[A any] interface {
	Tagged
	Apply(action *A, ctx Context) bool
}

// ParallelMiddleware is a two-phase transform over the A queue. It cannot
// filter: Apply has no boolean return, and the generated bridge carries no
// deferred-removal scaffold.
type ParallelMiddleware[A any, D any] interface {
	Tagged
	Prepare(w ReadOnly) D
	Apply(action *A, data D)
}

// Context is the opaque per-tick execution handle passed to sequential
// transforms for auxiliary lookups. It is only valid for the duration of
// the tick that produced it.
type Context struct {
	world   *World
	lookups *LookupTables
}

// Lookups returns the lookup tables bound to this context, or nil when the
// bridge did not bind any.
func (c Context) Lookups() *LookupTables { return c.lookups }

// ReadOnly is the restricted world view handed to a parallel unit's
// Prepare phase.
type ReadOnly struct {
	world *World
}
