package emit

import (
	"github.com/tickforge/bridgegen/internal/bridge"
	"github.com/tickforge/bridgegen/internal/scan"
)

// The four strategies share one emission pipeline; what differs between
// them is captured by a fragment provider: how the tick body acquires
// state, which iteration idiom it uses, and whether a filtering scaffold
// exists. Each provider's contract stays explicit and testable.
type provider interface {
	// prologue emits per-tick setup: state access, stream and context
	// acquisition, the parallel prepare call.
	prologue(g *fileWriter, spec bridge.Spec)
	// body emits the record iteration.
	body(g *fileWriter, spec bridge.Spec)
	// epilogue emits post-iteration obligations: deferred-command
	// playback or the explicit stage join.
	epilogue(g *fileWriter, spec bridge.Spec)
}

func providerFor(strategy scan.Strategy) provider {
	switch strategy {
	case scan.SequentialReducer:
		return sequentialReducer{}
	case scan.ParallelReducer:
		return parallelReducer{}
	case scan.SequentialMiddleware:
		return sequentialMiddleware{}
	case scan.ParallelMiddleware:
		return parallelMiddleware{}
	default:
		return nil
	}
}

// sequentialReducer: exclusive singleton access, cursor iteration on the
// orchestrating goroutine, one transform call per queued record.
type sequentialReducer struct{}

func (sequentialReducer) prologue(g *fileWriter, spec bridge.Spec) {
	d := spec.Candidate
	g.writeLine("state := engine.Exclusive[%s](w)", g.qualify(d.State))
	g.writeLine("stream := engine.ActionsOf[%s](w)", g.qualify(d.Action))
	g.writeLine("ctx := w.Context()")
}

func (sequentialReducer) body(g *fileWriter, spec bridge.Spec) {
	d := spec.Candidate
	if d.ZeroPayload {
		// One payloadless check per tick, branching the whole loop. A
		// per-record read of a zero-field action would be wasted work.
		g.writeLine("if stream.Payloadless() {")
		g.indent++
		g.writeLine("var action %s", g.qualify(d.Action))
		g.writeLine("for cur := stream.Cursor(); cur.Next(); {")
		g.indent++
		g.writeLine("s.unit.Reduce(state, action, ctx)")
		g.indent--
		g.writeLine("}")
		g.indent--
		g.writeLine("} else {")
		g.indent++
		emitReduceLoop(g)
		g.indent--
		g.writeLine("}")
		return
	}
	emitReduceLoop(g)
}

func emitReduceLoop(g *fileWriter) {
	g.writeLine("for cur := stream.Cursor(); cur.Next(); {")
	g.indent++
	g.writeLine("s.unit.Reduce(state, cur.Value(), ctx)")
	g.indent--
	g.writeLine("}")
}

func (sequentialReducer) epilogue(g *fileWriter, spec bridge.Spec) {}

// parallelReducer: single-threaded prepare, batch fan-out with writable
// shared state, explicit join registration against the state singleton.
type parallelReducer struct{}

func (parallelReducer) prologue(g *fileWriter, spec bridge.Spec) {
	d := spec.Candidate
	g.writeLine("data := s.unit.Prepare(w.ReadOnly())")
	g.writeLine("state := engine.Shared[%s](w)", g.qualify(d.State))
	g.writeLine("stream := engine.ActionsOf[%s](w)", g.qualify(d.Action))
}

func (parallelReducer) body(g *fileWriter, spec bridge.Spec) {
	d := spec.Candidate
	g.writeLine("handle := engine.ForEachBatch(w, stream, func(batch engine.Batch[%s]) {", g.qualify(d.Action))
	g.indent++
	g.writeLine("for cur := batch.Cursor(); cur.Next(); {")
	g.indent++
	g.writeLine("s.unit.Reduce(state, cur.Value(), data)")
	g.indent--
	g.writeLine("}")
	g.indent--
	g.writeLine("})")
}

func (parallelReducer) epilogue(g *fileWriter, spec bridge.Spec) {
	// The next stage touching the singleton must wait for every batch.
	// The join is registered here, not assumed from the scheduler.
	g.writeLine("engine.JoinBefore[%s](w, handle)", g.qualify(spec.Candidate.State))
}

// sequentialMiddleware: cursor iteration with a boolean-guarded deferred
// removal queue played back after the loop, plus lookup tables rebuilt
// once per tick.
type sequentialMiddleware struct{}

func (sequentialMiddleware) prologue(g *fileWriter, spec bridge.Spec) {
	d := spec.Candidate
	g.writeLine("stream := engine.ActionsOf[%s](w)", g.qualify(d.Action))
	g.writeLine("ctx := engine.ContextWith(w, engine.Lookups(w))")
	g.writeLine("pending := stream.Deferred()")
}

func (sequentialMiddleware) body(g *fileWriter, spec bridge.Spec) {
	g.writeLine("for cur := stream.Cursor(); cur.Next(); {")
	g.indent++
	g.writeLine("if !s.unit.Apply(cur.Ref(), ctx) {")
	g.indent++
	g.writeLine("pending.Remove(cur.Index())")
	g.indent--
	g.writeLine("}")
	g.indent--
	g.writeLine("}")
}

func (sequentialMiddleware) epilogue(g *fileWriter, spec bridge.Spec) {
	// Removing mid-iteration would break the enumeration snapshot, so
	// recorded removals apply only after the loop completes.
	g.writeLine("pending.Playback()")
}

// parallelMiddleware: two-phase transform over the queue. No deferred
// removal scaffold exists for this strategy; filtering from it was
// already rejected at classification.
type parallelMiddleware struct{}

func (parallelMiddleware) prologue(g *fileWriter, spec bridge.Spec) {
	d := spec.Candidate
	g.writeLine("data := s.unit.Prepare(w.ReadOnly())")
	g.writeLine("stream := engine.ActionsOf[%s](w)", g.qualify(d.Action))
}

func (parallelMiddleware) body(g *fileWriter, spec bridge.Spec) {
	d := spec.Candidate
	g.writeLine("handle := engine.ForEachBatch(w, stream, func(batch engine.Batch[%s]) {", g.qualify(d.Action))
	g.indent++
	g.writeLine("for cur := batch.Cursor(); cur.Next(); {")
	g.indent++
	g.writeLine("s.unit.Apply(cur.Ref(), data)")
	g.indent--
	g.writeLine("}")
	g.indent--
	g.writeLine("})")
}

func (parallelMiddleware) epilogue(g *fileWriter, spec bridge.Spec) {
	g.writeLine("engine.JoinBeforeActions[%s](w, handle)", g.qualify(spec.Candidate.Action))
}
