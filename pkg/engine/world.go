package engine

import (
	"fmt"
	"reflect"
	"sync"
)

// World owns the state singletons and action queues for one engine
// instance. Bridges receive the world once per tick; all singleton and
// queue access goes through the typed package-level accessors.
type World struct {
	mu         sync.Mutex
	singletons map[reflect.Type]any
	streams    map[reflect.Type]any
	scheduler  *Scheduler
	tick       uint64
}

// NewWorld creates an empty world with a default scheduler.
func NewWorld() *World {
	return &World{
		singletons: make(map[reflect.Type]any),
		streams:    make(map[reflect.Type]any),
		scheduler:  NewScheduler(),
	}
}

// Context returns the opaque execution handle for the current tick.
func (w *World) Context() Context { return Context{world: w} }

// ReadOnly returns the restricted view handed to Prepare phases.
func (w *World) ReadOnly() ReadOnly { return ReadOnly{world: w} }

// Scheduler returns the world's stage scheduler.
func (w *World) Scheduler() *Scheduler { return w.scheduler }

// Tick returns the current tick counter.
func (w *World) Tick() uint64 { return w.tick }

// Advance begins the next tick: bumps the counter and resets per-tick
// scheduler bookkeeping. Called by the engine loop, not by bridges.
func (w *World) Advance() {
	w.tick++
	w.scheduler.reset()
}

// SetSingleton installs the state singleton for type S, replacing any
// previous value.
func SetSingleton[S any](w *World, s *S) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.singletons[reflect.TypeOf((*S)(nil)).Elem()] = s
}

// Exclusive returns mutable access to the S singleton. Sequential bridges
// call this once per tick on the orchestrating goroutine; the engine
// guarantees no other stage touches S until the tick stage completes.
func Exclusive[S any](w *World) *S {
	w.mu.Lock()
	defer w.mu.Unlock()
	v, ok := w.singletons[reflect.TypeOf((*S)(nil)).Elem()]
	if !ok {
		panic(fmt.Sprintf("engine: no singleton registered for %v", reflect.TypeOf((*S)(nil)).Elem()))
	}
	return v.(*S)
}

// Shared returns the S singleton for parallel batch writes. Batches may
// write disjoint regions; coordinating overlapping writes is the unit
// author's obligation.
func Shared[S any](w *World) *S { return Exclusive[S](w) }

// ActionsOf returns the queue of pending A records, creating it empty on
// first use.
func ActionsOf[A any](w *World) *Stream[A] {
	w.mu.Lock()
	defer w.mu.Unlock()
	key := reflect.TypeOf((*A)(nil)).Elem()
	if s, ok := w.streams[key]; ok {
		return s.(*Stream[A])
	}
	s := newStream[A]()
	w.streams[key] = s
	return s
}

// Dispatch enqueues one A record for processing on the next tick pass.
func Dispatch[A any](w *World, action A) {
	ActionsOf[A](w).push(action)
}
