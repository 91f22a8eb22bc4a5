package engine

import (
	"reflect"
	"runtime"
	"sort"
	"sync"
)

// TickUnit is one generated bridge: a scheduling unit the engine drives
// once per tick.
type TickUnit interface {
	Tick(w *World)
}

// unitEntry is one registered bridge factory with its scheduling options.
type unitEntry struct {
	factory  func() TickUnit
	name     string
	order    int
	fastPath bool
}

var (
	registryMu sync.Mutex
	registry   []unitEntry
)

// Option configures a registered bridge.
type Option func(*unitEntry)

// WithFastPath selects the engine's non-allocating iteration and inline
// scheduling path. Operations that mutate queue structure directly are
// forbidden on this path; filtering bridges normally register without it.
func WithFastPath() Option {
	return func(e *unitEntry) { e.fastPath = true }
}

// WithOrder sets the bridge's position among units of the same tick stage.
// Lower runs first; equal orders run in registration order.
func WithOrder(order int) Option {
	return func(e *unitEntry) { e.order = order }
}

// WithName sets the bridge's diagnostic name.
func WithName(name string) Option {
	return func(e *unitEntry) { e.name = name }
}

// Register installs a bridge factory. Generated code calls this from an
// init function; one registration per generated unit.
func Register(factory func() TickUnit, opts ...Option) {
	e := unitEntry{factory: factory}
	for _, opt := range opts {
		opt(&e)
	}
	registryMu.Lock()
	registry = append(registry, e)
	registryMu.Unlock()
}

// Units instantiates every registered bridge in scheduling order.
func Units() []TickUnit {
	registryMu.Lock()
	entries := make([]unitEntry, len(registry))
	copy(entries, registry)
	registryMu.Unlock()

	sort.SliceStable(entries, func(i, j int) bool { return entries[i].order < entries[j].order })
	units := make([]TickUnit, len(entries))
	for i, e := range entries {
		units[i] = e.factory()
	}
	return units
}

// JobHandle identifies one scheduled parallel phase for join bookkeeping.
type JobHandle struct {
	id   int
	done *sync.WaitGroup
}

// ID returns the handle's per-world sequence number.
func (h JobHandle) ID() int { return h.id }

// Scheduler tracks which parallel phases must complete before a later
// stage may touch a given singleton or queue. Joins are explicit: a
// parallel bridge registers its handle against the resource it wrote,
// and the next stage over that resource waits on it.
type Scheduler struct {
	mu     sync.Mutex
	nextID int
	joins  map[reflect.Type][]JobHandle
}

// NewScheduler creates an empty scheduler.
func NewScheduler() *Scheduler {
	return &Scheduler{joins: make(map[reflect.Type][]JobHandle)}
}

func (s *Scheduler) reset() {
	s.mu.Lock()
	s.joins = make(map[reflect.Type][]JobHandle)
	s.mu.Unlock()
}

func (s *Scheduler) register(key reflect.Type, h JobHandle) {
	s.mu.Lock()
	s.joins[key] = append(s.joins[key], h)
	s.mu.Unlock()
}

// WaitFor blocks until every phase registered against key has completed,
// then clears the key's join list.
func (s *Scheduler) WaitFor(key reflect.Type) {
	s.mu.Lock()
	handles := s.joins[key]
	delete(s.joins, key)
	s.mu.Unlock()
	for _, h := range handles {
		h.done.Wait()
	}
}

// JoinBefore registers handle as a dependency of the next tick stage that
// touches the S singleton. Generated parallel-reducer bridges must call
// this after scheduling; the join is a correctness obligation of the
// emitted code, not an ambient guarantee of the scheduler.
func JoinBefore[S any](w *World, h JobHandle) {
	w.scheduler.register(reflect.TypeOf((*S)(nil)).Elem(), h)
}

// JoinBeforeActions registers handle against the A queue for bridges that
// write no singleton.
func JoinBeforeActions[A any](w *World, h JobHandle) {
	w.scheduler.register(reflect.TypeOf((*Stream[A])(nil)).Elem(), h)
}

// Batch is one worker-sized slice of a stream handed to a parallel phase.
// No further world lookups are permitted inside a batch body.
type Batch[A any] struct {
	records []A
}

// Cursor returns a non-allocating cursor over the batch.
func (b *Batch[A]) Cursor() Cursor[A] {
	return Cursor[A]{stream: &Stream[A]{records: b.records}, idx: -1}
}

// Ref returns a pointer to the i-th record of the batch.
func (b *Batch[A]) Ref(i int) *A { return &b.records[i] }

// Len reports the batch size.
func (b *Batch[A]) Len() int { return len(b.records) }

// ForEachBatch fans body out across the worker pool, one batch of queued
// A records per invocation, with no inter-batch ordering guarantee. The
// returned handle completes when every batch has run; callers must
// register it with JoinBefore (or JoinBeforeActions) so later stages over
// the same resource wait on it.
func ForEachBatch[A any](w *World, s *Stream[A], body func(batch Batch[A])) JobHandle {
	w.scheduler.mu.Lock()
	w.scheduler.nextID++
	id := w.scheduler.nextID
	w.scheduler.mu.Unlock()

	var wg sync.WaitGroup
	n := len(s.records)
	workers := runtime.GOMAXPROCS(0)
	if workers > n {
		workers = n
	}
	if workers == 0 {
		return JobHandle{id: id, done: &wg}
	}
	size := (n + workers - 1) / workers
	for start := 0; start < n; start += size {
		end := start + size
		if end > n {
			end = n
		}
		batch := Batch[A]{records: s.records[start:end]}
		wg.Add(1)
		go func() {
			defer wg.Done()
			body(batch)
		}()
	}
	return JobHandle{id: id, done: &wg}
}

// LookupTables is the read/write auxiliary lookup cache a sequential
// middleware bridge rebuilds once per tick rather than once per record.
type LookupTables struct {
	tick    uint64
	entries map[string]any
}

// Lookups builds the lookup tables for the current tick.
func Lookups(w *World) *LookupTables {
	return &LookupTables{tick: w.tick, entries: make(map[string]any)}
}

// Get returns the named table, or nil.
func (lt *LookupTables) Get(name string) any { return lt.entries[name] }

// Put installs a named table for the remainder of the tick.
func (lt *LookupTables) Put(name string, table any) { lt.entries[name] = table }

// ContextWith returns a tick context carrying the given lookup tables.
func ContextWith(w *World, lt *LookupTables) Context {
	return Context{world: w, lookups: lt}
}
