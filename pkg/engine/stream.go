package engine

import "reflect"

// Stream is the queue of pending action records for one action type.
// Iteration happens through Cursor, which walks the live backing slice
// without snapshotting; structural changes during iteration must go
// through the deferred command queue.
type Stream[A any] struct {
	records []A
}

func newStream[A any]() *Stream[A] { return &Stream[A]{} }

func (s *Stream[A]) push(a A) { s.records = append(s.records, a) }

// Len reports the number of queued records.
func (s *Stream[A]) Len() int { return len(s.records) }

// Payloadless reports whether A carries no payload fields. Bridges over a
// payloadless action check this once per tick and construct a default
// value instead of reading each record.
func (s *Stream[A]) Payloadless() bool {
	t := reflect.TypeOf((*A)(nil)).Elem()
	return t.Kind() == reflect.Struct && t.NumField() == 0
}

// Cursor returns a non-allocating cursor positioned before the first
// record. The enumeration order is stable: records are visited in the
// order they were dispatched.
func (s *Stream[A]) Cursor() Cursor[A] { return Cursor[A]{stream: s, idx: -1} }

// Drain removes all queued records. Called by the engine loop at the end
// of a tick, after every stage over this stream has joined.
func (s *Stream[A]) Drain() { s.records = s.records[:0] }

// Cursor walks a stream front to back. Next must be called before the
// first access.
type Cursor[A any] struct {
	stream *Stream[A]
	idx    int
}

// Next advances the cursor and reports whether a record is available.
func (c *Cursor[A]) Next() bool {
	c.idx++
	return c.idx < len(c.stream.records)
}

// Value returns a copy of the current record.
func (c *Cursor[A]) Value() A { return c.stream.records[c.idx] }

// Ref returns a pointer to the current record in place. The pointer is
// invalidated by deferred-command playback.
func (c *Cursor[A]) Ref() *A { return &c.stream.records[c.idx] }

// Index returns the current record's position in the stream.
func (c *Cursor[A]) Index() int { return c.idx }

// Deferred is the per-tick command queue a filtering bridge records
// removals into. Deleting mid-iteration would invalidate the enumeration,
// so removals accumulate here and apply only on Playback.
type Deferred[A any] struct {
	stream  *Stream[A]
	removed []int
}

// Deferred returns a fresh deferred command queue over the stream.
func (s *Stream[A]) Deferred() *Deferred[A] {
	return &Deferred[A]{stream: s}
}

// Remove records the removal of the record at idx. The record stays
// visible until Playback runs.
func (d *Deferred[A]) Remove(idx int) {
	d.removed = append(d.removed, idx)
}

// Playback applies all recorded removals in one pass, preserving the
// relative order of surviving records. Call only after iteration has
// fully completed.
func (d *Deferred[A]) Playback() {
	if len(d.removed) == 0 {
		return
	}
	drop := make(map[int]bool, len(d.removed))
	for _, i := range d.removed {
		drop[i] = true
	}
	kept := d.stream.records[:0]
	for i, rec := range d.stream.records {
		if !drop[i] {
			kept = append(kept, rec)
		}
	}
	d.stream.records = kept
	d.removed = d.removed[:0]
}
