// Package pool provides the two reusable containers the record pipeline
// cycles through its queues: Batch, a fixed-capacity slice with a fill
// cursor, and Channel, a pair of bounded queues that hands out and recycles
// Batch objects so steady-state operation allocates no new ones.
package pool

// Batch is a fixed-capacity vector of T plus a fill cursor in [0, cap].
// Filled is the prefix [0, cursor). It is allocated once, by New, and then
// cycled through Channel queues for the life of a pipeline; ResetIndex and
// ClearWith prepare it for reuse without touching its backing array.
type Batch[T any] struct {
	items  []T
	cursor int
}

// New pre-populates a Batch of the given capacity by calling init once per
// slot.
func New[T any](capacity int, init func() T) *Batch[T] {
	items := make([]T, capacity)
	for i := range items {
		items[i] = init()
	}
	return &Batch[T]{items: items}
}

// FromSlice wraps an existing slice as a Batch with cursor 0, taking
// ownership of the slice.
func FromSlice[T any](items []T) *Batch[T] {
	return &Batch[T]{items: items}
}

// Cap returns the batch's fixed capacity.
func (b *Batch[T]) Cap() int { return len(b.items) }

// IsFull reports whether the cursor has reached capacity.
func (b *Batch[T]) IsFull() bool { return b.cursor >= len(b.items) }

// IsEmpty reports whether nothing has been filled.
func (b *Batch[T]) IsEmpty() bool { return b.cursor == 0 }

// Filled returns the filled prefix [0, cursor).
func (b *Batch[T]) Filled() []T { return b.items[:b.cursor] }

// FilledMut returns a mutable view of the filled prefix.
func (b *Batch[T]) FilledMut() []T { return b.items[:b.cursor] }

// NextMut returns a pointer to the next unfilled slot and advances the
// cursor, or nil if the batch is already full.
func (b *Batch[T]) NextMut() *T {
	if b.IsFull() {
		return nil
	}
	slot := &b.items[b.cursor]
	b.cursor++
	return slot
}

// IncrementIdx advances the cursor by one without touching a slot; the
// slot's current contents become part of the filled prefix. It does not
// check the cursor against capacity.
func (b *Batch[T]) IncrementIdx() { b.cursor++ }

// ResetIndex rewinds the cursor to 0. Slot contents are left as-is; they are
// expected to be overwritten before being read again.
func (b *Batch[T]) ResetIndex() { b.cursor = 0 }

// ClearWith applies f to every filled slot, then resets the cursor to 0.
func (b *Batch[T]) ClearWith(f func(*T)) {
	for i := 0; i < b.cursor; i++ {
		f(&b.items[i])
	}
	b.cursor = 0
}
