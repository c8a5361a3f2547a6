// Package nucmap provides a fixed, case-insensitive five-slot map keyed by
// nucleotide byte (A, T, C, G, N). It backs per-base counters elsewhere in
// the toolkit that would otherwise reach for a general-purpose map for a
// domain with exactly five possible keys.
package nucmap

// Bases lists the five recognized nucleotides in canonical order.
var Bases = [5]byte{'A', 'T', 'C', 'G', 'N'}

var slotIndex [256]int8

func init() {
	for i := range slotIndex {
		slotIndex[i] = -1
	}
	set := func(b byte, i int8) { slotIndex[b] = i }
	set('A', 0)
	set('a', 0)
	set('T', 1)
	set('t', 1)
	set('C', 2)
	set('c', 2)
	set('G', 3)
	set('g', 3)
	set('N', 4)
	set('n', 4)
}

// Map is a fixed five-slot array indexed by nucleotide byte, case
// insensitive. Its zero value is ready to use.
type Map[T any] struct {
	slots [5]T
}

// Get returns a pointer to the slot for b, or nil if b is not one of
// A/T/C/G/N in either case.
func (m *Map[T]) Get(b byte) *T {
	i := slotIndex[b]
	if i < 0 {
		return nil
	}
	return &m.slots[i]
}

// Iter calls f once per slot, in the canonical A,T,C,G,N order.
func (m *Map[T]) Iter(f func(base byte, v *T)) {
	for i, b := range Bases {
		f(b, &m.slots[i])
	}
}
