package bdt

import "fmt"

// Kmer counts occurrences of fixed-length sequence substrings.
type Kmer struct {
	K      int
	Counts map[string]uint64
}

// NewKmer returns an empty Kmer payload for substrings of length k.
func NewKmer(k int) *Kmer {
	return &Kmer{K: k, Counts: make(map[string]uint64)}
}

// Add records one occurrence of seq, which must have length K.
func (k *Kmer) Add(seq string) {
	if len(seq) != k.K {
		return
	}
	k.Counts[seq]++
}

// Kind implements Payload.
func (k *Kmer) Kind() Kind { return KindKmer }

// Merge implements Payload.
func (k *Kmer) Merge(other Payload) (Payload, error) {
	o, ok := other.(*Kmer)
	if !ok {
		return nil, fmt.Errorf("bdt: Kmer.Merge given %T", other)
	}
	if o.K != k.K {
		return nil, fmt.Errorf("bdt: cannot merge kmer counts of length %d and %d", k.K, o.K)
	}
	merged := NewKmer(k.K)
	for seq, n := range k.Counts {
		merged.Counts[seq] += n
	}
	for seq, n := range o.Counts {
		merged.Counts[seq] += n
	}
	return merged, nil
}

// Row implements Payload.
func (k *Kmer) Row() map[string]float64 {
	row := make(map[string]float64, len(k.Counts))
	for seq, n := range k.Counts {
		row[seq] = float64(n)
	}
	return row
}
