package bdt

import (
	"fmt"
	"strconv"
)

// FragmentSize is a histogram of observed fragment (insert) sizes, bucketed
// into fixed-width bins.
type FragmentSize struct {
	BinSize int
	bins    []Bin
	counts  []uint64
}

// NewFragmentSize returns an empty histogram covering [0, max) in bins of
// width binSize.
func NewFragmentSize(max, binSize int) *FragmentSize {
	bins := MakeBins(0, max, binSize)
	return &FragmentSize{BinSize: binSize, bins: bins, counts: make([]uint64, len(bins))}
}

// Add records one fragment of the given size. Sizes outside the configured
// range are dropped; no bin counts them.
func (f *FragmentSize) Add(size int) {
	i := indexOf(f.bins, size)
	if i < 0 {
		return
	}
	f.counts[i]++
}

// Kind implements Payload.
func (f *FragmentSize) Kind() Kind { return KindFragmentSize }

// Merge implements Payload.
func (f *FragmentSize) Merge(other Payload) (Payload, error) {
	o, ok := other.(*FragmentSize)
	if !ok {
		return nil, fmt.Errorf("bdt: FragmentSize.Merge given %T", other)
	}
	if f.BinSize != o.BinSize || len(f.bins) != len(o.bins) {
		return nil, fmt.Errorf("bdt: cannot merge fragment-size histograms with different binning")
	}
	merged := &FragmentSize{BinSize: f.BinSize, bins: f.bins, counts: make([]uint64, len(f.counts))}
	for i := range f.counts {
		merged.counts[i] = f.counts[i] + o.counts[i]
	}
	return merged, nil
}

// Row implements Payload.
func (f *FragmentSize) Row() map[string]float64 {
	row := make(map[string]float64, len(f.bins))
	for i, b := range f.bins {
		row[strconv.Itoa(b.Start)+"-"+strconv.Itoa(b.End)] = float64(f.counts[i])
	}
	return row
}

// FragmentSizeRatio tracks the fraction of fragments meeting some predicate
// (e.g. within the expected insert-size range) out of all observed
// fragments.
type FragmentSizeRatio struct {
	Matched, Total uint64
}

// Add records one fragment, noting whether it matched the predicate.
func (r *FragmentSizeRatio) Add(matched bool) {
	r.Total++
	if matched {
		r.Matched++
	}
}

// Ratio returns Matched/Total, or 0 if no fragments were observed.
func (r *FragmentSizeRatio) Ratio() float64 {
	if r.Total == 0 {
		return 0
	}
	return float64(r.Matched) / float64(r.Total)
}

// Kind implements Payload.
func (r *FragmentSizeRatio) Kind() Kind { return KindFragmentSizeRatio }

// Merge implements Payload.
func (r *FragmentSizeRatio) Merge(other Payload) (Payload, error) {
	o, ok := other.(*FragmentSizeRatio)
	if !ok {
		return nil, fmt.Errorf("bdt: FragmentSizeRatio.Merge given %T", other)
	}
	return &FragmentSizeRatio{Matched: r.Matched + o.Matched, Total: r.Total + o.Total}, nil
}

// Row implements Payload.
func (r *FragmentSizeRatio) Row() map[string]float64 {
	return map[string]float64{
		"matched": float64(r.Matched),
		"total":   float64(r.Total),
		"ratio":   r.Ratio(),
	}
}
