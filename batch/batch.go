// Package batch groups a sorted stream of genomic sites into contig-local
// windows, so a downstream parallel map can fetch one bounded region per
// batch instead of one region per site.
package batch

import "github.com/grailbio/locuskit/genome"

// Window partitions items, presumed already sorted by (Contig, Pos), into an
// ordered list of non-empty batches. Within a batch the contig is constant
// and pos_last-pos_first < windowSize. A new batch starts whenever the
// contig changes, or whenever including the next item would make the span
// from the batch's first item reach windowSize; the comparison always uses
// the batch's first position, never a running end, so a batch's fetch
// region never grows past windowSize once opened.
//
// A single item whose own span would exceed windowSize (impossible for a
// single-base site, but relevant for callers of Window with wider items) is
// still emitted as its own one-item batch: the window only bounds batches of
// two or more items.
func Window[T genome.Located](items []T, windowSize int64) [][]T {
	if len(items) == 0 {
		return nil
	}
	var batches [][]T
	cur := []T{items[0]}
	firstLocus := items[0].Locus()
	for _, item := range items[1:] {
		loc := item.Locus()
		if loc.Contig != firstLocus.Contig || loc.Pos-firstLocus.Pos >= windowSize {
			batches = append(batches, cur)
			cur = []T{item}
			firstLocus = loc
			continue
		}
		cur = append(cur, item)
	}
	batches = append(batches, cur)
	return batches
}
