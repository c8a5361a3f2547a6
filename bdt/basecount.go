package bdt

import (
	"fmt"

	"github.com/grailbio/locuskit/nucmap"
)

// BaseCount tallies per-base occurrence counts across A/T/C/G/N.
type BaseCount struct {
	Counts nucmap.Map[uint64]
}

// Add increments the count for base b. Bytes outside A/T/C/G/N (in either
// case) are ignored.
func (bc *BaseCount) Add(b byte) {
	if slot := bc.Counts.Get(b); slot != nil {
		*slot++
	}
}

// Kind implements Payload.
func (bc *BaseCount) Kind() Kind { return KindBaseCount }

// Merge implements Payload.
func (bc *BaseCount) Merge(other Payload) (Payload, error) {
	o, ok := other.(*BaseCount)
	if !ok {
		return nil, fmt.Errorf("bdt: BaseCount.Merge given %T", other)
	}
	merged := &BaseCount{}
	bc.Counts.Iter(func(base byte, v *uint64) {
		*merged.Counts.Get(base) = *v
	})
	o.Counts.Iter(func(base byte, v *uint64) {
		*merged.Counts.Get(base) += *v
	})
	return merged, nil
}

// Row implements Payload.
func (bc *BaseCount) Row() map[string]float64 {
	row := make(map[string]float64, len(nucmap.Bases))
	bc.Counts.Iter(func(base byte, v *uint64) {
		row[string(base)] = float64(*v)
	})
	return row
}
