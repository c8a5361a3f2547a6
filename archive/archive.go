// Package archive declares the contract that the locus processor and record
// pipeline expect from an indexed read archive: open a handle, fetch a
// region, walk a pile-up column by column, and read or write records
// sequentially. The archive implementation itself (a BAM/CRAM codec) is an
// external collaborator; this package only fixes the shape a collaborator
// must have. Package htsbam provides one concrete implementation over
// biogo/hts.
package archive

import "github.com/grailbio/locuskit/genome"

// PileupColumn is the set of read alignments overlapping one reference
// position, as produced by an archive's pile-up iterator. Pos is 0-based.
// It is consumed by a locus worker and never retained past one loop
// iteration.
type PileupColumn interface {
	Pos() int64
}

// PileupOptions configures a pile-up iterator.
type PileupOptions struct {
	// MaxDepth caps the number of reads considered per column; 0 means
	// unlimited.
	MaxDepth int
	// IgnoreOverlaps collapses overlapping mates of one template into a
	// single observation per column.
	IgnoreOverlaps bool
}

// PileupIterator walks pile-up columns in ascending position order.
type PileupIterator[C PileupColumn] interface {
	// Next advances the iterator and reports whether a column is available.
	Next() bool
	// Column returns the column most recently made available by Next.
	Column() C
	// Err returns the first error encountered, if iteration stopped early.
	Err() error
}

// PileupReader is the handle a locus processor opens per batch. Handles
// are not safe for concurrent use; the worker processing a batch owns its
// handle exclusively.
type PileupReader[C PileupColumn] interface {
	// Fetch positions the handle at the given half-open, 0-based region.
	Fetch(region genome.Region) error
	// Pileup returns an iterator over the region most recently Fetch'd.
	Pileup(opts PileupOptions) (PileupIterator[C], error)
	Close() error
}

// PileupOpener opens a PileupReader handle against the archive at path. A
// locus processor calls it once per batch so that no archive handle is
// shared across threads.
type PileupOpener[C PileupColumn] func(path string) (PileupReader[C], error)

// RecordReader sequentially reads records from an archive, in the
// archive's own order. It backs a record pipeline's reader stage.
type RecordReader[R any] interface {
	// Read returns the next record. ok is false at end of stream.
	Read() (rec R, ok bool, err error)
	// Header returns the archive's serialized header bytes.
	Header() []byte
	// SetIOThreads configures the handle's internal decompression
	// concurrency; 0 leaves it at the archive's default.
	SetIOThreads(n int)
	Close() error
}

// RecordWriter sequentially writes records to an output archive. It backs a
// record pipeline's writer stage.
type RecordWriter[R any] interface {
	Write(rec R) error
	SetIOThreads(n int)
	Close() error
}
