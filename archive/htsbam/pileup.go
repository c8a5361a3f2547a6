// Package htsbam implements the archive contract (package archive) over a
// BAM file, using biogo/hts for record I/O and a .bai linear index for
// indexed, random-access region reads.
package htsbam

import (
	"sort"

	"github.com/biogo/hts/sam"
	"github.com/grailbio/locuskit/archive"
	"github.com/grailbio/locuskit/biosimd"
	gbam "github.com/grailbio/locuskit/encoding/bam"
	"github.com/grailbio/locuskit/genome"
)

// Base is one read's contribution to a Column: the aligned record, the
// offset into that record's sequence/quality arrays at the column position,
// and the base call itself unpacked to one byte. Call holds the BAM 4-bit
// base code (1=A, 2=C, 4=G, 8=T, 15=N), not an ASCII letter.
type Base struct {
	Record  *sam.Record
	ReadPos int
	Call    byte
	Qual    byte
}

// unpackSeq returns rec's sequence expanded to one byte per base, in a
// newly allocated slice on every call. biogo/hts stores Seq packed two
// bases per byte; the unpacked form is what per-base pile-up logic needs.
func unpackSeq(rec *sam.Record) []byte {
	lSeq := len(rec.Qual)
	if lSeq == 0 {
		return nil
	}
	seq8 := make([]byte, lSeq)
	biosimd.UnpackSeq(seq8, gbam.UnsafeDoubletsToBytes(rec.Seq.Seq))
	return seq8
}

// Column is the htsbam PileupColumn implementation: the reads aligned to
// one 0-based reference position, built by walking every overlapping
// record's CIGAR string.
type Column struct {
	pos   int64
	Bases []Base
}

// Pos implements archive.PileupColumn.
func (c *Column) Pos() int64 { return c.pos }

type columnIter struct {
	cols []*Column
	idx  int
}

func (it *columnIter) Next() bool {
	if it.idx >= len(it.cols) {
		return false
	}
	it.idx++
	return true
}

func (it *columnIter) Column() *Column { return it.cols[it.idx-1] }
func (it *columnIter) Err() error      { return nil }

// PileupHandle is an archive.PileupReader backed by an indexedReader. It is
// not safe for concurrent use; a locus processor opens one handle per
// batch via OpenPileupReader.
type PileupHandle struct {
	reader *indexedReader

	records    []*sam.Record
	start, end int64
}

// OpenPileupReader opens path (and its accompanying path+".bai" index) and
// returns a handle. It has the signature of archive.PileupOpener[*Column].
func OpenPileupReader(path string) (archive.PileupReader[*Column], error) {
	r, err := openIndexedReader(path)
	if err != nil {
		return nil, err
	}
	return &PileupHandle{reader: r}, nil
}

// Fetch implements archive.PileupReader. It loads every record whose
// alignment start falls in region, plus records that start earlier but
// still overlap region's start, into memory; callers bound region's width
// via the site batcher's window so this stays small.
func (h *PileupHandle) Fetch(region genome.Region) error {
	recs, err := h.reader.fetch(region.Contig, region.Start, region.End)
	if err != nil {
		return err
	}
	h.records = recs
	h.start, h.end = region.Start, region.End
	return nil
}

// Pileup implements archive.PileupReader, building columns over the most
// recently Fetch'd region.
func (h *PileupHandle) Pileup(opts archive.PileupOptions) (archive.PileupIterator[*Column], error) {
	return &columnIter{cols: buildColumns(h.records, h.start, h.end, opts)}, nil
}

// Close implements archive.PileupReader.
func (h *PileupHandle) Close() error { return h.reader.close() }

// buildColumns walks every record's CIGAR string, bucketing aligned read
// bases by reference position. With IgnoreOverlaps set, a second record
// from the same template seen at a position already covered by an earlier
// record in the region is skipped, collapsing overlapping mate pairs into a
// single observation per column, matching samtools mpileup's behavior of
// the same name.
func buildColumns(records []*sam.Record, start, end int64, opts archive.PileupOptions) []*Column {
	byPos := make(map[int64]*Column)
	var order []int64
	var seen map[int64]map[string]bool
	if opts.IgnoreOverlaps {
		seen = make(map[int64]map[string]bool)
	}

	for _, rec := range records {
		seq8 := unpackSeq(rec)
		refPos := int64(rec.Pos)
		readPos := 0
		for _, co := range rec.Cigar {
			n := int64(co.Len())
			switch co.Type() {
			case sam.CigarMatch, sam.CigarEqual, sam.CigarMismatch:
				for k := int64(0); k < n; k++ {
					pos := refPos + k
					if pos >= start && pos < end {
						if opts.IgnoreOverlaps {
							dup := seen[pos]
							if dup == nil {
								dup = make(map[string]bool)
								seen[pos] = dup
							}
							if dup[rec.Name] {
								readPos++
								continue
							}
							dup[rec.Name] = true
						}
						col := byPos[pos]
						if col == nil {
							col = &Column{pos: pos}
							byPos[pos] = col
							order = append(order, pos)
						}
						if opts.MaxDepth == 0 || len(col.Bases) < opts.MaxDepth {
							b := Base{Record: rec, ReadPos: readPos}
							if readPos < len(seq8) {
								b.Call = seq8[readPos]
							}
							if readPos < len(rec.Qual) {
								b.Qual = rec.Qual[readPos]
							}
							col.Bases = append(col.Bases, b)
						}
					}
					readPos++
				}
				refPos += n
			case sam.CigarInsertion, sam.CigarSoftClipped:
				readPos += int(n)
			case sam.CigarDeletion, sam.CigarSkipped:
				refPos += n
			default:
				// Hard clips and padding consume neither the reference nor
				// the stored read sequence.
			}
		}
	}

	sort.Slice(order, func(i, j int) bool { return order[i] < order[j] })
	cols := make([]*Column, len(order))
	for i, pos := range order {
		cols[i] = byPos[pos]
	}
	return cols
}
