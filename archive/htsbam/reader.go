package htsbam

import (
	"fmt"
	"io"

	"github.com/biogo/hts/bam"
	"github.com/biogo/hts/bgzf"
	"github.com/biogo/hts/sam"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/vcontext"
	gbam "github.com/grailbio/locuskit/encoding/bam"
)

// linearIndexWindow is the tile width of a .bai file's linear index, fixed
// by the BAM index format at 16kbp. Intervals[pos/linearIndexWindow] gives
// the file offset of the first record that could overlap pos.
const linearIndexWindow = 16384

// indexedReader is a single-file, BAM-only reader that seeks to an
// approximate start offset using a .bai file's linear index and then scans
// forward, filtering to the requested coordinate range. It replaces a
// generic BAM-or-PAM provider with code that only ever has to handle BAM.
type indexedReader struct {
	f      file.File
	bamr   *bam.Reader
	header *sam.Header
	index  *gbam.Index
}

// openIndexedReader opens path and its accompanying path+".bai" index.
func openIndexedReader(path string) (*indexedReader, error) {
	ctx := vcontext.Background()
	f, err := file.Open(ctx, path)
	if err != nil {
		return nil, err
	}
	bamr, err := bam.NewReader(f.Reader(ctx), 1)
	if err != nil {
		f.Close(ctx)
		return nil, err
	}

	idxF, err := file.Open(ctx, path+".bai")
	if err != nil {
		f.Close(ctx)
		return nil, err
	}
	idx, err := gbam.ReadIndex(idxF.Reader(ctx))
	idxF.Close(ctx)
	if err != nil {
		f.Close(ctx)
		return nil, err
	}
	return &indexedReader{f: f, bamr: bamr, header: bamr.Header(), index: idx}, nil
}

// nearestOffset returns the linear-index offset for the tile containing
// pos, walking backward through emptier tiles since the .bai format omits
// entries for tiles with no records. It reports false if intervals has no
// usable entry at or before pos.
func nearestOffset(intervals []bgzf.Offset, pos int) (bgzf.Offset, bool) {
	for tile := pos / linearIndexWindow; tile >= 0; tile-- {
		if tile >= len(intervals) {
			continue
		}
		off := intervals[tile]
		if off.File == 0 && off.Block == 0 {
			continue
		}
		return off, true
	}
	return bgzf.Offset{}, false
}

// seekNear positions the underlying bam.Reader at the nearest indexed
// offset at or before (refID, pos). If refID has no index data at all (an
// unmapped-only or absent reference), the reader is left where it is.
func (r *indexedReader) seekNear(refID, pos int) error {
	if refID < 0 || refID >= len(r.index.Refs) {
		return nil
	}
	off, ok := nearestOffset(r.index.Refs[refID].Intervals, pos)
	if !ok {
		return nil
	}
	return r.bamr.Seek(off)
}

// fetch reads every record whose alignment start falls within
// [start,end) on contig, plus every record that starts before start but
// still overlaps it (see overlapsRegion), returning them in file order. It
// seeks once to an
// approximate start point and then scans forward, stopping as soon as a
// record's reference or position moves past end.
func (r *indexedReader) fetch(contig string, start, end int64) ([]*sam.Record, error) {
	ref, err := r.refByName(contig)
	if err != nil {
		return nil, err
	}
	if err := r.seekNear(ref.ID(), int(start)); err != nil {
		return nil, fmt.Errorf("htsbam: seek %s:%d: %w", contig, start, err)
	}
	var recs []*sam.Record
	for {
		rec, err := r.bamr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if rec.Ref == nil || rec.Ref.ID() < ref.ID() {
			continue
		}
		if rec.Ref.ID() > ref.ID() || int64(rec.Pos) >= end {
			break
		}
		if int64(rec.Pos) < start && !overlapsRegion(rec, start) {
			continue
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

// overlapsRegion reports whether rec, which starts before start, still
// overlaps start by virtue of a long CIGAR (e.g. a deletion- or
// skip-spanning alignment). htsbam's column builder only needs records
// that can contribute a base at or after start.
func overlapsRegion(rec *sam.Record, start int64) bool {
	end := int64(rec.Pos)
	for _, co := range rec.Cigar {
		switch co.Type() {
		case sam.CigarMatch, sam.CigarEqual, sam.CigarMismatch, sam.CigarDeletion, sam.CigarSkipped:
			end += int64(co.Len())
		}
	}
	return end > start
}

func (r *indexedReader) refByName(contig string) (*sam.Reference, error) {
	for _, ref := range r.header.Refs() {
		if ref.Name() == contig {
			return ref, nil
		}
	}
	return nil, fmt.Errorf("htsbam: contig %q not found in header", contig)
}

func (r *indexedReader) close() error {
	return r.f.Close(vcontext.Background())
}
