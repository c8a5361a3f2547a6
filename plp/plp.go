// Package plp implements the parallel locus processor: given a sorted
// stream of genomic sites, it batches them into contig-local windows, fans
// the batches out across a worker pool, and for each batch sweep-line
// merges the archive's pile-up columns against the batch's sites.
package plp

import (
	"runtime"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/traverse"
	"github.com/grailbio/locuskit/archive"
	"github.com/grailbio/locuskit/batch"
	"github.com/grailbio/locuskit/genome"
)

// Worker computes one output from a pile-up column and the site it matched.
// Implementations must be safe to call concurrently: one worker value is
// shared across the whole pool.
type Worker[C archive.PileupColumn, I genome.Located, O any] interface {
	WorkForLocus(column C, site I) (O, error)
}

// WorkerFunc adapts a plain function to Worker.
type WorkerFunc[C archive.PileupColumn, I genome.Located, O any] func(column C, site I) (O, error)

// WorkForLocus implements Worker.
func (f WorkerFunc[C, I, O]) WorkForLocus(column C, site I) (O, error) { return f(column, site) }

// Config configures a Processor.
type Config struct {
	// ArchivePath is the path to the indexed read archive to fetch pile-ups
	// from.
	ArchivePath string
	// NumWorkers is the worker pool size P. Values <= 0 default to
	// runtime.NumCPU().
	NumWorkers int
	// WindowSize bounds a batch's span; see package batch.
	WindowSize int64
}

// Processor runs the parallel locus processor for one archive and worker
// type.
type Processor[C archive.PileupColumn, I genome.Located, O any] struct {
	Open   archive.PileupOpener[C]
	Worker Worker[C, I, O]
	Config Config
}

// Process batches sites, fans the batches out across the configured worker
// pool, and returns the flattened, input-order results. Sites with no
// matching pile-up column are silently dropped, not reported as an error.
// Any error from opening or fetching the archive, or from the worker,
// aborts the whole call and is returned as the first error encountered.
func (p *Processor[C, I, O]) Process(sites []I) ([]O, error) {
	batches := batch.Window(sites, p.Config.WindowSize)
	nBatch := len(batches)
	if nBatch == 0 {
		return nil, nil
	}

	parallelism := p.Config.NumWorkers
	if parallelism <= 0 {
		parallelism = runtime.NumCPU()
	}
	if parallelism > nBatch {
		parallelism = nBatch
	}

	perJob := make([][]O, parallelism)
	err := traverse.Each(parallelism, func(jobIdx int) error {
		startIdx := (jobIdx * nBatch) / parallelism
		endIdx := ((jobIdx + 1) * nBatch) / parallelism
		var out []O
		for _, b := range batches[startIdx:endIdx] {
			res, err := p.processBatch(b)
			if err != nil {
				return errors.E(err, "plp: processing batch")
			}
			out = append(out, res...)
		}
		perJob[jobIdx] = out
		return nil
	})
	if err != nil {
		return nil, err
	}

	var results []O
	for _, out := range perJob {
		results = append(results, out...)
	}
	return results, nil
}

// processBatch opens a private archive handle, fetches the batch's region,
// and sweep-line merges the resulting pile-up stream against the batch's
// sites.
func (p *Processor[C, I, O]) processBatch(b []I) ([]O, error) {
	if len(b) == 0 {
		return nil, nil
	}
	first := b[0].Locus()
	last := b[len(b)-1].Locus()

	reader, err := p.Open(p.Config.ArchivePath)
	if err != nil {
		return nil, errors.E(err, "plp: opening archive handle")
	}
	defer reader.Close()

	region := genome.Region{Contig: first.Contig, Start: first.Pos - 1, End: last.Pos}
	if err := reader.Fetch(region); err != nil {
		return nil, errors.E(err, "plp: fetching region", region.Contig)
	}

	it, err := reader.Pileup(archive.PileupOptions{MaxDepth: 0, IgnoreOverlaps: true})
	if err != nil {
		return nil, errors.E(err, "plp: opening pileup iterator")
	}

	var results []O
	siteIdx := 0
	hasCol := it.Next()
	for hasCol && siteIdx < len(b) {
		col := it.Column()
		p1 := col.Pos()
		t := b[siteIdx].Locus().Pos - 1
		switch {
		case p1 < t:
			hasCol = it.Next()
		case p1 > t:
			siteIdx++
		default:
			out, werr := p.Worker.WorkForLocus(col, b[siteIdx])
			if werr != nil {
				return nil, errors.E(werr, "plp: worker")
			}
			results = append(results, out)
			siteIdx++
			hasCol = it.Next()
		}
	}
	if err := it.Err(); err != nil {
		return nil, errors.E(err, "plp: pileup iteration")
	}
	return results, nil
}
