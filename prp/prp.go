// Package prp implements the parallel record pipeline: one reader goroutine
// assigns each record a monotonic sequence index and fills batches from a
// recycled buffer pool, N worker goroutines run a user-supplied modifier
// over each batch, and one writer goroutine reassembles worker output back
// into reader order before handing it to the output archive.
package prp

import (
	"runtime"
	"sync"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
	"github.com/grailbio/locuskit/archive"
	"github.com/grailbio/locuskit/pool"
)

// Modifier transforms one record in place and reports whether to keep it.
// An error is logged and treated the same as a drop.
type Modifier[R any] interface {
	Modify(rec *R) (keep bool, err error)
}

// ModifierFunc adapts a plain function to Modifier.
type ModifierFunc[R any] func(rec *R) (bool, error)

// Modify implements Modifier.
func (f ModifierFunc[R]) Modify(rec *R) (bool, error) { return f(rec) }

// slot is one pooled buffer element: a record tagged with the sequence index
// the reader assigned it, plus whether it survived the worker stage.
type slot[R any] struct {
	index int64
	data  R
	kept  bool
}

// maxOverflowBatches bounds how many extra batches the writer mints to keep
// the worker pool fed while an out-of-order arrival sits parked; it is an
// explicit overflow budget rather than unbounded growth.
const maxOverflowBatches = 1024

// Config sizes a Pipeline's worker pool and buffer pool. Zero values fall
// back to reasonable defaults.
type Config struct {
	WorkerThreads   int
	BatchSize       int
	ChannelCapacity int
	ReaderIOThreads int
	WriterIOThreads int
}

// Pipeline reads records from Reader, runs them through Modify across
// Config.WorkerThreads goroutines, and writes survivors to Writer in the
// order Reader produced them.
type Pipeline[R any] struct {
	Reader archive.RecordReader[R]
	Writer archive.RecordWriter[R]
	Modify Modifier[R]
	Config Config
}

// Run executes the pipeline to completion (archive EOF) or the first fatal
// error. It returns once every goroutine has joined.
func (p *Pipeline[R]) Run() error {
	workers := p.Config.WorkerThreads
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	batchSize := p.Config.BatchSize
	if batchSize <= 0 {
		batchSize = 64
	}
	capacity := p.Config.ChannelCapacity
	if capacity <= 0 {
		capacity = workers * 2
	}

	p.Reader.SetIOThreads(p.Config.ReaderIOThreads)
	p.Writer.SetIOThreads(p.Config.WriterIOThreads)

	initSlot := func() slot[R] { return slot[R]{} }

	txBuf := make(chan *pool.Batch[slot[R]], capacity+maxOverflowBatches)
	txRead := make(chan *pool.Batch[slot[R]], capacity)
	txWorker := make(chan *pool.Batch[slot[R]], capacity)
	for i := 0; i < capacity; i++ {
		txBuf <- pool.New(batchSize, initSlot)
	}

	var errs errors.Once

	var readerWG sync.WaitGroup
	readerWG.Add(1)
	go func() {
		defer readerWG.Done()
		p.runReader(txBuf, txRead, &errs)
	}()

	var workerWG sync.WaitGroup
	for i := 0; i < workers; i++ {
		workerWG.Add(1)
		go func() {
			defer workerWG.Done()
			p.runWorker(txRead, txWorker, &errs)
		}()
	}
	go func() {
		workerWG.Wait()
		close(txWorker)
	}()

	p.runWriter(txWorker, txBuf, batchSize, initSlot, &errs)
	readerWG.Wait()
	return errs.Err()
}

// runReader dequeues empty batches from txBuf, fills them from the archive
// in order, and sends each (possibly partial) batch on txRead. A read error
// is treated as fatal, since the archive readers in this package only
// return one past end-of-stream (ok=false, err=nil).
func (p *Pipeline[R]) runReader(txBuf, txRead chan *pool.Batch[slot[R]], errs *errors.Once) {
	defer close(txRead)
	var seq int64
	for {
		b := <-txBuf
		b.ResetIndex()
		for !b.IsFull() {
			rec, ok, err := p.Reader.Read()
			if err != nil {
				errs.Set(errors.E(err, "prp: reader"))
				if !b.IsEmpty() {
					txRead <- b
				}
				return
			}
			if !ok {
				if !b.IsEmpty() {
					txRead <- b
				}
				return
			}
			s := b.NextMut()
			s.index = seq
			s.data = rec
			s.kept = true
			seq++
		}
		txRead <- b
	}
}

// runWorker applies Modify to every filled slot of each batch it receives,
// then forwards the batch unchanged in shape to txWorker.
func (p *Pipeline[R]) runWorker(txRead, txWorker chan *pool.Batch[slot[R]], errs *errors.Once) {
	for b := range txRead {
		filled := b.FilledMut()
		for i := range filled {
			s := &filled[i]
			keep, err := p.Modify.Modify(&s.data)
			if err != nil {
				log.Error.Printf("prp: modifier returned error, dropping record: %v", err)
				s.kept = false
				continue
			}
			s.kept = keep
		}
		txWorker <- b
	}
}

// runWriter reassembles batches from txWorker into sequence-index order,
// writes kept records to the output archive, and recycles emptied batches
// onto txBuf.
func (p *Pipeline[R]) runWriter(txWorker, txBuf chan *pool.Batch[slot[R]], batchSize int, initSlot func() slot[R], errs *errors.Once) {
	var nextExpected int64
	pending := make(map[int64]*pool.Batch[slot[R]])
	minted := 0

	write := func(b *pool.Batch[slot[R]]) {
		for _, s := range b.Filled() {
			nextExpected++
			if !s.kept {
				continue
			}
			if err := p.Writer.Write(s.data); err != nil {
				errs.Set(errors.E(err, "prp: writer"))
			}
		}
		b.ClearWith(func(*slot[R]) {})
		txBuf <- b
	}

	flushReady := func() {
		for {
			next, ok := pending[nextExpected]
			if !ok {
				return
			}
			delete(pending, nextExpected)
			write(next)
		}
	}

	for b := range txWorker {
		if b.IsEmpty() {
			txBuf <- b
			continue
		}
		firstIdx := b.Filled()[0].index
		if firstIdx == nextExpected {
			write(b)
			flushReady()
			continue
		}
		pending[firstIdx] = b
		if minted < maxOverflowBatches {
			txBuf <- pool.New(batchSize, initSlot)
			minted++
		}
	}

	// Drain the tail: everything left in pending must eventually become
	// contiguous, since every sequence index the reader assigned appears in
	// exactly one batch.
	for len(pending) > 0 {
		next, ok := pending[nextExpected]
		if !ok {
			break
		}
		delete(pending, nextExpected)
		write(next)
	}
}
