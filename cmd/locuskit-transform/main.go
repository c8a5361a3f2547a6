/*
locuskit-transform copies every record from a BAM into a new BAM, optionally
dropping records below a minimum mapping quality. It exists as a reference
driver for the parallel record pipeline: the reader, N workers, and the
writer all run as separate goroutines, with worker count and batch sizing
controlled by flags.
*/
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/biogo/hts/sam"
	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"
	"github.com/grailbio/locuskit/archive/htsbam"
	"github.com/grailbio/locuskit/prp"
)

var (
	minMapq         = flag.Int("min-mapq", 0, "Drop records with MAPQ below this value")
	workerThreads   = flag.Int("worker-threads", 0, "Number of transform worker goroutines; 0 = runtime.NumCPU()")
	batchSize       = flag.Int("batch-size", 64, "Records per pooled batch")
	channelCapacity = flag.Int("channel-capacity", 0, "Number of batches held in flight; 0 = 2x worker-threads")
	readThreads     = flag.Int("read-threads", 1, "Decompression threads for the input BAM reader")
	writeThreads    = flag.Int("write-threads", 1, "Compression threads for the output BAM writer")
)

func usage() {
	fmt.Printf("Usage: %s [OPTIONS] in.bam out.bam\n", os.Args[0])
	flag.PrintDefaults()
}

func main() {
	flag.Usage = usage
	shutdown := grail.Init()
	defer shutdown()

	if flag.NArg() != 2 {
		log.Fatalf("Missing positional arguments (in.bam and out.bam required)")
	}
	inPath, outPath := flag.Arg(0), flag.Arg(1)

	readerIface, err := htsbam.OpenRecordReader(inPath, *readThreads)
	if err != nil {
		log.Panicf("opening %s: %v", inPath, err)
	}
	reader := readerIface.(*htsbam.RecordHandle)
	writer, err := htsbam.CreateRecordWriter(outPath, reader.SAMHeader(), *writeThreads)
	if err != nil {
		log.Panicf("creating %s: %v", outPath, err)
	}

	minq := byte(*minMapq)
	pipeline := &prp.Pipeline[*sam.Record]{
		Reader: reader,
		Writer: writer,
		Modify: prp.ModifierFunc[*sam.Record](func(rec **sam.Record) (bool, error) {
			return (*rec).MapQ >= minq, nil
		}),
		Config: prp.Config{
			WorkerThreads:   *workerThreads,
			BatchSize:       *batchSize,
			ChannelCapacity: *channelCapacity,
			ReaderIOThreads: *readThreads,
			WriterIOThreads: *writeThreads,
		},
	}
	if err := pipeline.Run(); err != nil {
		log.Panicf("%v", err)
	}
	log.Debug.Printf("exiting")
}
