/*
locuskit-gindex builds a .gbai side-car index for a BAM file. Unlike the
standard .bai format, a .gbai maps genomic position directly to a bam file
voffset at a roughly uniform byte spacing, letting a reader seek close to a
target position in one step instead of scanning a 16kbp .bai tile.
*/
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"
	gbam "github.com/grailbio/locuskit/encoding/bam"
)

var (
	byteInterval = flag.Int("byte-interval", 64<<10, "Target spacing, in bam file bytes, between index entries")
	parallelism  = flag.Int("parallelism", 1, "BAM decompression thread count while scanning")
)

func usage() {
	fmt.Printf("Usage: %s [OPTIONS] in.bam out.gbai\n", os.Args[0])
	flag.PrintDefaults()
}

func main() {
	flag.Usage = usage
	shutdown := grail.Init()
	defer shutdown()

	if flag.NArg() != 2 {
		log.Fatalf("Missing positional arguments (in.bam and out.gbai required)")
	}
	inPath, outPath := flag.Arg(0), flag.Arg(1)

	in, err := os.Open(inPath)
	if err != nil {
		log.Panicf("%v", err)
	}
	defer in.Close()

	out, err := os.Create(outPath)
	if err != nil {
		log.Panicf("%v", err)
	}
	if err := gbam.WriteGIndex(out, in, *byteInterval, *parallelism); err != nil {
		out.Close()
		log.Panicf("writing %s: %v", outPath, err)
	}
	if err := out.Close(); err != nil {
		log.Panicf("%v", err)
	}
	log.Debug.Printf("exiting")
}
