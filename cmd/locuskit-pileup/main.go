/*
locuskit-pileup evaluates a per-locus computation over a sorted list of
genomic sites, fetching read pile-ups from an indexed BAM in parallel across
batches of nearby sites.

Sites are read one per line from the sites file as "<contig>\t<1-based
pos>". For each site with coverage, locuskit-pileup prints
"<contig>\t<pos>\t<depth>" to stdout, where depth is the number of aligned
reads observed in that site's pile-up column.
*/
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"
	"github.com/grailbio/locuskit/archive/htsbam"
	"github.com/grailbio/locuskit/genome"
	"github.com/grailbio/locuskit/plp"
)

var (
	parallelism = flag.Int("parallelism", 0, "Maximum number of simultaneous pileup jobs; 0 = runtime.NumCPU()")
	windowSize  = flag.Int64("window-size", 1000, "Maximum span, in bases, of a single fetch batch")
)

func usage() {
	fmt.Printf("Usage: %s [OPTIONS] bampath sitespath\n", os.Args[0])
	flag.PrintDefaults()
}

func main() {
	flag.Usage = usage
	shutdown := grail.Init()
	defer shutdown()

	if flag.NArg() != 2 {
		log.Fatalf("Missing positional arguments (bampath and sitespath required)")
	}
	bamPath, sitesPath := flag.Arg(0), flag.Arg(1)

	sites, err := readSites(sitesPath)
	if err != nil {
		log.Panicf("%v", err)
	}

	proc := &plp.Processor[*htsbam.Column, genome.Site, string]{
		Open: htsbam.OpenPileupReader,
		Worker: plp.WorkerFunc[*htsbam.Column, genome.Site, string](
			func(col *htsbam.Column, site genome.Site) (string, error) {
				return fmt.Sprintf("%s\t%d\t%d", site.Contig, site.Pos, len(col.Bases)), nil
			}),
		Config: plp.Config{
			ArchivePath: bamPath,
			NumWorkers:  *parallelism,
			WindowSize:  *windowSize,
		},
	}
	rows, err := proc.Process(sites)
	if err != nil {
		log.Panicf("%v", err)
	}
	w := bufio.NewWriter(os.Stdout)
	for _, row := range rows {
		fmt.Fprintln(w, row)
	}
	if err := w.Flush(); err != nil {
		log.Panicf("%v", err)
	}
	log.Debug.Printf("exiting")
}

func readSites(path string) ([]genome.Site, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var sites []genome.Site
	scanner := bufio.NewScanner(f)
	for lineNum := 1; scanner.Scan(); lineNum++ {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) != 2 {
			return nil, fmt.Errorf("%s:%d: expected 2 tab-separated fields, got %d", path, lineNum, len(fields))
		}
		pos, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: invalid position %q: %v", path, lineNum, fields[1], err)
		}
		sites = append(sites, genome.Site{Contig: fields[0], Pos: pos})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return sites, nil
}
