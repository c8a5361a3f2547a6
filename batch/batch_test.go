package batch

import (
	"testing"

	"github.com/grailbio/locuskit/genome"
)

func sites(pairs ...interface{}) []genome.Site {
	var out []genome.Site
	for i := 0; i < len(pairs); i += 2 {
		out = append(out, genome.Site{Contig: pairs[i].(string), Pos: int64(pairs[i+1].(int))})
	}
	return out
}

func batchSizes(batches [][]genome.Site) []int {
	var out []int
	for _, b := range batches {
		out = append(out, len(b))
	}
	return out
}

func TestEmptyInput(t *testing.T) {
	if got := Window[genome.Site](nil, 1000); got != nil {
		t.Fatalf("Window(nil) = %v, want nil", got)
	}
}

func TestSingleItem(t *testing.T) {
	got := Window(sites("chr1", 100), 1000)
	if len(got) != 1 || len(got[0]) != 1 {
		t.Fatalf("Window() = %v, want one batch of one item", got)
	}
}

func TestChromChangeSplitsBatch(t *testing.T) {
	in := sites("chr1", 100, "chr1", 200, "chr2", 300, "chr2", 400)
	got := Window(in, 1000)
	if sizes := batchSizes(got); len(sizes) != 2 || sizes[0] != 2 || sizes[1] != 2 {
		t.Fatalf("batch sizes = %v, want [2 2]", sizes)
	}
}

func TestWindowEdgeStrictlyLessThan(t *testing.T) {
	in := sites("chr1", 100, "chr1", 1099, "chr1", 1100)
	got := Window(in, 1000)
	want := [][]int64{{100, 1099}, {1100}}
	if len(got) != len(want) {
		t.Fatalf("len(batches) = %d, want %d: %v", len(got), len(want), got)
	}
	for i, b := range got {
		if len(b) != len(want[i]) {
			t.Fatalf("batch %d size = %d, want %d", i, len(b), len(want[i]))
		}
		for j, item := range b {
			if item.Locus().Pos != want[i][j] {
				t.Fatalf("batch %d item %d = %d, want %d", i, j, item.Locus().Pos, want[i][j])
			}
		}
	}
}

func TestPartitionPreservesConcatenationAndInvariants(t *testing.T) {
	in := sites("chr1", 1, "chr1", 50, "chr1", 2000, "chr2", 5, "chr2", 6, "chr2", 5000)
	const windowSize = 1000
	got := Window(in, windowSize)

	var flat []genome.Site
	for _, b := range got {
		if len(b) == 0 {
			t.Fatal("batch is empty")
		}
		contig := b[0].Locus().Contig
		first := b[0].Locus().Pos
		last := b[len(b)-1].Locus().Pos
		for _, item := range b {
			if item.Locus().Contig != contig {
				t.Fatalf("batch mixes contigs: %v", b)
			}
		}
		if len(b) > 1 && last-first >= windowSize {
			t.Fatalf("batch span %d >= window %d: %v", last-first, windowSize, b)
		}
		flat = append(flat, b...)
	}
	if len(flat) != len(in) {
		t.Fatalf("concatenated length = %d, want %d", len(flat), len(in))
	}
	for i := range in {
		if flat[i] != in[i] {
			t.Fatalf("concatenation reorders input at %d: got %v, want %v", i, flat[i], in[i])
		}
	}
}

func TestManySmallRegionsProduceOneBatchPerRegion(t *testing.T) {
	var in []genome.Site
	for i := 0; i < 10; i++ {
		in = append(in, genome.Site{Contig: "chr1", Pos: int64(i * 10000)})
	}
	got := Window(in, 1000)
	if len(got) != len(in) {
		t.Fatalf("len(batches) = %d, want %d (every site far apart)", len(got), len(in))
	}
}
