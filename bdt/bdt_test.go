package bdt

import "testing"

func TestValueMergeSameKind(t *testing.T) {
	a := New(NewKmer(2))
	a.Payload().(*Kmer).Add("AT")
	b := New(NewKmer(2))
	b.Payload().(*Kmer).Add("AT")
	b.Payload().(*Kmer).Add("GC")

	merged, err := a.Merge(b)
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	row := merged.Row()
	if row["AT"] != 2 || row["GC"] != 1 {
		t.Fatalf("row = %v, want AT=2 GC=1", row)
	}
}

func TestValueMergeVariantMismatch(t *testing.T) {
	a := New(NewKmer(2))
	b := New(&BaseCount{})
	_, err := a.Merge(b)
	var mismatch *VariantMismatch
	if err == nil {
		t.Fatal("expected VariantMismatch, got nil")
	}
	if !asVariantMismatch(err, &mismatch) {
		t.Fatalf("expected *VariantMismatch, got %T: %v", err, err)
	}
	if mismatch.Left != KindKmer || mismatch.Right != KindBaseCount {
		t.Fatalf("mismatch = %+v, want Left=Kmer Right=BaseCount", mismatch)
	}
}

func asVariantMismatch(err error, out **VariantMismatch) bool {
	vm, ok := err.(*VariantMismatch)
	if ok {
		*out = vm
	}
	return ok
}

func TestBaseCountMergeIndependence(t *testing.T) {
	a := &BaseCount{}
	a.Add('A')
	a.Add('a')
	b := &BaseCount{}
	b.Add('t')

	merged, err := a.Merge(b)
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	row := merged.Row()
	if row["A"] != 2 || row["T"] != 1 {
		t.Fatalf("row = %v, want A=2 T=1", row)
	}
	// Mutating the merged result must not alter either input.
	merged.(*BaseCount).Add('A')
	if a.Row()["A"] != 2 {
		t.Fatalf("merge mutated an input operand")
	}
}

func TestFragmentSizeMergeRequiresMatchingBins(t *testing.T) {
	f1 := NewFragmentSize(100, 10)
	f2 := NewFragmentSize(100, 20)
	if _, err := f1.Merge(f2); err == nil {
		t.Fatal("expected error merging histograms with different binning")
	}
}

func TestFragmentSizeAddAndMerge(t *testing.T) {
	f1 := NewFragmentSize(100, 10)
	f1.Add(5)
	f1.Add(15)
	f2 := NewFragmentSize(100, 10)
	f2.Add(5)

	merged, err := f1.Merge(f2)
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	row := merged.Row()
	if row["0-10"] != 2 {
		t.Fatalf("row[0-10] = %v, want 2", row["0-10"])
	}
	if row["10-20"] != 1 {
		t.Fatalf("row[10-20] = %v, want 1", row["10-20"])
	}
}

func TestFragmentSizeOutOfRangeDropped(t *testing.T) {
	f := NewFragmentSize(100, 10)
	f.Add(1000)
	for k, v := range f.Row() {
		if v != 0 {
			t.Fatalf("bin %s = %v, want 0 (out-of-range fragment should be dropped)", k, v)
		}
	}
}

func TestFragmentSizeRatio(t *testing.T) {
	r := &FragmentSizeRatio{}
	r.Add(true)
	r.Add(true)
	r.Add(false)
	if got := r.Ratio(); got < 0.666 || got > 0.667 {
		t.Fatalf("Ratio() = %v, want ~0.667", got)
	}

	other := &FragmentSizeRatio{}
	other.Add(false)
	merged, err := r.Merge(other)
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	row := merged.Row()
	if row["matched"] != 2 || row["total"] != 4 {
		t.Fatalf("row = %v, want matched=2 total=4", row)
	}
}

func TestMakeBins(t *testing.T) {
	bins := MakeBins(100, 1150, 500)
	want := []Bin{{100, 600}, {600, 1100}, {1100, 1150}}
	if len(bins) != len(want) {
		t.Fatalf("MakeBins returned %d bins, want %d: %v", len(bins), len(want), bins)
	}
	for i := range want {
		if bins[i] != want[i] {
			t.Fatalf("bins[%d] = %+v, want %+v", i, bins[i], want[i])
		}
	}
}

func TestMakeBinsEmptyRange(t *testing.T) {
	if bins := MakeBins(10, 10, 5); bins != nil {
		t.Fatalf("MakeBins(10,10,5) = %v, want nil", bins)
	}
	if bins := MakeBins(0, 10, 0); bins != nil {
		t.Fatalf("MakeBins with binSize=0 = %v, want nil", bins)
	}
}
