package pbs

import (
	"strings"
	"testing"
)

func collect[W Word](it *Iterator[W]) []Nucleotide {
	var out []Nucleotide
	for {
		n, ok := it.Next()
		if !ok {
			break
		}
		out = append(out, n)
	}
	return out
}

func TestFromBytesRoundTrip(t *testing.T) {
	in := "ATCGNATCGNATCGNATCGNATCGN" // 25 bases
	s, err := FromBytes[uint64](2, []byte(in))
	if err != nil {
		t.Fatalf("FromBytes: %v", err)
	}
	if got, want := s.Cap(), 42; got != want {
		t.Fatalf("Cap() = %d, want %d", got, want)
	}
	if got, want := s.ToText(), strings.ToUpper(in); got != want {
		t.Fatalf("ToText() = %q, want %q", got, want)
	}
	if n, ok := s.Get(20); !ok || n != A {
		t.Fatalf("Get(20) = %v,%v, want A,true", n, ok)
	}
	if n, ok := s.Get(21); !ok || n != T {
		t.Fatalf("Get(21) = %v,%v, want T,true", n, ok)
	}
}

func TestFromBytesLowerCase(t *testing.T) {
	s, err := FromBytes[uint64](1, []byte("atcgn"))
	if err != nil {
		t.Fatalf("FromBytes: %v", err)
	}
	if got, want := s.ToText(), "ATCGN"; got != want {
		t.Fatalf("ToText() = %q, want %q", got, want)
	}
}

func TestIterStopsAtNull(t *testing.T) {
	s, err := FromBytes[uint64](1, []byte("AC"))
	if err != nil {
		t.Fatalf("FromBytes: %v", err)
	}
	got := collect(s.Iter())
	want := []Nucleotide{A, C}
	if len(got) != len(want) {
		t.Fatalf("collect() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("collect()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestInvalidSymbol(t *testing.T) {
	_, err := FromBytes[uint64](1, []byte("ACX"))
	var invalid *InvalidSymbolError
	if err == nil {
		t.Fatal("expected error")
	}
	if e, ok := err.(*InvalidSymbolError); !ok {
		t.Fatalf("err = %v (%T), want *InvalidSymbolError", err, err)
	} else {
		invalid = e
	}
	if invalid.Byte != 'X' || invalid.Offset != 2 {
		t.Fatalf("InvalidSymbolError = %+v, want Byte='X' Offset=2", invalid)
	}
}

func TestTooLong(t *testing.T) {
	s := New[uint16](1) // capacity 5
	_, err := FromBytes[uint16](1, []byte("ACGTAC"))
	if err == nil {
		t.Fatal("expected error")
	}
	if e, ok := err.(*TooLongError); !ok || e.Max != s.Cap() {
		t.Fatalf("err = %v, want TooLongError{Max: %d}", err, s.Cap())
	}
}

func TestSetIndependence(t *testing.T) {
	s, err := FromBytes[uint64](1, []byte("ATCGN"))
	if err != nil {
		t.Fatalf("FromBytes: %v", err)
	}
	before := make([]Nucleotide, 5)
	for i := range before {
		before[i], _ = s.Get(i)
	}
	s.Set(2, G)
	if n, ok := s.Get(2); !ok || n != G {
		t.Fatalf("Get(2) after Set = %v,%v, want G,true", n, ok)
	}
	for i, want := range before {
		if i == 2 {
			continue
		}
		if got, _ := s.Get(i); got != want {
			t.Fatalf("Get(%d) changed after unrelated Set: got %v, want %v", i, got, want)
		}
	}
}

func TestSetOutOfRangePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()
	s := New[uint64](1)
	s.Set(100, A)
}

func TestU16ChunkWidth(t *testing.T) {
	s := New[uint16](3) // 3 chunks * 5 symbols = 15 capacity
	if got, want := s.Cap(), 15; got != want {
		t.Fatalf("Cap() = %d, want %d", got, want)
	}
}

func TestRangeClampsToCapacity(t *testing.T) {
	s, err := FromBytes[uint64](1, []byte("ATCGN"))
	if err != nil {
		t.Fatalf("FromBytes: %v", err)
	}
	got := collect(s.Range(1, 1000))
	want := []Nucleotide{T, C, G, N}
	if len(got) != len(want) {
		t.Fatalf("collect() = %v, want %v", got, want)
	}
}

func TestEmptySequenceIterIsEmpty(t *testing.T) {
	s := New[uint64](2)
	if got := collect(s.Iter()); len(got) != 0 {
		t.Fatalf("collect() = %v, want empty", got)
	}
	if got := s.ToText(); got != "" {
		t.Fatalf("ToText() = %q, want empty", got)
	}
}
