package graph

import (
	"testing"

	"github.com/bionexus/cdbg/alphabet"
	"github.com/bionexus/cdbg/hashing"
	"github.com/bionexus/cdbg/storage"
)

func newFwdDBG(k uint16) *DBG[*storage.BitStorage] {
	return NewDBG[*storage.BitStorage](storage.NewBitStorage(3, 1009), func() hashing.Shifter {
		return hashing.NewFwdShifter(k, alphabet.Simple)
	})
}

func TestDBGInsertQuerySequence(t *testing.T) {
	g := newFwdDBG(4)
	seq := []byte("ACGTACGA")

	n, err := g.InsertSequence(seq)
	if err != nil {
		t.Fatal(err)
	}
	if n == 0 {
		t.Fatal("expected at least one new k-mer")
	}

	counts, err := g.QuerySequence(seq)
	if err != nil {
		t.Fatal(err)
	}
	if len(counts) != len(seq)-4+1 {
		t.Fatalf("len(counts) = %d, want %d", len(counts), len(seq)-4+1)
	}
	for _, c := range counts {
		if c != 1 {
			t.Fatalf("Query returned %d for an inserted k-mer, want 1", c)
		}
	}
}

func TestDBGInsertSequenceTooShort(t *testing.T) {
	g := newFwdDBG(8)
	if _, err := g.InsertSequence([]byte("ACG")); err == nil {
		t.Fatal("expected error for sequence shorter than K")
	}
}

func TestDBGK(t *testing.T) {
	g := newFwdDBG(11)
	if g.K() != 11 {
		t.Fatalf("K() = %d, want 11", g.K())
	}
}
