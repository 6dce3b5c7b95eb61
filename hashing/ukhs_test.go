package hashing

import (
	"testing"

	"github.com/bionexus/cdbg/alphabet"
)

func TestUkhsMapPartitionOfRoundTrip(t *testing.T) {
	unikmers := []string{"AAAA", "CCCC", "GGGG", "TTTT"}
	m, err := NewUkhsMap(4, unikmers)
	if err != nil {
		t.Fatal(err)
	}
	if m.NPartitions() != len(unikmers) {
		t.Fatalf("NPartitions() = %d, want %d", m.NPartitions(), len(unikmers))
	}

	seen := map[uint32]bool{}
	for _, s := range unikmers {
		shifter := NewFwdShifter(4, alphabet.Simple)
		h := shifter.HashBase([]byte(s)).Value()
		p, ok := m.PartitionOf(h)
		if !ok {
			t.Fatalf("PartitionOf(%s) not found", s)
		}
		if seen[p] {
			t.Fatalf("partition %d assigned twice", p)
		}
		seen[p] = true

		back, ok := m.QueryRevmap(p)
		if !ok || back != h {
			t.Fatalf("QueryRevmap(%d) = (%d, %v), want (%d, true)", p, back, ok, h)
		}
	}
}

func TestUkhsMapUnknownHash(t *testing.T) {
	m, err := NewUkhsMap(4, []string{"AAAA"})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := m.PartitionOf(0xdeadbeef); ok {
		t.Fatal("expected unknown hash to miss")
	}
}

func TestUkhsMapWrongLength(t *testing.T) {
	if _, err := NewUkhsMap(4, []string{"AAA"}); err == nil {
		t.Fatal("expected error for mismatched unikmer length")
	}
}

func TestUkhsMapRevmapOutOfRange(t *testing.T) {
	m, err := NewUkhsMap(4, []string{"AAAA"})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := m.QueryRevmap(1); ok {
		t.Fatal("expected out-of-range partition to miss")
	}
}
