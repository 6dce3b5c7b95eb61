package graph

import (
	"testing"

	"github.com/bionexus/cdbg/alphabet"
	"github.com/bionexus/cdbg/hashing"
	"github.com/bionexus/cdbg/storage"
)

func newWalkerOver(t *testing.T, k uint16, seq string) (*UnitigWalker[*storage.BitStorage], *storage.BitStorage) {
	t.Helper()
	st := storage.NewBitStorage(3, 1009)
	g := NewDBG[*storage.BitStorage](st, func() hashing.Shifter {
		return hashing.NewFwdShifter(k, alphabet.Simple)
	})
	if _, err := g.InsertSequence([]byte(seq)); err != nil {
		t.Fatal(err)
	}
	return g.NewUnitigWalker(), st
}

func kmerHash(k uint16, seq string) uint64 {
	return hashing.NewFwdShifter(k, alphabet.Simple).HashBase([]byte(seq)).Value()
}

func TestUnitigWalkerLinearPath(t *testing.T) {
	w, _ := newWalkerOver(t, 4, "ACGGTTCA") // k-mers: ACGG CGGT GGTT GTTC TTCA, no internal overlaps

	left, right := w.Walk([]byte("GGTT"), nil)

	if left.EndState != StopFwd {
		t.Fatalf("left.EndState = %v, want StopFwd", left.EndState)
	}
	if len(left.Path) != 2 {
		t.Fatalf("len(left.Path) = %d, want 2", len(left.Path))
	}
	if left.Path[0].Hash.Value() != kmerHash(4, "CGGT") {
		t.Fatal("left.Path[0] should be CGGT")
	}
	if left.Path[1].Hash.Value() != kmerHash(4, "ACGG") {
		t.Fatal("left.Path[1] should be ACGG")
	}

	if right.EndState != StopFwd {
		t.Fatalf("right.EndState = %v, want StopFwd", right.EndState)
	}
	if len(right.Path) != 2 {
		t.Fatalf("len(right.Path) = %d, want 2", len(right.Path))
	}
	if right.Path[0].Hash.Value() != kmerHash(4, "GTTC") {
		t.Fatal("right.Path[0] should be GTTC")
	}
	if right.Path[1].Hash.Value() != kmerHash(4, "TTCA") {
		t.Fatal("right.Path[1] should be TTCA")
	}
}

func TestUnitigWalkerSequenceReconstruction(t *testing.T) {
	w, _ := newWalkerOver(t, 4, "ACGGTTCA")
	left, right := w.Walk([]byte("GGTT"), nil)

	if got := string(left.Sequence()); got != "ACGGTT" {
		t.Fatalf("left.Sequence() = %q, want %q", got, "ACGGTT")
	}
	if got := string(right.Sequence()); got != "GGTTCA" {
		t.Fatalf("right.Sequence() = %q, want %q", got, "GGTTCA")
	}
}

func TestUnitigWalkerDecisionStates(t *testing.T) {
	// ACGT CGTA GTAC TACG ACGA: a linear path whose k-mers happen to
	// overlap with each other in ways that create a real fork at TACG,
	// which can extend to either ACGT or ACGA.
	w, _ := newWalkerOver(t, 4, "ACGTACGA")

	left, right := w.Walk([]byte("GTAC"), nil)

	if left.EndState != DecisionBkw {
		t.Fatalf("left.EndState = %v, want DecisionBkw", left.EndState)
	}
	if len(left.Path) != 2 {
		t.Fatalf("len(left.Path) = %d, want 2 (TACG should have been retracted)", len(left.Path))
	}

	if right.EndState != DecisionFwd {
		t.Fatalf("right.EndState = %v, want DecisionFwd", right.EndState)
	}
	if len(right.Path) != 1 {
		t.Fatalf("len(right.Path) = %d, want 1", len(right.Path))
	}
}

func TestUnitigWalkerBadSeed(t *testing.T) {
	w, _ := newWalkerOver(t, 4, "AAAACCCC")
	left, right := w.Walk([]byte("TTTT"), nil)
	if left.EndState != BadSeed || right.EndState != BadSeed {
		t.Fatalf("EndStates = %v, %v, want BadSeed, BadSeed", left.EndState, right.EndState)
	}
}

func TestUnitigWalkerGetDecisionNeighbors(t *testing.T) {
	w, _ := newWalkerOver(t, 4, "ACGTACGA")
	w.extender.SetCursor([]byte("TACG"))
	dn, ok := w.GetDecisionNeighbors()
	if !ok {
		t.Fatal("expected TACG to be a decision k-mer")
	}
	if len(dn.Right) != 2 {
		t.Fatalf("len(dn.Right) = %d, want 2", len(dn.Right))
	}
	if len(dn.Left) != 1 {
		t.Fatalf("len(dn.Left) = %d, want 1", len(dn.Left))
	}
}

func TestUnitigWalkerDegree(t *testing.T) {
	w, _ := newWalkerOver(t, 4, "ACGTACGA")
	w.extender.SetCursor([]byte("TACG"))
	if w.InDegree() != 1 {
		t.Fatalf("InDegree() = %d, want 1", w.InDegree())
	}
	if w.OutDegree() != 2 {
		t.Fatalf("OutDegree() = %d, want 2", w.OutDegree())
	}
	if w.Degree() != 3 {
		t.Fatalf("Degree() = %d, want 3", w.Degree())
	}
}

func TestUnitigWalkerStepCallbackStop(t *testing.T) {
	w, _ := newWalkerOver(t, 4, "AAAACCCC")
	w.extender.SetCursor([]byte("AACC"))
	state, _ := w.StepRight(func(uint64) bool { return false })
	if state != StopCallback {
		t.Fatalf("StepRight with rejecting callback = %v, want StopCallback", state)
	}
}
