package hashing

import (
	"testing"

	"github.com/bionexus/cdbg/alphabet"
)

func TestHashExtenderLeftRightExtensions(t *testing.T) {
	seq := []byte("ACGTACGTACG")
	k := uint16(5)
	e := NewHashExtender(NewFwdShifter(k, alphabet.Simple))
	e.SetCursor(seq[1 : 1+int(k)])
	cursorBefore := e.Cursor()

	left := e.LeftExtensions(alphabet.Simple.Symbols())
	if len(left) != len(alphabet.Simple.Symbols()) {
		t.Fatalf("expected %d left extensions, got %d", len(alphabet.Simple.Symbols()), len(left))
	}
	if e.Cursor() != cursorBefore {
		t.Fatalf("LeftExtensions moved the cursor: before=%q after=%q", cursorBefore, e.Cursor())
	}

	right := e.RightExtensions(alphabet.Simple.Symbols())
	if len(right) != len(alphabet.Simple.Symbols()) {
		t.Fatalf("expected %d right extensions, got %d", len(alphabet.Simple.Symbols()), len(right))
	}
	if e.Cursor() != cursorBefore {
		t.Fatalf("RightExtensions moved the cursor: before=%q after=%q", cursorBefore, e.Cursor())
	}

	// One of the extensions must reproduce the real next/prev window.
	found := false
	for _, s := range right {
		if s.Symbol == seq[1+int(k)] {
			want := NewFwdShifter(k, alphabet.Simple)
			want.HashBase(seq[2 : 2+int(k)])
			if s.Hash.(FwdHash) == want.Get().(FwdHash) {
				found = true
			}
		}
	}
	if !found {
		t.Fatal("right extension matching the real next base did not reproduce the real next window's hash")
	}
}

func TestHashExtenderShiftMovesCursor(t *testing.T) {
	seq := []byte("ACGTACGTACG")
	k := uint16(5)
	e := NewHashExtender(NewFwdShifter(k, alphabet.Simple))
	e.SetCursor(seq[:int(k)])
	e.ShiftRight(seq[int(k)])
	if e.Cursor() != string(seq[1:1+int(k)]) {
		t.Fatalf("cursor = %q, want %q", e.Cursor(), seq[1:1+int(k)])
	}
}
