package hashing

import (
	"testing"

	"github.com/bionexus/cdbg/alphabet"
)

func TestKmerIteratorStreamsAllWindows(t *testing.T) {
	seq := []byte("ACGTACGTACG")
	k := uint16(5)
	it, err := NewKmerIterator(seq, NewFwdShifter(k, alphabet.Simple))
	if err != nil {
		t.Fatal(err)
	}

	var got []uint64
	for !it.Done() {
		got = append(got, it.Next().Value())
	}

	want := make([]uint64, 0, len(seq)-int(k)+1)
	for i := 0; i+int(k) <= len(seq); i++ {
		s := NewFwdShifter(k, alphabet.Simple)
		want = append(want, s.HashBase(seq[i:i+int(k)]).Value())
	}

	if len(got) != len(want) {
		t.Fatalf("got %d hashes, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("hash %d = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestKmerIteratorTooShort(t *testing.T) {
	_, err := NewKmerIterator([]byte("ACG"), NewFwdShifter(5, alphabet.Simple))
	if err == nil {
		t.Fatal("expected ErrSequenceTooShort")
	}
}

func TestKmerIteratorExactlyK(t *testing.T) {
	seq := []byte("ACGTA")
	it, err := NewKmerIterator(seq, NewFwdShifter(5, alphabet.Simple))
	if err != nil {
		t.Fatal(err)
	}
	if it.Done() {
		t.Fatal("should not be done before first Next")
	}
	it.Next()
	if !it.Done() {
		t.Fatal("should be done after the only window")
	}
}
