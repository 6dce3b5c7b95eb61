package hashing

import "github.com/pkg/errors"

// KmerIterator streams hashes along a sequence via a Shifter. It is not
// safe for concurrent use; each read gets its own iterator.
type KmerIterator struct {
	shifter Shifter
	seq     []byte
	k       int
	next    int // start offset of the k-mer the next Next() call will return
	started bool
}

// NewKmerIterator constructs an iterator over seq using shifter. It
// returns ErrSequenceTooShort if len(seq) < shifter.K().
func NewKmerIterator(seq []byte, shifter Shifter) (*KmerIterator, error) {
	k := int(shifter.K())
	if len(seq) < k {
		return nil, errors.Wrapf(ErrSequenceTooShort, "len(seq)=%d K=%d", len(seq), k)
	}
	return &KmerIterator{shifter: shifter, seq: seq, k: k}, nil
}

// Done reports whether the cursor would run past the end of the sequence
// on the next Next call.
func (it *KmerIterator) Done() bool {
	return it.next > len(it.seq)-it.k
}

// Next returns the hash of the next k-mer in the sequence. The first call
// returns HashBase(seq[0:K]); each subsequent call returns
// ShiftRight(seq[i-1], seq[i+K-1]) for i = 1, 2, .... It panics if called
// after Done reports true.
func (it *KmerIterator) Next() Hash {
	if it.Done() {
		panic("hashing: KmerIterator.Next called past end of sequence")
	}
	if !it.started {
		it.started = true
		it.next = 1
		return it.shifter.HashBase(it.seq[:it.k])
	}
	i := it.next
	out := it.seq[i-1]
	in := it.seq[i+it.k-1]
	it.next++
	return it.shifter.ShiftRight(out, in)
}

// Pos returns the 0-based start offset of the k-mer most recently returned
// by Next.
func (it *KmerIterator) Pos() int {
	return it.next - 1
}
