package hashing

import (
	"github.com/grailbio/base/log"

	"github.com/bionexus/cdbg/alphabet"
)

// Hash is the value a Shifter produces. Fwd shifters produce a FwdHash;
// Can(onical) shifters produce a CanHash, from which the storage key
// min(fwd, rc) is derived by Value().
type Hash interface {
	// Value returns the 64-bit key used for storage lookups: the forward
	// hash for a forward policy, min(fwd, rc) for a canonical one.
	Value() uint64
}

// FwdHash is the hash produced by the forward-only policy.
type FwdHash struct {
	H uint64
}

// Value implements Hash.
func (h FwdHash) Value() uint64 { return h.H }

// CanHash is the hash pair produced by the canonical policy: Fwd is the
// forward-strand cyclic hash, Rc is the reverse-complement strand's. The
// storage key is min(Fwd, Rc); Value reports which side supplied it.
type CanHash struct {
	Fwd uint64
	Rc  uint64
}

// Value implements Hash, returning min(Fwd, Rc).
func (h CanHash) Value() uint64 {
	if h.Fwd < h.Rc {
		return h.Fwd
	}
	return h.Rc
}

// IsForward reports whether the forward strand supplied the canonical
// value (Fwd <= Rc), i.e. whether the current window reads as its own
// canonical form rather than its reverse complement's.
func (h CanHash) IsForward() bool { return h.Fwd <= h.Rc }

// Shifter is the policy interface HashShifter wraps: it supplies the
// hash-type-specific update rules while HashShifter supplies lazy-init
// bookkeeping and the shared error taxonomy. K is fixed at construction.
type Shifter interface {
	// K returns the shifter's configured k-mer length.
	K() uint16
	// Alphabet returns the alphabet characters are validated against.
	Alphabet() *alphabet.Alphabet
	// HashBase seeds the shifter from the first K characters of seq and
	// returns the resulting hash. seq must have length >= K.
	HashBase(seq []byte) Hash
	// ShiftRight rolls the window right by one character: out leaves the
	// back, in enters the front.
	ShiftRight(out, in byte) Hash
	// ShiftLeft rolls the window left by one character: in enters the
	// back, out leaves the front.
	ShiftLeft(in, out byte) Hash
	// Get returns the hash of the shifter's current window without
	// changing it.
	Get() Hash
}

// FwdShifter implements Shifter using a single CyclicHash64 on the forward
// strand.
type FwdShifter struct {
	k      uint16
	alpha  *alphabet.Alphabet
	hash   *CyclicHash64
	seeded bool
}

// NewFwdShifter creates a forward-only shifter for k-mers of length k.
func NewFwdShifter(k uint16, alpha *alphabet.Alphabet) *FwdShifter {
	return &FwdShifter{k: k, alpha: alpha, hash: NewCyclicHash64(k)}
}

// K implements Shifter.
func (s *FwdShifter) K() uint16 { return s.k }

// Alphabet implements Shifter.
func (s *FwdShifter) Alphabet() *alphabet.Alphabet { return s.alpha }

// HashBase implements Shifter.
func (s *FwdShifter) HashBase(seq []byte) Hash {
	s.hash.Reset()
	for i := uint16(0); i < s.k; i++ {
		s.hash.Eat(seq[i])
	}
	s.seeded = true
	return s.Get()
}

// ShiftRight implements Shifter. It panics if called before HashBase has
// seeded the window: that's a programming error, not a recoverable one.
func (s *FwdShifter) ShiftRight(out, in byte) Hash {
	if !s.seeded {
		log.Panicf("%v", ErrUninitialized)
	}
	s.hash.Update(out, in)
	return s.Get()
}

// ShiftLeft implements Shifter. See ShiftRight for the uninitialized-use
// panic.
func (s *FwdShifter) ShiftLeft(in, out byte) Hash {
	if !s.seeded {
		log.Panicf("%v", ErrUninitialized)
	}
	s.hash.ReverseUpdate(in, out)
	return s.Get()
}

// Get implements Shifter.
func (s *FwdShifter) Get() Hash {
	if !s.seeded {
		log.Panicf("%v", ErrUninitialized)
	}
	return FwdHash{H: s.hash.Value()}
}

// CanShifter implements Shifter using two CyclicHash64 instances, one per
// strand, combining them into the canonical (min of the two) hash.
type CanShifter struct {
	k      uint16
	alpha  *alphabet.Alphabet
	fwd    *CyclicHash64
	rc     *CyclicHash64
	seeded bool
}

// NewCanShifter creates a canonical shifter for k-mers of length k.
func NewCanShifter(k uint16, alpha *alphabet.Alphabet) *CanShifter {
	return &CanShifter{
		k:     k,
		alpha: alpha,
		fwd:   NewCyclicHash64(k),
		rc:    NewCyclicHash64(k),
	}
}

// K implements Shifter.
func (s *CanShifter) K() uint16 { return s.k }

// Alphabet implements Shifter.
func (s *CanShifter) Alphabet() *alphabet.Alphabet { return s.alpha }

// HashBase implements Shifter. The reverse-strand hasher eats the
// complement of seq's characters back to front, so after K eats both
// hashers describe the same window from opposite strands.
func (s *CanShifter) HashBase(seq []byte) Hash {
	s.fwd.Reset()
	s.rc.Reset()
	for i := uint16(0); i < s.k; i++ {
		s.fwd.Eat(seq[i])
		s.rc.Eat(s.alpha.Complement(seq[s.k-1-i]))
	}
	s.seeded = true
	return s.Get()
}

// ShiftRight implements Shifter. It panics if called before HashBase has
// seeded the window.
func (s *CanShifter) ShiftRight(out, in byte) Hash {
	if !s.seeded {
		log.Panicf("%v", ErrUninitialized)
	}
	s.fwd.Update(out, in)
	s.rc.ReverseUpdate(s.alpha.Complement(in), s.alpha.Complement(out))
	return s.Get()
}

// ShiftLeft implements Shifter. See ShiftRight for the uninitialized-use
// panic.
func (s *CanShifter) ShiftLeft(in, out byte) Hash {
	if !s.seeded {
		log.Panicf("%v", ErrUninitialized)
	}
	s.fwd.ReverseUpdate(in, out)
	s.rc.Update(s.alpha.Complement(out), s.alpha.Complement(in))
	return s.Get()
}

// Get implements Shifter.
func (s *CanShifter) Get() Hash {
	if !s.seeded {
		log.Panicf("%v", ErrUninitialized)
	}
	return CanHash{Fwd: s.fwd.Value(), Rc: s.rc.Value()}
}
