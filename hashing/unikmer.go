package hashing

import (
	"github.com/bionexus/cdbg/alphabet"
	"github.com/pkg/errors"
)

// Unikmer is a k′-gram drawn from the UKHS, tagged with the partition it
// was assigned at UkhsMap construction.
type Unikmer struct {
	Hash      uint64
	Partition uint32
}

// UnikmerHash is produced by UnikmerShifter: the outer window's own hash
// plus the minimum-hash Unikmer found within the window, if any. HasMin
// is false only when the UKHS is not universal over the configured K, W
// — every valid window should carry a minimizer.
type UnikmerHash struct {
	Outer     Hash
	Minimizer Unikmer
	HasMin    bool
}

// Value implements Hash, returning the outer window's storage key. The
// minimizer is carried separately for partition routing.
func (h UnikmerHash) Value() uint64 { return h.Outer.Value() }

type unikmerEntry struct {
	Unikmer
	pos int // offset of the k′-gram's left edge within the outer window
}

// UnikmerShifter augments an outer Shifter (forward or canonical) with a
// second CyclicHash64 of width k′ that tracks every UKHS unikmer whose
// k′-gram lies within the current K-window, reporting the minimum-hash
// one as the window's minimizer. The two
// exported constructors, NewFwdUnikmerShifter and NewCanUnikmerShifter,
// are the `{Fwd,Can}Unikmer` instantiations of this one policy.
type UnikmerShifter struct {
	outer  Shifter
	ukhs   *UkhsMap
	kPrime uint16

	span        *KmerSpan
	inner       *CyclicHash64
	innerOnLeft bool // true once the inner hasher tracks the window's leftmost k′-gram rather than its rightmost
	window      []unikmerEntry
}

func newUnikmerShifter(outer Shifter, ukhs *UkhsMap) (*UnikmerShifter, error) {
	if ukhs.KPrime() == 0 || ukhs.KPrime() >= outer.K() {
		return nil, errors.Wrapf(ErrUkhsMismatch, "k'=%d must be in [1, K=%d)", ukhs.KPrime(), outer.K())
	}
	return &UnikmerShifter{
		outer:  outer,
		ukhs:   ukhs,
		kPrime: ukhs.KPrime(),
		span:   NewKmerSpan(int(outer.K())),
		inner:  NewCyclicHash64(ukhs.KPrime()),
	}, nil
}

// NewFwdUnikmerShifter builds a forward-policy unikmer shifter for outer
// k-mers of length K (== ukhs.W, the UKHS window width), keyed on ukhs.
func NewFwdUnikmerShifter(K uint16, alpha *alphabet.Alphabet, ukhs *UkhsMap) (*UnikmerShifter, error) {
	return newUnikmerShifter(NewFwdShifter(K, alpha), ukhs)
}

// NewCanUnikmerShifter builds a canonical-policy unikmer shifter for outer
// k-mers of length K, keyed on ukhs.
func NewCanUnikmerShifter(K uint16, alpha *alphabet.Alphabet, ukhs *UkhsMap) (*UnikmerShifter, error) {
	return newUnikmerShifter(NewCanShifter(K, alpha), ukhs)
}

// K implements Shifter.
func (s *UnikmerShifter) K() uint16 { return s.outer.K() }

// Alphabet implements Shifter.
func (s *UnikmerShifter) Alphabet() *alphabet.Alphabet { return s.outer.Alphabet() }

// UKHS returns the map this shifter was built against.
func (s *UnikmerShifter) UKHS() *UkhsMap { return s.ukhs }

func (s *UnikmerShifter) minEntry() (Unikmer, bool) {
	if len(s.window) == 0 {
		return Unikmer{}, false
	}
	min := s.window[0].Unikmer
	for _, e := range s.window[1:] {
		if e.Hash < min.Hash {
			min = e.Unikmer
		}
	}
	return min, true
}

// Get implements Shifter.
func (s *UnikmerShifter) Get() Hash {
	min, ok := s.minEntry()
	return UnikmerHash{Outer: s.outer.Get(), Minimizer: min, HasMin: ok}
}

func (s *UnikmerShifter) queryAndPushBack(pos int) {
	h := s.inner.Value()
	if p, ok := s.ukhs.PartitionOf(h); ok {
		s.window = append(s.window, unikmerEntry{Unikmer: Unikmer{Hash: h, Partition: p}, pos: pos})
	}
}

func (s *UnikmerShifter) queryAndPushFront(pos int) {
	h := s.inner.Value()
	if p, ok := s.ukhs.PartitionOf(h); ok {
		entry := unikmerEntry{Unikmer: Unikmer{Hash: h, Partition: p}, pos: pos}
		s.window = append(s.window, unikmerEntry{})
		copy(s.window[1:], s.window)
		s.window[0] = entry
	}
}

// HashBase implements Shifter. It seeds the outer window and eats the
// first k′ characters into the inner hasher before rolling it forward
// one character at a time to cover the rest of the
// window, recording every k′-gram that belongs to the UKHS along the way.
func (s *UnikmerShifter) HashBase(seq []byte) Hash {
	s.outer.HashBase(seq)
	s.span.Load(seq)

	K, kp := int(s.K()), int(s.kPrime)
	s.inner.Reset()
	s.window = s.window[:0]
	for i := 0; i < kp; i++ {
		s.inner.Eat(seq[i])
	}
	s.queryAndPushBack(0)
	for i := kp; i < K; i++ {
		s.inner.Update(seq[i-kp], seq[i])
		s.queryAndPushBack(i - kp + 1)
	}
	s.innerOnLeft = false

	return s.Get()
}

// ShiftRight implements Shifter.
func (s *UnikmerShifter) ShiftRight(out, in byte) Hash {
	K, kp := int(s.K()), int(s.kPrime)

	if s.innerOnLeft {
		s.inner.Reset()
		for i := K - kp + 1; i < K; i++ {
			s.inner.Eat(s.span.At(i))
		}
		s.inner.Eat(in)
	} else {
		s.inner.Update(s.span.At(K-kp), in)
	}
	s.innerOnLeft = false

	if len(s.window) > 0 && s.window[0].pos == 0 {
		s.window = s.window[1:]
	}
	for i := range s.window {
		s.window[i].pos--
	}
	s.queryAndPushBack(K - kp)

	s.span.PushBack(in)
	return s.compositeWith(s.outer.ShiftRight(out, in))
}

// ShiftLeft implements Shifter.
func (s *UnikmerShifter) ShiftLeft(in, out byte) Hash {
	K, kp := int(s.K()), int(s.kPrime)

	if !s.innerOnLeft {
		s.inner.Reset()
		s.inner.Eat(in)
		for i := 0; i < kp-1; i++ {
			s.inner.Eat(s.span.At(i))
		}
	} else {
		s.inner.ReverseUpdate(in, s.span.At(kp-1))
	}
	s.innerOnLeft = true

	for i := range s.window {
		s.window[i].pos++
	}
	if n := len(s.window); n > 0 && s.window[n-1].pos > K-kp {
		s.window = s.window[:n-1]
	}
	s.queryAndPushFront(0)

	s.span.PushFront(in)
	return s.compositeWith(s.outer.ShiftLeft(in, out))
}

func (s *UnikmerShifter) compositeWith(outer Hash) Hash {
	min, ok := s.minEntry()
	return UnikmerHash{Outer: outer, Minimizer: min, HasMin: ok}
}
