package hashing

import (
	"github.com/grailbio/base/unsafe"
)

// KmerSpan is a fixed-capacity ring buffer holding the current k-mer's
// characters, mirroring the role of `nonstd::ring_span` in the source
// library's kmer_span.hh. Once Load has been called, exactly K characters
// are live and PushBack/PushFront keep that invariant as the cursor moves.
type KmerSpan struct {
	buf    []byte
	k      int
	start  int // index of the logical front within buf
	loaded bool
}

// NewKmerSpan allocates a span with capacity k. It holds no live characters
// until Load, PushBack, or PushFront has filled it.
func NewKmerSpan(k int) *KmerSpan {
	return &KmerSpan{buf: make([]byte, k), k: k}
}

// Loaded reports whether the span currently holds K live characters.
func (s *KmerSpan) Loaded() bool { return s.loaded }

// Load fills the span from the first K bytes of seq, overwriting any
// previous contents. It panics if len(seq) < K.
func (s *KmerSpan) Load(seq []byte) {
	if len(seq) < s.k {
		panic("hashing: KmerSpan.Load requires len(seq) >= K")
	}
	copy(s.buf, seq[:s.k])
	s.start = 0
	s.loaded = true
}

// Front returns the leftmost live character.
func (s *KmerSpan) Front() byte {
	return s.buf[s.start]
}

// At returns the live character at logical offset i from the front,
// 0 <= i < K, without allocating (unlike Bytes).
func (s *KmerSpan) At(i int) byte {
	return s.buf[s.index(i)]
}

// Back returns the rightmost live character.
func (s *KmerSpan) Back() byte {
	return s.buf[s.index(s.k-1)]
}

// PushBack drops the front character and appends c at the back, as when
// the window shifts right by one position.
func (s *KmerSpan) PushBack(c byte) {
	s.buf[s.start] = c
	s.start = s.index(1)
}

// PushFront drops the back character and prepends c at the front, as when
// the window shifts left by one position.
func (s *KmerSpan) PushFront(c byte) {
	s.start = s.index(s.k - 1)
	s.buf[s.start] = c
}

func (s *KmerSpan) index(offset int) int {
	i := s.start + offset
	if i >= s.k {
		i -= s.k
	}
	return i
}

// Bytes returns the span's K live characters in logical (left-to-right)
// order. The returned slice is newly allocated; callers that only need a
// read-only view of the text for hashing should prefer String.
func (s *KmerSpan) Bytes() []byte {
	out := make([]byte, s.k)
	for i := 0; i < s.k; i++ {
		out[i] = s.buf[s.index(i)]
	}
	return out
}

// String returns the span's current contents as a string. When the ring is
// not wrapped (start == 0) this reuses the underlying array via
// unsafe.BytesToString to avoid a copy on the hot path; the wrapped case
// falls back to Bytes.
func (s *KmerSpan) String() string {
	if s.start == 0 {
		return unsafe.BytesToString(s.buf)
	}
	return string(s.Bytes())
}
