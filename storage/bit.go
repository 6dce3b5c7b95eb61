package storage

import (
	"math/bits"
	"sync/atomic"

	"github.com/grailbio/base/simd"
)

const bitsPerWord = simd.BitsPerWord

// BitStorage is a Bloom filter over T sub-tables of distinct prime sizes:
// insert sets one bit per table at hash mod size_i; query reports
// presence iff every table's bit is set. Counts are clamped to {0, 1}.
//
// Grounded on circular/bitmap.go's flat word-table layout (dropped
// package; only the layout idiom survives, not the file — see
// DESIGN.md). Unlike circular.Bitmap, which is single-writer, every bit
// set here is lock-free: concurrent inserts from
// multiple reads must be safe, so each set is a compare-and-swap retry loop
// rather than a plain word store. Go's sync/atomic has no OR primitive
// for a whole word, so the loop does load-compare-CAS by hand.
type BitStorage struct {
	sizes   []uint64 // bits per table
	words   [][]uint64
	nUnique uint64 // atomic
}

// NewBitStorage builds a BitStorage with nTables sub-tables, the first
// sized to the next odd prime >= primaryBits and each subsequent one
// roughly double the last (again rounded up to a prime).
func NewBitStorage(nTables int, primaryBits uint64) *BitStorage {
	if nTables < 1 {
		nTables = 1
	}
	sizes := make([]uint64, nTables)
	words := make([][]uint64, nTables)
	size := nextOddPrime(primaryBits | 1)
	for i := range sizes {
		sizes[i] = size
		words[i] = make([]uint64, (size+bitsPerWord-1)/bitsPerWord)
		size = nextOddPrime(size*2 + 1)
	}
	return &BitStorage{sizes: sizes, words: words}
}

func bitOr(addr *uint64, mask uint64) (old uint64) {
	for {
		old = atomic.LoadUint64(addr)
		if old&mask == mask {
			return old
		}
		if atomic.CompareAndSwapUint64(addr, old, old|mask) {
			return old
		}
	}
}

func (s *BitStorage) posFor(table int, h uint64) (word int, mask uint64) {
	bit := h % s.sizes[table]
	return int(bit / bitsPerWord), uint64(1) << (bit % bitsPerWord)
}

// Insert implements Storage.
func (s *BitStorage) Insert(h uint64) bool {
	newlySet := false
	for t := range s.words {
		w, mask := s.posFor(t, h)
		if old := bitOr(&s.words[t][w], mask); old&mask == 0 {
			newlySet = true
		}
	}
	if newlySet {
		atomic.AddUint64(&s.nUnique, 1)
	}
	return newlySet
}

// Query implements Storage.
func (s *BitStorage) Query(h uint64) uint64 {
	for t := range s.words {
		w, mask := s.posFor(t, h)
		if atomic.LoadUint64(&s.words[t][w])&mask == 0 {
			return 0
		}
	}
	return 1
}

// InsertAndQuery implements Storage.
func (s *BitStorage) InsertAndQuery(h uint64) uint64 {
	s.Insert(h)
	return 1
}

// NUniqueKmers implements Storage.
func (s *BitStorage) NUniqueKmers() uint64 { return atomic.LoadUint64(&s.nUnique) }

// NOccupied implements Storage: total set bits across every table.
func (s *BitStorage) NOccupied() uint64 {
	var n uint64
	for t := range s.words {
		for _, w := range s.words[t] {
			n += uint64(bits.OnesCount64(w))
		}
	}
	return n
}

// Reset implements Storage.
func (s *BitStorage) Reset() {
	for t := range s.words {
		for i := range s.words[t] {
			s.words[t][i] = 0
		}
	}
	atomic.StoreUint64(&s.nUnique, 0)
}

// Kind implements RawTables.
func (s *BitStorage) Kind() Kind { return KindBit }

// RawTables implements RawTables, packing each table's words to
// little-endian bytes for persistence.
func (s *BitStorage) RawTables() [][]byte {
	out := make([][]byte, len(s.words))
	for i, words := range s.words {
		buf := make([]byte, len(words)*8)
		for j, w := range words {
			putUint64(buf[j*8:], w)
		}
		out[i] = buf
	}
	return out
}

// LoadRawTables implements RawTables.
func (s *BitStorage) LoadRawTables(tables [][]byte) error {
	if len(tables) != len(s.words) {
		return errInvalidTableCount(len(tables), len(s.words))
	}
	for i, buf := range tables {
		if len(buf) != len(s.words[i])*8 {
			return errInvalidTableSize(i, len(buf), len(s.words[i])*8)
		}
		for j := range s.words[i] {
			s.words[i][j] = getUint64(buf[j*8:])
		}
	}
	return nil
}
