package storage

import (
	"sync/atomic"

	"github.com/bionexus/cdbg/internal/shard"
)

const byteSaturate = 255

// ByteStorage is a count-min sketch with 8-bit saturating counters, plus
// an overflow map ("bigcount") for hashes whose true count exceeds what a
// byte can hold. Each insert increments the cell in every table and
// reports the minimum afterward — standard count-min semantics, an upper
// bound on the true count.
//
// Go's sync/atomic has no byte-sized compare-and-swap, so unlike
// BitStorage's lock-free word updates, cell updates here go through a
// shard.LockPool keyed by hash: the same fixed-size mutex pool
// NibbleStorage uses, extended to Byte for the same reason
// (narrower-than-word atomics aren't available in Go).
//
// Grounded on encoding/bamprovider/concurrentmap.go's sharded map for the
// overflow table, reused via internal/shard.
type ByteStorage struct {
	sizes    []uint64
	tables   [][]byte
	locks    *shard.LockPool
	overflow *shard.Map[uint64]
	nUnique  uint64 // atomic
}

// NewByteStorage builds a ByteStorage with nTables sub-tables sized like
// BitStorage's (primary size rounded to the next odd prime, each
// subsequent table roughly doubling).
func NewByteStorage(nTables int, primarySize uint64) *ByteStorage {
	if nTables < 1 {
		nTables = 1
	}
	sizes := make([]uint64, nTables)
	tables := make([][]byte, nTables)
	size := nextOddPrime(primarySize | 1)
	for i := range sizes {
		sizes[i] = size
		tables[i] = make([]byte, size)
		size = nextOddPrime(size*2 + 1)
	}
	return &ByteStorage{
		sizes:    sizes,
		tables:   tables,
		locks:    shard.NewLockPool(0),
		overflow: shard.New[uint64](0),
	}
}

// InsertAndQuery implements Storage.
func (s *ByteStorage) InsertAndQuery(h uint64) uint64 {
	s.locks.Lock(h)
	min := uint64(byteSaturate)
	newMin := false
	for t := range s.tables {
		idx := h % s.sizes[t]
		v := s.tables[t][idx]
		if v < byteSaturate {
			v++
			s.tables[t][idx] = v
		}
		if uint64(v) < min {
			min = uint64(v)
			newMin = v == 1
		}
	}
	s.locks.Unlock(h)

	if min >= byteSaturate {
		var count uint64
		s.overflow.Update(h, func(v uint64, ok bool) uint64 {
			if !ok {
				// The saturating insert itself is the 255th.
				v = byteSaturate - 1
			}
			v++
			count = v
			return v
		})
		min = count
	}
	if newMin {
		atomic.AddUint64(&s.nUnique, 1)
	}
	return min
}

// Insert implements Storage.
func (s *ByteStorage) Insert(h uint64) bool { return s.InsertAndQuery(h) == 1 }

// Query implements Storage.
func (s *ByteStorage) Query(h uint64) uint64 {
	s.locks.Lock(h)
	min := uint64(byteSaturate)
	for t := range s.tables {
		idx := h % s.sizes[t]
		if v := uint64(s.tables[t][idx]); v < min {
			min = v
		}
	}
	s.locks.Unlock(h)

	if min >= byteSaturate {
		if v, ok := s.overflow.Load(h); ok {
			return v
		}
	}
	return min
}

// NUniqueKmers implements Storage.
func (s *ByteStorage) NUniqueKmers() uint64 { return atomic.LoadUint64(&s.nUnique) }

// NOccupied implements Storage.
func (s *ByteStorage) NOccupied() uint64 {
	var n uint64
	for t := range s.tables {
		for _, v := range s.tables[t] {
			if v > 0 {
				n++
			}
		}
	}
	return n
}

// Reset implements Storage.
func (s *ByteStorage) Reset() {
	for t := range s.tables {
		for i := range s.tables[t] {
			s.tables[t][i] = 0
		}
	}
	s.overflow = shard.New[uint64](0)
	atomic.StoreUint64(&s.nUnique, 0)
}

// Kind implements RawTables.
func (s *ByteStorage) Kind() Kind { return KindByte }

// RawTables implements RawTables. The overflow map is not persisted: the
// file format covers the fixed-size tables only, so a reload undercounts
// any hash that had saturated a byte counter.
func (s *ByteStorage) RawTables() [][]byte { return s.tables }

// LoadRawTables implements RawTables.
func (s *ByteStorage) LoadRawTables(tables [][]byte) error {
	if len(tables) != len(s.tables) {
		return errInvalidTableCount(len(tables), len(s.tables))
	}
	for i, buf := range tables {
		if len(buf) != len(s.tables[i]) {
			return errInvalidTableSize(i, len(buf), len(s.tables[i]))
		}
		copy(s.tables[i], buf)
	}
	return nil
}
