package storage

import (
	"sync/atomic"

	"github.com/bionexus/cdbg/internal/shard"
)

const nibbleSaturate = 15

// NibbleStorage packs two 4-bit saturating counters per table byte,
// halving ByteStorage's memory footprint at the cost of a narrower count
// range before falling back to the overflow map. A
// shard.LockPool protects each read-modify-write, since a nibble update
// also touches its sibling nibble packed into the same byte.
type NibbleStorage struct {
	sizes    []uint64 // nibbles per table
	tables   [][]byte
	locks    *shard.LockPool
	overflow *shard.Map[uint64]
	nUnique  uint64 // atomic
}

// NewNibbleStorage builds a NibbleStorage with nTables sub-tables, each
// holding primarySize (then roughly doubling) nibble-addressable slots.
func NewNibbleStorage(nTables int, primarySize uint64) *NibbleStorage {
	if nTables < 1 {
		nTables = 1
	}
	sizes := make([]uint64, nTables)
	tables := make([][]byte, nTables)
	size := nextOddPrime(primarySize | 1)
	for i := range sizes {
		sizes[i] = size
		tables[i] = make([]byte, (size+1)/2)
		size = nextOddPrime(size*2 + 1)
	}
	return &NibbleStorage{
		sizes:    sizes,
		tables:   tables,
		locks:    shard.NewLockPool(0),
		overflow: shard.New[uint64](0),
	}
}

func getNibble(tbl []byte, idx uint64) byte {
	b := tbl[idx/2]
	if idx%2 == 0 {
		return b & 0x0F
	}
	return b >> 4
}

func setNibble(tbl []byte, idx uint64, v byte) {
	b := tbl[idx/2]
	if idx%2 == 0 {
		tbl[idx/2] = (b &^ 0x0F) | (v & 0x0F)
	} else {
		tbl[idx/2] = (b &^ 0xF0) | (v << 4)
	}
}

// InsertAndQuery implements Storage.
func (s *NibbleStorage) InsertAndQuery(h uint64) uint64 {
	s.locks.Lock(h)
	min := uint64(nibbleSaturate)
	newMin := false
	for t := range s.tables {
		idx := h % s.sizes[t]
		v := getNibble(s.tables[t], idx)
		if v < nibbleSaturate {
			v++
			setNibble(s.tables[t], idx, v)
		}
		if uint64(v) < min {
			min = uint64(v)
			newMin = v == 1
		}
	}
	s.locks.Unlock(h)

	if min >= nibbleSaturate {
		var count uint64
		s.overflow.Update(h, func(v uint64, ok bool) uint64 {
			if !ok {
				// The saturating insert itself is the 15th.
				v = nibbleSaturate - 1
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
func (s *NibbleStorage) Insert(h uint64) bool { return s.InsertAndQuery(h) == 1 }

// Query implements Storage.
func (s *NibbleStorage) Query(h uint64) uint64 {
	s.locks.Lock(h)
	min := uint64(nibbleSaturate)
	for t := range s.tables {
		idx := h % s.sizes[t]
		if v := uint64(getNibble(s.tables[t], idx)); v < min {
			min = v
		}
	}
	s.locks.Unlock(h)

	if min >= nibbleSaturate {
		if v, ok := s.overflow.Load(h); ok {
			return v
		}
	}
	return min
}

// NUniqueKmers implements Storage.
func (s *NibbleStorage) NUniqueKmers() uint64 { return atomic.LoadUint64(&s.nUnique) }

// NOccupied implements Storage.
func (s *NibbleStorage) NOccupied() uint64 {
	var n uint64
	for t := range s.tables {
		for i := uint64(0); i < s.sizes[t]; i++ {
			if getNibble(s.tables[t], i) > 0 {
				n++
			}
		}
	}
	return n
}

// Reset implements Storage.
func (s *NibbleStorage) Reset() {
	for t := range s.tables {
		for i := range s.tables[t] {
			s.tables[t][i] = 0
		}
	}
	s.overflow = shard.New[uint64](0)
	atomic.StoreUint64(&s.nUnique, 0)
}

// Kind implements RawTables.
func (s *NibbleStorage) Kind() Kind { return KindNibble }

// RawTables implements RawTables. As with ByteStorage, the overflow map
// does not round-trip through persistence.
func (s *NibbleStorage) RawTables() [][]byte { return s.tables }

// LoadRawTables implements RawTables.
func (s *NibbleStorage) LoadRawTables(tables [][]byte) error {
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
