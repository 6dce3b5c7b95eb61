package hashing

import (
	"math/bits"
	"sync"

	farm "github.com/dgryski/go-farm"
)

// symbolTable holds one random 64-bit constant per possible byte value,
// the rolling hash's per-symbol table. Values for out-of-alphabet bytes
// are never read on a validated path, but are populated anyway (with a
// sentinel-ish farm hash of the index) so a misuse that skips validation
// doesn't panic on an uninitialized entry.
type symbolTable [256]uint64

var (
	defaultTableOnce sync.Once
	defaultTable     symbolTable
)

// defaultSymbolTable lazily builds the shared per-symbol constant table used
// by every CyclicHash64 unless the caller supplies a custom seed, seeding
// each entry deterministically with farm's 64-bit hash rather than
// math/rand, so the table (and therefore every hash value derived from it)
// is reproducible across processes without persisting any state.
func defaultSymbolTable() *symbolTable {
	defaultTableOnce.Do(func() {
		newSymbolTable(0x9ae16a3b2f90404f, &defaultTable)
	})
	return &defaultTable
}

func newSymbolTable(seed uint64, out *symbolTable) {
	var buf [1]byte
	for i := 0; i < 256; i++ {
		buf[0] = byte(i)
		out[i] = farm.Hash64WithSeed(buf[:], seed)
	}
}

// CyclicHash64 implements Lemire's cyclic polynomial rolling hash over a
// fixed window of K characters: eat() absorbs the initial window one
// character at a time, update()/reverse_update() roll the window right or
// left in O(1).
type CyclicHash64 struct {
	k     uint16
	table *symbolTable
	value uint64
}

// NewCyclicHash64 creates a hasher for a window of width k using the
// package's default, shared symbol table.
func NewCyclicHash64(k uint16) *CyclicHash64 {
	return &CyclicHash64{k: k, table: defaultSymbolTable()}
}

// NewCyclicHash64WithSeed is identical to NewCyclicHash64 but builds a
// private symbol table from seed, for callers (tests, multiple independent
// cDBGs) that want hash values that don't collide with the package default.
func NewCyclicHash64WithSeed(k uint16, seed uint64) *CyclicHash64 {
	table := &symbolTable{}
	newSymbolTable(seed, table)
	return &CyclicHash64{k: k, table: table}
}

// K returns the hasher's configured window width.
func (h *CyclicHash64) K() uint16 { return h.k }

// Value returns the current rolling hash value.
func (h *CyclicHash64) Value() uint64 { return h.value }

// Reset zeroes the internal hash state. The caller must Eat a fresh window
// of K characters before the next Update/ReverseUpdate.
func (h *CyclicHash64) Reset() {
	h.value = 0
}

// Eat absorbs one character, extending the window to the right. Called K
// times to seed the hasher; has no contract for calls beyond the Kth.
func (h *CyclicHash64) Eat(c byte) {
	h.value = bits.RotateLeft64(h.value, 1) ^ h.table[c]
}

// Update rolls the window one character to the right: out is the character
// leaving the back of the window, in is the character entering the front.
func (h *CyclicHash64) Update(out, in byte) {
	h.value = bits.RotateLeft64(h.value, 1) ^
		bits.RotateLeft64(h.table[out], int(h.k)) ^
		h.table[in]
}

// ReverseUpdate rolls the window one character to the left: in is the
// character entering the back of the window, out is the character leaving
// the front. It is the exact inverse of Update.
func (h *CyclicHash64) ReverseUpdate(in, out byte) {
	h.value = bits.RotateRight64(
		h.value^h.table[out]^bits.RotateLeft64(h.table[in], int(h.k)),
		1,
	)
}
