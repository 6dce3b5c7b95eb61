// Package shard provides sharded concurrent maps and mutex pools, used by
// the storage package to spread lock contention across many small
// critical sections instead of one global lock.
package shard

import (
	"encoding/binary"
	"sync"

	"blainsmith.com/go/seahash"
)

const defaultShardCount = 1024

func nextPow2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

func hashKey(key uint64) uint64 {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], key)
	return seahash.Sum64(b[:])
}

// Map is a generic sharded concurrent map: N independent mutex+map pairs
// selected by a hash of the key, trading strict mutual exclusion for
// reduced contention under concurrent access. Grounded on
// encoding/bamprovider/concurrentmap.go's mapShard/concurrentMap pair.
type Map[V any] struct {
	shards []mapShard[V]
	mask   uint64
}

type mapShard[V any] struct {
	mu sync.Mutex
	m  map[uint64]V
}

// New creates a Map with n shards, rounded up to the next power of two. n
// <= 0 selects the default shard count.
func New[V any](n int) *Map[V] {
	if n <= 0 {
		n = defaultShardCount
	}
	n = nextPow2(n)
	shards := make([]mapShard[V], n)
	for i := range shards {
		shards[i].m = make(map[uint64]V)
	}
	return &Map[V]{shards: shards, mask: uint64(n - 1)}
}

func (m *Map[V]) shardFor(key uint64) *mapShard[V] {
	return &m.shards[hashKey(key)&m.mask]
}

// Load returns the value stored for key, if any.
func (m *Map[V]) Load(key uint64) (V, bool) {
	s := m.shardFor(key)
	s.mu.Lock()
	v, ok := s.m[key]
	s.mu.Unlock()
	return v, ok
}

// Store sets the value for key.
func (m *Map[V]) Store(key uint64, v V) {
	s := m.shardFor(key)
	s.mu.Lock()
	s.m[key] = v
	s.mu.Unlock()
}

// Delete removes key, if present.
func (m *Map[V]) Delete(key uint64) {
	s := m.shardFor(key)
	s.mu.Lock()
	delete(s.m, key)
	s.mu.Unlock()
}

// Update runs fn against the current value for key (the zero value and
// ok=false if absent) under the shard's lock, and stores fn's result
// back. It's the map's only atomic read-modify-write primitive.
func (m *Map[V]) Update(key uint64, fn func(v V, ok bool) V) {
	s := m.shardFor(key)
	s.mu.Lock()
	v, ok := s.m[key]
	s.m[key] = fn(v, ok)
	s.mu.Unlock()
}

// Len returns the number of entries. Like concurrentMap's approxSize,
// it's only exact absent concurrent writers.
func (m *Map[V]) Len() int {
	n := 0
	for i := range m.shards {
		m.shards[i].mu.Lock()
		n += len(m.shards[i].m)
		m.shards[i].mu.Unlock()
	}
	return n
}

// LockPool is a fixed-size pool of mutexes selected by a hash of the key.
// It guards read-modify-write access to external state keyed the same
// way (e.g. storage's packed bit/nibble tables) too fine-grained to give
// each key its own lock, generalizing concurrentmap.go's per-shard mutex
// to callers that don't want the map half of Map[V].
type LockPool struct {
	mus  []sync.Mutex
	mask uint64
}

// NewLockPool creates a LockPool with n mutexes, rounded up to the next
// power of two. n <= 0 selects the default shard count.
func NewLockPool(n int) *LockPool {
	if n <= 0 {
		n = defaultShardCount
	}
	n = nextPow2(n)
	return &LockPool{mus: make([]sync.Mutex, n), mask: uint64(n - 1)}
}

func (p *LockPool) indexFor(key uint64) uint64 {
	return hashKey(key) & p.mask
}

// Lock acquires the mutex for key's shard.
func (p *LockPool) Lock(key uint64) { p.mus[p.indexFor(key)].Lock() }

// Unlock releases the mutex for key's shard.
func (p *LockPool) Unlock(key uint64) { p.mus[p.indexFor(key)].Unlock() }
