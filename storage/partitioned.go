package storage

import "github.com/grailbio/base/log"

// PartitionedStorage runs one Storage instance per UKHS partition,
// dispatching every call on an explicit partition argument rather than
// re-deriving it from the hash —
// the caller (the dBG, which already has the UnikmerHash's minimizer
// partition to hand) always knows which partition a k-mer belongs to.
type PartitionedStorage[S Storage] struct {
	partitions []S
}

// NewPartitionedStorage builds a PartitionedStorage from n already
// constructed per-partition stores.
func NewPartitionedStorage[S Storage](partitions []S) *PartitionedStorage[S] {
	return &PartitionedStorage[S]{partitions: partitions}
}

// NPartitions returns the number of partitions.
func (p *PartitionedStorage[S]) NPartitions() int { return len(p.partitions) }

// At returns the Storage for partition, or the zero value and false if
// partition is out of range.
func (p *PartitionedStorage[S]) At(partition uint32) (S, bool) {
	var zero S
	if int(partition) >= len(p.partitions) {
		return zero, false
	}
	return p.partitions[partition], true
}

// Insert implements Storage-shaped dispatch for partition. partition is
// always derived from the UKHS this store was built against, so an
// out-of-range value is a programming error: Insert panics rather than
// returning ErrInvalidPartition.
func (p *PartitionedStorage[S]) Insert(partition uint32, hash uint64) bool {
	s, ok := p.At(partition)
	if !ok {
		log.Panicf("%v: %d", ErrInvalidPartition, partition)
	}
	return s.Insert(hash)
}

// InsertAndQuery dispatches to partition's store. See Insert for the
// out-of-range-partition panic.
func (p *PartitionedStorage[S]) InsertAndQuery(partition uint32, hash uint64) uint64 {
	s, ok := p.At(partition)
	if !ok {
		log.Panicf("%v: %d", ErrInvalidPartition, partition)
	}
	return s.InsertAndQuery(hash)
}

// Query dispatches to partition's store. See Insert for the
// out-of-range-partition panic.
func (p *PartitionedStorage[S]) Query(partition uint32, hash uint64) uint64 {
	s, ok := p.At(partition)
	if !ok {
		log.Panicf("%v: %d", ErrInvalidPartition, partition)
	}
	return s.Query(hash)
}

// NUniqueKmers sums NUniqueKmers across every partition.
func (p *PartitionedStorage[S]) NUniqueKmers() uint64 {
	var n uint64
	for _, s := range p.partitions {
		n += s.NUniqueKmers()
	}
	return n
}

// NOccupied sums NOccupied across every partition.
func (p *PartitionedStorage[S]) NOccupied() uint64 {
	var n uint64
	for _, s := range p.partitions {
		n += s.NOccupied()
	}
	return n
}

// Reset clears every partition's store.
func (p *PartitionedStorage[S]) Reset() {
	for _, s := range p.partitions {
		s.Reset()
	}
}
