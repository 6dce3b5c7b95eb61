package hashing

import (
	"sort"

	"github.com/bionexus/cdbg/alphabet"
	"github.com/pkg/errors"
)

// UkhsMap is an immutable mapping from unikmer hashes to partition IDs,
// built from a caller-supplied list of unikmer strings all of length k′.
// It answers PartitionOf(hash) in O(log P).
//
// The source library builds this table with a minimal perfect hash
// function (boomphf) over an arbitrary input order; this implementation
// sorts the distinct unikmer hashes and assigns partition IDs by rank,
// which is simpler, index-free, and equally deterministic — the exact
// partition numbering is not an observable contract, only that it is
// stable and total over the UKHS.
type UkhsMap struct {
	kPrime uint16
	hashes []uint64 // sorted ascending; index == partition ID
}

// NewUkhsMap builds a UkhsMap from unikmers, a list of strings all of
// length kPrime. Duplicate unikmers collapse to a single partition.
func NewUkhsMap(kPrime uint16, unikmers []string) (*UkhsMap, error) {
	if len(unikmers) == 0 {
		return nil, errors.New("hashing: UKHS requires at least one unikmer")
	}
	shifter := NewFwdShifter(kPrime, alphabet.Simple)
	hashes := make([]uint64, 0, len(unikmers))
	seen := make(map[uint64]struct{}, len(unikmers))
	for _, s := range unikmers {
		if len(s) != int(kPrime) {
			return nil, errors.Errorf("hashing: unikmer %q has length %d, want k'=%d", s, len(s), kPrime)
		}
		h := shifter.HashBase([]byte(s)).Value()
		if _, dup := seen[h]; dup {
			continue
		}
		seen[h] = struct{}{}
		hashes = append(hashes, h)
	}
	sort.Slice(hashes, func(i, j int) bool { return hashes[i] < hashes[j] })
	return &UkhsMap{kPrime: kPrime, hashes: hashes}, nil
}

// KPrime returns the fixed length of every unikmer in the map.
func (m *UkhsMap) KPrime() uint16 { return m.kPrime }

// NPartitions returns the number of distinct partitions (P).
func (m *UkhsMap) NPartitions() int { return len(m.hashes) }

// PartitionOf reports the partition ID assigned to hash, and whether hash
// belongs to the UKHS at all.
func (m *UkhsMap) PartitionOf(hash uint64) (uint32, bool) {
	i := sort.Search(len(m.hashes), func(i int) bool { return m.hashes[i] >= hash })
	if i >= len(m.hashes) || m.hashes[i] != hash {
		return 0, false
	}
	return uint32(i), true
}

// QueryRevmap returns the unikmer hash assigned to partition, and whether
// partition names a valid partition. The source library's query_revmap
// bounds-checks with `>` against size(), which admits an off-by-one read
// of one element past the end; this uses `>=`, treating that as a bug.
func (m *UkhsMap) QueryRevmap(partition uint32) (uint64, bool) {
	if int(partition) >= len(m.hashes) {
		return 0, false
	}
	return m.hashes[partition], true
}
