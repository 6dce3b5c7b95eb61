package graph

import (
	"github.com/bionexus/cdbg/hashing"
	"github.com/bionexus/cdbg/storage"
)

// NewShifterFunc builds a fresh Shifter. dBG and PDBG call it once per
// sequence operation rather than holding one Shifter, since a Shifter's
// window state is mutable and not safe to share across concurrent reads:
// storage may be inserted into concurrently, but each read gets its own
// shifter and iterator.
type NewShifterFunc func() hashing.Shifter

// DBG combines a Storage with a Shifter family: insert/query/sequence
// operations over k-mer hashes.
type DBG[S storage.Storage] struct {
	Store      S
	NewShifter NewShifterFunc
}

// NewDBG builds a DBG over store, minting shifters via newShifter.
func NewDBG[S storage.Storage](store S, newShifter NewShifterFunc) *DBG[S] {
	return &DBG[S]{Store: store, NewShifter: newShifter}
}

// K reports the k-mer length of a freshly built shifter.
func (g *DBG[S]) K() uint16 { return g.NewShifter().K() }

// InsertSequence inserts every k-mer hash in seq, returning how many were
// previously absent from the store.
func (g *DBG[S]) InsertSequence(seq []byte) (newCount int, err error) {
	it, err := hashing.NewKmerIterator(seq, g.NewShifter())
	if err != nil {
		return 0, err
	}
	for !it.Done() {
		if g.Store.Insert(it.Next().Value()) {
			newCount++
		}
	}
	return newCount, nil
}

// QuerySequence reports the current store count of every k-mer in seq, in
// order.
func (g *DBG[S]) QuerySequence(seq []byte) ([]uint64, error) {
	it, err := hashing.NewKmerIterator(seq, g.NewShifter())
	if err != nil {
		return nil, err
	}
	var counts []uint64
	for !it.Done() {
		counts = append(counts, g.Store.Query(it.Next().Value()))
	}
	return counts, nil
}

// Query looks up a single precomputed hash.
func (g *DBG[S]) Query(hash uint64) uint64 { return g.Store.Query(hash) }

// NewUnitigWalker builds a walker over this dBG's store using a fresh
// shifter.
func (g *DBG[S]) NewUnitigWalker() *UnitigWalker[S] {
	return NewUnitigWalker[S](g.NewShifter(), g.Store)
}

// NewUnikmerShifterFunc builds a fresh *hashing.UnikmerShifter; it is the
// *hashing.UnikmerShifter-typed counterpart of NewShifterFunc, used by
// PDBG, which needs the concrete type to read UnikmerHash.Minimizer
// rather than just Hash.Value().
type NewUnikmerShifterFunc func() (*hashing.UnikmerShifter, error)

// PDBG is the unikmer-partitioned dBG: each k-mer's
// insert/query routes to the sub-store named by its window's UKHS
// minimizer partition rather than one shared store.
type PDBG[S storage.Storage] struct {
	Store      *storage.PartitionedStorage[S]
	NewShifter NewUnikmerShifterFunc
}

// NewPDBG builds a PDBG over store, minting unikmer shifters via
// newShifter.
func NewPDBG[S storage.Storage](store *storage.PartitionedStorage[S], newShifter NewUnikmerShifterFunc) *PDBG[S] {
	return &PDBG[S]{Store: store, NewShifter: newShifter}
}

// InsertSequence inserts every k-mer in seq into the partition named by
// its minimizer, returning how many were previously absent. A k-mer
// whose window has no minimizer (HasMin false) is skipped: the UKHS is
// expected to be universal, but a caller-supplied non-universal UKHS
// should not crash the driver over it.
func (g *PDBG[S]) InsertSequence(seq []byte) (newCount int, err error) {
	shifter, err := g.NewShifter()
	if err != nil {
		return 0, err
	}
	it, err := hashing.NewKmerIterator(seq, shifter)
	if err != nil {
		return 0, err
	}
	for !it.Done() {
		uh, ok := it.Next().(hashing.UnikmerHash)
		if !ok || !uh.HasMin {
			continue
		}
		if g.Store.Insert(uh.Minimizer.Partition, uh.Value()) {
			newCount++
		}
	}
	return newCount, nil
}

// QuerySequence mirrors InsertSequence for lookups, reporting 0 for any
// k-mer whose window lacks a minimizer.
func (g *PDBG[S]) QuerySequence(seq []byte) ([]uint64, error) {
	shifter, err := g.NewShifter()
	if err != nil {
		return nil, err
	}
	it, err := hashing.NewKmerIterator(seq, shifter)
	if err != nil {
		return nil, err
	}
	var counts []uint64
	for !it.Done() {
		uh, ok := it.Next().(hashing.UnikmerHash)
		if !ok || !uh.HasMin {
			counts = append(counts, 0)
			continue
		}
		counts = append(counts, g.Store.Query(uh.Minimizer.Partition, uh.Value()))
	}
	return counts, nil
}
