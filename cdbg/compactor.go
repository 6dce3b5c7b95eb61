package cdbg

import (
	"github.com/pkg/errors"

	"github.com/bionexus/cdbg/graph"
	"github.com/bionexus/cdbg/hashing"
	"github.com/bionexus/cdbg/storage"
)

// StreamingCompactor drives a Graph from a stream of reads, one at a time,
// via a six-step per-read algorithm:
//
//  1. hash and insert every k-mer of the read, recording which were new;
//  2. (folded into step 3 here: neighbor filtering always runs against
//     post-insert storage state, so no separate re-filter pass is needed);
//  3. build the disturbed set: every newly inserted k-mer, plus the
//     present neighbors of the read's two endpoints;
//  4. promote any disturbed k-mer with in- or out-degree > 1 that isn't
//     already a DecisionNode to one;
//  5. if no decision node was induced, the read landed entirely inside (or
//     extends) one unambiguous run: walk it and build/extend/merge a
//     single UnitigNode;
//  6. otherwise, walk outward from every newly induced decision node and
//     build/extend/merge the UnitigNode on each side independently.
//
// original_source/include/boink/cdbg/ucompactor.hh is this method's
// closest retrieved ancestor, but only its find_segment_seeds helper (the
// new/seen run-tracking idea folded into this type's step 1) has a
// complete body; build_segments is an abandoned, entirely commented-out
// draft. The driver below is therefore reconstructed from the algorithm's
// own description rather than a line-for-line port; see DESIGN.md.
type StreamingCompactor[S storage.Storage] struct {
	DBG  *graph.DBG[S]
	CDBG *Graph[S]
}

// NewStreamingCompactor builds a compactor over dbg with a fresh, empty
// Graph.
func NewStreamingCompactor[S storage.Storage](dbg *graph.DBG[S], minimizerWindowSize int) *StreamingCompactor[S] {
	return &StreamingCompactor[S]{DBG: dbg, CDBG: NewGraph[S](dbg, minimizerWindowSize)}
}

// kmerTextFor reconstructs the k-mer text a Shift landed on, given the
// cursor text it was computed from: HashExtender's LeftExtensions and
// RightExtensions report only the resulting hash and the symbol consumed,
// not the resulting text, since most callers (UnitigWalker) only need the
// hash. The compactor needs the text too, to seed a fresh walk from a
// decision node's neighbor or to call BuildDNode.
func kmerTextFor(base string, sh hashing.Shift) string {
	if sh.Dir == hashing.DirLeft {
		return string(sh.Symbol) + base[:len(base)-1]
	}
	return base[1:] + string(sh.Symbol)
}

// InsertSequence runs the six-step algorithm over seq.
func (c *StreamingCompactor[S]) InsertSequence(seq []byte) error {
	k := int(c.DBG.K())
	if len(seq) < k {
		return errors.Wrapf(hashing.ErrSequenceTooShort, "len(seq)=%d k=%d", len(seq), k)
	}

	extender := hashing.NewHashExtender(c.DBG.NewShifter())
	newHashes := make(map[uint64]int, len(seq)-k+1)

	h := extender.SetCursor(seq[:k]).Value()
	if c.DBG.Store.Insert(h) {
		newHashes[h] = 0
	}
	for i := 1; i <= len(seq)-k; i++ {
		h = extender.ShiftRight(seq[i+k-1]).Value()
		if c.DBG.Store.Insert(h) {
			newHashes[h] = i
		}
	}

	if len(newHashes) == 0 {
		return nil
	}

	w := c.DBG.NewUnitigWalker()

	// Step 3: the disturbed set.
	disturbed := make(map[uint64]string, len(newHashes)+4)
	for hv, pos := range newHashes {
		disturbed[hv] = string(seq[pos : pos+k])
	}
	firstKmer := string(seq[:k])
	lastKmer := string(seq[len(seq)-k:])
	w.SetCursor([]byte(firstKmer))
	for _, sh := range w.LeftNeighbors() {
		disturbed[sh.Hash.Value()] = kmerTextFor(firstKmer, sh)
	}
	w.SetCursor([]byte(lastKmer))
	for _, sh := range w.RightNeighbors() {
		disturbed[sh.Hash.Value()] = kmerTextFor(lastKmer, sh)
	}

	// Step 4: promote induced decision nodes.
	var induced []*DecisionNode
	for hv, kmer := range disturbed {
		if c.CDBG.HasDNode(hv) {
			continue
		}
		w.SetCursor([]byte(kmer))
		if w.InDegree() > 1 || w.OutDegree() > 1 {
			induced = append(induced, c.CDBG.BuildDNode(hv, kmer))
		}
	}

	if len(induced) == 0 {
		return c.linearUpdate(seq, newHashes)
	}
	for _, d := range induced {
		if err := c.updateAroundDecisionNode(d); err != nil {
			return err
		}
	}
	return nil
}

// sampleTags hashes every k-mer of seq and keeps every
// MinimizerWindowSize'th one as a UnitigNode tag.
func (c *StreamingCompactor[S]) sampleTags(seq string) []uint64 {
	it, err := hashing.NewKmerIterator([]byte(seq), c.DBG.NewShifter())
	if err != nil {
		return nil
	}
	step := c.CDBG.MinimizerWindowSize()
	var tags []uint64
	for pos := 0; !it.Done(); pos++ {
		h := it.Next().Value()
		if pos%step == 0 {
			tags = append(tags, h)
		}
	}
	return tags
}

// commitSegment installs seq (running from leftEnd to rightEnd) into the
// Graph: merging, extending, or building a UnitigNode depending on
// whether either end already belongs to one.
//
// inducedBy is the decision node whose neighbor walk produced seq, or nil
// when the caller is linearUpdate (no decision node was involved). When
// it's set and the matched existing end belongs to a unitig that still
// carries inducedBy's own k-mer somewhere in its body, that unitig
// predates inducedBy's promotion to a DecisionNode and must be rebuilt,
// not extended in place: splicing seq onto it would leave inducedBy's
// k-mer buried in the unitig's interior instead of excised into its own
// DecisionNode.
func (c *StreamingCompactor[S]) commitSegment(seq string, leftEnd, rightEnd uint64, inducedBy *DecisionNode) error {
	k := int(c.DBG.K())
	tags := c.sampleTags(seq)

	leftU, hasLeftU := c.CDBG.QueryUnodeEnd(leftEnd)
	rightU, hasRightU := c.CDBG.QueryUnodeEnd(rightEnd)

	switch {
	case hasLeftU && hasRightU:
		span := seq
		if len(span) >= k {
			span = span[k:]
		}
		if len(span) >= k {
			span = span[:len(span)-k]
		}
		_, err := c.CDBG.MergeUNodes(span, leftEnd, rightEnd, tags)
		return err
	case hasLeftU:
		if c.staleFromDecision(leftU, inducedBy) {
			c.CDBG.DeleteUNode(leftU)
			c.CDBG.BuildUNode(seq, tags, leftEnd, rightEnd)
			return nil
		}
		newSeg := seq
		if len(newSeg) >= k {
			newSeg = newSeg[k:]
		}
		return c.CDBG.ExtendUNode(Right, newSeg, leftEnd, rightEnd, tags)
	case hasRightU:
		if c.staleFromDecision(rightU, inducedBy) {
			c.CDBG.DeleteUNode(rightU)
			c.CDBG.BuildUNode(seq, tags, leftEnd, rightEnd)
			return nil
		}
		newSeg := seq
		if len(newSeg) >= k {
			newSeg = newSeg[:len(newSeg)-k]
		}
		return c.CDBG.ExtendUNode(Left, newSeg, rightEnd, leftEnd, tags)
	default:
		c.CDBG.BuildUNode(seq, tags, leftEnd, rightEnd)
		return nil
	}
}

// staleFromDecision reports whether u still contains d's k-mer somewhere
// in its sequence, i.e. u was built before d existed as a decision point
// and needs rebuilding around it rather than extending.
func (c *StreamingCompactor[S]) staleFromDecision(u *UnitigNode, d *DecisionNode) bool {
	if d == nil {
		return false
	}
	_, err := c.CDBG.findKmerOffset(u.Seq(), d.ID())
	return err == nil
}

// linearUpdate handles step 5: no decision node was induced, so the whole
// read sits inside a single unambiguous run. It walks out from any one of
// the read's new k-mers to find that run's full extent.
func (c *StreamingCompactor[S]) linearUpdate(seq []byte, newHashes map[uint64]int) error {
	k := int(c.DBG.K())
	var seedPos int
	for _, pos := range newHashes {
		seedPos = pos
		break
	}
	seedKmer := seq[seedPos : seedPos+k]

	w := c.DBG.NewUnitigWalker()
	left, right := w.Walk(seedKmer, nil)
	if left.EndState == graph.BadSeed {
		return errors.New("cdbg: seed k-mer missing from dBG immediately after insert")
	}

	fullSeq := string(left.Sequence()[:len(left.Sequence())-k]) + string(right.Sequence())
	return c.commitSegment(fullSeq, left.Tail(), right.Tail(), nil)
}

// updateAroundDecisionNode handles step 6 for one newly induced decision
// node: it walks outward from each of d's present neighbors (away from d,
// since d's own k-mer is never part of a unitig's interior) and commits
// whatever run it finds.
func (c *StreamingCompactor[S]) updateAroundDecisionNode(d *DecisionNode) error {
	w := c.DBG.NewUnitigWalker()

	w.SetCursor([]byte(d.Seq()))
	leftNeighbors := w.LeftNeighbors()
	for _, sh := range leftNeighbors {
		if err := c.extendFromNeighbor(kmerTextFor(d.Seq(), sh), hashing.DirLeft, d); err != nil {
			return err
		}
	}
	d.leftDegree = uint8(len(leftNeighbors))

	w.SetCursor([]byte(d.Seq()))
	rightNeighbors := w.RightNeighbors()
	for _, sh := range rightNeighbors {
		if err := c.extendFromNeighbor(kmerTextFor(d.Seq(), sh), hashing.DirRight, d); err != nil {
			return err
		}
	}
	d.rightDegree = uint8(len(rightNeighbors))
	return nil
}

// extendFromNeighbor walks further in dir starting at seedKmer (one step
// away from the decision node that found it) and commits the resulting
// run. The end nearest the decision node is seedKmer's own hash; the far
// end is wherever the walk stops. d is the decision node that found
// seedKmer, passed through to commitSegment so it can detect a run that
// predates d's promotion and needs rebuilding rather than extending.
func (c *StreamingCompactor[S]) extendFromNeighbor(seedKmer string, dir hashing.ShiftDir, d *DecisionNode) error {
	w := c.DBG.NewUnitigWalker()
	seedHash := w.SetCursor([]byte(seedKmer))

	var wk graph.Walk
	var leftEnd, rightEnd uint64
	if dir == hashing.DirLeft {
		wk = w.WalkLeft(nil)
		leftEnd, rightEnd = wk.Tail(), seedHash
	} else {
		wk = w.WalkRight(nil)
		leftEnd, rightEnd = seedHash, wk.Tail()
	}
	return c.commitSegment(string(wk.Sequence()), leftEnd, rightEnd, d)
}
