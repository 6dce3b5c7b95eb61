package cdbg

import (
	"sync"

	"github.com/pkg/errors"

	"github.com/bionexus/cdbg/graph"
	"github.com/bionexus/cdbg/hashing"
	"github.com/bionexus/cdbg/storage"
)

// Side names which end of a UnitigNode a clip/extend operation acts on.
type Side int

const (
	Left Side = iota
	Right
)

// Graph is the compacted de Bruijn graph sitting over a graph.DBG[S]: the
// decision and unitig node tables, plus the end/tag indexes that let a
// StreamingCompactor find the unitig touching an arbitrary hash without a
// scan. One coarse mutex guards all of it, matching
// goetia/cdbg/cdbg.hh's Graph, which likewise serializes every mutator
// behind a single lock rather than per-table locks.
type Graph[S storage.Storage] struct {
	mu sync.Mutex

	decisionNodes map[uint64]*DecisionNode
	unitigNodes   map[NodeID]*UnitigNode
	unitigEndMap  map[uint64]*UnitigNode
	unitigTagMap  map[uint64]*UnitigNode

	nUpdates            uint64
	unitigIDCounter      NodeID
	componentIDCounter   NodeID
	minimizerWindowSize int

	dbg *graph.DBG[S]
}

// NewGraph builds an empty Graph over dbg. minimizerWindowSize controls how
// densely UnitigNode.Tags samples a unitig's interior; 0 defaults to 8,
// matching both boink/cdbg/cdbg.hh and goetia/cdbg/cdbg.hh's Graph
// constructors.
func NewGraph[S storage.Storage](dbg *graph.DBG[S], minimizerWindowSize int) *Graph[S] {
	if minimizerWindowSize <= 0 {
		minimizerWindowSize = 8
	}
	return &Graph[S]{
		decisionNodes:       make(map[uint64]*DecisionNode),
		unitigNodes:         make(map[NodeID]*UnitigNode),
		unitigEndMap:        make(map[uint64]*UnitigNode),
		unitigTagMap:        make(map[uint64]*UnitigNode),
		dbg:                 dbg,
		minimizerWindowSize: minimizerWindowSize,
	}
}

func (g *Graph[S]) MinimizerWindowSize() int { return g.minimizerWindowSize }
func (g *Graph[S]) NUpdates() uint64         { return g.nUpdates }

func (g *Graph[S]) NUnitigNodes() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.unitigNodes)
}

func (g *Graph[S]) NDecisionNodes() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.decisionNodes)
}

// --- queries ---

func (g *Graph[S]) QueryDNode(hash uint64) (*DecisionNode, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	d, ok := g.decisionNodes[hash]
	return d, ok
}

func (g *Graph[S]) HasDNode(hash uint64) bool {
	_, ok := g.QueryDNode(hash)
	return ok
}

func (g *Graph[S]) QueryUnodeEnd(hash uint64) (*UnitigNode, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	u, ok := g.unitigEndMap[hash]
	return u, ok
}

func (g *Graph[S]) HasUnodeEnd(hash uint64) bool {
	_, ok := g.QueryUnodeEnd(hash)
	return ok
}

func (g *Graph[S]) QueryUnodeTag(hash uint64) (*UnitigNode, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	u, ok := g.unitigTagMap[hash]
	return u, ok
}

func (g *Graph[S]) QueryUnodeID(id NodeID) (*UnitigNode, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	u, ok := g.unitigNodes[id]
	return u, ok
}

// QueryCNode tries a unitig end first, then a decision node, matching
// goetia/cdbg/cdbg.hh's query_cnode.
func (g *Graph[S]) QueryCNode(hash uint64) (CompactNode, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.queryCNodeLocked(hash)
}

func (g *Graph[S]) queryCNodeLocked(hash uint64) (CompactNode, bool) {
	if u, ok := g.unitigEndMap[hash]; ok {
		return u, true
	}
	if d, ok := g.decisionNodes[hash]; ok {
		return d, true
	}
	return nil, false
}

// QueryDNodes returns every DecisionNode whose k-mer occurs in seq.
func (g *Graph[S]) QueryDNodes(seq []byte) ([]*DecisionNode, error) {
	it, err := hashing.NewKmerIterator(seq, g.dbg.NewShifter())
	if err != nil {
		return nil, err
	}
	var out []*DecisionNode
	for !it.Done() {
		if d, ok := g.QueryDNode(it.Next().Value()); ok {
			out = append(out, d)
		}
	}
	return out, nil
}

// FindRCNode reverse-complements root's first K bases and looks up the
// resulting hash, matching goetia/cdbg/cdbg.hh's find_rc_cnode.
func (g *Graph[S]) FindRCNode(root CompactNode) (CompactNode, bool) {
	k := int(g.dbg.K())
	seq := root.Seq()
	if len(seq) < k {
		return nil, false
	}
	rc := make([]byte, k)
	g.dbg.NewShifter().Alphabet().ReverseComplement(rc, []byte(seq[:k]))
	h := g.dbg.NewShifter().HashBase(rc).Value()
	return g.QueryCNode(h)
}

// --- node metadata ---

// RecomputeNodeMeta classifies u by how its two ends sit against the dBG:
// Trivial if it's a single k-mer, Circular if its ends
// coincide, else Island/Tip/Full by how many ends have a present dBG
// neighbor. Loop is never produced here; it's assigned directly by
// MergeUNodes when a merge closes a cycle through a decision node (see
// DESIGN.md).
func (g *Graph[S]) RecomputeNodeMeta(u *UnitigNode) Meta {
	k := int(g.dbg.K())
	if len(u.Sequence) == k {
		return Trivial
	}
	if u.LeftEnd() == u.RightEnd() {
		return Circular
	}
	w := g.dbg.NewUnitigWalker()
	w.SetCursor([]byte(u.Sequence[:k]))
	leftAdjacent := len(w.LeftNeighbors()) > 0
	w.SetCursor([]byte(u.Sequence[len(u.Sequence)-k:]))
	rightAdjacent := len(w.RightNeighbors()) > 0
	switch {
	case !leftAdjacent && !rightAdjacent:
		return Island
	case leftAdjacent != rightAdjacent:
		return Tip
	default:
		return Full
	}
}

// --- mutation primitives ---

// BuildDNode registers hash/kmer as a DecisionNode, or returns the existing
// one if already present.
func (g *Graph[S]) BuildDNode(hash uint64, kmer string) *DecisionNode {
	g.mu.Lock()
	defer g.mu.Unlock()
	if d, ok := g.decisionNodes[hash]; ok {
		return d
	}
	d := NewDecisionNode(hash, kmer)
	g.decisionNodes[hash] = d
	g.nUpdates++
	return d
}

// BuildUNode registers a new UnitigNode over sequence/tags/ends, computing
// its Meta immediately (RecomputeNodeMeta reads only the node's sequence
// and the dBG, not unitigEndMap).
func (g *Graph[S]) BuildUNode(sequence string, tags []uint64, leftEnd, rightEnd uint64) *UnitigNode {
	g.mu.Lock()
	id := g.unitigIDCounter
	g.unitigIDCounter++
	u := NewUnitigNode(id, leftEnd, rightEnd, sequence, Island)
	u.Tags = append(u.Tags, tags...)
	g.unitigNodes[id] = u
	g.unitigEndMap[leftEnd] = u
	g.unitigEndMap[rightEnd] = u
	for _, t := range tags {
		g.unitigTagMap[t] = u
	}
	g.nUpdates++
	g.mu.Unlock()

	u.SetMeta(g.RecomputeNodeMeta(u))
	return u
}

// ExtendUNode extends the unitig currently ending at oldEnd with
// newSequence, growing it to end at newEnd on side dir.
func (g *Graph[S]) ExtendUNode(dir Side, newSequence string, oldEnd, newEnd uint64, newTags []uint64) error {
	g.mu.Lock()
	u, ok := g.unitigEndMap[oldEnd]
	if !ok {
		g.mu.Unlock()
		return errors.Errorf("cdbg: no unitig with end %d", oldEnd)
	}
	delete(g.unitigEndMap, oldEnd)
	switch dir {
	case Right:
		u.ExtendRight(newEnd, newSequence)
	case Left:
		u.ExtendLeft(newEnd, newSequence)
	}
	g.unitigEndMap[newEnd] = u
	u.Tags = append(u.Tags, newTags...)
	for _, t := range newTags {
		g.unitigTagMap[t] = u
	}
	g.nUpdates++
	g.mu.Unlock()

	u.SetMeta(g.RecomputeNodeMeta(u))
	return nil
}

func (g *Graph[S]) findKmerOffset(seq string, hash uint64) (int, error) {
	it, err := hashing.NewKmerIterator([]byte(seq), g.dbg.NewShifter())
	if err != nil {
		return 0, err
	}
	for !it.Done() {
		v := it.Next().Value()
		if v == hash {
			return it.Pos(), nil
		}
	}
	return 0, errors.Errorf("cdbg: hash %d not found in sequence", hash)
}

// ClipUNode trims the unitig currently ending at oldEnd down to newEnd on
// side clipFrom, dropping any tags that fell outside the retained range.
func (g *Graph[S]) ClipUNode(clipFrom Side, oldEnd, newEnd uint64) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	u, ok := g.unitigEndMap[oldEnd]
	if !ok {
		return errors.Errorf("cdbg: no unitig with end %d", oldEnd)
	}
	k := int(g.dbg.K())
	idx, err := g.findKmerOffset(u.Sequence, newEnd)
	if err != nil {
		return err
	}
	delete(g.unitigEndMap, oldEnd)
	switch clipFrom {
	case Left:
		u.Sequence = u.Sequence[idx:]
		u.SetLeftEnd(newEnd)
	case Right:
		u.Sequence = u.Sequence[:idx+k]
		u.SetRightEnd(newEnd)
	}
	g.unitigEndMap[newEnd] = u
	g.pruneTagsLocked(u)
	g.nUpdates++
	u.SetMeta(g.RecomputeNodeMeta(u))
	return nil
}

func (g *Graph[S]) pruneTagsLocked(u *UnitigNode) {
	kept := u.Tags[:0]
	for _, t := range u.Tags {
		if _, err := g.findKmerOffset(u.Sequence, t); err == nil {
			kept = append(kept, t)
		} else {
			delete(g.unitigTagMap, t)
		}
	}
	u.Tags = kept
}

// SplitUNode splits the unitig id at interior position splitAt into two:
// the original id keeps the left fragment (now ending at newRightEnd), and
// a freshly minted id gets the right fragment (now starting at
// newLeftEnd).
func (g *Graph[S]) SplitUNode(id NodeID, splitAt int, newLeftEnd, newRightEnd uint64) (*UnitigNode, *UnitigNode, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	u, ok := g.unitigNodes[id]
	if !ok {
		return nil, nil, errors.Errorf("cdbg: no unitig with id %d", id)
	}
	k := int(g.dbg.K())
	origSeq := u.Sequence
	leftSeq := origSeq[:splitAt+k]
	rightSeq := origSeq[splitAt:]

	oldLeftEnd, oldRightEnd := u.LeftEnd(), u.RightEnd()
	oldTags := u.Tags
	delete(g.unitigEndMap, oldLeftEnd)
	delete(g.unitigEndMap, oldRightEnd)
	for _, t := range oldTags {
		delete(g.unitigTagMap, t)
	}

	var leftTags, rightTags []uint64
	for _, t := range oldTags {
		if pos, err := g.findKmerOffset(origSeq, t); err == nil && pos < splitAt {
			leftTags = append(leftTags, t)
		} else {
			rightTags = append(rightTags, t)
		}
	}

	u.Sequence = leftSeq
	u.SetRightEnd(newRightEnd)
	u.Tags = leftTags
	g.unitigEndMap[oldLeftEnd] = u
	g.unitigEndMap[newRightEnd] = u
	for _, t := range u.Tags {
		g.unitigTagMap[t] = u
	}

	rid := g.unitigIDCounter
	g.unitigIDCounter++
	right := NewUnitigNode(rid, newLeftEnd, oldRightEnd, rightSeq, Island)
	right.Tags = rightTags
	g.unitigNodes[rid] = right
	g.unitigEndMap[newLeftEnd] = right
	g.unitigEndMap[oldRightEnd] = right
	for _, t := range right.Tags {
		g.unitigTagMap[t] = right
	}
	g.nUpdates += 2

	u.SetMeta(g.RecomputeNodeMeta(u))
	right.SetMeta(g.RecomputeNodeMeta(right))
	return u, right, nil
}

// MergeUNodes joins the unitigs ending at leftEnd and starting at rightEnd
// into one, inserting span between their sequences. span excludes the
// shared end k-mers already present in each side's own sequence: the
// caller (StreamingCompactor) derives it from a walk's reconstructed text,
// not from goetia/cdbg/cdbg.hh's merge_unodes signature directly, since
// that method's body isn't present in the retrieved source (see
// DESIGN.md). If leftEnd and rightEnd name the same unitig, the merge
// closes a cycle through an external decision node and the result is
// tagged Loop rather than recomputed.
func (g *Graph[S]) MergeUNodes(span string, leftEnd, rightEnd uint64, newTags []uint64) (*UnitigNode, error) {
	g.mu.Lock()
	left, ok := g.unitigEndMap[leftEnd]
	if !ok {
		g.mu.Unlock()
		return nil, errors.Errorf("cdbg: no unitig with end %d (left)", leftEnd)
	}
	right, ok := g.unitigEndMap[rightEnd]
	if !ok {
		g.mu.Unlock()
		return nil, errors.Errorf("cdbg: no unitig with end %d (right)", rightEnd)
	}

	isLoop := left.ID() == right.ID()
	mergedSeq := left.Sequence + span + right.Sequence
	mergedTags := append(append(append([]uint64{}, left.Tags...), newTags...), right.Tags...)
	mergedLeftEnd, mergedRightEnd := left.LeftEnd(), right.RightEnd()

	g.deleteUNodeLocked(left)
	if !isLoop {
		g.deleteUNodeLocked(right)
	}

	id := g.unitigIDCounter
	g.unitigIDCounter++
	merged := NewUnitigNode(id, mergedLeftEnd, mergedRightEnd, mergedSeq, Island)
	merged.Tags = mergedTags
	g.unitigNodes[id] = merged
	g.unitigEndMap[merged.LeftEnd()] = merged
	g.unitigEndMap[merged.RightEnd()] = merged
	for _, t := range merged.Tags {
		g.unitigTagMap[t] = merged
	}
	g.nUpdates++
	g.mu.Unlock()

	if isLoop {
		merged.SetMeta(Loop)
	} else {
		merged.SetMeta(g.RecomputeNodeMeta(merged))
	}
	return merged, nil
}

// SwitchUNodeEnds re-keys whichever end of its unitig currently sits at
// oldEnd to newEnd, returning that unitig (or nil if none matched).
func (g *Graph[S]) SwitchUNodeEnds(oldEnd, newEnd uint64) *UnitigNode {
	g.mu.Lock()
	defer g.mu.Unlock()
	u, ok := g.unitigEndMap[oldEnd]
	if !ok {
		return nil
	}
	delete(g.unitigEndMap, oldEnd)
	g.unitigEndMap[newEnd] = u
	if u.LeftEnd() == oldEnd {
		u.SetLeftEnd(newEnd)
	}
	if u.RightEnd() == oldEnd {
		u.SetRightEnd(newEnd)
	}
	return u
}

func (g *Graph[S]) deleteUNodeLocked(u *UnitigNode) {
	if u == nil {
		return
	}
	for _, t := range u.Tags {
		delete(g.unitigTagMap, t)
	}
	delete(g.unitigEndMap, u.LeftEnd())
	delete(g.unitigEndMap, u.RightEnd())
	delete(g.unitigNodes, u.ID())
	g.nUpdates++
}

// DeleteUNode implements goetia/cdbg/cdbg.hh's delete_unode.
func (g *Graph[S]) DeleteUNode(u *UnitigNode) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.deleteUNodeLocked(u)
}

// DeleteUNodesFromTags deletes every distinct unitig reachable from tags,
// matching delete_unodes_from_tags.
func (g *Graph[S]) DeleteUNodesFromTags(tags []uint64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	seen := make(map[NodeID]*UnitigNode)
	for _, t := range tags {
		if u, ok := g.unitigTagMap[t]; ok {
			seen[u.ID()] = u
		}
	}
	for _, u := range seen {
		g.deleteUNodeLocked(u)
	}
}

// DeleteDNode implements delete_dnode.
func (g *Graph[S]) DeleteDNode(d *DecisionNode) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if d == nil {
		return
	}
	delete(g.decisionNodes, d.ID())
	g.nUpdates++
}

// --- neighbor-finding and traversal ---

// FindDNodeNeighbors returns the CompactNodes (decision nodes or unitig
// ends) adjacent to d on each side, matching find_dnode_neighbors.
func (g *Graph[S]) FindDNodeNeighbors(d *DecisionNode) (left, right []CompactNode) {
	w := g.dbg.NewUnitigWalker()
	w.SetCursor([]byte(d.Seq()))
	for _, sh := range w.LeftNeighbors() {
		if n, ok := g.QueryCNode(sh.Hash.Value()); ok {
			left = append(left, n)
		}
	}
	w.SetCursor([]byte(d.Seq()))
	for _, sh := range w.RightNeighbors() {
		if n, ok := g.QueryCNode(sh.Hash.Value()); ok {
			right = append(right, n)
		}
	}
	return left, right
}

// FindUNodeNeighbors returns the DecisionNodes (if any) adjacent to u's
// left and right ends, matching find_unode_neighbors.
func (g *Graph[S]) FindUNodeNeighbors(u *UnitigNode) (left, right *DecisionNode) {
	k := int(g.dbg.K())
	w := g.dbg.NewUnitigWalker()
	if len(u.Sequence) < k {
		return nil, nil
	}
	w.SetCursor([]byte(u.Sequence[:k]))
	for _, sh := range w.LeftNeighbors() {
		if d, ok := g.QueryDNode(sh.Hash.Value()); ok {
			left = d
			break
		}
	}
	w.SetCursor([]byte(u.Sequence[len(u.Sequence)-k:]))
	for _, sh := range w.RightNeighbors() {
		if d, ok := g.QueryDNode(sh.Hash.Value()); ok {
			right = d
			break
		}
	}
	return left, right
}

// TraverseBreadthFirst walks the cnode graph (decision nodes and unitig
// ends as vertices, find_dnode_neighbors/find_unode_neighbors as edges)
// starting at root, matching traverse_breadth_first.
func (g *Graph[S]) TraverseBreadthFirst(root CompactNode) []CompactNode {
	visited := map[CompactNode]bool{root: true}
	queue := []CompactNode{root}
	var order []CompactNode
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		order = append(order, n)

		var neighbors []CompactNode
		switch v := n.(type) {
		case *DecisionNode:
			l, r := g.FindDNodeNeighbors(v)
			neighbors = append(neighbors, l...)
			neighbors = append(neighbors, r...)
		case *UnitigNode:
			l, r := g.FindUNodeNeighbors(v)
			if l != nil {
				neighbors = append(neighbors, l)
			}
			if r != nil {
				neighbors = append(neighbors, r)
			}
		}
		for _, nb := range neighbors {
			if !visited[nb] {
				visited[nb] = true
				queue = append(queue, nb)
			}
		}
	}
	return order
}

// Components partitions every node currently in the graph into connected
// components, matching find_connected_components.
func (g *Graph[S]) Components() map[NodeID][]NodeID {
	g.mu.Lock()
	all := make([]CompactNode, 0, len(g.decisionNodes)+len(g.unitigNodes))
	for _, d := range g.decisionNodes {
		all = append(all, d)
	}
	for _, u := range g.unitigNodes {
		all = append(all, u)
	}
	g.mu.Unlock()

	visited := make(map[CompactNode]bool)
	components := make(map[NodeID][]NodeID)
	for _, root := range all {
		if visited[root] {
			continue
		}
		g.mu.Lock()
		compID := g.componentIDCounter
		g.componentIDCounter++
		g.mu.Unlock()

		var members []NodeID
		for _, n := range g.TraverseBreadthFirst(root) {
			visited[n] = true
			members = append(members, n.ID())
		}
		components[compID] = members
	}
	return components
}
