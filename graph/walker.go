package graph

import (
	"github.com/bionexus/cdbg/hashing"
	"github.com/bionexus/cdbg/storage"
)

// WalkFunc is called with the hash of the k-mer a walk is about to step
// onto; returning false stops the walk with StopCallback without taking
// the step. A nil WalkFunc always accepts.
type WalkFunc func(hash uint64) bool

func (f WalkFunc) accept(hash uint64) bool {
	return f == nil || f(hash)
}

// Walk is the result of a single-direction traversal from a seed k-mer.
// Path holds the shifts taken, in order; Tail reports the hash of the
// k-mer the walk actually stopped on.
type Walk struct {
	SeedHash uint64
	SeedKmer string
	Path     []hashing.Shift
	EndState State
}

// Tail returns the hash of the last k-mer the walk visited: the last
// path entry's, or the seed's if the walk took no steps.
func (w Walk) Tail() uint64 {
	if len(w.Path) == 0 {
		return w.SeedHash
	}
	return w.Path[len(w.Path)-1].Hash.Value()
}

// Sequence reconstructs the walked k-mer text by extending the seed one
// symbol per path entry, in the walk's direction.
func (w Walk) Sequence() []byte {
	out := make([]byte, 0, len(w.SeedKmer)+len(w.Path))
	if len(w.Path) == 0 {
		return append(out, w.SeedKmer...)
	}
	if w.Path[0].Dir == hashing.DirLeft {
		for i := len(w.Path) - 1; i >= 0; i-- {
			out = append(out, w.Path[i].Symbol)
		}
		out = append(out, w.SeedKmer...)
		return out
	}
	out = append(out, w.SeedKmer...)
	for _, s := range w.Path {
		out = append(out, s.Symbol)
	}
	return out
}

// DecisionNeighbors is the pair of filtered neighbor lists
// GetDecisionNeighbors reports when a k-mer qualifies as a decision
// k-mer.
type DecisionNeighbors struct {
	Left  []hashing.Shift
	Right []hashing.Shift
}

// UnitigWalker traverses a dBG one k-mer at a time, tracking visited
// hashes across a walk so it can detect cycles (StopSeen) and decision
// k-mers encountered from behind (DecisionBkw). It is grounded on
// original_source/include/boink/traversal.hh's dBGWalker<GraphType>,
// which likewise inherits a HashExtender's cursor and adds a `seen` set
// on top.
type UnitigWalker[S storage.Storage] struct {
	extender *hashing.HashExtender
	store    S
	seen     map[uint64]struct{}
}

// NewUnitigWalker builds a walker over store using a fresh shifter
// (callers must not reuse a shifter across walkers; a Shifter carries
// mutable window state).
func NewUnitigWalker[S storage.Storage](shifter hashing.Shifter, store S) *UnitigWalker[S] {
	return &UnitigWalker[S]{
		extender: hashing.NewHashExtender(shifter),
		store:    store,
		seen:     make(map[uint64]struct{}),
	}
}

// ClearSeen resets the walker's visited set, e.g. between unrelated
// walks that should not see each other's history.
func (w *UnitigWalker[S]) ClearSeen() { w.seen = make(map[uint64]struct{}) }

// SetCursor seeds the cursor at seq without any presence check against the
// store, unlike Walk. Callers that only need degree/neighbor queries at an
// arbitrary k-mer (cdbg's node-meta and neighbor-finding code) use this
// directly instead of going through the seed-validated Walk entry point.
func (w *UnitigWalker[S]) SetCursor(seq []byte) uint64 {
	return w.extender.SetCursor(seq).Value()
}

// Cursor reports the current cursor's k-mer text.
func (w *UnitigWalker[S]) Cursor() string { return w.extender.Cursor() }

func (w *UnitigWalker[S]) filterNodes(shifts []hashing.Shift) []hashing.Shift {
	out := make([]hashing.Shift, 0, len(shifts))
	for _, sh := range shifts {
		if w.store.Query(sh.Hash.Value()) > 0 {
			out = append(out, sh)
		}
	}
	return out
}

// LeftNeighbors returns the walker's current left extensions that are
// actually present in the dBG.
func (w *UnitigWalker[S]) LeftNeighbors() []hashing.Shift {
	symbols := w.extender.Shifter().Alphabet().Symbols()
	return w.filterNodes(w.extender.LeftExtensions(symbols))
}

// RightNeighbors returns the walker's current right extensions that are
// actually present in the dBG.
func (w *UnitigWalker[S]) RightNeighbors() []hashing.Shift {
	symbols := w.extender.Shifter().Alphabet().Symbols()
	return w.filterNodes(w.extender.RightExtensions(symbols))
}

// InDegree is the count of present left neighbors.
func (w *UnitigWalker[S]) InDegree() int { return len(w.LeftNeighbors()) }

// OutDegree is the count of present right neighbors.
func (w *UnitigWalker[S]) OutDegree() int { return len(w.RightNeighbors()) }

// Degree is InDegree + OutDegree.
func (w *UnitigWalker[S]) Degree() int { return w.InDegree() + w.OutDegree() }

// GetDecisionNeighbors reports the walker's current left/right neighbor
// lists iff either side has more than one present neighbor, i.e. the
// current k-mer is a decision k-mer.
func (w *UnitigWalker[S]) GetDecisionNeighbors() (DecisionNeighbors, bool) {
	left := w.LeftNeighbors()
	right := w.RightNeighbors()
	if len(left) > 1 || len(right) > 1 {
		return DecisionNeighbors{Left: left, Right: right}, true
	}
	return DecisionNeighbors{}, false
}

func lookState(neighbors []hashing.Shift, seen map[uint64]struct{}) State {
	switch {
	case len(neighbors) > 1:
		return DecisionFwd
	case len(neighbors) == 0:
		return StopFwd
	default:
		if _, ok := seen[neighbors[0].Hash.Value()]; ok {
			return StopSeen
		}
		return Step
	}
}

// StepLeft attempts one leftward step: it deduces the State from the
// walker's current left neighbors and, if exactly Step, asks f whether
// to take it before moving the cursor and recording the hash as seen.
func (w *UnitigWalker[S]) StepLeft(f WalkFunc) (State, []hashing.Shift) {
	neighbors := w.LeftNeighbors()
	state := lookState(neighbors, w.seen)
	if state != Step {
		return state, neighbors
	}
	h := neighbors[0].Hash.Value()
	if !f.accept(h) {
		return StopCallback, neighbors
	}
	w.extender.ShiftLeft(neighbors[0].Symbol)
	w.seen[h] = struct{}{}
	return Step, neighbors
}

// StepRight is StepLeft's mirror.
func (w *UnitigWalker[S]) StepRight(f WalkFunc) (State, []hashing.Shift) {
	neighbors := w.RightNeighbors()
	state := lookState(neighbors, w.seen)
	if state != Step {
		return state, neighbors
	}
	h := neighbors[0].Hash.Value()
	if !f.accept(h) {
		return StopCallback, neighbors
	}
	w.extender.ShiftRight(neighbors[0].Symbol)
	w.seen[h] = struct{}{}
	return Step, neighbors
}

// walk drives step repeatedly in one direction until it returns anything
// but Step. Before every step beyond the first, it checks the opposite
// direction's degree at the current cursor: if that's more than one, the
// node just reached is itself a decision k-mer seen from behind, so the
// step that reached it is popped back off the path and the walk ends
// with DecisionBkw.
//
// Per the source's walk_left, a DecisionBkw retreat erases the offending
// hash from seen but does NOT rewind the shifter cursor: the cursor is
// left one step past the returned tail. Callers that chain a walk in the
// other direction after seeing DecisionBkw must reseed first (Walk does
// this automatically).
func (w *UnitigWalker[S]) walk(f WalkFunc, step func(WalkFunc) (State, []hashing.Shift), oppositeDegree func() int) Walk {
	walk := Walk{
		SeedHash: w.extender.Shifter().Get().Value(),
		SeedKmer: w.extender.Cursor(),
	}
	for first := true; ; first = false {
		if !first && oppositeDegree() > 1 {
			last := walk.Path[len(walk.Path)-1]
			walk.Path = walk.Path[:len(walk.Path)-1]
			delete(w.seen, last.Hash.Value())
			walk.EndState = DecisionBkw
			return walk
		}
		state, neighbors := step(f)
		if state != Step {
			walk.EndState = state
			return walk
		}
		walk.Path = append(walk.Path, neighbors[0])
	}
}

// WalkLeft walks left from the current cursor until a non-Step state.
func (w *UnitigWalker[S]) WalkLeft(f WalkFunc) Walk {
	return w.walk(f, w.StepLeft, w.OutDegree)
}

// WalkRight walks right from the current cursor until a non-Step state.
func (w *UnitigWalker[S]) WalkRight(f WalkFunc) Walk {
	return w.walk(f, w.StepRight, w.InDegree)
}

// Walk seeds the cursor at seed and walks both directions, reseeding
// between them so the right-walk is unaffected by where the left-walk's
// cursor ended up. If seed itself is not present in the dBG, both walks
// report BadSeed and no step is taken; the cursor is left on seed.
func (w *UnitigWalker[S]) Walk(seed []byte, f WalkFunc) (left, right Walk) {
	seedHash := w.extender.SetCursor(seed).Value()
	if w.store.Query(seedHash) == 0 {
		bad := Walk{SeedHash: seedHash, SeedKmer: string(seed), EndState: BadSeed}
		return bad, bad
	}
	w.seen[seedHash] = struct{}{}

	left = w.WalkLeft(f)
	w.extender.SetCursor(seed)
	right = w.WalkRight(f)
	return left, right
}
