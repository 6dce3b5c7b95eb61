// Package graph implements the streaming de Bruijn graph itself: a dBG
// wraps a storage.Storage with a Shifter family to give it insert/query
// operations over sequence, and UnitigWalker traverses it k-mer by k-mer
// to find the maximal unambiguous paths the cDBG compacts into unitigs.
//
// Grounded on original_source/include/boink/traversal.hh's dBGWalker
// template.
package graph

// State is the outcome of a single step or a full walk.
type State int

const (
	// StopFwd means the current node has no neighbors in the walk
	// direction: a dead end.
	StopFwd State = iota
	// DecisionFwd means the current node has more than one neighbor in
	// the walk direction: the walk cannot proceed unambiguously.
	DecisionFwd
	// StopSeen means the single neighbor in the walk direction has
	// already been visited by this walk: a cycle back into itself.
	StopSeen
	// StopCallback means the caller's walk functor rejected the next
	// step.
	StopCallback
	// Step means exactly one neighbor exists, it is unvisited, and the
	// walk functor accepted it: the walk advanced one k-mer.
	Step
	// BadSeed means the walk's starting k-mer is not itself present in
	// the dBG.
	BadSeed
	// DecisionBkw means the node the walk just advanced onto has more
	// than one neighbor in the OPPOSITE direction, so it is itself a
	// decision k-mer seen from the wrong side. The step that reached it
	// is retracted from the path before the walk stops.
	DecisionBkw
)

// String names the state the way log lines and test failures read best.
func (s State) String() string {
	switch s {
	case StopFwd:
		return "StopFwd"
	case DecisionFwd:
		return "DecisionFwd"
	case StopSeen:
		return "StopSeen"
	case StopCallback:
		return "StopCallback"
	case Step:
		return "Step"
	case BadSeed:
		return "BadSeed"
	case DecisionBkw:
		return "DecisionBkw"
	default:
		return "Unknown"
	}
}
