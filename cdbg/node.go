package cdbg

// NodeID identifies both DecisionNode and UnitigNode records. A
// DecisionNode's ID is its k-mer hash; a UnitigNode's ID is a sequential
// counter assigned by BuildUNode/SplitUNode, matching
// goetia/cdbg/cdbg.hh's id_t split between decision_nodes (keyed by
// hash_type) and unitig_nodes (keyed by a separate id_t counter).
type NodeID = uint64

// CompactNode is the common interface over DecisionNode and UnitigNode,
// mirroring CompactNode in goetia/cdbg/cdbg.hh. Seq is named to avoid
// colliding with UnitigNode's exported Sequence field.
type CompactNode interface {
	ID() NodeID
	Meta() Meta
	Seq() string
}

type compactNode struct {
	id          NodeID
	Sequence    string
	meta        Meta
	ComponentID NodeID
}

func (n *compactNode) ID() NodeID   { return n.id }
func (n *compactNode) Meta() Meta   { return n.meta }
func (n *compactNode) Seq() string  { return n.Sequence }
func (n *compactNode) Length() int  { return len(n.Sequence) }
func (n *compactNode) SetMeta(m Meta) { n.meta = m }

// DecisionNode marks a k-mer with more than one present left or right
// neighbor: the branch points the cDBG compacts unitigs between.
type DecisionNode struct {
	compactNode
	dirty       bool
	leftDegree  uint8
	rightDegree uint8
	count       uint32
}

// NewDecisionNode builds a DecisionNode for hash/kmer with zero degree and
// zero count; degree is filled in by the compactor as neighbors are
// discovered.
func NewDecisionNode(hash uint64, kmer string) *DecisionNode {
	return &DecisionNode{compactNode: compactNode{id: hash, Sequence: kmer, meta: Decision}}
}

func (d *DecisionNode) Dirty() bool      { return d.dirty }
func (d *DecisionNode) SetDirty(v bool)  { d.dirty = v }
func (d *DecisionNode) Count() uint32    { return d.count }
func (d *DecisionNode) IncrCount()       { d.count++ }
func (d *DecisionNode) Degree() uint8    { return d.leftDegree + d.rightDegree }
func (d *DecisionNode) LeftDegree() uint8  { return d.leftDegree }
func (d *DecisionNode) RightDegree() uint8 { return d.rightDegree }
func (d *DecisionNode) IncrLeftDegree()    { d.leftDegree++ }
func (d *DecisionNode) IncrRightDegree()   { d.rightDegree++ }

// UnitigNode is a maximal unambiguous path: a run of k-mers with in- and
// out-degree 1 throughout its interior. LeftEnd/RightEnd are the hashes of
// its first and last k-mers; Tags samples interior k-mer hashes every
// MinimizerWindowSize k-mers so long unitigs can be located without a
// linear scan of Sequence.
type UnitigNode struct {
	compactNode
	leftEnd  uint64
	rightEnd uint64
	Tags     []uint64
}

// NewUnitigNode builds a UnitigNode. Callers are expected to set Meta via
// Graph.RecomputeNodeMeta immediately after, since meta depends on the
// surrounding graph, not just the node's own fields.
func NewUnitigNode(id NodeID, leftEnd, rightEnd uint64, sequence string, meta Meta) *UnitigNode {
	return &UnitigNode{
		compactNode: compactNode{id: id, Sequence: sequence, meta: meta},
		leftEnd:     leftEnd,
		rightEnd:    rightEnd,
	}
}

func (u *UnitigNode) LeftEnd() uint64  { return u.leftEnd }
func (u *UnitigNode) RightEnd() uint64 { return u.rightEnd }

func (u *UnitigNode) SetLeftEnd(h uint64)  { u.leftEnd = h }
func (u *UnitigNode) SetRightEnd(h uint64) { u.rightEnd = h }

// ExtendRight appends newSequence to the node's sequence and moves its
// right end to rightEnd.
func (u *UnitigNode) ExtendRight(rightEnd uint64, newSequence string) {
	u.Sequence += newSequence
	u.rightEnd = rightEnd
}

// ExtendLeft prepends newSequence to the node's sequence and moves its
// left end to leftEnd.
func (u *UnitigNode) ExtendLeft(leftEnd uint64, newSequence string) {
	u.Sequence = newSequence + u.Sequence
	u.leftEnd = leftEnd
}
