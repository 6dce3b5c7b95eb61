package hashing

// ShiftDir distinguishes the two directions HashExtender and the graph
// walker operate in.
type ShiftDir int

const (
	// DirLeft extends the k-mer by prepending a character.
	DirLeft ShiftDir = iota
	// DirRight extends the k-mer by appending a character.
	DirRight
)

// Shift is one candidate extension: the hash the window would have if
// Symbol were prepended/appended, paired with that symbol.
type Shift struct {
	Hash   Hash
	Symbol byte
	Dir    ShiftDir
}

// HashExtender combines a Shifter with a KmerSpan, giving it a textual
// cursor alongside the rolling hash and the ability to enumerate the
// alphabet's worth of one-character extensions in either direction.
type HashExtender struct {
	shifter Shifter
	span    *KmerSpan
}

// NewHashExtender wraps shifter with a span sized to its K.
func NewHashExtender(shifter Shifter) *HashExtender {
	return &HashExtender{
		shifter: shifter,
		span:    NewKmerSpan(int(shifter.K())),
	}
}

// Shifter returns the underlying Shifter, e.g. for callers that need
// Shifter.K() or Shifter.Alphabet().
func (e *HashExtender) Shifter() Shifter { return e.shifter }

// Cursor returns the current k-mer text.
func (e *HashExtender) Cursor() string { return e.span.String() }

// SetCursor seeds both the shifter and the span from seq's first K
// characters and returns the resulting hash.
func (e *HashExtender) SetCursor(seq []byte) Hash {
	h := e.shifter.HashBase(seq)
	e.span.Load(seq)
	return h
}

// ShiftRight advances the cursor right by appending c.
func (e *HashExtender) ShiftRight(c byte) Hash {
	out := e.span.Front()
	h := e.shifter.ShiftRight(out, c)
	e.span.PushBack(c)
	return h
}

// ShiftLeft advances the cursor left by prepending c.
func (e *HashExtender) ShiftLeft(c byte) Hash {
	out := e.span.Back()
	h := e.shifter.ShiftLeft(c, out)
	e.span.PushFront(c)
	return h
}

// LeftExtensions computes, for every symbol in symbols, the hash of the
// k-mer formed by prepending that symbol and dropping the span's current
// back character, without leaving the cursor moved: each trial shift is
// undone with the matching ShiftRight before the next symbol is tried
// (the same round-trip the CRTP source's hashextender.hh uses).
func (e *HashExtender) LeftExtensions(symbols []byte) []Shift {
	out := make([]Shift, 0, len(symbols))
	for _, c := range symbols {
		back := e.span.Back()
		h := e.ShiftLeft(c)
		out = append(out, Shift{Hash: h, Symbol: c, Dir: DirLeft})
		e.ShiftRight(back) // undo: restores original cursor and hash state
	}
	return out
}

// RightExtensions is the mirror of LeftExtensions: for every symbol in
// symbols, the hash of the k-mer formed by appending that symbol and
// dropping the span's current front character.
func (e *HashExtender) RightExtensions(symbols []byte) []Shift {
	out := make([]Shift, 0, len(symbols))
	for _, c := range symbols {
		front := e.span.Front()
		h := e.ShiftRight(c)
		out = append(out, Shift{Hash: h, Symbol: c, Dir: DirRight})
		e.ShiftLeft(front) // undo
	}
	return out
}
