// Package alphabet validates and complements the DNA symbols that every
// hashing and graph-walking operation in this module is parameterized over.
package alphabet

import (
	"github.com/bionexus/cdbg/biosimd"
	"github.com/pkg/errors"
)

// ErrInvalidCharacter is returned (or wrapped) whenever a byte outside the
// configured alphabet reaches a shifter, span, or sequence validator.
var ErrInvalidCharacter = errors.New("alphabet: invalid character")

// Alphabet is a fixed, ordered set of single-byte DNA symbols plus their
// complements. Simple and WithN are the two variants defined here;
// IUPAC is left for a caller that needs ambiguity codes, since nothing in
// the core hashing/storage/graph path requires them.
type Alphabet struct {
	symbols    []byte
	complement [256]byte
	valid      [256]bool
}

// Simple is the four-letter DNA alphabet {A,C,G,T} the rolling hashers and
// graph walker use by default.
var Simple = newAlphabet([]byte{'A', 'C', 'G', 'T'}, map[byte]byte{
	'A': 'T', 'T': 'A', 'C': 'G', 'G': 'C',
})

// WithN extends Simple with 'N', self-complementary, for callers that want
// to tolerate ambiguous bases without promoting them to errors.
var WithN = newAlphabet([]byte{'A', 'C', 'G', 'T', 'N'}, map[byte]byte{
	'A': 'T', 'T': 'A', 'C': 'G', 'G': 'C', 'N': 'N',
})

func newAlphabet(symbols []byte, complements map[byte]byte) *Alphabet {
	a := &Alphabet{symbols: symbols}
	for _, s := range symbols {
		a.valid[s] = true
		a.valid[s+('a'-'A')] = true
		c := complements[s]
		a.complement[s] = c
		a.complement[s+('a'-'A')] = c
	}
	return a
}

// Symbols returns the alphabet's letters, in the order used to enumerate
// extensions during graph walks.
func (a *Alphabet) Symbols() []byte {
	return a.symbols
}

// IsValid reports whether c belongs to the alphabet (case-insensitive).
func (a *Alphabet) IsValid(c byte) bool {
	return a.valid[c]
}

// Complement returns the Watson-Crick complement of c, uppercased. It
// panics if c is not in the alphabet; callers on an untrusted path should
// call IsValid or Sanitize first.
func (a *Alphabet) Complement(c byte) byte {
	if !a.valid[c] {
		panic("alphabet: Complement of invalid character " + string(c))
	}
	return a.complement[c]
}

// Sanitize uppercases seq in place and reports whether every character
// belongs to the alphabet. On failure, seq is uppercased up to and
// including the first invalid byte and left untouched after it, matching the fail-fast
// behavior callers of a lenient scanner expect: they're about to discard
// the record anyway.
func (a *Alphabet) Sanitize(seq []byte) bool {
	for i, c := range seq {
		if c >= 'a' && c <= 'z' {
			c -= 'a' - 'A'
			seq[i] = c
		}
		if !a.valid[c] {
			return false
		}
	}
	return true
}

// ReverseComplement writes the reverse complement of src into dst using
// biosimd's byte-reversal kernel rather than a hand-rolled loop. It panics
// if len(dst) != len(src). Callers are expected to have already validated
// src (e.g. via Sanitize); biosimd maps anything outside ACGTacgt to 'N'.
func (a *Alphabet) ReverseComplement(dst, src []byte) {
	biosimd.ReverseComp8NoValidate(dst, src)
}
