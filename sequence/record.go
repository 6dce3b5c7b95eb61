// Package sequence defines the external read/reference record type the
// rest of this module operates on, plus lenient/strict validation of its
// bases. encoding/fasta and encoding/fastq produce file-format-specific
// types (Fasta, fastq.Read); FromFasta and FromFastqRead bridge them into
// the Record type here so graph/cdbg code has one shape to depend on regardless of
// which file format fed it.
package sequence

import (
	"github.com/pkg/errors"

	"github.com/bionexus/cdbg/alphabet"
)

// Record is a named sequence with optional per-base quality, matching
// fastq.Read's ID/Seq/Qual fields but decoupled from the FASTQ wire
// format: a FASTA record becomes a Record with Quality == "".
type Record struct {
	Name     string
	Sequence string
	Quality  string
}

// ErrQualityLengthMismatch is returned by Validate when Quality is
// present but a different length than Sequence.
var ErrQualityLengthMismatch = errors.New("sequence: quality length does not match sequence length")

// ErrEmptySequence is returned by Validate when Sequence is empty.
var ErrEmptySequence = errors.New("sequence: empty sequence")

// Validate checks structural well-formedness (non-empty, quality length
// matches sequence length if present) but does not touch base content;
// use Sanitize or ValidateStrict for that.
func (r Record) Validate() error {
	if len(r.Sequence) == 0 {
		return ErrEmptySequence
	}
	if r.Quality != "" && len(r.Quality) != len(r.Sequence) {
		return errors.Wrapf(ErrQualityLengthMismatch, "sequence=%d quality=%d", len(r.Sequence), len(r.Quality))
	}
	return nil
}

// ValidateStrict additionally requires every base to be in alpha's
// alphabet, rejecting ambiguity codes like 'N' under alphabet.Simple.
func (r Record) ValidateStrict(alpha *alphabet.Alphabet) error {
	if err := r.Validate(); err != nil {
		return err
	}
	for i := 0; i < len(r.Sequence); i++ {
		if !alpha.IsValid(r.Sequence[i]) {
			return errors.Errorf("sequence: invalid base %q at position %d in %q", r.Sequence[i], i, r.Name)
		}
	}
	return nil
}

// Sanitize uppercases r.Sequence in place via alphabet.Sanitize and
// reports whether every resulting byte belongs to alpha: this is the
// lenient counterpart to ValidateStrict, for a caller (cmd/cdbgstream)
// that wants to skip malformed reads rather than abort the whole stream.
func (r *Record) Sanitize(alpha *alphabet.Alphabet) bool {
	seq := []byte(r.Sequence)
	ok := alpha.Sanitize(seq)
	r.Sequence = string(seq)
	return ok
}
