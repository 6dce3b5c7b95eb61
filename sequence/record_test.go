package sequence

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bionexus/cdbg/alphabet"
)

func TestValidateEmptySequence(t *testing.T) {
	r := Record{Name: "r1"}
	require.Equal(t, ErrEmptySequence, r.Validate())
}

func TestValidateQualityLengthMismatch(t *testing.T) {
	r := Record{Name: "r1", Sequence: "ACGT", Quality: "III"}
	require.Error(t, r.Validate())
}

func TestValidateOK(t *testing.T) {
	r := Record{Name: "r1", Sequence: "ACGT", Quality: "IIII"}
	require.NoError(t, r.Validate())
}

func TestValidateStrictRejectsAmbiguityCode(t *testing.T) {
	r := Record{Name: "r1", Sequence: "ACGN"}
	require.Error(t, r.ValidateStrict(alphabet.Simple), "Simple alphabet should reject N")
	require.NoError(t, r.ValidateStrict(alphabet.WithN))
}

func TestSanitizeUppercasesAndReportsValidity(t *testing.T) {
	r := Record{Name: "r1", Sequence: "acgt"}
	require.True(t, r.Sanitize(alphabet.Simple), "expected Sanitize to accept lowercase acgt")
	require.Equal(t, "ACGT", r.Sequence)

	r2 := Record{Name: "r2", Sequence: "ACGN"}
	require.False(t, r2.Sanitize(alphabet.Simple), "expected Sanitize to reject N under the Simple alphabet")
}
