package hashing

import "github.com/pkg/errors"

// SequenceTooShort and InvalidCharacter are recoverable per-read errors a
// caller can catch and skip; Uninitialized and UkhsMismatch mark
// programming/construction errors and are meant to be wrapped with
// errors.Wrap at the call site that detected them, not retried.
var (
	// ErrSequenceTooShort is returned when a sequence shorter than K is
	// handed to a constructor that requires a full window.
	ErrSequenceTooShort = errors.New("hashing: sequence shorter than K")

	// ErrInvalidCharacter is returned when a byte outside the shifter's
	// alphabet is fed to eat/update/reverse_update.
	ErrInvalidCharacter = errors.New("hashing: invalid character")

	// ErrUninitialized is returned (or panicked with, as a programming
	// error) when shift_left/shift_right is called before
	// hash_base/set_cursor.
	ErrUninitialized = errors.New("hashing: shifter used before hash_base")

	// ErrUkhsMismatch is returned when a unikmer shifter's K/k' don't
	// match the UkhsMap it was built against.
	ErrUkhsMismatch = errors.New("hashing: shifter K/k' does not match UKHS")
)
