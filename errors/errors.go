// Package errors defines all exported error sentinels for the rollcollide library.
//
// This is the single source of truth for error values. Both the top-level
// rollcollide package and internal packages import from here, ensuring
// errors.Is checks work across package boundaries.
package errors

import "errors"

// Alphabet errors
var (
	ErrEmptyAlphabet    = errors.New("rollcollide: alphabet is empty")
	ErrAlphabetTooLarge = errors.New("rollcollide: alphabet exceeds 256 symbols")
	ErrDuplicateSymbol  = errors.New("rollcollide: duplicate character in alphabet")
)

// Search configuration errors
var (
	ErrSearchTooLong      = errors.New("rollcollide: search length exceeds 8-byte match capacity")
	ErrInvalidLaneWidth   = errors.New("rollcollide: lane width must be at least 1")
	ErrInvalidWorkers     = errors.New("rollcollide: worker count must be at least 1")
	ErrInvalidPrefixWidth = errors.New("rollcollide: grid prefix width out of range")
	ErrGridTooLarge       = errors.New("rollcollide: grid lane count or result buffer too large")
	ErrUnknownStrategy    = errors.New("rollcollide: unknown search strategy")
)

// Harness errors
var (
	ErrSelfCheckFailed = errors.New("rollcollide: assembled match does not hash to target")
)

// Result file errors
var (
	ErrInvalidMagic   = errors.New("rollcollide: invalid magic number")
	ErrInvalidVersion = errors.New("rollcollide: unsupported version")
	ErrChecksumFailed = errors.New("rollcollide: result file checksum verification failed")
	ErrTruncatedFile  = errors.New("rollcollide: result file is truncated")
	ErrCorruptedFile  = errors.New("rollcollide: result file data is corrupted")
	ErrResultsClosed  = errors.New("rollcollide: result file is closed")

	ErrAlphabetMismatch = errors.New("rollcollide: result file was searched over a different alphabet")
)
