// Package alphabet models the restricted character set a collision search
// enumerates over.
//
// An Alphabet is built once and never mutated. Besides the sorted symbols it
// stores the minimal list of contiguous ranges covering them, so membership
// tests for typical alphabets (digits, lowercase letters, a few punctuation
// bytes) touch only a handful of bounds.
package alphabet

import (
	"fmt"
	"slices"

	"github.com/zeebo/xxh3"

	rcerrors "github.com/tamirms/rollcollide/errors"
)

// MaxSymbols is the largest alphabet: every byte value.
const MaxSymbols = 256

// Range is a half-open interval [Start, End) of symbol values.
type Range struct {
	Start uint32
	End   uint32
}

// Alphabet is an immutable, sorted set of distinct bytes.
// It is safe for concurrent use.
type Alphabet struct {
	symbols []byte
	ranges  []Range
	// end is ranges[len(ranges)-1].End, hoisted for Prefilter.
	end uint32
}

// New builds an alphabet from distinct symbols in any order.
// The input slice is copied.
func New(symbols []byte) (*Alphabet, error) {
	if len(symbols) == 0 {
		return nil, rcerrors.ErrEmptyAlphabet
	}
	// Checked before sorting: more than 256 bytes must contain a duplicate.
	if len(symbols) > MaxSymbols {
		return nil, fmt.Errorf("%w: %d symbols", rcerrors.ErrAlphabetTooLarge, len(symbols))
	}

	sorted := slices.Clone(symbols)
	slices.Sort(sorted)
	for i := 1; i < len(sorted); i++ {
		if sorted[i] == sorted[i-1] {
			return nil, fmt.Errorf("%w: %q", rcerrors.ErrDuplicateSymbol, sorted[i])
		}
	}

	a := &Alphabet{
		symbols: sorted,
		ranges:  computeRanges(sorted),
	}
	a.end = a.ranges[len(a.ranges)-1].End
	return a, nil
}

// MustNew is like New but panics on error. It is intended for package-level
// alphabet literals, where a duplicate is a programming error.
func MustNew(symbols string) *Alphabet {
	a, err := New([]byte(symbols))
	if err != nil {
		panic(err)
	}
	return a
}

// computeRanges merges numerically adjacent symbols into ranges with a single
// scan. sorted must be non-empty, sorted and duplicate free.
func computeRanges(sorted []byte) []Range {
	ranges := make([]Range, 0, 4)
	cur := Range{Start: uint32(sorted[0])}
	for i := 1; i < len(sorted); i++ {
		if uint32(sorted[i]) != uint32(sorted[i-1])+1 {
			cur.End = uint32(sorted[i-1]) + 1
			ranges = append(ranges, cur)
			cur = Range{Start: uint32(sorted[i])}
		}
	}
	cur.End = uint32(sorted[len(sorted)-1]) + 1
	return append(ranges, cur)
}

// Len returns the number of symbols.
func (a *Alphabet) Len() int {
	return len(a.symbols)
}

// Symbols returns the sorted symbols. The returned slice must not be modified.
func (a *Alphabet) Symbols() []byte {
	return a.symbols
}

// Symbol returns the i-th smallest symbol.
func (a *Alphabet) Symbol(i int) byte {
	return a.symbols[i]
}

// Ranges returns the contiguous ranges in ascending order.
// The returned slice must not be modified.
func (a *Alphabet) Ranges() []Range {
	return a.ranges
}

// Contains reports whether v is a symbol of the alphabet.
//
// Ranges are scanned from the highest down: a value at or above a range's
// end lies above every remaining range and is rejected immediately, which
// is the common case for solved trailing characters (uniform 32-bit values).
func (a *Alphabet) Contains(v uint32) bool {
	for i := len(a.ranges) - 1; i >= 0; i-- {
		r := a.ranges[i]
		if v >= r.End {
			return false
		}
		if v >= r.Start {
			return true
		}
	}
	return false
}

// Prefilter reports whether any value could be a member. A false result
// guarantees that none of values is in the alphabet; a true result says
// nothing about individual lanes.
func (a *Alphabet) Prefilter(values []uint32) bool {
	end := a.end
	hit := false
	for _, v := range values {
		hit = hit || v < end
	}
	return hit
}

// Groups splits the symbols, promoted to uint32, into floor(N/width) groups of
// width values laid out back to back in full, and the remaining N%width values
// in rem. Iterating full in steps of width never needs a bounds check for a
// partial group.
//
// Panics if width < 1.
func (a *Alphabet) Groups(width int) (full []uint32, rem []uint32) {
	if width < 1 {
		panic("alphabet: group width must be at least 1")
	}
	n := len(a.symbols) / width * width
	full = make([]uint32, n)
	for i := range n {
		full[i] = uint32(a.symbols[i])
	}
	rem = make([]uint32, len(a.symbols)-n)
	for i := range rem {
		rem[i] = uint32(a.symbols[n+i])
	}
	return full, rem
}

// Fingerprint identifies the symbol set: two alphabets with the same symbols
// have the same fingerprint regardless of the order they were given in.
func (a *Alphabet) Fingerprint() uint64 {
	return xxh3.Hash(a.symbols)
}

// String returns the sorted symbols as a string.
func (a *Alphabet) String() string {
	return string(a.symbols)
}
