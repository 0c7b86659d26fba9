package rollcollide

import (
	intbits "github.com/tamirms/rollcollide/internal/bits"
)

// Multiplier is the base of the rolling hash: h' = h*Multiplier + b.
// It must be odd so that every power of it is invertible modulo 2^32.
const Multiplier uint32 = 37

// Hash returns the rolling hash of data starting from zero, with 32-bit
// wraparound.
func Hash(data []byte) uint32 {
	return Extend(0, data)
}

// Extend continues the rolling hash h over data, so that
// Extend(Hash(a), b) == Hash(a|b).
func Extend(h uint32, data []byte) uint32 {
	for _, b := range data {
		h = h*Multiplier + uint32(b)
	}
	return h
}

// PrecomputedSuffix captures a fixed suffix's contribution to the hash.
//
// Appending the suffix to any base is affine in the base's hash:
//
//	hash(base|suffix) = hash(base)*Multiplier + Hash
//
// so a base hash that completes the target can be solved for directly:
// hash(base) == TargetShift. The search relies on this to compute the last
// character of every candidate instead of enumerating it.
type PrecomputedSuffix struct {
	// Hash is the rolling hash of the suffix bytes alone.
	Hash uint32
	// Multiplier is Multiplier^len(suffix), always odd.
	Multiplier uint32
	// TargetShift is (target - Hash) * Multiplier^-1.
	TargetShift uint32
}

// NewPrecomputedSuffix computes the suffix data for a target hash.
func NewPrecomputedSuffix(suffix []byte, target uint32) PrecomputedSuffix {
	hash := Hash(suffix)
	mult := intbits.Pow32(Multiplier, uint32(len(suffix)))
	return PrecomputedSuffix{
		Hash:        hash,
		Multiplier:  mult,
		TargetShift: (target - hash) * intbits.Inverse32(mult),
	}
}

// Combine returns hash(base|suffix) given hash(base).
func (s PrecomputedSuffix) Combine(base uint32) uint32 {
	return base*s.Multiplier + s.Hash
}

// Target returns the target hash the suffix was prepared for.
func (s PrecomputedSuffix) Target() uint32 {
	return s.Combine(s.TargetShift)
}

// solveTrailing returns the character value c such that
// hash(base|c|suffix) == target, where next is hash(base)*Multiplier.
// The result is only a usable character if it lies in the alphabet.
func (s PrecomputedSuffix) solveTrailing(next uint32) uint32 {
	return s.TargetShift - next
}
