// Package bits provides wrapping modular arithmetic over machine words.
package bits

// Inverse32 returns x such that a*x == 1 (mod 2^32).
//
// Only odd values have an inverse modulo a power of two. Starting from the
// approximation 3a^2 (correct in the low 5 bits), each Newton-Raphson step
// doubles the number of correct bits, so three steps reach 40 >= 32 bits.
// See https://arxiv.org/abs/2204.04342.
//
// Panics if a is even.
func Inverse32(a uint32) uint32 {
	if a&1 == 0 {
		panic("bits: Inverse32 of even value")
	}

	x := 3*a ^ 2
	y := 1 - a*x

	x *= y + 1
	y *= y
	x *= y + 1
	y *= y
	return x * (y + 1)
}

// Inverse64 returns x such that a*x == 1 (mod 2^64).
// Four refinement steps are needed for 64-bit words.
//
// Panics if a is even.
func Inverse64(a uint64) uint64 {
	if a&1 == 0 {
		panic("bits: Inverse64 of even value")
	}

	x := 3*a ^ 2
	y := 1 - a*x

	x *= y + 1
	y *= y
	x *= y + 1
	y *= y
	x *= y + 1
	y *= y
	return x * (y + 1)
}

// Pow32 returns base^exp with 32-bit wraparound.
func Pow32(base, exp uint32) uint32 {
	result := uint32(1)
	for exp > 0 {
		if exp&1 == 1 {
			result *= base
		}
		base *= base
		exp >>= 1
	}
	return result
}
