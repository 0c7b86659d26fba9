package bits

import (
	"encoding/binary"
	"hash/fnv"
	"math"
	"math/rand/v2"
	"testing"
)

// Named seeds for deterministic reproduction.
const (
	testSeed1 = 0x1234567890ABCDEF
	testSeed2 = 0xFEDCBA9876543210
)

func newTestRNG(t testing.TB) *rand.Rand {
	t.Helper()
	h := fnv.New128a()
	h.Write([]byte(t.Name()))
	sum := h.Sum(nil)
	s1 := binary.LittleEndian.Uint64(sum[:8])
	s2 := binary.LittleEndian.Uint64(sum[8:])
	return rand.New(rand.NewPCG(testSeed1^s1, testSeed2^s2))
}

// TestInverse32Random verifies a*Inverse32(a) == 1 for random odd a.
func TestInverse32Random(t *testing.T) {
	rng := newTestRNG(t)
	const iterations = 100000

	for i := 0; i < iterations; i++ {
		a := rng.Uint32() | 1
		if got := a * Inverse32(a); got != 1 {
			t.Fatalf("iter %d: 0x%X * Inverse32(0x%X) = 0x%X, want 1", i, a, a, got)
		}
	}
}

// TestInverse32EdgeCases covers 1, MaxUint32, powers of the hash multiplier
// and small odd values.
func TestInverse32EdgeCases(t *testing.T) {
	cases := []uint32{1, 3, 5, 37, math.MaxUint32, math.MaxUint32 - 2, 1<<31 + 1}
	for n := uint32(0); n < 16; n++ {
		cases = append(cases, Pow32(37, n))
	}
	for a := uint32(1); a < 1000; a += 2 {
		cases = append(cases, a)
	}

	for _, a := range cases {
		if got := a * Inverse32(a); got != 1 {
			t.Errorf("0x%X * Inverse32(0x%X) = 0x%X, want 1", a, a, got)
		}
	}

	// The inverse of -1 is -1.
	if got := Inverse32(math.MaxUint32); got != math.MaxUint32 {
		t.Errorf("Inverse32(MaxUint32) = 0x%X, want 0x%X", got, uint32(math.MaxUint32))
	}
}

// TestInverse64Random verifies a*Inverse64(a) == 1 for random odd a.
func TestInverse64Random(t *testing.T) {
	rng := newTestRNG(t)
	const iterations = 100000

	for i := 0; i < iterations; i++ {
		a := rng.Uint64() | 1
		if got := a * Inverse64(a); got != 1 {
			t.Fatalf("iter %d: 0x%X * Inverse64(0x%X) = 0x%X, want 1", i, a, a, got)
		}
	}
	if got := uint64(math.MaxUint64) * Inverse64(math.MaxUint64); got != 1 {
		t.Errorf("MaxUint64 * Inverse64(MaxUint64) = 0x%X, want 1", got)
	}
}

// TestInverseEvenPanics verifies the programming-error guard.
func TestInverseEvenPanics(t *testing.T) {
	for _, a := range []uint32{0, 2, 38, 1 << 31} {
		func() {
			defer func() {
				if recover() == nil {
					t.Errorf("Inverse32(%d) did not panic", a)
				}
			}()
			Inverse32(a)
		}()
	}

	defer func() {
		if recover() == nil {
			t.Error("Inverse64(4) did not panic")
		}
	}()
	Inverse64(4)
}

// TestPow32 compares against repeated wrapping multiplication.
func TestPow32(t *testing.T) {
	rng := newTestRNG(t)

	for i := 0; i < 1000; i++ {
		base := rng.Uint32()
		exp := rng.Uint32N(64)

		want := uint32(1)
		for j := uint32(0); j < exp; j++ {
			want *= base
		}
		if got := Pow32(base, exp); got != want {
			t.Fatalf("Pow32(0x%X, %d) = 0x%X, want 0x%X", base, exp, got, want)
		}
	}

	if got := Pow32(0, 0); got != 1 {
		t.Errorf("Pow32(0, 0) = %d, want 1", got)
	}
	if got := Pow32(37, 4); got != 37*37*37*37 {
		t.Errorf("Pow32(37, 4) = %d, want %d", got, 37*37*37*37)
	}
}
