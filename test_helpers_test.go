package rollcollide

import (
	"encoding/binary"
	"hash/fnv"
	"math/rand/v2"
	"slices"
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

// Alphabets used across tests.
const (
	// mixedSymbols has 64 symbols in five ranges.
	mixedSymbols = "-0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ_abcdefghijklmnopqrstuvwxyz"
	smallSymbols = "ab.z"
)

// byteSymbols returns all 256 byte values. Every short hash value has several
// representations over it, so searches produce many collisions.
func byteSymbols() string {
	all := make([]byte, 256)
	for i := range all {
		all[i] = byte(i)
	}
	return string(all)
}

// bruteForce enumerates every string over symbols of length 0..maxLen and
// returns, sorted, those with Hash(prefix|s|suffix) == target.
func bruteForce(prefix, suffix []byte, target uint32, symbols string, maxLen int) []string {
	var out []string
	buf := make([]byte, 0, maxLen)
	var walk func(h uint32)
	walk = func(h uint32) {
		if Extend(h, suffix) == target {
			out = append(out, string(buf))
		}
		if len(buf) == maxLen {
			return
		}
		for i := 0; i < len(symbols); i++ {
			buf = append(buf, symbols[i])
			walk(h*Multiplier + uint32(symbols[i]))
			buf = buf[:len(buf)-1]
		}
	}
	walk(Hash(prefix))
	slices.Sort(out)
	return out
}

// plantTarget picks a random string over symbols of length 0..maxLen and
// returns it with the target it produces, so the search has at least one
// match.
func plantTarget(rng *rand.Rand, prefix, suffix []byte, symbols string, maxLen int) (uint32, string) {
	planted := make([]byte, rng.IntN(maxLen+1))
	for i := range planted {
		planted[i] = symbols[rng.IntN(len(symbols))]
	}
	full := append(append(append([]byte{}, prefix...), planted...), suffix...)
	return Hash(full), string(planted)
}

// matchStrings returns the matches as sorted strings.
func matchStrings(ms []Match) []string {
	out := make([]string, len(ms))
	for i, m := range ms {
		out[i] = m.String()
	}
	slices.Sort(out)
	return out
}

// mustSearch runs a search and fails the test on error.
func mustSearch(t testing.TB, prefix, suffix []byte, target uint32, maxExtra int, opts ...Option) *Result {
	t.Helper()
	s, err := NewSession(prefix, suffix, target, opts...)
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	res, err := s.Search(t.Context(), maxExtra)
	if err != nil {
		t.Fatalf("Search(%d): %v", maxExtra, err)
	}
	return res
}

// assertSameStrings reports the first difference between two sorted sets.
func assertSameStrings(t testing.TB, got, want []string, format string, args ...any) {
	t.Helper()
	if slices.Equal(got, want) {
		return
	}
	t.Errorf(format, args...)
	t.Errorf("  got %d matches, want %d", len(got), len(want))
	for _, w := range want {
		if _, found := slices.BinarySearch(got, w); !found {
			t.Errorf("  missing %q", w)
			return
		}
	}
	for _, g := range got {
		if _, found := slices.BinarySearch(want, g); !found {
			t.Errorf("  unexpected %q", g)
			return
		}
	}
	t.Errorf("  duplicate matches in result")
}
