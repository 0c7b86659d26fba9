package rollcollide

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	rcerrors "github.com/tamirms/rollcollide/errors"
)

// =============================================================================
// Grid vs depth-first equivalence
// =============================================================================

func TestGridMatchesDepthFirst(t *testing.T) {
	cases := []struct {
		symbols  string
		maxExtra int
		widths   []int
	}{
		{smallSymbols, 4, []int{0, 1, 2, 3, 4}},
		{mixedSymbols, 2, []int{0, 1, 2}},
		{DefaultSymbols, 3, []int{0, 1, 2}},
		{byteSymbols(), 1, []int{0, 1}},
		{"ab", 7, []int{1, 4, 7}},
	}
	prefix, suffix := []byte("/music/"), []byte(".ogg")

	for _, tc := range cases {
		for _, width := range tc.widths {
			for _, workers := range []int{1, 3} {
				name := fmt.Sprintf("k=%d/max=%d/width=%d/workers=%d", len(tc.symbols), tc.maxExtra, width, workers)
				t.Run(name, func(t *testing.T) {
					rng := newTestRNG(t)
					for iter := 0; iter < 3; iter++ {
						target, _ := plantTarget(rng, prefix, suffix, tc.symbols, tc.maxExtra+1)

						dfs := mustSearch(t, prefix, suffix, target, tc.maxExtra, WithSymbols(tc.symbols))
						grid := mustSearch(t, prefix, suffix, target, tc.maxExtra,
							WithSymbols(tc.symbols),
							WithStrategy(StrategyGrid),
							WithPrefixWidth(width),
							WithWorkers(workers))

						if grid.Truncated {
							t.Fatalf("iter %d: grid truncated with default capacity", iter)
						}
						assertSameStrings(t, matchStrings(grid.Matches), matchStrings(dfs.Matches),
							"iter %d target 0x%08x: grid differs from dfs", iter, target)
						if grid.Digest() != dfs.Digest() {
							t.Errorf("iter %d: digests differ", iter)
						}
						if width > 0 && grid.PrefixWidth != width {
							t.Errorf("iter %d: PrefixWidth = %d, want %d", iter, grid.PrefixWidth, width)
						}
					}
				})
			}
		}
	}
}

func TestGridZeroExtraFallsBack(t *testing.T) {
	prefix, suffix := []byte("/other/m"), []byte(".dcx")
	target := Hash([]byte("/other/mq.dcx"))

	res := mustSearch(t, prefix, suffix, target, 0, WithStrategy(StrategyGrid))
	assertSameStrings(t, matchStrings(res.Matches), bruteForce(prefix, suffix, target, DefaultSymbols, 1), "maxExtra 0")
	if res.Strategy != StrategyGrid || res.PrefixWidth != 0 {
		t.Errorf("got strategy %v width %d", res.Strategy, res.PrefixWidth)
	}
}

// =============================================================================
// Overflow
// =============================================================================

func TestGridOverflowIsReported(t *testing.T) {
	symbols := byteSymbols()
	prefix, suffix := []byte("p"), []byte("s")
	target := Hash([]byte("p\x80\x80s"))
	want := bruteForce(prefix, suffix, target, symbols, 2)

	full := mustSearch(t, prefix, suffix, target, 1,
		WithSymbols(symbols), WithStrategy(StrategyGrid), WithPrefixWidth(1))
	short := 0
	for _, m := range full.Matches {
		if m.Len() <= 1 {
			short++
		}
	}
	gridMatches := len(want) - short
	if gridMatches < 3 {
		t.Fatalf("need at least 3 two-byte collisions, have %d", gridMatches)
	}

	res := mustSearch(t, prefix, suffix, target, 1,
		WithSymbols(symbols), WithStrategy(StrategyGrid), WithPrefixWidth(1), WithGridCapacity(2))
	if !res.Truncated {
		t.Fatal("expected truncated result")
	}
	if res.Found != uint64(len(want)) {
		t.Errorf("Found = %d, want %d", res.Found, len(want))
	}
	if len(res.Matches) != short+2 {
		t.Errorf("stored %d matches, want %d", len(res.Matches), short+2)
	}
	// Stored matches are still valid: the session self-check passed.
}

func TestMatchBufferClampsAndCounts(t *testing.T) {
	b := NewMatchBuffer(3)
	for i := range 10 {
		b.Append(NewMatch([]byte{byte('a' + i)}))
	}
	if b.Cap() != 3 || b.Len() != 3 || b.Found() != 10 || !b.Truncated() {
		t.Errorf("cap %d len %d found %d truncated %v", b.Cap(), b.Len(), b.Found(), b.Truncated())
	}
	if got := matchStrings(b.Matches()); len(got) != 3 || got[0] != "a" || got[2] != "c" {
		t.Errorf("stored %q, want first three", got)
	}
}

func TestMatchBufferConcurrentAppend(t *testing.T) {
	const writers, perWriter = 8, 1000

	for _, capacity := range []int{writers * perWriter, writers * perWriter / 2} {
		b := NewMatchBuffer(capacity)
		var wg sync.WaitGroup
		for w := range writers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := range perWriter {
					b.Append(NewMatch([]byte{byte(w), byte(i), byte(i >> 8)}))
				}
			}()
		}
		wg.Wait()

		if b.Found() != writers*perWriter {
			t.Errorf("cap %d: Found = %d", capacity, b.Found())
		}
		if b.Len() != capacity {
			t.Errorf("cap %d: Len = %d", capacity, b.Len())
		}
		seen := make(map[Match]bool, b.Len())
		for _, m := range b.Matches() {
			if m.Len() != 3 {
				t.Fatalf("cap %d: torn or empty slot %q", capacity, m.String())
			}
			if seen[m] {
				t.Fatalf("cap %d: slot written twice: %q", capacity, m.String())
			}
			seen[m] = true
		}
	}
}

// =============================================================================
// Planning
// =============================================================================

func TestPlanGrid(t *testing.T) {
	cfg := defaultConfig()
	cfg.workers = 1

	plan, err := planGrid(38, 6, cfg)
	if err != nil {
		t.Fatal(err)
	}
	// 38^2 = 1444 lanes is below the per-worker target, 38^3 is not.
	if plan.width != 3 || plan.seqLen != 3 || plan.lanes != 38*38*38 {
		t.Errorf("auto plan: %+v", plan)
	}
	if plan.capacity < gridCapacityMargin {
		t.Errorf("capacity %d below margin", plan.capacity)
	}

	// Small spaces use every enumerated character as lane prefix.
	plan, err = planGrid(4, 3, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if plan.width != 3 || plan.seqLen != 0 || plan.lanes != 64 {
		t.Errorf("small plan: %+v", plan)
	}

	cfg.gridCapacity = 7
	if plan, _ := planGrid(4, 3, cfg); plan.capacity != 7 {
		t.Errorf("explicit capacity ignored: %d", plan.capacity)
	}
}

func TestPlanGridErrors(t *testing.T) {
	tests := []struct {
		name     string
		k        int
		maxExtra int
		width    int
		want     error
	}{
		{"width above enumerated length", 38, 3, 5, rcerrors.ErrInvalidPrefixWidth},
		{"too many lanes", 256, 7, 6, rcerrors.ErrGridTooLarge},
		{"buffer too large", 256, 7, 1, rcerrors.ErrGridTooLarge},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := defaultConfig()
			cfg.prefixWidth = tc.width
			if _, err := planGrid(tc.k, tc.maxExtra, cfg); !errors.Is(err, tc.want) {
				t.Errorf("got %v, want %v", err, tc.want)
			}
		})
	}
}

func TestExpectedMatches(t *testing.T) {
	if got := ExpectedMatches(256, 4, 4); got != 1 {
		t.Errorf("256^4 / 2^32 = %v, want 1", got)
	}
	if got := ExpectedMatches(16, 0, 7); got >= 1 {
		t.Errorf("16^0..16^7 / 2^32 = %v, want < 1", got)
	}
}

func TestLanePowSaturates(t *testing.T) {
	if got := lanePow(38, 3); got != 54872 {
		t.Errorf("38^3 = %d", got)
	}
	if got := lanePow(256, 9); got != ^uint64(0) {
		t.Errorf("256^9 did not saturate: %d", got)
	}
}

// =============================================================================
// Cancellation
// =============================================================================

func TestGridHonorsCancellation(t *testing.T) {
	s, err := NewSession([]byte("/other/m"), []byte(".dcx"), 0xd7255946,
		WithStrategy(StrategyGrid), WithWorkers(2))
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	if _, err := s.Search(ctx, 6); !errors.Is(err, context.Canceled) {
		t.Errorf("got %v, want context.Canceled", err)
	}
}
