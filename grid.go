package rollcollide

import (
	"context"
	"fmt"
	"math"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	rcerrors "github.com/tamirms/rollcollide/errors"
	"github.com/tamirms/rollcollide/internal/alphabet"
)

const (
	// gridBlockSize is the number of consecutive lanes handed to a worker at
	// once. Context cancellation is observed between blocks.
	gridBlockSize = 4096

	// workChanBufferMultiplier is the multiplier for work channel buffer size.
	workChanBufferMultiplier = 2

	// gridLanesPerWorker is the lane count per worker the automatic prefix
	// width aims for, so that blocks balance across workers.
	gridLanesPerWorker = 2 * gridBlockSize

	// maxGridLanes bounds alphabetSize^prefixWidth.
	maxGridLanes = uint64(1) << 40

	// gridCapacityMultiplier and gridCapacityMargin size the match buffer
	// above the expected match count: 1.5x plus a fixed margin.
	gridCapacityMultiplier = 1.5
	gridCapacityMargin     = 100

	// maxGridCapacity bounds the match buffer (9 bytes per slot in the
	// result file, 9 in memory).
	maxGridCapacity = 1 << 28
)

// MatchBuffer is a fixed-capacity, lock-free match sink shared by grid lanes.
//
// Every Append claims a slot with one atomic fetch-and-add and writes the
// match only if the slot is inside the buffer. The counter keeps counting
// past capacity, so Found reports every match seen while Len is clamped to
// what was stored.
type MatchBuffer struct {
	slots []Match
	count atomic.Uint64
}

// NewMatchBuffer returns an empty buffer holding up to capacity matches.
func NewMatchBuffer(capacity int) *MatchBuffer {
	return &MatchBuffer{slots: make([]Match, capacity)}
}

// Append stores m in the next free slot. Safe for concurrent use.
func (b *MatchBuffer) Append(m Match) {
	i := b.count.Add(1) - 1
	if i < uint64(len(b.slots)) {
		b.slots[i] = m
	}
}

// Cap returns the buffer capacity.
func (b *MatchBuffer) Cap() int {
	return len(b.slots)
}

// Found returns the number of Append calls, including dropped matches.
func (b *MatchBuffer) Found() uint64 {
	return b.count.Load()
}

// Len returns the number of stored matches.
func (b *MatchBuffer) Len() int {
	return int(min(b.count.Load(), uint64(len(b.slots))))
}

// Truncated reports whether matches were dropped for lack of capacity.
func (b *MatchBuffer) Truncated() bool {
	return b.count.Load() > uint64(len(b.slots))
}

// Matches returns the stored matches. It must only be called once all
// writers have finished.
func (b *MatchBuffer) Matches() []Match {
	return b.slots[:b.Len()]
}

// ExpectedMatches estimates how many strings of length minLen..maxLen over an
// alphabet of k symbols hash to a fixed 32-bit target, assuming hash values
// are uniform.
func ExpectedMatches(k, minLen, maxLen int) float64 {
	var total float64
	for n := minLen; n <= maxLen; n++ {
		total += math.Pow(float64(k), float64(n))
	}
	return total / float64(uint64(1)<<32)
}

// gridPlan is the resolved geometry of a grid search.
type gridPlan struct {
	width    int    // enumerated characters per lane prefix
	seqLen   int    // enumerated characters each lane searches sequentially
	lanes    uint64 // alphabetSize^width
	capacity int
}

// planGrid resolves the prefix width, lane count and buffer capacity for a
// search enumerating maxExtra characters. Precondition: maxExtra >= 1.
func planGrid(k int, maxExtra int, cfg *config) (gridPlan, error) {
	width := cfg.prefixWidth
	if width == 0 {
		target := uint64(cfg.workers) * gridLanesPerWorker
		width = 1
		for width < maxExtra && lanePow(k, width) < target {
			width++
		}
	}
	if width < 1 || width > maxExtra {
		return gridPlan{}, fmt.Errorf("%w: width %d, enumerated length %d", rcerrors.ErrInvalidPrefixWidth, width, maxExtra)
	}

	lanes := lanePow(k, width)
	if lanes > maxGridLanes {
		return gridPlan{}, fmt.Errorf("%w: %d^%d lanes", rcerrors.ErrGridTooLarge, k, width)
	}

	capacity := cfg.gridCapacity
	if capacity == 0 {
		expected := ExpectedMatches(k, width+1, maxExtra+1)
		est := gridCapacityMultiplier*expected + gridCapacityMargin
		if est > maxGridCapacity {
			return gridPlan{}, fmt.Errorf("%w: %.0f expected matches", rcerrors.ErrGridTooLarge, expected)
		}
		capacity = int(est)
	}

	return gridPlan{
		width:    width,
		seqLen:   maxExtra - width,
		lanes:    lanes,
		capacity: capacity,
	}, nil
}

// lanePow returns k^n, saturating at math.MaxUint64.
func lanePow(k, n int) uint64 {
	p := uint64(1)
	for range n {
		if p > math.MaxUint64/uint64(k) {
			return math.MaxUint64
		}
		p *= uint64(k)
	}
	return p
}

// gridKernel is the per-lane search. A lane touches only its own locals and
// the shared MatchBuffer.
type gridKernel struct {
	alpha       *alphabet.Alphabet
	symbols     []byte
	radix       uint64
	prefixHash  uint32
	targetShift uint32
	width       int
	seqLen      int
}

// runLane expands lane into its width leading characters (base-radix digits,
// least significant first) and searches below them.
func (k *gridKernel) runLane(lane uint64, out *MatchBuffer) {
	var m Match
	h := k.prefixHash
	for range k.width {
		c := k.symbols[lane%k.radix]
		lane /= k.radix
		m = m.Append(c)
		h = h*Multiplier + uint32(c)
	}
	k.descend(h, m, k.seqLen, out)
}

// descend solves the trailing character after m, whose hash with the prefix
// is h, then enumerates up to remaining more characters.
func (k *gridKernel) descend(h uint32, m Match, remaining int, out *MatchBuffer) {
	next := h * Multiplier
	if t := k.targetShift - next; k.alpha.Contains(t) {
		out.Append(m.Append(byte(t)))
	}
	if remaining == 0 {
		return
	}
	for _, c := range k.symbols {
		k.descend(next+uint32(c), m.Append(c), remaining-1, out)
	}
}

// laneBlock is a half-open range of lanes.
type laneBlock struct {
	start, end uint64
}

// runGrid runs every lane of the plan on workers goroutines and blocks until
// all have finished. Matches go to out.
//
// The dispatcher and the workers share one errgroup: a cancelled context
// stops dispatch, and workers stop at the next block boundary.
func runGrid(ctx context.Context, k *gridKernel, lanes uint64, workers int, out *MatchBuffer) error {
	g, gctx := errgroup.WithContext(ctx)
	work := make(chan laneBlock, workers*workChanBufferMultiplier)

	for range workers {
		g.Go(func() error {
			for blk := range work {
				if err := gctx.Err(); err != nil {
					return err
				}
				for lane := blk.start; lane < blk.end; lane++ {
					k.runLane(lane, out)
				}
			}
			return nil
		})
	}

	g.Go(func() error {
		defer close(work)
		for start := uint64(0); start < lanes; start += gridBlockSize {
			select {
			case work <- laneBlock{start: start, end: min(start+gridBlockSize, lanes)}:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})

	return g.Wait()
}
