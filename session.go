package rollcollide

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"slices"

	"github.com/cespare/xxhash/v2"

	rcerrors "github.com/tamirms/rollcollide/errors"
	"github.com/tamirms/rollcollide/internal/alphabet"
)

// Session searches for strings between a fixed prefix and suffix that hash
// to a fixed target.
//
// Usage:
//
//	s, err := rollcollide.NewSession([]byte("/other/m"), []byte(".dcx"), 0xd7255946)
//	if err != nil { return err }
//
//	res, err := s.Search(ctx, 6)
//	if err != nil { return err }
//	for _, m := range res.Matches {
//	    fmt.Printf("%s\n", s.Assemble(m))
//	}
//
// All derived search data (prefix hash, suffix data, lane groups) is computed
// once in NewSession. A Session is immutable and safe for concurrent use.
type Session struct {
	prefix     []byte
	suffix     []byte
	target     uint32
	prefixHash uint32
	precomp    PrecomputedSuffix
	cfg        *config
	dfs        *depthFirst
}

// Result holds the matches of one Search.
type Result struct {
	Strategy Strategy
	MaxExtra int

	// Matches holds every stored match, in no particular order.
	Matches []Match

	// Found is the number of matches seen. It exceeds len(Matches) only when
	// the grid's buffer overflowed, in which case Truncated is set.
	Found     uint64
	Truncated bool

	// PrefixWidth is the grid lane prefix width, 0 for depth-first.
	PrefixWidth int
}

// NewSession prepares a search for strings s with
// Hash(prefix|s|suffix) == target. prefix and suffix are copied.
func NewSession(prefix, suffix []byte, target uint32, opts ...Option) (*Session, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &Session{
		prefix:     slices.Clone(prefix),
		suffix:     slices.Clone(suffix),
		target:     target,
		prefixHash: Hash(prefix),
		precomp:    NewPrecomputedSuffix(suffix, target),
		cfg:        cfg,
		dfs:        newDepthFirst(cfg.alphabet, cfg.laneWidth),
	}, nil
}

func (c *config) validate() error {
	if c.err != nil {
		return c.err
	}
	if c.alphabet == nil {
		return rcerrors.ErrEmptyAlphabet
	}
	if c.laneWidth < 1 {
		return fmt.Errorf("%w: %d", rcerrors.ErrInvalidLaneWidth, c.laneWidth)
	}
	if c.workers < 1 {
		return fmt.Errorf("%w: %d", rcerrors.ErrInvalidWorkers, c.workers)
	}
	switch c.strategy {
	case StrategyDepthFirst, StrategyGrid:
	default:
		return fmt.Errorf("%w: %d", rcerrors.ErrUnknownStrategy, c.strategy)
	}
	if c.prefixWidth < 0 || c.prefixWidth >= MaxMatchLen {
		return fmt.Errorf("%w: %d", rcerrors.ErrInvalidPrefixWidth, c.prefixWidth)
	}
	if c.gridCapacity < 0 || c.gridCapacity > maxGridCapacity {
		return fmt.Errorf("%w: capacity %d", rcerrors.ErrGridTooLarge, c.gridCapacity)
	}
	return nil
}

// Search returns every string of at most maxExtra+1 characters that completes
// the target: maxExtra characters are enumerated and the last one is always
// solved. maxExtra+1 must fit in a Match.
//
// The grid strategy blocks until all lanes finish; ctx cancels it between
// lane blocks. The depth-first strategy does not observe ctx.
func (s *Session) Search(ctx context.Context, maxExtra int) (*Result, error) {
	if maxExtra < 0 || maxExtra+1 > MaxMatchLen {
		return nil, fmt.Errorf("%w: %d enumerated characters", rcerrors.ErrSearchTooLong, maxExtra)
	}

	var res *Result
	switch s.cfg.strategy {
	case StrategyGrid:
		r, err := s.searchGrid(ctx, maxExtra)
		if err != nil {
			return nil, err
		}
		res = r
	default:
		matches := s.dfs.search(s.prefixHash, s.precomp, maxExtra)
		res = &Result{
			Strategy: StrategyDepthFirst,
			MaxExtra: maxExtra,
			Matches:  matches,
			Found:    uint64(len(matches)),
		}
	}

	if s.cfg.selfCheck {
		for _, m := range res.Matches {
			if err := s.Verify(m); err != nil {
				return nil, err
			}
		}
	}
	return res, nil
}

// searchGrid finds matches enumerating fewer than the plan's width characters
// with the depth-first strategy and the rest on grid lanes. The two sets are
// disjoint by length.
func (s *Session) searchGrid(ctx context.Context, maxExtra int) (*Result, error) {
	if maxExtra < 1 {
		matches := s.dfs.search(s.prefixHash, s.precomp, maxExtra)
		return &Result{
			Strategy: StrategyGrid,
			MaxExtra: maxExtra,
			Matches:  matches,
			Found:    uint64(len(matches)),
		}, nil
	}

	plan, err := planGrid(s.cfg.alphabet.Len(), maxExtra, s.cfg)
	if err != nil {
		return nil, err
	}

	short := s.dfs.search(s.prefixHash, s.precomp, plan.width-1)

	out := NewMatchBuffer(plan.capacity)
	kernel := &gridKernel{
		alpha:       s.cfg.alphabet,
		symbols:     s.cfg.alphabet.Symbols(),
		radix:       uint64(s.cfg.alphabet.Len()),
		prefixHash:  s.prefixHash,
		targetShift: s.precomp.TargetShift,
		width:       plan.width,
		seqLen:      plan.seqLen,
	}
	if err := runGrid(ctx, kernel, plan.lanes, s.cfg.workers, out); err != nil {
		return nil, fmt.Errorf("grid search: %w", err)
	}

	matches := make([]Match, 0, len(short)+out.Len())
	matches = append(matches, short...)
	matches = append(matches, out.Matches()...)
	return &Result{
		Strategy:    StrategyGrid,
		MaxExtra:    maxExtra,
		Matches:     matches,
		Found:       uint64(len(short)) + out.Found(),
		Truncated:   out.Truncated(),
		PrefixWidth: plan.width,
	}, nil
}

// Assemble returns prefix|m|suffix.
func (s *Session) Assemble(m Match) []byte {
	out := make([]byte, 0, len(s.prefix)+m.Len()+len(s.suffix))
	out = append(out, s.prefix...)
	out = m.AppendTo(out)
	return append(out, s.suffix...)
}

// Verify re-hashes the assembled match from scratch.
func (s *Session) Verify(m Match) error {
	if got := Hash(s.Assemble(m)); got != s.target {
		return fmt.Errorf("%w: %q hashes to 0x%08x, want 0x%08x",
			rcerrors.ErrSelfCheckFailed, s.Assemble(m), got, s.target)
	}
	return nil
}

// Prefix returns the fixed prefix. The returned slice must not be modified.
func (s *Session) Prefix() []byte { return s.prefix }

// Suffix returns the fixed suffix. The returned slice must not be modified.
func (s *Session) Suffix() []byte { return s.suffix }

// Target returns the target hash.
func (s *Session) Target() uint32 { return s.target }

// PrefixHash returns Hash(prefix).
func (s *Session) PrefixHash() uint32 { return s.prefixHash }

// PrecomputedSuffix returns the suffix data derived for the target.
func (s *Session) PrecomputedSuffix() PrecomputedSuffix { return s.precomp }

// Strategy returns the configured strategy.
func (s *Session) Strategy() Strategy { return s.cfg.strategy }

// Symbols returns the sorted alphabet.
func (s *Session) Symbols() string { return s.cfg.alphabet.String() }

func (s *Session) alphabet() *alphabet.Alphabet { return s.cfg.alphabet }

// Digest returns an order-independent xxHash64 of the stored matches.
// Two results with the same match set have the same digest regardless of
// strategy or discovery order.
func (r *Result) Digest() uint64 {
	slots := make([][matchSlotSize]byte, len(r.Matches))
	for i, m := range r.Matches {
		m.encodeTo(slots[i][:])
	}
	slices.SortFunc(slots, func(a, b [matchSlotSize]byte) int {
		return bytes.Compare(a[:], b[:])
	})

	d := xxhash.New()
	var n [8]byte
	binary.LittleEndian.PutUint64(n[:], uint64(len(slots)))
	_, _ = d.Write(n[:])
	for i := range slots {
		_, _ = d.Write(slots[i][:])
	}
	return d.Sum64()
}
