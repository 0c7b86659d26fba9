package rollcollide

import (
	"runtime"

	"github.com/klauspost/cpuid/v2"

	"github.com/tamirms/rollcollide/internal/alphabet"
)

// DefaultSymbols is the alphabet of resource path components: lowercase
// letters, digits, '.' and '_'.
const DefaultSymbols = "._abcdefghijklmnopqrstuvwxyz0123456789"

var defaultAlphabet = alphabet.MustNew(DefaultSymbols)

// Option is a functional option for configuring a Session.
type Option func(*config)

type config struct {
	alphabet     *alphabet.Alphabet
	strategy     Strategy
	laneWidth    int
	workers      int
	prefixWidth  int // 0 picks a width from the lane target
	gridCapacity int // 0 sizes the buffer from the expected match count
	selfCheck    bool

	err error // first option error, reported by NewSession
}

func defaultConfig() *config {
	return &config{
		alphabet:  defaultAlphabet,
		strategy:  StrategyDepthFirst,
		laneWidth: defaultLaneWidth(),
		workers:   runtime.GOMAXPROCS(0),
		selfCheck: true,
	}
}

// defaultLaneWidth matches the lane group to the widest 32-bit vector the
// CPU offers. Results never depend on the width.
func defaultLaneWidth() int {
	switch {
	case cpuid.CPU.Supports(cpuid.AVX512F):
		return 16
	case cpuid.CPU.Supports(cpuid.AVX2):
		return 8
	default:
		return 4
	}
}

// WithSymbols sets the alphabet to search over: distinct bytes in any order,
// at most 256. Default is DefaultSymbols.
func WithSymbols(symbols string) Option {
	return func(c *config) {
		a, err := alphabet.New([]byte(symbols))
		if err != nil {
			if c.err == nil {
				c.err = err
			}
			return
		}
		c.alphabet = a
	}
}

// WithStrategy selects the traversal strategy. Default is StrategyDepthFirst.
func WithStrategy(s Strategy) Option {
	return func(c *config) {
		c.strategy = s
	}
}

// WithLaneWidth sets how many alphabet symbols the depth-first strategy
// evaluates per lane group. Default depends on CPU features.
func WithLaneWidth(n int) Option {
	return func(c *config) {
		c.laneWidth = n
	}
}

// WithWorkers sets the number of goroutines running grid lanes.
// Default is GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(c *config) {
		c.workers = n
	}
}

// WithPrefixWidth sets the number of leading characters enumerated across
// grid lanes. The grid has alphabetSize^p lanes. p must not exceed the
// search's enumerated length.
func WithPrefixWidth(p int) Option {
	return func(c *config) {
		c.prefixWidth = p
	}
}

// WithGridCapacity sets the grid's match buffer capacity. Matches beyond it
// are counted but dropped.
func WithGridCapacity(n int) Option {
	return func(c *config) {
		c.gridCapacity = n
	}
}

// WithSelfCheck toggles re-hashing every assembled match before Search
// returns. Enabled by default.
func WithSelfCheck(enabled bool) Option {
	return func(c *config) {
		c.selfCheck = enabled
	}
}
