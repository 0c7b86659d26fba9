package rollcollide

import (
	"fmt"

	rcerrors "github.com/tamirms/rollcollide/errors"
)

// Strategy identifies how the search space is traversed.
// Both strategies return the same set of matches.
type Strategy uint8

const (
	// StrategyDepthFirst walks a single frontier on the calling goroutine,
	// evaluating alphabet symbols in lane groups.
	StrategyDepthFirst Strategy = 0

	// StrategyGrid assigns one independent lane to every fixed-width prefix
	// and runs the lanes on a worker pool, collecting matches in a
	// fixed-capacity buffer.
	StrategyGrid Strategy = 1
)

// String returns the strategy name.
func (s Strategy) String() string {
	switch s {
	case StrategyDepthFirst:
		return "dfs"
	case StrategyGrid:
		return "grid"
	default:
		return "unknown"
	}
}

// ParseStrategy returns the strategy with the given name.
func ParseStrategy(name string) (Strategy, error) {
	switch name {
	case "dfs":
		return StrategyDepthFirst, nil
	case "grid":
		return StrategyGrid, nil
	}
	return 0, fmt.Errorf("%w: %q", rcerrors.ErrUnknownStrategy, name)
}
