package rollcollide

import (
	"github.com/tamirms/rollcollide/internal/alphabet"
)

// frame is one entry of the depth-first frontier.
type frame struct {
	// base is hash(prefix|partial)*Multiplier: the hash with the slot for the
	// next character already opened.
	base    uint32
	partial Match
}

// depthFirst enumerates candidates on a single frontier.
//
// The last character of every candidate is solved from the suffix data
// instead of enumerated, so the frontier only branches on the characters
// before it. Symbols are processed in lane groups of a fixed width: each
// group computes all next bases and trailing solutions first, then one
// prefilter over the group decides whether the per-lane membership checks
// run at all.
//
// A depthFirst holds only read-only data and is safe for concurrent use;
// every search call owns its frontier.
type depthFirst struct {
	alpha *alphabet.Alphabet
	width int
	full  []uint32 // lane groups of width symbols, back to back
	rem   []uint32 // symbols that do not fill a group
}

func newDepthFirst(alpha *alphabet.Alphabet, width int) *depthFirst {
	full, rem := alpha.Groups(width)
	return &depthFirst{
		alpha: alpha,
		width: width,
		full:  full,
		rem:   rem,
	}
}

// search returns every sequence s over the alphabet with
// hash(prefix|s|suffix) == target, where prefixHash is hash(prefix) and s has
// at most maxExtra enumerated characters plus the solved trailing one.
// Precondition: 0 <= maxExtra < MaxMatchLen.
func (d *depthFirst) search(prefixHash uint32, suffix PrecomputedSuffix, maxExtra int) []Match {
	matches := make([]Match, 0, 8)

	// Length 0: hash(prefix|suffix) == target.
	if prefixHash == suffix.TargetShift {
		matches = append(matches, Match{})
	}

	// Length 1: nothing to enumerate, the single character is solved.
	root := prefixHash * Multiplier
	if c := suffix.solveTrailing(root); d.alpha.Contains(c) {
		matches = append(matches, Match{}.Append(byte(c)))
	}

	if maxExtra < 1 {
		return matches
	}
	return d.expand(matches, root, suffix.TargetShift, maxExtra)
}

// expand runs the frontier from root, appending matches of length 2 to
// maxExtra+1.
func (d *depthFirst) expand(matches []Match, root uint32, targetShift uint32, maxExtra int) []Match {
	stack := make([]frame, 0, maxExtra*d.alpha.Len()+1)
	stack = append(stack, frame{base: root})

	width := d.width
	next := make([]uint32, width)
	solved := make([]uint32, width)

	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		// A child adds one enumerated character; its own matches would
		// enumerate len(partial)+2 characters.
		descend := f.partial.Len()+1 < maxExtra

		for g := 0; g < len(d.full); g += width {
			group := d.full[g : g+width]
			for i, c := range group {
				next[i] = (f.base + c) * Multiplier
				solved[i] = targetShift - next[i]
			}

			if descend {
				for i, c := range group {
					stack = append(stack, frame{base: next[i], partial: f.partial.Append(byte(c))})
				}
			}

			if !d.alpha.Prefilter(solved) {
				continue
			}
			for i, t := range solved {
				if d.alpha.Contains(t) {
					matches = append(matches, f.partial.Append(byte(group[i])).Append(byte(t)))
				}
			}
		}

		for _, c := range d.rem {
			n := (f.base + c) * Multiplier
			if descend {
				stack = append(stack, frame{base: n, partial: f.partial.Append(byte(c))})
			}
			if t := targetShift - n; d.alpha.Contains(t) {
				matches = append(matches, f.partial.Append(byte(c)).Append(byte(t)))
			}
		}
	}

	return matches
}
