// Package rollcollide finds inputs that collide under a 32-bit multiplicative
// rolling hash (h' = h*37 + b, wrapping at 2^32).
//
// Given a fixed prefix, a fixed suffix and a target hash, a search returns
// every short string s over a restricted alphabet such that
// Hash(prefix|s|suffix) == target. The last character of every candidate is
// solved arithmetically from the suffix instead of enumerated, so a search
// enumerating n characters covers all strings of up to n+1 characters.
//
// # Basic Usage
//
//	s, err := rollcollide.NewSession([]byte("/other/m"), []byte(".dcx"), 0xd7255946)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	res, err := s.Search(ctx, 6)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, m := range res.Matches {
//	    fmt.Printf("%s\n", s.Assemble(m))
//	}
//
// Results can be persisted with WriteResults and read back, memory-mapped,
// with OpenResults.
//
// # Strategies
//
// StrategyDepthFirst walks one frontier on the calling goroutine and checks
// alphabet symbols in lane groups sized to the CPU's vector width.
// StrategyGrid enumerates a fixed-width prefix across alphabetSize^p
// independent lanes run on a worker pool; matches land in a fixed-capacity
// buffer whose overflow is reported, never silent. Both strategies return
// the same match set.
//
// # Package Structure
//
//   - Hashing: rollhash.go (Hash, Extend, PrecomputedSuffix)
//   - Public API: session.go (NewSession, Search, Assemble, Verify)
//   - Configuration: options.go (Option, With* functions), strategy.go
//   - Strategies: search.go (depth-first), grid.go (lanes, MatchBuffer)
//   - Serialization: header.go, results_writer.go, results.go
//   - Alphabet ranges and prefilter: internal/alphabet/
//   - Modular inverses: internal/bits/
//   - Platform: fallocate_*.go, prefault_*.go, fadvise_*.go
package rollcollide
