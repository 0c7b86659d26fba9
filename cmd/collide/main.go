// Collide searches for strings that, placed between a prefix and a suffix,
// give the multiplicative base-37 rolling hash a target value.
//
// Usage:
//
//	go run ./cmd/collide -prefix /other/m -suffix .dcx -target d7255946 -max 6
//
// Flags:
//
//	-prefix    Fixed bytes before the searched string
//	-suffix    Fixed bytes after the searched string
//	-target    Target hash, hexadecimal (0x prefix optional)
//	-max       Enumerated characters; matches are up to max+1 long (default: 6)
//	-strategy  dfs or grid (default: dfs)
//	-alphabet  Allowed characters (default: ._a-z0-9)
//	-lanes     Lane group width for dfs (default: from CPU features)
//	-workers   Grid worker goroutines (default: GOMAXPROCS)
//	-width     Grid lane prefix width, 0 for automatic (default: 0)
//	-capacity  Grid match buffer capacity, 0 for automatic (default: 0)
//	-out       Write matches to a result file
//	-verify    Read and check a result file instead of searching; -prefix,
//	           -suffix and -alphabet must match the original search
//	-verbose   Debug logging
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/segmentio/asm/ascii"
	"go.uber.org/zap"

	"github.com/tamirms/rollcollide"
)

func main() {
	prefixFlag := flag.String("prefix", "", "fixed bytes before the searched string")
	suffixFlag := flag.String("suffix", "", "fixed bytes after the searched string")
	targetFlag := flag.String("target", "", "target hash in hexadecimal")
	maxFlag := flag.Int("max", 6, "enumerated characters (matches are up to max+1 long)")
	strategyFlag := flag.String("strategy", "dfs", "search strategy: dfs or grid")
	alphabetFlag := flag.String("alphabet", rollcollide.DefaultSymbols, "allowed characters")
	lanesFlag := flag.Int("lanes", 0, "lane group width for dfs (0 = from CPU features)")
	workersFlag := flag.Int("workers", 0, "grid worker goroutines (0 = GOMAXPROCS)")
	widthFlag := flag.Int("width", 0, "grid lane prefix width (0 = automatic)")
	capacityFlag := flag.Int("capacity", 0, "grid match buffer capacity (0 = automatic)")
	outFlag := flag.String("out", "", "write matches to this result file")
	verifyFlag := flag.String("verify", "", "check an existing result file and print its matches")
	verboseFlag := flag.Bool("verbose", false, "debug logging")
	flag.Parse()

	logger := newLogger(*verboseFlag)
	defer func() { _ = logger.Sync() }()

	if *verifyFlag != "" {
		if err := verifyFile(logger, *verifyFlag, []byte(*prefixFlag), []byte(*suffixFlag), *alphabetFlag); err != nil {
			logger.Fatal("result file check failed", zap.String("path", *verifyFlag), zap.Error(err))
		}
		return
	}

	target, err := parseTarget(*targetFlag)
	if err != nil {
		logger.Fatal("invalid -target", zap.String("value", *targetFlag), zap.Error(err))
	}
	strategy, err := rollcollide.ParseStrategy(*strategyFlag)
	if err != nil {
		logger.Fatal("invalid -strategy", zap.Error(err))
	}

	opts := []rollcollide.Option{
		rollcollide.WithStrategy(strategy),
		rollcollide.WithSymbols(*alphabetFlag),
		rollcollide.WithPrefixWidth(*widthFlag),
		rollcollide.WithGridCapacity(*capacityFlag),
	}
	if *lanesFlag > 0 {
		opts = append(opts, rollcollide.WithLaneWidth(*lanesFlag))
	}
	if *workersFlag > 0 {
		opts = append(opts, rollcollide.WithWorkers(*workersFlag))
	}

	prefix, suffix := []byte(*prefixFlag), []byte(*suffixFlag)
	session, err := rollcollide.NewSession(prefix, suffix, target, opts...)
	if err != nil {
		logger.Fatal("invalid search configuration", zap.Error(err))
	}

	pre := session.PrecomputedSuffix()
	logger.Debug("session prepared",
		zap.String("alphabet", session.Symbols()),
		zap.String("prefix_hash", fmt.Sprintf("0x%08x", session.PrefixHash())),
		zap.String("suffix_hash", fmt.Sprintf("0x%08x", pre.Hash)),
		zap.String("suffix_multiplier", fmt.Sprintf("0x%08x", pre.Multiplier)),
		zap.String("target_shift", fmt.Sprintf("0x%08x", pre.TargetShift)),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	start := time.Now()
	res, err := session.Search(ctx, *maxFlag)
	if err != nil {
		logger.Fatal("search failed", zap.Error(err))
	}
	elapsed := time.Since(start)

	for _, m := range res.Matches {
		fmt.Println(render(session.Assemble(m)))
	}

	logger.Info("search complete",
		zap.Stringer("strategy", res.Strategy),
		zap.Int("max_extra", res.MaxExtra),
		zap.Int("prefix_width", res.PrefixWidth),
		zap.Int("matches", len(res.Matches)),
		zap.Uint64("found", res.Found),
		zap.Bool("truncated", res.Truncated),
		zap.String("digest", fmt.Sprintf("%016x", res.Digest())),
		zap.Duration("elapsed", elapsed),
	)
	if res.Truncated {
		logger.Warn("grid match buffer overflowed; rerun with a larger -capacity",
			zap.Uint64("dropped", res.Found-uint64(len(res.Matches))))
	}

	if *outFlag != "" {
		if err := rollcollide.WriteResults(*outFlag, session, res); err != nil {
			logger.Fatal("writing result file failed", zap.String("path", *outFlag), zap.Error(err))
		}
		logger.Info("result file written", zap.String("path", *outFlag))
	}
}

func newLogger(verbose bool) *zap.Logger {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	logger, err := cfg.Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	return logger
}

// parseTarget accepts a 32-bit hexadecimal value with or without 0x.
func parseTarget(s string) (uint32, error) {
	if s == "" {
		return 0, errors.New("target is required")
	}
	v, err := strconv.ParseUint(strings.TrimPrefix(strings.ToLower(s), "0x"), 16, 32)
	if err != nil {
		return 0, err
	}
	return uint32(v), nil
}

// render prints printable ASCII as is and quotes anything else.
func render(b []byte) string {
	if ascii.ValidPrint(b) {
		return string(b)
	}
	return strconv.Quote(string(b))
}

func verifyFile(logger *zap.Logger, path string, prefix, suffix []byte, symbols string) error {
	r, err := rollcollide.OpenResults(path)
	if err != nil {
		return err
	}
	defer func() { _ = r.Close() }()

	if err := r.Verify(); err != nil {
		return err
	}
	if err := r.CheckAlphabet(symbols); err != nil {
		return err
	}
	if err := r.CheckTarget(prefix, suffix); err != nil {
		return err
	}

	for m, err := range r.All() {
		if err != nil {
			return err
		}
		fmt.Println(render(append(append(append([]byte{}, prefix...), m.AppendTo(nil)...), suffix...)))
	}

	info := r.Info()
	logger.Info("result file verified",
		zap.String("path", path),
		zap.String("target", fmt.Sprintf("0x%08x", info.Target)),
		zap.Stringer("strategy", info.Strategy),
		zap.Int("max_extra", info.MaxExtra),
		zap.Uint64("matches", info.Count),
		zap.Uint64("found", info.Found),
		zap.Bool("truncated", info.Truncated),
	)
	return nil
}
