// Bench measures collision search throughput and memory for both strategies.
//
// Usage:
//
//	go run ./cmd/bench -max 5 -n 4
//
// Flags:
//
//	-max       Enumerated characters per search (default: 5)
//	-n         Number of targets to search (default: 4)
//	-prefix    Fixed prefix (default: /other/m)
//	-suffix    Fixed suffix (default: .dcx)
//	-workers   Grid worker goroutines (default: GOMAXPROCS)
//	-lanes     Lane group width for dfs, 0 for CPU default (default: 0)
//	-seed      Seed for target derivation (default: 0x1234)
//
// Targets are derived from murmur3 of the run index, so runs are reproducible
// and both strategies search the same set. The digests of the two result sets
// must agree for every target.
package main

import (
	"context"
	"encoding/binary"
	"flag"
	"fmt"
	"os"
	"runtime"
	"runtime/metrics"
	"runtime/pprof"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/spaolacci/murmur3"

	"github.com/tamirms/rollcollide"
)

// getMaxRSS returns the maximum resident set size in bytes.
// Uses getrusage(RUSAGE_SELF) which tracks peak RSS since process start.
func getMaxRSS() uint64 {
	var rusage syscall.Rusage
	if err := syscall.Getrusage(syscall.RUSAGE_SELF, &rusage); err != nil {
		return 0
	}
	// On macOS, MaxRss is in bytes. On Linux, it's in kilobytes.
	maxRSS := uint64(rusage.Maxrss)
	if runtime.GOOS == "linux" {
		maxRSS *= 1024
	}
	return maxRSS
}

// peakSampler tracks peak heap and RSS at 10ms intervals.
// Uses runtime/metrics instead of ReadMemStats to avoid stop-the-world pauses
// that distort CPU profiles.
type peakSampler struct {
	baseHeap uint64
	baseRSS  uint64
	heap     atomic.Uint64
	rss      atomic.Uint64
	done     chan struct{}
}

func startSampler() *peakSampler {
	runtime.GC()
	time.Sleep(50 * time.Millisecond)
	var baseline runtime.MemStats
	runtime.ReadMemStats(&baseline)

	p := &peakSampler{
		baseHeap: baseline.Alloc,
		baseRSS:  getMaxRSS(),
		done:     make(chan struct{}),
	}
	p.heap.Store(p.baseHeap)
	p.rss.Store(p.baseRSS)

	go func() {
		samples := []metrics.Sample{
			{Name: "/memory/classes/heap/objects:bytes"},
		}
		ticker := time.NewTicker(10 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-p.done:
				return
			case <-ticker.C:
				metrics.Read(samples)
				storeMax(&p.heap, samples[0].Value.Uint64())
				storeMax(&p.rss, getMaxRSS())
			}
		}
	}()
	return p
}

func storeMax(v *atomic.Uint64, x uint64) {
	for {
		old := v.Load()
		if x <= old || v.CompareAndSwap(old, x) {
			return
		}
	}
}

// stop ends sampling and returns peak heap and RSS growth over the baseline.
func (p *peakSampler) stop() (heap, rss uint64) {
	close(p.done)
	var final runtime.MemStats
	runtime.ReadMemStats(&final)
	storeMax(&p.heap, final.Alloc)
	storeMax(&p.rss, getMaxRSS())
	return p.heap.Load() - p.baseHeap, p.rss.Load() - p.baseRSS
}

type runStats struct {
	elapsed  time.Duration
	matches  int
	found    uint64
	digests  []uint64
	width    int
	peakHeap uint64
	peakRSS  uint64
}

func main() {
	maxFlag := flag.Int("max", 5, "enumerated characters per search")
	nFlag := flag.Int("n", 4, "number of targets")
	prefixFlag := flag.String("prefix", "/other/m", "fixed prefix")
	suffixFlag := flag.String("suffix", ".dcx", "fixed suffix")
	workersFlag := flag.Int("workers", runtime.GOMAXPROCS(0), "grid worker goroutines")
	lanesFlag := flag.Int("lanes", 0, "lane group width for dfs (0 = from CPU features)")
	seedFlag := flag.Uint("seed", 0x1234, "seed for target derivation")
	cpuprofile := flag.String("cpuprofile", "", "write cpu profile to file (search phase only)")
	flag.Parse()

	targets := make([]uint32, *nFlag)
	var idx [8]byte
	for i := range targets {
		binary.LittleEndian.PutUint64(idx[:], uint64(i))
		targets[i] = murmur3.Sum32WithSeed(idx[:], uint32(*seedFlag))
	}

	if *cpuprofile != "" {
		f, err := os.Create(*cpuprofile)
		if err != nil {
			fmt.Printf("could not create CPU profile: %v\n", err)
			return
		}
		defer func() { _ = f.Close() }()
		if err := pprof.StartCPUProfile(f); err != nil {
			fmt.Printf("could not start CPU profile: %v\n", err)
			return
		}
		defer pprof.StopCPUProfile()
	}

	strategies := []rollcollide.Strategy{rollcollide.StrategyDepthFirst, rollcollide.StrategyGrid}
	stats := make([]runStats, len(strategies))
	for si, strategy := range strategies {
		fmt.Printf("Searching %d targets (%s, max %d)...\n", len(targets), strategy, *maxFlag)

		opts := []rollcollide.Option{
			rollcollide.WithStrategy(strategy),
			rollcollide.WithWorkers(*workersFlag),
			// Timing excludes the per-match re-hash.
			rollcollide.WithSelfCheck(false),
		}
		if *lanesFlag > 0 {
			opts = append(opts, rollcollide.WithLaneWidth(*lanesFlag))
		}

		sampler := startSampler()
		st := &stats[si]
		for _, target := range targets {
			s, err := rollcollide.NewSession([]byte(*prefixFlag), []byte(*suffixFlag), target, opts...)
			if err != nil {
				fmt.Printf("NewSession failed: %v\n", err)
				return
			}
			start := time.Now()
			res, err := s.Search(context.Background(), *maxFlag)
			st.elapsed += time.Since(start)
			if err != nil {
				fmt.Printf("Search failed: %v\n", err)
				return
			}
			if res.Truncated {
				fmt.Printf("target 0x%08x: grid buffer overflowed (%d of %d stored)\n", target, len(res.Matches), res.Found)
			}
			st.matches += len(res.Matches)
			st.found += res.Found
			st.width = res.PrefixWidth
			st.digests = append(st.digests, res.Digest())
		}
		st.peakHeap, st.peakRSS = sampler.stop()
	}

	for i := range targets {
		if stats[0].digests[i] != stats[1].digests[i] {
			fmt.Printf("MISMATCH target 0x%08x: dfs digest %016x, grid digest %016x\n",
				targets[i], stats[0].digests[i], stats[1].digests[i])
			os.Exit(1)
		}
	}

	k := len(rollcollide.DefaultSymbols)
	candidates := rollcollide.ExpectedMatches(k, 0, *maxFlag+1) * float64(uint64(1)<<32) * float64(len(targets))

	fmt.Printf("\n")
	fmt.Printf("╔═════════════════════╦════════════════╦════════════════╗\n")
	fmt.Printf("║ Max: %-15d║ Targets: %-6d║ Workers: %-6d║\n", *maxFlag, len(targets), *workersFlag)
	fmt.Printf("╠═════════════════════╬════════════════╬════════════════╣\n")
	fmt.Printf("║ Metric              ║ dfs            ║ grid           ║\n")
	fmt.Printf("╠═════════════════════╬════════════════╬════════════════╣\n")
	fmt.Printf("║ Search time         ║ %8.3f sec   ║ %8.3f sec   ║\n", stats[0].elapsed.Seconds(), stats[1].elapsed.Seconds())
	fmt.Printf("║ Per target          ║ %8.3f sec   ║ %8.3f sec   ║\n",
		stats[0].elapsed.Seconds()/float64(len(targets)), stats[1].elapsed.Seconds()/float64(len(targets)))
	fmt.Printf("║ Candidates          ║ %8.2f G/sec ║ %8.2f G/sec ║\n",
		candidates/stats[0].elapsed.Seconds()/1e9, candidates/stats[1].elapsed.Seconds()/1e9)
	fmt.Printf("║ Matches stored      ║ %10d     ║ %10d     ║\n", stats[0].matches, stats[1].matches)
	fmt.Printf("║ Matches found       ║ %10d     ║ %10d     ║\n", stats[0].found, stats[1].found)
	fmt.Printf("║ Prefix width        ║    N/A         ║ %10d     ║\n", stats[1].width)
	fmt.Printf("║ Peak heap memory    ║ %8.1f MB    ║ %8.1f MB    ║\n",
		float64(stats[0].peakHeap)/1_000_000, float64(stats[1].peakHeap)/1_000_000)
	fmt.Printf("║ Peak RSS memory     ║ %8.1f MB    ║ %8.1f MB    ║\n",
		float64(stats[0].peakRSS)/1_000_000, float64(stats[1].peakRSS)/1_000_000)
	fmt.Printf("╚═════════════════════╩════════════════╩════════════════╝\n")
}
