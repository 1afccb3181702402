package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/joshuapare/tagheap/heap"
)

var (
	benchOps      int
	benchWorkers  int
	benchSize     int
	benchMaxBytes int
	benchLive     int
	benchSeed     uint64
)

func init() {
	cmd := newBenchCmd()
	cmd.Flags().IntVar(&benchOps, "ops", 200_000, "Alloc/release pairs per worker")
	cmd.Flags().IntVar(&benchWorkers, "workers", 1, "Parallel workers, each with its own heap")
	cmd.Flags().IntVar(&benchSize, "size", 1<<20, "Arena size per worker in bytes")
	cmd.Flags().IntVar(&benchMaxBytes, "max-bytes", 256, "Largest request size in bytes")
	cmd.Flags().IntVar(&benchLive, "live", 512, "Allocations kept live at once")
	cmd.Flags().Uint64Var(&benchSeed, "seed", 1, "Workload seed")
	rootCmd.AddCommand(cmd)
}

func newBenchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Compare first-fit, best-fit and the Go allocator",
		Long: `The bench command runs the same random alloc/release workload against a
first-fit heap, a best-fit heap and make([]byte). A window of allocations
stays live so the free list fragments the way it does in long-running use.

With --workers N the workload runs on N goroutines, each owning its own heap.

Example:
  heapctl bench
  heapctl bench --ops 1000000 --workers 4
  heapctl bench --max-bytes 4096 --live 64 --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBench(cmd.Context())
		},
	}
	return cmd
}

// benchConfig is the workload shared by every contender.
type benchConfig struct {
	ops      int
	workers  int
	size     int
	maxBytes int
	live     int
	seed     uint64
}

// benchResult is one contender's outcome.
type benchResult struct {
	Name      string        `json:"name"`
	Ops       int           `json:"ops"`
	Failures  int           `json:"alloc_failures"`
	Elapsed   time.Duration `json:"elapsed_ns"`
	NsPerOp   float64       `json:"ns_per_op"`
	PeakFrag  float64       `json:"peak_fragmentation,omitempty"`
	ArenaSize int           `json:"arena_bytes,omitempty"`
}

func (c benchConfig) validate() error {
	switch {
	case c.ops <= 0:
		return errors.New("--ops must be positive")
	case c.workers <= 0:
		return errors.New("--workers must be positive")
	case c.maxBytes <= 0:
		return errors.New("--max-bytes must be positive")
	case c.live <= 0:
		return errors.New("--live must be positive")
	}
	return nil
}

// workerStats is what a single worker reports back.
type workerStats struct {
	failures int
	peakFrag float64
}

// runWorkers fans fn out over cfg.workers goroutines and sums their stats.
func runWorkers(ctx context.Context, cfg benchConfig, fn func(ctx context.Context, rng *rand.Rand) (workerStats, error)) (workerStats, time.Duration, error) {
	g, ctx := errgroup.WithContext(ctx)
	results := make([]workerStats, cfg.workers)

	start := time.Now()
	for w := range cfg.workers {
		g.Go(func() error {
			rng := rand.New(rand.NewPCG(cfg.seed, uint64(w)))
			st, err := fn(ctx, rng)
			results[w] = st
			return err
		})
	}
	err := g.Wait()
	elapsed := time.Since(start)

	var total workerStats
	for _, st := range results {
		total.failures += st.failures
		total.peakFrag = max(total.peakFrag, st.peakFrag)
	}
	return total, elapsed, err
}

// heapWorkload runs cfg.ops alloc/release pairs against a private heap.
func heapWorkload(cfg benchConfig, policy heap.Policy) func(context.Context, *rand.Rand) (workerStats, error) {
	return func(ctx context.Context, rng *rand.Rand) (workerStats, error) {
		var st workerStats
		h := heap.New(cfg.size, heapOptions(policy))
		if err := h.Err(); err != nil {
			return st, err
		}
		defer h.Close()

		live := make([]heap.Ref, cfg.live)
		for i := range cfg.ops {
			if i%4096 == 0 {
				if err := ctx.Err(); err != nil {
					return st, err
				}
				st.peakFrag = max(st.peakFrag, h.Stats().Fragmentation)
			}
			slot := rng.IntN(len(live))
			if err := h.Release(live[slot]); err != nil {
				return st, err
			}
			live[slot] = heap.Nil

			ref, buf, err := h.AllocDefault(1 + rng.IntN(cfg.maxBytes))
			if errors.Is(err, heap.ErrOutOfSpace) {
				st.failures++
				continue
			}
			if err != nil {
				return st, err
			}
			buf[0] = byte(i)
			live[slot] = ref
		}
		return st, nil
	}
}

// makeWorkload runs the same request pattern against the Go allocator.
func makeWorkload(cfg benchConfig) func(context.Context, *rand.Rand) (workerStats, error) {
	return func(ctx context.Context, rng *rand.Rand) (workerStats, error) {
		live := make([][]byte, cfg.live)
		for i := range cfg.ops {
			if i%4096 == 0 {
				if err := ctx.Err(); err != nil {
					return workerStats{}, err
				}
			}
			slot := rng.IntN(len(live))
			buf := make([]byte, 1+rng.IntN(cfg.maxBytes))
			buf[0] = byte(i)
			live[slot] = buf
		}
		return workerStats{}, nil
	}
}

func runBench(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg := benchConfig{
		ops:      benchOps,
		workers:  benchWorkers,
		size:     benchSize,
		maxBytes: benchMaxBytes,
		live:     benchLive,
		seed:     benchSeed,
	}
	if err := cfg.validate(); err != nil {
		return err
	}

	contenders := []struct {
		name  string
		arena int
		fn    func(context.Context, *rand.Rand) (workerStats, error)
	}{
		{heap.FirstFit.String(), cfg.size, heapWorkload(cfg, heap.FirstFit)},
		{heap.BestFit.String(), cfg.size, heapWorkload(cfg, heap.BestFit)},
		{"make", 0, makeWorkload(cfg)},
	}

	totalOps := cfg.ops * cfg.workers
	printInfo("Running %s alloc/release pairs on %d worker(s), requests up to %s\n",
		humanize.Comma(int64(totalOps)), cfg.workers, humanize.IBytes(uint64(cfg.maxBytes)))

	results := make([]benchResult, 0, len(contenders))
	for _, c := range contenders {
		printVerbose("Benchmarking %s...\n", c.name)
		st, elapsed, err := runWorkers(ctx, cfg, c.fn)
		if err != nil {
			return fmt.Errorf("%s: %w", c.name, err)
		}
		results = append(results, benchResult{
			Name:      c.name,
			Ops:       totalOps,
			Failures:  st.failures,
			Elapsed:   elapsed,
			NsPerOp:   float64(elapsed.Nanoseconds()) / float64(totalOps),
			PeakFrag:  st.peakFrag,
			ArenaSize: c.arena,
		})
	}

	if jsonOut {
		return printJSON(results)
	}

	printInfo("\n%-10s %12s %10s %10s %8s\n", "ALLOCATOR", "ELAPSED", "NS/OP", "FAILURES", "FRAG")
	for _, r := range results {
		frag := "-"
		if r.ArenaSize > 0 {
			frag = fmt.Sprintf("%.1f%%", r.PeakFrag*100)
		}
		printInfo("%-10s %12s %10.1f %10s %8s\n",
			r.Name, r.Elapsed.Round(time.Microsecond), r.NsPerOp, humanize.Comma(int64(r.Failures)), frag)
	}
	return nil
}
