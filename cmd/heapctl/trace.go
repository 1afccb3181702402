package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/joshuapare/tagheap/heap"
	"github.com/joshuapare/tagheap/heap/printer"
)

var (
	tracePolicy string
	traceSize   int
	traceCheck  bool
	traceBlocks bool
)

func init() {
	cmd := newTraceCmd()
	cmd.Flags().StringVar(&tracePolicy, "policy", "first", "Fit policy: first or best")
	cmd.Flags().IntVar(&traceSize, "size", 64<<10, "Arena size in bytes (rounded up to whole pages)")
	cmd.Flags().BoolVar(&traceCheck, "check", false, "Verify arena invariants after every operation")
	cmd.Flags().BoolVar(&traceBlocks, "blocks", false, "Dump the block layout after the replay")
	rootCmd.AddCommand(cmd)
}

func newTraceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trace <file>",
		Short: "Replay an allocation trace and report fragmentation",
		Long: `The trace command replays a file of allocation events against a single
heap and prints the resulting statistics. Use "-" to read from stdin.

Each line is one event; blank lines and lines starting with # are skipped:
  alloc <id> <bytes>
  free <id>

Allocations that do not fit are counted and skipped. Freeing an unknown id is
an error.

Example:
  heapctl trace workload.txt
  heapctl trace workload.txt --policy best --size 1048576 --check
  heapctl trace - --json < workload.txt`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(args)
		},
	}
	return cmd
}

// traceOp is one parsed trace line.
type traceOp struct {
	line  int
	free  bool
	id    string
	bytes int
}

// parseTrace reads trace events from r.
func parseTrace(r io.Reader) ([]traceOp, error) {
	var ops []traceOp
	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		switch strings.ToLower(fields[0]) {
		case "alloc", "a":
			if len(fields) != 3 {
				return nil, fmt.Errorf("line %d: want \"alloc <id> <bytes>\", got %q", lineNo, line)
			}
			n, err := strconv.Atoi(fields[2])
			if err != nil {
				return nil, fmt.Errorf("line %d: bad size %q: %w", lineNo, fields[2], err)
			}
			ops = append(ops, traceOp{line: lineNo, id: fields[1], bytes: n})
		case "free", "f":
			if len(fields) != 2 {
				return nil, fmt.Errorf("line %d: want \"free <id>\", got %q", lineNo, line)
			}
			ops = append(ops, traceOp{line: lineNo, free: true, id: fields[1]})
		default:
			return nil, fmt.Errorf("line %d: unknown event %q", lineNo, fields[0])
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read trace: %w", err)
	}
	return ops, nil
}

// traceResult summarizes a replay.
type traceResult struct {
	Events    int          `json:"events"`
	Skipped   int          `json:"skipped_allocs"`
	Live      int          `json:"live"`
	PeakBytes int          `json:"peak_allocated_bytes"`
	Stats     heap.Stats   `json:"stats"`
	Blocks    []heap.Block `json:"blocks,omitempty"`
}

// replay runs ops against h. Allocations that do not fit are skipped.
func replay(h *heap.Heap, ops []traceOp, check bool) (traceResult, error) {
	var res traceResult
	live := make(map[string]heap.Ref)
	allocated := 0

	for _, op := range ops {
		res.Events++
		if op.free {
			ref, ok := live[op.id]
			if !ok {
				return res, fmt.Errorf("line %d: free of unknown id %q", op.line, op.id)
			}
			blk, err := h.BlockOf(ref)
			if err != nil {
				return res, fmt.Errorf("line %d: free %s: %w", op.line, op.id, err)
			}
			if err := h.Release(ref); err != nil {
				return res, fmt.Errorf("line %d: free %s: %w", op.line, op.id, err)
			}
			allocated -= blk.Size
			delete(live, op.id)
		} else {
			if _, dup := live[op.id]; dup {
				return res, fmt.Errorf("line %d: id %q is still live", op.line, op.id)
			}
			ref, _, err := h.AllocDefault(op.bytes)
			switch {
			case errors.Is(err, heap.ErrOutOfSpace):
				res.Skipped++
				printVerbose("line %d: alloc %s (%d bytes) does not fit\n", op.line, op.id, op.bytes)
				continue
			case err != nil:
				return res, fmt.Errorf("line %d: alloc %s: %w", op.line, op.id, err)
			}
			blk, err := h.BlockOf(ref)
			if err != nil {
				return res, err
			}
			allocated += blk.Size
			res.PeakBytes = max(res.PeakBytes, allocated)
			live[op.id] = ref
		}

		if check {
			if err := h.Check(); err != nil {
				return res, fmt.Errorf("line %d: %w", op.line, err)
			}
		}
	}

	res.Live = len(live)
	res.Stats = h.Stats()
	return res, nil
}

func runTrace(args []string) error {
	policy, err := heap.ParsePolicy(tracePolicy)
	if err != nil {
		return err
	}

	var in io.Reader = os.Stdin
	if args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("failed to open trace: %w", err)
		}
		defer f.Close()
		in = f
	}

	ops, err := parseTrace(in)
	if err != nil {
		return err
	}
	printVerbose("Parsed %d events from %s\n", len(ops), args[0])

	h := heap.New(traceSize, heapOptions(policy))
	if err := h.Err(); err != nil {
		return err
	}
	defer h.Close()

	res, err := replay(h, ops, traceCheck)
	if err != nil {
		return err
	}

	if jsonOut {
		if traceBlocks {
			for b := range h.Blocks() {
				res.Blocks = append(res.Blocks, b)
			}
		}
		return printJSON(res)
	}

	printInfo("Replayed %s events with %s on a %s arena\n",
		humanize.Comma(int64(res.Events)), policy, humanize.IBytes(uint64(h.Capacity())))
	printInfo("Skipped allocations: %d, live at end: %d, peak allocated: %s\n\n",
		res.Skipped, res.Live, humanize.IBytes(uint64(res.PeakBytes)))
	if quiet {
		return nil
	}

	p := printer.New(os.Stdout, printer.DefaultOptions())
	if traceBlocks {
		if err := p.PrintBlocks(h); err != nil {
			return err
		}
		fmt.Println()
	}
	return p.PrintStats(res.Stats)
}
