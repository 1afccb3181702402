package main

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/joshuapare/tagheap/heap"
	"github.com/joshuapare/tagheap/heap/printer"
)

var (
	demoSize   int
	demoBytes  int
	demoPolicy string
)

func init() {
	cmd := newDemoCmd()
	cmd.Flags().IntVar(&demoSize, "size", 1000, "Requested arena size in bytes (rounded up to whole pages)")
	cmd.Flags().IntVar(&demoBytes, "bytes", 100, "Payload bytes to allocate")
	cmd.Flags().StringVar(&demoPolicy, "policy", "first", "Fit policy: first or best")
	rootCmd.AddCommand(cmd)
}

func newDemoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Allocate and release one block, then dump the arena",
		Long: `The demo command builds a heap, allocates one block, releases it again
and prints every block of the arena. After the release the arena is back to a
single free block.

Example:
  heapctl demo
  heapctl demo --size 8192 --bytes 300 --policy best
  heapctl demo --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDemo()
		},
	}
	return cmd
}

type demoResult struct {
	Capacity int          `json:"capacity"`
	Policy   string       `json:"policy"`
	Ref      int          `json:"ref"`
	Block    heap.Block   `json:"allocated_block"`
	After    []heap.Block `json:"blocks_after_release"`
}

func runDemo() error {
	policy, err := heap.ParsePolicy(demoPolicy)
	if err != nil {
		return err
	}

	h := heap.New(demoSize, heapOptions(policy))
	if err := h.Err(); err != nil {
		return err
	}
	defer h.Close()

	printInfo("Allocator running (%s arena, %s)\n", humanize.IBytes(uint64(h.Capacity())), policy)

	ref, _, err := h.AllocDefault(demoBytes)
	if err != nil {
		return fmt.Errorf("alloc %d bytes: %w", demoBytes, err)
	}
	blk, err := h.BlockOf(ref)
	if err != nil {
		return err
	}
	printVerbose("Allocated %d bytes at ref 0x%x: %s\n", demoBytes, int(ref), blk)

	if err := h.Release(ref); err != nil {
		return fmt.Errorf("release ref 0x%x: %w", int(ref), err)
	}
	printVerbose("Released ref 0x%x\n", int(ref))

	if jsonOut {
		var after []heap.Block
		for b := range h.Blocks() {
			after = append(after, b)
		}
		return printJSON(demoResult{
			Capacity: h.Capacity(),
			Policy:   policy.String(),
			Ref:      int(ref),
			Block:    blk,
			After:    after,
		})
	}

	if quiet {
		return nil
	}
	return printer.New(os.Stdout, printer.DefaultOptions()).PrintBlocks(h)
}
