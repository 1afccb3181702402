package printer

import (
	"fmt"
	"io"
	"iter"

	"github.com/joshuapare/tagheap/heap"
)

func state(b heap.Block) string {
	if b.Allocated {
		return "ALLOCATED"
	}
	return "FREE"
}

// printBlocksText prints one line per block:
//
//	Block 0x000000 size: 4,096 FREE
func (p *Printer) printBlocksText(src Source) error {
	var blocks, free, allocated int
	for b := range src.Blocks() {
		blocks++
		if b.Allocated {
			allocated += b.Size
		} else {
			free += b.Size
		}
		line := p.num.Sprintf("Block %s size: %d %s\n", offset(b.Offset), b.Size, state(b))
		if _, err := io.WriteString(p.writer, line); err != nil {
			return err
		}
	}
	if !p.opts.Summary {
		return nil
	}
	_, err := p.num.Fprintf(p.writer, "%d blocks, %d bytes allocated, %d bytes free, capacity %d\n",
		blocks, allocated, free, src.Capacity())
	return err
}

func (p *Printer) printFreeListText(blocks iter.Seq[heap.Block]) error {
	i := 0
	for b := range blocks {
		line := p.num.Sprintf("#%d %s size: %d\n", i, offset(b.Offset), b.Size)
		if _, err := io.WriteString(p.writer, line); err != nil {
			return err
		}
		i++
	}
	if i == 0 {
		_, err := io.WriteString(p.writer, "(free list empty)\n")
		return err
	}
	return nil
}

func (p *Printer) printStatsText(s heap.Stats) error {
	rows := []struct {
		label string
		value any
	}{
		{"Capacity", s.Capacity},
		{"Allocated blocks", s.AllocatedBlocks},
		{"Allocated bytes", s.AllocatedBytes},
		{"Free blocks", s.FreeBlocks},
		{"Free bytes", s.FreeBytes},
		{"Largest free block", s.LargestFree},
		{"Alloc calls", s.AllocCalls},
		{"Alloc failures", s.AllocFailures},
		{"Release calls", s.ReleaseCalls},
		{"Release failures", s.ReleaseFailures},
		{"Splits", s.Splits},
		{"Forward coalesces", s.CoalesceForward},
		{"Backward coalesces", s.CoalesceBackward},
	}
	for _, r := range rows {
		if _, err := p.num.Fprintf(p.writer, "%-20s %d\n", r.label+":", r.value); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(p.writer, "%-20s %.1f%%\n", "Fragmentation:", s.Fragmentation*100)
	return err
}

// offset formats a block offset; hex stays out of locale grouping.
func offset(off int) string {
	return fmt.Sprintf("0x%06x", off)
}
