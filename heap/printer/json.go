package printer

import (
	"encoding/json"
	"iter"
	"slices"

	"github.com/joshuapare/tagheap/heap"
)

// jsonArena represents the block list in JSON format.
type jsonArena struct {
	Capacity int          `json:"capacity"`
	Blocks   []heap.Block `json:"blocks"`
}

// collect never returns nil so empty lists encode as [].
func collect(blocks iter.Seq[heap.Block]) []heap.Block {
	return slices.AppendSeq([]heap.Block{}, blocks)
}

func (p *Printer) encode(v any) error {
	enc := json.NewEncoder(p.writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (p *Printer) printBlocksJSON(src Source) error {
	return p.encode(jsonArena{Capacity: src.Capacity(), Blocks: collect(src.Blocks())})
}

func (p *Printer) printFreeListJSON(blocks iter.Seq[heap.Block]) error {
	return p.encode(collect(blocks))
}

func (p *Printer) printStatsJSON(s heap.Stats) error {
	return p.encode(s)
}
