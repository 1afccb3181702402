// Package printer renders heap diagnostics as text or JSON.
package printer

import (
	"io"
	"iter"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/joshuapare/tagheap/heap"
)

// Format specifies the output format for printing.
type Format string

const (
	// FormatText outputs human-readable text format.
	FormatText Format = "text"

	// FormatJSON outputs JSON format.
	FormatJSON Format = "json"
)

// Options controls printing behavior.
type Options struct {
	// Format specifies output format (text, json).
	// Default: FormatText
	Format Format

	// Language selects digit grouping for sizes in text output.
	// Default: language.English
	Language language.Tag

	// Summary appends a one-line block/byte summary after the block list
	// (text format only).
	// Default: true
	Summary bool
}

// DefaultOptions returns sensible defaults for printing.
func DefaultOptions() Options {
	return Options{
		Format:   FormatText,
		Language: language.English,
		Summary:  true,
	}
}

// Source is anything that can enumerate arena blocks. *heap.Heap and
// *heap.Locked both qualify.
type Source interface {
	Blocks() iter.Seq[heap.Block]
	Capacity() int
}

// Printer handles formatted output of heap structures.
type Printer struct {
	opts   Options
	writer io.Writer
	num    *message.Printer
}

// New creates a new Printer writing to w.
//
// Example:
//
//	p := printer.New(os.Stdout, printer.DefaultOptions())
//	p.PrintBlocks(h)
func New(w io.Writer, opts Options) *Printer {
	if opts.Format == "" {
		opts.Format = FormatText
	}
	if opts.Language == language.Und {
		opts.Language = language.English
	}
	return &Printer{
		opts:   opts,
		writer: w,
		num:    message.NewPrinter(opts.Language),
	}
}

// PrintBlocks prints every block of src in address order.
func (p *Printer) PrintBlocks(src Source) error {
	if p.opts.Format == FormatJSON {
		return p.printBlocksJSON(src)
	}
	return p.printBlocksText(src)
}

// PrintFreeList prints free blocks in list order (head first).
func (p *Printer) PrintFreeList(blocks iter.Seq[heap.Block]) error {
	if p.opts.Format == FormatJSON {
		return p.printFreeListJSON(blocks)
	}
	return p.printFreeListText(blocks)
}

// PrintStats prints allocator statistics.
func (p *Printer) PrintStats(s heap.Stats) error {
	if p.opts.Format == FormatJSON {
		return p.printStatsJSON(s)
	}
	return p.printStatsText(s)
}
