// Command benchreport turns `go test -bench` output for the heap package into
// a markdown table comparing the fit policies with the Go allocator.
//
//	go test -bench . -benchmem ./heap | go run ./scripts -output BENCH.md
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"
)

// BenchmarkResult is one parsed benchmark line.
type BenchmarkResult struct {
	Name        string
	Workload    string // e.g. "AllocRelease_Steady"
	Allocator   string // "first-fit", "best-fit" or "make"
	Iterations  int
	NsPerOp     float64
	BytesPerOp  int64
	AllocsPerOp int64
}

// Row compares both policies on one workload against the make baseline.
type Row struct {
	Workload string
	FirstFit *BenchmarkResult
	BestFit  *BenchmarkResult
}

var (
	inputFile  = flag.String("input", "", "Input file with benchmark output (stdin if not specified)")
	outputFile = flag.String("output", "", "Output markdown file (stdout if not specified)")
	quiet      = flag.Bool("quiet", false, "Suppress progress output")
)

// BenchmarkAllocRelease_Steady/first-fit-8    1000000    52.1 ns/op    0 B/op    0 allocs/op
var benchmarkRegex = regexp.MustCompile(
	`^(Benchmark\S+)\s+(\d+)\s+([\d.]+)\s+ns/op(?:\s+(\d+)\s+B/op)?(?:\s+(\d+)\s+allocs/op)?`,
)

func main() {
	flag.Parse()

	var in io.Reader = os.Stdin
	if *inputFile != "" {
		f, err := os.Open(*inputFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening input file: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		in = f
	}

	results := parseBenchmarks(bufio.NewScanner(in))
	if !*quiet {
		fmt.Fprintf(os.Stderr, "Parsed %d benchmark results\n", len(results))
	}

	report := generateMarkdownReport(results, time.Now())

	if *outputFile == "" {
		fmt.Fprint(os.Stdout, report)
		return
	}
	if err := os.WriteFile(*outputFile, []byte(report), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing output file: %v\n", err)
		os.Exit(1)
	}
	if !*quiet {
		fmt.Fprintf(os.Stderr, "Report written to %s\n", *outputFile)
	}
}

func parseBenchmarks(scanner *bufio.Scanner) []BenchmarkResult {
	var results []BenchmarkResult

	for scanner.Scan() {
		line := scanner.Text()

		// Accept `go test -json` events as well as plain output.
		var event struct{ Output string }
		if err := json.Unmarshal([]byte(line), &event); err == nil && event.Output != "" {
			line = event.Output
		}

		m := benchmarkRegex.FindStringSubmatch(strings.TrimSpace(line))
		if m == nil {
			continue
		}

		r := BenchmarkResult{Name: m[1]}
		r.Iterations, _ = strconv.Atoi(m[2])
		r.NsPerOp, _ = strconv.ParseFloat(m[3], 64)
		if m[4] != "" {
			r.BytesPerOp, _ = strconv.ParseInt(m[4], 10, 64)
		}
		if m[5] != "" {
			r.AllocsPerOp, _ = strconv.ParseInt(m[5], 10, 64)
		}
		r.Workload, r.Allocator = splitName(r.Name)
		results = append(results, r)
	}

	return results
}

// splitName splits "BenchmarkAllocRelease_Steady/best-fit-8" into the
// workload and the allocator, dropping the GOMAXPROCS suffix.
func splitName(name string) (workload, allocator string) {
	name = strings.TrimPrefix(name, "Benchmark")
	if i := strings.LastIndex(name, "-"); i > 0 {
		if _, err := strconv.Atoi(name[i+1:]); err == nil {
			name = name[:i]
		}
	}
	workload, allocator, ok := strings.Cut(name, "/")
	if !ok {
		// Single-allocator benchmarks such as BenchmarkMake.
		return name, strings.ToLower(name)
	}
	return workload, allocator
}

func buildRows(results []BenchmarkResult) ([]Row, *BenchmarkResult) {
	var baseline *BenchmarkResult
	byWorkload := map[string]*Row{}

	for i := range results {
		r := &results[i]
		if r.Allocator == "make" {
			baseline = r
			continue
		}
		row := byWorkload[r.Workload]
		if row == nil {
			row = &Row{Workload: r.Workload}
			byWorkload[r.Workload] = row
		}
		switch r.Allocator {
		case "first-fit":
			row.FirstFit = r
		case "best-fit":
			row.BestFit = r
		}
	}

	rows := make([]Row, 0, len(byWorkload))
	for _, row := range byWorkload {
		rows = append(rows, *row)
	}
	slices.SortFunc(rows, func(a, b Row) int { return strings.Compare(a.Workload, b.Workload) })
	return rows, baseline
}

func generateMarkdownReport(results []BenchmarkResult, now time.Time) string {
	var sb strings.Builder
	rows, baseline := buildRows(results)

	sb.WriteString("# Allocator Benchmark Report\n\n")
	fmt.Fprintf(&sb, "Generated: %s\n\n", now.Format("2006-01-02 15:04:05"))

	if baseline != nil {
		fmt.Fprintf(&sb, "Baseline `make([]byte)`: %s ns/op, %s, %d allocs/op\n\n",
			formatNumber(baseline.NsPerOp), formatBytes(baseline.BytesPerOp), baseline.AllocsPerOp)
	}

	sb.WriteString("| Workload | first-fit (ns/op) | best-fit (ns/op) | best/first | vs make |\n")
	sb.WriteString("|----------|-------------------|------------------|------------|---------|\n")

	for _, row := range rows {
		ff, bf := "*N/A*", "*N/A*"
		ratio, vsMake := "-", "-"
		if row.FirstFit != nil {
			ff = formatNumber(row.FirstFit.NsPerOp)
		}
		if row.BestFit != nil {
			bf = formatNumber(row.BestFit.NsPerOp)
		}
		if row.FirstFit != nil && row.BestFit != nil && row.FirstFit.NsPerOp > 0 {
			ratio = fmt.Sprintf("%.2fx", row.BestFit.NsPerOp/row.FirstFit.NsPerOp)
		}
		if baseline != nil && row.FirstFit != nil && row.FirstFit.NsPerOp > 0 {
			vsMake = fmt.Sprintf("%.2fx", baseline.NsPerOp/row.FirstFit.NsPerOp)
		}
		fmt.Fprintf(&sb, "| %s | %s | %s | %s | %s |\n", row.Workload, ff, bf, ratio, vsMake)
	}

	sb.WriteString("\n## Notes\n\n")
	sb.WriteString("- **best/first > 1.0**: best-fit is slower, it always scans the whole free list\n")
	sb.WriteString("- **vs make > 1.0**: first-fit beats the Go allocator on this workload\n")

	return sb.String()
}

func formatNumber(n float64) string {
	switch {
	case n >= 1000000:
		return fmt.Sprintf("%.2fM", n/1000000)
	case n >= 1000:
		return fmt.Sprintf("%.1fK", n/1000)
	}
	return fmt.Sprintf("%.1f", n)
}

func formatBytes(b int64) string {
	switch {
	case b >= 1024*1024:
		return fmt.Sprintf("%.2fMB", float64(b)/(1024*1024))
	case b >= 1024:
		return fmt.Sprintf("%.1fKB", float64(b)/1024)
	}
	return fmt.Sprintf("%dB", b)
}
