// Command heapctl drives the tagheap allocator from the command line: a
// one-page demo, trace replay for fragmentation studies, and a benchmark
// harness against the Go allocator.
package main

func main() {
	execute()
}
