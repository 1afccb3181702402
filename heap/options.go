package heap

import (
	"io"
	"log/slog"
	"os"

	"github.com/joshuapare/tagheap/internal/region"
)

// Runtime debug flag for allocation logging - controlled by TAGHEAP_LOG_ALLOC env var.
var logAlloc = os.Getenv("TAGHEAP_LOG_ALLOC") != ""

// defaultPageSize is used when a Reserver reports a page size the heap cannot
// work with.
const defaultPageSize = 4096

// Reserver acquires and returns the raw arena region.
//
// Reserve must return a zero-filled, contiguous region of exactly size bytes
// whose base is page aligned. Release receives the same slice back exactly once.
type Reserver interface {
	Reserve(size int) ([]byte, error)
	Release(region []byte) error
	PageSize() int
}

// osReserver reserves arenas straight from the operating system.
type osReserver struct{}

func (osReserver) Reserve(size int) ([]byte, error) { return region.Reserve(size) }
func (osReserver) Release(data []byte) error       { return region.Release(data) }
func (osReserver) PageSize() int                   { return region.PageSize() }

// OSReserver returns the default Reserver backed by anonymous OS mappings.
func OSReserver() Reserver {
	return osReserver{}
}

// Options configures a Heap. A nil *Options selects the defaults.
type Options struct {
	// Logger receives debug records for refused operations.
	// Default: discard, or a stderr debug logger when TAGHEAP_LOG_ALLOC is set.
	Logger *slog.Logger

	// Reserver supplies the arena region.
	// Default: OSReserver().
	Reserver Reserver

	// DefaultPolicy is the policy used by AllocDefault.
	// Default: FirstFit.
	DefaultPolicy Policy
}

func (o *Options) withDefaults() Options {
	var out Options
	if o != nil {
		out = *o
	}
	if out.Logger == nil {
		out.Logger = defaultLogger()
	}
	if out.Reserver == nil {
		out.Reserver = osReserver{}
	}
	return out
}

func defaultLogger() *slog.Logger {
	if logAlloc {
		return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
