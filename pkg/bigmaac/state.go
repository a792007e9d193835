// Package bigmaac is the Go-native core of BigMaac: a malloc/calloc/
// realloc/reallocarray/free replacement that routes large requests to
// file-backed mmap regions instead of the general-purpose heap.
//
// It never shadows Go's own runtime allocator — small requests fall
// straight through to make/new, which this package treats as "the real
// allocator" the way the original implementation treats dlsym-resolved
// libc symbols.
package bigmaac

import (
	"os"
	"sync"

	"github.com/galaxy001/bigmaac-go/internal/diag"
	"github.com/galaxy001/bigmaac-go/internal/policy"
	"github.com/galaxy001/bigmaac-go/pkg/arena"
	"github.com/galaxy001/bigmaac-go/pkg/backingstore"
	"github.com/galaxy001/bigmaac-go/pkg/config"
)

// loadState mirrors the original implementation's load_status enum. There
// is no dynamic symbol table to resolve in Go, so loadingMemFuncs now
// covers reading and validating configuration instead of dlsym lookups,
// and loadingLibrary covers reserving address space and building the
// arenas; the state names are kept so the transitions still read the same
// way.
type loadState int32

const (
	notLoaded loadState = iota
	loadingMemFuncs
	loadingLibrary
	loaded
	libraryFail
)

func (s loadState) String() string {
	switch s {
	case loadingMemFuncs:
		return "loading-mem-funcs"
	case loadingLibrary:
		return "loading-library"
	case loaded:
		return "loaded"
	case libraryFail:
		return "library-fail"
	default:
		return "not-loaded"
	}
}

// instance holds all of BigMaac's process-wide state. A single mutex
// guards both arenas, the load-state machine, and the system-allocation
// pin table, matching the original's one coarse-grained global lock.
type instance struct {
	mu      sync.Mutex
	state   loadState
	failErr error

	pol      policy.Policy
	template string

	fries, bigmaacs         *arena.Arena
	baseFries, endFries     uintptr
	baseBigmaac, endBigmaac uintptr

	// systemPins keeps a live Go reference to every outstanding
	// system-class allocation, keyed by address, so the garbage collector
	// doesn't reclaim memory a caller is still holding a raw pointer to.
	systemPins map[uintptr][]byte
}

var global = &instance{systemPins: make(map[uintptr][]byte)}

// load performs the one-time setup sequence: read and validate
// configuration, reserve one contiguous address range for both arenas,
// attach the fry arena's backing file up front (bigmaac mappings attach
// lazily, one per allocation), and create both arenas. The caller must
// hold mu.
func (in *instance) load() error {
	in.state = loadingMemFuncs

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		in.state = libraryFail
		in.failErr = err
		diag.InitFailed(err)
		return err
	}

	in.pol = policy.Policy{
		MinFry:     cfg.MinFrySize,
		MinBigmaac: cfg.MinBigmaacSize,
		FryGrain:   cfg.FryGrain,
		PageSize:   uintptr(os.Getpagesize()),
	}
	in.template = cfg.Template

	in.state = loadingLibrary

	total := cfg.SizeFries + cfg.SizeBigmaac
	base, err := backingstore.ReserveRange(total)
	if err != nil {
		in.state = libraryFail
		in.failErr = err
		diag.InitFailed(err)
		return err
	}

	in.baseFries = base
	in.endFries = base + cfg.SizeFries
	in.baseBigmaac = in.endFries
	in.endBigmaac = base + total

	if err := backingstore.Attach(in.baseFries, cfg.SizeFries, in.template); err != nil {
		in.state = libraryFail
		in.failErr = err
		diag.InitFailed(err)
		return err
	}

	in.fries = arena.New("fry", in.baseFries, cfg.SizeFries)
	in.bigmaacs = arena.New("bigmaac", in.baseBigmaac, cfg.SizeBigmaac)

	in.state = loaded
	return nil
}

// ensureLoaded triggers load() the first time any entry point is called,
// and is a no-op afterwards. Because the whole sequence runs under mu, a
// concurrent caller simply blocks until it finishes; there is no window in
// which another goroutine can observe loadingMemFuncs or loadingLibrary
// through this path, unlike the original's real dlsym re-entrancy hazard.
func (in *instance) ensureLoaded() error {
	in.mu.Lock()
	defer in.mu.Unlock()

	switch in.state {
	case loaded:
		return nil
	case libraryFail:
		return in.failErr
	case notLoaded:
		return in.load()
	default:
		return nil
	}
}

// arenaFor returns the arena that owns addr, matching the original's
// `ptr < base_bigmaac ? fries : bigmaacs` split. Callers must hold mu and
// must already know addr lies in [baseFries, endBigmaac).
func (in *instance) arenaFor(addr uintptr) *arena.Arena {
	if addr < in.baseBigmaac {
		return in.fries
	}
	return in.bigmaacs
}

// managed reports whether addr falls inside either arena's range. Callers
// must hold mu.
func (in *instance) managed(addr uintptr) bool {
	return addr >= in.baseFries && addr < in.endBigmaac
}

// freeCapacities returns the bytes still unallocated in each arena, for the
// context a failed attach/detach reports alongside the live mapping count.
// Callers must hold mu.
func (in *instance) freeCapacities() (fry, bigmaac uintptr) {
	fry = (in.endFries - in.baseFries) - in.fries.Used()
	bigmaac = (in.endBigmaac - in.baseBigmaac) - in.bigmaacs.Used()
	return fry, bigmaac
}
