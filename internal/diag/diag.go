// Package diag prints the handful of diagnostics that are always on,
// regardless of the debug build tag: the ones an operator needs even in a
// production build, because they mean BigMaac itself failed at something
// rather than a caller passing it a bad pointer.
package diag

import (
	"fmt"
	"os"

	"github.com/galaxy001/bigmaac-go/internal/debug"
)

// InitFailed reports that the library failed to reach the LOADED state.
func InitFailed(err error) {
	fmt.Fprintf(os.Stderr, "bigmaac: failed to initialize: %v\n", err)
}

// AttachFailed reports a failed backing-store attach or detach, with enough
// context (arena, requested range, live mapping count, and the free
// capacity remaining in each arena) to tell a kernel resource exhaustion
// (hit /proc/sys/vm/max_map_count or the open-file limit) apart from an
// arena that's simply full.
func AttachFailed(arena string, addr, size uintptr, activeMappings int64, fryFree, bigmaacFree uintptr, err error) {
	fmt.Fprintln(os.Stderr, "bigmaac:", debug.Dict("attach failed",
		"arena", arena,
		"addr", fmt.Sprintf("%#x", addr),
		"size", size,
		"active_mappings", activeMappings,
		"fry_free", fryFree,
		"bigmaac_free", bigmaacFree,
		"error", err,
	))
}

// OutOfMemory reports that an arena had no free block large enough to
// satisfy a request.
func OutOfMemory(arena string, size uintptr) {
	fmt.Fprintln(os.Stderr, "bigmaac:", debug.Dict("out of memory",
		"arena", arena,
		"requested", size,
	))
}

// UnknownPointer reports that Free or Realloc was called with a pointer
// this instance never handed out.
func UnknownPointer(addr uintptr) {
	fmt.Fprintf(os.Stderr, "bigmaac: free or realloc called on pointer that was never allocated: %#x\n", addr)
}
