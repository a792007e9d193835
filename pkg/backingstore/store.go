//go:build linux

// Package backingstore manages the file-backed mmap regions that arena
// blocks are carved out of: reserving a contiguous address range up
// front, attaching a throwaway file to part of it on demand, and detaching
// that mapping again when the block is freed.
package backingstore

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"golang.org/x/sys/unix"

	"github.com/galaxy001/bigmaac-go/internal/debug"
)

// activeMappings counts the live mappings this package has made (address
// range reservations as well as attached file-backed mappings), for
// diagnostics (internal/diag) and for the error context bigmaac surfaces
// when an attach fails because the system is out of map slots.
var activeMappings int64

// ActiveMappings returns the number of live mappings counted by
// activeMappings.
func ActiveMappings() int64 { return atomic.LoadInt64(&activeMappings) }

// ReserveRange reserves size contiguous, inaccessible bytes of address
// space and returns its base address. Nothing is attached there yet; the
// range exists only so that later Attach calls have stable addresses to
// target with MAP_FIXED.
func ReserveRange(size uintptr) (uintptr, error) {
	addr, err := mmapRaw(0, size, unix.PROT_NONE, unix.MAP_ANON|unix.MAP_PRIVATE, -1, 0)
	if err != nil {
		return 0, fmt.Errorf("backingstore: reserve %d bytes: %w", size, err)
	}
	atomic.AddInt64(&activeMappings, 1)
	return addr, nil
}

// Attach backs [addr, addr+size) with a fresh, anonymous-in-effect file:
// a uniquely named temp file is created under template's directory,
// unlinked immediately so no directory entry survives the process,
// truncated to size, mapped MAP_SHARED|MAP_FIXED over addr, and then closed (the
// mapping keeps the underlying file alive).
//
// template is a CreateTemp-style path such as "/tmp/bigmaac-XXXXXX". Its
// directory is used literally, not through $TMPDIR, so a configured
// real-disk path stays on disk even when the process environment points
// $TMPDIR at a tmpfs — the reason this knob exists at all is to keep
// backing files off RAM-backed storage.
func Attach(addr, size uintptr, template string) error {
	dir, pattern := splitTemplate(template)

	f, err := os.CreateTemp(dir, pattern)
	if err != nil {
		return fmt.Errorf("backingstore: create backing file: %w", err)
	}
	name := f.Name()

	if err := os.Remove(name); err != nil {
		_ = f.Close()
		return fmt.Errorf("backingstore: unlink backing file %s: %w", name, err)
	}

	if err := f.Truncate(int64(size)); err != nil {
		_ = f.Close()
		return fmt.Errorf("backingstore: truncate backing file to %d: %w", size, err)
	}

	_, err = mmapRaw(addr, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED|unix.MAP_FIXED, int(f.Fd()), 0)
	closeErr := f.Close()
	if err != nil {
		return fmt.Errorf("backingstore: mmap %#x/%d (active mappings %d): %w", addr, size, ActiveMappings(), err)
	}
	if closeErr != nil {
		return fmt.Errorf("backingstore: close backing file: %w", closeErr)
	}

	atomic.AddInt64(&activeMappings, 1)
	debug.Log(nil, "backingstore.Attach", "addr=%#x size=%d active=%d", addr, size, ActiveMappings())

	return nil
}

// Detach remaps [addr, addr+size) back to an inaccessible anonymous
// mapping, releasing the backing file's pages without giving up the
// address range itself.
func Detach(addr, size uintptr) error {
	_, err := mmapRaw(addr, size, unix.PROT_NONE, unix.MAP_ANON|unix.MAP_PRIVATE|unix.MAP_FIXED, -1, 0)
	if err != nil {
		return fmt.Errorf("backingstore: detach %#x/%d: %w", addr, size, err)
	}

	atomic.AddInt64(&activeMappings, -1)
	debug.Log(nil, "backingstore.Detach", "addr=%#x size=%d active=%d", addr, size, ActiveMappings())

	return nil
}

// splitTemplate breaks a CreateTemp-style path into a directory and a
// pattern os.CreateTemp understands, translating the original C mkstemp
// convention of a trailing literal "XXXXXX" into Go's "*" wildcard.
func splitTemplate(template string) (dir, pattern string) {
	dir, pattern = filepath.Split(template)
	if dir == "" {
		dir = "."
	}

	switch {
	case strings.Contains(pattern, "*"):
	case strings.HasSuffix(pattern, "XXXXXX"):
		pattern = strings.TrimSuffix(pattern, "XXXXXX") + "*"
	default:
		pattern += "*"
	}

	return dir, pattern
}
