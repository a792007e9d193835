//go:build linux

package backingstore

import (
	"golang.org/x/sys/unix"
)

// mmapRaw calls mmap(2) directly via Syscall6, the way the Go runtime's own
// mmap_fixed helper does, because unix.Mmap's high-level wrapper has no way
// to request a specific target address. A zero addr with no MAP_FIXED flag
// behaves like a normal "anywhere" mapping, which is how ReserveRange uses
// it; Attach and Detach always pass MAP_FIXED.
func mmapRaw(addr, length uintptr, prot, flags, fd int, offset int64) (uintptr, error) {
	ret, _, errno := unix.Syscall6(
		unix.SYS_MMAP,
		addr,
		length,
		uintptr(prot),
		uintptr(flags),
		uintptr(fd),
		uintptr(offset),
	)
	if errno != 0 {
		return 0, errno
	}
	return ret, nil
}
