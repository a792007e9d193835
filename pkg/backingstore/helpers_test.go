//go:build linux

package backingstore_test

import "unsafe"

func unsafeByteSlice(addr, size uintptr) []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(addr)), size)
}
