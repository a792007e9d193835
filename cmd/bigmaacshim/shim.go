// Command bigmaacshim is the C ABI surface an LD_PRELOAD-style
// interposition mechanism links against. It owns no policy of its own: it
// converts between C and Go calling conventions and forwards straight to
// pkg/bigmaac. Building and wiring an actual LD_PRELOAD shared object is
// out of scope here; this package only supplies the symbols such a build
// would export.
package main

/*
#include <stddef.h>
*/
import "C"

import (
	"unsafe"

	"github.com/galaxy001/bigmaac-go/pkg/bigmaac"
)

//export bigmaac_malloc
func bigmaac_malloc(size C.size_t) unsafe.Pointer {
	ptr, err := bigmaac.Malloc(uintptr(size))
	if err != nil {
		return nil
	}
	return ptr
}

//export bigmaac_calloc
func bigmaac_calloc(count, size C.size_t) unsafe.Pointer {
	ptr, err := bigmaac.Calloc(uintptr(count), uintptr(size))
	if err != nil {
		return nil
	}
	return ptr
}

//export bigmaac_realloc
func bigmaac_realloc(ptr unsafe.Pointer, size C.size_t) unsafe.Pointer {
	out, err := bigmaac.Realloc(ptr, uintptr(size))
	if err != nil {
		return nil
	}
	return out
}

//export bigmaac_reallocarray
func bigmaac_reallocarray(ptr unsafe.Pointer, count, size C.size_t) unsafe.Pointer {
	out, err := bigmaac.Reallocarray(ptr, uintptr(count), uintptr(size))
	if err != nil {
		return nil
	}
	return out
}

//export bigmaac_free
func bigmaac_free(ptr unsafe.Pointer) {
	bigmaac.Free(ptr)
}

func main() {}
