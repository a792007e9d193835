package bigmaac

import (
	"unsafe"

	"github.com/galaxy001/bigmaac-go/internal/diag"
	"github.com/galaxy001/bigmaac-go/internal/policy"
	"github.com/galaxy001/bigmaac-go/pkg/arena"
	"github.com/galaxy001/bigmaac-go/pkg/backingstore"
	"github.com/galaxy001/bigmaac-go/pkg/xunsafe"
)

// Malloc allocates size bytes, routing the request to the fry or bigmaac
// arena if it qualifies under the configured thresholds, and to Go's own
// allocator otherwise. A size of zero returns (nil, nil).
func Malloc(size uintptr) (unsafe.Pointer, error) {
	if size == 0 {
		return nil, nil
	}

	if err := global.ensureLoaded(); err != nil {
		return systemAlloc(size), nil
	}

	global.mu.Lock()
	class := global.pol.Classify(size)
	if class == policy.System {
		global.mu.Unlock()
		return systemAlloc(size), nil
	}
	ptr, err := global.allocManaged(class, size)
	global.mu.Unlock()

	if err != nil {
		diag.OutOfMemory(class.String(), size)
		return nil, err
	}
	return ptr, nil
}

// Calloc allocates space for count objects of size bytes each, zeroed.
func Calloc(count, size uintptr) (unsafe.Pointer, error) {
	if count == 0 || size == 0 {
		return nil, nil
	}

	if err := global.ensureLoaded(); err != nil {
		return systemCalloc(count, size), nil
	}

	total := count * size

	global.mu.Lock()
	class := global.pol.Classify(total)
	if class == policy.System {
		global.mu.Unlock()
		return systemCalloc(count, size), nil
	}
	ptr, err := global.allocManaged(class, total)
	global.mu.Unlock()

	if err != nil {
		diag.OutOfMemory(class.String(), total)
		return nil, err
	}

	if class == policy.Fry {
		// A fresh bigmaac mapping already reads as zero; only the shared
		// fry arena can hand back bytes a previous tenant wrote.
		xunsafe.Clear((*byte)(ptr), total)
	}

	return ptr, nil
}

// Reallocarray is Realloc(ptr, count*size), matching the original
// implementation's own forwarding (it does not guard against overflow).
func Reallocarray(ptr unsafe.Pointer, count, size uintptr) (unsafe.Pointer, error) {
	return Realloc(ptr, count*size)
}

// Realloc resizes the allocation at ptr to size bytes, preserving its
// contents up to the smaller of the old and new sizes. A nil ptr behaves
// like Malloc. A non-nil ptr with size zero also behaves like Malloc,
// without freeing ptr first — the host C library contract leaves this case
// unspecified, and the original implementation does not free it either.
func Realloc(ptr unsafe.Pointer, size uintptr) (unsafe.Pointer, error) {
	if ptr == nil || size == 0 {
		return Malloc(size)
	}

	if err := global.ensureLoaded(); err != nil {
		return nil, err
	}

	addr := uintptr(ptr)

	global.mu.Lock()
	if !global.managed(addr) {
		global.mu.Unlock()
		return reallocSystem(addr, size)
	}

	a := global.arenaFor(addr)
	b, ok := a.Lookup(addr)
	if !ok || b.State != arena.InUse {
		global.mu.Unlock()
		diag.UnknownPointer(addr)
		return nil, ErrUnknownPointer
	}

	if b.Size >= size {
		global.mu.Unlock()
		return ptr, nil
	}

	oldSize := b.Size
	global.mu.Unlock()

	newPtr, err := Malloc(size)
	if err != nil {
		return nil, err
	}

	xunsafe.Copy((*byte)(newPtr), (*byte)(ptr), min(oldSize, size))
	Free(ptr)

	return newPtr, nil
}

// allocManaged rounds size to its class's grain and carves that many bytes
// out of the appropriate arena, attaching a dedicated backing mapping for
// bigmaac requests. Callers must hold mu.
func (in *instance) allocManaged(class policy.Class, size uintptr) (unsafe.Pointer, error) {
	size = in.pol.Round(class, size)

	a := in.fries
	if class == policy.Bigmaac {
		a = in.bigmaacs
	}

	b, err := a.Alloc(size)
	if err != nil {
		return nil, err
	}

	if class == policy.Bigmaac {
		if err := backingstore.Attach(b.Addr, b.Size, in.template); err != nil {
			_, _ = a.Free(b.Addr)
			fryFree, bigmaacFree := in.freeCapacities()
			diag.AttachFailed(a.Name, b.Addr, b.Size, backingstore.ActiveMappings(), fryFree, bigmaacFree, err)
			return nil, err
		}
	}

	return unsafe.Pointer(b.Addr), nil
}

// Free releases ptr. A pointer inside either arena's range that names no
// in-use block is reported via internal/diag and otherwise ignored, matching
// the original implementation's behavior on an unrecognized pointer. A
// pointer outside both ranges is dropped from the system-allocation pin
// table, silently, whether or not it was ever there.
func Free(ptr unsafe.Pointer) {
	if ptr == nil {
		return
	}
	addr := uintptr(ptr)

	if err := global.ensureLoaded(); err != nil {
		systemFree(addr)
		return
	}

	global.mu.Lock()
	if !global.managed(addr) {
		global.mu.Unlock()
		systemFree(addr)
		return
	}

	a := global.arenaFor(addr)
	b, ok := a.Lookup(addr)
	if !ok || b.State != arena.InUse {
		global.mu.Unlock()
		diag.UnknownPointer(addr)
		return
	}

	if a == global.bigmaacs {
		if err := backingstore.Detach(b.Addr, b.Size); err != nil {
			fryFree, bigmaacFree := global.freeCapacities()
			global.mu.Unlock()
			diag.AttachFailed(a.Name, b.Addr, b.Size, backingstore.ActiveMappings(), fryFree, bigmaacFree, err)
			return
		}
	}

	_, err := a.Free(addr)
	global.mu.Unlock()

	if err != nil {
		diag.UnknownPointer(addr)
	}
}

func reallocSystem(addr uintptr, size uintptr) (unsafe.Pointer, error) {
	global.mu.Lock()
	old, ok := global.systemPins[addr]
	global.mu.Unlock()
	if !ok {
		return nil, ErrUnknownPointer
	}

	newPtr, err := Malloc(size)
	if err != nil {
		return nil, err
	}

	xunsafe.Copy((*byte)(newPtr), (*byte)(unsafe.Pointer(&old[0])), min(uintptr(len(old)), size))
	systemFree(addr)

	return newPtr, nil
}

func systemAlloc(size uintptr) unsafe.Pointer {
	buf := make([]byte, size)
	ptr := unsafe.Pointer(&buf[0])

	global.mu.Lock()
	global.systemPins[uintptr(ptr)] = buf
	global.mu.Unlock()

	return ptr
}

func systemCalloc(count, size uintptr) unsafe.Pointer {
	return systemAlloc(count * size) // make([]byte, n) is already zeroed
}

func systemFree(addr uintptr) {
	global.mu.Lock()
	delete(global.systemPins, addr)
	global.mu.Unlock()
}
