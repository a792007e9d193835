package arena

import (
	"errors"

	"github.com/galaxy001/bigmaac-go/internal/debug"
	"github.com/galaxy001/bigmaac-go/internal/xsync"
)

// ErrOutOfMemory is returned by Alloc when no free block is large enough to
// satisfy the request, even after considering the split candidates.
var ErrOutOfMemory = errors.New("arena: no free block large enough")

// ErrUnknownPointer is returned by Free when addr does not name a block
// this Arena currently has in use.
var ErrUnknownPointer = errors.New("arena: pointer not managed by this arena")

// Arena manages one contiguous, file-backed address range as a sequence of
// non-overlapping Blocks. Free blocks are tracked by size in a heap for
// allocation and all blocks are tracked by address in a doubly linked list
// for O(1) neighbor coalescing on free.
//
// Arena holds no lock of its own: every exported method assumes the caller
// already holds whatever mutex protects this Arena's state, since in
// practice a single process-wide lock protects both the fry and bigmaac
// arenas together (see pkg/bigmaac).
type Arena struct {
	// Name identifies this arena in debug/diagnostic output ("fry" or
	// "bigmaac").
	Name string

	head  Block // dummy sentinel: always InUse, Size 0, never freed
	heap  sizeHeap
	index *addrIndex
	pool  *xsync.Pool[Block]
}

// New creates an Arena managing [base, base+size) as a single free block.
func New(name string, base, size uintptr) *Arena {
	a := &Arena{
		Name:  name,
		index: newAddrIndex(),
		pool: &xsync.Pool[Block]{
			Reset: func(b *Block) { *b = Block{} },
		},
	}
	a.head.State = InUse
	a.head.heapIndex = -1

	first := a.newBlock(base, size, Free)
	a.head.Next = first
	first.Prev = &a.head

	a.heap.insert(first)
	a.index.set(base, first)

	return a
}

func (a *Arena) newBlock(addr, size uintptr, state State) *Block {
	b := a.pool.Get()
	b.Addr, b.Size, b.State, b.heapIndex = addr, size, state, -1
	return b
}

// Used returns the total size of all in-use blocks.
func (a *Arena) Used() uintptr {
	var used uintptr
	for b := a.head.Next; b != nil; b = b.Next {
		if b.State == InUse {
			used += b.Size
		}
	}
	return used
}

// Alloc finds a free block of at least size bytes and marks it in-use,
// splitting off the remainder if the block is larger than needed.
//
// Among the free heap's root and its two children, Alloc prefers the
// smallest one that still qualifies, so a request that a small free block
// could satisfy doesn't fragment the single largest chunk in the arena.
func (a *Arena) Alloc(size uintptr) (*Block, error) {
	if a.heap.Len() == 0 {
		return nil, ErrOutOfMemory
	}

	free := a.heap.child(0)
	if free.Size < size {
		return nil, ErrOutOfMemory
	}

	if left := a.heap.child(1); left != nil && left.Size >= size {
		free = left
	}
	if right := a.heap.child(2); right != nil && right.Size >= size && right.Size < free.Size {
		free = right
	}

	if free.Size == size {
		a.heap.removeAt(free.heapIndex)
		free.State = InUse
		debug.Log(nil, "arena.Alloc", "%s: exact fit addr=%#x size=%d", a.Name, free.Addr, size)
		return free, nil
	}

	origAddr := free.Addr
	used := a.newBlock(origAddr, size, InUse)
	used.Prev = free.Prev
	used.Next = free
	free.Prev.Next = used
	free.Prev = used

	free.Addr = origAddr + size
	free.Size -= size

	a.index.set(origAddr, used)
	a.index.set(free.Addr, free)
	a.heap.fix(free.heapIndex)

	debug.Log(nil, "arena.Alloc", "%s: split addr=%#x size=%d remaining=%#x/%d",
		a.Name, used.Addr, size, free.Addr, free.Size)

	return used, nil
}

// Free returns the in-use block at addr to the free heap, coalescing it
// with an address-adjacent free neighbor where one exists. It reports
// ErrUnknownPointer if addr does not name a block currently in use.
func (a *Arena) Free(addr uintptr) (*Block, error) {
	n, ok := a.index.get(addr)
	if !ok || n.State != InUse {
		return nil, ErrUnknownPointer
	}

	nextFree := n.nextFree()
	prevFree := n.prevFree(&a.head)

	switch {
	case nextFree && prevFree:
		prev, next := n.Prev, n.Next

		a.index.delete(n.Addr)
		a.index.delete(prev.Addr)
		n.Size += prev.Size
		n.Addr = prev.Addr
		unlink(prev)
		a.heap.removeAt(prev.heapIndex)
		a.pool.Put(prev)

		a.index.delete(next.Addr)
		next.Size += n.Size
		next.Addr = n.Addr
		a.index.set(next.Addr, next)
		a.heap.fix(next.heapIndex)
		unlink(n)
		a.pool.Put(n)

		debug.Log(nil, "arena.Free", "%s: coalesce both neighbors addr=%#x size=%d", a.Name, next.Addr, next.Size)
		return next, nil

	case nextFree:
		next := n.Next

		a.index.delete(n.Addr)
		a.index.delete(next.Addr)
		next.Size += n.Size
		next.Addr = n.Addr
		a.index.set(next.Addr, next)
		a.heap.fix(next.heapIndex)
		unlink(n)
		a.pool.Put(n)

		debug.Log(nil, "arena.Free", "%s: coalesce next addr=%#x size=%d", a.Name, next.Addr, next.Size)
		return next, nil

	case prevFree:
		prev := n.Prev

		a.index.delete(n.Addr)
		prev.Size += n.Size
		unlink(n)
		a.heap.fix(prev.heapIndex)
		a.pool.Put(n)

		debug.Log(nil, "arena.Free", "%s: coalesce prev addr=%#x size=%d", a.Name, prev.Addr, prev.Size)
		return prev, nil

	default:
		n.State = Free
		a.heap.insert(n)

		debug.Log(nil, "arena.Free", "%s: standalone addr=%#x size=%d", a.Name, n.Addr, n.Size)
		return n, nil
	}
}

// Lookup returns the block currently at addr, whatever its state.
func (a *Arena) Lookup(addr uintptr) (*Block, bool) {
	return a.index.get(addr)
}
