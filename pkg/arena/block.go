// Package arena implements the split/coalesce free-space allocator that
// backs a single file-backed mapping: a size-ordered max-heap of free
// blocks combined with an address-ordered doubly linked list, so that
// allocation can pick a well-fitting free block in O(log n) and freeing
// can find and merge with adjacent blocks in O(1).
package arena

// State is whether a Block is currently handed out to a caller or sitting
// in the free heap.
type State uint8

const (
	// InUse blocks are not in the free heap; State == Free iff the block is
	// reachable from the heap.
	InUse State = iota
	Free
)

func (s State) String() string {
	if s == Free {
		return "free"
	}
	return "in-use"
}

// Block is one contiguous range of an Arena's backing mapping. Blocks form
// an address-ordered doubly linked list (via Next/Prev) rooted at the
// Arena's dummy head sentinel, and free Blocks are additionally reachable
// from the Arena's size-ordered heap, where heapIndex is their position.
//
// Block records never live inside the range they describe: they are
// recycled through a sync.Pool on Go's own heap, so freeing a block can
// never recurse into the arena being freed.
type Block struct {
	Next, Prev *Block

	Addr uintptr
	Size uintptr
	State

	heapIndex int // -1 when not in the heap
}

// nextFree and prevFree report whether b's following or preceding list
// neighbor is itself a Free block. head is the arena's dummy sentinel, which
// is never Free, so prevFree reports false when b is the first block.
func (b *Block) nextFree() bool {
	return b.Next != nil && b.Next.State == Free
}

func (b *Block) prevFree(head *Block) bool {
	return b.Prev != head && b.Prev.State == Free
}

func unlink(b *Block) {
	b.Prev.Next = b.Next
	if b.Next != nil {
		b.Next.Prev = b.Prev
	}
}
