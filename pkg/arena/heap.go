package arena

import "container/heap"

// sizeHeap is an array-backed max-heap of Free blocks ordered by Size, with
// each Block's heapIndex kept in sync so a specific node can be rekeyed or
// removed by index in O(log n) instead of by linear scan. It implements
// container/heap.Interface so insert/remove/rekey reuse the standard
// library's sift routines.
type sizeHeap struct {
	blocks []*Block
}

var _ heap.Interface = (*sizeHeap)(nil)

func (h *sizeHeap) Len() int { return len(h.blocks) }

func (h *sizeHeap) Less(i, j int) bool { return h.blocks[i].Size > h.blocks[j].Size }

func (h *sizeHeap) Swap(i, j int) {
	h.blocks[i], h.blocks[j] = h.blocks[j], h.blocks[i]
	h.blocks[i].heapIndex = i
	h.blocks[j].heapIndex = j
}

func (h *sizeHeap) Push(x any) {
	b := x.(*Block)
	b.heapIndex = len(h.blocks)
	h.blocks = append(h.blocks, b)
}

func (h *sizeHeap) Pop() any {
	n := len(h.blocks)
	b := h.blocks[n-1]
	h.blocks[n-1] = nil
	h.blocks = h.blocks[:n-1]
	b.heapIndex = -1
	return b
}

func (h *sizeHeap) insert(b *Block) { heap.Push(h, b) }

// removeAt removes the block at heap position idx, wherever it is in the
// array, not just the root.
func (h *sizeHeap) removeAt(idx int) *Block { return heap.Remove(h, idx).(*Block) }

// fix restores heap order after the block at idx changed Size.
func (h *sizeHeap) fix(idx int) { heap.Fix(h, idx) }

// child returns the block at heap position i, or nil if the heap is
// smaller than that.
func (h *sizeHeap) child(i int) *Block {
	if i >= len(h.blocks) {
		return nil
	}
	return h.blocks[i]
}
