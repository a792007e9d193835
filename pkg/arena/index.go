package arena

// addrIndex maps a block's current address to its record, replacing the
// linear address-ordered list walk the original algorithm used to answer
// "which block owns this pointer". Callers serialize access to this
// alongside the rest of the Arena's state.
type addrIndex struct {
	blocks map[uintptr]*Block
}

func newAddrIndex() *addrIndex {
	return &addrIndex{blocks: make(map[uintptr]*Block)}
}

func (x *addrIndex) get(addr uintptr) (*Block, bool) {
	b, ok := x.blocks[addr]
	return b, ok
}

func (x *addrIndex) set(addr uintptr, b *Block) { x.blocks[addr] = b }

func (x *addrIndex) delete(addr uintptr) { delete(x.blocks, addr) }
