package sim

import "strconv"

// PacketID identifies a packet for its lifetime. IDs are handed out by a
// single counter per network and are never reused within a run.
type PacketID uint64

func (id PacketID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}

// PacketIDAllocator hands out increasing packet IDs starting at 1.
type PacketIDAllocator struct {
	last uint64
}

// Next returns a fresh PacketID.
func (a *PacketIDAllocator) Next() PacketID {
	a.last++
	return PacketID(a.last)
}

// Issued returns how many IDs have been handed out.
func (a *PacketIDAllocator) Issued() uint64 {
	return a.last
}
