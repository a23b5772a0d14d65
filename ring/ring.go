// Package ring defines the capability set the steering engine needs
// from a kernel-bypass ring-descriptor library (netmap, AF_XDP, DPDK,
// ...). The real transport is out of scope here: this package only
// names the interfaces the engine consumes, plus a deterministic
// in-memory implementation (subpackage memring) used by tests.
package ring

// SlotMeta describes one ring slot.
type SlotMeta struct {
	Len int
}

// RXIterator yields received packet slots, in arrival order, across one
// or more rings of a descriptor. It holds an exclusive lock on the
// descriptor for its lifetime.
type RXIterator interface {
	// Next advances to the next RX slot and reports whether one was
	// available.
	Next() bool
	// Slot returns the current slot's metadata and backing bytes
	// (length Meta.Len of the len(bytes) capacity).
	Slot() (SlotMeta, []byte)
	// GiveBack rewinds the iterator by one slot: the slot last returned
	// by Next is re-presented by the next Next() call on a fresh
	// iterator. This is the backpressure primitive a forwarding pass
	// needs: a blocked pass must leave the RX side exactly as if the
	// un-placed slot had never been read.
	GiveBack()
	// Close releases the iterator's lock on the descriptor.
	Close()
}

// TXIterator yields writable packet slots across one or more rings of a
// descriptor.
type TXIterator interface {
	// Next acquires the next available TX slot and reports whether one
	// was available (false means the ring is full).
	Next() bool
	// Slot returns the current slot's metadata (Len is settable) and
	// mutable backing bytes.
	Slot() (*SlotMeta, []byte)
	// GiveBack releases the slot acquired by the last Next() without
	// committing it.
	GiveBack()
	// Close releases the iterator's lock on the descriptor.
	Close()
}

// Descriptor is a ring-descriptor handle: RX and/or TX rings against a
// named device, plus a readiness file handle for the OS multiplexing
// primitive.
type Descriptor interface {
	// RXIter locks the descriptor for RX iteration for the duration of
	// one pass.
	RXIter() RXIterator
	// TXIter locks the descriptor for TX iteration for the duration of
	// one pass.
	TXIter() TXIterator
	// CommitRX advances head to cur on every RX ring.
	CommitRX()
	// CommitTX advances head to cur on every TX ring.
	CommitTX()
	// Fd returns the descriptor's readiness file handle, usable with
	// the OS multiplexing primitive (poll/epoll/kqueue).
	Fd() int
}

// DeviceName appends the ring library's suffix convention to a base
// device name: "/R" RX-only, "/T" TX-only, "^" host-side.
func DeviceName(device, suffix string) string {
	return device + suffix
}
