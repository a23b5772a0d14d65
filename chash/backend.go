package chash

import "net"

// Backend is a single forwarding target: a stable name, a live flag, and
// the permutation it claims slots of the lookup table with. Backends are
// never removed from the middle of a Table's backend list — only
// appended, or retired by clearing Live and popping from the tail — so
// that existing Lookup indices remain stable for the lifetime of a
// Table.
type Backend struct {
	Name string
	Live bool
	// Target is the backend's IPv4 address. Several Backends may share
	// the same Target (e.g. to weight traffic toward it by duplicating
	// the name under a different alias).
	Target net.IP

	permutation []uint32
}

// NewBackend constructs a live Backend for the given name and target.
func NewBackend(name string, target net.IP) *Backend {
	return &Backend{
		Name:   name,
		Live:   true,
		Target: target.To4(),
	}
}
