// Package flowhash computes the 64-bit flow-identity hash used to pick
// a backend for GRE-tunnelled traffic: SipHash of the inner IPv4
// 3-tuple (source, destination, next-level protocol).
//
// Ports are deliberately excluded, unlike the Maglev paper's 5-tuple —
// doing so avoids parsing TCP/UDP headers on the hot path.
//
// Keeps the "fold fixed-width fields into one hasher" structure of a
// CRC32-based tuple hasher, but switches the hash primitive to match
// the consistent-hash table's own SipHash choice.
package flowhash

import (
	"net"

	"github.com/dchest/siphash"
)

// key is the all-zero SipHash key, matching chash's permutation seeds.
var key = make([]byte, 16)

// Hash returns the 64-bit SipHash of (srcIP, dstIP, proto), each IPv4
// address folded to its 4-byte form.
func Hash(srcIP, dstIP net.IP, proto uint8) uint64 {
	h := siphash.New(key)
	h.Write(srcIP.To4())
	h.Write(dstIP.To4())
	h.Write([]byte{proto})
	return h.Sum64()
}
