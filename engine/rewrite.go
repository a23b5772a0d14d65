package engine

import (
	"encoding/binary"
	"net"

	"github.com/rbcollins/maglevrail/classify"
)

// Fixed Ethernet/IPv4 header offsets. The rewrite mutates the TX buffer
// in place rather than re-serialising through gopacket, since the
// resource model forbids allocation on the packet path after startup.
const (
	ethDstOffset = 0
	ethSrcOffset = 6
	ethHeaderLen = 14

	ipv4ChecksumOffset = 10
	ipv4SrcOffset      = 12
	ipv4DstOffset      = 16
)

// rewrite performs the Wire-direction header rewrite on buf, the TX
// slot's copy of the arriving frame: the outer Ethernet and IPv4
// source become the frame's own previous destination fields, the
// destination becomes the chosen backend's address, and the outer IPv4
// checksum is recomputed. GRE and the inner packet are left untouched.
//
// It returns false when the backend's MAC cannot be resolved, in which
// case the caller must give the TX slot back and treat the packet as
// dropped.
func (e *Engine) rewrite(result classify.Result, buf []byte) bool {
	backend := e.Routes.Resolve(result.FlowHash)

	mac := e.ARP.Lookup(backend.Target)
	if mac == nil {
		return false
	}

	var prevDstMAC net.HardwareAddr = make(net.HardwareAddr, 6)
	copy(prevDstMAC, buf[ethDstOffset:ethDstOffset+6])
	copy(buf[ethSrcOffset:ethSrcOffset+6], prevDstMAC)
	copy(buf[ethDstOffset:ethDstOffset+6], mac)

	ipStart := ethHeaderLen
	var prevDstIP [4]byte
	copy(prevDstIP[:], buf[ipStart+ipv4DstOffset:ipStart+ipv4DstOffset+4])
	copy(buf[ipStart+ipv4SrcOffset:ipStart+ipv4SrcOffset+4], prevDstIP[:])
	copy(buf[ipStart+ipv4DstOffset:ipStart+ipv4DstOffset+4], backend.Target.To4())

	ihl := int(result.OuterIPv4.IHL) * 4
	recomputeIPv4Checksum(buf[ipStart : ipStart+ihl])

	return true
}

// recomputeIPv4Checksum recomputes the IPv4 header checksum (the
// one's-complement sum of 16-bit words) in place. Header length, TTL,
// and identification are untouched by rewrite, so only source and
// destination contribute a changed checksum.
func recomputeIPv4Checksum(header []byte) {
	header[ipv4ChecksumOffset] = 0
	header[ipv4ChecksumOffset+1] = 0

	var sum uint32
	for i := 0; i+1 < len(header); i += 2 {
		sum += uint32(binary.BigEndian.Uint16(header[i : i+2]))
	}
	if len(header)%2 == 1 {
		sum += uint32(header[len(header)-1]) << 8
	}
	for sum>>16 != 0 {
		sum = sum&0xffff + sum>>16
	}
	binary.BigEndian.PutUint16(header[ipv4ChecksumOffset:], ^uint16(sum))
}
