// Package classify parses an Ethernet frame far enough to decide its
// routing Direction, and — for GRE-tunnelled IPv4 — derives the flow
// hash used to pick a backend.
package classify

import (
	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"

	"github.com/rbcollins/maglevrail/flowhash"
	ilog "github.com/rbcollins/maglevrail/x/log"
)

var logger = ilog.Logger.With().Str("component", "classify").Logger()

// Direction is the routing decision for one packet.
type Direction int

const (
	// Destination crosses the packet over to the opposite ring
	// (non-GRE IPv4, ARP, IPv6, anything that isn't IPv4-in-GRE).
	Destination Direction = iota
	// Wire steers the packet out the wire-TX ring with a rewritten
	// outer header (GRE-encapsulated IPv4).
	Wire
	// Drop discards the packet: an unrecognised GRE protocol type, or a
	// GRE payload that fails to parse.
	Drop
)

func (d Direction) String() string {
	switch d {
	case Destination:
		return "destination"
	case Wire:
		return "wire"
	case Drop:
		return "drop"
	default:
		return "unknown"
	}
}

// greProtocolIPv4 is the GRE "protocol type" field value for an
// encapsulated IPv4 packet (ethertype 0x0800).
const greProtocolIPv4 = 0x0800

// Result is the outcome of classifying one frame.
type Result struct {
	Direction Direction

	// The following are only meaningful when Direction == Wire.

	// FlowHash is the 64-bit SipHash of the inner IPv4 3-tuple (source,
	// destination, next-level protocol); ports are deliberately
	// excluded.
	FlowHash uint64
	// OuterEthernet and OuterIPv4 are the decoded outer headers, handed
	// to the engine's rewrite step so it need not re-parse them.
	OuterEthernet *layers.Ethernet
	OuterIPv4     *layers.IPv4
	GRE           *layers.GRE
}

// decodeBuf bundles the per-layer scratch gopacket needs to decode
// without allocating a full layer graph per packet — the packet path
// must not allocate after startup, so callers should reuse one
// decodeBuf across calls.
type decodeBuf struct {
	eth layers.Ethernet
	ip4 layers.IPv4
	gre layers.GRE
}

// NewScratch allocates the reusable decode buffer for one engine
// instance (RX side). Callers pass it to Classify on every call.
func NewScratch() *Scratch {
	return &Scratch{}
}

// Scratch is the reusable decode state for one RX path.
type Scratch struct {
	buf decodeBuf
}

// Classify decodes frame far enough to produce a routing Direction,
// following this rule order:
//
//  1. Ethernet header fails to parse -> BadPacket.
//  2. ethertype != IPv4 -> Destination.
//  3. IPv4 payload fails to parse -> BadPacket.
//  4. IPv4 next-level protocol != GRE -> Destination.
//  5. GRE payload fails to parse -> Drop (logged).
//  6. GRE inner protocol type == IPv4 -> Wire.
//  7. any other GRE protocol type -> Drop.
func (s *Scratch) Classify(frame []byte) (Result, error) {
	eth := &s.buf.eth
	if err := eth.DecodeFromBytes(frame, gopacket.NilDecodeFeedback); err != nil {
		return Result{}, badPacket("ethernet header", err)
	}

	if eth.EthernetType != layers.EthernetTypeIPv4 {
		return Result{Direction: Destination}, nil
	}

	ip4 := &s.buf.ip4
	if err := ip4.DecodeFromBytes(eth.Payload, gopacket.NilDecodeFeedback); err != nil {
		return Result{}, badPacket("outer ipv4 header", err)
	}

	if ip4.Protocol != layers.IPProtocolGRE {
		return Result{Direction: Destination}, nil
	}

	gre := &s.buf.gre
	if err := gre.DecodeFromBytes(ip4.Payload, gopacket.NilDecodeFeedback); err != nil {
		logger.Info().Err(err).Msg("dropping packet: GRE payload failed to parse")
		return Result{Direction: Drop}, nil
	}

	if uint16(gre.Protocol) != greProtocolIPv4 {
		logger.Info().
			Str("gre_protocol", gre.Protocol.String()).
			Msg("dropping packet: unrecognised GRE protocol type")
		return Result{Direction: Drop}, nil
	}

	var inner layers.IPv4
	if err := inner.DecodeFromBytes(gre.Payload, gopacket.NilDecodeFeedback); err != nil {
		logger.Info().Err(err).Msg("dropping packet: GRE inner IPv4 header failed to parse")
		return Result{Direction: Drop}, nil
	}

	hash := flowhash.Hash(inner.SrcIP, inner.DstIP, uint8(inner.Protocol))

	return Result{
		Direction:     Wire,
		FlowHash:      hash,
		OuterEthernet: eth,
		OuterIPv4:     ip4,
		GRE:           gre,
	}, nil
}

func badPacket(stage string, err error) error {
	return &parseError{stage: stage, err: err}
}

type parseError struct {
	stage string
	err   error
}

func (e *parseError) Error() string {
	return "classify: bad packet at " + e.stage + ": " + e.err.Error()
}

func (e *parseError) Unwrap() error {
	return e.err
}

// IsBadPacket reports whether err was returned for a frame that failed
// to parse at the Ethernet or outer-IPv4 layer.
func IsBadPacket(err error) bool {
	_, ok := err.(*parseError)
	return ok
}
