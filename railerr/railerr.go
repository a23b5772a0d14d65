// Package railerr defines the forwarder's tagged-union error type: a
// single sum type covering every fatal condition the engine can hit,
// rather than a family of concrete error structs per call site.
package railerr

import "fmt"

// Kind tags the category of failure inside a BrokenRail.
type Kind int

const (
	// Netmap covers ring I/O failures from the ring-descriptor library
	// (named after the original netmap-backed transport).
	Netmap Kind = iota
	// Readiness covers failures of the poll/readiness primitive.
	Readiness
	// BadPacket covers frames that fail to parse at the Ethernet or
	// outer-IPv4 layer.
	BadPacket
	// NoIPV4Address covers a configured device with no IPv4 address.
	NoIPV4Address
	// Config covers missing or invalid configuration.
	Config
)

func (k Kind) String() string {
	switch k {
	case Netmap:
		return "netmap"
	case Readiness:
		return "readiness"
	case BadPacket:
		return "bad_packet"
	case NoIPV4Address:
		return "no_ipv4_address"
	case Config:
		return "config"
	default:
		return "unknown"
	}
}

// BrokenRail is the forwarder's single error type. Every fatal startup
// or runtime condition is represented as a BrokenRail with the
// appropriate Kind; recoverable conditions (ARP miss, TX ring full,
// classifier Drop) are never wrapped in a BrokenRail — they are returned
// as ordinary values (nil MAC, TransferStatus, Direction).
type BrokenRail struct {
	Kind Kind
	Msg  string
	Err  error
}

// New constructs a BrokenRail with no wrapped cause.
func New(kind Kind, msg string) *BrokenRail {
	return &BrokenRail{Kind: kind, Msg: msg}
}

// Wrap constructs a BrokenRail carrying an underlying cause.
func Wrap(kind Kind, msg string, err error) *BrokenRail {
	return &BrokenRail{Kind: kind, Msg: msg, Err: err}
}

func (e *BrokenRail) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

// Unwrap exposes the cause chain for errors.Is/errors.As.
func (e *BrokenRail) Unwrap() error {
	return e.Err
}

// Is reports whether err is a BrokenRail of the given kind.
func Is(err error, kind Kind) bool {
	br, ok := err.(*BrokenRail)
	return ok && br.Kind == kind
}
