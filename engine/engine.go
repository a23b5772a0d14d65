// Package engine implements the RX->classify->rewrite->TX steering pass
// that moves packets between two ring descriptors: an RX iterator and
// one or two TX iterators, a single forward pass per call, cursor
// commit at the end, full classify/rewrite/backpressure handling.
package engine

import (
	"net"

	"github.com/rs/zerolog"

	"github.com/rbcollins/maglevrail/arp"
	"github.com/rbcollins/maglevrail/chash"
	"github.com/rbcollins/maglevrail/classify"
	"github.com/rbcollins/maglevrail/railerr"
	"github.com/rbcollins/maglevrail/ring"
	ilog "github.com/rbcollins/maglevrail/x/log"
)

// TransferStatus is the outcome of one MovePackets pass.
type TransferStatus int

const (
	// Complete means every RX slot was placed and both cursors were
	// committed.
	Complete TransferStatus = iota
	// BlockedDestination means a Destination-direction packet found no
	// free TX slot; the RX cursor was rewound by one.
	BlockedDestination
	// BlockedWire means a Wire-direction packet found no free TX slot on
	// its egress ring; the RX cursor was rewound by one.
	BlockedWire
)

func (s TransferStatus) String() string {
	switch s {
	case Complete:
		return "complete"
	case BlockedDestination:
		return "blocked_destination"
	case BlockedWire:
		return "blocked_wire"
	default:
		return "unknown"
	}
}

// Engine holds the state a single-threaded forwarding pass needs:
// the consistent-hash table to resolve backends, the ARP cache to
// resolve their MACs, and the reusable classifier scratch buffer.
//
// Engine is not safe for concurrent use; the forwarding loop runs
// every pass from one thread.
type Engine struct {
	Routes *chash.Table
	ARP    *arp.Cache

	// InterfaceIPv4 and InterfaceMAC identify the local interface this
	// engine forwards on behalf of. MovePackets does not consult them
	// directly (the Ethernet/IPv4 rewrite derives its new source from
	// the arriving frame's own previous-destination fields), and no
	// other code in this module reads them after construction.
	InterfaceIPv4 net.IP
	InterfaceMAC  net.HardwareAddr

	scratch *classify.Scratch
	logger  zerolog.Logger
}

// New constructs an Engine forwarding on behalf of the given interface.
func New(routes *chash.Table, arpCache *arp.Cache, interfaceIPv4 net.IP, interfaceMAC net.HardwareAddr) *Engine {
	return &Engine{
		Routes:        routes,
		ARP:           arpCache,
		InterfaceIPv4: interfaceIPv4.To4(),
		InterfaceMAC:  interfaceMAC,
		scratch:       classify.NewScratch(),
		logger:        ilog.Logger.With().Str("component", "engine").Logger(),
	}
}

// MovePackets performs one forwarding pass: every slot on src's RX rings
// is classified and placed on dst's TX rings, except Wire-direction
// packets, which are placed on wireTX's TX rings instead when wireTX is
// non-nil (the host->wire-TX pass has no such fallback: dst already is
// the wire-TX ring, so wireTX is nil there).
//
// On success every touched ring's cursor is committed and Complete is
// returned. When an egress ring has no free TX slot, the RX iterator is
// rewound by exactly one slot (the crucial backpressure invariant: a
// blocked pass must leave the world as if the last, unplaced RX slot had
// never been read) and the matching Blocked* status is returned without
// committing any cursor.
func (e *Engine) MovePackets(src, dst, wireTX ring.Descriptor) (TransferStatus, error) {
	rx := src.RXIter()
	defer rx.Close()

	dstIter := dst.TXIter()
	defer dstIter.Close()

	var wireIter ring.TXIterator
	if wireTX != nil {
		wireIter = wireTX.TXIter()
		defer wireIter.Close()
	}

	for rx.Next() {
		rxMeta, rxBuf := rx.Slot()
		frame := rxBuf[:rxMeta.Len]

		result, err := e.scratch.Classify(frame)
		if err != nil {
			if classify.IsBadPacket(err) {
				return Complete, railerr.Wrap(railerr.BadPacket, "classify failed", err)
			}
			return Complete, err
		}

		switch result.Direction {
		case classify.Drop:
			continue

		case classify.Destination:
			if !dstIter.Next() {
				rx.GiveBack()
				return BlockedDestination, nil
			}
			txMeta, txBuf := dstIter.Slot()
			txMeta.Len = copy(txBuf, frame)

		case classify.Wire:
			target := wireIter
			if target == nil {
				target = dstIter
			}
			if !target.Next() {
				rx.GiveBack()
				return BlockedWire, nil
			}
			txMeta, txBuf := target.Slot()
			n := copy(txBuf, frame)
			txMeta.Len = n

			if !e.rewrite(result, txBuf[:n]) {
				target.GiveBack()
				continue
			}
		}
	}

	src.CommitRX()
	dst.CommitTX()
	if wireTX != nil {
		wireTX.CommitTX()
	}
	return Complete, nil
}
