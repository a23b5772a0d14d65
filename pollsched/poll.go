// Package pollsched implements the forwarder's readiness loop: three
// descriptors (wire-RX, wire-TX, host) multiplexed with poll(2), and
// wire_read/host_read interest-flag bookkeeping so a blocked egress ring
// stops requesting POLLIN until it drains.
//
// Uses golang.org/x/sys/unix's poll(2) wrapper, following the
// poll-over-fds pattern a FastPoller-style scheduler would use.
package pollsched

import (
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sys/unix"

	"github.com/rbcollins/maglevrail/engine"
	"github.com/rbcollins/maglevrail/railerr"
	"github.com/rbcollins/maglevrail/ring"
	ilog "github.com/rbcollins/maglevrail/x/log"
)

const (
	wireRXIndex = 0
	wireTXIndex = 1
	hostIndex   = 2

	// defaultPollTimeoutMillis is New's fallback when the caller passes
	// a non-positive timeout: the multiplexed readiness sleep bounds how
	// long a loop iteration can block with nothing ready.
	defaultPollTimeoutMillis = 1000
)

// Driver owns the three ring descriptors and runs the forwarder's main
// loop against them.
type Driver struct {
	WireRX ring.Descriptor
	WireTX ring.Descriptor
	Host   ring.Descriptor

	Engine *engine.Engine

	logger zerolog.Logger

	wireRead bool
	hostRead bool

	pollTimeoutMillis int
}

// New constructs a Driver over the three descriptors, initially
// interested in reading from both the wire and the host side. timeout
// is the poll(2) deadline for each loop iteration; a non-positive value
// falls back to defaultPollTimeoutMillis.
func New(e *engine.Engine, wireRX, wireTX, host ring.Descriptor, timeout time.Duration) *Driver {
	millis := int(timeout.Milliseconds())
	if millis <= 0 {
		millis = defaultPollTimeoutMillis
	}
	return &Driver{
		WireRX:            wireRX,
		WireTX:            wireTX,
		Host:              host,
		Engine:            e,
		logger:            ilog.Logger.With().Str("component", "pollsched").Logger(),
		wireRead:          true,
		hostRead:          true,
		pollTimeoutMillis: millis,
	}
}

// Run drives the loop forever; it only returns on a fatal error (a
// Readiness BrokenRail from poll(2), or an error from an engine pass
// such as a BadPacket BrokenRail). No graceful shutdown path is
// specified: the process is expected to be supervised externally.
func (d *Driver) Run() error {
	for {
		if err := d.step(); err != nil {
			return err
		}
	}
}

// step runs exactly one poll-and-forward iteration, exposed separately
// from Run so tests can drive the loop a fixed number of times.
func (d *Driver) step() error {
	fds := []unix.PollFd{
		{Fd: int32(d.WireRX.Fd())},
		{Fd: int32(d.WireTX.Fd())},
		{Fd: int32(d.Host.Fd())},
	}
	d.setInterest(fds)

	n, err := unix.Poll(fds, d.pollTimeoutMillis)
	if err != nil {
		return railerr.Wrap(railerr.Readiness, "poll failed", err)
	}
	if n == 0 {
		return nil
	}

	d.wireRead = true
	d.hostRead = true

	var wireRXErr, wireTXErr, hostErr bool
	for i, fd := range fds {
		if fd.Revents&unix.POLLERR != unix.POLLERR {
			continue
		}
		// A ring reporting an error flag means it may have been reset;
		// skip only the passes that touch it rather than the whole
		// iteration.
		switch i {
		case wireRXIndex:
			wireRXErr = true
		case wireTXIndex:
			wireTXErr = true
		case hostIndex:
			hostErr = true
		}
	}

	return d.forwardPassExcluding(wireRXErr, wireTXErr, hostErr)
}

// forwardPass runs both engine passes with no descriptor excluded. It is
// the convenience entry point used when every descriptor is healthy.
func (d *Driver) forwardPass() error {
	return d.forwardPassExcluding(false, false, false)
}

// forwardPassExcluding runs the host-to-wire and wire-to-host engine
// passes and updates the wire_read/host_read interest flags from their
// outcomes, skipping a pass entirely when one of the descriptors it
// touches is excluded (reported POLLERR this iteration). Split out from
// step so it can be exercised without a real poll(2) call.
func (d *Driver) forwardPassExcluding(excludeWireRX, excludeWireTX, excludeHost bool) error {
	if !excludeHost && !excludeWireTX {
		status, err := d.Engine.MovePackets(d.Host, d.WireTX, nil)
		if err != nil {
			return err
		}
		switch status {
		case engine.BlockedDestination, engine.BlockedWire:
			d.hostRead = false
			d.wireRead = false
		}
	}

	if !excludeWireRX && !excludeHost && !excludeWireTX {
		status, err := d.Engine.MovePackets(d.WireRX, d.Host, d.WireTX)
		if err != nil {
			return err
		}
		switch status {
		case engine.BlockedDestination:
			d.wireRead = false
		case engine.BlockedWire:
			d.hostRead = false
		}
	}

	return nil
}

// setInterest sets each pollfd's Events: a ring waits for readable
// while its read flag is set, otherwise for writable.
func (d *Driver) setInterest(fds []unix.PollFd) {
	if d.wireRead {
		fds[wireRXIndex].Events = unix.POLLIN
		fds[wireTXIndex].Events = 0
	} else {
		fds[wireRXIndex].Events = 0
		fds[wireTXIndex].Events = unix.POLLOUT
	}

	if d.hostRead {
		fds[hostIndex].Events = unix.POLLIN
	} else {
		fds[hostIndex].Events = unix.POLLOUT
	}
}
