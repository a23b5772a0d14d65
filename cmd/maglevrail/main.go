// Command maglevrail is the forwarder's process entry point: load
// configuration, resolve the local interface, open the three ring
// descriptors, and run the poll-driven steering loop forever.
//
// Startup order: env config, interface/MAC/IP lookup, netlink-backed
// ARP cache, three device-name-suffixed descriptors ("/R", "/T", "^"),
// then an infinite poll loop. The ring-descriptor library itself is out
// of scope here; OpenRing is the seam a real deployment wires a
// kernel-bypass backend into.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rbcollins/maglevrail/arp"
	"github.com/rbcollins/maglevrail/config"
	"github.com/rbcollins/maglevrail/engine"
	"github.com/rbcollins/maglevrail/health_monitor"
	"github.com/rbcollins/maglevrail/netiface"
	"github.com/rbcollins/maglevrail/pollsched"
	"github.com/rbcollins/maglevrail/railerr"
	"github.com/rbcollins/maglevrail/ring"
	ilog "github.com/rbcollins/maglevrail/x/log"
)

// RingOpener constructs a ring.Descriptor for a device name (already
// carrying the "/R", "/T" or "^" suffix from ring.DeviceName).
type RingOpener func(deviceName string) (ring.Descriptor, error)

// OpenRing is the pluggable ring-descriptor backend. The core module
// never implements one; a deployment that links a real kernel-bypass
// transport replaces this before calling Run.
var OpenRing RingOpener = func(deviceName string) (ring.Descriptor, error) {
	return nil, railerr.New(railerr.Netmap, "no ring-descriptor backend wired for "+deviceName)
}

func main() {
	if err := Run(OpenRing); err != nil {
		ilog.Logger.Error().Err(err).Msg("fatal")
		os.Exit(1)
	}
}

// Run performs startup wiring and then runs the poll loop until a fatal
// error occurs. It never returns nil on success: the loop is meant to
// run for the life of the process.
func Run(openRing RingOpener) error {
	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}

	driver, err := wire(cfg, openRing)
	if err != nil {
		return err
	}

	startHealthMonitor(cfg)

	return driver.Run()
}

// startHealthMonitor launches the read-only backend liveness observer
// as a best-effort side channel: a failure to start it is logged, not
// fatal, since it never feeds back into the forwarding table — the
// lookup table is immutable once the process starts.
func startHealthMonitor(cfg *config.Config) {
	hm, err := health_monitor.NewHealthMonitor(context.Background(),
		health_monitor.WithProtocol(health_monitor.TCP),
	)
	if err != nil {
		ilog.Logger.Warn().Err(err).Msg("health monitor not started")
		return
	}

	hm.Add(health_monitor.BackendsFromIPs(cfg.TargetIPs, cfg.HealthCheckPort)...)
	if err := hm.Start(); err != nil {
		ilog.Logger.Warn().Err(err).Msg("health monitor not started")
	}
}

// wire performs every startup step short of running the loop: interface
// resolution, ARP cache and ring construction, and engine/driver
// assembly. Split out from Run so tests can exercise the wiring without
// running the loop forever.
func wire(cfg *config.Config, openRing RingOpener) (*pollsched.Driver, error) {
	iface, err := netiface.Lookup(cfg.Device)
	if err != nil {
		return nil, err
	}

	arpCache := arp.New(arp.NetlinkSource{}, cfg.Device, cfg.ARPTTL)

	wireRX, err := openRing(ring.DeviceName(cfg.Device, "/R"))
	if err != nil {
		return nil, railerr.Wrap(railerr.Netmap, "open wire RX ring", err)
	}
	wireTX, err := openRing(ring.DeviceName(cfg.Device, "/T"))
	if err != nil {
		return nil, railerr.Wrap(railerr.Netmap, "open wire TX ring", err)
	}
	host, err := openRing(ring.DeviceName(cfg.Device, "^"))
	if err != nil {
		return nil, railerr.Wrap(railerr.Netmap, "open host ring", err)
	}

	ilog.Logger.Info().
		Str("device", cfg.Device).
		Str("interface_mac", iface.MAC.String()).
		Str("interface_ipv4", iface.IPv4.String()).
		Int("backends", len(cfg.TargetIPs)).
		Msg(fmt.Sprintf("maglevrail starting on %s", cfg.Device))

	e := engine.New(cfg.Routes, arpCache, iface.IPv4, iface.MAC)
	return pollsched.New(e, wireRX, wireTX, host, cfg.PollTimeout), nil
}
