// Package netiface resolves a named network interface's MAC address and
// first IPv4 address.
//
// This collaborator (network-interface enumeration) is implemented on
// the standard library rather than vishvananda/netlink:
// net.InterfaceByName/Addrs already exposes exactly
// the two fields the engine needs (hardware address, IP list), and
// netlink's richer route/link/neighbour API (already used by the arp
// package) would add nothing here beyond what net already provides.
package netiface

import (
	"net"

	"github.com/rbcollins/maglevrail/railerr"
)

// Info is the subset of a network interface the forwarder needs at
// startup.
type Info struct {
	MAC  net.HardwareAddr
	IPv4 net.IP
}

// Lookup resolves name's hardware address and first assigned IPv4
// address. It returns a NoIPV4Address BrokenRail if the interface has no
// IPv4 address.
func Lookup(name string) (Info, error) {
	iface, err := net.InterfaceByName(name)
	if err != nil {
		return Info{}, railerr.Wrap(railerr.Config, "interface "+name+" not found", err)
	}

	addrs, err := iface.Addrs()
	if err != nil {
		return Info{}, railerr.Wrap(railerr.Config, "enumerate addresses on "+name, err)
	}

	for _, addr := range addrs {
		var ip net.IP
		switch a := addr.(type) {
		case *net.IPNet:
			ip = a.IP
		case *net.IPAddr:
			ip = a.IP
		}
		if ip4 := ip.To4(); ip4 != nil {
			return Info{MAC: iface.HardwareAddr, IPv4: ip4}, nil
		}
	}

	return Info{}, railerr.New(railerr.NoIPV4Address, "interface "+name+" has no IPv4 address")
}
