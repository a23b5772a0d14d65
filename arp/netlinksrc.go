package arp

import (
	"fmt"
	"net"

	"github.com/vishvananda/netlink"
)

// NetlinkSource is the production NeighbourSource, backed by
// vishvananda/netlink's rtnetlink bindings.
type NetlinkSource struct{}

// Neighbours enumerates the IPv4 neighbour-table entries for the named
// link.
func (NetlinkSource) Neighbours(link string) ([]Neighbour, error) {
	l, err := netlink.LinkByName(link)
	if err != nil {
		return nil, fmt.Errorf("arp: lookup link %q: %w", link, err)
	}

	neighs, err := netlink.NeighList(l.Attrs().Index, netlink.FAMILY_V4)
	if err != nil {
		return nil, fmt.Errorf("arp: list neighbours on %q: %w", link, err)
	}

	out := make([]Neighbour, 0, len(neighs))
	for _, n := range neighs {
		var ipv4 net.IP
		if ip4 := n.IP.To4(); ip4 != nil {
			ipv4 = ip4
		}
		out = append(out, Neighbour{
			LinkLayerAddr: n.HardwareAddr,
			IPv4:          ipv4,
		})
	}
	return out, nil
}
