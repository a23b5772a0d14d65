// Package arp implements the bounded-TTL IPv4->MAC neighbour cache the
// steering engine consults to resolve a chosen backend's link-layer
// address, with a fallback that imports the kernel neighbour table on
// miss. Single-writer, mutating lookup; this cache is passive only —
// actively triggering ARP resolution by emitting a packet is not done
// here.
package arp

import (
	"net"
	"time"

	"github.com/rs/zerolog"

	ilog "github.com/rbcollins/maglevrail/x/log"
)

// TTL is the conventional default lifetime of a cache entry from
// insertion; New takes its own ttl parameter so callers can override it.
const TTL = 30 * time.Second

// CacheEntry is the ARP cache value: a MAC address and an absolute
// expiry timestamp.
type CacheEntry struct {
	MAC     net.HardwareAddr
	Expires time.Time
}

// Neighbour is one kernel neighbour-table entry, as exposed by a
// NeighbourSource.
type Neighbour struct {
	LinkLayerAddr net.HardwareAddr
	// IPv4 is nil for neighbours whose destination isn't an IPv4
	// address (e.g. IPv6 neighbours); those are never imported.
	IPv4 net.IP
}

// NeighbourSource enumerates the kernel neighbour table for a link. This
// is the neighbour-table client collaborator; the engine only depends
// on this interface, never on a concrete netlink dependency.
type NeighbourSource interface {
	Neighbours(link string) ([]Neighbour, error)
}

// Cache is a mapping from IPv4 address to CacheEntry, single-writer,
// mutated only from the engine thread — no locks are taken.
type Cache struct {
	entries map[[4]byte]CacheEntry
	source  NeighbourSource
	link    string
	ttl     time.Duration
	logger  zerolog.Logger

	// now is overridable in tests; defaults to time.Now.
	now func() time.Time
}

// New constructs a Cache that falls back to source for the given link
// name on lookup miss. Entries inserted via Add expire ttl after
// insertion.
func New(source NeighbourSource, link string, ttl time.Duration) *Cache {
	return &Cache{
		entries: make(map[[4]byte]CacheEntry),
		source:  source,
		link:    link,
		ttl:     ttl,
		logger:  ilog.Logger.With().Str("component", "arp").Str("link", link).Logger(),
		now:     time.Now,
	}
}

func key(ip net.IP) [4]byte {
	var k [4]byte
	copy(k[:], ip.To4())
	return k
}

// Add inserts or overwrites an entry, with expiry c.ttl from now.
func (c *Cache) Add(ip net.IP, mac net.HardwareAddr) {
	c.entries[key(ip)] = CacheEntry{MAC: mac, Expires: c.now().Add(c.ttl)}
}

// Lookup returns the non-expired MAC for ip, if present. On miss, it
// enumerates the kernel neighbour table for the configured link,
// imports every neighbour with a link-layer address and an IPv4
// destination as a fresh entry, then retries. If still absent, it
// returns nil.
//
// Lookup is NOT idempotent: it may mutate the cache on miss. Callers
// must treat it as a mutating operation, not a pure read.
//
// TODO: trigger ARP resolution actively by emitting a request packet to
// ip on miss, rather than only ever consulting already-known kernel
// state. Currently passive only.
func (c *Cache) Lookup(ip net.IP) net.HardwareAddr {
	if mac := c.freshLookup(ip); mac != nil {
		return mac
	}

	neighbours, err := c.source.Neighbours(c.link)
	if err != nil {
		// Best-effort: log and treat as a continued miss.
		c.logger.Warn().Err(err).Msg("neighbour table import failed")
		return nil
	}

	for _, n := range neighbours {
		if n.LinkLayerAddr == nil || n.IPv4 == nil {
			continue
		}
		c.Add(n.IPv4, n.LinkLayerAddr)
	}

	return c.freshLookup(ip)
}

func (c *Cache) freshLookup(ip net.IP) net.HardwareAddr {
	entry, ok := c.entries[key(ip)]
	if !ok || !entry.Expires.After(c.now()) {
		return nil
	}
	return entry.MAC
}

// Expire removes every entry whose expiry is strictly before now.
func (c *Cache) Expire() {
	now := c.now()
	for k, entry := range c.entries {
		if entry.Expires.Before(now) {
			delete(c.entries, k)
		}
	}
}

// Len reports the number of entries currently cached, expired or not.
func (c *Cache) Len() int {
	return len(c.entries)
}
