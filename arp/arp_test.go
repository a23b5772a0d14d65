package arp

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type stubSource struct {
	neighbours []Neighbour
	err        error
	calls      int
}

func (s *stubSource) Neighbours(string) ([]Neighbour, error) {
	s.calls++
	return s.neighbours, s.err
}

func mustMAC(t *testing.T, s string) net.HardwareAddr {
	t.Helper()
	mac, err := net.ParseMAC(s)
	assert.NoError(t, err)
	return mac
}

func TestAddThenLookupBeforeExpiry(t *testing.T) {
	src := &stubSource{}
	c := New(src, "eth0", TTL)

	mac := mustMAC(t, "aa:aa:aa:aa:aa:aa")
	ip := net.ParseIP("127.0.0.1")

	c.Add(ip, mac)
	assert.Equal(t, mac, c.Lookup(ip))
	assert.Zero(t, src.calls, "a cache hit must not consult the neighbour table")
}

func TestLookupMissImportsFromNeighbourTable(t *testing.T) {
	mac := mustMAC(t, "bb:bb:bb:bb:bb:bb")
	ip := net.ParseIP("10.0.0.5")
	src := &stubSource{neighbours: []Neighbour{{LinkLayerAddr: mac, IPv4: ip}}}

	c := New(src, "eth0", TTL)
	got := c.Lookup(ip)

	assert.Equal(t, mac, got)
	assert.Equal(t, 1, src.calls)
}

func TestLookupMissStaysMissWhenNotInNeighbourTable(t *testing.T) {
	src := &stubSource{}
	c := New(src, "eth0", TTL)

	assert.Nil(t, c.Lookup(net.ParseIP("10.0.0.9")))
}

func TestLookupMissIgnoresNeighboursWithoutIPv4OrMAC(t *testing.T) {
	ip := net.ParseIP("10.0.0.5")
	src := &stubSource{neighbours: []Neighbour{
		{LinkLayerAddr: nil, IPv4: ip},
		{LinkLayerAddr: mustMAC(t, "cc:cc:cc:cc:cc:cc"), IPv4: nil},
	}}
	c := New(src, "eth0", TTL)

	assert.Nil(t, c.Lookup(ip))
}

func TestLookupMissLogsAndReturnsNilOnSourceError(t *testing.T) {
	src := &stubSource{err: assertErr{}}
	c := New(src, "eth0", TTL)

	assert.Nil(t, c.Lookup(net.ParseIP("10.0.0.9")))
}

type assertErr struct{}

func (assertErr) Error() string { return "netlink unavailable" }

func TestExpirySweepsPastEntries(t *testing.T) {
	src := &stubSource{}
	c := New(src, "eth0", TTL)

	fixed := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return fixed }

	ip := net.ParseIP("127.0.0.1")
	c.entries[key(ip)] = CacheEntry{
		MAC:     mustMAC(t, "aa:aa:aa:aa:aa:aa"),
		Expires: fixed.Add(-time.Second),
	}

	c.Expire()
	assert.Nil(t, c.Lookup(ip))
	assert.Zero(t, c.Len())
}

func TestEntryValidUntilExpiryThenSweptAfter(t *testing.T) {
	src := &stubSource{}
	c := New(src, "eth0", TTL)

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	current := start
	c.now = func() time.Time { return current }

	ip := net.ParseIP("127.0.0.2")
	mac := mustMAC(t, "dd:dd:dd:dd:dd:dd")
	c.Add(ip, mac)

	current = start.Add(TTL - time.Second)
	assert.Equal(t, mac, c.Lookup(ip))

	current = start.Add(TTL + time.Second)
	c.Expire()
	assert.Nil(t, c.Lookup(ip))
}
