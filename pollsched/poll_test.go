package pollsched

import (
	"net"
	"testing"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"

	"github.com/rbcollins/maglevrail/arp"
	"github.com/rbcollins/maglevrail/chash"
	"github.com/rbcollins/maglevrail/engine"
	"github.com/rbcollins/maglevrail/ring/memring"
)

type noNeighbours struct{}

func (noNeighbours) Neighbours(string) ([]arp.Neighbour, error) { return nil, nil }

func newDriver(t *testing.T, wireTXCapacity int) (*Driver, *memring.Ring, *memring.Ring, *memring.Ring) {
	t.Helper()

	table := chash.NewTable()
	table.Add(chash.NewBackend("server-1", net.ParseIP("203.0.113.9")))
	table.Populate()

	mac, err := net.ParseMAC("aa:aa:aa:aa:aa:aa")
	require.NoError(t, err)
	cache := arp.New(noNeighbours{}, "eth0", arp.TTL)
	cache.Add(net.ParseIP("203.0.113.9"), mac)

	e := engine.New(table, cache, net.ParseIP("192.0.2.1"), mac)

	wireRX := memring.New(1, 0, 0)
	wireTX := memring.New(2, wireTXCapacity, 1500)
	host := memring.New(3, 1, 1500)

	return New(e, wireRX, wireTX, host, time.Second), wireRX, wireTX, host
}

func TestSetInterestReadState(t *testing.T) {
	d, _, _, _ := newDriver(t, 1)
	d.wireRead = true
	d.hostRead = true

	fds := make([]unix.PollFd, 3)
	d.setInterest(fds)

	assert.Equal(t, int16(unix.POLLIN), fds[wireRXIndex].Events)
	assert.Equal(t, int16(0), fds[wireTXIndex].Events)
	assert.Equal(t, int16(unix.POLLIN), fds[hostIndex].Events)
}

func TestSetInterestWriteState(t *testing.T) {
	d, _, _, _ := newDriver(t, 1)
	d.wireRead = false
	d.hostRead = false

	fds := make([]unix.PollFd, 3)
	d.setInterest(fds)

	assert.Equal(t, int16(0), fds[wireRXIndex].Events)
	assert.Equal(t, int16(unix.POLLOUT), fds[wireTXIndex].Events)
	assert.Equal(t, int16(unix.POLLOUT), fds[hostIndex].Events)
}

func TestForwardPassEmptyRingsStaysReadInterested(t *testing.T) {
	d, _, _, _ := newDriver(t, 1)

	require.NoError(t, d.forwardPass())
	assert.True(t, d.wireRead)
	assert.True(t, d.hostRead)
}

func TestForwardPassWireBlockedClearsHostRead(t *testing.T) {
	d, wireRX, wireTX, _ := newDriver(t, 1)
	wireTX.FillTX()

	frame := greFrame(t)
	wireRX.Enqueue(frame)

	require.NoError(t, d.forwardPass())
	assert.False(t, d.hostRead, "BlockedWire on the wire-RX pass must clear host_read")
	assert.True(t, d.wireRead)
}

func TestNewFallsBackToDefaultTimeoutOnNonPositive(t *testing.T) {
	d, _, _, _ := newDriver(t, 1)
	d = New(d.Engine, d.WireRX, d.WireTX, d.Host, 0)
	assert.Equal(t, defaultPollTimeoutMillis, d.pollTimeoutMillis)
}

func TestNewUsesProvidedTimeout(t *testing.T) {
	table := chash.NewTable()
	table.Add(chash.NewBackend("server-1", net.ParseIP("203.0.113.9")))
	table.Populate()
	mac, err := net.ParseMAC("aa:aa:aa:aa:aa:aa")
	require.NoError(t, err)
	cache := arp.New(noNeighbours{}, "eth0", arp.TTL)
	e := engine.New(table, cache, net.ParseIP("192.0.2.1"), mac)

	d := New(e, memring.New(1, 0, 0), memring.New(2, 1, 1500), memring.New(3, 1, 1500), 250*time.Millisecond)
	assert.Equal(t, 250, d.pollTimeoutMillis)
}

func TestForwardPassExcludingWireRXSkipsOnlyWireToHostPass(t *testing.T) {
	d, wireRX, wireTX, _ := newDriver(t, 1)
	wireTX.FillTX()
	wireRX.Enqueue(greFrame(t))

	require.NoError(t, d.forwardPassExcluding(true, false, false))
	assert.True(t, d.hostRead, "excluded wire-RX pass must not touch host_read")
	assert.True(t, d.wireRead)
}

func TestForwardPassExcludingHostSkipsBothPasses(t *testing.T) {
	d, wireRX, wireTX, _ := newDriver(t, 1)
	wireTX.FillTX()
	wireRX.Enqueue(greFrame(t))

	require.NoError(t, d.forwardPassExcluding(false, false, true))
	assert.True(t, d.hostRead)
	assert.True(t, d.wireRead)
}

func greFrame(t *testing.T) []byte {
	t.Helper()
	return buildGREFrame(t,
		mustParseMAC(t, "00:11:22:33:44:55"), mustParseMAC(t, "02:00:00:00:00:01"),
		net.ParseIP("198.51.100.1"), net.ParseIP("198.51.100.2"),
		net.ParseIP("10.0.0.1"), net.ParseIP("10.0.0.2"))
}

func mustParseMAC(t *testing.T, s string) net.HardwareAddr {
	t.Helper()
	mac, err := net.ParseMAC(s)
	require.NoError(t, err)
	return mac
}

func buildGREFrame(t *testing.T, ethSrc, ethDst net.HardwareAddr, outerSrc, outerDst, innerSrc, innerDst net.IP) []byte {
	t.Helper()
	buf := gopacket.NewSerializeBuffer()
	opts := gopacket.SerializeOptions{FixLengths: true, ComputeChecksums: true}

	eth := &layers.Ethernet{SrcMAC: ethSrc, DstMAC: ethDst, EthernetType: layers.EthernetTypeIPv4}
	outerIP := &layers.IPv4{
		Version: 4, IHL: 5, TTL: 64, Id: 1,
		Protocol: layers.IPProtocolGRE,
		SrcIP:    outerSrc.To4(), DstIP: outerDst.To4(),
	}
	gre := &layers.GRE{Protocol: layers.EthernetTypeIPv4}
	innerIP := &layers.IPv4{
		Version: 4, IHL: 5, TTL: 64, Id: 2,
		Protocol: layers.IPProtocolTCP,
		SrcIP:    innerSrc.To4(), DstIP: innerDst.To4(),
	}

	require.NoError(t, gopacket.SerializeLayers(buf, opts, eth, outerIP, gre, innerIP))
	return append([]byte(nil), buf.Bytes()...)
}
