package main

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rbcollins/maglevrail/config"
	"github.com/rbcollins/maglevrail/ring"
	"github.com/rbcollins/maglevrail/ring/memring"
)

func TestWireAssemblesDriverOverLoopback(t *testing.T) {
	if _, err := net.InterfaceByName("lo"); err != nil {
		t.Skip("no loopback interface named \"lo\" on this host")
	}

	cfg, err := config.New(config.WithDevice("lo"), config.WithTargetIPs("127.0.0.1"))
	require.NoError(t, err)

	opened := make(map[string]bool)
	opener := func(name string) (ring.Descriptor, error) {
		opened[name] = true
		return memring.New(len(opened), 1, 1500), nil
	}

	driver, err := wire(cfg, opener)
	require.NoError(t, err)
	assert.NotNil(t, driver)
	assert.True(t, opened["lo/R"])
	assert.True(t, opened["lo/T"])
	assert.True(t, opened["lo^"])
}

func TestWirePropagatesRingOpenFailure(t *testing.T) {
	if _, err := net.InterfaceByName("lo"); err != nil {
		t.Skip("no loopback interface named \"lo\" on this host")
	}

	cfg, err := config.New(config.WithDevice("lo"), config.WithTargetIPs("127.0.0.1"))
	require.NoError(t, err)

	opener := func(name string) (ring.Descriptor, error) {
		return nil, assertErr("boom")
	}

	_, err = wire(cfg, opener)
	require.Error(t, err)
}

type assertErr string

func (e assertErr) Error() string { return string(e) }
