package flowhash

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHashIsDeterministic(t *testing.T) {
	src := net.ParseIP("10.0.0.1")
	dst := net.ParseIP("10.0.0.2")

	a := Hash(src, dst, 6)
	b := Hash(src, dst, 6)
	assert.Equal(t, a, b)
}

func TestHashDistinguishesFields(t *testing.T) {
	src := net.ParseIP("10.0.0.1")
	dst := net.ParseIP("10.0.0.2")
	alt := net.ParseIP("10.0.0.3")

	assert.NotEqual(t, Hash(src, dst, 6), Hash(src, alt, 6))
	assert.NotEqual(t, Hash(src, dst, 6), Hash(dst, src, 6))
	assert.NotEqual(t, Hash(src, dst, 6), Hash(src, dst, 17))
}
