package primes

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSieveBoundaryValues(t *testing.T) {
	assert.Equal(t, []uint32(nil), Sieve(0))
	assert.Equal(t, []uint32(nil), Sieve(1))
	assert.Equal(t, []uint32{2}, Sieve(2))
	assert.Equal(t, []uint32{2, 3}, Sieve(3))
	assert.Equal(t, []uint32{2, 3}, Sieve(4))
	assert.Equal(t, []uint32{2, 3, 5}, Sieve(5))
}

func TestSieveAgreesWithTrialDivision(t *testing.T) {
	const limit = 1000
	got := Sieve(limit)

	isPrime := func(n uint32) bool {
		if n < 2 {
			return false
		}
		for d := uint32(2); d*d <= n; d++ {
			if n%d == 0 {
				return false
			}
		}
		return true
	}

	var want []uint32
	for n := uint32(0); n <= limit; n++ {
		if isPrime(n) {
			want = append(want, n)
		}
	}

	assert.Equal(t, want, got)
}

func TestLargestAtMost(t *testing.T) {
	got, ok := LargestAtMost(300)
	assert.True(t, ok)
	assert.Equal(t, uint32(293), got)

	_, ok = LargestAtMost(1)
	assert.False(t, ok)

	got, ok = LargestAtMost(2)
	assert.True(t, ok)
	assert.Equal(t, uint32(2), got)
}
