// Package primes provides a sieve used to size the Maglev lookup table.
package primes

// Sieve returns every prime less than or equal to limit, in ascending
// order. Sieve(0) and Sieve(1) return nil.
//
// Runs in O(limit log log limit) using a Sieve of Eratosthenes; no trial
// division is performed beyond the sieve's own composite marking.
func Sieve(limit uint32) []uint32 {
	if limit < 2 {
		return nil
	}

	composite := make([]bool, limit+1)
	primes := make([]uint32, 0, int(limit)/10+1)

	for candidate := uint32(2); candidate <= limit; candidate++ {
		if composite[candidate] {
			continue
		}
		primes = append(primes, candidate)
		for multiple := uint64(candidate) * 2; multiple <= uint64(limit); multiple += uint64(candidate) {
			composite[multiple] = true
		}
	}

	return primes
}

// LargestAtMost returns the largest prime less than or equal to limit.
// It reports false if limit < 2 (no prime exists in range).
func LargestAtMost(limit uint32) (uint32, bool) {
	p := Sieve(limit)
	if len(p) == 0 {
		return 0, false
	}
	return p[len(p)-1], true
}
