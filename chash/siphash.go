package chash

import "github.com/dchest/siphash"

// sipKey is the all-zero 128-bit SipHash key. The exact key value only
// matters for bit-compatibility with a reference deployment's worked
// lookup-table examples, not for the algorithm's correctness.
var sipKey = make([]byte, 16)

// permutations computes perm[i] = (offset + i*skip) mod poolSize for i in
// [0, poolSize). Whenever gcd(skip, poolSize) = 1 — guaranteed when
// poolSize is prime and 1 <= skip < poolSize — this is a bijection onto
// [0, poolSize).
func permutations(offset, skip, poolSize uint32) []uint32 {
	perm := make([]uint32, poolSize)
	for i := uint32(0); i < poolSize; i++ {
		perm[i] = (offset + i*skip) % poolSize
	}
	return perm
}

// permuteBackend derives a backend's permutation from its name. Two
// 64-bit digests are drawn from a single SipHash-2-4 state: the first
// over the name plus a 0xff terminator byte (yielding offset), the
// second continuing the same hasher with the literal "differenthash"
// and another 0xff appended (yielding skip). This
// follows the hasher-reuse trick the table size M depends on: since
// Sum64 never resets the running hash state (per the hash.Hash
// contract), the second digest legitimately depends on everything
// written before it, including the name.
func permuteBackend(name string, poolSize uint32) []uint32 {
	h := siphash.New(sipKey)

	h.Write([]byte(name))
	h.Write([]byte{0xff}) // terminator, disambiguates "fred"+"dy" from "fre"+"ddy"
	offset := uint32(h.Sum64() % uint64(poolSize))

	h.Write([]byte("differenthash"))
	h.Write([]byte{0xff})
	skip := uint32(h.Sum64()%uint64(poolSize-1)) + 1

	return permutations(offset, skip, poolSize)
}
