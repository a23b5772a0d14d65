// Package chash implements a Maglev-style consistent-hash lookup table:
// deterministic backend selection with minimal disruption under
// membership change, built on per-backend permutation tables over a
// prime-sized slot array.
//
// https://static.googleusercontent.com/media/research.google.com/en//pubs/archive/44824.pdf
package chash

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/rbcollins/maglevrail/primes"
	ilog "github.com/rbcollins/maglevrail/x/log"
)

// unassigned marks a lookup slot with no backend yet.
const unassigned = -1

// Table is an ordered sequence of Backends plus a lookup vector of
// backend indices sized to the largest prime at most
// OversizeFactor*(live backend count). Every slot of Lookup holds the
// index of a live backend; the distribution of slots among live
// backends differs by at most one.
//
// Table is not safe for concurrent use: the engine is single-threaded
// and Populate is only ever called at startup, per the "Immutable after
// construction" contract on Config.
type Table struct {
	// OversizeFactor scales live backend count to the upper bound of
	// the lookup table size, which is then rounded down to the nearest
	// prime. The Google
	// Maglev paper's reference value is 100.
	OversizeFactor uint32

	Backends []*Backend
	Lookup   []int

	logger zerolog.Logger
}

// NewTable constructs an empty Table with the default oversize factor
// (100, the paper's normative rounding-down behaviour).
func NewTable() *Table {
	return &Table{
		OversizeFactor: 100,
		logger:         ilog.Logger.With().Str("component", "chash").Logger(),
	}
}

// Add appends backends to the table. It does not populate the lookup
// table; call Populate once all backends are known.
func (t *Table) Add(backends ...*Backend) {
	t.Backends = append(t.Backends, backends...)
}

// liveCount returns the number of backends with Live set.
func (t *Table) liveCount() int {
	n := 0
	for _, b := range t.Backends {
		if b.Live {
			n++
		}
	}
	return n
}

// Populate (re)builds the lookup table from the current backend set.
// It panics if there are no live backends: an engine with no forwarding
// target is a configuration error, not a degraded runtime state.
func (t *Table) Populate() {
	live := t.liveCount()
	if live == 0 {
		panic(fmt.Errorf("chash: Populate called with no live backends"))
	}

	size, ok := primes.LargestAtMost(t.OversizeFactor * uint32(live))
	if !ok {
		panic(fmt.Errorf("chash: no prime at most %d", t.OversizeFactor*uint32(live)))
	}

	for _, b := range t.Backends {
		if uint32(len(b.permutation)) != size {
			b.permutation = permuteBackend(b.Name, size)
		}
	}

	next := make([]uint32, len(t.Backends))
	lookup := make([]int, size)
	for i := range lookup {
		lookup[i] = unassigned
	}

	var allocated uint32
	for allocated < size {
		for i, b := range t.Backends {
			if !b.Live {
				continue
			}

			candidate := b.permutation[next[i]]
			for lookup[candidate] != unassigned {
				next[i]++
				candidate = b.permutation[next[i]]
			}

			lookup[candidate] = i
			next[i]++
			allocated++
			if allocated == size {
				break
			}
		}
	}

	t.Lookup = lookup
	t.logger.Debug().
		Int("live_backends", live).
		Uint32("table_size", size).
		Msg("populated consistent hash table")
}

// Size returns the current lookup table length (0 before the first
// Populate).
func (t *Table) Size() int {
	return len(t.Lookup)
}

// Resolve maps a 64-bit flow hash to its backend. It panics if the table
// has not been populated, since a forwarder with an empty lookup table
// cannot make a routing decision.
func (t *Table) Resolve(flowHash uint64) *Backend {
	if len(t.Lookup) == 0 {
		panic(fmt.Errorf("chash: Resolve called before Populate"))
	}
	idx := t.Lookup[flowHash%uint64(len(t.Lookup))]
	return t.Backends[idx]
}

// Retire clears a backend's live flag and, if it is the last entry in
// Backends, pops it from the tail. Backends are never removed from the
// middle so that indices already recorded in Lookup stay valid until the
// next Populate. Callers must call Populate afterward to rebuild Lookup.
func (t *Table) Retire(name string) {
	for i := len(t.Backends) - 1; i >= 0; i-- {
		if t.Backends[i].Name == name {
			t.Backends[i].Live = false
			if i == len(t.Backends)-1 {
				t.Backends = t.Backends[:i]
			}
			return
		}
	}
}
