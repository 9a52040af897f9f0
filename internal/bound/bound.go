// Package bound implements the fixed-capacity collections shared by every
// subsystem in this module: Vec (ordered sequence), Stack (LIFO) and Map
// (keyed, deterministic iteration order). Every mutator is checksum- and
// counter-tracked per the tiered verification policy in internal/verify
// (spec sections 3 and 4.A), grounded on
// original_source/wrt-types/src/bounded.rs's BoundedVec/BoundedStack/
// BoundedHashMap.
package bound

import (
	"sort"

	"github.com/pulseengine/wrt/internal/verify"
	"github.com/pulseengine/wrt/wrterr"
)

// Byteser is the element/key constraint every bounded collection requires,
// mirroring the Rust source's `T: AsRef<[u8]>` bound: every element must be
// able to serialize itself for the running checksum.
type Byteser interface {
	Bytes() []byte
}

// samplingCounter tracks the deterministic 1-in-N sampling decision for a
// single collection (spec 4.A: "Sampling must verify exactly one out of N
// mutations... counter modulo N").
type samplingCounter struct {
	n   int
	hit int
}

func newSamplingCounter() samplingCounter { return samplingCounter{n: verify.DefaultSamplingRate} }

// shouldSample advances the counter and reports whether this mutation is
// the sampled one.
func (s *samplingCounter) shouldSample() bool {
	if s.n <= 0 {
		s.n = verify.DefaultSamplingRate
	}
	hit := s.hit%s.n == 0
	s.hit++
	return hit
}

func sortedKeyBytes[K Byteser](keys []K) {
	sort.Slice(keys, func(i, j int) bool {
		a, b := keys[i].Bytes(), keys[j].Bytes()
		return lessBytes(a, b)
	})
}

func lessBytes(a, b []byte) bool {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return len(a) < len(b)
}

// capacityError builds the CapacityError for collection, matching the
// spec's contract: "Push/insert returns CapacityError when len == N,
// leaving contents unchanged."
func capacityError(collection string, capacity, attempted int) *wrterr.CapacityError {
	return &wrterr.CapacityError{Collection: collection, Capacity: capacity, Attempted: attempted}
}
