package bound

import (
	"github.com/pulseengine/wrt/internal/verify"
)

// Map is a fixed-capacity key-value collection with deterministic,
// sorted-by-key-bytes iteration order, grounded on BoundedHashMap in
// original_source/wrt-types/src/bounded.rs. The Rust source branches
// between a std HashMap (unordered) and a no_std BTreeMap (ordered)
// depending on build mode; this module has exactly one build mode, so
// Map always iterates in sorted key order, resolving the divergence
// noted in spec section 9's open questions.
type Map[K Byteser, V Byteser] struct {
	keys     []K
	values   []V
	capacity int
	level    verify.Level
	checksum verify.Checksum
	sampling samplingCounter
	eq       func(a, b K) bool
}

// NewMap constructs an empty Map with the given fixed capacity,
// verification level, and key-equality function (K is not required to be
// comparable, matching the Rust source's custom Eq bound on key types).
func NewMap[K Byteser, V Byteser](capacity int, level verify.Level, eq func(a, b K) bool) *Map[K, V] {
	return &Map[K, V]{
		keys:     make([]K, 0, capacity),
		values:   make([]V, 0, capacity),
		capacity: capacity,
		level:    level,
		checksum: verify.NewChecksum(),
		sampling: newSamplingCounter(),
		eq:       eq,
	}
}

func (m *Map[K, V]) Len() int      { return len(m.keys) }
func (m *Map[K, V]) Capacity() int { return m.capacity }
func (m *Map[K, V]) IsFull() bool  { return len(m.keys) >= m.capacity }

func (m *Map[K, V]) VerificationLevel() verify.Level { return m.level }

func (m *Map[K, V]) SetVerificationLevel(level verify.Level) {
	wasNone := m.level == verify.None
	m.level = level
	if wasNone && level != verify.None {
		m.recomputeChecksum()
	}
}

func (m *Map[K, V]) indexOf(key K) int {
	for i, k := range m.keys {
		if m.eq(k, key) {
			return i
		}
	}
	return -1
}

// recomputeChecksum folds key and value bytes in sorted-by-key order so the
// checksum is independent of insertion order.
func (m *Map[K, V]) recomputeChecksum() {
	order := m.sortedIndices()
	c := verify.NewChecksum()
	for _, i := range order {
		c = c.Update(m.keys[i].Bytes())
		c = c.Update(m.values[i].Bytes())
	}
	m.checksum = c
	verify.Record(verify.OpChecksum)
}

func (m *Map[K, V]) sortedIndices() []int {
	idx := make([]int, len(m.keys))
	for i := range idx {
		idx[i] = i
	}
	keyBytes := make([][]byte, len(m.keys))
	for i, k := range m.keys {
		keyBytes[i] = k.Bytes()
	}
	for i := 1; i < len(idx); i++ {
		for j := i; j > 0 && lessBytes(keyBytes[idx[j]], keyBytes[idx[j-1]]); j-- {
			idx[j], idx[j-1] = idx[j-1], idx[j]
		}
	}
	return idx
}

func (m *Map[K, V]) settleChecksum() {
	switch m.level {
	case verify.Sampling:
		if m.sampling.shouldSample() {
			m.recomputeChecksum()
		}
	case verify.Standard, verify.Full:
		m.recomputeChecksum()
	}
}

// Insert adds or replaces the value for key. Replacing an existing key
// never triggers a CapacityError, matching the Rust source's "update in
// place does not count against capacity" rule.
func (m *Map[K, V]) Insert(key K, value V) (previous V, existed bool, err error) {
	verify.Record(verify.OpPush)
	if i := m.indexOf(key); i >= 0 {
		previous = m.values[i]
		m.values[i] = value
		m.settleChecksum()
		return previous, true, nil
	}
	if m.IsFull() {
		return previous, false, capacityError("Map", m.capacity, len(m.keys)+1)
	}
	m.keys = append(m.keys, key)
	m.values = append(m.values, value)
	m.settleChecksum()
	return previous, false, nil
}

// Get looks up key, re-verifying the checksum first at Full level.
func (m *Map[K, V]) Get(key K) (value V, ok bool) {
	verify.Record(verify.OpLookup)
	if m.level == verify.Full && !m.VerifyChecksum() {
		return value, false
	}
	i := m.indexOf(key)
	if i < 0 {
		return value, false
	}
	return m.values[i], true
}

// Remove deletes key if present.
func (m *Map[K, V]) Remove(key K) (value V, ok bool) {
	verify.Record(verify.OpPop)
	i := m.indexOf(key)
	if i < 0 {
		return value, false
	}
	value = m.values[i]
	m.keys = append(m.keys[:i], m.keys[i+1:]...)
	m.values = append(m.values[:i], m.values[i+1:]...)
	m.settleChecksum()
	return value, true
}

// Entry pairs a key and value for iteration.
type Entry[K Byteser, V Byteser] struct {
	Key   K
	Value V
}

// Iter returns all entries sorted by key bytes, making iteration order
// deterministic regardless of insertion history.
func (m *Map[K, V]) Iter() []Entry[K, V] {
	order := m.sortedIndices()
	out := make([]Entry[K, V], len(order))
	for i, idx := range order {
		out[i] = Entry[K, V]{Key: m.keys[idx], Value: m.values[idx]}
	}
	return out
}

// VerifyChecksum recomputes the checksum fresh, in sorted-key order, and
// compares against the stored value.
func (m *Map[K, V]) VerifyChecksum() bool {
	verify.Record(verify.OpValidate)
	if len(m.keys) == 0 {
		return true
	}
	order := m.sortedIndices()
	fresh := verify.NewChecksum()
	for _, i := range order {
		fresh = fresh.Update(m.keys[i].Bytes())
		fresh = fresh.Update(m.values[i].Bytes())
	}
	return fresh.Equal(m.checksum)
}

// ForceRecalculateChecksum recomputes and stores the checksum
// unconditionally.
func (m *Map[K, V]) ForceRecalculateChecksum() {
	m.recomputeChecksum()
}
