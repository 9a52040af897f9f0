package memory

import "sync/atomic"

// Metrics tracks per-instance usage and access patterns. Unlike the Rust
// source, which switches between atomics (std) and an RwLock-guarded
// struct (no_std), this module has exactly one build mode, so atomics are
// always used.
type Metrics struct {
	peakUsage     atomic.Uint64
	accessCount   atomic.Uint64
	maxAccessSize atomic.Uint64
	lastOffset    atomic.Uint64
	lastLength    atomic.Uint64
}

func (m *Metrics) track(offset, length int) {
	m.accessCount.Add(1)
	m.lastOffset.Store(uint64(offset))
	m.lastLength.Store(uint64(length))
	for {
		cur := m.maxAccessSize.Load()
		if uint64(length) <= cur {
			return
		}
		if m.maxAccessSize.CompareAndSwap(cur, uint64(length)) {
			return
		}
	}
}

func (m *Metrics) updatePeak(currentSize int) {
	for {
		cur := m.peakUsage.Load()
		if uint64(currentSize) <= cur {
			return
		}
		if m.peakUsage.CompareAndSwap(cur, uint64(currentSize)) {
			return
		}
	}
}
