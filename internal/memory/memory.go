// Package memory implements WebAssembly linear memory: page-grained
// storage with bounds-checked typed access, bulk operations, alignment
// checks and an integrity hook, grounded on
// original_source/wrt-runtime/src/memory.rs.
package memory

import (
	"sync/atomic"

	"github.com/pulseengine/wrt/api"
	"github.com/pulseengine/wrt/internal/verify"
)

// PageSize is the WebAssembly linear memory page size (64KiB).
const PageSize = 65536

// MaxPages is the maximum number of pages a WebAssembly memory may have.
const MaxPages uint32 = 65536

// GrowFailureSentinel is returned by Grow when growth would breach the
// memory's maximum page count; data is left untouched.
const GrowFailureSentinel uint32 = 0xFFFFFFFF

var nextID atomic.Uint64

// Memory is a single linear memory instance. Instances are identified by
// a monotonic ID rather than by pointer: the source's copy_within_or_between
// compares two memory instances by Arc::ptr_eq, which has no direct
// analogue once a memory's Go representation isn't pinned to one address;
// an explicit ID is the stable identity SPEC_FULL calls for.
type Memory struct {
	id           uint64
	debugName    string
	data         []byte
	currentPages uint32
	minPages     uint32
	maxPages     *uint32
	level        verify.Level
	metrics      Metrics
}

// New creates a memory instance with minPages pages already committed and
// an optional page ceiling.
func New(minPages uint32, maxPages *uint32, level verify.Level) *Memory {
	m := &Memory{
		id:           nextID.Add(1),
		data:         make([]byte, int(minPages)*PageSize),
		currentPages: minPages,
		minPages:     minPages,
		maxPages:     maxPages,
		level:        level,
	}
	m.metrics.updatePeak(m.SizeInBytes())
	return m
}

// ID returns this instance's stable identity.
func (m *Memory) ID() uint64 { return m.id }

// SetDebugName attaches an optional debug label.
func (m *Memory) SetDebugName(name string) { m.debugName = name }

// DebugName returns the debug label, or "" if none was set.
func (m *Memory) DebugName() string { return m.debugName }

// Size returns the current size in pages.
func (m *Memory) Size() uint32 { return m.currentPages }

// SizeInBytes returns the current size in bytes.
func (m *Memory) SizeInBytes() int { return int(m.currentPages) * PageSize }

// Buffer returns the live backing slice. Callers must not retain it
// across a Grow, which may reallocate.
func (m *Memory) Buffer() []byte { return m.data }

// VerificationLevel returns the current verification level.
func (m *Memory) VerificationLevel() verify.Level { return m.level }

// SetVerificationLevel changes the verification level.
func (m *Memory) SetVerificationLevel(level verify.Level) { m.level = level }

// PeakMemory returns the largest size in bytes this instance has reached.
func (m *Memory) PeakMemory() uint64 { return m.metrics.peakUsage.Load() }

// AccessCount returns the number of tracked memory accesses.
func (m *Memory) AccessCount() uint64 { return m.metrics.accessCount.Load() }

// MaxAccessSize returns the largest single access size seen so far.
func (m *Memory) MaxAccessSize() uint64 { return m.metrics.maxAccessSize.Load() }

// LastAccessOffset returns the offset of the most recent tracked access.
func (m *Memory) LastAccessOffset() uint64 { return m.metrics.lastOffset.Load() }

// LastAccessLength returns the length of the most recent tracked access.
func (m *Memory) LastAccessLength() uint64 { return m.metrics.lastLength.Load() }

func (m *Memory) trackAccess(offset, length int) {
	m.metrics.track(offset, length)
	verify.Record(verify.OpLookup)
}

func outOfBounds(detail string) *api.Trap {
	return api.NewTrap(api.TrapMemoryOutOfBounds, detail)
}

func misaligned(detail string) *api.Trap {
	return api.NewTrap(api.TrapMisalignedAccess, detail)
}

// boundsCheck reports whether [offset, offset+length) lies within size,
// guarding against the offset+length overflow the spec calls out.
func boundsCheck(offset, length, size int) bool {
	if offset < 0 || length < 0 {
		return false
	}
	end := offset + length
	if end < offset {
		return false
	}
	return end <= size
}

// Grow increases the memory by delta pages, returning the previous page
// count, or GrowFailureSentinel (leaving the memory unchanged) if growth
// would overflow or exceed the configured maximum. New bytes are zeroed.
func (m *Memory) Grow(delta uint32) uint32 {
	newPages := m.currentPages + delta
	if newPages < m.currentPages {
		return GrowFailureSentinel
	}
	if newPages > MaxPages {
		return GrowFailureSentinel
	}
	if m.maxPages != nil && newPages > *m.maxPages {
		return GrowFailureSentinel
	}

	old := m.currentPages
	newData := make([]byte, int(newPages)*PageSize)
	copy(newData, m.data)
	m.data = newData
	m.currentPages = newPages
	m.metrics.updatePeak(m.SizeInBytes())
	return old
}

// Read copies len(buffer) bytes starting at offset into buffer.
func (m *Memory) Read(offset uint32, buffer []byte) error {
	if len(buffer) == 0 {
		return nil
	}
	if !boundsCheck(int(offset), len(buffer), len(m.data)) {
		return outOfBounds("read out of bounds")
	}
	copy(buffer, m.data[offset:int(offset)+len(buffer)])
	m.trackAccess(int(offset), len(buffer))
	return nil
}

// Write copies buffer into memory starting at offset.
func (m *Memory) Write(offset uint32, buffer []byte) error {
	if len(buffer) == 0 {
		return nil
	}
	if !boundsCheck(int(offset), len(buffer), len(m.data)) {
		return outOfBounds("write out of bounds")
	}
	copy(m.data[offset:int(offset)+len(buffer)], buffer)
	m.trackAccess(int(offset), len(buffer))
	m.metrics.updatePeak(m.SizeInBytes())
	return nil
}

// GetByte reads a single byte.
func (m *Memory) GetByte(offset uint32) (byte, error) {
	if !boundsCheck(int(offset), 1, len(m.data)) {
		return 0, outOfBounds("byte read out of bounds")
	}
	m.trackAccess(int(offset), 1)
	return m.data[offset], nil
}

// SetByte writes a single byte.
func (m *Memory) SetByte(offset uint32, value byte) error {
	if !boundsCheck(int(offset), 1, len(m.data)) {
		return outOfBounds("byte write out of bounds")
	}
	m.data[offset] = value
	m.trackAccess(int(offset), 1)
	return nil
}

// CheckAlignment verifies addr is a multiple of 2^alignLog2 and that the
// access of accessSize bytes at addr fits within memory.
func (m *Memory) CheckAlignment(addr, accessSize uint32, alignLog2 uint32) error {
	align := uint32(1) << alignLog2
	if addr%align != 0 {
		return misaligned("address is not aligned to the required boundary")
	}
	if !boundsCheck(int(addr), int(accessSize), len(m.data)) {
		return outOfBounds("aligned access out of bounds")
	}
	return nil
}

// VerifyIntegrity confirms the backing buffer's length matches the
// memory's declared page count.
func (m *Memory) VerifyIntegrity() error {
	verify.Record(verify.OpValidate)
	if len(m.data) != int(m.currentPages)*PageSize {
		return outOfBounds("memory buffer length does not match page count")
	}
	return nil
}

// Fill writes n copies of val starting at dst.
func (m *Memory) Fill(dst uint32, val byte, n uint32) error {
	if !boundsCheck(int(dst), int(n), len(m.data)) {
		return outOfBounds("fill out of bounds")
	}
	region := m.data[dst : int(dst)+int(n)]
	for i := range region {
		region[i] = val
	}
	m.trackAccess(int(dst), int(n))
	m.metrics.updatePeak(m.SizeInBytes())
	return nil
}

// Init copies n bytes from data[src:src+n] into this memory at dst.
func (m *Memory) Init(dst uint32, data []byte, src, n uint32) error {
	if !boundsCheck(int(src), int(n), len(data)) {
		return outOfBounds("init source out of bounds")
	}
	if !boundsCheck(int(dst), int(n), len(m.data)) {
		return outOfBounds("init destination out of bounds")
	}
	copy(m.data[dst:int(dst)+int(n)], data[src:int(src)+int(n)])
	m.trackAccess(int(dst), int(n))
	return nil
}

// CopyWithinOrBetween copies n bytes from srcMem[srcAddr:] into
// m[dstAddr:]. When srcMem and m share an ID the copy is a same-memory
// move; Go's copy has memmove semantics regardless, so both branches are
// implemented identically, but the identity check is kept because it is
// the stable-identity contract SPEC_FULL requires in place of Arc::ptr_eq.
func (m *Memory) CopyWithinOrBetween(srcMem *Memory, srcAddr, dstAddr, n uint32) error {
	if !boundsCheck(int(srcAddr), int(n), len(srcMem.data)) {
		return outOfBounds("copy source out of bounds")
	}
	if !boundsCheck(int(dstAddr), int(n), len(m.data)) {
		return outOfBounds("copy destination out of bounds")
	}

	srcSlice := make([]byte, n)
	copy(srcSlice, srcMem.data[srcAddr:int(srcAddr)+int(n)])
	copy(m.data[dstAddr:int(dstAddr)+int(n)], srcSlice)

	m.trackAccess(int(dstAddr), int(n))
	if srcMem.id != m.id {
		srcMem.trackAccess(int(srcAddr), int(n))
	}
	m.metrics.updatePeak(m.SizeInBytes())
	return nil
}
