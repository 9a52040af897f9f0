package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pulseengine/wrt/internal/verify"
)

func TestMemoryBulkFillScenario(t *testing.T) {
	m := New(1, nil, verify.Standard)

	require.NoError(t, m.Fill(100, 0x7F, 16))

	for i := 100; i < 116; i++ {
		b, err := m.GetByte(uint32(i))
		require.NoError(t, err)
		assert.Equal(t, byte(0x7F), b, "offset %d", i)
	}
	b, err := m.GetByte(99)
	require.NoError(t, err)
	assert.Equal(t, byte(0), b)
	b, err = m.GetByte(116)
	require.NoError(t, err)
	assert.Equal(t, byte(0), b)

	assert.Equal(t, uint64(PageSize), m.PeakMemory())
}

func TestMemoryGrowSuccessAndSentinel(t *testing.T) {
	maxPages := uint32(2)
	m := New(1, &maxPages, verify.Standard)

	prev := m.Grow(1)
	assert.Equal(t, uint32(1), prev)
	assert.Equal(t, uint32(2), m.Size())

	sentinel := m.Grow(1)
	assert.Equal(t, GrowFailureSentinel, sentinel)
	assert.Equal(t, uint32(2), m.Size())
}

func TestMemoryGrowZeroesNewBytes(t *testing.T) {
	m := New(1, nil, verify.Standard)
	require.NoError(t, m.Write(0, []byte{1, 2, 3}))
	m.Grow(1)

	b, err := m.GetByte(uint32(PageSize))
	require.NoError(t, err)
	assert.Equal(t, byte(0), b)
}

func TestMemoryReadWriteOutOfBounds(t *testing.T) {
	m := New(1, nil, verify.Standard)
	err := m.Write(PageSize-1, []byte{1, 2})
	assert.Error(t, err)
	err = m.Read(PageSize, make([]byte, 1))
	assert.Error(t, err)
}

func TestMemoryCheckAlignment(t *testing.T) {
	m := New(1, nil, verify.Standard)
	assert.NoError(t, m.CheckAlignment(8, 4, 2))
	assert.Error(t, m.CheckAlignment(7, 4, 2))
}

func TestMemoryTypedAccessorsRoundTrip(t *testing.T) {
	m := New(1, nil, verify.Standard)

	require.NoError(t, m.WriteI32(0, -42))
	v32, err := m.ReadI32(0)
	require.NoError(t, err)
	assert.Equal(t, int32(-42), v32)

	require.NoError(t, m.WriteF64(8, 3.25))
	vf64, err := m.ReadF64(8)
	require.NoError(t, err)
	assert.Equal(t, 3.25, vf64)

	require.NoError(t, m.WriteV128(16, [16]byte{1, 2, 3}))
	v128, err := m.ReadV128(16)
	require.NoError(t, err)
	assert.Equal(t, byte(1), v128[0])
}

func TestMemoryCopyWithinSameInstance(t *testing.T) {
	m := New(1, nil, verify.Standard)
	require.NoError(t, m.Write(0, []byte{1, 2, 3, 4}))
	require.NoError(t, m.CopyWithinOrBetween(m, 0, 2, 4))

	buf := make([]byte, 6)
	require.NoError(t, m.Read(0, buf))
	assert.Equal(t, []byte{1, 2, 1, 2, 3, 4}, buf)
}

func TestMemoryCopyBetweenInstances(t *testing.T) {
	src := New(1, nil, verify.Standard)
	dst := New(1, nil, verify.Standard)
	require.NoError(t, src.Write(0, []byte{9, 9, 9}))

	require.NoError(t, dst.CopyWithinOrBetween(src, 0, 10, 3))

	buf := make([]byte, 3)
	require.NoError(t, dst.Read(10, buf))
	assert.Equal(t, []byte{9, 9, 9}, buf)
}

func TestMemoryInit(t *testing.T) {
	m := New(1, nil, verify.Standard)
	segment := []byte{10, 20, 30, 40}
	require.NoError(t, m.Init(0, segment, 1, 2))

	buf := make([]byte, 2)
	require.NoError(t, m.Read(0, buf))
	assert.Equal(t, []byte{20, 30}, buf)
}

func TestMemoryVerifyIntegrity(t *testing.T) {
	m := New(1, nil, verify.Standard)
	assert.NoError(t, m.VerifyIntegrity())
	m.Grow(1)
	assert.NoError(t, m.VerifyIntegrity())
}
