package bound

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pulseengine/wrt/internal/verify"
)

func TestMapInsertGetRemove(t *testing.T) {
	m := NewMap[byteInt, byteInt](4, verify.Standard, byteIntEq)

	_, existed, err := m.Insert(byteInt(1), byteInt(100))
	assert.NoError(t, err)
	assert.False(t, existed)

	got, ok := m.Get(byteInt(1))
	assert.True(t, ok)
	assert.Equal(t, byteInt(100), got)

	prev, existed, err := m.Insert(byteInt(1), byteInt(200))
	assert.NoError(t, err)
	assert.True(t, existed)
	assert.Equal(t, byteInt(100), prev)

	got, ok = m.Get(byteInt(1))
	assert.True(t, ok)
	assert.Equal(t, byteInt(200), got)

	removed, ok := m.Remove(byteInt(1))
	assert.True(t, ok)
	assert.Equal(t, byteInt(200), removed)
	assert.Equal(t, 0, m.Len())
}

func TestMapCapacityErrorOnNewKey(t *testing.T) {
	m := NewMap[byteInt, byteInt](2, verify.Standard, byteIntEq)
	_, _, err := m.Insert(byteInt(1), byteInt(10))
	assert.NoError(t, err)
	_, _, err = m.Insert(byteInt(2), byteInt(20))
	assert.NoError(t, err)

	_, _, err = m.Insert(byteInt(3), byteInt(30))
	assert.Error(t, err)

	// Updating an existing key never counts against capacity.
	_, existed, err := m.Insert(byteInt(1), byteInt(11))
	assert.NoError(t, err)
	assert.True(t, existed)
}

func TestMapIterIsSortedByKeyRegardlessOfInsertionOrder(t *testing.T) {
	m := NewMap[byteInt, byteInt](4, verify.Standard, byteIntEq)
	_, _, _ = m.Insert(byteInt(30), byteInt(3))
	_, _, _ = m.Insert(byteInt(10), byteInt(1))
	_, _, _ = m.Insert(byteInt(20), byteInt(2))

	entries := m.Iter()
	assert.Len(t, entries, 3)
	assert.Equal(t, byteInt(10), entries[0].Key)
	assert.Equal(t, byteInt(20), entries[1].Key)
	assert.Equal(t, byteInt(30), entries[2].Key)
}

func TestMapVerifyChecksumIndependentOfInsertionOrder(t *testing.T) {
	a := NewMap[byteInt, byteInt](4, verify.Full, byteIntEq)
	_, _, _ = a.Insert(byteInt(1), byteInt(10))
	_, _, _ = a.Insert(byteInt(2), byteInt(20))

	b := NewMap[byteInt, byteInt](4, verify.Full, byteIntEq)
	_, _, _ = b.Insert(byteInt(2), byteInt(20))
	_, _, _ = b.Insert(byteInt(1), byteInt(10))

	assert.Equal(t, a.checksum.Value(), b.checksum.Value())
	assert.True(t, a.VerifyChecksum())
	assert.True(t, b.VerifyChecksum())
}
