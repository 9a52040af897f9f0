package bound

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pulseengine/wrt/internal/verify"
)

func TestStackLIFOOrder(t *testing.T) {
	s := NewStack[byteInt](4, verify.Standard)
	assert.NoError(t, s.Push(byteInt(1)))
	assert.NoError(t, s.Push(byteInt(2)))
	assert.NoError(t, s.Push(byteInt(3)))

	top, ok := s.Peek()
	assert.True(t, ok)
	assert.Equal(t, byteInt(3), top)

	item, ok := s.Pop()
	assert.True(t, ok)
	assert.Equal(t, byteInt(3), item)

	item, ok = s.Pop()
	assert.True(t, ok)
	assert.Equal(t, byteInt(2), item)

	assert.Equal(t, 1, s.Len())
}

func TestStackCapacityError(t *testing.T) {
	s := NewStack[byteInt](2, verify.Standard)
	assert.NoError(t, s.Push(byteInt(1)))
	assert.NoError(t, s.Push(byteInt(2)))
	err := s.Push(byteInt(3))
	assert.Error(t, err)
	assert.Equal(t, 2, s.Len())
}

func TestStackPopEmpty(t *testing.T) {
	s := NewStack[byteInt](2, verify.Standard)
	_, ok := s.Pop()
	assert.False(t, ok)
	_, ok = s.Peek()
	assert.False(t, ok)
}

func TestStackVerifyChecksumAfterMutations(t *testing.T) {
	s := NewStack[byteInt](8, verify.Full)
	for i := 0; i < 8; i++ {
		assert.NoError(t, s.Push(byteInt(i)))
	}
	assert.True(t, s.VerifyChecksum())
	s.Pop()
	assert.True(t, s.VerifyChecksum())
}
