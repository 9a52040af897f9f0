package bound

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pulseengine/wrt/internal/verify"
	"github.com/pulseengine/wrt/wrterr"
)

func TestVecPushPopWithinCapacity(t *testing.T) {
	v := NewVec[byteInt](3, verify.Standard)

	assert.NoError(t, v.Push(byteInt(1)))
	assert.NoError(t, v.Push(byteInt(2)))
	assert.NoError(t, v.Push(byteInt(3)))
	assert.True(t, v.IsFull())

	err := v.Push(byteInt(4))
	assert.Error(t, err)
	var capErr *wrterr.CapacityError
	assert.ErrorAs(t, err, &capErr)
	assert.Equal(t, 3, capErr.Capacity)
	assert.Equal(t, 4, capErr.Attempted)
	assert.Equal(t, 3, v.Len())

	item, ok := v.Pop()
	assert.True(t, ok)
	assert.Equal(t, byteInt(3), item)
	assert.Equal(t, 2, v.Len())
}

func TestVecStandardVerifiesAfterEveryMutation(t *testing.T) {
	v := NewVec[byteInt](8, verify.Standard)
	for i := 0; i < 8; i++ {
		assert.NoError(t, v.Push(byteInt(i)))
		assert.True(t, v.VerifyChecksum())
	}
	v.Set(2, byteInt(99))
	assert.True(t, v.VerifyChecksum())
	v.Remove(0)
	assert.True(t, v.VerifyChecksum())
}

func TestVecSamplingVerifiesApproximatelyOneInN(t *testing.T) {
	v := NewVec[byteInt](verify.DefaultSamplingRate*2, verify.Sampling)
	recomputed := 0
	for i := 0; i < verify.DefaultSamplingRate*2; i++ {
		before := verify.Count(verify.OpChecksum)
		assert.NoError(t, v.Push(byteInt(i)))
		if verify.Count(verify.OpChecksum) > before {
			recomputed++
		}
	}
	assert.Equal(t, 2, recomputed)
}

func TestVecNoneNeverRecomputes(t *testing.T) {
	v := NewVec[byteInt](4, verify.None)
	before := verify.Count(verify.OpChecksum)
	assert.NoError(t, v.Push(byteInt(1)))
	assert.NoError(t, v.Push(byteInt(2)))
	assert.Equal(t, before, verify.Count(verify.OpChecksum))
}

func TestVecGetOutOfRange(t *testing.T) {
	v := NewVec[byteInt](2, verify.Standard)
	_, ok := v.Get(0)
	assert.False(t, ok)
	assert.NoError(t, v.Push(byteInt(5)))
	got, ok := v.Get(0)
	assert.True(t, ok)
	assert.Equal(t, byteInt(5), got)
}

func TestVecForceRecalculateChecksumAfterLevelChange(t *testing.T) {
	v := NewVec[byteInt](4, verify.None)
	assert.NoError(t, v.Push(byteInt(1)))
	assert.NoError(t, v.Push(byteInt(2)))

	v.SetVerificationLevel(verify.Full)
	assert.True(t, v.VerifyChecksum())
}

func TestVecIterReturnsCopy(t *testing.T) {
	v := NewVec[byteInt](4, verify.Standard)
	assert.NoError(t, v.Push(byteInt(1)))
	out := v.Iter()
	out[0] = byteInt(999)
	got, _ := v.Get(0)
	assert.Equal(t, byteInt(1), got)
}
