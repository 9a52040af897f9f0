package component

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pulseengine/wrt/internal/verify"
	"github.com/pulseengine/wrt/wrterr"
)

// Scenario S5: cross-component call lifecycle. 3 parameters
// (I32(1), String("hi"), List([I32(2), I32(3)])), 1 resource handle.
// Expected: Prepared->Executing, 1 SharedRead lock, marshaled size
// 4 + (4+2) + (4+8) = 22; on complete, lock released, stats show 0
// active calls (this manager removes completed contexts from the table,
// as the Rust source's complete_call_context does via HashMap::remove).
func TestCrossComponentCallLifecycle(t *testing.T) {
	m := NewCallContextManager(verify.Standard)

	ctx := CallContext{
		SourceInstance:  1,
		TargetInstance:  2,
		FunctionName:    "do-thing",
		Parameters:      []ComponentValue{I32Value(1), StringValue("hi"), ListValue(I32Value(2), I32Value(3))},
		ResourceHandles: []uint64{42},
		StartedAt:       0,
		MaxDurationUs:   1_000_000,
	}

	id, err := m.PrepareCall(ctx)
	require.NoError(t, err)
	assert.Equal(t, CallID(0), id)

	mc, ok := m.GetCallContext(id)
	require.True(t, ok)
	assert.Equal(t, CallExecuting, mc.State)
	assert.Equal(t, uint32(22), mc.MarshaledSize)
	require.Len(t, mc.AcquiredLocks, 1)
	assert.Equal(t, uint64(42), mc.AcquiredLocks[0])

	kind, held := m.LockKind(42)
	require.True(t, held)
	assert.Equal(t, SharedRead, kind)

	assert.Equal(t, 1, m.Stats())

	require.NoError(t, m.CompleteCall(id))
	_, held = m.LockKind(42)
	assert.False(t, held)
	assert.Equal(t, 0, m.Stats())

	_, ok = m.GetCallContext(id)
	assert.False(t, ok, "a completed context is removed from the table")
}

// Property 10: at any instant, a handle has either at most one
// ExclusiveWrite/Transfer lock, or any number of SharedRead locks.
func TestExclusiveLockExcludesConcurrentAccess(t *testing.T) {
	m := NewCallContextManager(verify.Standard)

	first := CallContext{
		SourceInstance:    1,
		TargetInstance:    2,
		ResourceHandles:   []uint64{7},
		RequestedLockKind: ExclusiveWrite,
	}
	id1, err := m.PrepareCall(first)
	require.NoError(t, err)

	second := CallContext{
		SourceInstance:    1,
		TargetInstance:    2,
		ResourceHandles:   []uint64{7},
		RequestedLockKind: SharedRead,
	}
	_, err = m.PrepareCall(second)
	require.Error(t, err)
	verr, ok := err.(*wrterr.ValidationError)
	require.True(t, ok)
	assert.Equal(t, wrterr.ValidationResourceUnavailable, verr.Kind)

	require.NoError(t, m.CompleteCall(id1))

	// Once released, the handle is free again.
	_, err = m.PrepareCall(second)
	assert.NoError(t, err)
}

func TestSharedReadLocksCoexist(t *testing.T) {
	m := NewCallContextManager(verify.Standard)
	ctx := CallContext{SourceInstance: 1, TargetInstance: 2, ResourceHandles: []uint64{9}, RequestedLockKind: SharedRead}

	id1, err := m.PrepareCall(ctx)
	require.NoError(t, err)
	id2, err := m.PrepareCall(ctx)
	require.NoError(t, err)

	assert.NotEqual(t, id1, id2)
	assert.Equal(t, 2, m.Stats())
}

func TestDeterministicLockAcquisitionOrder(t *testing.T) {
	m := NewCallContextManager(verify.Standard)
	ctx := CallContext{
		SourceInstance:  1,
		TargetInstance:  2,
		ResourceHandles: []uint64{30, 10, 20},
	}
	id, err := m.PrepareCall(ctx)
	require.NoError(t, err)
	mc, ok := m.GetCallContext(id)
	require.True(t, ok)
	assert.Equal(t, []uint64{10, 20, 30}, mc.AcquiredLocks)
}

func TestFailCallReleasesLocks(t *testing.T) {
	m := NewCallContextManager(verify.Standard)
	ctx := CallContext{SourceInstance: 1, TargetInstance: 2, ResourceHandles: []uint64{5}}
	id, err := m.PrepareCall(ctx)
	require.NoError(t, err)

	require.NoError(t, m.FailCall(id, "host aborted"))
	_, held := m.LockKind(5)
	assert.False(t, held)

	mc, ok := m.GetCallContext(id)
	assert.False(t, ok)
	_ = mc
}

func TestSweepReclaimsExpiredCalls(t *testing.T) {
	m := NewCallContextManager(verify.Standard)
	ctx := CallContext{
		SourceInstance:  1,
		TargetInstance:  2,
		ResourceHandles: []uint64{1},
		StartedAt:       1000,
		MaxDurationUs:   500,
	}
	id, err := m.PrepareCall(ctx)
	require.NoError(t, err)

	// Not yet expired.
	reclaimed := m.Sweep(1400)
	assert.Empty(t, reclaimed)

	reclaimed = m.Sweep(1600)
	assert.Equal(t, []CallID{id}, reclaimed)

	_, held := m.LockKind(1)
	assert.False(t, held)
	_, ok := m.GetCallContext(id)
	assert.False(t, ok)
}

func TestMarshalingRejectsOversizedString(t *testing.T) {
	big := make([]byte, MaxStringLength+1)
	ctx := CallContext{
		SourceInstance: 1,
		TargetInstance: 2,
		Parameters:     []ComponentValue{StringValue(string(big))},
	}
	m := NewCallContextManager(verify.Standard)
	_, err := m.PrepareCall(ctx)
	require.Error(t, err)
	merr, ok := err.(*wrterr.MarshalingError)
	require.True(t, ok)
	assert.Equal(t, wrterr.MarshalingStringTooLong, merr.Kind)
}

func TestSecurityPolicyDeniesDisallowedTarget(t *testing.T) {
	m := NewCallContextManager(verify.Standard)
	m.SetSecurityPolicy(1, SecurityPolicy{AllowedTargets: []uint32{3}})

	ctx := CallContext{SourceInstance: 1, TargetInstance: 2}
	_, err := m.PrepareCall(ctx)
	require.Error(t, err)
	verr, ok := err.(*wrterr.ValidationError)
	require.True(t, ok)
	assert.Equal(t, wrterr.ValidationSecurityDenied, verr.Kind)
}
