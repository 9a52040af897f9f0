package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pulseengine/wrt/api"
	"github.com/pulseengine/wrt/internal/codec"
	"github.com/pulseengine/wrt/internal/memory"
	"github.com/pulseengine/wrt/internal/verify"
)

func i32const(v int32) codec.Instruction { return codec.Instruction{Op: codec.OpI32Const, I32Val: v} }

func newTestEngine(body []codec.Instruction, numResults int, limits Limits) *Engine {
	fn := &Function{Body: body, NumParams: 0, NumResults: numResults}
	mem := memory.New(1, nil, verify.Standard)
	return New([]*Function{fn}, nil, mem, nil, nil, limits, verify.Standard)
}

// Scenario S1: integer division by zero traps with TrapIntegerDivideByZero,
// and a division that overflows (math.MinInt32 / -1) traps with
// TrapIntegerOverflow rather than wrapping.
func TestDivideByZeroTraps(t *testing.T) {
	body := []codec.Instruction{
		i32const(1),
		i32const(0),
		{Op: codec.OpI32DivS},
	}
	e := newTestEngine(body, 1, DefaultLimits())

	_, err := e.Invoke(context.Background(), 0, nil)
	require.Error(t, err)
	trap, ok := err.(*api.Trap)
	require.True(t, ok, "expected *api.Trap, got %T", err)
	assert.Equal(t, api.TrapIntegerDivideByZero, trap.Kind)
}

func TestSignedDivisionOverflowTraps(t *testing.T) {
	body := []codec.Instruction{
		i32const(-2147483648),
		i32const(-1),
		{Op: codec.OpI32DivS},
	}
	e := newTestEngine(body, 1, DefaultLimits())

	_, err := e.Invoke(context.Background(), 0, nil)
	require.Error(t, err)
	trap, ok := err.(*api.Trap)
	require.True(t, ok, "expected *api.Trap, got %T", err)
	assert.Equal(t, api.TrapIntegerOverflow, trap.Kind)
}

// Scenario S6: a loop that unconditionally branches to its own header
// never falls off the end, so it must eventually exhaust fuel rather than
// loop forever.
func TestLoopBranchExhaustsFuel(t *testing.T) {
	loopBody := []codec.Instruction{
		{Op: codec.OpBr, Idx: 0},
	}
	body := []codec.Instruction{
		{Op: codec.OpLoop, Then: loopBody, BlockType: codec.BlockType{Kind: codec.BlockEmpty}},
	}
	limits := DefaultLimits()
	limits.FuelPerStep = 10
	e := newTestEngine(body, 0, limits)

	_, err := e.Invoke(context.Background(), 0, nil)
	require.Error(t, err)
	trap, ok := err.(*api.Trap)
	require.True(t, ok, "expected *api.Trap, got %T", err)
	assert.Equal(t, api.TrapFuelExhausted, trap.Kind)
	assert.Equal(t, uint64(0), e.FuelRemaining())
}

// Property 8: a trap leaves engine state (globals, memory) unchanged
// except for fuel consumed and metrics.
func TestTrapLeavesStateUnchangedExceptFuelAndMetrics(t *testing.T) {
	body := []codec.Instruction{
		{Op: codec.OpGlobalGet, Idx: 0},
		i32const(1),
		{Op: codec.OpI32Add},
		{Op: codec.OpGlobalSet, Idx: 0},
		i32const(1),
		i32const(0),
		{Op: codec.OpI32DivS},
	}
	fn := &Function{Body: body, NumParams: 0, NumResults: 0}
	mem := memory.New(1, nil, verify.Standard)
	require.NoError(t, mem.WriteI32(0, 42))
	globals := []api.Value{api.I32(7)}
	e := New([]*Function{fn}, nil, mem, globals, nil, DefaultLimits(), verify.Standard)

	_, err := e.Invoke(context.Background(), 0, nil)
	require.Error(t, err)

	// The global write before the trapping division is rolled back when
	// the invocation traps, and the memory untouched by this body is
	// unchanged.
	assert.Equal(t, int32(7), e.Globals[0].I32())
	v, err := mem.ReadI32(0)
	require.NoError(t, err)
	assert.Equal(t, int32(42), v)

	metrics := e.Metrics()
	assert.Greater(t, metrics.InstructionsExecuted, uint64(0))
	assert.Greater(t, metrics.FuelConsumed, uint64(0))
}

// Property 9: memory.grow is monotonic — once grown, Size never
// decreases, and a grow that would breach the configured maximum leaves
// the memory exactly as it was (the GrowFailureSentinel path), observed
// here through the engine's MemoryGrow opcode rather than calling
// memory.Memory directly.
func TestMemoryGrowMonotonicThroughEngine(t *testing.T) {
	maxPages := uint32(2)
	mem := memory.New(1, &maxPages, verify.Standard)
	body := []codec.Instruction{
		i32const(1),
		{Op: codec.OpMemoryGrow},
	}
	fn := &Function{Body: body, NumParams: 0, NumResults: 1}
	e := New([]*Function{fn}, nil, mem, nil, nil, DefaultLimits(), verify.Standard)

	results, err := e.Invoke(context.Background(), 0, nil)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, int32(1), results[0].I32())
	assert.Equal(t, uint32(2), mem.Size())

	results, err = e.Invoke(context.Background(), 0, nil)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, int32(-1), results[0].I32()) // memory.GrowFailureSentinel as i32
	assert.Equal(t, uint32(2), mem.Size())
}

func TestCallStackOverflowTraps(t *testing.T) {
	fn := &Function{Body: []codec.Instruction{{Op: codec.OpCall, Idx: 0}}, NumParams: 0, NumResults: 0}
	mem := memory.New(1, nil, verify.Standard)
	limits := DefaultLimits()
	limits.MaxCallDepth = 4
	e := New([]*Function{fn}, nil, mem, nil, nil, limits, verify.Standard)

	_, err := e.Invoke(context.Background(), 0, nil)
	require.Error(t, err)
	trap, ok := err.(*api.Trap)
	require.True(t, ok, "expected *api.Trap, got %T", err)
	assert.Equal(t, api.TrapCallStackOverflow, trap.Kind)
}

func TestBlockBranchSkipsRestOfBody(t *testing.T) {
	then := []codec.Instruction{
		i32const(1),
		{Op: codec.OpBr, Idx: 0},
		i32const(99), // unreachable: br 0 exits the block first
	}
	body := []codec.Instruction{
		{Op: codec.OpBlock, Then: then, BlockType: codec.BlockType{Kind: codec.BlockValue, ValueType: byte(api.ValueTypeI32)}},
	}
	fn := &Function{Body: body, NumParams: 0, NumResults: 1}
	mem := memory.New(1, nil, verify.Standard)
	e := New([]*Function{fn}, nil, mem, nil, nil, DefaultLimits(), verify.Standard)

	results, err := e.Invoke(context.Background(), 0, nil)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, int32(1), results[0].I32())
}

func TestNumericArithmeticAndComparison(t *testing.T) {
	body := []codec.Instruction{
		i32const(3),
		i32const(4),
		{Op: codec.OpI32Add},
		i32const(7),
		{Op: codec.OpI32Eq},
	}
	e := newTestEngine(body, 1, DefaultLimits())

	results, err := e.Invoke(context.Background(), 0, nil)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, int32(1), results[0].I32())
}
