package mathops

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pulseengine/wrt/api"
)

// TestIntegerDivisionTrap implements the integer-overflow division trap
// scenario: i32::MIN / -1 must trap IntegerOverflow.
func TestIntegerDivisionTrap(t *testing.T) {
	_, err := I32DivS(minInt32, -1)
	require.Error(t, err)
	trap, ok := err.(*api.Trap)
	require.True(t, ok)
	assert.Equal(t, api.TrapIntegerOverflow, trap.Kind)
}

func TestI64DivisionTrap(t *testing.T) {
	_, err := I64DivS(minInt64, -1)
	require.Error(t, err)
	trap, ok := err.(*api.Trap)
	require.True(t, ok)
	assert.Equal(t, api.TrapIntegerOverflow, trap.Kind)
}

func TestDivisionByZeroTraps(t *testing.T) {
	_, err := I32DivS(10, 0)
	require.Error(t, err)
	_, err = I32DivU(10, 0)
	require.Error(t, err)
	_, err = I64DivS(10, 0)
	require.Error(t, err)
	_, err = I64RemU(10, 0)
	require.Error(t, err)
}

// TestI32DivSNeverTrapsExceptEdgeCases is testable property 7: for all i32
// pairs (a,b) with b != 0 and not (a==MIN && b==-1), div_s matches
// truncated division and never traps; otherwise it traps.
func TestI32DivSNeverTrapsExceptEdgeCases(t *testing.T) {
	cases := []int32{-100, -7, -1, 0, 1, 7, 100, minInt32, maxInt32}
	for _, a := range cases {
		for _, b := range cases {
			if b == 0 {
				_, err := I32DivS(a, b)
				assert.Error(t, err)
				continue
			}
			if a == minInt32 && b == -1 {
				_, err := I32DivS(a, b)
				require.Error(t, err)
				trap := err.(*api.Trap)
				assert.Equal(t, api.TrapIntegerOverflow, trap.Kind)
				continue
			}
			got, err := I32DivS(a, b)
			require.NoError(t, err)
			assert.Equal(t, a/b, got)
		}
	}
}

func TestI32SubTrapsOnOverflow(t *testing.T) {
	_, err := I32Sub(minInt32, 1)
	require.Error(t, err)
	trap := err.(*api.Trap)
	assert.Equal(t, api.TrapIntegerOverflow, trap.Kind)

	got, err := I32Sub(10, 3)
	require.NoError(t, err)
	assert.Equal(t, int32(7), got)
}

func TestI64SubTrapsOnOverflow(t *testing.T) {
	_, err := I64Sub(minInt64, 1)
	require.Error(t, err)
	trap := err.(*api.Trap)
	assert.Equal(t, api.TrapIntegerOverflow, trap.Kind)

	got, err := I64Sub(10, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(7), got)
}

func TestAddAndMulWrapRatherThanTrap(t *testing.T) {
	got, err := I32Add(maxInt32, 1)
	require.NoError(t, err)
	assert.Equal(t, minInt32, got)

	got, err = I32Mul(maxInt32, 2)
	require.NoError(t, err)
	assert.Equal(t, int32(-2), got)
}

func TestShiftAmountsAreMasked(t *testing.T) {
	got, err := I32Shl(1, 33)
	require.NoError(t, err)
	assert.Equal(t, int32(2), got, "shift amount 33 masks to 1")

	got64, err := I64Shl(1, 65)
	require.NoError(t, err)
	assert.Equal(t, int64(2), got64, "shift amount 65 masks to 1")
}

func TestRotateAndBitCounts(t *testing.T) {
	got, err := I32Rotl(1, 1)
	require.NoError(t, err)
	assert.Equal(t, int32(2), got)

	clz, _ := I32Clz(1)
	assert.Equal(t, int32(31), clz)

	popcnt, _ := I32Popcnt(0x7)
	assert.Equal(t, int32(3), popcnt)
}

func TestRemSEdgeCaseReturnsZero(t *testing.T) {
	got, err := I32RemS(minInt32, -1)
	require.NoError(t, err)
	assert.Equal(t, int32(0), got)
}

// TestPolyfillMatchesPlatformMath is testable property 6: the no_std
// bit-manipulation polyfills must agree with the platform's math package
// for every finite, non-NaN input.
func TestPolyfillMatchesPlatformMath(t *testing.T) {
	inputs := []float64{0, 1, -1, 0.5, -0.5, 1.5, -1.5, 2.5, -2.5, 3.25,
		123456.789, -987.654, 1e10, -1e10, 1e-10}

	for _, in := range inputs {
		f32 := float32(in)
		assert.Equal(t, math.Trunc(float64(f32)), float64(WasmF32Trunc(f32)), "trunc32 %v", in)
		assert.Equal(t, math.Ceil(float64(f32)), float64(WasmF32Ceil(f32)), "ceil32 %v", in)
		assert.Equal(t, math.Floor(float64(f32)), float64(WasmF32Floor(f32)), "floor32 %v", in)
		if f32 >= 0 {
			assert.InDelta(t, math.Sqrt(float64(f32)), float64(WasmF32Sqrt(f32)), 1e-3, "sqrt32 %v", in)
		}

		assert.Equal(t, math.Trunc(in), WasmF64Trunc(in), "trunc64 %v", in)
		assert.Equal(t, math.Ceil(in), WasmF64Ceil(in), "ceil64 %v", in)
		assert.Equal(t, math.Floor(in), WasmF64Floor(in), "floor64 %v", in)
		if in >= 0 {
			assert.InDelta(t, math.Sqrt(in), WasmF64Sqrt(in), 1e-9, "sqrt64 %v", in)
		}
	}
}

func TestNearestTiesToEven(t *testing.T) {
	assert.Equal(t, float64(2), WasmF64Nearest(2.5))
	assert.Equal(t, float64(4), WasmF64Nearest(3.5))
	assert.Equal(t, float64(-2), WasmF64Nearest(-2.5))
	assert.Equal(t, float64(1), WasmF64Nearest(1.4))
}

func TestFloatMinMaxNaNPropagation(t *testing.T) {
	nan := float32(math.NaN())
	assert.True(t, math.IsNaN(float64(WasmF32Min(nan, 1))))
	assert.True(t, math.IsNaN(float64(WasmF32Max(1, nan))))
}

func TestFloatMinMaxZeroSignTieBreak(t *testing.T) {
	pos := float32(0)
	neg := float32(math.Copysign(0, -1))

	min := WasmF32Min(pos, neg)
	assert.True(t, math.Signbit(float64(min)), "min(+0,-0) must be -0")

	max := WasmF32Max(pos, neg)
	assert.False(t, math.Signbit(float64(max)), "max(+0,-0) must be +0")
}

func TestFloatComparisonsRejectNaN(t *testing.T) {
	nan := float32(math.NaN())
	assert.False(t, F32Eq(nan, nan))
	assert.True(t, F32Ne(nan, nan))
	assert.False(t, F32Lt(nan, 1))
	assert.False(t, F32Gt(1, nan))
}

func TestSaturatingTruncSatNeverTraps(t *testing.T) {
	assert.Equal(t, int32(0), I32TruncSatF32S(float32(math.NaN())))
	assert.Equal(t, maxInt32, I32TruncSatF32S(float32(math.Inf(1))))
	assert.Equal(t, minInt32, I32TruncSatF32S(float32(math.Inf(-1))))
	assert.Equal(t, int32(42), I32TruncSatF32S(42.9))

	assert.Equal(t, uint64(0), I64TruncSatF64U(-5))
	assert.Equal(t, uint64(math.MaxUint64), I64TruncSatF64U(math.Inf(1)))
}

func TestTrappingTruncConversions(t *testing.T) {
	_, err := I32TruncF32S(float32(math.NaN()))
	require.Error(t, err)
	assert.Equal(t, api.TrapInvalidConversionToInteger, err.(*api.Trap).Kind)

	_, err = I32TruncF32S(float32(math.Inf(1)))
	require.Error(t, err)

	_, err = I32TruncF64S(1e20)
	require.Error(t, err)
	assert.Equal(t, api.TrapIntegerOverflow, err.(*api.Trap).Kind)

	v, err := I32TruncF64S(42.9)
	require.NoError(t, err)
	assert.Equal(t, int32(42), v)
}

func TestWidthConversionsAndReinterpret(t *testing.T) {
	assert.Equal(t, int32(-1), I32WrapI64(-1))
	assert.Equal(t, int64(-1), I64ExtendI32S(-1))
	assert.Equal(t, uint64(0xFFFFFFFF), I64ExtendI32U(0xFFFFFFFF))
	assert.Equal(t, int32(-1), I32Extend8S(0xFF))
	assert.Equal(t, int64(-1), I64Extend32S(-1))

	bits := F32ReinterpretI32(I32ReinterpretF32(3.5))
	assert.Equal(t, float32(3.5), bits)
}
