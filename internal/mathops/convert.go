package mathops

import (
	"math"

	"github.com/pulseengine/wrt/api"
)

// This file implements the float<->integer and integer<->integer
// conversion instructions. The saturating and trapping float-to-integer
// truncations are grounded on
// original_source/wrt-types/src/math_ops/mod.rs's i32_trunc_sat_f32_s and
// siblings. The source file's "Integer Conversions" section is left
// unimplemented (the module ends immediately after the heading), so
// wrap/extend/promote/demote/reinterpret/convert below follow the
// WebAssembly core specification directly rather than a source
// counterpart.

// --- Saturating float-to-integer truncations (never trap) ---

// I32TruncSatF32S saturates out-of-range and non-finite f32 inputs to the
// i32 range instead of trapping; NaN maps to 0.
func I32TruncSatF32S(val float32) int32 {
	if math.IsNaN(float64(val)) {
		return 0
	}
	if math.IsInf(float64(val), 0) {
		if val > 0 {
			return maxInt32
		}
		return minInt32
	}
	t := WasmF32Trunc(val)
	switch {
	case t >= float32(maxInt32):
		return maxInt32
	case t <= float32(minInt32):
		return minInt32
	default:
		return int32(t)
	}
}

// I32TruncSatF32U is the unsigned counterpart of I32TruncSatF32S.
func I32TruncSatF32U(val float32) uint32 {
	if math.IsNaN(float64(val)) {
		return 0
	}
	if math.IsInf(float64(val), 0) {
		if val > 0 {
			return math.MaxUint32
		}
		return 0
	}
	t := WasmF32Trunc(val)
	switch {
	case t >= float32(uint32(math.MaxUint32)):
		return math.MaxUint32
	case t <= 0:
		return 0
	default:
		return uint32(t)
	}
}

const (
	i64MaxAsF32Sat float32 = 9223372036854775800.0
	i64MinAsF32Sat float32 = -9223372036854775800.0
	u64MaxAsF32Sat float32 = 18446744073709551600.0
)

// I64TruncSatF32S is the i64 counterpart of I32TruncSatF32S.
func I64TruncSatF32S(val float32) int64 {
	if math.IsNaN(float64(val)) {
		return 0
	}
	if math.IsInf(float64(val), 0) {
		if val > 0 {
			return math.MaxInt64
		}
		return minInt64
	}
	t := WasmF32Trunc(val)
	switch {
	case t >= i64MaxAsF32Sat:
		return math.MaxInt64
	case t <= i64MinAsF32Sat:
		return minInt64
	default:
		return int64(t)
	}
}

// I64TruncSatF32U is the unsigned counterpart of I64TruncSatF32S.
func I64TruncSatF32U(val float32) uint64 {
	if math.IsNaN(float64(val)) {
		return 0
	}
	if math.IsInf(float64(val), 0) {
		if val > 0 {
			return math.MaxUint64
		}
		return 0
	}
	t := WasmF32Trunc(val)
	switch {
	case t >= u64MaxAsF32Sat:
		return math.MaxUint64
	case t <= 0:
		return 0
	default:
		return uint64(t)
	}
}

// I32TruncSatF64S is the f64-source counterpart of I32TruncSatF32S.
func I32TruncSatF64S(val float64) int32 {
	if math.IsNaN(val) {
		return 0
	}
	if math.IsInf(val, 0) {
		if val > 0 {
			return maxInt32
		}
		return minInt32
	}
	t := WasmF64Trunc(val)
	switch {
	case t >= float64(maxInt32):
		return maxInt32
	case t <= float64(minInt32):
		return minInt32
	default:
		return int32(t)
	}
}

// I32TruncSatF64U is the unsigned counterpart of I32TruncSatF64S.
func I32TruncSatF64U(val float64) uint32 {
	if math.IsNaN(val) {
		return 0
	}
	if math.IsInf(val, 0) {
		if val > 0 {
			return math.MaxUint32
		}
		return 0
	}
	t := WasmF64Trunc(val)
	switch {
	case t >= float64(uint32(math.MaxUint32)):
		return math.MaxUint32
	case t <= 0:
		return 0
	default:
		return uint32(t)
	}
}

const (
	i64MaxAsF64Sat float64 = 9223372036854775807.0
	i64MinAsF64Sat float64 = -9223372036854775808.0
	u64MaxAsF64Sat float64 = 18446744073709551615.0
)

// I64TruncSatF64S is the f64-source counterpart of I64TruncSatF32S.
func I64TruncSatF64S(val float64) int64 {
	if math.IsNaN(val) {
		return 0
	}
	if math.IsInf(val, 0) {
		if val > 0 {
			return math.MaxInt64
		}
		return minInt64
	}
	t := WasmF64Trunc(val)
	switch {
	case t >= i64MaxAsF64Sat:
		return math.MaxInt64
	case t <= i64MinAsF64Sat:
		return minInt64
	default:
		return int64(t)
	}
}

// I64TruncSatF64U is the unsigned counterpart of I64TruncSatF64S.
func I64TruncSatF64U(val float64) uint64 {
	if math.IsNaN(val) {
		return 0
	}
	if math.IsInf(val, 0) {
		if val > 0 {
			return math.MaxUint64
		}
		return 0
	}
	t := WasmF64Trunc(val)
	switch {
	case t >= u64MaxAsF64Sat:
		return math.MaxUint64
	case t <= 0:
		return 0
	default:
		return uint64(t)
	}
}

// --- Trapping float-to-integer truncations ---

func invalidConversion() error {
	return api.NewTrap(api.TrapInvalidConversionToInteger, "NaN or infinite value cannot convert to integer")
}

// I32TruncF32S truncates an f32 to i32, trapping on NaN, infinity, or an
// out-of-range result.
func I32TruncF32S(val float32) (int32, error) {
	if math.IsNaN(float64(val)) || math.IsInf(float64(val), 0) {
		return 0, invalidConversion()
	}
	t := WasmF32Trunc(val)
	if t < -2147483648.0 || t >= 2147483648.0 {
		return 0, overflow("i32 truncation overflow")
	}
	return int32(t), nil
}

// I32TruncF32U truncates an f32 to u32, trapping on NaN, infinity, or an
// out-of-range result.
func I32TruncF32U(val float32) (uint32, error) {
	if math.IsNaN(float64(val)) || math.IsInf(float64(val), 0) {
		return 0, invalidConversion()
	}
	t := WasmF32Trunc(val)
	if t < 0.0 || t >= 4294967296.0 {
		return 0, overflow("u32 truncation overflow")
	}
	return uint32(t), nil
}

// I64TruncF32S truncates an f32 to i64, trapping on NaN, infinity, or an
// out-of-range result.
func I64TruncF32S(val float32) (int64, error) {
	if math.IsNaN(float64(val)) || math.IsInf(float64(val), 0) {
		return 0, invalidConversion()
	}
	t := WasmF32Trunc(val)
	if t < -9223372036854775808.0 || t >= 9223372036854775808.0 {
		return 0, overflow("i64 truncation overflow")
	}
	return int64(t), nil
}

// I64TruncF32U truncates an f32 to u64, trapping on NaN, infinity, or an
// out-of-range result.
func I64TruncF32U(val float32) (uint64, error) {
	if math.IsNaN(float64(val)) || math.IsInf(float64(val), 0) {
		return 0, invalidConversion()
	}
	t := WasmF32Trunc(val)
	if t < 0.0 || t >= 18446744073709551616.0 {
		return 0, overflow("u64 truncation overflow")
	}
	return uint64(t), nil
}

// I32TruncF64S truncates an f64 to i32, trapping on NaN, infinity, or an
// out-of-range result.
func I32TruncF64S(val float64) (int32, error) {
	if math.IsNaN(val) || math.IsInf(val, 0) {
		return 0, invalidConversion()
	}
	t := WasmF64Trunc(val)
	if t < -2147483648.0 || t >= 2147483648.0 {
		return 0, overflow("i32 truncation overflow")
	}
	return int32(t), nil
}

// I32TruncF64U truncates an f64 to u32, trapping on NaN, infinity, or an
// out-of-range result.
func I32TruncF64U(val float64) (uint32, error) {
	if math.IsNaN(val) || math.IsInf(val, 0) {
		return 0, invalidConversion()
	}
	t := WasmF64Trunc(val)
	if t < 0.0 || t >= 4294967296.0 {
		return 0, overflow("u32 truncation overflow")
	}
	return uint32(t), nil
}

// I64TruncF64S truncates an f64 to i64, trapping on NaN, infinity, or an
// out-of-range result.
func I64TruncF64S(val float64) (int64, error) {
	if math.IsNaN(val) || math.IsInf(val, 0) {
		return 0, invalidConversion()
	}
	t := WasmF64Trunc(val)
	if t < -9223372036854775808.0 || t >= 9223372036854775808.0 {
		return 0, overflow("i64 truncation overflow")
	}
	return int64(t), nil
}

// I64TruncF64U truncates an f64 to u64, trapping on NaN, infinity, or an
// out-of-range result.
func I64TruncF64U(val float64) (uint64, error) {
	if math.IsNaN(val) || math.IsInf(val, 0) {
		return 0, invalidConversion()
	}
	t := WasmF64Trunc(val)
	if t < 0.0 || t >= 18446744073709551616.0 {
		return 0, overflow("u64 truncation overflow")
	}
	return uint64(t), nil
}

// --- Integer-to-float conversions (never trap) ---

func F32ConvertI32S(val int32) float32  { return float32(val) }
func F32ConvertI32U(val uint32) float32 { return float32(val) }
func F32ConvertI64S(val int64) float32  { return float32(val) }
func F32ConvertI64U(val uint64) float32 { return float32(val) }
func F64ConvertI32S(val int32) float64  { return float64(val) }
func F64ConvertI32U(val uint32) float64 { return float64(val) }
func F64ConvertI64S(val int64) float64  { return float64(val) }
func F64ConvertI64U(val uint64) float64 { return float64(val) }

// --- Float width conversions ---

// F32DemoteF64 narrows an f64 to f32, rounding per IEEE 754.
func F32DemoteF64(val float64) float32 { return float32(val) }

// F64PromoteF32 widens an f32 to f64 exactly.
func F64PromoteF32(val float32) float64 { return float64(val) }

// --- Integer width conversions ---

// I32WrapI64 truncates an i64 to its low 32 bits.
func I32WrapI64(val int64) int32 { return int32(val) }

// I64ExtendI32S sign-extends an i32 to i64.
func I64ExtendI32S(val int32) int64 { return int64(val) }

// I64ExtendI32U zero-extends a u32 to u64.
func I64ExtendI32U(val uint32) uint64 { return uint64(val) }

// I32Extend8S sign-extends the low 8 bits of val to the full i32 width.
func I32Extend8S(val int32) int32 { return int32(int8(val)) }

// I32Extend16S sign-extends the low 16 bits of val to the full i32 width.
func I32Extend16S(val int32) int32 { return int32(int16(val)) }

// I64Extend8S sign-extends the low 8 bits of val to the full i64 width.
func I64Extend8S(val int64) int64 { return int64(int8(val)) }

// I64Extend16S sign-extends the low 16 bits of val to the full i64 width.
func I64Extend16S(val int64) int64 { return int64(int16(val)) }

// I64Extend32S sign-extends the low 32 bits of val to the full i64 width.
func I64Extend32S(val int64) int64 { return int64(int32(val)) }

// --- Bit reinterpretation (no numeric conversion) ---

func I32ReinterpretF32(val float32) int32 { return int32(math.Float32bits(val)) }
func F32ReinterpretI32(val int32) float32 { return math.Float32frombits(uint32(val)) }
func I64ReinterpretF64(val float64) int64 { return int64(math.Float64bits(val)) }
func F64ReinterpretI64(val int64) float64 { return math.Float64frombits(uint64(val)) }
