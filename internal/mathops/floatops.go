package mathops

import "math"

// This file implements the f32/f64 arithmetic, unary, and comparison
// operators, grounded on original_source/wrt-types/src/math_ops/mod.rs
// (the f32_*/f64_*/wasm_f32_*/wasm_f64_* functions). None of these trap:
// WebAssembly floating point follows IEEE 754 throughout, including
// division by zero yielding +/-Inf or NaN rather than an error.

// F32Add adds two f32 values per IEEE 754.
func F32Add(lhs, rhs float32) float32 { return lhs + rhs }

// F32Sub subtracts two f32 values per IEEE 754.
func F32Sub(lhs, rhs float32) float32 { return lhs - rhs }

// F32Mul multiplies two f32 values per IEEE 754.
func F32Mul(lhs, rhs float32) float32 { return lhs * rhs }

// F32Div divides two f32 values per IEEE 754; division by zero yields
// +/-Inf or NaN rather than trapping.
func F32Div(lhs, rhs float32) float32 { return lhs / rhs }

// WasmF32Abs clears the sign bit. A NaN input always yields the canonical
// NaN regardless of its incoming payload or sign.
func WasmF32Abs(val float32) float32 {
	if math.IsNaN(float64(val)) {
		return float32(math.NaN())
	}
	return float32(math.Abs(float64(val)))
}

// WasmF32Neg negates val, including flipping the sign of NaN and zero.
func WasmF32Neg(val float32) float32 { return -val }

// WasmF32Copysign returns a value with the magnitude of lhs and the sign
// of rhs.
func WasmF32Copysign(lhs, rhs float32) float32 {
	return float32(math.Copysign(float64(lhs), float64(rhs)))
}

func WasmF32Ceil(val float32) float32    { return math.Float32frombits(CeilF32Bits(math.Float32bits(val))) }
func WasmF32Floor(val float32) float32   { return math.Float32frombits(FloorF32Bits(math.Float32bits(val))) }
func WasmF32Trunc(val float32) float32   { return math.Float32frombits(TruncF32Bits(math.Float32bits(val))) }
func WasmF32Nearest(val float32) float32 { return math.Float32frombits(NearestF32Bits(math.Float32bits(val))) }
func WasmF32Sqrt(val float32) float32    { return math.Float32frombits(SqrtF32Bits(math.Float32bits(val))) }

// WasmF32Min returns the WebAssembly-semantics minimum: NaN if either
// operand is NaN, and -0.0 < +0.0 when the magnitudes are otherwise equal.
func WasmF32Min(lhs, rhs float32) float32 {
	if math.IsNaN(float64(lhs)) || math.IsNaN(float64(rhs)) {
		return float32(math.NaN())
	}
	if lhs == 0 && rhs == 0 {
		if math.Signbit(float64(lhs)) {
			return lhs
		}
		return rhs
	}
	if lhs < rhs {
		return lhs
	}
	return rhs
}

// WasmF32Max returns the WebAssembly-semantics maximum: NaN if either
// operand is NaN, and +0.0 > -0.0 when the magnitudes are otherwise equal.
func WasmF32Max(lhs, rhs float32) float32 {
	if math.IsNaN(float64(lhs)) || math.IsNaN(float64(rhs)) {
		return float32(math.NaN())
	}
	if lhs == 0 && rhs == 0 {
		if !math.Signbit(float64(lhs)) {
			return lhs
		}
		return rhs
	}
	if lhs > rhs {
		return lhs
	}
	return rhs
}

// F64Add adds two f64 values per IEEE 754.
func F64Add(lhs, rhs float64) float64 { return lhs + rhs }

// F64Sub subtracts two f64 values per IEEE 754.
func F64Sub(lhs, rhs float64) float64 { return lhs - rhs }

// F64Mul multiplies two f64 values per IEEE 754.
func F64Mul(lhs, rhs float64) float64 { return lhs * rhs }

// F64Div divides two f64 values per IEEE 754; division by zero yields
// +/-Inf or NaN rather than trapping.
func F64Div(lhs, rhs float64) float64 { return lhs / rhs }

// WasmF64Abs clears the sign bit, always yielding canonical NaN for a NaN
// input.
func WasmF64Abs(val float64) float64 {
	if math.IsNaN(val) {
		return math.NaN()
	}
	return math.Abs(val)
}

// WasmF64Neg negates val, including flipping the sign of NaN and zero.
func WasmF64Neg(val float64) float64 { return -val }

// WasmF64Copysign returns a value with the magnitude of lhs and the sign
// of rhs.
func WasmF64Copysign(lhs, rhs float64) float64 { return math.Copysign(lhs, rhs) }

func WasmF64Ceil(val float64) float64    { return math.Float64frombits(CeilF64Bits(math.Float64bits(val))) }
func WasmF64Floor(val float64) float64   { return math.Float64frombits(FloorF64Bits(math.Float64bits(val))) }
func WasmF64Trunc(val float64) float64   { return math.Float64frombits(TruncF64Bits(math.Float64bits(val))) }
func WasmF64Nearest(val float64) float64 { return math.Float64frombits(NearestF64Bits(math.Float64bits(val))) }
func WasmF64Sqrt(val float64) float64    { return math.Float64frombits(SqrtF64Bits(math.Float64bits(val))) }

// WasmF64Min returns the WebAssembly-semantics minimum: NaN if either
// operand is NaN, and -0.0 < +0.0 when the magnitudes are otherwise equal.
func WasmF64Min(lhs, rhs float64) float64 {
	if math.IsNaN(lhs) || math.IsNaN(rhs) {
		return math.NaN()
	}
	if lhs == 0 && rhs == 0 {
		if math.Signbit(lhs) {
			return lhs
		}
		return rhs
	}
	if lhs < rhs {
		return lhs
	}
	return rhs
}

// WasmF64Max returns the WebAssembly-semantics maximum: NaN if either
// operand is NaN, and +0.0 > -0.0 when the magnitudes are otherwise equal.
func WasmF64Max(lhs, rhs float64) float64 {
	if math.IsNaN(lhs) || math.IsNaN(rhs) {
		return math.NaN()
	}
	if lhs == 0 && rhs == 0 {
		if !math.Signbit(lhs) {
			return lhs
		}
		return rhs
	}
	if lhs > rhs {
		return lhs
	}
	return rhs
}

// Every comparison below treats any NaN operand as making the predicate
// false, per the WebAssembly spec; Go's native float comparisons already
// do this since comparisons against NaN are always false, except Eq/Ne
// must also reject NaN == NaN, which Go's == already does.

func F32Eq(lhs, rhs float32) bool { return lhs == rhs }
func F32Ne(lhs, rhs float32) bool { return lhs != rhs }
func F32Lt(lhs, rhs float32) bool { return lhs < rhs }
func F32Gt(lhs, rhs float32) bool { return lhs > rhs }
func F32Le(lhs, rhs float32) bool { return lhs <= rhs }
func F32Ge(lhs, rhs float32) bool { return lhs >= rhs }

func F64Eq(lhs, rhs float64) bool { return lhs == rhs }
func F64Ne(lhs, rhs float64) bool { return lhs != rhs }
func F64Lt(lhs, rhs float64) bool { return lhs < rhs }
func F64Gt(lhs, rhs float64) bool { return lhs > rhs }
func F64Le(lhs, rhs float64) bool { return lhs <= rhs }
func F64Ge(lhs, rhs float64) bool { return lhs >= rhs }
