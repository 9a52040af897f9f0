// Package api includes the value and trap types shared by every layer of
// the execution engine and its hosts.
package api

import (
	"encoding/binary"
	"math"
)

// ValueType describes the type tag of an operand-stack Value.
//
// Note: this mirrors the binary encoding of a WebAssembly valtype, so the
// byte values below are not arbitrary: they are the same bytes the
// instruction codec (internal/codec) accepts as single-value block types.
type ValueType byte

const (
	ValueTypeI32       ValueType = 0x7F
	ValueTypeI64       ValueType = 0x7E
	ValueTypeF32       ValueType = 0x7D
	ValueTypeF64       ValueType = 0x7C
	ValueTypeV128      ValueType = 0x7B
	ValueTypeFuncref   ValueType = 0x70
	ValueTypeExternref ValueType = 0x6F
)

// String returns the WebAssembly text format name of t.
func (t ValueType) String() string {
	switch t {
	case ValueTypeI32:
		return "i32"
	case ValueTypeI64:
		return "i64"
	case ValueTypeF32:
		return "f32"
	case ValueTypeF64:
		return "f64"
	case ValueTypeV128:
		return "v128"
	case ValueTypeFuncref:
		return "funcref"
	case ValueTypeExternref:
		return "externref"
	default:
		return "unknown"
	}
}

// Value is a single operand-stack slot. Numeric payloads are stored in
// their canonical bit pattern (Lo for i32/f32/i64/f64, Lo+Hi for v128) so
// that the engine's stack can be a flat []Value without a second
// reflection-driven representation; reference types carry an opaque
// pointer-sized handle in Lo.
type Value struct {
	Type ValueType
	Lo   uint64
	Hi   uint64 // only meaningful when Type == ValueTypeV128
}

// I32 constructs an i32 Value.
func I32(v int32) Value { return Value{Type: ValueTypeI32, Lo: uint64(uint32(v))} }

// I64 constructs an i64 Value.
func I64(v int64) Value { return Value{Type: ValueTypeI64, Lo: uint64(v)} }

// F32 constructs an f32 Value from its IEEE-754 bit pattern.
func F32(v float32) Value { return Value{Type: ValueTypeF32, Lo: uint64(math.Float32bits(v))} }

// F64 constructs an f64 Value from its IEEE-754 bit pattern.
func F64(v float64) Value { return Value{Type: ValueTypeF64, Lo: math.Float64bits(v)} }

// I32 returns v's payload reinterpreted as an i32.
func (v Value) I32() int32 { return int32(uint32(v.Lo)) }

// U32 returns v's payload reinterpreted as a u32.
func (v Value) U32() uint32 { return uint32(v.Lo) }

// I64 returns v's payload reinterpreted as an i64.
func (v Value) I64() int64 { return int64(v.Lo) }

// U64 returns v's payload reinterpreted as a u64.
func (v Value) U64() uint64 { return v.Lo }

// F32 returns v's payload reinterpreted as an f32.
func (v Value) F32() float32 { return math.Float32frombits(uint32(v.Lo)) }

// F64 returns v's payload reinterpreted as an f64.
func (v Value) F64() float64 { return math.Float64frombits(v.Lo) }

// Bytes serializes v's full bit pattern for use as a bound.Byteser element
// (the engine's operand stack is a bound.Stack[Value]).
func (v Value) Bytes() []byte {
	buf := make([]byte, 17)
	buf[0] = byte(v.Type)
	binary.LittleEndian.PutUint64(buf[1:9], v.Lo)
	binary.LittleEndian.PutUint64(buf[9:17], v.Hi)
	return buf
}
