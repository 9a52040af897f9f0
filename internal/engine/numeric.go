package engine

import (
	"github.com/pulseengine/wrt/api"
	"github.com/pulseengine/wrt/internal/codec"
	"github.com/pulseengine/wrt/internal/mathops"
)

// execNumeric dispatches every opcode with no control-flow, memory, call
// or local/global effect: comparisons, arithmetic, bitwise, float
// unary/binary ops, and every conversion. Grounded on
// original_source/wrt/src/instructions/numeric.rs's pop-dispatch-push
// shape, generalized from that source's per-function Value match arms to
// a single switch over codec.Opcode operating on the frame's stack
// directly.
func (e *Engine) execNumeric(f *frame, op codec.Opcode) (ctrlSignal, uint64, error) {
	switch op {
	case codec.OpI32Eqz:
		a, err := f.pop()
		if err != nil {
			return ctrlSignal{}, 0, err
		}
		return ctrlSignal{}, 0, f.push(boolToI32(a.I32() == 0))
	case codec.OpI64Eqz:
		a, err := f.pop()
		if err != nil {
			return ctrlSignal{}, 0, err
		}
		return ctrlSignal{}, 0, f.push(boolToI32(a.I64() == 0))

	case codec.OpI32Clz, codec.OpI32Ctz, codec.OpI32Popcnt:
		a, err := f.pop()
		if err != nil {
			return ctrlSignal{}, 0, err
		}
		var r int32
		switch op {
		case codec.OpI32Clz:
			r, err = mathops.I32Clz(a.I32())
		case codec.OpI32Ctz:
			r, err = mathops.I32Ctz(a.I32())
		default:
			r, err = mathops.I32Popcnt(a.I32())
		}
		if err != nil {
			return ctrlSignal{}, 0, err
		}
		return ctrlSignal{}, 0, f.push(api.I32(r))

	case codec.OpI64Clz, codec.OpI64Ctz, codec.OpI64Popcnt:
		a, err := f.pop()
		if err != nil {
			return ctrlSignal{}, 0, err
		}
		var r int64
		switch op {
		case codec.OpI64Clz:
			r, err = mathops.I64Clz(a.I64())
		case codec.OpI64Ctz:
			r, err = mathops.I64Ctz(a.I64())
		default:
			r, err = mathops.I64Popcnt(a.I64())
		}
		if err != nil {
			return ctrlSignal{}, 0, err
		}
		return ctrlSignal{}, 0, f.push(api.I64(r))

	case codec.OpI32Eq, codec.OpI32Ne, codec.OpI32LtS, codec.OpI32LtU, codec.OpI32GtS, codec.OpI32GtU,
		codec.OpI32LeS, codec.OpI32LeU, codec.OpI32GeS, codec.OpI32GeU:
		return e.execI32Compare(f, op)
	case codec.OpI64Eq, codec.OpI64Ne, codec.OpI64LtS, codec.OpI64LtU, codec.OpI64GtS, codec.OpI64GtU,
		codec.OpI64LeS, codec.OpI64LeU, codec.OpI64GeS, codec.OpI64GeU:
		return e.execI64Compare(f, op)
	case codec.OpF32Eq, codec.OpF32Ne, codec.OpF32Lt, codec.OpF32Gt, codec.OpF32Le, codec.OpF32Ge:
		return e.execF32Compare(f, op)
	case codec.OpF64Eq, codec.OpF64Ne, codec.OpF64Lt, codec.OpF64Gt, codec.OpF64Le, codec.OpF64Ge:
		return e.execF64Compare(f, op)

	case codec.OpI32Add, codec.OpI32Sub, codec.OpI32Mul, codec.OpI32DivS, codec.OpI32DivU,
		codec.OpI32RemS, codec.OpI32RemU, codec.OpI32And, codec.OpI32Or, codec.OpI32Xor,
		codec.OpI32Shl, codec.OpI32ShrS, codec.OpI32ShrU, codec.OpI32Rotl, codec.OpI32Rotr:
		return e.execI32Binary(f, op)
	case codec.OpI64Add, codec.OpI64Sub, codec.OpI64Mul, codec.OpI64DivS, codec.OpI64DivU,
		codec.OpI64RemS, codec.OpI64RemU, codec.OpI64And, codec.OpI64Or, codec.OpI64Xor,
		codec.OpI64Shl, codec.OpI64ShrS, codec.OpI64ShrU, codec.OpI64Rotl, codec.OpI64Rotr:
		return e.execI64Binary(f, op)

	case codec.OpF32Abs, codec.OpF32Neg, codec.OpF32Ceil, codec.OpF32Floor, codec.OpF32Trunc,
		codec.OpF32Nearest, codec.OpF32Sqrt:
		return e.execF32Unary(f, op)
	case codec.OpF64Abs, codec.OpF64Neg, codec.OpF64Ceil, codec.OpF64Floor, codec.OpF64Trunc,
		codec.OpF64Nearest, codec.OpF64Sqrt:
		return e.execF64Unary(f, op)
	case codec.OpF32Add, codec.OpF32Sub, codec.OpF32Mul, codec.OpF32Div, codec.OpF32Min, codec.OpF32Max, codec.OpF32Copysign:
		return e.execF32Binary(f, op)
	case codec.OpF64Add, codec.OpF64Sub, codec.OpF64Mul, codec.OpF64Div, codec.OpF64Min, codec.OpF64Max, codec.OpF64Copysign:
		return e.execF64Binary(f, op)

	case codec.OpI32WrapI64:
		return unary64to32(f, func(v int64) int32 { return mathops.I32WrapI64(v) })
	case codec.OpI64ExtendI32S:
		return unary32to64(f, func(v int32) int64 { return mathops.I64ExtendI32S(v) })
	case codec.OpI64ExtendI32U:
		a, err := f.pop()
		if err != nil {
			return ctrlSignal{}, 0, err
		}
		return ctrlSignal{}, 0, f.push(api.I64(int64(mathops.I64ExtendI32U(a.U32()))))
	case codec.OpI32Extend8S:
		return unary32to32(f, mathops.I32Extend8S)
	case codec.OpI32Extend16S:
		return unary32to32(f, mathops.I32Extend16S)
	case codec.OpI64Extend8S:
		return unary64to64(f, mathops.I64Extend8S)
	case codec.OpI64Extend16S:
		return unary64to64(f, mathops.I64Extend16S)
	case codec.OpI64Extend32S:
		return unary64to64(f, mathops.I64Extend32S)

	case codec.OpF32DemoteF64:
		a, err := f.pop()
		if err != nil {
			return ctrlSignal{}, 0, err
		}
		return ctrlSignal{}, 0, f.push(api.F32(mathops.F32DemoteF64(a.F64())))
	case codec.OpF64PromoteF32:
		a, err := f.pop()
		if err != nil {
			return ctrlSignal{}, 0, err
		}
		return ctrlSignal{}, 0, f.push(api.F64(mathops.F64PromoteF32(a.F32())))

	case codec.OpF32ConvertI32S:
		return convI32ToF32(f, func(v int32) float32 { return mathops.F32ConvertI32S(v) })
	case codec.OpF32ConvertI32U:
		a, err := f.pop()
		if err != nil {
			return ctrlSignal{}, 0, err
		}
		return ctrlSignal{}, 0, f.push(api.F32(mathops.F32ConvertI32U(a.U32())))
	case codec.OpF32ConvertI64S:
		a, err := f.pop()
		if err != nil {
			return ctrlSignal{}, 0, err
		}
		return ctrlSignal{}, 0, f.push(api.F32(mathops.F32ConvertI64S(a.I64())))
	case codec.OpF32ConvertI64U:
		a, err := f.pop()
		if err != nil {
			return ctrlSignal{}, 0, err
		}
		return ctrlSignal{}, 0, f.push(api.F32(mathops.F32ConvertI64U(a.U64())))
	case codec.OpF64ConvertI32S:
		return convI32ToF64(f, func(v int32) float64 { return mathops.F64ConvertI32S(v) })
	case codec.OpF64ConvertI32U:
		a, err := f.pop()
		if err != nil {
			return ctrlSignal{}, 0, err
		}
		return ctrlSignal{}, 0, f.push(api.F64(mathops.F64ConvertI32U(a.U32())))
	case codec.OpF64ConvertI64S:
		a, err := f.pop()
		if err != nil {
			return ctrlSignal{}, 0, err
		}
		return ctrlSignal{}, 0, f.push(api.F64(mathops.F64ConvertI64S(a.I64())))
	case codec.OpF64ConvertI64U:
		a, err := f.pop()
		if err != nil {
			return ctrlSignal{}, 0, err
		}
		return ctrlSignal{}, 0, f.push(api.F64(mathops.F64ConvertI64U(a.U64())))

	case codec.OpI32TruncF32S:
		return trapConv1(f, mathops.I32TruncF32S)
	case codec.OpI32TruncF32U:
		return trapConvU1(f, mathops.I32TruncF32U)
	case codec.OpI32TruncF64S:
		return trapConv2(f, mathops.I32TruncF64S)
	case codec.OpI32TruncF64U:
		return trapConvU2(f, mathops.I32TruncF64U)
	case codec.OpI64TruncF32S:
		return trapConv1I64(f, mathops.I64TruncF32S)
	case codec.OpI64TruncF32U:
		return trapConvU1I64(f, mathops.I64TruncF32U)
	case codec.OpI64TruncF64S:
		return trapConv2I64(f, mathops.I64TruncF64S)
	case codec.OpI64TruncF64U:
		return trapConvU2I64(f, mathops.I64TruncF64U)

	case codec.OpI32TruncSatF32S:
		a, err := f.pop()
		if err != nil {
			return ctrlSignal{}, 0, err
		}
		return ctrlSignal{}, 0, f.push(api.I32(mathops.I32TruncSatF32S(a.F32())))
	case codec.OpI32TruncSatF32U:
		a, err := f.pop()
		if err != nil {
			return ctrlSignal{}, 0, err
		}
		return ctrlSignal{}, 0, f.push(api.I32(int32(mathops.I32TruncSatF32U(a.F32()))))
	case codec.OpI32TruncSatF64S:
		a, err := f.pop()
		if err != nil {
			return ctrlSignal{}, 0, err
		}
		return ctrlSignal{}, 0, f.push(api.I32(mathops.I32TruncSatF64S(a.F64())))
	case codec.OpI32TruncSatF64U:
		a, err := f.pop()
		if err != nil {
			return ctrlSignal{}, 0, err
		}
		return ctrlSignal{}, 0, f.push(api.I32(int32(mathops.I32TruncSatF64U(a.F64()))))
	case codec.OpI64TruncSatF32S:
		a, err := f.pop()
		if err != nil {
			return ctrlSignal{}, 0, err
		}
		return ctrlSignal{}, 0, f.push(api.I64(mathops.I64TruncSatF32S(a.F32())))
	case codec.OpI64TruncSatF32U:
		a, err := f.pop()
		if err != nil {
			return ctrlSignal{}, 0, err
		}
		return ctrlSignal{}, 0, f.push(api.I64(int64(mathops.I64TruncSatF32U(a.F32()))))
	case codec.OpI64TruncSatF64S:
		a, err := f.pop()
		if err != nil {
			return ctrlSignal{}, 0, err
		}
		return ctrlSignal{}, 0, f.push(api.I64(mathops.I64TruncSatF64S(a.F64())))
	case codec.OpI64TruncSatF64U:
		a, err := f.pop()
		if err != nil {
			return ctrlSignal{}, 0, err
		}
		return ctrlSignal{}, 0, f.push(api.I64(int64(mathops.I64TruncSatF64U(a.F64()))))

	case codec.OpI32ReinterpretF32:
		a, err := f.pop()
		if err != nil {
			return ctrlSignal{}, 0, err
		}
		return ctrlSignal{}, 0, f.push(api.I32(mathops.I32ReinterpretF32(a.F32())))
	case codec.OpF32ReinterpretI32:
		a, err := f.pop()
		if err != nil {
			return ctrlSignal{}, 0, err
		}
		return ctrlSignal{}, 0, f.push(api.F32(mathops.F32ReinterpretI32(a.I32())))
	case codec.OpI64ReinterpretF64:
		a, err := f.pop()
		if err != nil {
			return ctrlSignal{}, 0, err
		}
		return ctrlSignal{}, 0, f.push(api.I64(mathops.I64ReinterpretF64(a.F64())))
	case codec.OpF64ReinterpretI64:
		a, err := f.pop()
		if err != nil {
			return ctrlSignal{}, 0, err
		}
		return ctrlSignal{}, 0, f.push(api.F64(mathops.F64ReinterpretI64(a.I64())))
	}

	return ctrlSignal{}, 0, api.NewTrap(api.TrapUnreachable, "unhandled opcode")
}

func (e *Engine) execI32Binary(f *frame, op codec.Opcode) (ctrlSignal, uint64, error) {
	b, err := f.pop()
	if err != nil {
		return ctrlSignal{}, 0, err
	}
	a, err := f.pop()
	if err != nil {
		return ctrlSignal{}, 0, err
	}
	var r int32
	switch op {
	case codec.OpI32Add:
		r, err = mathops.I32Add(a.I32(), b.I32())
	case codec.OpI32Sub:
		r, err = mathops.I32Sub(a.I32(), b.I32())
	case codec.OpI32Mul:
		r, err = mathops.I32Mul(a.I32(), b.I32())
	case codec.OpI32DivS:
		r, err = mathops.I32DivS(a.I32(), b.I32())
	case codec.OpI32RemS:
		r, err = mathops.I32RemS(a.I32(), b.I32())
	case codec.OpI32And:
		r, err = mathops.I32And(a.I32(), b.I32())
	case codec.OpI32Or:
		r, err = mathops.I32Or(a.I32(), b.I32())
	case codec.OpI32Xor:
		r, err = mathops.I32Xor(a.I32(), b.I32())
	case codec.OpI32Shl:
		r, err = mathops.I32Shl(a.I32(), b.I32())
	case codec.OpI32ShrS:
		r, err = mathops.I32ShrS(a.I32(), b.I32())
	case codec.OpI32Rotl:
		r, err = mathops.I32Rotl(a.I32(), b.I32())
	case codec.OpI32Rotr:
		r, err = mathops.I32Rotr(a.I32(), b.I32())
	case codec.OpI32DivU:
		var u uint32
		u, err = mathops.I32DivU(a.U32(), b.U32())
		r = int32(u)
	case codec.OpI32RemU:
		var u uint32
		u, err = mathops.I32RemU(a.U32(), b.U32())
		r = int32(u)
	case codec.OpI32ShrU:
		r, err = mathops.I32ShrU(a.I32(), b.I32())
	}
	if err != nil {
		return ctrlSignal{}, 0, err
	}
	return ctrlSignal{}, 0, f.push(api.I32(r))
}

func (e *Engine) execI64Binary(f *frame, op codec.Opcode) (ctrlSignal, uint64, error) {
	b, err := f.pop()
	if err != nil {
		return ctrlSignal{}, 0, err
	}
	a, err := f.pop()
	if err != nil {
		return ctrlSignal{}, 0, err
	}
	var r int64
	switch op {
	case codec.OpI64Add:
		r, err = mathops.I64Add(a.I64(), b.I64())
	case codec.OpI64Sub:
		r, err = mathops.I64Sub(a.I64(), b.I64())
	case codec.OpI64Mul:
		r, err = mathops.I64Mul(a.I64(), b.I64())
	case codec.OpI64DivS:
		r, err = mathops.I64DivS(a.I64(), b.I64())
	case codec.OpI64RemS:
		r, err = mathops.I64RemS(a.I64(), b.I64())
	case codec.OpI64And:
		r, err = mathops.I64And(a.I64(), b.I64())
	case codec.OpI64Or:
		r, err = mathops.I64Or(a.I64(), b.I64())
	case codec.OpI64Xor:
		r, err = mathops.I64Xor(a.I64(), b.I64())
	case codec.OpI64Shl:
		r, err = mathops.I64Shl(a.I64(), b.I64())
	case codec.OpI64ShrS:
		r, err = mathops.I64ShrS(a.I64(), b.I64())
	case codec.OpI64Rotl:
		r, err = mathops.I64Rotl(a.I64(), b.I64())
	case codec.OpI64Rotr:
		r, err = mathops.I64Rotr(a.I64(), b.I64())
	case codec.OpI64DivU:
		var u uint64
		u, err = mathops.I64DivU(a.U64(), b.U64())
		r = int64(u)
	case codec.OpI64RemU:
		var u uint64
		u, err = mathops.I64RemU(a.U64(), b.U64())
		r = int64(u)
	case codec.OpI64ShrU:
		r, err = mathops.I64ShrU(a.I64(), b.I64())
	}
	if err != nil {
		return ctrlSignal{}, 0, err
	}
	return ctrlSignal{}, 0, f.push(api.I64(r))
}

func (e *Engine) execI32Compare(f *frame, op codec.Opcode) (ctrlSignal, uint64, error) {
	b, err := f.pop()
	if err != nil {
		return ctrlSignal{}, 0, err
	}
	a, err := f.pop()
	if err != nil {
		return ctrlSignal{}, 0, err
	}
	var r bool
	switch op {
	case codec.OpI32Eq:
		r = a.I32() == b.I32()
	case codec.OpI32Ne:
		r = a.I32() != b.I32()
	case codec.OpI32LtS:
		r = a.I32() < b.I32()
	case codec.OpI32LtU:
		r = a.U32() < b.U32()
	case codec.OpI32GtS:
		r = a.I32() > b.I32()
	case codec.OpI32GtU:
		r = a.U32() > b.U32()
	case codec.OpI32LeS:
		r = a.I32() <= b.I32()
	case codec.OpI32LeU:
		r = a.U32() <= b.U32()
	case codec.OpI32GeS:
		r = a.I32() >= b.I32()
	case codec.OpI32GeU:
		r = a.U32() >= b.U32()
	}
	return ctrlSignal{}, 0, f.push(boolToI32(r))
}

func (e *Engine) execI64Compare(f *frame, op codec.Opcode) (ctrlSignal, uint64, error) {
	b, err := f.pop()
	if err != nil {
		return ctrlSignal{}, 0, err
	}
	a, err := f.pop()
	if err != nil {
		return ctrlSignal{}, 0, err
	}
	var r bool
	switch op {
	case codec.OpI64Eq:
		r = a.I64() == b.I64()
	case codec.OpI64Ne:
		r = a.I64() != b.I64()
	case codec.OpI64LtS:
		r = a.I64() < b.I64()
	case codec.OpI64LtU:
		r = a.U64() < b.U64()
	case codec.OpI64GtS:
		r = a.I64() > b.I64()
	case codec.OpI64GtU:
		r = a.U64() > b.U64()
	case codec.OpI64LeS:
		r = a.I64() <= b.I64()
	case codec.OpI64LeU:
		r = a.U64() <= b.U64()
	case codec.OpI64GeS:
		r = a.I64() >= b.I64()
	case codec.OpI64GeU:
		r = a.U64() >= b.U64()
	}
	return ctrlSignal{}, 0, f.push(boolToI32(r))
}

func (e *Engine) execF32Compare(f *frame, op codec.Opcode) (ctrlSignal, uint64, error) {
	b, err := f.pop()
	if err != nil {
		return ctrlSignal{}, 0, err
	}
	a, err := f.pop()
	if err != nil {
		return ctrlSignal{}, 0, err
	}
	var r bool
	switch op {
	case codec.OpF32Eq:
		r = mathops.F32Eq(a.F32(), b.F32())
	case codec.OpF32Ne:
		r = mathops.F32Ne(a.F32(), b.F32())
	case codec.OpF32Lt:
		r = mathops.F32Lt(a.F32(), b.F32())
	case codec.OpF32Gt:
		r = mathops.F32Gt(a.F32(), b.F32())
	case codec.OpF32Le:
		r = mathops.F32Le(a.F32(), b.F32())
	case codec.OpF32Ge:
		r = mathops.F32Ge(a.F32(), b.F32())
	}
	return ctrlSignal{}, 0, f.push(boolToI32(r))
}

func (e *Engine) execF64Compare(f *frame, op codec.Opcode) (ctrlSignal, uint64, error) {
	b, err := f.pop()
	if err != nil {
		return ctrlSignal{}, 0, err
	}
	a, err := f.pop()
	if err != nil {
		return ctrlSignal{}, 0, err
	}
	var r bool
	switch op {
	case codec.OpF64Eq:
		r = mathops.F64Eq(a.F64(), b.F64())
	case codec.OpF64Ne:
		r = mathops.F64Ne(a.F64(), b.F64())
	case codec.OpF64Lt:
		r = mathops.F64Lt(a.F64(), b.F64())
	case codec.OpF64Gt:
		r = mathops.F64Gt(a.F64(), b.F64())
	case codec.OpF64Le:
		r = mathops.F64Le(a.F64(), b.F64())
	case codec.OpF64Ge:
		r = mathops.F64Ge(a.F64(), b.F64())
	}
	return ctrlSignal{}, 0, f.push(boolToI32(r))
}

func (e *Engine) execF32Unary(f *frame, op codec.Opcode) (ctrlSignal, uint64, error) {
	a, err := f.pop()
	if err != nil {
		return ctrlSignal{}, 0, err
	}
	var r float32
	switch op {
	case codec.OpF32Abs:
		r = mathops.WasmF32Abs(a.F32())
	case codec.OpF32Neg:
		r = mathops.WasmF32Neg(a.F32())
	case codec.OpF32Ceil:
		r = mathops.WasmF32Ceil(a.F32())
	case codec.OpF32Floor:
		r = mathops.WasmF32Floor(a.F32())
	case codec.OpF32Trunc:
		r = mathops.WasmF32Trunc(a.F32())
	case codec.OpF32Nearest:
		r = mathops.WasmF32Nearest(a.F32())
	case codec.OpF32Sqrt:
		r = mathops.WasmF32Sqrt(a.F32())
	}
	return ctrlSignal{}, 0, f.push(api.F32(r))
}

func (e *Engine) execF64Unary(f *frame, op codec.Opcode) (ctrlSignal, uint64, error) {
	a, err := f.pop()
	if err != nil {
		return ctrlSignal{}, 0, err
	}
	var r float64
	switch op {
	case codec.OpF64Abs:
		r = mathops.WasmF64Abs(a.F64())
	case codec.OpF64Neg:
		r = mathops.WasmF64Neg(a.F64())
	case codec.OpF64Ceil:
		r = mathops.WasmF64Ceil(a.F64())
	case codec.OpF64Floor:
		r = mathops.WasmF64Floor(a.F64())
	case codec.OpF64Trunc:
		r = mathops.WasmF64Trunc(a.F64())
	case codec.OpF64Nearest:
		r = mathops.WasmF64Nearest(a.F64())
	case codec.OpF64Sqrt:
		r = mathops.WasmF64Sqrt(a.F64())
	}
	return ctrlSignal{}, 0, f.push(api.F64(r))
}

func (e *Engine) execF32Binary(f *frame, op codec.Opcode) (ctrlSignal, uint64, error) {
	b, err := f.pop()
	if err != nil {
		return ctrlSignal{}, 0, err
	}
	a, err := f.pop()
	if err != nil {
		return ctrlSignal{}, 0, err
	}
	var r float32
	switch op {
	case codec.OpF32Add:
		r = mathops.F32Add(a.F32(), b.F32())
	case codec.OpF32Sub:
		r = mathops.F32Sub(a.F32(), b.F32())
	case codec.OpF32Mul:
		r = mathops.F32Mul(a.F32(), b.F32())
	case codec.OpF32Div:
		r = mathops.F32Div(a.F32(), b.F32())
	case codec.OpF32Min:
		r = mathops.WasmF32Min(a.F32(), b.F32())
	case codec.OpF32Max:
		r = mathops.WasmF32Max(a.F32(), b.F32())
	case codec.OpF32Copysign:
		r = mathops.WasmF32Copysign(a.F32(), b.F32())
	}
	return ctrlSignal{}, 0, f.push(api.F32(r))
}

func (e *Engine) execF64Binary(f *frame, op codec.Opcode) (ctrlSignal, uint64, error) {
	b, err := f.pop()
	if err != nil {
		return ctrlSignal{}, 0, err
	}
	a, err := f.pop()
	if err != nil {
		return ctrlSignal{}, 0, err
	}
	var r float64
	switch op {
	case codec.OpF64Add:
		r = mathops.F64Add(a.F64(), b.F64())
	case codec.OpF64Sub:
		r = mathops.F64Sub(a.F64(), b.F64())
	case codec.OpF64Mul:
		r = mathops.F64Mul(a.F64(), b.F64())
	case codec.OpF64Div:
		r = mathops.F64Div(a.F64(), b.F64())
	case codec.OpF64Min:
		r = mathops.WasmF64Min(a.F64(), b.F64())
	case codec.OpF64Max:
		r = mathops.WasmF64Max(a.F64(), b.F64())
	case codec.OpF64Copysign:
		r = mathops.WasmF64Copysign(a.F64(), b.F64())
	}
	return ctrlSignal{}, 0, f.push(api.F64(r))
}

func unary32to32(f *frame, fn func(int32) int32) (ctrlSignal, uint64, error) {
	a, err := f.pop()
	if err != nil {
		return ctrlSignal{}, 0, err
	}
	return ctrlSignal{}, 0, f.push(api.I32(fn(a.I32())))
}

func unary64to64(f *frame, fn func(int64) int64) (ctrlSignal, uint64, error) {
	a, err := f.pop()
	if err != nil {
		return ctrlSignal{}, 0, err
	}
	return ctrlSignal{}, 0, f.push(api.I64(fn(a.I64())))
}

func unary64to32(f *frame, fn func(int64) int32) (ctrlSignal, uint64, error) {
	a, err := f.pop()
	if err != nil {
		return ctrlSignal{}, 0, err
	}
	return ctrlSignal{}, 0, f.push(api.I32(fn(a.I64())))
}

func unary32to64(f *frame, fn func(int32) int64) (ctrlSignal, uint64, error) {
	a, err := f.pop()
	if err != nil {
		return ctrlSignal{}, 0, err
	}
	return ctrlSignal{}, 0, f.push(api.I64(fn(a.I32())))
}

func convI32ToF32(f *frame, fn func(int32) float32) (ctrlSignal, uint64, error) {
	a, err := f.pop()
	if err != nil {
		return ctrlSignal{}, 0, err
	}
	return ctrlSignal{}, 0, f.push(api.F32(fn(a.I32())))
}

func convI32ToF64(f *frame, fn func(int32) float64) (ctrlSignal, uint64, error) {
	a, err := f.pop()
	if err != nil {
		return ctrlSignal{}, 0, err
	}
	return ctrlSignal{}, 0, f.push(api.F64(fn(a.I32())))
}

func trapConv1(f *frame, fn func(float32) (int32, error)) (ctrlSignal, uint64, error) {
	a, err := f.pop()
	if err != nil {
		return ctrlSignal{}, 0, err
	}
	r, err := fn(a.F32())
	if err != nil {
		return ctrlSignal{}, 0, err
	}
	return ctrlSignal{}, 0, f.push(api.I32(r))
}

func trapConvU1(f *frame, fn func(float32) (uint32, error)) (ctrlSignal, uint64, error) {
	a, err := f.pop()
	if err != nil {
		return ctrlSignal{}, 0, err
	}
	r, err := fn(a.F32())
	if err != nil {
		return ctrlSignal{}, 0, err
	}
	return ctrlSignal{}, 0, f.push(api.I32(int32(r)))
}

func trapConv2(f *frame, fn func(float64) (int32, error)) (ctrlSignal, uint64, error) {
	a, err := f.pop()
	if err != nil {
		return ctrlSignal{}, 0, err
	}
	r, err := fn(a.F64())
	if err != nil {
		return ctrlSignal{}, 0, err
	}
	return ctrlSignal{}, 0, f.push(api.I32(r))
}

func trapConvU2(f *frame, fn func(float64) (uint32, error)) (ctrlSignal, uint64, error) {
	a, err := f.pop()
	if err != nil {
		return ctrlSignal{}, 0, err
	}
	r, err := fn(a.F64())
	if err != nil {
		return ctrlSignal{}, 0, err
	}
	return ctrlSignal{}, 0, f.push(api.I32(int32(r)))
}

func trapConv1I64(f *frame, fn func(float32) (int64, error)) (ctrlSignal, uint64, error) {
	a, err := f.pop()
	if err != nil {
		return ctrlSignal{}, 0, err
	}
	r, err := fn(a.F32())
	if err != nil {
		return ctrlSignal{}, 0, err
	}
	return ctrlSignal{}, 0, f.push(api.I64(r))
}

func trapConvU1I64(f *frame, fn func(float32) (uint64, error)) (ctrlSignal, uint64, error) {
	a, err := f.pop()
	if err != nil {
		return ctrlSignal{}, 0, err
	}
	r, err := fn(a.F32())
	if err != nil {
		return ctrlSignal{}, 0, err
	}
	return ctrlSignal{}, 0, f.push(api.I64(int64(r)))
}

func trapConv2I64(f *frame, fn func(float64) (int64, error)) (ctrlSignal, uint64, error) {
	a, err := f.pop()
	if err != nil {
		return ctrlSignal{}, 0, err
	}
	r, err := fn(a.F64())
	if err != nil {
		return ctrlSignal{}, 0, err
	}
	return ctrlSignal{}, 0, f.push(api.I64(r))
}

func trapConvU2I64(f *frame, fn func(float64) (uint64, error)) (ctrlSignal, uint64, error) {
	a, err := f.pop()
	if err != nil {
		return ctrlSignal{}, 0, err
	}
	r, err := fn(a.F64())
	if err != nil {
		return ctrlSignal{}, 0, err
	}
	return ctrlSignal{}, 0, f.push(api.I64(int64(r)))
}
