package engine

import (
	"context"
	"math"

	"github.com/pulseengine/wrt/api"
	"github.com/pulseengine/wrt/internal/codec"
)

// ctrlKind distinguishes the three ways a sequence of instructions can
// finish: falling off the end, branching out (with how many further
// enclosing labels the branch must still unwind through), or returning
// from the enclosing function entirely.
type ctrlKind int

const (
	ctrlNone ctrlKind = iota
	ctrlBranch
	ctrlReturn
)

type ctrlSignal struct {
	kind  ctrlKind
	depth int
}

// callFunction is the single entry point every Call, call_indirect and
// top-level Invoke goes through: it enforces max_call_depth, creates a
// fresh frame for local (non-imported) functions, runs the body, and
// extracts the declared number of result values.
func (e *Engine) callFunction(ctx context.Context, fn *Function, args []api.Value, callDepth int) ([]api.Value, error) {
	if callDepth > e.limits.MaxCallDepth {
		return nil, api.NewTrap(api.TrapCallStackOverflow, "call depth exceeded max_call_depth")
	}
	if callDepth > e.metrics.MaxCallDepthReached {
		e.metrics.MaxCallDepthReached = callDepth
	}
	if fn.isImport() {
		results, trap := e.Host.Dispatch(ctx, fn.Namespace, fn.Name, args)
		if trap != nil {
			return nil, trap
		}
		return results, nil
	}

	f, err := e.newFrame(fn, args)
	if err != nil {
		return nil, err
	}
	if _, err := e.execInstrs(ctx, f, fn.Body, callDepth); err != nil {
		return nil, err
	}
	return f.popResults(fn.NumResults)
}

// execInstrs runs a flat instruction sequence (a function body, or a
// structured block's Then/Else), charging fuel and the per-step
// instruction budget for every instruction dispatched — including those
// nested inside Block/Loop/If, since each nesting level's body is itself
// run through this same function.
func (e *Engine) execInstrs(ctx context.Context, f *frame, instrs []codec.Instruction, callDepth int) (ctrlSignal, error) {
	for _, instr := range instrs {
		cost := baseWeight(instr.Op)
		if e.fuel < cost {
			return ctrlSignal{}, api.NewTrap(api.TrapFuelExhausted, "fuel exhausted")
		}
		e.fuel -= cost
		e.metrics.FuelConsumed += cost

		e.stepInstructions++
		e.metrics.InstructionsExecuted++
		if e.stepInstructions > e.limits.MaxInstructionsPerStep {
			return ctrlSignal{}, api.NewTrap(api.TrapInstructionBudgetExceeded, "instructions per step exceeded")
		}

		sig, extraFuel, err := e.execOne(ctx, f, instr, callDepth)
		if extraFuel > 0 {
			if e.fuel < extraFuel {
				return ctrlSignal{}, api.NewTrap(api.TrapFuelExhausted, "fuel exhausted")
			}
			e.fuel -= extraFuel
			e.metrics.FuelConsumed += extraFuel
		}
		if err != nil {
			return ctrlSignal{}, err
		}
		if sig.kind != ctrlNone {
			return sig, nil
		}
	}
	return ctrlSignal{}, nil
}

func resultArity(bt codec.BlockType) int {
	switch bt.Kind {
	case codec.BlockValue:
		return 1
	default:
		// BlockTypeIndex would resolve to the referenced function type's
		// result count; no module type-section is modeled in this scope,
		// so a type-indexed block is treated as zero-result (documented
		// simplification — see DESIGN.md).
		return 0
	}
}

// execOne dispatches a single instruction. It returns a control signal
// (propagated by the caller up through enclosing blocks), any fuel beyond
// the flat baseWeight already charged by execInstrs (only memory.fill and
// memory.copy have a size-dependent remainder), and an error (a *api.Trap,
// or a propagated sub-call's error).
func (e *Engine) execOne(ctx context.Context, f *frame, instr codec.Instruction, callDepth int) (ctrlSignal, uint64, error) {
	switch instr.Op {
	case codec.OpUnreachable:
		return ctrlSignal{}, 0, api.NewTrap(api.TrapUnreachable, "unreachable executed")
	case codec.OpNop:
		return ctrlSignal{}, 0, nil

	case codec.OpBlock:
		sig, err := e.execStructured(ctx, f, instr.Then, instr.BlockType, callDepth)
		return sig, 0, err
	case codec.OpLoop:
		sig, err := e.execLoop(ctx, f, instr, callDepth)
		return sig, 0, err
	case codec.OpIf:
		cond, err := f.pop()
		if err != nil {
			return ctrlSignal{}, 0, err
		}
		body := instr.Else
		if cond.I32() != 0 {
			body = instr.Then
		}
		sig, err := e.execStructured(ctx, f, body, instr.BlockType, callDepth)
		return sig, 0, err

	case codec.OpBr:
		return ctrlSignal{kind: ctrlBranch, depth: int(instr.Idx)}, 0, nil
	case codec.OpBrIf:
		cond, err := f.pop()
		if err != nil {
			return ctrlSignal{}, 0, err
		}
		if cond.I32() == 0 {
			return ctrlSignal{}, 0, nil
		}
		return ctrlSignal{kind: ctrlBranch, depth: int(instr.Idx)}, 0, nil
	case codec.OpBrTable:
		idxVal, err := f.pop()
		if err != nil {
			return ctrlSignal{}, 0, err
		}
		idx := idxVal.U32()
		label := instr.BrDefault
		if idx < uint32(len(instr.BrTable)) {
			label = instr.BrTable[idx]
		}
		return ctrlSignal{kind: ctrlBranch, depth: int(label)}, 0, nil
	case codec.OpReturn:
		return ctrlSignal{kind: ctrlReturn}, 0, nil

	case codec.OpCall:
		return e.execCallInstr(ctx, f, instr, callDepth)
	case codec.OpCallIndirect:
		return e.execCallIndirect(ctx, f, instr, callDepth)

	case codec.OpDrop:
		_, err := f.pop()
		return ctrlSignal{}, 0, err
	case codec.OpSelect:
		return e.execSelect(f)

	case codec.OpLocalGet:
		if int(instr.Idx) >= len(f.locals) {
			return ctrlSignal{}, 0, api.NewTrap(api.TrapUnreachable, "local index out of range")
		}
		return ctrlSignal{}, 0, f.push(f.locals[instr.Idx])
	case codec.OpLocalSet:
		v, err := f.pop()
		if err != nil {
			return ctrlSignal{}, 0, err
		}
		f.locals[instr.Idx] = v
		return ctrlSignal{}, 0, nil
	case codec.OpLocalTee:
		v, err := f.pop()
		if err != nil {
			return ctrlSignal{}, 0, err
		}
		f.locals[instr.Idx] = v
		return ctrlSignal{}, 0, f.push(v)
	case codec.OpGlobalGet:
		if int(instr.Idx) >= len(e.Globals) {
			return ctrlSignal{}, 0, api.NewTrap(api.TrapUnreachable, "global index out of range")
		}
		return ctrlSignal{}, 0, f.push(e.Globals[instr.Idx])
	case codec.OpGlobalSet:
		v, err := f.pop()
		if err != nil {
			return ctrlSignal{}, 0, err
		}
		e.Globals[instr.Idx] = v
		return ctrlSignal{}, 0, nil

	case codec.OpMemorySize:
		return ctrlSignal{}, 0, f.push(api.I32(int32(e.Memory.Size())))
	case codec.OpMemoryGrow:
		delta, err := f.pop()
		if err != nil {
			return ctrlSignal{}, 0, err
		}
		result := e.Memory.Grow(delta.U32())
		return ctrlSignal{}, 0, f.push(api.I32(int32(result)))
	case codec.OpMemoryFill:
		return e.execMemoryFill(f)
	case codec.OpMemoryCopy:
		return e.execMemoryCopy(f)

	case codec.OpI32Const:
		return ctrlSignal{}, 0, f.push(api.I32(instr.I32Val))
	case codec.OpI64Const:
		return ctrlSignal{}, 0, f.push(api.I64(instr.I64Val))
	case codec.OpF32Const:
		return ctrlSignal{}, 0, f.push(api.F32(instr.F32Val))
	case codec.OpF64Const:
		return ctrlSignal{}, 0, f.push(api.F64(instr.F64Val))
	}

	if _, ok := memAccessBytes[instr.Op]; ok {
		return e.execMemAccess(f, instr)
	}

	return e.execNumeric(f, instr.Op)
}

func (e *Engine) execSelect(f *frame) (ctrlSignal, uint64, error) {
	cond, err := f.pop()
	if err != nil {
		return ctrlSignal{}, 0, err
	}
	b, err := f.pop()
	if err != nil {
		return ctrlSignal{}, 0, err
	}
	a, err := f.pop()
	if err != nil {
		return ctrlSignal{}, 0, err
	}
	if cond.I32() != 0 {
		return ctrlSignal{}, 0, f.push(a)
	}
	return ctrlSignal{}, 0, f.push(b)
}

// execStructured runs a Block or If body: it absorbs a branch targeting
// depth 0 (this is the label the branch names) and otherwise truncates
// the operand stack to the block's declared result arity before
// propagating, per spec 4.G ("for Block the continuation is the
// instruction past End").
func (e *Engine) execStructured(ctx context.Context, f *frame, body []codec.Instruction, bt codec.BlockType, callDepth int) (ctrlSignal, error) {
	entry := f.operands.Len()
	sig, err := e.execInstrs(ctx, f, body, callDepth)
	if err != nil {
		return ctrlSignal{}, err
	}
	if sig.kind == ctrlReturn {
		return sig, nil
	}
	if err := f.truncateTo(entry + resultArity(bt)); err != nil {
		return ctrlSignal{}, err
	}
	if sig.kind == ctrlBranch {
		if sig.depth == 0 {
			return ctrlSignal{}, nil
		}
		return ctrlSignal{kind: ctrlBranch, depth: sig.depth - 1}, nil
	}
	return ctrlSignal{}, nil
}

// execLoop runs a Loop body, re-entering it whenever a branch targets
// depth 0 ("for Loop the continuation is the loop header — branching
// into a loop re-enters").
func (e *Engine) execLoop(ctx context.Context, f *frame, instr codec.Instruction, callDepth int) (ctrlSignal, error) {
	entry := f.operands.Len()
	for {
		sig, err := e.execInstrs(ctx, f, instr.Then, callDepth)
		if err != nil {
			return ctrlSignal{}, err
		}
		if sig.kind == ctrlReturn {
			return sig, nil
		}
		if sig.kind == ctrlBranch && sig.depth == 0 {
			if err := f.truncateTo(entry); err != nil {
				return ctrlSignal{}, err
			}
			continue
		}
		if err := f.truncateTo(entry + resultArity(instr.BlockType)); err != nil {
			return ctrlSignal{}, err
		}
		if sig.kind == ctrlBranch {
			return ctrlSignal{kind: ctrlBranch, depth: sig.depth - 1}, nil
		}
		return ctrlSignal{}, nil
	}
}

func (e *Engine) execCallInstr(ctx context.Context, f *frame, instr codec.Instruction, callDepth int) (ctrlSignal, uint64, error) {
	if int(instr.Idx) >= len(e.Functions) {
		return ctrlSignal{}, 0, api.NewTrap(api.TrapUndefinedElement, "call: function index out of range")
	}
	target := e.Functions[instr.Idx]
	args, err := f.popN(target.NumParams)
	if err != nil {
		return ctrlSignal{}, 0, err
	}
	results, err := e.callFunction(ctx, target, args, callDepth+1)
	if err != nil {
		return ctrlSignal{}, 0, err
	}
	for _, r := range results {
		if err := f.push(r); err != nil {
			return ctrlSignal{}, 0, err
		}
	}
	return ctrlSignal{}, 0, nil
}

func (e *Engine) execCallIndirect(ctx context.Context, f *frame, instr codec.Instruction, callDepth int) (ctrlSignal, uint64, error) {
	entryVal, err := f.pop()
	if err != nil {
		return ctrlSignal{}, 0, err
	}
	entry := entryVal.U32()
	if e.Table == nil || int(entry) >= len(e.Table.Elements) {
		return ctrlSignal{}, 0, api.NewTrap(api.TrapUndefinedElement, "call_indirect: table index out of range")
	}
	elem := e.Table.Elements[entry]
	if elem.Null {
		return ctrlSignal{}, 0, api.NewTrap(api.TrapUninitializedElement, "call_indirect: null table element")
	}
	if elem.TypeIndex != instr.Idx {
		return ctrlSignal{}, 0, api.NewTrap(api.TrapIndirectCallTypeMismatch, "call_indirect: signature mismatch")
	}
	if int(elem.FuncIndex) >= len(e.Functions) {
		return ctrlSignal{}, 0, api.NewTrap(api.TrapUndefinedElement, "call_indirect: dangling function index")
	}
	target := e.Functions[elem.FuncIndex]
	args, err := f.popN(target.NumParams)
	if err != nil {
		return ctrlSignal{}, 0, err
	}
	results, err := e.callFunction(ctx, target, args, callDepth+1)
	if err != nil {
		return ctrlSignal{}, 0, err
	}
	for _, r := range results {
		if err := f.push(r); err != nil {
			return ctrlSignal{}, 0, err
		}
	}
	return ctrlSignal{}, 0, nil
}

func (e *Engine) execMemoryFill(f *frame) (ctrlSignal, uint64, error) {
	n, err := f.pop()
	if err != nil {
		return ctrlSignal{}, 0, err
	}
	val, err := f.pop()
	if err != nil {
		return ctrlSignal{}, 0, err
	}
	dst, err := f.pop()
	if err != nil {
		return ctrlSignal{}, 0, err
	}
	if err := e.Memory.Fill(dst.U32(), byte(val.U32()), n.U32()); err != nil {
		return ctrlSignal{}, 0, err
	}
	return ctrlSignal{}, uint64(ceilDiv(int(n.U32()), 8)), nil
}

func (e *Engine) execMemoryCopy(f *frame) (ctrlSignal, uint64, error) {
	n, err := f.pop()
	if err != nil {
		return ctrlSignal{}, 0, err
	}
	src, err := f.pop()
	if err != nil {
		return ctrlSignal{}, 0, err
	}
	dst, err := f.pop()
	if err != nil {
		return ctrlSignal{}, 0, err
	}
	if err := e.Memory.CopyWithinOrBetween(e.Memory, src.U32(), dst.U32(), n.U32()); err != nil {
		return ctrlSignal{}, 0, err
	}
	return ctrlSignal{}, uint64(ceilDiv(int(n.U32()), 8)), nil
}

func effectiveAddr(base uint32, offset uint32) (uint32, bool) {
	sum := uint64(base) + uint64(offset)
	if sum > math.MaxUint32 {
		return 0, false
	}
	return uint32(sum), true
}

func (e *Engine) execMemAccess(f *frame, instr codec.Instruction) (ctrlSignal, uint64, error) {
	isStore := isStoreOpcode(instr.Op)
	var storeVal api.Value
	var err error
	if isStore {
		storeVal, err = f.pop()
		if err != nil {
			return ctrlSignal{}, 0, err
		}
	}
	addrVal, err := f.pop()
	if err != nil {
		return ctrlSignal{}, 0, err
	}
	addr, ok := effectiveAddr(addrVal.U32(), instr.Mem.Offset)
	if !ok {
		return ctrlSignal{}, 0, api.NewTrap(api.TrapMemoryOutOfBounds, "effective address overflow")
	}
	size := memAccessBytes[instr.Op]
	if err := e.Memory.CheckAlignment(addr, uint32(size), instr.Mem.AlignLog2); err != nil {
		return ctrlSignal{}, 0, err
	}

	switch instr.Op {
	case codec.OpI32Load:
		v, err := e.Memory.ReadI32(addr)
		return ctrlSignal{}, 0, pushOrErr(f, api.I32(v), err)
	case codec.OpI64Load:
		v, err := e.Memory.ReadI64(addr)
		return ctrlSignal{}, 0, pushOrErr(f, api.I64(v), err)
	case codec.OpF32Load:
		v, err := e.Memory.ReadF32(addr)
		return ctrlSignal{}, 0, pushOrErr(f, api.F32(v), err)
	case codec.OpF64Load:
		v, err := e.Memory.ReadF64(addr)
		return ctrlSignal{}, 0, pushOrErr(f, api.F64(v), err)
	case codec.OpI32Load8S:
		v, err := e.Memory.ReadI8(addr)
		return ctrlSignal{}, 0, pushOrErr(f, api.I32(int32(v)), err)
	case codec.OpI32Load8U:
		v, err := e.Memory.ReadU8(addr)
		return ctrlSignal{}, 0, pushOrErr(f, api.I32(int32(v)), err)
	case codec.OpI32Load16S:
		v, err := e.Memory.ReadI16(addr)
		return ctrlSignal{}, 0, pushOrErr(f, api.I32(int32(v)), err)
	case codec.OpI32Load16U:
		v, err := e.Memory.ReadU16(addr)
		return ctrlSignal{}, 0, pushOrErr(f, api.I32(int32(v)), err)
	case codec.OpI64Load8S:
		v, err := e.Memory.ReadI8(addr)
		return ctrlSignal{}, 0, pushOrErr(f, api.I64(int64(v)), err)
	case codec.OpI64Load8U:
		v, err := e.Memory.ReadU8(addr)
		return ctrlSignal{}, 0, pushOrErr(f, api.I64(int64(v)), err)
	case codec.OpI64Load16S:
		v, err := e.Memory.ReadI16(addr)
		return ctrlSignal{}, 0, pushOrErr(f, api.I64(int64(v)), err)
	case codec.OpI64Load16U:
		v, err := e.Memory.ReadU16(addr)
		return ctrlSignal{}, 0, pushOrErr(f, api.I64(int64(v)), err)
	case codec.OpI64Load32S:
		v, err := e.Memory.ReadI32(addr)
		return ctrlSignal{}, 0, pushOrErr(f, api.I64(int64(v)), err)
	case codec.OpI64Load32U:
		v, err := e.Memory.ReadU32(addr)
		return ctrlSignal{}, 0, pushOrErr(f, api.I64(int64(v)), err)

	case codec.OpI32Store:
		return ctrlSignal{}, 0, e.Memory.WriteI32(addr, storeVal.I32())
	case codec.OpI64Store:
		return ctrlSignal{}, 0, e.Memory.WriteI64(addr, storeVal.I64())
	case codec.OpF32Store:
		return ctrlSignal{}, 0, e.Memory.WriteF32(addr, storeVal.F32())
	case codec.OpF64Store:
		return ctrlSignal{}, 0, e.Memory.WriteF64(addr, storeVal.F64())
	case codec.OpI32Store8:
		return ctrlSignal{}, 0, e.Memory.WriteU8(addr, byte(storeVal.U32()))
	case codec.OpI32Store16:
		return ctrlSignal{}, 0, e.Memory.WriteU16(addr, uint16(storeVal.U32()))
	case codec.OpI64Store8:
		return ctrlSignal{}, 0, e.Memory.WriteU8(addr, byte(storeVal.U64()))
	case codec.OpI64Store16:
		return ctrlSignal{}, 0, e.Memory.WriteU16(addr, uint16(storeVal.U64()))
	case codec.OpI64Store32:
		return ctrlSignal{}, 0, e.Memory.WriteU32(addr, uint32(storeVal.U64()))
	}
	return ctrlSignal{}, 0, api.NewTrap(api.TrapUnreachable, "unhandled memory opcode")
}

func pushOrErr(f *frame, v api.Value, err error) error {
	if err != nil {
		return err
	}
	return f.push(v)
}

func isStoreOpcode(op codec.Opcode) bool {
	switch op {
	case codec.OpI32Store, codec.OpI64Store, codec.OpF32Store, codec.OpF64Store,
		codec.OpI32Store8, codec.OpI32Store16, codec.OpI64Store8, codec.OpI64Store16, codec.OpI64Store32:
		return true
	}
	return false
}

func boolToI32(b bool) api.Value {
	if b {
		return api.I32(1)
	}
	return api.I32(0)
}
