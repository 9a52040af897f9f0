// Package engine implements the single-threaded stack-machine interpreter:
// operand stack, call frames, fuel and instruction-budget metering, and
// trap propagation. Grounded on
// tetratelabs-wazero/internal/engine/interpreter/interpreter.go's
// callEngine/callFrame shape, generalized from dispatching wazeroir ops to
// dispatching codec.Instruction, and on
// original_source/wrt/src/instructions/{numeric,memory}.rs's
// pop-check-dispatch-push per-opcode style (that source's control-flow
// internals — the "StacklessEngine" itself — were not part of the
// retrieved original_source, so the label-stack/control-flow shape here
// follows the teacher instead, adapted to recurse over codec.Instruction's
// nested Then/Else bodies rather than a flattened, pc-addressed op list).
package engine

import (
	"context"

	"go.uber.org/zap"

	"github.com/pulseengine/wrt/api"
	"github.com/pulseengine/wrt/internal/bound"
	"github.com/pulseengine/wrt/internal/codec"
	"github.com/pulseengine/wrt/internal/memory"
	"github.com/pulseengine/wrt/internal/verify"
	"github.com/pulseengine/wrt/wrtlog"
)

// HostDispatcher is the engine's only escape hatch to the host: the single
// ABI function spec section 6 names. A Call whose function index refers to
// an import rather than a local Function goes through this interface.
type HostDispatcher interface {
	Dispatch(ctx context.Context, namespace, name string, args []api.Value) ([]api.Value, *api.Trap)
}

// Function is a single local (non-imported) function body.
type Function struct {
	// Namespace/Name are set for imported functions, which have no Body
	// and are dispatched through the HostDispatcher instead.
	Namespace string
	Name      string

	Body       []codec.Instruction
	NumParams  int
	NumResults int
	// LocalTypes covers every local the frame carries, params included:
	// indices [0, NumParams) are the parameters, the rest are
	// zero-initialized per their declared type on Call.
	LocalTypes []api.ValueType
}

func (f *Function) isImport() bool { return f.Body == nil }

// TableElement is a single funcref table slot. TypeIndex identifies the
// element's declared signature for call_indirect's type check; Null
// marks an uninitialized slot.
type TableElement struct {
	FuncIndex uint32
	TypeIndex uint32
	Null      bool
}

// Table is a single funcref table.
type Table struct {
	Elements []TableElement
}

// Limits bounds every resource the engine enforces, mirroring the
// resource-limits section (component C) fields the engine consumes at
// runtime.
type Limits struct {
	MaxStackDepth          int
	MaxCallDepth           int
	MaxInstructionsPerStep uint64
	FuelPerStep            uint64
}

// DefaultLimits returns a permissive but still-bounded limit set, useful
// for tests and hosts that haven't loaded a resource-limits section yet.
func DefaultLimits() Limits {
	return Limits{
		MaxStackDepth:          4096,
		MaxCallDepth:           512,
		MaxInstructionsPerStep: 1_000_000,
		FuelPerStep:            1_000_000,
	}
}

// Metrics accumulates read-only counters a host can inspect after an
// invocation completes or traps, per spec 4.G/8 property 8 ("state after a
// trap is unchanged except for fuel consumed... and metrics").
type Metrics struct {
	InstructionsExecuted uint64
	FuelConsumed         uint64
	MaxCallDepthReached  int
}

// Engine is one module instance's executable state: its functions, table,
// linear memory, mutable globals, and the dispatcher for imported calls.
type Engine struct {
	Functions []*Function
	Table     *Table
	Memory    *memory.Memory
	Globals   []api.Value
	Host      HostDispatcher

	limits           Limits
	level            verify.Level
	fuel             uint64
	stepInstructions uint64
	metrics          Metrics
}

// New constructs an Engine over the given functions/table/memory/globals.
func New(functions []*Function, table *Table, mem *memory.Memory, globals []api.Value, host HostDispatcher, limits Limits, level verify.Level) *Engine {
	return &Engine{
		Functions: functions,
		Table:     table,
		Memory:    mem,
		Globals:   globals,
		Host:      host,
		limits:    limits,
		level:     level,
		fuel:      limits.FuelPerStep,
	}
}

// Metrics returns a snapshot of the engine's accumulated counters.
func (e *Engine) Metrics() Metrics { return e.metrics }

// FuelRemaining reports how much fuel is left for the current step.
func (e *Engine) FuelRemaining() uint64 { return e.fuel }

// RefuelStep resets the per-step fuel counter to the configured budget,
// for hosts that time-slice an invocation across multiple steps (spec
// 4.G: "the caller may time-slice by bounding max_instructions_per_step
// and invoking the engine repeatedly").
func (e *Engine) RefuelStep() {
	e.fuel = e.limits.FuelPerStep
	e.stepInstructions = 0
}

// Invoke runs funcIdx with args on the operand stack and returns its
// result values, or a *api.Trap on failure. Per property 8, a trap leaves
// the engine's globals and table exactly as they were before the call;
// fuel consumed, the metrics above and already-completed memory.Grow
// effects remain. Stores to linear memory made before the trap are not
// undone.
func (e *Engine) Invoke(ctx context.Context, funcIdx uint32, args []api.Value) ([]api.Value, error) {
	if int(funcIdx) >= len(e.Functions) {
		return nil, api.NewTrap(api.TrapUndefinedElement, "invoke: function index out of range")
	}
	wrtlog.Logger().Debug("invoke", zap.Uint32("func_index", funcIdx))
	savedGlobals := append([]api.Value(nil), e.Globals...)
	results, err := e.callFunction(ctx, e.Functions[funcIdx], args, 1)
	if err != nil {
		copy(e.Globals, savedGlobals)
		return nil, err
	}
	return results, nil
}

func (e *Engine) newFrame(fn *Function, args []api.Value) (*frame, error) {
	locals := make([]api.Value, len(fn.LocalTypes))
	for i, t := range fn.LocalTypes {
		if i < len(args) {
			locals[i] = args[i]
		} else {
			locals[i] = zeroValue(t)
		}
	}
	operands := bound.NewStack[api.Value](e.limits.MaxStackDepth, e.level)
	return &frame{fn: fn, locals: locals, operands: operands}, nil
}

func zeroValue(t api.ValueType) api.Value {
	switch t {
	case api.ValueTypeI32:
		return api.I32(0)
	case api.ValueTypeI64:
		return api.I64(0)
	case api.ValueTypeF32:
		return api.F32(0)
	case api.ValueTypeF64:
		return api.F64(0)
	default:
		return api.Value{Type: t}
	}
}
