package engine

import (
	"github.com/pulseengine/wrt/api"
	"github.com/pulseengine/wrt/internal/bound"
)

// frame is one call frame: a function's locals and its operand stack,
// bounded per spec 4.G ("Operand stack: bounded (<= max_stack_depth)").
type frame struct {
	fn       *Function
	locals   []api.Value
	operands *bound.Stack[api.Value]
}

func (f *frame) push(v api.Value) error {
	if err := f.operands.Push(v); err != nil {
		// The stack is fixed-capacity per spec; a well-typed program
		// never exceeds it, so overflow here is the same class of
		// unrecoverable fault spec 4.G assigns to call-depth overflow.
		return api.NewTrap(api.TrapCallStackOverflow, "operand stack exhausted")
	}
	return nil
}

func (f *frame) pop() (api.Value, error) {
	v, ok := f.operands.Pop()
	if !ok {
		return api.Value{}, api.NewTrap(api.TrapUnreachable, "operand stack underflow: validation should have caught this")
	}
	return v, nil
}

func (f *frame) popN(n int) ([]api.Value, error) {
	out := make([]api.Value, n)
	for i := n - 1; i >= 0; i-- {
		v, err := f.pop()
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (f *frame) truncateTo(height int) error {
	for f.operands.Len() > height {
		if _, ok := f.operands.Pop(); !ok {
			return api.NewTrap(api.TrapUnreachable, "operand stack underflow during label unwind")
		}
	}
	return nil
}

// popResults extracts a function's n return values from the top of the
// operand stack once its body has finished, returned in push order.
func (f *frame) popResults(n int) ([]api.Value, error) {
	return f.popN(n)
}
