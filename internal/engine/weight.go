package engine

import "github.com/pulseengine/wrt/internal/codec"

// memAccessBytes gives the fixed access width of every load/store opcode,
// used to compute fuel weight per spec 4.G ("memory ops weight = 1 +
// ceil(bytes/8)"). memory.fill/memory.copy have a dynamic width instead,
// handled separately by their own handlers via extra fuel.
var memAccessBytes = map[codec.Opcode]int{
	codec.OpI32Load: 4, codec.OpI64Load: 8, codec.OpF32Load: 4, codec.OpF64Load: 8,
	codec.OpI32Load8S: 1, codec.OpI32Load8U: 1, codec.OpI32Load16S: 2, codec.OpI32Load16U: 2,
	codec.OpI64Load8S: 1, codec.OpI64Load8U: 1, codec.OpI64Load16S: 2, codec.OpI64Load16U: 2,
	codec.OpI64Load32S: 4, codec.OpI64Load32U: 4,
	codec.OpI32Store: 4, codec.OpI64Store: 8, codec.OpF32Store: 4, codec.OpF64Store: 8,
	codec.OpI32Store8: 1, codec.OpI32Store16: 2, codec.OpI64Store8: 1, codec.OpI64Store16: 2,
	codec.OpI64Store32: 4,
}

func ceilDiv(n, d int) int {
	if n <= 0 {
		return 0
	}
	return (n + d - 1) / d
}

// baseWeight is the fuel cost charged for instr before it executes, per
// spec 4.G's schedule: 1 for simple ops, 1+ceil(bytes/8) for fixed-size
// memory accesses, 10 for calls. memory.fill/memory.copy charge the base
// 1 here and their dynamic remainder as extra fuel once the byte count is
// known (see exec.go).
func baseWeight(op codec.Opcode) uint64 {
	switch op {
	case codec.OpCall, codec.OpCallIndirect:
		return 10
	}
	if bytes, ok := memAccessBytes[op]; ok {
		return uint64(1 + ceilDiv(bytes, 8))
	}
	return 1
}
