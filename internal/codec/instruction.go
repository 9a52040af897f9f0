// Package codec implements the WebAssembly binary instruction decoder and
// encoder: a tagged-union Instruction AST, parse/encode round-trip
// functions, and the LEB128 primitives they build on. Grounded on
// original_source/wrt-decoder/src/instructions.rs, generalized from that
// source's enum-per-instruction shape into a single flat struct in the
// style of tetratelabs-wazero/internal/engine/interpreter/interpreter.go's
// interpreterOp ("a form of union type... most fields are opaque and only
// relevant when in context of its kind").
package codec

// BlockKind distinguishes the three shapes a structured control-flow
// block's result type may take.
type BlockKind byte

const (
	BlockEmpty BlockKind = iota
	BlockValue
	BlockTypeIndex
)

// BlockType describes the result-type signature of a Block/Loop/If,
// grounded on spec.md §4.F's block-type byte table.
type BlockType struct {
	Kind      BlockKind
	ValueType byte  // meaningful when Kind == BlockValue
	TypeIndex int32 // meaningful when Kind == BlockTypeIndex; signed per LEB128 encoding
}

// MemArg is the (offset, align_log2) pair every load/store instruction
// carries as two LEB128-unsigned immediates.
type MemArg struct {
	Offset    uint32
	AlignLog2 uint32
}

// Instruction is a single parsed WebAssembly instruction. Op determines
// which of the remaining fields are meaningful; unused fields are simply
// left zero. Block/Loop/If carry their nested instruction sequences
// directly rather than as separate byte ranges, since spec.md's
// parse_instructions contract recurses structurally.
type Instruction struct {
	Op Opcode

	// Then holds a Block/Loop's body, or an If's then-branch.
	Then []Instruction
	// Else holds an If's else-branch; nil (not just empty) when no ELSE
	// was present in the input, which EncodeInstruction uses to decide
	// whether to emit an ELSE opcode at all.
	Else []Instruction

	BlockType BlockType

	// Idx is the single index immediate shared by Br, BrIf, Call,
	// LocalGet/Set/Tee, GlobalGet/Set, CallIndirect's type index, and
	// MemoryFill's memory index.
	Idx uint32
	// Idx2 is a second index immediate: CallIndirect's table index (a
	// single byte on the wire, widened here for field reuse), or
	// MemoryCopy's source memory index (Idx is the destination).
	Idx2 uint32

	// BrTable holds br_table's label vector; BrDefault its default label.
	BrTable   []uint32
	BrDefault uint32

	Mem MemArg // meaningful for every load/store opcode

	I32Val int32
	I64Val int64
	F32Val float32
	F64Val float64
}
