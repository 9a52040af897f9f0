package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pulseengine/wrt/wrterr"
)

// TestRoundTripBlockScenario implements scenario S3: parsing
// `block (result i32) (i32.const 42) end`, encoded as 02 7F 41 2A 0B, must
// yield Block(Value(I32), [I32Const(42)]) and re-encoding must reproduce
// the exact original 5 bytes.
func TestRoundTripBlockScenario(t *testing.T) {
	wire := []byte{0x02, 0x7F, 0x41, 0x2A, 0x0B}

	instr, n, err := ParseInstruction(wire)
	require.NoError(t, err)
	assert.Equal(t, len(wire), n)
	assert.Equal(t, OpBlock, instr.Op)
	assert.Equal(t, BlockValue, instr.BlockType.Kind)
	assert.Equal(t, byte(0x7F), instr.BlockType.ValueType)
	require.Len(t, instr.Then, 1)
	assert.Equal(t, OpI32Const, instr.Then[0].Op)
	assert.Equal(t, int32(42), instr.Then[0].I32Val)

	var out []byte
	out = EncodeInstruction(out, instr)
	assert.Equal(t, wire, out)
}

// TestRoundTripProperty is testable property 3: for every instruction i,
// parse(encode(i)) reproduces i and consumes exactly len(encode(i)) bytes.
func TestRoundTripProperty(t *testing.T) {
	samples := []Instruction{
		{Op: OpUnreachable},
		{Op: OpNop},
		{Op: OpDrop},
		{Op: OpSelect},
		{Op: OpI32Add},
		{Op: OpF64Sqrt},
		{Op: OpLocalGet, Idx: 3},
		{Op: OpGlobalSet, Idx: 7},
		{Op: OpBr, Idx: 2},
		{Op: OpCall, Idx: 99},
		{Op: OpCallIndirect, Idx: 5, Idx2: 1},
		{Op: OpI32Const, I32Val: -42},
		{Op: OpI64Const, I64Val: -9223372036854775808},
		{Op: OpF32Const, F32Val: 3.5},
		{Op: OpF64Const, F64Val: -1.25},
		{Op: OpI32Load, Mem: MemArg{Offset: 16, AlignLog2: 2}},
		{Op: OpI64Store32, Mem: MemArg{Offset: 0, AlignLog2: 0}},
		{Op: OpBrTable, BrTable: []uint32{1, 2, 3}, BrDefault: 0},
		{Op: OpMemoryCopy, Idx: 0, Idx2: 0},
		{Op: OpMemoryFill, Idx: 0},
		{Op: OpI32TruncSatF64U},
		{
			Op:        OpBlock,
			BlockType: BlockType{Kind: BlockEmpty},
			Then:      []Instruction{{Op: OpNop}, {Op: OpI32Const, I32Val: 1}},
		},
		{
			Op:        OpIf,
			BlockType: BlockType{Kind: BlockTypeIndex, TypeIndex: 4},
			Then:      []Instruction{{Op: OpI32Const, I32Val: 1}},
			Else:      []Instruction{{Op: OpI32Const, I32Val: 0}},
		},
		{
			Op:        OpLoop,
			BlockType: BlockType{Kind: BlockValue, ValueType: 0x7E},
			Then: []Instruction{
				{Op: OpBlock, BlockType: BlockType{Kind: BlockEmpty}, Then: []Instruction{{Op: OpBr, Idx: 1}}},
			},
		},
	}

	for _, instr := range samples {
		var out []byte
		out = EncodeInstruction(out, instr)

		got, n, err := ParseInstruction(out)
		require.NoError(t, err, "op %v", instr.Op)
		assert.Equal(t, len(out), n, "op %v", instr.Op)
		assert.Equal(t, instr, got, "op %v", instr.Op)
	}
}

// TestIfWithoutElseOmitsElseOpcode ensures an If with no else-branch
// round-trips without ever emitting an ELSE byte, and that Else stays nil
// (not an empty non-nil slice) after parsing.
func TestIfWithoutElseOmitsElseOpcode(t *testing.T) {
	instr := Instruction{
		Op:        OpIf,
		BlockType: BlockType{Kind: BlockEmpty},
		Then:      []Instruction{{Op: OpNop}},
	}
	var out []byte
	out = EncodeInstruction(out, instr)
	assert.NotContains(t, out, byte(OpElse))

	got, _, err := ParseInstruction(out)
	require.NoError(t, err)
	assert.Nil(t, got.Else)
}

func TestParseInstructionsStopsAtEnd(t *testing.T) {
	// i32.const 1; i32.const 2; end; i32.const 3 (trailing byte after END
	// must NOT be consumed or parsed as part of this sequence).
	wire := []byte{0x41, 0x01, 0x41, 0x02, 0x0B, 0x41, 0x03}
	instrs, n, err := ParseInstructions(wire)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	require.Len(t, instrs, 2)
	assert.Equal(t, int32(1), instrs[0].I32Val)
	assert.Equal(t, int32(2), instrs[1].I32Val)
}

func TestParseInstructionsEndOfInputWithoutEnd(t *testing.T) {
	wire := []byte{0x01, 0x01} // nop; nop, no trailing END
	instrs, n, err := ParseInstructions(wire)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Len(t, instrs, 2)
}

func TestUnknownOpcodeError(t *testing.T) {
	_, _, err := ParseInstruction([]byte{0xFF})
	require.Error(t, err)
	de, ok := err.(*wrterr.DecodeError)
	require.True(t, ok)
	assert.Equal(t, wrterr.DecodeUnknownOpcode, de.Kind)
}

func TestTruncatedInputError(t *testing.T) {
	_, _, err := ParseInstruction([]byte{0x41}) // i32.const with no LEB128 byte
	require.Error(t, err)
	de, ok := err.(*wrterr.DecodeError)
	require.True(t, ok)
	assert.Equal(t, wrterr.DecodeTruncatedInput, de.Kind)
}

func TestMalformedLEB128Error(t *testing.T) {
	// Five continuation-flagged bytes: exceeds the 32-bit LEB128 budget.
	wire := []byte{0x41, 0x80, 0x80, 0x80, 0x80, 0x80, 0x00}
	_, _, err := ParseInstruction(wire)
	require.Error(t, err)
	de, ok := err.(*wrterr.DecodeError)
	require.True(t, ok)
	assert.Equal(t, wrterr.DecodeMalformedLEB128, de.Kind)
}

func TestEmptyInputTruncated(t *testing.T) {
	_, _, err := ParseInstruction(nil)
	require.Error(t, err)
	de, ok := err.(*wrterr.DecodeError)
	require.True(t, ok)
	assert.Equal(t, wrterr.DecodeTruncatedInput, de.Kind)
}
