package codec

import (
	"encoding/binary"
	"math"

	"github.com/pulseengine/wrt/wrterr"
)

// ParseInstructions parses a top-level instruction sequence (e.g. a
// function body) from data, consuming through a trailing END if present or
// to end-of-input otherwise. Returns the parsed instructions and the
// number of bytes consumed.
func ParseInstructions(data []byte) ([]Instruction, int, error) {
	instrs, _, consumed, err := parseBody(data)
	return instrs, consumed, err
}

// parseBody parses instructions from data until it sees an END or ELSE
// opcode — consuming that opcode byte — or runs out of input. stoppedAt is
// OpEnd, OpElse, or 0 (meaning end-of-input) to tell the caller which case
// occurred, since Block/Loop and If need to react differently.
func parseBody(data []byte) (instrs []Instruction, stoppedAt Opcode, consumed int, err error) {
	pos := 0
	for pos < len(data) {
		switch data[pos] {
		case byte(OpEnd):
			return instrs, OpEnd, pos + 1, nil
		case byte(OpElse):
			return instrs, OpElse, pos + 1, nil
		}
		instr, n, err := ParseInstruction(data[pos:])
		if err != nil {
			return nil, 0, 0, err
		}
		instrs = append(instrs, instr)
		pos += n
	}
	return instrs, 0, pos, nil
}

// ParseInstruction decodes exactly one instruction (and, for Block/Loop/If,
// its full nested body) from the front of data, returning the instruction
// and the number of bytes consumed.
func ParseInstruction(data []byte) (Instruction, int, error) {
	if len(data) == 0 {
		return Instruction{}, 0, wrterr.NewDecodeError(wrterr.DecodeTruncatedInput, "empty instruction bytes")
	}

	if data[0] == extendedOpcodeByte {
		return parseExtendedInstruction(data)
	}

	op := Opcode(data[0])

	switch op {
	case OpBlock, OpLoop:
		return parseStructuredBlock(op, data)
	case OpIf:
		return parseIf(data)

	case OpBr, OpBrIf:
		idx, n, err := readUnsignedLEB128(data, 1)
		if err != nil {
			return Instruction{}, 0, err
		}
		return Instruction{Op: op, Idx: idx}, 1 + n, nil

	case OpBrTable:
		return parseBrTable(data)

	case OpCall:
		idx, n, err := readUnsignedLEB128(data, 1)
		if err != nil {
			return Instruction{}, 0, err
		}
		return Instruction{Op: op, Idx: idx}, 1 + n, nil

	case OpCallIndirect:
		typeIdx, n, err := readUnsignedLEB128(data, 1)
		if err != nil {
			return Instruction{}, 0, err
		}
		if 1+n >= len(data) {
			return Instruction{}, 0, wrterr.NewDecodeError(wrterr.DecodeTruncatedInput, "call_indirect missing table index")
		}
		tableIdx := data[1+n]
		return Instruction{Op: op, Idx: typeIdx, Idx2: uint32(tableIdx)}, 1 + n + 1, nil

	case OpLocalGet, OpLocalSet, OpLocalTee, OpGlobalGet, OpGlobalSet:
		idx, n, err := readUnsignedLEB128(data, 1)
		if err != nil {
			return Instruction{}, 0, err
		}
		return Instruction{Op: op, Idx: idx}, 1 + n, nil

	case OpI32Const:
		v, n, err := readSignedLEB128(data, 1)
		if err != nil {
			return Instruction{}, 0, err
		}
		return Instruction{Op: op, I32Val: v}, 1 + n, nil

	case OpI64Const:
		v, n, err := readSignedLEB128_64(data, 1)
		if err != nil {
			return Instruction{}, 0, err
		}
		return Instruction{Op: op, I64Val: v}, 1 + n, nil

	case OpF32Const:
		if len(data) < 5 {
			return Instruction{}, 0, wrterr.NewDecodeError(wrterr.DecodeTruncatedInput, "truncated f32.const")
		}
		bits := binary.LittleEndian.Uint32(data[1:5])
		return Instruction{Op: op, F32Val: math.Float32frombits(bits)}, 5, nil

	case OpF64Const:
		if len(data) < 9 {
			return Instruction{}, 0, wrterr.NewDecodeError(wrterr.DecodeTruncatedInput, "truncated f64.const")
		}
		bits := binary.LittleEndian.Uint64(data[1:9])
		return Instruction{Op: op, F64Val: math.Float64frombits(bits)}, 9, nil
	}

	if loadStoreOpcodes[op] {
		align, n1, err := readUnsignedLEB128(data, 1)
		if err != nil {
			return Instruction{}, 0, err
		}
		offset, n2, err := readUnsignedLEB128(data, 1+n1)
		if err != nil {
			return Instruction{}, 0, err
		}
		return Instruction{Op: op, Mem: MemArg{Offset: offset, AlignLog2: align}}, 1 + n1 + n2, nil
	}

	if noImmediateOpcodes[op] {
		return Instruction{Op: op}, 1, nil
	}

	return Instruction{}, 0, wrterr.NewDecodeError(wrterr.DecodeUnknownOpcode, "unknown instruction opcode")
}

func parseStructuredBlock(op Opcode, data []byte) (Instruction, int, error) {
	bt, btLen, err := parseBlockType(data[1:])
	if err != nil {
		return Instruction{}, 0, err
	}
	body, _, bodyLen, err := parseBody(data[1+btLen:])
	if err != nil {
		return Instruction{}, 0, err
	}
	return Instruction{Op: op, BlockType: bt, Then: body}, 1 + btLen + bodyLen, nil
}

func parseIf(data []byte) (Instruction, int, error) {
	bt, btLen, err := parseBlockType(data[1:])
	if err != nil {
		return Instruction{}, 0, err
	}
	thenBody, stop, thenLen, err := parseBody(data[1+btLen:])
	if err != nil {
		return Instruction{}, 0, err
	}
	consumed := 1 + btLen + thenLen

	var elseBody []Instruction
	if stop == OpElse {
		eb, _, elseLen, err := parseBody(data[consumed:])
		if err != nil {
			return Instruction{}, 0, err
		}
		elseBody = eb
		consumed += elseLen
	}

	return Instruction{Op: OpIf, BlockType: bt, Then: thenBody, Else: elseBody}, consumed, nil
}

func parseBrTable(data []byte) (Instruction, int, error) {
	count, n, err := readUnsignedLEB128(data, 1)
	if err != nil {
		return Instruction{}, 0, err
	}
	pos := 1 + n
	labels := make([]uint32, 0, count)
	for i := uint32(0); i < count; i++ {
		label, ln, err := readUnsignedLEB128(data, pos)
		if err != nil {
			return Instruction{}, 0, err
		}
		labels = append(labels, label)
		pos += ln
	}
	defaultLabel, dn, err := readUnsignedLEB128(data, pos)
	if err != nil {
		return Instruction{}, 0, err
	}
	pos += dn
	return Instruction{Op: OpBrTable, BrTable: labels, BrDefault: defaultLabel}, pos, nil
}

func parseExtendedInstruction(data []byte) (Instruction, int, error) {
	sub, n, err := readUnsignedLEB128(data, 1)
	if err != nil {
		return Instruction{}, 0, err
	}
	op := Opcode(extendedPrefix) | Opcode(sub)
	consumed := 1 + n

	switch op {
	case OpI32TruncSatF32S, OpI32TruncSatF32U, OpI32TruncSatF64S, OpI32TruncSatF64U,
		OpI64TruncSatF32S, OpI64TruncSatF32U, OpI64TruncSatF64S, OpI64TruncSatF64U:
		return Instruction{Op: op}, consumed, nil

	case OpMemoryCopy:
		dst, n1, err := readUnsignedLEB128(data, consumed)
		if err != nil {
			return Instruction{}, 0, err
		}
		src, n2, err := readUnsignedLEB128(data, consumed+n1)
		if err != nil {
			return Instruction{}, 0, err
		}
		return Instruction{Op: op, Idx: dst, Idx2: src}, consumed + n1 + n2, nil

	case OpMemoryFill:
		memIdx, n1, err := readUnsignedLEB128(data, consumed)
		if err != nil {
			return Instruction{}, 0, err
		}
		return Instruction{Op: op, Idx: memIdx}, consumed + n1, nil
	}

	return Instruction{}, 0, wrterr.NewDecodeError(wrterr.DecodeUnknownOpcode, "unknown extended opcode")
}

// parseBlockType decodes a block type per spec.md §4.F's byte table: 0x40
// for empty, a value-type byte for a single-result block, or otherwise a
// signed LEB128 type index.
func parseBlockType(data []byte) (BlockType, int, error) {
	if len(data) == 0 {
		return BlockType{}, 0, wrterr.NewDecodeError(wrterr.DecodeTruncatedInput, "truncated block type")
	}
	switch data[0] {
	case 0x40:
		return BlockType{Kind: BlockEmpty}, 1, nil
	case 0x7F, 0x7E, 0x7D, 0x7C, 0x7B, 0x70, 0x6F:
		return BlockType{Kind: BlockValue, ValueType: data[0]}, 1, nil
	default:
		idx, n, err := readSignedLEB128(data, 0)
		if err != nil {
			return BlockType{}, 0, err
		}
		return BlockType{Kind: BlockTypeIndex, TypeIndex: idx}, n, nil
	}
}

// EncodeInstructions encodes a sequence of top-level instructions,
// appending a trailing END as ParseInstructions expects to consume one.
func EncodeInstructions(instrs []Instruction) []byte {
	var out []byte
	for _, instr := range instrs {
		out = EncodeInstruction(out, instr)
	}
	out = append(out, byte(OpEnd))
	return out
}

// EncodeInstruction appends the binary encoding of instr to out and
// returns the extended slice. This is the exact inverse of ParseInstruction:
// parse(encode(i)) reproduces i and consumes len(encode(i)) bytes.
func EncodeInstruction(out []byte, instr Instruction) []byte {
	switch instr.Op {
	case OpBlock, OpLoop:
		out = append(out, byte(instr.Op))
		out = encodeBlockType(out, instr.BlockType)
		for _, sub := range instr.Then {
			out = EncodeInstruction(out, sub)
		}
		return append(out, byte(OpEnd))

	case OpIf:
		out = append(out, byte(OpIf))
		out = encodeBlockType(out, instr.BlockType)
		for _, sub := range instr.Then {
			out = EncodeInstruction(out, sub)
		}
		if instr.Else != nil {
			out = append(out, byte(OpElse))
			for _, sub := range instr.Else {
				out = EncodeInstruction(out, sub)
			}
		}
		return append(out, byte(OpEnd))

	case OpBr, OpBrIf, OpCall, OpLocalGet, OpLocalSet, OpLocalTee, OpGlobalGet, OpGlobalSet:
		out = append(out, byte(instr.Op))
		return writeUnsignedLEB128(out, instr.Idx)

	case OpBrTable:
		out = append(out, byte(OpBrTable))
		out = writeUnsignedLEB128(out, uint32(len(instr.BrTable)))
		for _, label := range instr.BrTable {
			out = writeUnsignedLEB128(out, label)
		}
		return writeUnsignedLEB128(out, instr.BrDefault)

	case OpCallIndirect:
		out = append(out, byte(OpCallIndirect))
		out = writeUnsignedLEB128(out, instr.Idx)
		return append(out, byte(instr.Idx2))

	case OpI32Const:
		out = append(out, byte(OpI32Const))
		return writeSignedLEB128(out, instr.I32Val)

	case OpI64Const:
		out = append(out, byte(OpI64Const))
		return writeSignedLEB128_64(out, instr.I64Val)

	case OpF32Const:
		out = append(out, byte(OpF32Const))
		var buf [4]byte
		binary.LittleEndian.PutUint32(buf[:], math.Float32bits(instr.F32Val))
		return append(out, buf[:]...)

	case OpF64Const:
		out = append(out, byte(OpF64Const))
		var buf [8]byte
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(instr.F64Val))
		return append(out, buf[:]...)

	case OpMemoryCopy:
		out = append(out, extendedOpcodeByte)
		out = writeUnsignedLEB128(out, uint32(instr.Op)&0xFF)
		out = writeUnsignedLEB128(out, instr.Idx)
		return writeUnsignedLEB128(out, instr.Idx2)

	case OpMemoryFill:
		out = append(out, extendedOpcodeByte)
		out = writeUnsignedLEB128(out, uint32(instr.Op)&0xFF)
		return writeUnsignedLEB128(out, instr.Idx)
	}

	if loadStoreOpcodes[instr.Op] {
		out = append(out, byte(instr.Op))
		out = writeUnsignedLEB128(out, instr.Mem.AlignLog2)
		return writeUnsignedLEB128(out, instr.Mem.Offset)
	}

	if instr.Op&extendedPrefix == extendedPrefix {
		out = append(out, extendedOpcodeByte)
		return writeUnsignedLEB128(out, uint32(instr.Op)&0xFF)
	}

	// Every remaining opcode (noImmediateOpcodes, plus Unreachable/Nop/
	// Return/Drop/Select/MemorySize/MemoryGrow) is a bare single byte.
	return append(out, byte(instr.Op))
}

func encodeBlockType(out []byte, bt BlockType) []byte {
	switch bt.Kind {
	case BlockEmpty:
		return append(out, 0x40)
	case BlockValue:
		return append(out, bt.ValueType)
	default:
		return writeSignedLEB128(out, bt.TypeIndex)
	}
}
