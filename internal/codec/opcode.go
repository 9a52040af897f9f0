package codec

// Opcode is a WebAssembly instruction opcode. Single-byte opcodes equal
// their wire byte value directly; the bulk-memory and saturating-
// conversion instructions are prefixed by 0xFC on the wire, so their
// Opcode values are synthesized as 0xFC00|subopcode to keep every opcode
// distinguishable by value alone. Grounded on the W3C WebAssembly core
// spec's fixed opcode table, referenced directly by spec.md §4.F ("consult
// the spec for byte values not listed in text above").
type Opcode uint16

const extendedPrefix = 0xFC00

const (
	OpUnreachable  Opcode = 0x00
	OpNop          Opcode = 0x01
	OpBlock        Opcode = 0x02
	OpLoop         Opcode = 0x03
	OpIf           Opcode = 0x04
	OpElse         Opcode = 0x05
	OpEnd          Opcode = 0x0B
	OpBr           Opcode = 0x0C
	OpBrIf         Opcode = 0x0D
	OpBrTable      Opcode = 0x0E
	OpReturn       Opcode = 0x0F
	OpCall         Opcode = 0x10
	OpCallIndirect Opcode = 0x11

	OpDrop   Opcode = 0x1A
	OpSelect Opcode = 0x1B

	OpLocalGet  Opcode = 0x20
	OpLocalSet  Opcode = 0x21
	OpLocalTee  Opcode = 0x22
	OpGlobalGet Opcode = 0x23
	OpGlobalSet Opcode = 0x24

	OpI32Load    Opcode = 0x28
	OpI64Load    Opcode = 0x29
	OpF32Load    Opcode = 0x2A
	OpF64Load    Opcode = 0x2B
	OpI32Load8S  Opcode = 0x2C
	OpI32Load8U  Opcode = 0x2D
	OpI32Load16S Opcode = 0x2E
	OpI32Load16U Opcode = 0x2F
	OpI64Load8S  Opcode = 0x30
	OpI64Load8U  Opcode = 0x31
	OpI64Load16S Opcode = 0x32
	OpI64Load16U Opcode = 0x33
	OpI64Load32S Opcode = 0x34
	OpI64Load32U Opcode = 0x35
	OpI32Store   Opcode = 0x36
	OpI64Store   Opcode = 0x37
	OpF32Store   Opcode = 0x38
	OpF64Store   Opcode = 0x39
	OpI32Store8  Opcode = 0x3A
	OpI32Store16 Opcode = 0x3B
	OpI64Store8  Opcode = 0x3C
	OpI64Store16 Opcode = 0x3D
	OpI64Store32 Opcode = 0x3E
	OpMemorySize Opcode = 0x3F
	OpMemoryGrow Opcode = 0x40

	OpI32Const Opcode = 0x41
	OpI64Const Opcode = 0x42
	OpF32Const Opcode = 0x43
	OpF64Const Opcode = 0x44

	OpI32Eqz Opcode = 0x45
	OpI32Eq  Opcode = 0x46
	OpI32Ne  Opcode = 0x47
	OpI32LtS Opcode = 0x48
	OpI32LtU Opcode = 0x49
	OpI32GtS Opcode = 0x4A
	OpI32GtU Opcode = 0x4B
	OpI32LeS Opcode = 0x4C
	OpI32LeU Opcode = 0x4D
	OpI32GeS Opcode = 0x4E
	OpI32GeU Opcode = 0x4F

	OpI64Eqz Opcode = 0x50
	OpI64Eq  Opcode = 0x51
	OpI64Ne  Opcode = 0x52
	OpI64LtS Opcode = 0x53
	OpI64LtU Opcode = 0x54
	OpI64GtS Opcode = 0x55
	OpI64GtU Opcode = 0x56
	OpI64LeS Opcode = 0x57
	OpI64LeU Opcode = 0x58
	OpI64GeS Opcode = 0x59
	OpI64GeU Opcode = 0x5A

	OpF32Eq Opcode = 0x5B
	OpF32Ne Opcode = 0x5C
	OpF32Lt Opcode = 0x5D
	OpF32Gt Opcode = 0x5E
	OpF32Le Opcode = 0x5F
	OpF32Ge Opcode = 0x60

	OpF64Eq Opcode = 0x61
	OpF64Ne Opcode = 0x62
	OpF64Lt Opcode = 0x63
	OpF64Gt Opcode = 0x64
	OpF64Le Opcode = 0x65
	OpF64Ge Opcode = 0x66

	OpI32Clz    Opcode = 0x67
	OpI32Ctz    Opcode = 0x68
	OpI32Popcnt Opcode = 0x69
	OpI32Add    Opcode = 0x6A
	OpI32Sub    Opcode = 0x6B
	OpI32Mul    Opcode = 0x6C
	OpI32DivS   Opcode = 0x6D
	OpI32DivU   Opcode = 0x6E
	OpI32RemS   Opcode = 0x6F
	OpI32RemU   Opcode = 0x70
	OpI32And    Opcode = 0x71
	OpI32Or     Opcode = 0x72
	OpI32Xor    Opcode = 0x73
	OpI32Shl    Opcode = 0x74
	OpI32ShrS   Opcode = 0x75
	OpI32ShrU   Opcode = 0x76
	OpI32Rotl   Opcode = 0x77
	OpI32Rotr   Opcode = 0x78

	OpI64Clz    Opcode = 0x79
	OpI64Ctz    Opcode = 0x7A
	OpI64Popcnt Opcode = 0x7B
	OpI64Add    Opcode = 0x7C
	OpI64Sub    Opcode = 0x7D
	OpI64Mul    Opcode = 0x7E
	OpI64DivS   Opcode = 0x7F
	OpI64DivU   Opcode = 0x80
	OpI64RemS   Opcode = 0x81
	OpI64RemU   Opcode = 0x82
	OpI64And    Opcode = 0x83
	OpI64Or     Opcode = 0x84
	OpI64Xor    Opcode = 0x85
	OpI64Shl    Opcode = 0x86
	OpI64ShrS   Opcode = 0x87
	OpI64ShrU   Opcode = 0x88
	OpI64Rotl   Opcode = 0x89
	OpI64Rotr   Opcode = 0x8A

	OpF32Abs      Opcode = 0x8B
	OpF32Neg      Opcode = 0x8C
	OpF32Ceil     Opcode = 0x8D
	OpF32Floor    Opcode = 0x8E
	OpF32Trunc    Opcode = 0x8F
	OpF32Nearest  Opcode = 0x90
	OpF32Sqrt     Opcode = 0x91
	OpF32Add      Opcode = 0x92
	OpF32Sub      Opcode = 0x93
	OpF32Mul      Opcode = 0x94
	OpF32Div      Opcode = 0x95
	OpF32Min      Opcode = 0x96
	OpF32Max      Opcode = 0x97
	OpF32Copysign Opcode = 0x98

	OpF64Abs      Opcode = 0x99
	OpF64Neg      Opcode = 0x9A
	OpF64Ceil     Opcode = 0x9B
	OpF64Floor    Opcode = 0x9C
	OpF64Trunc    Opcode = 0x9D
	OpF64Nearest  Opcode = 0x9E
	OpF64Sqrt     Opcode = 0x9F
	OpF64Add      Opcode = 0xA0
	OpF64Sub      Opcode = 0xA1
	OpF64Mul      Opcode = 0xA2
	OpF64Div      Opcode = 0xA3
	OpF64Min      Opcode = 0xA4
	OpF64Max      Opcode = 0xA5
	OpF64Copysign Opcode = 0xA6

	OpI32WrapI64        Opcode = 0xA7
	OpI32TruncF32S      Opcode = 0xA8
	OpI32TruncF32U      Opcode = 0xA9
	OpI32TruncF64S      Opcode = 0xAA
	OpI32TruncF64U      Opcode = 0xAB
	OpI64ExtendI32S     Opcode = 0xAC
	OpI64ExtendI32U     Opcode = 0xAD
	OpI64TruncF32S      Opcode = 0xAE
	OpI64TruncF32U      Opcode = 0xAF
	OpI64TruncF64S      Opcode = 0xB0
	OpI64TruncF64U      Opcode = 0xB1
	OpF32ConvertI32S    Opcode = 0xB2
	OpF32ConvertI32U    Opcode = 0xB3
	OpF32ConvertI64S    Opcode = 0xB4
	OpF32ConvertI64U    Opcode = 0xB5
	OpF32DemoteF64      Opcode = 0xB6
	OpF64ConvertI32S    Opcode = 0xB7
	OpF64ConvertI32U    Opcode = 0xB8
	OpF64ConvertI64S    Opcode = 0xB9
	OpF64ConvertI64U    Opcode = 0xBA
	OpF64PromoteF32     Opcode = 0xBB
	OpI32ReinterpretF32 Opcode = 0xBC
	OpI64ReinterpretF64 Opcode = 0xBD
	OpF32ReinterpretI32 Opcode = 0xBE
	OpF64ReinterpretI64 Opcode = 0xBF

	OpI32Extend8S  Opcode = 0xC0
	OpI32Extend16S Opcode = 0xC1
	OpI64Extend8S  Opcode = 0xC2
	OpI64Extend16S Opcode = 0xC3
	OpI64Extend32S Opcode = 0xC4

	// Extended (0xFC-prefixed) opcodes.
	OpI32TruncSatF32S Opcode = extendedPrefix | 0x00
	OpI32TruncSatF32U Opcode = extendedPrefix | 0x01
	OpI32TruncSatF64S Opcode = extendedPrefix | 0x02
	OpI32TruncSatF64U Opcode = extendedPrefix | 0x03
	OpI64TruncSatF32S Opcode = extendedPrefix | 0x04
	OpI64TruncSatF32U Opcode = extendedPrefix | 0x05
	OpI64TruncSatF64S Opcode = extendedPrefix | 0x06
	OpI64TruncSatF64U Opcode = extendedPrefix | 0x07
	OpMemoryCopy      Opcode = extendedPrefix | 0x0A
	OpMemoryFill      Opcode = extendedPrefix | 0x0B
)

const extendedOpcodeByte byte = 0xFC

// loadStoreOpcodes collects every load/store Opcode, used to decide
// whether to decode a MemArg after the opcode byte.
var loadStoreOpcodes = map[Opcode]bool{
	OpI32Load: true, OpI64Load: true, OpF32Load: true, OpF64Load: true,
	OpI32Load8S: true, OpI32Load8U: true, OpI32Load16S: true, OpI32Load16U: true,
	OpI64Load8S: true, OpI64Load8U: true, OpI64Load16S: true, OpI64Load16U: true,
	OpI64Load32S: true, OpI64Load32U: true,
	OpI32Store: true, OpI64Store: true, OpF32Store: true, OpF64Store: true,
	OpI32Store8: true, OpI32Store16: true, OpI64Store8: true, OpI64Store16: true,
	OpI64Store32: true,
}

// noImmediateOpcodes collects every opcode with no trailing immediate
// bytes at all: it's a bare single-byte instruction.
var noImmediateOpcodes = map[Opcode]bool{
	OpUnreachable: true, OpNop: true, OpReturn: true, OpDrop: true, OpSelect: true,
	OpMemorySize: true, OpMemoryGrow: true,
	OpI32Eqz: true, OpI32Eq: true, OpI32Ne: true, OpI32LtS: true, OpI32LtU: true,
	OpI32GtS: true, OpI32GtU: true, OpI32LeS: true, OpI32LeU: true, OpI32GeS: true, OpI32GeU: true,
	OpI64Eqz: true, OpI64Eq: true, OpI64Ne: true, OpI64LtS: true, OpI64LtU: true,
	OpI64GtS: true, OpI64GtU: true, OpI64LeS: true, OpI64LeU: true, OpI64GeS: true, OpI64GeU: true,
	OpF32Eq: true, OpF32Ne: true, OpF32Lt: true, OpF32Gt: true, OpF32Le: true, OpF32Ge: true,
	OpF64Eq: true, OpF64Ne: true, OpF64Lt: true, OpF64Gt: true, OpF64Le: true, OpF64Ge: true,
	OpI32Clz: true, OpI32Ctz: true, OpI32Popcnt: true, OpI32Add: true, OpI32Sub: true, OpI32Mul: true,
	OpI32DivS: true, OpI32DivU: true, OpI32RemS: true, OpI32RemU: true,
	OpI32And: true, OpI32Or: true, OpI32Xor: true, OpI32Shl: true, OpI32ShrS: true, OpI32ShrU: true,
	OpI32Rotl: true, OpI32Rotr: true,
	OpI64Clz: true, OpI64Ctz: true, OpI64Popcnt: true, OpI64Add: true, OpI64Sub: true, OpI64Mul: true,
	OpI64DivS: true, OpI64DivU: true, OpI64RemS: true, OpI64RemU: true,
	OpI64And: true, OpI64Or: true, OpI64Xor: true, OpI64Shl: true, OpI64ShrS: true, OpI64ShrU: true,
	OpI64Rotl: true, OpI64Rotr: true,
	OpF32Abs: true, OpF32Neg: true, OpF32Ceil: true, OpF32Floor: true, OpF32Trunc: true,
	OpF32Nearest: true, OpF32Sqrt: true, OpF32Add: true, OpF32Sub: true, OpF32Mul: true, OpF32Div: true,
	OpF32Min: true, OpF32Max: true, OpF32Copysign: true,
	OpF64Abs: true, OpF64Neg: true, OpF64Ceil: true, OpF64Floor: true, OpF64Trunc: true,
	OpF64Nearest: true, OpF64Sqrt: true, OpF64Add: true, OpF64Sub: true, OpF64Mul: true, OpF64Div: true,
	OpF64Min: true, OpF64Max: true, OpF64Copysign: true,
	OpI32WrapI64: true, OpI32TruncF32S: true, OpI32TruncF32U: true, OpI32TruncF64S: true, OpI32TruncF64U: true,
	OpI64ExtendI32S: true, OpI64ExtendI32U: true, OpI64TruncF32S: true, OpI64TruncF32U: true,
	OpI64TruncF64S: true, OpI64TruncF64U: true,
	OpF32ConvertI32S: true, OpF32ConvertI32U: true, OpF32ConvertI64S: true, OpF32ConvertI64U: true,
	OpF32DemoteF64: true,
	OpF64ConvertI32S: true, OpF64ConvertI32U: true, OpF64ConvertI64S: true, OpF64ConvertI64U: true,
	OpF64PromoteF32: true,
	OpI32ReinterpretF32: true, OpI64ReinterpretF64: true, OpF32ReinterpretI32: true, OpF64ReinterpretI64: true,
	OpI32Extend8S: true, OpI32Extend16S: true, OpI64Extend8S: true, OpI64Extend16S: true, OpI64Extend32S: true,
	OpI32TruncSatF32S: true, OpI32TruncSatF32U: true, OpI32TruncSatF64S: true, OpI32TruncSatF64U: true,
	OpI64TruncSatF32S: true, OpI64TruncSatF32U: true, OpI64TruncSatF64S: true, OpI64TruncSatF64U: true,
}
