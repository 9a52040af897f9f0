package codec

import (
	"github.com/pulseengine/wrt/wrterr"
)

// LEB128 reader/writer pairs, grounded on
// wippyai-wasm-runtime/wasm/leb128.go's ReadLEB128u/ReadLEB128s family —
// adapted here to operate on a byte slice at an offset and report bytes
// consumed directly, matching the (value, bytesConsumed, error) contract
// ParseInstruction needs rather than wippyai's io.ByteReader interface.

// readUnsignedLEB128 reads an unsigned LEB128-encoded uint32 from data
// starting at offset, returning the decoded value and the number of bytes
// consumed.
func readUnsignedLEB128(data []byte, offset int) (uint32, int, error) {
	var result uint32
	var shift uint
	pos := offset
	for {
		if pos >= len(data) {
			return 0, 0, wrterr.NewDecodeError(wrterr.DecodeTruncatedInput, "truncated unsigned LEB128")
		}
		b := data[pos]
		pos++
		result |= uint32(b&0x7f) << shift
		if b&0x80 == 0 {
			return result, pos - offset, nil
		}
		shift += 7
		if shift >= 35 {
			return 0, 0, wrterr.NewDecodeError(wrterr.DecodeMalformedLEB128, "unsigned LEB128 exceeds 32 bits")
		}
	}
}

// readSignedLEB128 reads a signed LEB128-encoded int32.
func readSignedLEB128(data []byte, offset int) (int32, int, error) {
	var result int32
	var shift uint
	var b byte
	pos := offset
	for {
		if pos >= len(data) {
			return 0, 0, wrterr.NewDecodeError(wrterr.DecodeTruncatedInput, "truncated signed LEB128")
		}
		b = data[pos]
		pos++
		result |= int32(b&0x7f) << shift
		shift += 7
		if b&0x80 == 0 {
			break
		}
		if shift >= 35 {
			return 0, 0, wrterr.NewDecodeError(wrterr.DecodeMalformedLEB128, "signed LEB128 exceeds 32 bits")
		}
	}
	if shift < 32 && b&0x40 != 0 {
		result |= ^int32(0) << shift
	}
	return result, pos - offset, nil
}

// readSignedLEB128_64 is the 64-bit counterpart of readSignedLEB128.
func readSignedLEB128_64(data []byte, offset int) (int64, int, error) {
	var result int64
	var shift uint
	var b byte
	pos := offset
	for {
		if pos >= len(data) {
			return 0, 0, wrterr.NewDecodeError(wrterr.DecodeTruncatedInput, "truncated signed LEB128")
		}
		b = data[pos]
		pos++
		result |= int64(b&0x7f) << shift
		shift += 7
		if b&0x80 == 0 {
			break
		}
		if shift >= 70 {
			return 0, 0, wrterr.NewDecodeError(wrterr.DecodeMalformedLEB128, "signed LEB128 exceeds 64 bits")
		}
	}
	if shift < 64 && b&0x40 != 0 {
		result |= ^int64(0) << shift
	}
	return result, pos - offset, nil
}

// writeUnsignedLEB128 appends the unsigned LEB128 encoding of v to out.
func writeUnsignedLEB128(out []byte, v uint32) []byte {
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			b |= 0x80
		}
		out = append(out, b)
		if v == 0 {
			return out
		}
	}
}

// writeSignedLEB128 appends the signed LEB128 encoding of v to out.
func writeSignedLEB128(out []byte, v int32) []byte {
	more := true
	for more {
		b := byte(v & 0x7f)
		v >>= 7
		if (v == 0 && b&0x40 == 0) || (v == -1 && b&0x40 != 0) {
			more = false
		} else {
			b |= 0x80
		}
		out = append(out, b)
	}
	return out
}

// writeSignedLEB128_64 is the 64-bit counterpart of writeSignedLEB128.
func writeSignedLEB128_64(out []byte, v int64) []byte {
	more := true
	for more {
		b := byte(v & 0x7f)
		v >>= 7
		if (v == 0 && b&0x40 == 0) || (v == -1 && b&0x40 != 0) {
			more = false
		} else {
			b |= 0x80
		}
		out = append(out, b)
	}
	return out
}
