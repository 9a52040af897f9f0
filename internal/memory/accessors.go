package memory

import (
	"encoding/binary"
	"math"
)

// ReadI8 reads a signed byte at addr.
func (m *Memory) ReadI8(addr uint32) (int8, error) {
	b, err := m.GetByte(addr)
	return int8(b), err
}

// ReadU8 reads an unsigned byte at addr.
func (m *Memory) ReadU8(addr uint32) (uint8, error) {
	return m.GetByte(addr)
}

// WriteI8 writes a signed byte at addr.
func (m *Memory) WriteI8(addr uint32, value int8) error {
	return m.SetByte(addr, byte(value))
}

// WriteU8 writes an unsigned byte at addr.
func (m *Memory) WriteU8(addr uint32, value uint8) error {
	return m.SetByte(addr, value)
}

// ReadI16 reads a little-endian signed 16-bit value.
func (m *Memory) ReadI16(addr uint32) (int16, error) {
	v, err := m.ReadU16(addr)
	return int16(v), err
}

// ReadU16 reads a little-endian unsigned 16-bit value.
func (m *Memory) ReadU16(addr uint32) (uint16, error) {
	var buf [2]byte
	if err := m.Read(addr, buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(buf[:]), nil
}

// WriteI16 writes a little-endian signed 16-bit value.
func (m *Memory) WriteI16(addr uint32, value int16) error {
	return m.WriteU16(addr, uint16(value))
}

// WriteU16 writes a little-endian unsigned 16-bit value.
func (m *Memory) WriteU16(addr uint32, value uint16) error {
	var buf [2]byte
	binary.LittleEndian.PutUint16(buf[:], value)
	return m.Write(addr, buf[:])
}

// ReadI32 reads a little-endian signed 32-bit value.
func (m *Memory) ReadI32(addr uint32) (int32, error) {
	v, err := m.ReadU32(addr)
	return int32(v), err
}

// ReadU32 reads a little-endian unsigned 32-bit value.
func (m *Memory) ReadU32(addr uint32) (uint32, error) {
	var buf [4]byte
	if err := m.Read(addr, buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(buf[:]), nil
}

// WriteI32 writes a little-endian signed 32-bit value.
func (m *Memory) WriteI32(addr uint32, value int32) error {
	return m.WriteU32(addr, uint32(value))
}

// WriteU32 writes a little-endian unsigned 32-bit value.
func (m *Memory) WriteU32(addr uint32, value uint32) error {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], value)
	return m.Write(addr, buf[:])
}

// ReadI64 reads a little-endian signed 64-bit value.
func (m *Memory) ReadI64(addr uint32) (int64, error) {
	v, err := m.ReadU64(addr)
	return int64(v), err
}

// ReadU64 reads a little-endian unsigned 64-bit value.
func (m *Memory) ReadU64(addr uint32) (uint64, error) {
	var buf [8]byte
	if err := m.Read(addr, buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(buf[:]), nil
}

// WriteI64 writes a little-endian signed 64-bit value.
func (m *Memory) WriteI64(addr uint32, value int64) error {
	return m.WriteU64(addr, uint64(value))
}

// WriteU64 writes a little-endian unsigned 64-bit value.
func (m *Memory) WriteU64(addr uint32, value uint64) error {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], value)
	return m.Write(addr, buf[:])
}

// ReadF32 reads a little-endian IEEE-754 single-precision float.
func (m *Memory) ReadF32(addr uint32) (float32, error) {
	bits, err := m.ReadU32(addr)
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(bits), nil
}

// WriteF32 writes a little-endian IEEE-754 single-precision float.
func (m *Memory) WriteF32(addr uint32, value float32) error {
	return m.WriteU32(addr, math.Float32bits(value))
}

// ReadF64 reads a little-endian IEEE-754 double-precision float.
func (m *Memory) ReadF64(addr uint32) (float64, error) {
	bits, err := m.ReadU64(addr)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(bits), nil
}

// WriteF64 writes a little-endian IEEE-754 double-precision float.
func (m *Memory) WriteF64(addr uint32, value float64) error {
	return m.WriteU64(addr, math.Float64bits(value))
}

// ReadV128 reads a 128-bit SIMD lane value.
func (m *Memory) ReadV128(addr uint32) ([16]byte, error) {
	var buf [16]byte
	if err := m.Read(addr, buf[:]); err != nil {
		return buf, err
	}
	return buf, nil
}

// WriteV128 writes a 128-bit SIMD lane value.
func (m *Memory) WriteV128(addr uint32, value [16]byte) error {
	return m.Write(addr, value[:])
}
