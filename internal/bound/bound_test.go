package bound

import "encoding/binary"

// byteInt is a minimal Byteser used across the collection tests.
type byteInt uint32

func (b byteInt) Bytes() []byte {
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, uint32(b))
	return buf
}

func byteIntEq(a, b byteInt) bool { return a == b }
