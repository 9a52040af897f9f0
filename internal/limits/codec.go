package limits

import (
	"encoding/binary"

	"github.com/pulseengine/wrt/internal/bound"
	"github.com/pulseengine/wrt/internal/verify"
	"github.com/pulseengine/wrt/wrterr"
)

// Encode serializes the section to the custom-section binary format:
// version, then each scalar limit as a presence byte plus value, then the
// resource-type-limits count followed by (name, limit) pairs in
// sorted-by-name order, then the optional qualification hash and ASIL
// level string. Encoding fails if the result would exceed MaxEncodedSize.
func (s *Section) Encode() ([]byte, error) {
	if err := s.validateBounds(); err != nil {
		return nil, err
	}
	out := make([]byte, 4)
	binary.LittleEndian.PutUint32(out, s.Version)

	out = appendOptionalU64(out, s.MaxFuelPerStep)
	out = appendOptionalU64(out, s.MaxMemoryUsage)
	out = appendOptionalU32(out, s.MaxCallDepth)
	out = appendOptionalU32(out, s.MaxInstructionsPerStep)
	out = appendOptionalU32(out, s.MaxExecutionSliceMS)

	if s.ResourceTypeLimits.Len() > MaxResourceTypes {
		return nil, wrterr.NewDecodeError(wrterr.DecodeCapacityExceeded, "resource type limits exceed capacity")
	}
	countBuf := make([]byte, 4)
	binary.LittleEndian.PutUint32(countBuf, uint32(s.ResourceTypeLimits.Len()))
	out = append(out, countBuf...)
	for _, e := range s.ResourceTypeLimits.Iter() {
		var err error
		out, err = encodeString(out, string(e.Key))
		if err != nil {
			return nil, err
		}
		out, err = encodeResourceTypeLimit(out, e.Value)
		if err != nil {
			return nil, err
		}
	}

	if s.QualificationHash != nil {
		out = append(out, 1)
		out = append(out, s.QualificationHash[:]...)
	} else {
		out = append(out, 0)
	}

	if s.QualifiedASILLevel != nil {
		out = append(out, 1)
		var err error
		out, err = encodeString(out, *s.QualifiedASILLevel)
		if err != nil {
			return nil, err
		}
	} else {
		out = append(out, 0)
	}

	if len(out) > MaxEncodedSize {
		return nil, wrterr.NewDecodeError(wrterr.DecodeCapacityExceeded, "encoded resource limits section too large")
	}
	return out, nil
}

func encodeString(out []byte, s string) ([]byte, error) {
	if len(s) > MaxResourceNameLen {
		return out, wrterr.NewDecodeError(wrterr.DecodeStringTooLong, "string exceeds ASIL length bounds: "+s)
	}
	lenBuf := make([]byte, 4)
	binary.LittleEndian.PutUint32(lenBuf, uint32(len(s)))
	out = append(out, lenBuf...)
	out = append(out, s...)
	return out, nil
}

func encodeResourceTypeLimit(out []byte, limit *ResourceTypeLimit) ([]byte, error) {
	out = appendOptionalU32(out, limit.MaxHandles)
	out = appendOptionalU64(out, limit.MaxMemory)
	out = appendOptionalU32(out, limit.MaxOperationsPerSecond)

	if limit.CustomLimits.Len() > MaxCustomLimitsPerType {
		return out, wrterr.NewDecodeError(wrterr.DecodeCapacityExceeded, "custom limits exceed capacity")
	}
	countBuf := make([]byte, 4)
	binary.LittleEndian.PutUint32(countBuf, uint32(limit.CustomLimits.Len()))
	out = append(out, countBuf...)
	for _, e := range limit.CustomLimits.Iter() {
		var err error
		out, err = encodeString(out, string(e.Key))
		if err != nil {
			return out, err
		}
		valBuf := make([]byte, 8)
		binary.LittleEndian.PutUint64(valBuf, uint64(e.Value))
		out = append(out, valBuf...)
	}
	return out, nil
}

// Decode parses the custom-section binary format produced by Encode. It
// rejects any input whose declared version exceeds Version, any count
// field that would exceed this package's capacity limits, and any buffer
// truncated mid-field.
func Decode(data []byte) (*Section, error) {
	if len(data) > MaxEncodedSize {
		return nil, wrterr.NewDecodeError(wrterr.DecodeCapacityExceeded, "resource limits data exceeds max encoded size")
	}
	if len(data) < 4 {
		return nil, wrterr.NewDecodeError(wrterr.DecodeTruncatedInput, "resource limits data too short")
	}

	offset := 0
	version := binary.LittleEndian.Uint32(data[offset : offset+4])
	offset += 4
	if version > Version {
		return nil, wrterr.NewDecodeError(wrterr.DecodeVersionUnsupported, "unsupported resource limits version")
	}

	maxFuelPerStep, offset, err := decodeOptionalU64(data, offset)
	if err != nil {
		return nil, err
	}
	maxMemoryUsage, offset, err := decodeOptionalU64(data, offset)
	if err != nil {
		return nil, err
	}
	maxCallDepth, offset, err := decodeOptionalU32(data, offset)
	if err != nil {
		return nil, err
	}
	maxInstructionsPerStep, offset, err := decodeOptionalU32(data, offset)
	if err != nil {
		return nil, err
	}
	maxExecutionSliceMS, offset, err := decodeOptionalU32(data, offset)
	if err != nil {
		return nil, err
	}

	if offset+4 > len(data) {
		return nil, wrterr.NewDecodeError(wrterr.DecodeTruncatedInput, "resource limits data truncated reading count")
	}
	resourceCount := int(binary.LittleEndian.Uint32(data[offset : offset+4]))
	offset += 4
	if resourceCount > MaxResourceTypes {
		return nil, wrterr.NewDecodeError(wrterr.DecodeCapacityExceeded, "resource type count exceeds capacity")
	}

	resourceTypeLimits := newResourceTypeLimitsMap()
	for i := 0; i < resourceCount; i++ {
		var name string
		name, offset, err = decodeString(data, offset)
		if err != nil {
			return nil, err
		}
		var limit *ResourceTypeLimit
		limit, offset, err = decodeResourceTypeLimit(data, offset)
		if err != nil {
			return nil, err
		}
		if _, _, err = resourceTypeLimits.Insert(stringKey(name), limit); err != nil {
			return nil, err
		}
	}

	if offset >= len(data) {
		return nil, wrterr.NewDecodeError(wrterr.DecodeTruncatedInput, "resource limits data truncated reading qualification presence")
	}
	var qualificationHash *[32]byte
	if data[offset] == 1 {
		offset++
		if offset+32 > len(data) {
			return nil, wrterr.NewDecodeError(wrterr.DecodeTruncatedInput, "qualification hash truncated")
		}
		var hash [32]byte
		copy(hash[:], data[offset:offset+32])
		offset += 32
		qualificationHash = &hash
	} else {
		offset++
	}

	var qualifiedASILLevel *string
	if offset < len(data) && data[offset] == 1 {
		offset++
		var level string
		level, _, err = decodeString(data, offset)
		if err != nil {
			return nil, err
		}
		qualifiedASILLevel = &level
	}

	section := &Section{
		Version:                version,
		MaxFuelPerStep:         maxFuelPerStep,
		MaxMemoryUsage:         maxMemoryUsage,
		MaxCallDepth:           maxCallDepth,
		MaxInstructionsPerStep: maxInstructionsPerStep,
		MaxExecutionSliceMS:    maxExecutionSliceMS,
		ResourceTypeLimits:     resourceTypeLimits,
		QualificationHash:      qualificationHash,
		QualifiedASILLevel:     qualifiedASILLevel,
	}
	if err := section.validateBounds(); err != nil {
		return nil, err
	}
	return section, nil
}

func newResourceTypeLimitsMap() *bound.Map[stringKey, *ResourceTypeLimit] {
	return bound.NewMap[stringKey, *ResourceTypeLimit](MaxResourceTypes, verify.Standard, stringKeyEq)
}

func decodeOptionalU64(data []byte, offset int) (*uint64, int, error) {
	if offset >= len(data) {
		return nil, offset, wrterr.NewDecodeError(wrterr.DecodeTruncatedInput, "truncated reading optional u64 presence")
	}
	if data[offset] != 1 {
		return nil, offset + 1, nil
	}
	if offset+9 > len(data) {
		return nil, offset, wrterr.NewDecodeError(wrterr.DecodeTruncatedInput, "truncated reading u64 value")
	}
	v := binary.LittleEndian.Uint64(data[offset+1 : offset+9])
	return &v, offset + 9, nil
}

func decodeOptionalU32(data []byte, offset int) (*uint32, int, error) {
	if offset >= len(data) {
		return nil, offset, wrterr.NewDecodeError(wrterr.DecodeTruncatedInput, "truncated reading optional u32 presence")
	}
	if data[offset] != 1 {
		return nil, offset + 1, nil
	}
	if offset+5 > len(data) {
		return nil, offset, wrterr.NewDecodeError(wrterr.DecodeTruncatedInput, "truncated reading u32 value")
	}
	v := binary.LittleEndian.Uint32(data[offset+1 : offset+5])
	return &v, offset + 5, nil
}

func decodeString(data []byte, offset int) (string, int, error) {
	if offset+4 > len(data) {
		return "", offset, wrterr.NewDecodeError(wrterr.DecodeTruncatedInput, "truncated reading string length")
	}
	length := int(binary.LittleEndian.Uint32(data[offset : offset+4]))
	if length > MaxResourceNameLen {
		return "", offset, wrterr.NewDecodeError(wrterr.DecodeStringTooLong, "string exceeds ASIL length bounds")
	}
	start := offset + 4
	if start+length > len(data) {
		return "", offset, wrterr.NewDecodeError(wrterr.DecodeTruncatedInput, "truncated reading string data")
	}
	return string(data[start : start+length]), start + length, nil
}

func decodeResourceTypeLimit(data []byte, offset int) (*ResourceTypeLimit, int, error) {
	maxHandles, offset, err := decodeOptionalU32(data, offset)
	if err != nil {
		return nil, offset, err
	}
	maxMemory, offset, err := decodeOptionalU64(data, offset)
	if err != nil {
		return nil, offset, err
	}
	maxOps, offset, err := decodeOptionalU32(data, offset)
	if err != nil {
		return nil, offset, err
	}

	if offset+4 > len(data) {
		return nil, offset, wrterr.NewDecodeError(wrterr.DecodeTruncatedInput, "truncated reading custom limits count")
	}
	customCount := int(binary.LittleEndian.Uint32(data[offset : offset+4]))
	offset += 4
	if customCount > MaxCustomLimitsPerType {
		return nil, offset, wrterr.NewDecodeError(wrterr.DecodeCapacityExceeded, "custom limit count exceeds capacity")
	}

	limit := NewResourceTypeLimit()
	limit.MaxHandles = maxHandles
	limit.MaxMemory = maxMemory
	limit.MaxOperationsPerSecond = maxOps

	for i := 0; i < customCount; i++ {
		var name string
		name, offset, err = decodeString(data, offset)
		if err != nil {
			return nil, offset, err
		}
		if offset+8 > len(data) {
			return nil, offset, wrterr.NewDecodeError(wrterr.DecodeTruncatedInput, "truncated reading custom limit value")
		}
		value := binary.LittleEndian.Uint64(data[offset : offset+8])
		offset += 8
		if _, _, err = limit.CustomLimits.Insert(stringKey(name), u64Val(value)); err != nil {
			return nil, offset, err
		}
	}

	return limit, offset, nil
}
