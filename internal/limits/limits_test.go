package limits

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func u64p(v uint64) *uint64 { return &v }
func u32p(v uint32) *uint32 { return &v }

func TestRoundTripEncodeDecode(t *testing.T) {
	s := WithExecutionLimits(u64p(1000), u64p(65536), u32p(32), u32p(10), u32p(100))
	require.NoError(t, s.WithQualification([32]byte{}, "ASIL-D"))

	encoded, err := s.Encode()
	require.NoError(t, err)

	decoded, err := Decode(encoded)
	require.NoError(t, err)

	assert.Equal(t, s.Version, decoded.Version)
	assert.Equal(t, *s.MaxFuelPerStep, *decoded.MaxFuelPerStep)
	assert.Equal(t, *s.MaxMemoryUsage, *decoded.MaxMemoryUsage)
	assert.Equal(t, *s.MaxCallDepth, *decoded.MaxCallDepth)
	assert.Equal(t, *s.MaxInstructionsPerStep, *decoded.MaxInstructionsPerStep)
	assert.Equal(t, *s.MaxExecutionSliceMS, *decoded.MaxExecutionSliceMS)
	assert.Equal(t, *s.QualifiedASILLevel, *decoded.QualifiedASILLevel)
	assert.NoError(t, decoded.ValidateASILDCompliance())
}

func TestRoundTripPreservesResourceTypeLimits(t *testing.T) {
	s := NewSection()
	fsLimit := NewResourceTypeLimit().WithMaxHandles(64).WithMaxMemory(4096)
	_, err := fsLimit.WithCustomLimit("max_open_files", 128)
	require.NoError(t, err)
	require.NoError(t, s.WithResourceTypeLimit("filesystem", fsLimit))

	netLimit := NewResourceTypeLimit().WithMaxOperationsPerSecond(500)
	require.NoError(t, s.WithResourceTypeLimit("network", netLimit))

	encoded, err := s.Encode()
	require.NoError(t, err)

	decoded, err := Decode(encoded)
	require.NoError(t, err)

	assert.Equal(t, 2, decoded.ResourceTypeLimits.Len())

	got, ok := decoded.ResourceTypeLimits.Get(stringKey("filesystem"))
	require.True(t, ok)
	assert.Equal(t, uint32(64), *got.MaxHandles)
	assert.Equal(t, uint64(4096), *got.MaxMemory)
	customVal, ok := got.CustomLimits.Get(stringKey("max_open_files"))
	require.True(t, ok)
	assert.Equal(t, u64Val(128), customVal)

	got, ok = decoded.ResourceTypeLimits.Get(stringKey("network"))
	require.True(t, ok)
	assert.Equal(t, uint32(500), *got.MaxOperationsPerSecond)
}

func TestASILDConfigIsCompleteAndCompliant(t *testing.T) {
	s := ASILDConfig(1000, 65536, 32, 10, 100)
	assert.True(t, s.IsCompleteForASILD())
	assert.NoError(t, s.ValidateASILDCompliance())
}

func TestASILDComplianceRejectsExcessiveFuel(t *testing.T) {
	s := ASILDConfig(2_000_000, 65536, 32, 10, 100)
	assert.Error(t, s.ValidateASILDCompliance())
}

func TestASILDComplianceRequiresAllFields(t *testing.T) {
	s := WithExecutionLimits(u64p(1000), nil, nil, nil, nil)
	assert.False(t, s.IsCompleteForASILD())
	assert.Error(t, s.ValidateASILDCompliance())
}

func TestResourceTypeLimitsCapacityExceeded(t *testing.T) {
	s := NewSection()
	for i := 0; i < MaxResourceTypes; i++ {
		name := string(rune('a' + i))
		assert.NoError(t, s.WithResourceTypeLimit(name, NewResourceTypeLimit()))
	}
	err := s.WithResourceTypeLimit("overflow", NewResourceTypeLimit())
	assert.Error(t, err)
}

func TestDecodeRejectsUnsupportedVersion(t *testing.T) {
	s := NewSection()
	s.Version = Version + 1
	encoded, err := s.Encode()
	require.NoError(t, err)

	_, err = Decode(encoded)
	assert.Error(t, err)
}

func TestDecodeRejectsTruncatedInput(t *testing.T) {
	s := WithExecutionLimits(u64p(1000), u64p(65536), u32p(32), u32p(10), u32p(100))
	encoded, err := s.Encode()
	require.NoError(t, err)

	_, err = Decode(encoded[:len(encoded)-5])
	assert.Error(t, err)
}
