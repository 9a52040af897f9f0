// Package limits implements the resource-limits custom section: a binary
// format for embedding execution limits in a WebAssembly module so that an
// ASIL-D deployment can carry its fuel, memory, call-depth, instruction and
// wall-clock budgets inside the binary it qualifies, grounded on
// original_source/wrt-decoder/src/resource_limits_section.rs.
package limits

import (
	"encoding/binary"

	"github.com/pulseengine/wrt/internal/bound"
	"github.com/pulseengine/wrt/internal/verify"
	"github.com/pulseengine/wrt/wrterr"
)

// SectionName is the standard custom section name a decoder looks for.
const SectionName = "wrt.resource_limits"

// Version is the format version this package encodes and the highest
// version it will decode.
const Version uint32 = 1

// ASIL-D compile-time capacity limits, chosen for realistic WebAssembly
// modules while keeping every collection's memory usage deterministic.
const (
	MaxResourceTypes       = 16
	MaxCustomLimitsPerType = 32
	MaxResourceNameLen     = 32
	MaxASILStringLen       = 16
	MaxEncodedSize         = 8192
)

// The ASIL-D specific ceilings (asilD*) enforced by ValidateASILDCompliance,
// and the generic sanity bounds (generic*) enforced by Validate.
const (
	asilDMaxFuelPerStep  = 1_000_000
	asilDMaxMemoryUsage  = 1024 * 1024 * 1024
	genericMaxMemoryUsage = 4 * 1024 * 1024 * 1024
	genericMaxCallDepth   = 10000
)

type stringKey string

func (s stringKey) Bytes() []byte { return []byte(s) }

func stringKeyEq(a, b stringKey) bool { return a == b }

type u64Val uint64

func (v u64Val) Bytes() []byte {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, uint64(v))
	return buf
}

// ResourceTypeLimit bounds a single resource category (filesystem, network,
// timers, ...): a handle ceiling, a memory ceiling, a rate ceiling and an
// open-ended bag of named numeric limits.
type ResourceTypeLimit struct {
	MaxHandles             *uint32
	MaxMemory              *uint64
	MaxOperationsPerSecond *uint32
	CustomLimits           *bound.Map[stringKey, u64Val]
}

// NewResourceTypeLimit returns an empty ResourceTypeLimit ready to have
// fields and custom limits attached.
func NewResourceTypeLimit() *ResourceTypeLimit {
	return &ResourceTypeLimit{
		CustomLimits: bound.NewMap[stringKey, u64Val](MaxCustomLimitsPerType, verify.Standard, stringKeyEq),
	}
}

// WithMaxHandles sets the handle ceiling and returns the receiver.
func (r *ResourceTypeLimit) WithMaxHandles(n uint32) *ResourceTypeLimit {
	r.MaxHandles = &n
	return r
}

// WithMaxMemory sets the memory ceiling and returns the receiver.
func (r *ResourceTypeLimit) WithMaxMemory(n uint64) *ResourceTypeLimit {
	r.MaxMemory = &n
	return r
}

// WithMaxOperationsPerSecond sets the rate ceiling and returns the receiver.
func (r *ResourceTypeLimit) WithMaxOperationsPerSecond(n uint32) *ResourceTypeLimit {
	r.MaxOperationsPerSecond = &n
	return r
}

// WithCustomLimit attaches a named numeric limit, failing with a
// CapacityError once MaxCustomLimitsPerType entries are already present.
func (r *ResourceTypeLimit) WithCustomLimit(name string, value uint64) (*ResourceTypeLimit, error) {
	if len(name) > MaxResourceNameLen {
		return r, wrterr.NewDecodeError(wrterr.DecodeStringTooLong, "custom limit name exceeds ASIL length bounds")
	}
	if _, _, err := r.CustomLimits.Insert(stringKey(name), u64Val(value)); err != nil {
		return r, err
	}
	return r, nil
}

// Bytes serializes the limit for checksumming and for use as a bound.Map
// value, matching the field order of the Rust Checksummable/ToBytes impls.
func (r *ResourceTypeLimit) Bytes() []byte {
	var out []byte
	out = appendOptionalU32(out, r.MaxHandles)
	out = appendOptionalU64(out, r.MaxMemory)
	out = appendOptionalU32(out, r.MaxOperationsPerSecond)
	for _, e := range r.CustomLimits.Iter() {
		out = append(out, e.Key.Bytes()...)
		out = append(out, e.Value.Bytes()...)
	}
	return out
}

// validate checks a single resource type's bounds, named for error
// messages by resourceType.
func (r *ResourceTypeLimit) validate(resourceType string) error {
	if len(resourceType) > MaxResourceNameLen {
		return wrterr.NewValidationError(wrterr.ValidationASILDNonCompliant, "resource type name too long: "+resourceType)
	}
	if r.CustomLimits.Len() > MaxCustomLimitsPerType {
		return wrterr.NewValidationError(wrterr.ValidationASILDNonCompliant, "too many custom limits for resource type: "+resourceType)
	}
	return nil
}

// Section is the resource-limits custom section embedded in a qualified
// WebAssembly binary.
type Section struct {
	Version                uint32
	MaxFuelPerStep         *uint64
	MaxMemoryUsage         *uint64
	MaxCallDepth           *uint32
	MaxInstructionsPerStep *uint32
	MaxExecutionSliceMS    *uint32
	ResourceTypeLimits     *bound.Map[stringKey, *ResourceTypeLimit]
	QualificationHash      *[32]byte
	QualifiedASILLevel     *string
}

// NewSection returns an empty Section at the current Version.
func NewSection() *Section {
	return &Section{
		Version:            Version,
		ResourceTypeLimits: bound.NewMap[stringKey, *ResourceTypeLimit](MaxResourceTypes, verify.Standard, stringKeyEq),
	}
}

// WithExecutionLimits is the primary constructor for an ASIL-D
// configuration's execution limits; any argument may be nil to leave that
// limit unset.
func WithExecutionLimits(maxFuelPerStep, maxMemoryUsage *uint64, maxCallDepth, maxInstructionsPerStep, maxExecutionSliceMS *uint32) *Section {
	s := NewSection()
	s.MaxFuelPerStep = maxFuelPerStep
	s.MaxMemoryUsage = maxMemoryUsage
	s.MaxCallDepth = maxCallDepth
	s.MaxInstructionsPerStep = maxInstructionsPerStep
	s.MaxExecutionSliceMS = maxExecutionSliceMS
	return s
}

// ASILDConfig builds a Section with all fields required for ASIL-D
// qualification already populated and the qualified level stamped.
func ASILDConfig(maxFuelPerStep, maxMemoryUsage uint64, maxCallDepth, maxInstructionsPerStep, maxExecutionSliceMS uint32) *Section {
	s := NewSection()
	s.MaxFuelPerStep = &maxFuelPerStep
	s.MaxMemoryUsage = &maxMemoryUsage
	s.MaxCallDepth = &maxCallDepth
	s.MaxInstructionsPerStep = &maxInstructionsPerStep
	s.MaxExecutionSliceMS = &maxExecutionSliceMS
	level := "ASIL-D"
	s.QualifiedASILLevel = &level
	return s
}

// WithResourceTypeLimit attaches limit under resourceType, returning a
// CapacityError once MaxResourceTypes entries already exist.
func (s *Section) WithResourceTypeLimit(resourceType string, limit *ResourceTypeLimit) error {
	if len(resourceType) > MaxResourceNameLen {
		return wrterr.NewDecodeError(wrterr.DecodeStringTooLong, "resource type name exceeds ASIL length bounds")
	}
	_, _, err := s.ResourceTypeLimits.Insert(stringKey(resourceType), limit)
	return err
}

// WithQualification stamps the qualification hash and ASIL level.
func (s *Section) WithQualification(hash [32]byte, asilLevel string) error {
	if len(asilLevel) > MaxASILStringLen {
		return wrterr.NewDecodeError(wrterr.DecodeStringTooLong, "ASIL level string exceeds bounds")
	}
	s.QualificationHash = &hash
	s.QualifiedASILLevel = &asilLevel
	return nil
}

// IsCompleteForASILD reports whether every ASIL-D-required execution limit
// is present.
func (s *Section) IsCompleteForASILD() bool {
	return s.MaxFuelPerStep != nil &&
		s.MaxMemoryUsage != nil &&
		s.MaxCallDepth != nil &&
		s.MaxInstructionsPerStep != nil &&
		s.MaxExecutionSliceMS != nil
}

// IsQualified reports whether the section carries qualification evidence.
func (s *Section) IsQualified() bool {
	return s.QualificationHash != nil && s.QualifiedASILLevel != nil
}

// ValidateASILDCompliance checks that the section is complete, internally
// consistent, and within the hard ASIL-D ceilings on fuel and memory that
// keep a single execution step temporally and spatially deterministic.
func (s *Section) ValidateASILDCompliance() error {
	if !s.IsCompleteForASILD() {
		return wrterr.NewValidationError(wrterr.ValidationASILDNonCompliant, "ASIL-D requires all execution limits to be specified")
	}
	if err := s.Validate(); err != nil {
		return err
	}
	if s.MaxFuelPerStep != nil && *s.MaxFuelPerStep > asilDMaxFuelPerStep {
		return wrterr.NewValidationError(wrterr.ValidationASILDNonCompliant, "ASIL-D fuel limit too high for deterministic execution")
	}
	if s.MaxMemoryUsage != nil && *s.MaxMemoryUsage > asilDMaxMemoryUsage {
		return wrterr.NewValidationError(wrterr.ValidationASILDNonCompliant, "ASIL-D memory limit too high for deterministic execution")
	}
	return nil
}

// Validate checks that every populated limit is internally sane,
// independent of any particular ASIL level.
func (s *Section) Validate() error {
	if s.MaxFuelPerStep != nil && *s.MaxFuelPerStep == 0 {
		return wrterr.NewValidationError(wrterr.ValidationASILDNonCompliant, "max_fuel_per_step cannot be zero")
	}
	if s.MaxMemoryUsage != nil {
		if *s.MaxMemoryUsage == 0 {
			return wrterr.NewValidationError(wrterr.ValidationASILDNonCompliant, "max_memory_usage cannot be zero")
		}
		if *s.MaxMemoryUsage > genericMaxMemoryUsage {
			return wrterr.NewValidationError(wrterr.ValidationASILDNonCompliant, "max_memory_usage too large (max 4GB)")
		}
	}
	if s.MaxCallDepth != nil {
		if *s.MaxCallDepth == 0 {
			return wrterr.NewValidationError(wrterr.ValidationASILDNonCompliant, "max_call_depth cannot be zero")
		}
		if *s.MaxCallDepth > genericMaxCallDepth {
			return wrterr.NewValidationError(wrterr.ValidationASILDNonCompliant, "max_call_depth too large (max 10000)")
		}
	}
	if s.MaxInstructionsPerStep != nil && *s.MaxInstructionsPerStep == 0 {
		return wrterr.NewValidationError(wrterr.ValidationASILDNonCompliant, "max_instructions_per_step cannot be zero")
	}
	if s.MaxExecutionSliceMS != nil && *s.MaxExecutionSliceMS == 0 {
		return wrterr.NewValidationError(wrterr.ValidationASILDNonCompliant, "max_execution_slice_ms cannot be zero")
	}
	return s.validateBounds()
}

// validateBounds walks every resource type's own limits. Unlike the Rust
// original this iteration is real: sorted Map.Iter() makes it trivial, so
// the two TODO-stubbed loops in resource_limits_section.rs are fully
// implemented here rather than carried forward as dead code.
func (s *Section) validateBounds() error {
	if s.ResourceTypeLimits.Len() > MaxResourceTypes {
		return wrterr.NewValidationError(wrterr.ValidationASILDNonCompliant, "too many resource types")
	}
	for _, e := range s.ResourceTypeLimits.Iter() {
		if err := e.Value.validate(string(e.Key)); err != nil {
			return err
		}
	}
	if s.QualifiedASILLevel != nil && len(*s.QualifiedASILLevel) > MaxASILStringLen {
		return wrterr.NewDecodeError(wrterr.DecodeStringTooLong, "qualified ASIL level string exceeds bounds")
	}
	return nil
}

func appendOptionalU32(out []byte, v *uint32) []byte {
	if v == nil {
		return append(out, 0)
	}
	buf := make([]byte, 5)
	buf[0] = 1
	binary.LittleEndian.PutUint32(buf[1:], *v)
	return append(out, buf...)
}

func appendOptionalU64(out []byte, v *uint64) []byte {
	if v == nil {
		return append(out, 0)
	}
	buf := make([]byte, 9)
	buf[0] = 1
	binary.LittleEndian.PutUint64(buf[1:], *v)
	return append(out, buf...)
}
