// Package wrterr provides the structured error taxonomy used throughout
// the execution engine: CapacityError, ChecksumError, DecodeError,
// MarshalingError and ValidationError (spec section 7); the remaining
// category, Trap, is defined in package api. Each is a distinct
// Go type so callers can dispatch on it with errors.As instead of string
// matching, in the style of wippyai-wasm-runtime's Phase/Kind error type.
package wrterr

import "fmt"

// CapacityError is returned by bounded collections when a mutator would
// exceed the collection's fixed capacity. The collection is left
// unchanged.
type CapacityError struct {
	Collection string
	Capacity   int
	Attempted  int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("%s capacity exceeded: limit %d, attempted %d", e.Collection, e.Capacity, e.Attempted)
}

// ChecksumKind distinguishes the collections and subsystems that carry a
// verifiable checksum.
type ChecksumKind string

// ChecksumError is returned when verify_checksum (or a Full-level read)
// finds the recomputed checksum does not match the stored one.
type ChecksumError struct {
	Description string
	Expected    uint32
	Actual      uint32
}

func (e *ChecksumError) Error() string {
	return fmt.Sprintf("checksum mismatch in %s: expected %08x, got %08x", e.Description, e.Expected, e.Actual)
}

// DecodeKind enumerates the binary-codec error categories.
type DecodeKind string

const (
	DecodeUnknownOpcode     DecodeKind = "unknown_opcode"
	DecodeTruncatedInput    DecodeKind = "truncated_input"
	DecodeMalformedLEB128   DecodeKind = "malformed_leb128"
	DecodeUnexpectedEnd     DecodeKind = "unexpected_end"
	DecodeVersionUnsupported DecodeKind = "version_unsupported"
	DecodeStringTooLong     DecodeKind = "string_too_long"
	DecodeCapacityExceeded  DecodeKind = "capacity_exceeded"
)

// DecodeError is returned by the instruction codec and the resource-limits
// codec when input bytes cannot be parsed. Decode errors fail the module
// load entirely; they never partially apply.
type DecodeError struct {
	Kind   DecodeKind
	Detail string
}

func (e *DecodeError) Error() string {
	if e.Detail == "" {
		return "decode error: " + string(e.Kind)
	}
	return "decode error: " + string(e.Kind) + ": " + e.Detail
}

// NewDecodeError constructs a DecodeError of the given kind.
func NewDecodeError(kind DecodeKind, detail string) *DecodeError {
	return &DecodeError{Kind: kind, Detail: detail}
}

// MarshalingKind enumerates the Canonical ABI marshaling error categories.
type MarshalingKind string

const (
	MarshalingTooManyParameters MarshalingKind = "too_many_parameters"
	MarshalingParameterTooLarge MarshalingKind = "parameter_too_large"
	MarshalingStringTooLong     MarshalingKind = "string_too_long"
	MarshalingArrayTooLong      MarshalingKind = "array_too_long"
	MarshalingTypeMismatch      MarshalingKind = "type_mismatch"
)

// MarshalingError is returned by the component call context's parameter
// marshaler. It transitions the call to Failed before execution begins;
// both components involved remain intact.
type MarshalingError struct {
	Kind   MarshalingKind
	Detail string
}

func (e *MarshalingError) Error() string {
	if e.Detail == "" {
		return "marshaling error: " + string(e.Kind)
	}
	return "marshaling error: " + string(e.Kind) + ": " + e.Detail
}

// NewMarshalingError constructs a MarshalingError of the given kind.
func NewMarshalingError(kind MarshalingKind, detail string) *MarshalingError {
	return &MarshalingError{Kind: kind, Detail: detail}
}

// ValidationKind enumerates the component-call validator's error
// categories.
type ValidationKind string

const (
	ValidationSecurityDenied        ValidationKind = "security_denied"
	ValidationResourceUnavailable   ValidationKind = "resource_unavailable"
	ValidationParameterTypeMismatch ValidationKind = "parameter_type_mismatch"
	ValidationASILDNonCompliant     ValidationKind = "asil_d_non_compliant"
)

// ValidationError is returned by the component call validator. Like
// MarshalingError it prevents the cross-component call but leaves both
// components intact.
type ValidationError struct {
	Kind   ValidationKind
	Detail string
}

func (e *ValidationError) Error() string {
	if e.Detail == "" {
		return "validation error: " + string(e.Kind)
	}
	return "validation error: " + string(e.Kind) + ": " + e.Detail
}

// NewValidationError constructs a ValidationError of the given kind.
func NewValidationError(kind ValidationKind, detail string) *ValidationError {
	return &ValidationError{Kind: kind, Detail: detail}
}
