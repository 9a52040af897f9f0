package component

import (
	"go.bytecodealliance.org/wit"

	"github.com/pulseengine/wrt/wrterr"
)

// ValueKind discriminates a ComponentValue's Canonical ABI shape. The
// constants mirror wippyai-wasm-runtime/transcoder's Kind* taxonomy
// (itself built over go.bytecodealliance.org/wit's Record/Variant/Tuple/
// Option/Result/Enum/Flags/List/Own/Borrow discriminants) exactly, so the
// marshaling-size computation below is a direct structural port of
// transcoder/layout.go's size rules rather than an invented one.
type ValueKind int

const (
	KindBool ValueKind = iota
	KindU8
	KindS8
	KindU16
	KindS16
	KindU32
	KindS32
	KindU64
	KindS64
	KindF32
	KindF64
	KindChar
	KindString
	KindRecord
	KindList
	KindTuple
	KindEnum
	KindFlags
	KindOption
	KindResult
	KindVariant
	KindOwn
	KindBorrow
)

// primitiveWidth is the byte width of every fixed-size primitive kind
// (spec 4.H: "primitives are their byte width"). Bool, U8/S8 and Char
// round out what transcoder.go's compilePrimitive enumerates; Char is 4
// bytes (a Unicode scalar value), matching Rust's char representation.
var primitiveWidth = map[ValueKind]uint32{
	KindBool: 1,
	KindU8:   1,
	KindS8:   1,
	KindU16:  2,
	KindS16:  2,
	KindU32:  4,
	KindS32:  4,
	KindU64:  8,
	KindS64:  8,
	KindF32:  4,
	KindF64:  8,
	KindChar: 4,
}

// ComponentValue is one Canonical ABI value as marshaled across a
// cross-component call boundary. Only one of the payload fields is
// meaningful at a time, selected by Kind — a tagged union rather than an
// interface, per spec section 9's "do not use runtime-dispatched trait
// objects for hot-path values" guidance (the same rule applied to
// api.Value in the engine).
type ComponentValue struct {
	Kind ValueKind

	// Primitive payload: the raw bits, for every Kind in primitiveWidth
	// plus U32/S32 etc. Interpreted per Kind.
	Scalar uint64

	Str string // KindString

	// List/Tuple/Record elements, in declaration order.
	Elements []ComponentValue

	// Option: set when Elements has exactly one element (Some); empty
	// Elements means None.
	//
	// Result: Elements[0] is Ok if OK is true, Err otherwise, when
	// present; zero elements means no payload on that arm.
	OK bool

	// Variant/Enum: which case is selected (by declaration index), plus
	// the payload in Elements[0] when the case carries one.
	CaseIndex uint32

	// Flags: up to 64 bits, one per declared flag.
	Flags uint64
}

// validate checks the structural bounds spec 4.H enforces ("strings <=
// 65536 bytes; lists <= 4096 elements"), recursively.
func (v ComponentValue) validate() error {
	switch v.Kind {
	case KindString:
		if len(v.Str) > MaxStringLength {
			return &wrterr.MarshalingError{Kind: wrterr.MarshalingStringTooLong, Detail: "string exceeds max_string_length"}
		}
	case KindList:
		if len(v.Elements) > MaxArrayLength {
			return &wrterr.MarshalingError{Kind: wrterr.MarshalingArrayTooLong, Detail: "list exceeds max_array_length"}
		}
		for _, e := range v.Elements {
			if err := e.validate(); err != nil {
				return err
			}
		}
	case KindRecord, KindTuple:
		for _, e := range v.Elements {
			if err := e.validate(); err != nil {
				return err
			}
		}
	case KindOption, KindResult, KindVariant:
		for _, e := range v.Elements {
			if err := e.validate(); err != nil {
				return err
			}
		}
	}
	return nil
}

// size computes the recursive marshaled byte size of v per spec 4.H:
// primitives are their byte width; strings = content + 4-byte length
// prefix; lists = recursive size + 4-byte length prefix; records/tuples
// = sum of fields; variants = 4 + payload; options = 1 + payload; result
// = 1 + payload; enum/flags = 4. Grounded structurally on
// transcoder/layout.go's per-Kind size rules (FlatCount there counts
// wasm-value slots rather than bytes, but the per-Kind recursion shape —
// record sums fields, list/option/variant/result wrap a payload — is the
// same one this function follows).
func (v ComponentValue) size() (uint32, error) {
	if w, ok := primitiveWidth[v.Kind]; ok {
		return w, nil
	}
	switch v.Kind {
	case KindString:
		if len(v.Str) > MaxStringLength {
			return 0, &wrterr.MarshalingError{Kind: wrterr.MarshalingStringTooLong, Detail: "string exceeds max_string_length"}
		}
		return uint32(len(v.Str)) + 4, nil
	case KindList:
		if len(v.Elements) > MaxArrayLength {
			return 0, &wrterr.MarshalingError{Kind: wrterr.MarshalingArrayTooLong, Detail: "list exceeds max_array_length"}
		}
		var total uint32
		for _, e := range v.Elements {
			s, err := e.size()
			if err != nil {
				return 0, err
			}
			total += s
		}
		return total + 4, nil
	case KindRecord, KindTuple:
		var total uint32
		for _, e := range v.Elements {
			s, err := e.size()
			if err != nil {
				return 0, err
			}
			total += s
		}
		return total, nil
	case KindVariant:
		payload, err := payloadSize(v.Elements)
		if err != nil {
			return 0, err
		}
		return 4 + payload, nil
	case KindOption:
		payload, err := payloadSize(v.Elements)
		if err != nil {
			return 0, err
		}
		return 1 + payload, nil
	case KindResult:
		payload, err := payloadSize(v.Elements)
		if err != nil {
			return 0, err
		}
		return 1 + payload, nil
	case KindEnum, KindFlags, KindOwn, KindBorrow:
		return 4, nil
	default:
		return 0, &wrterr.MarshalingError{Kind: wrterr.MarshalingTypeMismatch, Detail: "unrecognized value kind"}
	}
}

// payloadSize returns 0 for an empty (case-with-no-payload) Elements,
// else the size of its single element.
func payloadSize(elements []ComponentValue) (uint32, error) {
	if len(elements) == 0 {
		return 0, nil
	}
	return elements[0].size()
}

// marshaledSize sums size() across params, without any of marshalParameters'
// bookkeeping, for callers (like validateSecurity's memory-limit check)
// that only need the total.
func marshaledSize(params []ComponentValue) (uint32, error) {
	var total uint32
	for _, p := range params {
		s, err := p.size()
		if err != nil {
			return 0, err
		}
		total += s
	}
	return total, nil
}

// marshalParameters validates count/size bounds and computes the total
// marshaled size, per spec 4.H ("Total marshaled size <= 1 MiB"). The
// Canonical ABI conversion this port performs is size accounting only —
// ComponentValue is already in its canonical flattened form by
// construction, so there is no distinct "original" representation to
// convert from (unlike call_context.rs's std build, which converts
// between a richer host-side ComponentValue and a flattened wire form;
// this port's ComponentValue already is that wire form).
func marshalParameters(params []ComponentValue) ([]ComponentValue, uint32, error) {
	if len(params) > MaxArrayLength {
		return nil, 0, &wrterr.MarshalingError{Kind: wrterr.MarshalingTooManyParameters, Detail: "parameter count exceeds max_array_length"}
	}
	total, err := marshaledSize(params)
	if err != nil {
		return nil, 0, err
	}
	if total > MaxParameterDataSize {
		return nil, 0, &wrterr.MarshalingError{Kind: wrterr.MarshalingParameterTooLarge, Detail: "total marshaled size exceeds 1 MiB"}
	}
	return params, total, nil
}

// KindFromWit converts a wit.Type to the ValueKind it denotes, the same
// discriminant this port's marshaling/validation works in terms of. This
// is a direct structural port of transcoder/compiler.go's compile()/
// compileTypeDef() type switch (case wit.Bool/.../wit.String, then
// *wit.TypeDef's nested case *wit.Record/*wit.List/.../*wit.Borrow) —
// the same two-level switch, trading CompiledType construction for a
// bare ValueKind since this package marshals already-flattened values
// rather than compiling a Go<->Wasm bridge.
func KindFromWit(t wit.Type) (ValueKind, error) {
	switch v := t.(type) {
	case wit.Bool:
		return KindBool, nil
	case wit.U8:
		return KindU8, nil
	case wit.S8:
		return KindS8, nil
	case wit.U16:
		return KindU16, nil
	case wit.S16:
		return KindS16, nil
	case wit.U32:
		return KindU32, nil
	case wit.S32:
		return KindS32, nil
	case wit.U64:
		return KindU64, nil
	case wit.S64:
		return KindS64, nil
	case wit.F32:
		return KindF32, nil
	case wit.F64:
		return KindF64, nil
	case wit.Char:
		return KindChar, nil
	case wit.String:
		return KindString, nil
	case *wit.TypeDef:
		return kindFromWitTypeDef(v)
	default:
		return 0, &wrterr.MarshalingError{Kind: wrterr.MarshalingTypeMismatch, Detail: "unsupported wit.Type"}
	}
}

func kindFromWitTypeDef(t *wit.TypeDef) (ValueKind, error) {
	switch t.Kind.(type) {
	case *wit.Record:
		return KindRecord, nil
	case *wit.List:
		return KindList, nil
	case *wit.Tuple:
		return KindTuple, nil
	case *wit.Enum:
		return KindEnum, nil
	case *wit.Flags:
		return KindFlags, nil
	case *wit.Option:
		return KindOption, nil
	case *wit.Result:
		return KindResult, nil
	case *wit.Variant:
		return KindVariant, nil
	case *wit.Own:
		return KindOwn, nil
	case *wit.Borrow:
		return KindBorrow, nil
	default:
		return 0, &wrterr.MarshalingError{Kind: wrterr.MarshalingTypeMismatch, Detail: "unsupported wit.TypeDef kind"}
	}
}

// MatchesWitType reports whether v's Kind is what t's Canonical ABI
// representation requires, for validating a call's parameters against a
// signature resolved from an actual .wit document rather than only the
// structural self-checks validate() performs.
func (v ComponentValue) MatchesWitType(t wit.Type) (bool, error) {
	kind, err := KindFromWit(t)
	if err != nil {
		return false, err
	}
	return v.Kind == kind, nil
}

// --- convenience constructors, grounded on S5's literal value shapes ---

func I32Value(v int32) ComponentValue { return ComponentValue{Kind: KindS32, Scalar: uint64(uint32(v))} }
func StringValue(s string) ComponentValue { return ComponentValue{Kind: KindString, Str: s} }
func ListValue(elems ...ComponentValue) ComponentValue {
	return ComponentValue{Kind: KindList, Elements: elems}
}
