package component

import (
	"encoding/binary"
	"strings"

	"github.com/pulseengine/wrt/api"
	"github.com/pulseengine/wrt/internal/bound"
	"github.com/pulseengine/wrt/internal/verify"
)

// MaxComponentTypes bounds one TypeStore, grounded on
// MAX_COMPONENT_TYPES in original_source/wrt-foundation/src/component.rs.
const MaxComponentTypes = 64

// TypeRef indexes into a TypeStore rather than owning a type directly,
// breaking cycles in the component type graph (a component type may
// import a type that itself references the component), grounded on
// component.rs's TypeRef(pub u32).
type TypeRef uint32

// FuncType is a function signature: parameter and result value types,
// grounded on the teacher/pack's FuncType shape referenced throughout
// component.rs (`Func(FuncType)`); equality is structural, per
// SPEC_FULL.md 4.I's "FuncType equality structural (param/result
// ValueType slices)".
type FuncType struct {
	Params  []api.ValueType
	Results []api.ValueType
}

func (f FuncType) equal(other FuncType) bool {
	if len(f.Params) != len(other.Params) || len(f.Results) != len(other.Results) {
		return false
	}
	for i := range f.Params {
		if f.Params[i] != other.Params[i] {
			return false
		}
	}
	for i := range f.Results {
		if f.Results[i] != other.Results[i] {
			return false
		}
	}
	return true
}

// ExternKindTag is the one-byte discriminant shared by ExternType and
// ExternKind, grounded on component.rs's ExternKind #[repr(u8)]
// enumeration and the identical ten-way switch SPEC_FULL.md 4.I requires
// for ExternType's binary form.
type ExternKindTag byte

const (
	ExternFunc ExternKindTag = iota
	ExternTable
	ExternMemory
	ExternGlobal
	ExternTag
	ExternComponent
	ExternInstance
	ExternCoreModule
	ExternTypeDef
	ExternResource
)

// ExternKind is the kind-only (no payload) form used by instantiation
// arguments, grounded on component.rs's ExternKind enum — same ten
// discriminants as ExternType, without the variant body.
type ExternKind struct{ Tag ExternKindTag }

func (k ExternKind) Bytes() []byte { return []byte{byte(k.Tag)} }

// ExternType is the full tagged union of everything a component can
// import or export, grounded on component.rs's ExternType<P> enum. Only
// the field matching Tag is meaningful, following spec section 9's
// "tagged union with explicit discriminants... not runtime-dispatched
// trait objects" guidance.
type ExternType struct {
	Tag ExternKindTag

	Func       FuncType   // ExternFunc, ExternTag (component.rs reuses FuncType for Tag)
	TableRef   TypeRef    // ExternTable
	MemoryRef  TypeRef    // ExternMemory
	GlobalRef  TypeRef    // ExternGlobal
	Component  TypeRef    // ExternComponent: TypeRef to a ComponentType in the store
	Instance   TypeRef    // ExternInstance: TypeRef to an InstanceType
	CoreModule TypeRef    // ExternCoreModule
	TypeDef    TypeRef    // ExternTypeDef
	ResourceID uint32     // ExternResource: resources match by id (SPEC_FULL.md 4.I)
}

// Bytes serializes t as a one-byte discriminant followed by the variant
// body, bit-exact per SPEC_FULL.md 4.I's binary-serialization contract
// ("every type emits a one-byte discriminant followed by variant body").
func (t ExternType) Bytes() []byte {
	out := []byte{byte(t.Tag)}
	var body [4]byte
	switch t.Tag {
	case ExternFunc, ExternTag:
		out = append(out, byte(len(t.Func.Params)), byte(len(t.Func.Results)))
		for _, p := range t.Func.Params {
			out = append(out, byte(p))
		}
		for _, r := range t.Func.Results {
			out = append(out, byte(r))
		}
		return out
	case ExternTable:
		binary.LittleEndian.PutUint32(body[:], uint32(t.TableRef))
	case ExternMemory:
		binary.LittleEndian.PutUint32(body[:], uint32(t.MemoryRef))
	case ExternGlobal:
		binary.LittleEndian.PutUint32(body[:], uint32(t.GlobalRef))
	case ExternComponent:
		binary.LittleEndian.PutUint32(body[:], uint32(t.Component))
	case ExternInstance:
		binary.LittleEndian.PutUint32(body[:], uint32(t.Instance))
	case ExternCoreModule:
		binary.LittleEndian.PutUint32(body[:], uint32(t.CoreModule))
	case ExternTypeDef:
		binary.LittleEndian.PutUint32(body[:], uint32(t.TypeDef))
	case ExternResource:
		binary.LittleEndian.PutUint32(body[:], t.ResourceID)
	}
	return append(out, body[:]...)
}

// IsSubtypeOf implements SPEC_FULL.md 4.I's import-matching subtyping
// rule: "func signatures equal; resources match by id; instance exports
// cover all imported exports". Every other kind requires exact tag
// equality (there is no width-subtyping for table/memory/global limits
// in this port; a host that needs it composes this check with its own
// limit comparison).
func (t ExternType) IsSubtypeOf(other ExternType, store *TypeStore) bool {
	if t.Tag != other.Tag {
		return false
	}
	switch t.Tag {
	case ExternFunc, ExternTag:
		return t.Func.equal(other.Func)
	case ExternResource:
		return t.ResourceID == other.ResourceID
	case ExternInstance:
		want, ok1 := store.LookupInstance(t.Instance)
		have, ok2 := store.LookupInstance(other.Instance)
		if !ok1 || !ok2 {
			return false
		}
		return have.covers(want, store)
	case ExternTable:
		return t.TableRef == other.TableRef
	case ExternMemory:
		return t.MemoryRef == other.MemoryRef
	case ExternGlobal:
		return t.GlobalRef == other.GlobalRef
	case ExternComponent:
		return t.Component == other.Component
	case ExternCoreModule:
		return t.CoreModule == other.CoreModule
	case ExternTypeDef:
		return t.TypeDef == other.TypeDef
	default:
		return false
	}
}

// Namespace is a colon-separated sequence of name elements, grounded on
// component.rs's Namespace<P>.
type Namespace struct {
	Elements []string
}

func ParseNamespace(s string) Namespace {
	var elems []string
	for _, part := range strings.Split(s, ":") {
		if part != "" {
			elems = append(elems, part)
		}
	}
	return Namespace{Elements: elems}
}

func (n Namespace) String() string { return strings.Join(n.Elements, ":") }

// prefixMatches reports whether n is a prefix of other — the matching
// rule SPEC_FULL.md 4.I names ("namespace prefix-matches the instance's
// namespace").
func (n Namespace) prefixMatches(other Namespace) bool {
	if len(n.Elements) > len(other.Elements) {
		return false
	}
	for i, e := range n.Elements {
		if e != other.Elements[i] {
			return false
		}
	}
	return true
}

// Import is a single component/core-module import, grounded on
// component.rs's Import<P>.
type Import struct {
	Namespace Namespace
	Name      string
	Type      ExternType
}

// Export is a single component/core-module export, grounded on
// component.rs's Export<P>.
type Export struct {
	Name string
	Type ExternType
}

// InstanceType is the export surface of one component instance, grounded
// on component.rs's InstanceType<P>.
type InstanceType struct {
	Namespace Namespace
	Exports   []Export
}

// covers reports whether have's exports satisfy every export want
// declares — "instance exports cover all imported exports" per
// SPEC_FULL.md 4.I. Matching is by export name and IsSubtypeOf on the
// extern type.
func (have InstanceType) covers(want InstanceType, store *TypeStore) bool {
	for _, w := range want.Exports {
		found := false
		for _, h := range have.Exports {
			if h.Name == w.Name && w.Type.IsSubtypeOf(h.Type, store) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// ComponentAliasKind discriminates the three alias forms, grounded on
// component.rs's ComponentAlias<P> enum (InstanceExport=0,
// CoreInstanceExport=1, Outer=2 per SPEC_FULL.md 4.I's binary table).
type ComponentAliasKind int

const (
	AliasInstanceExport ComponentAliasKind = iota
	AliasCoreInstanceExport
	AliasOuter
)

// ComponentAlias names a declaration indirectly reachable from an
// already-available instance or an enclosing component, grounded on
// component.rs's ComponentAlias<P>/ComponentAliasInstanceExport/
// ComponentAliasCoreInstanceExport/ComponentAliasOuter.
type ComponentAlias struct {
	Kind ComponentAliasKind

	// AliasInstanceExport / AliasCoreInstanceExport
	InstanceIndex uint32
	Name          string
	ExportKind    ExternKindTag

	// AliasOuter
	LevelsUp uint32
	Index    uint32
}

func (a ComponentAlias) Bytes() []byte {
	out := []byte{byte(a.Kind)}
	var u32 [4]byte
	switch a.Kind {
	case AliasInstanceExport, AliasCoreInstanceExport:
		binary.LittleEndian.PutUint32(u32[:], a.InstanceIndex)
		out = append(out, u32[:]...)
		out = append(out, []byte(a.Name)...)
	case AliasOuter:
		binary.LittleEndian.PutUint32(u32[:], a.LevelsUp)
		out = append(out, u32[:]...)
		binary.LittleEndian.PutUint32(u32[:], a.Index)
		out = append(out, u32[:]...)
	}
	return out
}

// ComponentType is the full static shape of one component: its imports,
// exports, aliases and the nested instances/types it declares, grounded
// on component.rs's ComponentType<P>. Like the Rust source, every nested
// reference goes through a TypeRef into the owning TypeStore rather than
// direct ownership, so a component type that imports something shaped
// like itself does not require an infinite type.
type ComponentType struct {
	Imports   []Import
	Exports   []Export
	Aliases   []ComponentAlias
	Instances []TypeRef // each resolves to an InstanceType in the store
}

// TypeStore is the bounded, shared backing vector every TypeRef indexes
// into, grounded on spec section 9's "the store is a bounded vector
// owned by the decoder output; all downstream users borrow from it" and
// reusing internal/bound.Vec (component A) rather than a bare slice, so
// the store gets the same checksum/capacity guarantees as every other
// bounded collection in this module.
type TypeStore struct {
	externTypes *bound.Vec[ExternType]
	instances   []InstanceType
	components  []ComponentType
}

// NewTypeStore constructs an empty store with the spec's fixed
// 64-type capacity.
func NewTypeStore(level verify.Level) *TypeStore {
	return &TypeStore{
		externTypes: bound.NewVec[ExternType](MaxComponentTypes, level),
	}
}

// AddExternType appends t and returns its TypeRef.
func (s *TypeStore) AddExternType(t ExternType) (TypeRef, error) {
	if err := s.externTypes.Push(t); err != nil {
		return 0, err
	}
	return TypeRef(s.externTypes.Len() - 1), nil
}

// LookupExternType resolves ref, or ok=false if out of range.
func (s *TypeStore) LookupExternType(ref TypeRef) (ExternType, bool) {
	return s.externTypes.Get(int(ref))
}

// AddInstanceType appends inst and returns the TypeRef future
// ExternInstance/ComponentAlias entries should use to refer to it.
func (s *TypeStore) AddInstanceType(inst InstanceType) TypeRef {
	s.instances = append(s.instances, inst)
	return TypeRef(len(s.instances) - 1)
}

// LookupInstance resolves ref into the instances table.
func (s *TypeStore) LookupInstance(ref TypeRef) (InstanceType, bool) {
	if int(ref) < 0 || int(ref) >= len(s.instances) {
		return InstanceType{}, false
	}
	return s.instances[ref], true
}

// AddComponentType appends ct and returns its TypeRef.
func (s *TypeStore) AddComponentType(ct ComponentType) TypeRef {
	s.components = append(s.components, ct)
	return TypeRef(len(s.components) - 1)
}

// LookupComponentType resolves ref into the component-types table.
func (s *TypeStore) LookupComponentType(ref TypeRef) (ComponentType, bool) {
	if int(ref) < 0 || int(ref) >= len(s.components) {
		return ComponentType{}, false
	}
	return s.components[ref], true
}

// MatchImport implements SPEC_FULL.md 4.I's import-matching rule in
// full: an import (namespace, name, extern_type) is satisfied by an
// export (name, extern_type') on instance when namespace prefix-matches
// the instance's namespace and extern_type is a subtype of extern_type'.
func MatchImport(imp Import, instance InstanceType, store *TypeStore) bool {
	if !imp.Namespace.prefixMatches(instance.Namespace) {
		return false
	}
	for _, exp := range instance.Exports {
		if exp.Name == imp.Name && imp.Type.IsSubtypeOf(exp.Type, store) {
			return true
		}
	}
	return false
}
