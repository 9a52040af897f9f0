package component

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pulseengine/wrt/api"
	"github.com/pulseengine/wrt/internal/verify"
)

func TestExternTypeBytesDiscriminantOrder(t *testing.T) {
	cases := []struct {
		tag  ExternKindTag
		want byte
	}{
		{ExternFunc, 0}, {ExternTable, 1}, {ExternMemory, 2}, {ExternGlobal, 3},
		{ExternTag, 4}, {ExternComponent, 5}, {ExternInstance, 6},
		{ExternCoreModule, 7}, {ExternTypeDef, 8}, {ExternResource, 9},
	}
	for _, c := range cases {
		et := ExternType{Tag: c.tag}
		require.NotEmpty(t, et.Bytes())
		assert.Equal(t, c.want, et.Bytes()[0])
	}
}

func TestComponentAliasBytesDiscriminantOrder(t *testing.T) {
	assert.Equal(t, byte(0), ComponentAlias{Kind: AliasInstanceExport}.Bytes()[0])
	assert.Equal(t, byte(1), ComponentAlias{Kind: AliasCoreInstanceExport}.Bytes()[0])
	assert.Equal(t, byte(2), ComponentAlias{Kind: AliasOuter}.Bytes()[0])
}

func TestFuncTypeSubtypingRequiresEqualSignature(t *testing.T) {
	a := ExternType{Tag: ExternFunc, Func: FuncType{
		Params:  []api.ValueType{api.ValueTypeI32},
		Results: []api.ValueType{api.ValueTypeI32},
	}}
	same := ExternType{Tag: ExternFunc, Func: FuncType{
		Params:  []api.ValueType{api.ValueTypeI32},
		Results: []api.ValueType{api.ValueTypeI32},
	}}
	different := ExternType{Tag: ExternFunc, Func: FuncType{
		Params:  []api.ValueType{api.ValueTypeI64},
		Results: []api.ValueType{api.ValueTypeI32},
	}}

	store := NewTypeStore(verify.Standard)
	assert.True(t, a.IsSubtypeOf(same, store))
	assert.False(t, a.IsSubtypeOf(different, store))
}

func TestResourceSubtypingMatchesByID(t *testing.T) {
	store := NewTypeStore(verify.Standard)
	a := ExternType{Tag: ExternResource, ResourceID: 3}
	b := ExternType{Tag: ExternResource, ResourceID: 3}
	c := ExternType{Tag: ExternResource, ResourceID: 4}

	assert.True(t, a.IsSubtypeOf(b, store))
	assert.False(t, a.IsSubtypeOf(c, store))
}

// Property: the narrower instance type that only names the imported
// subset IsSubtypeOf an instance whose exports are a superset of it
// ("instance exports cover all imported exports").
func TestInstanceSubtypingRequiresExportCoverage(t *testing.T) {
	store := NewTypeStore(verify.Standard)

	fnType := ExternType{Tag: ExternFunc, Func: FuncType{Results: []api.ValueType{api.ValueTypeI32}}}

	wantRef := store.AddInstanceType(InstanceType{
		Exports: []Export{{Name: "get", Type: fnType}},
	})
	haveRef := store.AddInstanceType(InstanceType{
		Exports: []Export{
			{Name: "get", Type: fnType},
			{Name: "set", Type: ExternType{Tag: ExternFunc}},
		},
	})
	missingRef := store.AddInstanceType(InstanceType{
		Exports: []Export{{Name: "set", Type: ExternType{Tag: ExternFunc}}},
	})

	want := ExternType{Tag: ExternInstance, Instance: wantRef}
	have := ExternType{Tag: ExternInstance, Instance: haveRef}
	missing := ExternType{Tag: ExternInstance, Instance: missingRef}

	assert.True(t, want.IsSubtypeOf(have, store), "a superset of exports satisfies the import")
	assert.False(t, want.IsSubtypeOf(missing, store), "an instance missing the required export cannot satisfy it")
}

func TestNamespacePrefixMatch(t *testing.T) {
	wasi := ParseNamespace("wasi:io")
	wasiFull := ParseNamespace("wasi:io:streams")
	other := ParseNamespace("custom:thing")

	assert.True(t, wasi.prefixMatches(wasiFull))
	assert.False(t, wasiFull.prefixMatches(wasi))
	assert.False(t, wasi.prefixMatches(other))
}

func TestMatchImportResolvesAgainstInstanceNamespaceAndExports(t *testing.T) {
	store := NewTypeStore(verify.Standard)
	fnType := ExternType{Tag: ExternFunc, Func: FuncType{Params: []api.ValueType{api.ValueTypeI32}}}

	instance := InstanceType{
		Namespace: ParseNamespace("wasi:io"),
		Exports:   []Export{{Name: "write", Type: fnType}},
	}

	imp := Import{
		Namespace: ParseNamespace("wasi"),
		Name:      "write",
		Type:      fnType,
	}
	assert.True(t, MatchImport(imp, instance, store))

	wrongName := Import{Namespace: ParseNamespace("wasi"), Name: "read", Type: fnType}
	assert.False(t, MatchImport(wrongName, instance, store))

	wrongNamespace := Import{Namespace: ParseNamespace("custom"), Name: "write", Type: fnType}
	assert.False(t, MatchImport(wrongNamespace, instance, store))
}

func TestTypeStoreRoundTripsExternTypesByRef(t *testing.T) {
	store := NewTypeStore(verify.Standard)
	want := ExternType{Tag: ExternMemory, MemoryRef: 7}

	ref, err := store.AddExternType(want)
	require.NoError(t, err)

	got, ok := store.LookupExternType(ref)
	require.True(t, ok)
	assert.Equal(t, want, got)

	_, ok = store.LookupExternType(TypeRef(999))
	assert.False(t, ok)
}

func TestTypeStoreEnforcesCapacity(t *testing.T) {
	store := NewTypeStore(verify.Standard)
	for i := 0; i < MaxComponentTypes; i++ {
		_, err := store.AddExternType(ExternType{Tag: ExternTypeDef, TypeDef: TypeRef(i)})
		require.NoError(t, err)
	}
	_, err := store.AddExternType(ExternType{Tag: ExternTypeDef})
	assert.Error(t, err, "the store is bounded at MaxComponentTypes")
}
