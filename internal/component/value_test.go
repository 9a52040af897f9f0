package component

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.bytecodealliance.org/wit"

	"github.com/pulseengine/wrt/internal/verify"
	"github.com/pulseengine/wrt/wrterr"
)

func TestKindFromWitPrimitives(t *testing.T) {
	cases := []struct {
		in   wit.Type
		want ValueKind
	}{
		{wit.Bool{}, KindBool},
		{wit.U8{}, KindU8},
		{wit.S8{}, KindS8},
		{wit.U16{}, KindU16},
		{wit.S16{}, KindS16},
		{wit.U32{}, KindU32},
		{wit.S32{}, KindS32},
		{wit.U64{}, KindU64},
		{wit.S64{}, KindS64},
		{wit.F32{}, KindF32},
		{wit.F64{}, KindF64},
		{wit.Char{}, KindChar},
		{wit.String{}, KindString},
	}
	for _, c := range cases {
		got, err := KindFromWit(c.in)
		require.NoError(t, err)
		assert.Equal(t, c.want, got)
	}
}

func TestKindFromWitTypeDefVariants(t *testing.T) {
	assertKind := func(td *wit.TypeDef, want ValueKind) {
		got, err := KindFromWit(td)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	assertKind(&wit.TypeDef{Kind: &wit.Record{}}, KindRecord)
	assertKind(&wit.TypeDef{Kind: &wit.List{}}, KindList)
	assertKind(&wit.TypeDef{Kind: &wit.Tuple{}}, KindTuple)
	assertKind(&wit.TypeDef{Kind: &wit.Enum{}}, KindEnum)
	assertKind(&wit.TypeDef{Kind: &wit.Flags{}}, KindFlags)
	assertKind(&wit.TypeDef{Kind: &wit.Option{}}, KindOption)
	assertKind(&wit.TypeDef{Kind: &wit.Result{}}, KindResult)
	assertKind(&wit.TypeDef{Kind: &wit.Variant{}}, KindVariant)
	assertKind(&wit.TypeDef{Kind: &wit.Own{}}, KindOwn)
	assertKind(&wit.TypeDef{Kind: &wit.Borrow{}}, KindBorrow)
}

func TestComponentValueMatchesWitType(t *testing.T) {
	ok, err := I32Value(1).MatchesWitType(wit.S32{})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = StringValue("hi").MatchesWitType(wit.S32{})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPrepareCallValidatesAgainstWitSignature(t *testing.T) {
	m := NewCallContextManager(verify.Standard)
	ctx := CallContext{
		SourceInstance: 1,
		TargetInstance: 2,
		Parameters:     []ComponentValue{I32Value(1), StringValue("hi")},
		ParameterTypes: []wit.Type{wit.S32{}, wit.String{}},
	}
	_, err := m.PrepareCall(ctx)
	require.NoError(t, err)

	mismatched := CallContext{
		SourceInstance: 1,
		TargetInstance: 2,
		Parameters:     []ComponentValue{I32Value(1)},
		ParameterTypes: []wit.Type{wit.String{}},
	}
	_, err = m.PrepareCall(mismatched)
	require.Error(t, err)
	verr, ok := err.(*wrterr.ValidationError)
	require.True(t, ok)
	assert.Equal(t, wrterr.ValidationParameterTypeMismatch, verr.Kind)

	wrongCount := CallContext{
		SourceInstance: 1,
		TargetInstance: 2,
		Parameters:     []ComponentValue{I32Value(1), StringValue("hi")},
		ParameterTypes: []wit.Type{wit.S32{}},
	}
	_, err = m.PrepareCall(wrongCount)
	require.Error(t, err)
	verr, ok = err.(*wrterr.ValidationError)
	require.True(t, ok)
	assert.Equal(t, wrterr.ValidationParameterTypeMismatch, verr.Kind)
}
