package resolver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deploymenttheory/go-dex/internal/dextest"
	"github.com/deploymenttheory/go-dex/internal/disk"
	"github.com/deploymenttheory/go-dex/internal/parsers/descriptor"
	"github.com/deploymenttheory/go-dex/internal/parsers/header"
	"github.com/deploymenttheory/go-dex/internal/parsers/pools"
	"github.com/deploymenttheory/go-dex/internal/types"
)

func newTestResolver(t *testing.T, b *dextest.Builder) *Resolver {
	t.Helper()
	src := disk.NewMemorySource("classes.dex", b.Build())
	hr, err := header.NewHeaderReader(src, header.Options{})
	require.NoError(t, err)
	h := hr.Header()

	sp, err := pools.NewStringPool(src, h)
	require.NoError(t, err)
	tp, err := pools.NewTypePool(src, h, sp)
	require.NoError(t, err)
	pp, err := pools.NewProtoPool(src, h)
	require.NoError(t, err)
	fp, err := pools.NewFieldPool(src, h)
	require.NoError(t, err)
	mp, err := pools.NewMethodPool(src, h)
	require.NoError(t, err)

	return NewResolver(src, Pools{Strings: sp, Types: tp, Protos: pp, Fields: fp, Methods: mp}, descriptor.NewRenderer(sp))
}

func TestResolver_Minimal(t *testing.T) {
	r := newTestResolver(t, dextest.MinimalBuilder())

	name, err := r.ClassName(dextest.TypeHello)
	require.NoError(t, err)
	assert.Equal(t, "Hello", name)

	obj, err := r.TypeName(dextest.TypeObject)
	require.NoError(t, err)
	assert.Equal(t, "java.lang.Object", obj)

	field, err := r.FieldDeclaration(0)
	require.NoError(t, err)
	assert.Equal(t, "int count", field)

	ref, err := r.FieldReference(0)
	require.NoError(t, err)
	assert.Equal(t, "Hello int count", ref)

	method, err := r.MethodDeclaration(0)
	require.NoError(t, err)
	assert.Equal(t, "void run()", method)

	mref, err := r.MethodReference(0)
	require.NoError(t, err)
	assert.Equal(t, "Hello void run()", mref)

	proto, err := r.Proto(0)
	require.NoError(t, err)
	assert.Equal(t, "V", proto.Shorty)
	assert.Empty(t, proto.Parameters)
}

func TestResolver_Parameters(t *testing.T) {
	b := dextest.MinimalBuilder()
	b.Strings = append(b.Strings, "[Ljava/lang/String;", "main", "VIL")
	b.Types = append(b.Types, 8)
	b.Protos = append(b.Protos, dextest.Proto{Shorty: 10, ReturnType: dextest.TypeVoid, Params: []uint16{dextest.TypeInt, 4}})
	b.Methods = append(b.Methods, types.MethodIDItem{ClassIdx: dextest.TypeHello, ProtoIdx: 1, NameIdx: 9})
	r := newTestResolver(t, b)

	decl, err := r.MethodDeclaration(1)
	require.NoError(t, err)
	assert.Equal(t, "void main(int, java.lang.String[])", decl)

	proto, err := r.Proto(1)
	require.NoError(t, err)
	assert.Equal(t, "VIL", proto.Shorty)
	assert.Equal(t, "(int, java.lang.String[])", proto.Signature())
}

func TestResolver_InvalidReferences(t *testing.T) {
	t.Run("FieldIndex", func(t *testing.T) {
		r := newTestResolver(t, dextest.MinimalBuilder())
		_, err := r.FieldDeclaration(5)
		assert.ErrorIs(t, err, types.ErrInvalidReference)
	})

	t.Run("MethodIndex", func(t *testing.T) {
		r := newTestResolver(t, dextest.MinimalBuilder())
		_, err := r.MethodDeclaration(1)
		assert.ErrorIs(t, err, types.ErrInvalidReference)
	})

	t.Run("FieldTypeIndex", func(t *testing.T) {
		b := dextest.MinimalBuilder()
		b.Fields[0].TypeIdx = 40
		r := newTestResolver(t, b)
		_, err := r.FieldDeclaration(0)
		assert.ErrorIs(t, err, types.ErrInvalidReference)
	})

	t.Run("FieldNameIndex", func(t *testing.T) {
		b := dextest.MinimalBuilder()
		b.Fields[0].NameIdx = 400
		r := newTestResolver(t, b)
		_, err := r.FieldDeclaration(0)
		assert.ErrorIs(t, err, types.ErrInvalidReference)
	})

	t.Run("ProtoIndex", func(t *testing.T) {
		b := dextest.MinimalBuilder()
		b.Methods[0].ProtoIdx = 3
		r := newTestResolver(t, b)
		_, err := r.MethodDeclaration(0)
		assert.ErrorIs(t, err, types.ErrInvalidReference)
	})

	t.Run("ParameterTypeIndex", func(t *testing.T) {
		b := dextest.MinimalBuilder()
		b.Protos[0].Params = []uint16{99}
		r := newTestResolver(t, b)
		_, err := r.MethodDeclaration(0)
		assert.ErrorIs(t, err, types.ErrInvalidReference)
	})

	t.Run("BadDescriptor", func(t *testing.T) {
		b := dextest.MinimalBuilder()
		b.Strings[dextest.StrInt] = "X"
		r := newTestResolver(t, b)
		_, err := r.FieldDeclaration(0)
		assert.ErrorIs(t, err, types.ErrBadTypeDescriptor)
	})
}
