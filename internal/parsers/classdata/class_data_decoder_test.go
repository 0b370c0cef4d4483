package classdata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deploymenttheory/go-dex/internal/dextest"
	"github.com/deploymenttheory/go-dex/internal/disk"
	"github.com/deploymenttheory/go-dex/internal/parsers/accessflags"
	"github.com/deploymenttheory/go-dex/internal/parsers/descriptor"
	"github.com/deploymenttheory/go-dex/internal/parsers/header"
	"github.com/deploymenttheory/go-dex/internal/parsers/pools"
	"github.com/deploymenttheory/go-dex/internal/parsers/resolver"
	"github.com/deploymenttheory/go-dex/internal/types"
)

type fixture struct {
	src     *disk.MemorySource
	classes *pools.ClassDefPool
	dec     func(Options) *Decoder
}

func newFixture(t *testing.T, b *dextest.Builder) *fixture {
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
	cp, err := pools.NewClassDefPool(src, h)
	require.NoError(t, err)

	res := resolver.NewResolver(src, resolver.Pools{Strings: sp, Types: tp, Protos: pp, Fields: fp, Methods: mp}, descriptor.NewRenderer(sp))
	return &fixture{
		src:     src,
		classes: cp,
		dec: func(opts Options) *Decoder {
			return NewDecoder(src, res, accessflags.NewRenderer(), fp.Len(), mp.Len(), opts)
		},
	}
}

func (f *fixture) classDataOff(t *testing.T, idx uint32) uint32 {
	t.Helper()
	c, err := f.classes.Get(idx)
	require.NoError(t, err)
	return c.ClassDataOff
}

// multiMemberBuilder has three fields and three methods on Hello
func multiMemberBuilder() *dextest.Builder {
	b := dextest.MinimalBuilder()
	b.Fields = append(b.Fields,
		types.FieldIDItem{ClassIdx: dextest.TypeHello, TypeIdx: dextest.TypeObject, NameIdx: dextest.StrCount},
		types.FieldIDItem{ClassIdx: dextest.TypeHello, TypeIdx: dextest.TypeInt, NameIdx: dextest.StrRun},
	)
	b.Methods = append(b.Methods,
		types.MethodIDItem{ClassIdx: dextest.TypeHello, ProtoIdx: 0, NameIdx: dextest.StrCount},
		types.MethodIDItem{ClassIdx: dextest.TypeHello, ProtoIdx: 0, NameIdx: dextest.StrSource},
	)
	return b
}

func TestDecode_Minimal(t *testing.T) {
	f := newFixture(t, dextest.MinimalBuilder())
	off := f.classDataOff(t, 0)
	require.NotZero(t, off)

	cd, err := f.dec(DefaultOptions()).Decode(off)
	require.NoError(t, err)
	assert.True(t, cd.Present)
	assert.Equal(t, off, cd.Offset)
	assert.Equal(t, types.ClassDataHeader{StaticFieldsSize: 1, DirectMethodsSize: 1}, cd.Header)

	require.Len(t, cd.StaticFields, 1)
	assert.Equal(t, "int count", cd.StaticFields[0].Declaration)
	assert.Equal(t, []string{"static"}, cd.StaticFields[0].Flags)
	assert.Equal(t, "static int count", cd.StaticFields[0].String())

	require.Len(t, cd.DirectMethods, 1)
	assert.Equal(t, "void run()", cd.DirectMethods[0].Declaration)
	assert.Equal(t, []string{"public", "static"}, cd.DirectMethods[0].Flags)
	assert.Equal(t, uint32(0x200), cd.DirectMethods[0].CodeOff)

	assert.Empty(t, cd.InstanceFields)
	assert.Empty(t, cd.VirtualMethods)
	assert.Equal(t, cd.StaticFields, cd.Section(types.SectionStaticFields))
}

func TestDecode_Absent(t *testing.T) {
	f := newFixture(t, dextest.MinimalBuilder())
	cd, err := f.dec(DefaultOptions()).Decode(0)
	require.NoError(t, err)
	assert.False(t, cd.Present)
	assert.Empty(t, cd.StaticFields)
}

func TestDecode_DeltaResetsPerSection(t *testing.T) {
	b := multiMemberBuilder()
	b.Classes[0].Data = &dextest.ClassData{
		StaticFields:   []dextest.Field{{Index: 0, AccessFlags: types.AccStatic}, {Index: 2, AccessFlags: types.AccStatic}},
		InstanceFields: []dextest.Field{{Index: 1, AccessFlags: types.AccPrivate}},
		DirectMethods:  []dextest.Method{{Index: 0, AccessFlags: types.AccPrivate}, {Index: 1, AccessFlags: types.AccPrivate}},
		VirtualMethods: []dextest.Method{{Index: 2, AccessFlags: types.AccPublic, CodeOff: 0x300}},
	}
	f := newFixture(t, b)

	cd, err := f.dec(DefaultOptions()).Decode(f.classDataOff(t, 0))
	require.NoError(t, err)

	indices := func(ms []types.Member) []uint32 {
		var out []uint32
		for _, m := range ms {
			out = append(out, m.Index)
		}
		return out
	}
	assert.Equal(t, []uint32{0, 2}, indices(cd.StaticFields))
	assert.Equal(t, []uint32{1}, indices(cd.InstanceFields))
	assert.Equal(t, []uint32{0, 1}, indices(cd.DirectMethods))
	assert.Equal(t, []uint32{2}, indices(cd.VirtualMethods))

	assert.Equal(t, "int run", cd.StaticFields[1].Declaration)
	assert.Equal(t, "java.lang.Object count", cd.InstanceFields[0].Declaration)
	assert.Equal(t, "void Hello.java()", cd.VirtualMethods[0].Declaration)
	assert.Equal(t, uint32(0x300), cd.VirtualMethods[0].CodeOff)
}

func TestDecode_VirtualMethodCount(t *testing.T) {
	b := multiMemberBuilder()
	b.Classes[0].Data = &dextest.ClassData{
		DirectMethods:  []dextest.Method{{Index: 0, AccessFlags: types.AccPublic}},
		VirtualMethods: []dextest.Method{{Index: 1, AccessFlags: types.AccPublic}, {Index: 2, AccessFlags: types.AccPublic}},
	}
	f := newFixture(t, b)
	off := f.classDataOff(t, 0)

	t.Run("Corrected", func(t *testing.T) {
		cd, err := f.dec(Options{FixVirtualMethodCount: true}).Decode(off)
		require.NoError(t, err)
		assert.Len(t, cd.VirtualMethods, 2)
	})

	t.Run("Historical", func(t *testing.T) {
		cd, err := f.dec(Options{FixVirtualMethodCount: false}).Decode(off)
		require.NoError(t, err)
		assert.Equal(t, uint32(2), cd.Header.VirtualMethodsSize)
		require.Len(t, cd.VirtualMethods, 1)
		assert.Equal(t, uint32(1), cd.VirtualMethods[0].Index)
	})
}

func TestDecode_Errors(t *testing.T) {
	t.Run("FieldIndexOutOfRange", func(t *testing.T) {
		b := dextest.MinimalBuilder()
		b.Classes[0].Data = &dextest.ClassData{StaticFields: []dextest.Field{{Index: 5, AccessFlags: types.AccStatic}}}
		f := newFixture(t, b)

		_, err := f.dec(DefaultOptions()).Decode(f.classDataOff(t, 0))
		require.Error(t, err)
		assert.ErrorIs(t, err, types.ErrInvalidReference)
		assert.False(t, types.IsFatal(err))
	})

	t.Run("MethodIndexOutOfRange", func(t *testing.T) {
		b := dextest.MinimalBuilder()
		b.Classes[0].Data = &dextest.ClassData{VirtualMethods: []dextest.Method{{Index: 1}}}
		f := newFixture(t, b)

		_, err := f.dec(DefaultOptions()).Decode(f.classDataOff(t, 0))
		assert.ErrorIs(t, err, types.ErrInvalidReference)
	})

	t.Run("FieldIndexSumPast32Bits", func(t *testing.T) {
		b := multiMemberBuilder()
		b.Classes[0].Data = nil
		// two static fields: diff 2, then diff 0xFFFFFFFE; the sum is 2^32
		b.Classes[0].RawData = []byte{
			0x02, 0x00, 0x00, 0x00,
			0x02, 0x08,
			0xfe, 0xff, 0xff, 0xff, 0x0f, 0x08,
		}
		f := newFixture(t, b)

		_, err := f.dec(DefaultOptions()).Decode(f.classDataOff(t, 0))
		require.Error(t, err)
		assert.ErrorIs(t, err, types.ErrInvalidReference)

		var ref *types.InvalidReferenceError
		require.ErrorAs(t, err, &ref)
		assert.Equal(t, "field", ref.Pool)
		assert.Equal(t, uint64(1)<<32, ref.Index)
		assert.Equal(t, uint32(3), ref.Size)
	})

	t.Run("MethodIndexSumPast32Bits", func(t *testing.T) {
		b := multiMemberBuilder()
		b.Classes[0].Data = nil
		// two direct methods: diff 1, then diff 0xFFFFFFFF; the sum is 2^32
		b.Classes[0].RawData = []byte{
			0x00, 0x00, 0x02, 0x00,
			0x01, 0x09, 0x00,
			0xff, 0xff, 0xff, 0xff, 0x0f, 0x09, 0x00,
		}
		f := newFixture(t, b)

		_, err := f.dec(DefaultOptions()).Decode(f.classDataOff(t, 0))
		var ref *types.InvalidReferenceError
		require.ErrorAs(t, err, &ref)
		assert.Equal(t, "method", ref.Pool)
		assert.Equal(t, uint64(1)<<32, ref.Index)
	})

	t.Run("InvalidAccessFlags", func(t *testing.T) {
		b := dextest.MinimalBuilder()
		b.Classes[0].Data = &dextest.ClassData{StaticFields: []dextest.Field{{Index: 0, AccessFlags: 0x40000000}}}
		f := newFixture(t, b)

		_, err := f.dec(DefaultOptions()).Decode(f.classDataOff(t, 0))
		assert.ErrorIs(t, err, types.ErrInvalidAccessFlags)
	})

	t.Run("TruncatedStream", func(t *testing.T) {
		f := newFixture(t, dextest.MinimalBuilder())

		_, err := f.dec(DefaultOptions()).Decode(uint32(f.src.Size() - 1))
		require.Error(t, err)
		assert.ErrorIs(t, err, types.ErrFatalIO)
		assert.True(t, types.IsFatal(err))
	})

	t.Run("RawRecord", func(t *testing.T) {
		b := dextest.MinimalBuilder()
		b.Classes[0].Data = nil
		// one instance field, diff 0, public
		b.Classes[0].RawData = []byte{0x00, 0x01, 0x00, 0x00, 0x00, 0x01}
		f := newFixture(t, b)

		cd, err := f.dec(DefaultOptions()).Decode(f.classDataOff(t, 0))
		require.NoError(t, err)
		require.Len(t, cd.InstanceFields, 1)
		assert.Equal(t, "public int count", cd.InstanceFields[0].String())
	})
}
