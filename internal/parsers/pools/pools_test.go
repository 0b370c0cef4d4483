package pools

import (
	"encoding/binary"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deploymenttheory/go-dex/internal/dextest"
	"github.com/deploymenttheory/go-dex/internal/disk"
	"github.com/deploymenttheory/go-dex/internal/parsers/header"
	"github.com/deploymenttheory/go-dex/internal/types"
)

func openImage(t *testing.T, image []byte) (*disk.MemorySource, *types.Header) {
	t.Helper()
	src := disk.NewMemorySource("classes.dex", image)
	hr, err := header.NewHeaderReader(src, header.Options{})
	require.NoError(t, err)
	return src, hr.Header()
}

func TestStringPool(t *testing.T) {
	src, h := openImage(t, dextest.Minimal())

	sp, err := NewStringPool(src, h)
	require.NoError(t, err)
	assert.Equal(t, uint32(8), sp.Len())

	t.Run("ResolvesInOrder", func(t *testing.T) {
		want := []string{"I", "LHello;", "Ljava/lang/Object;", "V", "Hello.java", "count", "run", "V"}
		for i, w := range want {
			s, err := sp.String(uint32(i))
			require.NoError(t, err)
			assert.Equal(t, w, s)
		}
	})

	t.Run("DataOffsetsInsideFile", func(t *testing.T) {
		for i := uint32(0); i < sp.Len(); i++ {
			off, err := sp.DataOffset(i)
			require.NoError(t, err)
			assert.Less(t, int64(off), src.Size())
		}
	})

	t.Run("OutOfRange", func(t *testing.T) {
		_, err := sp.String(8)
		require.Error(t, err)
		assert.ErrorIs(t, err, types.ErrInvalidReference)

		var ref *types.InvalidReferenceError
		require.ErrorAs(t, err, &ref)
		assert.Equal(t, "string", ref.Pool)
		assert.Equal(t, uint32(8), ref.Size)
	})

	t.Run("ConcurrentLookups", func(t *testing.T) {
		var wg sync.WaitGroup
		for g := 0; g < 8; g++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := uint32(0); i < sp.Len(); i++ {
					_, err := sp.String(i)
					assert.NoError(t, err)
				}
			}()
		}
		wg.Wait()
	})
}

func TestStringPool_Display(t *testing.T) {
	b := dextest.MinimalBuilder()
	b.Strings = append(b.Strings, "line one\nline two\ttab", "")
	src, h := openImage(t, b.Build())

	sp, err := NewStringPool(src, h)
	require.NoError(t, err)

	raw, err := sp.String(8)
	require.NoError(t, err)
	assert.Equal(t, "line one\nline two\ttab", raw)

	shown, err := sp.Display(8)
	require.NoError(t, err)
	assert.Equal(t, `line one\nline two`+"\ttab", shown)

	empty, err := sp.String(9)
	require.NoError(t, err)
	assert.Equal(t, "", empty)
}

func TestStringPool_LengthBeyondFile(t *testing.T) {
	image := dextest.Minimal()
	off := binary.LittleEndian.Uint32(image[types.HeaderSize:])
	// 0xff 0xff 0x03 decodes to 65535
	image[off], image[off+1], image[off+2] = 0xff, 0xff, 0x03
	src := disk.NewMemorySource("x", image)
	_, h := openImage(t, dextest.Minimal())

	sp, err := NewStringPool(src, h)
	require.NoError(t, err)

	_, err = sp.String(0)
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrFatalIO)
}

func TestTypePool(t *testing.T) {
	src, h := openImage(t, dextest.Minimal())
	sp, err := NewStringPool(src, h)
	require.NoError(t, err)

	tp, err := NewTypePool(src, h, sp)
	require.NoError(t, err)
	assert.Equal(t, uint32(4), tp.Len())

	d, err := tp.Descriptor(dextest.TypeObject)
	require.NoError(t, err)
	assert.Equal(t, "Ljava/lang/Object;", d)

	item, err := tp.Get(dextest.TypeHello)
	require.NoError(t, err)
	assert.Equal(t, uint32(dextest.StrHello), item.DescriptorIdx)

	_, err = tp.Descriptor(4)
	assert.ErrorIs(t, err, types.ErrInvalidReference)
}

func TestIDPools(t *testing.T) {
	b := dextest.MinimalBuilder()
	b.Protos = append(b.Protos, dextest.Proto{Shorty: dextest.StrShortyV, ReturnType: dextest.TypeInt, Params: []uint16{dextest.TypeInt, dextest.TypeObject}})
	src, h := openImage(t, b.Build())

	t.Run("Proto", func(t *testing.T) {
		pp, err := NewProtoPool(src, h)
		require.NoError(t, err)
		require.Equal(t, uint32(2), pp.Len())

		p0, err := pp.Get(0)
		require.NoError(t, err)
		assert.Equal(t, uint32(dextest.TypeVoid), p0.ReturnTypeIdx)
		assert.Zero(t, p0.ParametersOff)

		p1, err := pp.Get(1)
		require.NoError(t, err)
		assert.NotZero(t, p1.ParametersOff)

		params, err := ReadTypeList(src, p1.ParametersOff)
		require.NoError(t, err)
		assert.Equal(t, types.TypeList{dextest.TypeInt, dextest.TypeObject}, params)
	})

	t.Run("Field", func(t *testing.T) {
		fp, err := NewFieldPool(src, h)
		require.NoError(t, err)
		f, err := fp.Get(0)
		require.NoError(t, err)
		assert.Equal(t, types.FieldIDItem{ClassIdx: dextest.TypeHello, TypeIdx: dextest.TypeInt, NameIdx: dextest.StrCount}, f)

		_, err = fp.Get(1)
		assert.ErrorIs(t, err, types.ErrInvalidReference)
	})

	t.Run("Method", func(t *testing.T) {
		mp, err := NewMethodPool(src, h)
		require.NoError(t, err)
		m, err := mp.Get(0)
		require.NoError(t, err)
		assert.Equal(t, types.MethodIDItem{ClassIdx: dextest.TypeHello, ProtoIdx: 0, NameIdx: dextest.StrRun}, m)
	})

	t.Run("ClassDef", func(t *testing.T) {
		cp, err := NewClassDefPool(src, h)
		require.NoError(t, err)
		require.Equal(t, uint32(1), cp.Len())

		c, err := cp.Get(0)
		require.NoError(t, err)
		assert.Equal(t, uint32(dextest.TypeHello), c.ClassIdx)
		assert.Equal(t, types.AccPublic, c.AccessFlags)
		assert.Equal(t, uint32(dextest.TypeObject), c.SuperclassIdx)
		assert.Equal(t, uint32(dextest.StrSource), c.SourceFileIdx)
		assert.NotZero(t, c.ClassDataOff)
		assert.Zero(t, c.InterfacesOff)
		assert.Len(t, cp.All(), 1)
	})
}

func TestReadTable_Bounds(t *testing.T) {
	src, h := openImage(t, dextest.Minimal())

	bad := *h
	bad.MethodIDsSize = 0x100000
	_, err := NewMethodPool(src, &bad)
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrFatalIO)

	empty := *h
	empty.FieldIDsSize, empty.FieldIDsOff = 0, 0
	fp, err := NewFieldPool(src, &empty)
	require.NoError(t, err)
	assert.Zero(t, fp.Len())
}

func TestReadTypeList(t *testing.T) {
	b := dextest.MinimalBuilder()
	b.Classes[0].Interfaces = []uint16{dextest.TypeObject}
	src, h := openImage(t, b.Build())

	cp, err := NewClassDefPool(src, h)
	require.NoError(t, err)
	c, err := cp.Get(0)
	require.NoError(t, err)

	list, err := ReadTypeList(src, c.InterfacesOff)
	require.NoError(t, err)
	assert.Equal(t, types.TypeList{dextest.TypeObject}, list)

	none, err := ReadTypeList(src, 0)
	require.NoError(t, err)
	assert.Nil(t, none)

	_, err = ReadTypeList(src, uint32(src.Size()-2))
	assert.ErrorIs(t, err, types.ErrFatalIO)
}

func TestEscapeNewlines(t *testing.T) {
	assert.Equal(t, `a\nb\n`, EscapeNewlines("a\nb\n"))
	assert.Equal(t, "tab\there", EscapeNewlines("tab\there"))
}
