package leb128

import (
	"bytes"
	"errors"
	"math"
	"testing"

	"github.com/deploymenttheory/go-dex/internal/dextest"
	"github.com/deploymenttheory/go-dex/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadUnsigned(t *testing.T) {
	tests := []struct {
		name     string
		input    []byte
		expected uint32
		consumed int64
	}{
		{"Zero", []byte{0x00}, 0, 1},
		{"MaxSingleByte", []byte{0x7f}, 127, 1},
		{"TwoBytes", []byte{0x80, 0x01}, 128, 2},
		{"MaxUint32", []byte{0xff, 0xff, 0xff, 0xff, 0x0f}, 0xffffffff, 5},
		{"TrailingBytesUntouched", []byte{0x01, 0x02, 0x03}, 1, 1},
		{"GarbageInFifthByteHighBits", []byte{0xff, 0xff, 0xff, 0xff, 0xff}, 0xffffffff, 5},
		{"FifthByteStopsEvenWithContinuation", []byte{0x80, 0x80, 0x80, 0x80, 0x81, 0x7f}, 0x10000000, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCursor(bytes.NewReader(tt.input), 0)
			got, err := ReadUnsigned(c)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
			assert.Equal(t, tt.consumed, c.Offset())
		})
	}
}

func TestReadUnsignedRoundTrip(t *testing.T) {
	values := []uint32{0, 1, 63, 64, 127, 128, 255, 256, 16383, 16384, 1<<21 - 1, 1 << 21, 1<<28 - 1, 1 << 28, math.MaxInt32, math.MaxUint32}
	for v := uint32(1); v != 0 && v < math.MaxUint32/3; v *= 3 {
		values = append(values, v, v+1, v-1)
	}

	for _, v := range values {
		encoded := dextest.AppendUleb128(nil, v)
		c := NewCursor(bytes.NewReader(encoded), 0)
		got, err := ReadUnsigned(c)
		require.NoError(t, err)
		assert.Equal(t, v, got, "value %d", v)
		assert.Equal(t, int64(len(encoded)), c.Offset(), "value %d", v)
	}
}

func TestReadSigned(t *testing.T) {
	tests := []struct {
		name     string
		input    []byte
		expected int32
		consumed int64
	}{
		{"MinusOne", []byte{0x7f}, -1, 1},
		{"Zero", []byte{0x00}, 0, 1},
		{"SixtyThree", []byte{0x3f}, 63, 1},
		{"MinusSixtyFour", []byte{0x40}, -64, 1},
		{"SixtyFourTwoBytes", []byte{0xc0, 0x00}, 64, 2},
		{"MinusOneTwentyNine", []byte{0xff, 0x7e}, -129, 2},
		{"MinInt32", []byte{0x80, 0x80, 0x80, 0x80, 0x78}, math.MinInt32, 5},
		{"MaxInt32", []byte{0xff, 0xff, 0xff, 0xff, 0x07}, math.MaxInt32, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCursor(bytes.NewReader(tt.input), 0)
			got, err := ReadSigned(c)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
			assert.Equal(t, tt.consumed, c.Offset())
		})
	}
}

func TestReadSignedRoundTrip(t *testing.T) {
	values := []int32{0, 1, -1, 63, -64, 64, -65, 8191, -8192, 8192, math.MaxInt32, math.MinInt32}
	for _, v := range values {
		encoded := dextest.AppendSleb128(nil, v)
		c := NewCursor(bytes.NewReader(encoded), 0)
		got, err := ReadSigned(c)
		require.NoError(t, err)
		assert.Equal(t, v, got, "value %d", v)
	}
}

func TestReadUnsignedP1(t *testing.T) {
	c := NewCursor(bytes.NewReader([]byte{0x00, 0x05}), 0)
	got, err := ReadUnsignedP1(c)
	require.NoError(t, err)
	assert.Equal(t, int32(-1), got)

	got, err = ReadUnsignedP1(c)
	require.NoError(t, err)
	assert.Equal(t, int32(4), got)
}

func TestShortReadIsFatal(t *testing.T) {
	t.Run("Unsigned", func(t *testing.T) {
		c := NewCursor(bytes.NewReader([]byte{0x80, 0x80}), 0)
		_, err := ReadUnsigned(c)
		require.Error(t, err)
		assert.True(t, errors.Is(err, types.ErrFatalIO))
	})
	t.Run("Signed", func(t *testing.T) {
		c := NewCursor(bytes.NewReader(nil), 0)
		_, err := ReadSigned(c)
		require.Error(t, err)
		assert.True(t, errors.Is(err, types.ErrFatalIO))
	})
	t.Run("ReadBytes", func(t *testing.T) {
		c := NewCursor(bytes.NewReader([]byte{1, 2, 3}), 1)
		_, err := c.ReadBytes(3)
		require.Error(t, err)
		assert.True(t, errors.Is(err, types.ErrFatalIO))
		assert.Equal(t, int64(1), c.Offset())
	})
}

func TestCursorIsPositional(t *testing.T) {
	r := bytes.NewReader([]byte{0x05, 0x80, 0x01, 0x07})
	a := NewCursor(r, 1)
	b := NewCursor(r, 0)

	vb, err := ReadUnsigned(b)
	require.NoError(t, err)
	va, err := ReadUnsigned(a)
	require.NoError(t, err)

	assert.Equal(t, uint32(5), vb)
	assert.Equal(t, uint32(128), va)
	assert.Equal(t, int64(3), a.Offset())

	a.Seek(3)
	v, err := ReadUnsigned(a)
	require.NoError(t, err)
	assert.Equal(t, uint32(7), v)
}
