package leb128

import (
	"errors"
	"io"

	"github.com/deploymenttheory/go-dex/internal/types"
)

// MaxBytes is the longest encoding accepted for a 32-bit value.
const MaxBytes = 5

// Cursor reads bytes from an absolute position in a ReaderAt. Every read is
// positional, so a cursor never depends on state left by another reader.
type Cursor struct {
	r      io.ReaderAt
	offset int64
	buf    [1]byte
}

// NewCursor creates a Cursor positioned at offset
func NewCursor(r io.ReaderAt, offset int64) *Cursor {
	return &Cursor{r: r, offset: offset}
}

// Offset returns the position of the next byte to be read
func (c *Cursor) Offset() int64 {
	return c.offset
}

// Seek moves the cursor to an absolute offset
func (c *Cursor) Seek(offset int64) {
	c.offset = offset
}

// ReadByte reads one byte and advances the cursor. A short read is fatal.
func (c *Cursor) ReadByte() (byte, error) {
	n, err := c.r.ReadAt(c.buf[:], c.offset)
	if n != 1 {
		if err == nil || errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return 0, &types.IOError{Op: "read leb128", Offset: c.offset, Size: 1, Err: err}
	}
	c.offset++
	return c.buf[0], nil
}

// ReadBytes reads exactly n bytes and advances the cursor
func (c *Cursor) ReadBytes(n int) ([]byte, error) {
	out := make([]byte, n)
	if n == 0 {
		return out, nil
	}
	got, err := c.r.ReadAt(out, c.offset)
	if got != n {
		if err == nil || errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return nil, &types.IOError{Op: "read bytes", Offset: c.offset, Size: n, Err: err}
	}
	c.offset += int64(n)
	return out, nil
}

// ReadUnsigned decodes a uleb128 value. At most five bytes are consumed; the
// fifth byte is shifted in whole, so garbage in its high bits is tolerated.
func ReadUnsigned(c *Cursor) (uint32, error) {
	var result uint32
	for i := 0; i < MaxBytes; i++ {
		b, err := c.ReadByte()
		if err != nil {
			return 0, err
		}
		if i == MaxBytes-1 {
			result |= uint32(b) << 28
			break
		}
		result |= uint32(b&0x7f) << (7 * i)
		if b <= 0x7f {
			break
		}
	}
	return result, nil
}

// signShift is the left shift that moves the highest group of an n-group
// value to bit 31.
var signShift = [MaxBytes + 1]uint{0, 25, 18, 11, 4, 0}

// ReadSigned decodes a sleb128 value with the same byte-consumption shape
// as ReadUnsigned.
func ReadSigned(c *Cursor) (int32, error) {
	var result uint32
	groups := 0
	for i := 0; i < MaxBytes; i++ {
		b, err := c.ReadByte()
		if err != nil {
			return 0, err
		}
		groups++
		if i == MaxBytes-1 {
			result |= uint32(b) << 28
			break
		}
		result |= uint32(b&0x7f) << (7 * i)
		if b <= 0x7f {
			break
		}
	}
	shift := signShift[groups]
	return int32(result<<shift) >> shift, nil
}

// ReadUnsignedP1 decodes a uleb128p1 value, the encoded value minus one.
// NoIndex-style sentinels decode to -1.
func ReadUnsignedP1(c *Cursor) (int32, error) {
	v, err := ReadUnsigned(c)
	if err != nil {
		return 0, err
	}
	return int32(v - 1), nil
}
