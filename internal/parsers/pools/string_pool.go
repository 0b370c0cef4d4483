package pools

import (
	"encoding/binary"
	"fmt"
	"strings"
	"sync"

	"github.com/deploymenttheory/go-dex/internal/interfaces"
	"github.com/deploymenttheory/go-dex/internal/parsers/leb128"
	"github.com/deploymenttheory/go-dex/internal/types"
)

// StringPool implements the StringPool interface. Entries hold only data
// offsets; string contents are decoded on first use and cached by index.
type StringPool struct {
	src     interfaces.ByteSource
	offsets *table[types.StringIDItem]

	mu    sync.Mutex
	cache map[uint32]string
}

// NewStringPool reads the string_ids table declared in h
func NewStringPool(src interfaces.ByteSource, h *types.Header) (*StringPool, error) {
	offsets, err := readTable(src, "string", h.StringIDsOff, h.StringIDsSize, types.StringIDItemSize,
		func(b []byte) types.StringIDItem {
			return types.StringIDItem{StringDataOff: binary.LittleEndian.Uint32(b)}
		})
	if err != nil {
		return nil, err
	}
	return &StringPool{src: src, offsets: offsets, cache: make(map[uint32]string)}, nil
}

// Len returns the declared number of strings
func (sp *StringPool) Len() uint32 {
	return sp.offsets.Len()
}

// DataOffset returns the string_data_off of entry idx
func (sp *StringPool) DataOffset(idx uint32) (uint32, error) {
	item, err := sp.offsets.Get(idx)
	if err != nil {
		return 0, err
	}
	return item.StringDataOff, nil
}

// String returns the raw bytes of string idx. The uleb128 prefix is the
// length; exactly that many bytes follow.
func (sp *StringPool) String(idx uint32) (string, error) {
	off, err := sp.DataOffset(idx)
	if err != nil {
		return "", err
	}

	sp.mu.Lock()
	s, ok := sp.cache[idx]
	sp.mu.Unlock()
	if ok {
		return s, nil
	}

	c := leb128.NewCursor(sp.src, int64(off))
	length, err := leb128.ReadUnsigned(c)
	if err != nil {
		return "", fmt.Errorf("failed to read length of string %d: %w", idx, err)
	}
	if int64(length) > sp.src.Size()-c.Offset() {
		return "", &types.IOError{Op: fmt.Sprintf("read string %d", idx), Offset: c.Offset(), Size: int(length)}
	}
	data, err := c.ReadBytes(int(length))
	if err != nil {
		return "", fmt.Errorf("failed to read string %d: %w", idx, err)
	}
	s = string(data)

	sp.mu.Lock()
	sp.cache[idx] = s
	sp.mu.Unlock()
	return s, nil
}

// Display returns string idx with every newline byte written as the two
// characters '\' 'n'. No other character is escaped.
func (sp *StringPool) Display(idx uint32) (string, error) {
	s, err := sp.String(idx)
	if err != nil {
		return "", err
	}
	return EscapeNewlines(s), nil
}

// EscapeNewlines rewrites '\n' as `\n` and leaves everything else untouched
func EscapeNewlines(s string) string {
	return strings.ReplaceAll(s, "\n", `\n`)
}
