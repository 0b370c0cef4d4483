package pools

import (
	"fmt"

	"github.com/deploymenttheory/go-dex/internal/interfaces"
	"github.com/deploymenttheory/go-dex/internal/parsers/leb128"
	"github.com/deploymenttheory/go-dex/internal/types"
)

// table is an immutable array of fixed-size records read once from the
// offset and count declared in the header.
type table[T any] struct {
	name  string
	items []T
}

// readTable reads count records of recordSize bytes starting at off, in
// index order, with a single positional read.
func readTable[T any](src interfaces.ByteSource, name string, off, count uint32, recordSize int, decode func([]byte) T) (*table[T], error) {
	t := &table[T]{name: name, items: make([]T, 0, min(int(count), 1<<16))}
	if count == 0 {
		return t, nil
	}

	total := int64(count) * int64(recordSize)
	if int64(off)+total > src.Size() {
		return nil, &types.IOError{
			Op:     fmt.Sprintf("read %s table", name),
			Offset: int64(off),
			Size:   int(total),
		}
	}

	data, err := leb128.NewCursor(src, int64(off)).ReadBytes(int(total))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s table: %w", name, err)
	}

	for i := 0; i < int(count); i++ {
		t.items = append(t.items, decode(data[i*recordSize:(i+1)*recordSize]))
	}
	return t, nil
}

// Len returns the declared number of records
func (t *table[T]) Len() uint32 {
	return uint32(len(t.items))
}

// Get returns the record at idx or an InvalidReferenceError
func (t *table[T]) Get(idx uint32) (T, error) {
	if idx >= uint32(len(t.items)) {
		var zero T
		return zero, &types.InvalidReferenceError{Pool: t.name, Index: uint64(idx), Size: uint32(len(t.items))}
	}
	return t.items[idx], nil
}

// All returns a copy of every record in index order
func (t *table[T]) All() []T {
	out := make([]T, len(t.items))
	copy(out, t.items)
	return out
}
