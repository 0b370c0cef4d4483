package pools

import (
	"encoding/binary"
	"fmt"

	"github.com/deploymenttheory/go-dex/internal/interfaces"
	"github.com/deploymenttheory/go-dex/internal/parsers/leb128"
	"github.com/deploymenttheory/go-dex/internal/types"
)

// ReadTypeList decodes the type_list at off: a uint32 size followed by
// size uint16 type indices. Offset 0 means an empty list.
func ReadTypeList(src interfaces.ByteSource, off uint32) (types.TypeList, error) {
	if off == 0 {
		return nil, nil
	}

	c := leb128.NewCursor(src, int64(off))
	raw, err := c.ReadBytes(4)
	if err != nil {
		return nil, fmt.Errorf("failed to read type list size: %w", err)
	}
	size := binary.LittleEndian.Uint32(raw)
	if size == 0 {
		return nil, nil
	}
	if int64(size)*types.TypeItemSize > src.Size()-c.Offset() {
		return nil, &types.IOError{Op: "read type list", Offset: c.Offset(), Size: int(size) * types.TypeItemSize}
	}

	data, err := c.ReadBytes(int(size) * types.TypeItemSize)
	if err != nil {
		return nil, fmt.Errorf("failed to read type list items: %w", err)
	}

	list := make(types.TypeList, size)
	for i := range list {
		list[i] = binary.LittleEndian.Uint16(data[i*2 : i*2+2])
	}
	return list, nil
}
