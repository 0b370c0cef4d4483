package header

import (
	"encoding/binary"
	"fmt"

	"github.com/deploymenttheory/go-dex/internal/interfaces"
	"github.com/deploymenttheory/go-dex/internal/parsers/leb128"
	"github.com/deploymenttheory/go-dex/internal/types"
)

// ReadMapList decodes the map_list at h.MapOff. A zero offset yields no items.
func ReadMapList(src interfaces.ByteSource, h *types.Header) ([]types.MapItem, error) {
	if h.MapOff == 0 {
		return nil, nil
	}

	c := leb128.NewCursor(src, int64(h.MapOff))
	raw, err := c.ReadBytes(4)
	if err != nil {
		return nil, fmt.Errorf("failed to read map list size: %w", err)
	}
	count := binary.LittleEndian.Uint32(raw)

	if int64(count)*types.MapItemSize > src.Size() {
		return nil, &types.IOError{Op: "read map list", Offset: int64(h.MapOff) + 4, Size: int(count) * types.MapItemSize}
	}

	data, err := c.ReadBytes(int(count) * types.MapItemSize)
	if err != nil {
		return nil, fmt.Errorf("failed to read map list items: %w", err)
	}

	items := make([]types.MapItem, count)
	for i := range items {
		off := i * types.MapItemSize
		items[i] = types.MapItem{
			Type:   types.MapItemType(binary.LittleEndian.Uint16(data[off : off+2])),
			Unused: binary.LittleEndian.Uint16(data[off+2 : off+4]),
			Size:   binary.LittleEndian.Uint32(data[off+4 : off+8]),
			Offset: binary.LittleEndian.Uint32(data[off+8 : off+12]),
		}
	}
	return items, nil
}
