package pools

import (
	"encoding/binary"
	"fmt"

	"github.com/deploymenttheory/go-dex/internal/interfaces"
	"github.com/deploymenttheory/go-dex/internal/types"
)

// TypePool implements the TypePool interface
type TypePool struct {
	*table[types.TypeIDItem]
	strings interfaces.StringPool
}

// NewTypePool reads the type_ids table. Descriptor indices are resolved
// through strings on lookup.
func NewTypePool(src interfaces.ByteSource, h *types.Header, strings interfaces.StringPool) (*TypePool, error) {
	t, err := readTable(src, "type", h.TypeIDsOff, h.TypeIDsSize, types.TypeIDItemSize,
		func(b []byte) types.TypeIDItem {
			return types.TypeIDItem{DescriptorIdx: binary.LittleEndian.Uint32(b)}
		})
	if err != nil {
		return nil, err
	}
	return &TypePool{table: t, strings: strings}, nil
}

// Descriptor returns the descriptor string of type idx
func (tp *TypePool) Descriptor(idx uint32) (string, error) {
	item, err := tp.Get(idx)
	if err != nil {
		return "", err
	}
	s, err := tp.strings.String(item.DescriptorIdx)
	if err != nil {
		return "", fmt.Errorf("descriptor of type %d: %w", idx, err)
	}
	return s, nil
}

// ProtoPool implements the ProtoPool interface
type ProtoPool struct {
	*table[types.ProtoIDItem]
}

// NewProtoPool reads the proto_ids table
func NewProtoPool(src interfaces.ByteSource, h *types.Header) (*ProtoPool, error) {
	t, err := readTable(src, "proto", h.ProtoIDsOff, h.ProtoIDsSize, types.ProtoIDItemSize,
		func(b []byte) types.ProtoIDItem {
			return types.ProtoIDItem{
				ShortyIdx:     binary.LittleEndian.Uint32(b[0:4]),
				ReturnTypeIdx: binary.LittleEndian.Uint32(b[4:8]),
				ParametersOff: binary.LittleEndian.Uint32(b[8:12]),
			}
		})
	if err != nil {
		return nil, err
	}
	return &ProtoPool{table: t}, nil
}

// FieldPool implements the FieldPool interface
type FieldPool struct {
	*table[types.FieldIDItem]
}

// NewFieldPool reads the field_ids table
func NewFieldPool(src interfaces.ByteSource, h *types.Header) (*FieldPool, error) {
	t, err := readTable(src, "field", h.FieldIDsOff, h.FieldIDsSize, types.FieldIDItemSize,
		func(b []byte) types.FieldIDItem {
			return types.FieldIDItem{
				ClassIdx: binary.LittleEndian.Uint16(b[0:2]),
				TypeIdx:  binary.LittleEndian.Uint16(b[2:4]),
				NameIdx:  binary.LittleEndian.Uint32(b[4:8]),
			}
		})
	if err != nil {
		return nil, err
	}
	return &FieldPool{table: t}, nil
}

// MethodPool implements the MethodPool interface
type MethodPool struct {
	*table[types.MethodIDItem]
}

// NewMethodPool reads the method_ids table
func NewMethodPool(src interfaces.ByteSource, h *types.Header) (*MethodPool, error) {
	t, err := readTable(src, "method", h.MethodIDsOff, h.MethodIDsSize, types.MethodIDItemSize,
		func(b []byte) types.MethodIDItem {
			return types.MethodIDItem{
				ClassIdx: binary.LittleEndian.Uint16(b[0:2]),
				ProtoIdx: binary.LittleEndian.Uint16(b[2:4]),
				NameIdx:  binary.LittleEndian.Uint32(b[4:8]),
			}
		})
	if err != nil {
		return nil, err
	}
	return &MethodPool{table: t}, nil
}

// ClassDefPool implements the ClassDefPool interface
type ClassDefPool struct {
	*table[types.ClassDefItem]
}

// NewClassDefPool reads the class_defs table
func NewClassDefPool(src interfaces.ByteSource, h *types.Header) (*ClassDefPool, error) {
	t, err := readTable(src, "class_def", h.ClassDefsOff, h.ClassDefsSize, types.ClassDefItemSize,
		func(b []byte) types.ClassDefItem {
			le := binary.LittleEndian
			return types.ClassDefItem{
				ClassIdx:        le.Uint32(b[0:4]),
				AccessFlags:     le.Uint32(b[4:8]),
				SuperclassIdx:   le.Uint32(b[8:12]),
				InterfacesOff:   le.Uint32(b[12:16]),
				SourceFileIdx:   le.Uint32(b[16:20]),
				AnnotationsOff:  le.Uint32(b[20:24]),
				ClassDataOff:    le.Uint32(b[24:28]),
				StaticValuesOff: le.Uint32(b[28:32]),
			}
		})
	if err != nil {
		return nil, err
	}
	return &ClassDefPool{table: t}, nil
}
