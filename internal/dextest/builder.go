// Package dextest builds small synthetic DEX images for tests.
package dextest

import (
	"encoding/binary"
	"hash/adler32"

	"github.com/deploymenttheory/go-dex/internal/types"
)

// Proto describes a proto_id_item; Params become a type_list.
type Proto struct {
	Shorty     uint32
	ReturnType uint32
	Params     []uint16
}

// Field is an encoded_field with an absolute field index.
type Field struct {
	Index       uint32
	AccessFlags uint32
}

// Method is an encoded_method with an absolute method index.
type Method struct {
	Index       uint32
	AccessFlags uint32
	CodeOff     uint32
}

// ClassData describes a class_data_item. Counts, when set, replaces the
// counts derived from the member slices.
type ClassData struct {
	StaticFields   []Field
	InstanceFields []Field
	DirectMethods  []Method
	VirtualMethods []Method
	Counts         *types.ClassDataHeader
}

// Class describes a class_def_item. The offset fields of Def are filled in
// by Build from Interfaces and Data.
type Class struct {
	Def        types.ClassDefItem
	Interfaces []uint16
	Data       *ClassData
	// RawData, when set, is written verbatim as the class_data_item.
	RawData []byte
}

// Builder assembles a DEX image.
type Builder struct {
	Strings []string
	Types   []uint32
	Protos  []Proto
	Fields  []types.FieldIDItem
	Methods []types.MethodIDItem
	Classes []Class
	// NoMap leaves map_off at zero.
	NoMap bool
}

// AppendUleb128 appends v as uleb128.
func AppendUleb128(b []byte, v uint32) []byte {
	for {
		c := byte(v & 0x7f)
		v >>= 7
		if v == 0 {
			return append(b, c)
		}
		b = append(b, c|0x80)
	}
}

// AppendSleb128 appends v as sleb128.
func AppendSleb128(b []byte, v int32) []byte {
	for {
		c := byte(v & 0x7f)
		v >>= 7
		if (v == 0 && c&0x40 == 0) || (v == -1 && c&0x40 != 0) {
			return append(b, c)
		}
		b = append(b, c|0x80)
	}
}

// EncodeClassData serialises a class_data_item with delta-encoded indices.
func EncodeClassData(cd *ClassData) []byte {
	counts := types.ClassDataHeader{
		StaticFieldsSize:   uint32(len(cd.StaticFields)),
		InstanceFieldsSize: uint32(len(cd.InstanceFields)),
		DirectMethodsSize:  uint32(len(cd.DirectMethods)),
		VirtualMethodsSize: uint32(len(cd.VirtualMethods)),
	}
	if cd.Counts != nil {
		counts = *cd.Counts
	}
	var b []byte
	b = AppendUleb128(b, counts.StaticFieldsSize)
	b = AppendUleb128(b, counts.InstanceFieldsSize)
	b = AppendUleb128(b, counts.DirectMethodsSize)
	b = AppendUleb128(b, counts.VirtualMethodsSize)
	for _, list := range [][]Field{cd.StaticFields, cd.InstanceFields} {
		prev := uint32(0)
		for _, f := range list {
			b = AppendUleb128(b, f.Index-prev)
			b = AppendUleb128(b, f.AccessFlags)
			prev = f.Index
		}
	}
	for _, list := range [][]Method{cd.DirectMethods, cd.VirtualMethods} {
		prev := uint32(0)
		for _, m := range list {
			b = AppendUleb128(b, m.Index-prev)
			b = AppendUleb128(b, m.AccessFlags)
			b = AppendUleb128(b, m.CodeOff)
			prev = m.Index
		}
	}
	return b
}

func align4(b []byte) []byte {
	for len(b)%4 != 0 {
		b = append(b, 0)
	}
	return b
}

func appendTypeList(b []byte, list []uint16) []byte {
	b = binary.LittleEndian.AppendUint32(b, uint32(len(list)))
	for _, t := range list {
		b = binary.LittleEndian.AppendUint16(b, t)
	}
	return b
}

// Build lays the image out as header, id tables, then the data area, and
// stamps a correct checksum.
func (bld *Builder) Build() []byte {
	le := binary.LittleEndian

	stringIDsOff := uint32(types.HeaderSize)
	typeIDsOff := stringIDsOff + uint32(len(bld.Strings))*types.StringIDItemSize
	protoIDsOff := typeIDsOff + uint32(len(bld.Types))*types.TypeIDItemSize
	fieldIDsOff := protoIDsOff + uint32(len(bld.Protos))*types.ProtoIDItemSize
	methodIDsOff := fieldIDsOff + uint32(len(bld.Fields))*types.FieldIDItemSize
	classDefsOff := methodIDsOff + uint32(len(bld.Methods))*types.MethodIDItemSize
	dataOff := classDefsOff + uint32(len(bld.Classes))*types.ClassDefItemSize

	// data area, built relative to dataOff
	var data []byte
	pos := func() uint32 { return dataOff + uint32(len(data)) }

	paramOffs := make([]uint32, len(bld.Protos))
	for i, p := range bld.Protos {
		if len(p.Params) == 0 {
			continue
		}
		data = align4(data)
		paramOffs[i] = pos()
		data = appendTypeList(data, p.Params)
	}

	defs := make([]types.ClassDefItem, len(bld.Classes))
	for i, c := range bld.Classes {
		defs[i] = c.Def
		defs[i].InterfacesOff = 0
		defs[i].ClassDataOff = 0
		if len(c.Interfaces) > 0 {
			data = align4(data)
			defs[i].InterfacesOff = pos()
			data = appendTypeList(data, c.Interfaces)
		}
	}

	stringOffs := make([]uint32, len(bld.Strings))
	for i, s := range bld.Strings {
		stringOffs[i] = pos()
		data = AppendUleb128(data, uint32(len(s)))
		data = append(data, s...)
		data = append(data, 0)
	}

	for i, c := range bld.Classes {
		switch {
		case c.RawData != nil:
			defs[i].ClassDataOff = pos()
			data = append(data, c.RawData...)
		case c.Data != nil:
			defs[i].ClassDataOff = pos()
			data = append(data, EncodeClassData(c.Data)...)
		}
	}

	var mapOff uint32
	if !bld.NoMap {
		data = align4(data)
		mapOff = pos()
		items := []types.MapItem{
			{Type: types.MapTypeHeaderItem, Size: 1, Offset: 0},
			{Type: types.MapTypeStringIDItem, Size: uint32(len(bld.Strings)), Offset: stringIDsOff},
			{Type: types.MapTypeTypeIDItem, Size: uint32(len(bld.Types)), Offset: typeIDsOff},
			{Type: types.MapTypeClassDefItem, Size: uint32(len(bld.Classes)), Offset: classDefsOff},
			{Type: types.MapTypeMapList, Size: 1, Offset: mapOff},
		}
		data = le.AppendUint32(data, uint32(len(items)))
		for _, it := range items {
			data = le.AppendUint16(data, uint16(it.Type))
			data = le.AppendUint16(data, 0)
			data = le.AppendUint32(data, it.Size)
			data = le.AppendUint32(data, it.Offset)
		}
	}

	out := make([]byte, dataOff, int(dataOff)+len(data))
	out = append(out, data...)

	copy(out[0:8], types.Magic[:])
	for i := 0; i < types.SignatureSize; i++ {
		out[12+i] = byte(i + 1)
	}
	put := func(off int, v uint32) { le.PutUint32(out[off:off+4], v) }
	put(32, uint32(len(out)))
	put(36, types.HeaderSize)
	put(40, types.EndianConstant)
	put(44, 0)
	put(48, 0)
	put(52, mapOff)
	put(56, uint32(len(bld.Strings)))
	put(60, offsetOrZero(len(bld.Strings), stringIDsOff))
	put(64, uint32(len(bld.Types)))
	put(68, offsetOrZero(len(bld.Types), typeIDsOff))
	put(72, uint32(len(bld.Protos)))
	put(76, offsetOrZero(len(bld.Protos), protoIDsOff))
	put(80, uint32(len(bld.Fields)))
	put(84, offsetOrZero(len(bld.Fields), fieldIDsOff))
	put(88, uint32(len(bld.Methods)))
	put(92, offsetOrZero(len(bld.Methods), methodIDsOff))
	put(96, uint32(len(bld.Classes)))
	put(100, offsetOrZero(len(bld.Classes), classDefsOff))
	put(104, uint32(len(data)))
	put(108, dataOff)

	for i, off := range stringOffs {
		put(int(stringIDsOff)+i*types.StringIDItemSize, off)
	}
	for i, t := range bld.Types {
		put(int(typeIDsOff)+i*types.TypeIDItemSize, t)
	}
	for i, p := range bld.Protos {
		base := int(protoIDsOff) + i*types.ProtoIDItemSize
		put(base, p.Shorty)
		put(base+4, p.ReturnType)
		put(base+8, paramOffs[i])
	}
	for i, f := range bld.Fields {
		base := int(fieldIDsOff) + i*types.FieldIDItemSize
		le.PutUint16(out[base:], f.ClassIdx)
		le.PutUint16(out[base+2:], f.TypeIdx)
		put(base+4, f.NameIdx)
	}
	for i, m := range bld.Methods {
		base := int(methodIDsOff) + i*types.MethodIDItemSize
		le.PutUint16(out[base:], m.ClassIdx)
		le.PutUint16(out[base+2:], m.ProtoIdx)
		put(base+4, m.NameIdx)
	}
	for i, d := range defs {
		base := int(classDefsOff) + i*types.ClassDefItemSize
		put(base, d.ClassIdx)
		put(base+4, d.AccessFlags)
		put(base+8, d.SuperclassIdx)
		put(base+12, d.InterfacesOff)
		put(base+16, d.SourceFileIdx)
		put(base+20, d.AnnotationsOff)
		put(base+24, d.ClassDataOff)
		put(base+28, d.StaticValuesOff)
	}

	Restamp(out)
	return out
}

func offsetOrZero(n int, off uint32) uint32 {
	if n == 0 {
		return 0
	}
	return off
}

// Restamp recomputes the checksum of an image after it was modified.
func Restamp(image []byte) {
	binary.LittleEndian.PutUint32(image[types.ChecksumOffset:], adler32.Checksum(image[types.ChecksumStart:]))
}
