package types

// Index Tables
// Fixed-size records addressed by zero-based index.
// Reference: dex-format, "string_id_item" through "class_def_item"

const (
	StringIDItemSize = 4
	TypeIDItemSize   = 4
	ProtoIDItemSize  = 12
	FieldIDItemSize  = 8
	MethodIDItemSize = 8
	ClassDefItemSize = 32
	TypeItemSize     = 2
	MapItemSize      = 12
)

// StringIDItem locates a string_data_item in the data area.
type StringIDItem struct {
	// StringDataOff is the offset of a uleb128 length followed by the string bytes.
	StringDataOff uint32
}

// TypeIDItem names a type through a descriptor string.
type TypeIDItem struct {
	// DescriptorIdx indexes the string pool.
	DescriptorIdx uint32
}

// ProtoIDItem describes a method prototype.
type ProtoIDItem struct {
	ShortyIdx     uint32
	ReturnTypeIdx uint32
	// ParametersOff is the offset of a type_list, 0 when there are no parameters.
	ParametersOff uint32
}

// FieldIDItem identifies a field.
type FieldIDItem struct {
	ClassIdx uint16
	TypeIdx  uint16
	NameIdx  uint32
}

// MethodIDItem identifies a method.
type MethodIDItem struct {
	ClassIdx uint16
	ProtoIdx uint16
	NameIdx  uint32
}

// ClassDefItem defines a class.
type ClassDefItem struct {
	ClassIdx    uint32
	AccessFlags uint32
	// SuperclassIdx is NoIndex (or 0 in older tools) when there is no superclass.
	SuperclassIdx uint32
	// InterfacesOff is the offset of a type_list, 0 when none.
	InterfacesOff uint32
	// SourceFileIdx is NoIndex when the source file is unknown.
	SourceFileIdx  uint32
	AnnotationsOff uint32
	// ClassDataOff is 0 when the class has no class data.
	ClassDataOff    uint32
	StaticValuesOff uint32
}

// TypeList is an ordered sequence of type indices.
type TypeList []uint16

// MapItemType is the type code of a map_item.
type MapItemType uint16

const (
	MapTypeHeaderItem               MapItemType = 0x0000
	MapTypeStringIDItem             MapItemType = 0x0001
	MapTypeTypeIDItem               MapItemType = 0x0002
	MapTypeProtoIDItem              MapItemType = 0x0003
	MapTypeFieldIDItem              MapItemType = 0x0004
	MapTypeMethodIDItem             MapItemType = 0x0005
	MapTypeClassDefItem             MapItemType = 0x0006
	MapTypeCallSiteIDItem           MapItemType = 0x0007
	MapTypeMethodHandleItem         MapItemType = 0x0008
	MapTypeMapList                  MapItemType = 0x1000
	MapTypeTypeList                 MapItemType = 0x1001
	MapTypeAnnotationSetRefList     MapItemType = 0x1002
	MapTypeAnnotationSetItem        MapItemType = 0x1003
	MapTypeClassDataItem            MapItemType = 0x2000
	MapTypeCodeItem                 MapItemType = 0x2001
	MapTypeStringDataItem           MapItemType = 0x2002
	MapTypeDebugInfoItem            MapItemType = 0x2003
	MapTypeAnnotationItem           MapItemType = 0x2004
	MapTypeEncodedArrayItem         MapItemType = 0x2005
	MapTypeAnnotationsDirectoryItem MapItemType = 0x2006
	MapTypeHiddenapiClassDataItem   MapItemType = 0xF000
)

var mapItemTypeNames = map[MapItemType]string{
	MapTypeHeaderItem:               "header_item",
	MapTypeStringIDItem:             "string_id_item",
	MapTypeTypeIDItem:               "type_id_item",
	MapTypeProtoIDItem:              "proto_id_item",
	MapTypeFieldIDItem:              "field_id_item",
	MapTypeMethodIDItem:             "method_id_item",
	MapTypeClassDefItem:             "class_def_item",
	MapTypeCallSiteIDItem:           "call_site_id_item",
	MapTypeMethodHandleItem:         "method_handle_item",
	MapTypeMapList:                  "map_list",
	MapTypeTypeList:                 "type_list",
	MapTypeAnnotationSetRefList:     "annotation_set_ref_list",
	MapTypeAnnotationSetItem:        "annotation_set_item",
	MapTypeClassDataItem:            "class_data_item",
	MapTypeCodeItem:                 "code_item",
	MapTypeStringDataItem:           "string_data_item",
	MapTypeDebugInfoItem:            "debug_info_item",
	MapTypeAnnotationItem:           "annotation_item",
	MapTypeEncodedArrayItem:         "encoded_array_item",
	MapTypeAnnotationsDirectoryItem: "annotations_directory_item",
	MapTypeHiddenapiClassDataItem:   "hiddenapi_class_data_item",
}

func (t MapItemType) String() string {
	if name, ok := mapItemTypeNames[t]; ok {
		return name
	}
	return "unknown"
}

// MapItem is one entry of the map_list found at Header.MapOff.
type MapItem struct {
	Type   MapItemType
	Unused uint16
	Size   uint32
	Offset uint32
}
