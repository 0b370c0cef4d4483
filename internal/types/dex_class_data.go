package types

import "strings"

// Class Data
// class_data_item is variable length: four uleb128 counts followed by four
// delta-encoded member lists.
// Reference: dex-format, "class_data_item"

// ClassDataHeader holds the four member counts.
type ClassDataHeader struct {
	StaticFieldsSize   uint32 `json:"static_fields_size" yaml:"static_fields_size"`
	InstanceFieldsSize uint32 `json:"instance_fields_size" yaml:"instance_fields_size"`
	DirectMethodsSize  uint32 `json:"direct_methods_size" yaml:"direct_methods_size"`
	VirtualMethodsSize uint32 `json:"virtual_methods_size" yaml:"virtual_methods_size"`
}

// ClassDataSection names one of the four member lists.
type ClassDataSection int

const (
	SectionStaticFields ClassDataSection = iota
	SectionInstanceFields
	SectionDirectMethods
	SectionVirtualMethods
)

func (s ClassDataSection) String() string {
	switch s {
	case SectionStaticFields:
		return "Static Field"
	case SectionInstanceFields:
		return "Instance Field"
	case SectionDirectMethods:
		return "Direct Method"
	case SectionVirtualMethods:
		return "Virtual Method"
	default:
		return "Unknown"
	}
}

// Member is one decoded encoded_field or encoded_method.
type Member struct {
	// Index is the running sum of idx_diff values within its section.
	Index       uint32   `json:"index" yaml:"index"`
	AccessFlags uint32   `json:"access_flags" yaml:"access_flags"`
	Flags       []string `json:"flags,omitempty" yaml:"flags,omitempty"`
	// CodeOff is read for methods only and never interpreted.
	CodeOff uint32 `json:"code_off,omitempty" yaml:"code_off,omitempty"`
	// Declaration is the rendered "type name" or "return name(params)".
	Declaration string `json:"declaration" yaml:"declaration"`
}

// String renders the member as flags followed by its declaration.
func (m Member) String() string {
	if len(m.Flags) == 0 {
		return m.Declaration
	}
	return strings.Join(m.Flags, " ") + " " + m.Declaration
}

// ClassData is a decoded class_data_item.
type ClassData struct {
	// Present is false when the class has no class data (offset 0).
	Present        bool            `json:"present" yaml:"present"`
	Offset         uint32          `json:"offset" yaml:"offset"`
	Header         ClassDataHeader `json:"header" yaml:"header"`
	StaticFields   []Member        `json:"static_fields,omitempty" yaml:"static_fields,omitempty"`
	InstanceFields []Member        `json:"instance_fields,omitempty" yaml:"instance_fields,omitempty"`
	DirectMethods  []Member        `json:"direct_methods,omitempty" yaml:"direct_methods,omitempty"`
	VirtualMethods []Member        `json:"virtual_methods,omitempty" yaml:"virtual_methods,omitempty"`
}

// Section returns the members of one section.
func (c *ClassData) Section(s ClassDataSection) []Member {
	switch s {
	case SectionStaticFields:
		return c.StaticFields
	case SectionInstanceFields:
		return c.InstanceFields
	case SectionDirectMethods:
		return c.DirectMethods
	case SectionVirtualMethods:
		return c.VirtualMethods
	default:
		return nil
	}
}
