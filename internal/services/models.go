package services

import "github.com/deploymenttheory/go-dex/internal/types"

// StringEntry is one row of the string table
type StringEntry struct {
	Index  uint32 `json:"index" yaml:"index"`
	Offset uint32 `json:"offset" yaml:"offset"`
	// Value is the display form with newlines escaped
	Value string `json:"value" yaml:"value"`
}

// TypeEntry is one row of the type table
type TypeEntry struct {
	Index         uint32 `json:"index" yaml:"index"`
	DescriptorIdx uint32 `json:"descriptor_idx" yaml:"descriptor_idx"`
	Descriptor    string `json:"descriptor" yaml:"descriptor"`
	Name          string `json:"name,omitempty" yaml:"name,omitempty"`
	Error         string `json:"error,omitempty" yaml:"error,omitempty"`
}

// ProtoEntry is one row of the prototype table
type ProtoEntry struct {
	Index      uint32   `json:"index" yaml:"index"`
	Shorty     string   `json:"shorty" yaml:"shorty"`
	ReturnType string   `json:"return_type" yaml:"return_type"`
	Parameters []string `json:"parameters,omitempty" yaml:"parameters,omitempty"`
	Error      string   `json:"error,omitempty" yaml:"error,omitempty"`
}

// ReferenceEntry is one row of the field or method table
type ReferenceEntry struct {
	Index     uint32 `json:"index" yaml:"index"`
	Reference string `json:"reference,omitempty" yaml:"reference,omitempty"`
	Error     string `json:"error,omitempty" yaml:"error,omitempty"`
}

// ClassReport is the decoded view of one class_def_item
type ClassReport struct {
	Index       uint32           `json:"index" yaml:"index"`
	Name        string           `json:"name" yaml:"name"`
	AccessFlags uint32           `json:"access_flags" yaml:"access_flags"`
	Flags       []string         `json:"flags,omitempty" yaml:"flags,omitempty"`
	Superclass  string           `json:"superclass,omitempty" yaml:"superclass,omitempty"`
	Interfaces  []string         `json:"interfaces,omitempty" yaml:"interfaces,omitempty"`
	SourceFile  string           `json:"source_file,omitempty" yaml:"source_file,omitempty"`
	ClassData   *types.ClassData `json:"class_data,omitempty" yaml:"class_data,omitempty"`

	// Err is the first non-fatal error met while decoding this class.
	// Fields after the failing step are left empty.
	Err   error  `json:"-" yaml:"-"`
	Error string `json:"error,omitempty" yaml:"error,omitempty"`
}

func (r *ClassReport) fail(err error) {
	r.Err = err
	r.Error = err.Error()
}
