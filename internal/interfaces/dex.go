// File: internal/interfaces/dex.go
package interfaces

import (
	"io"

	"github.com/deploymenttheory/go-dex/internal/types"
)

// ByteSource provides random access to the bytes of one DEX image
type ByteSource interface {
	io.ReaderAt

	// Size returns the total number of bytes available
	Size() int64

	// Name returns a label for the source, usually its path
	Name() string

	// Close releases any resources held by the source
	Close() error
}

// HeaderReader provides access to a validated DEX header
type HeaderReader interface {
	// Header returns the decoded header record
	Header() *types.Header

	// Validation returns the outcome of the header checks
	Validation() types.HeaderValidation
}

// StringPool resolves string indices to their contents
type StringPool interface {
	// Len returns the declared number of strings
	Len() uint32

	// DataOffset returns the string_data_off of an entry
	DataOffset(idx uint32) (uint32, error)

	// String returns the raw string at idx
	String(idx uint32) (string, error)

	// Display returns the string at idx with embedded newlines escaped as \n
	Display(idx uint32) (string, error)
}

// TypePool resolves type indices to descriptor strings
type TypePool interface {
	// Len returns the declared number of types
	Len() uint32

	// Get returns the type_id_item at idx
	Get(idx uint32) (types.TypeIDItem, error)

	// Descriptor returns the raw descriptor string for a type index
	Descriptor(idx uint32) (string, error)
}

// ProtoPool resolves prototype indices
type ProtoPool interface {
	Len() uint32
	Get(idx uint32) (types.ProtoIDItem, error)
}

// FieldPool resolves field indices
type FieldPool interface {
	Len() uint32
	Get(idx uint32) (types.FieldIDItem, error)
}

// MethodPool resolves method indices
type MethodPool interface {
	Len() uint32
	Get(idx uint32) (types.MethodIDItem, error)
}

// ClassDefPool resolves class definition indices
type ClassDefPool interface {
	Len() uint32
	Get(idx uint32) (types.ClassDefItem, error)
}

// DescriptorRenderer turns descriptors into display names
type DescriptorRenderer interface {
	// Render converts a descriptor string such as "[Ljava/lang/String;"
	Render(descriptor string) (string, error)

	// RenderString renders the descriptor held by a string-pool index
	RenderString(stringIdx uint32) (string, error)
}

// AccessFlagsRenderer turns access-flag bitmasks into names
type AccessFlagsRenderer interface {
	// Render returns the flag names set in flags for the given member kind
	Render(flags uint32, kind types.MemberKind) ([]string, error)
}

// MemberResolver renders field and method references for class data
type MemberResolver interface {
	// FieldDeclaration renders field idx as "type name"
	FieldDeclaration(idx uint32) (string, error)

	// MethodDeclaration renders method idx as "return name(params)"
	MethodDeclaration(idx uint32) (string, error)
}
