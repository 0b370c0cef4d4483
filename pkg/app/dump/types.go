package dump

import (
	"encoding/hex"
	"time"

	"github.com/deploymenttheory/go-dex/internal/services"
	"github.com/deploymenttheory/go-dex/internal/types"
)

// Sections selects what is printed for each file
type Sections struct {
	Header  bool
	Strings bool
	Types   bool
	Protos  bool
	Fields  bool
	Methods bool
	Classes bool
	Map     bool
}

// IsEmpty returns true if no section is selected
func (s Sections) IsEmpty() bool {
	return s == Sections{}
}

// DefaultSections is used when no section flag is given
func DefaultSections() Sections {
	return Sections{Header: true, Strings: true, Classes: true}
}

// Request represents a dump request over one or more files
type Request struct {
	Paths    []string
	Sections Sections
	// ClassName limits class output to a single class
	ClassName string
	// VerifyOnly runs header validation and skips every pool listing
	VerifyOnly bool

	Options services.Options
}

// Response holds the outcome for every requested file
type Response struct {
	Files   []FileResult  `json:"files" yaml:"files"`
	Failed  int           `json:"failed" yaml:"failed"`
	Elapsed time.Duration `json:"elapsed" yaml:"elapsed"`
}

// FileResult is everything decoded from one file. Only the selected
// sections are populated.
type FileResult struct {
	Path       string                    `json:"path" yaml:"path"`
	Session    string                    `json:"session,omitempty" yaml:"session,omitempty"`
	Header     *HeaderInfo               `json:"header,omitempty" yaml:"header,omitempty"`
	Validation *ValidationInfo           `json:"validation,omitempty" yaml:"validation,omitempty"`
	Map        []MapEntry                `json:"map,omitempty" yaml:"map,omitempty"`
	Strings    []services.StringEntry    `json:"strings,omitempty" yaml:"strings,omitempty"`
	Types      []services.TypeEntry      `json:"types,omitempty" yaml:"types,omitempty"`
	Protos     []services.ProtoEntry     `json:"protos,omitempty" yaml:"protos,omitempty"`
	Fields     []services.ReferenceEntry `json:"fields,omitempty" yaml:"fields,omitempty"`
	Methods    []services.ReferenceEntry `json:"methods,omitempty" yaml:"methods,omitempty"`
	Classes    []*services.ClassReport   `json:"classes,omitempty" yaml:"classes,omitempty"`

	// Err is set when the file could not be decoded; earlier sections
	// that completed are kept.
	Err   error  `json:"-" yaml:"-"`
	Error string `json:"error,omitempty" yaml:"error,omitempty"`
}

// Failed reports whether decoding this file stopped on an error
func (f *FileResult) Failed() bool {
	return f.Err != nil
}

// HeaderInfo is the printable form of the header_item
type HeaderInfo struct {
	Magic         string `json:"magic" yaml:"magic"`
	Checksum      uint32 `json:"checksum" yaml:"checksum"`
	Signature     string `json:"signature" yaml:"signature"`
	FileSize      uint32 `json:"file_size" yaml:"file_size"`
	HeaderSize    uint32 `json:"header_size" yaml:"header_size"`
	EndianTag     uint32 `json:"endian_tag" yaml:"endian_tag"`
	Endian        string `json:"endian" yaml:"endian"`
	LinkSize      uint32 `json:"link_size" yaml:"link_size"`
	LinkOff       uint32 `json:"link_off" yaml:"link_off"`
	MapOff        uint32 `json:"map_off" yaml:"map_off"`
	StringIDsSize uint32 `json:"string_ids_size" yaml:"string_ids_size"`
	StringIDsOff  uint32 `json:"string_ids_off" yaml:"string_ids_off"`
	TypeIDsSize   uint32 `json:"type_ids_size" yaml:"type_ids_size"`
	TypeIDsOff    uint32 `json:"type_ids_off" yaml:"type_ids_off"`
	ProtoIDsSize  uint32 `json:"proto_ids_size" yaml:"proto_ids_size"`
	ProtoIDsOff   uint32 `json:"proto_ids_off" yaml:"proto_ids_off"`
	FieldIDsSize  uint32 `json:"field_ids_size" yaml:"field_ids_size"`
	FieldIDsOff   uint32 `json:"field_ids_off" yaml:"field_ids_off"`
	MethodIDsSize uint32 `json:"method_ids_size" yaml:"method_ids_size"`
	MethodIDsOff  uint32 `json:"method_ids_off" yaml:"method_ids_off"`
	ClassDefsSize uint32 `json:"class_defs_size" yaml:"class_defs_size"`
	ClassDefsOff  uint32 `json:"class_defs_off" yaml:"class_defs_off"`
	DataSize      uint32 `json:"data_size" yaml:"data_size"`
	DataOff       uint32 `json:"data_off" yaml:"data_off"`
}

// NewHeaderInfo converts a decoded header
func NewHeaderInfo(h *types.Header) *HeaderInfo {
	return &HeaderInfo{
		Magic:         hex.EncodeToString(h.Magic[:]),
		Checksum:      h.Checksum,
		Signature:     hex.EncodeToString(h.Signature[:]),
		FileSize:      h.FileSize,
		HeaderSize:    h.HeaderSize,
		EndianTag:     h.EndianTag,
		Endian:        h.EndianName(),
		LinkSize:      h.LinkSize,
		LinkOff:       h.LinkOff,
		MapOff:        h.MapOff,
		StringIDsSize: h.StringIDsSize,
		StringIDsOff:  h.StringIDsOff,
		TypeIDsSize:   h.TypeIDsSize,
		TypeIDsOff:    h.TypeIDsOff,
		ProtoIDsSize:  h.ProtoIDsSize,
		ProtoIDsOff:   h.ProtoIDsOff,
		FieldIDsSize:  h.FieldIDsSize,
		FieldIDsOff:   h.FieldIDsOff,
		MethodIDsSize: h.MethodIDsSize,
		MethodIDsOff:  h.MethodIDsOff,
		ClassDefsSize: h.ClassDefsSize,
		ClassDefsOff:  h.ClassDefsOff,
		DataSize:      h.DataSize,
		DataOff:       h.DataOff,
	}
}

// ValidationInfo is the printable form of the header checks
type ValidationInfo struct {
	ChecksumVerified bool   `json:"checksum_verified" yaml:"checksum_verified"`
	ComputedChecksum uint32 `json:"computed_checksum" yaml:"computed_checksum"`
	Signature        string `json:"signature" yaml:"signature"`
	FileSizeMatches  bool   `json:"file_size_matches" yaml:"file_size_matches"`
	ActualSize       int64  `json:"actual_size" yaml:"actual_size"`
}

// NewValidationInfo converts header validation results
func NewValidationInfo(v types.HeaderValidation) *ValidationInfo {
	return &ValidationInfo{
		ChecksumVerified: v.ChecksumVerified,
		ComputedChecksum: v.ComputedChecksum,
		Signature:        v.Signature.String(),
		FileSizeMatches:  v.FileSizeMatches,
		ActualSize:       v.ActualSize,
	}
}

// MapEntry is the printable form of a map_item
type MapEntry struct {
	Type   string `json:"type" yaml:"type"`
	Code   uint16 `json:"code" yaml:"code"`
	Size   uint32 `json:"size" yaml:"size"`
	Offset uint32 `json:"offset" yaml:"offset"`
}
