// Package types implements the on-disk data structures of the Dalvik Executable (DEX) format.
// Field layouts follow the dex-format reference published with the Android runtime.
package types

// Header constants
// Reference: dex-format, "header_item"

const (
	// HeaderSize is the fixed size of header_item in bytes.
	HeaderSize = 0x70

	// MagicSize is the length of the magic field.
	MagicSize = 8

	// SignatureSize is the length of the SHA-1 signature field.
	SignatureSize = 20

	// ChecksumOffset is the byte offset of the checksum field.
	ChecksumOffset = 8

	// ChecksumStart is the first byte covered by the Adler-32 checksum,
	// the first byte after the checksum field. The signature is part of
	// the checksummed range; starting at SignatureStart instead would
	// reject every file produced by dx or d8.
	ChecksumStart = 12

	// SignatureStart is the first byte covered by the SHA-1 signature.
	SignatureStart = 32

	// EndianConstant is the endian tag of a little-endian file.
	EndianConstant = 0x12345678

	// ReverseEndianConstant is the endian tag of a byte-swapped file.
	ReverseEndianConstant = 0x78563412

	// NoIndex marks an absent index value (source_file_idx, superclass_idx).
	NoIndex = 0xFFFFFFFF
)

// Magic is the literal 8-byte DEX magic "dex\n035\0".
var Magic = [MagicSize]byte{'d', 'e', 'x', '\n', '0', '3', '5', 0x00}

// MagicDisplay is the printable rendering of Magic.
const MagicDisplay = `dex\n035\0`

// Header is the decoded header_item. It is immutable once decoded.
// All sizes and offsets are little-endian uint32 on disk.
type Header struct {
	// Magic identifies the file as DEX.
	Magic [MagicSize]byte
	// Checksum is the Adler-32 of everything after this field.
	Checksum uint32
	// Signature is the SHA-1 of everything after this field.
	Signature [SignatureSize]byte
	FileSize   uint32
	HeaderSize uint32
	EndianTag  uint32

	LinkSize uint32
	LinkOff  uint32
	MapOff   uint32

	StringIDsSize uint32
	StringIDsOff  uint32
	TypeIDsSize   uint32
	TypeIDsOff    uint32
	ProtoIDsSize  uint32
	ProtoIDsOff   uint32
	FieldIDsSize  uint32
	FieldIDsOff   uint32
	MethodIDsSize uint32
	MethodIDsOff  uint32
	ClassDefsSize uint32
	ClassDefsOff  uint32

	DataSize uint32
	DataOff  uint32
}

// EndianName describes the endian tag.
func (h *Header) EndianName() string {
	switch h.EndianTag {
	case EndianConstant:
		return "little endian"
	case ReverseEndianConstant:
		return "big endian"
	default:
		return "unknown endian"
	}
}

// SignatureStatus records what was established about the SHA-1 signature.
type SignatureStatus int

const (
	// SignatureNotVerified means no cryptographic check was performed.
	SignatureNotVerified SignatureStatus = iota
)

func (s SignatureStatus) String() string {
	switch s {
	case SignatureNotVerified:
		return "not verified"
	default:
		return "unknown"
	}
}

// HeaderValidation summarises the checks run while decoding a header.
type HeaderValidation struct {
	ChecksumVerified bool
	ComputedChecksum uint32
	Signature        SignatureStatus
	// FileSizeMatches reports whether Header.FileSize equals the source size.
	FileSizeMatches bool
	ActualSize      int64
}
