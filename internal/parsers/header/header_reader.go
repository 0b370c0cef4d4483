package header

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/deploymenttheory/go-dex/internal/interfaces"
	"github.com/deploymenttheory/go-dex/internal/parsers/leb128"
	"github.com/deploymenttheory/go-dex/internal/types"
)

// Options controls which header checks run
type Options struct {
	// SkipChecksum disables Adler-32 verification
	SkipChecksum bool
}

// headerReader implements the HeaderReader interface
type headerReader struct {
	header     *types.Header
	validation types.HeaderValidation
}

// NewHeaderReader reads the header_item at the start of src and validates it.
// Checks run in order: checksum, magic, signature.
func NewHeaderReader(src interfaces.ByteSource, opts Options) (interfaces.HeaderReader, error) {
	data, err := leb128.NewCursor(src, 0).ReadBytes(types.HeaderSize)
	if err != nil {
		return nil, fmt.Errorf("failed to read dex header: %w", err)
	}

	h, err := parseHeader(data, binary.LittleEndian)
	if err != nil {
		return nil, fmt.Errorf("failed to parse dex header: %w", err)
	}

	validation := types.HeaderValidation{
		ActualSize:      src.Size(),
		FileSizeMatches: int64(h.FileSize) == src.Size(),
	}

	if !opts.SkipChecksum {
		computed, err := NewChecksumVerifier(src).Verify()
		if err != nil {
			return nil, err
		}
		validation.ComputedChecksum = computed
		validation.ChecksumVerified = true
	}

	if !bytes.Equal(h.Magic[:], types.Magic[:]) {
		return nil, fmt.Errorf("%w: got % x, want % x (%s)", types.ErrBadMagic, h.Magic[:], types.Magic[:], types.MagicDisplay)
	}

	validation.Signature = VerifySignature(src, h)

	return &headerReader{header: h, validation: validation}, nil
}

// parseHeader parses raw bytes into a Header structure
func parseHeader(data []byte, endian binary.ByteOrder) (*types.Header, error) {
	if len(data) < types.HeaderSize {
		return nil, fmt.Errorf("insufficient data for dex header: %d bytes", len(data))
	}

	h := &types.Header{}

	copy(h.Magic[:], data[0:8])
	h.Checksum = endian.Uint32(data[8:12])
	copy(h.Signature[:], data[12:32])

	h.FileSize = endian.Uint32(data[32:36])
	h.HeaderSize = endian.Uint32(data[36:40])
	h.EndianTag = endian.Uint32(data[40:44])

	h.LinkSize = endian.Uint32(data[44:48])
	h.LinkOff = endian.Uint32(data[48:52])
	h.MapOff = endian.Uint32(data[52:56])

	// id tables
	h.StringIDsSize = endian.Uint32(data[56:60])
	h.StringIDsOff = endian.Uint32(data[60:64])
	h.TypeIDsSize = endian.Uint32(data[64:68])
	h.TypeIDsOff = endian.Uint32(data[68:72])
	h.ProtoIDsSize = endian.Uint32(data[72:76])
	h.ProtoIDsOff = endian.Uint32(data[76:80])
	h.FieldIDsSize = endian.Uint32(data[80:84])
	h.FieldIDsOff = endian.Uint32(data[84:88])
	h.MethodIDsSize = endian.Uint32(data[88:92])
	h.MethodIDsOff = endian.Uint32(data[92:96])
	h.ClassDefsSize = endian.Uint32(data[96:100])
	h.ClassDefsOff = endian.Uint32(data[100:104])

	h.DataSize = endian.Uint32(data[104:108])
	h.DataOff = endian.Uint32(data[108:112])

	return h, nil
}

// Header returns the decoded header record
func (hr *headerReader) Header() *types.Header {
	return hr.header
}

// Validation returns the outcome of the header checks
func (hr *headerReader) Validation() types.HeaderValidation {
	return hr.validation
}
