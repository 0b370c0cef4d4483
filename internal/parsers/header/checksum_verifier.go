package header

import (
	"encoding/binary"
	"errors"
	"fmt"
	"hash/adler32"
	"io"

	"github.com/deploymenttheory/go-dex/internal/interfaces"
	"github.com/deploymenttheory/go-dex/internal/types"
)

// ChecksumVerifier computes the Adler-32 of a DEX image
type ChecksumVerifier struct {
	src interfaces.ByteSource
}

// NewChecksumVerifier creates a ChecksumVerifier over src
func NewChecksumVerifier(src interfaces.ByteSource) *ChecksumVerifier {
	return &ChecksumVerifier{src: src}
}

// Compute streams every byte from ChecksumStart to the end of the source
// through Adler-32 (A starts at 1, B at 0, both mod 65521, result B<<16|A).
func (c *ChecksumVerifier) Compute() (uint32, error) {
	size := c.src.Size()
	if size < types.ChecksumStart {
		return 0, &types.IOError{Op: "checksum", Offset: 0, Size: types.ChecksumStart, Err: io.ErrUnexpectedEOF}
	}

	h := adler32.New()
	section := io.NewSectionReader(c.src, types.ChecksumStart, size-types.ChecksumStart)
	n, err := io.Copy(h, section)
	if err != nil && !errors.Is(err, io.EOF) {
		return 0, &types.IOError{Op: "checksum", Offset: types.ChecksumStart + n, Size: int(size - types.ChecksumStart), Err: err}
	}
	if n != size-types.ChecksumStart {
		return 0, &types.IOError{Op: "checksum", Offset: types.ChecksumStart + n, Size: int(size - types.ChecksumStart), Err: io.ErrUnexpectedEOF}
	}
	return h.Sum32(), nil
}

// Stored reads the checksum field from the source
func (c *ChecksumVerifier) Stored() (uint32, error) {
	var buf [4]byte
	if n, err := c.src.ReadAt(buf[:], types.ChecksumOffset); n != len(buf) {
		return 0, &types.IOError{Op: "read checksum", Offset: types.ChecksumOffset, Size: len(buf), Err: err}
	}
	return binary.LittleEndian.Uint32(buf[:]), nil
}

// Verify compares the stored and computed checksums and returns the
// computed value
func (c *ChecksumVerifier) Verify() (uint32, error) {
	stored, err := c.Stored()
	if err != nil {
		return 0, fmt.Errorf("failed to read stored checksum: %w", err)
	}
	computed, err := c.Compute()
	if err != nil {
		return 0, fmt.Errorf("failed to compute checksum: %w", err)
	}
	if stored != computed {
		return computed, &types.ChecksumError{Stored: stored, Computed: computed}
	}
	return computed, nil
}
