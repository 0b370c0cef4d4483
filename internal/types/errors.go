package types

import (
	"errors"
	"fmt"
)

var (
	// ErrFatalIO aborts the decode of the current file.
	ErrFatalIO = errors.New("fatal i/o error")

	// ErrChecksumMismatch means the stored Adler-32 does not match the file.
	ErrChecksumMismatch = errors.New("checksum mismatch")

	// ErrBadMagic means the file does not start with the DEX magic.
	ErrBadMagic = errors.New("bad magic")

	// ErrInvalidReference means an index is not below its pool's size.
	ErrInvalidReference = errors.New("invalid reference")

	// ErrBadTypeDescriptor means a descriptor string does not follow the grammar.
	ErrBadTypeDescriptor = errors.New("bad type descriptor")

	// ErrInvalidAccessFlags means bits were left over after rendering flags.
	ErrInvalidAccessFlags = errors.New("invalid access flags")

	// ErrClassNotFound is returned by name lookups that match no class.
	ErrClassNotFound = errors.New("class not found")
)

// IOError describes a failed positional read.
type IOError struct {
	Op     string
	Offset int64
	Size   int
	Err    error
}

func (e *IOError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: read %d bytes at offset 0x%x: %v", e.Op, e.Size, e.Offset, e.Err)
	}
	return fmt.Sprintf("%s: read %d bytes at offset 0x%x: short read", e.Op, e.Size, e.Offset)
}

func (e *IOError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrFatalIO}
	}
	return []error{ErrFatalIO, e.Err}
}

// InvalidReferenceError describes an out-of-range pool index. Index is
// wide enough to hold a running member index that passed 2^32.
type InvalidReferenceError struct {
	Pool  string
	Index uint64
	Size  uint32
}

func (e *InvalidReferenceError) Error() string {
	return fmt.Sprintf("invalid reference: %s index %d out of range (size %d)", e.Pool, e.Index, e.Size)
}

func (e *InvalidReferenceError) Unwrap() error { return ErrInvalidReference }

// ChecksumError carries both checksum values.
type ChecksumError struct {
	Stored   uint32
	Computed uint32
}

func (e *ChecksumError) Error() string {
	return fmt.Sprintf("checksum mismatch: stored 0x%08x, computed 0x%08x", e.Stored, e.Computed)
}

func (e *ChecksumError) Unwrap() error { return ErrChecksumMismatch }

// DescriptorError reports the offending descriptor and character.
type DescriptorError struct {
	Descriptor string
	Reason     string
}

func (e *DescriptorError) Error() string {
	return fmt.Sprintf("bad type descriptor %q: %s", e.Descriptor, e.Reason)
}

func (e *DescriptorError) Unwrap() error { return ErrBadTypeDescriptor }

// AccessFlagsError reports bits that no table entry claimed for the kind.
type AccessFlagsError struct {
	Flags     uint32
	Remaining uint32
	Kind      MemberKind
}

func (e *AccessFlagsError) Error() string {
	return fmt.Sprintf("invalid access flags 0x%x for %s: unrecognized bits 0x%x", e.Flags, e.Kind, e.Remaining)
}

func (e *AccessFlagsError) Unwrap() error { return ErrInvalidAccessFlags }

// IsFatal reports whether err ends the decode of the whole file rather than
// a single record.
func IsFatal(err error) bool {
	return errors.Is(err, ErrFatalIO) || errors.Is(err, ErrChecksumMismatch) || errors.Is(err, ErrBadMagic)
}
