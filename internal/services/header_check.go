package services

import (
	"github.com/google/uuid"

	"github.com/deploymenttheory/go-dex/internal/disk"
	"github.com/deploymenttheory/go-dex/internal/types"
)

// HeaderCheck is the outcome of validating a file's header alone
type HeaderCheck struct {
	Name       string
	Session    uuid.UUID
	Header     *types.Header
	Validation types.HeaderValidation
}

// VerifyHeader opens path and runs the header checks (size limit, checksum,
// magic, signature status) without building any pool. Tables that point
// outside the file are not detected here.
func VerifyHeader(path string, opts Options) (*HeaderCheck, error) {
	src, err := disk.OpenSource(path, opts.Source)
	if err != nil {
		return nil, err
	}

	session, log := newSession(src, opts)
	defer closeSource(src, log)

	hr, err := readHeader(src, opts, log)
	if err != nil {
		return nil, err
	}
	log.Debugw("header verified", "checksum_verified", hr.Validation().ChecksumVerified)

	return &HeaderCheck{
		Name:       src.Name(),
		Session:    session,
		Header:     hr.Header(),
		Validation: hr.Validation(),
	}, nil
}
