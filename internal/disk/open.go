package disk

import (
	"archive/zip"
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"os"

	"github.com/dsnet/compress/bzip2"
	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"

	"github.com/deploymenttheory/go-dex/internal/interfaces"
)

// Format identifies the container an input file arrives in
type Format int

const (
	FormatUnknown Format = iota
	FormatDex
	FormatGzip
	FormatZstd
	FormatXz
	FormatBzip2
	FormatZip
)

func (f Format) String() string {
	switch f {
	case FormatDex:
		return "dex"
	case FormatGzip:
		return "gzip"
	case FormatZstd:
		return "zstd"
	case FormatXz:
		return "xz"
	case FormatBzip2:
		return "bzip2"
	case FormatZip:
		return "zip"
	default:
		return "unknown"
	}
}

// SourceOptions controls how input files are opened
type SourceOptions struct {
	// AllowCompressed enables transparent decompression and APK entries
	AllowCompressed bool
	// APKEntry is the entry opened inside zip/APK archives
	APKEntry string
	// MaxSize bounds the size of inflated images
	MaxSize int64
}

// DefaultSourceOptions returns the defaults used when no config is loaded
func DefaultSourceOptions() SourceOptions {
	return SourceOptions{
		AllowCompressed: true,
		APKEntry:        "classes.dex",
		MaxSize:         256 << 20,
	}
}

var signatures = []struct {
	format Format
	magic  []byte
}{
	{FormatDex, []byte("dex\n")},
	{FormatGzip, []byte{0x1f, 0x8b}},
	{FormatZstd, []byte{0x28, 0xb5, 0x2f, 0xfd}},
	{FormatXz, []byte{0xfd, '7', 'z', 'X', 'Z', 0x00}},
	{FormatBzip2, []byte("BZh")},
	{FormatZip, []byte("PK\x03\x04")},
}

// DetectFormat identifies the input format from its leading bytes
func DetectFormat(prefix []byte) Format {
	for _, sig := range signatures {
		if bytes.HasPrefix(prefix, sig.magic) {
			return sig.format
		}
	}
	return FormatUnknown
}

// OpenSource opens path as a ByteSource. Plain files are read in place;
// compressed files and APK entries are inflated into memory.
func OpenSource(path string, opts SourceOptions) (interfaces.ByteSource, error) {
	fs, err := OpenFile(path)
	if err != nil {
		return nil, err
	}

	prefix := make([]byte, 8)
	n, _ := fs.ReadAt(prefix, 0)
	format := DetectFormat(prefix[:n])

	if format == FormatDex || format == FormatUnknown || !opts.AllowCompressed {
		return fs, nil
	}
	defer fs.Close()

	if opts.MaxSize <= 0 {
		opts.MaxSize = DefaultSourceOptions().MaxSize
	}

	var data []byte
	switch format {
	case FormatZip:
		data, err = readZipEntry(fs, opts)
	default:
		data, err = decompress(io.NewSectionReader(fs, 0, fs.Size()), format, opts.MaxSize)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to unpack %s input %s: %w", format, path, err)
	}

	return newMemorySource(path, data, format), nil
}

// decompress inflates a single-stream compressed image
func decompress(r io.Reader, format Format, limit int64) ([]byte, error) {
	switch format {
	case FormatGzip:
		gz, err := gzip.NewReader(r)
		if err != nil {
			return nil, err
		}
		defer gz.Close()
		return readAllLimited(gz, limit)
	case FormatZstd:
		dec, err := zstd.NewReader(r)
		if err != nil {
			return nil, err
		}
		defer dec.Close()
		return readAllLimited(dec, limit)
	case FormatXz:
		xr, err := xz.NewReader(r)
		if err != nil {
			return nil, err
		}
		return readAllLimited(xr, limit)
	case FormatBzip2:
		br, err := bzip2.NewReader(r, nil)
		if err != nil {
			return nil, err
		}
		defer br.Close()
		return readAllLimited(br, limit)
	default:
		return nil, fmt.Errorf("unsupported format %s", format)
	}
}

// readZipEntry extracts the configured dex entry from an APK or zip archive
func readZipEntry(fs *FileSource, opts SourceOptions) ([]byte, error) {
	zr, err := zip.NewReader(fs, fs.Size())
	if err != nil {
		return nil, err
	}

	entry := opts.APKEntry
	if entry == "" {
		entry = DefaultSourceOptions().APKEntry
	}

	for _, f := range zr.File {
		if f.Name != entry {
			continue
		}
		if f.UncompressedSize64 > uint64(opts.MaxSize) {
			return nil, fmt.Errorf("entry %s is %d bytes, limit is %d", entry, f.UncompressedSize64, opts.MaxSize)
		}
		rc, err := f.Open()
		if err != nil {
			return nil, err
		}
		defer rc.Close()
		return readAllLimited(rc, opts.MaxSize)
	}
	return nil, fmt.Errorf("archive has no entry %q: %w", entry, os.ErrNotExist)
}
