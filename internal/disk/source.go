package disk

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"sync"
)

// SourceStatistics tracks read access to a source
type SourceStatistics struct {
	Format    string
	ReadCalls int64
	BytesRead int64
	mu        sync.RWMutex
}

func (s *SourceStatistics) record(n int) {
	s.mu.Lock()
	s.ReadCalls++
	s.BytesRead += int64(n)
	s.mu.Unlock()
}

// Snapshot returns the counters under lock
func (s *SourceStatistics) Snapshot() (format string, calls, bytesRead int64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Format, s.ReadCalls, s.BytesRead
}

// StatsProvider is implemented by sources that count their reads
type StatsProvider interface {
	Stats() *SourceStatistics
}

// FileSource reads a DEX image directly from a file
type FileSource struct {
	file  *os.File
	name  string
	size  int64
	stats *SourceStatistics
}

// OpenFile opens path for positional reads
func OpenFile(path string) (*FileSource, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dex file: %w", err)
	}

	stat, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to stat dex file: %w", err)
	}
	if stat.IsDir() {
		file.Close()
		return nil, fmt.Errorf("%s is a directory", path)
	}

	return &FileSource{
		file:  file,
		name:  path,
		size:  stat.Size(),
		stats: &SourceStatistics{Format: FormatDex.String()},
	}, nil
}

// ReadAt implements io.ReaderAt
func (f *FileSource) ReadAt(p []byte, off int64) (int, error) {
	n, err := f.file.ReadAt(p, off)
	f.stats.record(n)
	return n, err
}

// Size returns the file size
func (f *FileSource) Size() int64 { return f.size }

// Name returns the file path
func (f *FileSource) Name() string { return f.name }

// Close closes the underlying file
func (f *FileSource) Close() error {
	if f.file != nil {
		return f.file.Close()
	}
	return nil
}

// Stats returns read statistics
func (f *FileSource) Stats() *SourceStatistics { return f.stats }

// MemorySource serves a DEX image held in memory
type MemorySource struct {
	reader *bytes.Reader
	name   string
	size   int64
	stats  *SourceStatistics
}

// NewMemorySource wraps data; the slice must not be modified afterwards
func NewMemorySource(name string, data []byte) *MemorySource {
	return newMemorySource(name, data, FormatDex)
}

func newMemorySource(name string, data []byte, format Format) *MemorySource {
	return &MemorySource{
		reader: bytes.NewReader(data),
		name:   name,
		size:   int64(len(data)),
		stats:  &SourceStatistics{Format: format.String()},
	}
}

// ReadAt implements io.ReaderAt
func (m *MemorySource) ReadAt(p []byte, off int64) (int, error) {
	n, err := m.reader.ReadAt(p, off)
	m.stats.record(n)
	return n, err
}

// Size returns the image size
func (m *MemorySource) Size() int64 { return m.size }

// Name returns the label given at construction
func (m *MemorySource) Name() string { return m.name }

// Close is a no-op
func (m *MemorySource) Close() error { return nil }

// Stats returns read statistics
func (m *MemorySource) Stats() *SourceStatistics { return m.stats }

// readAllLimited reads r fully, failing once more than limit bytes arrive
func readAllLimited(r io.Reader, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("decompressed size exceeds limit of %d bytes", limit)
	}
	return data, nil
}
