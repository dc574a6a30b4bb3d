package storage

import (
	"fmt"
	"github.com/gostonefire/slabhashmap/internal/conf"
	"github.com/pkg/errors"
	"go.uber.org/atomic"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sys/unix"
	"os"
	"path/filepath"
	"sync"
)

// mapping - One file and the region it is mapped to
type mapping struct {
	file *os.File
	data []byte
}

// MMapFactory - Creates buffers backed by memory mapped files, one new file per buffer in a given directory.
// Files are named base-<n>.file where n counts up for every buffer the factory creates.
// The mappings stay until Close is called.
type MMapFactory struct {
	dir         string
	fileCounter atomic.Uint64
	logger      *zap.Logger

	mu       sync.Mutex
	mappings []mapping
	closed   bool
}

// NewMMapFactory - Returns a pointer to a new MMapFactory creating its files in dir.
// The directory is created on first use if it does not exist.
func NewMMapFactory(dir string) *MMapFactory {
	return &MMapFactory{dir: dir, logger: zap.L()}
}

// WithLogger - Sets the logger used for non fatal mapping problems
func (M *MMapFactory) WithLogger(logger *zap.Logger) *MMapFactory {
	M.logger = logger
	return M
}

// Create - Creates a new file of size bytes, maps it for reading and writing and returns the mapped region.
// A newly truncated file reads as zeros, which is what the hash map relies on.
func (M *MMapFactory) Create(size int) (buf []byte, err error) {
	if size <= 0 {
		err = &InvalidSize{Size: size}
		return
	}

	M.mu.Lock()
	defer M.mu.Unlock()
	if M.closed {
		err = FactoryClosed{}
		return
	}

	fileName := filepath.Join(M.dir, fmt.Sprintf(conf.BufferFilePattern, M.fileCounter.Inc()))

	err = os.MkdirAll(M.dir, 0755)
	if err != nil {
		err = errors.Wrapf(err, "failed to create storage directory %s", M.dir)
		return
	}

	// Only try to remove if exists, and not by accident a directory
	if stat, ok := os.Stat(fileName); ok == nil && !stat.IsDir() {
		err = os.Remove(fileName)
		if err != nil {
			err = errors.Wrapf(err, "failed to remove stale buffer file %s", fileName)
			return
		}
	}

	file, err := os.OpenFile(fileName, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		err = errors.Wrapf(err, "failed to create buffer file %s", fileName)
		return
	}

	err = file.Truncate(int64(size))
	if err != nil {
		_ = file.Close()
		err = errors.Wrapf(err, "failed to size buffer file %s to %d bytes", fileName, size)
		return
	}

	buf, err = unix.Mmap(int(file.Fd()), 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		_ = file.Close()
		buf = nil
		err = errors.Wrapf(err, "failed to mmap buffer file %s", fileName)
		return
	}

	// Buckets are hit at random, read ahead only wastes page cache
	if madvErr := unix.Madvise(buf, unix.MADV_RANDOM); madvErr != nil {
		M.logger.Warn("failed to madvise buffer mapping", zap.String("filename", fileName), zap.Error(madvErr))
	}

	M.mappings = append(M.mappings, mapping{file: file, data: buf})
	M.logger.Debug("created mapped buffer", zap.String("filename", fileName), zap.Int("size", size))

	return
}

// Files - Returns the names of all files created so far, in creation order
func (M *MMapFactory) Files() (fileNames []string) {
	M.mu.Lock()
	defer M.mu.Unlock()

	fileNames = make([]string, len(M.mappings))
	for i, m := range M.mappings {
		fileNames[i] = m.file.Name()
	}

	return
}

// Sync - Flushes all mapped regions to their files
func (M *MMapFactory) Sync() (err error) {
	M.mu.Lock()
	defer M.mu.Unlock()

	for _, m := range M.mappings {
		if syncErr := unix.Msync(m.data, unix.MS_SYNC); syncErr != nil {
			err = multierr.Append(err, errors.Wrapf(syncErr, "failed to msync %s", m.file.Name()))
		}
	}

	return
}

// Close - Unmaps all regions and closes their files. Buffers handed out must not be used afterwards.
// Calling Close more than once is a no-op.
func (M *MMapFactory) Close() (err error) {
	M.mu.Lock()
	defer M.mu.Unlock()

	if M.closed {
		return
	}
	M.closed = true

	for _, m := range M.mappings {
		if unmapErr := unix.Munmap(m.data); unmapErr != nil {
			err = multierr.Append(err, errors.Wrapf(unmapErr, "failed to munmap %s", m.file.Name()))
		}
		if closeErr := m.file.Close(); closeErr != nil {
			err = multierr.Append(err, errors.Wrapf(closeErr, "failed to close %s", m.file.Name()))
		}
	}
	M.mappings = nil

	return
}

// RemoveFiles - Closes the factory and removes all files it created
func (M *MMapFactory) RemoveFiles() (err error) {
	fileNames := M.Files()
	err = M.Close()
	for _, fileName := range fileNames {
		if rmErr := os.Remove(fileName); rmErr != nil && !os.IsNotExist(rmErr) {
			err = multierr.Append(err, errors.Wrapf(rmErr, "failed to remove %s", fileName))
		}
	}

	return
}

var _ BufferFactory = (*MMapFactory)(nil)
