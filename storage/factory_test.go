//go:build unit

package storage

import (
	"errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"os"
	"path/filepath"
	"testing"
)

func TestInMemoryFactory_Create(t *testing.T) {
	t.Run("creates zeroed buffer of requested size", func(t *testing.T) {
		// Prepare
		f := NewInMemoryFactory()

		// Execute
		buf, err := f.Create(128)

		// Check
		assert.NoError(t, err, "creates buffer")
		assert.Len(t, buf, 128, "correct size")
		assert.Equal(t, make([]byte, 128), buf, "all zeros")
	})

	t.Run("rejects non positive size", func(t *testing.T) {
		// Prepare
		f := NewInMemoryFactory()

		// Execute
		_, err := f.Create(0)

		// Check
		var invalid *InvalidSize
		assert.True(t, errors.As(err, &invalid), "error of type InvalidSize")
	})
}

func TestMMapFactory_Create(t *testing.T) {
	t.Run("creates numbered files in storage directory", func(t *testing.T) {
		// Prepare
		dir := filepath.Join(t.TempDir(), "nested", "storage")
		f := NewMMapFactory(dir)
		defer func() { _ = f.Close() }()

		// Execute
		buf1, err1 := f.Create(4096)
		buf2, err2 := f.Create(100)

		// Check
		require.NoError(t, err1, "creates first buffer")
		require.NoError(t, err2, "creates second buffer")
		assert.Len(t, buf1, 4096, "first buffer size")
		assert.Len(t, buf2, 100, "second buffer size")
		assert.Equal(t, []string{filepath.Join(dir, "base-1.file"), filepath.Join(dir, "base-2.file")}, f.Files(), "counter based names")

		stat, err := os.Stat(filepath.Join(dir, "base-2.file"))
		assert.NoError(t, err, "file exists")
		assert.Equal(t, int64(100), stat.Size(), "file has buffer size")
	})

	t.Run("buffer is zeroed even when a stale file exists", func(t *testing.T) {
		// Prepare
		dir := t.TempDir()
		err := os.WriteFile(filepath.Join(dir, "base-1.file"), []byte{1, 2, 3, 4, 5, 6, 7, 8}, 0644)
		require.NoError(t, err, "writes stale file")
		f := NewMMapFactory(dir)
		defer func() { _ = f.Close() }()

		// Execute
		buf, err := f.Create(8)

		// Check
		assert.NoError(t, err, "creates buffer")
		assert.Equal(t, make([]byte, 8), buf, "stale content gone")
	})

	t.Run("writes reach the file after sync", func(t *testing.T) {
		// Prepare
		dir := t.TempDir()
		f := NewMMapFactory(dir)
		buf, err := f.Create(16)
		require.NoError(t, err, "creates buffer")

		// Execute
		buf[3] = 42
		err = f.Sync()

		// Check
		assert.NoError(t, err, "syncs")
		data, err := os.ReadFile(filepath.Join(dir, "base-1.file"))
		assert.NoError(t, err, "reads file")
		assert.Equal(t, byte(42), data[3], "write persisted")

		// Clean up
		assert.NoError(t, f.Close(), "closes factory")
	})

	t.Run("closed factory refuses to create", func(t *testing.T) {
		// Prepare
		f := NewMMapFactory(t.TempDir())
		_, err := f.Create(16)
		require.NoError(t, err, "creates buffer")

		// Execute
		assert.NoError(t, f.Close(), "closes factory")
		assert.NoError(t, f.Close(), "second close is a no-op")
		_, err = f.Create(16)

		// Check
		assert.True(t, errors.Is(err, FactoryClosed{}), "error of type FactoryClosed")
	})

	t.Run("remove files", func(t *testing.T) {
		// Prepare
		dir := t.TempDir()
		f := NewMMapFactory(dir)
		_, err := f.Create(16)
		require.NoError(t, err, "creates buffer")

		// Execute
		err = f.RemoveFiles()

		// Check
		assert.NoError(t, err, "removes files")
		_, err = os.Stat(filepath.Join(dir, "base-1.file"))
		assert.True(t, os.IsNotExist(err), "file removed")
	})

	t.Run("rejects non positive size", func(t *testing.T) {
		// Prepare
		f := NewMMapFactory(t.TempDir())

		// Execute
		_, err := f.Create(-1)

		// Check
		var invalid *InvalidSize
		assert.True(t, errors.As(err, &invalid), "error of type InvalidSize")
		assert.Empty(t, f.Files(), "no file created")
	})
}
