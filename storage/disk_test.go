package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiskSaveAndRemove(t *testing.T) {
	disk := NewDisk()
	path := filepath.Join(t.TempDir(), "uploads", "photo.png")

	err := disk.Save(path, strings.NewReader("png-bytes"), 0)
	require.NoError(t, err)

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(b))

	require.NoError(t, disk.Remove(path))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestDiskSaveSizeLimit(t *testing.T) {
	disk := NewDisk()
	path := filepath.Join(t.TempDir(), "big.bin")

	err := disk.Save(path, strings.NewReader(strings.Repeat("x", 100)), 10)
	require.ErrorIs(t, err, ErrFileTooLarge)

	// nothing left behind after a rejected write
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestDiskSaveAtLimit(t *testing.T) {
	disk := NewDisk()
	path := filepath.Join(t.TempDir(), "exact.bin")

	require.NoError(t, disk.Save(path, strings.NewReader(strings.Repeat("x", 10)), 10))
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Len(t, b, 10)
}

func TestDiskRemoveMissing(t *testing.T) {
	disk := NewDisk()
	err := disk.Remove(filepath.Join(t.TempDir(), "nope.png"))
	assert.True(t, os.IsNotExist(err))
}
