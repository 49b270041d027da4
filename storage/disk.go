package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// ErrFileTooLarge is returned when an upload exceeds the size limit.
var ErrFileTooLarge = errors.New("file exceeds size limit")

// Storage is the filesystem adapter uploads go through. Handlers never
// touch the disk directly, so tests can substitute a fake.
type Storage interface {
	// Save writes r to path, creating parent directories. maxBytes <= 0
	// disables the limit. The file is not left behind on failure.
	Save(path string, r io.Reader, maxBytes int64) error
	// Remove deletes the file at path. Removing a missing file is an error.
	Remove(path string) error
}

// Disk stores files on the local filesystem.
type Disk struct{}

// NewDisk creates a Disk storage adapter.
func NewDisk() *Disk { return &Disk{} }

func (d *Disk) Save(path string, r io.Reader, maxBytes int64) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create upload directory: %w", err)
	}

	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}

	src := r
	if maxBytes > 0 {
		src = &io.LimitedReader{R: r, N: maxBytes + 1}
	}
	written, err := io.Copy(out, src)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(path)
		return fmt.Errorf("write file: %w", err)
	}
	if maxBytes > 0 && written > maxBytes {
		_ = os.Remove(path)
		return ErrFileTooLarge
	}
	return nil
}

func (d *Disk) Remove(path string) error {
	return os.Remove(path)
}
