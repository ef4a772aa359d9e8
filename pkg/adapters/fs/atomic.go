package fs

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// TempFilePrefix is the prefix used for temporary atomic write files.
	TempFilePrefix = "odf-tmp-"
)

// AtomicFile is an output file that only appears at its final path on Commit.
// Exporters that need random access (NetCDF) write through File directly.
type AtomicFile struct {
	*os.File
	target string
	perm   os.FileMode
	done   bool
}

// CreateAtomic creates a temporary file next to filename.
func CreateAtomic(filename string, perm os.FileMode) (*AtomicFile, error) {
	dir := filepath.Dir(filename)

	// Create a temporary file in the same directory to ensure atomic rename
	tmpFile, err := os.CreateTemp(dir, TempFilePrefix+"*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	return &AtomicFile{File: tmpFile, target: filename, perm: perm}, nil
}

// Commit syncs, closes and renames the temporary file to its target.
func (f *AtomicFile) Commit() error {
	if f.done {
		return fmt.Errorf("atomic file %s already closed", f.target)
	}
	f.done = true
	defer os.Remove(f.Name()) // Clean up if we fail before rename

	if err := f.Sync(); err != nil {
		f.File.Close()
		return fmt.Errorf("failed to sync temp file: %w", err)
	}

	if err := f.File.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Chmod(f.Name(), f.perm); err != nil {
		return fmt.Errorf("failed to chmod temp file: %w", err)
	}

	if err := os.Rename(f.Name(), f.target); err != nil {
		return fmt.Errorf("failed to rename temp file to %s: %w", f.target, err)
	}
	return nil
}

// Abort discards the temporary file. It is a no-op after Commit.
func (f *AtomicFile) Abort() {
	if f.done {
		return
	}
	f.done = true
	f.File.Close()
	os.Remove(f.Name())
}

// WriteFileAtomic writes data to a file atomically by writing to a temp file
// and then renaming it to the target filename.
func WriteFileAtomic(filename string, data []byte, perm os.FileMode) error {
	f, err := CreateAtomic(filename, perm)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Abort()
		return fmt.Errorf("failed to write to temp file: %w", err)
	}
	return f.Commit()
}
