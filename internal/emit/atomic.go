// Package emit writes a driver's output to disk the same way
// core/atomicwriter.go writes a transformed file back: to a temp file
// next to the destination, then renamed into place, so a crash or a
// concurrent reader never observes a half-written inventory or object
// model dump. Unlike the teacher's AtomicWriter, there is exactly one
// writer per destination path in this driver (one build, one output
// file), so the cross-goroutine file-lock bookkeeping it needed doesn't
// apply here.
package emit

import (
	"fmt"
	"os"
)

// WriteFile atomically writes data to path: temp file in the same
// directory, fsync, rename.
func WriteFile(path string, data []byte) error {
	info, err := os.Stat(path)
	mode := os.FileMode(0o644)
	if err == nil {
		mode = info.Mode()
	}

	tempPath := path + ".apidocs.tmp"
	f, err := os.OpenFile(tempPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return fmt.Errorf("emit: creating temp file: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tempPath)
		return fmt.Errorf("emit: writing %s: %w", tempPath, err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tempPath)
		return fmt.Errorf("emit: syncing %s: %w", tempPath, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("emit: closing %s: %w", tempPath, err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("emit: renaming into place: %w", err)
	}
	return nil
}
