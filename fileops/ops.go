package fileops

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// CopyFile copies src to dst, creating dst's directory and keeping src's permissions.
// It refuses to overwrite an existing dst. A partially written dst is removed.
func CopyFile(src, dst string) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("copy %s: is a directory", src)
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_EXCL|os.O_WRONLY, info.Mode().Perm())
	if err != nil {
		return err
	}
	defer func() {
		if cErr := out.Close(); err == nil {
			err = cErr
		}
		if err != nil {
			_ = os.Remove(dst)
		}
	}()

	_, err = io.Copy(out, in)
	return err
}

// RemoveFile deletes path. A missing file counts as deleted.
func RemoveFile(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// RenameFile moves src to dst, refusing to overwrite an existing dst.
func RenameFile(src, dst string) error {
	if _, err := os.Lstat(dst); err == nil {
		return fmt.Errorf("rename %s: %w", dst, fs.ErrExist)
	}
	return os.Rename(src, dst)
}

// Copy copies src to dst, escalating failures.
func (e *Escalation) Copy(src, dst string) (Outcome, error) {
	return e.Do(fmt.Sprintf("copy %s to %s", src, dst), func() error { return CopyFile(src, dst) })
}

// Delete removes path, escalating failures.
func (e *Escalation) Delete(path string) (Outcome, error) {
	return e.Do(fmt.Sprintf("delete %s", path), func() error { return RemoveFile(path) })
}

// Rename moves src to dst, escalating failures.
func (e *Escalation) Rename(src, dst string) (Outcome, error) {
	return e.Do(fmt.Sprintf("rename %s to %s", src, dst), func() error { return RenameFile(src, dst) })
}
