package storage

import (
	"fmt"
	"os"
	"path/filepath"
)

// AtomicWriteFile writes data to path via a temp file in the same directory
// followed by a rename, so readers never observe a partial file.
func AtomicWriteFile(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		_ = os.Remove(tmpName)
	}()

	if err := tmp.Chmod(perm); err != nil {
		_ = tmp.Close()
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	// Best-effort fsync of the directory. Ignore errors.
	if d, err := os.Open(dir); err == nil {
		_ = d.Sync()
		_ = d.Close()
	}
	return os.Rename(tmpName, path)
}

// PublishDir populates a staging directory next to target and swaps it in
// with renames. A failure in populate leaves the previous target untouched;
// a crash mid-swap leaves either the old tree or no tree, never a partial
// one.
func PublishDir(target string, populate func(staging string) error) error {
	parent := filepath.Dir(target)
	if err := os.MkdirAll(parent, 0o755); err != nil {
		return err
	}

	staging, err := os.MkdirTemp(parent, ".staging-*")
	if err != nil {
		return err
	}
	defer func() {
		_ = os.RemoveAll(staging)
	}()

	if err := populate(staging); err != nil {
		return err
	}

	return SwapDir(staging, target)
}

// SwapDir replaces target with src. The old target, if any, is renamed
// aside first and removed after the swap succeeds.
func SwapDir(src, target string) error {
	parent := filepath.Dir(target)
	old, err := os.MkdirTemp(parent, ".old-*")
	if err != nil {
		return err
	}
	// MkdirTemp is only used to reserve a unique name.
	if err := os.Remove(old); err != nil {
		return err
	}

	hadPrevious := true
	if err := os.Rename(target, old); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("move previous tree aside: %w", err)
		}
		hadPrevious = false
	}

	if err := os.Rename(src, target); err != nil {
		if hadPrevious {
			_ = os.Rename(old, target)
		}
		return fmt.Errorf("publish tree: %w", err)
	}

	if hadPrevious {
		_ = os.RemoveAll(old)
	}
	return nil
}
