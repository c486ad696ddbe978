package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"jarindexer/internal/domain"
)

// LooksLikeZip reports whether the file has a readable zip central
// directory. Used by the source classifier; full CRC validation happens at
// registration.
func LooksLikeZip(path string) bool {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return false
	}
	_ = zr.Close()
	return true
}

// ValidateZip opens the central directory and reads every member to verify
// its checksum. A corrupt archive is rejected before anything is persisted.
func ValidateZip(path string) error {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return fmt.Errorf("%w: cannot open archive %s: %v", domain.ErrInvalidSource, filepath.Base(path), err)
	}
	defer zr.Close()

	for _, f := range zr.File {
		if err := checkZipEntry(f); err != nil {
			return fmt.Errorf("%w: corrupt archive entry %q: %v", domain.ErrInvalidSource, f.Name, err)
		}
	}
	return nil
}

func checkZipEntry(f *zip.File) error {
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()
	// Reading to EOF forces the CRC check.
	_, err = io.Copy(io.Discard, rc)
	return err
}

// ExtractZip unpacks the archive into dst. Entry names are checked against
// escaping dst before any write.
func ExtractZip(src, dst string) error {
	zr, err := zip.OpenReader(src)
	if err != nil {
		return fmt.Errorf("%w: cannot open archive %s: %v", domain.ErrInvalidSource, filepath.Base(src), err)
	}
	defer zr.Close()

	for _, f := range zr.File {
		target, err := safeJoin(dst, f.Name)
		if err != nil {
			return err
		}
		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return err
			}
			continue
		}
		if err := writeZipEntry(f, target); err != nil {
			return err
		}
	}
	return nil
}

func writeZipEntry(f *zip.File, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, rc); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

// safeJoin resolves an archive entry name under dst and rejects absolute
// names and traversal sequences.
func safeJoin(dst, name string) (string, error) {
	cleaned := filepath.Clean(filepath.FromSlash(name))
	if filepath.IsAbs(cleaned) || cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: archive entry escapes extraction root: %q", domain.ErrInvalidSource, name)
	}
	return filepath.Join(dst, cleaned), nil
}
