package explore

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"jarindexer/internal/domain"
)

const binarySniffLen = 1024

// Engine answers read-only queries against materialized source trees. It
// holds no state; the root directory is passed per call.
type Engine struct{}

func New() *Engine { return &Engine{} }

// Entries that belong to the store or to version control, never to the
// sources themselves. .git is a directory in clones but a file in worktrees.
func skippedEntry(name string) bool {
	return name == ".git" || name == ".index"
}

// resolveStart maps a slash-separated relative path onto the tree root,
// refusing anything that would escape it.
func resolveStart(root, startPath string) (string, error) {
	startPath = strings.TrimSpace(startPath)
	if startPath == "" || startPath == "." {
		return root, nil
	}
	cleaned := filepath.Clean(filepath.FromSlash(startPath))
	if filepath.IsAbs(cleaned) || cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: path escapes the source tree: %q", domain.ErrInvalidInput, startPath)
	}
	return filepath.Join(root, cleaned), nil
}

func resolveStartDir(root, startPath string) (string, error) {
	full, err := resolveStart(root, startPath)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(full)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %q", domain.ErrResourceNotFound, startPath)
		}
		return "", err
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%w: %q is not a directory", domain.ErrInvalidInput, startPath)
	}
	return full, nil
}

func fileInfo(path string) (domain.FileInfo, error) {
	info, err := os.Stat(path)
	if err != nil {
		return domain.FileInfo{}, err
	}
	lines, err := countLines(path)
	if err != nil {
		return domain.FileInfo{}, err
	}
	return domain.FileInfo{
		Name:      info.Name(),
		Size:      humanSize(info.Size()),
		LineCount: lines,
	}, nil
}

func humanSize(size int64) string {
	if size < 1024 {
		return fmt.Sprintf("%d B", size)
	}
	value := float64(size)
	for _, unit := range []string{"KB", "MB", "GB", "TB"} {
		value /= 1024
		if value < 1024 || unit == "TB" {
			return fmt.Sprintf("%.1f %s", value, unit)
		}
	}
	return ""
}

// isBinary applies the classic NUL-byte sniff to the first kilobyte.
func isBinary(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	buf := make([]byte, binarySniffLen)
	n, err := f.Read(buf)
	if err != nil && err != io.EOF {
		return false, err
	}
	return bytes.IndexByte(buf[:n], 0) >= 0, nil
}

// countLines counts text lines the way an iterating reader would: a trailing
// fragment without a newline still counts. Binary files report zero.
func countLines(path string) (int, error) {
	binary, err := isBinary(path)
	if err != nil {
		return 0, err
	}
	if binary {
		return 0, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	count := 0
	sawTail := false
	buf := make([]byte, 64*1024)
	for {
		n, err := f.Read(buf)
		if n > 0 {
			count += bytes.Count(buf[:n], []byte{'\n'})
			sawTail = buf[n-1] != '\n'
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, err
		}
	}
	if sawTail {
		count++
	}
	return count, nil
}

// readLines loads a text file as a line slice without terminators.
func readLines(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, nil
	}
	text := strings.TrimSuffix(string(data), "\n")
	return strings.Split(text, "\n"), nil
}
