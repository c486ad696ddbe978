package explore

import (
	"fmt"
	"os"

	"jarindexer/internal/domain"
)

// ReadFile returns file metadata plus a line range of its content. A zero
// startLine or endLine means "from the beginning" and "to the end"
// respectively. The end clamps to EOF; a start past EOF yields an empty
// range rather than an error.
func (e *Engine) ReadFile(root, path string, startLine, endLine int) (domain.FileReadResult, error) {
	full, err := resolveStart(root, path)
	if err != nil {
		return domain.FileReadResult{}, err
	}
	info, err := os.Stat(full)
	if err != nil {
		if os.IsNotExist(err) {
			return domain.FileReadResult{}, fmt.Errorf("%w: %q", domain.ErrResourceNotFound, path)
		}
		return domain.FileReadResult{}, err
	}
	if info.IsDir() {
		return domain.FileReadResult{}, fmt.Errorf("%w: %q is a directory", domain.ErrInvalidInput, path)
	}
	if startLine < 0 || endLine < 0 || (endLine > 0 && startLine > endLine) {
		return domain.FileReadResult{}, fmt.Errorf("%w: invalid line range %d-%d", domain.ErrInvalidInput, startLine, endLine)
	}

	fi, err := fileInfo(full)
	if err != nil {
		return domain.FileReadResult{}, err
	}
	lines, err := readLines(full)
	if err != nil {
		return domain.FileReadResult{}, err
	}
	n := len(lines)

	start := startLine
	if start < 1 {
		start = 1
	}
	end := endLine
	if end == 0 || end > n {
		end = n
	}

	content := domain.FileContent{StartLine: start, EndLine: end}
	if start <= end {
		var sb []byte
		for ln := start; ln <= end; ln++ {
			sb = append(sb, lines[ln-1]...)
			if ln < end {
				sb = append(sb, '\n')
			}
		}
		content.SourceCode = string(sb)
	}

	return domain.FileReadResult{Info: fi, Content: content}, nil
}
