package explore

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"jarindexer/internal/domain"
)

const defaultMaxResults = 100

// FindByName searches for files whose name matches the pattern. patternType
// "regex" searches the name with the pattern; anything else is treated as a
// glob where * and ? are wildcards, matched against the whole name. maxDepth
// < 0 means unlimited.
func (e *Engine) FindByName(root, pattern, patternType, startPath string, maxDepth int) ([]domain.FileMatch, error) {
	match, err := compileNameMatcher(pattern, patternType)
	if err != nil {
		return nil, err
	}
	start, err := resolveStartDir(root, startPath)
	if err != nil {
		return nil, err
	}

	var out []domain.FileMatch
	var visit func(dir string, depth int) error
	visit = func(dir string, depth int) error {
		if maxDepth >= 0 && depth > maxDepth {
			return nil
		}
		entries, err := os.ReadDir(dir)
		if err != nil {
			return err
		}
		for _, entry := range entries {
			if skippedEntry(entry.Name()) {
				continue
			}
			full := filepath.Join(dir, entry.Name())
			if entry.IsDir() {
				if err := visit(full, depth+1); err != nil {
					return err
				}
				continue
			}
			if !match(entry.Name()) {
				continue
			}
			fi, err := fileInfo(full)
			if err != nil {
				return err
			}
			rel, err := filepath.Rel(root, full)
			if err != nil {
				return err
			}
			out = append(out, domain.FileMatch{
				Name:      fi.Name,
				Path:      filepath.ToSlash(rel),
				Size:      fi.Size,
				LineCount: fi.LineCount,
			})
		}
		return nil
	}
	if err := visit(start, 0); err != nil {
		return nil, err
	}
	return out, nil
}

func compileNameMatcher(pattern, patternType string) (func(string) bool, error) {
	if strings.TrimSpace(pattern) == "" {
		return nil, fmt.Errorf("%w: search pattern cannot be empty", domain.ErrInvalidInput)
	}
	if patternType == "regex" {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid regex %q: %v", domain.ErrInvalidInput, pattern, err)
		}
		return re.MatchString, nil
	}
	re, err := regexp.Compile(globToRegexp(pattern))
	if err != nil {
		return nil, fmt.Errorf("%w: invalid pattern %q: %v", domain.ErrInvalidInput, pattern, err)
	}
	return re.MatchString, nil
}

// globToRegexp turns a glob into an anchored regular expression. Only * and
// ? carry meaning; everything else is literal.
func globToRegexp(glob string) string {
	quoted := regexp.QuoteMeta(glob)
	quoted = strings.ReplaceAll(quoted, `\*`, `.*`)
	quoted = strings.ReplaceAll(quoted, `\?`, `.`)
	return "^" + quoted + "$"
}

// FindByContent searches file contents and returns per-file context windows.
// Windows around nearby matches in the same file merge into one entry; the
// total number of reported match lines is capped by MaxResults.
func (e *Engine) FindByContent(root string, q domain.ContentQuery) (map[string][]domain.SearchMatch, error) {
	matchLine, err := compileContentMatcher(q.Query, q.QueryType)
	if err != nil {
		return nil, err
	}
	start, err := resolveStartDir(root, q.StartPath)
	if err != nil {
		return nil, err
	}

	maxResults := q.MaxResults
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}

	out := map[string][]domain.SearchMatch{}
	remaining := maxResults

	var visit func(dir string, depth int) error
	visit = func(dir string, depth int) error {
		if remaining <= 0 {
			return nil
		}
		if q.MaxDepth >= 0 && depth > q.MaxDepth {
			return nil
		}
		entries, err := os.ReadDir(dir)
		if err != nil {
			return err
		}
		for _, entry := range entries {
			if remaining <= 0 {
				return nil
			}
			if skippedEntry(entry.Name()) {
				continue
			}
			full := filepath.Join(dir, entry.Name())
			if entry.IsDir() {
				if err := visit(full, depth+1); err != nil {
					return err
				}
				continue
			}

			matches, used, err := searchFile(full, matchLine, q.CtxBefore, q.CtxAfter, remaining)
			if err != nil {
				return err
			}
			if len(matches) == 0 {
				continue
			}
			rel, err := filepath.Rel(root, full)
			if err != nil {
				return err
			}
			out[filepath.ToSlash(rel)] = matches
			remaining -= used
		}
		return nil
	}
	if err := visit(start, 0); err != nil {
		return nil, err
	}
	return out, nil
}

func compileContentMatcher(query, queryType string) (func(string) bool, error) {
	if query == "" {
		return nil, fmt.Errorf("%w: search query cannot be empty", domain.ErrInvalidInput)
	}
	if queryType == "regex" {
		re, err := regexp.Compile(query)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid regex %q: %v", domain.ErrInvalidInput, query, err)
		}
		return re.MatchString, nil
	}
	return func(line string) bool { return strings.Contains(line, query) }, nil
}

func searchFile(path string, matchLine func(string) bool, before, after, limit int) ([]domain.SearchMatch, int, error) {
	binary, err := isBinary(path)
	if err != nil {
		return nil, 0, err
	}
	if binary {
		return nil, 0, nil
	}
	lines, err := readLines(path)
	if err != nil {
		return nil, 0, err
	}

	var hits []int
	for i, line := range lines {
		if matchLine(line) {
			hits = append(hits, i+1)
			if len(hits) == limit {
				break
			}
		}
	}
	if len(hits) == 0 {
		return nil, 0, nil
	}
	return buildWindows(lines, hits, before, after), len(hits), nil
}

type window struct {
	start, end int
	hits       []int
}

// buildWindows expands each hit into a context window clamped to the file
// bounds, then merges windows that touch or overlap.
func buildWindows(lines []string, hits []int, before, after int) []domain.SearchMatch {
	n := len(lines)
	var merged []window
	for _, hit := range hits {
		start := hit - before
		if start < 1 {
			start = 1
		}
		end := hit + after
		if end > n {
			end = n
		}
		if len(merged) > 0 && start <= merged[len(merged)-1].end+1 {
			last := &merged[len(merged)-1]
			if end > last.end {
				last.end = end
			}
			last.hits = append(last.hits, hit)
			continue
		}
		merged = append(merged, window{start: start, end: end, hits: []int{hit}})
	}

	out := make([]domain.SearchMatch, 0, len(merged))
	for _, w := range merged {
		var content strings.Builder
		for ln := w.start; ln <= w.end; ln++ {
			if ln > w.start {
				content.WriteByte('\n')
			}
			fmt.Fprintf(&content, "%4d: %s", ln, lines[ln-1])
		}
		hitStrs := make([]string, len(w.hits))
		for i, h := range w.hits {
			hitStrs[i] = strconv.Itoa(h)
		}
		out = append(out, domain.SearchMatch{
			Content:      content.String(),
			ContentRange: fmt.Sprintf("%d-%d", w.start, w.end),
			MatchLines:   strings.Join(hitStrs, ","),
		})
	}
	return out
}
