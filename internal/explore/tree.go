package explore

import (
	"os"
	"path/filepath"

	"jarindexer/internal/domain"
)

// ListTree lists the tree under startPath. Depth 0 covers the immediate
// children only; each further level expands one more layer of folders.
// Folders beyond the depth still appear by name with their file count.
func (e *Engine) ListTree(root, startPath string, maxDepth int, includeFiles bool) (domain.TreeSnapshot, error) {
	start, err := resolveStartDir(root, startPath)
	if err != nil {
		return domain.TreeSnapshot{}, err
	}

	snapshot := domain.TreeSnapshot{StartPath: startPath, MaxDepth: maxDepth}
	entries, err := os.ReadDir(start)
	if err != nil {
		return domain.TreeSnapshot{}, err
	}
	for _, entry := range entries {
		if skippedEntry(entry.Name()) {
			continue
		}
		if entry.IsDir() {
			folder, err := buildFolder(filepath.Join(start, entry.Name()), 1, maxDepth, includeFiles)
			if err != nil {
				return domain.TreeSnapshot{}, err
			}
			snapshot.Folders = append(snapshot.Folders, folder)
			continue
		}
		if includeFiles {
			fi, err := fileInfo(filepath.Join(start, entry.Name()))
			if err != nil {
				return domain.TreeSnapshot{}, err
			}
			snapshot.Files = append(snapshot.Files, fi)
		}
	}
	return snapshot, nil
}

func buildFolder(path string, depth, maxDepth int, includeFiles bool) (domain.FolderInfo, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		return domain.FolderInfo{}, err
	}

	folder := domain.FolderInfo{Name: filepath.Base(path)}
	for _, entry := range entries {
		if !entry.IsDir() && !skippedEntry(entry.Name()) {
			folder.FileCount++
		}
	}
	if depth > maxDepth {
		return folder, nil
	}

	for _, entry := range entries {
		if skippedEntry(entry.Name()) {
			continue
		}
		if entry.IsDir() {
			child, err := buildFolder(filepath.Join(path, entry.Name()), depth+1, maxDepth, includeFiles)
			if err != nil {
				return domain.FolderInfo{}, err
			}
			folder.Folders = append(folder.Folders, child)
			continue
		}
		if includeFiles {
			fi, err := fileInfo(filepath.Join(path, entry.Name()))
			if err != nil {
				return domain.FolderInfo{}, err
			}
			folder.Files = append(folder.Files, fi)
		}
	}
	return folder, nil
}
