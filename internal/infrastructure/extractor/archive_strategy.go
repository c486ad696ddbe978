package extractor

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"jarindexer/internal/domain"
	"jarindexer/internal/infrastructure/archive"
	"jarindexer/internal/infrastructure/fetch"
	"jarindexer/internal/infrastructure/storage"
)

// ArchiveStrategy handles sources jars. Registration validates the archive
// and stores it under source-jar/; materialization extracts it into the
// canonical tree.
type ArchiveStrategy struct {
	layout  *storage.Layout
	dl      *fetch.Downloader
	mirrors []string
}

func NewArchiveStrategy(layout *storage.Layout, dl *fetch.Downloader, mirrors []string) *ArchiveStrategy {
	return &ArchiveStrategy{layout: layout, dl: dl, mirrors: mirrors}
}

func (a *ArchiveStrategy) Register(ctx context.Context, coord domain.Coordinate, desc domain.SourceDescriptor) (string, error) {
	jarPath := a.layout.SourceJarPath(coord)

	if desc.Remote {
		if err := a.download(ctx, coord, desc.Locator, jarPath); err != nil {
			return "", err
		}
	} else {
		if err := archive.ValidateZip(desc.Locator); err != nil {
			return "", err
		}
		if err := copyFileAtomic(desc.Locator, jarPath); err != nil {
			return "", err
		}
	}
	return a.layout.Rel(jarPath), nil
}

// download fetches into a sibling temp name, validates, then renames into
// place so a corrupt or partial download never lands at the final path.
func (a *ArchiveStrategy) download(ctx context.Context, coord domain.Coordinate, url, jarPath string) error {
	urls := append([]string{url}, expandMirrors(a.mirrors, coord)...)
	partial := jarPath + ".partial"
	defer func() {
		_ = os.Remove(partial)
	}()

	if err := a.dl.Fetch(ctx, urls, partial); err != nil {
		return err
	}
	if err := archive.ValidateZip(partial); err != nil {
		return err
	}
	return os.Rename(partial, jarPath)
}

func (a *ArchiveStrategy) Materialize(ctx context.Context, rs domain.RegisteredSource) error {
	jarPath := a.layout.SourceJarPath(rs.Coordinate)
	if rs.IntermediatePath != "" {
		jarPath = a.layout.Abs(rs.IntermediatePath)
	}

	if _, err := os.Stat(jarPath); err != nil {
		if !os.IsNotExist(err) {
			return err
		}
		// Intermediate lost (store pruned). Remote sources can be fetched
		// again; local ones cannot.
		if !strings.HasPrefix(rs.Locator, "http://") && !strings.HasPrefix(rs.Locator, "https://") {
			return fmt.Errorf("%w: stored archive missing for %s", domain.ErrResourceNotFound, rs.Coordinate)
		}
		if err := a.download(ctx, rs.Coordinate, rs.Locator, jarPath); err != nil {
			return err
		}
	}

	return storage.PublishDir(a.layout.CodeDir(rs.Coordinate), func(staging string) error {
		return archive.ExtractZip(jarPath, staging)
	})
}

// expandMirrors renders mirror URL templates for a coordinate. Templates use
// {group}, {artifact}, and {version} placeholders; {group} follows the Maven
// repository convention of slash-separated group segments.
func expandMirrors(templates []string, c domain.Coordinate) []string {
	groupPath := strings.ReplaceAll(c.Group, ".", "/")
	out := make([]string, 0, len(templates))
	for _, t := range templates {
		u := strings.NewReplacer(
			"{group}", groupPath,
			"{artifact}", c.Artifact,
			"{version}", c.Version,
		).Replace(t)
		if strings.ContainsAny(u, "{}") {
			continue
		}
		out = append(out, u)
	}
	return out
}

func copyFileAtomic(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".copy-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		_ = os.Remove(tmpName)
	}()

	if _, err := io.Copy(tmp, in); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, dst)
}
