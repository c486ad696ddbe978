package extractor

import (
	"context"
	"fmt"
	"os"

	"jarindexer/internal/domain"
	"jarindexer/internal/infrastructure/archive"
	"jarindexer/internal/infrastructure/storage"
)

// DirectoryStrategy snapshots a local directory at registration time, so
// later edits to the original never bleed into the materialized tree.
type DirectoryStrategy struct {
	layout *storage.Layout
}

func NewDirectoryStrategy(layout *storage.Layout) *DirectoryStrategy {
	return &DirectoryStrategy{layout: layout}
}

func (d *DirectoryStrategy) Register(ctx context.Context, coord domain.Coordinate, desc domain.SourceDescriptor) (string, error) {
	_ = ctx
	info, err := os.Stat(desc.Locator)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %q", domain.ErrResourceNotFound, desc.Locator)
		}
		return "", err
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%w: %q is not a directory", domain.ErrInvalidSource, desc.Locator)
	}

	snapPath := d.layout.SnapshotPath(coord)
	partial := snapPath + ".partial"
	defer func() {
		_ = os.Remove(partial)
	}()
	if err := archive.CompressDir(desc.Locator, partial); err != nil {
		return "", err
	}
	if err := os.Rename(partial, snapPath); err != nil {
		return "", err
	}
	return d.layout.Rel(snapPath), nil
}

func (d *DirectoryStrategy) Materialize(ctx context.Context, rs domain.RegisteredSource) error {
	_ = ctx
	snapPath := d.layout.SnapshotPath(rs.Coordinate)
	if rs.IntermediatePath != "" {
		snapPath = d.layout.Abs(rs.IntermediatePath)
	}
	if _, err := os.Stat(snapPath); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: stored snapshot missing for %s", domain.ErrResourceNotFound, rs.Coordinate)
		}
		return err
	}

	return storage.PublishDir(d.layout.CodeDir(rs.Coordinate), func(staging string) error {
		return archive.ExtractSnapshot(snapPath, staging)
	})
}
