package extractor

import (
	"context"
	"os"
	"path/filepath"

	"jarindexer/internal/domain"
	"jarindexer/internal/infrastructure/gitrepo"
	"jarindexer/internal/infrastructure/storage"
)

// VCSStrategy keeps one bare clone per (group, artifact) and materializes
// versions as detached worktrees of it.
type VCSStrategy struct {
	layout *storage.Layout
	git    *gitrepo.Runner
}

func NewVCSStrategy(layout *storage.Layout, git *gitrepo.Runner) *VCSStrategy {
	return &VCSStrategy{layout: layout, git: git}
}

func (v *VCSStrategy) Register(ctx context.Context, coord domain.Coordinate, desc domain.SourceDescriptor) (string, error) {
	bareDir := v.layout.BareRepoDir(coord.Group, coord.Artifact)
	if err := v.git.EnsureBare(ctx, desc.Locator, bareDir); err != nil {
		return "", err
	}
	// Fail registration early when the requested ref does not exist.
	if desc.Ref != "" {
		if _, err := v.git.ResolveRef(ctx, bareDir, desc.Ref); err != nil {
			return "", err
		}
	}
	return v.layout.Rel(bareDir), nil
}

func (v *VCSStrategy) Materialize(ctx context.Context, rs domain.RegisteredSource) error {
	bareDir := v.layout.BareRepoDir(rs.Coordinate.Group, rs.Coordinate.Artifact)
	if rs.IntermediatePath != "" {
		bareDir = v.layout.Abs(rs.IntermediatePath)
	}

	// The bare clone is reproducible from the locator if it was pruned.
	if _, err := os.Stat(filepath.Join(bareDir, "HEAD")); err != nil {
		if err := v.git.EnsureBare(ctx, rs.Locator, bareDir); err != nil {
			return err
		}
	}

	ref := rs.GitRef
	if ref == "" {
		branch, err := v.git.DefaultBranch(ctx, bareDir)
		if err != nil {
			return err
		}
		ref = branch
	}
	return v.git.PublishWorktree(ctx, bareDir, ref, v.layout.CodeDir(rs.Coordinate))
}
