package storage

import (
	"os"
	"path/filepath"

	"jarindexer/internal/domain"
)

const (
	dirSourceJar = "source-jar"
	dirSourceDir = "source-dir"
	dirGitBare   = "git-bare"
	dirCode      = "code"
	dirRegistry  = "registry"

	indexDirName    = ".index"
	markerFileName  = "marker"
	snapshotName    = "sources.tar.zst"
	bareRepoName    = "repo.git"
	registryName    = "source.json"
	sourceJarSuffix = "-sources.jar"
)

// Layout maps coordinates to paths under the base directory. Coordinate
// fields are validated before they reach here, so each field is safe as a
// single path component.
type Layout struct {
	base string
}

func NewLayout(base string) *Layout {
	return &Layout{base: base}
}

func (l *Layout) Base() string { return l.base }

// EnsureRoots creates the top-level storage directories.
func (l *Layout) EnsureRoots() error {
	for _, d := range []string{dirSourceJar, dirSourceDir, dirGitBare, dirCode, dirRegistry} {
		if err := os.MkdirAll(filepath.Join(l.base, d), 0o755); err != nil {
			return err
		}
	}
	return nil
}

func coordPath(c domain.Coordinate) string {
	return filepath.Join(c.Group, c.Artifact, c.Version)
}

// Rel converts an absolute path under the base into a base-relative one, so
// persisted records survive relocating the store.
func (l *Layout) Rel(abs string) string {
	rel, err := filepath.Rel(l.base, abs)
	if err != nil {
		return abs
	}
	return rel
}

func (l *Layout) Abs(rel string) string {
	if filepath.IsAbs(rel) {
		return rel
	}
	return filepath.Join(l.base, rel)
}

func (l *Layout) SourceJarDir(c domain.Coordinate) string {
	return filepath.Join(l.base, dirSourceJar, coordPath(c))
}

func (l *Layout) SourceJarPath(c domain.Coordinate) string {
	return filepath.Join(l.SourceJarDir(c), c.Artifact+"-"+c.Version+sourceJarSuffix)
}

func (l *Layout) SnapshotPath(c domain.Coordinate) string {
	return filepath.Join(l.base, dirSourceDir, coordPath(c), snapshotName)
}

// BareRepoDir is keyed by group and artifact only: every version of an
// artifact shares one bare clone.
func (l *Layout) BareRepoDir(group, artifact string) string {
	return filepath.Join(l.base, dirGitBare, group, artifact, bareRepoName)
}

func (l *Layout) CodeDir(c domain.Coordinate) string {
	return filepath.Join(l.base, dirCode, coordPath(c))
}

func (l *Layout) IndexMarkerPath(c domain.Coordinate) string {
	return filepath.Join(l.CodeDir(c), indexDirName, markerFileName)
}

func (l *Layout) RegistryPath(c domain.Coordinate) string {
	return filepath.Join(l.base, dirRegistry, coordPath(c), registryName)
}
