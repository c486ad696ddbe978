package mavencache

import (
	"os"
	"path/filepath"
	"strings"

	"jarindexer/internal/domain"
)

const (
	CacheTypeMaven  = "maven"
	CacheTypeGradle = "gradle"
)

// Scanner looks for already-downloaded sources jars in the local Maven and
// Gradle caches, so a registration can point at a file that is already on
// disk instead of hitting the network.
type Scanner struct {
	mavenRoot  string
	gradleRoot string
}

// NewScanner locates the caches under the user's home directory.
func NewScanner() *Scanner {
	home, err := os.UserHomeDir()
	if err != nil {
		return &Scanner{}
	}
	return NewScannerAt(
		filepath.Join(home, ".m2", "repository"),
		filepath.Join(home, ".gradle", "caches", "modules-2", "files-2.1"),
	)
}

func NewScannerAt(mavenRoot, gradleRoot string) *Scanner {
	return &Scanner{mavenRoot: mavenRoot, gradleRoot: gradleRoot}
}

// Search scans the requested caches for sources jars of the given group and
// artifact. version narrows to one version when set; cacheTypes defaults to
// both caches when empty.
func (s *Scanner) Search(group, artifact, version string, cacheTypes []string) ([]domain.CachedSourceJar, error) {
	if len(cacheTypes) == 0 {
		cacheTypes = []string{CacheTypeMaven, CacheTypeGradle}
	}

	var out []domain.CachedSourceJar
	for _, ct := range cacheTypes {
		switch ct {
		case CacheTypeMaven:
			out = append(out, s.scanMaven(group, artifact, version)...)
		case CacheTypeGradle:
			out = append(out, s.scanGradle(group, artifact, version)...)
		}
	}
	return out, nil
}

// scanMaven walks ~/.m2/repository/{group as path}/{artifact}/{version}/.
// Maven stores groups with dots expanded to directories.
func (s *Scanner) scanMaven(group, artifact, version string) []domain.CachedSourceJar {
	if s.mavenRoot == "" {
		return nil
	}
	artifactDir := filepath.Join(s.mavenRoot, filepath.FromSlash(strings.ReplaceAll(group, ".", "/")), artifact)

	var out []domain.CachedSourceJar
	for _, v := range versionDirs(artifactDir, version) {
		jar := filepath.Join(artifactDir, v, artifact+"-"+v+"-sources.jar")
		if _, err := os.Stat(jar); err == nil {
			out = append(out, domain.CachedSourceJar{
				Path:      jar,
				CacheType: CacheTypeMaven,
				Group:     group,
				Artifact:  artifact,
				Version:   v,
			})
		}
	}
	return out
}

// scanGradle walks ~/.gradle/caches/modules-2/files-2.1/{group}/{artifact}/
// {version}/{sha1}/. Gradle keeps the dotted group as one directory and adds
// a checksum level above the files.
func (s *Scanner) scanGradle(group, artifact, version string) []domain.CachedSourceJar {
	if s.gradleRoot == "" {
		return nil
	}
	artifactDir := filepath.Join(s.gradleRoot, group, artifact)

	var out []domain.CachedSourceJar
	for _, v := range versionDirs(artifactDir, version) {
		hashDirs, err := os.ReadDir(filepath.Join(artifactDir, v))
		if err != nil {
			continue
		}
		for _, h := range hashDirs {
			if !h.IsDir() {
				continue
			}
			files, err := os.ReadDir(filepath.Join(artifactDir, v, h.Name()))
			if err != nil {
				continue
			}
			for _, f := range files {
				if f.IsDir() || !strings.HasSuffix(f.Name(), "-sources.jar") {
					continue
				}
				out = append(out, domain.CachedSourceJar{
					Path:      filepath.Join(artifactDir, v, h.Name(), f.Name()),
					CacheType: CacheTypeGradle,
					Group:     group,
					Artifact:  artifact,
					Version:   v,
				})
			}
		}
	}
	return out
}

func versionDirs(artifactDir, version string) []string {
	if version != "" {
		if info, err := os.Stat(filepath.Join(artifactDir, version)); err == nil && info.IsDir() {
			return []string{version}
		}
		return nil
	}
	entries, err := os.ReadDir(artifactDir)
	if err != nil {
		return nil
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() {
			out = append(out, e.Name())
		}
	}
	return out
}
