package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"jarindexer/internal/domain"
)

// Store persists registration records and index markers and derives artifact
// state from directory presence. The filesystem is the only source of truth;
// nothing here caches state in memory.
type Store struct {
	layout *Layout
}

func NewStore(layout *Layout) *Store {
	return &Store{layout: layout}
}

func (s *Store) Layout() *Layout { return s.layout }

type markerFile struct {
	Version    int               `json:"version"`
	IndexedAt  time.Time         `json:"indexed_at"`
	SourceKind domain.SourceKind `json:"source_kind,omitempty"`
	GitRef     string            `json:"vcs_ref,omitempty"`
}

func (s *Store) State(c domain.Coordinate) (domain.State, error) {
	indexed, err := s.IsIndexed(c)
	if err != nil {
		return "", err
	}
	if indexed {
		return domain.StateIndexed, nil
	}

	materialized, err := s.IsMaterialized(c)
	if err != nil {
		return "", err
	}
	if materialized {
		return domain.StateMaterialized, nil
	}

	if _, err := os.Stat(s.layout.RegistryPath(c)); err == nil {
		return domain.StateRegistered, nil
	} else if !os.IsNotExist(err) {
		return "", err
	}
	return domain.StateAbsent, nil
}

// IsMaterialized reports whether the canonical tree exists and holds at
// least one entry besides the index marker directory.
func (s *Store) IsMaterialized(c domain.Coordinate) (bool, error) {
	entries, err := os.ReadDir(s.layout.CodeDir(c))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	for _, e := range entries {
		if e.Name() != indexDirName {
			return true, nil
		}
	}
	return false, nil
}

// IsIndexed requires the marker to both exist and parse; a corrupt marker
// demotes the coordinate to materialized so the next indexing run rewrites
// it.
func (s *Store) IsIndexed(c domain.Coordinate) (bool, error) {
	b, err := os.ReadFile(s.layout.IndexMarkerPath(c))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	var m markerFile
	if err := json.Unmarshal(b, &m); err != nil {
		return false, nil
	}
	materialized, err := s.IsMaterialized(c)
	if err != nil {
		return false, err
	}
	return materialized, nil
}

func (s *Store) SaveRegistered(rs domain.RegisteredSource) error {
	b, err := json.MarshalIndent(rs, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal registration: %w", err)
	}
	if err := AtomicWriteFile(s.layout.RegistryPath(rs.Coordinate), b, 0o644); err != nil {
		return fmt.Errorf("write registration: %w", err)
	}
	return nil
}

func (s *Store) LoadRegistered(c domain.Coordinate) (domain.RegisteredSource, error) {
	b, err := os.ReadFile(s.layout.RegistryPath(c))
	if err != nil {
		if os.IsNotExist(err) {
			return domain.RegisteredSource{}, fmt.Errorf("%w: %s", domain.ErrNotRegistered, c)
		}
		return domain.RegisteredSource{}, fmt.Errorf("read registration: %w", err)
	}
	var rs domain.RegisteredSource
	if err := json.Unmarshal(b, &rs); err != nil {
		return domain.RegisteredSource{}, fmt.Errorf("%w: corrupt registration record for %s: %v", domain.ErrInternal, c, err)
	}
	return rs, nil
}

func (s *Store) WriteIndexMarker(rs domain.RegisteredSource) error {
	m := markerFile{
		Version:    1,
		IndexedAt:  time.Now().UTC(),
		SourceKind: rs.Kind,
		GitRef:     rs.GitRef,
	}
	b, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal marker: %w", err)
	}
	if err := AtomicWriteFile(s.layout.IndexMarkerPath(rs.Coordinate), b, 0o644); err != nil {
		return fmt.Errorf("write marker: %w", err)
	}
	return nil
}

func (s *Store) CanonicalDir(c domain.Coordinate) (string, error) {
	materialized, err := s.IsMaterialized(c)
	if err != nil {
		return "", err
	}
	if !materialized {
		return "", fmt.Errorf("%w: %s", domain.ErrNotMaterialized, c)
	}
	return s.layout.CodeDir(c), nil
}

// ListCoordinates scans the registry and code roots three levels deep and
// returns the union of valid coordinates found in either.
func (s *Store) ListCoordinates() ([]domain.Coordinate, error) {
	seen := map[string]domain.Coordinate{}
	for _, root := range []string{
		filepath.Join(s.layout.base, dirRegistry),
		filepath.Join(s.layout.base, dirCode),
	} {
		if err := scanCoordinateRoot(root, seen); err != nil {
			return nil, err
		}
	}

	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]domain.Coordinate, 0, len(keys))
	for _, k := range keys {
		out = append(out, seen[k])
	}
	return out, nil
}

func scanCoordinateRoot(root string, seen map[string]domain.Coordinate) error {
	groups, err := os.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	for _, g := range groups {
		if !g.IsDir() {
			continue
		}
		artifacts, err := os.ReadDir(filepath.Join(root, g.Name()))
		if err != nil {
			continue
		}
		for _, a := range artifacts {
			if !a.IsDir() {
				continue
			}
			versions, err := os.ReadDir(filepath.Join(root, g.Name(), a.Name()))
			if err != nil {
				continue
			}
			for _, v := range versions {
				if !v.IsDir() {
					continue
				}
				coord, err := domain.NewCoordinate(g.Name(), a.Name(), v.Name())
				if err != nil {
					// Stray directory, not a coordinate.
					continue
				}
				seen[coord.String()] = coord
			}
		}
	}
	return nil
}
