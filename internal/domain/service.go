package domain

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

const defaultLockWait = 5 * time.Second

// Service orchestrates registration, materialization, and read queries. All
// state lives on disk; the service itself only holds collaborators and the
// in-process coordinate locks.
type Service struct {
	classifier Classifier
	strategies map[SourceKind]Strategy
	tracker    Tracker
	explorer   Explorer

	locks    *keyedLocks
	lockWait time.Duration
}

func NewService(classifier Classifier, strategies map[SourceKind]Strategy, tracker Tracker, explorer Explorer, lockWait time.Duration) *Service {
	if lockWait <= 0 {
		lockWait = defaultLockWait
	}
	return &Service{
		classifier: classifier,
		strategies: strategies,
		tracker:    tracker,
		explorer:   explorer,
		locks:      newKeyedLocks(),
		lockWait:   lockWait,
	}
}

// RegisterSource classifies the locator, persists the intermediate
// representation and the registration record, and optionally materializes
// right away. Re-registering a coordinate replaces its record wholesale.
func (s *Service) RegisterSource(ctx context.Context, group, artifact, version, locator, gitRef string, autoIndex bool) (RegisteredSource, MaterializeOutcome, error) {
	coord, err := NewCoordinate(group, artifact, version)
	if err != nil {
		return RegisteredSource{}, "", err
	}
	if strings.TrimSpace(locator) == "" {
		return RegisteredSource{}, "", fmt.Errorf("%w: source locator cannot be empty", ErrInvalidInput)
	}

	release, err := s.locks.Acquire(coord.String(), s.lockWait)
	if err != nil {
		return RegisteredSource{}, "", err
	}
	defer release()

	desc, err := s.classifier.Classify(ctx, locator, gitRef)
	if err != nil {
		return RegisteredSource{}, "", err
	}

	strategy, ok := s.strategies[desc.Kind]
	if !ok {
		return RegisteredSource{}, "", fmt.Errorf("%w: %s", ErrUnsupportedSourceKind, desc.Kind)
	}

	intermediate, err := strategy.Register(ctx, coord, desc)
	if err != nil {
		return RegisteredSource{}, "", err
	}

	rs := RegisteredSource{
		Coordinate:       coord,
		Locator:          desc.Locator,
		Kind:             desc.Kind,
		GitRef:           desc.Ref,
		IntermediatePath: intermediate,
		RegisteredAt:     time.Now().UTC(),
	}
	if err := s.tracker.SaveRegistered(rs); err != nil {
		return RegisteredSource{}, "", err
	}

	if !autoIndex {
		return rs, "", nil
	}
	outcome, err := s.materializeLocked(ctx, coord)
	if err != nil {
		return rs, "", err
	}
	return rs, outcome, nil
}

// Materialize drives the coordinate to the indexed state, doing only the
// work its current state requires.
func (s *Service) Materialize(ctx context.Context, group, artifact, version string) (MaterializeOutcome, error) {
	coord, err := NewCoordinate(group, artifact, version)
	if err != nil {
		return "", err
	}

	release, err := s.locks.Acquire(coord.String(), s.lockWait)
	if err != nil {
		return "", err
	}
	defer release()

	return s.materializeLocked(ctx, coord)
}

func (s *Service) materializeLocked(ctx context.Context, coord Coordinate) (MaterializeOutcome, error) {
	indexed, err := s.tracker.IsIndexed(coord)
	if err != nil {
		return "", err
	}
	if indexed {
		return OutcomeAlreadyIndexed, nil
	}

	rs, loadErr := s.tracker.LoadRegistered(coord)

	materialized, err := s.tracker.IsMaterialized(coord)
	if err != nil {
		return "", err
	}
	if materialized {
		// Tree already present, the marker is the only missing piece.
		if loadErr != nil {
			rs = RegisteredSource{Coordinate: coord}
		}
		if err := s.tracker.WriteIndexMarker(rs); err != nil {
			return "", err
		}
		return OutcomeIndexedFromExistingTree, nil
	}

	if loadErr != nil {
		return "", loadErr
	}

	strategy, ok := s.strategies[rs.Kind]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedSourceKind, rs.Kind)
	}
	if err := strategy.Materialize(ctx, rs); err != nil {
		return "", err
	}
	if err := s.tracker.WriteIndexMarker(rs); err != nil {
		return "", err
	}
	return OutcomeIndexedFromSource, nil
}

// canonicalDir validates the coordinate and resolves its materialized tree.
// Reads never take the coordinate lock: they either see the previous
// complete tree or the new one, thanks to the atomic publish.
func (s *Service) canonicalDir(group, artifact, version string) (string, error) {
	coord, err := NewCoordinate(group, artifact, version)
	if err != nil {
		return "", err
	}
	return s.tracker.CanonicalDir(coord)
}

func (s *Service) ListTree(ctx context.Context, group, artifact, version, startPath string, maxDepth int, includeFiles bool) (TreeSnapshot, error) {
	_ = ctx
	root, err := s.canonicalDir(group, artifact, version)
	if err != nil {
		return TreeSnapshot{}, err
	}
	return s.explorer.ListTree(root, startPath, maxDepth, includeFiles)
}

func (s *Service) FindByName(ctx context.Context, group, artifact, version, pattern, patternType, startPath string, maxDepth int) ([]FileMatch, error) {
	_ = ctx
	root, err := s.canonicalDir(group, artifact, version)
	if err != nil {
		return nil, err
	}
	return s.explorer.FindByName(root, pattern, patternType, startPath, maxDepth)
}

func (s *Service) FindByContent(ctx context.Context, group, artifact, version string, q ContentQuery) (map[string][]SearchMatch, error) {
	_ = ctx
	root, err := s.canonicalDir(group, artifact, version)
	if err != nil {
		return nil, err
	}
	return s.explorer.FindByContent(root, q)
}

func (s *Service) ReadFile(ctx context.Context, group, artifact, version, path string, startLine, endLine int) (FileReadResult, error) {
	_ = ctx
	root, err := s.canonicalDir(group, artifact, version)
	if err != nil {
		return FileReadResult{}, err
	}
	return s.explorer.ReadFile(root, path, startLine, endLine)
}

// Describe reports one coordinate's derived state together with its
// registration record, when one exists. A coordinate with no trace on disk
// yields ErrResourceNotFound.
func (s *Service) Describe(ctx context.Context, group, artifact, version string) (ArtifactStatus, *RegisteredSource, error) {
	_ = ctx
	coord, err := NewCoordinate(group, artifact, version)
	if err != nil {
		return ArtifactStatus{}, nil, err
	}

	state, err := s.tracker.State(coord)
	if err != nil {
		return ArtifactStatus{}, nil, err
	}
	if state == StateAbsent {
		return ArtifactStatus{}, nil, fmt.Errorf("%w: %s", ErrResourceNotFound, coord)
	}

	status := ArtifactStatus{Coordinate: coord, State: state}
	rs, err := s.tracker.LoadRegistered(coord)
	if err != nil {
		if errors.Is(err, ErrNotRegistered) {
			return status, nil, nil
		}
		return ArtifactStatus{}, nil, err
	}
	status.Kind = rs.Kind
	return status, &rs, nil
}

// ListFilter narrows and pages a store listing. Prefixes match group and
// artifact IDs; Version matches exactly when set.
type ListFilter struct {
	GroupPrefix    string
	ArtifactPrefix string
	Version        string
	Offset         int
	Limit          int
}

// ListArtifacts reports every coordinate known to the store with its derived
// state. The second return value is the total matching count before paging.
func (s *Service) ListArtifacts(ctx context.Context, filter ListFilter) ([]ArtifactStatus, int, error) {
	_ = ctx
	coords, err := s.tracker.ListCoordinates()
	if err != nil {
		return nil, 0, err
	}

	filtered := coords[:0:0]
	for _, c := range coords {
		if filter.GroupPrefix != "" && !strings.HasPrefix(c.Group, filter.GroupPrefix) {
			continue
		}
		if filter.ArtifactPrefix != "" && !strings.HasPrefix(c.Artifact, filter.ArtifactPrefix) {
			continue
		}
		if filter.Version != "" && c.Version != filter.Version {
			continue
		}
		filtered = append(filtered, c)
	}
	sort.Slice(filtered, func(i, j int) bool {
		return filtered[i].String() < filtered[j].String()
	})

	total := len(filtered)
	if filter.Offset > 0 {
		if filter.Offset >= len(filtered) {
			filtered = nil
		} else {
			filtered = filtered[filter.Offset:]
		}
	}
	if filter.Limit > 0 && len(filtered) > filter.Limit {
		filtered = filtered[:filter.Limit]
	}

	out := make([]ArtifactStatus, 0, len(filtered))
	for _, c := range filtered {
		state, err := s.tracker.State(c)
		if err != nil {
			return nil, 0, err
		}
		status := ArtifactStatus{Coordinate: c, State: state}
		if rs, err := s.tracker.LoadRegistered(c); err == nil {
			status.Kind = rs.Kind
		} else if !errors.Is(err, ErrNotRegistered) {
			return nil, 0, err
		}
		out = append(out, status)
	}
	return out, total, nil
}
