package domain

import "context"

// Classifier decides, exactly once per registration, how a locator should be
// acquired. Downstream code trusts the descriptor and never re-inspects the
// locator.
type Classifier interface {
	Classify(ctx context.Context, locator, ref string) (SourceDescriptor, error)
}

// Strategy acquires and materializes sources for one SourceKind.
//
// Register persists the intermediate representation (validated archive,
// compressed snapshot, or bare repository) and returns its path relative to
// the storage base. Materialize produces the canonical code tree from that
// intermediate, publishing it atomically.
type Strategy interface {
	Register(ctx context.Context, coord Coordinate, desc SourceDescriptor) (intermediatePath string, err error)
	Materialize(ctx context.Context, rs RegisteredSource) error
}

// Tracker derives artifact state from the filesystem and persists the
// registration record and index marker.
type Tracker interface {
	State(coord Coordinate) (State, error)
	IsMaterialized(coord Coordinate) (bool, error)
	IsIndexed(coord Coordinate) (bool, error)
	SaveRegistered(rs RegisteredSource) error
	LoadRegistered(coord Coordinate) (RegisteredSource, error)
	WriteIndexMarker(rs RegisteredSource) error
	CanonicalDir(coord Coordinate) (string, error)
	ListCoordinates() ([]Coordinate, error)
}

// Explorer runs read-only queries against a materialized tree rooted at an
// absolute directory path.
type Explorer interface {
	ListTree(root, startPath string, maxDepth int, includeFiles bool) (TreeSnapshot, error)
	FindByName(root, pattern, patternType, startPath string, maxDepth int) ([]FileMatch, error)
	FindByContent(root string, q ContentQuery) (map[string][]SearchMatch, error)
	ReadFile(root, path string, startLine, endLine int) (FileReadResult, error)
}
