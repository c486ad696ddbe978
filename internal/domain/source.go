package domain

import "time"

type SourceKind string

const (
	SourceKindArchive   SourceKind = "archive"
	SourceKindDirectory SourceKind = "directory"
	SourceKindVCS       SourceKind = "vcs"
)

// SourceDescriptor is the classifier's verdict about a locator. The kind is
// decided exactly once; downstream strategies never re-inspect the locator.
type SourceDescriptor struct {
	Kind    SourceKind
	Locator string // normalized: a local filesystem path or a remote URL
	Ref     string // vcs only
	Remote  bool   // locator must be fetched over the network
}

// RegisteredSource is the persisted registration record for one coordinate.
// Re-registration replaces it wholesale; it is never mutated in place.
// IntermediatePath is relative to the storage base directory so the whole
// store can be relocated.
type RegisteredSource struct {
	Coordinate       Coordinate `json:"coordinate"`
	Locator          string     `json:"source_locator"`
	Kind             SourceKind `json:"source_kind"`
	GitRef           string     `json:"vcs_ref,omitempty"`
	IntermediatePath string     `json:"intermediate_path"`
	RegisteredAt     time.Time  `json:"registered_at"`
}
