package domain

// FileInfo describes one file inside a materialized tree. Size is
// human-readable ("4.2 KB"); LineCount is 0 for binary files.
type FileInfo struct {
	Name      string `json:"name"`
	Size      string `json:"size"`
	LineCount int    `json:"line_count"`
}

// FolderInfo is one node of a directory tree listing. Files and Folders are
// populated only for folders within the requested depth; FileCount is always
// set.
type FolderInfo struct {
	Name      string       `json:"name"`
	FileCount int          `json:"file_count"`
	Files     []FileInfo   `json:"files,omitempty"`
	Folders   []FolderInfo `json:"folders,omitempty"`
}

// TreeSnapshot is the result of a tree listing rooted at StartPath.
type TreeSnapshot struct {
	StartPath string       `json:"start_path"`
	MaxDepth  int          `json:"max_depth"`
	Files     []FileInfo   `json:"files,omitempty"`
	Folders   []FolderInfo `json:"folders,omitempty"`
}

// FileMatch is one file found by a name search. Path is relative to the
// canonical tree, slash-separated.
type FileMatch struct {
	Name      string `json:"name"`
	Path      string `json:"path"`
	Size      string `json:"size"`
	LineCount int    `json:"line_count"`
}

// SearchMatch is one context window around content matches in a single file.
// ContentRange is "start-end" (1-based, inclusive); MatchLines lists the
// matching line numbers inside the window, comma-separated.
type SearchMatch struct {
	Content      string `json:"content"`
	ContentRange string `json:"content_range"`
	MatchLines   string `json:"match_lines"`
}

// FileContent is a ranged read of a text file. StartLine/EndLine report the
// range actually returned after clamping; a start past EOF yields an empty
// SourceCode with EndLine < StartLine.
type FileContent struct {
	StartLine  int    `json:"start_line"`
	EndLine    int    `json:"end_line"`
	SourceCode string `json:"source_code"`
}

// FileReadResult pairs file metadata with the requested content range.
type FileReadResult struct {
	Info    FileInfo    `json:"file_info"`
	Content FileContent `json:"content"`
}

// ArtifactStatus is one row of a store listing.
type ArtifactStatus struct {
	Coordinate Coordinate `json:"coordinate"`
	Kind       SourceKind `json:"source_kind,omitempty"`
	State      State      `json:"state"`
}

// ContentQuery bundles the parameters of a content search.
type ContentQuery struct {
	Query      string
	QueryType  string // "string" or "regex"
	StartPath  string
	MaxDepth   int // < 0 means unlimited
	CtxBefore  int
	CtxAfter   int
	MaxResults int
}

// CachedSourceJar is one sources jar found in a local build-tool cache.
type CachedSourceJar struct {
	Path      string `json:"path"`
	CacheType string `json:"cache_type"` // "maven" or "gradle"
	Group     string `json:"group_id"`
	Artifact  string `json:"artifact_id"`
	Version   string `json:"version"`
}
