package mcp

import (
	"context"
	"encoding/json"

	"jarindexer/internal/domain"
)

type listFolderTreeArgs struct {
	coordinateArgs
	Path         string `json:"path"`
	MaxDepth     int    `json:"max_depth"`
	IncludeFiles *bool  `json:"include_files"`
}

func (s *Server) toolListFolderTree(ctx context.Context, args json.RawMessage) (any, *jsonRPCError) {
	var a listFolderTreeArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return toolError("invalid arguments"), nil
	}
	includeFiles := a.IncludeFiles == nil || *a.IncludeFiles

	snap, err := s.svc.ListTree(ctx, a.GroupID, a.ArtifactID, a.Version, a.Path, a.MaxDepth, includeFiles)
	if err != nil {
		return toolErrorFromErr(err), nil
	}
	return structuredResult(snap), nil
}

type searchFileNamesArgs struct {
	coordinateArgs
	Pattern     string `json:"pattern"`
	PatternType string `json:"pattern_type"`
	Path        string `json:"path"`
	MaxDepth    *int   `json:"max_depth"`
}

func (s *Server) toolSearchFileNames(ctx context.Context, args json.RawMessage) (any, *jsonRPCError) {
	var a searchFileNamesArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return toolError("invalid arguments"), nil
	}
	maxDepth := -1
	if a.MaxDepth != nil {
		maxDepth = *a.MaxDepth
	}

	matches, err := s.svc.FindByName(ctx, a.GroupID, a.ArtifactID, a.Version, a.Pattern, a.PatternType, a.Path, maxDepth)
	if err != nil {
		return toolErrorFromErr(err), nil
	}
	if matches == nil {
		matches = []domain.FileMatch{}
	}
	return structuredResult(map[string]any{
		"pattern": a.Pattern,
		"matches": matches,
		"count":   len(matches),
	}), nil
}

type searchFileContentArgs struct {
	coordinateArgs
	Query         string `json:"query"`
	QueryType     string `json:"query_type"`
	Path          string `json:"path"`
	MaxDepth      *int   `json:"max_depth"`
	ContextBefore *int   `json:"context_before"`
	ContextAfter  *int   `json:"context_after"`
	MaxResults    int    `json:"max_results"`
}

func (s *Server) toolSearchFileContent(ctx context.Context, args json.RawMessage) (any, *jsonRPCError) {
	var a searchFileContentArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return toolError("invalid arguments"), nil
	}

	q := domain.ContentQuery{
		Query:      a.Query,
		QueryType:  a.QueryType,
		StartPath:  a.Path,
		MaxDepth:   -1,
		CtxBefore:  2,
		CtxAfter:   2,
		MaxResults: a.MaxResults,
	}
	if a.MaxDepth != nil {
		q.MaxDepth = *a.MaxDepth
	}
	if a.ContextBefore != nil {
		q.CtxBefore = *a.ContextBefore
	}
	if a.ContextAfter != nil {
		q.CtxAfter = *a.ContextAfter
	}

	results, err := s.svc.FindByContent(ctx, a.GroupID, a.ArtifactID, a.Version, q)
	if err != nil {
		return toolErrorFromErr(err), nil
	}

	total := 0
	for _, matches := range results {
		total += len(matches)
	}
	return structuredResult(map[string]any{
		"query":   a.Query,
		"results": results,
		"files":   len(results),
		"windows": total,
	}), nil
}

type getFileArgs struct {
	coordinateArgs
	Path      string `json:"path"`
	StartLine int    `json:"start_line"`
	EndLine   int    `json:"end_line"`
}

func (s *Server) toolGetFile(ctx context.Context, args json.RawMessage) (any, *jsonRPCError) {
	var a getFileArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return toolError("invalid arguments"), nil
	}

	res, err := s.svc.ReadFile(ctx, a.GroupID, a.ArtifactID, a.Version, a.Path, a.StartLine, a.EndLine)
	if err != nil {
		return toolErrorFromErr(err), nil
	}
	return structuredResult(map[string]any{
		"path":      a.Path,
		"file_info": res.Info,
		"content":   res.Content,
	}), nil
}
