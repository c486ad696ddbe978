package mcp

import (
	"context"
	"encoding/json"

	"jarindexer/internal/domain"
)

type listArtifactsArgs struct {
	GroupPrefix    string `json:"group_id"`
	ArtifactPrefix string `json:"artifact_id"`
	Version        string `json:"version"`
	Offset         int    `json:"offset"`
	Limit          int    `json:"limit"`
}

const defaultListLimit = 50

func (s *Server) toolListArtifacts(ctx context.Context, args json.RawMessage) (any, *jsonRPCError) {
	var a listArtifactsArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return toolError("invalid arguments"), nil
	}
	if a.Limit <= 0 {
		a.Limit = defaultListLimit
	}

	statuses, total, err := s.svc.ListArtifacts(ctx, domain.ListFilter{
		GroupPrefix:    a.GroupPrefix,
		ArtifactPrefix: a.ArtifactPrefix,
		Version:        a.Version,
		Offset:         a.Offset,
		Limit:          a.Limit,
	})
	if err != nil {
		return toolErrorFromErr(err), nil
	}

	rows := make([]map[string]any, 0, len(statuses))
	for _, st := range statuses {
		rows = append(rows, map[string]any{
			"group_id":    st.Coordinate.Group,
			"artifact_id": st.Coordinate.Artifact,
			"version":     st.Coordinate.Version,
			"source_kind": st.Kind,
			"state":       st.State,
		})
	}
	return structuredResult(map[string]any{
		"artifacts": rows,
		"total":     total,
		"offset":    a.Offset,
		"limit":     a.Limit,
	}), nil
}

type searchCachedArtifactArgs struct {
	GroupID    string   `json:"group_id"`
	ArtifactID string   `json:"artifact_id"`
	Version    string   `json:"version"`
	CacheTypes []string `json:"cache_types"`
}

func (s *Server) toolSearchCachedArtifact(ctx context.Context, args json.RawMessage) (any, *jsonRPCError) {
	var a searchCachedArtifactArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return toolError("invalid arguments"), nil
	}

	// Coordinate fields become cache path components, so they go through the
	// same validation as every other tool before touching the filesystem.
	probe := a.Version
	if probe == "" {
		probe = "0"
	}
	if _, err := domain.NewCoordinate(a.GroupID, a.ArtifactID, probe); err != nil {
		return toolErrorFromErr(err), nil
	}

	hits, err := s.cache.Search(a.GroupID, a.ArtifactID, a.Version, a.CacheTypes)
	if err != nil {
		return toolErrorFromErr(err), nil
	}
	if hits == nil {
		hits = []domain.CachedSourceJar{}
	}
	return structuredResult(map[string]any{
		"group_id":    a.GroupID,
		"artifact_id": a.ArtifactID,
		"matches":     hits,
		"count":       len(hits),
	}), nil
}
