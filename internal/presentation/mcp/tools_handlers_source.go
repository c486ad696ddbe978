package mcp

import (
	"context"
	"encoding/json"
	"log"
)

type coordinateArgs struct {
	GroupID    string `json:"group_id"`
	ArtifactID string `json:"artifact_id"`
	Version    string `json:"version"`
}

type registerSourceArgs struct {
	coordinateArgs
	SourceLocator string `json:"source_locator"`
	GitRef        string `json:"git_ref"`
	AutoIndex     bool   `json:"auto_index"`
}

func (s *Server) toolRegisterSource(ctx context.Context, args json.RawMessage) (any, *jsonRPCError) {
	var a registerSourceArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return toolError("invalid arguments"), nil
	}

	rs, outcome, err := s.svc.RegisterSource(ctx, a.GroupID, a.ArtifactID, a.Version, a.SourceLocator, a.GitRef, a.AutoIndex)
	if err != nil {
		log.Printf("event=register_source_failed coordinate=%q error=%q", a.GroupID+":"+a.ArtifactID+":"+a.Version, err.Error())
		return toolErrorFromErr(err), nil
	}
	log.Printf("event=register_source coordinate=%q kind=%s auto_index=%t", rs.Coordinate, rs.Kind, a.AutoIndex)

	res := map[string]any{
		"status":      "registered",
		"group_id":    rs.Coordinate.Group,
		"artifact_id": rs.Coordinate.Artifact,
		"version":     rs.Coordinate.Version,
		"source_kind": rs.Kind,
	}
	if rs.GitRef != "" {
		res["git_ref"] = rs.GitRef
	}
	if outcome != "" {
		res["status"] = "indexed"
		res["index_outcome"] = outcome
	}
	return structuredResult(res), nil
}

func (s *Server) toolIndexArtifact(ctx context.Context, args json.RawMessage) (any, *jsonRPCError) {
	var a coordinateArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return toolError("invalid arguments"), nil
	}

	outcome, err := s.svc.Materialize(ctx, a.GroupID, a.ArtifactID, a.Version)
	if err != nil {
		log.Printf("event=index_artifact_failed coordinate=%q error=%q", a.GroupID+":"+a.ArtifactID+":"+a.Version, err.Error())
		return toolErrorFromErr(err), nil
	}
	log.Printf("event=index_artifact coordinate=%q outcome=%s", a.GroupID+":"+a.ArtifactID+":"+a.Version, outcome)

	return structuredResult(map[string]any{
		"status":      "indexed",
		"group_id":    a.GroupID,
		"artifact_id": a.ArtifactID,
		"version":     a.Version,
		"outcome":     outcome,
	}), nil
}
