package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"jarindexer/internal/domain"
)

const resourceListLimit = 200

// jarURI renders the canonical resource URI for a coordinate.
func jarURI(c domain.Coordinate) string {
	return fmt.Sprintf("jar://%s/%s/%s", c.Group, c.Artifact, c.Version)
}

func (s *Server) handleResourcesList(ctx context.Context, _ json.RawMessage) (any, *jsonRPCError) {
	statuses, _, err := s.svc.ListArtifacts(ctx, domain.ListFilter{Limit: resourceListLimit})
	if err != nil {
		return nil, &jsonRPCError{Code: -32603, Message: err.Error()}
	}

	resources := make([]map[string]any, 0, len(statuses))
	for _, st := range statuses {
		resources = append(resources, map[string]any{
			"name":        st.Coordinate.String(),
			"uri":         jarURI(st.Coordinate),
			"mimeType":    "application/json",
			"description": string(st.State),
		})
	}

	return map[string]any{"resources": resources}, nil
}

type readResourceParams struct {
	URI string `json:"uri"`
}

func (s *Server) handleResourcesRead(ctx context.Context, params json.RawMessage) (any, *jsonRPCError) {
	var p readResourceParams
	if err := json.Unmarshal(params, &p); err != nil {
		return resourceReadErrorResult("", "invalid params: expected {uri}"), nil
	}

	uri := strings.TrimSpace(p.URI)
	if uri == "" {
		return resourceReadErrorResult("", "invalid params: uri is required"), nil
	}

	group, artifact, version, err := coordinateFromURI(uri)
	if err != nil {
		if isRecoverableReadErr(err) {
			return resourceReadErrorResult(uri, err.Error()), nil
		}
		return nil, &jsonRPCError{Code: -32603, Message: err.Error()}
	}

	status, rs, err := s.svc.Describe(ctx, group, artifact, version)
	if err != nil {
		if isRecoverableReadErr(err) {
			return resourceReadErrorResult(uri, err.Error()), nil
		}
		return nil, &jsonRPCError{Code: -32603, Message: err.Error()}
	}

	detail := map[string]any{
		"group_id":    status.Coordinate.Group,
		"artifact_id": status.Coordinate.Artifact,
		"version":     status.Coordinate.Version,
		"state":       status.State,
	}
	if rs != nil {
		detail["source_locator"] = rs.Locator
		detail["source_kind"] = rs.Kind
		detail["registered_at"] = rs.RegisteredAt
		if rs.GitRef != "" {
			detail["vcs_ref"] = rs.GitRef
		}
	}
	text, err := json.MarshalIndent(detail, "", "  ")
	if err != nil {
		return nil, &jsonRPCError{Code: -32603, Message: err.Error()}
	}

	return map[string]any{
		"contents": []map[string]any{{
			"uri":      uri,
			"mimeType": "application/json",
			"text":     string(text),
		}},
	}, nil
}

func resourceReadErrorResult(uri, msg string) map[string]any {
	if strings.TrimSpace(uri) == "" {
		uri = "jar://error"
	}
	return map[string]any{
		"contents": []map[string]any{{
			"uri":      uri,
			"mimeType": "text/plain",
			"text":     "error: " + msg,
		}},
	}
}

// coordinateFromURI parses jar://{group}/{artifact}/{version}. The group lands
// in the URL host because it is the first path segment after the scheme.
func coordinateFromURI(raw string) (group, artifact, version string, err error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", "", "", fmt.Errorf("%w: invalid uri", domain.ErrInvalidInput)
	}
	if u.Scheme != "jar" {
		return "", "", "", fmt.Errorf("%w: unsupported uri scheme %q", domain.ErrInvalidInput, u.Scheme)
	}

	parts := strings.Split(strings.TrimPrefix(u.Path, "/"), "/")
	if u.Host == "" || len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", "", fmt.Errorf("%w: expected jar://{group}/{artifact}/{version}", domain.ErrInvalidInput)
	}
	return u.Host, parts[0], parts[1], nil
}

func isRecoverableReadErr(err error) bool {
	return errors.Is(err, domain.ErrInvalidInput) ||
		errors.Is(err, domain.ErrInvalidCoordinate) ||
		errors.Is(err, domain.ErrResourceNotFound) ||
		errors.Is(err, domain.ErrNotRegistered)
}
