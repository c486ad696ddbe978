package mcp

import (
	"encoding/json"
	"errors"

	"jarindexer/internal/domain"
)

func toolError(msg string) toolResult {
	return toolResult{Content: []any{textContent(msg)}, IsError: true}
}

// toolErrorFromErr maps the domain error taxonomy onto stable status codes,
// so the calling agent can branch on status instead of parsing messages.
func toolErrorFromErr(err error) toolResult {
	if err == nil {
		return toolError("internal error")
	}

	status := "internal_error"
	switch {
	case errors.Is(err, domain.ErrInvalidCoordinate):
		status = "invalid_coordinate"
	case errors.Is(err, domain.ErrInvalidInput):
		status = "invalid_input"
	case errors.Is(err, domain.ErrUnsupportedSourceKind):
		status = "unsupported_source"
	case errors.Is(err, domain.ErrResourceNotFound):
		status = "resource_not_found"
	case errors.Is(err, domain.ErrDownloadFailed):
		status = "download_failed"
	case errors.Is(err, domain.ErrInvalidSource):
		status = "invalid_source"
	case errors.Is(err, domain.ErrVcsCloneFailed):
		status = "git_clone_failed"
	case errors.Is(err, domain.ErrVcsRefNotFound):
		status = "git_ref_not_found"
	case errors.Is(err, domain.ErrPermissionDenied):
		status = "permission_denied"
	case errors.Is(err, domain.ErrAlreadyInProgress):
		status = "already_in_progress"
	case errors.Is(err, domain.ErrNotRegistered):
		status = "not_registered"
	case errors.Is(err, domain.ErrNotMaterialized):
		status = "not_indexed"
	}

	return toolResult{
		Content: []any{textContent(err.Error())},
		StructuredContent: map[string]any{
			"status":  status,
			"message": err.Error(),
		},
		IsError: true,
	}
}

func textContent(text string) map[string]any {
	return map[string]any{"type": "text", "text": text}
}

// structuredResult renders v both as structured content and as its JSON text
// form, since some clients only surface the text blocks.
func structuredResult(v any) toolResult {
	text, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return toolError("internal error: " + err.Error())
	}
	return toolResult{
		Content:           []any{textContent(string(text))},
		StructuredContent: v,
	}
}
