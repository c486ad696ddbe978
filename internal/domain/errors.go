package domain

import "errors"

// Sentinel errors for the whole module. Wrap with fmt.Errorf("%w: ...") so
// callers can branch with errors.Is while keeping the detail.
var (
	ErrInvalidCoordinate     = errors.New("invalid coordinate")
	ErrInvalidInput          = errors.New("invalid input")
	ErrUnsupportedSourceKind = errors.New("unsupported source kind")
	ErrResourceNotFound      = errors.New("resource not found")
	ErrDownloadFailed        = errors.New("download failed")
	ErrInvalidSource         = errors.New("invalid source")
	ErrVcsCloneFailed        = errors.New("git clone failed")
	ErrVcsRefNotFound        = errors.New("git ref not found")
	ErrPermissionDenied      = errors.New("permission denied")
	ErrAlreadyInProgress     = errors.New("operation already in progress")
	ErrNotRegistered         = errors.New("artifact not registered")
	ErrNotMaterialized       = errors.New("artifact not indexed")
	ErrInternal              = errors.New("internal error")
)
