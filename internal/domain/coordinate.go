package domain

import (
	"fmt"
	"regexp"
	"strings"
)

// Field and combined length bounds keep generated paths below common
// filesystem limits.
const (
	maxFieldLength    = 100
	maxCombinedLength = 250
)

var fieldPattern = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

// Coordinate identifies one library release. It is the identity key for
// every stored artifact and must pass validation before any path is built
// from it.
type Coordinate struct {
	Group    string `json:"group_id"`
	Artifact string `json:"artifact_id"`
	Version  string `json:"version"`
}

func (c Coordinate) String() string {
	return c.Group + ":" + c.Artifact + ":" + c.Version
}

// NewCoordinate validates and normalizes a (group, artifact, version)
// triple. Each field is used verbatim as a single path component, so the
// validation is the sole chokepoint against path traversal and
// cross-platform path corruption.
func NewCoordinate(group, artifact, version string) (Coordinate, error) {
	group = strings.TrimSpace(group)
	artifact = strings.TrimSpace(artifact)
	version = strings.TrimSpace(version)

	for _, f := range []struct{ name, value string }{
		{"group_id", group},
		{"artifact_id", artifact},
		{"version", version},
	} {
		if err := validateField(f.name, f.value); err != nil {
			return Coordinate{}, err
		}
	}

	if len(group)+len(artifact)+len(version) > maxCombinedLength {
		return Coordinate{}, fmt.Errorf("%w: combined coordinate length exceeds %d characters", ErrInvalidCoordinate, maxCombinedLength)
	}

	return Coordinate{Group: group, Artifact: artifact, Version: version}, nil
}

func validateField(name, value string) error {
	if value == "" {
		return fmt.Errorf("%w: %s cannot be empty", ErrInvalidCoordinate, name)
	}
	if strings.Contains(value, "..") || strings.HasPrefix(value, "~") || strings.HasPrefix(value, "/") {
		return fmt.Errorf("%w: %s contains a path traversal sequence: %q", ErrInvalidCoordinate, name, value)
	}
	if i := strings.IndexAny(value, `/\:*?"<>|`); i >= 0 {
		return fmt.Errorf("%w: %s contains filesystem-unsafe character %q", ErrInvalidCoordinate, name, value[i])
	}
	if len(value) > maxFieldLength {
		return fmt.Errorf("%w: %s exceeds %d characters", ErrInvalidCoordinate, name, maxFieldLength)
	}
	if !fieldPattern.MatchString(value) {
		return fmt.Errorf("%w: %s may only contain letters, digits, dots, underscores, and hyphens: %q", ErrInvalidCoordinate, name, value)
	}
	return nil
}
