package extractor

import (
	"context"
	"fmt"
	"os"
	"strings"

	"jarindexer/internal/domain"
	"jarindexer/internal/infrastructure/archive"
)

// Classifier turns a raw locator into a source descriptor. The decision is
// made exactly once, at registration; everything downstream trusts it.
type Classifier struct {
	defaultGitRef string
}

func NewClassifier(defaultGitRef string) *Classifier {
	return &Classifier{defaultGitRef: defaultGitRef}
}

func (c *Classifier) Classify(ctx context.Context, locator, ref string) (domain.SourceDescriptor, error) {
	_ = ctx
	locator = strings.TrimSpace(locator)

	if isVCSLocator(locator) {
		if ref == "" {
			// Empty ref means the repository's default branch, resolved at
			// materialization.
			ref = c.defaultGitRef
		}
		return domain.SourceDescriptor{Kind: domain.SourceKindVCS, Locator: locator, Ref: ref}, nil
	}

	if strings.HasPrefix(locator, "http://") || strings.HasPrefix(locator, "https://") {
		// Remote non-git URLs are archive-or-fail: the download is validated
		// as an archive during registration.
		return domain.SourceDescriptor{Kind: domain.SourceKindArchive, Locator: locator, Remote: true}, nil
	}

	path := strings.TrimPrefix(locator, "file://")
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return domain.SourceDescriptor{}, fmt.Errorf("%w: %q", domain.ErrResourceNotFound, locator)
		}
		return domain.SourceDescriptor{}, err
	}

	if info.IsDir() {
		return domain.SourceDescriptor{Kind: domain.SourceKindDirectory, Locator: path}, nil
	}
	if info.Mode().IsRegular() && archive.LooksLikeZip(path) {
		return domain.SourceDescriptor{Kind: domain.SourceKindArchive, Locator: path}, nil
	}
	return domain.SourceDescriptor{}, fmt.Errorf("%w: %q is neither an archive, a directory, nor a git URL", domain.ErrUnsupportedSourceKind, locator)
}

func isVCSLocator(locator string) bool {
	if strings.HasPrefix(locator, "git@") || strings.HasPrefix(locator, "ssh://") || strings.HasPrefix(locator, "git://") {
		return true
	}
	if strings.HasPrefix(locator, "http://") || strings.HasPrefix(locator, "https://") {
		return strings.HasSuffix(locator, ".git")
	}
	return false
}
