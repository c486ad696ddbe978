package gitrepo

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"jarindexer/internal/domain"
	"jarindexer/internal/infrastructure/storage"
)

const defaultCommandTimeout = 5 * time.Minute

// Runner wraps the git CLI. Worktree bookkeeping lives inside the bare
// repository, so every operation touching one bare repo is serialized by a
// per-repo mutex.
type Runner struct {
	timeout time.Duration

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func New(timeout time.Duration) *Runner {
	if timeout <= 0 {
		timeout = defaultCommandTimeout
	}
	return &Runner{timeout: timeout, locks: map[string]*sync.Mutex{}}
}

func (r *Runner) repoLock(bareDir string) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.locks[bareDir]
	if !ok {
		l = &sync.Mutex{}
		r.locks[bareDir] = l
	}
	return l
}

func (r *Runner) run(ctx context.Context, dir string, args ...string) (string, error) {
	runCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, "git", args...)
	if dir != "" {
		cmd.Dir = dir
	}
	// Never let git prompt for credentials on a headless server.
	cmd.Env = append(os.Environ(), "GIT_TERMINAL_PROMPT=0")

	out, err := cmd.CombinedOutput()
	if err != nil {
		return string(out), fmt.Errorf("git %s: %v: %s", strings.Join(args, " "), err, strings.TrimSpace(string(out)))
	}
	return string(out), nil
}

// EnsureBare clones url as a bare repository at bareDir, or refreshes the
// existing clone. One bare repo serves every version of its artifact.
func (r *Runner) EnsureBare(ctx context.Context, url, bareDir string) error {
	lock := r.repoLock(bareDir)
	lock.Lock()
	defer lock.Unlock()
	return r.ensureBareLocked(ctx, url, bareDir)
}

func (r *Runner) ensureBareLocked(ctx context.Context, url, bareDir string) error {
	if _, err := os.Stat(filepath.Join(bareDir, "HEAD")); err == nil {
		if out, err := r.run(ctx, bareDir, "fetch", "--all", "--tags", "--prune"); err != nil {
			return classifyRemoteError(out, err)
		}
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(bareDir), 0o755); err != nil {
		return err
	}
	out, err := r.run(ctx, "", "clone", "--bare", url, bareDir)
	if err != nil {
		// A half-created clone would shadow future attempts.
		_ = os.RemoveAll(bareDir)
		return classifyRemoteError(out, err)
	}
	return nil
}

// ResolveRef returns a spelling of ref that resolves to a commit in bareDir,
// trying the ref as given and then under origin/.
func (r *Runner) ResolveRef(ctx context.Context, bareDir, ref string) (string, error) {
	lock := r.repoLock(bareDir)
	lock.Lock()
	defer lock.Unlock()
	return r.resolveRefLocked(ctx, bareDir, ref)
}

func (r *Runner) resolveRefLocked(ctx context.Context, bareDir, ref string) (string, error) {
	for _, candidate := range []string{ref, "origin/" + ref} {
		if _, err := r.run(ctx, bareDir, "rev-parse", "--verify", "--quiet", candidate+"^{commit}"); err == nil {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%w: %q not found in %s", domain.ErrVcsRefNotFound, ref, filepath.Base(filepath.Dir(bareDir)))
}

// DefaultBranch picks the repository's default branch, falling back through
// the common names when HEAD is unhelpful.
func (r *Runner) DefaultBranch(ctx context.Context, bareDir string) (string, error) {
	lock := r.repoLock(bareDir)
	lock.Lock()
	defer lock.Unlock()

	if out, err := r.run(ctx, bareDir, "symbolic-ref", "--short", "HEAD"); err == nil {
		if branch := strings.TrimSpace(out); branch != "" {
			return branch, nil
		}
	}
	for _, branch := range []string{"main", "master", "develop"} {
		if _, err := r.resolveRefLocked(ctx, bareDir, branch); err == nil {
			return branch, nil
		}
	}
	return "", fmt.Errorf("%w: no default branch in %s", domain.ErrVcsRefNotFound, bareDir)
}

// PublishWorktree checks out ref into a staging worktree and atomically
// swaps it into target. The previous tree at target, if any, survives every
// failure before the swap.
func (r *Runner) PublishWorktree(ctx context.Context, bareDir, ref, target string) error {
	lock := r.repoLock(bareDir)
	lock.Lock()
	defer lock.Unlock()

	resolved, err := r.resolveRefLocked(ctx, bareDir, ref)
	if err != nil {
		return err
	}

	parent := filepath.Dir(target)
	if err := os.MkdirAll(parent, 0o755); err != nil {
		return err
	}
	staging, err := os.MkdirTemp(parent, ".staging-*")
	if err != nil {
		return err
	}
	// worktree add wants to create the directory itself.
	if err := os.Remove(staging); err != nil {
		return err
	}
	defer func() {
		if _, statErr := os.Stat(staging); statErr == nil {
			_, _ = r.run(ctx, bareDir, "worktree", "remove", "--force", staging)
			_ = os.RemoveAll(staging)
		}
	}()

	if out, err := r.run(ctx, bareDir, "worktree", "add", "--detach", "--force", staging, resolved); err != nil {
		return fmt.Errorf("%w: %s", domain.ErrVcsCloneFailed, firstLine(out))
	}

	if err := storage.SwapDir(staging, target); err != nil {
		return err
	}

	// The bare repo still records the staging path; repair the link and drop
	// any entry left behind by a replaced previous worktree.
	if out, err := r.run(ctx, bareDir, "worktree", "repair", target); err != nil {
		log.Printf("event=worktree_repair_failed target=%q error=%q", target, firstLine(out))
	}
	if _, err := r.run(ctx, bareDir, "worktree", "prune"); err != nil {
		log.Printf("event=worktree_prune_failed repo=%q", bareDir)
	}
	return nil
}

func classifyRemoteError(out string, err error) error {
	text := strings.ToLower(out + " " + err.Error())
	switch {
	case strings.Contains(text, "authentication failed"),
		strings.Contains(text, "permission denied"),
		strings.Contains(text, "could not read username"),
		strings.Contains(text, "403"):
		return fmt.Errorf("%w: %s", domain.ErrPermissionDenied, firstLine(out))
	case strings.Contains(text, "not found"),
		strings.Contains(text, "does not exist"),
		strings.Contains(text, "could not resolve host"),
		strings.Contains(text, "repository") && strings.Contains(text, "disabled"):
		return fmt.Errorf("%w: %s", domain.ErrVcsCloneFailed, firstLine(out))
	default:
		return fmt.Errorf("%w: %v", domain.ErrVcsCloneFailed, err)
	}
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
