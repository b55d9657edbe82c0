// Package git provides adapters for interacting with local Git repositories.
// This package implements the domain.BranchLookup interface using go-git/v5.
package git

import (
	"context"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"github.com/MyCarrier-DevOps/build-docs/internal/domain"
)

// Logger defines the logging interface for the git adapter.
// This interface enables dependency injection and testability.
type Logger interface {
	Debug(ctx context.Context, msg string, fields map[string]interface{})
	Warn(ctx context.Context, msg string, fields map[string]interface{})
}

// BranchLookup implements domain.BranchLookup using go-git/v5.
// It reports the branch HEAD points at in the repository containing path.
type BranchLookup struct {
	path   string
	logger Logger
}

// NewBranchLookup creates a BranchLookup for the repository containing path.
// The repository is opened lazily on each lookup.
func NewBranchLookup(path string, log Logger) *BranchLookup {
	return &BranchLookup{
		path:   path,
		logger: log,
	}
}

// CurrentBranch returns the short name of the branch HEAD refers to.
// Found is false when path is not inside a repository or HEAD is detached.
// A branch without commits yet is still reported.
func (b *BranchLookup) CurrentBranch(ctx context.Context) domain.BranchLookupResult {
	// DetectDotGit allows running from a subdirectory; the common dir option
	// follows linked worktrees to their main repository.
	repo, err := git.PlainOpenWithOptions(b.path, &git.PlainOpenOptions{
		DetectDotGit:          true,
		EnableDotGitCommonDir: true,
	})
	if err != nil {
		b.logger.Debug(ctx, "not a git repository", map[string]interface{}{
			"path":  b.path,
			"error": err.Error(),
		})
		return domain.BranchLookupResult{}
	}

	// Read HEAD without resolving it so an unborn branch is still reported.
	head, err := repo.Reference(plumbing.HEAD, false)
	if err != nil {
		b.logger.Warn(ctx, "failed to read HEAD", map[string]interface{}{
			"path":  b.path,
			"error": err.Error(),
		})
		return domain.BranchLookupResult{}
	}

	if head.Type() != plumbing.SymbolicReference || !head.Target().IsBranch() {
		b.logger.Debug(ctx, "HEAD is detached; no branch name", map[string]interface{}{
			"path": b.path,
			"head": head.Hash().String(),
		})
		return domain.BranchLookupResult{}
	}

	branch := head.Target().Short()
	b.logger.Debug(ctx, "detected current branch", map[string]interface{}{
		"path":   b.path,
		"branch": branch,
	})

	return domain.BranchLookupResult{Found: true, Name: branch}
}
