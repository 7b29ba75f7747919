// Package vcs inspects the git state of a workspace before the engine is
// allowed to rewrite manifests in it.
package vcs

import (
	"errors"
	"fmt"

	git "github.com/go-git/go-git/v5"
)

// IsClean reports whether the working tree containing dir has no uncommitted
// changes. A directory that is not inside a git repository is treated as
// clean — there is nothing to guard.
func IsClean(dir string) (bool, error) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if errors.Is(err, git.ErrRepositoryNotExists) {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to open repository at %q: %w", dir, err)
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return false, fmt.Errorf("failed to open worktree: %w", err)
	}

	status, err := worktree.Status()
	if err != nil {
		return false, fmt.Errorf("failed to read worktree status: %w", err)
	}

	return status.IsClean(), nil
}
