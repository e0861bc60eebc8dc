package repositories

import (
	"context"

	"github.com/rios0rios0/kernelforge/internal/domain/entities"
)

// GitRepository abstracts the version-control operations needed to reconcile
// and inspect source trees.
type GitRepository interface {
	// Inspect classifies the local path of a spec.
	Inspect(path string) (entities.PathState, error)
	// Clone creates the working tree at spec.Branch with spec.ShallowDepth.
	Clone(ctx context.Context, spec entities.RepositorySpec) error
	// Fetch updates every remote-tracking ref, pruning deleted ones.
	Fetch(ctx context.Context, spec entities.RepositorySpec) error
	// Checkout switches to spec.Branch, creating it from origin when missing.
	Checkout(ctx context.Context, spec entities.RepositorySpec) error
	// ResetHard moves the branch to origin/<branch> (or spec.Revision) and
	// discards tracked modifications. It returns the resulting revision.
	ResetHard(ctx context.Context, spec entities.RepositorySpec) (string, error)
	// HeadRevision resolves HEAD of the repository enclosing path.
	HeadRevision(path string) (string, error)
	// IsShallow reports whether the repository has truncated history.
	IsShallow(path string) (bool, error)
	// Unshallow fetches the missing history of a shallow clone.
	Unshallow(ctx context.Context, path string) error
	// CountCommits counts commits reachable from the remote default branch.
	CountCommits(ctx context.Context, path string) (int, error)
}
