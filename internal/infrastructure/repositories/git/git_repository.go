package git

import (
	"context"
	"errors"
	"fmt"
	"os"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	gitforgeGit "github.com/rios0rios0/gitforge/pkg/git/infrastructure"
	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/kernelforge/internal/domain/entities"
	"github.com/rios0rios0/kernelforge/internal/domain/repositories"
)

const remoteName = "origin"

// Repository implements repositories.GitRepository with go-git, falling back
// to the git CLI where go-git has no equivalent.
type Repository struct{}

var _ repositories.GitRepository = (*Repository)(nil)

// NewGitRepository creates a new go-git backed repository.
func NewGitRepository() *Repository {
	return &Repository{}
}

// Inspect classifies path. An empty directory counts as missing.
func (r *Repository) Inspect(path string) (entities.PathState, error) {
	info, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return entities.PathMissing, nil
	}
	if err != nil {
		return entities.PathMissing, err
	}
	if !info.IsDir() {
		return entities.PathNotRepository, nil
	}

	dirEntries, err := os.ReadDir(path)
	if err != nil {
		return entities.PathMissing, err
	}
	if len(dirEntries) == 0 {
		return entities.PathMissing, nil
	}

	if _, err = gogit.PlainOpen(path); err != nil {
		if errors.Is(err, gogit.ErrRepositoryNotExists) {
			return entities.PathNotRepository, nil
		}
		return entities.PathMissing, fmt.Errorf("failed to open %q: %w", path, err)
	}
	return entities.PathRepository, nil
}

// Clone clones a single branch without tags.
func (r *Repository) Clone(ctx context.Context, spec entities.RepositorySpec) error {
	progress := logger.StandardLogger().WriterLevel(logger.DebugLevel)
	defer progress.Close()

	_, err := gogit.PlainCloneContext(ctx, spec.LocalPath, false, &gogit.CloneOptions{
		URL:           spec.RemoteURL,
		RemoteName:    remoteName,
		ReferenceName: plumbing.NewBranchReferenceName(spec.Branch),
		SingleBranch:  true,
		Depth:         spec.ShallowDepth,
		Tags:          gogit.NoTags,
		Progress:      progress,
	})
	if err != nil {
		return fmt.Errorf("failed to clone %s: %w", spec.RemoteURL, err)
	}
	return nil
}

// Fetch updates the configured remote-tracking refs plus the declared branch.
// The declared depth only applies to clones that are already shallow.
func (r *Repository) Fetch(ctx context.Context, spec entities.RepositorySpec) error {
	repo, err := gogit.PlainOpen(spec.LocalPath)
	if err != nil {
		return fmt.Errorf("failed to open %q: %w", spec.LocalPath, err)
	}
	remote, err := repo.Remote(remoteName)
	if err != nil {
		return fmt.Errorf("repository %q has no %s remote: %w", spec.LocalPath, remoteName, err)
	}

	refSpecs := append([]config.RefSpec{}, remote.Config().Fetch...)
	branchSpec := config.RefSpec(fmt.Sprintf("+refs/heads/%s:refs/remotes/%s/%s", spec.Branch, remoteName, spec.Branch))
	if !containsRefSpec(refSpecs, branchSpec) {
		refSpecs = append(refSpecs, branchSpec)
	}

	depth := 0
	shallow, err := repo.Storer.Shallow()
	if err != nil {
		return fmt.Errorf("failed to read shallow state of %q: %w", spec.LocalPath, err)
	}
	if len(shallow) > 0 {
		depth = spec.ShallowDepth
	}

	err = repo.FetchContext(ctx, &gogit.FetchOptions{
		RemoteName: remoteName,
		RemoteURL:  spec.RemoteURL,
		RefSpecs:   refSpecs,
		Depth:      depth,
		Tags:       gogit.NoTags,
		Prune:      true,
		Force:      true,
	})
	if err != nil && !errors.Is(err, gogit.NoErrAlreadyUpToDate) {
		return fmt.Errorf("failed to fetch %s: %w", spec.RemoteURL, err)
	}
	return nil
}

// Checkout switches to the declared branch, creating it from the remote-tracking ref.
func (r *Repository) Checkout(_ context.Context, spec entities.RepositorySpec) error {
	repo, err := gogit.PlainOpen(spec.LocalPath)
	if err != nil {
		return fmt.Errorf("failed to open %q: %w", spec.LocalPath, err)
	}
	worktree, err := repo.Worktree()
	if err != nil {
		return err
	}

	exists, err := gitforgeGit.CheckBranchExists(repo, spec.Branch)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("branch %q not found locally or on %s", spec.Branch, remoteName)
	}

	branch := plumbing.NewBranchReferenceName(spec.Branch)
	if _, err = repo.Reference(branch, false); err == nil {
		return worktree.Checkout(&gogit.CheckoutOptions{Branch: branch, Force: true})
	}
	if !errors.Is(err, plumbing.ErrReferenceNotFound) {
		return err
	}

	remoteRef, err := repo.Reference(plumbing.NewRemoteReferenceName(remoteName, spec.Branch), true)
	if err != nil {
		return fmt.Errorf("branch %q not found on %s: %w", spec.Branch, remoteName, err)
	}
	return worktree.Checkout(&gogit.CheckoutOptions{
		Branch: branch,
		Hash:   remoteRef.Hash(),
		Create: true,
		Force:  true,
	})
}

// ResetHard moves the current branch to the remote tip, or to the pinned revision.
func (r *Repository) ResetHard(_ context.Context, spec entities.RepositorySpec) (string, error) {
	repo, err := gogit.PlainOpen(spec.LocalPath)
	if err != nil {
		return "", fmt.Errorf("failed to open %q: %w", spec.LocalPath, err)
	}

	var target plumbing.Hash
	if spec.Revision != "" {
		hash, resolveErr := repo.ResolveRevision(plumbing.Revision(spec.Revision))
		if resolveErr != nil {
			return "", fmt.Errorf("revision %q not found: %w", spec.Revision, resolveErr)
		}
		target = *hash
	} else {
		remoteRef, refErr := repo.Reference(plumbing.NewRemoteReferenceName(remoteName, spec.Branch), true)
		if refErr != nil {
			return "", fmt.Errorf("branch %q not found on %s: %w", spec.Branch, remoteName, refErr)
		}
		target = remoteRef.Hash()
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return "", err
	}
	if err = worktree.Reset(&gogit.ResetOptions{Commit: target, Mode: gogit.HardReset}); err != nil {
		return "", fmt.Errorf("failed to reset to %s: %w", target, err)
	}
	return target.String(), nil
}

// HeadRevision resolves HEAD of the repository containing path, searching parent directories.
func (r *Repository) HeadRevision(path string) (string, error) {
	repo, err := gogit.PlainOpenWithOptions(path, &gogit.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return "", err
	}
	head, err := repo.Head()
	if err != nil {
		return "", err
	}
	return head.Hash().String(), nil
}

// IsShallow reports whether the repository has shallow commits recorded.
func (r *Repository) IsShallow(path string) (bool, error) {
	repo, err := gogit.PlainOpen(path)
	if err != nil {
		return false, err
	}
	shallow, err := repo.Storer.Shallow()
	if err != nil {
		return false, err
	}
	return len(shallow) > 0, nil
}

// Unshallow fetches the full history through the CLI.
func (r *Repository) Unshallow(ctx context.Context, path string) error {
	return RunCommand(ctx, path, "fetch", "--unshallow", "--no-tags", remoteName)
}

// CountCommits walks history from origin/HEAD, then from the remote branch
// HEAD tracks, then from HEAD itself.
func (r *Repository) CountCommits(_ context.Context, path string) (int, error) {
	repo, err := gogit.PlainOpen(path)
	if err != nil {
		return 0, err
	}

	from, err := countStart(repo)
	if err != nil {
		return 0, err
	}

	iter, err := repo.Log(&gogit.LogOptions{From: from})
	if err != nil {
		return 0, err
	}
	defer iter.Close()

	count := 0
	err = iter.ForEach(func(*object.Commit) error {
		count++
		return nil
	})
	// a shallow boundary ends the walk
	if err != nil && !errors.Is(err, plumbing.ErrObjectNotFound) {
		return 0, err
	}
	return count, nil
}

func countStart(repo *gogit.Repository) (plumbing.Hash, error) {
	if ref, err := repo.Reference(plumbing.NewRemoteHEADReferenceName(remoteName), true); err == nil {
		return ref.Hash(), nil
	}

	head, err := repo.Head()
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("cannot resolve HEAD: %w", err)
	}
	if head.Name().IsBranch() {
		tracked := plumbing.NewRemoteReferenceName(remoteName, head.Name().Short())
		if ref, refErr := repo.Reference(tracked, true); refErr == nil {
			return ref.Hash(), nil
		}
	}
	return head.Hash(), nil
}

func containsRefSpec(specs []config.RefSpec, wanted config.RefSpec) bool {
	for _, spec := range specs {
		if spec == wanted {
			return true
		}
	}
	return false
}
