package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/kernelforge/internal/domain/entities"
	"github.com/rios0rios0/kernelforge/internal/domain/repositories"
)

// Reconcile is the interface for bringing a source tree into its declared state.
type Reconcile interface {
	Execute(
		ctx context.Context,
		settings *entities.Settings,
		spec entities.RepositorySpec,
	) (entities.ReconcileResult, error)
}

// ReconcileCommand clones missing repositories and force-updates existing ones.
// Local edits and divergent commits are discarded, never merged.
type ReconcileCommand struct {
	git   repositories.GitRepository
	delay func(attempt int) time.Duration
}

// NewReconcileCommand creates a new ReconcileCommand.
func NewReconcileCommand(git repositories.GitRepository) *ReconcileCommand {
	return &ReconcileCommand{git: git, delay: entities.LinearBackoff}
}

// Execute reconciles one repository according to its spec.
func (it *ReconcileCommand) Execute(
	ctx context.Context,
	settings *entities.Settings,
	spec entities.RepositorySpec,
) (entities.ReconcileResult, error) {
	if err := spec.Validate(); err != nil {
		return entities.ReconcileResult{}, fmt.Errorf("%w: %w", entities.ErrPrecondition, err)
	}

	state, err := it.git.Inspect(spec.LocalPath)
	if err != nil {
		return entities.ReconcileResult{}, fmt.Errorf("failed to inspect %q: %w", spec.LocalPath, err)
	}

	switch state {
	case entities.PathRepository:
		return it.update(ctx, settings, spec)
	case entities.PathNotRepository:
		switch settings.Git.NonRepository {
		case entities.NonRepositoryReuse:
			logger.Warnf("[%s] %q is not a git repository, reusing it as is", spec.Name, spec.LocalPath)
			return entities.ReconcileResult{Spec: spec, Action: entities.ReconcileReused}, nil
		case entities.NonRepositoryReclone:
			logger.Warnf("[%s] %q is not a git repository, removing it before cloning", spec.Name, spec.LocalPath)
			if removeErr := os.RemoveAll(spec.LocalPath); removeErr != nil {
				return entities.ReconcileResult{}, fmt.Errorf("failed to remove %q: %w", spec.LocalPath, removeErr)
			}
			return it.clone(ctx, settings, spec)
		default:
			return entities.ReconcileResult{}, fmt.Errorf("[%s] %w: %s", spec.Name, entities.ErrNotRepository, spec.LocalPath)
		}
	default:
		return it.clone(ctx, settings, spec)
	}
}

func (it *ReconcileCommand) policy(settings *entities.Settings) entities.RetryPolicy {
	return entities.RetryPolicy{MaxAttempts: settings.Retry.Attempts, Delay: it.delay}
}

func (it *ReconcileCommand) clone(
	ctx context.Context,
	settings *entities.Settings,
	spec entities.RepositorySpec,
) (entities.ReconcileResult, error) {
	logger.Infof("[%s] Cloning %s (branch %s, depth %d) into %s",
		spec.Name, spec.RemoteURL, spec.Branch, spec.ShallowDepth, spec.LocalPath)

	err := entities.Retry(ctx, it.policy(settings), func(ctx context.Context, attempt int) error {
		cloneErr := it.git.Clone(ctx, spec)
		if cloneErr == nil {
			return nil
		}
		logger.Warnf("[%s] Clone attempt %d failed: %v", spec.Name, attempt, cloneErr)
		if removeErr := os.RemoveAll(spec.LocalPath); removeErr != nil {
			logger.Warnf("[%s] Failed to remove partial clone: %v", spec.Name, removeErr)
		}
		return cloneErr
	})
	if err != nil {
		return entities.ReconcileResult{}, fmt.Errorf("[%s] clone failed: %w", spec.Name, err)
	}

	revision, err := it.git.HeadRevision(spec.LocalPath)
	if spec.Revision != "" {
		revision, err = it.git.ResetHard(ctx, spec)
	}
	if err != nil {
		return entities.ReconcileResult{}, fmt.Errorf("[%s] failed to settle the clone: %w", spec.Name, err)
	}

	logger.Infof("[%s] Cloned at %s", spec.Name, entities.ShortenRevision(revision))
	return entities.ReconcileResult{Spec: spec, Action: entities.ReconcileCloned, Revision: revision}, nil
}

func (it *ReconcileCommand) update(
	ctx context.Context,
	settings *entities.Settings,
	spec entities.RepositorySpec,
) (entities.ReconcileResult, error) {
	logger.Infof("[%s] Updating %s to origin/%s", spec.Name, spec.LocalPath, spec.Branch)

	err := entities.Retry(ctx, it.policy(settings), func(ctx context.Context, attempt int) error {
		fetchErr := it.git.Fetch(ctx, spec)
		if fetchErr != nil {
			logger.Warnf("[%s] Fetch attempt %d failed: %v", spec.Name, attempt, fetchErr)
		}
		return fetchErr
	})
	if err != nil {
		return entities.ReconcileResult{}, fmt.Errorf("[%s] fetch failed: %w", spec.Name, err)
	}

	if err = it.git.Checkout(ctx, spec); err != nil {
		return entities.ReconcileResult{}, fmt.Errorf("[%s] checkout of %q failed: %w", spec.Name, spec.Branch, err)
	}

	revision, err := it.git.ResetHard(ctx, spec)
	if err != nil {
		return entities.ReconcileResult{}, fmt.Errorf("[%s] reset failed: %w", spec.Name, err)
	}

	logger.Infof("[%s] Reset to %s", spec.Name, entities.ShortenRevision(revision))
	return entities.ReconcileResult{Spec: spec, Action: entities.ReconcileUpdated, Revision: revision}, nil
}
