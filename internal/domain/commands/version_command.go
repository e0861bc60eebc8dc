package commands

import (
	"context"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/kernelforge/internal/domain/entities"
	"github.com/rios0rios0/kernelforge/internal/domain/repositories"
)

// Version is the interface for deriving the numeric build identifier.
type Version interface {
	Execute(ctx context.Context, settings *entities.Settings, repoPath string) int
}

// VersionCommand numbers a build after the commit history of a repository.
type VersionCommand struct {
	git repositories.GitRepository
}

// NewVersionCommand creates a new VersionCommand.
func NewVersionCommand(git repositories.GitRepository) *VersionCommand {
	return &VersionCommand{git: git}
}

// Execute never fails: history problems are logged and the fallback is returned.
func (it *VersionCommand) Execute(ctx context.Context, settings *entities.Settings, repoPath string) int {
	fallback := settings.Version.Fallback
	if fallback == 0 {
		fallback = entities.DefaultVersionFallback
	}

	shallow, err := it.git.IsShallow(repoPath)
	if err != nil {
		logger.Warnf("[version] Cannot inspect %s: %v", repoPath, err)
	}
	if shallow {
		if unshallowErr := it.git.Unshallow(ctx, repoPath); unshallowErr != nil {
			logger.Warnf("[version] Unshallow of %s failed, counting the partial history: %v", repoPath, unshallowErr)
		}
	}

	count, err := it.git.CountCommits(ctx, repoPath)
	if err != nil {
		logger.Warnf("[version] Cannot count commits in %s, using fallback %d: %v", repoPath, fallback, err)
		return fallback
	}

	number := entities.DeriveVersionNumber(count)
	logger.Infof("[version] %d commits in %s, version number %d", count, repoPath, number)
	return number
}
