package repositories

import (
	"go.uber.org/dig"

	"github.com/rios0rios0/kernelforge/internal/domain/entities"
	domainRepos "github.com/rios0rios0/kernelforge/internal/domain/repositories"
	archiveRepo "github.com/rios0rios0/kernelforge/internal/infrastructure/repositories/archive"
	gitRepo "github.com/rios0rios0/kernelforge/internal/infrastructure/repositories/git"
	historyRepo "github.com/rios0rios0/kernelforge/internal/infrastructure/repositories/history"
	patchRepo "github.com/rios0rios0/kernelforge/internal/infrastructure/repositories/patch"
	profileRepo "github.com/rios0rios0/kernelforge/internal/infrastructure/repositories/profile"
	s3Repo "github.com/rios0rios0/kernelforge/internal/infrastructure/repositories/s3"
	toolchainRepo "github.com/rios0rios0/kernelforge/internal/infrastructure/repositories/toolchain"
)

// RegisterProviders registers all repository providers with the DIG container.
func RegisterProviders(container *dig.Container) error {
	// Register storage registry with all storage factories
	if err := container.Provide(func() *StorageRegistry {
		reg := NewStorageRegistry()
		reg.Register("s3", func(settings *entities.Settings) (domainRepos.StorageRepository, error) {
			return s3Repo.NewStorageRepository(settings.Publish.S3)
		})
		return reg
	}); err != nil {
		return err
	}

	// Register repository implementations bound to their domain interfaces
	if err := container.Provide(func() domainRepos.GitRepository {
		return gitRepo.NewGitRepository()
	}); err != nil {
		return err
	}
	if err := container.Provide(func() domainRepos.PatchRepository {
		return patchRepo.NewPatchRepository()
	}); err != nil {
		return err
	}
	if err := container.Provide(func() domainRepos.ToolchainRepository {
		return toolchainRepo.NewToolchainRepository()
	}); err != nil {
		return err
	}
	if err := container.Provide(func() domainRepos.ArchiveRepository {
		return archiveRepo.NewArchiveRepository()
	}); err != nil {
		return err
	}
	if err := container.Provide(func() domainRepos.ProfileRepository {
		return profileRepo.NewProfileRepository()
	}); err != nil {
		return err
	}
	if err := container.Provide(func() domainRepos.HistoryOpener {
		return historyRepo.Open
	}); err != nil {
		return err
	}

	return nil
}
