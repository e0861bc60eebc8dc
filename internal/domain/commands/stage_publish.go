package commands

import (
	"context"
	"errors"
	"fmt"
	"path"
	"path/filepath"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/kernelforge/internal/domain/entities"
	infraRepos "github.com/rios0rios0/kernelforge/internal/infrastructure/repositories"
)

// storageS3 is the registry name of the S3-compatible backend.
const storageS3 = "s3"

// PublishStage uploads the artifact and its checksum to remote storage.
type PublishStage struct {
	storageRegistry *infraRepos.StorageRegistry
}

// NewPublishStage creates a new PublishStage.
func NewPublishStage(storageRegistry *infraRepos.StorageRegistry) *PublishStage {
	return &PublishStage{storageRegistry: storageRegistry}
}

// Name returns the stage name.
func (it *PublishStage) Name() string { return StagePublish }

// Enabled reports whether publishing is configured.
func (it *PublishStage) Enabled(sc *StageContext) bool {
	return sc.Settings.Publish.S3.Enabled
}

// Validate checks a package exists to publish.
func (it *PublishStage) Validate(_ context.Context, sc *StageContext) error {
	if sc.Artifact == nil {
		return fmt.Errorf("%w: the package stage must run before publishing", entities.ErrPrecondition)
	}
	return nil
}

// Execute uploads the archive, the checksum sidecar and the compile log.
func (it *PublishStage) Execute(ctx context.Context, sc *StageContext) error {
	storage, err := it.storageRegistry.Get(storageS3, sc.Settings)
	if err != nil {
		return err
	}

	prefix := sc.Settings.Publish.S3.Prefix
	uploads := []struct{ file, contentType string }{
		{sc.Artifact.Path, "application/zip"},
		{sc.Artifact.ChecksumPath, "text/plain"},
	}
	if sc.Artifact.LogPath != "" {
		uploads = append(uploads, struct{ file, contentType string }{sc.Artifact.LogPath, "application/x-xz"})
	}

	for _, upload := range uploads {
		key := path.Join(prefix, filepath.Base(upload.file))
		location, uploadErr := storage.Upload(ctx, key, upload.file, upload.contentType)
		if uploadErr != nil {
			return fmt.Errorf("failed to publish %s to %s: %w", upload.file, storage.Name(), uploadErr)
		}
		logger.Infof("[publish] %s -> %s", upload.file, location)
		sc.Published = append(sc.Published, location)
	}
	return nil
}

// Verify checks every file was uploaded.
func (it *PublishStage) Verify(_ context.Context, sc *StageContext) error {
	if len(sc.Published) == 0 {
		return errors.New("nothing was published")
	}
	return nil
}
