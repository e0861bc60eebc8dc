package s3

import "github.com/rios0rios0/kernelforge/internal/domain/entities"

// ObjectPutter exports objectPutter for testing.
type ObjectPutter = objectPutter

// NewStorageRepositoryWithClient builds a repository around a fake client.
func NewStorageRepositoryWithClient(client ObjectPutter, cfg entities.S3Settings) *StorageRepository {
	return &StorageRepository{client: client, config: cfg}
}
