//go:build integration || unit || test

package repositorydoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"

	"github.com/rios0rios0/kernelforge/internal/domain/repositories"
)

// SpyStorageRepository implements repositories.StorageRepository and records uploads.
type SpyStorageRepository struct {
	UploadErr error
	Keys      []string
	Paths     []string
}

var _ repositories.StorageRepository = (*SpyStorageRepository)(nil)

func (s *SpyStorageRepository) Name() string { return "spy://bucket" }

func (s *SpyStorageRepository) Upload(_ context.Context, key, path, _ string) (string, error) {
	if s.UploadErr != nil {
		return "", s.UploadErr
	}
	s.Keys = append(s.Keys, key)
	s.Paths = append(s.Paths, path)
	return "spy://bucket/" + key, nil
}
