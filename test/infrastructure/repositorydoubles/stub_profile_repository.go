//go:build integration || unit || test

package repositorydoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"github.com/rios0rios0/kernelforge/internal/domain/entities"
	"github.com/rios0rios0/kernelforge/internal/domain/repositories"
)

// StubProfileRepository implements repositories.ProfileRepository with a fixed profile.
type StubProfileRepository struct {
	Profile *entities.BuildProfile
	LoadErr error

	LoadedPaths []string
}

var _ repositories.ProfileRepository = (*StubProfileRepository)(nil)

func (s *StubProfileRepository) Load(
	path string,
	_ *entities.Settings,
	_ entities.KernelVersion,
) (*entities.BuildProfile, error) {
	s.LoadedPaths = append(s.LoadedPaths, path)
	return s.Profile, s.LoadErr
}
