//go:build integration || unit || test

package repositorydoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"

	"github.com/rios0rios0/kernelforge/internal/domain/entities"
	"github.com/rios0rios0/kernelforge/internal/domain/repositories"
)

// StubPatchRepository implements repositories.PatchRepository with fixed probe results.
type StubPatchRepository struct {
	ForwardErr error
	ReverseErr error
	ApplyErr   error

	CheckCalls int
	Applied    []entities.PatchSpec
}

var _ repositories.PatchRepository = (*StubPatchRepository)(nil)

func (s *StubPatchRepository) Check(_ context.Context, _ entities.PatchSpec, reverse bool) error {
	s.CheckCalls++
	if reverse {
		return s.ReverseErr
	}
	return s.ForwardErr
}

func (s *StubPatchRepository) Apply(_ context.Context, patch entities.PatchSpec) error {
	if s.ApplyErr != nil {
		return s.ApplyErr
	}
	s.Applied = append(s.Applied, patch)
	return nil
}
