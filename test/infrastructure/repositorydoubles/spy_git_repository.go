//go:build integration || unit || test

// Package repositorydoubles provides test doubles (spies, stubs, dummies) for
// repository interfaces. These are hand-crafted implementations, no mock frameworks.
package repositorydoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"
	"sync"

	"github.com/rios0rios0/kernelforge/internal/domain/entities"
	"github.com/rios0rios0/kernelforge/internal/domain/repositories"
)

// SpyGitRepository implements repositories.GitRepository as a configurable spy.
// A successful Clone marks the path as a repository for later Inspect calls.
type SpyGitRepository struct {
	mu sync.Mutex

	// --- Inspect ---
	States     map[string]entities.PathState
	InspectErr error

	// --- Clone ---
	// CloneErrs is consumed one entry per call; nil entries succeed.
	CloneErrs  []error
	CloneCalls []entities.RepositorySpec

	// --- Fetch ---
	FetchErrs  []error
	FetchCalls []entities.RepositorySpec

	// --- Checkout ---
	CheckoutErr   error
	CheckoutCalls []entities.RepositorySpec

	// --- ResetHard ---
	ResetRevision string
	ResetErr      error
	ResetCalls    []entities.RepositorySpec

	// --- HeadRevision ---
	Revision      string
	HeadErr       error
	HeadRequested []string

	// --- IsShallow / Unshallow ---
	Shallow        bool
	ShallowErr     error
	UnshallowErr   error
	UnshallowCalls int

	// --- CountCommits ---
	Commits    int
	CountErr   error
	CountCalls int
}

var _ repositories.GitRepository = (*SpyGitRepository)(nil)

func (s *SpyGitRepository) Inspect(path string) (entities.PathState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.InspectErr != nil {
		return entities.PathMissing, s.InspectErr
	}
	return s.States[path], nil
}

func (s *SpyGitRepository) Clone(_ context.Context, spec entities.RepositorySpec) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.CloneCalls = append(s.CloneCalls, spec)
	if err := pop(&s.CloneErrs); err != nil {
		return err
	}
	if s.States == nil {
		s.States = map[string]entities.PathState{}
	}
	s.States[spec.LocalPath] = entities.PathRepository
	return nil
}

func (s *SpyGitRepository) Fetch(_ context.Context, spec entities.RepositorySpec) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.FetchCalls = append(s.FetchCalls, spec)
	return pop(&s.FetchErrs)
}

func (s *SpyGitRepository) Checkout(_ context.Context, spec entities.RepositorySpec) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.CheckoutCalls = append(s.CheckoutCalls, spec)
	return s.CheckoutErr
}

func (s *SpyGitRepository) ResetHard(_ context.Context, spec entities.RepositorySpec) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ResetCalls = append(s.ResetCalls, spec)
	if s.ResetErr != nil {
		return "", s.ResetErr
	}
	if spec.Revision != "" {
		return spec.Revision, nil
	}
	return s.ResetRevision, nil
}

func (s *SpyGitRepository) HeadRevision(path string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.HeadRequested = append(s.HeadRequested, path)
	return s.Revision, s.HeadErr
}

func (s *SpyGitRepository) IsShallow(_ string) (bool, error) {
	return s.Shallow, s.ShallowErr
}

func (s *SpyGitRepository) Unshallow(_ context.Context, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.UnshallowCalls++
	return s.UnshallowErr
}

func (s *SpyGitRepository) CountCommits(_ context.Context, _ string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.CountCalls++
	return s.Commits, s.CountErr
}

func pop(errs *[]error) error {
	if len(*errs) == 0 {
		return nil
	}
	err := (*errs)[0]
	*errs = (*errs)[1:]
	return err
}
