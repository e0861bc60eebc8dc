//go:build integration || unit || test

package repositorydoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"

	"github.com/rios0rios0/kernelforge/internal/domain/entities"
	"github.com/rios0rios0/kernelforge/internal/domain/repositories"
)

// SpyHistoryRepository implements repositories.HistoryRepository in memory.
type SpyHistoryRepository struct {
	RecordErr error
	Runs      []entities.BuildRun
	Closed    bool
	Opened    []string
}

var _ repositories.HistoryRepository = (*SpyHistoryRepository)(nil)

// Opener returns a HistoryOpener handing out this spy.
func (s *SpyHistoryRepository) Opener() repositories.HistoryOpener {
	return func(databasePath string) (repositories.HistoryRepository, error) {
		s.Opened = append(s.Opened, databasePath)
		return s, nil
	}
}

func (s *SpyHistoryRepository) Record(_ context.Context, run entities.BuildRun) error {
	if s.RecordErr != nil {
		return s.RecordErr
	}
	s.Runs = append(s.Runs, run)
	return nil
}

func (s *SpyHistoryRepository) List(_ context.Context, limit int) ([]entities.BuildRun, error) {
	if limit > 0 && limit < len(s.Runs) {
		return s.Runs[:limit], nil
	}
	return s.Runs, nil
}

func (s *SpyHistoryRepository) Close() error {
	s.Closed = true
	return nil
}
