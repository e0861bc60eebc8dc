package repositories

import (
	"context"

	"github.com/rios0rios0/kernelforge/internal/domain/entities"
)

// HistoryRepository persists the ledger of pipeline runs.
type HistoryRepository interface {
	Record(ctx context.Context, run entities.BuildRun) error
	List(ctx context.Context, limit int) ([]entities.BuildRun, error)
	Close() error
}

// HistoryOpener opens the ledger stored at databasePath.
type HistoryOpener func(databasePath string) (HistoryRepository, error)
