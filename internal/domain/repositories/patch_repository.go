package repositories

import (
	"context"

	"github.com/rios0rios0/kernelforge/internal/domain/entities"
)

// PatchRepository runs the dry-run and commit phases of applying a diff.
type PatchRepository interface {
	// Check is a dry run; reverse probes whether the patch is already in the tree.
	Check(ctx context.Context, patch entities.PatchSpec, reverse bool) error
	Apply(ctx context.Context, patch entities.PatchSpec) error
}
