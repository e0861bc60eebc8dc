package patch

import (
	"context"
	"strconv"

	"github.com/rios0rios0/kernelforge/internal/domain/entities"
	"github.com/rios0rios0/kernelforge/internal/domain/repositories"
	"github.com/rios0rios0/kernelforge/internal/infrastructure/repositories/git"
)

// Repository probes and applies unified diffs with `git apply`, which works
// in plain directories as well as in repositories.
type Repository struct{}

var _ repositories.PatchRepository = (*Repository)(nil)

// NewPatchRepository creates a new git apply backed repository.
func NewPatchRepository() *Repository {
	return &Repository{}
}

// Check runs a dry run of the patch, optionally in reverse.
func (r *Repository) Check(ctx context.Context, patch entities.PatchSpec, reverse bool) error {
	args := []string{"apply", "--check"}
	if reverse {
		args = append(args, "-R")
	}
	args = append(args, stripFlag(patch), patch.DiffFile)
	return git.RunCommand(ctx, patch.WorkingRoot, args...)
}

// Apply applies the patch to the working tree.
func (r *Repository) Apply(ctx context.Context, patch entities.PatchSpec) error {
	return git.RunCommand(ctx, patch.WorkingRoot, "apply", stripFlag(patch), patch.DiffFile)
}

func stripFlag(patch entities.PatchSpec) string {
	return "-p" + strconv.Itoa(patch.StripComponents)
}
