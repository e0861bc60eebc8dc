package commands

import (
	"context"
	"fmt"
	"os"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/kernelforge/internal/domain/entities"
	"github.com/rios0rios0/kernelforge/internal/domain/repositories"
)

// Patch is the interface for applying a diff in a way that is safe to repeat.
type Patch interface {
	Probe(ctx context.Context, patch entities.PatchSpec) entities.PatchProbe
	Execute(
		ctx context.Context,
		patch entities.PatchSpec,
		policy entities.ConflictPolicy,
	) (entities.PatchOutcome, error)
}

// PatchCommand dry-runs a patch forward, then in reverse, before touching the tree.
type PatchCommand struct {
	patches repositories.PatchRepository
}

// NewPatchCommand creates a new PatchCommand.
func NewPatchCommand(patches repositories.PatchRepository) *PatchCommand {
	return &PatchCommand{patches: patches}
}

// Probe classifies the patch without modifying the working tree.
func (it *PatchCommand) Probe(ctx context.Context, patch entities.PatchSpec) entities.PatchProbe {
	forwardErr := it.patches.Check(ctx, patch, false)
	if forwardErr == nil {
		return entities.ProbeWouldApply
	}
	if reverseErr := it.patches.Check(ctx, patch, true); reverseErr == nil {
		return entities.ProbeAlreadyApplied
	}
	logger.Debugf("[patch] %s does not apply: %v", patch.DiffFile, forwardErr)
	return entities.ProbeConflict
}

// Execute applies the patch when the forward probe passes. It is never retried.
func (it *PatchCommand) Execute(
	ctx context.Context,
	patch entities.PatchSpec,
	policy entities.ConflictPolicy,
) (entities.PatchOutcome, error) {
	if err := patch.Validate(); err != nil {
		return "", err
	}
	if _, err := os.Stat(patch.DiffFile); err != nil {
		return "", fmt.Errorf("%w: patch file %q: %v", entities.ErrPrecondition, patch.DiffFile, err)
	}

	switch it.Probe(ctx, patch) {
	case entities.ProbeWouldApply:
		if err := it.patches.Apply(ctx, patch); err != nil {
			return "", fmt.Errorf("failed to apply %q: %w", patch.DiffFile, err)
		}
		logger.Infof("[patch] Applied %s", patch.DiffFile)
		return entities.PatchApplied, nil
	case entities.ProbeAlreadyApplied:
		logger.Infof("[patch] %s is already applied, skipping", patch.DiffFile)
		return entities.PatchAlreadyApplied, nil
	default:
		if policy == entities.ConflictFail {
			return entities.PatchConflict, fmt.Errorf("%w: %s", entities.ErrPatchConflict, patch.DiffFile)
		}
		logger.Warnf("[patch] %s conflicts with %s, continuing", patch.DiffFile, patch.WorkingRoot)
		return entities.PatchConflict, nil
	}
}
