package commands

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	logger "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/rios0rios0/kernelforge/internal/domain/entities"
	"github.com/rios0rios0/kernelforge/internal/domain/repositories"
)

// PrepareStage reconciles every declared repository, then injects modules and
// applies patches from the build profile.
type PrepareStage struct {
	reconcile Reconcile
	inject    Inject
	patch     Patch
	git       repositories.GitRepository
	profiles  *ProfileResolver
}

// NewPrepareStage creates a new PrepareStage.
func NewPrepareStage(
	reconcile Reconcile,
	inject Inject,
	patch Patch,
	git repositories.GitRepository,
	profiles *ProfileResolver,
) *PrepareStage {
	return &PrepareStage{
		reconcile: reconcile,
		inject:    inject,
		patch:     patch,
		git:       git,
		profiles:  profiles,
	}
}

// Name returns the stage name.
func (it *PrepareStage) Name() string { return StagePrepare }

// Validate checks the repository declarations, including path ownership,
// before any clone starts.
func (it *PrepareStage) Validate(_ context.Context, sc *StageContext) error {
	for _, spec := range sc.Settings.Repositories {
		if err := spec.Validate(); err != nil {
			return fmt.Errorf("%w: %w", entities.ErrPrecondition, err)
		}
	}
	return entities.ValidateDisjointPaths(sc.Settings.Repositories)
}

// Execute runs reconciliation, then module injection and patching.
func (it *PrepareStage) Execute(ctx context.Context, sc *StageContext) error {
	results, err := it.reconcileAll(ctx, sc.Settings)
	if err != nil {
		return err
	}
	sc.Reconciled = results

	if err = it.profiles.Resolve(sc); err != nil {
		return err
	}

	for _, module := range sc.Profile.Modules {
		allowed, gateErr := module.Allows(sc.Kernel, sc.Settings.Build.DeviceProfile)
		if gateErr != nil {
			return fmt.Errorf("module %q: %w", module.Name, gateErr)
		}
		if !allowed {
			logger.Infof("[prepare] Skipping module %s for kernel %s", module.Name, sc.Kernel)
			continue
		}
		changed, injectErr := it.inject.Execute(ctx, sc.Settings, module)
		if injectErr != nil {
			return injectErr
		}
		sc.Modules[module.Name] = changed
	}

	for _, entry := range sc.Profile.Patches {
		allowed, gateErr := entry.Allows(sc.Kernel, sc.Settings.Build.DeviceProfile)
		if gateErr != nil {
			return fmt.Errorf("patch %q: %w", entry.Name, gateErr)
		}
		if !allowed {
			logger.Infof("[prepare] Skipping patch %s for kernel %s", entry.Name, sc.Kernel)
			continue
		}
		spec, specErr := patchSpec(sc.Settings, entry)
		if specErr != nil {
			return specErr
		}
		outcome, patchErr := it.patch.Execute(ctx, spec, sc.Settings.Patch.Conflict)
		if patchErr != nil {
			return patchErr
		}
		sc.Patches[entry.Name] = outcome
	}

	return nil
}

// Verify checks that every reconciled path now holds a repository.
func (it *PrepareStage) Verify(_ context.Context, sc *StageContext) error {
	for _, result := range sc.Reconciled {
		if result.Action == entities.ReconcileReused {
			continue
		}
		state, err := it.git.Inspect(result.Spec.LocalPath)
		if err != nil {
			return err
		}
		if state != entities.PathRepository {
			return fmt.Errorf("%w: %s is not a repository after reconciliation", entities.ErrNotRepository, result.Spec.LocalPath)
		}
	}
	return nil
}

// reconcileAll reconciles level by level, parents before the repositories
// nested inside them. Within a level repositories run sequentially, or
// concurrently when enabled. Paths are disjoint, so repositories of one level
// never touch the same directory.
func (it *PrepareStage) reconcileAll(
	ctx context.Context,
	settings *entities.Settings,
) ([]entities.ReconcileResult, error) {
	results := make([]entities.ReconcileResult, len(settings.Repositories))

	for _, level := range reconcileLevels(settings.Repositories) {
		if !settings.Git.Parallel || len(level) == 1 {
			for _, i := range level {
				result, err := it.reconcile.Execute(ctx, settings, settings.Repositories[i])
				if err != nil {
					return nil, err
				}
				results[i] = result
			}
			continue
		}

		logger.Infof("[prepare] Reconciling %d repositories concurrently", len(level))
		group, groupCtx := errgroup.WithContext(ctx)
		for _, i := range level {
			group.Go(func() error {
				result, err := it.reconcile.Execute(groupCtx, settings, settings.Repositories[i])
				if err != nil {
					return err
				}
				results[i] = result
				return nil
			})
		}
		if err := group.Wait(); err != nil {
			return nil, err
		}
	}
	return results, nil
}

// reconcileLevels groups repository indexes by how many other repositories
// contain their path. Level zero holds the outermost checkouts; declaration
// order is kept inside each level.
func reconcileLevels(specs []entities.RepositorySpec) [][]int {
	paths := make([]string, len(specs))
	for i, spec := range specs {
		paths[i] = absolutePath(spec.LocalPath)
	}

	var levels [][]int
	for i := range specs {
		depth := 0
		for j := range specs {
			if i != j && containsPath(paths[j], paths[i]) {
				depth++
			}
		}
		for len(levels) <= depth {
			levels = append(levels, nil)
		}
		levels[depth] = append(levels[depth], i)
	}

	compact := levels[:0]
	for _, level := range levels {
		if len(level) > 0 {
			compact = append(compact, level)
		}
	}
	return compact
}

// containsPath reports whether child lies strictly below parent.
func containsPath(parent, child string) bool {
	rel, err := filepath.Rel(parent, child)
	if err != nil || rel == "." || rel == ".." {
		return false
	}
	return !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func absolutePath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Clean(path)
	}
	return abs
}

// patchSpec resolves a profile entry to files on disk. Patch files live in the
// referenced repository, or relative to the working directory without one.
func patchSpec(settings *entities.Settings, entry entities.PatchEntry) (entities.PatchSpec, error) {
	file := entry.File
	if entry.Repository != "" {
		repo, ok := settings.Repository(entry.Repository)
		if !ok {
			return entities.PatchSpec{}, fmt.Errorf(
				"%w: patch %q references unknown repository %q",
				entities.ErrPrecondition, entry.Name, entry.Repository,
			)
		}
		file = filepath.Join(repo.LocalPath, entry.File)
	}

	abs, err := filepath.Abs(file)
	if err != nil {
		return entities.PatchSpec{}, fmt.Errorf("failed to resolve patch %q: %w", entry.Name, err)
	}
	return entities.PatchSpec{
		DiffFile:        abs,
		WorkingRoot:     filepath.Join(settings.KernelDir(), entry.Root),
		StripComponents: entry.Strip,
	}, nil
}
