package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/kernelforge/internal/domain/entities"
)

// kconfigAnchor is the line a driver menu must be sourced before.
const kconfigAnchor = "endmenu"

// Inject is the interface for linking an out-of-tree module into the kernel tree.
type Inject interface {
	Execute(ctx context.Context, settings *entities.Settings, module entities.ModuleInjection) (bool, error)
}

// InjectCommand links the module sources and registers them in the parent
// Makefile and Kconfig. Repeating it leaves the tree unchanged.
type InjectCommand struct{}

// NewInjectCommand creates a new InjectCommand.
func NewInjectCommand() *InjectCommand {
	return &InjectCommand{}
}

// Execute reports whether anything in the kernel tree changed.
func (it *InjectCommand) Execute(
	_ context.Context,
	settings *entities.Settings,
	module entities.ModuleInjection,
) (bool, error) {
	repo, ok := settings.Repository(module.Repository)
	if !ok {
		return false, fmt.Errorf(
			"%w: module %q references unknown repository %q",
			entities.ErrPrecondition, module.Name, module.Repository,
		)
	}
	if module.Target == "" {
		return false, fmt.Errorf("%w: module %q has no target", entities.ErrPrecondition, module.Name)
	}

	kernelDir := settings.KernelDir()
	source := filepath.Join(repo.LocalPath, module.Source)
	target := filepath.Join(kernelDir, module.Target)

	changed, err := linkModule(source, target)
	if err != nil {
		return false, fmt.Errorf("module %q: %w", module.Name, err)
	}

	if module.MakefileLine != "" {
		appended, appendErr := entities.AppendUniqueLine(filepath.Join(kernelDir, module.ParentMakefile()), module.MakefileLine)
		if appendErr != nil {
			return changed, fmt.Errorf("module %q: %w", module.Name, appendErr)
		}
		changed = changed || appended
	}

	if module.KconfigLine != "" {
		inserted, insertErr := insertKconfigSource(filepath.Join(kernelDir, module.ParentKconfig()), module.KconfigLine)
		if insertErr != nil {
			return changed, fmt.Errorf("module %q: %w", module.Name, insertErr)
		}
		changed = changed || inserted
	}

	if changed {
		logger.Infof("[inject] %s linked at %s", module.Name, target)
	} else {
		logger.Infof("[inject] %s already in place", module.Name)
	}
	return changed, nil
}

// linkModule creates target as a relative symlink to source. A real directory
// at target is left alone.
func linkModule(source, target string) (bool, error) {
	info, err := os.Stat(source)
	if err != nil || !info.IsDir() {
		return false, fmt.Errorf("%w: module source %q is not a directory", entities.ErrPrecondition, source)
	}

	absSource, err := filepath.Abs(source)
	if err != nil {
		return false, err
	}
	absTarget, err := filepath.Abs(target)
	if err != nil {
		return false, err
	}
	link, err := filepath.Rel(filepath.Dir(absTarget), absSource)
	if err != nil {
		return false, fmt.Errorf("failed to compute module link: %w", err)
	}

	existing, err := os.Lstat(target)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return false, fmt.Errorf("failed to inspect %q: %w", target, err)
	case existing.Mode()&os.ModeSymlink == 0:
		logger.Warnf("[inject] %s exists and is not a link, keeping it", target)
		return false, nil
	default:
		current, readErr := os.Readlink(target)
		if readErr == nil && current == link {
			return false, nil
		}
		if removeErr := os.Remove(target); removeErr != nil {
			return false, fmt.Errorf("failed to replace link %q: %w", target, removeErr)
		}
	}

	if err = os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return false, fmt.Errorf("failed to create %q: %w", filepath.Dir(target), err)
	}
	if err = os.Symlink(link, target); err != nil {
		return false, fmt.Errorf("failed to link %q: %w", target, err)
	}
	return true, nil
}

func insertKconfigSource(path, line string) (bool, error) {
	file, err := entities.OpenConfigFile(path)
	if err != nil {
		return false, err
	}
	if !file.InsertUniqueBefore(line, kconfigAnchor) {
		return false, nil
	}
	return true, file.Save()
}
