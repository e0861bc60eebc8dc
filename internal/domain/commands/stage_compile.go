package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/kernelforge/internal/domain/entities"
	"github.com/rios0rios0/kernelforge/internal/domain/repositories"
)

// cacheMarker stores the checksum of the config file the output tree was built from.
const cacheMarker = ".kernelforge-config.sha256"

// CompileStage runs the kernel build system.
type CompileStage struct {
	toolchain repositories.ToolchainRepository
	archive   repositories.ArchiveRepository
}

// NewCompileStage creates a new CompileStage.
func NewCompileStage(
	toolchain repositories.ToolchainRepository,
	archive repositories.ArchiveRepository,
) *CompileStage {
	return &CompileStage{toolchain: toolchain, archive: archive}
}

// Name returns the stage name.
func (it *CompileStage) Name() string { return StageCompile }

// Validate checks the kernel tree, the config file and the toolchain.
func (it *CompileStage) Validate(_ context.Context, sc *StageContext) error {
	settings := sc.Settings
	if _, err := os.Stat(filepath.Join(settings.KernelDir(), "Makefile")); err != nil {
		return fmt.Errorf("%w: kernel tree %q has no Makefile", entities.ErrPrecondition, settings.KernelDir())
	}
	if _, err := os.Stat(settings.ConfigPath()); err != nil {
		return fmt.Errorf("%w: config file %q: %v", entities.ErrPrecondition, settings.ConfigPath(), err)
	}

	binDir := entities.ToolchainBinDir(settings)
	if binDir != "" {
		if info, err := os.Stat(binDir); err != nil || !info.IsDir() {
			return fmt.Errorf("%w: toolchain directory %q does not exist", entities.ErrPrecondition, binDir)
		}
	}
	if missing := it.toolchain.Missing(binDir, entities.RequiredTools); len(missing) > 0 {
		return fmt.Errorf("%w: missing toolchain binaries: %s", entities.ErrPrecondition, strings.Join(missing, ", "))
	}
	return nil
}

// Execute generates .config from the defconfig and builds the targets.
func (it *CompileStage) Execute(ctx context.Context, sc *StageContext) error {
	settings := sc.Settings
	checksum, err := it.prepareOutput(settings)
	if err != nil {
		return err
	}

	logDir := filepath.Join(settings.Paths.Artifacts, "logs")
	if err = os.MkdirAll(logDir, 0o755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	sc.CompileLog = filepath.Join(logDir, "compile.log")

	base := entities.MakeInvocation{
		KernelDir:  settings.KernelDir(),
		OutputDir:  settings.OutputDir(),
		Jobs:       settings.Build.Jobs,
		Variables:  entities.ToolchainVariables(settings),
		PathPrefix: entities.ToolchainBinDir(settings),
		LogPath:    sc.CompileLog,
	}
	defconfig := base
	defconfig.Targets = []string{settings.Build.Defconfig}
	build := base
	build.Targets = settings.Build.Targets

	logger.Infof("[compile] make %s", strings.Join(build.Args(), " "))
	start := time.Now()
	for _, invocation := range []entities.MakeInvocation{defconfig, build} {
		if makeErr := it.toolchain.Make(ctx, invocation); makeErr != nil {
			sc.CompileDuration = time.Since(start)
			return fmt.Errorf("%w after %s (see %s): %w",
				entities.ErrCompile, sc.CompileDuration.Round(time.Second), sc.CompileLog, makeErr)
		}
	}
	sc.CompileDuration = time.Since(start)
	logger.Infof("[compile] Finished in %s", sc.CompileDuration.Round(time.Second))

	marker := filepath.Join(settings.OutputDir(), cacheMarker)
	if err = os.WriteFile(marker, []byte(checksum+"\n"), 0o644); err != nil {
		logger.Warnf("[compile] Failed to write cache marker: %v", err)
	}
	return nil
}

// Verify checks that every expected image was produced.
func (it *CompileStage) Verify(_ context.Context, sc *StageContext) error {
	for _, image := range sc.Settings.Build.Images {
		path := imagePath(sc.Settings, image)
		if _, err := os.Stat(path); err != nil {
			return fmt.Errorf("%w: kernel image not found at %s", entities.ErrCompile, path)
		}
	}
	return nil
}

// prepareOutput applies the clean policy and returns the config checksum.
func (it *CompileStage) prepareOutput(settings *entities.Settings) (string, error) {
	checksum, _, err := it.archive.Checksum(settings.ConfigPath())
	if err != nil {
		return "", fmt.Errorf("failed to checksum config file: %w", err)
	}

	outputDir := settings.OutputDir()
	if shouldClean(settings.Build.Clean, outputDir, checksum) {
		logger.Infof("[compile] Cleaning %s", outputDir)
		if err = os.RemoveAll(outputDir); err != nil {
			return "", fmt.Errorf("failed to clean %q: %w", outputDir, err)
		}
	}
	if err = os.MkdirAll(outputDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create %q: %w", outputDir, err)
	}
	return checksum, nil
}

// shouldClean decides whether an existing output tree is stale. In auto mode a
// tree without a marker is treated as stale.
func shouldClean(policy entities.CleanPolicy, outputDir, checksum string) bool {
	if _, err := os.Stat(outputDir); errors.Is(err, os.ErrNotExist) {
		return false
	}
	switch policy {
	case entities.CleanAlways:
		return true
	case entities.CleanNever:
		return false
	default:
		previous, err := os.ReadFile(filepath.Join(outputDir, cacheMarker))
		return err != nil || strings.TrimSpace(string(previous)) != checksum
	}
}

func imagePath(settings *entities.Settings, image string) string {
	return filepath.Join(settings.OutputDir(), "arch", settings.Build.Arch, "boot", image)
}
