package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/kernelforge/internal/domain/entities"
	"github.com/rios0rios0/kernelforge/internal/domain/repositories"
)

// packageExcludes never end up in the flashable archive.
var packageExcludes = []string{".git", ".github", "README.md"} //nolint:gochecknoglobals // read-only table

// PackageStage drops the images into the template tree and zips it under the
// composed artifact name.
type PackageStage struct {
	archive repositories.ArchiveRepository
}

// NewPackageStage creates a new PackageStage.
func NewPackageStage(archive repositories.ArchiveRepository) *PackageStage {
	return &PackageStage{archive: archive}
}

// Name returns the stage name.
func (it *PackageStage) Name() string { return StagePackage }

// Validate checks the template tree and that the build was numbered.
func (it *PackageStage) Validate(_ context.Context, sc *StageContext) error {
	info, err := os.Stat(sc.Settings.Paths.Template)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("%w: packaging template %q is not a directory", entities.ErrPrecondition, sc.Settings.Paths.Template)
	}
	if sc.VersionNumber == 0 || sc.Label.Timestamp.IsZero() {
		return fmt.Errorf("%w: the version stage must run before packaging", entities.ErrPrecondition)
	}
	return nil
}

// Execute writes the archive, its checksum sidecar and the compressed compile log.
func (it *PackageStage) Execute(_ context.Context, sc *StageContext) error {
	settings := sc.Settings
	template := settings.Paths.Template

	for _, image := range settings.Build.Images {
		if err := copyFile(imagePath(settings, image), filepath.Join(template, image)); err != nil {
			return fmt.Errorf("%w: %w", entities.ErrPackaging, err)
		}
	}

	if err := os.MkdirAll(settings.Paths.Artifacts, 0o755); err != nil {
		return fmt.Errorf("%w: %w", entities.ErrPackaging, err)
	}

	name := entities.ArtifactName(settings.Build.Prefix, sc.Label.String(), sc.VersionNumber)
	artifact := &entities.Artifact{Name: name, Path: filepath.Join(settings.Paths.Artifacts, name)}
	if err := it.archive.Zip(template, artifact.Path, packageExcludes); err != nil {
		return fmt.Errorf("%w: %w", entities.ErrPackaging, err)
	}

	checksum, size, err := it.archive.Checksum(artifact.Path)
	if err != nil {
		return fmt.Errorf("%w: %w", entities.ErrPackaging, err)
	}
	artifact.Checksum = checksum
	artifact.Size = size
	artifact.ChecksumPath = artifact.Path + ".sha256"
	if err = os.WriteFile(artifact.ChecksumPath, []byte(checksum+"  "+name+"\n"), 0o644); err != nil {
		return fmt.Errorf("%w: %w", entities.ErrPackaging, err)
	}

	if sc.CompileLog != "" {
		logPath := strings.TrimSuffix(artifact.Path, ".zip") + ".compile.log.xz"
		if compressErr := it.archive.Compress(sc.CompileLog, logPath); compressErr != nil {
			logger.Warnf("[package] Failed to archive the compile log: %v", compressErr)
		} else {
			artifact.LogPath = logPath
		}
	}

	sc.Artifact = artifact
	logger.Infof("[package] %s (%d bytes, sha256 %s)", artifact.Path, artifact.Size, artifact.Checksum)
	return nil
}

// Verify checks the archive is on disk and not empty.
func (it *PackageStage) Verify(_ context.Context, sc *StageContext) error {
	if sc.Artifact == nil {
		return fmt.Errorf("%w: no artifact produced", entities.ErrPackaging)
	}
	info, err := os.Stat(sc.Artifact.Path)
	if err != nil || info.Size() == 0 {
		return fmt.Errorf("%w: artifact %s is missing or empty", entities.ErrPackaging, sc.Artifact.Path)
	}
	return nil
}

func copyFile(source, destination string) error {
	in, err := os.Open(source)
	if err != nil {
		return fmt.Errorf("failed to open %q: %w", source, err)
	}
	defer in.Close()

	out, err := os.Create(destination)
	if err != nil {
		return fmt.Errorf("failed to create %q: %w", destination, err)
	}
	if _, err = io.Copy(out, in); err != nil {
		_ = out.Close()
		return fmt.Errorf("failed to copy %q: %w", source, err)
	}
	return out.Close()
}
