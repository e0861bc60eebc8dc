package archive

import (
	"archive/zip"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"github.com/ulikunitz/xz"

	"github.com/rios0rios0/kernelforge/internal/domain/repositories"
)

// Repository writes zip archives, sha256 digests and xz-compressed copies.
type Repository struct{}

var _ repositories.ArchiveRepository = (*Repository)(nil)

// NewArchiveRepository creates a new archive repository.
func NewArchiveRepository() *Repository {
	return &Repository{}
}

// Zip stores every regular file under sourceDir with paths relative to it.
func (r *Repository) Zip(sourceDir, destination string, exclude []string) error {
	out, err := os.Create(destination)
	if err != nil {
		return fmt.Errorf("failed to create %q: %w", destination, err)
	}
	writer := zip.NewWriter(out)

	walkErr := filepath.WalkDir(sourceDir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path != sourceDir && slices.Contains(exclude, entry.Name()) {
			if entry.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !entry.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(sourceDir, path)
		if err != nil {
			return err
		}
		return addFile(writer, path, filepath.ToSlash(rel))
	})
	if walkErr != nil {
		_ = writer.Close()
		_ = out.Close()
		return fmt.Errorf("failed to archive %q: %w", sourceDir, walkErr)
	}

	if err = writer.Close(); err != nil {
		_ = out.Close()
		return fmt.Errorf("failed to finish %q: %w", destination, err)
	}
	return out.Close()
}

func addFile(writer *zip.Writer, path, name string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return err
	}
	header.Name = name
	header.Method = zip.Deflate

	entry, err := writer.CreateHeader(header)
	if err != nil {
		return err
	}
	in, err := os.Open(path)
	if err != nil {
		return err
	}
	defer in.Close()
	_, err = io.Copy(entry, in)
	return err
}

// Checksum returns the hex sha256 digest and the size of path.
func (r *Repository) Checksum(path string) (string, int64, error) {
	in, err := os.Open(path)
	if err != nil {
		return "", 0, fmt.Errorf("failed to open %q: %w", path, err)
	}
	defer in.Close()

	hash := sha256.New()
	size, err := io.Copy(hash, in)
	if err != nil {
		return "", 0, fmt.Errorf("failed to hash %q: %w", path, err)
	}
	return hex.EncodeToString(hash.Sum(nil)), size, nil
}

// Compress writes an xz-compressed copy of source to destination.
func (r *Repository) Compress(source, destination string) error {
	in, err := os.Open(source)
	if err != nil {
		return fmt.Errorf("failed to open %q: %w", source, err)
	}
	defer in.Close()

	out, err := os.Create(destination)
	if err != nil {
		return fmt.Errorf("failed to create %q: %w", destination, err)
	}
	writer, err := xz.NewWriter(out)
	if err != nil {
		_ = out.Close()
		return fmt.Errorf("failed to start xz stream: %w", err)
	}
	if _, err = io.Copy(writer, in); err != nil {
		_ = writer.Close()
		_ = out.Close()
		return fmt.Errorf("failed to compress %q: %w", source, err)
	}
	if err = writer.Close(); err != nil {
		_ = out.Close()
		return fmt.Errorf("failed to finish %q: %w", destination, err)
	}
	return out.Close()
}
