//go:build integration || unit || test

package repositorydoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"os"

	"github.com/rios0rios0/kernelforge/internal/domain/repositories"
)

// StubArchiveRepository implements repositories.ArchiveRepository. Zip and
// Compress write placeholder files so later stages find their outputs.
type StubArchiveRepository struct {
	ZipErr      error
	ChecksumErr error
	Sum         string

	Zipped     []string
	Excluded   []string
	Compressed []string
}

var _ repositories.ArchiveRepository = (*StubArchiveRepository)(nil)

func (s *StubArchiveRepository) Zip(sourceDir, destination string, exclude []string) error {
	if s.ZipErr != nil {
		return s.ZipErr
	}
	s.Zipped = append(s.Zipped, sourceDir)
	s.Excluded = exclude
	return os.WriteFile(destination, []byte("PK"), 0o600)
}

func (s *StubArchiveRepository) Checksum(path string) (string, int64, error) {
	if s.ChecksumErr != nil {
		return "", 0, s.ChecksumErr
	}
	info, err := os.Stat(path)
	if err != nil {
		return "", 0, err
	}
	return s.Sum, info.Size(), nil
}

func (s *StubArchiveRepository) Compress(source, destination string) error {
	s.Compressed = append(s.Compressed, source)
	return os.WriteFile(destination, []byte("xz"), 0o600)
}
