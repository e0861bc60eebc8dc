//go:build integration || unit || test

package repositorydoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"
	"os"
	"path/filepath"

	"github.com/rios0rios0/kernelforge/internal/domain/entities"
	"github.com/rios0rios0/kernelforge/internal/domain/repositories"
)

// StubToolchainRepository implements repositories.ToolchainRepository. A
// successful Make writes every path in Produces, relative to the output dir.
type StubToolchainRepository struct {
	MissingTools []string
	MakeErr      error
	Produces     []string

	Invocations []entities.MakeInvocation
}

var _ repositories.ToolchainRepository = (*StubToolchainRepository)(nil)

func (s *StubToolchainRepository) Missing(_ string, _ []string) []string {
	return s.MissingTools
}

func (s *StubToolchainRepository) Make(_ context.Context, invocation entities.MakeInvocation) error {
	s.Invocations = append(s.Invocations, invocation)
	if s.MakeErr != nil {
		return s.MakeErr
	}
	for _, produced := range s.Produces {
		target := filepath.Join(invocation.OutputDir, produced)
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(target, []byte("image"), 0o600); err != nil {
			return err
		}
	}
	return nil
}
