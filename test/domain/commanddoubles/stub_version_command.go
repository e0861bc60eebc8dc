//go:build integration || unit || test

package commanddoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"

	"github.com/rios0rios0/kernelforge/internal/domain/commands"
	"github.com/rios0rios0/kernelforge/internal/domain/entities"
)

// StubVersionCommand is a stub implementation of commands.Version.
type StubVersionCommand struct {
	Number       int
	LastRepoPath string
}

var _ commands.Version = (*StubVersionCommand)(nil)

func (s *StubVersionCommand) Execute(_ context.Context, _ *entities.Settings, repoPath string) int {
	s.LastRepoPath = repoPath
	return s.Number
}

// StubLabelCommand is a stub implementation of commands.Label.
type StubLabelCommand struct {
	Label entities.BuildLabel
}

var _ commands.Label = (*StubLabelCommand)(nil)

func (s *StubLabelCommand) Execute(_ context.Context, _ *entities.Settings) entities.BuildLabel {
	return s.Label
}
