package repositories

import (
	"context"

	"github.com/rios0rios0/kernelforge/internal/domain/entities"
)

// ToolchainRepository invokes the compiler toolchain as an opaque process.
type ToolchainRepository interface {
	// Missing returns the tools that cannot be resolved with pathPrefix prepended to PATH.
	Missing(pathPrefix string, tools []string) []string
	Make(ctx context.Context, invocation entities.MakeInvocation) error
}
