package toolchain

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/kernelforge/internal/domain/entities"
	"github.com/rios0rios0/kernelforge/internal/domain/repositories"
)

// Repository runs make on the host with an optional toolchain prepended to PATH.
type Repository struct{}

var _ repositories.ToolchainRepository = (*Repository)(nil)

// NewToolchainRepository creates a new host toolchain repository.
func NewToolchainRepository() *Repository {
	return &Repository{}
}

// Missing returns the tools found neither in pathPrefix nor in PATH.
func (r *Repository) Missing(pathPrefix string, tools []string) []string {
	var missing []string
	for _, tool := range tools {
		if pathPrefix != "" && isExecutable(filepath.Join(pathPrefix, tool)) {
			continue
		}
		if _, err := exec.LookPath(tool); err != nil {
			missing = append(missing, tool)
		}
	}
	return missing
}

// Make runs one make invocation. Output goes to the invocation log file and
// to the debug log.
func (r *Repository) Make(ctx context.Context, invocation entities.MakeInvocation) error {
	logFile, err := os.OpenFile(invocation.LogPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer logFile.Close()

	debug := logger.StandardLogger().WriterLevel(logger.DebugLevel)
	defer debug.Close()
	output := io.MultiWriter(logFile, debug)

	args := invocation.Args()
	fmt.Fprintf(logFile, "$ make %s\n", strings.Join(args, " "))

	cmd := exec.CommandContext(ctx, "make", args...)
	cmd.Stdout = output
	cmd.Stderr = output
	cmd.Env = os.Environ()
	if invocation.PathPrefix != "" {
		cmd.Env = append(cmd.Env, "PATH="+invocation.PathPrefix+string(os.PathListSeparator)+os.Getenv("PATH"))
	}

	if err = cmd.Run(); err != nil {
		return fmt.Errorf("make %s: %w", strings.Join(invocation.Targets, " "), err)
	}
	return nil
}

func isExecutable(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir() && info.Mode()&0o111 != 0
}
