package git

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	logger "github.com/sirupsen/logrus"
)

// CommandError carries the stderr and exit code of a failed git invocation.
type CommandError struct {
	Args     []string
	Stderr   string
	ExitCode int
	Err      error
}

func (e *CommandError) Error() string {
	stderr := strings.TrimSpace(e.Stderr)
	if stderr == "" {
		return fmt.Sprintf("git %s: exit code %d: %v", strings.Join(e.Args, " "), e.ExitCode, e.Err)
	}
	return fmt.Sprintf("git %s: exit code %d: %s", strings.Join(e.Args, " "), e.ExitCode, stderr)
}

func (e *CommandError) Unwrap() error { return e.Err }

// RunCommand runs the git CLI in dir without ever prompting for credentials.
// Output is streamed to the debug log.
func RunCommand(ctx context.Context, dir string, args ...string) error {
	logger.Debugf("Running git command: git %s", strings.Join(args, " "))

	debug := logger.StandardLogger().WriterLevel(logger.DebugLevel)
	defer debug.Close()

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	cmd.Stdout = debug
	cmd.Stderr = io.MultiWriter(debug, &stderr)
	cmd.Env = append(os.Environ(), "GIT_TERMINAL_PROMPT=0")

	if err := cmd.Run(); err != nil {
		exitCode := -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		}
		return &CommandError{Args: args, Stderr: stderr.String(), ExitCode: exitCode, Err: err}
	}
	return nil
}
