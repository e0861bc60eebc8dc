package entities

import "errors"

var (
	// ErrPrecondition marks a missing tool, directory or file the pipeline depends on.
	ErrPrecondition = errors.New("precondition failed")

	// ErrRetriesExhausted is returned once a retried operation failed on every attempt.
	ErrRetriesExhausted = errors.New("retries exhausted")

	// ErrNotRepository is returned when a non-empty directory without Git metadata
	// sits where a repository is expected and the policy does not allow resolving it.
	ErrNotRepository = errors.New("directory exists but is not a git repository")

	// ErrPatchConflict is returned for patches that neither apply nor are already present,
	// when the conflict policy is strict.
	ErrPatchConflict = errors.New("patch does not apply")

	// ErrCompile wraps a non-zero exit of the toolchain.
	ErrCompile = errors.New("compilation failed")

	// ErrPackaging marks a missing build output or a failure while assembling the artifact.
	ErrPackaging = errors.New("packaging failed")
)
