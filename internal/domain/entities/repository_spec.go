package entities

import (
	"errors"
	"fmt"
	"path/filepath"
)

// RepositorySpec declares the desired state of one external source tree.
type RepositorySpec struct {
	Name      string `mapstructure:"name"     yaml:"name"`
	RemoteURL string `mapstructure:"url"      yaml:"url"`
	LocalPath string `mapstructure:"path"     yaml:"path"`
	Branch    string `mapstructure:"branch"   yaml:"branch"`
	// ShallowDepth is the clone depth; 0 means full history.
	ShallowDepth int `mapstructure:"depth" yaml:"depth"`
	// Revision optionally pins the hard reset to a commit instead of the branch tip.
	Revision string `mapstructure:"revision" yaml:"revision,omitempty"`
}

// Validate checks that the declaration can be reconciled.
func (s RepositorySpec) Validate() error {
	switch {
	case s.Name == "":
		return errors.New("repository name is required")
	case s.RemoteURL == "":
		return fmt.Errorf("repository %q: url is required", s.Name)
	case s.LocalPath == "":
		return fmt.Errorf("repository %q: path is required", s.Name)
	case s.Branch == "":
		return fmt.Errorf("repository %q: branch is required", s.Name)
	case s.ShallowDepth < 0:
		return fmt.Errorf("repository %q: depth must not be negative", s.Name)
	}
	return nil
}

// ValidateDisjointPaths ensures no two specs reconcile into the same directory.
func ValidateDisjointPaths(specs []RepositorySpec) error {
	owners := make(map[string]string, len(specs))
	for _, spec := range specs {
		abs, err := filepath.Abs(spec.LocalPath)
		if err != nil {
			return fmt.Errorf("failed to resolve path of repository %q: %w", spec.Name, err)
		}
		if owner, taken := owners[abs]; taken {
			return fmt.Errorf(
				"%w: repositories %q and %q share the local path %q",
				ErrPrecondition, owner, spec.Name, spec.LocalPath,
			)
		}
		owners[abs] = spec.Name
	}
	return nil
}

// NonRepositoryPolicy decides what happens to a non-empty path without git metadata.
type NonRepositoryPolicy string

const (
	// NonRepositoryFail stops the run with ErrNotRepository.
	NonRepositoryFail NonRepositoryPolicy = "fail"
	// NonRepositoryReclone removes the directory and clones into it.
	NonRepositoryReclone NonRepositoryPolicy = "reclone"
	// NonRepositoryReuse leaves the directory untouched.
	NonRepositoryReuse NonRepositoryPolicy = "reuse"
)

// Valid reports whether p is a known policy.
func (p NonRepositoryPolicy) Valid() bool {
	switch p {
	case NonRepositoryFail, NonRepositoryReclone, NonRepositoryReuse:
		return true
	}
	return false
}

// ReconcileAction records what a reconciliation did.
type ReconcileAction string

const (
	ReconcileCloned  ReconcileAction = "cloned"
	ReconcileUpdated ReconcileAction = "updated"
	ReconcileReused  ReconcileAction = "reused"
)

// ReconcileResult is the outcome of bringing one repository into its declared state.
type ReconcileResult struct {
	Spec     RepositorySpec
	Action   ReconcileAction
	Revision string
}

// PathState classifies a local path before reconciliation.
type PathState int

const (
	// PathMissing covers both an absent path and an empty directory.
	PathMissing PathState = iota
	PathRepository
	PathNotRepository
)
