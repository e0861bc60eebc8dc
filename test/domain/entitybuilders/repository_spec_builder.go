//go:build integration || unit || test

package entitybuilders //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	testkit "github.com/rios0rios0/testkit/pkg/test"

	"github.com/rios0rios0/kernelforge/internal/domain/entities"
)

// RepositorySpecBuilder helps create repository declarations with a fluent interface.
type RepositorySpecBuilder struct {
	*testkit.BaseBuilder
	name      string
	remoteURL string
	localPath string
	branch    string
	depth     int
	revision  string
}

// NewRepositorySpecBuilder creates a new repository spec builder with sensible defaults.
func NewRepositorySpecBuilder() *RepositorySpecBuilder {
	return &RepositorySpecBuilder{
		BaseBuilder: testkit.NewBaseBuilder(),
		name:        "kernel",
		remoteURL:   "https://example.com/android/kernel.git",
		localPath:   "kernel",
		branch:      "main",
		depth:       1,
	}
}

// WithName sets the repository name.
func (b *RepositorySpecBuilder) WithName(name string) *RepositorySpecBuilder {
	b.name = name
	return b
}

// WithRemoteURL sets the clone URL.
func (b *RepositorySpecBuilder) WithRemoteURL(url string) *RepositorySpecBuilder {
	b.remoteURL = url
	return b
}

// WithLocalPath sets the working tree location.
func (b *RepositorySpecBuilder) WithLocalPath(path string) *RepositorySpecBuilder {
	b.localPath = path
	return b
}

// WithBranch sets the tracked branch.
func (b *RepositorySpecBuilder) WithBranch(branch string) *RepositorySpecBuilder {
	b.branch = branch
	return b
}

// WithDepth sets the clone depth; 0 means full history.
func (b *RepositorySpecBuilder) WithDepth(depth int) *RepositorySpecBuilder {
	b.depth = depth
	return b
}

// WithRevision pins the reset target.
func (b *RepositorySpecBuilder) WithRevision(revision string) *RepositorySpecBuilder {
	b.revision = revision
	return b
}

// Build creates the spec (satisfies testkit.Builder interface).
func (b *RepositorySpecBuilder) Build() interface{} {
	return b.BuildSpec()
}

// BuildSpec creates the spec with a concrete return type.
func (b *RepositorySpecBuilder) BuildSpec() entities.RepositorySpec {
	return entities.RepositorySpec{
		Name:         b.name,
		RemoteURL:    b.remoteURL,
		LocalPath:    b.localPath,
		Branch:       b.branch,
		ShallowDepth: b.depth,
		Revision:     b.revision,
	}
}

// Reset clears the builder state, allowing it to be reused.
func (b *RepositorySpecBuilder) Reset() testkit.Builder {
	b.BaseBuilder.Reset()
	b.name = "kernel"
	b.remoteURL = "https://example.com/android/kernel.git"
	b.localPath = "kernel"
	b.branch = "main"
	b.depth = 1
	b.revision = ""
	return b
}

// Clone creates a deep copy of the RepositorySpecBuilder.
func (b *RepositorySpecBuilder) Clone() testkit.Builder {
	return &RepositorySpecBuilder{
		BaseBuilder: b.BaseBuilder.Clone().(*testkit.BaseBuilder),
		name:        b.name,
		remoteURL:   b.remoteURL,
		localPath:   b.localPath,
		branch:      b.branch,
		depth:       b.depth,
		revision:    b.revision,
	}
}
