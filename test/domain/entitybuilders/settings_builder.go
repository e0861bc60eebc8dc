//go:build integration || unit || test

package entitybuilders //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"path/filepath"
	"slices"

	testkit "github.com/rios0rios0/testkit/pkg/test"

	"github.com/rios0rios0/kernelforge/internal/domain/entities"
)

// SettingsBuilder helps create resolved settings rooted at a working directory.
type SettingsBuilder struct {
	*testkit.BaseBuilder
	root          string
	lto           entities.LTOMode
	localVersion  string
	revision      string
	deviceProfile bool
	clean         entities.CleanPolicy
	attempts      int
	nonRepository entities.NonRepositoryPolicy
	conflict      entities.ConflictPolicy
	fallback      int
	profile       string
	history       string
	parallel      bool
	s3            entities.S3Settings
	repositories  []entities.RepositorySpec
}

// NewSettingsBuilder creates a new settings builder with sensible defaults.
func NewSettingsBuilder() *SettingsBuilder {
	b := &SettingsBuilder{BaseBuilder: testkit.NewBaseBuilder()}
	b.defaults()
	return b
}

func (b *SettingsBuilder) defaults() {
	b.root = "."
	b.lto = entities.LTOThin
	b.localVersion = ""
	b.revision = ""
	b.deviceProfile = false
	b.clean = entities.CleanAuto
	b.attempts = 3
	b.nonRepository = entities.NonRepositoryFail
	b.conflict = entities.ConflictWarn
	b.fallback = entities.DefaultVersionFallback
	b.profile = ""
	b.history = ""
	b.parallel = false
	b.s3 = entities.S3Settings{}
	b.repositories = nil
}

// WithRoot sets the directory every relative path is resolved against.
func (b *SettingsBuilder) WithRoot(root string) *SettingsBuilder {
	b.root = root
	return b
}

// WithLTO sets the LTO mode.
func (b *SettingsBuilder) WithLTO(mode entities.LTOMode) *SettingsBuilder {
	b.lto = mode
	return b
}

// WithLocalVersion sets CONFIG_LOCALVERSION.
func (b *SettingsBuilder) WithLocalVersion(localVersion string) *SettingsBuilder {
	b.localVersion = localVersion
	return b
}

// WithRevision sets the injected build revision.
func (b *SettingsBuilder) WithRevision(revision string) *SettingsBuilder {
	b.revision = revision
	return b
}

// WithDeviceProfile enables device-scoped profile entries.
func (b *SettingsBuilder) WithDeviceProfile(enabled bool) *SettingsBuilder {
	b.deviceProfile = enabled
	return b
}

// WithClean sets the output cache policy.
func (b *SettingsBuilder) WithClean(policy entities.CleanPolicy) *SettingsBuilder {
	b.clean = policy
	return b
}

// WithAttempts sets the retry attempts for network operations.
func (b *SettingsBuilder) WithAttempts(attempts int) *SettingsBuilder {
	b.attempts = attempts
	return b
}

// WithNonRepository sets the policy for paths that are not repositories.
func (b *SettingsBuilder) WithNonRepository(policy entities.NonRepositoryPolicy) *SettingsBuilder {
	b.nonRepository = policy
	return b
}

// WithConflict sets the patch conflict policy.
func (b *SettingsBuilder) WithConflict(policy entities.ConflictPolicy) *SettingsBuilder {
	b.conflict = policy
	return b
}

// WithFallback sets the fallback version number.
func (b *SettingsBuilder) WithFallback(fallback int) *SettingsBuilder {
	b.fallback = fallback
	return b
}

// WithProfile sets the build profile path.
func (b *SettingsBuilder) WithProfile(path string) *SettingsBuilder {
	b.profile = path
	return b
}

// WithHistory sets the history database.
func (b *SettingsBuilder) WithHistory(database string) *SettingsBuilder {
	b.history = database
	return b
}

// WithParallel enables concurrent reconciliation.
func (b *SettingsBuilder) WithParallel(parallel bool) *SettingsBuilder {
	b.parallel = parallel
	return b
}

// WithS3 sets the publish target.
func (b *SettingsBuilder) WithS3(s3 entities.S3Settings) *SettingsBuilder {
	b.s3 = s3
	return b
}

// WithRepository adds a repository declaration.
func (b *SettingsBuilder) WithRepository(spec entities.RepositorySpec) *SettingsBuilder {
	b.repositories = append(b.repositories, spec)
	return b
}

// Build creates the settings (satisfies testkit.Builder interface).
func (b *SettingsBuilder) Build() interface{} {
	return b.BuildSettings()
}

// BuildSettings creates the settings with a concrete return type.
func (b *SettingsBuilder) BuildSettings() *entities.Settings {
	return &entities.Settings{
		Build: entities.BuildSettings{
			ID:              "00000000-0000-0000-0000-000000000001",
			DeviceProfile:   b.deviceProfile,
			LTO:             b.lto,
			Prefix:          "kernel",
			Revision:        b.revision,
			LabelRepository: filepath.Join(b.root, "kernel"),
			LocalVersion:    b.localVersion,
			Jobs:            2,
			Clean:           b.clean,
			Arch:            "arm64",
			Defconfig:       "gki_defconfig",
			Targets:         []string{"Image"},
			Images:          []string{"Image"},
		},
		Toolchain: entities.ToolchainSettings{
			Root:              filepath.Join(b.root, "toolchain"),
			CrossCompile:      "aarch64-linux-gnu-",
			CrossCompileArm32: "arm-linux-gnueabi-",
		},
		Paths: entities.PathSettings{
			Kernel:    filepath.Join(b.root, "kernel"),
			Config:    "arch/arm64/configs/gki_defconfig",
			Output:    "out",
			Artifacts: filepath.Join(b.root, "dist"),
			Template:  filepath.Join(b.root, "AnyKernel3"),
			Profile:   b.profile,
		},
		Retry:   entities.RetrySettings{Attempts: b.attempts},
		Git:     entities.GitSettings{Depth: 1, NonRepository: b.nonRepository, Parallel: b.parallel},
		Patch:   entities.PatchSettings{Conflict: b.conflict},
		Version: entities.VersionSettings{Fallback: b.fallback},
		Publish: entities.PublishSettings{S3: b.s3},
		History: entities.HistorySettings{Database: b.history},

		Repositories: slices.Clone(b.repositories),
	}
}

// Reset clears the builder state, allowing it to be reused.
func (b *SettingsBuilder) Reset() testkit.Builder {
	b.BaseBuilder.Reset()
	b.defaults()
	return b
}

// Clone creates a deep copy of the SettingsBuilder.
func (b *SettingsBuilder) Clone() testkit.Builder {
	clone := *b
	clone.BaseBuilder = b.BaseBuilder.Clone().(*testkit.BaseBuilder)
	clone.repositories = slices.Clone(b.repositories)
	return &clone
}
