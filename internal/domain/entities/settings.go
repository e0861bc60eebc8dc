package entities

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. KERNELFORGE_BUILD_LTO.
const EnvPrefix = "KERNELFORGE"

// LTOMode selects the clang link-time optimization flavor.
type LTOMode string

const (
	LTOFull LTOMode = "full"
	LTOThin LTOMode = "thin"
	LTONone LTOMode = "none"
)

// CleanPolicy decides whether the output directory survives between builds.
type CleanPolicy string

const (
	// CleanAuto removes the output directory when the config file changed.
	CleanAuto   CleanPolicy = "auto"
	CleanAlways CleanPolicy = "always"
	CleanNever  CleanPolicy = "never"
)

// Settings is the resolved configuration of one run. It is built once and
// shared read-only by every component.
type Settings struct {
	Build     BuildSettings     `mapstructure:"build"     yaml:"build"`
	Toolchain ToolchainSettings `mapstructure:"toolchain" yaml:"toolchain"`
	Paths     PathSettings      `mapstructure:"paths"     yaml:"paths"`
	Retry     RetrySettings     `mapstructure:"retry"     yaml:"retry"`
	Git       GitSettings       `mapstructure:"git"       yaml:"git"`
	Patch     PatchSettings     `mapstructure:"patch"     yaml:"patch"`
	Version   VersionSettings   `mapstructure:"version"   yaml:"version"`
	Publish   PublishSettings   `mapstructure:"publish"   yaml:"publish"`
	History   HistorySettings   `mapstructure:"history"   yaml:"history"`

	Repositories []RepositorySpec `mapstructure:"-" yaml:"repositories"`
}

type BuildSettings struct {
	ID              string      `mapstructure:"id"               yaml:"id"`
	DeviceProfile   bool        `mapstructure:"device_profile"   yaml:"device_profile"`
	LTO             LTOMode     `mapstructure:"lto"              yaml:"lto"`
	Prefix          string      `mapstructure:"prefix"           yaml:"prefix"`
	Revision        string      `mapstructure:"revision"         yaml:"revision"`
	LabelRepository string      `mapstructure:"label_repository" yaml:"label_repository"`
	LocalVersion    string      `mapstructure:"localversion"     yaml:"localversion"`
	Jobs            int         `mapstructure:"jobs"             yaml:"jobs"`
	Clean           CleanPolicy `mapstructure:"clean"            yaml:"clean"`
	Arch            string      `mapstructure:"arch"             yaml:"arch"`
	Defconfig       string      `mapstructure:"defconfig"        yaml:"defconfig"`
	Targets         []string    `mapstructure:"targets"          yaml:"targets"`
	Images          []string    `mapstructure:"images"           yaml:"images"`
}

type ToolchainSettings struct {
	Root              string `mapstructure:"root"                yaml:"root"`
	CrossCompile      string `mapstructure:"cross_compile"       yaml:"cross_compile"`
	CrossCompileArm32 string `mapstructure:"cross_compile_arm32" yaml:"cross_compile_arm32"`
}

type PathSettings struct {
	Kernel    string `mapstructure:"kernel"    yaml:"kernel"`
	Config    string `mapstructure:"config"    yaml:"config"`
	Output    string `mapstructure:"output"    yaml:"output"`
	Artifacts string `mapstructure:"artifacts" yaml:"artifacts"`
	Template  string `mapstructure:"template"  yaml:"template"`
	Profile   string `mapstructure:"profile"   yaml:"profile"`
}

type RetrySettings struct {
	Attempts int `mapstructure:"attempts" yaml:"attempts"`
}

type GitSettings struct {
	Depth         int                 `mapstructure:"depth"          yaml:"depth"`
	NonRepository NonRepositoryPolicy `mapstructure:"non_repository" yaml:"non_repository"`
	Parallel      bool                `mapstructure:"parallel"       yaml:"parallel"`
}

type PatchSettings struct {
	Conflict ConflictPolicy `mapstructure:"conflict" yaml:"conflict"`
}

type VersionSettings struct {
	// Repository names the dependency whose history numbers the build.
	Repository string `mapstructure:"repository" yaml:"repository"`
	Fallback   int    `mapstructure:"fallback"   yaml:"fallback"`
}

type PublishSettings struct {
	S3 S3Settings `mapstructure:"s3" yaml:"s3"`
}

type S3Settings struct {
	Enabled   bool   `mapstructure:"enabled"    yaml:"enabled"`
	Endpoint  string `mapstructure:"endpoint"   yaml:"endpoint"`
	Region    string `mapstructure:"region"     yaml:"region"`
	Bucket    string `mapstructure:"bucket"     yaml:"bucket"`
	Prefix    string `mapstructure:"prefix"     yaml:"prefix"`
	AccessKey string `mapstructure:"access_key" yaml:"access_key"`
	SecretKey string `mapstructure:"secret_key" yaml:"-"`
	PathStyle bool   `mapstructure:"path_style" yaml:"path_style"`
}

type HistorySettings struct {
	// Database is the sqlite file; empty disables recording.
	Database string `mapstructure:"database" yaml:"database"`
}

// repositoryEntry keeps depth optional so an unset depth falls back to git.depth.
type repositoryEntry struct {
	Name     string `mapstructure:"name"`
	URL      string `mapstructure:"url"`
	Path     string `mapstructure:"path"`
	Branch   string `mapstructure:"branch"`
	Depth    *int   `mapstructure:"depth"`
	Revision string `mapstructure:"revision"`
}

// NewViper returns a viper instance carrying every default and the environment binding.
func NewViper() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// SetDefaults registers the default of every known key.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("build.id", "")
	v.SetDefault("build.device_profile", false)
	v.SetDefault("build.lto", string(LTOThin))
	v.SetDefault("build.prefix", "kernel")
	v.SetDefault("build.revision", "")
	v.SetDefault("build.label_repository", ".")
	v.SetDefault("build.localversion", "")
	v.SetDefault("build.jobs", runtime.NumCPU())
	v.SetDefault("build.clean", string(CleanAuto))
	v.SetDefault("build.arch", "arm64")
	v.SetDefault("build.defconfig", "gki_defconfig")
	v.SetDefault("build.targets", []string{"Image"})
	v.SetDefault("build.images", []string{"Image"})

	v.SetDefault("toolchain.root", "")
	v.SetDefault("toolchain.cross_compile", "aarch64-linux-gnu-")
	v.SetDefault("toolchain.cross_compile_arm32", "arm-linux-gnueabi-")

	v.SetDefault("paths.kernel", "kernel")
	v.SetDefault("paths.config", "arch/arm64/configs/gki_defconfig")
	v.SetDefault("paths.output", "out")
	v.SetDefault("paths.artifacts", "dist")
	v.SetDefault("paths.template", "AnyKernel3")
	v.SetDefault("paths.profile", "")

	v.SetDefault("retry.attempts", 3) //nolint:mnd // documented default
	v.SetDefault("git.depth", 1)
	v.SetDefault("git.non_repository", string(NonRepositoryFail))
	v.SetDefault("git.parallel", false)
	v.SetDefault("patch.conflict", string(ConflictWarn))
	v.SetDefault("version.repository", "")
	v.SetDefault("version.fallback", DefaultVersionFallback)

	v.SetDefault("publish.s3.enabled", false)
	v.SetDefault("publish.s3.endpoint", "")
	v.SetDefault("publish.s3.region", "us-east-1")
	v.SetDefault("publish.s3.bucket", "")
	v.SetDefault("publish.s3.prefix", "")
	v.SetDefault("publish.s3.access_key", "")
	v.SetDefault("publish.s3.secret_key", "")
	v.SetDefault("publish.s3.path_style", true)
	v.SetDefault("history.database", "")
}

// NewSettings reads the optional configuration file into v and resolves the
// immutable Settings. An empty configPath searches the default locations; a
// missing file there is not an error.
func NewSettings(v *viper.Viper, configPath string) (*Settings, error) {
	if configPath == "" {
		if found, err := FindConfigFile(); err == nil {
			configPath = found
		}
	}
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %q: %w", configPath, err)
		}
	}

	var settings Settings
	if err := v.Unmarshal(&settings); err != nil {
		return nil, fmt.Errorf("failed to decode settings: %w", err)
	}

	var entries []repositoryEntry
	if err := v.UnmarshalKey("repositories", &entries); err != nil {
		return nil, fmt.Errorf("failed to decode repositories: %w", err)
	}
	for _, entry := range entries {
		depth := settings.Git.Depth
		if entry.Depth != nil {
			depth = *entry.Depth
		}
		settings.Repositories = append(settings.Repositories, RepositorySpec{
			Name:         entry.Name,
			RemoteURL:    entry.URL,
			LocalPath:    entry.Path,
			Branch:       entry.Branch,
			ShallowDepth: depth,
			Revision:     entry.Revision,
		})
	}

	if settings.Build.ID == "" {
		settings.Build.ID = uuid.NewString()
	}
	settings.Build.Revision = ShortenRevision(settings.Build.Revision)

	if err := validate(&settings); err != nil {
		return nil, err
	}
	return &settings, nil
}

// FindConfigFile searches for a configuration file in standard locations.
// Returns the path to the first file found or an error if none is found.
func FindConfigFile() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = ""
	}

	locations := []string{".", ".config", "configs"}
	if homeDir != "" {
		locations = append(locations, filepath.Join(homeDir, ".config"))
	}

	patterns := []string{
		".kernelforge.yaml",
		".kernelforge.yml",
		"kernelforge.yaml",
		"kernelforge.yml",
	}

	for _, loc := range locations {
		for _, pat := range patterns {
			p := filepath.Join(loc, pat)
			if _, statErr := os.Stat(p); statErr == nil {
				return p, nil
			}
		}
	}

	return "", errors.New("config file not found in default locations")
}

// validate checks for required and enumerated configuration values.
func validate(s *Settings) error {
	switch s.Build.LTO {
	case LTOFull, LTOThin, LTONone:
	default:
		return fmt.Errorf("build.lto must be one of full, thin, none (got %q)", s.Build.LTO)
	}
	switch s.Build.Clean {
	case CleanAuto, CleanAlways, CleanNever:
	default:
		return fmt.Errorf("build.clean must be one of auto, always, never (got %q)", s.Build.Clean)
	}
	if !s.Git.NonRepository.Valid() {
		return fmt.Errorf("git.non_repository must be one of fail, reclone, reuse (got %q)", s.Git.NonRepository)
	}
	if !s.Patch.Conflict.Valid() {
		return fmt.Errorf("patch.conflict must be one of warn, fail (got %q)", s.Patch.Conflict)
	}
	if s.Build.Prefix == "" {
		return errors.New("build.prefix is required")
	}
	if s.Build.Jobs < 1 {
		return fmt.Errorf("build.jobs must be at least 1 (got %d)", s.Build.Jobs)
	}
	if s.Retry.Attempts < 1 {
		return fmt.Errorf("retry.attempts must be at least 1 (got %d)", s.Retry.Attempts)
	}
	if s.Git.Depth < 0 {
		return fmt.Errorf("git.depth must not be negative (got %d)", s.Git.Depth)
	}
	if s.Paths.Kernel == "" || s.Paths.Config == "" {
		return errors.New("paths.kernel and paths.config are required")
	}

	names := make(map[string]bool, len(s.Repositories))
	for i, repo := range s.Repositories {
		if err := repo.Validate(); err != nil {
			return fmt.Errorf("repositories[%d]: %w", i, err)
		}
		if names[repo.Name] {
			return fmt.Errorf("repositories[%d]: duplicate name %q", i, repo.Name)
		}
		names[repo.Name] = true
	}
	if err := ValidateDisjointPaths(s.Repositories); err != nil {
		return err
	}
	if s.Version.Repository != "" && !names[s.Version.Repository] {
		return fmt.Errorf("version.repository %q is not a configured repository", s.Version.Repository)
	}

	if s.Publish.S3.Enabled && s.Publish.S3.Bucket == "" {
		return errors.New("publish.s3.bucket is required when publishing is enabled")
	}
	return nil
}

// Repository returns the declared repository with the given name.
func (s *Settings) Repository(name string) (RepositorySpec, bool) {
	for _, repo := range s.Repositories {
		if repo.Name == name {
			return repo, true
		}
	}
	return RepositorySpec{}, false
}

// KernelDir is the kernel source tree.
func (s *Settings) KernelDir() string {
	return filepath.Clean(s.Paths.Kernel)
}

// ConfigPath is the mutated config file; relative paths are inside the kernel tree.
func (s *Settings) ConfigPath() string {
	return s.underKernel(s.Paths.Config)
}

// OutputDir is the make O= directory; relative paths are inside the kernel tree.
func (s *Settings) OutputDir() string {
	return s.underKernel(s.Paths.Output)
}

// VersionRepositoryPath is the tree whose history numbers the build.
func (s *Settings) VersionRepositoryPath() string {
	if repo, ok := s.Repository(s.Version.Repository); ok {
		return repo.LocalPath
	}
	return s.KernelDir()
}

func (s *Settings) underKernel(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(s.KernelDir(), path)
}

// ConfigOperations returns the exclusive toggles driven by the settings themselves.
func (s *Settings) ConfigOperations() []ConfigOperation {
	var ops []ConfigOperation
	switch s.Build.LTO {
	case LTOFull:
		ops = append(ops,
			Toggle("CONFIG_LTO_NONE", BoolValue(false)),
			Toggle("CONFIG_LTO_CLANG_THIN", BoolValue(false)),
			Toggle("CONFIG_LTO_CLANG_FULL", BoolValue(true)),
		)
	case LTOThin:
		ops = append(ops,
			Toggle("CONFIG_LTO_NONE", BoolValue(false)),
			Toggle("CONFIG_LTO_CLANG_FULL", BoolValue(false)),
			Toggle("CONFIG_LTO_CLANG_THIN", BoolValue(true)),
		)
	case LTONone:
		ops = append(ops,
			Toggle("CONFIG_LTO_CLANG_FULL", BoolValue(false)),
			Toggle("CONFIG_LTO_CLANG_THIN", BoolValue(false)),
			Toggle("CONFIG_LTO_NONE", BoolValue(true)),
		)
	}
	if s.Build.LocalVersion != "" {
		ops = append(ops,
			Toggle("CONFIG_LOCALVERSION", ParseConfigValue(s.Build.LocalVersion)),
			Toggle("CONFIG_LOCALVERSION_AUTO", BoolValue(false)),
		)
	}
	return ops
}
