package commands

import (
	"fmt"
	"os"
	"path/filepath"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/kernelforge/internal/domain/entities"
	"github.com/rios0rios0/kernelforge/internal/domain/repositories"
)

// ProfileResolver loads the build profile once the kernel tree is in place,
// because gated entries depend on the kernel version.
type ProfileResolver struct {
	profiles repositories.ProfileRepository
}

// NewProfileResolver creates a new ProfileResolver.
func NewProfileResolver(profiles repositories.ProfileRepository) *ProfileResolver {
	return &ProfileResolver{profiles: profiles}
}

// Resolve fills sc.Kernel and sc.Profile unless a previous stage already did.
func (it *ProfileResolver) Resolve(sc *StageContext) error {
	if sc.Profile != nil {
		return nil
	}

	sc.Kernel = readKernelVersion(sc.Settings.KernelDir())

	if sc.Settings.Paths.Profile == "" {
		logger.Debug("[profile] No profile configured, using the built-in default")
		sc.Profile = entities.DefaultProfile()
		return nil
	}

	profile, err := it.profiles.Load(sc.Settings.Paths.Profile, sc.Settings, sc.Kernel)
	if err != nil {
		return fmt.Errorf("failed to load profile %q: %w", sc.Settings.Paths.Profile, err)
	}
	logger.Infof("[profile] Loaded %s: %d config operation(s), %d module(s), %d patch(es)",
		sc.Settings.Paths.Profile, len(profile.Operations), len(profile.Modules), len(profile.Patches))
	sc.Profile = profile
	return nil
}

// readKernelVersion returns the zero version when the Makefile is unreadable.
func readKernelVersion(kernelDir string) entities.KernelVersion {
	data, err := os.ReadFile(filepath.Join(kernelDir, "Makefile"))
	if err != nil {
		logger.Debugf("[profile] No kernel Makefile in %s: %v", kernelDir, err)
		return entities.KernelVersion{}
	}
	version, err := entities.ParseKernelMakefile(string(data))
	if err != nil {
		logger.Warnf("[profile] Cannot read the kernel version: %v", err)
		return entities.KernelVersion{}
	}
	logger.Infof("[profile] Kernel version %s", version)
	return version
}
