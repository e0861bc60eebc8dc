package repositories

import "github.com/rios0rios0/kernelforge/internal/domain/entities"

// ProfileRepository loads a build profile. Expressions inside the profile may
// reference the settings and the kernel version.
type ProfileRepository interface {
	Load(path string, settings *entities.Settings, kernel entities.KernelVersion) (*entities.BuildProfile, error)
}
