package commands

import (
	"context"
	"fmt"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/kernelforge/internal/domain/entities"
)

// Configure is the interface for mutating the kernel configuration file.
type Configure interface {
	Execute(
		ctx context.Context,
		settings *entities.Settings,
		operations []entities.ConfigOperation,
	) (ConfigureResult, error)
}

// ConfigureResult reports what happened to the config file.
type ConfigureResult struct {
	Path    string
	Applied []entities.ConfigOperation
	Changed int
}

// ConfigureCommand applies an ordered list of toggle and append operations.
type ConfigureCommand struct{}

// NewConfigureCommand creates a new ConfigureCommand.
func NewConfigureCommand() *ConfigureCommand {
	return &ConfigureCommand{}
}

// Execute applies operations in order and writes the file once at the end.
// Lines that no operation touches are kept verbatim.
func (it *ConfigureCommand) Execute(
	_ context.Context,
	settings *entities.Settings,
	operations []entities.ConfigOperation,
) (ConfigureResult, error) {
	path := settings.ConfigPath()
	file, err := entities.OpenConfigFile(path)
	if err != nil {
		return ConfigureResult{}, err
	}

	result := ConfigureResult{Path: path}
	for _, op := range operations {
		changed, applyErr := op.ApplyTo(file)
		if applyErr != nil {
			return result, fmt.Errorf("failed to %s: %w", op, applyErr)
		}
		result.Applied = append(result.Applied, op)
		if changed {
			result.Changed++
			logger.Debugf("[configure] %s", op)
		}
	}

	if result.Changed == 0 {
		logger.Infof("[configure] %s already up to date", path)
		return result, nil
	}
	if err = file.Save(); err != nil {
		return result, err
	}
	logger.Infof("[configure] %d change(s) written to %s", result.Changed, path)
	return result, nil
}

// selectOperations returns the settings-driven toggles followed by the profile
// operations whose gate allows them.
func selectOperations(
	settings *entities.Settings,
	profile *entities.BuildProfile,
	kernel entities.KernelVersion,
) ([]entities.ConfigOperation, error) {
	operations := settings.ConfigOperations()
	for _, op := range profile.Operations {
		allowed, err := op.Allows(kernel, settings.Build.DeviceProfile)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if !allowed {
			logger.Debugf("[configure] skipping %s for kernel %s", op, kernel)
			continue
		}
		operations = append(operations, op)
	}
	return operations, nil
}
