package commands

import (
	"context"
	"fmt"
	"os"
	"slices"

	"github.com/rios0rios0/kernelforge/internal/domain/entities"
)

// ConfigureStage applies the settings toggles and the profile operations to
// the kernel config file.
type ConfigureStage struct {
	configure Configure
	profiles  *ProfileResolver
}

// NewConfigureStage creates a new ConfigureStage.
func NewConfigureStage(configure Configure, profiles *ProfileResolver) *ConfigureStage {
	return &ConfigureStage{configure: configure, profiles: profiles}
}

// Name returns the stage name.
func (it *ConfigureStage) Name() string { return StageConfigure }

// Validate checks that the config file exists.
func (it *ConfigureStage) Validate(_ context.Context, sc *StageContext) error {
	if _, err := os.Stat(sc.Settings.ConfigPath()); err != nil {
		return fmt.Errorf("%w: config file %q: %v", entities.ErrPrecondition, sc.Settings.ConfigPath(), err)
	}
	return nil
}

// Execute mutates the config file.
func (it *ConfigureStage) Execute(ctx context.Context, sc *StageContext) error {
	if err := it.profiles.Resolve(sc); err != nil {
		return err
	}
	operations, err := selectOperations(sc.Settings, sc.Profile, sc.Kernel)
	if err != nil {
		return err
	}
	result, err := it.configure.Execute(ctx, sc.Settings, operations)
	if err != nil {
		return err
	}
	sc.Configured = &result
	return nil
}

// Verify re-reads the file: a key whose last operation was a toggle holds
// exactly one active line with that value, and appended lines for keys no
// toggle touches are present.
func (it *ConfigureStage) Verify(_ context.Context, sc *StageContext) error {
	if sc.Configured == nil {
		return nil
	}
	file, err := entities.OpenConfigFile(sc.Configured.Path)
	if err != nil {
		return err
	}

	expected := map[string]string{}
	toggled := map[string]bool{}
	for _, op := range sc.Configured.Applied {
		switch op.Kind {
		case entities.OperationToggle:
			expected[op.Key] = op.Value.Format()
			toggled[op.Key] = true
		case entities.OperationAppend:
			delete(expected, entities.ParseConfigLine(op.Line).Key)
		}
	}

	for key, value := range expected {
		if values := file.ActiveValues(key); !slices.Equal(values, []string{value}) {
			return fmt.Errorf("%w: %s holds %v instead of %s", entities.ErrPrecondition, key, values, value)
		}
	}
	for _, op := range sc.Configured.Applied {
		if op.Kind != entities.OperationAppend || toggled[entities.ParseConfigLine(op.Line).Key] {
			continue
		}
		if !file.Contains(op.Line) {
			return fmt.Errorf("%w: %q is missing from %s", entities.ErrPrecondition, op.Line, sc.Configured.Path)
		}
	}
	return nil
}
