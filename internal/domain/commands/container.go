package commands

import (
	"go.uber.org/dig"
)

// RegisterProviders registers all command providers with the DIG container.
func RegisterProviders(container *dig.Container) error {
	// Register command constructors
	constructors := []interface{}{
		NewReconcileCommand,
		NewConfigureCommand,
		NewPatchCommand,
		NewInjectCommand,
		NewVersionCommand,
		NewLabelCommand,
		NewProfileResolver,
		NewPrepareStage,
		NewConfigureStage,
		NewVersionStage,
		NewCompileStage,
		NewPackageStage,
		NewPublishStage,
		NewBuildCommand,
	}
	for _, constructor := range constructors {
		if err := container.Provide(constructor); err != nil {
			return err
		}
	}

	// Bind interfaces to implementations
	if err := container.Provide(func(impl *ReconcileCommand) Reconcile {
		return impl
	}); err != nil {
		return err
	}
	if err := container.Provide(func(impl *ConfigureCommand) Configure {
		return impl
	}); err != nil {
		return err
	}
	if err := container.Provide(func(impl *PatchCommand) Patch {
		return impl
	}); err != nil {
		return err
	}
	if err := container.Provide(func(impl *InjectCommand) Inject {
		return impl
	}); err != nil {
		return err
	}
	if err := container.Provide(func(impl *VersionCommand) Version {
		return impl
	}); err != nil {
		return err
	}
	if err := container.Provide(func(impl *LabelCommand) Label {
		return impl
	}); err != nil {
		return err
	}
	if err := container.Provide(func(impl *BuildCommand) Build {
		return impl
	}); err != nil {
		return err
	}

	return nil
}
