package controllers

import (
	"go.uber.org/dig"

	"github.com/rios0rios0/kernelforge/internal/domain/entities"
)

// RegisterProviders registers all controller providers with the DIG container.
func RegisterProviders(container *dig.Container) error {
	for _, constructor := range []interface{}{
		NewBuildController,
		NewPrepareController,
		NewConfigureController,
		NewVersionController,
		NewLabelController,
		NewHistoryController,
		NewConfigController,
		NewControllers,
	} {
		if err := container.Provide(constructor); err != nil {
			return err
		}
	}
	return nil
}

// NewControllers aggregates all controllers into a slice for the AppInternal.
func NewControllers(
	buildController *BuildController,
	prepareController *PrepareController,
	configureController *ConfigureController,
	versionController *VersionController,
	labelController *LabelController,
	historyController *HistoryController,
	configController *ConfigController,
) *[]entities.Controller {
	return &[]entities.Controller{
		buildController,
		prepareController,
		configureController,
		versionController,
		labelController,
		historyController,
		configController,
	}
}
