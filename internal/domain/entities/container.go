package entities

import (
	"go.uber.org/dig"
)

// RegisterProviders registers all entity providers with the DIG container.
func RegisterProviders(container *dig.Container) error {
	// Settings need the CLI flags, so only the viper instance is shared here
	if err := container.Provide(NewViper); err != nil {
		return err
	}

	return nil
}
