package entities

import (
	gitforgeEntities "github.com/rios0rios0/gitforge/pkg/global/domain/entities"
	"github.com/spf13/cobra"
)

// ControllerBind is the cobra metadata a controller exposes.
type ControllerBind = gitforgeEntities.ControllerBind

// Controller is a CLI entry point bound to one cobra subcommand.
type Controller = gitforgeEntities.Controller

// FlagBinder is implemented by controllers that declare their own flags.
type FlagBinder interface {
	AddFlags(command *cobra.Command)
}
