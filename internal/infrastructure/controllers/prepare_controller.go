package controllers

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/rios0rios0/kernelforge/internal/domain/commands"
	"github.com/rios0rios0/kernelforge/internal/domain/entities"
)

// PrepareController handles the "prepare" subcommand.
type PrepareController struct {
	command commands.Build
	viper   *viper.Viper
}

// NewPrepareController creates a new PrepareController.
func NewPrepareController(command commands.Build, v *viper.Viper) *PrepareController {
	return &PrepareController{command: command, viper: v}
}

// GetBind returns the Cobra command metadata for the prepare controller.
func (it *PrepareController) GetBind() entities.ControllerBind {
	return entities.ControllerBind{
		Use:   "prepare",
		Short: "Reconcile source repositories and apply patches",
		Long: `Clone or update every configured repository to its branch tip,
link the profile's out-of-tree modules into the kernel tree and
apply the profile's patches. Running it twice is a no-op.`,
	}
}

// Execute runs the prepare stage only.
func (it *PrepareController) Execute(cmd *cobra.Command, _ []string) error {
	return runPipeline(cmd, it.viper, it.command, commands.BuildOptions{
		Stages: []string{commands.StagePrepare},
	})
}
