package controllers

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/rios0rios0/kernelforge/internal/domain/commands"
	"github.com/rios0rios0/kernelforge/internal/domain/entities"
)

// ConfigureController handles the "configure" subcommand.
type ConfigureController struct {
	command commands.Build
	viper   *viper.Viper
}

// NewConfigureController creates a new ConfigureController.
func NewConfigureController(command commands.Build, v *viper.Viper) *ConfigureController {
	return &ConfigureController{command: command, viper: v}
}

// GetBind returns the Cobra command metadata for the configure controller.
func (it *ConfigureController) GetBind() entities.ControllerBind {
	return entities.ControllerBind{
		Use:   "configure",
		Short: "Apply config mutations to the kernel defconfig",
		Long: `Apply the LTO and local version toggles from the settings and the
config operations of the build profile to the kernel config file.
Existing assignments of a toggled key are replaced; appended lines
are only added once.`,
	}
}

// Execute runs the configure stage only.
func (it *ConfigureController) Execute(cmd *cobra.Command, _ []string) error {
	return runPipeline(cmd, it.viper, it.command, commands.BuildOptions{
		Stages: []string{commands.StageConfigure},
	})
}
