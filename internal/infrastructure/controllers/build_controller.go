package controllers

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/rios0rios0/kernelforge/internal/domain/commands"
	"github.com/rios0rios0/kernelforge/internal/domain/entities"
)

// BuildController handles the "build" subcommand.
type BuildController struct {
	command commands.Build
	viper   *viper.Viper
}

// NewBuildController creates a new BuildController.
func NewBuildController(command commands.Build, v *viper.Viper) *BuildController {
	return &BuildController{command: command, viper: v}
}

// GetBind returns the Cobra command metadata for the build controller.
func (it *BuildController) GetBind() entities.ControllerBind {
	return entities.ControllerBind{
		Use:   "build",
		Short: "Run the full kernel build pipeline",
		Long: `Reconcile the source repositories, mutate the kernel config,
derive the version number and build label, compile the kernel
and package it into a flashable archive.

Stages run in order: prepare, configure, version, compile,
package and publish. The first failing stage aborts the run.
Use --stage to run a subset.`,
	}
}

// AddFlags adds build-specific flags to the given Cobra command.
func (it *BuildController) AddFlags(cmd *cobra.Command) {
	cmd.Flags().StringSlice("stage", nil, "Run only the named stages (repeatable)")
	cmd.Flags().Bool("skip-publish", false, "Do not upload the artifact even when publishing is enabled")
}

// Execute runs the pipeline.
func (it *BuildController) Execute(cmd *cobra.Command, _ []string) error {
	stages, _ := cmd.Flags().GetStringSlice("stage")
	skipPublish, _ := cmd.Flags().GetBool("skip-publish")
	return runPipeline(cmd, it.viper, it.command, commands.BuildOptions{
		Stages:      stages,
		SkipPublish: skipPublish,
	})
}

func runPipeline(cmd *cobra.Command, v *viper.Viper, command commands.Build, opts commands.BuildOptions) error {
	settings, err := loadSettings(cmd, v)
	if err != nil {
		return err
	}

	report, runErr := command.Execute(cmd.Context(), settings, opts)
	printReport(cmd.OutOrStdout(), report)
	return runErr
}
