package controllers

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/rios0rios0/kernelforge/internal/domain/commands"
	"github.com/rios0rios0/kernelforge/internal/domain/entities"
)

// LabelController handles the "label" subcommand.
type LabelController struct {
	command commands.Label
	viper   *viper.Viper
}

// NewLabelController creates a new LabelController.
func NewLabelController(command commands.Label, v *viper.Viper) *LabelController {
	return &LabelController{command: command, viper: v}
}

// GetBind returns the Cobra command metadata for the label controller.
func (it *LabelController) GetBind() entities.ControllerBind {
	return entities.ControllerBind{
		Use:   "label",
		Short: "Print the build label for the current minute",
	}
}

// AddFlags adds label-specific flags to the given Cobra command.
func (it *LabelController) AddFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("artifact", false, "Print the full artifact name instead")
	cmd.Flags().Int("version-number", 0, "Version number used in the artifact name")
}

// Execute prints the label, or the artifact name it would produce.
func (it *LabelController) Execute(cmd *cobra.Command, _ []string) error {
	settings, err := loadSettings(cmd, it.viper)
	if err != nil {
		return err
	}

	label := it.command.Execute(cmd.Context(), settings)
	output := label.String()
	if artifact, _ := cmd.Flags().GetBool("artifact"); artifact {
		versionNumber, _ := cmd.Flags().GetInt("version-number")
		if versionNumber == 0 {
			versionNumber = settings.Version.Fallback
		}
		output = entities.ArtifactName(settings.Build.Prefix, output, versionNumber)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), output)
	return err
}
