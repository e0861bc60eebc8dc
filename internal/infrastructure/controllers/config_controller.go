package controllers

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/rios0rios0/kernelforge/internal/domain/entities"
)

// ConfigController handles the "config" subcommand.
type ConfigController struct {
	viper *viper.Viper
}

// NewConfigController creates a new ConfigController.
func NewConfigController(v *viper.Viper) *ConfigController {
	return &ConfigController{viper: v}
}

// GetBind returns the Cobra command metadata for the config controller.
func (it *ConfigController) GetBind() entities.ControllerBind {
	return entities.ControllerBind{
		Use:   "config",
		Short: "Print the resolved settings as YAML",
		Long: `Resolve defaults, the configuration file, KERNELFORGE_* environment
variables and flags, validate the result and print it. Secrets are
omitted.`,
	}
}

// Execute prints the resolved settings.
func (it *ConfigController) Execute(cmd *cobra.Command, _ []string) error {
	settings, err := loadSettings(cmd, it.viper)
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to render settings: %w", err)
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}
