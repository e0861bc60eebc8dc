package controllers

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/rios0rios0/kernelforge/internal/domain/commands"
	"github.com/rios0rios0/kernelforge/internal/domain/entities"
)

// VersionController handles the "version-number" subcommand.
type VersionController struct {
	command commands.Version
	viper   *viper.Viper
}

// NewVersionController creates a new VersionController.
func NewVersionController(command commands.Version, v *viper.Viper) *VersionController {
	return &VersionController{command: command, viper: v}
}

// GetBind returns the Cobra command metadata for the version controller.
func (it *VersionController) GetBind() entities.ControllerBind {
	return entities.ControllerBind{
		Use:   "version-number [path]",
		Short: "Print the numeric version derived from a repository",
		Long: `Count the commits reachable from the remote HEAD of a repository
and print 10000 + count + 200. Shallow clones are deepened first.
A repository that cannot be read yields the configured fallback.

Without a path, the configured version repository is used.`,
	}
}

// Execute prints the derived version number.
func (it *VersionController) Execute(cmd *cobra.Command, args []string) error {
	settings, err := loadSettings(cmd, it.viper)
	if err != nil {
		return err
	}

	repoPath := settings.VersionRepositoryPath()
	if len(args) > 0 {
		repoPath = args[0]
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), it.command.Execute(cmd.Context(), settings, repoPath))
	return err
}
