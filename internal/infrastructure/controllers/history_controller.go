package controllers

import (
	"errors"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/rios0rios0/kernelforge/internal/domain/entities"
	"github.com/rios0rios0/kernelforge/internal/domain/repositories"
)

const defaultHistoryLimit = 20

// HistoryController handles the "history" subcommand.
type HistoryController struct {
	open  repositories.HistoryOpener
	viper *viper.Viper
}

// NewHistoryController creates a new HistoryController.
func NewHistoryController(open repositories.HistoryOpener, v *viper.Viper) *HistoryController {
	return &HistoryController{open: open, viper: v}
}

// GetBind returns the Cobra command metadata for the history controller.
func (it *HistoryController) GetBind() entities.ControllerBind {
	return entities.ControllerBind{
		Use:   "history",
		Short: "List recorded pipeline runs",
	}
}

// AddFlags adds history-specific flags to the given Cobra command.
func (it *HistoryController) AddFlags(cmd *cobra.Command) {
	cmd.Flags().IntP("limit", "n", defaultHistoryLimit, "Maximum number of runs to show")
}

// Execute prints the most recent runs.
func (it *HistoryController) Execute(cmd *cobra.Command, _ []string) error {
	settings, err := loadSettings(cmd, it.viper)
	if err != nil {
		return err
	}
	if settings.History.Database == "" {
		return errors.New("history.database is not configured")
	}

	history, err := it.open(settings.History.Database)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := history.Close(); closeErr != nil {
			logger.Warnf("Failed to close build history: %v", closeErr)
		}
	}()

	limit, _ := cmd.Flags().GetInt("limit")
	runs, err := history.List(cmd.Context(), limit)
	if err != nil {
		return err
	}
	printHistory(cmd.OutOrStdout(), runs)
	return nil
}
