package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rios0rios0/kernelforge/internal"
	"github.com/rios0rios0/kernelforge/internal/domain/entities"
	"github.com/rios0rios0/kernelforge/internal/infrastructure/controllers"
)

func buildRootCommand() *cobra.Command {
	//nolint:exhaustruct // Minimal Command initialization with required fields only
	cmd := &cobra.Command{
		Use:   "kernelforge",
		Short: "Reproducible Android kernel build engine",
		Long: `Build a flashable Android kernel from a declarative configuration.

kernelforge reconciles the kernel and dependency repositories, applies
the build profile's modules, patches and config mutations, derives a
monotonic version number, compiles with clang and packages the result
into an AnyKernel3 archive.

Usage:
  kernelforge build                 Run the full pipeline
  kernelforge prepare               Reconcile repositories and apply patches
  kernelforge version-number [path] Print the derived version number`,
		SilenceUsage: true,
	}

	controllers.AddSettingsFlags(cmd)
	return cmd
}

func addSubcommands(rootCmd *cobra.Command, appContext *internal.AppInternal) {
	for _, controller := range appContext.GetControllers() {
		bind := controller.GetBind()
		ctrl := controller
		//nolint:exhaustruct // Minimal Command initialization with required fields only
		subCmd := &cobra.Command{
			Use:   bind.Use,
			Short: bind.Short,
			Long:  bind.Long,
			RunE: func(command *cobra.Command, arguments []string) error {
				return ctrl.Execute(command, arguments)
			},
		}

		// Add controller-specific flags
		if binder, ok := ctrl.(entities.FlagBinder); ok {
			binder.AddFlags(subCmd)
		}

		rootCmd.AddCommand(subCmd)
	}
}

func main() {
	//nolint:exhaustruct // Minimal TextFormatter initialization with required fields only
	logger.SetFormatter(&logger.TextFormatter{
		ForceColors:   true,
		FullTimestamp: true,
	})
	if os.Getenv("DEBUG") == "true" {
		logger.SetLevel(logger.DebugLevel)
	}

	cobraRoot := buildRootCommand()
	addSubcommands(cobraRoot, injectAppContext())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := cobraRoot.ExecuteContext(ctx)
	stop()
	if err != nil {
		logger.Fatalf("Error executing 'kernelforge': %s", err)
	}
}
