package controllers

import (
	"fmt"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/rios0rios0/kernelforge/internal/domain/entities"
)

// settingsFlags maps global CLI flags onto settings keys.
var settingsFlags = map[string]string{ //nolint:gochecknoglobals // read-only table
	"kernel":         "paths.kernel",
	"profile":        "paths.profile",
	"config-file":    "paths.config",
	"artifacts":      "paths.artifacts",
	"lto":            "build.lto",
	"localversion":   "build.localversion",
	"revision":       "build.revision",
	"jobs":           "build.jobs",
	"clean":          "build.clean",
	"device-profile": "build.device_profile",
	"parallel":       "git.parallel",
	"patch-conflict": "patch.conflict",
}

// AddSettingsFlags adds the global flags that override configuration keys.
func AddSettingsFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	flags.StringP("config", "c", "", "Path to config file (default: auto-detect)")
	flags.BoolP("verbose", "v", false, "Enable verbose output")
	flags.String("kernel", "", "Kernel source directory")
	flags.String("profile", "", "HCL build profile")
	flags.String("config-file", "", "Kernel config file, relative to the kernel directory")
	flags.String("artifacts", "", "Directory receiving finished artifacts")
	flags.String("lto", "", "LTO mode: full, thin or none")
	flags.String("localversion", "", "CONFIG_LOCALVERSION suffix")
	flags.String("revision", "", "Revision embedded in the build label")
	flags.Int("jobs", 0, "Parallel make jobs")
	flags.String("clean", "", "Output cache policy: auto, always or never")
	flags.Bool("device-profile", false, "Apply device-scoped profile entries")
	flags.Bool("parallel", false, "Clone dependencies concurrently")
	flags.String("patch-conflict", "", "Conflicting patches: warn or fail")
}

// loadSettings binds the flags of cmd, reads the configuration file and
// resolves the immutable settings for this invocation.
func loadSettings(cmd *cobra.Command, v *viper.Viper) (*entities.Settings, error) {
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		logger.SetLevel(logger.DebugLevel)
	}

	if err := bindSettingsFlags(cmd.Flags(), v); err != nil {
		return nil, err
	}

	configPath, _ := cmd.Flags().GetString("config")
	if configPath == "" {
		if found, err := entities.FindConfigFile(); err == nil {
			configPath = found
		} else {
			logger.Debugf("No config file found, using defaults and environment: %v", err)
		}
	}
	if configPath != "" {
		logger.Infof("Using config file: %s", configPath)
	}

	settings, err := entities.NewSettings(v, configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return settings, nil
}

// bindSettingsFlags lets the flags present in flags override their settings
// keys. Unset flags do not shadow the configuration file or the environment.
func bindSettingsFlags(flags *pflag.FlagSet, v *viper.Viper) error {
	for name, key := range settingsFlags {
		flag := flags.Lookup(name)
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("failed to bind --%s: %w", name, err)
		}
	}
	return nil
}
