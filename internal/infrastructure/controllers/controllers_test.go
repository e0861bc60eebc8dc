//go:build unit

package controllers_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/kernelforge/internal/domain/entities"
	"github.com/rios0rios0/kernelforge/internal/infrastructure/controllers"
)

// execute wires ctrl under a root command the way the binary does and runs it.
func execute(t *testing.T, ctrl entities.Controller, args ...string) (string, error) {
	t.Helper()
	root := &cobra.Command{Use: "kernelforge", SilenceUsage: true, SilenceErrors: true}
	controllers.AddSettingsFlags(root)

	bind := ctrl.GetBind()
	sub := &cobra.Command{
		Use:   bind.Use,
		Short: bind.Short,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctrl.Execute(cmd, args)
		},
	}
	if binder, ok := ctrl.(entities.FlagBinder); ok {
		binder.AddFlags(sub)
	}
	root.AddCommand(sub)

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

// writeConfig writes a configuration file under a fresh directory and returns its path.
func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "kernelforge.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}
