//go:build unit

package commands_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/kernelforge/internal/domain/commands"
	"github.com/rios0rios0/kernelforge/internal/domain/entities"
	"github.com/rios0rios0/kernelforge/test/domain/entitybuilders"
)

// kernelSUFixture lays out a kernel tree and a KernelSU checkout under root.
func kernelSUFixture(t *testing.T, root string) (*entities.Settings, entities.ModuleInjection) {
	t.Helper()
	drivers := filepath.Join(root, "kernel", "drivers")
	require.NoError(t, os.MkdirAll(drivers, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(drivers, "Makefile"), []byte("obj-y += base/\n"), 0o644))
	require.NoError(t, os.WriteFile(
		filepath.Join(drivers, "Kconfig"),
		[]byte("menu \"Device Drivers\"\nsource \"drivers/base/Kconfig\"\nendmenu\n"),
		0o644,
	))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "KernelSU", "kernel"), 0o755))

	spec := entitybuilders.NewRepositorySpecBuilder().
		WithName("kernelsu").
		WithLocalPath(filepath.Join(root, "KernelSU")).
		BuildSpec()
	settings := entitybuilders.NewSettingsBuilder().WithRoot(root).WithRepository(spec).BuildSettings()
	module := entities.ModuleInjection{
		Name:         "kernelsu",
		Repository:   "kernelsu",
		Source:       "kernel",
		Target:       "drivers/kernelsu",
		MakefileLine: "obj-$(CONFIG_KSU) += kernelsu/",
		KconfigLine:  `source "drivers/kernelsu/Kconfig"`,
	}
	return settings, module
}

func TestInjectCommandExecute(t *testing.T) {
	t.Parallel()

	t.Run("should link the module and register it with the parent directory", func(t *testing.T) {
		t.Parallel()

		// given
		root := t.TempDir()
		settings, module := kernelSUFixture(t, root)

		// when
		changed, err := commands.NewInjectCommand().Execute(context.Background(), settings, module)

		// then
		require.NoError(t, err)
		assert.True(t, changed)
		link, err := os.Readlink(filepath.Join(root, "kernel", "drivers", "kernelsu"))
		require.NoError(t, err)
		assert.Equal(t, filepath.Join("..", "..", "KernelSU", "kernel"), link)

		makefile, err := os.ReadFile(filepath.Join(root, "kernel", "drivers", "Makefile"))
		require.NoError(t, err)
		assert.Equal(t, "obj-y += base/\nobj-$(CONFIG_KSU) += kernelsu/\n", string(makefile))

		kconfig, err := os.ReadFile(filepath.Join(root, "kernel", "drivers", "Kconfig"))
		require.NoError(t, err)
		assert.Equal(t,
			"menu \"Device Drivers\"\nsource \"drivers/base/Kconfig\"\nsource \"drivers/kernelsu/Kconfig\"\nendmenu\n",
			string(kconfig),
		)
	})

	t.Run("should change nothing when run a second time", func(t *testing.T) {
		t.Parallel()

		// given
		root := t.TempDir()
		settings, module := kernelSUFixture(t, root)
		cmd := commands.NewInjectCommand()
		_, err := cmd.Execute(context.Background(), settings, module)
		require.NoError(t, err)
		makefile, err := os.ReadFile(filepath.Join(root, "kernel", "drivers", "Makefile"))
		require.NoError(t, err)

		// when
		changed, err := cmd.Execute(context.Background(), settings, module)

		// then
		require.NoError(t, err)
		assert.False(t, changed)
		again, err := os.ReadFile(filepath.Join(root, "kernel", "drivers", "Makefile"))
		require.NoError(t, err)
		assert.Equal(t, string(makefile), string(again))
	})

	t.Run("should keep a vendored directory at the target", func(t *testing.T) {
		t.Parallel()

		// given
		root := t.TempDir()
		settings, module := kernelSUFixture(t, root)
		vendored := filepath.Join(root, "kernel", "drivers", "kernelsu")
		require.NoError(t, os.MkdirAll(vendored, 0o755))

		// when
		_, err := commands.NewInjectCommand().Execute(context.Background(), settings, module)

		// then
		require.NoError(t, err)
		info, err := os.Lstat(vendored)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	})

	t.Run("should fail when the module references an unknown repository", func(t *testing.T) {
		t.Parallel()

		// given
		root := t.TempDir()
		settings, module := kernelSUFixture(t, root)
		module.Repository = "missing"

		// when
		_, err := commands.NewInjectCommand().Execute(context.Background(), settings, module)

		// then
		require.ErrorIs(t, err, entities.ErrPrecondition)
	})

	t.Run("should fail when the parent Makefile is missing", func(t *testing.T) {
		t.Parallel()

		// given
		root := t.TempDir()
		settings, module := kernelSUFixture(t, root)
		require.NoError(t, os.Remove(filepath.Join(root, "kernel", "drivers", "Makefile")))

		// when
		_, err := commands.NewInjectCommand().Execute(context.Background(), settings, module)

		// then
		require.ErrorIs(t, err, entities.ErrPrecondition)
	})
}
