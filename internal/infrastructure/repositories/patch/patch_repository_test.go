//go:build integration

package patch_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/kernelforge/internal/domain/commands"
	"github.com/rios0rios0/kernelforge/internal/domain/entities"
	"github.com/rios0rios0/kernelforge/internal/infrastructure/repositories/patch"
)

const driversDiff = `--- a/drivers/Makefile
+++ b/drivers/Makefile
@@ -1 +1,2 @@
 obj-y += base/
+obj-y += susfs/
`

func patchFixture(t *testing.T, makefile string) entities.PatchSpec {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "drivers"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "drivers", "Makefile"), []byte(makefile), 0o644))
	diff := filepath.Join(t.TempDir(), "susfs.patch")
	require.NoError(t, os.WriteFile(diff, []byte(driversDiff), 0o644))
	return entities.PatchSpec{DiffFile: diff, WorkingRoot: root, StripComponents: 1}
}

func TestPatchApplier(t *testing.T) {
	t.Parallel()

	t.Run("should apply once and then detect the patch as already applied", func(t *testing.T) {
		t.Parallel()

		// given
		spec := patchFixture(t, "obj-y += base/\n")
		cmd := commands.NewPatchCommand(patch.NewPatchRepository())
		makefile := filepath.Join(spec.WorkingRoot, "drivers", "Makefile")

		// when
		first, err := cmd.Execute(context.Background(), spec, entities.ConflictFail)
		require.NoError(t, err)
		applied, err := os.ReadFile(makefile)
		require.NoError(t, err)
		second, err := cmd.Execute(context.Background(), spec, entities.ConflictFail)
		require.NoError(t, err)
		again, err := os.ReadFile(makefile)
		require.NoError(t, err)

		// then
		assert.Equal(t, entities.PatchApplied, first)
		assert.Equal(t, entities.PatchAlreadyApplied, second)
		assert.Equal(t, "obj-y += base/\nobj-y += susfs/\n", string(applied))
		assert.Equal(t, applied, again)
	})

	t.Run("should leave a conflicting tree untouched", func(t *testing.T) {
		t.Parallel()

		// given
		spec := patchFixture(t, "obj-$(CONFIG_BASE) += base/\n")
		cmd := commands.NewPatchCommand(patch.NewPatchRepository())
		makefile := filepath.Join(spec.WorkingRoot, "drivers", "Makefile")

		// when
		outcome, err := cmd.Execute(context.Background(), spec, entities.ConflictWarn)

		// then
		require.NoError(t, err)
		assert.Equal(t, entities.PatchConflict, outcome)
		content, err := os.ReadFile(makefile)
		require.NoError(t, err)
		assert.Equal(t, "obj-$(CONFIG_BASE) += base/\n", string(content))
	})

	t.Run("should probe in reverse through git apply", func(t *testing.T) {
		t.Parallel()

		// given
		spec := patchFixture(t, "obj-y += base/\nobj-y += susfs/\n")
		repo := patch.NewPatchRepository()

		// when
		forward := repo.Check(context.Background(), spec, false)
		reverse := repo.Check(context.Background(), spec, true)

		// then
		require.Error(t, forward)
		require.NoError(t, reverse)
	})
}
