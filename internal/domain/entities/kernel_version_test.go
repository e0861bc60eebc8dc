//go:build unit

package entities_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/kernelforge/internal/domain/entities"
)

func TestParseKernelMakefile(t *testing.T) {
	t.Parallel()

	t.Run("should read the first version triple", func(t *testing.T) {
		t.Parallel()

		// given
		content := "# SPDX-License-Identifier: GPL-2.0\nVERSION = 5\nPATCHLEVEL = 10\nSUBLEVEL = 198\nEXTRAVERSION =\n"

		// when
		version, err := entities.ParseKernelMakefile(content)

		// then
		require.NoError(t, err)
		assert.Equal(t, entities.KernelVersion{Version: 5, PatchLevel: 10, SubLevel: 198}, version)
		assert.Equal(t, "5.10.198", version.String())
	})

	t.Run("should fail when VERSION is missing", func(t *testing.T) {
		t.Parallel()

		// given / when
		_, err := entities.ParseKernelMakefile("all:\n\t@echo hi\n")

		// then
		require.ErrorIs(t, err, entities.ErrPrecondition)
	})
}

func TestKernelVersionAtLeast(t *testing.T) {
	t.Parallel()

	t.Run("should compare numerically and not lexically", func(t *testing.T) {
		t.Parallel()

		// given
		version := entities.KernelVersion{Version: 5, PatchLevel: 10, SubLevel: 198}

		// when
		newer, err := version.AtLeast("5.4")
		require.NoError(t, err)
		older, err := version.AtLeast("5.15")
		require.NoError(t, err)

		// then
		assert.True(t, newer)
		assert.False(t, older)
	})

	t.Run("should reject an invalid constraint", func(t *testing.T) {
		t.Parallel()

		// given / when
		_, err := entities.KernelVersion{Version: 6, PatchLevel: 1}.AtLeast("latest")

		// then
		require.Error(t, err)
	})
}

func TestGateAllows(t *testing.T) {
	t.Parallel()

	t.Run("should skip device-only entries on generic builds", func(t *testing.T) {
		t.Parallel()

		// given
		gate := entities.Gate{DeviceOnly: true}

		// when
		generic, err := gate.Allows(entities.KernelVersion{}, false)
		require.NoError(t, err)
		device, err := gate.Allows(entities.KernelVersion{}, true)
		require.NoError(t, err)

		// then
		assert.False(t, generic)
		assert.True(t, device)
	})

	t.Run("should pass the version check when the kernel version is unknown", func(t *testing.T) {
		t.Parallel()

		// given
		gate := entities.Gate{MinKernel: "6.1"}

		// when
		allowed, err := gate.Allows(entities.KernelVersion{}, false)

		// then
		require.NoError(t, err)
		assert.True(t, allowed)
	})

	t.Run("should reject kernels older than the minimum", func(t *testing.T) {
		t.Parallel()

		// given
		gate := entities.Gate{MinKernel: "6.1"}

		// when
		allowed, err := gate.Allows(entities.KernelVersion{Version: 5, PatchLevel: 15}, false)

		// then
		require.NoError(t, err)
		assert.False(t, allowed)
	})
}
