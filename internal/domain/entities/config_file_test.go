//go:build unit

package entities_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/kernelforge/internal/domain/entities"
)

func TestParseConfigLine(t *testing.T) {
	t.Parallel()

	t.Run("should classify assignments, disabled keys and comments", func(t *testing.T) {
		t.Parallel()

		// given
		cases := map[string]struct {
			kind  entities.LineKind
			key   string
			value string
		}{
			"CONFIG_KSU=y":                 {kind: entities.LineAssignment, key: "CONFIG_KSU", value: "y"},
			`CONFIG_LOCALVERSION="-forge"`: {kind: entities.LineAssignment, key: "CONFIG_LOCALVERSION", value: `"-forge"`},
			"# CONFIG_KSU is not set":      {kind: entities.LineDisabled, key: "CONFIG_KSU", value: "n"},
			"# CONFIG_KSU=y":               {kind: entities.LineDisabled, key: "CONFIG_KSU", value: "y"},
			"# Kernel hacking":             {kind: entities.LineComment},
			"   ":                          {kind: entities.LineBlank},
			"obj-y += kernelsu/":           {kind: entities.LineOther},
		}

		for raw, want := range cases {
			// when
			line := entities.ParseConfigLine(raw)

			// then
			assert.Equal(t, want.kind, line.Kind, raw)
			assert.Equal(t, want.key, line.Key, raw)
			assert.Equal(t, want.value, line.Value, raw)
			assert.Equal(t, raw, line.Raw, raw)
		}
	})
}

func TestConfigValueFormat(t *testing.T) {
	t.Parallel()

	t.Run("should keep booleans and quoted strings and quote bare tokens", func(t *testing.T) {
		t.Parallel()

		// given
		cases := map[string]string{
			"y":         "y",
			"n":         "n",
			`"-forge"`:  `"-forge"`,
			"-forge":    `"-forge"`,
			"250":       `"250"`,
			`"unclosed`: `""unclosed"`,
		}

		for raw, want := range cases {
			// when
			formatted := entities.ParseConfigValue(raw).Format()

			// then
			assert.Equal(t, want, formatted, raw)
		}
	})
}

func TestConfigFileAppendUnique(t *testing.T) {
	t.Parallel()

	t.Run("should append a missing line exactly once", func(t *testing.T) {
		t.Parallel()

		// given
		file := entities.ParseConfigFile("defconfig", "CONFIG_A=y\n")

		// when
		first := file.AppendUnique("CONFIG_KSU=y")
		second := file.AppendUnique("CONFIG_KSU=y")

		// then
		assert.True(t, first)
		assert.False(t, second)
		assert.Equal(t, "CONFIG_A=y\nCONFIG_KSU=y\n", file.String())
	})

	t.Run("should match whole lines literally and not by key", func(t *testing.T) {
		t.Parallel()

		// given
		file := entities.ParseConfigFile("defconfig", "CONFIG_KSU=n\n")

		// when
		changed := file.AppendUnique("CONFIG_KSU=y")

		// then
		assert.True(t, changed)
		assert.Equal(t, []string{"n", "y"}, file.ActiveValues("CONFIG_KSU"))
	})

	t.Run("should add a trailing newline before appending to a file without one", func(t *testing.T) {
		t.Parallel()

		// given
		file := entities.ParseConfigFile("defconfig", "CONFIG_A=y")

		// when
		file.AppendUnique("CONFIG_B=y")

		// then
		assert.Equal(t, "CONFIG_A=y\nCONFIG_B=y\n", file.String())
	})
}

func TestConfigFileSetToggle(t *testing.T) {
	t.Parallel()

	t.Run("should replace every assignment of the key with a single line", func(t *testing.T) {
		t.Parallel()

		// given
		content := strings.Join([]string{
			"CONFIG_A=y",
			"# CONFIG_LTO_CLANG_THIN is not set",
			"CONFIG_B=m",
			"CONFIG_LTO_CLANG_THIN=n",
			"",
		}, "\n")
		file := entities.ParseConfigFile("defconfig", content)

		// when
		changed := file.SetToggle("CONFIG_LTO_CLANG_THIN", entities.BoolValue(true))

		// then
		assert.True(t, changed)
		assert.Equal(t, "CONFIG_A=y\nCONFIG_B=m\nCONFIG_LTO_CLANG_THIN=y\n", file.String())
	})

	t.Run("should leave other keys with a common prefix untouched", func(t *testing.T) {
		t.Parallel()

		// given
		file := entities.ParseConfigFile("defconfig", "CONFIG_LOCALVERSION_AUTO=y\nCONFIG_LOCALVERSION=\"\"\n")

		// when
		file.SetToggle("CONFIG_LOCALVERSION", entities.ParseConfigValue("-forge"))

		// then
		assert.Equal(t, []string{"y"}, file.ActiveValues("CONFIG_LOCALVERSION_AUTO"))
		assert.Equal(t, []string{`"-forge"`}, file.ActiveValues("CONFIG_LOCALVERSION"))
	})

	t.Run("should report no change when the single line already holds the value", func(t *testing.T) {
		t.Parallel()

		// given
		file := entities.ParseConfigFile("defconfig", "CONFIG_KSU=y\nCONFIG_A=y\n")

		// when
		changed := file.SetToggle("CONFIG_KSU", entities.BoolValue(true))

		// then
		assert.False(t, changed)
		assert.Equal(t, "CONFIG_KSU=y\nCONFIG_A=y\n", file.String())
	})

	t.Run("should keep exactly one line after switching the value", func(t *testing.T) {
		t.Parallel()

		// given
		file := entities.ParseConfigFile("defconfig", "CONFIG_HZ=\"100\"\n")

		// when
		file.SetToggle("CONFIG_HZ", entities.ParseConfigValue("250"))
		file.SetToggle("CONFIG_HZ", entities.ParseConfigValue("300"))

		// then
		assert.Equal(t, []string{`"300"`}, file.ActiveValues("CONFIG_HZ"))
	})
}

func TestConfigFileInsertUniqueBefore(t *testing.T) {
	t.Parallel()

	t.Run("should insert before the last anchor line", func(t *testing.T) {
		t.Parallel()

		// given
		file := entities.ParseConfigFile("Kconfig", "menu \"Drivers\"\nsource \"drivers/a/Kconfig\"\nendmenu\n")

		// when
		changed := file.InsertUniqueBefore(`source "drivers/kernelsu/Kconfig"`, "endmenu")

		// then
		assert.True(t, changed)
		assert.Equal(t,
			"menu \"Drivers\"\nsource \"drivers/a/Kconfig\"\nsource \"drivers/kernelsu/Kconfig\"\nendmenu\n",
			file.String(),
		)
	})

	t.Run("should append when the anchor is absent", func(t *testing.T) {
		t.Parallel()

		// given
		file := entities.ParseConfigFile("Kconfig", "source \"drivers/a/Kconfig\"\n")

		// when
		file.InsertUniqueBefore(`source "drivers/kernelsu/Kconfig"`, "endmenu")

		// then
		assert.Equal(t, "source \"drivers/a/Kconfig\"\nsource \"drivers/kernelsu/Kconfig\"\n", file.String())
	})

	t.Run("should do nothing when the line already exists", func(t *testing.T) {
		t.Parallel()

		// given
		content := "source \"drivers/kernelsu/Kconfig\"\nendmenu\n"
		file := entities.ParseConfigFile("Kconfig", content)

		// when
		changed := file.InsertUniqueBefore(`source "drivers/kernelsu/Kconfig"`, "endmenu")

		// then
		assert.False(t, changed)
		assert.Equal(t, content, file.String())
	})
}

func TestConfigFileOnDisk(t *testing.T) {
	t.Parallel()

	t.Run("should fail with a precondition error when the file does not exist", func(t *testing.T) {
		t.Parallel()

		// given
		path := filepath.Join(t.TempDir(), "missing_defconfig")

		// when
		_, err := entities.AppendUniqueLine(path, "CONFIG_KSU=y")

		// then
		require.ErrorIs(t, err, entities.ErrPrecondition)
		assert.Contains(t, err.Error(), "does not exist")
	})

	t.Run("should converge to the same content when mutations are repeated", func(t *testing.T) {
		t.Parallel()

		// given
		path := filepath.Join(t.TempDir(), "gki_defconfig")
		require.NoError(t, os.WriteFile(path, []byte("CONFIG_A=y\n# CONFIG_LTO_CLANG_FULL is not set\n"), 0o640))

		mutate := func() {
			_, err := entities.AppendUniqueLine(path, "CONFIG_KSU=y")
			require.NoError(t, err)
			file, err := entities.OpenConfigFile(path)
			require.NoError(t, err)
			file.SetToggle("CONFIG_LTO_CLANG_FULL", entities.BoolValue(true))
			require.NoError(t, file.Save())
		}

		// when
		mutate()
		first, err := os.ReadFile(path)
		require.NoError(t, err)
		mutate()
		second, err := os.ReadFile(path)
		require.NoError(t, err)

		// then
		assert.Equal(t, "CONFIG_A=y\nCONFIG_KSU=y\nCONFIG_LTO_CLANG_FULL=y\n", string(first))
		assert.Equal(t, string(first), string(second))
	})

	t.Run("should keep the file permissions when saving", func(t *testing.T) {
		t.Parallel()

		// given
		path := filepath.Join(t.TempDir(), "gki_defconfig")
		require.NoError(t, os.WriteFile(path, []byte("CONFIG_A=y\n"), 0o640))
		require.NoError(t, os.Chmod(path, 0o640))

		// when
		changed, err := entities.AppendUniqueLine(path, "CONFIG_B=y")

		// then
		require.NoError(t, err)
		assert.True(t, changed)
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o640), info.Mode().Perm())
	})

	t.Run("should build and keep the toggle and the appended line from an empty file", func(t *testing.T) {
		t.Parallel()

		// given
		path := filepath.Join(t.TempDir(), "gki_defconfig")
		require.NoError(t, os.WriteFile(path, nil, 0o644))

		mutate := func() {
			file, err := entities.OpenConfigFile(path)
			require.NoError(t, err)
			file.SetToggle("CONFIG_LTO_CLANG_THIN", entities.BoolValue(true))
			file.AppendUnique("CONFIG_KSU=y")
			require.NoError(t, file.Save())
		}

		// when
		mutate()
		first, err := os.ReadFile(path)
		require.NoError(t, err)
		mutate()
		second, err := os.ReadFile(path)
		require.NoError(t, err)

		// then
		assert.Equal(t, "CONFIG_LTO_CLANG_THIN=y\nCONFIG_KSU=y\n", string(first))
		assert.Equal(t, string(first), string(second))
	})

	t.Run("should replace the file without leaving temporary files behind", func(t *testing.T) {
		t.Parallel()

		// given
		dir := t.TempDir()
		path := filepath.Join(dir, "gki_defconfig")
		require.NoError(t, os.WriteFile(path, []byte("CONFIG_A=y\n"), 0o600))
		require.NoError(t, os.Chmod(path, 0o600))
		file, err := entities.OpenConfigFile(path)
		require.NoError(t, err)
		file.SetToggle("CONFIG_A", entities.BoolValue(false))

		// when
		err = file.Save()

		// then
		require.NoError(t, err)
		content, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "CONFIG_A=n\n", string(content))
		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "gki_defconfig", entries[0].Name())
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
	})

	t.Run("should leave the original untouched when the directory is not writable", func(t *testing.T) {
		t.Parallel()
		if os.Geteuid() == 0 {
			t.Skip("directory permissions do not apply to root")
		}

		// given
		dir := t.TempDir()
		path := filepath.Join(dir, "gki_defconfig")
		require.NoError(t, os.WriteFile(path, []byte("CONFIG_A=y\n"), 0o644))
		file, err := entities.OpenConfigFile(path)
		require.NoError(t, err)
		file.AppendUnique("CONFIG_KSU=y")
		require.NoError(t, os.Chmod(dir, 0o555))
		t.Cleanup(func() { _ = os.Chmod(dir, 0o755) })

		// when
		err = file.Save()

		// then
		require.ErrorIs(t, err, entities.ErrPrecondition)
		content, readErr := os.ReadFile(path)
		require.NoError(t, readErr)
		assert.Equal(t, "CONFIG_A=y\n", string(content))
	})
}
