//go:build unit

package archive_test

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ulikunitz/xz"

	"github.com/rios0rios0/kernelforge/internal/infrastructure/repositories/archive"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestArchiveRepositoryZip(t *testing.T) {
	t.Parallel()

	t.Run("should store files with relative paths and skip excluded entries", func(t *testing.T) {
		t.Parallel()

		// given
		source := t.TempDir()
		writeFile(t, filepath.Join(source, "anykernel.sh"), "#!/sbin/sh\n")
		writeFile(t, filepath.Join(source, "Image"), "kernel")
		writeFile(t, filepath.Join(source, "tools", "busybox"), "bb")
		writeFile(t, filepath.Join(source, ".git", "HEAD"), "ref: refs/heads/master\n")
		writeFile(t, filepath.Join(source, "README.md"), "docs")
		destination := filepath.Join(t.TempDir(), "kernel.zip")

		// when
		err := archive.NewArchiveRepository().Zip(source, destination, []string{".git", "README.md"})

		// then
		require.NoError(t, err)
		reader, err := zip.OpenReader(destination)
		require.NoError(t, err)
		t.Cleanup(func() { _ = reader.Close() })
		var names []string
		for _, file := range reader.File {
			names = append(names, file.Name)
		}
		sort.Strings(names)
		assert.Equal(t, []string{"Image", "anykernel.sh", "tools/busybox"}, names)
	})

	t.Run("should fail when the source directory does not exist", func(t *testing.T) {
		t.Parallel()

		// given
		destination := filepath.Join(t.TempDir(), "kernel.zip")

		// when
		err := archive.NewArchiveRepository().Zip(filepath.Join(t.TempDir(), "absent"), destination, nil)

		// then
		require.Error(t, err)
	})
}

func TestArchiveRepositoryChecksum(t *testing.T) {
	t.Parallel()

	t.Run("should return the sha256 digest and the size", func(t *testing.T) {
		t.Parallel()

		// given
		path := filepath.Join(t.TempDir(), "kernel.zip")
		writeFile(t, path, "abc")

		// when
		sum, size, err := archive.NewArchiveRepository().Checksum(path)

		// then
		require.NoError(t, err)
		assert.Equal(t, "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad", sum)
		assert.Equal(t, int64(3), size)
	})
}

func TestArchiveRepositoryCompress(t *testing.T) {
	t.Parallel()

	t.Run("should write an xz stream that decompresses to the source", func(t *testing.T) {
		t.Parallel()

		// given
		dir := t.TempDir()
		source := filepath.Join(dir, "compile.log")
		writeFile(t, source, "  CC      kernel/fork.o\n  LD      vmlinux\n")
		destination := filepath.Join(dir, "compile.log.xz")

		// when
		err := archive.NewArchiveRepository().Compress(source, destination)

		// then
		require.NoError(t, err)
		file, err := os.Open(destination)
		require.NoError(t, err)
		t.Cleanup(func() { _ = file.Close() })
		reader, err := xz.NewReader(file)
		require.NoError(t, err)
		content, err := io.ReadAll(reader)
		require.NoError(t, err)
		assert.Equal(t, "  CC      kernel/fork.o\n  LD      vmlinux\n", string(content))
	})
}
