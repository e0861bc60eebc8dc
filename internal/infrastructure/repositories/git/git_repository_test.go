//go:build integration

package git_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/kernelforge/internal/domain/commands"
	"github.com/rios0rios0/kernelforge/internal/domain/entities"
	"github.com/rios0rios0/kernelforge/internal/infrastructure/repositories/git"
	"github.com/rios0rios0/kernelforge/internal/infrastructure/repositories/patch"
	"github.com/rios0rios0/kernelforge/internal/infrastructure/repositories/profile"
	"github.com/rios0rios0/kernelforge/test/domain/entitybuilders"
)

// upstream is a local repository standing in for the remote.
type upstream struct {
	t    *testing.T
	dir  string
	repo *gogit.Repository
}

func newUpstream(t *testing.T) *upstream {
	t.Helper()
	dir := t.TempDir()
	repo, err := gogit.PlainInit(dir, false)
	require.NoError(t, err)
	u := &upstream{t: t, dir: dir, repo: repo}
	u.commit("Makefile", "VERSION = 5\nPATCHLEVEL = 10\nSUBLEVEL = 198\n", "Initial import")
	return u
}

func (u *upstream) commit(name, content, message string) plumbing.Hash {
	u.t.Helper()
	path := filepath.Join(u.dir, name)
	require.NoError(u.t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(u.t, os.WriteFile(path, []byte(content), 0o644))

	worktree, err := u.repo.Worktree()
	require.NoError(u.t, err)
	_, err = worktree.Add(name)
	require.NoError(u.t, err)
	hash, err := worktree.Commit(message, &gogit.CommitOptions{
		Author: &object.Signature{Name: "Kernel Dev", Email: "dev@example.com", When: time.Now()},
	})
	require.NoError(u.t, err)
	return hash
}

func (u *upstream) spec(localPath string) entities.RepositorySpec {
	return entitybuilders.NewRepositorySpecBuilder().
		WithRemoteURL(u.dir).
		WithLocalPath(localPath).
		WithBranch("master").
		WithDepth(0).
		BuildSpec()
}

func TestRepositoryInspect(t *testing.T) {
	t.Parallel()

	t.Run("should classify missing, empty, plain and repository paths", func(t *testing.T) {
		t.Parallel()

		// given
		repo := git.NewGitRepository()
		plain := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(plain, "README"), []byte("x"), 0o600))
		up := newUpstream(t)

		// when / then
		state, err := repo.Inspect(filepath.Join(t.TempDir(), "absent"))
		require.NoError(t, err)
		assert.Equal(t, entities.PathMissing, state)

		state, err = repo.Inspect(t.TempDir())
		require.NoError(t, err)
		assert.Equal(t, entities.PathMissing, state)

		state, err = repo.Inspect(plain)
		require.NoError(t, err)
		assert.Equal(t, entities.PathNotRepository, state)

		state, err = repo.Inspect(up.dir)
		require.NoError(t, err)
		assert.Equal(t, entities.PathRepository, state)
	})
}

func TestRepositoryReconcile(t *testing.T) {
	t.Parallel()

	t.Run("should clone and then leave the tree unchanged on a second run", func(t *testing.T) {
		t.Parallel()

		// given
		up := newUpstream(t)
		head := up.commit("drivers/Makefile", "obj-y += base/\n", "Add drivers")
		spec := up.spec(filepath.Join(t.TempDir(), "kernel"))
		settings := entitybuilders.NewSettingsBuilder().BuildSettings()
		cmd := commands.NewReconcileCommand(git.NewGitRepository())

		// when
		first, err := cmd.Execute(context.Background(), settings, spec)
		require.NoError(t, err)
		second, err := cmd.Execute(context.Background(), settings, spec)
		require.NoError(t, err)

		// then
		assert.Equal(t, entities.ReconcileCloned, first.Action)
		assert.Equal(t, entities.ReconcileUpdated, second.Action)
		assert.Equal(t, head.String(), first.Revision)
		assert.Equal(t, head.String(), second.Revision)
	})

	t.Run("should discard local edits and follow the remote tip", func(t *testing.T) {
		t.Parallel()

		// given
		up := newUpstream(t)
		local := filepath.Join(t.TempDir(), "kernel")
		spec := up.spec(local)
		settings := entitybuilders.NewSettingsBuilder().BuildSettings()
		cmd := commands.NewReconcileCommand(git.NewGitRepository())
		_, err := cmd.Execute(context.Background(), settings, spec)
		require.NoError(t, err)

		require.NoError(t, os.WriteFile(filepath.Join(local, "Makefile"), []byte("VERSION = 9\n"), 0o644))
		tip := up.commit("Makefile", "VERSION = 6\nPATCHLEVEL = 1\nSUBLEVEL = 0\n", "Bump to 6.1")

		// when
		result, err := cmd.Execute(context.Background(), settings, spec)

		// then
		require.NoError(t, err)
		assert.Equal(t, tip.String(), result.Revision)
		content, err := os.ReadFile(filepath.Join(local, "Makefile"))
		require.NoError(t, err)
		assert.Equal(t, "VERSION = 6\nPATCHLEVEL = 1\nSUBLEVEL = 0\n", string(content))
	})

	t.Run("should reset a pinned repository to its revision", func(t *testing.T) {
		t.Parallel()

		// given
		up := newUpstream(t)
		pinned := up.commit("a.txt", "a", "Add a")
		up.commit("b.txt", "b", "Add b")
		spec := up.spec(filepath.Join(t.TempDir(), "kernel"))
		spec.Revision = pinned.String()
		settings := entitybuilders.NewSettingsBuilder().BuildSettings()

		// when
		result, err := commands.NewReconcileCommand(git.NewGitRepository()).Execute(context.Background(), settings, spec)

		// then
		require.NoError(t, err)
		assert.Equal(t, pinned.String(), result.Revision)
		assert.NoFileExists(t, filepath.Join(spec.LocalPath, "b.txt"))
	})
}

func TestRepositoryFetch(t *testing.T) {
	t.Parallel()

	t.Run("should keep a full clone complete when a depth is declared", func(t *testing.T) {
		t.Parallel()

		// given
		up := newUpstream(t)
		up.commit("a.txt", "a", "Add a")
		repo := git.NewGitRepository()
		spec := up.spec(filepath.Join(t.TempDir(), "kernel"))
		require.NoError(t, repo.Clone(context.Background(), spec))
		tip := up.commit("b.txt", "b", "Add b")
		spec.ShallowDepth = 1
		settings := entitybuilders.NewSettingsBuilder().BuildSettings()

		// when
		result, err := commands.NewReconcileCommand(repo).Execute(context.Background(), settings, spec)

		// then
		require.NoError(t, err)
		assert.Equal(t, tip.String(), result.Revision)
		shallow, err := repo.IsShallow(spec.LocalPath)
		require.NoError(t, err)
		assert.False(t, shallow)
		count, err := repo.CountCommits(context.Background(), spec.LocalPath)
		require.NoError(t, err)
		assert.Equal(t, 3, count)
	})
}

func TestRepositoryCheckout(t *testing.T) {
	t.Parallel()

	t.Run("should fail when the branch exists neither locally nor on the remote", func(t *testing.T) {
		t.Parallel()

		// given
		up := newUpstream(t)
		repo := git.NewGitRepository()
		spec := up.spec(filepath.Join(t.TempDir(), "kernel"))
		require.NoError(t, repo.Clone(context.Background(), spec))
		spec.Branch = "android14-6.1"

		// when
		err := repo.Checkout(context.Background(), spec)

		// then
		require.Error(t, err)
		assert.Contains(t, err.Error(), `branch "android14-6.1" not found`)
	})
}

func TestPrepareStageWithNestedRepositories(t *testing.T) {
	t.Parallel()

	t.Run("should clone the kernel before the repository nested inside it", func(t *testing.T) {
		t.Parallel()

		// given
		kernelUp := newUpstream(t)
		kernelSUUp := newUpstream(t)
		kernelSUHead := kernelSUUp.commit("kernel/Kconfig", "config KSU\n", "Add Kconfig")
		root := t.TempDir()
		kernelDir := filepath.Join(root, "kernel")

		nested := kernelSUUp.spec(filepath.Join(kernelDir, "KernelSU"))
		nested.Name = "kernelsu"
		parent := kernelUp.spec(kernelDir)
		parent.Name = "kernel"
		settings := entitybuilders.NewSettingsBuilder().
			WithRoot(root).
			WithParallel(true).
			WithRepository(nested).
			WithRepository(parent).
			BuildSettings()

		repo := git.NewGitRepository()
		stage := commands.NewPrepareStage(
			commands.NewReconcileCommand(repo),
			commands.NewInjectCommand(),
			commands.NewPatchCommand(patch.NewPatchRepository()),
			repo,
			commands.NewProfileResolver(profile.NewProfileRepository()),
		)
		sc := commands.NewStageContext(settings)

		// when
		require.NoError(t, stage.Validate(context.Background(), sc))
		require.NoError(t, stage.Execute(context.Background(), sc))
		err := stage.Verify(context.Background(), sc)

		// then
		require.NoError(t, err)
		assert.Equal(t, entities.ReconcileCloned, sc.Reconciled[0].Action)
		assert.Equal(t, entities.ReconcileCloned, sc.Reconciled[1].Action)
		assert.Equal(t, kernelSUHead.String(), sc.Reconciled[0].Revision)
		assert.FileExists(t, filepath.Join(kernelDir, "Makefile"))
		assert.FileExists(t, filepath.Join(kernelDir, "KernelSU", "kernel", "Kconfig"))
	})
}

func TestRepositoryCountCommits(t *testing.T) {
	t.Parallel()

	t.Run("should count the commits of the cloned branch", func(t *testing.T) {
		t.Parallel()

		// given
		up := newUpstream(t)
		up.commit("a.txt", "a", "Add a")
		up.commit("b.txt", "b", "Add b")
		repo := git.NewGitRepository()
		spec := up.spec(filepath.Join(t.TempDir(), "kernel"))
		require.NoError(t, repo.Clone(context.Background(), spec))

		// when
		count, err := repo.CountCommits(context.Background(), spec.LocalPath)

		// then
		require.NoError(t, err)
		assert.Equal(t, 3, count)
		shallow, err := repo.IsShallow(spec.LocalPath)
		require.NoError(t, err)
		assert.False(t, shallow)
	})

	t.Run("should derive the version number from the real history", func(t *testing.T) {
		t.Parallel()

		// given
		up := newUpstream(t)
		settings := entitybuilders.NewSettingsBuilder().BuildSettings()

		// when
		number := commands.NewVersionCommand(git.NewGitRepository()).Execute(context.Background(), settings, up.dir)

		// then
		assert.Equal(t, 10201, number)
	})

	t.Run("should resolve HEAD from a subdirectory", func(t *testing.T) {
		t.Parallel()

		// given
		up := newUpstream(t)
		head := up.commit("drivers/Makefile", "obj-y += base/\n", "Add drivers")

		// when
		revision, err := git.NewGitRepository().HeadRevision(filepath.Join(up.dir, "drivers"))

		// then
		require.NoError(t, err)
		assert.Equal(t, head.String(), revision)
	})
}
