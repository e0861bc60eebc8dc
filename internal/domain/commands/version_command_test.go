//go:build unit

package commands_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/rios0rios0/kernelforge/internal/domain/commands"
	"github.com/rios0rios0/kernelforge/test/domain/entitybuilders"
	doubles "github.com/rios0rios0/kernelforge/test/infrastructure/repositorydoubles"
)

func TestVersionCommandExecute(t *testing.T) {
	t.Parallel()

	t.Run("should derive the number from the commit count", func(t *testing.T) {
		t.Parallel()

		// given
		git := &doubles.SpyGitRepository{Commits: 1000}
		settings := entitybuilders.NewSettingsBuilder().BuildSettings()

		// when
		number := commands.NewVersionCommand(git).Execute(context.Background(), settings, "/src/kernel")

		// then
		assert.Equal(t, 11200, number)
		assert.Zero(t, git.UnshallowCalls)
	})

	t.Run("should deepen a shallow clone before counting", func(t *testing.T) {
		t.Parallel()

		// given
		git := &doubles.SpyGitRepository{Shallow: true, Commits: 5}
		settings := entitybuilders.NewSettingsBuilder().BuildSettings()

		// when
		number := commands.NewVersionCommand(git).Execute(context.Background(), settings, "/src/kernel")

		// then
		assert.Equal(t, 10205, number)
		assert.Equal(t, 1, git.UnshallowCalls)
	})

	t.Run("should count the partial history when unshallowing fails", func(t *testing.T) {
		t.Parallel()

		// given
		git := &doubles.SpyGitRepository{Shallow: true, UnshallowErr: errors.New("offline"), Commits: 1}
		settings := entitybuilders.NewSettingsBuilder().BuildSettings()

		// when
		number := commands.NewVersionCommand(git).Execute(context.Background(), settings, "/src/kernel")

		// then
		assert.Equal(t, 10201, number)
		assert.Equal(t, 1, git.CountCalls)
	})

	t.Run("should return the configured fallback when the history cannot be read", func(t *testing.T) {
		t.Parallel()

		// given
		git := &doubles.SpyGitRepository{ShallowErr: errors.New("no repo"), CountErr: errors.New("no repo")}
		settings := entitybuilders.NewSettingsBuilder().WithFallback(12345).BuildSettings()

		// when
		number := commands.NewVersionCommand(git).Execute(context.Background(), settings, "/nowhere")

		// then
		assert.Equal(t, 12345, number)
	})

	t.Run("should return 11998 when no fallback is configured", func(t *testing.T) {
		t.Parallel()

		// given
		git := &doubles.SpyGitRepository{CountErr: errors.New("no repo")}
		settings := entitybuilders.NewSettingsBuilder().WithFallback(0).BuildSettings()

		// when
		number := commands.NewVersionCommand(git).Execute(context.Background(), settings, "/nowhere")

		// then
		assert.Equal(t, 11998, number)
	})
}

func TestLabelCommandExecute(t *testing.T) {
	t.Parallel()

	clock := func() time.Time { return time.Date(2025, time.October, 15, 13, 38, 42, 0, time.UTC) }

	t.Run("should prefer the injected revision", func(t *testing.T) {
		t.Parallel()

		// given
		git := &doubles.SpyGitRepository{Revision: "ffffffffff"}
		settings := entitybuilders.NewSettingsBuilder().WithRevision("1a2b3c4").BuildSettings()
		cmd := commands.NewLabelCommand(git)
		cmd.SetClock(clock)

		// when
		label := cmd.Execute(context.Background(), settings)

		// then
		assert.Equal(t, "20251015T1338Z-1a2b3c4", label.String())
		assert.Empty(t, git.HeadRequested)
	})

	t.Run("should fall back to HEAD of the label repository", func(t *testing.T) {
		t.Parallel()

		// given
		git := &doubles.SpyGitRepository{Revision: "abcdef0123456789"}
		settings := entitybuilders.NewSettingsBuilder().BuildSettings()
		cmd := commands.NewLabelCommand(git)
		cmd.SetClock(clock)

		// when
		label := cmd.Execute(context.Background(), settings)

		// then
		assert.Equal(t, "20251015T1338Z-abcdef0", label.String())
	})

	t.Run("should omit the revision when none can be resolved", func(t *testing.T) {
		t.Parallel()

		// given
		git := &doubles.SpyGitRepository{Revision: "partial", HeadErr: errors.New("not a repository")}
		settings := entitybuilders.NewSettingsBuilder().BuildSettings()
		cmd := commands.NewLabelCommand(git)
		cmd.SetClock(clock)

		// when
		label := cmd.Execute(context.Background(), settings)

		// then
		assert.Equal(t, "20251015T1338Z", label.String())
	})
}
