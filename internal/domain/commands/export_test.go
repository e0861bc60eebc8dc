package commands

import (
	"time"

	"github.com/rios0rios0/kernelforge/internal/domain/repositories"
)

// SelectOperations exports selectOperations for testing.
var SelectOperations = selectOperations //nolint:gochecknoglobals // test export

// ShouldClean exports shouldClean for testing.
var ShouldClean = shouldClean //nolint:gochecknoglobals // test export

// PatchSpecFor exports patchSpec for testing.
var PatchSpecFor = patchSpec //nolint:gochecknoglobals // test export

// ReconcileLevels exports reconcileLevels for testing.
var ReconcileLevels = reconcileLevels //nolint:gochecknoglobals // test export

// CacheMarker exports cacheMarker for testing.
const CacheMarker = cacheMarker

// SetDelay replaces the retry backoff so tests do not sleep.
func (it *ReconcileCommand) SetDelay(delay func(attempt int) time.Duration) {
	it.delay = delay
}

// SetClock replaces the wall clock used for build labels.
func (it *LabelCommand) SetClock(now func() time.Time) {
	it.now = now
}

// NewBuildCommandWithStages builds a pipeline from arbitrary stages.
func NewBuildCommandWithStages(history repositories.HistoryOpener, stages ...Stage) *BuildCommand {
	return &BuildCommand{stages: stages, history: history}
}
