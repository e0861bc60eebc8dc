package commands

import (
	"context"
	"errors"
)

// VersionStage derives the version number and the build label before compiling.
type VersionStage struct {
	version Version
	label   Label
}

// NewVersionStage creates a new VersionStage.
func NewVersionStage(version Version, label Label) *VersionStage {
	return &VersionStage{version: version, label: label}
}

// Name returns the stage name.
func (it *VersionStage) Name() string { return StageVersion }

// Validate has no preconditions: both values degrade to fallbacks.
func (it *VersionStage) Validate(context.Context, *StageContext) error { return nil }

// Execute fills sc.VersionNumber and sc.Label.
func (it *VersionStage) Execute(ctx context.Context, sc *StageContext) error {
	sc.VersionNumber = it.version.Execute(ctx, sc.Settings, sc.Settings.VersionRepositoryPath())
	sc.Label = it.label.Execute(ctx, sc.Settings)
	return nil
}

// Verify checks both values were produced.
func (it *VersionStage) Verify(_ context.Context, sc *StageContext) error {
	if sc.VersionNumber <= 0 || sc.Label.Timestamp.IsZero() {
		return errors.New("version number or build label missing")
	}
	return nil
}
