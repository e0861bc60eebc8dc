package commands

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/kernelforge/internal/domain/entities"
	"github.com/rios0rios0/kernelforge/internal/domain/repositories"
)

// Build is the interface for running the build pipeline.
type Build interface {
	Execute(ctx context.Context, settings *entities.Settings, opts BuildOptions) (*BuildReport, error)
}

// BuildOptions holds runtime options for a single pipeline run.
type BuildOptions struct {
	// Stages restricts the run to the named stages; empty runs all of them.
	Stages []string
	// SkipPublish disables the publish stage even when it is configured.
	SkipPublish bool
}

// StageReport is the outcome of one stage.
type StageReport struct {
	Name     string
	Skipped  bool
	Duration time.Duration
	Err      error
}

// BuildReport summarizes a pipeline run.
type BuildReport struct {
	Context *StageContext
	Stages  []StageReport
	Run     entities.BuildRun
}

// BuildCommand runs the named stages in order. The first failing stage aborts
// the run; nothing is rolled back.
type BuildCommand struct {
	stages  []Stage
	history repositories.HistoryOpener
}

// NewBuildCommand creates a new BuildCommand with the stages in pipeline order.
func NewBuildCommand(
	prepare *PrepareStage,
	configure *ConfigureStage,
	version *VersionStage,
	compile *CompileStage,
	pack *PackageStage,
	publish *PublishStage,
	history repositories.HistoryOpener,
) *BuildCommand {
	return &BuildCommand{
		stages:  []Stage{prepare, configure, version, compile, pack, publish},
		history: history,
	}
}

// Execute runs the pipeline and records the run when a history database is set.
func (it *BuildCommand) Execute(
	ctx context.Context,
	settings *entities.Settings,
	opts BuildOptions,
) (*BuildReport, error) {
	for _, name := range opts.Stages {
		if !slices.ContainsFunc(it.stages, func(s Stage) bool { return s.Name() == name }) {
			return nil, fmt.Errorf("unknown stage %q", name)
		}
	}

	sc := NewStageContext(settings)
	report := &BuildReport{Context: sc}
	started := time.Now()

	logger.Infof("Starting build %s", settings.Build.ID)
	runErr := it.run(ctx, sc, opts, report)

	report.Run = newBuildRun(settings, sc, report, started, runErr)
	if len(opts.Stages) == 0 {
		it.record(ctx, settings, report.Run)
	}

	if runErr != nil {
		return report, runErr
	}
	logger.Infof("Build %s finished in %s", settings.Build.ID, report.Run.Duration.Round(time.Second))
	return report, nil
}

func (it *BuildCommand) run(ctx context.Context, sc *StageContext, opts BuildOptions, report *BuildReport) error {
	for _, stage := range it.stages {
		if len(opts.Stages) > 0 && !slices.Contains(opts.Stages, stage.Name()) {
			continue
		}

		stageReport := StageReport{Name: stage.Name()}
		if skipped(stage, sc, opts) {
			stageReport.Skipped = true
			report.Stages = append(report.Stages, stageReport)
			logger.Debugf("[%s] Not enabled, skipping", stage.Name())
			continue
		}

		start := time.Now()
		err := runStage(ctx, stage, sc)
		stageReport.Duration = time.Since(start)
		stageReport.Err = err
		report.Stages = append(report.Stages, stageReport)
		if err != nil {
			return fmt.Errorf("stage %q failed: %w", stage.Name(), err)
		}
	}
	return nil
}

func skipped(stage Stage, sc *StageContext, opts BuildOptions) bool {
	if stage.Name() == StagePublish && opts.SkipPublish {
		return true
	}
	optional, ok := stage.(OptionalStage)
	return ok && !optional.Enabled(sc)
}

func runStage(ctx context.Context, stage Stage, sc *StageContext) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := stage.Validate(ctx, sc); err != nil {
		return err
	}
	if err := stage.Execute(ctx, sc); err != nil {
		return err
	}
	return stage.Verify(ctx, sc)
}

func (it *BuildCommand) record(ctx context.Context, settings *entities.Settings, run entities.BuildRun) {
	if settings.History.Database == "" || it.history == nil {
		return
	}
	history, err := it.history(settings.History.Database)
	if err != nil {
		logger.Warnf("Failed to open build history: %v", err)
		return
	}
	defer func() {
		if closeErr := history.Close(); closeErr != nil {
			logger.Warnf("Failed to close build history: %v", closeErr)
		}
	}()

	if err = history.Record(ctx, run); err != nil {
		logger.Warnf("Failed to record build %s: %v", run.ID, err)
	}
}

func newBuildRun(
	settings *entities.Settings,
	sc *StageContext,
	report *BuildReport,
	started time.Time,
	runErr error,
) entities.BuildRun {
	run := entities.BuildRun{
		ID:            settings.Build.ID,
		VersionNumber: sc.VersionNumber,
		Status:        entities.RunSucceeded,
		StartedAt:     started.UTC(),
		Duration:      time.Since(started),
	}
	if !sc.Label.Timestamp.IsZero() {
		run.Label = sc.Label.String()
	}
	if sc.Artifact != nil {
		run.Artifact = sc.Artifact.Name
		run.Checksum = sc.Artifact.Checksum
	}
	if runErr != nil {
		run.Status = entities.RunFailed
		run.Error = runErr.Error()
		if last := len(report.Stages) - 1; last >= 0 && report.Stages[last].Err != nil {
			run.FailedStage = report.Stages[last].Name
		}
		if errors.Is(runErr, context.Canceled) {
			run.Error = "interrupted"
		}
	}
	return run
}
