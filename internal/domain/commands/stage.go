package commands

import (
	"context"
	"time"

	"github.com/rios0rios0/kernelforge/internal/domain/entities"
)

// Stage names, in pipeline order.
const (
	StagePrepare   = "prepare"
	StageConfigure = "configure"
	StageVersion   = "version"
	StageCompile   = "compile"
	StagePackage   = "package"
	StagePublish   = "publish"
)

// Stage is one step of the build pipeline. Validate checks preconditions,
// Verify checks the postcondition Execute promises.
type Stage interface {
	Name() string
	Validate(ctx context.Context, sc *StageContext) error
	Execute(ctx context.Context, sc *StageContext) error
	Verify(ctx context.Context, sc *StageContext) error
}

// OptionalStage is implemented by stages that only run when configured.
type OptionalStage interface {
	Enabled(sc *StageContext) bool
}

// StageContext holds shared state passed through the pipeline.
type StageContext struct {
	Settings *entities.Settings

	// Populated by prepare (or lazily by configure)
	Profile    *entities.BuildProfile
	Kernel     entities.KernelVersion
	Reconciled []entities.ReconcileResult
	Modules    map[string]bool
	Patches    map[string]entities.PatchOutcome

	// Populated by configure
	Configured *ConfigureResult

	// Populated by version
	VersionNumber int
	Label         entities.BuildLabel

	// Populated by compile
	CompileLog      string
	CompileDuration time.Duration

	// Populated by package and publish
	Artifact  *entities.Artifact
	Published []string
}

// NewStageContext creates an empty context for one run.
func NewStageContext(settings *entities.Settings) *StageContext {
	return &StageContext{
		Settings: settings,
		Modules:  map[string]bool{},
		Patches:  map[string]entities.PatchOutcome{},
	}
}
