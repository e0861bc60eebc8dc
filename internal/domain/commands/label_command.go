package commands

import (
	"context"
	"time"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/kernelforge/internal/domain/entities"
	"github.com/rios0rios0/kernelforge/internal/domain/repositories"
)

// Label is the interface for composing the build label.
type Label interface {
	Execute(ctx context.Context, settings *entities.Settings) entities.BuildLabel
}

// LabelCommand stamps a build with the current UTC minute and the source revision.
type LabelCommand struct {
	git repositories.GitRepository
	now func() time.Time
}

// NewLabelCommand creates a new LabelCommand.
func NewLabelCommand(git repositories.GitRepository) *LabelCommand {
	return &LabelCommand{git: git, now: time.Now}
}

// Execute prefers the injected revision, then HEAD of the label repository.
// The label carries no revision when neither is available.
func (it *LabelCommand) Execute(_ context.Context, settings *entities.Settings) entities.BuildLabel {
	revision := settings.Build.Revision
	if revision == "" && settings.Build.LabelRepository != "" {
		head, err := it.git.HeadRevision(settings.Build.LabelRepository)
		if err != nil {
			logger.Debugf("[label] No revision from %s: %v", settings.Build.LabelRepository, err)
		} else {
			revision = head
		}
	}

	label := entities.NewBuildLabel(it.now(), revision)
	logger.Infof("[label] Build label %s", label)
	return label
}
