package entities

import "time"

// RunStatus is the final state of a pipeline run.
type RunStatus string

const (
	RunSucceeded RunStatus = "succeeded"
	RunFailed    RunStatus = "failed"
)

// BuildRun is the history record of one pipeline execution.
type BuildRun struct {
	ID            string
	Label         string
	VersionNumber int
	Artifact      string
	Checksum      string
	Status        RunStatus
	FailedStage   string
	Error         string
	StartedAt     time.Time
	Duration      time.Duration
}
