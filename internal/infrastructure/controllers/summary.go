package controllers

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"time"

	"github.com/fatih/color"

	"github.com/rios0rios0/kernelforge/internal/domain/commands"
	"github.com/rios0rios0/kernelforge/internal/domain/entities"
)

// printReport writes a per-stage summary of a pipeline run.
func printReport(out io.Writer, report *commands.BuildReport) {
	if report == nil {
		return
	}
	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed, color.Bold).SprintFunc()
	faint := color.New(color.Faint).SprintFunc()

	_, _ = fmt.Fprintln(out)
	for _, stage := range report.Stages {
		switch {
		case stage.Skipped:
			_, _ = fmt.Fprintf(out, "  %s %-10s %s\n", faint("-"), stage.Name, faint("skipped"))
		case stage.Err != nil:
			_, _ = fmt.Fprintf(out, "  %s %-10s %s\n", red("x"), stage.Name, red(stage.Err.Error()))
		default:
			_, _ = fmt.Fprintf(out, "  %s %-10s %s\n", green("+"), stage.Name, stage.Duration.Round(time.Millisecond))
		}
	}

	sc := report.Context
	if sc == nil {
		return
	}
	for _, result := range sc.Reconciled {
		_, _ = fmt.Fprintf(out, "  %-10s %s %s\n", result.Spec.Name, result.Action, faint(entities.ShortenRevision(result.Revision)))
	}
	for _, name := range slices.Sorted(maps.Keys(sc.Patches)) {
		_, _ = fmt.Fprintf(out, "  patch %-10s %s\n", name, sc.Patches[name])
	}
	if sc.VersionNumber > 0 {
		_, _ = fmt.Fprintf(out, "  version    %d\n", sc.VersionNumber)
	}
	if !sc.Label.Timestamp.IsZero() {
		_, _ = fmt.Fprintf(out, "  label      %s\n", sc.Label)
	}
	if sc.Artifact != nil {
		_, _ = fmt.Fprintf(out, "  artifact   %s\n", green(sc.Artifact.Path))
		_, _ = fmt.Fprintf(out, "  sha256     %s\n", sc.Artifact.Checksum)
	}
	for _, location := range sc.Published {
		_, _ = fmt.Fprintf(out, "  published  %s\n", location)
	}
}

// printHistory writes the recorded runs as a table, newest first.
func printHistory(out io.Writer, runs []entities.BuildRun) {
	if len(runs) == 0 {
		_, _ = fmt.Fprintln(out, "No recorded builds.")
		return
	}
	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()

	for _, run := range runs {
		status := green(string(run.Status))
		detail := run.Artifact
		if run.Status == entities.RunFailed {
			status = red(string(run.Status))
			detail = fmt.Sprintf("%s: %s", run.FailedStage, run.Error)
		}
		_, _ = fmt.Fprintf(out, "%s  %-9s  %-6d  %-24s  %8s  %s\n",
			run.StartedAt.Format(time.RFC3339),
			status,
			run.VersionNumber,
			run.Label,
			run.Duration.Round(time.Second),
			detail,
		)
	}
}
