package entities

import (
	"strings"
	"time"
)

const (
	// BuildLabelLayout renders UTC time with minute precision, e.g. 20251015T1338Z.
	BuildLabelLayout = "20060102T1504Z"
	// ShortRevisionLength is the number of hash characters kept in a label.
	ShortRevisionLength = 7
)

// BuildLabel identifies a build by time and, when known, source revision.
type BuildLabel struct {
	Timestamp     time.Time
	ShortRevision string
}

// NewBuildLabel truncates the timestamp to the minute in UTC and shortens the revision.
func NewBuildLabel(at time.Time, revision string) BuildLabel {
	return BuildLabel{
		Timestamp:     at.UTC().Truncate(time.Minute),
		ShortRevision: ShortenRevision(revision),
	}
}

// ShortenRevision trims whitespace and keeps at most ShortRevisionLength characters.
func ShortenRevision(revision string) string {
	revision = strings.TrimSpace(revision)
	if len(revision) > ShortRevisionLength {
		return revision[:ShortRevisionLength]
	}
	return revision
}

// String renders "timestamp-revision", or only the timestamp when no revision is known.
func (l BuildLabel) String() string {
	stamp := l.Timestamp.UTC().Format(BuildLabelLayout)
	if l.ShortRevision == "" {
		return stamp
	}
	return stamp + "-" + l.ShortRevision
}
