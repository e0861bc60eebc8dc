package entities

const (
	// VersionBase and VersionOffset frame the commit count in the derived number.
	VersionBase   = 10000
	VersionOffset = 200
	// DefaultVersionFallback is used when the commit count cannot be read.
	DefaultVersionFallback = 11998
)

// DeriveVersionNumber maps a commit count to the numeric build identifier.
func DeriveVersionNumber(commitCount int) int {
	return VersionBase + commitCount + VersionOffset
}
