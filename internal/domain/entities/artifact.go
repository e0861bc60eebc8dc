package entities

import "fmt"

// ArtifactName composes the collision-resistant archive name.
func ArtifactName(prefix, label string, versionNumber int) string {
	return fmt.Sprintf("%s-%s-%d.zip", prefix, label, versionNumber)
}

// Artifact describes a packaged build output.
type Artifact struct {
	Name     string
	Path     string
	Checksum string
	Size     int64
	// ChecksumPath is the sidecar file holding Checksum.
	ChecksumPath string
	// LogPath is the compressed compile log, when one was archived.
	LogPath string
}
