package repositories

// ArchiveRepository packs build outputs.
type ArchiveRepository interface {
	// Zip stores sourceDir into destination, skipping entries whose base name is excluded.
	Zip(sourceDir, destination string, exclude []string) error
	// Checksum returns the hex sha256 digest and the size of path.
	Checksum(path string) (string, int64, error)
	// Compress writes an xz-compressed copy of source to destination.
	Compress(source, destination string) error
}
