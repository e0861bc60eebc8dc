package repositories

import "context"

// StorageRepository publishes finished artifacts to a remote store.
type StorageRepository interface {
	Name() string
	// Upload stores the local file at path under key and returns its remote location.
	Upload(ctx context.Context, key, path, contentType string) (string, error)
}
