package repositories

import (
	"fmt"
	"sort"

	"github.com/rios0rios0/kernelforge/internal/domain/entities"
	domainRepos "github.com/rios0rios0/kernelforge/internal/domain/repositories"
)

// StorageFactory is a constructor function that creates a StorageRepository from the run settings.
type StorageFactory func(settings *entities.Settings) (domainRepos.StorageRepository, error)

// StorageRegistry manages all registered artifact storage implementations.
type StorageRegistry struct {
	storages map[string]StorageFactory
}

// NewStorageRegistry creates an empty storage registry.
func NewStorageRegistry() *StorageRegistry {
	return &StorageRegistry{
		storages: make(map[string]StorageFactory),
	}
}

// Register adds a storage factory under the given name (e.g. "s3").
func (r *StorageRegistry) Register(name string, factory StorageFactory) {
	r.storages[name] = factory
}

// Get returns a configured storage instance for the given name.
func (r *StorageRegistry) Get(name string, settings *entities.Settings) (domainRepos.StorageRepository, error) {
	factory, ok := r.storages[name]
	if !ok {
		return nil, fmt.Errorf("unknown storage type: %q", name)
	}
	return factory(settings)
}

// Names returns the sorted list of registered storage names.
func (r *StorageRegistry) Names() []string {
	names := make([]string, 0, len(r.storages))
	for name := range r.storages {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
