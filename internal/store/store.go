// Package store holds the container entities managed by the daemon: their
// names and property bags. Every successful mutation is persisted to a
// per-entity state file so a daemon reload reconstructs the exact same
// registry.
package store

import (
	"fmt"
	"log/slog"
	"os"
	"sort"
	"sync"

	"github.com/corraldev/corral/internal/apierror"
	"github.com/corraldev/corral/internal/property"
	"github.com/corraldev/corral/internal/validation"
)

// Entity is a named container with its explicitly set properties. Keys
// never set are absent and resolve to their defaults on read.
type Entity struct {
	Name       string            `json:"name"`
	Properties map[string]string `json:"properties"`
}

type Store struct {
	mu       sync.Mutex
	dir      string
	log      *slog.Logger
	entities map[string]*Entity
}

// New creates a Store persisting to dir, creating it if needed.
func New(dir string, logger *slog.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create state directory: %w", err)
	}

	return &Store{
		dir:      dir,
		log:      logger,
		entities: make(map[string]*Entity),
	}, nil
}

// Create allocates a new entity and persists it.
func (s *Store) Create(name string) error {
	if err := validation.EntityName(name); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entities[name]; exists {
		return apierror.Newf(
			apierror.ContainerAlreadyExists,
			"container %q already exists",
			name,
		)
	}

	e := &Entity{
		Name:       name,
		Properties: make(map[string]string),
	}

	if err := s.persist(e); err != nil {
		return err
	}

	s.entities[name] = e
	s.log.Info("created container", "name", name)

	return nil
}

// Find reports whether an entity with the given name exists.
func (s *Store) Find(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entities[name]; !exists {
		return apierror.Newf(
			apierror.ContainerDoesNotExist,
			"container %q does not exist",
			name,
		)
	}

	return nil
}

// Destroy removes the entity and its state file.
func (s *Store) Destroy(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entities[name]; !exists {
		return apierror.Newf(
			apierror.ContainerDoesNotExist,
			"container %q does not exist",
			name,
		)
	}

	if err := os.Remove(s.statePath(name)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove state file: %w", err)
	}

	delete(s.entities, name)
	s.log.Info("destroyed container", "name", name)

	return nil
}

// List returns the names of all entities, sorted.
func (s *Store) List() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	names := make([]string, 0, len(s.entities))
	for name := range s.entities {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}

// SetProperty validates value against key's grammar, stores the canonical
// form and persists the entity.
func (s *Store) SetProperty(name, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, exists := s.entities[name]
	if !exists {
		return apierror.Newf(
			apierror.ContainerDoesNotExist,
			"container %q does not exist",
			name,
		)
	}

	canonical, err := property.Set(key, value)
	if err != nil {
		return err
	}

	previous, had := e.Properties[key]
	e.Properties[key] = canonical

	if err := s.persist(e); err != nil {
		// Keep memory and disk consistent on a failed write.
		if had {
			e.Properties[key] = previous
		} else {
			delete(e.Properties, key)
		}

		return err
	}

	s.log.Debug("set property", "name", name, "key", key, "value", canonical)

	return nil
}

// GetProperty returns the last successfully set value for key, or the
// key's default if never set.
func (s *Store) GetProperty(name, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, exists := s.entities[name]
	if !exists {
		return "", apierror.Newf(
			apierror.ContainerDoesNotExist,
			"container %q does not exist",
			name,
		)
	}

	// absolute_name is derived, not stored.
	if key == "absolute_name" {
		return "/corral/" + name, nil
	}

	if value, set := e.Properties[key]; set {
		return value, nil
	}

	def, known := property.DefaultOf(key)
	if !known {
		return "", apierror.Newf(
			apierror.InvalidProperty,
			"unknown property %q",
			key,
		)
	}

	return def, nil
}

// Properties returns a copy of the explicitly set properties of an entity,
// for consumers that translate whole bags (e.g. enforcement).
func (s *Store) Properties(name string) (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, exists := s.entities[name]
	if !exists {
		return nil, apierror.Newf(
			apierror.ContainerDoesNotExist,
			"container %q does not exist",
			name,
		)
	}

	props := make(map[string]string, len(e.Properties))
	for k, v := range e.Properties {
		props[k] = v
	}

	return props, nil
}
