package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/corraldev/corral/internal/property"
	"github.com/corraldev/corral/internal/validation"
)

// Load rebuilds the registry from the state directory, replacing whatever
// is in memory. Every stored value is re-validated against the current
// property grammar; a snapshot that no longer validates fails the load.
func (s *Store) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	dirents, err := os.ReadDir(s.dir)
	if err != nil {
		return fmt.Errorf("read state directory: %w", err)
	}

	entities := make(map[string]*Entity)

	for _, dirent := range dirents {
		if dirent.IsDir() || !strings.HasSuffix(dirent.Name(), ".json") {
			continue
		}

		e, err := s.loadEntity(filepath.Join(s.dir, dirent.Name()))
		if err != nil {
			return fmt.Errorf("load %s: %w", dirent.Name(), err)
		}

		entities[e.Name] = e
	}

	s.entities = entities
	s.log.Info("loaded state", "containers", len(entities))

	return nil
}

func (s *Store) loadEntity(path string) (*Entity, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read state file: %w", err)
	}

	var e Entity
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("unmarshal state: %w", err)
	}

	if err := validation.EntityName(e.Name); err != nil {
		return nil, err
	}

	if e.Properties == nil {
		e.Properties = make(map[string]string)
	}

	for key, value := range e.Properties {
		canonical, err := property.Set(key, value)
		if err != nil {
			return nil, fmt.Errorf("restore property %s: %w", key, err)
		}

		e.Properties[key] = canonical
	}

	return &e, nil
}

// Discard removes every entity and its state file, returning the store to
// a clean slate.
func (s *Store) Discard() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	dirents, err := os.ReadDir(s.dir)
	if err != nil {
		return fmt.Errorf("read state directory: %w", err)
	}

	for _, dirent := range dirents {
		if dirent.IsDir() || !strings.HasSuffix(dirent.Name(), ".json") {
			continue
		}

		if err := os.Remove(filepath.Join(s.dir, dirent.Name())); err != nil {
			return fmt.Errorf("remove state file: %w", err)
		}
	}

	s.entities = make(map[string]*Entity)
	s.log.Info("discarded state")

	return nil
}
