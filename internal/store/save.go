package store

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/corraldev/corral/internal/fsutil"
)

func (s *Store) statePath(name string) string {
	return filepath.Join(s.dir, name+".json")
}

// persist writes the entity snapshot atomically. Callers hold s.mu.
func (s *Store) persist(e *Entity) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("serialise entity %q: %w", e.Name, err)
	}

	if err := fsutil.AtomicWriteFile(
		s.statePath(e.Name),
		data,
		0o644,
	); err != nil {
		return fmt.Errorf("write entity state: %w", err)
	}

	return nil
}
