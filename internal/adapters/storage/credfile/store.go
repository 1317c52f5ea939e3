// Package credfile persists the credential blob as a single JSON file on
// disk, read once at startup and rewritten in full on every edit.
package credfile

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/nexuspro/nexus/internal/domain"
)

type Store struct {
	mu   sync.Mutex
	path string
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

// Load reads the blob. A missing file is not an error: it yields the
// default blob (empty keys, gemini managed externally).
func (s *Store) Load() (domain.Credentials, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return domain.DefaultCredentials(), nil
	}
	if err != nil {
		return domain.Credentials{}, fmt.Errorf("reading credentials file: %w", err)
	}

	var creds domain.Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return domain.Credentials{}, fmt.Errorf("parsing credentials file: %w", err)
	}
	return creds, nil
}

// Save rewrites the whole blob. Keys are secrets, so the file is
// owner-only.
func (s *Store) Save(creds domain.Credentials) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(creds, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding credentials: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating credentials dir: %w", err)
		}
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("writing credentials file: %w", err)
	}
	return nil
}
