// Package file provides a filesystem-backed model store. Each fitted
// model artifact is gob-encoded into its own file under the models
// directory, named after its logical model name.
package file

import (
	"bytes"
	"context"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/corpora-dev/corpora/internal/core/domain"
	"github.com/corpora-dev/corpora/internal/core/ports/driven"
)

// Ensure ModelStore implements the interface.
var _ driven.ModelStore = (*ModelStore)(nil)

// ModelStore persists model artifacts as gob files.
type ModelStore struct {
	mu  sync.Mutex
	dir string
}

// NewModelStore creates a model store rooted at dir. If dir is empty,
// defaults to ~/.corpora/models.
func NewModelStore(dir string) (*ModelStore, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dir = filepath.Join(home, ".corpora", "models")
	}

	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("creating models directory: %w", err)
	}

	return &ModelStore{dir: dir}, nil
}

// Save persists an artifact under a logical name, replacing any
// previous generation. The write goes through a temp file and rename
// so a crash never leaves a half-written artifact behind.
func (s *ModelStore) Save(_ context.Context, name string, artifact any) error {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(artifact); err != nil {
		return fmt.Errorf("encode model %s: %w", name, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.path(name)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("write model %s: %w", name, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replace model %s: %w", name, err)
	}
	return nil
}

// Load decodes the artifact stored under name into out.
func (s *ModelStore) Load(_ context.Context, name string, out any) error {
	s.mu.Lock()
	data, err := os.ReadFile(s.path(name))
	s.mu.Unlock()
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: model %s", domain.ErrNotFound, name)
		}
		return fmt.Errorf("read model %s: %w", name, err)
	}

	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(out); err != nil {
		return fmt.Errorf("decode model %s: %w", name, err)
	}
	return nil
}

// Exists reports whether an artifact is stored under name.
func (s *ModelStore) Exists(_ context.Context, name string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := os.Stat(s.path(name))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("stat model %s: %w", name, err)
	}
	return true, nil
}

func (s *ModelStore) path(name string) string {
	return filepath.Join(s.dir, name+".gob")
}
