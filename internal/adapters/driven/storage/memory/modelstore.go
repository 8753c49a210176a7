package memory

import (
	"bytes"
	"context"
	"encoding/gob"
	"fmt"
	"sync"

	"github.com/corpora-dev/corpora/internal/core/domain"
	"github.com/corpora-dev/corpora/internal/core/ports/driven"
)

// Ensure ModelStore implements the interface.
var _ driven.ModelStore = (*ModelStore)(nil)

// ModelStore is an in-memory implementation of driven.ModelStore.
// Artifacts go through gob like the file-backed store, so encoding
// problems surface in tests too.
type ModelStore struct {
	mu        sync.RWMutex
	artifacts map[string][]byte
}

// NewModelStore creates a new in-memory model store.
func NewModelStore() *ModelStore {
	return &ModelStore{
		artifacts: make(map[string][]byte),
	}
}

// Save persists an artifact under a logical name.
func (s *ModelStore) Save(_ context.Context, name string, artifact any) error {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(artifact); err != nil {
		return fmt.Errorf("encode model %s: %w", name, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.artifacts[name] = buf.Bytes()
	return nil
}

// Load decodes the artifact stored under name into out.
func (s *ModelStore) Load(_ context.Context, name string, out any) error {
	s.mu.RLock()
	data, ok := s.artifacts[name]
	s.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: model %s", domain.ErrNotFound, name)
	}

	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(out); err != nil {
		return fmt.Errorf("decode model %s: %w", name, err)
	}
	return nil
}

// Exists reports whether an artifact is stored under name.
func (s *ModelStore) Exists(_ context.Context, name string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.artifacts[name]
	return ok, nil
}
