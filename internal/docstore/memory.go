package docstore

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// memoryStore is an in-process Store used by tests and local development.
type memoryStore struct {
	mu   sync.RWMutex
	docs map[string][]byte
}

func NewMemoryStore() *memoryStore {
	return &memoryStore{docs: make(map[string][]byte)}
}

func (s *memoryStore) Put(_ context.Context, path string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := make([]byte, len(data))
	copy(stored, data)
	s.docs[strings.Trim(path, "/")] = stored
	return nil
}

func (s *memoryStore) Get(_ context.Context, path string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.docs[strings.Trim(path, "/")]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

func (s *memoryStore) List(_ context.Context, prefix string) ([]Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	clean := strings.Trim(prefix, "/") + "/"
	var docs []Document
	for path, data := range s.docs {
		if !strings.HasPrefix(path, clean) {
			continue
		}
		out := make([]byte, len(data))
		copy(out, data)
		docs = append(docs, Document{Path: path, Data: out})
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].Path < docs[j].Path })
	return docs, nil
}

func (s *memoryStore) Delete(_ context.Context, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs, strings.Trim(path, "/"))
	return nil
}
