package repository

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore is a process-local DocumentStore. Values are stored as
// copies so callers cannot mutate stored documents.
type MemoryStore struct {
	mu    sync.RWMutex
	data  map[string]map[string]map[string]any
	order map[string][]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data:  map[string]map[string]map[string]any{},
		order: map[string][]string{},
	}
}

func (s *MemoryStore) Create(ctx context.Context, collection string, data map[string]any) (string, error) {
	doc, err := clone(data)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.NewString()
	if s.data[collection] == nil {
		s.data[collection] = map[string]map[string]any{}
	}
	s.data[collection][id] = doc
	s.order[collection] = append(s.order[collection], id)
	return id, nil
}

func (s *MemoryStore) Get(ctx context.Context, collection, id string) (map[string]any, error) {
	s.mu.RLock()
	doc, ok := s.data[collection][id]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return clone(doc)
}

// Query returns matches newest first, like the SQL store.
func (s *MemoryStore) Query(ctx context.Context, collection, field string, value any) ([]Document, error) {
	want, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	var docs []Document
	ids := s.order[collection]
	for i := len(ids) - 1; i >= 0; i-- {
		doc, ok := s.data[collection][ids[i]]
		if !ok {
			continue
		}
		got, err := json.Marshal(doc[field])
		if err != nil || string(got) != string(want) {
			continue
		}
		c, err := clone(doc)
		if err != nil {
			return nil, err
		}
		docs = append(docs, Document{ID: ids[i], Data: c})
	}
	return docs, nil
}

func (s *MemoryStore) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	patch, err := clone(fields)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.data[collection][id]
	if !ok {
		return ErrNotFound
	}
	for k, v := range patch {
		doc[k] = v
	}
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, collection, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data[collection][id]; !ok {
		return ErrNotFound
	}
	delete(s.data[collection], id)
	return nil
}

func clone(data map[string]any) (map[string]any, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}
