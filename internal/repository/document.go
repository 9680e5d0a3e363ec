package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

var ErrNotFound = errors.New("document not found")

const (
	CollectionCourses = "courses"
	CollectionJobs    = "jobs"
)

// Document is a stored JSON object and its store-assigned ID.
type Document struct {
	ID   string
	Data map[string]any
}

// DocumentStore is a schemaless collection store. Postgres (jsonb),
// Firestore and an in-memory map implement it.
type DocumentStore interface {
	// Create stores data under a new ID and returns that ID.
	Create(ctx context.Context, collection string, data map[string]any) (string, error)
	Get(ctx context.Context, collection, id string) (map[string]any, error)
	// Query returns every document whose top-level field equals value.
	Query(ctx context.Context, collection, field string, value any) ([]Document, error)
	// Update merges fields into the top level of an existing document.
	Update(ctx context.Context, collection, id string, fields map[string]any) error
	Delete(ctx context.Context, collection, id string) error
}

// toData converts a tagged struct into its JSON object form.
func toData(v any) (map[string]any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	var data map[string]any
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return data, nil
}

func fromData(data map[string]any, v any) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("decode document: %w", err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("decode document: %w", err)
	}
	return nil
}
