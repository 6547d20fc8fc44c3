// Package docstore defines the partitioned document container the expense
// repository persists into, plus typed helpers over its JSON bodies.
//
// Every document lives under a (partition key, id) pair. Containers report
// missing documents with sentinel.ErrNotFound, duplicate creates with
// sentinel.ErrConflict and connectivity failures with sentinel.ErrUnavailable.
// Implementations check ctx.Err() before touching the store.
package docstore

import (
	"context"
	"encoding/json"
	"fmt"
)

// Container is a partitioned collection of JSON documents.
type Container interface {
	// ListAll returns every document body in the container.
	ListAll(ctx context.Context) ([][]byte, error)
	// Read returns the body stored under id in partition.
	Read(ctx context.Context, id, partition string) ([]byte, error)
	// Create stores body under id in partition and fails with
	// sentinel.ErrConflict if the id is already taken.
	Create(ctx context.Context, id, partition string, body []byte) error
	// Upsert stores body under id in partition, replacing any existing body.
	Upsert(ctx context.Context, id, partition string, body []byte) error
	// Delete removes the document. Deleting an absent document succeeds.
	Delete(ctx context.Context, id, partition string) error
}

// HealthChecker is implemented by containers backed by a remote store.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// Keyed is a document that knows its own id.
type Keyed interface {
	DocumentID() string
}

// PartitionKey returns the partition a document with the given id lives in.
// Each document is its own partition.
func PartitionKey(id string) string {
	return id
}

// ListAll decodes every document in c as a T.
func ListAll[T any](ctx context.Context, c Container) ([]T, error) {
	bodies, err := c.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]T, 0, len(bodies))
	for _, body := range bodies {
		var item T
		if err := json.Unmarshal(body, &item); err != nil {
			return nil, fmt.Errorf("decode document: %w", err)
		}
		items = append(items, item)
	}
	return items, nil
}

// ReadItem decodes the document stored under id.
func ReadItem[T any](ctx context.Context, c Container, id string) (*T, error) {
	body, err := c.Read(ctx, id, PartitionKey(id))
	if err != nil {
		return nil, err
	}
	var item T
	if err := json.Unmarshal(body, &item); err != nil {
		return nil, fmt.Errorf("decode document %s: %w", id, err)
	}
	return &item, nil
}

// CreateItem encodes item and creates it under its own id.
func CreateItem[T Keyed](ctx context.Context, c Container, item T) error {
	body, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	id := item.DocumentID()
	return c.Create(ctx, id, PartitionKey(id), body)
}

// UpsertItem encodes item and writes it under its own id.
func UpsertItem[T Keyed](ctx context.Context, c Container, item T) error {
	body, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	id := item.DocumentID()
	return c.Upsert(ctx, id, PartitionKey(id), body)
}

// DeleteItem removes the document stored under id.
func DeleteItem(ctx context.Context, c Container, id string) error {
	return c.Delete(ctx, id, PartitionKey(id))
}
