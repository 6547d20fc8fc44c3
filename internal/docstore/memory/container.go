package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"expenses/pkg/platform/sentinel"
)

type key struct {
	partition string
	id        string
}

type entry struct {
	seq  uint64
	body []byte
}

// Container is an in-process document container. Listing returns documents in
// creation order.
type Container struct {
	mu      sync.RWMutex
	entries map[key]entry
	nextSeq uint64
}

// New constructs an empty container.
func New() *Container {
	return &Container{entries: make(map[key]entry)}
}

func (c *Container) ListAll(ctx context.Context) ([][]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	entries := make([]entry, 0, len(c.entries))
	for _, e := range c.entries {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].seq < entries[j].seq })

	bodies := make([][]byte, 0, len(entries))
	for _, e := range entries {
		bodies = append(bodies, clone(e.body))
	}
	return bodies, nil
}

func (c *Container) Read(ctx context.Context, id, partition string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key{partition: partition, id: id}]
	if !ok {
		return nil, fmt.Errorf("document %s: %w", id, sentinel.ErrNotFound)
	}
	return clone(e.body), nil
}

func (c *Container) Create(ctx context.Context, id, partition string, body []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	k := key{partition: partition, id: id}
	if _, ok := c.entries[k]; ok {
		return fmt.Errorf("document %s: %w", id, sentinel.ErrConflict)
	}
	c.nextSeq++
	c.entries[k] = entry{seq: c.nextSeq, body: clone(body)}
	return nil
}

func (c *Container) Upsert(ctx context.Context, id, partition string, body []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	k := key{partition: partition, id: id}
	e, ok := c.entries[k]
	if !ok {
		c.nextSeq++
		e.seq = c.nextSeq
	}
	e.body = clone(body)
	c.entries[k] = e
	return nil
}

func (c *Container) Delete(ctx context.Context, id, partition string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, key{partition: partition, id: id})
	return nil
}

// Len returns the number of stored documents.
func (c *Container) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func clone(b []byte) []byte {
	return append([]byte(nil), b...)
}
