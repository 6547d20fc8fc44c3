// Package bolt stores documents in an embedded BoltDB file. The container is a
// top-level bucket and every partition is a nested bucket inside it, keyed by
// document id.
package bolt

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	bolt "github.com/boltdb/bolt"

	"expenses/pkg/platform/sentinel"
)

// orderBucket maps a creation sequence number to the partition holding it, so
// listing follows creation order rather than key order.
var orderBucket = []byte("\x00order")

// Container is a BoltDB-backed document container.
type Container struct {
	db     *bolt.DB
	bucket []byte
	owned  bool
}

// Open opens (or creates) the database file at path and ensures the container
// bucket exists. Close releases the file lock.
func Open(path, name string) (*Container, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, errors.Join(sentinel.ErrUnavailable, fmt.Errorf("open bolt database: %w", err))
	}
	c, err := New(db, name)
	if err != nil {
		db.Close()
		return nil, err
	}
	c.owned = true
	return c, nil
}

// New wraps an already open database.
func New(db *bolt.DB, name string) (*Container, error) {
	c := &Container{db: db, bucket: []byte(name)}
	err := db.Update(func(tx *bolt.Tx) error {
		root, err := tx.CreateBucketIfNotExists(c.bucket)
		if err != nil {
			return err
		}
		_, err = root.CreateBucketIfNotExists(orderBucket)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("create bucket %s: %w", name, err)
	}
	return c, nil
}

// Close closes the database if Open created it.
func (c *Container) Close() error {
	if !c.owned {
		return nil
	}
	return c.db.Close()
}

func (c *Container) ListAll(ctx context.Context) ([][]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var bodies [][]byte
	err := c.db.View(func(tx *bolt.Tx) error {
		root := tx.Bucket(c.bucket)
		return root.Bucket(orderBucket).ForEach(func(_, ref []byte) error {
			partition, id := decodeRef(ref)
			if partition == nil {
				return nil
			}
			p := root.Bucket(partition)
			if p == nil {
				return nil
			}
			if v := p.Get(id); v != nil {
				bodies = append(bodies, append([]byte(nil), v...))
			}
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return bodies, nil
}

func (c *Container) Read(ctx context.Context, id, partition string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var body []byte
	err := c.db.View(func(tx *bolt.Tx) error {
		p := tx.Bucket(c.bucket).Bucket([]byte(partition))
		if p == nil {
			return sentinel.ErrNotFound
		}
		v := p.Get([]byte(id))
		if v == nil {
			return sentinel.ErrNotFound
		}
		// values are only valid for the life of the transaction
		body = append([]byte(nil), v...)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("document %s: %w", id, err)
	}
	return body, nil
}

func (c *Container) Create(ctx context.Context, id, partition string, body []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := c.db.Update(func(tx *bolt.Tx) error {
		root := tx.Bucket(c.bucket)
		p, err := root.CreateBucketIfNotExists([]byte(partition))
		if err != nil {
			return err
		}
		if p.Get([]byte(id)) != nil {
			return sentinel.ErrConflict
		}
		if err := p.Put([]byte(id), body); err != nil {
			return err
		}
		return appendOrder(root, partition, id)
	})
	if err != nil {
		return fmt.Errorf("create document %s: %w", id, err)
	}
	return nil
}

func (c *Container) Upsert(ctx context.Context, id, partition string, body []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := c.db.Update(func(tx *bolt.Tx) error {
		root := tx.Bucket(c.bucket)
		p, err := root.CreateBucketIfNotExists([]byte(partition))
		if err != nil {
			return err
		}
		existed := p.Get([]byte(id)) != nil
		if err := p.Put([]byte(id), body); err != nil {
			return err
		}
		if existed {
			return nil
		}
		return appendOrder(root, partition, id)
	})
	if err != nil {
		return fmt.Errorf("upsert document %s: %w", id, err)
	}
	return nil
}

// Delete removes the document and its listing entry. The partition bucket is
// dropped once it is empty.
func (c *Container) Delete(ctx context.Context, id, partition string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := c.db.Update(func(tx *bolt.Tx) error {
		root := tx.Bucket(c.bucket)
		p := root.Bucket([]byte(partition))
		if p == nil {
			return nil
		}
		if err := p.Delete([]byte(id)); err != nil {
			return err
		}
		if err := removeOrder(root, partition, id); err != nil {
			return err
		}
		if k, _ := p.Cursor().First(); k == nil {
			return root.DeleteBucket([]byte(partition))
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete document %s: %w", id, err)
	}
	return nil
}

func appendOrder(root *bolt.Bucket, partition, id string) error {
	order := root.Bucket(orderBucket)
	seq, err := order.NextSequence()
	if err != nil {
		return err
	}
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, seq)
	return order.Put(key, encodeRef(partition, id))
}

func removeOrder(root *bolt.Bucket, partition, id string) error {
	order := root.Bucket(orderBucket)
	want := string(encodeRef(partition, id))
	cur := order.Cursor()
	for k, v := cur.First(); k != nil; k, v = cur.Next() {
		if string(v) == want {
			return cur.Delete()
		}
	}
	return nil
}

// encodeRef packs partition and id as a length-prefixed pair.
func encodeRef(partition, id string) []byte {
	ref := make([]byte, 4, 4+len(partition)+len(id))
	binary.BigEndian.PutUint32(ref, uint32(len(partition)))
	ref = append(ref, partition...)
	return append(ref, id...)
}

func decodeRef(ref []byte) (partition, id []byte) {
	if len(ref) < 4 {
		return nil, nil
	}
	n := binary.BigEndian.Uint32(ref)
	if int(n) > len(ref)-4 {
		return nil, nil
	}
	return ref[4 : 4+n], ref[4+n:]
}
