// Package redis stores documents in Redis. Each partition is a hash keyed by
// document id; a sorted set per container records creation order for listing.
// Writes touch the hash and the index in one script so neither can exist
// without the other. All keys of a container share a hash tag, which keeps
// them in one cluster slot.
package redis

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"

	"github.com/redis/go-redis/v9"

	"expenses/pkg/platform/sentinel"
)

const (
	keyPrefix       = "docs:"
	memberSeparator = "\x1f"
)

// KEYS: partition hash, index zset, sequence. ARGV: id, body, index member.
var (
	createScript = redis.NewScript(`
if redis.call('HSETNX', KEYS[1], ARGV[1], ARGV[2]) == 0 then
	return 0
end
redis.call('ZADD', KEYS[2], 'NX', redis.call('INCR', KEYS[3]), ARGV[3])
return 1
`)

	upsertScript = redis.NewScript(`
redis.call('HSET', KEYS[1], ARGV[1], ARGV[2])
if not redis.call('ZSCORE', KEYS[2], ARGV[3]) then
	redis.call('ZADD', KEYS[2], redis.call('INCR', KEYS[3]), ARGV[3])
end
return 1
`)
)

// Container is one logical container in a Redis database.
type Container struct {
	client redis.UniversalClient
	name   string
}

// New constructs a container named name. The client's lifecycle is managed by
// the caller.
func New(client redis.UniversalClient, name string) *Container {
	return &Container{client: client, name: name}
}

func (c *Container) tag() string {
	return keyPrefix + "{" + c.name + "}"
}

func (c *Container) partitionKey(partition string) string {
	return c.tag() + ":p:" + partition
}

func (c *Container) indexKey() string {
	return c.tag() + ":index"
}

func (c *Container) seqKey() string {
	return c.tag() + ":seq"
}

func (c *Container) writeKeys(partition string) []string {
	return []string{c.partitionKey(partition), c.indexKey(), c.seqKey()}
}

func member(id, partition string) string {
	return partition + memberSeparator + id
}

func splitMember(m string) (id, partition string, ok bool) {
	partition, id, ok = strings.Cut(m, memberSeparator)
	return id, partition, ok
}

func (c *Container) ListAll(ctx context.Context) ([][]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	members, err := c.client.ZRange(ctx, c.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", translate(err))
	}
	if len(members) == 0 {
		return nil, nil
	}

	pipe := c.client.Pipeline()
	cmds := make([]*redis.StringCmd, 0, len(members))
	for _, m := range members {
		id, partition, ok := splitMember(m)
		if !ok {
			continue
		}
		cmds = append(cmds, pipe.HGet(ctx, c.partitionKey(partition), id))
	}
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("list documents: %w", translate(err))
	}

	bodies := make([][]byte, 0, len(cmds))
	for _, cmd := range cmds {
		body, err := cmd.Bytes()
		if errors.Is(err, redis.Nil) {
			// deleted between the index read and the fetch
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("list documents: %w", translate(err))
		}
		bodies = append(bodies, body)
	}
	return bodies, nil
}

func (c *Container) Read(ctx context.Context, id, partition string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	body, err := c.client.HGet(ctx, c.partitionKey(partition), id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("document %s: %w", id, sentinel.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("read document %s: %w", id, translate(err))
	}
	return body, nil
}

func (c *Container) Create(ctx context.Context, id, partition string, body []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	created, err := createScript.Run(ctx, c.client, c.writeKeys(partition), id, body, member(id, partition)).Int()
	if err != nil {
		return fmt.Errorf("create document %s: %w", id, translate(err))
	}
	if created == 0 {
		return fmt.Errorf("document %s: %w", id, sentinel.ErrConflict)
	}
	return nil
}

// Upsert replaces the body. A document seen for the first time is appended to
// the listing order; existing ones keep their position.
func (c *Container) Upsert(ctx context.Context, id, partition string, body []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := upsertScript.Run(ctx, c.client, c.writeKeys(partition), id, body, member(id, partition)).Err()
	if err != nil {
		return fmt.Errorf("upsert document %s: %w", id, translate(err))
	}
	return nil
}

func (c *Container) Delete(ctx context.Context, id, partition string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HDel(ctx, c.partitionKey(partition), id)
		pipe.ZRem(ctx, c.indexKey(), member(id, partition))
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete document %s: %w", id, translate(err))
	}
	return nil
}

// Health pings Redis.
func (c *Container) Health(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return translate(err)
	}
	return nil
}

func translate(err error) error {
	if err == nil {
		return nil
	}
	var netErr net.Error
	if errors.Is(err, redis.ErrClosed) || errors.Is(err, io.EOF) || errors.As(err, &netErr) {
		return errors.Join(sentinel.ErrUnavailable, err)
	}
	return err
}
