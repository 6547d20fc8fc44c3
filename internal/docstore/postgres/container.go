// Package postgres stores documents as JSONB rows in a single PostgreSQL table
// shared by every container.
package postgres

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"

	"github.com/lib/pq"

	"expenses/pkg/platform/sentinel"
)

const schema = `
CREATE TABLE IF NOT EXISTS documents (
	container     TEXT        NOT NULL,
	partition_key TEXT        NOT NULL,
	id            TEXT        NOT NULL,
	body          JSONB       NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (container, partition_key, id)
)`

// Container is one logical container inside the documents table.
type Container struct {
	db   *sql.DB
	name string
}

// New constructs a container named name over db. Call EnsureSchema once
// before first use.
func New(db *sql.DB, name string) *Container {
	return &Container{db: db, name: name}
}

// EnsureSchema creates the documents table if it does not exist.
func (c *Container) EnsureSchema(ctx context.Context) error {
	if _, err := c.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("ensure documents schema: %w", translate(err))
	}
	return nil
}

func (c *Container) ListAll(ctx context.Context) ([][]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rows, err := c.db.QueryContext(ctx,
		`SELECT body FROM documents WHERE container = $1 ORDER BY created_at, id`, c.name)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", translate(err))
	}
	defer rows.Close()

	var bodies [][]byte
	for rows.Next() {
		var body []byte
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		bodies = append(bodies, body)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", translate(err))
	}
	return bodies, nil
}

func (c *Container) Read(ctx context.Context, id, partition string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var body []byte
	err := c.db.QueryRowContext(ctx,
		`SELECT body FROM documents WHERE container = $1 AND partition_key = $2 AND id = $3`,
		c.name, partition, id).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
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
	res, err := c.db.ExecContext(ctx,
		`INSERT INTO documents (container, partition_key, id, body)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (container, partition_key, id) DO NOTHING`,
		c.name, partition, id, body)
	if err != nil {
		return fmt.Errorf("create document %s: %w", id, translate(err))
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("create document %s: %w", id, err)
	}
	if affected == 0 {
		return fmt.Errorf("document %s: %w", id, sentinel.ErrConflict)
	}
	return nil
}

func (c *Container) Upsert(ctx context.Context, id, partition string, body []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := c.db.ExecContext(ctx,
		`INSERT INTO documents (container, partition_key, id, body)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (container, partition_key, id)
		 DO UPDATE SET body = EXCLUDED.body, updated_at = now()`,
		c.name, partition, id, body)
	if err != nil {
		return fmt.Errorf("upsert document %s: %w", id, translate(err))
	}
	return nil
}

func (c *Container) Delete(ctx context.Context, id, partition string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := c.db.ExecContext(ctx,
		`DELETE FROM documents WHERE container = $1 AND partition_key = $2 AND id = $3`,
		c.name, partition, id)
	if err != nil {
		return fmt.Errorf("delete document %s: %w", id, translate(err))
	}
	return nil
}

// Health pings the database.
func (c *Container) Health(ctx context.Context) error {
	if err := c.db.PingContext(ctx); err != nil {
		return translate(err)
	}
	return nil
}

// queryCanceled is what the server reports when lib/pq cancels a statement
// because its context was done.
const queryCanceled pq.ErrorCode = "57014"

// translate maps connectivity failures onto sentinel.ErrUnavailable and leaves
// everything else untouched.
func translate(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		if pqErr.Code == queryCanceled {
			return err
		}
		switch pqErr.Code.Class() {
		case "08", "57":
			return errors.Join(sentinel.ErrUnavailable, err)
		case "23":
			if pqErr.Code == "23505" {
				return errors.Join(sentinel.ErrConflict, err)
			}
		}
		return err
	}
	var netErr net.Error
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) || errors.As(err, &netErr) {
		return errors.Join(sentinel.ErrUnavailable, err)
	}
	return err
}
