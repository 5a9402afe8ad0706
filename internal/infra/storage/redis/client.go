// Package redis stores ledger snapshots in Redis.
package redis

import (
	"context"
	"time"

	redis "github.com/redis/go-redis/v9"
)

type client struct {
	conn        *redis.Client
	snapshotTTL time.Duration
}

// Option configures the client.
type Option func(*client)

// WithSnapshotTTL sets how long a snapshot is kept. Zero keeps it forever.
func WithSnapshotTTL(ttl time.Duration) Option {
	return func(c *client) {
		c.snapshotTTL = ttl
	}
}

func (c *client) Close() error {
	return c.conn.Close()
}

// NewClient connects to Redis and checks the connection with a PING.
func NewClient(ctx context.Context, addr, username, password string, db int, opts ...Option) (*client, error) {
	conn := redis.NewClient(&redis.Options{
		Addr:     addr,
		Username: username,
		Password: password,
		DB:       db,
	})

	if err := conn.Ping(ctx).Err(); err != nil {
		conn.Close()
		return nil, err
	}

	c := &client{
		conn:        conn,
		snapshotTTL: 24 * time.Hour,
	}
	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}
