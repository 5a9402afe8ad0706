package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/gabapcia/amlchain/internal/ledger"
	"github.com/gabapcia/amlchain/internal/ledgercache"

	redis "github.com/redis/go-redis/v9"
)

const snapshotPrefix = "ledgercache"

var _ ledgercache.SnapshotStorage = new(client)

// snapshotKey returns the Redis key holding the snapshot for a cache key.
//
// Format: "ledgercache:snapshot:{key}"
func snapshotKey(key string) string {
	return fmt.Sprintf("%s:snapshot:%s", snapshotPrefix, key)
}

func encodeSnapshot(chain []ledger.Block) ([]byte, error) {
	return json.Marshal(chain)
}

func decodeSnapshot(data []byte) ([]ledger.Block, error) {
	var chain []ledger.Block
	if err := json.Unmarshal(data, &chain); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return chain, nil
}

// SaveSnapshot implements ledgercache.SnapshotStorage. The chain is stored as
// JSON and expires after the configured TTL.
func (c *client) SaveSnapshot(ctx context.Context, key string, chain []ledger.Block) error {
	data, err := encodeSnapshot(chain)
	if err != nil {
		return err
	}

	return c.conn.Set(ctx, snapshotKey(key), data, c.snapshotTTL).Err()
}

// LoadSnapshot implements ledgercache.SnapshotStorage.
func (c *client) LoadSnapshot(ctx context.Context, key string) ([]ledger.Block, error) {
	data, err := c.conn.Get(ctx, snapshotKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ledgercache.ErrSnapshotNotFound
	}
	if err != nil {
		return nil, err
	}

	return decodeSnapshot(data)
}
