// Package ledgercache memoizes ledgers built from identical inputs.
//
// A build is identified by a key derived from the input fingerprint and the
// build parameters. Concurrent requests for the same key share a single
// build. Built ledgers are kept in memory and, when a SnapshotStorage is
// configured, persisted so other processes can restore them instead of
// rebuilding.
package ledgercache

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/gabapcia/amlchain/internal/ledger"
	"github.com/gabapcia/amlchain/internal/pkg/logger"
	"github.com/gabapcia/amlchain/internal/pkg/resilience/retry"

	"golang.org/x/sync/singleflight"
)

// ErrSnapshotNotFound is returned by SnapshotStorage.LoadSnapshot when no
// snapshot exists for a key.
var ErrSnapshotNotFound = errors.New("ledger snapshot not found")

// SnapshotStorage persists built chains.
type SnapshotStorage interface {
	SaveSnapshot(ctx context.Context, key string, chain []ledger.Block) error
	LoadSnapshot(ctx context.Context, key string) ([]ledger.Block, error)
}

// BuildFunc builds the ledger for a key on a cache miss.
type BuildFunc func(ctx context.Context) (*ledger.Ledger, error)

// Key identifies a build of the input with the given fingerprint.
func Key(fingerprint string, batchSize, maxRows int) string {
	return fmt.Sprintf("%s:%d:%d", fingerprint, batchSize, maxRows)
}

// Cache holds built ledgers. The zero value is not usable; call New.
type Cache struct {
	mu      sync.RWMutex
	ledgers map[string]*ledger.Ledger

	group singleflight.Group

	snapshots SnapshotStorage
	retry     retry.Retry
}

// Option configures a Cache.
type Option func(*Cache)

// WithSnapshotStorage adds a persistent tier behind the in-memory one.
func WithSnapshotStorage(s SnapshotStorage) Option {
	return func(c *Cache) {
		c.snapshots = s
	}
}

// WithRetry overrides the retry policy for snapshot I/O.
func WithRetry(r retry.Retry) Option {
	return func(c *Cache) {
		c.retry = r
	}
}

// New creates an empty Cache.
func New(opts ...Option) *Cache {
	c := &Cache{
		ledgers: make(map[string]*ledger.Ledger),
		retry: retry.New(
			retry.WithAttempts(3),
			retry.WithRetryIf(func(err error) bool {
				return !errors.Is(err, ErrSnapshotNotFound)
			}),
		),
	}
	for _, opt := range opts {
		opt(c)
	}

	return c
}

// GetOrBuild returns the ledger cached for key, building it with build when
// absent. The boolean reports whether the ledger was obtained without this
// call running build, so it is false for exactly one of several concurrent
// callers that share a fresh build.
//
// At most one build runs per key at any time; concurrent callers wait for it
// and share its result. Build errors are not cached.
func (c *Cache) GetOrBuild(ctx context.Context, key string, build BuildFunc) (*ledger.Ledger, bool, error) {
	if l, ok := c.get(key); ok {
		return l, true, nil
	}

	built := false
	v, err, _ := c.group.Do(key, func() (any, error) {
		if l, ok := c.get(key); ok {
			return l, nil
		}

		if l, ok := c.restore(ctx, key); ok {
			c.put(key, l)
			return l, nil
		}

		l, err := build(ctx)
		if err != nil {
			return nil, err
		}
		built = true

		c.put(key, l)
		c.save(ctx, key, l)
		return l, nil
	})
	if err != nil {
		return nil, false, err
	}

	return v.(*ledger.Ledger), !built, nil
}

// Len returns the number of ledgers held in memory.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.ledgers)
}

func (c *Cache) get(key string) (*ledger.Ledger, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	l, ok := c.ledgers[key]
	return l, ok
}

func (c *Cache) put(key string, l *ledger.Ledger) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.ledgers[key] = l
}

// restore loads and audits a stored snapshot. Any failure is treated as a
// miss.
func (c *Cache) restore(ctx context.Context, key string) (*ledger.Ledger, bool) {
	if c.snapshots == nil {
		return nil, false
	}

	var chain []ledger.Block
	err := c.retry.Execute(ctx, func() error {
		var err error
		chain, err = c.snapshots.LoadSnapshot(ctx, key)
		return err
	})
	if errors.Is(err, ErrSnapshotNotFound) {
		return nil, false
	}
	if err != nil {
		logger.Warn(ctx, "failed to load ledger snapshot", "key", key, "error", err)
		return nil, false
	}

	l, err := ledger.Restore(chain)
	if err != nil {
		logger.Warn(ctx, "discarding inconsistent ledger snapshot", "key", key, "error", err)
		return nil, false
	}

	return l, true
}

func (c *Cache) save(ctx context.Context, key string, l *ledger.Ledger) {
	if c.snapshots == nil {
		return
	}

	err := c.retry.Execute(ctx, func() error {
		return c.snapshots.SaveSnapshot(ctx, key, l.Blocks())
	})
	if err != nil {
		logger.Warn(ctx, "failed to save ledger snapshot", "key", key, "error", err)
	}
}
