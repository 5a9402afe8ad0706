// Package ledger implements an append-only, tamper-evident transaction
// ledger.
//
// Transactions are appended in batches; each batch becomes a Block whose
// digest covers its contents and the digest of the previous block, starting
// from a fixed genesis block. Verify recomputes every digest, so any change
// made to a sealed block is detected.
//
// A Ledger is safe for concurrent use: Append takes an exclusive lock and all
// read operations share a read lock, so readers never observe a block that
// is only partially appended.
package ledger

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gabapcia/amlchain/internal/pkg/types"
)

// ErrBlockNotFound is returned by Block when the index is outside the chain.
var ErrBlockNotFound = errors.New("block not found")

// Ledger owns the chain of blocks and the indexes derived from it.
type Ledger struct {
	mu    sync.RWMutex
	clock func() time.Time

	chain        []Block
	transactions []Transaction

	// accounts maps an account to the positions in transactions where it
	// appears as sender or receiver, in ingestion order.
	accounts types.DefaultMap[string, []int]
}

// config holds construction options for a Ledger.
type config struct {
	clock func() time.Time
}

// Option configures a Ledger.
type Option func(*config)

// WithClock overrides the time source used to stamp new blocks.
func WithClock(clock func() time.Time) Option {
	return func(c *config) {
		c.clock = clock
	}
}

// New creates a ledger holding only the genesis block.
func New(opts ...Option) *Ledger {
	cfg := config{clock: time.Now}
	for _, opt := range opts {
		opt(&cfg)
	}

	l := newEmpty(cfg.clock)
	l.chain = append(l.chain, newBlock(0, cfg.clock(), nil, GenesisPreviousDigest))
	return l
}

func newEmpty(clock func() time.Time) *Ledger {
	return &Ledger{
		clock:    clock,
		accounts: types.NewDefaultMap[string](func() []int { return nil }),
	}
}

// Append seals batch into a new block at the end of the chain and returns it.
//
// An empty batch is a no-op and returns false. Append is not idempotent:
// appending the same batch twice produces two blocks.
func (l *Ledger) Append(batch []Transaction) (Block, bool) {
	if len(batch) == 0 {
		return Block{}, false
	}

	txs := append([]Transaction(nil), batch...)

	l.mu.Lock()
	defer l.mu.Unlock()

	tip := l.chain[len(l.chain)-1]
	block := newBlock(uint64(len(l.chain)), l.clock(), txs, tip.Digest)

	l.chain = append(l.chain, block)
	l.index(txs)

	return block.clone(), true
}

// index extends the flat transaction list and the account index. Callers
// must hold the write lock.
func (l *Ledger) index(txs []Transaction) {
	for _, tx := range txs {
		pos := len(l.transactions)
		l.transactions = append(l.transactions, tx)

		l.accounts.Set(tx.Sender, append(l.accounts.Get(tx.Sender), pos))
		if tx.Receiver != tx.Sender {
			l.accounts.Set(tx.Receiver, append(l.accounts.Get(tx.Receiver), pos))
		}
	}
}

// Verify reports whether every block's digest recomputes from its fields and
// every block links to the recomputed digest of its predecessor.
func (l *Ledger) Verify() bool {
	return l.Audit() == nil
}

// Audit walks the chain from index 1 and returns the first inconsistency
// found, or nil when the chain is intact.
func (l *Ledger) Audit() *Inconsistency {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return audit(l.chain)
}

// audit implements Audit over an arbitrary chain. The walk is sequential:
// each check depends on the digest recomputed for the previous block.
func audit(chain []Block) *Inconsistency {
	if len(chain) == 0 {
		return &Inconsistency{Index: 0, Reason: ReasonMissingGenesis}
	}

	if g := chain[0]; !g.IsGenesis() || g.PreviousDigest != GenesisPreviousDigest || len(g.Transactions) != 0 {
		return &Inconsistency{Index: 0, Reason: ReasonMissingGenesis}
	}

	previous := chain[0].ComputeDigest()
	for i := 1; i < len(chain); i++ {
		curr := chain[i]

		if curr.Index != uint64(i) {
			return &Inconsistency{Index: uint64(i), Reason: ReasonIndexGap}
		}

		digest := curr.ComputeDigest()
		if digest != curr.Digest {
			return &Inconsistency{Index: curr.Index, Reason: ReasonDigestMismatch}
		}

		if curr.PreviousDigest != previous {
			return &Inconsistency{Index: curr.Index, Reason: ReasonBrokenLink}
		}

		previous = digest
	}

	return nil
}

// Restore rebuilds a ledger from a previously built chain, such as a stored
// snapshot. The chain is audited first and rejected with an *Inconsistency
// when it is not intact.
func Restore(chain []Block, opts ...Option) (*Ledger, error) {
	if inc := audit(chain); inc != nil {
		return nil, inc
	}

	cfg := config{clock: time.Now}
	for _, opt := range opts {
		opt(&cfg)
	}

	l := newEmpty(cfg.clock)
	for _, b := range chain {
		b = b.clone()
		b.Timestamp = b.Timestamp.UTC()

		l.chain = append(l.chain, b)
		l.index(b.Transactions)
	}

	return l, nil
}

// Len returns the number of blocks, genesis included.
func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return len(l.chain)
}

// Block returns a copy of the block at index i.
func (l *Ledger) Block(i int) (Block, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if i < 0 || i >= len(l.chain) {
		return Block{}, fmt.Errorf("%w: index %d", ErrBlockNotFound, i)
	}

	return l.chain[i].clone(), nil
}

// Blocks returns a copy of the whole chain.
func (l *Ledger) Blocks() []Block {
	l.mu.RLock()
	defer l.mu.RUnlock()

	blocks := make([]Block, len(l.chain))
	for i, b := range l.chain {
		blocks[i] = b.clone()
	}
	return blocks
}

// Transactions returns every transaction in ingestion order.
func (l *Ledger) Transactions() []Transaction {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return append([]Transaction(nil), l.transactions...)
}

// Tip returns the digest of the last block.
func (l *Ledger) Tip() string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.chain[len(l.chain)-1].Digest
}
