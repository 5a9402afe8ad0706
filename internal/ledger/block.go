package ledger

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"strconv"
	"time"
)

// GenesisPreviousDigest is the previous-digest sentinel carried by the
// genesis block.
const GenesisPreviousDigest = "0"

// Block is an ordered batch of transactions linked to its predecessor by the
// predecessor's digest.
type Block struct {
	Index          uint64        `json:"index"`
	Timestamp      time.Time     `json:"timestamp"`
	Transactions   []Transaction `json:"transactions"`
	PreviousDigest string        `json:"previous_digest"`
	Digest         string        `json:"digest"`
}

// newBlock seals a block: the timestamp is normalised to UTC without a
// monotonic reading so its text form survives serialization, and the digest
// is computed from the final field values.
func newBlock(index uint64, at time.Time, txs []Transaction, previousDigest string) Block {
	b := Block{
		Index:          index,
		Timestamp:      at.UTC().Round(0),
		Transactions:   txs,
		PreviousDigest: previousDigest,
	}
	b.Digest = b.ComputeDigest()
	return b
}

// ComputeDigest recomputes the block digest from its current fields: the
// lowercase hex SHA-256 of index, RFC 3339 timestamp, the canonical form of
// every transaction in order, and the previous digest, concatenated.
//
// The stored Digest field is not an input, so comparing the two detects any
// change made after the block was sealed.
func (b Block) ComputeDigest() string {
	h := sha256.New()

	io.WriteString(h, strconv.FormatUint(b.Index, 10))
	io.WriteString(h, b.Timestamp.UTC().Format(time.RFC3339Nano))
	for _, tx := range b.Transactions {
		io.WriteString(h, tx.String())
	}
	io.WriteString(h, b.PreviousDigest)

	return hex.EncodeToString(h.Sum(nil))
}

// IsGenesis reports whether b sits at the root of the chain.
func (b Block) IsGenesis() bool {
	return b.Index == 0
}

// String renders a one-line header for the block with abbreviated digests.
func (b Block) String() string {
	return fmt.Sprintf("Block #%d | Hash: %s... | Prev: %s...",
		b.Index,
		ShortDigest(b.Digest, 10),
		ShortDigest(b.PreviousDigest, 10),
	)
}

// clone returns a copy of b that shares no memory with it.
func (b Block) clone() Block {
	b.Transactions = append([]Transaction(nil), b.Transactions...)
	return b
}

// ShortDigest returns the first n characters of digest, or digest itself
// when shorter.
func ShortDigest(digest string, n int) string {
	if len(digest) <= n {
		return digest
	}
	return digest[:n]
}
