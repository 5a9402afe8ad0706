package ledger

import (
	"errors"
	"fmt"
)

// ErrChainInconsistent is matched by every *Inconsistency.
var ErrChainInconsistent = errors.New("ledger chain is inconsistent")

// Reason classifies a failed integrity check.
type Reason string

const (
	// ReasonMissingGenesis means the chain does not start with a well-formed genesis block.
	ReasonMissingGenesis Reason = "missing_genesis"

	// ReasonIndexGap means a block's index does not match its position.
	ReasonIndexGap Reason = "index_gap"

	// ReasonDigestMismatch means a block's stored digest differs from its recomputed digest.
	ReasonDigestMismatch Reason = "digest_mismatch"

	// ReasonBrokenLink means a block's previous digest differs from the
	// recomputed digest of the block before it.
	ReasonBrokenLink Reason = "broken_link"
)

// Inconsistency describes the first structural problem found in a chain.
// Ledger.Verify reduces it to a boolean.
type Inconsistency struct {
	Index  uint64
	Reason Reason
}

// Error implements error.
func (i *Inconsistency) Error() string {
	return fmt.Sprintf("block %d: %s", i.Index, i.Reason)
}

// Is makes errors.Is(err, ErrChainInconsistent) hold for any *Inconsistency.
func (i *Inconsistency) Is(target error) bool {
	return target == ErrChainInconsistent
}
