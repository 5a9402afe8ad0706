package ledger

import (
	"slices"

	"github.com/gabapcia/amlchain/internal/pkg/types"

	"github.com/shopspring/decimal"
)

// Summary aggregates the ledger for display.
type Summary struct {
	Total     int `json:"total_transactions"`
	Flagged   int `json:"suspicious"`
	Unflagged int `json:"normal"`
	Blocks    int `json:"total_blocks"` // genesis included
	Accounts  int `json:"distinct_accounts"`
}

// AccountVolume is the gross amount that flowed through an account.
type AccountVolume struct {
	Account string          `json:"account"`
	Volume  decimal.Decimal `json:"volume"`
}

// SearchByAccount returns the transactions where id is the sender or the
// receiver, in ingestion order.
func (l *Ledger) SearchByAccount(id string) []Transaction {
	l.mu.RLock()
	defer l.mu.RUnlock()

	positions, ok := l.accounts.Lookup(id)
	if !ok {
		return []Transaction{}
	}

	result := make([]Transaction, len(positions))
	for i, pos := range positions {
		result[i] = l.transactions[pos]
	}
	return result
}

// FilterByFlag returns the transactions whose flag equals flagged, in
// ingestion order.
func (l *Ledger) FilterByFlag(flagged bool) []Transaction {
	l.mu.RLock()
	defer l.mu.RUnlock()

	result := make([]Transaction, 0)
	for _, tx := range l.transactions {
		if tx.Flagged == flagged {
			result = append(result, tx)
		}
	}
	return result
}

// SortByAmount returns every transaction ordered by amount. Equal amounts
// keep their ingestion order.
func (l *Ledger) SortByAmount(descending bool) []Transaction {
	result := l.Transactions()

	slices.SortStableFunc(result, func(a, b Transaction) int {
		if descending {
			return b.Amount.Cmp(a.Amount)
		}
		return a.Amount.Cmp(b.Amount)
	})
	return result
}

// Summary counts transactions by flag, blocks and distinct accounts.
func (l *Ledger) Summary() Summary {
	l.mu.RLock()
	defer l.mu.RUnlock()

	flagged := 0
	for _, tx := range l.transactions {
		if tx.Flagged {
			flagged++
		}
	}

	return Summary{
		Total:     len(l.transactions),
		Flagged:   flagged,
		Unflagged: len(l.transactions) - flagged,
		Blocks:    len(l.chain),
		Accounts:  l.accounts.Len(),
	}
}

// TopAccountsByVolume returns the k accounts with the highest gross volume.
//
// A transaction's amount counts toward both its sender's and its receiver's
// volume, so a self-transfer counts twice for the same account. Accounts
// with equal volume are ordered by first appearance. k <= 0 yields an empty
// result.
func (l *Ledger) TopAccountsByVolume(k int) []AccountVolume {
	if k <= 0 {
		return []AccountVolume{}
	}

	l.mu.RLock()
	volumes := types.NewDefaultMap[string](func() decimal.Decimal { return decimal.Zero })
	for _, tx := range l.transactions {
		volumes.Set(tx.Sender, volumes.Get(tx.Sender).Add(tx.Amount))
		volumes.Set(tx.Receiver, volumes.Get(tx.Receiver).Add(tx.Amount))
	}
	l.mu.RUnlock()

	ranking := make([]AccountVolume, 0, volumes.Len())
	for _, account := range volumes.Keys() {
		ranking = append(ranking, AccountVolume{Account: account, Volume: volumes.Get(account)})
	}

	slices.SortStableFunc(ranking, func(a, b AccountVolume) int {
		return b.Volume.Cmp(a.Volume)
	})

	return ranking[:min(k, len(ranking))]
}
