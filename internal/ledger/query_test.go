package ledger

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchByAccount(t *testing.T) {
	l := New()
	l.Append([]Transaction{tx("A", "B", "10", false), tx("C", "D", "5", false)})
	l.Append([]Transaction{tx("B", "A", "7", true), tx("E", "E", "1", false)})

	t.Run("returns transactions in ingestion order for either side", func(t *testing.T) {
		got := l.SearchByAccount("A")

		require.Len(t, got, 2)
		assert.Equal(t, "B", got[0].Receiver)
		assert.Equal(t, "B", got[1].Sender)
	})

	t.Run("returns a self transfer once", func(t *testing.T) {
		assert.Len(t, l.SearchByAccount("E"), 1)
	})

	t.Run("returns an empty result for an unknown account", func(t *testing.T) {
		got := l.SearchByAccount("Z")

		assert.NotNil(t, got)
		assert.Empty(t, got)
	})

	t.Run("every result involves the account", func(t *testing.T) {
		for _, r := range l.SearchByAccount("B") {
			assert.True(t, r.Involves("B"))
		}
	})
}

func TestFilterByFlag(t *testing.T) {
	l := New()
	l.Append([]Transaction{tx("A", "B", "10", true), tx("C", "D", "5", false), tx("E", "F", "1", true)})

	flagged := l.FilterByFlag(true)
	normal := l.FilterByFlag(false)

	require.Len(t, flagged, 2)
	assert.Equal(t, "A", flagged[0].Sender)
	assert.Equal(t, "E", flagged[1].Sender)
	require.Len(t, normal, 1)
	assert.Equal(t, len(l.Transactions()), len(flagged)+len(normal))
}

func TestSortByAmount(t *testing.T) {
	l := New()
	l.Append([]Transaction{
		tx("A", "X", "5", false),
		tx("B", "X", "10", false),
		tx("C", "X", "5", false),
		tx("D", "X", "0.5", false),
	})

	t.Run("descending keeps ingestion order for ties", func(t *testing.T) {
		got := l.SortByAmount(true)

		senders := []string{got[0].Sender, got[1].Sender, got[2].Sender, got[3].Sender}
		assert.Equal(t, []string{"B", "A", "C", "D"}, senders)
	})

	t.Run("ascending keeps ingestion order for ties", func(t *testing.T) {
		got := l.SortByAmount(false)

		senders := []string{got[0].Sender, got[1].Sender, got[2].Sender, got[3].Sender}
		assert.Equal(t, []string{"D", "A", "C", "B"}, senders)
	})

	t.Run("does not reorder the ledger", func(t *testing.T) {
		l.SortByAmount(true)

		assert.Equal(t, "A", l.Transactions()[0].Sender)
	})
}

func TestSummary(t *testing.T) {
	t.Run("counts an empty ledger", func(t *testing.T) {
		assert.Equal(t, Summary{Blocks: 1}, New().Summary())
	})

	t.Run("counts transactions, blocks and accounts", func(t *testing.T) {
		l := New()
		l.Append([]Transaction{tx("A", "B", "10", true), tx("B", "C", "5", false)})
		l.Append([]Transaction{tx("C", "C", "1", false)})

		assert.Equal(t, Summary{
			Total:     3,
			Flagged:   1,
			Unflagged: 2,
			Blocks:    3,
			Accounts:  3,
		}, l.Summary())
	})
}

func TestTopAccountsByVolume(t *testing.T) {
	t.Run("ranks accounts by gross volume", func(t *testing.T) {
		l := New()
		l.Append([]Transaction{tx("A", "B", "10", false), tx("B", "C", "5", false)})

		got := l.TopAccountsByVolume(2)

		require.Len(t, got, 2)
		assert.Equal(t, "B", got[0].Account)
		assert.True(t, decimal.NewFromInt(15).Equal(got[0].Volume))
		assert.Equal(t, "A", got[1].Account)
		assert.True(t, decimal.NewFromInt(10).Equal(got[1].Volume))
	})

	t.Run("breaks ties by first appearance", func(t *testing.T) {
		l := New()
		l.Append([]Transaction{tx("A", "B", "10", false)})

		got := l.TopAccountsByVolume(10)

		require.Len(t, got, 2)
		assert.Equal(t, "A", got[0].Account)
		assert.Equal(t, "B", got[1].Account)
	})

	t.Run("counts a self transfer twice", func(t *testing.T) {
		l := New()
		l.Append([]Transaction{tx("A", "A", "4", false), tx("B", "C", "7", false)})

		got := l.TopAccountsByVolume(1)

		require.Len(t, got, 1)
		assert.Equal(t, "A", got[0].Account)
		assert.True(t, decimal.NewFromInt(8).Equal(got[0].Volume))
	})

	t.Run("returns an empty result for k <= 0", func(t *testing.T) {
		l := New()
		l.Append([]Transaction{tx("A", "B", "10", false)})

		assert.Empty(t, l.TopAccountsByVolume(0))
		assert.Empty(t, l.TopAccountsByVolume(-3))
	})

	t.Run("returns an empty result for an empty ledger", func(t *testing.T) {
		assert.Empty(t, New().TopAccountsByVolume(5))
	})
}
