package ledger

import (
	"testing"

	"github.com/gabapcia/amlchain/internal/pkg/validator"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRaw() RawTransaction {
	return RawTransaction{
		Sender:      "A1",
		Receiver:    "B2",
		Amount:      "125.50",
		Currency:    "UK pounds",
		Flagged:     "0",
		PaymentType: "Cash Deposit",
	}
}

func TestParseTransaction(t *testing.T) {
	t.Run("builds a transaction from valid fields", func(t *testing.T) {
		tx, err := ParseTransaction(validRaw())

		require.NoError(t, err)
		assert.Equal(t, "A1", tx.Sender)
		assert.Equal(t, "B2", tx.Receiver)
		assert.True(t, decimal.RequireFromString("125.5").Equal(tx.Amount))
		assert.Equal(t, "UK pounds", tx.Currency)
		assert.False(t, tx.Flagged)
		assert.Equal(t, "Cash Deposit", tx.PaymentType)
	})

	t.Run("trims surrounding whitespace", func(t *testing.T) {
		raw := validRaw()
		raw.Sender = "  A1 "
		raw.Flagged = " 1\t"

		tx, err := ParseTransaction(raw)

		require.NoError(t, err)
		assert.Equal(t, "A1", tx.Sender)
		assert.True(t, tx.Flagged)
	})

	t.Run("rejects a missing field", func(t *testing.T) {
		raw := validRaw()
		raw.Receiver = "   "

		_, err := ParseTransaction(raw)

		require.ErrorIs(t, err, validator.ErrValidationFailed)
		assert.Contains(t, err.Error(), "Receiver")
	})

	t.Run("rejects a non numeric amount", func(t *testing.T) {
		raw := validRaw()
		raw.Amount = "abc"

		_, err := ParseTransaction(raw)

		require.ErrorIs(t, err, validator.ErrValidationFailed)
		assert.Contains(t, err.Error(), "Amount")
	})

	t.Run("rejects a negative amount", func(t *testing.T) {
		raw := validRaw()
		raw.Amount = "-1"

		_, err := ParseTransaction(raw)

		require.ErrorIs(t, err, validator.ErrValidationFailed)
		assert.ErrorIs(t, err, ErrNegativeAmount)
	})

	t.Run("accepts a zero amount", func(t *testing.T) {
		raw := validRaw()
		raw.Amount = "0"

		tx, err := ParseTransaction(raw)

		require.NoError(t, err)
		assert.True(t, tx.Amount.IsZero())
	})

	t.Run("rejects amounts with an extreme exponent", func(t *testing.T) {
		for _, amount := range []string{"1e100000000", "1e-100000000", "1e39", "0.0000000000000000001"} {
			raw := validRaw()
			raw.Amount = amount

			_, err := ParseTransaction(raw)

			require.ErrorIs(t, err, validator.ErrValidationFailed, amount)
			assert.ErrorIs(t, err, ErrAmountOutOfRange, amount)
		}
	})

	t.Run("accepts amounts at the range limits", func(t *testing.T) {
		for _, amount := range []string{"99999999999999999999999999999999999999", "0.000000000000000001", "1e37"} {
			raw := validRaw()
			raw.Amount = amount

			_, err := ParseTransaction(raw)

			assert.NoError(t, err, amount)
		}
	})

	t.Run("rejects fields containing canonical separators", func(t *testing.T) {
		cases := map[string]func(*RawTransaction){
			"Sender":      func(r *RawTransaction) { r.Sender = "A→B" },
			"Receiver":    func(r *RawTransaction) { r.Receiver = "B|C" },
			"Currency":    func(r *RawTransaction) { r.Currency = "USD | Wire" },
			"PaymentType": func(r *RawTransaction) { r.PaymentType = "Cash | 1" },
		}

		for field, mutate := range cases {
			raw := validRaw()
			mutate(&raw)

			_, err := ParseTransaction(raw)

			require.ErrorIs(t, err, validator.ErrValidationFailed, field)
			assert.Contains(t, err.Error(), field)
		}
	})

	t.Run("rejects both sides of a field swap that would render identically", func(t *testing.T) {
		first := validRaw()
		first.Currency = "USD | Wire"
		first.PaymentType = "Card"

		second := validRaw()
		second.Currency = "USD"
		second.PaymentType = "Wire | Card"

		_, err1 := ParseTransaction(first)
		_, err2 := ParseTransaction(second)

		assert.Error(t, err1)
		assert.Error(t, err2)
	})

	t.Run("rejects a flag that is not a truth value", func(t *testing.T) {
		raw := validRaw()
		raw.Flagged = "maybe"

		_, err := ParseTransaction(raw)

		require.ErrorIs(t, err, validator.ErrValidationFailed)
		assert.ErrorIs(t, err, ErrNotTruthValue)
	})
}

func TestParseTruthValue(t *testing.T) {
	cases := map[string]bool{
		"1": true, "0": false, "true": true, "False": false,
		"yes": true, "NO": false, "y": true, "n": false,
		"1.0": true, "0.0": false, "2": true,
	}

	for in, want := range cases {
		t.Run(in, func(t *testing.T) {
			got, err := parseTruthValue(in)

			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}

	for _, in := range []string{"maybe", "0.5", "NaN", "Inf", ""} {
		t.Run("rejects "+in, func(t *testing.T) {
			_, err := parseTruthValue(in)

			assert.ErrorIs(t, err, ErrNotTruthValue)
		})
	}
}

func TestTransactionString(t *testing.T) {
	t.Run("renders the canonical form of a normal transaction", func(t *testing.T) {
		tx := Transaction{
			Sender:      "A",
			Receiver:    "B",
			Amount:      decimal.RequireFromString("10.25"),
			Currency:    "USD",
			PaymentType: "Wire",
		}

		assert.Equal(t, "A → B | 10.25 USD | Wire | NORMAL", tx.String())
	})

	t.Run("renders the canonical form of a flagged transaction", func(t *testing.T) {
		tx := Transaction{
			Sender:      "A",
			Receiver:    "B",
			Amount:      decimal.NewFromInt(7),
			Currency:    "USD",
			Flagged:     true,
			PaymentType: "Cash",
		}

		assert.Equal(t, "A → B | 7 USD | Cash | SUSPICIOUS", tx.String())
	})
}

func TestTransactionInvolves(t *testing.T) {
	tx := Transaction{Sender: "A", Receiver: "B"}

	assert.True(t, tx.Involves("A"))
	assert.True(t, tx.Involves("B"))
	assert.False(t, tx.Involves("C"))
}
