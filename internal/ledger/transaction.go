package ledger

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/gabapcia/amlchain/internal/pkg/validator"

	"github.com/shopspring/decimal"
)

const (
	// StatusSuspicious marks a flagged transaction in its canonical form.
	StatusSuspicious = "SUSPICIOUS"

	// StatusNormal marks an unflagged transaction in its canonical form.
	StatusNormal = "NORMAL"

	// MaxAmountScale is the largest number of fractional digits an amount may carry.
	MaxAmountScale = 18

	// MaxAmountIntegerDigits is the largest number of integer digits an amount may carry.
	MaxAmountIntegerDigits = 38
)

var (
	// ErrNegativeAmount is wrapped when a transaction amount is below zero.
	ErrNegativeAmount = errors.New("amount must not be negative")

	// ErrNotTruthValue is wrapped when the flag field cannot be read as a boolean.
	ErrNotTruthValue = errors.New("value is not a truth value")

	// ErrAmountOutOfRange is wrapped when an amount has too many integer or
	// fractional digits.
	ErrAmountOutOfRange = errors.New("amount is out of range")
)

// Transaction is a single transfer between two accounts.
//
// Transactions carry no identity of their own: two transactions with equal
// fields are distinct ledger entries. The ledger never mutates a Transaction
// after construction.
type Transaction struct {
	Sender      string          `json:"sender"`
	Receiver    string          `json:"receiver"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
	Flagged     bool            `json:"flagged"` // externally supplied suspicious-activity label
	PaymentType string          `json:"payment_type"`
}

// RawTransaction holds the textual fields of a transaction as read from the
// input, before any coercion.
//
// Textual fields must not contain the separators of the canonical form.
type RawTransaction struct {
	Sender      string `validate:"required,excludesall=0x7C→"`
	Receiver    string `validate:"required,excludesall=0x7C→"`
	Amount      string `validate:"required"`
	Currency    string `validate:"required,excludesall=0x7C→"`
	Flagged     string `validate:"required"`
	PaymentType string `validate:"required,excludesall=0x7C→"`
}

// trimmed returns a copy of raw with surrounding whitespace removed from
// every field.
func (raw RawTransaction) trimmed() RawTransaction {
	return RawTransaction{
		Sender:      strings.TrimSpace(raw.Sender),
		Receiver:    strings.TrimSpace(raw.Receiver),
		Amount:      strings.TrimSpace(raw.Amount),
		Currency:    strings.TrimSpace(raw.Currency),
		Flagged:     strings.TrimSpace(raw.Flagged),
		PaymentType: strings.TrimSpace(raw.PaymentType),
	}
}

// ParseTransaction builds a Transaction from raw field values.
//
// Every field is required. Amount must be a non-negative decimal number with
// at most MaxAmountIntegerDigits integer digits and MaxAmountScale fractional
// digits. Flagged must be a truth value (see parseTruthValue). Any failure is
// reported as an error matching validator.ErrValidationFailed.
func ParseTransaction(raw RawTransaction) (Transaction, error) {
	raw = raw.trimmed()
	if err := validator.Validate(raw); err != nil {
		return Transaction{}, err
	}

	amount, err := decimal.NewFromString(raw.Amount)
	if err != nil {
		return Transaction{}, validator.FieldError("Amount", raw.Amount, err)
	}

	if amount.IsNegative() {
		return Transaction{}, validator.FieldError("Amount", raw.Amount, ErrNegativeAmount)
	}

	if !amountInRange(amount) {
		return Transaction{}, validator.FieldError("Amount", raw.Amount, ErrAmountOutOfRange)
	}

	flagged, err := parseTruthValue(raw.Flagged)
	if err != nil {
		return Transaction{}, validator.FieldError("Flagged", raw.Flagged, err)
	}

	return Transaction{
		Sender:      raw.Sender,
		Receiver:    raw.Receiver,
		Amount:      amount,
		Currency:    raw.Currency,
		Flagged:     flagged,
		PaymentType: raw.PaymentType,
	}, nil
}

// amountInRange reads only the coefficient and exponent, so it stays cheap for
// inputs such as 1e100000000.
func amountInRange(d decimal.Decimal) bool {
	exp := int64(d.Exponent())
	if exp < -MaxAmountScale {
		return false
	}

	return int64(d.NumDigits())+exp <= MaxAmountIntegerDigits
}

// parseTruthValue accepts the strconv.ParseBool forms, yes/no, y/n and
// integral numbers (zero is false, anything else is true).
func parseTruthValue(s string) (bool, error) {
	if b, err := strconv.ParseBool(s); err == nil {
		return b, nil
	}

	switch strings.ToLower(s) {
	case "yes", "y":
		return true, nil
	case "no", "n":
		return false, nil
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return false, ErrNotTruthValue
	}

	return f != 0, nil
}

// Status returns the status marker used in the canonical form.
func (t Transaction) Status() string {
	if t.Flagged {
		return StatusSuspicious
	}
	return StatusNormal
}

// String returns the canonical form of the transaction:
//
//	sender → receiver | amount currency | payment_type | STATUS
//
// The field order and the exact decimal rendering of the amount are part of
// the block digest and must not change.
func (t Transaction) String() string {
	return fmt.Sprintf("%s → %s | %s %s | %s | %s",
		t.Sender,
		t.Receiver,
		t.Amount.String(),
		t.Currency,
		t.PaymentType,
		t.Status(),
	)
}

// Involves reports whether account is the sender or the receiver.
func (t Transaction) Involves(account string) bool {
	return t.Sender == account || t.Receiver == account
}
