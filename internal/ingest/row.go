package ingest

import "github.com/gabapcia/amlchain/internal/ledger"

// Row is a single input record keyed by column header.
type Row map[string]string

// Columns names the input columns that hold each transaction field.
type Columns struct {
	Sender      string
	Receiver    string
	Amount      string
	Currency    string
	Flagged     string
	PaymentType string
}

// DefaultColumns matches the headers of the SAML-D anti-money-laundering
// dataset.
var DefaultColumns = Columns{
	Sender:      "Sender_account",
	Receiver:    "Receiver_account",
	Amount:      "Amount",
	Currency:    "Payment_currency",
	Flagged:     "Is_laundering",
	PaymentType: "Payment_type",
}

// raw projects row onto the transaction fields. Missing columns yield empty
// values, which fail validation.
func (c Columns) raw(row Row) ledger.RawTransaction {
	return ledger.RawTransaction{
		Sender:      row[c.Sender],
		Receiver:    row[c.Receiver],
		Amount:      row[c.Amount],
		Currency:    row[c.Currency],
		Flagged:     row[c.Flagged],
		PaymentType: row[c.PaymentType],
	}
}

// RowResult is the outcome of parsing one row: either a Transaction or the
// reason the row was rejected.
type RowResult struct {
	Line        int // 1-based position of the row in the input
	Transaction ledger.Transaction
	Err         error
}

// OK reports whether the row produced a transaction.
func (r RowResult) OK() bool {
	return r.Err == nil
}

// ParseRow converts row into a RowResult using the given column mapping.
func ParseRow(line int, row Row, columns Columns) RowResult {
	tx, err := ledger.ParseTransaction(columns.raw(row))
	return RowResult{
		Line:        line,
		Transaction: tx,
		Err:         err,
	}
}
