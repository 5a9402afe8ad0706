// Package cli exposes ledger builds and queries as commands.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/gabapcia/amlchain/internal/ledger"
	"github.com/gabapcia/amlchain/internal/ledgerproc"

	"github.com/urfave/cli/v3"
)

// ErrIntegrityCheckFailed is returned by the verify command when the chain
// does not verify.
var ErrIntegrityCheckFailed = errors.New("ledger integrity check failed")

// Defaults holds the flag values used when a flag is not given.
type Defaults struct {
	Input     string
	BatchSize int
	MaxRows   int
}

// Run builds the amlchain command tree and executes it with args, writing
// command output to w.
func Run(ctx context.Context, args []string, w io.Writer, svc ledgerproc.Service, d Defaults) error {
	app := &cli.Command{
		EnableShellCompletion: true,
		Name:                  "amlchain",
		Description:           "Builds a tamper-evident ledger from a transaction dataset and queries it.",
		Usage:                 "amlchain [command] [flags]",
		Writer:                w,
		Commands: []*cli.Command{
			buildCommand(svc, d),
			summaryCommand(svc, d),
			verifyCommand(svc, d),
			searchCommand(svc, d),
			flaggedCommand(svc, d),
			topAmountsCommand(svc, d),
			topAccountsCommand(svc, d),
			exploreCommand(svc, d),
		},
	}

	return app.Run(ctx, args)
}

// inputFlags are accepted by every command.
func inputFlags(d Defaults) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "input",
			Aliases:  []string{"i"},
			Usage:    "Dataset path or http(s) URL",
			Value:    d.Input,
			Required: d.Input == "",
		},
		&cli.IntFlag{
			Name:  "batch-size",
			Usage: "Transactions per block",
			Value: d.BatchSize,
		},
		&cli.IntFlag{
			Name:  "max-rows",
			Usage: "Rows to read from the dataset (0 reads every row)",
			Value: d.MaxRows,
		},
	}
}

func limitFlag(value int) *cli.IntFlag {
	return &cli.IntFlag{
		Name:  "limit",
		Usage: "Maximum number of entries to print",
		Value: value,
	}
}

func build(ctx context.Context, c *cli.Command, svc ledgerproc.Service) (ledgerproc.Result, error) {
	return svc.Build(ctx, ledgerproc.Request{
		Location:  c.String("input"),
		BatchSize: c.Int("batch-size"),
		MaxRows:   c.Int("max-rows"),
	})
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// writeTransactions prints up to limit transactions in canonical form.
func writeTransactions(w io.Writer, txs []ledger.Transaction, limit int) error {
	if len(txs) == 0 {
		_, err := fmt.Fprintln(w, "No transactions found.")
		return err
	}

	for _, tx := range txs[:min(max(limit, 0), len(txs))] {
		if _, err := fmt.Fprintln(w, tx.String()); err != nil {
			return err
		}
	}
	return nil
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}
