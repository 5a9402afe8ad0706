package cli

import (
	"context"
	"fmt"

	"github.com/gabapcia/amlchain/internal/ledgerproc"

	"github.com/urfave/cli/v3"
)

// buildCommand builds the ledger and prints how it was obtained.
//
//	amlchain build --input SAML-D.csv --batch-size 100
func buildCommand(svc ledgerproc.Service, d Defaults) *cli.Command {
	return &cli.Command{
		Name:        "build",
		Description: "Builds the ledger for a dataset and reports the ingestion outcome.",
		Usage:       "Builds the ledger and prints block and row counts.",
		Flags:       inputFlags(d),
		Action: func(ctx context.Context, c *cli.Command) error {
			result, err := build(ctx, c, svc)
			if err != nil {
				return err
			}

			tw := newTable(c.Root().Writer)
			fmt.Fprintf(tw, "Fingerprint:\t%s\n", result.Fingerprint)
			fmt.Fprintf(tw, "Rows:\t%d\n", result.Rows)
			fmt.Fprintf(tw, "Malformed lines:\t%d\n", result.Malformed)
			fmt.Fprintf(tw, "Blocks:\t%d\n", result.Ledger.Len())
			fmt.Fprintf(tw, "Tip:\t%s\n", result.Ledger.Tip())
			fmt.Fprintf(tw, "Cached:\t%t\n", result.Cached)

			if r := result.Report; r != nil {
				fmt.Fprintf(tw, "Run:\t%s\n", r.RunID)
				fmt.Fprintf(tw, "Accepted:\t%d\n", r.RowsAccepted)
				fmt.Fprintf(tw, "Skipped:\t%d\n", r.RowsSkipped)
				for _, s := range r.Skipped {
					fmt.Fprintf(tw, "  line %d:\t%s\n", s.Line, s.Reason)
				}
			}

			return tw.Flush()
		},
	}
}

// summaryCommand prints the ledger summary as JSON.
func summaryCommand(svc ledgerproc.Service, d Defaults) *cli.Command {
	return &cli.Command{
		Name:        "summary",
		Description: "Prints transaction, block and account counts as JSON.",
		Usage:       "Summarizes the ledger.",
		Flags:       inputFlags(d),
		Action: func(ctx context.Context, c *cli.Command) error {
			result, err := build(ctx, c, svc)
			if err != nil {
				return err
			}

			return writeJSON(c.Root().Writer, result.Ledger.Summary())
		},
	}
}

// verifyCommand recomputes every digest. It fails with
// ErrIntegrityCheckFailed when the chain is broken.
func verifyCommand(svc ledgerproc.Service, d Defaults) *cli.Command {
	return &cli.Command{
		Name:        "verify",
		Description: "Recomputes every block digest and checks the links between blocks.",
		Usage:       "Validates the ledger integrity.",
		Flags:       inputFlags(d),
		Action: func(ctx context.Context, c *cli.Command) error {
			result, err := build(ctx, c, svc)
			if err != nil {
				return err
			}

			if inc := result.Ledger.Audit(); inc != nil {
				fmt.Fprintln(c.Root().Writer, "Ledger is invalid!")
				return fmt.Errorf("%w: %w", ErrIntegrityCheckFailed, inc)
			}

			_, err = fmt.Fprintf(c.Root().Writer, "Ledger is valid. %d blocks verified.\n", result.Ledger.Len())
			return err
		},
	}
}
