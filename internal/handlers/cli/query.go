package cli

import (
	"context"
	"fmt"

	"github.com/gabapcia/amlchain/internal/ledgerproc"

	"github.com/urfave/cli/v3"
)

func searchCommand(svc ledgerproc.Service, d Defaults) *cli.Command {
	return &cli.Command{
		Name:        "search",
		Description: "Lists the transactions sent or received by an account, in ingestion order.",
		Usage:       "Searches transactions by account.",
		Flags: append(inputFlags(d),
			&cli.StringFlag{
				Name:     "account",
				Usage:    "Account ID",
				Required: true,
			},
			limitFlag(10),
		),
		Action: func(ctx context.Context, c *cli.Command) error {
			result, err := build(ctx, c, svc)
			if err != nil {
				return err
			}

			txs := result.Ledger.SearchByAccount(c.String("account"))
			return writeTransactions(c.Root().Writer, txs, c.Int("limit"))
		},
	}
}

func flaggedCommand(svc ledgerproc.Service, d Defaults) *cli.Command {
	return &cli.Command{
		Name:        "flagged",
		Description: "Lists transactions labeled as suspicious, or normal ones with --normal.",
		Usage:       "Filters transactions by their laundering label.",
		Flags: append(inputFlags(d),
			&cli.BoolFlag{
				Name:  "normal",
				Usage: "List unflagged transactions instead",
			},
			limitFlag(5),
		),
		Action: func(ctx context.Context, c *cli.Command) error {
			result, err := build(ctx, c, svc)
			if err != nil {
				return err
			}

			txs := result.Ledger.FilterByFlag(!c.Bool("normal"))
			return writeTransactions(c.Root().Writer, txs, c.Int("limit"))
		},
	}
}

func topAmountsCommand(svc ledgerproc.Service, d Defaults) *cli.Command {
	return &cli.Command{
		Name:        "top-amounts",
		Description: "Lists transactions ordered by amount, largest first unless --ascending is set.",
		Usage:       "Sorts transactions by amount.",
		Flags: append(inputFlags(d),
			&cli.BoolFlag{
				Name:  "ascending",
				Usage: "Smallest amounts first",
			},
			limitFlag(5),
		),
		Action: func(ctx context.Context, c *cli.Command) error {
			result, err := build(ctx, c, svc)
			if err != nil {
				return err
			}

			txs := result.Ledger.SortByAmount(!c.Bool("ascending"))
			return writeTransactions(c.Root().Writer, txs, c.Int("limit"))
		},
	}
}

func topAccountsCommand(svc ledgerproc.Service, d Defaults) *cli.Command {
	return &cli.Command{
		Name:        "top-accounts",
		Description: "Lists the accounts with the highest gross volume sent plus received.",
		Usage:       "Ranks accounts by transaction volume.",
		Flags:       append(inputFlags(d), limitFlag(10)),
		Action: func(ctx context.Context, c *cli.Command) error {
			result, err := build(ctx, c, svc)
			if err != nil {
				return err
			}

			tw := newTable(c.Root().Writer)
			fmt.Fprintln(tw, "ACCOUNT\tVOLUME")
			for _, av := range result.Ledger.TopAccountsByVolume(c.Int("limit")) {
				fmt.Fprintf(tw, "%s\t%s\n", av.Account, av.Volume.String())
			}
			return tw.Flush()
		},
	}
}

// exploreCommand prints every block header followed by its first
// transactions.
func exploreCommand(svc ledgerproc.Service, d Defaults) *cli.Command {
	return &cli.Command{
		Name:        "explore",
		Description: "Prints every block with its digests and first transactions.",
		Usage:       "Walks the chain block by block.",
		Flags:       append(inputFlags(d), limitFlag(10)),
		Action: func(ctx context.Context, c *cli.Command) error {
			result, err := build(ctx, c, svc)
			if err != nil {
				return err
			}

			w := c.Root().Writer
			limit := max(c.Int("limit"), 0)
			for _, b := range result.Ledger.Blocks() {
				fmt.Fprintln(w, b.String())
				for _, tx := range b.Transactions[:min(limit, len(b.Transactions))] {
					fmt.Fprintf(w, "  %s\n", tx.String())
				}
			}
			return nil
		},
	}
}
