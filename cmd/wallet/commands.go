package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/subcommands"

	"wallet/internal/config"
	"wallet/internal/core"
	"wallet/internal/render"
	"wallet/internal/services"
	"wallet/internal/sheets"
	"wallet/internal/sheets/google"
)

// withLoadedApp opens the app, loads the snapshot and hands both to fn.
func withLoadedApp(ctx context.Context, fn func(*app, services.Snapshot) subcommands.ExitStatus, extra ...func(*config.Config) error) subcommands.ExitStatus {
	a, err := openApp(ctx, extra...)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	snap, err := a.load(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading ledger: %v\n", err)
		return subcommands.ExitFailure
	}
	return fn(a, snap)
}

type listCmd struct {
	refresh bool
}

func (*listCmd) Name() string     { return "list" }
func (*listCmd) Synopsis() string { return "list the transactions, newest first" }
func (*listCmd) Usage() string {
	return `wallet list [-refresh]

  Loads the ledger and lists its transactions, newest first.
`
}

func (c *listCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.refresh, "refresh", false, "Reload once more after the initial load.")
}

func (c *listCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withLoadedApp(ctx, func(a *app, snap services.Snapshot) subcommands.ExitStatus {
		if c.refresh {
			snap, _ = a.load(ctx)
		}
		printMarkdown(render.TransactionsMarkdown(a.summaryInput(snap)))
		return subcommands.ExitSuccess
	})
}

type reportCmd struct{}

func (*reportCmd) Name() string     { return "report" }
func (*reportCmd) Synopsis() string { return "show balance, income, expense, lending and borrowing" }
func (*reportCmd) Usage() string {
	return `wallet report

  Shows the totals the ledger service computes for the user.
`
}
func (*reportCmd) SetFlags(*flag.FlagSet) {}

func (*reportCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withLoadedApp(ctx, func(a *app, snap services.Snapshot) subcommands.ExitStatus {
		printMarkdown(render.ReportMarkdown(a.summaryInput(snap)))
		return subcommands.ExitSuccess
	})
}

type summaryCmd struct{}

func (*summaryCmd) Name() string     { return "summary" }
func (*summaryCmd) Synopsis() string { return "show the balance card and the transaction list" }
func (*summaryCmd) Usage() string {
	return `wallet summary

  Shows the report followed by the transactions, newest first.
`
}
func (*summaryCmd) SetFlags(*flag.FlagSet) {}

func (*summaryCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withLoadedApp(ctx, func(a *app, snap services.Snapshot) subcommands.ExitStatus {
		printMarkdown(render.SummaryMarkdown(a.summaryInput(snap)))
		return subcommands.ExitSuccess
	})
}

type addCmd struct {
	txType   string
	title    string
	amount   string
	category string
	with     string
}

func (*addCmd) Name() string     { return "add" }
func (*addCmd) Synopsis() string { return "record a new transaction" }
func (*addCmd) Usage() string {
	return `wallet add -type <Income|Expense|Lend|Borrow> -title <title> -amount <amount> -category <category> [-with <person>]

  Records a transaction and shows the refreshed summary. Lend and Borrow
  require -with. Run "wallet categories" for the allowed categories.
`
}

func (c *addCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.txType, "type", string(core.Income), "Transaction type.")
	f.StringVar(&c.title, "title", "", "Short description.")
	f.StringVar(&c.amount, "amount", "", "Positive amount, e.g. 250 or 12.50.")
	f.StringVar(&c.category, "category", "", "Category allowed for the type.")
	f.StringVar(&c.with, "with", "", "Person lent to or borrowed from.")
}

func (c *addCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	t, err := core.ParseTransactionType(c.txType)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}
	draft := core.NewDraft(t)
	draft.Title = c.title
	draft.Amount = c.amount
	draft.Category = c.category
	draft.RelatedParty = c.with

	tx, err := draft.Validate()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid transaction: %v\n", err)
		return subcommands.ExitUsageError
	}

	a, err := openApp(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	if err := a.controller.Create(ctx, tx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	printMarkdown(render.SummaryMarkdown(a.summaryInput(a.controller.Snapshot())))
	return subcommands.ExitSuccess
}

type rmCmd struct {
	yes bool
}

func (*rmCmd) Name() string     { return "rm" }
func (*rmCmd) Synopsis() string { return "delete transactions by id" }
func (*rmCmd) Usage() string {
	return `wallet rm [-y] <id>...

  Deletes the given transactions. Only ids present in the loaded ledger are
  accepted. Without -y each deletion is confirmed on stdin.
`
}

func (c *rmCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.yes, "y", false, "Do not ask for confirmation.")
}

func (c *rmCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Error: at least one transaction id is required.")
		return subcommands.ExitUsageError
	}

	return withLoadedApp(ctx, func(a *app, snap services.Snapshot) subcommands.ExitStatus {
		byID := make(map[core.ID]core.Transaction, len(snap.Transactions))
		for _, tx := range snap.Transactions {
			byID[tx.ID] = tx
		}

		status := subcommands.ExitSuccess
		for _, arg := range f.Args() {
			tx, ok := byID[core.ID(arg)]
			if !ok {
				fmt.Fprintf(os.Stderr, "Error: no transaction %q in the ledger.\n", arg)
				status = subcommands.ExitFailure
				continue
			}
			if !c.yes && !confirm(fmt.Sprintf("Delete %q (%s)?", tx.Title, core.FormatSignedAmount(tx, a.cfg.Currency))) {
				continue
			}
			if err := a.controller.Remove(ctx, tx.ID); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				status = subcommands.ExitFailure
			}
		}
		printMarkdown(render.SummaryMarkdown(a.summaryInput(a.controller.Snapshot())))
		return status
	})
}

func confirm(question string) bool {
	fmt.Printf("%s [y/N] ", question)
	var answer string
	if _, err := fmt.Fscanln(os.Stdin, &answer); err != nil {
		return false
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}

type categoriesCmd struct{}

func (*categoriesCmd) Name() string     { return "categories" }
func (*categoriesCmd) Synopsis() string { return "list the allowed categories per type" }
func (*categoriesCmd) Usage() string {
	return `wallet categories

  Lists the categories each transaction type accepts.
`
}
func (*categoriesCmd) SetFlags(*flag.FlagSet) {}

func (*categoriesCmd) Execute(context.Context, *flag.FlagSet, ...interface{}) subcommands.ExitStatus {
	printMarkdown(render.CategoriesMarkdown())
	return subcommands.ExitSuccess
}

type exportCmd struct{}

func (*exportCmd) Name() string     { return "export" }
func (*exportCmd) Synopsis() string { return "write the loaded ledger to Google Sheets" }
func (*exportCmd) Usage() string {
	return `wallet export

  Replaces the configured sheet with the transactions and totals.
  Requires GOOGLE_SPREADSHEET_ID and service account credentials.
`
}
func (*exportCmd) SetFlags(*flag.FlagSet) {}

func (*exportCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withLoadedApp(ctx, func(a *app, snap services.Snapshot) subcommands.ExitStatus {
		if snap.Err != nil {
			fmt.Fprintf(os.Stderr, "Error: refusing to export stale data: %v\n", snap.Err)
			return subcommands.ExitFailure
		}

		exporter, err := google.New(ctx, google.Config{
			SpreadsheetID:   a.cfg.GoogleSpreadsheetID,
			SheetName:       a.cfg.GoogleSheetName,
			CredentialsJSON: a.cfg.GoogleServiceAccountJSON,
			CredentialsFile: a.cfg.GoogleServiceAccountFile,
			Logger:          a.logger.Logger,
		})
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return subcommands.ExitFailure
		}

		ref, err := exportSnapshot(ctx, exporter, a.controller.UserID(), snap)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return subcommands.ExitFailure
		}
		fmt.Printf("Exported %d transactions to %s\n", len(snap.Transactions), ref)
		return subcommands.ExitSuccess
	}, (*config.Config).ValidateExport)
}

func exportSnapshot(ctx context.Context, exporter sheets.SnapshotExporter, userID string, snap services.Snapshot) (string, error) {
	ref, err := exporter.Export(ctx, sheets.Export{
		UserID:       userID,
		Transactions: snap.Transactions,
		Report:       snap.Report,
	})
	if err != nil {
		return "", fmt.Errorf("export: %w", err)
	}
	return ref, nil
}
