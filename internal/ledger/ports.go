// Package ledger defines the ports to the remote ledger service and the
// error taxonomy every adapter normalizes its failures into.
package ledger

import (
	"context"

	"wallet/internal/core"
)

// Ports for outbound adapters.
type (
	TransactionLister interface {
		// ListTransactions returns every transaction owned by userID.
		ListTransactions(ctx context.Context, userID string) ([]core.Transaction, error)
	}

	// ReportReader provides the server-computed aggregate for a user.
	ReportReader interface {
		FetchReport(ctx context.Context, userID string) (core.Report, error)
	}

	TransactionWriter interface {
		CreateTransaction(ctx context.Context, tx core.NewTransaction) error
	}

	TransactionDeleter interface {
		DeleteTransaction(ctx context.Context, id core.ID) error
	}

	// Client is the full set of remote ledger operations.
	Client interface {
		TransactionLister
		ReportReader
		TransactionWriter
		TransactionDeleter
	}
)

// Operation names used in errors and logs.
const (
	OpList   = "list"
	OpReport = "report"
	OpCreate = "create"
	OpDelete = "delete"
)
