package sheets

import (
	"context"

	"wallet/internal/core"
)

// Export is one user's loaded ledger as written to a spreadsheet.
type Export struct {
	UserID       string
	Transactions []core.Transaction
	Report       core.Report
}

// Ports for outbound adapters.
type (
	// SnapshotExporter replaces the target sheet's contents with e and
	// returns the written range.
	SnapshotExporter interface {
		Export(ctx context.Context, e Export) (rangeRef string, err error)
	}
)
