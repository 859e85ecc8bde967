package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"wallet/internal/core"
	applog "wallet/internal/log"
	ports "wallet/internal/sheets"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// exportColumns is the header row; rows are written from A1.
var exportColumns = []any{"ID", "Date", "Title", "Category", "Type", "Related user", "Amount", "Signed amount"}

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
	logger        *slog.Logger
}

// Ensure interface conformance
var _ ports.SnapshotExporter = (*Client)(nil)

// Config locates the spreadsheet and the service account that may edit it.
// CredentialsJSON wins over CredentialsFile.
type Config struct {
	SpreadsheetID   string
	SheetName       string
	CredentialsJSON string
	CredentialsFile string
	Logger          *slog.Logger
}

// New creates a Sheets client authenticated with a service account.
func New(ctx context.Context, cfg Config) (*Client, error) {
	spreadsheetID := strings.TrimSpace(cfg.SpreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(applog.FieldComponent, applog.ComponentSheets)

	svc, err := newSheetsService(ctx, logger, cfg.CredentialsJSON, cfg.CredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return NewWithService(svc, spreadsheetID, cfg.SheetName, logger), nil
}

// NewWithService wraps an already configured service.
func NewWithService(svc *gsheet.Service, spreadsheetID, sheetName string, logger *slog.Logger) *Client {
	sheetName = strings.TrimSpace(sheetName)
	if sheetName == "" {
		sheetName = "Transactions"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
		logger:        logger,
	}
}

// newSheetsService initializes a Sheets Service using Service Account credentials.
// Falls back to GOOGLE_APPLICATION_CREDENTIALS when neither source is set.
func newSheetsService(ctx context.Context, logger *slog.Logger, serviceAccountJSON, serviceAccountFile string) (*gsheet.Service, error) {
	serviceAccountJSON = strings.TrimSpace(serviceAccountJSON)
	serviceAccountFile = strings.TrimSpace(serviceAccountFile)
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	switch {
	case serviceAccountJSON != "":
		logger.DebugContext(ctx, "Using inline JSON credentials")
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		logger.DebugContext(ctx, "Reading credentials from file", "path", serviceAccountFile)
		var err error
		credentialsJSON, err = os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

// Export clears the sheet and writes the header, one row per transaction
// (newest first) and the report totals.
func (c *Client) Export(ctx context.Context, e ports.Export) (string, error) {
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}

	clearRange := fmt.Sprintf("%s!A:H", c.sheetName)
	_, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, clearRange, &gsheet.ClearValuesRequest{}).
		Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to clear %s: %w", clearRange, err)
	}

	rows := BuildRows(e)
	ref := fmt.Sprintf("%s!A1:H%d", c.sheetName, len(rows))
	vr := &gsheet.ValueRange{Values: rows}
	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, ref, vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to update %s: %w", ref, err)
	}

	c.logger.InfoContext(ctx, "Snapshot exported",
		applog.FieldOperation, applog.OpExport,
		applog.FieldUserID, e.UserID,
		applog.FieldCount, len(e.Transactions),
		"range", ref)
	return ref, nil
}

// BuildRows lays out an export as sheet rows. Amounts are plain decimal
// strings so USER_ENTERED stores them as numbers.
func BuildRows(e ports.Export) [][]any {
	txs := core.SortNewestFirst(e.Transactions)
	rows := make([][]any, 0, len(txs)+8)
	rows = append(rows, exportColumns)
	for _, tx := range txs {
		signed := tx.Amount
		if tx.Type.Direction() < 0 {
			signed = signed.Neg()
		}
		date := ""
		if !tx.CreatedAt.IsZero() {
			date = tx.CreatedAt.Format("2006-01-02")
		}
		rows = append(rows, []any{
			tx.ID.String(),
			date,
			tx.Title,
			tx.Category,
			string(tx.Type),
			tx.RelatedParty,
			tx.Amount.StringFixed(2),
			signed.StringFixed(2),
		})
	}

	rows = append(rows,
		[]any{},
		[]any{"User", e.UserID},
		[]any{"Income", e.Report.Income.StringFixed(2)},
		[]any{"Expense", e.Report.Expense.StringFixed(2)},
		[]any{"Lending", e.Report.Lending.StringFixed(2)},
		[]any{"Borrowing", e.Report.Borrowing.StringFixed(2)},
		[]any{"Balance", e.Report.Balance.StringFixed(2)},
	)
	return rows
}
