package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"wallet/internal/core"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a transaction id does not exist.
var ErrNotFound = errors.New("transaction not found")

// createdAtLayout is fixed width so created_at sorts lexically.
const createdAtLayout = "2006-01-02T15:04:05.000Z07:00"

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
	now     func() time.Time
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// SQLite allows a single writer; serialize instead of failing with SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{
		db:      db,
		queries: New(db),
		now:     time.Now,
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping reports whether the database is reachable.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// CreateTransaction stores tx, which must already be valid, and returns it
// with its assigned id and timestamp.
func (r *SQLiteRepository) CreateTransaction(ctx context.Context, tx core.NewTransaction) (core.Transaction, error) {
	var related sql.NullString
	if tx.Type.NeedsCounterparty() {
		related = sql.NullString{String: tx.RelatedParty, Valid: true}
	}

	row, err := r.queries.CreateTransaction(ctx, CreateTransactionParams{
		UserID:      tx.UserID,
		Title:       tx.Title,
		Amount:      tx.Amount.String(),
		Category:    tx.Category,
		Type:        string(tx.Type),
		RelatedUser: related,
		CreatedAt:   r.now().UTC().Format(createdAtLayout),
	})
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved to SQLite",
		"id", row.ID,
		"user_id", row.UserID,
		"type", row.Type,
		"amount", row.Amount)

	return toCore(row)
}

// ListTransactions returns userID's transactions, newest first.
func (r *SQLiteRepository) ListTransactions(ctx context.Context, userID string) ([]core.Transaction, error) {
	rows, err := r.queries.ListTransactionsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}

	txs := make([]core.Transaction, 0, len(rows))
	for _, row := range rows {
		tx, err := toCore(row)
		if err != nil {
			return nil, err
		}
		txs = append(txs, tx)
	}
	return txs, nil
}

// Report aggregates userID's transactions. Amounts are summed as decimals
// rather than by SQLite so that no precision is lost.
func (r *SQLiteRepository) Report(ctx context.Context, userID string) (core.Report, error) {
	txs, err := r.ListTransactions(ctx, userID)
	if err != nil {
		return core.Report{}, fmt.Errorf("report: %w", err)
	}
	return core.Tally(txs), nil
}

// DeleteTransaction removes the transaction with id. It returns ErrNotFound
// when nothing was deleted.
func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, id int64) error {
	n, err := r.queries.DeleteTransaction(ctx, id)
	if err != nil {
		return fmt.Errorf("delete transaction %d: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("delete transaction %d: %w", id, ErrNotFound)
	}

	slog.InfoContext(ctx, "Transaction deleted from SQLite", "id", id)
	return nil
}

// GetTransaction returns a single transaction.
func (r *SQLiteRepository) GetTransaction(ctx context.Context, id int64) (core.Transaction, error) {
	row, err := r.queries.GetTransaction(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, fmt.Errorf("get transaction %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction %d: %w", id, err)
	}
	return toCore(row)
}

func toCore(row Transaction) (core.Transaction, error) {
	amount, err := decimal.NewFromString(row.Amount)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("transaction %d: invalid amount %q: %w", row.ID, row.Amount, err)
	}
	createdAt, err := time.Parse(time.RFC3339Nano, row.CreatedAt)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("transaction %d: invalid created_at %q: %w", row.ID, row.CreatedAt, err)
	}
	return core.Transaction{
		ID:           core.ID(strconv.FormatInt(row.ID, 10)),
		Title:        row.Title,
		Amount:       amount,
		Category:     row.Category,
		Type:         core.TransactionType(row.Type),
		RelatedParty: row.RelatedUser.String,
		CreatedAt:    core.Timestamp{Time: createdAt},
		UserID:       row.UserID,
	}, nil
}
