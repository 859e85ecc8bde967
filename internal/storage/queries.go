package storage

import (
	"context"
	"database/sql"
)

// DBTX is satisfied by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
	QueryContext(context.Context, string, ...any) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...any) *sql.Row
}

type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

// Transaction is a row of the transactions table.
type Transaction struct {
	ID          int64
	UserID      string
	Title       string
	Amount      string
	Category    string
	Type        string
	RelatedUser sql.NullString
	CreatedAt   string
}

const transactionColumns = `id, user_id, transaction_title, transaction_amount, transaction_category, transaction_type, related_user, created_at`

type CreateTransactionParams struct {
	UserID      string
	Title       string
	Amount      string
	Category    string
	Type        string
	RelatedUser sql.NullString
	CreatedAt   string
}

const createTransaction = `INSERT INTO transactions (
    user_id, transaction_title, transaction_amount, transaction_category, transaction_type, related_user, created_at
) VALUES (?, ?, ?, ?, ?, ?, ?)
RETURNING ` + transactionColumns

func (q *Queries) CreateTransaction(ctx context.Context, arg CreateTransactionParams) (Transaction, error) {
	row := q.db.QueryRowContext(ctx, createTransaction,
		arg.UserID,
		arg.Title,
		arg.Amount,
		arg.Category,
		arg.Type,
		arg.RelatedUser,
		arg.CreatedAt,
	)
	return scanTransaction(row)
}

const listTransactionsByUser = `SELECT ` + transactionColumns + `
FROM transactions
WHERE user_id = ?
ORDER BY created_at DESC, id DESC`

func (q *Queries) ListTransactionsByUser(ctx context.Context, userID string) ([]Transaction, error) {
	rows, err := q.db.QueryContext(ctx, listTransactionsByUser, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []Transaction{}
	for rows.Next() {
		i, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const getTransaction = `SELECT ` + transactionColumns + ` FROM transactions WHERE id = ?`

func (q *Queries) GetTransaction(ctx context.Context, id int64) (Transaction, error) {
	return scanTransaction(q.db.QueryRowContext(ctx, getTransaction, id))
}

const deleteTransaction = `DELETE FROM transactions WHERE id = ?`

// DeleteTransaction returns the number of deleted rows.
func (q *Queries) DeleteTransaction(ctx context.Context, id int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteTransaction, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (Transaction, error) {
	var i Transaction
	err := row.Scan(
		&i.ID,
		&i.UserID,
		&i.Title,
		&i.Amount,
		&i.Category,
		&i.Type,
		&i.RelatedUser,
		&i.CreatedAt,
	)
	return i, err
}
