package memory

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"wallet/internal/core"
	"wallet/internal/ledger"

	"github.com/shopspring/decimal"
)

func TestStoreCreateListReport(t *testing.T) {
	s := New()
	ctx := context.Background()

	err := s.CreateTransaction(ctx, core.NewTransaction{
		Title: "Salary", Amount: decimal.NewFromInt(1000), Category: "Salary", Type: core.Income, UserID: "u1",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	err = s.CreateTransaction(ctx, core.NewTransaction{
		Title: "Coffee", Amount: decimal.NewFromInt(250), Category: "Friend", Type: core.Lend, RelatedParty: "Sai", UserID: "u1",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	_ = s.CreateTransaction(ctx, core.NewTransaction{
		Title: "Other user", Amount: decimal.NewFromInt(5), Category: "Food", Type: core.Expense, UserID: "u2",
	})

	txs, err := s.ListTransactions(ctx, "u1")
	if err != nil || len(txs) != 2 {
		t.Fatalf("unexpected list: %v err=%v", txs, err)
	}
	if txs[0].ID != "1" || txs[1].ID != "2" || txs[0].CreatedAt.IsZero() {
		t.Fatalf("ids/timestamps not assigned: %+v", txs)
	}

	r, _ := s.FetchReport(ctx, "u1")
	if !r.Balance.Equal(decimal.NewFromInt(750)) {
		t.Fatalf("balance = %s, want 750", r.Balance)
	}
}

func TestStoreRejectsInvalidPayload(t *testing.T) {
	s := New()
	err := s.CreateTransaction(context.Background(), core.NewTransaction{Type: core.Income})
	var sv *ledger.ServerValidationError
	if !errors.As(err, &sv) {
		t.Fatalf("expected ServerValidationError, got %v", err)
	}
}

func TestStoreDelete(t *testing.T) {
	s := New(core.Transaction{ID: "9", UserID: "u", Type: core.Expense, Amount: decimal.NewFromInt(3)})
	ctx := context.Background()

	if err := s.DeleteTransaction(ctx, "9"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := s.DeleteTransaction(ctx, "9"); !errors.Is(err, ledger.ErrNotOK) {
		t.Fatalf("expected ErrNotOK on second delete, got %v", err)
	}
	// seeded ids move the counter forward
	_ = s.CreateTransaction(ctx, core.NewTransaction{Title: "x", Amount: decimal.NewFromInt(1), Category: "Food", Type: core.Expense, UserID: "u"})
	txs, _ := s.ListTransactions(ctx, "u")
	if len(txs) != 1 || txs[0].ID != "10" {
		t.Fatalf("unexpected ids after seed: %+v", txs)
	}
}

func TestStoreFaultsAndCalls(t *testing.T) {
	s := New()
	ctx := context.Background()
	boom := ledger.UnreachableError(ledger.OpReport, errors.New("timeout"))

	s.Fail(ledger.OpReport, boom)
	if _, err := s.FetchReport(ctx, "u"); !errors.Is(err, ledger.ErrUnreachable) {
		t.Fatalf("expected injected fault, got %v", err)
	}
	s.Fail(ledger.OpReport, nil)
	if _, err := s.FetchReport(ctx, "u"); err != nil {
		t.Fatalf("fault not cleared: %v", err)
	}
	if got := s.Calls(ledger.OpReport); got != 2 {
		t.Fatalf("calls = %d, want 2", got)
	}
}

func TestStoreHold(t *testing.T) {
	s := New()
	release := s.Hold(ledger.OpList)

	done := make(chan error, 1)
	go func() {
		_, err := s.ListTransactions(context.Background(), "u")
		done <- err
	}()

	select {
	case <-done:
		t.Fatal("held call returned early")
	default:
	}
	release()
	if err := <-done; err != nil {
		t.Fatalf("list: %v", err)
	}
	release() // idempotent
}

func TestNewFromFile(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFromFile(dir)
	if err != nil {
		t.Fatalf("missing file should yield empty store: %v", err)
	}
	if txs, _ := s.ListTransactions(context.Background(), "u"); len(txs) != 0 {
		t.Fatalf("expected empty store, got %v", txs)
	}

	seed := `[{"id":3,"transaction_title":"Seed","transaction_amount":"10","transaction_category":"Food",
		"transaction_type":"Expense","created_at":"2025-01-02","user_id":"u"}]`
	if err := os.WriteFile(filepath.Join(dir, "seed_transactions.json"), []byte(seed), 0o644); err != nil {
		t.Fatalf("write seed: %v", err)
	}
	s, err = NewFromFile(dir)
	if err != nil {
		t.Fatalf("NewFromFile: %v", err)
	}
	txs, _ := s.ListTransactions(context.Background(), "u")
	if len(txs) != 1 || txs[0].ID != "3" {
		t.Fatalf("unexpected seeded transactions: %+v", txs)
	}

	if err := os.WriteFile(filepath.Join(dir, "seed_transactions.json"), []byte("{"), 0o644); err != nil {
		t.Fatalf("write seed: %v", err)
	}
	if _, err := NewFromFile(dir); err == nil {
		t.Fatal("expected decode error")
	}
}
