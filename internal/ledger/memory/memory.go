package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"wallet/internal/core"
	"wallet/internal/ledger"
)

// Store is an in-process ledger service. It assigns ids and timestamps,
// computes reports with core.Tally and can be told to fail or stall
// individual operations.
type Store struct {
	mu     sync.Mutex
	nextID int64
	items  []core.Transaction
	now    func() time.Time

	faults map[string]error
	gates  map[string]chan struct{}
	calls  map[string]int
}

// Ensure interface conformance
var _ ledger.Client = (*Store)(nil)

func New(seed ...core.Transaction) *Store {
	s := &Store{
		now:    time.Now,
		faults: map[string]error{},
		gates:  map[string]chan struct{}{},
		calls:  map[string]int{},
	}
	for _, tx := range seed {
		s.insert(tx)
	}
	return s
}

// NewFromFile seeds the store from a JSON array of transactions in
// dir/seed_transactions.json. A missing file yields an empty store.
func NewFromFile(dir string) (*Store, error) {
	raw, err := os.ReadFile(filepath.Join(dir, "seed_transactions.json"))
	if os.IsNotExist(err) {
		return New(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	var seed []core.Transaction
	if err := json.Unmarshal(raw, &seed); err != nil {
		return nil, fmt.Errorf("decode seed file: %w", err)
	}
	return New(seed...), nil
}

// Fail makes every subsequent call of op return err; a nil err clears it.
func (s *Store) Fail(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.faults, op)
		return
	}
	s.faults[op] = err
}

// Hold blocks calls of op until the returned release func is called.
func (s *Store) Hold(op string) (release func()) {
	gate := make(chan struct{})
	s.mu.Lock()
	s.gates[op] = gate
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			if s.gates[op] == gate {
				delete(s.gates, op)
			}
			s.mu.Unlock()
			close(gate)
		})
	}
}

// Calls returns how many times op was invoked.
func (s *Store) Calls(op string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[op]
}

// ListTransactions implements ledger.TransactionLister
func (s *Store) ListTransactions(ctx context.Context, userID string) ([]core.Transaction, error) {
	if err := s.enter(ctx, ledger.OpList); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.forUser(userID), nil
}

// FetchReport implements ledger.ReportReader
func (s *Store) FetchReport(ctx context.Context, userID string) (core.Report, error) {
	if err := s.enter(ctx, ledger.OpReport); err != nil {
		return core.Report{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return core.Tally(s.forUser(userID)), nil
}

// CreateTransaction implements ledger.TransactionWriter
func (s *Store) CreateTransaction(ctx context.Context, tx core.NewTransaction) error {
	if err := s.enter(ctx, ledger.OpCreate); err != nil {
		return err
	}
	if err := tx.Validate(); err != nil {
		return &ledger.ServerValidationError{StatusCode: 400, Message: err.Error()}
	}
	if tx.UserID == "" {
		return &ledger.ServerValidationError{StatusCode: 400, Message: "user_id is required"}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.insert(core.Transaction{
		Title:        tx.Title,
		Amount:       tx.Amount,
		Category:     tx.Category,
		Type:         tx.Type,
		RelatedParty: tx.RelatedParty,
		UserID:       tx.UserID,
	})
	return nil
}

// DeleteTransaction implements ledger.TransactionDeleter
func (s *Store) DeleteTransaction(ctx context.Context, id core.ID) error {
	if err := s.enter(ctx, ledger.OpDelete); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, tx := range s.items {
		if tx.ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return nil
		}
	}
	return ledger.NotOKError(ledger.OpDelete, 404, fmt.Errorf("transaction %s not found", id))
}

// enter counts the call, waits on a gate if one is set and returns the
// configured fault.
func (s *Store) enter(ctx context.Context, op string) error {
	s.mu.Lock()
	s.calls[op]++
	gate := s.gates[op]
	s.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return ledger.UnreachableError(op, ctx.Err())
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.faults[op]
}

func (s *Store) insert(tx core.Transaction) {
	if tx.ID == "" {
		s.nextID++
		tx.ID = core.ID(strconv.FormatInt(s.nextID, 10))
	} else if n, err := strconv.ParseInt(string(tx.ID), 10, 64); err == nil && n > s.nextID {
		s.nextID = n
	}
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = core.Timestamp{Time: s.now().UTC()}
	}
	s.items = append(s.items, tx)
}

func (s *Store) forUser(userID string) []core.Transaction {
	out := make([]core.Transaction, 0, len(s.items))
	for _, tx := range s.items {
		if tx.UserID == userID {
			out = append(out, tx)
		}
	}
	return out
}
