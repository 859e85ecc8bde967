package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"wallet/internal/core"
	"wallet/internal/ledger"
)

// State is the controller's position in Idle -> Loading -> {Ready, Errored}.
type State int

const (
	StateIdle State = iota
	StateLoading
	StateReady
	StateErrored
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateErrored:
		return "errored"
	default:
		return "unknown"
	}
}

// ErrControllerClosed is returned by mutations on a closed controller.
var ErrControllerClosed = errors.New("sync controller is closed")

const loadKey = "load"

// Snapshot is one consistent view of a user's ledger. Transactions and
// Report always come from the same successful load.
type Snapshot struct {
	Transactions []core.Transaction
	Report       core.Report
	Loading      bool
	Err          error
}

// clone copies the transaction list. The copy is never nil, so an empty
// ledger reads as an empty list.
func (s Snapshot) clone() Snapshot {
	txs := make([]core.Transaction, len(s.Transactions))
	copy(txs, s.Transactions)
	s.Transactions = txs
	return s
}

// SyncControllerConfig holds optional collaborators.
type SyncControllerConfig struct {
	// Logger defaults to slog.Default().
	Logger *slog.Logger

	// OnChange, when set, receives a copy of the snapshot after every state
	// transition. It is called without the controller's lock held.
	OnChange func(Snapshot)
}

// SyncController owns the snapshot of one user's ledger and keeps the
// transaction list and the report consistent with each other.
type SyncController struct {
	client   ledger.Client
	userID   string
	logger   *slog.Logger
	onChange func(Snapshot)

	group singleflight.Group

	mu      sync.Mutex
	snap    Snapshot
	state   State
	started uint64 // loads started so far; identifies each load
	closed  bool
}

// NewSyncController creates an Idle controller for userID.
func NewSyncController(client ledger.Client, userID string, config SyncControllerConfig) *SyncController {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &SyncController{
		client:   client,
		userID:   userID,
		logger:   logger.With("component", "sync", "user_id", userID),
		onChange: config.OnChange,
		snap:     Snapshot{Transactions: []core.Transaction{}},
	}
}

// UserID returns the user this controller is scoped to.
func (c *SyncController) UserID() string { return c.userID }

// Snapshot returns a copy of the current snapshot.
func (c *SyncController) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snap.clone()
}

// State returns the current state.
func (c *SyncController) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Load refreshes the snapshot from the server and returns it. Concurrent
// calls share one in-flight load. Failures are recorded in Snapshot.Err and
// leave the previous data in place.
//
// The load runs detached from ctx's cancellation: once started it cannot be
// aborted. Transport timeouts still apply.
func (c *SyncController) Load(ctx context.Context) Snapshot {
	c.load(ctx)
	return c.Snapshot()
}

// Create submits tx for the controller's user and, once the server confirms,
// reloads list and report. A failed create is returned to the caller and
// does not touch the snapshot.
func (c *SyncController) Create(ctx context.Context, tx core.NewTransaction) error {
	if c.isClosed() {
		return ErrControllerClosed
	}
	if err := tx.Validate(); err != nil {
		return err
	}
	tx.UserID = c.userID

	if err := c.client.CreateTransaction(ctx, tx); err != nil {
		c.logger.WarnContext(ctx, "Create transaction failed",
			"operation", ledger.OpCreate,
			"error_type", ledger.KindOf(err),
			"error", err)
		return fmt.Errorf("create transaction: %w", err)
	}
	c.logger.InfoContext(ctx, "Transaction created",
		"title", tx.Title,
		"type", tx.Type,
		"category", tx.Category)

	c.resync(ctx)
	return nil
}

// Remove deletes the transaction with id and, once the server confirms,
// reloads list and report. Callers only pass ids of displayed transactions.
func (c *SyncController) Remove(ctx context.Context, id core.ID) error {
	if c.isClosed() {
		return ErrControllerClosed
	}

	if err := c.client.DeleteTransaction(ctx, id); err != nil {
		c.logger.WarnContext(ctx, "Delete transaction failed",
			"operation", ledger.OpDelete,
			"transaction_id", id,
			"error_type", ledger.KindOf(err),
			"error", err)
		return fmt.Errorf("delete transaction %s: %w", id, err)
	}
	c.logger.InfoContext(ctx, "Transaction deleted", "transaction_id", id)

	c.resync(ctx)
	return nil
}

// Close disposes the controller. Results of loads still in flight are
// dropped.
func (c *SyncController) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

// load joins the in-flight load or starts one, and returns the sequence
// number of the load it observed (0 when closed).
func (c *SyncController) load(ctx context.Context) uint64 {
	if c.isClosed() {
		return 0
	}
	detached := context.WithoutCancel(ctx)
	v, _, _ := c.group.Do(loadKey, func() (any, error) {
		return c.runLoad(detached), nil
	})
	return v.(uint64)
}

// resync reloads after a confirmed mutation. A load that was already in
// flight may predate the mutation, so it is awaited and a fresh one issued.
func (c *SyncController) resync(ctx context.Context) {
	c.mu.Lock()
	mark := c.started
	c.mu.Unlock()

	for {
		seq := c.load(ctx)
		if seq == 0 || seq > mark {
			return
		}
	}
}

func (c *SyncController) runLoad(ctx context.Context) uint64 {
	c.mu.Lock()
	c.started++
	seq := c.started
	if c.closed {
		c.mu.Unlock()
		return seq
	}
	c.snap.Loading = true
	c.state = StateLoading
	view := c.snap.clone()
	c.mu.Unlock()
	c.notify(view)

	var (
		txs    []core.Transaction
		report core.Report
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		txs, err = c.client.ListTransactions(gctx, c.userID)
		return err
	})
	g.Go(func() error {
		var err error
		report, err = c.client.FetchReport(gctx, c.userID)
		return err
	})
	err := g.Wait()

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		c.logger.DebugContext(ctx, "Dropping load result of closed controller", "load", seq)
		return seq
	}
	if err != nil {
		c.snap.Loading = false
		c.snap.Err = err
		c.state = StateErrored
	} else {
		if txs == nil {
			txs = []core.Transaction{}
		}
		c.snap = Snapshot{Transactions: txs, Report: report}
		c.state = StateReady
	}
	view = c.snap.clone()
	c.mu.Unlock()

	if err != nil {
		c.logger.WarnContext(ctx, "Ledger load failed, keeping previous snapshot",
			"load", seq,
			"error_type", ledger.KindOf(err),
			"error", err)
	} else {
		c.logger.DebugContext(ctx, "Ledger loaded",
			"load", seq,
			"transactions", len(txs),
			"balance", report.Balance.String())
	}
	c.notify(view)
	return seq
}

func (c *SyncController) notify(s Snapshot) {
	if c.onChange != nil {
		c.onChange(s)
	}
}

func (c *SyncController) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}
