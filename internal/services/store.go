package services

import (
	"context"
	"fmt"
	"math"
	"slices"
	"sync"

	"github.com/google/uuid"

	"fintrack/internal/core"
	applog "fintrack/internal/log"
)

// Repository is the persistence the store writes through to.
type Repository interface {
	Load(ctx context.Context) []core.Transaction
	Save(ctx context.Context, txs []core.Transaction) error
}

// StoreOption configures a TransactionStore.
type StoreOption func(*TransactionStore)

// WithLogger sets the store logger.
func WithLogger(l *applog.Logger) StoreOption {
	return func(s *TransactionStore) {
		s.logger = l.WithComponent(applog.ComponentStore)
	}
}

// WithIDGenerator replaces the UUID generator.
func WithIDGenerator(next func() string) StoreOption {
	return func(s *TransactionStore) {
		s.newID = next
	}
}

// TransactionStore owns the transaction collection. Newest additions sit at
// the front. Every mutation is written through to the repository before it
// returns; when that write fails the in-memory change is kept and the error
// wraps core.ErrPersist.
//
// A single store must own the repository key for the lifetime of the process.
type TransactionStore struct {
	mu       sync.Mutex
	repo     Repository
	txs      []core.Transaction
	revision uint64
	newID    func() string
	logger   *applog.Logger
}

// NewTransactionStore loads the persisted collection before returning.
func NewTransactionStore(ctx context.Context, repo Repository, opts ...StoreOption) *TransactionStore {
	s := &TransactionStore{
		repo:   repo,
		newID:  uuid.NewString,
		logger: applog.New(applog.DefaultConfig()).WithComponent(applog.ComponentStore),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.txs = repo.Load(ctx)
	if s.txs == nil {
		s.txs = []core.Transaction{}
	}
	s.logger.InfoContext(ctx, "Transaction store ready",
		applog.FieldOperation, applog.OpLoad,
		applog.FieldCount, len(s.txs))

	return s
}

// Add assigns a new ID to the draft and puts it at the front of the collection.
// The created transaction is returned even when persisting fails. A NaN or
// infinite amount is rejected with core.ErrInvalidAmount and nothing changes.
func (s *TransactionStore) Add(ctx context.Context, d core.TransactionDraft) (core.Transaction, error) {
	if err := checkStorable(d.Amount); err != nil {
		return core.Transaction{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t := d.WithID(s.uniqueID())
	s.txs = slices.Insert(s.txs, 0, t)
	s.revision++

	if err := s.persist(ctx, applog.OpCreate, t.ID); err != nil {
		return t, err
	}
	return t, nil
}

// Update replaces the transaction with the same ID in place. Unknown IDs are
// ignored and nothing is written.
func (s *TransactionStore) Update(ctx context.Context, t core.Transaction) error {
	_, err := s.UpdateIfExists(ctx, t)
	return err
}

// UpdateIfExists is Update that also reports whether t.ID was found. The
// lookup and the replacement happen under one lock.
func (s *TransactionStore) UpdateIfExists(ctx context.Context, t core.Transaction) (bool, error) {
	if err := checkStorable(t.Amount); err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(t.ID)
	if i < 0 {
		s.logger.DebugContext(ctx, "Update of unknown transaction ignored", applog.FieldTransactionID, t.ID)
		return false, nil
	}
	s.txs[i] = t
	s.revision++

	return true, s.persist(ctx, applog.OpUpdate, t.ID)
}

// Delete removes the transaction with the given ID. Unknown IDs are ignored
// and nothing is written.
func (s *TransactionStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		s.logger.DebugContext(ctx, "Delete of unknown transaction ignored", applog.FieldTransactionID, id)
		return nil
	}
	s.txs = slices.Delete(s.txs, i, i+1)
	s.revision++

	return s.persist(ctx, applog.OpDelete, id)
}

// Transactions returns a copy of the collection in store order.
func (s *TransactionStore) Transactions() []core.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.txs)
}

// Snapshot returns a copy of the collection together with its revision.
func (s *TransactionStore) Snapshot() ([]core.Transaction, uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.txs), s.revision
}

// Get looks a transaction up by ID.
func (s *TransactionStore) Get(id string) (core.Transaction, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexOf(id); i >= 0 {
		return s.txs[i], true
	}
	return core.Transaction{}, false
}

func (s *TransactionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.txs)
}

// Revision increases on every applied mutation.
func (s *TransactionStore) Revision() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.revision
}

func (s *TransactionStore) TotalByType(typ core.TransactionType) float64 {
	return core.TotalByType(s.Transactions(), typ)
}

func (s *TransactionStore) NetIncome() float64 {
	return core.NetIncome(s.Transactions())
}

func (s *TransactionStore) Recent(n int) []core.Transaction {
	return core.Recent(s.Transactions(), n)
}

func (s *TransactionStore) FilterAndSort(f core.Filter) []core.Transaction {
	return core.FilterAndSort(s.Transactions(), f)
}

func (s *TransactionStore) MonthlyAggregates() []core.MonthlyBucket {
	return core.MonthlyAggregates(s.Transactions())
}

// checkStorable rejects amounts JSON cannot encode. Letting one in would make
// every later save of the collection fail.
func checkStorable(amount float64) error {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return fmt.Errorf("%w: %v is not a finite number", core.ErrInvalidAmount, amount)
	}
	return nil
}

// uniqueID falls back to random UUIDs when the generator repeats itself.
func (s *TransactionStore) uniqueID() string {
	id := s.newID()
	for s.indexOf(id) >= 0 {
		id = uuid.NewString()
	}
	return id
}

func (s *TransactionStore) indexOf(id string) int {
	return slices.IndexFunc(s.txs, func(t core.Transaction) bool { return t.ID == id })
}

// persist must be called with s.mu held.
func (s *TransactionStore) persist(ctx context.Context, op, id string) error {
	if err := s.repo.Save(ctx, s.txs); err != nil {
		s.logger.ErrorContext(ctx, "Failed to persist transactions, change kept in memory only",
			applog.FieldOperation, op,
			applog.FieldTransactionID, id,
			applog.FieldError, err)
		return fmt.Errorf("%s transaction %s: %w", op, id, err)
	}
	s.logger.DebugContext(ctx, "Transactions persisted",
		applog.FieldOperation, op,
		applog.FieldTransactionID, id,
		applog.FieldCount, len(s.txs),
		applog.FieldRevision, s.revision)
	return nil
}
