package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"fintrack/internal/core"
	applog "fintrack/internal/log"
)

// TransactionRepository persists the whole transaction collection as one JSON
// array under a single key.
type TransactionRepository struct {
	kv     KeyValueStore
	key    string
	logger *applog.Logger
}

// RepositoryOption configures a TransactionRepository.
type RepositoryOption func(*TransactionRepository)

// WithRepositoryLogger sets the repository logger.
func WithRepositoryLogger(l *applog.Logger) RepositoryOption {
	return func(r *TransactionRepository) {
		r.logger = l.WithComponent(applog.ComponentStorage)
	}
}

func NewTransactionRepository(kv KeyValueStore, key string, opts ...RepositoryOption) *TransactionRepository {
	if key == "" {
		key = DefaultKey
	}
	r := &TransactionRepository{
		kv:     kv,
		key:    key,
		logger: applog.Discard().WithComponent(applog.ComponentStorage),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Key returns the key the collection is stored under.
func (r *TransactionRepository) Key() string {
	return r.key
}

// Load reads the stored collection. A missing, unreadable or corrupt value
// yields an empty collection so that startup never fails on bad data.
func (r *TransactionRepository) Load(ctx context.Context) []core.Transaction {
	raw, ok, err := r.kv.Get(ctx, r.key)
	if err != nil {
		r.logger.WarnContext(ctx, "Failed to read stored transactions, starting empty",
			applog.FieldOperation, applog.OpLoad,
			applog.FieldStorageKey, r.key,
			applog.FieldError, err)
		return []core.Transaction{}
	}
	if !ok {
		r.logger.InfoContext(ctx, "No stored transactions found",
			applog.FieldOperation, applog.OpLoad,
			applog.FieldStorageKey, r.key)
		return []core.Transaction{}
	}

	var txs []core.Transaction
	if err := json.Unmarshal(raw, &txs); err != nil {
		r.logger.WarnContext(ctx, "Stored transactions are corrupt, starting empty",
			applog.FieldOperation, applog.OpLoad,
			applog.FieldStorageKey, r.key,
			applog.FieldBytes, len(raw),
			applog.FieldError, err)
		return []core.Transaction{}
	}
	if txs == nil {
		txs = []core.Transaction{}
	}

	r.logger.InfoContext(ctx, "Loaded stored transactions",
		applog.FieldOperation, applog.OpLoad,
		applog.FieldStorageKey, r.key,
		applog.FieldCount, len(txs))
	return txs
}

// Save overwrites the stored collection. Errors wrap core.ErrPersist.
func (r *TransactionRepository) Save(ctx context.Context, txs []core.Transaction) error {
	if txs == nil {
		txs = []core.Transaction{}
	}
	raw, err := json.Marshal(txs)
	if err != nil {
		return fmt.Errorf("%w: marshal: %v", core.ErrPersist, err)
	}
	if err := r.kv.Set(ctx, r.key, raw); err != nil {
		return fmt.Errorf("%w: %w", core.ErrPersist, err)
	}

	r.logger.DebugContext(ctx, "Saved transactions",
		applog.FieldOperation, applog.OpSave,
		applog.FieldStorageKey, r.key,
		applog.FieldCount, len(txs),
		applog.FieldBytes, len(raw))
	return nil
}
