package services

import (
	"context"
	"strconv"
	"time"

	"fintrack/internal/cache"
	"fintrack/internal/core"
	applog "fintrack/internal/log"
)

// Dashboard serves the summary view. Results are cached per store revision,
// so a mutation makes the previous entry unreachable without explicit
// invalidation.
type Dashboard struct {
	store  *TransactionStore
	cache  *cache.LRUCache[core.Summary]
	logger *applog.Logger
}

func NewDashboard(store *TransactionStore, size int, ttl time.Duration, logger *applog.Logger) *Dashboard {
	if logger == nil {
		logger = applog.Discard()
	}
	return &Dashboard{
		store:  store,
		cache:  cache.NewLRUCache[core.Summary](size, ttl),
		logger: logger.WithComponent(applog.ComponentDashboard),
	}
}

// Cache exposes the summary cache so it can be registered with a cache.Manager.
func (d *Dashboard) Cache() *cache.LRUCache[core.Summary] {
	return d.cache
}

// Summary returns totals, net income, count, recent activity and monthly
// buckets computed from a single snapshot of the store.
func (d *Dashboard) Summary(ctx context.Context) core.Summary {
	txs, rev := d.store.Snapshot()
	key := "summary:" + strconv.FormatUint(rev, 10)

	if s, ok := d.cache.Get(key); ok {
		return s
	}

	s := core.Summarize(txs)
	d.cache.Set(key, s)
	d.logger.DebugContext(ctx, "Summary computed",
		applog.FieldOperation, applog.OpSummary,
		applog.FieldRevision, rev,
		applog.FieldCount, s.Count)
	return s
}
