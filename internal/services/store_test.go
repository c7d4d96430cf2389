package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"reflect"
	"slices"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v6"

	"fintrack/internal/core"
	applog "fintrack/internal/log"
	"fintrack/internal/storage"
	"fintrack/internal/storage/memory"
)

// recordingRepo counts writes and can be told to fail them.
type recordingRepo struct {
	initial []core.Transaction
	saved   []core.Transaction
	saves   int
	failErr error
}

func (r *recordingRepo) Load(context.Context) []core.Transaction {
	return slices.Clone(r.initial)
}

func (r *recordingRepo) Save(_ context.Context, txs []core.Transaction) error {
	r.saves++
	if r.failErr != nil {
		return fmt.Errorf("%w: %w", core.ErrPersist, r.failErr)
	}
	r.saved = slices.Clone(txs)
	return nil
}

func newTestStore(t *testing.T, repo Repository, opts ...StoreOption) *TransactionStore {
	t.Helper()
	opts = append([]StoreOption{WithLogger(applog.Discard())}, opts...)
	return NewTransactionStore(context.Background(), repo, opts...)
}

func draft(desc string, amount float64, date string, typ core.TransactionType) core.TransactionDraft {
	return core.TransactionDraft{Amount: amount, Date: date, Description: desc, Type: typ, Category: "General"}
}

func storeIDs(s *TransactionStore) []string {
	var out []string
	for _, t := range s.Transactions() {
		out = append(out, t.ID)
	}
	return out
}

func TestStoreAddPrependsAndPersists(t *testing.T) {
	repo := &recordingRepo{}
	n := 0
	s := newTestStore(t, repo, WithIDGenerator(func() string { n++; return fmt.Sprintf("id-%d", n) }))

	first, err := s.Add(context.Background(), draft("first", 10, "2024-01-01", core.Expense))
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	second, err := s.Add(context.Background(), draft("second", 20, "2023-01-01", core.Income))
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	if first.ID != "id-1" || second.ID != "id-2" {
		t.Fatalf("unexpected ids: %q %q", first.ID, second.ID)
	}
	if got := storeIDs(s); !slices.Equal(got, []string{"id-2", "id-1"}) {
		t.Fatalf("newest should be first, got %v", got)
	}
	if repo.saves != 2 {
		t.Fatalf("expected a write per mutation, got %d", repo.saves)
	}
	if !reflect.DeepEqual(repo.saved, s.Transactions()) {
		t.Fatalf("persisted state diverged from memory")
	}
	if s.Revision() != 2 || s.Len() != 2 {
		t.Fatalf("revision=%d len=%d", s.Revision(), s.Len())
	}
}

func TestStoreIDsAreUnique(t *testing.T) {
	s := newTestStore(t, &recordingRepo{})
	f := gofakeit.New(7)
	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

	seen := make(map[string]bool)
	for i := 0; i < 500; i++ {
		tx, err := s.Add(context.Background(), draft(f.Sentence(2), f.Float64Range(1, 100),
			f.DateRange(start, start.AddDate(3, 0, 0)).Format("2006-01-02"), core.Expense))
		if err != nil {
			t.Fatalf("add: %v", err)
		}
		if tx.ID == "" || seen[tx.ID] {
			t.Fatalf("duplicate or empty id %q at %d", tx.ID, i)
		}
		seen[tx.ID] = true
	}
}

func TestStoreRepeatingGeneratorStillUnique(t *testing.T) {
	s := newTestStore(t, &recordingRepo{}, WithIDGenerator(func() string { return "same" }))
	a, _ := s.Add(context.Background(), draft("a", 1, "2024-01-01", core.Expense))
	b, _ := s.Add(context.Background(), draft("b", 1, "2024-01-01", core.Expense))
	if a.ID == b.ID {
		t.Fatalf("ids collide: %q", a.ID)
	}
}

func TestStoreUpdatePreservesPosition(t *testing.T) {
	repo := &recordingRepo{initial: []core.Transaction{
		{ID: "a", Amount: 1, Date: "2024-01-03", Description: "a", Type: core.Expense},
		{ID: "b", Amount: 2, Date: "2024-01-02", Description: "b", Type: core.Expense},
		{ID: "c", Amount: 3, Date: "2024-01-01", Description: "c", Type: core.Income},
	}}
	s := newTestStore(t, repo)

	updated := core.Transaction{ID: "b", Amount: 99, Date: "2025-06-01", Description: "bigger", Type: core.Income, Category: "New"}
	if err := s.Update(context.Background(), updated); err != nil {
		t.Fatalf("update: %v", err)
	}
	if got := storeIDs(s); !slices.Equal(got, []string{"a", "b", "c"}) {
		t.Fatalf("order changed: %v", got)
	}
	if got, _ := s.Get("b"); got != updated {
		t.Fatalf("update not applied: %+v", got)
	}
	if repo.saves != 1 || !reflect.DeepEqual(repo.saved, s.Transactions()) {
		t.Fatalf("update not persisted (saves=%d)", repo.saves)
	}
}

func TestStoreUnknownIDsAreNoOps(t *testing.T) {
	initial := []core.Transaction{{ID: "a", Amount: 1, Date: "2024-01-01", Description: "a", Type: core.Expense}}
	repo := &recordingRepo{initial: initial}
	s := newTestStore(t, repo)

	if err := s.Update(context.Background(), core.Transaction{ID: "zzz", Amount: 5}); err != nil {
		t.Fatalf("update of unknown id should not fail: %v", err)
	}
	if err := s.Delete(context.Background(), "zzz"); err != nil {
		t.Fatalf("delete of unknown id should not fail: %v", err)
	}
	if !reflect.DeepEqual(s.Transactions(), initial) {
		t.Fatalf("collection changed: %+v", s.Transactions())
	}
	if repo.saves != 0 || s.Revision() != 0 {
		t.Fatalf("no-op wrote to storage: saves=%d revision=%d", repo.saves, s.Revision())
	}
}

func TestStoreDelete(t *testing.T) {
	repo := &recordingRepo{initial: []core.Transaction{
		{ID: "a", Type: core.Expense}, {ID: "b", Type: core.Expense}, {ID: "c", Type: core.Expense},
	}}
	s := newTestStore(t, repo)

	if err := s.Delete(context.Background(), "b"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if got := storeIDs(s); !slices.Equal(got, []string{"a", "c"}) {
		t.Fatalf("unexpected order after delete: %v", got)
	}
	if _, ok := s.Get("b"); ok {
		t.Fatalf("deleted transaction still present")
	}
	if len(repo.saved) != 2 {
		t.Fatalf("delete not persisted: %+v", repo.saved)
	}
}

func TestStorePersistFailureKeepsMemoryAndSurfacesError(t *testing.T) {
	repo := &recordingRepo{failErr: errors.New("quota exceeded")}
	s := newTestStore(t, repo)

	tx, err := s.Add(context.Background(), draft("rent", 800, "2024-02-01", core.Expense))
	if !errors.Is(err, core.ErrPersist) {
		t.Fatalf("expected ErrPersist, got %v", err)
	}
	if tx.ID == "" {
		t.Fatalf("created transaction should still be returned")
	}
	if _, ok := s.Get(tx.ID); !ok {
		t.Fatalf("in-memory change should be kept")
	}

	tx.Amount = 900
	if err := s.Update(context.Background(), tx); !errors.Is(err, core.ErrPersist) {
		t.Fatalf("expected ErrPersist on update, got %v", err)
	}
	if err := s.Delete(context.Background(), tx.ID); !errors.Is(err, core.ErrPersist) {
		t.Fatalf("expected ErrPersist on delete, got %v", err)
	}
	if s.Len() != 0 {
		t.Fatalf("delete should still apply in memory")
	}
}

func TestStoreDerivationsDoNotReorderCollection(t *testing.T) {
	repo := &recordingRepo{initial: []core.Transaction{
		{ID: "old", Amount: 200, Date: "2023-01-01", Type: core.Income},
		{ID: "new", Amount: 50, Date: "2024-01-01", Type: core.Expense},
		{ID: "mid", Amount: 30, Date: "2023-06-01", Type: core.Expense},
	}}
	s := newTestStore(t, repo)

	if got := s.Recent(2); got[0].ID != "new" || got[1].ID != "mid" {
		t.Fatalf("unexpected recent: %+v", got)
	}
	_ = s.FilterAndSort(core.Filter{Type: core.FilterAll, SortBy: core.SortByAmount})
	if got := storeIDs(s); !slices.Equal(got, []string{"old", "new", "mid"}) {
		t.Fatalf("derivation reordered the store: %v", got)
	}
	if s.TotalByType(core.Expense) != 80 || s.TotalByType(core.Income) != 200 || s.NetIncome() != 120 {
		t.Fatalf("unexpected totals")
	}
	if len(s.MonthlyAggregates()) != 3 {
		t.Fatalf("unexpected monthly buckets: %+v", s.MonthlyAggregates())
	}
}

func TestStoreSurvivesRestartOnSQLite(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "fintrack.db")

	kv, err := storage.NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	s := newTestStore(t, storage.NewTransactionRepository(kv, storage.DefaultKey))
	a, _ := s.Add(ctx, draft("a", 1, "2024-01-01", core.Income))
	b, _ := s.Add(ctx, draft("b", 2, "2024-01-02", core.Expense))
	if err := s.Delete(ctx, a.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	want := s.Transactions()
	kv.Close()

	kv, err = storage.NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer kv.Close()
	reloaded := newTestStore(t, storage.NewTransactionRepository(kv, storage.DefaultKey))
	if !reflect.DeepEqual(reloaded.Transactions(), want) || want[0].ID != b.ID {
		t.Fatalf("reloaded %+v, want %+v", reloaded.Transactions(), want)
	}
}

func TestStoreDeleteUnknownLeavesPersistedStateUnchanged(t *testing.T) {
	ctx := context.Background()
	kv := memory.New()
	s := newTestStore(t, storage.NewTransactionRepository(kv, storage.DefaultKey))
	if _, err := s.Add(ctx, draft("a", 1, "2024-01-01", core.Income)); err != nil {
		t.Fatalf("add: %v", err)
	}
	before, _, _ := kv.Get(ctx, storage.DefaultKey)

	if err := s.Delete(ctx, "does-not-exist"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	after, _, _ := kv.Get(ctx, storage.DefaultKey)
	if string(before) != string(after) {
		t.Fatalf("persisted state changed:\n%s\n%s", before, after)
	}
}

func TestStoreRejectsNonFiniteAmounts(t *testing.T) {
	ctx := context.Background()
	kv := memory.New()
	s := newTestStore(t, storage.NewTransactionRepository(kv, storage.DefaultKey))

	for _, amount := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		if _, err := s.Add(ctx, draft("bad", amount, "2024-01-01", core.Expense)); !errors.Is(err, core.ErrInvalidAmount) {
			t.Fatalf("Add(%v): expected ErrInvalidAmount, got %v", amount, err)
		}
	}
	if s.Len() != 0 || s.Revision() != 0 {
		t.Fatalf("rejected adds changed the store: len=%d revision=%d", s.Len(), s.Revision())
	}

	valid, err := s.Add(ctx, draft("lunch", 12, "2024-01-02", core.Expense))
	if err != nil {
		t.Fatalf("valid add after rejected ones: %v", err)
	}

	bad := valid
	bad.Amount = math.NaN()
	found, err := s.UpdateIfExists(ctx, bad)
	if found || !errors.Is(err, core.ErrInvalidAmount) {
		t.Fatalf("UpdateIfExists(NaN): found=%v err=%v", found, err)
	}
	if got, _ := s.Get(valid.ID); got != valid {
		t.Fatalf("rejected update changed memory: %+v", got)
	}

	if err := s.Delete(ctx, valid.ID); err != nil {
		t.Fatalf("delete after rejected update: %v", err)
	}
	raw, ok, err := kv.Get(ctx, storage.DefaultKey)
	if err != nil || !ok || string(raw) != "[]" {
		t.Fatalf("persisted %q ok=%v err=%v, want []", raw, ok, err)
	}
}

func TestStoreUpdateIfExistsReportsMatch(t *testing.T) {
	repo := &recordingRepo{initial: []core.Transaction{{ID: "a", Amount: 1, Date: "2024-01-01", Description: "a", Type: core.Expense}}}
	s := newTestStore(t, repo)

	found, err := s.UpdateIfExists(context.Background(), core.Transaction{ID: "a", Amount: 2, Date: "2024-01-01", Description: "a", Type: core.Expense})
	if err != nil || !found {
		t.Fatalf("known id: found=%v err=%v", found, err)
	}
	found, err = s.UpdateIfExists(context.Background(), core.Transaction{ID: "gone", Amount: 2})
	if err != nil || found {
		t.Fatalf("unknown id: found=%v err=%v", found, err)
	}
	if repo.saves != 1 {
		t.Fatalf("saves=%d, want 1", repo.saves)
	}
}
