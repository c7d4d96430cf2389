package http

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"fintrack/internal/core"
	applog "fintrack/internal/log"
)

type totalsResponse struct {
	Income   float64 `json:"income"`
	Expenses float64 `json:"expenses"`
	Net      float64 `json:"net"`
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	f, err := ParseFilter(r.URL.Query())
	if err != nil {
		s.respond(w, r, BadRequest(err.Error()))
		return
	}
	s.respond(w, r, NewJSONResponse().Body(s.store.FilterAndSort(f)))
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sl := applog.NewStructuredLogger(applog.FromContext(ctx).WithComponent(applog.ComponentHTTP))

	d, ok := s.decodeValidDraft(w, r)
	if !ok {
		return
	}

	t, err := s.store.Add(ctx, d)
	if err != nil {
		sl.LogError(ctx, "Transaction created but not persisted", err, applog.OpCreate,
			applog.NewFields().WithTransaction(t.ID, string(t.Type), t.Amount, t.Category))
		s.respond(w, r, NewJSONResponse().NotDurable(persistMessage(err), t))
		return
	}

	sl.LogTransactionChanged(ctx, applog.OpCreate, t.ID, string(t.Type), t.Amount, t.Category)
	s.respond(w, r, NewJSONResponse().
		Status(http.StatusCreated).
		Header("Location", "/api/transactions/"+t.ID).
		Body(t))
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	t, ok := s.store.Get(id)
	if !ok {
		s.respond(w, r, NotFound("transaction not found"))
		return
	}
	s.respond(w, r, NewJSONResponse().Body(t))
}

// handleUpdate answers 404 for unknown IDs. The store itself would silently
// ignore them.
func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sl := applog.NewStructuredLogger(applog.FromContext(ctx).WithComponent(applog.ComponentHTTP))

	id := mux.Vars(r)["id"]
	if _, ok := s.store.Get(id); !ok {
		s.respond(w, r, NotFound("transaction not found"))
		return
	}

	d, ok := s.decodeValidDraft(w, r)
	if !ok {
		return
	}

	t := d.WithID(id)
	found, err := s.store.UpdateIfExists(ctx, t)
	if err != nil {
		sl.LogError(ctx, "Transaction updated but not persisted", err, applog.OpUpdate,
			applog.NewFields().WithTransaction(t.ID, string(t.Type), t.Amount, t.Category))
		s.respond(w, r, NewJSONResponse().NotDurable(persistMessage(err), t))
		return
	}
	// Deleted between the lookup above and the update.
	if !found {
		s.respond(w, r, NotFound("transaction not found"))
		return
	}

	sl.LogTransactionChanged(ctx, applog.OpUpdate, t.ID, string(t.Type), t.Amount, t.Category)
	s.respond(w, r, NewJSONResponse().Body(t))
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sl := applog.NewStructuredLogger(applog.FromContext(ctx).WithComponent(applog.ComponentHTTP))

	id := mux.Vars(r)["id"]
	existing, known := s.store.Get(id)
	if err := s.store.Delete(ctx, id); err != nil {
		sl.LogError(ctx, "Transaction deleted but not persisted", err, applog.OpDelete,
			applog.NewFields().WithTransaction(id, string(existing.Type), existing.Amount, existing.Category))
		s.respond(w, r, NewJSONResponse().NotDurable(persistMessage(err), nil))
		return
	}

	if known {
		sl.LogTransactionChanged(ctx, applog.OpDelete, id, string(existing.Type), existing.Amount, existing.Category)
	}
	s.respond(w, r, NewJSONResponse().Status(http.StatusNoContent))
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	s.respond(w, r, NewJSONResponse().Body(s.dashboard.Summary(r.Context())))
}

func (s *Server) handleRecent(w http.ResponseWriter, r *http.Request) {
	n, err := ParseLimit(r.URL.Query(), "n", core.RecentOnDashboard)
	if err != nil {
		s.respond(w, r, BadRequest(err.Error()))
		return
	}
	s.respond(w, r, NewJSONResponse().Body(s.store.Recent(n)))
}

func (s *Server) handleMonthly(w http.ResponseWriter, r *http.Request) {
	s.respond(w, r, NewJSONResponse().Body(s.store.MonthlyAggregates()))
}

// handleTotals derives all three figures from one snapshot so they agree.
func (s *Server) handleTotals(w http.ResponseWriter, r *http.Request) {
	txs, _ := s.store.Snapshot()
	s.respond(w, r, NewJSONResponse().Body(totalsResponse{
		Income:   core.TotalByType(txs, core.Income),
		Expenses: core.TotalByType(txs, core.Expense),
		Net:      core.NetIncome(txs),
	}))
}

// decodeValidDraft writes the error response itself and reports false when the
// body is unusable.
func (s *Server) decodeValidDraft(w http.ResponseWriter, r *http.Request) (core.TransactionDraft, bool) {
	d, err := DecodeDraft(w, r)
	if err != nil {
		s.respond(w, r, BadRequest(err.Error()))
		return d, false
	}
	if err := d.Validate(); err != nil {
		s.respond(w, r, Unprocessable(err.Error()))
		return d, false
	}
	return d, true
}

func persistMessage(err error) string {
	if errors.Is(err, core.ErrPersist) {
		return "change applied in memory but could not be saved"
	}
	return err.Error()
}
