package core

import (
	"fmt"
	"math"
	"slices"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v6"
)

func tx(id string, amount float64, date string, typ TransactionType, desc, cat string) Transaction {
	return Transaction{ID: id, Amount: amount, Date: date, Description: desc, Type: typ, Category: cat}
}

func ids(txs []Transaction) []string {
	out := make([]string, len(txs))
	for i, t := range txs {
		out[i] = t.ID
	}
	return out
}

func TestTotals(t *testing.T) {
	txs := []Transaction{
		tx("1", 200, "2024-01-01", Income, "salary", "Work"),
		tx("2", 50, "2024-01-02", Expense, "groceries", "Food"),
		tx("3", 30, "2024-01-03", Expense, "cinema", "Fun"),
	}
	if got := TotalByType(txs, Expense); got != 80 {
		t.Fatalf("expenses = %v, want 80", got)
	}
	if got := TotalByType(txs, Income); got != 200 {
		t.Fatalf("income = %v, want 200", got)
	}
	if got := NetIncome(txs); got != 120 {
		t.Fatalf("net = %v, want 120", got)
	}
	if got := TotalByType(nil, Income); got != 0 {
		t.Fatalf("empty total = %v, want 0", got)
	}
}

func TestTotalsWithNaNDoNotPanic(t *testing.T) {
	txs := []Transaction{
		tx("1", math.NaN(), "2024-01-01", Expense, "bad", ""),
		tx("2", 10, "2024-01-01", Expense, "ok", ""),
	}
	if got := TotalByType(txs, Expense); !math.IsNaN(got) {
		t.Fatalf("expected NaN to propagate, got %v", got)
	}
	if got := TotalByType(txs, Income); got != 0 {
		t.Fatalf("income should be unaffected, got %v", got)
	}
}

func TestMonthlyAggregatesAcrossYearBoundary(t *testing.T) {
	txs := []Transaction{
		tx("b", 50, "2024-01-05", Income, "gift", ""),
		tx("a", 100, "2023-12-15", Expense, "presents", ""),
	}
	got := MonthlyAggregates(txs)
	if len(got) != 2 {
		t.Fatalf("expected 2 buckets, got %+v", got)
	}
	if got[0].Month != "Dec 2023" || got[0].Expenses != 100 || got[0].Income != 0 {
		t.Fatalf("unexpected first bucket: %+v", got[0])
	}
	if got[1].Month != "Jan 2024" || got[1].Expenses != 0 || got[1].Income != 50 {
		t.Fatalf("unexpected second bucket: %+v", got[1])
	}
}

func TestMonthlyAggregatesOrdersDoubleDigitMonths(t *testing.T) {
	// "2024-10" < "2024-9" as text; the buckets must still come out in month order.
	txs := []Transaction{
		tx("1", 1, "2024-10-01", Expense, "", ""),
		tx("2", 2, "2024-09-30", Expense, "", ""),
		tx("3", 3, "2024-02-10", Income, "", ""),
		tx("4", 4, "2024-10-20", Expense, "", ""),
		tx("5", 5, "2025-01-01", Income, "", ""),
	}
	got := MonthlyAggregates(txs)
	var labels []string
	for _, b := range got {
		labels = append(labels, b.Month)
	}
	want := []string{"Feb 2024", "Sep 2024", "Oct 2024", "Jan 2025"}
	if !slices.Equal(labels, want) {
		t.Fatalf("labels = %v, want %v", labels, want)
	}
	if got[2].Expenses != 5 {
		t.Fatalf("October expenses = %v, want 5", got[2].Expenses)
	}
	if got[2].Year != 2024 || got[2].MonthNumber != 10 {
		t.Fatalf("October key = %d/%d", got[2].Year, got[2].MonthNumber)
	}
}

func TestMonthlyAggregatesSkipsInvalidDates(t *testing.T) {
	txs := []Transaction{
		tx("1", 10, "not a date", Expense, "", ""),
		tx("2", 20, "2024-05-05", Expense, "", ""),
	}
	got := MonthlyAggregates(txs)
	if len(got) != 1 || got[0].Expenses != 20 {
		t.Fatalf("unexpected buckets: %+v", got)
	}
	if empty := MonthlyAggregates(nil); len(empty) != 0 {
		t.Fatalf("expected no buckets, got %+v", empty)
	}
}

func TestRecent(t *testing.T) {
	txs := []Transaction{
		tx("a", 1, "2024-01-01", Expense, "", ""),
		tx("b", 1, "2024-03-01", Expense, "", ""),
		tx("c", 1, "2024-02-01", Expense, "", ""),
		tx("d", 1, "2024-03-01", Income, "", ""),
	}
	before := slices.Clone(txs)

	got := Recent(txs, 2)
	if want := []string{"b", "d"}; !slices.Equal(ids(got), want) {
		t.Fatalf("recent(2) = %v, want %v", ids(got), want)
	}

	all := Recent(txs, 10)
	if want := []string{"b", "d", "c", "a"}; !slices.Equal(ids(all), want) {
		t.Fatalf("recent(10) = %v, want %v", ids(all), want)
	}

	if !slices.Equal(txs, before) {
		t.Fatalf("Recent reordered its input: %v", ids(txs))
	}
	if got := Recent(txs, 0); len(got) != 0 {
		t.Fatalf("recent(0) = %v", ids(got))
	}
}

func TestRecentInvalidDatesSortLast(t *testing.T) {
	txs := []Transaction{
		tx("bad", 1, "garbage", Expense, "", ""),
		tx("old", 1, "1999-01-01", Expense, "", ""),
	}
	if got := ids(Recent(txs, 2)); !slices.Equal(got, []string{"old", "bad"}) {
		t.Fatalf("got %v", got)
	}
}

func TestFilterAndSort(t *testing.T) {
	txs := []Transaction{
		tx("1", 15, "2024-01-10", Expense, "Lunch at cafe", "Food"),
		tx("2", 2000, "2024-01-01", Income, "Salary", "Work"),
		tx("3", 60, "2024-01-20", Expense, "Train ticket", "Transport"),
		tx("4", 60, "2024-01-05", Income, "Sold FOOD processor", "Misc"),
	}

	cases := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{"all by date", Filter{Type: FilterAll, SortBy: SortByDate}, []string{"3", "1", "4", "2"}},
		{"all by amount keeps ties stable", Filter{Type: FilterAll, SortBy: SortByAmount}, []string{"2", "3", "4", "1"}},
		{"expense only", Filter{Type: "expense", SortBy: SortByDate}, []string{"3", "1"}},
		{"income by amount", Filter{Type: "income", SortBy: SortByAmount}, []string{"2", "4"}},
		{"search matches description and category", Filter{Type: FilterAll, Search: "food", SortBy: SortByDate}, []string{"1", "4"}},
		{"search and type compose", Filter{Type: "income", Search: "FoOd", SortBy: SortByDate}, []string{"4"}},
		{"no match", Filter{Type: FilterAll, Search: "rent", SortBy: SortByDate}, []string{}},
		{"empty type means all", Filter{SortBy: SortByDate}, []string{"3", "1", "4", "2"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := FilterAndSort(txs, tc.filter)
			if !slices.Equal(ids(got), tc.want) {
				t.Fatalf("got %v, want %v", ids(got), tc.want)
			}
		})
	}
	if got := ids(txs); !slices.Equal(got, []string{"1", "2", "3", "4"}) {
		t.Fatalf("FilterAndSort reordered its input: %v", got)
	}
}

func TestFilterAndSortEmptyFilterReturnsWholeCollection(t *testing.T) {
	f := gofakeit.New(42)
	start := time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	txs := make([]Transaction, 200)
	for i := range txs {
		typ := Expense
		if f.Bool() {
			typ = Income
		}
		txs[i] = tx(fmt.Sprintf("t%d", i), f.Float64Range(0, 5000),
			f.DateRange(start, end).Format("2006-01-02"), typ, f.Sentence(3), f.Word())
	}

	got := FilterAndSort(txs, Filter{Type: FilterAll, Search: "", SortBy: SortByDate})
	if len(got) != len(txs) {
		t.Fatalf("got %d transactions, want %d", len(got), len(txs))
	}

	seen := make(map[string]bool, len(got))
	for i, g := range got {
		seen[g.ID] = true
		if i > 0 && dateOrZero(got[i-1].Date).Before(dateOrZero(g.Date)) {
			t.Fatalf("not sorted by date at %d: %s before %s", i, got[i-1].Date, g.Date)
		}
	}
	for _, o := range txs {
		if !seen[o.ID] {
			t.Fatalf("missing %s from result", o.ID)
		}
	}
}

func TestSummarize(t *testing.T) {
	txs := []Transaction{
		tx("1", 200, "2024-01-01", Income, "", ""),
		tx("2", 50, "2024-02-02", Expense, "", ""),
		tx("3", 30, "2024-02-03", Expense, "", ""),
	}
	s := Summarize(txs)
	if s.TotalIncome != 200 || s.TotalExpenses != 80 || s.NetIncome != 120 || s.Count != 3 {
		t.Fatalf("unexpected summary: %+v", s)
	}
	if want := []string{"3", "2", "1"}; !slices.Equal(ids(s.Recent), want) {
		t.Fatalf("recent = %v, want %v", ids(s.Recent), want)
	}
	if len(s.Monthly) != 2 {
		t.Fatalf("monthly = %+v", s.Monthly)
	}
}
