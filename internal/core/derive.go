// Package core holds the finance domain types and the derivations computed
// from a transaction collection.
//
// Every derivation is a pure function: it reads the slice it is given and
// never reorders or modifies it. Amounts are summed as given, so a negative or
// NaN amount already in the data makes the aggregate meaningless but never
// panics. Transactions whose date cannot be parsed sort as the oldest entries
// and are left out of monthly buckets.
package core

import (
	"slices"
	"sort"
	"strings"
	"time"
)

// Values accepted by Filter.Type and Filter.SortBy.
const (
	FilterAll    = "all"
	SortByDate   = "date"
	SortByAmount = "amount"
)

// Filter selects and orders transactions for list views.
type Filter struct {
	Type   string // "all", "income" or "expense"
	Search string // case-insensitive, matched against description and category
	SortBy string // "date" or "amount"
}

// TotalByType sums the amounts of all transactions of the given type.
func TotalByType(txs []Transaction, typ TransactionType) float64 {
	var total float64
	for _, t := range txs {
		if t.Type == typ {
			total += t.Amount
		}
	}
	return total
}

// NetIncome is total income minus total expenses.
func NetIncome(txs []Transaction) float64 {
	return TotalByType(txs, Income) - TotalByType(txs, Expense)
}

// Recent returns the n most recent transactions, newest first. Ties keep the
// collection order.
func Recent(txs []Transaction, n int) []Transaction {
	if n <= 0 {
		return []Transaction{}
	}
	out := slices.Clone(txs)
	sortByDateDesc(out)
	if n < len(out) {
		out = out[:n]
	}
	return out
}

// FilterAndSort returns the transactions matching f, ordered by f.SortBy.
// An empty Type means "all"; an unknown SortBy orders by date.
func FilterAndSort(txs []Transaction, f Filter) []Transaction {
	search := strings.ToLower(f.Search)
	out := make([]Transaction, 0, len(txs))
	for _, t := range txs {
		if f.Type != "" && f.Type != FilterAll && string(t.Type) != f.Type {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(t.Description), search) &&
			!strings.Contains(strings.ToLower(t.Category), search) {
			continue
		}
		out = append(out, t)
	}

	if f.SortBy == SortByAmount {
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].Amount > out[j].Amount
		})
	} else {
		sortByDateDesc(out)
	}
	return out
}

// MonthlyAggregates groups transactions by calendar month and returns the
// buckets in chronological order.
func MonthlyAggregates(txs []Transaction) []MonthlyBucket {
	byKey := make(map[int]*MonthlyBucket)
	for _, t := range txs {
		d, err := ParseDate(t.Date)
		if err != nil {
			continue
		}
		key := monthKey(d)
		b, ok := byKey[key]
		if !ok {
			b = &MonthlyBucket{
				Month:       d.Format("Jan 2006"),
				Year:        d.Year(),
				MonthNumber: int(d.Month()),
			}
			byKey[key] = b
		}
		switch t.Type {
		case Expense:
			b.Expenses += t.Amount
		case Income:
			b.Income += t.Amount
		}
	}

	keys := make([]int, 0, len(byKey))
	for k := range byKey {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	out := make([]MonthlyBucket, 0, len(keys))
	for _, k := range keys {
		out = append(out, *byKey[k])
	}
	return out
}

// monthKey orders months as integers; year*12 keeps December before January.
func monthKey(d time.Time) int {
	return d.Year()*12 + int(d.Month()) - 1
}

func sortByDateDesc(txs []Transaction) {
	dates := make(map[string]time.Time, len(txs))
	for _, t := range txs {
		if _, ok := dates[t.Date]; !ok {
			dates[t.Date] = dateOrZero(t.Date)
		}
	}
	sort.SliceStable(txs, func(i, j int) bool {
		return dates[txs[i].Date].After(dates[txs[j].Date])
	})
}
