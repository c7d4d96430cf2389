package core

// MonthlyBucket aggregates the transactions of one calendar month.
type MonthlyBucket struct {
	Month    string  `json:"month"` // "Jan 2024"
	Expenses float64 `json:"expenses"`
	Income   float64 `json:"income"`

	Year        int `json:"year"`
	MonthNumber int `json:"monthNumber"` // 1-12
}

// Summary is the dashboard view over the whole collection.
type Summary struct {
	TotalIncome   float64         `json:"totalIncome"`
	TotalExpenses float64         `json:"totalExpenses"`
	NetIncome     float64         `json:"netIncome"`
	Count         int             `json:"count"`
	Recent        []Transaction   `json:"recent"`
	Monthly       []MonthlyBucket `json:"monthly"`
}

// RecentOnDashboard is how many transactions the summary lists.
const RecentOnDashboard = 5

// Summarize computes every dashboard derivation from one snapshot.
func Summarize(txs []Transaction) Summary {
	income := TotalByType(txs, Income)
	expenses := TotalByType(txs, Expense)
	return Summary{
		TotalIncome:   income,
		TotalExpenses: expenses,
		NetIncome:     income - expenses,
		Count:         len(txs),
		Recent:        Recent(txs, RecentOnDashboard),
		Monthly:       MonthlyAggregates(txs),
	}
}
