// Package seed generates plausible demo transactions.
package seed

import (
	"math"
	"time"

	"github.com/brianvoe/gofakeit/v6"

	"fintrack/internal/core"
)

var (
	expenseCategories = []string{"Food", "Rent", "Transport", "Utilities", "Health", "Entertainment", "Shopping"}
	incomeCategories  = []string{"Salary", "Freelance", "Gifts", "Investments"}
)

// Generator produces drafts dated within the last Months months before Now.
type Generator struct {
	Faker  *gofakeit.Faker
	Months int
	Now    time.Time
}

// NewGenerator returns a generator seeded with seed. A zero seed draws a
// random one.
func NewGenerator(seed int64, months int) *Generator {
	if months < 1 {
		months = 1
	}
	return &Generator{
		Faker:  gofakeit.New(seed),
		Months: months,
		Now:    time.Now(),
	}
}

// Drafts returns n valid drafts. Roughly one in five is an income.
func (g *Generator) Drafts(n int) []core.TransactionDraft {
	start := g.Now.AddDate(0, -g.Months, 0)
	out := make([]core.TransactionDraft, 0, max(n, 0))
	for i := 0; i < n; i++ {
		out = append(out, g.draft(start))
	}
	return out
}

func (g *Generator) draft(start time.Time) core.TransactionDraft {
	f := g.Faker
	d := core.TransactionDraft{
		Date:        f.DateRange(start, g.Now).Format("2006-01-02"),
		Description: f.Sentence(3),
	}
	if f.Number(1, 5) == 1 {
		d.Type = core.Income
		d.Category = f.RandomString(incomeCategories)
		d.Amount = cents(f.Float64Range(200, 3000))
	} else {
		d.Type = core.Expense
		d.Category = f.RandomString(expenseCategories)
		d.Amount = cents(f.Float64Range(1, 250))
	}
	return d
}

func cents(v float64) float64 {
	return math.Round(v*100) / 100
}
