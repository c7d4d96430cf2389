package core

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"unicode/utf8"
)

// MaxDescriptionLen is the longest accepted description, in characters.
const MaxDescriptionLen = 200

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

type (
	TransactionType string

	// Transaction is one recorded income or expense event. Amount is a
	// magnitude; the sign is implied by Type.
	Transaction struct {
		ID          string          `json:"id"`
		Amount      float64         `json:"amount"`
		Date        string          `json:"date"`
		Description string          `json:"description"`
		Type        TransactionType `json:"type"`
		Category    string          `json:"category"`
	}

	// TransactionDraft is a Transaction before the store has assigned an ID.
	TransactionDraft struct {
		Amount      float64         `json:"amount"`
		Date        string          `json:"date"`
		Description string          `json:"description"`
		Type        TransactionType `json:"type"`
		Category    string          `json:"category"`
	}
)

var (
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrInvalidDate        = errors.New("invalid date")
	ErrInvalidType        = errors.New("invalid transaction type")
	ErrEmptyDescription   = errors.New("empty description")
	ErrDescriptionTooLong = errors.New("description too long")

	// ErrPersist marks a mutation that was applied in memory but could not be
	// written to durable storage.
	ErrPersist = errors.New("persist transactions")
)

func (t TransactionType) IsValid() bool {
	switch t {
	case Income, Expense:
		return true
	default:
		return false
	}
}

func (t TransactionType) String() string {
	return string(t)
}

// WithID returns the transaction built from the draft and the given id.
func (d TransactionDraft) WithID(id string) Transaction {
	return Transaction{
		ID:          id,
		Amount:      d.Amount,
		Date:        d.Date,
		Description: d.Description,
		Type:        d.Type,
		Category:    d.Category,
	}
}

// Validate checks caller input. The store and the derivations never call it;
// rejecting bad input is up to whoever accepts it.
func (d TransactionDraft) Validate() error {
	if math.IsNaN(d.Amount) || math.IsInf(d.Amount, 0) || d.Amount <= 0 {
		return ErrInvalidAmount
	}
	if len(strings.TrimSpace(d.Description)) == 0 {
		return ErrEmptyDescription
	}
	if n := utf8.RuneCountInString(d.Description); n > MaxDescriptionLen {
		return fmt.Errorf("%w: %d characters, max %d", ErrDescriptionTooLong, n, MaxDescriptionLen)
	}
	if _, err := ParseDate(d.Date); err != nil {
		return err
	}
	if !d.Type.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidType, d.Type)
	}
	return nil
}

// Draft strips the id from the transaction.
func (t Transaction) Draft() TransactionDraft {
	return TransactionDraft{
		Amount:      t.Amount,
		Date:        t.Date,
		Description: t.Description,
		Type:        t.Type,
		Category:    t.Category,
	}
}
