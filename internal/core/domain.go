package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

type (
	TransactionType string

	// Date wraps time.Time. The clock portion is kept because spending
	// pattern analysis buckets by hour of day; midnight means the record
	// carries no time component.
	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	Transaction struct {
		ID          string // opaque stable identifier (UUID)
		Description string
		Category    string
		Date        Date
		Amount      Money
		Type        TransactionType
	}

	BudgetEntry struct {
		Category  string
		Allocated Money // monthly limit
		Spent     Money // running total of expenses in the category
	}

	SavingsGoal struct {
		Name       string
		Category   string
		Target     Money
		Current    Money
		TargetDate *Date // optional
	}

	Bill struct {
		ID          int64
		Description string
		Amount      Money
		DueDate     Date
		Paid        bool
		Category    string
	}
)

var (
	ErrInvalidDate       = errors.New("invalid date")
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrInvalidType       = errors.New("invalid transaction type")
	ErrEmptyDescription  = errors.New("empty description")
	ErrEmptyCategory     = errors.New("empty category")
	ErrDuplicateCategory = errors.New("duplicate budget category")
	ErrNotFound          = errors.New("not found")
)

// NewDate creates a Date at midnight UTC (no time component).
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// NewDateTime creates a Date carrying a time component.
func NewDateTime(year, month, day, hour, min int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, hour, min, 0, 0, time.UTC)}
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// HasClock reports whether the date carries a time component.
// Records created from a bare calendar date sit at midnight.
func (d Date) HasClock() bool {
	return d.Hour() != 0 || d.Minute() != 0 || d.Second() != 0
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (t TransactionType) Validate() error {
	switch t {
	case Income, Expense:
		return nil
	}
	return ErrInvalidType
}

// Validate enforces the creation-time invariants: positive amount, known
// type, a real date and a non-empty description. Aggregations assume these
// hold and only guard divisions themselves.
func (t Transaction) Validate() error {
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if len(strings.TrimSpace(t.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(t.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if err := t.Type.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(t.Category) == "" {
		return ErrEmptyCategory
	}
	return nil
}

func (b BudgetEntry) Validate() error {
	if strings.TrimSpace(b.Category) == "" {
		return ErrEmptyCategory
	}
	if err := b.Allocated.Validate(); err != nil {
		return err
	}
	if b.Spent.Cents < 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (g SavingsGoal) Validate() error {
	if err := g.Target.Validate(); err != nil {
		return err
	}
	if g.Current.Cents < 0 {
		return ErrInvalidAmount
	}
	if g.TargetDate != nil {
		if err := g.TargetDate.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func (b Bill) Validate() error {
	if len(strings.TrimSpace(b.Description)) == 0 {
		return ErrEmptyDescription
	}
	if err := b.Amount.Validate(); err != nil {
		return err
	}
	if err := b.DueDate.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(b.Category) == "" {
		return ErrEmptyCategory
	}
	return nil
}
