// Package budget evaluates budget consumption and maintains budget
// collections with category uniqueness.
package budget

import (
	"fmt"

	"finboard/internal/core"
)

// Status is the traffic-light consumption band of a budget entry.
type Status string

const (
	StatusSafe    Status = "safe"    // below 85%
	StatusWarning Status = "warning" // 85% to just under 100%
	StatusOver    Status = "over"    // 100% and above
)

const warningThreshold = 85.0

type Evaluation struct {
	Percentage     float64 `json:"percentage"`
	RemainingCents int64   `json:"remaining_cents"`
	Status         Status  `json:"status"`
}

// Evaluate computes spent/allocated consumption for one entry. A
// non-positive allocation yields 0%, never Inf, and remaining may go
// negative to signal overspend.
func Evaluate(e core.BudgetEntry) Evaluation {
	ev := Evaluation{
		RemainingCents: e.Allocated.Cents - e.Spent.Cents,
	}
	if e.Allocated.Cents > 0 {
		ev.Percentage = float64(e.Spent.Cents) / float64(e.Allocated.Cents) * 100
	}
	switch {
	case ev.Percentage >= 100:
		ev.Status = StatusOver
	case ev.Percentage >= warningThreshold:
		ev.Status = StatusWarning
	default:
		ev.Status = StatusSafe
	}
	return ev
}

// Upsert returns a new slice with payload applied. An empty existing
// category means create; creating a category that already exists fails with
// core.ErrDuplicateCategory (case-sensitive match). Editing the entry
// identified by existing is always allowed against itself, but renaming it
// onto another entry's category is a duplicate. The input slice is never
// mutated.
func Upsert(entries []core.BudgetEntry, existing string, payload core.BudgetEntry) ([]core.BudgetEntry, error) {
	if err := payload.Validate(); err != nil {
		return nil, fmt.Errorf("validate budget entry: %w", err)
	}

	out := make([]core.BudgetEntry, len(entries))
	copy(out, entries)

	if existing == "" {
		for _, e := range out {
			if e.Category == payload.Category {
				return nil, core.ErrDuplicateCategory
			}
		}
		return append(out, payload), nil
	}

	target := -1
	for i, e := range out {
		if e.Category == existing {
			target = i
			continue
		}
		if e.Category == payload.Category {
			return nil, core.ErrDuplicateCategory
		}
	}
	if target < 0 {
		return nil, fmt.Errorf("budget category %q: %w", existing, core.ErrNotFound)
	}
	out[target] = payload
	return out, nil
}
