// Package bills classifies bill due dates for the upcoming-bills view.
package bills

import (
	"sort"
	"time"

	"finboard/internal/core"
)

// Status describes where a bill stands relative to its due date.
type Status string

const (
	StatusPaid     Status = "paid"
	StatusOverdue  Status = "overdue"
	StatusDueSoon  Status = "due_soon"
	StatusUpcoming Status = "upcoming"
)

// dueSoonWindowDays is how far ahead a bill counts as due soon.
const dueSoonWindowDays = 7

// DueStatus classifies one bill against today. Paid wins over everything;
// an unpaid bill strictly before today is overdue.
func DueStatus(b core.Bill, today time.Time) Status {
	if b.Paid {
		return StatusPaid
	}
	day := truncateDay(today)
	due := truncateDay(b.DueDate.Time)
	switch {
	case due.Before(day):
		return StatusOverdue
	case !due.After(day.AddDate(0, 0, dueSoonWindowDays)):
		return StatusDueSoon
	default:
		return StatusUpcoming
	}
}

// SortByDueDate returns a new slice ordered by ascending due date, ties by
// ID for determinism. The input is not mutated.
func SortByDueDate(list []core.Bill) []core.Bill {
	out := make([]core.Bill, len(list))
	copy(out, list)
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].DueDate.Equal(out[j].DueDate.Time) {
			return out[i].DueDate.Before(out[j].DueDate.Time)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Unpaid filters to unpaid bills, ordered by ascending due date.
func Unpaid(list []core.Bill) []core.Bill {
	unpaid := make([]core.Bill, 0, len(list))
	for _, b := range list {
		if !b.Paid {
			unpaid = append(unpaid, b)
		}
	}
	return SortByDueDate(unpaid)
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
