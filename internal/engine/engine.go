// Package engine computes dashboard aggregates from transaction snapshots.
//
// Every function here is pure: it takes a fully materialized snapshot and
// returns a fresh result without mutating its input or holding state between
// calls. Empty snapshots always degrade to zero-valued output, never errors,
// and every ratio is division-guarded so NaN and Inf can never leak to the
// presentation layer.
package engine

import (
	"sort"
	"time"

	"finboard/internal/core"
)

const (
	// DefaultTrendWindowDays is the trailing window used by DailyTrend when
	// the caller does not specify one.
	DefaultTrendWindowDays = 30

	// DefaultTopExpensesLimit bounds TopExpenses when no limit is given.
	DefaultTopExpensesLimit = 5

	// avgDailySpendingDivisor is a fixed divisor: average daily spending is
	// total expenses over 30 days regardless of the actual span of the data.
	// Inherited behavior, kept behind this constant so a real-span variant
	// can replace it without touching call sites.
	avgDailySpendingDivisor = 30

	// trendLabelLayout keys daily buckets by weekday plus day of month,
	// e.g. "Mon 5". Two calendar dates 28 days apart can render the same
	// label and merge into one bucket. Inherited limitation, kept.
	trendLabelLayout = "Mon 2"
)

var monthNames = [12]string{
	"Jan", "Feb", "Mar", "Apr", "May", "Jun",
	"Jul", "Aug", "Sep", "Oct", "Nov", "Dec",
}

type (
	// MonthBucket is one of twelve fixed calendar-month slots. Bucketing is
	// by month of year, not month plus year: the same month from different
	// years merges.
	MonthBucket struct {
		Month            string `json:"month"`
		IncomeCents      int64  `json:"income_cents"`
		ExpenseCents     int64  `json:"expense_cents"`
		BalanceCents     int64  `json:"balance_cents"`
		TransactionCount int    `json:"transaction_count"`
	}

	CategorySum struct {
		Name           string  `json:"name"`
		ValueCents     int64   `json:"value_cents"`
		Count          int     `json:"count"`
		AvgAmountCents float64 `json:"avg_amount_cents"`
	}

	DayBucket struct {
		Label            string `json:"date"`
		AmountCents      int64  `json:"amount_cents"`
		TransactionCount int    `json:"transaction_count"`
	}

	SourceSum struct {
		Name       string `json:"name"`
		ValueCents int64  `json:"value_cents"`
		Count      int    `json:"count"`
	}

	Patterns struct {
		Weekday   map[string]int64 `json:"weekday"`
		TimeOfDay map[string]int64 `json:"time_of_day"`
	}

	Metrics struct {
		TotalIncomeCents      int64   `json:"total_income_cents"`
		TotalExpenseCents     int64   `json:"total_expense_cents"`
		BalanceCents          int64   `json:"balance_cents"`
		AvgDailySpendingCents float64 `json:"avg_daily_spending_cents"`
		SavingsRate           float64 `json:"savings_rate"`
		TransactionCount      int     `json:"transaction_count"`
		AvgTransactionCents   float64 `json:"avg_transaction_cents"`
		IncomeGrowth          float64 `json:"income_growth"`
		ExpenseGrowth         float64 `json:"expense_growth"`
		MostSpentCategory     string  `json:"most_spent_category"`
		LargestExpenseCents   int64   `json:"largest_expense_cents"`
	}
)

// MonthlySeries buckets every transaction into twelve calendar-month slots
// in Jan..Dec order. All buckets are zero-initialized, so the result always
// has exactly twelve entries regardless of input.
func MonthlySeries(txs []core.Transaction) []MonthBucket {
	buckets := make([]MonthBucket, 12)
	for i := range buckets {
		buckets[i].Month = monthNames[i]
	}
	for _, tx := range txs {
		b := &buckets[int(tx.Date.Time.Month())-1]
		switch tx.Type {
		case core.Income:
			b.IncomeCents += tx.Amount.Cents
		default:
			b.ExpenseCents += tx.Amount.Cents
		}
		b.TransactionCount++
		b.BalanceCents = b.IncomeCents - b.ExpenseCents
	}
	return buckets
}

// CategoryBreakdown groups expense transactions by category, sorted by
// descending total. Ties keep first-seen order, so the result is
// deterministic for identical input.
func CategoryBreakdown(txs []core.Transaction) []CategorySum {
	index := make(map[string]int)
	sums := make([]CategorySum, 0)
	for _, tx := range txs {
		if tx.Type != core.Expense {
			continue
		}
		i, ok := index[tx.Category]
		if !ok {
			i = len(sums)
			index[tx.Category] = i
			sums = append(sums, CategorySum{Name: tx.Category})
		}
		sums[i].ValueCents += tx.Amount.Cents
		sums[i].Count++
	}
	for i := range sums {
		if sums[i].Count > 0 {
			sums[i].AvgAmountCents = float64(sums[i].ValueCents) / float64(sums[i].Count)
		}
	}
	sort.SliceStable(sums, func(i, j int) bool {
		return sums[i].ValueCents > sums[j].ValueCents
	})
	return sums
}

// DailyTrend builds exactly windowDays zero-initialized buckets ending at
// now (inclusive), in chronological order, and accumulates expense
// transactions from the trailing window into them by label match.
func DailyTrend(txs []core.Transaction, now time.Time, windowDays int) []DayBucket {
	if windowDays <= 0 {
		windowDays = DefaultTrendWindowDays
	}

	end := truncateDay(now)
	start := end.AddDate(0, 0, -(windowDays - 1))

	buckets := make([]DayBucket, windowDays)
	index := make(map[string]int, windowDays)
	for i := 0; i < windowDays; i++ {
		label := start.AddDate(0, 0, i).Format(trendLabelLayout)
		buckets[i].Label = label
		index[label] = i
	}

	for _, tx := range txs {
		if tx.Type != core.Expense {
			continue
		}
		day := truncateDay(tx.Date.Time)
		if day.Before(start) || day.After(end) {
			continue
		}
		if i, ok := index[day.Format(trendLabelLayout)]; ok {
			buckets[i].AmountCents += tx.Amount.Cents
			buckets[i].TransactionCount++
		}
	}
	return buckets
}

// TopExpenses returns the largest expense transactions, sorted non-increasing
// by amount. Ties keep original relative order. limit <= 0 falls back to
// DefaultTopExpensesLimit.
func TopExpenses(txs []core.Transaction, limit int) []core.Transaction {
	if limit <= 0 {
		limit = DefaultTopExpensesLimit
	}
	expenses := make([]core.Transaction, 0, len(txs))
	for _, tx := range txs {
		if tx.Type == core.Expense {
			expenses = append(expenses, tx)
		}
	}
	sort.SliceStable(expenses, func(i, j int) bool {
		return expenses[i].Amount.Cents > expenses[j].Amount.Cents
	})
	if len(expenses) > limit {
		expenses = expenses[:limit]
	}
	return expenses
}

// SpendingPatterns totals expenses by weekday name and by time-of-day
// bucket. Transactions without a time component land in the Night bucket
// (hour defaults to 0).
func SpendingPatterns(txs []core.Transaction) Patterns {
	p := Patterns{
		Weekday:   make(map[string]int64),
		TimeOfDay: make(map[string]int64),
	}
	for _, tx := range txs {
		if tx.Type != core.Expense {
			continue
		}
		p.Weekday[tx.Date.Weekday().String()] += tx.Amount.Cents
		p.TimeOfDay[timeOfDayBucket(tx.Date.Hour())] += tx.Amount.Cents
	}
	return p
}

// KeyMetrics computes the headline dashboard numbers: full-snapshot totals,
// the fixed-divisor daily average, savings rate, growth between the last
// two monthly slots, top category and largest single expense.
func KeyMetrics(txs []core.Transaction) Metrics {
	var m Metrics
	for _, tx := range txs {
		switch tx.Type {
		case core.Income:
			m.TotalIncomeCents += tx.Amount.Cents
		default:
			m.TotalExpenseCents += tx.Amount.Cents
		}
		m.TransactionCount++
	}
	m.BalanceCents = m.TotalIncomeCents - m.TotalExpenseCents
	m.AvgDailySpendingCents = float64(m.TotalExpenseCents) / avgDailySpendingDivisor
	if m.TotalIncomeCents > 0 {
		m.SavingsRate = float64(m.TotalIncomeCents-m.TotalExpenseCents) / float64(m.TotalIncomeCents) * 100
	}
	if m.TransactionCount > 0 {
		m.AvgTransactionCents = float64(m.TotalIncomeCents+m.TotalExpenseCents) / float64(m.TransactionCount)
	}

	// Growth compares the last two array slots of the monthly series (Nov
	// vs Dec), not the two most recent real months. Inherited behavior of
	// the month-of-year bucketing.
	series := MonthlySeries(txs)
	last, prev := series[11], series[10]
	m.IncomeGrowth = growth(last.IncomeCents, prev.IncomeCents)
	m.ExpenseGrowth = growth(last.ExpenseCents, prev.ExpenseCents)

	if breakdown := CategoryBreakdown(txs); len(breakdown) > 0 {
		m.MostSpentCategory = breakdown[0].Name
	} else {
		m.MostSpentCategory = "N/A"
	}
	if top := TopExpenses(txs, 1); len(top) > 0 {
		m.LargestExpenseCents = top[0].Amount.Cents
	}
	return m
}

func growth(current, previous int64) float64 {
	if previous <= 0 {
		return 0
	}
	return float64(current-previous) / float64(previous) * 100
}

func timeOfDayBucket(hour int) string {
	switch {
	case hour >= 5 && hour <= 11:
		return "Morning"
	case hour >= 12 && hour <= 16:
		return "Afternoon"
	case hour >= 17 && hour <= 21:
		return "Evening"
	default:
		return "Night"
	}
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
