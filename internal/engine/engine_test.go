package engine

import (
	"reflect"
	"testing"
	"time"

	"finboard/internal/core"
)

func tx(typ core.TransactionType, category string, cents int64, d core.Date) core.Transaction {
	return core.Transaction{
		Description: "test",
		Category:    category,
		Date:        d,
		Amount:      core.Money{Cents: cents},
		Type:        typ,
	}
}

func TestMonthlySeries_Scenario(t *testing.T) {
	txs := []core.Transaction{
		tx(core.Income, "Salary", 10000, core.NewDate(2025, 1, 15)),
		tx(core.Expense, "Food", 4000, core.NewDate(2025, 1, 20)),
		tx(core.Expense, "Food", 6000, core.NewDate(2025, 2, 1)),
	}
	series := MonthlySeries(txs)

	if len(series) != 12 {
		t.Fatalf("expected 12 buckets, got %d", len(series))
	}
	jan := series[0]
	if jan.Month != "Jan" || jan.IncomeCents != 10000 || jan.ExpenseCents != 4000 || jan.BalanceCents != 6000 || jan.TransactionCount != 2 {
		t.Fatalf("unexpected Jan bucket: %+v", jan)
	}
	feb := series[1]
	if feb.IncomeCents != 0 || feb.ExpenseCents != 6000 || feb.BalanceCents != -6000 || feb.TransactionCount != 1 {
		t.Fatalf("unexpected Feb bucket: %+v", feb)
	}
	for i := 2; i < 12; i++ {
		if series[i].TransactionCount != 0 || series[i].IncomeCents != 0 || series[i].ExpenseCents != 0 {
			t.Fatalf("bucket %s should be zero: %+v", series[i].Month, series[i])
		}
	}
}

func TestMonthlySeries_MergesYears(t *testing.T) {
	// Same month from different years lands in the same bucket.
	txs := []core.Transaction{
		tx(core.Expense, "Food", 100, core.NewDate(2024, 3, 10)),
		tx(core.Expense, "Food", 200, core.NewDate(2025, 3, 10)),
	}
	series := MonthlySeries(txs)
	if series[2].ExpenseCents != 300 || series[2].TransactionCount != 2 {
		t.Fatalf("expected merged Mar bucket, got %+v", series[2])
	}
}

func TestMonthlySeries_SumsMatchTotals(t *testing.T) {
	txs := []core.Transaction{
		tx(core.Income, "Salary", 500000, core.NewDate(2025, 1, 1)),
		tx(core.Income, "Salary", 500000, core.NewDate(2025, 2, 1)),
		tx(core.Expense, "Food", 123456, core.NewDate(2025, 3, 4)),
		tx(core.Expense, "Shopping", 7890, core.NewDate(2025, 11, 30)),
		tx(core.Expense, "Travel", 99999, core.NewDate(2024, 12, 25)),
	}
	metrics := KeyMetrics(txs)

	var income, expenses int64
	for _, b := range MonthlySeries(txs) {
		income += b.IncomeCents
		expenses += b.ExpenseCents
	}
	if income != metrics.TotalIncomeCents {
		t.Fatalf("monthly income sum %d != total income %d", income, metrics.TotalIncomeCents)
	}
	if expenses != metrics.TotalExpenseCents {
		t.Fatalf("monthly expense sum %d != total expenses %d", expenses, metrics.TotalExpenseCents)
	}
}

func TestCategoryBreakdown(t *testing.T) {
	txs := []core.Transaction{
		tx(core.Income, "Salary", 99999, core.NewDate(2025, 1, 1)), // ignored
		tx(core.Expense, "Food", 4000, core.NewDate(2025, 1, 20)),
		tx(core.Expense, "Food", 6000, core.NewDate(2025, 2, 1)),
		tx(core.Expense, "Shopping", 2500, core.NewDate(2025, 2, 2)),
	}
	got := CategoryBreakdown(txs)
	want := []CategorySum{
		{Name: "Food", ValueCents: 10000, Count: 2, AvgAmountCents: 5000},
		{Name: "Shopping", ValueCents: 2500, Count: 1, AvgAmountCents: 2500},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("CategoryBreakdown = %+v, want %+v", got, want)
	}
}

func TestCategoryBreakdown_SumsToTotalExpenses(t *testing.T) {
	txs := []core.Transaction{
		tx(core.Expense, "Food", 123, core.NewDate(2025, 1, 1)),
		tx(core.Expense, "Travel", 456, core.NewDate(2025, 5, 5)),
		tx(core.Expense, "Food", 789, core.NewDate(2025, 7, 7)),
		tx(core.Income, "Salary", 1000, core.NewDate(2025, 1, 1)),
	}
	var sum int64
	for _, c := range CategoryBreakdown(txs) {
		sum += c.ValueCents
	}
	if total := KeyMetrics(txs).TotalExpenseCents; sum != total {
		t.Fatalf("breakdown sum %d != total expenses %d", sum, total)
	}
}

func TestCategoryBreakdown_StableTies(t *testing.T) {
	txs := []core.Transaction{
		tx(core.Expense, "B", 100, core.NewDate(2025, 1, 1)),
		tx(core.Expense, "A", 100, core.NewDate(2025, 1, 2)),
	}
	first := CategoryBreakdown(txs)
	second := CategoryBreakdown(txs)
	if !reflect.DeepEqual(first, second) {
		t.Fatal("breakdown should be deterministic for identical input")
	}
	// First-seen order wins on equal values.
	if first[0].Name != "B" || first[1].Name != "A" {
		t.Fatalf("tie order changed: %+v", first)
	}
}

func TestDailyTrend(t *testing.T) {
	now := time.Date(2025, 8, 31, 15, 0, 0, 0, time.UTC)

	txs := []core.Transaction{
		tx(core.Expense, "Food", 1500, core.NewDate(2025, 8, 31)),  // today
		tx(core.Expense, "Food", 2000, core.NewDate(2025, 8, 2)),   // oldest in-window day
		tx(core.Expense, "Food", 9999, core.NewDate(2025, 8, 1)),   // just outside
		tx(core.Income, "Salary", 5000, core.NewDate(2025, 8, 31)), // income ignored
	}
	buckets := DailyTrend(txs, now, 30)

	if len(buckets) != 30 {
		t.Fatalf("expected 30 buckets, got %d", len(buckets))
	}
	if buckets[0].Label != "Sat 2" {
		t.Fatalf("first bucket label = %q, want %q", buckets[0].Label, "Sat 2")
	}
	if buckets[29].Label != "Sun 31" {
		t.Fatalf("last bucket label = %q, want %q", buckets[29].Label, "Sun 31")
	}
	if buckets[0].AmountCents != 2000 || buckets[0].TransactionCount != 1 {
		t.Fatalf("oldest bucket = %+v, want 2000 cents", buckets[0])
	}
	if buckets[29].AmountCents != 1500 {
		t.Fatalf("today bucket = %+v, want 1500 cents", buckets[29])
	}
	var total int64
	for _, b := range buckets {
		total += b.AmountCents
	}
	if total != 3500 {
		t.Fatalf("window total = %d, want 3500 (out-of-window expense must not leak in)", total)
	}
}

func TestDailyTrend_DefaultWindow(t *testing.T) {
	now := time.Date(2025, 8, 31, 0, 0, 0, 0, time.UTC)
	if got := len(DailyTrend(nil, now, 0)); got != DefaultTrendWindowDays {
		t.Fatalf("default window = %d buckets, want %d", got, DefaultTrendWindowDays)
	}
}

func TestDailyTrend_LabelCollision(t *testing.T) {
	// Feb 5 and Mar 5 2025 are 28 days apart: same weekday, same day of
	// month, same "Wed 5" label. Label-keyed bucketing merges them.
	now := time.Date(2025, 3, 5, 12, 0, 0, 0, time.UTC)
	txs := []core.Transaction{
		tx(core.Expense, "Food", 100, core.NewDate(2025, 2, 5)),
		tx(core.Expense, "Food", 200, core.NewDate(2025, 3, 5)),
	}
	buckets := DailyTrend(txs, now, 30)

	var labeled []DayBucket
	for _, b := range buckets {
		if b.Label == "Wed 5" {
			labeled = append(labeled, b)
		}
	}
	if len(labeled) != 2 {
		t.Fatalf("expected two Wed 5 slots in the window, got %d", len(labeled))
	}
	// Both transactions merge into the slot the label resolves to; the
	// aliased slot stays empty.
	if labeled[0].AmountCents+labeled[1].AmountCents != 300 {
		t.Fatalf("window should hold both amounts: %+v", labeled)
	}
	if labeled[0].TransactionCount+labeled[1].TransactionCount != 2 {
		t.Fatalf("both transactions should land in the window: %+v", labeled)
	}
	if labeled[0].AmountCents != 0 && labeled[1].AmountCents != 0 {
		t.Fatalf("colliding dates should merge into a single slot: %+v", labeled)
	}
}

func TestIncomeSources(t *testing.T) {
	txs := []core.Transaction{
		{Description: "Monthly Salary", Amount: core.Money{Cents: 500000}, Type: core.Income, Date: core.NewDate(2025, 1, 1)},
		{Description: "Freelance project", Amount: core.Money{Cents: 120000}, Type: core.Income, Date: core.NewDate(2025, 1, 5)},
		{Description: "salary bonus", Amount: core.Money{Cents: 50000}, Type: core.Income, Date: core.NewDate(2025, 2, 1)},
		{Description: "Gift from grandma", Amount: core.Money{Cents: 10000}, Type: core.Income, Date: core.NewDate(2025, 2, 2)},
		{Description: "Groceries", Amount: core.Money{Cents: 4000}, Type: core.Expense, Category: "Food", Date: core.NewDate(2025, 2, 2)},
	}
	got := IncomeSources(txs, nil)
	want := []SourceSum{
		{Name: "Salary", ValueCents: 550000, Count: 2},
		{Name: "Freelance", ValueCents: 120000, Count: 1},
		{Name: "Other", ValueCents: 10000, Count: 1},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("IncomeSources = %+v, want %+v", got, want)
	}
}

func TestIncomeSources_RulePriority(t *testing.T) {
	// "salary" outranks "investment" when both substrings appear.
	txs := []core.Transaction{
		{Description: "investment of my salary", Amount: core.Money{Cents: 100}, Type: core.Income, Date: core.NewDate(2025, 1, 1)},
	}
	got := IncomeSources(txs, nil)
	if len(got) != 1 || got[0].Name != "Salary" {
		t.Fatalf("expected Salary classification, got %+v", got)
	}
}

func TestIncomeSources_CustomRules(t *testing.T) {
	rules := []ClassifierRule{{Match: "rent", Label: "Rental"}}
	txs := []core.Transaction{
		{Description: "Rent from tenant", Amount: core.Money{Cents: 80000}, Type: core.Income, Date: core.NewDate(2025, 1, 1)},
		{Description: "Salary", Amount: core.Money{Cents: 100}, Type: core.Income, Date: core.NewDate(2025, 1, 2)},
	}
	got := IncomeSources(txs, rules)
	want := []SourceSum{
		{Name: "Rental", ValueCents: 80000, Count: 1},
		{Name: "Other", ValueCents: 100, Count: 1},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("IncomeSources with custom rules = %+v, want %+v", got, want)
	}
}

func TestTopExpenses(t *testing.T) {
	txs := []core.Transaction{
		tx(core.Expense, "A", 100, core.NewDate(2025, 1, 1)),
		tx(core.Expense, "B", 500, core.NewDate(2025, 1, 2)),
		tx(core.Income, "Salary", 9999, core.NewDate(2025, 1, 3)),
		tx(core.Expense, "C", 300, core.NewDate(2025, 1, 4)),
		tx(core.Expense, "D", 500, core.NewDate(2025, 1, 5)),
		tx(core.Expense, "E", 200, core.NewDate(2025, 1, 6)),
		tx(core.Expense, "F", 50, core.NewDate(2025, 1, 7)),
	}
	got := TopExpenses(txs, 5)
	if len(got) != 5 {
		t.Fatalf("expected 5 entries, got %d", len(got))
	}
	// Non-increasing, ties in original relative order (B before D).
	wantCents := []int64{500, 500, 300, 200, 100}
	for i, tr := range got {
		if tr.Amount.Cents != wantCents[i] {
			t.Fatalf("entry %d = %d cents, want %d", i, tr.Amount.Cents, wantCents[i])
		}
	}
	if got[0].Category != "B" || got[1].Category != "D" {
		t.Fatalf("tie order not stable: %s, %s", got[0].Category, got[1].Category)
	}
	// Everything excluded is <= everything kept.
	if got[4].Amount.Cents < 50 {
		t.Fatal("excluded entry larger than kept entry")
	}
}

func TestSpendingPatterns(t *testing.T) {
	txs := []core.Transaction{
		// Monday 2025-08-25, 09:30 -> Morning
		tx(core.Expense, "Food", 1000, core.NewDateTime(2025, 8, 25, 9, 30)),
		// Monday 2025-08-25, 13:00 -> Afternoon
		tx(core.Expense, "Food", 2000, core.NewDateTime(2025, 8, 25, 13, 0)),
		// Tuesday, 18:00 -> Evening
		tx(core.Expense, "Food", 3000, core.NewDateTime(2025, 8, 26, 18, 0)),
		// Wednesday, 23:00 -> Night
		tx(core.Expense, "Food", 4000, core.NewDateTime(2025, 8, 27, 23, 0)),
		// No time component -> hour 0 -> Night
		tx(core.Expense, "Food", 5000, core.NewDate(2025, 8, 28)),
		// Income ignored
		tx(core.Income, "Salary", 9999, core.NewDateTime(2025, 8, 25, 9, 0)),
	}
	p := SpendingPatterns(txs)

	if p.Weekday["Monday"] != 3000 {
		t.Fatalf("Monday total = %d, want 3000", p.Weekday["Monday"])
	}
	if p.TimeOfDay["Morning"] != 1000 || p.TimeOfDay["Afternoon"] != 2000 ||
		p.TimeOfDay["Evening"] != 3000 || p.TimeOfDay["Night"] != 9000 {
		t.Fatalf("unexpected time-of-day totals: %+v", p.TimeOfDay)
	}
}

func TestTimeOfDayBucket(t *testing.T) {
	cases := []struct {
		hour int
		want string
	}{
		{0, "Night"}, {4, "Night"}, {5, "Morning"}, {11, "Morning"},
		{12, "Afternoon"}, {16, "Afternoon"}, {17, "Evening"},
		{21, "Evening"}, {22, "Night"}, {23, "Night"},
	}
	for _, tc := range cases {
		if got := timeOfDayBucket(tc.hour); got != tc.want {
			t.Errorf("timeOfDayBucket(%d) = %q, want %q", tc.hour, got, tc.want)
		}
	}
}

func TestKeyMetrics(t *testing.T) {
	txs := []core.Transaction{
		tx(core.Income, "Salary", 300000, core.NewDate(2025, 11, 1)),
		tx(core.Income, "Salary", 450000, core.NewDate(2025, 12, 1)),
		tx(core.Expense, "Food", 100000, core.NewDate(2025, 11, 10)),
		tx(core.Expense, "Food", 50000, core.NewDate(2025, 12, 10)),
		tx(core.Expense, "Shopping", 120000, core.NewDate(2025, 12, 15)),
	}
	m := KeyMetrics(txs)

	if m.TotalIncomeCents != 750000 || m.TotalExpenseCents != 270000 {
		t.Fatalf("totals = %d / %d", m.TotalIncomeCents, m.TotalExpenseCents)
	}
	if m.BalanceCents != 480000 {
		t.Fatalf("balance = %d, want 480000", m.BalanceCents)
	}
	if m.TransactionCount != 5 {
		t.Fatalf("count = %d, want 5", m.TransactionCount)
	}
	if m.AvgDailySpendingCents != 9000 {
		t.Fatalf("avg daily spending = %v, want 9000", m.AvgDailySpendingCents)
	}
	if want := float64(480000) / 750000 * 100; m.SavingsRate != want {
		t.Fatalf("savings rate = %v, want %v", m.SavingsRate, want)
	}
	if want := float64(1020000) / 5; m.AvgTransactionCents != want {
		t.Fatalf("avg transaction = %v, want %v", m.AvgTransactionCents, want)
	}
	// Growth: Dec vs Nov slots.
	if want := float64(450000-300000) / 300000 * 100; m.IncomeGrowth != want {
		t.Fatalf("income growth = %v, want %v", m.IncomeGrowth, want)
	}
	if want := float64(170000-100000) / 100000 * 100; m.ExpenseGrowth != want {
		t.Fatalf("expense growth = %v, want %v", m.ExpenseGrowth, want)
	}
	if m.MostSpentCategory != "Food" {
		t.Fatalf("most spent = %q, want Food", m.MostSpentCategory)
	}
	if m.LargestExpenseCents != 120000 {
		t.Fatalf("largest expense = %d, want 120000", m.LargestExpenseCents)
	}
}

func TestKeyMetrics_Idempotent(t *testing.T) {
	txs := []core.Transaction{
		tx(core.Income, "Salary", 1000, core.NewDate(2025, 1, 1)),
		tx(core.Expense, "Food", 300, core.NewDate(2025, 1, 2)),
	}
	first := KeyMetrics(txs)
	second := KeyMetrics(txs)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("KeyMetrics not idempotent: %+v vs %+v", first, second)
	}
}

func TestEmptySnapshot(t *testing.T) {
	now := time.Date(2025, 8, 31, 0, 0, 0, 0, time.UTC)

	m := KeyMetrics(nil)
	if m.TotalIncomeCents != 0 || m.TotalExpenseCents != 0 || m.SavingsRate != 0 ||
		m.AvgTransactionCents != 0 || m.IncomeGrowth != 0 || m.ExpenseGrowth != 0 {
		t.Fatalf("empty metrics should be zero: %+v", m)
	}
	if m.MostSpentCategory != "N/A" {
		t.Fatalf("most spent on empty = %q, want N/A", m.MostSpentCategory)
	}
	if m.LargestExpenseCents != 0 {
		t.Fatalf("largest expense on empty = %d, want 0", m.LargestExpenseCents)
	}
	if got := CategoryBreakdown(nil); len(got) != 0 {
		t.Fatalf("breakdown on empty = %+v", got)
	}
	if got := IncomeSources(nil, nil); len(got) != 0 {
		t.Fatalf("income sources on empty = %+v", got)
	}
	if got := TopExpenses(nil, 5); len(got) != 0 {
		t.Fatalf("top expenses on empty = %+v", got)
	}
	for _, b := range MonthlySeries(nil) {
		if b.IncomeCents != 0 || b.ExpenseCents != 0 || b.TransactionCount != 0 {
			t.Fatalf("empty monthly bucket not zero: %+v", b)
		}
	}
	for _, b := range DailyTrend(nil, now, 30) {
		if b.AmountCents != 0 || b.TransactionCount != 0 {
			t.Fatalf("empty trend bucket not zero: %+v", b)
		}
	}
	p := SpendingPatterns(nil)
	if len(p.Weekday) != 0 || len(p.TimeOfDay) != 0 {
		t.Fatalf("empty patterns not empty: %+v", p)
	}
}
