package services

import (
	"context"
	"fmt"
	"time"

	"finboard/internal/budget"
	"finboard/internal/core"
	"finboard/internal/engine"
)

// TransactionLister supplies the full transaction snapshot the engine
// aggregates over.
type TransactionLister interface {
	ListTransactions(ctx context.Context) ([]core.Transaction, error)
}

// DashboardService recomputes dashboard views from the live snapshot. All
// heavy lifting is in the pure engine; this layer only loads data.
type DashboardService struct {
	lister TransactionLister
	now    func() time.Time
}

func NewDashboardService(lister TransactionLister) *DashboardService {
	return &DashboardService{
		lister: lister,
		now:    time.Now,
	}
}

func (s *DashboardService) Stats(ctx context.Context) (engine.Metrics, error) {
	txs, err := s.lister.ListTransactions(ctx)
	if err != nil {
		return engine.Metrics{}, fmt.Errorf("load snapshot: %w", err)
	}
	return engine.KeyMetrics(txs), nil
}

func (s *DashboardService) Monthly(ctx context.Context) ([]engine.MonthBucket, error) {
	txs, err := s.lister.ListTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	return engine.MonthlySeries(txs), nil
}

func (s *DashboardService) Categories(ctx context.Context) ([]engine.CategorySum, error) {
	txs, err := s.lister.ListTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	return engine.CategoryBreakdown(txs), nil
}

func (s *DashboardService) Trend(ctx context.Context, windowDays int) ([]engine.DayBucket, error) {
	txs, err := s.lister.ListTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	return engine.DailyTrend(txs, s.now(), windowDays), nil
}

func (s *DashboardService) IncomeSources(ctx context.Context) ([]engine.SourceSum, error) {
	txs, err := s.lister.ListTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	return engine.IncomeSources(txs, nil), nil
}

func (s *DashboardService) TopExpenses(ctx context.Context, limit int) ([]core.Transaction, error) {
	txs, err := s.lister.ListTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	return engine.TopExpenses(txs, limit), nil
}

func (s *DashboardService) Patterns(ctx context.Context) (engine.Patterns, error) {
	txs, err := s.lister.ListTransactions(ctx)
	if err != nil {
		return engine.Patterns{}, fmt.Errorf("load snapshot: %w", err)
	}
	return engine.SpendingPatterns(txs), nil
}

// BudgetView is one budget entry joined with its evaluation.
type BudgetView struct {
	Category       string  `json:"category"`
	AllocatedCents int64   `json:"allocated_cents"`
	SpentCents     int64   `json:"spent_cents"`
	Percentage     float64 `json:"percentage"`
	RemainingCents int64   `json:"remaining_cents"`
	Status         string  `json:"status"`
}

// BudgetsWithSpent fills each allocation's spent amount from the expense
// snapshot and evaluates its status band.
func (s *DashboardService) BudgetsWithSpent(ctx context.Context, entries []core.BudgetEntry) ([]BudgetView, error) {
	txs, err := s.lister.ListTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}

	spentByCategory := make(map[string]int64)
	for _, cs := range engine.CategoryBreakdown(txs) {
		spentByCategory[cs.Name] = cs.ValueCents
	}

	views := make([]BudgetView, 0, len(entries))
	for _, e := range entries {
		e.Spent = core.Money{Cents: spentByCategory[e.Category]}
		ev := budget.Evaluate(e)
		views = append(views, BudgetView{
			Category:       e.Category,
			AllocatedCents: e.Allocated.Cents,
			SpentCents:     e.Spent.Cents,
			Percentage:     ev.Percentage,
			RemainingCents: ev.RemainingCents,
			Status:         string(ev.Status),
		})
	}
	return views, nil
}
