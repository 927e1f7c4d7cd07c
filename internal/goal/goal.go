// Package goal computes progress and pacing metrics for a savings goal.
package goal

import (
	"context"
	"math"
	"time"

	"finboard/internal/core"
)

// assumedHorizonDays is the fixed pacing horizon: expected progress is a
// linear interpolation of the target over 1095 days (3 years) ending at the
// target date, regardless of when the goal was actually created.
const assumedHorizonDays = 1095

// onTrackFactor is the slack applied to expected progress before a goal is
// considered behind pace.
const onTrackFactor = 0.8

// Repository owns persistence of the single current goal. GetGoal returns
// (nil, nil) when no goal is set; the no-goal state is a first-class
// condition, not an error.
type Repository interface {
	GetGoal(ctx context.Context) (*core.SavingsGoal, error)
	SetGoal(ctx context.Context, g core.SavingsGoal) error
	ClearGoal(ctx context.Context) error
}

// Metrics are the derived values for one goal snapshot. Pacing fields are
// nil when the goal has no target date.
type Metrics struct {
	Progress           float64  `json:"progress"`
	RemainingCents     int64    `json:"remaining_cents"`
	DaysRemaining      *int     `json:"days_remaining,omitempty"`
	DailyRequiredCents *float64 `json:"daily_required_cents,omitempty"`
	OnTrack            *bool    `json:"on_track,omitempty"`
}

// Compute derives progress, remaining amount and, when a target date is
// present, days remaining, required daily saving and on-track pacing.
// All divisions are guarded; a non-positive target yields zero progress.
func Compute(g core.SavingsGoal, today time.Time) Metrics {
	var m Metrics
	if g.Target.Cents > 0 {
		m.Progress = float64(g.Current.Cents) / float64(g.Target.Cents) * 100
	}
	m.RemainingCents = g.Target.Cents - g.Current.Cents
	if m.RemainingCents < 0 {
		m.RemainingCents = 0
	}
	if g.TargetDate == nil {
		return m
	}

	days := int(math.Ceil(g.TargetDate.Sub(today).Hours() / 24))
	m.DaysRemaining = &days

	if days > 0 {
		required := float64(m.RemainingCents) / float64(days)
		m.DailyRequiredCents = &required
	}

	expected := float64(g.Target.Cents) / assumedHorizonDays * float64(assumedHorizonDays-days)
	onTrack := float64(g.Current.Cents) >= expected*onTrackFactor
	m.OnTrack = &onTrack
	return m
}
