package suggest

import (
	"context"
	"errors"
	"time"

	"pawlift/internal/corpus"
)

// ErrBudgetExhausted rejects a session before any generation call is made.
var ErrBudgetExhausted = errors.New("daily generation budget exhausted")

// Budget caps generation calls per UTC day, audited through the corpus
// action log. A zero MaxPerDay disables the cap.
type Budget struct {
	DB        *corpus.DB
	MaxPerDay int
}

const actionGeneration = "generation"

// Allow reports whether another generation call fits today's budget.
func (b *Budget) Allow(ctx context.Context, now time.Time) (bool, error) {
	if b == nil || b.DB == nil || b.MaxPerDay <= 0 {
		return true, nil
	}
	startDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	n, err := b.DB.CountActionsWithin(ctx, startDay, startDay.Add(24*time.Hour), actionGeneration)
	if err != nil {
		return false, err
	}
	return n < b.MaxPerDay, nil
}

// Record logs one generation call against the budget.
func (b *Budget) Record(ctx context.Context, now time.Time) error {
	if b == nil || b.DB == nil {
		return nil
	}
	return b.DB.PutAction(ctx, now, actionGeneration)
}
