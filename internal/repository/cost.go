package repository

import (
	"context"
	"time"

	"docvault/internal/model"
)

// CostRepository persists the append-only cost ledger.
type CostRepository interface {
	// Create appends a cost record.
	Create(ctx context.Context, rec *model.CostRecord) error

	// Query returns records whose created_at falls inside the optional bounds, newest first.
	Query(ctx context.Context, q CostQuery) ([]model.CostRecord, error)
}

// CostQuery bounds a ledger query. Nil bounds are open; both ends are inclusive.
type CostQuery struct {
	Start *time.Time
	End   *time.Time
}
