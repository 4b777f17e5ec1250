package team

import "context"

// Repository exposes team persistence operations.
type Repository interface {
	ListBySeason(ctx context.Context, seasonID int64) ([]Team, error)
	Upsert(ctx context.Context, item Team) error
}
