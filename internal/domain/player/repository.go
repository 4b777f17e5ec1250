package player

import "context"

// Repository exposes player persistence operations.
type Repository interface {
	ListTopScorers(ctx context.Context, leagueID int64, limit int) ([]Player, error)
	Upsert(ctx context.Context, item Player) error
}
