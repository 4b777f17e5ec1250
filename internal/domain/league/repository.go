package league

import "context"

// Repository describes league persistence needs from use cases.
type Repository interface {
	List(ctx context.Context) ([]League, error)
	GetByID(ctx context.Context, leagueID int64) (League, bool, error)
	GetBySeasonID(ctx context.Context, seasonID int64) (League, bool, error)
	Upsert(ctx context.Context, item League) error
}
