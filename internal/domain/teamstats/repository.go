package teamstats

import "context"

// Repository exposes derived-statistics persistence operations.
type Repository interface {
	ListByLeagueSeason(ctx context.Context, leagueID, seasonID int64) ([]Statistics, error)
	Upsert(ctx context.Context, item Statistics) error
	UpdateRank(ctx context.Context, teamID, leagueID, seasonID int64, rank, position int) error
}
