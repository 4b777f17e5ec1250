package fixture

import (
	"context"
	"time"
)

// RefreshWindow bounds the live-delta classification relative to a reference
// instant: fixtures kicking off within Upcoming, or finished within Trailing.
type RefreshWindow struct {
	Upcoming time.Duration
	Trailing time.Duration
}

// CardTotals is a team's accumulated disciplinary record over a season.
type CardTotals struct {
	Yellow int
	Red    int
}

// Repository exposes fixture persistence and classification queries.
type Repository interface {
	ListBySeason(ctx context.Context, seasonID int64) ([]Fixture, error)
	// ListNeedingRefresh returns fixtures that are live, kicking off inside
	// the upcoming window, or finished inside the trailing window.
	ListNeedingRefresh(ctx context.Context, ref time.Time, window RefreshWindow) ([]Fixture, error)
	// CardTotalsBySeason sums yellow/red cards per team over completed
	// fixtures of the season.
	CardTotalsBySeason(ctx context.Context, seasonID int64) (map[int64]CardTotals, error)
	Upsert(ctx context.Context, item Fixture) error
}
