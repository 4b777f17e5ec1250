package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/riskibarqy/league-tracker/internal/domain/teamstats"
)

type statsKey struct {
	teamID   int64
	seasonID int64
}

type TeamStatsRepository struct {
	mu    sync.RWMutex
	items map[statsKey]teamstats.Statistics
}

func NewTeamStatsRepository(stats []teamstats.Statistics) *TeamStatsRepository {
	items := make(map[statsKey]teamstats.Statistics, len(stats))
	for _, s := range stats {
		items[statsKey{teamID: s.TeamID, seasonID: s.SeasonID}] = s
	}
	return &TeamStatsRepository{items: items}
}

func (r *TeamStatsRepository) ListByLeagueSeason(_ context.Context, leagueID, seasonID int64) ([]teamstats.Statistics, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]teamstats.Statistics, 0, len(r.items))
	for _, s := range r.items {
		if s.LeagueID == leagueID && s.SeasonID == seasonID {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Rank != out[j].Rank {
			return out[i].Rank < out[j].Rank
		}
		return out[i].TeamID < out[j].TeamID
	})
	return out, nil
}

func (r *TeamStatsRepository) Upsert(_ context.Context, item teamstats.Statistics) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[statsKey{teamID: item.TeamID, seasonID: item.SeasonID}] = item
	return nil
}

func (r *TeamStatsRepository) UpdateRank(_ context.Context, teamID, leagueID, seasonID int64, rank, position int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := statsKey{teamID: teamID, seasonID: seasonID}
	item, ok := r.items[key]
	if !ok || item.LeagueID != leagueID {
		return fmt.Errorf("team statistics not found for team_id=%d season_id=%d", teamID, seasonID)
	}
	item.Rank = rank
	item.Position = position
	r.items[key] = item
	return nil
}
