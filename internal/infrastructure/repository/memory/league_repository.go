package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/riskibarqy/league-tracker/internal/domain/league"
)

type LeagueRepository struct {
	mu    sync.RWMutex
	items map[int64]league.League
}

func NewLeagueRepository(leagues []league.League) *LeagueRepository {
	items := make(map[int64]league.League, len(leagues))
	for _, l := range leagues {
		items[l.ID] = l
	}
	return &LeagueRepository{items: items}
}

func (r *LeagueRepository) List(_ context.Context) ([]league.League, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]league.League, 0, len(r.items))
	for _, l := range r.items {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *LeagueRepository) GetByID(_ context.Context, leagueID int64) (league.League, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	l, ok := r.items[leagueID]
	return l, ok, nil
}

func (r *LeagueRepository) GetBySeasonID(_ context.Context, seasonID int64) (league.League, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, l := range r.items {
		if l.SeasonID == seasonID {
			return l, true, nil
		}
	}
	return league.League{}, false, nil
}

func (r *LeagueRepository) Upsert(_ context.Context, item league.League) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, existing := range r.items {
		if existing.SeasonID == item.SeasonID {
			item.ID = id
			r.items[id] = item
			return nil
		}
	}
	r.items[item.ID] = item
	return nil
}
