package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/riskibarqy/league-tracker/internal/domain/team"
)

type teamKey struct {
	id       int64
	seasonID int64
}

type TeamRepository struct {
	mu    sync.RWMutex
	items map[teamKey]team.Team
}

func NewTeamRepository(teams []team.Team) *TeamRepository {
	items := make(map[teamKey]team.Team, len(teams))
	for _, t := range teams {
		items[teamKey{id: t.ID, seasonID: t.SeasonID}] = t
	}
	return &TeamRepository{items: items}
}

func (r *TeamRepository) ListBySeason(_ context.Context, seasonID int64) ([]team.Team, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]team.Team, 0, len(r.items))
	for key, t := range r.items {
		if key.seasonID == seasonID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *TeamRepository) Upsert(_ context.Context, item team.Team) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[teamKey{id: item.ID, seasonID: item.SeasonID}] = item
	return nil
}
