package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/riskibarqy/league-tracker/internal/domain/player"
)

type playerKey struct {
	name     string
	teamID   int64
	seasonID int64
}

type PlayerRepository struct {
	mu    sync.RWMutex
	items map[playerKey]player.Player
}

func NewPlayerRepository(players []player.Player) *PlayerRepository {
	items := make(map[playerKey]player.Player, len(players))
	for _, p := range players {
		items[playerKey{name: p.Name, teamID: p.TeamID, seasonID: p.SeasonID}] = p
	}
	return &PlayerRepository{items: items}
}

func (r *PlayerRepository) ListTopScorers(_ context.Context, leagueID int64, limit int) ([]player.Player, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if limit <= 0 {
		limit = 10
	}

	out := make([]player.Player, 0, len(r.items))
	for _, p := range r.items {
		if p.LeagueID == leagueID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Goals != out[j].Goals {
			return out[i].Goals > out[j].Goals
		}
		if out[i].Assists != out[j].Assists {
			return out[i].Assists > out[j].Assists
		}
		if out[i].MinutesPlayed != out[j].MinutesPlayed {
			return out[i].MinutesPlayed < out[j].MinutesPlayed
		}
		return out[i].Name < out[j].Name
	})

	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *PlayerRepository) Upsert(_ context.Context, item player.Player) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[playerKey{name: item.Name, teamID: item.TeamID, seasonID: item.SeasonID}] = item
	return nil
}
