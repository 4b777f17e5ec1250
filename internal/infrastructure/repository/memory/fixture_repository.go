package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/riskibarqy/league-tracker/internal/domain/fixture"
)

type FixtureRepository struct {
	mu    sync.RWMutex
	items map[int64]fixture.Fixture
}

func NewFixtureRepository(fixtures []fixture.Fixture) *FixtureRepository {
	items := make(map[int64]fixture.Fixture, len(fixtures))
	for _, f := range fixtures {
		items[f.ID] = f
	}
	return &FixtureRepository{items: items}
}

func (r *FixtureRepository) ListBySeason(_ context.Context, seasonID int64) ([]fixture.Fixture, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]fixture.Fixture, 0, len(r.items))
	for _, f := range r.items {
		if f.SeasonID == seasonID {
			out = append(out, f)
		}
	}
	sortFixtures(out)
	return out, nil
}

func (r *FixtureRepository) ListNeedingRefresh(_ context.Context, ref time.Time, window fixture.RefreshWindow) ([]fixture.Fixture, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	lower := ref.Add(-window.Trailing).Unix()
	upper := ref.Add(window.Upcoming).Unix()

	out := make([]fixture.Fixture, 0, len(r.items))
	for _, f := range r.items {
		if fixture.IsLiveStatus(f.Status) || (f.DateUnix >= lower && f.DateUnix <= upper) {
			out = append(out, f)
		}
	}
	sortFixtures(out)
	return out, nil
}

func (r *FixtureRepository) CardTotalsBySeason(_ context.Context, seasonID int64) (map[int64]fixture.CardTotals, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[int64]fixture.CardTotals)
	for _, f := range r.items {
		if f.SeasonID != seasonID || !fixture.IsComplete(f.Status) {
			continue
		}
		home := out[f.HomeTeamID]
		home.Yellow += f.HomeYellowCards
		home.Red += f.HomeRedCards
		out[f.HomeTeamID] = home

		away := out[f.AwayTeamID]
		away.Yellow += f.AwayYellowCards
		away.Red += f.AwayRedCards
		out[f.AwayTeamID] = away
	}
	return out, nil
}

func (r *FixtureRepository) Upsert(_ context.Context, item fixture.Fixture) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[item.ID] = item
	return nil
}

func sortFixtures(items []fixture.Fixture) {
	sort.Slice(items, func(i, j int) bool {
		if items[i].DateUnix != items[j].DateUnix {
			return items[i].DateUnix < items[j].DateUnix
		}
		return items[i].ID < items[j].ID
	})
}
