package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/riskibarqy/league-tracker/internal/domain/fixture"
	"github.com/riskibarqy/league-tracker/internal/platform/logging"
)

const (
	defaultUpcomingWindow = 30 * time.Minute
	// Trailing covers a finished match's full duration plus stoppage so a
	// just-completed fixture still lands in the refresh set.
	defaultTrailingWindow = 3 * time.Hour
)

type LiveMatchConfig struct {
	UpcomingWindow time.Duration
	TrailingWindow time.Duration
}

// LiveDeltaSnapshot is one classification pass over fixtures near the
// current instant.
type LiveDeltaSnapshot struct {
	Live             []fixture.Fixture
	Imminent         []fixture.Fixture
	RecentlyFinished []fixture.Fixture
}

func (s LiveDeltaSnapshot) Empty() bool {
	return len(s.Live) == 0 && len(s.Imminent) == 0 && len(s.RecentlyFinished) == 0
}

// LeagueIDs returns every league touched by the snapshot, sorted.
func (s LiveDeltaSnapshot) LeagueIDs() []int64 {
	seen := make(map[int64]struct{})
	for _, group := range [][]fixture.Fixture{s.Live, s.Imminent, s.RecentlyFinished} {
		for _, f := range group {
			seen[f.LeagueID] = struct{}{}
		}
	}
	out := make([]int64, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// LiveLeagueIDs returns the league ids that currently have a live
// fixture; only these get a standings rebuild on the delta path.
func (s LiveDeltaSnapshot) LiveLeagueIDs() map[int64]struct{} {
	out := make(map[int64]struct{}, len(s.Live))
	for _, f := range s.Live {
		out[f.LeagueID] = struct{}{}
	}
	return out
}

// LiveMatchService classifies stored fixtures around "now" so the
// scheduler refreshes only the leagues that can actually change.
type LiveMatchService struct {
	fixtureRepo fixture.Repository
	cfg         LiveMatchConfig
	logger      *logging.Logger
	now         func() time.Time
}

func NewLiveMatchService(fixtureRepo fixture.Repository, cfg LiveMatchConfig, logger *logging.Logger) *LiveMatchService {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.UpcomingWindow <= 0 {
		cfg.UpcomingWindow = defaultUpcomingWindow
	}
	if cfg.TrailingWindow <= 0 {
		cfg.TrailingWindow = defaultTrailingWindow
	}
	return &LiveMatchService{
		fixtureRepo: fixtureRepo,
		cfg:         cfg,
		logger:      logger,
		now:         time.Now,
	}
}

// Snapshot classifies candidate fixtures into live, imminent (kicking off
// inside the upcoming window) and recently finished (kickoff inside the
// trailing window with a finished status).
func (s *LiveMatchService) Snapshot(ctx context.Context) (LiveDeltaSnapshot, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LiveMatchService.Snapshot")
	defer span.End()

	ref := s.now().UTC()
	candidates, err := s.fixtureRepo.ListNeedingRefresh(ctx, ref, fixture.RefreshWindow{
		Upcoming: s.cfg.UpcomingWindow,
		Trailing: s.cfg.TrailingWindow,
	})
	if err != nil {
		return LiveDeltaSnapshot{}, fmt.Errorf("snapshot live fixtures: %w", err)
	}

	var snapshot LiveDeltaSnapshot
	refUnix := ref.Unix()
	upcomingCutoff := ref.Add(s.cfg.UpcomingWindow).Unix()
	trailingCutoff := ref.Add(-s.cfg.TrailingWindow).Unix()

	for _, f := range candidates {
		switch {
		case fixture.IsLiveStatus(f.Status):
			snapshot.Live = append(snapshot.Live, f)
		case fixture.IsUpcomingStatus(f.Status) && f.DateUnix >= refUnix && f.DateUnix <= upcomingCutoff:
			snapshot.Imminent = append(snapshot.Imminent, f)
		case fixture.IsFinishedStatus(f.Status) && f.DateUnix >= trailingCutoff && f.DateUnix <= refUnix:
			snapshot.RecentlyFinished = append(snapshot.RecentlyFinished, f)
		}
	}
	return snapshot, nil
}
