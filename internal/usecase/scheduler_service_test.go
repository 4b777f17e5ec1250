package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/riskibarqy/league-tracker/internal/domain/fixture"
	"github.com/riskibarqy/league-tracker/internal/domain/league"
	"github.com/riskibarqy/league-tracker/internal/domain/team"
	"github.com/riskibarqy/league-tracker/internal/platform/logging"
)

func newTestScheduler(f collectorFixture, cfg SchedulerConfig) *SchedulerService {
	live := NewLiveMatchService(f.fixtureRepo, LiveMatchConfig{}, logging.NewNop())
	return NewSchedulerService(f.collector, live, f.leagueRepo, cfg, logging.NewNop())
}

func fastSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		Workers:      2,
		MaxAttempts:  2,
		BackoffBase:  time.Millisecond,
		FullInterval: time.Hour,
		LiveInterval: time.Hour,
	}
}

func TestRunFullCollection_FailsWithoutLeagues(t *testing.T) {
	t.Parallel()

	f := newCollectorFixture(&stubProvider{}, nil)
	scheduler := newTestScheduler(f, fastSchedulerConfig())

	_, err := scheduler.RunFullCollection(context.Background())
	if !errors.Is(err, ErrCollectionFailed) {
		t.Fatalf("expected ErrCollectionFailed, got %v", err)
	}
}

func TestRunFullCollection_RetriesTransientLeagueFailures(t *testing.T) {
	t.Parallel()

	provider := &stubProvider{
		leagues: []ExternalLeague{
			{Name: "Premier League", Country: "England", Seasons: []ExternalSeason{{ID: 300, Year: 2025}}},
		},
		teams: map[int64][]ExternalTeam{
			300: {{ExternalID: 1, Name: "Arsenal"}, {ExternalID: 2, Name: "Brentford"}},
		},
		failTeamsTimes: 1,
	}
	f := newCollectorFixture(provider, nil)
	scheduler := newTestScheduler(f, fastSchedulerConfig())

	result, err := scheduler.RunFullCollection(context.Background())
	if err != nil {
		t.Fatalf("RunFullCollection error: %v", err)
	}
	if result.SuccessCount != 1 || result.FailedCount != 0 {
		t.Fatalf("unexpected counts: %+v", result)
	}
	if len(result.Leagues) != 1 {
		t.Fatalf("expected 1 league result, got %d", len(result.Leagues))
	}
	row := result.Leagues[0]
	if row.Status != leagueRunSuccess || row.Attempts != 2 {
		t.Fatalf("expected success on second attempt, got %+v", row)
	}
	if row.Counts.TeamsUpserted != 2 {
		t.Fatalf("expected 2 teams upserted, got %+v", row.Counts)
	}
}

func TestRunFullCollection_FatalWhenEveryLeagueFails(t *testing.T) {
	t.Parallel()

	provider := &stubProvider{
		leagues: []ExternalLeague{
			{Name: "Premier League", Country: "England", Seasons: []ExternalSeason{{ID: 300, Year: 2025}}},
			{Name: "La Liga", Country: "Spain", Seasons: []ExternalSeason{{ID: 400, Year: 2025}}},
		},
		failTeamsTimes: 100, // more failures than the retry budget can absorb
	}
	f := newCollectorFixture(provider, nil)
	scheduler := newTestScheduler(f, fastSchedulerConfig())

	result, err := scheduler.RunFullCollection(context.Background())
	if !errors.Is(err, ErrCollectionFailed) {
		t.Fatalf("expected ErrCollectionFailed, got %v", err)
	}
	if result.FailedCount != 2 || result.SuccessCount != 0 {
		t.Fatalf("unexpected counts: %+v", result)
	}
	for _, row := range result.Leagues {
		if row.Status != leagueRunFailed || row.Attempts != 2 {
			t.Fatalf("expected exhausted retries per league, got %+v", row)
		}
		if row.Message == "" {
			t.Fatalf("failed league must carry an error message: %+v", row)
		}
	}
}

func TestTriggerCollection_SkipsWhileRunInProgress(t *testing.T) {
	t.Parallel()

	f := newCollectorFixture(&stubProvider{}, nil)
	scheduler := newTestScheduler(f, fastSchedulerConfig())

	scheduler.collecting.Store(true)
	if got := scheduler.TriggerCollection(context.Background(), TriggerOptions{}); got.Status != "skipped" {
		t.Fatalf("expected skipped, got %q", got.Status)
	}
	if got := scheduler.TriggerCollection(context.Background(), TriggerOptions{Force: true}); got.Status != "queued" {
		t.Fatalf("forced trigger must queue, got %q", got.Status)
	}
	scheduler.collecting.Store(false)
	scheduler.Stop()
}

func TestTriggerCollection_QueuesBackgroundRun(t *testing.T) {
	t.Parallel()

	provider := &stubProvider{
		leagues: []ExternalLeague{
			{Name: "Premier League", Country: "England", Seasons: []ExternalSeason{{ID: 300, Year: 2025}}},
		},
		teams: map[int64][]ExternalTeam{
			300: {{ExternalID: 1, Name: "Arsenal"}, {ExternalID: 2, Name: "Brentford"}},
		},
	}
	f := newCollectorFixture(provider, nil)
	scheduler := newTestScheduler(f, fastSchedulerConfig())

	if got := scheduler.TriggerCollection(context.Background(), TriggerOptions{}); got.Status != "queued" {
		t.Fatalf("expected queued, got %q", got.Status)
	}
	scheduler.Stop()

	leagues, err := f.leagueRepo.List(context.Background())
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(leagues) != 1 {
		t.Fatalf("expected the triggered run to persist 1 league, got %d", len(leagues))
	}

	status, err := scheduler.Status(context.Background())
	if err != nil {
		t.Fatalf("Status error: %v", err)
	}
	if status.State != "idle" || status.LeaguesTracked != 1 {
		t.Fatalf("unexpected status: %+v", status)
	}
	if status.LastFullRun == nil || status.LastFullRun.Status != "success" {
		t.Fatalf("expected a successful full-run stamp, got %+v", status.LastFullRun)
	}
}

func TestRunLiveDelta_NoOpWhenNothingIsTracked(t *testing.T) {
	t.Parallel()

	provider := &stubProvider{}
	f := newCollectorFixture(provider, nil)
	scheduler := newTestScheduler(f, fastSchedulerConfig())

	result, err := scheduler.RunLiveDelta(context.Background())
	if err != nil {
		t.Fatalf("RunLiveDelta error: %v", err)
	}
	if !result.NoOp {
		t.Fatalf("expected no-op tick, got %+v", result)
	}
	if provider.matchesCalls != 0 {
		t.Fatalf("no-op tick must not touch the provider, got %d match fetches", provider.matchesCalls)
	}
}

func TestRunLiveDelta_RebuildsOnlyLeaguesWithLiveFixtures(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()
	liveLeague := league.League{ID: 10, Name: "Premier League", SeasonID: 300, SeasonYear: 2025}
	imminentLeague := league.League{ID: 20, Name: "La Liga", SeasonID: 400, SeasonYear: 2025}

	provider := &stubProvider{
		matches: map[int64][]ExternalMatch{
			300: {{ExternalID: 1, HomeTeamID: 1, AwayTeamID: 2, Status: "live", DateUnix: now.Add(-30 * time.Minute).Unix(), HomeGoals: 1}},
			400: {{ExternalID: 2, HomeTeamID: 3, AwayTeamID: 4, Status: "scheduled", DateUnix: now.Add(15 * time.Minute).Unix()}},
		},
	}
	f := newCollectorFixture(provider, []league.League{liveLeague, imminentLeague})
	for _, item := range []team.Team{
		{ID: 1, LeagueID: 10, SeasonID: 300, Name: "Arsenal"},
		{ID: 2, LeagueID: 10, SeasonID: 300, Name: "Brentford"},
	} {
		if err := f.teamRepo.Upsert(context.Background(), item); err != nil {
			t.Fatalf("seed team error: %v", err)
		}
	}
	seed := []fixture.Fixture{
		{ID: 1, LeagueID: 10, SeasonID: 300, HomeTeamID: 1, AwayTeamID: 2, Status: "live", DateUnix: now.Add(-30 * time.Minute).Unix()},
		{ID: 2, LeagueID: 20, SeasonID: 400, HomeTeamID: 3, AwayTeamID: 4, Status: "scheduled", DateUnix: now.Add(15 * time.Minute).Unix()},
	}
	for _, item := range seed {
		if err := f.fixtureRepo.Upsert(context.Background(), item); err != nil {
			t.Fatalf("seed fixture error: %v", err)
		}
	}

	scheduler := newTestScheduler(f, fastSchedulerConfig())

	result, err := scheduler.RunLiveDelta(context.Background())
	if err != nil {
		t.Fatalf("RunLiveDelta error: %v", err)
	}
	if result.NoOp {
		t.Fatal("expected an active tick")
	}
	if len(result.RefreshedLeagues) != 2 {
		t.Fatalf("expected both leagues refreshed, got %v", result.RefreshedLeagues)
	}
	if len(result.FailedLeagues) != 0 {
		t.Fatalf("expected no failed leagues, got %v", result.FailedLeagues)
	}

	// Only the league with a live fixture gets its standings rebuilt.
	liveStats, err := f.statsRepo.ListByLeagueSeason(context.Background(), liveLeague.ID, liveLeague.SeasonID)
	if err != nil {
		t.Fatalf("ListByLeagueSeason error: %v", err)
	}
	if len(liveStats) == 0 {
		t.Fatal("expected standings rows for the live league")
	}
	imminentStats, err := f.statsRepo.ListByLeagueSeason(context.Background(), imminentLeague.ID, imminentLeague.SeasonID)
	if err != nil {
		t.Fatalf("ListByLeagueSeason error: %v", err)
	}
	if len(imminentStats) != 0 {
		t.Fatalf("imminent-only league must not be rebuilt, got %d rows", len(imminentStats))
	}
}

func TestSchedulerStatus_BuildsPriorityBuckets(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()
	leagues := []league.League{
		{ID: 10, Name: "Premier League", SeasonID: 300, SeasonYear: 2025},
		{ID: 20, Name: "La Liga", SeasonID: 400, SeasonYear: 2025},
		{ID: 30, Name: "Serie A", SeasonID: 500, SeasonYear: 2025},
	}
	f := newCollectorFixture(&stubProvider{}, leagues)
	seed := []fixture.Fixture{
		{ID: 1, LeagueID: 10, SeasonID: 300, HomeTeamID: 1, AwayTeamID: 2, Status: "2h", DateUnix: now.Add(-time.Hour).Unix()},
		{ID: 2, LeagueID: 20, SeasonID: 400, HomeTeamID: 3, AwayTeamID: 4, Status: "scheduled", DateUnix: now.Add(10 * time.Minute).Unix()},
		// A live league with an imminent fixture stays in the high bucket.
		{ID: 3, LeagueID: 10, SeasonID: 300, HomeTeamID: 5, AwayTeamID: 6, Status: "scheduled", DateUnix: now.Add(5 * time.Minute).Unix()},
	}
	for _, item := range seed {
		if err := f.fixtureRepo.Upsert(context.Background(), item); err != nil {
			t.Fatalf("seed fixture error: %v", err)
		}
	}

	scheduler := newTestScheduler(f, fastSchedulerConfig())

	status, err := scheduler.Status(context.Background())
	if err != nil {
		t.Fatalf("Status error: %v", err)
	}
	if status.LeaguesTracked != 3 {
		t.Fatalf("expected 3 tracked leagues, got %d", status.LeaguesTracked)
	}
	if len(status.PriorityBuckets.High) != 1 || status.PriorityBuckets.High[0] != 10 {
		t.Fatalf("unexpected high bucket: %v", status.PriorityBuckets.High)
	}
	if len(status.PriorityBuckets.Medium) != 1 || status.PriorityBuckets.Medium[0] != 20 {
		t.Fatalf("unexpected medium bucket: %v", status.PriorityBuckets.Medium)
	}
	if status.LiveSummary.LiveCount != 1 || status.LiveSummary.ImminentCount != 2 {
		t.Fatalf("unexpected live summary: %+v", status.LiveSummary)
	}
}
